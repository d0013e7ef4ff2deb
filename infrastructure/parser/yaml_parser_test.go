package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	URL     string `yaml:"url"`
	Retries int    `yaml:"retries"`
}

func TestYamlConfigParser_Parse(t *testing.T) {
	var got sample
	err := NewYamlConfigParser().Parse([]byte("url: https://api.divvi.xyz\nretries: 2\nextra: ignored\n"), &got)
	require.NoError(t, err)
	assert.Equal(t, sample{URL: "https://api.divvi.xyz", Retries: 2}, got)
}

func TestYamlConfigParser_JSON(t *testing.T) {
	var got sample
	require.NoError(t, NewYamlConfigParser().Parse([]byte(`{"url": "https://x.example", "retries": 1}`), &got))
	assert.Equal(t, "https://x.example", got.URL)
}

func TestYamlConfigParser_Empty(t *testing.T) {
	got := sample{URL: "keep"}
	require.NoError(t, NewYamlConfigParser().Parse(nil, &got))
	assert.Equal(t, "keep", got.URL)
}

func TestYamlConfigParser_Invalid(t *testing.T) {
	var got sample
	err := NewYamlConfigParser().Parse([]byte("url: [unterminated"), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse yaml")
}

func TestStrictYamlConfigParser_UnknownField(t *testing.T) {
	var got sample
	err := NewStrictYamlConfigParser().Parse([]byte("url: a\nextra: b\n"), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extra")
}
