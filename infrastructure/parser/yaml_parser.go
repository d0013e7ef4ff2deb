package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/divvi-xyz/divvi-sdk/go/domain/ports"
)

// YamlConfigParser implements ConfigParser for YAML. JSON documents are
// accepted as well since JSON is a YAML subset.
type YamlConfigParser struct {
	strict bool
}

// NewYamlConfigParser creates a new YamlConfigParser. Unknown keys are ignored.
func NewYamlConfigParser() ports.ConfigParser {
	return &YamlConfigParser{}
}

// NewStrictYamlConfigParser creates a YamlConfigParser that rejects keys with
// no matching field.
func NewStrictYamlConfigParser() ports.ConfigParser {
	return &YamlConfigParser{strict: true}
}

// Parse unmarshals YAML bytes into out. An empty document leaves out untouched.
func (p *YamlConfigParser) Parse(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(p.strict)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}
