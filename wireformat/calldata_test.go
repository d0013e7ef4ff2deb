package wireformat

import (
	stdErrors "errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
)

const (
	testConsumer  = "0x1234567890123456789012345678901234567890"
	testProvider1 = "0x0987654321098765432109876543210987654321"
	testProvider2 = "0xBa9655677f4E42DD289F5b7888170bC0c7dA8Cdc"
	testUser      = "0x544402f32c46a5c120e89421f15c8a21f77d6087"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestMagicHex(t *testing.T) {
	assert.Equal(t, "6decb85d", MagicHex)
}

func TestEncodeDataSuffix_Golden(t *testing.T) {
	tests := []struct {
		name string
		req  DataSuffixRequest
	}{
		{
			name: "calldata_suffix_no_providers",
			req:  DataSuffixRequest{Consumer: testConsumer},
		},
		{
			name: "calldata_suffix_single_provider",
			req:  DataSuffixRequest{Consumer: testConsumer, Providers: []string{testProvider1}},
		},
		{
			name: "calldata_suffix_multiple_providers",
			req:  DataSuffixRequest{Consumer: testConsumer, Providers: []string{testProvider1, testProvider2}},
		},
		{
			name: "calldata_suffix_legacy_no_providers",
			req:  DataSuffixRequest{Consumer: testConsumer, Format: entities.FormatLegacy},
		},
		{
			name: "calldata_suffix_legacy_multiple_providers",
			req: DataSuffixRequest{
				Consumer:  testConsumer,
				Providers: []string{testProvider1, testProvider2},
				Format:    entities.FormatLegacy,
			},
		},
	}

	g := newGoldie(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeDataSuffix(tt.req)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(got))
		})
	}
}

func TestEncodeDataSuffix_EmptyProviders(t *testing.T) {
	got, err := EncodeDataSuffix(DataSuffixRequest{Consumer: testConsumer, Providers: []string{}})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "6decb85d01"))
	assert.True(t, strings.HasSuffix(got, "00000069"))
	assert.Len(t, got, 2*105)

	nilProviders, err := EncodeDataSuffix(DataSuffixRequest{Consumer: testConsumer})
	require.NoError(t, err)
	assert.Equal(t, got, nilProviders)
}

func TestEncodeDataSuffix_LengthField(t *testing.T) {
	for n := 0; n <= 5; n++ {
		providers := make([]string, n)
		for i := range providers {
			providers[i] = testProvider1
		}
		got, err := EncodeDataSuffix(DataSuffixRequest{Consumer: testConsumer, Providers: providers})
		require.NoError(t, err)

		data, err := decodeHex(got)
		require.NoError(t, err)
		assert.Equal(t, 105+32*n, len(data), "providers=%d", n)
		assert.EqualValues(t, len(data), int(data[len(data)-4])<<24|int(data[len(data)-3])<<16|
			int(data[len(data)-2])<<8|int(data[len(data)-1]))
	}
}

func TestEncodeDataSuffix_Deterministic(t *testing.T) {
	req := DataSuffixRequest{Consumer: testConsumer, Providers: []string{testProvider1, testProvider2}}
	first, err := EncodeDataSuffix(req)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := EncodeDataSuffix(req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncodeDataSuffix_CaseInsensitive(t *testing.T) {
	lower, err := EncodeDataSuffix(DataSuffixRequest{Consumer: strings.ToLower(testProvider2)})
	require.NoError(t, err)
	mixed, err := EncodeDataSuffix(DataSuffixRequest{Consumer: testProvider2})
	require.NoError(t, err)
	assert.Equal(t, lower, mixed)
	assert.Equal(t, strings.ToLower(mixed), mixed)
}

func TestEncodeDataSuffix_InvalidAddress(t *testing.T) {
	tests := []struct {
		name      string
		req       DataSuffixRequest
		wantField string
		wantAddr  string
	}{
		{
			name:      "empty consumer",
			req:       DataSuffixRequest{Consumer: ""},
			wantField: "consumer",
			wantAddr:  "",
		},
		{
			name:      "short consumer",
			req:       DataSuffixRequest{Consumer: "0x1234"},
			wantField: "consumer",
			wantAddr:  "0x1234",
		},
		{
			name:      "missing prefix",
			req:       DataSuffixRequest{Consumer: testConsumer[2:] + "00"},
			wantField: "consumer",
			wantAddr:  testConsumer[2:] + "00",
		},
		{
			name:      "non hex provider",
			req:       DataSuffixRequest{Consumer: testConsumer, Providers: []string{testProvider1, "0xZZ" + testProvider1[4:]}},
			wantField: "providers[1]",
			wantAddr:  "0xZZ" + testProvider1[4:],
		},
		{
			name:      "invalid provider",
			req:       DataSuffixRequest{Consumer: testConsumer, Providers: []string{"invalid"}},
			wantField: "providers[0]",
			wantAddr:  "invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeDataSuffix(tt.req)
			require.Error(t, err)
			assert.Empty(t, got)

			var addrErr *errors.InvalidAddressError
			require.True(t, stdErrors.As(err, &addrErr))
			assert.Equal(t, tt.wantField, addrErr.Field)
			assert.Equal(t, tt.wantAddr, addrErr.Address)
		})
	}
}

func TestEncodeDataSuffix_UnsupportedFormat(t *testing.T) {
	_, err := EncodeDataSuffix(DataSuffixRequest{Consumer: testConsumer, Format: "v9"})
	var fmtErr *errors.UnsupportedFormatError
	require.True(t, stdErrors.As(err, &fmtErr))
	assert.Equal(t, entities.FormatID("v9"), fmtErr.Format)
}

func TestDecodeDataSuffix_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		format    entities.FormatID
		providers []string
	}{
		{name: "default none", format: entities.FormatDefault, providers: []string{}},
		{name: "default two", format: entities.FormatDefault, providers: []string{testProvider1, testProvider2}},
		{name: "legacy none", format: entities.FormatLegacy, providers: []string{}},
		{name: "legacy one", format: entities.FormatLegacy, providers: []string{testProvider2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeDataSuffix(DataSuffixRequest{
				Consumer:  testConsumer,
				Providers: tt.providers,
				Format:    tt.format,
			})
			require.NoError(t, err)

			for _, in := range []string{encoded, "0x" + encoded} {
				got, err := DecodeDataSuffix(in)
				require.NoError(t, err)
				assert.Equal(t, tt.format, got.Format)
				assert.Equal(t, testConsumer, got.Consumer)
				assert.Equal(t, lowerAll(tt.providers), got.Providers)
			}
		})
	}
}

func TestDecodeDataSuffix_Errors(t *testing.T) {
	valid, err := EncodeDataSuffix(DataSuffixRequest{Consumer: testConsumer, Providers: []string{testProvider1}})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "not hex", input: "zz" + valid[2:], want: errors.ErrInvalidHex},
		{name: "odd length", input: valid[1:], want: errors.ErrInvalidHex},
		{name: "too short", input: valid[:40], want: errors.ErrTagTooShort},
		{name: "truncated", input: valid[:len(valid)-72] + valid[len(valid)-8:], want: errors.ErrLengthMismatch},
		{name: "bad magic", input: "deadbeef" + valid[8:], want: errors.ErrMagicMismatch},
		{name: "unknown format", input: valid[:8] + "7f" + valid[10:], want: errors.ErrUnknownFormat},
		{name: "bad count", input: valid[:8+2+128+63] + "9" + valid[8+2+128+64:], want: errors.ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDataSuffix(tt.input)
			assert.Nil(t, got)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var wfErr *errors.WireFormatError
			require.True(t, stdErrors.As(err, &wfErr))
			assert.Equal(t, "decode", wfErr.Operation)
			assert.Equal(t, typeDataSuffix, wfErr.Type)
		})
	}
}

func TestExtractDataSuffix(t *testing.T) {
	// transfer(address,uint256) call data
	transfer := "0xa9059cbb" +
		"000000000000000000000000" + testUser[2:] +
		"0000000000000000000000000000000000000000000000000de0b6b3a7640000"

	suffix, err := EncodeDataSuffix(DataSuffixRequest{Consumer: testConsumer, Providers: []string{testProvider1}})
	require.NoError(t, err)

	got, rest, err := ExtractDataSuffix(transfer + suffix)
	require.NoError(t, err)
	assert.Equal(t, transfer, rest)
	assert.Equal(t, entities.FormatDefault, got.Format)
	assert.Equal(t, testConsumer, got.Consumer)
	assert.Equal(t, []string{testProvider1}, got.Providers)

	t.Run("no suffix", func(t *testing.T) {
		_, _, err := ExtractDataSuffix(transfer)
		assert.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, _, err := ExtractDataSuffix("0xa9059cbb")
		assert.ErrorIs(t, err, errors.ErrTagTooShort)
	})
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
