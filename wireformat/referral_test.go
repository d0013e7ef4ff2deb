package wireformat

import (
	stdErrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
)

func TestEncodeReferralTag_Golden(t *testing.T) {
	tests := []struct {
		name string
		req  ReferralTagRequest
	}{
		{
			name: "referral_tag_no_providers",
			req:  ReferralTagRequest{User: testUser, Consumer: testConsumer},
		},
		{
			name: "referral_tag_multiple_providers",
			req: ReferralTagRequest{
				User:      testUser,
				Consumer:  testConsumer,
				Providers: []string{testProvider1, testProvider2},
			},
		},
	}

	g := newGoldie(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeReferralTag(tt.req)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(got))
		})
	}
}

func TestEncodeReferralTag_Header(t *testing.T) {
	for n := 0; n <= 3; n++ {
		providers := make([]string, n)
		for i := range providers {
			providers[i] = testProvider2
		}
		got, err := EncodeReferralTag(ReferralTagRequest{User: testUser, Consumer: testConsumer, Providers: providers})
		require.NoError(t, err)

		assert.Equal(t, "6decb85d01", got[:10])
		data, err := decodeHex(got)
		require.NoError(t, err)
		payload := int(data[5])<<8 | int(data[6])
		assert.Equal(t, 0x80+32*n, payload, "providers=%d", n)
		assert.Equal(t, referralHeaderSize+payload, len(data))
	}
}

func TestEncodeReferralTag_InvalidAddress(t *testing.T) {
	tests := []struct {
		name      string
		req       ReferralTagRequest
		wantField string
	}{
		{
			name:      "invalid user",
			req:       ReferralTagRequest{User: "0x1234", Consumer: testConsumer},
			wantField: "user",
		},
		{
			name:      "user checked before consumer",
			req:       ReferralTagRequest{User: "", Consumer: ""},
			wantField: "user",
		},
		{
			name:      "invalid consumer",
			req:       ReferralTagRequest{User: testUser, Consumer: "invalid"},
			wantField: "consumer",
		},
		{
			name: "invalid provider",
			req: ReferralTagRequest{
				User:      testUser,
				Consumer:  testConsumer,
				Providers: []string{testProvider1, testProvider2, "0x1234"},
			},
			wantField: "providers[2]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeReferralTag(tt.req)
			assert.Empty(t, got)

			var addrErr *errors.InvalidAddressError
			require.True(t, stdErrors.As(err, &addrErr))
			assert.Equal(t, tt.wantField, addrErr.Field)
		})
	}
}

func TestEncodeReferralTag_LegacyUnsupported(t *testing.T) {
	_, err := EncodeReferralTag(ReferralTagRequest{
		User:     testUser,
		Consumer: testConsumer,
		Format:   entities.FormatLegacy,
	})
	var fmtErr *errors.UnsupportedFormatError
	require.True(t, stdErrors.As(err, &fmtErr))
	assert.Equal(t, entities.FormatLegacy, fmtErr.Format)
	assert.Equal(t, typeReferralTag, fmtErr.Layout)
}

func TestEncodeReferralTag_PayloadLimit(t *testing.T) {
	// 0x80 + 32n > 65535 once n reaches 2044.
	providers := make([]string, 2044)
	for i := range providers {
		providers[i] = testProvider1
	}
	_, err := EncodeReferralTag(ReferralTagRequest{User: testUser, Consumer: testConsumer, Providers: providers})
	var sizeErr *errors.PayloadTooLargeError
	require.True(t, stdErrors.As(err, &sizeErr))
	assert.EqualValues(t, 0x80+32*2044, sizeErr.Size)
	assert.EqualValues(t, 65535, sizeErr.Limit)

	_, err = EncodeReferralTag(ReferralTagRequest{User: testUser, Consumer: testConsumer, Providers: providers[:2043]})
	assert.NoError(t, err)
}

func TestDecodeReferralTag_RoundTrip(t *testing.T) {
	providers := []string{testProvider1, testProvider2}
	encoded, err := EncodeReferralTag(ReferralTagRequest{User: testUser, Consumer: testConsumer, Providers: providers})
	require.NoError(t, err)

	got, err := DecodeReferralTag("0x" + encoded)
	require.NoError(t, err)
	assert.Equal(t, &ReferralTag{
		Format:    entities.FormatDefault,
		User:      testUser,
		Consumer:  testConsumer,
		Providers: lowerAll(providers),
	}, got)
}

func TestDecodeReferralTag_Errors(t *testing.T) {
	valid, err := EncodeReferralTag(ReferralTagRequest{User: testUser, Consumer: testConsumer})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "not hex", input: "0xgg", want: errors.ErrInvalidHex},
		{name: "too short", input: valid[:12], want: errors.ErrTagTooShort},
		{name: "bad magic", input: "00000000" + valid[8:], want: errors.ErrMagicMismatch},
		{name: "legacy byte", input: valid[:8] + "00" + valid[10:], want: errors.ErrUnknownFormat},
		{name: "truncated payload", input: valid[:len(valid)-2], want: errors.ErrLengthMismatch},
		{name: "trailing bytes", input: valid + "00", want: errors.ErrLengthMismatch},
		{name: "dirty address word", input: valid[:14] + "ff" + valid[16:], want: errors.ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeReferralTag(tt.input)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFindReferralTag(t *testing.T) {
	tag, err := EncodeReferralTag(ReferralTagRequest{
		User:      testUser,
		Consumer:  testConsumer,
		Providers: []string{testProvider2},
	})
	require.NoError(t, err)

	t.Run("signed message", func(t *testing.T) {
		msg := "Divvi Referral Attribution\nReferral tag: " + tag + "\nTimestamp: 1700000000"
		got, idx, err := FindReferralTag(msg)
		require.NoError(t, err)
		assert.Equal(t, strings.Index(msg, tag), idx)
		assert.Equal(t, testUser, got.User)
		assert.Equal(t, testConsumer, got.Consumer)
		assert.Equal(t, []string{strings.ToLower(testProvider2)}, got.Providers)
	})

	t.Run("end of call data", func(t *testing.T) {
		calldata := "0xa9059cbb" + strings.Repeat("00", 64) + tag
		got, idx, err := FindReferralTag(calldata)
		require.NoError(t, err)
		assert.Equal(t, len(calldata)-len(tag), idx)
		assert.Equal(t, testConsumer, got.Consumer)
	})

	t.Run("skips false positive", func(t *testing.T) {
		input := MagicHex + "ff" + " " + tag
		got, idx, err := FindReferralTag(input)
		require.NoError(t, err)
		assert.Equal(t, len(MagicHex)+3, idx)
		assert.Equal(t, testUser, got.User)
	})

	t.Run("uppercase input", func(t *testing.T) {
		got, _, err := FindReferralTag("0x" + strings.ToUpper(tag))
		require.NoError(t, err)
		assert.Equal(t, testUser, got.User)
	})

	t.Run("non-ASCII text keeps byte offsets", func(t *testing.T) {
		inputs := []string{
			"CafȺ referral\nReferral Tag: " + tag,
			strings.Repeat("Ⱥ", 300) + tag,
			"\xff\xfe bad utf8 " + strings.ToUpper(tag) + " İ",
		}
		for _, msg := range inputs {
			got, idx, err := FindReferralTag(msg)
			require.NoError(t, err)
			require.LessOrEqual(t, idx+len(tag), len(msg))
			assert.True(t, strings.EqualFold(msg[idx:idx+len(tag)], tag))
			assert.Equal(t, testUser, got.User)
		}
	})

	t.Run("many false magic matches", func(t *testing.T) {
		input := strings.Repeat(MagicHex+"01ffff", 2000) + " " + tag
		got, idx, err := FindReferralTag(input)
		require.NoError(t, err)
		assert.Equal(t, len(input)-len(tag), idx)
		assert.Equal(t, testConsumer, got.Consumer)
	})

	t.Run("not found", func(t *testing.T) {
		got, idx, err := FindReferralTag("hello world")
		assert.Nil(t, got)
		assert.Equal(t, -1, idx)
		assert.ErrorIs(t, err, errors.ErrTagNotFound)
	})
}
