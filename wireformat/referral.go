package wireformat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
	"github.com/divvi-xyz/divvi-sdk/go/internal/abi"
)

const (
	typeReferralTag = "referral tag"

	// referralLengthSize is the big-endian uint16 payload length after the format byte.
	referralLengthSize = 2
	referralHeaderSize = magicSize + 1 + referralLengthSize

	// referralHeadWords counts the user word, the consumer word and the array
	// offset word, so the providers array starts at offset 0x60.
	referralHeadWords = 3

	maxReferralPayload = math.MaxUint16
)

// ReferralTagRequest holds the parties for a referral tag.
type ReferralTagRequest struct {
	User      string
	Consumer  string
	Providers []string
	// Format selects the layout; empty means entities.FormatDefault.
	// The legacy format has no format byte and cannot frame a referral tag.
	Format entities.FormatID
}

// ReferralTag is a decoded referral tag. Addresses are lowercase.
type ReferralTag struct {
	Format    entities.FormatID
	User      string
	Consumer  string
	Providers []string
}

// EncodeReferralTag builds the tag appended to call data or embedded in a
// signed message:
//
//	magic | format | payloadLength | word(user) | word(consumer) | address[]
//
// payloadLength is a big-endian uint16 counting the ABI payload only.
// Addresses are checked in order user, consumer, providers and the first
// invalid one fails the call before any output is produced.
func EncodeReferralTag(req ReferralTagRequest) (string, error) {
	format := req.Format.OrDefault()
	code, ok := format.Code()
	if !ok {
		return "", &errors.UnsupportedFormatError{Format: format, Layout: typeReferralTag}
	}
	if err := validateAddress("user", req.User); err != nil {
		return "", err
	}
	if err := validateAddress("consumer", req.Consumer); err != nil {
		return "", err
	}
	if err := validateProviders(req.Providers); err != nil {
		return "", err
	}

	var payload strings.Builder
	payload.Grow(2 * abi.TupleSize(2, len(req.Providers)))
	payload.WriteString(abi.EncodeAddress(req.User))
	payload.WriteString(abi.EncodeAddress(req.Consumer))
	payload.WriteString(abi.EncodeAddressArray(req.Providers, referralHeadWords))

	size := payload.Len() / 2
	if size > maxReferralPayload {
		return "", &errors.PayloadTooLargeError{Size: uint64(size), Limit: maxReferralPayload}
	}
	return fmt.Sprintf("%s%02x%04x%s", MagicHex, code, size, payload.String()), nil
}

// DecodeReferralTag decodes a complete referral tag, with or without a 0x
// prefix. Bytes after the announced payload are rejected.
func DecodeReferralTag(s string) (*ReferralTag, error) {
	data, err := decodeHex(s)
	if err != nil {
		return nil, wireErr("decode", typeReferralTag, err)
	}
	tag, n, err := decodeReferralTag(data)
	if err != nil {
		return nil, wireErr("decode", typeReferralTag, err)
	}
	if n != len(data) {
		return nil, wireErr("decode", typeReferralTag,
			fmt.Errorf("%w: %d trailing bytes", errors.ErrLengthMismatch, len(data)-n))
	}
	return tag, nil
}

// FindReferralTag scans call data or signed message text for the first
// well-formed referral tag. It returns the tag and the byte index in s where
// its hex encoding starts.
func FindReferralTag(s string) (*ReferralTag, int, error) {
	lower := asciiLower(s)
	for from := 0; from < len(lower); {
		i := strings.Index(lower[from:], MagicHex)
		if i < 0 {
			break
		}
		start := from + i
		if tag, ok := referralTagAt(lower[start:]); ok {
			return tag, start, nil
		}
		from = start + 1
	}
	return nil, -1, wireErr("find", typeReferralTag, errors.ErrTagNotFound)
}

// referralTagAt decodes a tag from the hex at the front of s. It reads the
// header first and then only the payload bytes the header declares.
func referralTagAt(s string) (*ReferralTag, bool) {
	const headerHex = 2 * referralHeaderSize
	if len(s) < headerHex {
		return nil, false
	}
	header, err := decodeHex(s[:headerHex])
	if err != nil {
		return nil, false
	}
	if _, ok := entities.FormatByCode(header[magicSize]); !ok {
		return nil, false
	}
	end := headerHex + 2*int(binary.BigEndian.Uint16(header[magicSize+1:]))
	if end > len(s) {
		return nil, false
	}
	data, err := decodeHex(s[:end])
	if err != nil {
		return nil, false
	}
	tag, _, err := decodeReferralTag(data)
	return tag, err == nil
}

// decodeReferralTag decodes one tag from the front of data and reports how
// many bytes it used.
func decodeReferralTag(data []byte) (*ReferralTag, int, error) {
	if len(data) < referralHeaderSize {
		return nil, 0, errors.ErrTagTooShort
	}
	if !bytes.Equal(data[:magicSize], magic[:]) {
		return nil, 0, errors.ErrMagicMismatch
	}
	format, ok := entities.FormatByCode(data[magicSize])
	if !ok {
		return nil, 0, fmt.Errorf("%w: 0x%02x", errors.ErrUnknownFormat, data[magicSize])
	}

	size := int(binary.BigEndian.Uint16(data[magicSize+1 : referralHeaderSize]))
	end := referralHeaderSize + size
	if end > len(data) {
		return nil, 0, fmt.Errorf("%w: declared %d payload bytes, %d available",
			errors.ErrLengthMismatch, size, len(data)-referralHeaderSize)
	}

	static, providers, err := abi.DecodeAddressTuple(data[referralHeaderSize:end], 2)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
	}
	return &ReferralTag{
		Format:    format,
		User:      static[0],
		Consumer:  static[1],
		Providers: providers,
	}, end, nil
}

// asciiLower folds ASCII upper case only, so byte offsets in the result
// match the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
