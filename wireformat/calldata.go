package wireformat

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
	"github.com/divvi-xyz/divvi-sdk/go/internal/abi"
)

const (
	typeDataSuffix = "calldata suffix"

	// calldataLengthSize is the trailing uint32 that counts the whole suffix.
	calldataLengthSize = 4

	// calldataHeadWords is the static head in front of the providers array:
	// the consumer word and the array offset word. The resulting offset 0x40
	// is byte-identical to the "element length = 64" word historical encoders
	// wrote in this position, which downstream decoders key off.
	calldataHeadWords = 2

	minDataSuffixSize = magicSize + calldataLengthSize + 3*abi.WordSize
)

// DataSuffixRequest holds the parties for a calldata suffix.
type DataSuffixRequest struct {
	Consumer  string
	Providers []string
	// Format selects the layout; empty means entities.FormatDefault.
	Format entities.FormatID
}

// DataSuffix is a decoded calldata suffix. Addresses are lowercase.
type DataSuffix struct {
	Format    entities.FormatID
	Consumer  string
	Providers []string
}

// EncodeDataSuffix builds the suffix appended to token transfer call data:
//
//	magic | [format] | word(consumer) | address[] | totalLength
//
// totalLength is a big-endian uint32 counting every byte of the suffix,
// itself included. The result is lowercase hex without a 0x prefix. Any
// invalid address fails the call before any output is produced.
func EncodeDataSuffix(req DataSuffixRequest) (string, error) {
	layout, err := calldataLayoutFor(req.Format.OrDefault())
	if err != nil {
		return "", err
	}
	if err := validateAddress("consumer", req.Consumer); err != nil {
		return "", err
	}
	if err := validateProviders(req.Providers); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(2 * (layout.headerSize() + abi.TupleSize(1, len(req.Providers)) + calldataLengthSize))
	b.WriteString(MagicHex)
	b.WriteString(layout.formatHex())
	b.WriteString(abi.EncodeAddress(req.Consumer))
	b.WriteString(abi.EncodeAddressArray(req.Providers, calldataHeadWords))

	total := b.Len()/2 + calldataLengthSize
	if uint64(total) > math.MaxUint32 {
		return "", &errors.PayloadTooLargeError{Size: uint64(total), Limit: math.MaxUint32}
	}
	fmt.Fprintf(&b, "%08x", total)
	return b.String(), nil
}

// DecodeDataSuffix decodes a complete calldata suffix, with or without a 0x
// prefix. The trailing length must equal the actual byte length.
func DecodeDataSuffix(s string) (*DataSuffix, error) {
	data, err := decodeHex(s)
	if err != nil {
		return nil, wireErr("decode", typeDataSuffix, err)
	}
	suffix, err := decodeDataSuffix(data)
	if err != nil {
		return nil, wireErr("decode", typeDataSuffix, err)
	}
	return suffix, nil
}

// ExtractDataSuffix locates the suffix at the end of arbitrary call data by
// reading its trailing length and walking back. It returns the suffix and the
// call data in front of it, keeping a 0x prefix if the input had one.
func ExtractDataSuffix(calldata string) (*DataSuffix, string, error) {
	prefix := ""
	if strings.HasPrefix(calldata, "0x") || strings.HasPrefix(calldata, "0X") {
		prefix = calldata[:2]
	}
	data, err := decodeHex(calldata)
	if err != nil {
		return nil, "", wireErr("extract", typeDataSuffix, err)
	}
	if len(data) < minDataSuffixSize {
		return nil, "", wireErr("extract", typeDataSuffix, errors.ErrTagTooShort)
	}

	declared := int(binary.BigEndian.Uint32(data[len(data)-calldataLengthSize:]))
	if declared < minDataSuffixSize || declared > len(data) {
		return nil, "", wireErr("extract", typeDataSuffix,
			fmt.Errorf("%w: declared %d bytes, call data has %d", errors.ErrLengthMismatch, declared, len(data)))
	}

	start := len(data) - declared
	suffix, err := decodeDataSuffix(data[start:])
	if err != nil {
		return nil, "", wireErr("extract", typeDataSuffix, err)
	}
	return suffix, prefix + hex.EncodeToString(data[:start]), nil
}

func decodeDataSuffix(data []byte) (*DataSuffix, error) {
	if len(data) < minDataSuffixSize {
		return nil, errors.ErrTagTooShort
	}
	declared := binary.BigEndian.Uint32(data[len(data)-calldataLengthSize:])
	if uint64(declared) != uint64(len(data)) {
		return nil, fmt.Errorf("%w: declared %d bytes, got %d", errors.ErrLengthMismatch, declared, len(data))
	}
	if !bytes.Equal(data[:magicSize], magic[:]) {
		return nil, errors.ErrMagicMismatch
	}

	layout, ok := calldataLayouts[data[magicSize]]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02x", errors.ErrUnknownFormat, data[magicSize])
	}

	payload := data[layout.headerSize() : len(data)-calldataLengthSize]
	static, providers, err := abi.DecodeAddressTuple(payload, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
	}
	return &DataSuffix{
		Format:    layout.format,
		Consumer:  static[0],
		Providers: providers,
	}, nil
}
