package entities

import "sort"

// FormatID names the wire layout version of an attribution tag.
type FormatID string

const (
	// FormatDefault is the current layout. It carries a one byte format code
	// directly after the magic prefix.
	FormatDefault FormatID = "default"

	// FormatLegacy is the original calldata suffix layout, which has no format
	// byte. It is decodable forever but has no byte code of its own.
	FormatLegacy FormatID = "legacy"
)

// ReservedFormatCode can never be registered. Every ABI address word starts
// with a zero byte, so a zero after the magic prefix identifies the legacy layout.
const ReservedFormatCode byte = 0x00

// formatCodes is append-only: add new entries, never change an existing byte.
var formatCodes = map[FormatID]byte{
	FormatDefault: 0x01,
}

var formatsByCode = invertFormatCodes(formatCodes)

func invertFormatCodes(codes map[FormatID]byte) map[byte]FormatID {
	out := make(map[byte]FormatID, len(codes))
	for id, code := range codes {
		if code == ReservedFormatCode {
			panic("entities: format code 0x00 is reserved for the legacy layout")
		}
		if prev, dup := out[code]; dup {
			panic("entities: format code reused by " + string(prev) + " and " + string(id))
		}
		out[code] = id
	}
	return out
}

// Code returns the byte registered for the format.
// FormatLegacy and unknown formats report false.
func (f FormatID) Code() (byte, bool) {
	code, ok := formatCodes[f]
	return code, ok
}

// OrDefault returns FormatDefault for the zero value.
func (f FormatID) OrDefault() FormatID {
	if f == "" {
		return FormatDefault
	}
	return f
}

// FormatByCode resolves a format byte read from the wire.
func FormatByCode(code byte) (FormatID, bool) {
	id, ok := formatsByCode[code]
	return id, ok
}

// RegisteredFormats lists the formats that own a byte code, ordered by code.
func RegisteredFormats() []FormatID {
	ids := make([]FormatID, 0, len(formatCodes))
	for id := range formatCodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return formatCodes[ids[i]] < formatCodes[ids[j]] })
	return ids
}
