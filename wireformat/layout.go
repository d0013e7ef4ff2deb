package wireformat

import (
	"fmt"

	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
)

// calldataLayout is the decode/encode strategy for one calldata suffix variant.
type calldataLayout struct {
	format entities.FormatID
	// formatByte is written after the magic prefix; nil for the legacy variant.
	formatByte []byte
}

func (l calldataLayout) headerSize() int {
	return magicSize + len(l.formatByte)
}

func (l calldataLayout) formatHex() string {
	if l.formatByte == nil {
		return ""
	}
	return fmt.Sprintf("%02x", l.formatByte[0])
}

// calldataLayouts resolves the byte that follows the magic prefix. A legacy
// suffix has no format byte, so that position holds the first byte of the
// left-padded consumer word, which is always zero.
var calldataLayouts = buildCalldataLayouts()

// calldataLayoutsByFormat is the same registry keyed by format identifier.
var calldataLayoutsByFormat = indexCalldataLayouts(calldataLayouts)

func buildCalldataLayouts() map[byte]calldataLayout {
	layouts := map[byte]calldataLayout{
		entities.ReservedFormatCode: {format: entities.FormatLegacy},
	}
	for _, id := range entities.RegisteredFormats() {
		code, _ := id.Code()
		layouts[code] = calldataLayout{format: id, formatByte: []byte{code}}
	}
	return layouts
}

func indexCalldataLayouts(byCode map[byte]calldataLayout) map[entities.FormatID]calldataLayout {
	out := make(map[entities.FormatID]calldataLayout, len(byCode))
	for _, l := range byCode {
		out[l.format] = l
	}
	return out
}

func calldataLayoutFor(format entities.FormatID) (calldataLayout, error) {
	l, ok := calldataLayoutsByFormat[format]
	if !ok {
		return calldataLayout{}, &errors.UnsupportedFormatError{Format: format, Layout: typeDataSuffix}
	}
	return l, nil
}
