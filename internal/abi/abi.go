// Package abi encodes and decodes the subset of the Solidity ABI used by
// attribution tags: static address words and one trailing address[] array.
//
// Encoders work on hex strings without a 0x prefix so that the tag codec can
// concatenate parts directly. Decoders work on raw bytes. Addresses passed to
// the encoders must already be validated.
package abi

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// WordSize is the size in bytes of one ABI slot.
const WordSize = 32

// WordHexSize is the size in hex characters of one ABI slot.
const WordHexSize = 2 * WordSize

// addressSize is the byte length of an account address.
const addressSize = 20

const zeroWord = "0000000000000000000000000000000000000000000000000000000000000000"

// EncodeAddress strips the 0x prefix, lowercases and left-pads the address to
// one 32 byte word.
func EncodeAddress(addr string) string {
	digits := strings.ToLower(strings.TrimPrefix(addr, "0x"))
	return zeroWord[:WordHexSize-len(digits)] + digits
}

// EncodeUint encodes v as one big-endian 32 byte word.
func EncodeUint(v uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return zeroWord[:WordHexSize-16] + hex.EncodeToString(buf[:])
}

// EncodeAddressArray produces the ABI encoding of an address[] that follows
// headWords static slots: an offset word pointing past those slots, the
// element count, then every address word in input order.
//
// The offset is relative to the start of the tuple, so it must be recomputed
// whenever the fields in front of the array change.
func EncodeAddressArray(addrs []string, headWords int) string {
	var b strings.Builder
	b.Grow(WordHexSize * (2 + len(addrs)))
	b.WriteString(EncodeUint(uint64(headWords * WordSize)))
	b.WriteString(EncodeUint(uint64(len(addrs))))
	for _, addr := range addrs {
		b.WriteString(EncodeAddress(addr))
	}
	return b.String()
}

// TupleSize returns the byte length of (address × staticAddrs, address[]) with
// n array elements.
func TupleSize(staticAddrs, n int) int {
	return WordSize * (staticAddrs + 2 + n)
}

// DecodeAddressWord reads one address slot. The 12 high bytes must be zero.
func DecodeAddressWord(word []byte) (string, error) {
	if len(word) != WordSize {
		return "", fmt.Errorf("address word is %d bytes, want %d", len(word), WordSize)
	}
	for _, b := range word[:WordSize-addressSize] {
		if b != 0 {
			return "", fmt.Errorf("address word has dirty high bytes: %x", word)
		}
	}
	return "0x" + hex.EncodeToString(word[WordSize-addressSize:]), nil
}

// DecodeUint reads one slot as an unsigned integer. Values above
// math.MaxInt64 are rejected so they convert to int safely.
func DecodeUint(word []byte) (uint64, error) {
	if len(word) != WordSize {
		return 0, fmt.Errorf("uint word is %d bytes, want %d", len(word), WordSize)
	}
	for _, b := range word[:WordSize-8] {
		if b != 0 {
			return 0, fmt.Errorf("uint word out of range: %x", word)
		}
	}
	v := binary.BigEndian.Uint64(word[WordSize-8:])
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("uint word out of range: %d", v)
	}
	return v, nil
}

// DecodeAddressTuple decodes (address × staticAddrs, address[]) from payload.
// The layout must be exact: word aligned, the array offset pointing at or past
// the static head, and no bytes after the last array element.
func DecodeAddressTuple(payload []byte, staticAddrs int) ([]string, []string, error) {
	head := WordSize * (staticAddrs + 1)
	if len(payload) < head+WordSize {
		return nil, nil, fmt.Errorf("payload is %d bytes, need at least %d", len(payload), head+WordSize)
	}
	if len(payload)%WordSize != 0 {
		return nil, nil, fmt.Errorf("payload length %d is not word aligned", len(payload))
	}

	static := make([]string, staticAddrs)
	for i := range static {
		addr, err := DecodeAddressWord(word(payload, i))
		if err != nil {
			return nil, nil, fmt.Errorf("static address %d: %w", i, err)
		}
		static[i] = addr
	}

	offset, err := DecodeUint(word(payload, staticAddrs))
	if err != nil {
		return nil, nil, fmt.Errorf("array offset: %w", err)
	}
	if offset%WordSize != 0 || offset < uint64(head) || offset > uint64(len(payload)-WordSize) {
		return nil, nil, fmt.Errorf("array offset %d out of bounds", offset)
	}

	count, err := DecodeUint(payload[offset : offset+WordSize])
	if err != nil {
		return nil, nil, fmt.Errorf("array length: %w", err)
	}
	elems := payload[offset+WordSize:]
	if count != uint64(len(elems)/WordSize) {
		return nil, nil, fmt.Errorf("array declares %d elements but %d bytes follow", count, len(elems))
	}

	dynamic := make([]string, count)
	for i := range dynamic {
		addr, err := DecodeAddressWord(elems[i*WordSize : (i+1)*WordSize])
		if err != nil {
			return nil, nil, fmt.Errorf("array element %d: %w", i, err)
		}
		dynamic[i] = addr
	}
	return static, dynamic, nil
}

func word(payload []byte, i int) []byte {
	return payload[i*WordSize : (i+1)*WordSize]
}
