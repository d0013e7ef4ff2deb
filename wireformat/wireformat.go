// Package wireformat defines the binary attribution tag layouts and the JSON
// submission body. These layouts are read by independent decoders, so they
// must remain stable and backward compatible: new formats are added, existing
// bytes never move.
//
// Two framings coexist on purpose:
//
//	calldata suffix: magic(4) [format(1)] ABI(address,address[]) totalLength(4)
//	referral tag:    magic(4) format(1) payloadLength(2) ABI(address,address,address[])
//
// The calldata suffix is located by reading the trailing length from the end
// of arbitrary call data. The referral tag is self-framed by a leading payload
// length so it can also be embedded in a signed message.
package wireformat

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
)

const (
	magicSeed = "divvi"
	magicSize = 4
)

var magic = deriveMagic(magicSeed)

// MagicHex is the tag marker, the first four bytes of keccak256("divvi").
var MagicHex = hex.EncodeToString(magic[:])

func deriveMagic(seed string) [magicSize]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(seed))
	var out [magicSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ReferralSubmissionWire is the JSON body POSTed to the tracking endpoints.
// Exactly one of the transaction or signed message shapes is populated.
type ReferralSubmissionWire struct {
	TxHash    string `json:"txHash,omitempty" jsonschema:"oneof_required=transaction,pattern=^0x[0-9a-fA-F]+$"`
	Message   string `json:"message,omitempty" jsonschema:"oneof_required=signed_message"`
	Signature string `json:"signature,omitempty" jsonschema:"oneof_required=signed_message,pattern=^0x[0-9a-fA-F]+$"`
	ChainID   uint64 `json:"chainId" jsonschema:"minimum=1"`
}

// NewReferralSubmission maps an event to its wire body. The endpoint override
// is transport configuration and is not sent.
func NewReferralSubmission(ev entities.AttributionEvent) ReferralSubmissionWire {
	return ReferralSubmissionWire{
		TxHash:    ev.TxHash,
		Message:   ev.Message,
		Signature: ev.Signature,
		ChainID:   ev.ChainID,
	}
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidHex, err)
	}
	return b, nil
}

func validateAddress(field, addr string) error {
	if !entities.IsValidAddress(addr) {
		return &errors.InvalidAddressError{Address: addr, Field: field}
	}
	return nil
}

func validateProviders(providers []string) error {
	for i, p := range providers {
		if err := validateAddress(entities.ProviderField(i), p); err != nil {
			return err
		}
	}
	return nil
}

func wireErr(op, typ string, err error) error {
	return &errors.WireFormatError{Operation: op, Type: typ, Err: err}
}
