// Package ethabi is a reference implementation of the attribution tag layouts
// built on go-ethereum's general purpose ABI packer. It shares no encoding
// code with package wireformat, so agreement between the two is meaningful.
//
// Production callers should use wireformat; this package exists to
// cross-check output and to render checksummed addresses.
package ethabi

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
)

var (
	addressType      = mustType("address")
	addressSliceType = mustType("address[]")

	// (address consumer, address[] providers)
	calldataArgs = gethabi.Arguments{{Type: addressType}, {Type: addressSliceType}}

	// (address user, address consumer, address[] providers)
	referralArgs = gethabi.Arguments{{Type: addressType}, {Type: addressType}, {Type: addressSliceType}}
)

func mustType(t string) gethabi.Type {
	typ, err := gethabi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("ethabi: build %s type: %v", t, err))
	}
	return typ
}

// Magic returns the first four bytes of keccak256("divvi") as hex.
func Magic() string {
	return hex.EncodeToString(crypto.Keccak256([]byte("divvi"))[:4])
}

// Checksum renders an address in its EIP-55 mixed case form.
func Checksum(addr string) string {
	return common.HexToAddress(addr).Hex()
}

// DataSuffix encodes a calldata suffix with go-ethereum's ABI packer.
func DataSuffix(consumer string, providers []string, format entities.FormatID) (string, error) {
	c, err := toAddress("consumer", consumer)
	if err != nil {
		return "", err
	}
	ps, err := toAddresses(providers)
	if err != nil {
		return "", err
	}

	packed, err := calldataArgs.Pack(c, ps)
	if err != nil {
		return "", fmt.Errorf("pack calldata suffix: %w", err)
	}

	header := Magic()
	switch format = format.OrDefault(); format {
	case entities.FormatLegacy:
	default:
		code, ok := format.Code()
		if !ok {
			return "", &errors.UnsupportedFormatError{Format: format, Layout: "calldata suffix"}
		}
		header += fmt.Sprintf("%02x", code)
	}

	total := len(header)/2 + len(packed) + 4
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(total))
	return header + hex.EncodeToString(packed) + hex.EncodeToString(length[:]), nil
}

// ReferralTag encodes a referral tag with go-ethereum's ABI packer.
func ReferralTag(user, consumer string, providers []string, format entities.FormatID) (string, error) {
	format = format.OrDefault()
	code, ok := format.Code()
	if !ok {
		return "", &errors.UnsupportedFormatError{Format: format, Layout: "referral tag"}
	}
	u, err := toAddress("user", user)
	if err != nil {
		return "", err
	}
	c, err := toAddress("consumer", consumer)
	if err != nil {
		return "", err
	}
	ps, err := toAddresses(providers)
	if err != nil {
		return "", err
	}

	packed, err := referralArgs.Pack(u, c, ps)
	if err != nil {
		return "", fmt.Errorf("pack referral tag: %w", err)
	}
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(packed)))
	return Magic() + fmt.Sprintf("%02x", code) + hex.EncodeToString(length[:]) + hex.EncodeToString(packed), nil
}

// UnpackCalldataPayload decodes the ABI part of a calldata suffix.
func UnpackCalldataPayload(payload []byte) (string, []string, error) {
	values, err := calldataArgs.Unpack(payload)
	if err != nil {
		return "", nil, fmt.Errorf("unpack calldata payload: %w", err)
	}
	consumer, ok := values[0].(common.Address)
	if !ok {
		return "", nil, fmt.Errorf("unpack calldata payload: consumer is %T", values[0])
	}
	providers, ok := values[1].([]common.Address)
	if !ok {
		return "", nil, fmt.Errorf("unpack calldata payload: providers is %T", values[1])
	}
	return lower(consumer), lowerAll(providers), nil
}

// UnpackReferralPayload decodes the ABI part of a referral tag.
func UnpackReferralPayload(payload []byte) (string, string, []string, error) {
	values, err := referralArgs.Unpack(payload)
	if err != nil {
		return "", "", nil, fmt.Errorf("unpack referral payload: %w", err)
	}
	user, ok := values[0].(common.Address)
	if !ok {
		return "", "", nil, fmt.Errorf("unpack referral payload: user is %T", values[0])
	}
	consumer, ok := values[1].(common.Address)
	if !ok {
		return "", "", nil, fmt.Errorf("unpack referral payload: consumer is %T", values[1])
	}
	providers, ok := values[2].([]common.Address)
	if !ok {
		return "", "", nil, fmt.Errorf("unpack referral payload: providers is %T", values[2])
	}
	return lower(user), lower(consumer), lowerAll(providers), nil
}

func toAddress(field, s string) (common.Address, error) {
	if !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return common.Address{}, &errors.InvalidAddressError{Address: s, Field: field}
	}
	return common.HexToAddress(s), nil
}

func toAddresses(in []string) ([]common.Address, error) {
	out := make([]common.Address, len(in))
	for i, s := range in {
		a, err := toAddress(entities.ProviderField(i), s)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

func lower(a common.Address) string {
	return strings.ToLower(a.Hex())
}

func lowerAll(in []common.Address) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = lower(a)
	}
	return out
}
