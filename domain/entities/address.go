package entities

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AddressLength is the length of a hex-encoded account address including the 0x prefix.
const AddressLength = 42

// validate is a package-level singleton for better performance.
var validate = validator.New()

// IsValidAddress reports whether s is a 0x-prefixed, 40 hex digit account address.
// Hex digits are case-insensitive. The check never repairs its input.
func IsValidAddress(s string) bool {
	if len(s) != AddressLength {
		return false
	}
	return validate.Var(s, "eth_addr") == nil
}

// LowerAddress returns the canonical lowercase form of an already validated address.
func LowerAddress(s string) string {
	return strings.ToLower(s)
}

// ProviderField names the position of a provider in error messages.
func ProviderField(i int) string {
	return "providers[" + strconv.Itoa(i) + "]"
}
