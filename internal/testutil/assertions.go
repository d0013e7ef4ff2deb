// Package testutil provides common test utilities and assertions for SDK tests
package testutil

import (
	"encoding/json"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
)

// Well known addresses used across tests.
const (
	Consumer  = "0x1234567890123456789012345678901234567890"
	Provider1 = "0x0987654321098765432109876543210987654321"
	Provider2 = "0xBa9655677f4E42DD289F5b7888170bC0c7dA8Cdc"
	User      = "0x544402f32c46a5c120e89421f15c8a21f77d6087"
	TxHash    = "0x4e9f1cd5a7f0a8e2bd0e6c37c7e2c6d1b1f7c2c5d2d3f4a4b5c6d7e8f9a0b1c2"
	Signature = "0x" +
		"8f3a2b1c0d9e8f7a6b5c4d3e2f1a0b9c8d7e6f5a4b3c2d1e0f9a8b7c6d5e4f3a" +
		"2b1c0d9e8f7a6b5c4d3e2f1a0b9c8d7e6f5a4b3c2d1e0f9a8b7c6d5e4f3a2b1c1b"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// AssertInvalidAddress asserts that err is an InvalidAddressError for field.
func AssertInvalidAddress(t *testing.T, err error, field string) {
	t.Helper()

	var addrErr *errors.InvalidAddressError
	require.True(t, stdErrors.As(err, &addrErr), "want InvalidAddressError, got %v", err)
	assert.Equal(t, field, addrErr.Field)
}

// AssertWireFormatError asserts that err is a WireFormatError wrapping reason.
func AssertWireFormatError(t *testing.T, err error, reason error) {
	t.Helper()

	var wfErr *errors.WireFormatError
	require.True(t, stdErrors.As(err, &wfErr), "want WireFormatError, got %v", err)
	assert.ErrorIs(t, err, reason)
}
