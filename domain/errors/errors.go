// Package errors provides domain-specific error types for the SDK.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is implemented by error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// Decode failure reasons. WireFormatError wraps exactly one of these.
var (
	ErrInvalidHex       = stdErrors.New("invalid hex encoding")
	ErrTagTooShort      = stdErrors.New("data too short to hold a tag")
	ErrMagicMismatch    = stdErrors.New("magic prefix mismatch")
	ErrUnknownFormat    = stdErrors.New("unknown format byte")
	ErrLengthMismatch   = stdErrors.New("declared length does not match data")
	ErrMalformedPayload = stdErrors.New("malformed ABI payload")
	ErrTagNotFound      = stdErrors.New("no attribution tag found")
)

// ToErrorDetail converts a Go error to our structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// IsRetryable reports whether the caller may repeat the request unchanged.
func IsRetryable(err error) bool {
	var rse *RetryableServerError
	return stdErrors.As(err, &rse)
}

// InvalidAddressError is raised before any bytes are produced when an
// address is not 0x followed by 40 hex digits.
type InvalidAddressError struct {
	Address string
	Field   string // Optional: "user", "consumer", "providers[2]"
}

func (e *InvalidAddressError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid ethereum address for %s: %q", e.Field, e.Address)
	}
	return fmt.Sprintf("invalid ethereum address: %q", e.Address)
}

// ToErrorDetail implements DetailedError.
func (e *InvalidAddressError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("validation", e.Error()).
		WithCode("invalid_address").
		WithDetails(map[string]any{"address": e.Address, "field": e.Field})
}

// UnsupportedFormatError is returned when a caller asks for a format the
// requested layout cannot carry.
type UnsupportedFormatError struct {
	Format entities.FormatID
	Layout string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("format %q is not supported by the %s layout", e.Format, e.Layout)
}

// ToErrorDetail implements DetailedError.
func (e *UnsupportedFormatError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("validation", e.Error()).WithCode("unsupported_format")
}

// PayloadTooLargeError is returned when the payload cannot be described by
// the layout's length field.
type PayloadTooLargeError struct {
	Size  uint64
	Limit uint64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload of %d bytes exceeds the %d byte limit of the length field", e.Size, e.Limit)
}

// ToErrorDetail implements DetailedError.
func (e *PayloadTooLargeError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("validation", e.Error()).WithCode("payload_too_large")
}

// WireFormatError represents a wire format encoding/decoding error.
type WireFormatError struct {
	Err       error
	Operation string
	Type      string
}

func (e *WireFormatError) Error() string {
	return fmt.Sprintf("wire format %s failed for %s: %v", e.Operation, e.Type, e.Err)
}

func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *WireFormatError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("wire_format", e.Error()).WithCode(e.Operation)
}

// EventError is returned when an attribution event is rejected before sending.
type EventError struct {
	Err error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("invalid attribution event: %v", e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *EventError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("validation", e.Error()).WithCode("invalid_event")
}

// ClientError is returned for 4xx responses. The request must change before
// it is sent again.
type ClientError struct {
	StatusText string
	Body       string
	StatusCode int
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("Client error: %d %s - %s", e.StatusCode, e.StatusText, e.Body)
}

// ToErrorDetail implements DetailedError.
func (e *ClientError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("client", e.Error()).
		WithCode(fmt.Sprintf("http_%d", e.StatusCode)).
		WithDetails(map[string]any{"body": e.Body})
}

// RetryableServerError is returned for any other non-2xx response. The caller
// should retry; the SDK never does.
type RetryableServerError struct {
	StatusText string
	StatusCode int
}

func (e *RetryableServerError) Error() string {
	return fmt.Sprintf("Server error: %s. Please retry the request.", e.StatusText)
}

// ToErrorDetail implements DetailedError.
func (e *RetryableServerError) ToErrorDetail() *entities.ErrorDetail {
	d := entities.NewErrorDetail("server", e.Error()).WithCode(fmt.Sprintf("http_%d", e.StatusCode))
	d.Retryable = true
	return d
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}
