// Package divvi tags transactions and signed messages with referral
// attribution data and reports them to the Divvi tracking service.
//
// A typical transaction flow:
//
//	suffix, err := divvi.GetDataSuffix(consumer, providers)
//	// append "0x"+suffix to the call data, sign, broadcast
//	_, err = divvi.SubmitReferral(ctx, divvi.NewTransactionEvent(txHash, chainID))
//
// Tags are plain lowercase hex without a 0x prefix. Callers add the prefix
// when embedding them.
package divvi

import (
	"context"

	"github.com/divvi-xyz/divvi-sdk/go/application/referral"
	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
	"github.com/divvi-xyz/divvi-sdk/go/domain/ports"
	"github.com/divvi-xyz/divvi-sdk/go/wireformat"
)

// FormatID names the wire layout of a tag.
type FormatID = entities.FormatID

// Registered formats.
const (
	FormatDefault = entities.FormatDefault
	FormatLegacy  = entities.FormatLegacy
)

// AttributionEvent is the record sent to the tracking service after broadcast.
type AttributionEvent = entities.AttributionEvent

// Response is the raw tracking service response.
type Response = ports.HTTPResponse

// NewTransactionEvent builds an event for a broadcast transaction.
func NewTransactionEvent(txHash string, chainID uint64) AttributionEvent {
	return entities.NewTransactionEvent(txHash, chainID)
}

// NewSignedMessageEvent builds an event for a signed message.
func NewSignedMessageEvent(message, signature string, chainID uint64) AttributionEvent {
	return entities.NewSignedMessageEvent(message, signature, chainID)
}

// IsValidAddress reports whether s is 0x followed by 40 hex digits.
func IsValidAddress(s string) bool {
	return entities.IsValidAddress(s)
}

// NormalizeAddress validates s and returns its lowercase form.
func NormalizeAddress(s string) (string, error) {
	if !entities.IsValidAddress(s) {
		return "", &errors.InvalidAddressError{Address: s}
	}
	return entities.LowerAddress(s), nil
}

// TagOption configures GetDataSuffix and GetReferralTag.
type TagOption func(*tagConfig)

type tagConfig struct {
	format FormatID
}

// WithFormat selects the tag layout. The default is FormatDefault.
func WithFormat(f FormatID) TagOption {
	return func(c *tagConfig) {
		c.format = f
	}
}

func newTagConfig(opts []TagOption) tagConfig {
	cfg := tagConfig{format: FormatDefault}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// GetDataSuffix returns the calldata suffix naming consumer and providers.
func GetDataSuffix(consumer string, providers []string, opts ...TagOption) (string, error) {
	cfg := newTagConfig(opts)
	return wireformat.EncodeDataSuffix(wireformat.DataSuffixRequest{
		Consumer:  consumer,
		Providers: providers,
		Format:    cfg.format,
	})
}

// GetReferralTag returns the referral tag naming user, consumer and providers.
// It may be appended to call data or embedded in a signed message.
func GetReferralTag(user, consumer string, providers []string, opts ...TagOption) (string, error) {
	cfg := newTagConfig(opts)
	return wireformat.EncodeReferralTag(wireformat.ReferralTagRequest{
		User:      user,
		Consumer:  consumer,
		Providers: providers,
		Format:    cfg.format,
	})
}

// SubmitReferral posts ev to the referral endpoint once. See
// referral.Reporter.SubmitReferral for outcome classification.
func SubmitReferral(ctx context.Context, ev AttributionEvent, opts ...referral.Option) (*Response, error) {
	return referral.NewReporter(opts...).SubmitReferral(ctx, ev)
}

// ReportAttributionEvent posts ev to the attribution event endpoint once.
func ReportAttributionEvent(ctx context.Context, ev AttributionEvent, opts ...referral.Option) (*Response, error) {
	return referral.NewReporter(opts...).ReportAttributionEvent(ctx, ev)
}
