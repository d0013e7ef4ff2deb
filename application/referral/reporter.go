// Package referral reports attribution events to the tracking service.
//
// Each call performs exactly one POST and classifies the outcome. Retrying is
// left to the caller, guided by errors.IsRetryable.
package referral

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
	"github.com/divvi-xyz/divvi-sdk/go/domain/ports"
	"github.com/divvi-xyz/divvi-sdk/go/infrastructure/nethttp"
	sdklog "github.com/divvi-xyz/divvi-sdk/go/log"
	"github.com/divvi-xyz/divvi-sdk/go/wireformat"
)

const (
	// DefaultReferralURL receives transaction and signed message referrals.
	DefaultReferralURL = "https://api.divvi.xyz/submitReferral"

	// DefaultAttributionEventURL receives attribution events.
	DefaultAttributionEventURL = "https://api.divvi.xyz/attributionEvents"

	contentTypeJSON = "application/json"
)

// Option configures a Reporter.
type Option func(*reporterConfig)

type reporterConfig struct {
	client              ports.HTTPClient
	validator           ports.BodyValidator
	logger              *slog.Logger
	referralURL         string
	attributionEventURL string
}

func defaultReporterConfig() reporterConfig {
	return reporterConfig{
		referralURL:         DefaultReferralURL,
		attributionEventURL: DefaultAttributionEventURL,
	}
}

// WithHTTPClient sets the transport. The default is a nethttp.Client with no timeout.
func WithHTTPClient(c ports.HTTPClient) Option {
	return func(cfg *reporterConfig) {
		cfg.client = c
	}
}

// WithReferralURL overrides the referral endpoint.
func WithReferralURL(url string) Option {
	return func(cfg *reporterConfig) {
		if url != "" {
			cfg.referralURL = url
		}
	}
}

// WithAttributionEventURL overrides the attribution event endpoint.
func WithAttributionEventURL(url string) Option {
	return func(cfg *reporterConfig) {
		if url != "" {
			cfg.attributionEventURL = url
		}
	}
}

// WithBodyValidator checks every body before it is sent. A body that fails
// validation is reported as *errors.EventError and no request is made.
func WithBodyValidator(v ports.BodyValidator) Option {
	return func(cfg *reporterConfig) {
		cfg.validator = v
	}
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *reporterConfig) {
		cfg.logger = l
	}
}

// Reporter submits attribution events. It holds no mutable state and is
// safe for concurrent use.
type Reporter struct {
	client              ports.HTTPClient
	validator           ports.BodyValidator
	logger              *slog.Logger
	referralURL         string
	attributionEventURL string
}

// NewReporter creates a Reporter.
func NewReporter(opts ...Option) *Reporter {
	cfg := defaultReporterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.client == nil {
		cfg.client = nethttp.New()
	}
	if cfg.logger == nil {
		cfg.logger = sdklog.Discard()
	}
	return &Reporter{
		client:              cfg.client,
		validator:           cfg.validator,
		logger:              cfg.logger,
		referralURL:         cfg.referralURL,
		attributionEventURL: cfg.attributionEventURL,
	}
}

// SubmitReferral sends the event to the referral endpoint, or to
// event.BaseURL when set.
//
// A 2xx response is returned as is. A 4xx response yields *errors.ClientError
// and any other status yields *errors.RetryableServerError. Transport
// failures are returned unchanged.
func (r *Reporter) SubmitReferral(ctx context.Context, ev entities.AttributionEvent) (*ports.HTTPResponse, error) {
	return r.post(ctx, r.referralURL, ev)
}

// ReportAttributionEvent sends the event to the attribution event endpoint,
// or to event.BaseURL when set. Outcomes are classified as in SubmitReferral.
func (r *Reporter) ReportAttributionEvent(ctx context.Context, ev entities.AttributionEvent) (*ports.HTTPResponse, error) {
	return r.post(ctx, r.attributionEventURL, ev)
}

func (r *Reporter) post(ctx context.Context, defaultURL string, ev entities.AttributionEvent) (*ports.HTTPResponse, error) {
	if err := ev.Validate(); err != nil {
		return nil, &errors.EventError{Err: err}
	}

	url := defaultURL
	if ev.BaseURL != "" {
		url = ev.BaseURL
	}

	body, err := json.Marshal(wireformat.NewReferralSubmission(ev))
	if err != nil {
		return nil, fmt.Errorf("marshal referral submission: %w", err)
	}
	if r.validator != nil {
		if err := r.validator.Validate(body); err != nil {
			return nil, &errors.EventError{Err: err}
		}
	}

	r.logger.DebugContext(ctx, "posting attribution event",
		"url", url,
		"kind", string(ev.Kind()),
		"chain_id", ev.ChainID,
	)

	resp, err := r.client.Post(ctx, url, contentTypeJSON, body)
	if err != nil {
		return nil, err
	}
	return r.classify(ctx, url, resp)
}

func (r *Reporter) classify(ctx context.Context, url string, resp *ports.HTTPResponse) (*ports.HTTPResponse, error) {
	if resp.OK() {
		return resp, nil
	}

	r.logger.WarnContext(ctx, "attribution event rejected",
		"url", url,
		"status", resp.StatusCode,
		"status_text", resp.StatusText,
	)

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, &errors.ClientError{
			StatusCode: resp.StatusCode,
			StatusText: resp.StatusText,
			Body:       string(resp.Body),
		}
	}
	return nil, &errors.RetryableServerError{
		StatusCode: resp.StatusCode,
		StatusText: resp.StatusText,
	}
}
