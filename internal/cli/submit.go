package cli

import (
	stdErrors "errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/divvi-xyz/divvi-sdk/go/application/config"
	"github.com/divvi-xyz/divvi-sdk/go/application/referral"
	"github.com/divvi-xyz/divvi-sdk/go/application/validation"
	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
	"github.com/divvi-xyz/divvi-sdk/go/infrastructure/nethttp"
	sdklog "github.com/divvi-xyz/divvi-sdk/go/log"
)

// SubmitResult is the output of a successful submit.
type SubmitResult struct {
	Body       string `json:"body,omitempty"`
	StatusText string `json:"status_text"`
	Status     int    `json:"status"`
}

// Text implements textRenderer.
func (r SubmitResult) Text() string {
	if r.Body == "" {
		return fmt.Sprintf("Submitted: %d %s", r.Status, r.StatusText)
	}
	return fmt.Sprintf("Submitted: %d %s\n%s", r.Status, r.StatusText, r.Body)
}

type submitOptions struct {
	root             *RootOptions
	lookupEnv        func(string) (string, bool)
	txHash           string
	message          string
	signature        string
	baseURL          string
	referralURL      string
	attributionURL   string
	chainID          uint64
	timeoutMs        int
	attributionEvent bool
	skipSchema       bool
}

// NewSubmitCommand creates the submit subcommand.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	return newSubmitCommand(&submitOptions{root: rootOpts})
}

func newSubmitCommand(opts *submitOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Report a referral to the tracking service",
		Long: `Report a broadcast transaction or a signed attribution message.

Exactly one of --tx-hash or --message with --signature must be given.
The request is made once. Exit code 3 means the server failed and the
same request may be retried.

Endpoints come from the config file, then DIVVI_BASE_URL and
DIVVI_ATTRIBUTION_EVENT_URL, then the flags below.`,
		Example: `  divvi submit --tx-hash 0xabc... --chain-id 42220
  divvi submit --message "$(cat msg.txt)" --signature 0x1234... --chain-id 1
  divvi submit --attribution-event --tx-hash 0xabc... --chain-id 8453`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.txHash, "tx-hash", "", "transaction hash")
	cmd.Flags().StringVar(&opts.message, "message", "", "signed message text")
	cmd.Flags().StringVar(&opts.signature, "signature", "", "signature over --message")
	cmd.Flags().Uint64Var(&opts.chainID, "chain-id", 0, "chain ID (required)")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "endpoint for this event only")
	cmd.Flags().StringVar(&opts.referralURL, "referral-url", "", "referral endpoint")
	cmd.Flags().StringVar(&opts.attributionURL, "attribution-event-url", "", "attribution event endpoint")
	cmd.Flags().IntVar(&opts.timeoutMs, "timeout-ms", 0, "request timeout in milliseconds")
	cmd.Flags().BoolVar(&opts.attributionEvent, "attribution-event", false, "report to the attribution event endpoint")
	cmd.Flags().BoolVar(&opts.skipSchema, "skip-schema", false, "do not check the body against the submission schema")
	cmd.MarkFlagsMutuallyExclusive("tx-hash", "message")
	cmd.MarkFlagsRequiredTogether("message", "signature")
	_ = cmd.MarkFlagRequired("chain-id")

	return cmd
}

func runSubmit(opts *submitOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.root, cmd)

	cfg, err := loadSubmitConfig(opts, cmd)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeConfig, err)
	}

	level := cfg.Level()
	if opts.root.Verbose {
		level = slog.LevelDebug
	}
	logger := sdklog.New(formatter.GetErrWriter(), sdklog.WithLevel(level))

	reporterOpts := []referral.Option{
		referral.WithHTTPClient(nethttp.New(nethttp.WithTimeout(cfg.Timeout()))),
		referral.WithReferralURL(cfg.ReferralURL),
		referral.WithAttributionEventURL(cfg.AttributionEventURL),
		referral.WithLogger(logger),
	}
	if !opts.skipSchema {
		v, err := validation.NewSubmissionValidator()
		if err != nil {
			return formatter.Error(ExitFailure, ErrCodeSchema, err)
		}
		reporterOpts = append(reporterOpts, referral.WithBodyValidator(v))
	}
	reporter := referral.NewReporter(reporterOpts...)

	ev := buildEvent(opts)
	formatter.VerboseLog("Submitting %s event for chain %d", ev.Kind(), ev.ChainID)

	submit := reporter.SubmitReferral
	if opts.attributionEvent {
		submit = reporter.ReportAttributionEvent
	}
	resp, err := submit(cmd.Context(), ev)
	if err != nil {
		return submitError(formatter, err)
	}

	return formatter.Success(SubmitResult{
		Status:     resp.StatusCode,
		StatusText: resp.StatusText,
		Body:       string(resp.Body),
	})
}

func loadSubmitConfig(opts *submitOptions, cmd *cobra.Command) (*config.Config, error) {
	overrides := config.Overrides{}
	if cmd.Flags().Changed("referral-url") {
		overrides["referral_url"] = opts.referralURL
	}
	if cmd.Flags().Changed("attribution-event-url") {
		overrides["attribution_event_url"] = opts.attributionURL
	}
	if cmd.Flags().Changed("timeout-ms") {
		overrides["timeout_ms"] = opts.timeoutMs
	}

	loadOpts := []config.LoadOption{config.WithOverrides(overrides)}
	if opts.lookupEnv != nil {
		loadOpts = append(loadOpts, config.WithLookupEnv(opts.lookupEnv))
	}
	return config.Load(opts.root.ConfigPath, loadOpts...)
}

func buildEvent(opts *submitOptions) entities.AttributionEvent {
	var ev entities.AttributionEvent
	if opts.message != "" {
		ev = entities.NewSignedMessageEvent(opts.message, opts.signature, opts.chainID)
	} else {
		ev = entities.NewTransactionEvent(opts.txHash, opts.chainID)
	}
	ev.BaseURL = opts.baseURL
	return ev
}

func submitError(formatter *OutputFormatter, err error) error {
	var (
		eventErr  *errors.EventError
		clientErr *errors.ClientError
	)
	switch {
	case stdErrors.As(err, &eventErr):
		return formatter.Error(ExitCommandError, ErrCodeInvalidInput, err)
	case stdErrors.As(err, &clientErr):
		return formatter.Error(ExitFailure, ErrCodeClient, err)
	case errors.IsRetryable(err):
		return formatter.Error(ExitRetryable, ErrCodeServer, err)
	default:
		return formatter.Error(ExitFailure, ErrCodeTransport, err)
	}
}
