package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/divvi-xyz/divvi-sdk/go/application/referral"
	"github.com/divvi-xyz/divvi-sdk/go/wireformat"
)

// MessageResult is the output of the message command.
type MessageResult struct {
	Message string `json:"message"`
}

// Text implements textRenderer.
func (r MessageResult) Text() string {
	return r.Message
}

type messageOptions struct {
	root      *RootOptions
	now       func() time.Time
	tag       string
	chainID   uint64
	timestamp int64
}

// NewMessageCommand creates the message subcommand.
func NewMessageCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &messageOptions{root: rootOpts, now: time.Now}

	cmd := &cobra.Command{
		Use:   "message",
		Short: "Build an attribution message to sign",
		Long: `Build the text a user signs to attribute an off-chain action.

The message embeds a referral tag, which is checked for well-formedness
before the message is printed.`,
		Example:       `  divvi message --tag 6decb85d01... --chain-id 42220`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMessage(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.tag, "tag", "", "referral tag hex (required)")
	cmd.Flags().Uint64Var(&opts.chainID, "chain-id", 0, "chain ID (required)")
	cmd.Flags().Int64Var(&opts.timestamp, "timestamp-ms", 0, "unix milliseconds to embed (default now)")
	_ = cmd.MarkFlagRequired("tag")
	_ = cmd.MarkFlagRequired("chain-id")

	return cmd
}

func runMessage(opts *messageOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.root, cmd)

	if _, err := wireformat.DecodeReferralTag(opts.tag); err != nil {
		return formatter.Error(ExitFailure, ErrCodeDecode, err)
	}

	at := opts.now()
	if opts.timestamp != 0 {
		at = time.UnixMilli(opts.timestamp)
	}
	return formatter.Success(MessageResult{
		Message: referral.BuildAttributionMessage(opts.tag, opts.chainID, at),
	})
}
