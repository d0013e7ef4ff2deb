package cli

import (
	"github.com/spf13/cobra"

	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/wireformat"
)

// EncodeResult is the output of the suffix and tag commands.
type EncodeResult struct {
	Hex string `json:"hex"`
}

// Text implements textRenderer.
func (r EncodeResult) Text() string {
	return r.Hex
}

type encodeOptions struct {
	root      *RootOptions
	user      string
	consumer  string
	providers []string
	legacy    bool
	prefix    bool
}

func (o *encodeOptions) format() entities.FormatID {
	if o.legacy {
		return entities.FormatLegacy
	}
	return entities.FormatDefault
}

func (o *encodeOptions) render(hex string) EncodeResult {
	if o.prefix {
		hex = "0x" + hex
	}
	return EncodeResult{Hex: hex}
}

// NewSuffixCommand creates the suffix subcommand.
func NewSuffixCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &encodeOptions{root: rootOpts}

	cmd := &cobra.Command{
		Use:   "suffix",
		Short: "Build a calldata suffix",
		Long: `Build the attribution suffix appended to token transfer call data.

The suffix names the consumer and every provider and ends with its own
total length. Output is lowercase hex.`,
		Example: `  divvi suffix --consumer 0x5f0a... --provider 0x0423... --provider 0xc95e...
  divvi suffix --consumer 0x5f0a... --legacy --prefix`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuffix(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.consumer, "consumer", "", "consumer address (required)")
	cmd.Flags().StringArrayVarP(&opts.providers, "provider", "p", nil, "provider address, repeatable and ordered")
	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "use the legacy layout without a format byte")
	cmd.Flags().BoolVar(&opts.prefix, "prefix", false, "prepend 0x to the output")
	_ = cmd.MarkFlagRequired("consumer")

	return cmd
}

func runSuffix(opts *encodeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.root, cmd)
	formatter.VerboseLog("Encoding %s suffix for %d providers", opts.format(), len(opts.providers))

	hex, err := wireformat.EncodeDataSuffix(wireformat.DataSuffixRequest{
		Consumer:  opts.consumer,
		Providers: opts.providers,
		Format:    opts.format(),
	})
	if err != nil {
		return formatter.Error(ExitFailure, ErrCodeInvalidInput, err)
	}
	return formatter.Success(opts.render(hex))
}

// NewTagCommand creates the tag subcommand.
func NewTagCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &encodeOptions{root: rootOpts}

	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Build a referral tag",
		Long: `Build the referral tag embedded in call data or in a signed message.

The tag names the user, the consumer and every provider.`,
		Example: `  divvi tag --user 0x1234... --consumer 0x5f0a... --provider 0x0423...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTag(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.user, "user", "", "user address (required)")
	cmd.Flags().StringVar(&opts.consumer, "consumer", "", "consumer address (required)")
	cmd.Flags().StringArrayVarP(&opts.providers, "provider", "p", nil, "provider address, repeatable and ordered")
	cmd.Flags().BoolVar(&opts.prefix, "prefix", false, "prepend 0x to the output")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("consumer")

	return cmd
}

func runTag(opts *encodeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.root, cmd)
	formatter.VerboseLog("Encoding referral tag for %d providers", len(opts.providers))

	hex, err := wireformat.EncodeReferralTag(wireformat.ReferralTagRequest{
		User:      opts.user,
		Consumer:  opts.consumer,
		Providers: opts.providers,
	})
	if err != nil {
		return formatter.Error(ExitFailure, ErrCodeInvalidInput, err)
	}
	return formatter.Success(opts.render(hex))
}
