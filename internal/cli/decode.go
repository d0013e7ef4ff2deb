package cli

import (
	stdErrors "errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
	"github.com/divvi-xyz/divvi-sdk/go/infrastructure/ethabi"
	"github.com/divvi-xyz/divvi-sdk/go/wireformat"
)

// Decode modes.
const (
	DecodeAuto     = "auto"
	DecodeSuffix   = "suffix"
	DecodeTag      = "tag"
	DecodeCalldata = "calldata"
	DecodeMessage  = "message"
)

// ValidDecodeModes defines the allowed values of --as.
var ValidDecodeModes = []string{DecodeAuto, DecodeSuffix, DecodeTag, DecodeCalldata, DecodeMessage}

// DecodeResult is the output of the decode command. Addresses are checksummed.
type DecodeResult struct {
	Verified  *bool             `json:"verified,omitempty"`
	Offset    *int              `json:"offset,omitempty"`
	Kind      string            `json:"kind"`
	Format    entities.FormatID `json:"format"`
	User      string            `json:"user,omitempty"`
	Consumer  string            `json:"consumer"`
	Calldata  string            `json:"calldata,omitempty"`
	Providers []string          `json:"providers"`
}

// Text implements textRenderer.
func (r DecodeResult) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Kind:     %s\n", r.Kind)
	fmt.Fprintf(&b, "Format:   %s\n", r.Format)
	if r.User != "" {
		fmt.Fprintf(&b, "User:     %s\n", r.User)
	}
	fmt.Fprintf(&b, "Consumer: %s\n", r.Consumer)
	for i, p := range r.Providers {
		fmt.Fprintf(&b, "Provider: [%d] %s\n", i, p)
	}
	if r.Offset != nil {
		fmt.Fprintf(&b, "Offset:   %d\n", *r.Offset)
	}
	if r.Calldata != "" {
		fmt.Fprintf(&b, "Calldata: %s\n", r.Calldata)
	}
	if r.Verified != nil {
		fmt.Fprintf(&b, "Verified: %t\n", *r.Verified)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

type decodeOptions struct {
	root   *RootOptions
	mode   string
	verify bool
}

// NewDecodeCommand creates the decode subcommand.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &decodeOptions{root: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode <hex|->",
		Short: "Decode a calldata suffix or referral tag",
		Long: `Decode an attribution tag and print the parties it names.

Input is a hex string, or "-" to read from stdin. With --as auto the
input is tried as a complete suffix, a complete referral tag, call data
ending with a suffix and finally text containing a referral tag.

--verify re-encodes the decoded parties with go-ethereum's ABI packer
and checks the result against the input bytes.`,
		Example: `  divvi decode 6decb85d01...
  divvi decode --as message --verify - < message.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "as", DecodeAuto, "input kind (auto|suffix|tag|calldata|message)")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "cross-check against go-ethereum's ABI encoder")

	return cmd
}

func runDecode(opts *decodeOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.root, cmd)

	if !slices.Contains(ValidDecodeModes, opts.mode) {
		return formatter.Error(ExitCommandError, ErrCodeInvalidInput,
			fmt.Errorf("invalid --as %q: must be one of %v", opts.mode, ValidDecodeModes))
	}

	input, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeInvalidInput, err)
	}
	input = strings.TrimSpace(input)

	modes := []string{opts.mode}
	if opts.mode == DecodeAuto {
		modes = []string{DecodeSuffix, DecodeTag, DecodeCalldata, DecodeMessage}
	}

	var lastErr error
	for _, mode := range modes {
		formatter.VerboseLog("Trying %s", mode)
		res, err := decodeAs(mode, input, opts.verify)
		if err == nil {
			if res.Verified != nil && !*res.Verified {
				_ = formatter.Success(res)
				return reported(WrapExitError(ExitFailure, ErrCodeDecode,
					stdErrors.New("decoded tag does not match the reference encoding")))
			}
			return formatter.Success(res)
		}
		lastErr = err
	}
	return formatter.Error(ExitFailure, ErrCodeDecode, lastErr)
}

func decodeAs(mode, input string, verify bool) (DecodeResult, error) {
	switch mode {
	case DecodeSuffix:
		s, err := wireformat.DecodeDataSuffix(input)
		if err != nil {
			return DecodeResult{}, err
		}
		res := suffixResult(s)
		if verify {
			res.Verified = verifySuffix(s, normalizeHex(input))
		}
		return res, nil

	case DecodeCalldata:
		s, rest, err := wireformat.ExtractDataSuffix(input)
		if err != nil {
			return DecodeResult{}, err
		}
		res := suffixResult(s)
		res.Calldata = rest
		if verify {
			res.Verified = verifySuffix(s, normalizeHex(input))
		}
		return res, nil

	case DecodeTag:
		tag, err := wireformat.DecodeReferralTag(input)
		if err != nil {
			return DecodeResult{}, err
		}
		res := tagResult(tag)
		if verify {
			res.Verified = verifyTag(tag, normalizeHex(input))
		}
		return res, nil

	case DecodeMessage:
		tag, idx, err := wireformat.FindReferralTag(input)
		if err != nil {
			return DecodeResult{}, err
		}
		res := tagResult(tag)
		res.Offset = &idx
		if verify {
			res.Verified = verifyTag(tag, strings.ToLower(input[idx:]))
		}
		return res, nil
	}
	return DecodeResult{}, fmt.Errorf("unknown decode mode %q", mode)
}

func suffixResult(s *wireformat.DataSuffix) DecodeResult {
	return DecodeResult{
		Kind:      "data_suffix",
		Format:    s.Format,
		Consumer:  ethabi.Checksum(s.Consumer),
		Providers: checksumAll(s.Providers),
	}
}

func tagResult(t *wireformat.ReferralTag) DecodeResult {
	return DecodeResult{
		Kind:      "referral_tag",
		Format:    t.Format,
		User:      ethabi.Checksum(t.User),
		Consumer:  ethabi.Checksum(t.Consumer),
		Providers: checksumAll(t.Providers),
	}
}

// verifySuffix reports whether data ends with the reference suffix encoding.
func verifySuffix(s *wireformat.DataSuffix, data string) *bool {
	ref, err := ethabi.DataSuffix(s.Consumer, s.Providers, s.Format)
	ok := err == nil && strings.HasSuffix(data, ref)
	return &ok
}

// verifyTag reports whether data starts with the reference tag encoding.
func verifyTag(t *wireformat.ReferralTag, data string) *bool {
	ref, err := ethabi.ReferralTag(t.User, t.Consumer, t.Providers, t.Format)
	ok := err == nil && strings.HasPrefix(data, ref)
	return &ok
}

func checksumAll(addrs []string) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = ethabi.Checksum(a)
	}
	return out
}

func normalizeHex(s string) string {
	s = strings.ToLower(s)
	return strings.TrimPrefix(s, "0x")
}

// readInput returns arg itself, or all of stdin when arg is "-".
func readInput(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
