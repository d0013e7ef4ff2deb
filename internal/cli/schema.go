package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/divvi-xyz/divvi-sdk/go/application/schema"
	"github.com/divvi-xyz/divvi-sdk/go/application/validation"
	"github.com/divvi-xyz/divvi-sdk/go/domain/entities"
)

// SchemaCheckResult is the output of schema --validate.
type SchemaCheckResult struct {
	*entities.ValidationResult
}

// Text implements textRenderer.
func (r SchemaCheckResult) Text() string {
	if r.Valid {
		return "Valid"
	}
	s := "Invalid"
	for _, e := range r.Errors {
		s += fmt.Sprintf("\n  %s: %s", e.Field, e.Message)
	}
	return s
}

type schemaOptions struct {
	root     *RootOptions
	validate string
}

// NewSchemaCommand creates the schema subcommand.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &schemaOptions{root: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print or check the referral submission schema",
		Long: `Print the JSON Schema of the body sent by submit.

With --validate, check a JSON document against the schema instead.
Use "-" to read the document from stdin.`,
		Example: `  divvi schema
  echo '{"txHash":"0xab","chainId":1}' | divvi schema --validate -`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.validate, "validate", "", "JSON file to check, or - for stdin")

	return cmd
}

func runSchema(opts *schemaOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.root, cmd)

	if opts.validate == "" {
		doc, err := schema.SubmissionSchema()
		if err != nil {
			return formatter.Error(ExitFailure, ErrCodeSchema, err)
		}
		if opts.root.Format == "json" {
			return formatter.Success(json.RawMessage(doc))
		}
		return formatter.Success(string(doc))
	}

	body, err := readDocument(opts.validate, cmd)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeInvalidInput, err)
	}

	v, err := validation.NewSubmissionValidator()
	if err != nil {
		return formatter.Error(ExitFailure, ErrCodeSchema, err)
	}
	res := v.Check(body)
	if err := formatter.Success(SchemaCheckResult{res}); err != nil {
		return err
	}
	if !res.Valid {
		return reported(WrapExitError(ExitFailure, ErrCodeSchema, fmt.Errorf("%s does not match schema", opts.validate)))
	}
	return nil
}

func readDocument(path string, cmd *cobra.Command) ([]byte, error) {
	if path == "-" {
		s, err := readInput(path, cmd.InOrStdin())
		return []byte(s), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
