package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rulesgen/internal/codegen"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Tests  string
	Strict bool
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool       `json:"valid"`
	Errors []CLIError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <ruleset>",
		Short: "Check a ruleset without writing output",
		Long: `Parse and compile a ruleset, and optionally its tests, without writing files.

Exits 1 when the documents are invalid and 2 when they cannot be read.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tests, "tests", "", "conformance test document")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "lint the ruleset against its schema before parsing")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ruleset, err := codegen.LoadDocument(path)
	if err != nil {
		return formatter.Fail(loadExitCode(err), err)
	}
	var tests []byte
	if opts.Tests != "" {
		if tests, err = codegen.LoadDocument(opts.Tests); err != nil {
			return formatter.Fail(loadExitCode(err), err)
		}
	}

	formatter.VerboseLog("Validating %s", path)
	res, err := codegen.Compile(ruleset, tests, codegen.Options{
		Strict: opts.Strict,
		Logger: opts.logger(),
	})
	if err != nil {
		return outputValidationFailure(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintf(formatter.Writer, "✓ %s is valid: %d parameter(s), %d rule(s), %d test case(s)\n",
		path, len(res.RuleSet.Parameters), len(res.RuleSet.Rules), len(res.Tests))
	return nil
}

// loadExitCode separates unreadable inputs (command errors) from documents
// that were read but are malformed (validation failures).
func loadExitCode(err error) int {
	var le *codegen.LoadError
	if errors.As(err, &le) {
		switch le.Code {
		case codegen.ErrCodeDecodeFailed, codegen.ErrCodeBuildFailed:
			return ExitFailure
		}
	}
	return ExitCommandError
}

func outputValidationFailure(formatter *OutputFormatter, err error) error {
	cliErr := CLIError{Code: codegen.Code(err), Message: err.Error()}

	if formatter.Format == "json" {
		_ = formatter.Error(cliErr.Code, cliErr.Message, ValidationResult{
			Valid:  false,
			Errors: []CLIError{cliErr},
		})
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", cliErr.Code, cliErr.Message)
	}
	return WrapExitError(ExitFailure, "validation failed", err)
}
