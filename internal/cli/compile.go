package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rulesgen/internal/codegen"
	"github.com/roach88/rulesgen/internal/config"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Tests      string // conformance test document
	Output     string // resolver file; stdout when empty
	TestOutput string // test file; derived from Output when empty
	Package    string
	ParamsType string
	Resolver   string
	Strict     bool
}

// CompileReport summarizes one compile run.
type CompileReport struct {
	Package    string   `json:"package"`
	Parameters int      `json:"parameters"`
	Rules      int      `json:"rules"`
	TestCases  int      `json:"test_cases"`
	Files      []string `json:"files,omitempty"`
	Source     string   `json:"source,omitempty"` // set when nothing was written
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <ruleset>",
		Short: "Compile one ruleset to a Go resolver",
		Long: `Compile a ruleset document (.json, .yaml, .yml or .cue) to Go source.

Without --output the resolver source is printed. With --tests, conformance
cases are compiled to a Go test file next to the resolver.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "resolver output file")
	cmd.Flags().StringVar(&opts.Tests, "tests", "", "conformance test document")
	cmd.Flags().StringVar(&opts.TestOutput, "test-output", "", "test output file (default <output>_test.go)")
	cmd.Flags().StringVar(&opts.Package, "package", config.DefaultPackage, "Go package name of the generated files")
	cmd.Flags().StringVar(&opts.ParamsType, "params-type", "", "name of the generated parameter struct")
	cmd.Flags().StringVar(&opts.Resolver, "resolver", "", "name of the generated resolver function")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "lint the ruleset against its schema before parsing")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Tests != "" && opts.Output == "" {
		_ = formatter.Error(codegen.ErrCodeGeneric, "--tests requires --output", nil)
		return NewExitError(ExitCommandError, "--tests requires --output")
	}

	ruleset, err := codegen.LoadDocument(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	var tests []byte
	if opts.Tests != "" {
		if tests, err = codegen.LoadDocument(opts.Tests); err != nil {
			return formatter.Fail(ExitCommandError, err)
		}
	}
	formatter.VerboseLog("Compiling %s", path)

	res, err := codegen.Compile(ruleset, tests, codegen.Options{
		Package:    opts.Package,
		ParamsType: opts.ParamsType,
		Resolver:   opts.Resolver,
		Strict:     opts.Strict,
		Logger:     opts.logger(),
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}

	report := CompileReport{
		Package:    opts.Package,
		Parameters: len(res.RuleSet.Parameters),
		Rules:      len(res.RuleSet.Rules),
		TestCases:  len(res.Tests),
	}

	if opts.Output == "" {
		if formatter.Format == "json" {
			report.Source = string(res.Source)
			return formatter.Success(report)
		}
		_, err := formatter.Writer.Write(res.Source)
		return err
	}

	if err := codegen.WriteFile(opts.Output, res.Source); err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	report.Files = append(report.Files, opts.Output)
	if res.TestSource != nil {
		testOutput := opts.TestOutput
		if testOutput == "" {
			testOutput = strings.TrimSuffix(opts.Output, ".go") + "_test.go"
		}
		if err := codegen.WriteFile(testOutput, res.TestSource); err != nil {
			return formatter.Fail(ExitCommandError, err)
		}
		report.Files = append(report.Files, testOutput)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d parameter(s), %d rule(s), %d test case(s)\n",
		report.Parameters, report.Rules, report.TestCases)
	for _, f := range report.Files {
		fmt.Fprintf(formatter.Writer, "Wrote %s\n", f)
	}
	return nil
}
