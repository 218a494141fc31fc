// Package codegen turns ruleset documents into Go files.
//
// Compile is the single-ruleset path: lint (optional), parse, lower, and
// render. Generator adds the file system and the manifest on top of it for
// batch runs over a configuration.
package codegen

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/rulesgen/internal/capability"
	"github.com/roach88/rulesgen/internal/jsonast"
	"github.com/roach88/rulesgen/internal/resolution"
	"github.com/roach88/rulesgen/internal/rules"
)

// Version is the generator version recorded in the manifest.
const Version = "0.1.0"

// generatedHeader marks output files as generated.
const generatedHeader = "Code generated by rulesgen. DO NOT EDIT."

// Options configures one compilation.
type Options struct {
	// Package is the Go package name of the generated files.
	Package string
	// ParamsType and Resolver name the generated declarations; empty
	// means the resolution defaults.
	ParamsType string
	Resolver   string
	// Strict lints documents against the ruleset schema before parsing.
	Strict bool
	// Capabilities defaults to capability.Standard().
	Capabilities *capability.Registry
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Package == "" {
		o.Package = "endpoints"
	}
	if o.Capabilities == nil {
		o.Capabilities = capability.Standard()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Result is a compiled ruleset.
type Result struct {
	RuleSet *rules.RuleSet
	Tests   []rules.TestCase
	// Source is the params struct and resolver.
	Source []byte
	// TestSource is nil when no test document was given.
	TestSource []byte
}

// Parse lints (when strict) and parses a ruleset document.
func Parse(doc []byte, opts Options) (*rules.RuleSet, error) {
	opts = opts.withDefaults()
	if opts.Strict {
		if err := rules.Lint(doc); err != nil {
			return nil, &LoadError{Code: ErrCodeLint, Message: err.Error(), Err: err}
		}
	}
	return rules.NewParser(opts.Logger).ParseRuleSet(jsonast.NewBytesReader(doc))
}

// ParseTests parses a conformance test document.
func ParseTests(doc []byte, opts Options) ([]rules.TestCase, error) {
	opts = opts.withDefaults()
	return rules.NewParser(opts.Logger).ParseTests(jsonast.NewBytesReader(doc))
}

// Compile parses and lowers a ruleset document and, when tests is not
// nil, its conformance tests.
func Compile(ruleset, tests []byte, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	rs, err := Parse(ruleset, opts)
	if err != nil {
		return nil, fmt.Errorf("ruleset: %w", err)
	}
	res := &Result{RuleSet: rs}

	if tests != nil {
		res.Tests, err = ParseTests(tests, opts)
		if err != nil {
			return nil, fmt.Errorf("tests: %w", err)
		}
	}

	c, err := resolution.New(opts.Capabilities, rs.Parameters, resolution.Options{
		ParamsType: opts.ParamsType,
		Resolver:   opts.Resolver,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	resolver, err := c.GenerateResolver(rs.Rules)
	if err != nil {
		return nil, err
	}

	f := newFile(opts.Package)
	f.Add(c.GenerateParamsStruct())
	f.Line()
	f.Add(resolver)
	if res.Source, err = render(f); err != nil {
		return nil, err
	}

	if tests != nil {
		funcs, err := c.GenerateTests(res.Tests)
		if err != nil {
			return nil, err
		}
		tf := newFile(opts.Package)
		for _, fn := range funcs {
			tf.Add(fn)
			tf.Line()
		}
		if res.TestSource, err = render(tf); err != nil {
			return nil, err
		}
	}
	opts.Logger.Debug("compiled ruleset",
		"parameters", len(rs.Parameters),
		"rules", len(rs.Rules),
		"tests", len(res.Tests))
	return res, nil
}

func newFile(pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment(generatedHeader)
	f.ImportName(capability.RuntimePath, "rulesrt")
	return f
}

func render(f *jen.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
