package codegen

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/roach88/rulesgen/internal/config"
	"github.com/roach88/rulesgen/internal/store"
)

// Manifest records generation runs. *store.Store implements it.
type Manifest interface {
	RecordRun(ctx context.Context, run store.Run) (store.Run, error)
	LastRun(ctx context.Context, service string) (store.Run, error)
}

// Outcome is the result of generating one service.
type Outcome struct {
	Service string   `json:"service"`
	Skipped bool     `json:"skipped,omitempty"`
	Files   []string `json:"files,omitempty"`
	Err     error    `json:"-"`
}

// Generator writes generated files for configured services.
type Generator struct {
	opts     Options
	manifest Manifest
	log      *slog.Logger
}

// NewGenerator creates a Generator. A nil manifest disables incremental
// skipping and run recording.
func NewGenerator(opts Options, manifest Manifest) *Generator {
	opts = opts.withDefaults()
	return &Generator{opts: opts, manifest: manifest, log: opts.Logger}
}

// Generate compiles one service and writes its files. Unless force is set,
// a service whose inputs and effective options hash to the last recorded
// run, and whose outputs all exist, is skipped.
func (g *Generator) Generate(ctx context.Context, svc config.Service, force bool) Outcome {
	out := Outcome{Service: svc.Name}
	log := g.log.With("service", svc.Name)

	ruleset, err := LoadDocument(svc.RuleSet)
	if err != nil {
		out.Err = err
		return out
	}
	var tests []byte
	if svc.Tests != "" {
		if tests, err = LoadDocument(svc.Tests); err != nil {
			out.Err = err
			return out
		}
	}

	inputHash, err := store.InputHash(ruleset, tests)
	if err != nil {
		out.Err = &LoadError{Code: ErrCodeDecodeFailed, Path: svc.RuleSet, Message: err.Error(), Err: err}
		return out
	}

	opts := g.opts
	if svc.Package != "" {
		opts.Package = svc.Package
	}
	opts.Logger = log
	optionsHash := serviceOptionsHash(svc, opts)

	if !force && g.upToDate(ctx, svc.Name, inputHash, optionsHash, plannedOutputs(svc, tests != nil)) {
		log.Debug("inputs unchanged, skipping")
		out.Skipped = true
		return out
	}

	res, err := Compile(ruleset, tests, opts)
	if err != nil {
		out.Err = err
		return out
	}

	files := map[string][]byte{svc.Output: res.Source}
	if res.TestSource != nil && svc.TestOutput != "" {
		files[svc.TestOutput] = res.TestSource
	}
	for _, path := range []string{svc.Output, svc.TestOutput} {
		data, ok := files[path]
		if !ok {
			continue
		}
		if err := WriteFile(path, data); err != nil {
			out.Err = err
			return out
		}
		out.Files = append(out.Files, path)
	}
	log.Info("generated", "files", len(out.Files))

	if g.manifest != nil {
		_, err := g.manifest.RecordRun(ctx, store.Run{
			Service:          svc.Name,
			InputHash:        inputHash,
			OutputHash:       store.OutputHash(files),
			OptionsHash:      optionsHash,
			Outputs:          out.Files,
			GeneratorVersion: Version,
		})
		if err != nil {
			out.Err = &LoadError{Code: ErrCodeManifest, Message: err.Error(), Err: err}
		}
	}
	return out
}

// GenerateAll generates every service in order. A failing service does not
// stop the others; its error is carried in its Outcome. Cancellation stops
// before the next service starts.
func (g *Generator) GenerateAll(ctx context.Context, services []config.Service, force bool) []Outcome {
	outcomes := make([]Outcome, 0, len(services))
	for _, svc := range services {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, Outcome{Service: svc.Name, Err: err})
			continue
		}
		o := g.Generate(ctx, svc, force)
		if o.Err != nil {
			g.log.Warn("generation failed", "service", svc.Name, "error", o.Err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// upToDate reports whether the last run for service used the same inputs,
// settings and generator version, and wrote exactly want, all still present.
func (g *Generator) upToDate(ctx context.Context, service, inputHash, optionsHash string, want []string) bool {
	if g.manifest == nil {
		return false
	}
	last, err := g.manifest.LastRun(ctx, service)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		g.log.Warn("manifest lookup failed, regenerating", "service", service, "error", err)
		return false
	}
	if last.InputHash != inputHash || last.OptionsHash != optionsHash || last.GeneratorVersion != Version {
		return false
	}
	if !slices.Equal(last.Outputs, want) {
		return false
	}
	for _, path := range last.Outputs {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

// plannedOutputs lists the files a run for svc writes, in write order.
func plannedOutputs(svc config.Service, hasTests bool) []string {
	outs := []string{svc.Output}
	if hasTests && svc.TestOutput != "" {
		outs = append(outs, svc.TestOutput)
	}
	return outs
}

// serviceOptionsHash covers every setting that changes what is written or
// where.
func serviceOptionsHash(svc config.Service, opts Options) string {
	return store.OptionsHash(map[string]string{
		"package":     opts.Package,
		"params_type": opts.ParamsType,
		"resolver":    opts.Resolver,
		"strict":      strconv.FormatBool(opts.Strict),
		"output":      svc.Output,
		"test_output": svc.TestOutput,
	})
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &LoadError{Code: ErrCodeWriteFailed, Path: path, Message: err.Error(), Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &LoadError{Code: ErrCodeWriteFailed, Path: path, Message: err.Error(), Err: err}
	}
	return nil
}

// Failed counts outcomes with errors.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// String summarizes an outcome for text output.
func (o Outcome) String() string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("%s: FAILED: %v", o.Service, o.Err)
	case o.Skipped:
		return fmt.Sprintf("%s: up to date", o.Service)
	default:
		return fmt.Sprintf("%s: wrote %d file(s)", o.Service, len(o.Files))
	}
}
