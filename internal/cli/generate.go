package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/rulesgen/internal/codegen"
	"github.com/roach88/rulesgen/internal/config"
	"github.com/roach88/rulesgen/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Config   string
	Force    bool
	Services []string // empty means all
}

// GenerateReport lists per-service outcomes.
type GenerateReport struct {
	Outcomes []OutcomeInfo `json:"outcomes"`
	Failed   int           `json:"failed"`
}

// OutcomeInfo is the JSON form of a codegen.Outcome.
type OutcomeInfo struct {
	Service string   `json:"service"`
	Status  string   `json:"status"` // "generated", "skipped" or "failed"
	Files   []string `json:"files,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate every service in a configuration file",
		Long: `Generate resolvers for the services listed in a rulesgen configuration.

Each run is recorded in the manifest database. A service whose ruleset and
tests are unchanged since its last run, and whose outputs still exist, is
skipped unless --force is given. A failing service does not stop the others.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", config.DefaultFileName, "configuration file")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "regenerate services whose inputs are unchanged")
	cmd.Flags().StringSliceVar(&opts.Services, "service", nil, "only generate the named service(s)")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		_ = formatter.Error(codegen.ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load config", err)
	}

	services := cfg.Services
	if len(opts.Services) > 0 {
		services = services[:0:0]
		for _, name := range opts.Services {
			svc, ok := cfg.Service(name)
			if !ok {
				_ = formatter.Error(codegen.ErrCodeNotFound, fmt.Sprintf("service %q is not configured", name), nil)
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown service %q", name))
			}
			services = append(services, svc)
		}
	}

	var manifest codegen.Manifest
	if cfg.Manifest != "" {
		s, err := openManifest(cfg.Manifest)
		if err != nil {
			return formatter.Fail(ExitCommandError, err)
		}
		defer s.Close()
		manifest = s
	}

	gen := codegen.NewGenerator(codegen.Options{
		Package: cfg.Package,
		Strict:  cfg.Strict,
		Logger:  opts.logger(),
	}, manifest)
	outcomes := gen.GenerateAll(cmd.Context(), services, opts.Force)
	failed := codegen.Failed(outcomes)

	if formatter.Format == "json" {
		report := GenerateReport{Outcomes: make([]OutcomeInfo, 0, len(outcomes)), Failed: failed}
		for _, o := range outcomes {
			report.Outcomes = append(report.Outcomes, outcomeInfo(o))
		}
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		for _, o := range outcomes {
			fmt.Fprintln(formatter.Writer, o)
			for _, f := range o.Files {
				formatter.VerboseLog("  %s", f)
			}
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d service(s) failed", failed, len(outcomes)))
	}
	return nil
}

func openManifest(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &codegen.LoadError{Code: codegen.ErrCodeManifest, Path: path, Message: err.Error(), Err: err}
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, &codegen.LoadError{Code: codegen.ErrCodeManifest, Path: path, Message: err.Error(), Err: err}
	}
	return s, nil
}

func outcomeInfo(o codegen.Outcome) OutcomeInfo {
	info := OutcomeInfo{Service: o.Service, Files: o.Files}
	switch {
	case o.Err != nil:
		info.Status = "failed"
		info.Error = o.Err.Error()
	case o.Skipped:
		info.Status = "skipped"
	default:
		info.Status = "generated"
	}
	return info
}
