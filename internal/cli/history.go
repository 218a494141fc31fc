package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/rulesgen/internal/codegen"
	"github.com/roach88/rulesgen/internal/config"
	"github.com/roach88/rulesgen/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Config  string
	Service string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List recorded generation runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", config.DefaultFileName, "configuration file")
	cmd.Flags().StringVar(&opts.Service, "service", "", "only list runs of this service")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		_ = formatter.Error(codegen.ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if cfg.Manifest == "" {
		_ = formatter.Error(codegen.ErrCodeManifest, "no manifest configured", nil)
		return NewExitError(ExitCommandError, "no manifest configured")
	}
	// Opening would create an empty manifest.
	if _, err := os.Stat(cfg.Manifest); errors.Is(err, fs.ErrNotExist) {
		_ = formatter.Error(codegen.ErrCodeNotFound, fmt.Sprintf("manifest not found: %s", cfg.Manifest), nil)
		return WrapExitError(ExitCommandError, "manifest not found", err)
	}

	s, err := store.Open(cfg.Manifest)
	if err != nil {
		_ = formatter.Error(codegen.ErrCodeManifest, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open manifest", err)
	}
	defer s.Close()

	runs, err := s.Runs(cmd.Context(), opts.Service)
	if err != nil {
		_ = formatter.Error(codegen.ErrCodeManifest, err.Error(), nil)
		return WrapExitError(ExitCommandError, "read manifest", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded")
		return nil
	}
	rows := make([]table.Row, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, table.Row{r.Seq, r.Service, shortHash(r.InputHash), len(r.Outputs), r.GeneratorVersion})
	}
	formatter.Table(table.Row{"Seq", "Service", "Input", "Files", "Version"}, rows)
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
