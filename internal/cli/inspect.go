package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/rulesgen/internal/codegen"
	"github.com/roach88/rulesgen/internal/rules"
)

// InspectReport describes a parsed ruleset.
type InspectReport struct {
	Version    string          `json:"version"`
	Parameters []ParameterInfo `json:"parameters"`
	Rules      RuleStats       `json:"rules"`
	Functions  []string        `json:"functions"`
}

// ParameterInfo is one row of the parameter table.
type ParameterInfo struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Required      bool   `json:"required"`
	Default       any    `json:"default,omitempty"`
	BuiltIn       string `json:"built_in,omitempty"`
	Deprecated    bool   `json:"deprecated,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

// RuleStats counts rules by variant across the whole tree.
type RuleStats struct {
	Endpoint   int `json:"endpoint"`
	Error      int `json:"error"`
	Tree       int `json:"tree"`
	Conditions int `json:"conditions"`
	MaxDepth   int `json:"max_depth"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inspect <ruleset>",
		Short:         "Show a ruleset's parameters and rule shape",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	doc, err := codegen.LoadDocument(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	rs, err := codegen.Parse(doc, codegen.Options{Logger: opts.logger()})
	if err != nil {
		return formatter.Fail(ExitFailure, err)
	}

	report := inspect(rs)
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	rows := make([]table.Row, 0, len(report.Parameters))
	for _, p := range report.Parameters {
		def := ""
		if p.Default != nil {
			def = fmt.Sprint(p.Default)
		}
		name := p.Name
		if p.Deprecated {
			name += " (deprecated)"
		}
		rows = append(rows, table.Row{name, p.Type, p.Required, def, p.BuiltIn})
	}
	formatter.Table(table.Row{"Parameter", "Type", "Required", "Default", "Built-in"}, rows)

	s := report.Rules
	fmt.Fprintf(formatter.Writer, "\nRules: %d endpoint, %d error, %d tree (%d condition(s), depth %d)\n",
		s.Endpoint, s.Error, s.Tree, s.Conditions, s.MaxDepth)
	if len(report.Functions) > 0 {
		fmt.Fprintf(formatter.Writer, "Functions: %s\n", strings.Join(report.Functions, ", "))
	}
	return nil
}

func inspect(rs *rules.RuleSet) InspectReport {
	report := InspectReport{
		Version:    rs.Version,
		Parameters: make([]ParameterInfo, 0, len(rs.Parameters)),
		Functions:  []string{},
	}
	for _, p := range rs.Parameters {
		report.Parameters = append(report.Parameters, ParameterInfo{
			Name:          p.Name,
			Type:          p.Type.Kind.String(),
			Required:      p.Required,
			Default:       defaultValue(p.Type.Default),
			BuiltIn:       p.BuiltIn,
			Deprecated:    p.Deprecated != nil,
			Documentation: p.Documentation,
		})
	}

	fns := map[string]bool{}
	walkRules(rs.Rules, 1, &report.Rules, fns)
	for fn := range fns {
		report.Functions = append(report.Functions, fn)
	}
	slices.Sort(report.Functions)
	return report
}

func walkRules(rs []rules.Rule, depth int, stats *RuleStats, fns map[string]bool) {
	if len(rs) > 0 && depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}
	for _, r := range rs {
		for _, c := range r.Common().Conditions {
			stats.Conditions++
			fns[c.Fn] = true
			collectFuncs(c.Args, fns)
		}
		switch r := r.(type) {
		case *rules.EndpointRule:
			stats.Endpoint++
			collectFuncs([]rules.ArgValue{r.Endpoint.URL}, fns)
			for _, h := range r.Endpoint.Headers {
				for _, v := range h.Values {
					collectFuncs([]rules.ArgValue{v}, fns)
				}
			}
		case *rules.ErrorRule:
			stats.Error++
			collectFuncs([]rules.ArgValue{r.Message}, fns)
		case *rules.TreeRule:
			stats.Tree++
			walkRules(r.Rules, depth+1, stats, fns)
		}
	}
}

func collectFuncs(args []rules.ArgValue, fns map[string]bool) {
	for _, a := range args {
		switch a := a.(type) {
		case rules.FuncCall:
			fns[a.Fn] = true
			collectFuncs(a.Args, fns)
		case rules.Array:
			collectFuncs(a, fns)
		}
	}
}

func defaultValue(v rules.ArgValue) any {
	switch v := v.(type) {
	case rules.Bool:
		return bool(v)
	case rules.String:
		return string(v)
	case rules.Array:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(rules.String); ok {
				out = append(out, string(s))
			}
		}
		return out
	default:
		return nil
	}
}
