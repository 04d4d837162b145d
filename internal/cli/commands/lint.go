package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapuast/internal/cli/config"
	"github.com/leapstack-labs/leapuast/internal/cli/output"
	"github.com/leapstack-labs/leapuast/pkg/lint"
	_ "github.com/leapstack-labs/leapuast/pkg/lint/rules" // register built-in rules
	"github.com/leapstack-labs/leapuast/pkg/lint/script"
)

// ErrLintIssues is returned when lint reports diagnostics at or above the
// severity threshold.
var ErrLintIssues = errors.New("lint issues found")

// LintOptions holds options for the lint command.
type LintOptions struct {
	Paths    []string // Files or directories
	Format   string   // Output format: text, json, yaml
	Disable  []string // Rule IDs to disable
	Severity string   // Minimum severity: error, warning, info, hint
	Rules    []string // Run only specific rules
	Scripts  []string // Additional Starlark rule files
	Watch    bool     // Re-run on file changes
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [path]...",
		Short: "Run inspections on Kotlin sources",
		Long: `Convert Kotlin sources to the unified tree and run inspections on them.

Built-in rules cover unsupported constructs, unresolved references,
constant conditions, empty catch blocks and style conventions. Starlark
scripts add project rules. Rules can be configured in leapuast.yaml.`,
		Example: `  # Lint the current project
  leapuast lint

  # Lint a directory, reporting everything down to hints
  leapuast lint src --severity hint

  # Disable specific rules
  leapuast lint --disable CV01,CV02

  # Run a custom Starlark rule and keep watching for changes
  leapuast lint --script rules/no_temp.star --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Paths = args
			return runLint(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, yaml")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringVar(&opts.Severity, "severity", "warning", "Minimum severity: error, warning, info, hint")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run only specific rules")
	cmd.Flags().StringSliceVar(&opts.Scripts, "script", nil, "Starlark rule files")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when sources change")

	return cmd
}

func runLint(cmd *cobra.Command, opts *LintOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.RendererFor(cmd, opts.Format)

	threshold, ok := lint.ParseSeverity(opts.Severity)
	if !ok {
		return fmt.Errorf("invalid severity %q (want error, warning, info or hint)", opts.Severity)
	}
	analyzer, err := buildAnalyzer(cc, opts)
	if err != nil {
		return err
	}

	run := func(ctx context.Context) error {
		results, err := lintPaths(ctx, cc, analyzer, opts.Paths)
		if err != nil {
			return err
		}
		results = filterBySeverity(results, threshold)
		if renderLintResults(r, results) {
			return ErrLintIssues
		}
		return nil
	}

	if opts.Watch {
		first := true
		return watch(cmd.Context(), cc.Logger, opts.Paths, func(ctx context.Context) {
			if !first {
				// Edited sources and scripts are picked up by a fresh engine
				// and analyzer.
				cc = cc.withFreshEngine()
				if analyzer, err = buildAnalyzer(cc, opts); err != nil {
					cc.Logger.Error("reload rules failed", slog.String("error", err.Error()))
					return
				}
			}
			first = false
			if err := run(ctx); err != nil && !errors.Is(err, ErrLintIssues) {
				cc.Logger.Error("lint failed", slog.String("error", err.Error()))
			}
		})
	}
	return run(cmd.Context())
}

// buildAnalyzer merges project and CLI settings into an analyzer. CLI flags
// take precedence over leapuast.yaml.
func buildAnalyzer(cc *CommandContext, opts *LintOptions) (*lint.Analyzer, error) {
	lintCfg, err := buildLintConfig(cc.Cfg, opts)
	if err != nil {
		return nil, err
	}

	var paths []string
	if cc.Cfg.Lint != nil {
		paths = append(paths, cc.Cfg.Lint.Scripts...)
	}
	paths = append(paths, opts.Scripts...)

	var scripts []lint.Rule
	for _, path := range paths {
		rule, err := script.Load(path, script.WithLogger(cc.Logger))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, rule)
	}

	return lint.NewAnalyzer(lintCfg,
		lint.WithRules(scripts...),
		lint.WithOnly(opts.Rules...),
		lint.WithLogger(cc.Logger),
	), nil
}

func buildLintConfig(cfg *config.Config, opts *LintOptions) (*lint.Config, error) {
	var projectLint *config.LintConfig
	if cfg != nil {
		projectLint = cfg.Lint
	}
	lintCfg, err := projectLint.ToLintConfig()
	if err != nil {
		return nil, fmt.Errorf("lint configuration: %w", err)
	}
	for _, id := range opts.Disable {
		lintCfg.Disable(strings.TrimSpace(id))
	}
	return lintCfg, nil
}

// lintFileResult holds lint results for a single file.
type lintFileResult struct {
	Path        string            `json:"path" yaml:"path"`
	Diagnostics []lint.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

func lintPaths(ctx context.Context, cc *CommandContext, analyzer *lint.Analyzer, paths []string) ([]lintFileResult, error) {
	files, err := discoverSources(paths, cc.Cfg.Include, cc.Cfg.Exclude)
	if err != nil {
		return nil, err
	}
	srcs, err := cc.loadSources(ctx, files)
	if err != nil {
		return nil, err
	}

	results := make([]lintFileResult, len(srcs))
	tc := cc.ToolContext()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cc.Cfg.Workers, 1))
	for i, src := range srcs {
		g.Go(func() error {
			results[i] = lintFileResult{
				Path:        src.Path,
				Diagnostics: analyzer.Analyze(ctx, src.File, tc, src.Path),
			}
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func filterBySeverity(results []lintFileResult, threshold lint.Severity) []lintFileResult {
	var filtered []lintFileResult
	for _, r := range results {
		diags := slices.DeleteFunc(slices.Clone(r.Diagnostics), func(d lint.Diagnostic) bool {
			return d.Severity > threshold
		})
		if len(diags) > 0 {
			filtered = append(filtered, lintFileResult{Path: r.Path, Diagnostics: diags})
		}
	}
	return filtered
}

// lintSummary counts diagnostics by severity.
type lintSummary struct {
	Files    int `json:"files" yaml:"files"`
	Issues   int `json:"issues" yaml:"issues"`
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Info     int `json:"info" yaml:"info"`
	Hints    int `json:"hints" yaml:"hints"`
}

func summarize(results []lintFileResult) lintSummary {
	s := lintSummary{Files: len(results)}
	for _, res := range results {
		s.Issues += len(res.Diagnostics)
		for _, d := range res.Diagnostics {
			switch d.Severity {
			case lint.SeverityError:
				s.Errors++
			case lint.SeverityWarning:
				s.Warnings++
			case lint.SeverityInfo:
				s.Info++
			case lint.SeverityHint:
				s.Hints++
			}
		}
	}
	return s
}

// renderLintResults writes results and reports whether there were any.
func renderLintResults(r *output.Renderer, results []lintFileResult) bool {
	summary := summarize(results)

	switch r.Mode() {
	case output.ModeJSON, output.ModeYAML:
		doc := struct {
			Summary lintSummary      `json:"summary" yaml:"summary"`
			Files   []lintFileResult `json:"files" yaml:"files"`
		}{summary, results}
		if doc.Files == nil {
			doc.Files = []lintFileResult{}
		}
		if r.Mode() == output.ModeJSON {
			_ = r.JSON(doc)
		} else {
			_ = r.YAML(doc)
		}
		return len(results) > 0
	}

	if len(results) == 0 {
		r.Success("No lint issues found")
		return false
	}

	styles := r.Styles()
	for _, res := range results {
		r.Println(styles.Path.Render(res.Path))
		for _, d := range res.Diagnostics {
			loc := d.Pos.String()
			if !d.Pos.IsValid() {
				loc = "-"
			}
			r.Printf("  %s  %s  %s  %s\n",
				styles.Muted.Render(fmt.Sprintf("%-7s", loc)),
				severityLabel(r, d.Severity),
				styles.Bold.Render(d.RuleID),
				d.Message,
			)
		}
		r.Println()
	}

	parts := []string{fmt.Sprintf("%d issues", summary.Issues)}
	for _, c := range []struct {
		n     int
		label string
	}{{summary.Errors, "errors"}, {summary.Warnings, "warnings"}, {summary.Info, "info"}, {summary.Hints, "hints"}} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.label))
		}
	}
	r.Printf("Summary: %s in %d files\n", strings.Join(parts, ", "), summary.Files)
	return true
}

func severityLabel(r *output.Renderer, sev lint.Severity) string {
	label := fmt.Sprintf("%-7s", sev.String())
	s := r.Styles()
	switch sev {
	case lint.SeverityError:
		return s.Error.Render(label)
	case lint.SeverityWarning:
		return s.Warning.Render(label)
	case lint.SeverityInfo:
		return s.Info.Render(label)
	default:
		return s.Muted.Render(label)
	}
}
