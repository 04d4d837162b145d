package lint

import (
	"context"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// Analyzer runs lint rules against converted files.
type Analyzer struct {
	config *Config
	extra  []Rule
	only   map[string]bool
	logger *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithRules adds rules that are not in the global registry, such as
// Starlark rules loaded at runtime.
func WithRules(rules ...Rule) AnalyzerOption {
	return func(a *Analyzer) {
		a.extra = append(a.extra, rules...)
	}
}

// WithOnly restricts the analyzer to the given rule IDs.
func WithOnly(ids ...string) AnalyzerOption {
	return func(a *Analyzer) {
		if len(ids) == 0 {
			return
		}
		a.only = make(map[string]bool, len(ids))
		for _, id := range ids {
			a.only[normalizeID(id)] = true
		}
	}
}

// WithLogger sets the analyzer's logger.
func WithLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer creates a new analyzer with optional configuration.
func NewAnalyzer(config *Config, opts ...AnalyzerOption) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	a := &Analyzer{
		config: config,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Rules returns the rules this analyzer runs, ordered by ID.
func (a *Analyzer) Rules() []Rule {
	rules := append(GetAllRules(), a.extra...)
	var out []Rule
	for _, rule := range rules {
		if a.config.IsDisabled(rule.ID()) {
			continue
		}
		if a.only != nil && !a.only[normalizeID(rule.ID())] {
			continue
		}
		out = append(out, rule)
	}
	sortRules(out)
	return out
}

// Analyze runs every enabled rule against file and returns the diagnostics
// ordered by position. path is stamped on each diagnostic.
func (a *Analyzer) Analyze(ctx context.Context, file *uast.File, tc *uast.ToolContext, path string) []Diagnostic {
	if file == nil {
		return nil
	}

	var diagnostics []Diagnostic
	for _, rule := range a.Rules() {
		if ctx.Err() != nil {
			break
		}

		diags := rule.Check(ctx, file, tc, a.config.GetRuleOptions(rule.ID()))
		a.logger.Debug("rule checked",
			slog.String("rule", rule.ID()),
			slog.String("file", path),
			slog.Int("diagnostics", len(diags)))

		for i := range diags {
			if diags[i].RuleID == "" {
				diags[i].RuleID = rule.ID()
			}
			diags[i].Severity = a.config.GetSeverity(rule.ID(), diags[i].Severity)
			diags[i].FilePath = path
		}
		diagnostics = append(diagnostics, diags...)
	}

	sort.SliceStable(diagnostics, func(i, j int) bool {
		return diagnostics[i].Pos.Before(diagnostics[j].Pos)
	})
	return diagnostics
}
