package lint

import (
	"context"

	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// CheckFunc inspects a converted file and returns diagnostics.
// tc may be nil, in which case every resolution yields nil.
// The opts parameter contains rule-specific options from configuration.
type CheckFunc func(ctx context.Context, file *uast.File, tc *uast.ToolContext, opts map[string]any) []Diagnostic

// RuleDef is a data-driven rule definition.
// Rules are stateless - all context comes via the Check function parameters.
type RuleDef struct {
	ID          string    // Unique identifier, e.g., "RF01"
	Name        string    // Human-readable name, e.g., "references.unresolved"
	Group       string    // Category, e.g., "references", "structure", "convention"
	Description string    // Human-readable description
	Severity    Severity  // Default severity
	Check       CheckFunc // The check function
	ConfigKeys  []string  // Configuration keys this rule accepts

	Rationale   string // Why this rule exists, what problems it prevents
	BadExample  string // Code showing the anti-pattern
	GoodExample string // Code showing the correct pattern
	Fix         string // How to fix violations (when not obvious)
}

// Rule is the interface all lint rules implement.
type Rule interface {
	// ID returns the unique identifier, e.g., "ST01"
	ID() string

	// Name returns the human-readable name, e.g., "structure.constant_condition"
	Name() string

	// Group returns the category, e.g., "structure"
	Group() string

	Description() string
	DefaultSeverity() Severity
	ConfigKeys() []string

	// Check analyzes a file and returns diagnostics.
	Check(ctx context.Context, file *uast.File, tc *uast.ToolContext, opts map[string]any) []Diagnostic
}

// Documented is implemented by rules that carry long-form documentation.
type Documented interface {
	Rationale() string
	BadExample() string
	GoodExample() string
	Fix() string
}

// RuleInfo provides metadata about a rule for documentation/tooling.
type RuleInfo struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Group           string   `json:"group" yaml:"group"`
	Description     string   `json:"description" yaml:"description"`
	DefaultSeverity Severity `json:"default_severity" yaml:"default_severity"`
	ConfigKeys      []string `json:"config_keys,omitempty" yaml:"config_keys,omitempty"`
	Rationale       string   `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	BadExample      string   `json:"bad_example,omitempty" yaml:"bad_example,omitempty"`
	GoodExample     string   `json:"good_example,omitempty" yaml:"good_example,omitempty"`
	Fix             string   `json:"fix,omitempty" yaml:"fix,omitempty"`
}

// GetRuleInfo extracts metadata from a Rule for documentation/tooling.
func GetRuleInfo(r Rule) RuleInfo {
	info := RuleInfo{
		ID:              r.ID(),
		Name:            r.Name(),
		Group:           r.Group(),
		Description:     r.Description(),
		DefaultSeverity: r.DefaultSeverity(),
		ConfigKeys:      r.ConfigKeys(),
	}
	if d, ok := r.(Documented); ok {
		info.Rationale = d.Rationale()
		info.BadExample = d.BadExample()
		info.GoodExample = d.GoodExample()
		info.Fix = d.Fix()
	}
	return info
}

// wrappedRuleDef wraps a RuleDef to implement Rule.
type wrappedRuleDef struct {
	def RuleDef
}

// WrapRuleDef wraps a RuleDef to implement the Rule interface.
func WrapRuleDef(def RuleDef) Rule {
	return &wrappedRuleDef{def: def}
}

func (w *wrappedRuleDef) ID() string                { return w.def.ID }
func (w *wrappedRuleDef) Name() string              { return w.def.Name }
func (w *wrappedRuleDef) Group() string             { return w.def.Group }
func (w *wrappedRuleDef) Description() string       { return w.def.Description }
func (w *wrappedRuleDef) DefaultSeverity() Severity { return w.def.Severity }
func (w *wrappedRuleDef) ConfigKeys() []string      { return w.def.ConfigKeys }

func (w *wrappedRuleDef) Rationale() string   { return w.def.Rationale }
func (w *wrappedRuleDef) BadExample() string  { return w.def.BadExample }
func (w *wrappedRuleDef) GoodExample() string { return w.def.GoodExample }
func (w *wrappedRuleDef) Fix() string         { return w.def.Fix }

func (w *wrappedRuleDef) Check(ctx context.Context, file *uast.File, tc *uast.ToolContext, opts map[string]any) []Diagnostic {
	if w.def.Check == nil {
		return nil
	}
	return w.def.Check(ctx, file, tc, opts)
}

// Unwrap returns the underlying RuleDef.
func (w *wrappedRuleDef) Unwrap() RuleDef {
	return w.def
}
