package lint

import (
	"strings"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError indicates a critical issue that should be fixed.
	SeverityError Severity = iota
	// SeverityWarning indicates a potential issue that should be reviewed.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
	// SeverityHint indicates a suggestion for improvement.
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, true
	case "warning", "warn":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	case "hint":
		return SeverityHint, true
	default:
		return SeverityWarning, false
	}
}

// Diagnostic represents a lint finding.
type Diagnostic struct {
	RuleID   string       `json:"rule_id" yaml:"rule_id"`
	Severity Severity     `json:"severity" yaml:"severity"`
	Message  string       `json:"message" yaml:"message"`
	FilePath string       `json:"file,omitempty" yaml:"file,omitempty"`
	Pos      cst.Position `json:"pos" yaml:"pos"`
	EndPos   cst.Position `json:"end_pos" yaml:"end_pos"`

	DocumentationURL string `json:"documentation_url,omitempty" yaml:"documentation_url,omitempty"`
	ImpactScore      int    `json:"impact_score,omitempty" yaml:"impact_score,omitempty"`
}

// At returns a diagnostic positioned on the source range of n.
func At(ruleID string, severity Severity, n cst.Node, message string) Diagnostic {
	d := Diagnostic{
		RuleID:           ruleID,
		Severity:         severity,
		Message:          message,
		DocumentationURL: BuildDocURL(ruleID),
	}
	if n != nil {
		d.Pos = n.Span().Start
		d.EndPos = n.Span().End
	}
	return d
}
