// Package unsupported reports source constructs the unified tree has no
// variant for.
package unsupported

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapuast/pkg/lint"
	"github.com/leapstack-labs/leapuast/pkg/lint/internal/ast"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

func init() {
	lint.Register(UnsupportedConstruct)
}

// maxSnippet bounds the source text quoted in a message.
const maxSnippet = 40

// UnsupportedConstruct reports Unknown placeholders. Tools see nothing below
// them, so inspections silently skip that code.
var UnsupportedConstruct = lint.RuleDef{
	ID:          "UA01",
	Name:        "unsupported.construct",
	Group:       "unsupported",
	Description: "Construct has no unified tree representation and is invisible to inspections.",
	Severity:    lint.SeverityInfo,
	Check:       checkUnsupported,
	ConfigKeys:  []string{"ignore_kinds"},
	Rationale:   "Inspections only see code the unified tree models. Code under an unsupported construct (when, elvis, ranges, object literals) is skipped silently.",
	BadExample:  "val size = when (x) { 1 -> \"one\" else -> \"many\" }",
	GoodExample: "val size = if (x == 1) \"one\" else \"many\"",
}

func checkUnsupported(_ context.Context, file *uast.File, _ *uast.ToolContext, opts map[string]any) []lint.Diagnostic {
	ignore := lint.GetStringSliceOption(opts, "ignore_kinds", nil)

	var diagnostics []lint.Diagnostic
	for _, u := range ast.Collect[*uast.Unknown](file) {
		kind := string(u.SourceKind())
		if slices.Contains(ignore, kind) {
			continue
		}
		d := lint.At("UA01", lint.SeverityInfo, u.Source(),
			fmt.Sprintf("unsupported construct %s: %s", kind, snippet(u.Source().Text())))
		d.ImpactScore = lint.ImpactLow.Int()
		diagnostics = append(diagnostics, d)
	}
	return diagnostics
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxSnippet {
		return text[:maxSnippet] + "..."
	}
	return text
}
