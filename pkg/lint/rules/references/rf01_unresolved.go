// Package references provides inspections over name binding.
package references

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/leapuast/pkg/cst"
	"github.com/leapstack-labs/leapuast/pkg/lint"
	"github.com/leapstack-labs/leapuast/pkg/lint/internal/ast"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

func init() {
	lint.Register(UnresolvedReference)
}

// UnresolvedReference reports names the semantic engine cannot bind. Calls
// to builtins are synthetic, not unresolved, and are never reported.
var UnresolvedReference = lint.RuleDef{
	ID:          "RF01",
	Name:        "references.unresolved",
	Group:       "references",
	Description: "Reference does not resolve to any declaration.",
	Severity:    lint.SeverityWarning,
	Check:       checkUnresolved,
	ConfigKeys:  []string{"ignore"},
	Rationale:   "A name that binds to nothing is either a typo or a dependency the analysis cannot see; in both cases inspections relying on resolution are blind there.",
	BadExample:  "fun total() = subtotl + tax",
	GoodExample: "fun total() = subtotal + tax",
	Fix:         "Fix the name, import the declaration, or analyze with depth full so other files are indexed.",
}

func checkUnresolved(ctx context.Context, file *uast.File, tc *uast.ToolContext, opts map[string]any) []lint.Diagnostic {
	if tc == nil || tc.Analyzer == nil {
		return nil
	}
	bindings, err := tc.Analyzer.Analyze(ctx, file.Source(), tc.Depth)
	if err != nil || bindings == nil {
		if tc.Logger != nil && err != nil {
			tc.Logger.Debug("RF01 skipped", slog.String("error", err.Error()))
		}
		return nil
	}
	ignore := lint.GetStringSliceOption(opts, "ignore", nil)

	var diagnostics []lint.Diagnostic
	for _, ref := range ast.Collect[*uast.SimpleReference](file) {
		if isMemberSelector(ref) || slices.Contains(ignore, ref.Identifier()) {
			continue
		}
		if _, err := bindings.Declaration(ref.Source()); !errors.Is(err, cst.ErrUnresolved) {
			continue
		}
		what := "reference"
		if _, ok := ref.Parent().(*uast.Call); ok {
			what = "call"
		}
		d := lint.At("RF01", lint.SeverityWarning, ref.Source(),
			fmt.Sprintf("unresolved %s %q", what, ref.Identifier()))
		d.ImpactScore = lint.ImpactMedium.Int()
		diagnostics = append(diagnostics, d)
	}
	return diagnostics
}

// isMemberSelector reports whether ref names a member on the right of a
// qualified expression, directly or as the callee of a selector call. Those
// bind through the receiver's type, which is often unknown.
func isMemberSelector(ref *uast.SimpleReference) bool {
	var el uast.Element = ref
	if call, ok := ref.Parent().(*uast.Call); ok && call.Callee().Source() == ref.Source() {
		el = call
	}
	q, ok := el.Parent().(*uast.Qualified)
	return ok && q.Selector().Source() == el.Source()
}
