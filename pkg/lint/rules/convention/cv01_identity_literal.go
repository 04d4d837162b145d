package convention

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/leapuast/pkg/lint"
	"github.com/leapstack-labs/leapuast/pkg/lint/internal/ast"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

func init() {
	lint.Register(IdentityLiteral)
}

// IdentityLiteral warns about === and !== where an operand is a non-null
// literal. Boxed literals have no stable identity.
var IdentityLiteral = lint.RuleDef{
	ID:          "CV01",
	Name:        "convention.identity_literal",
	Group:       "convention",
	Description: "Identity equality against a literal; use structural equality.",
	Severity:    lint.SeverityWarning,
	Check:       checkIdentityLiteral,
	BadExample:  "if (code === 200) ok()",
	GoodExample: "if (code == 200) ok()",
	Fix:         "Replace === with == and !== with !=.",
}

func checkIdentityLiteral(_ context.Context, file *uast.File, _ *uast.ToolContext, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	for _, b := range ast.Collect[*uast.Binary](file) {
		var want string
		switch b.OperatorType() {
		case uast.BinaryIdentityEquals:
			want = "=="
		case uast.BinaryIdentityNotEquals:
			want = "!="
		default:
			continue
		}
		if !isValueLiteral(b.Left()) && !isValueLiteral(b.Right()) {
			continue
		}
		d := lint.At("CV01", lint.SeverityWarning, b.Source(),
			fmt.Sprintf("identity comparison %s with a literal; use %s", b.Operator(), want))
		d.ImpactScore = lint.ImpactMedium.Int()
		diagnostics = append(diagnostics, d)
	}
	return diagnostics
}

func isValueLiteral(e uast.Expression) bool {
	lit, ok := ast.Unparen(e).(*uast.Literal)
	return ok && !lit.IsNull()
}
