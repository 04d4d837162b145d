package convention

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/leapuast/pkg/cst"
	"github.com/leapstack-labs/leapuast/pkg/lint"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

func init() {
	lint.Register(RedundantPublic)
}

// RedundantPublic flags an explicit public modifier, which is the default
// visibility.
var RedundantPublic = lint.RuleDef{
	ID:          "CV02",
	Name:        "convention.redundant_public",
	Group:       "convention",
	Description: "Explicit public modifier is redundant.",
	Severity:    lint.SeverityHint,
	Check:       checkRedundantPublic,
	BadExample:  "public class Repo",
	GoodExample: "class Repo",
	Fix:         "Remove the modifier.",
}

func checkRedundantPublic(_ context.Context, file *uast.File, _ *uast.ToolContext, _ map[string]any) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	uast.Walk(file, func(el uast.Element) bool {
		decl, ok := el.(uast.Declaration)
		if !ok {
			return true
		}
		for _, m := range decl.Source().Children(cst.SlotModifiers) {
			if m.Text() != "public" {
				continue
			}
			d := lint.At("CV02", lint.SeverityHint, m,
				fmt.Sprintf("%s %q is public by default", kindWord(decl), decl.Name()))
			d.ImpactScore = lint.ImpactLow.Int()
			diagnostics = append(diagnostics, d)
		}
		return true
	})
	return diagnostics
}

func kindWord(d uast.Declaration) string {
	switch n := d.(type) {
	case *uast.Class:
		return "class"
	case *uast.Function:
		if n.IsConstructor() {
			return "constructor"
		}
		return "function"
	case *uast.Variable:
		return "property"
	}
	return "declaration"
}
