package structure

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/leapuast/pkg/lint"
	"github.com/leapstack-labs/leapuast/pkg/lint/internal/ast"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

func init() {
	lint.Register(ConstantCondition)
}

// ConstantCondition warns about if and loop conditions that always evaluate
// to the same Boolean.
var ConstantCondition = lint.RuleDef{
	ID:          "ST01",
	Name:        "structure.constant_condition",
	Group:       "structure",
	Description: "Condition is a compile-time constant, so one branch is dead code.",
	Severity:    lint.SeverityWarning,
	Check:       checkConstantCondition,
	ConfigKeys:  []string{"allow_while_true"},
	Rationale:   "A constant condition usually means debugging code left behind or a flag folded away; the dead branch rots unnoticed.",
	BadExample:  "if (DEBUG && false) { dump() }",
	GoodExample: "if (config.debug) { dump() }",
}

func checkConstantCondition(ctx context.Context, file *uast.File, tc *uast.ToolContext, opts map[string]any) []lint.Diagnostic {
	allowWhileTrue := lint.GetOption(opts, "allow_while_true", true)

	var diagnostics []lint.Diagnostic
	report := func(keyword string, cond uast.Expression, loop bool) {
		if cond == nil {
			return
		}
		v, ok := cond.Evaluate(ctx, tc)
		if !ok {
			return
		}
		b, ok := v.(bool)
		if !ok {
			return
		}
		if loop && b && allowWhileTrue {
			return
		}
		d := lint.At("ST01", lint.SeverityWarning, cond.Source(),
			fmt.Sprintf("%s condition is always %t", keyword, b))
		d.ImpactScore = lint.ImpactMedium.Int()
		diagnostics = append(diagnostics, d)
	}

	uast.Walk(file, func(el uast.Element) bool {
		switch n := el.(type) {
		case *uast.If:
			report("if", ast.Unparen(n.Condition()), false)
		case *uast.While:
			report("while", ast.Unparen(n.Condition()), true)
		case *uast.DoWhile:
			report("do-while", ast.Unparen(n.Condition()), true)
		}
		return true
	})
	return diagnostics
}
