package structure

import (
	"context"
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapuast/pkg/lint"
	"github.com/leapstack-labs/leapuast/pkg/lint/internal/ast"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

func init() {
	lint.Register(EmptyCatch)
}

var defaultAllowedNames = []string{"ignored", "expected", "_"}

// EmptyCatch warns about catch clauses that swallow the exception. A catch
// parameter named like "ignored" marks the swallow as intentional.
var EmptyCatch = lint.RuleDef{
	ID:          "ST02",
	Name:        "structure.empty_catch",
	Group:       "structure",
	Description: "Catch block is empty and silently swallows the exception.",
	Severity:    lint.SeverityWarning,
	Check:       checkEmptyCatch,
	ConfigKeys:  []string{"allowed_names"},
	Rationale:   "Swallowed exceptions hide failures and make bugs surface far from their cause.",
	BadExample:  "try { load() } catch (e: IOException) { }",
	GoodExample: "try { load() } catch (ignored: IOException) { }",
	Fix:         "Handle or log the exception, or name the parameter \"ignored\".",
}

func checkEmptyCatch(_ context.Context, file *uast.File, _ *uast.ToolContext, opts map[string]any) []lint.Diagnostic {
	allowed := lint.GetStringSliceOption(opts, "allowed_names", defaultAllowedNames)

	var diagnostics []lint.Diagnostic
	for _, c := range ast.Collect[*uast.Catch](file) {
		if !ast.IsEmptyBody(c.Body()) {
			continue
		}
		name, typ := "", "exception"
		if p := c.Parameter(); p != nil {
			name = p.Name()
			if t := p.Type(); t != nil {
				typ = t.Name()
			}
		}
		if slices.Contains(allowed, name) {
			continue
		}
		d := lint.At("ST02", lint.SeverityWarning, c.Source(),
			fmt.Sprintf("empty catch block swallows %s", typ))
		d.ImpactScore = lint.ImpactHigh.Int()
		diagnostics = append(diagnostics, d)
	}
	return diagnostics
}
