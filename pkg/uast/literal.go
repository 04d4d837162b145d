package uast

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

type constant struct {
	v  any
	ok bool
}

// Literal is a constant literal or a string literal, possibly templated.
type Literal struct {
	exprBase
	value lazy[constant]
}

func newLiteralExpr(src cst.Node, parent Element) Expression {
	return &Literal{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (l *Literal) Kind() Kind { return KindLiteral }

// Text returns the literal as written.
func (l *Literal) Text() string { return l.src.Text() }

// LiteralKind returns the lexical class of the literal.
func (l *Literal) LiteralKind() cst.LiteralKind { return cst.ClassifyLiteral(l.src.Text()) }

func (l *Literal) IsNull() bool { return l.LiteralKind() == cst.LiteralNull }

// IsTemplate reports whether the literal is a string with interpolations.
func (l *Literal) IsTemplate() bool {
	return l.LiteralKind() == cst.LiteralString && cst.IsTemplate(l.src.Text())
}

// Value returns the value denoted by the literal text: nil for null,
// bool, int64, float64, rune or string. Templated strings and malformed
// literals report false.
func (l *Literal) Value() (any, bool) {
	c := l.value.get(func() constant {
		v, ok := cst.ParseLiteral(l.src.Text())
		return constant{v: v, ok: ok}
	})
	return c.v, c.ok
}

// Evaluate prefers the semantic engine's value and falls back to the literal
// text.
func (l *Literal) Evaluate(ctx context.Context, tc *ToolContext) (any, bool) {
	if v, ok := evaluate(ctx, tc, l.src); ok {
		return v, true
	}
	return l.Value()
}

func (l *Literal) LogString() string {
	return fmt.Sprintf("ULiteralExpression (%s)", l.src.Text())
}
