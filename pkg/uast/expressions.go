package uast

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// Declarations wraps a local declaration appearing among statements.
type Declarations struct {
	exprBase
	decl lazy[Declaration]
}

func newDeclarationsExpr(src cst.Node, parent Element) Expression {
	return &Declarations{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (d *Declarations) Kind() Kind { return KindDeclarations }

// Declaration returns the wrapped declaration.
func (d *Declarations) Declaration() Declaration {
	return d.decl.get(func() Declaration {
		return ConvertDeclaration(d.src, d)
	})
}

// Declarations returns the wrapped declarations.
func (d *Declarations) Declarations() []Declaration {
	if decl := d.Declaration(); decl != nil {
		return []Declaration{decl}
	}
	return nil
}

func (d *Declarations) Evaluate(context.Context, *ToolContext) (any, bool) { return nil, false }

func (d *Declarations) LogString() string { return "UDeclarationsExpression" }

// Qualified is a member access "a.b" or safe access "a?.b".
type Qualified struct {
	exprBase
	receiver lazy[Expression]
	selector lazy[Expression]
}

func newQualifiedExpr(src cst.Node, parent Element) Expression {
	return &Qualified{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (q *Qualified) Kind() Kind {
	if q.IsSafe() {
		return KindSafeQualified
	}
	return KindQualified
}

// IsSafe reports whether the access uses the safe-call operator.
func (q *Qualified) IsSafe() bool { return q.src.Kind() == cst.KindSafeQualified }

func (q *Qualified) Receiver() Expression {
	return q.receiver.get(func() Expression {
		return convertOrEmpty(q.src.Child(cst.SlotReceiver), q)
	})
}

func (q *Qualified) Selector() Expression {
	return q.selector.get(func() Expression {
		return convertOrEmpty(q.src.Child(cst.SlotSelector), q)
	})
}

// Resolve resolves the selector.
func (q *Qualified) Resolve(ctx context.Context, tc *ToolContext) Declaration {
	if r, ok := q.Selector().(Reference); ok {
		return r.Resolve(ctx, tc)
	}
	return nil
}

func (q *Qualified) LogString() string {
	if q.IsSafe() {
		return "USafeQualifiedExpression"
	}
	return "UQualifiedExpression"
}

// SimpleReference is a bare identifier in expression position.
type SimpleReference struct {
	exprBase
}

func newSimpleReferenceExpr(src cst.Node, parent Element) Expression {
	return &SimpleReference{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (r *SimpleReference) Kind() Kind { return KindSimpleReference }

// Identifier returns the referenced name.
func (r *SimpleReference) Identifier() string {
	return identifierText(strings.TrimSpace(r.src.Text()))
}

// Resolve returns the declaration the name binds to, or nil.
func (r *SimpleReference) Resolve(ctx context.Context, tc *ToolContext) Declaration {
	return resolveDeclaration(ctx, tc, r.src)
}

func (r *SimpleReference) LogString() string {
	return fmt.Sprintf("USimpleReferenceExpression (%s)", r.Identifier())
}

// Call is a function or constructor call.
type Call struct {
	exprBase
	callee    lazy[Expression]
	arguments lazy[[]Expression]
}

func newCallExpr(src cst.Node, parent Element) Expression {
	return &Call{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (c *Call) Kind() Kind { return KindCall }

func (c *Call) Callee() Expression {
	return c.callee.get(func() Expression {
		return convertOrEmpty(c.src.Child(cst.SlotCallee), c)
	})
}

// FunctionName returns the called name when the callee is a simple name.
func (c *Call) FunctionName() string {
	if r, ok := c.Callee().(*SimpleReference); ok {
		return r.Identifier()
	}
	return ""
}

// Arguments returns the value arguments, including a trailing lambda.
func (c *Call) Arguments() []Expression {
	return c.arguments.get(func() []Expression {
		return convertExpressions(c.src.Children(cst.SlotArguments), c)
	})
}

func (c *Call) ArgumentCount() int { return len(c.Arguments()) }

// Resolve returns the called function or constructor, or nil.
func (c *Call) Resolve(ctx context.Context, tc *ToolContext) Declaration {
	if fn, ok := resolveDeclaration(ctx, tc, c.src).(*Function); ok {
		return fn
	}
	return nil
}

func (c *Call) LogString() string {
	return fmt.Sprintf("UFunctionCallExpression (%s, argCount = %d)", c.FunctionName(), c.ArgumentCount())
}

// Binary is a binary operator expression.
type Binary struct {
	exprBase
	left  lazy[Expression]
	right lazy[Expression]
	op    lazy[BinaryOperator]
}

func newBinaryExpr(src cst.Node, parent Element) Expression {
	return &Binary{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (b *Binary) Kind() Kind { return KindBinary }

func (b *Binary) Left() Expression {
	return b.left.get(func() Expression {
		return convertOrEmpty(b.src.Child(cst.SlotLeft), b)
	})
}

func (b *Binary) Right() Expression {
	return b.right.get(func() Expression {
		return convertOrEmpty(b.src.Child(cst.SlotRight), b)
	})
}

// Operator returns the operator token text.
func (b *Binary) Operator() string { return operatorText(b.src) }

// OperatorType returns the operator classification.
func (b *Binary) OperatorType() BinaryOperator {
	return b.op.get(func() BinaryOperator {
		return ClassifyBinary(b.Operator())
	})
}

func (b *Binary) LogString() string {
	return fmt.Sprintf("UBinaryExpression (%s)", b.Operator())
}

func operatorText(src cst.Node) string {
	if op := src.Child(cst.SlotOperator); op != nil {
		return strings.TrimSpace(op.Text())
	}
	return ""
}

// Prefix is a prefix unary expression.
type Prefix struct {
	exprBase
	operand lazy[Expression]
	op      lazy[PrefixOperator]
}

func newPrefixExpr(src cst.Node, parent Element) Expression {
	return &Prefix{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (p *Prefix) Kind() Kind { return KindPrefix }

func (p *Prefix) Operand() Expression {
	return p.operand.get(func() Expression {
		return convertOrEmpty(p.src.Child(cst.SlotOperand), p)
	})
}

// Operator returns the operator token text.
func (p *Prefix) Operator() string { return operatorText(p.src) }

func (p *Prefix) OperatorType() PrefixOperator {
	return p.op.get(func() PrefixOperator {
		return ClassifyPrefix(p.Operator())
	})
}

func (p *Prefix) LogString() string {
	return fmt.Sprintf("UPrefixExpression (%s)", p.Operator())
}

// Postfix is a postfix unary expression.
type Postfix struct {
	exprBase
	operand lazy[Expression]
	op      lazy[PostfixOperator]
}

func newPostfixExpr(src cst.Node, parent Element) Expression {
	return &Postfix{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (p *Postfix) Kind() Kind { return KindPostfix }

func (p *Postfix) Operand() Expression {
	return p.operand.get(func() Expression {
		return convertOrEmpty(p.src.Child(cst.SlotOperand), p)
	})
}

// Operator returns the operator token text.
func (p *Postfix) Operator() string { return operatorText(p.src) }

func (p *Postfix) OperatorType() PostfixOperator {
	return p.op.get(func() PostfixOperator {
		return ClassifyPostfix(p.Operator())
	})
}

func (p *Postfix) LogString() string {
	return fmt.Sprintf("UPostfixExpression (%s)", p.Operator())
}

// Parenthesized is an expression in parentheses.
type Parenthesized struct {
	exprBase
	inner lazy[Expression]
}

func newParenthesizedExpr(src cst.Node, parent Element) Expression {
	return &Parenthesized{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (p *Parenthesized) Kind() Kind { return KindParenthesized }

func (p *Parenthesized) Expression() Expression {
	return p.inner.get(func() Expression {
		return convertOrEmpty(p.src.Child(cst.SlotValue), p)
	})
}

func (p *Parenthesized) LogString() string { return "UParenthesizedExpression" }

// This is a this expression, optionally labeled.
type This struct {
	exprBase
}

func newThisExpr(src cst.Node, parent Element) Expression {
	return &This{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (t *This) Kind() Kind        { return KindThis }
func (t *This) Label() string     { return labelOf(t.src) }
func (t *This) LogString() string { return "UThisExpression" }

// Super is a super expression, optionally labeled.
type Super struct {
	exprBase
}

func newSuperExpr(src cst.Node, parent Element) Expression {
	return &Super{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (s *Super) Kind() Kind        { return KindSuper }
func (s *Super) Label() string     { return labelOf(s.src) }
func (s *Super) LogString() string { return "USuperExpression" }

func labelOf(src cst.Node) string {
	if l := src.Child(cst.SlotLabel); l != nil {
		return strings.TrimPrefix(strings.TrimSuffix(l.Text(), "@"), "@")
	}
	return ""
}

// TypeCheck is an "is" or "!is" expression.
type TypeCheck struct {
	exprBase
	operand lazy[Expression]
	typ     lazy[*Type]
}

func newTypeCheckExpr(src cst.Node, parent Element) Expression {
	return &TypeCheck{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (t *TypeCheck) Kind() Kind { return KindTypeCheck }

func (t *TypeCheck) Operand() Expression {
	return t.operand.get(func() Expression {
		return convertOrEmpty(t.src.Child(cst.SlotOperand), t)
	})
}

func (t *TypeCheck) Type() *Type {
	return t.typ.get(func() *Type {
		return convertType(t.src.Child(cst.SlotType), t)
	})
}

// Negated reports whether the check is "!is".
func (t *TypeCheck) Negated() bool { return operatorText(t.src) == "!is" }

// Resolve returns the class the checked type names, or nil.
func (t *TypeCheck) Resolve(ctx context.Context, tc *ToolContext) Declaration {
	if typ := t.Type(); typ != nil {
		return typ.Resolve(ctx, tc)
	}
	return nil
}

func (t *TypeCheck) LogString() string { return "UBinaryExpressionWithType (INSTANCE_CHECK)" }

// TypeCast is an "as" or "as?" expression.
type TypeCast struct {
	exprBase
	operand lazy[Expression]
	typ     lazy[*Type]
}

func newTypeCastExpr(src cst.Node, parent Element) Expression {
	return &TypeCast{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (t *TypeCast) Kind() Kind { return KindTypeCast }

func (t *TypeCast) Operand() Expression {
	return t.operand.get(func() Expression {
		return convertOrEmpty(t.src.Child(cst.SlotOperand), t)
	})
}

func (t *TypeCast) Type() *Type {
	return t.typ.get(func() *Type {
		return convertType(t.src.Child(cst.SlotType), t)
	})
}

// Safe reports whether the cast is "as?".
func (t *TypeCast) Safe() bool { return operatorText(t.src) == "as?" }

// Resolve returns the class the target type names, or nil.
func (t *TypeCast) Resolve(ctx context.Context, tc *ToolContext) Declaration {
	if typ := t.Type(); typ != nil {
		return typ.Resolve(ctx, tc)
	}
	return nil
}

func (t *TypeCast) LogString() string { return "UBinaryExpressionWithType (TYPE_CAST)" }

// If is an if expression or statement.
type If struct {
	exprBase
	condition lazy[Expression]
	then      lazy[Expression]
	els       lazy[Expression]
}

func newIfExpr(src cst.Node, parent Element) Expression {
	return &If{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (i *If) Kind() Kind { return KindIf }

func (i *If) Condition() Expression {
	return i.condition.get(func() Expression {
		return convertOrEmpty(i.src.Child(cst.SlotCondition), i)
	})
}

// Then returns the then branch, or nil.
func (i *If) Then() Expression {
	return i.then.get(func() Expression {
		return convertOrNil(i.src.Child(cst.SlotThen), i)
	})
}

// Else returns the else branch, or nil.
func (i *If) Else() Expression {
	return i.els.get(func() Expression {
		return convertOrNil(i.src.Child(cst.SlotElse), i)
	})
}

func (i *If) LogString() string { return "UIfExpression" }

// loop holds the parts shared by while and do-while loops.
type loop struct {
	exprBase
	condition lazy[Expression]
	body      lazy[Expression]
}

// While is a while loop.
type While struct {
	loop
}

func newWhileExpr(src cst.Node, parent Element) Expression {
	return &While{loop{exprBase: exprBase{base{parent: parent, src: src}}}}
}

func (w *While) Kind() Kind { return KindWhile }

func (w *While) Condition() Expression {
	return w.condition.get(func() Expression {
		return convertOrEmpty(w.src.Child(cst.SlotCondition), w)
	})
}

func (w *While) Body() Expression {
	return w.body.get(func() Expression {
		return convertOrEmpty(w.src.Child(cst.SlotBody), w)
	})
}

func (w *While) Evaluate(context.Context, *ToolContext) (any, bool) { return nil, false }

func (w *While) LogString() string { return "UWhileExpression" }

// DoWhile is a do-while loop.
type DoWhile struct {
	loop
}

func newDoWhileExpr(src cst.Node, parent Element) Expression {
	return &DoWhile{loop{exprBase: exprBase{base{parent: parent, src: src}}}}
}

func (d *DoWhile) Kind() Kind { return KindDoWhile }

func (d *DoWhile) Condition() Expression {
	return d.condition.get(func() Expression {
		return convertOrEmpty(d.src.Child(cst.SlotCondition), d)
	})
}

func (d *DoWhile) Body() Expression {
	return d.body.get(func() Expression {
		return convertOrEmpty(d.src.Child(cst.SlotBody), d)
	})
}

func (d *DoWhile) Evaluate(context.Context, *ToolContext) (any, bool) { return nil, false }

func (d *DoWhile) LogString() string { return "UDoWhileExpression" }

// ForEach is a for-in loop.
type ForEach struct {
	exprBase
	iterated lazy[Expression]
	body     lazy[Expression]
}

func newForEachExpr(src cst.Node, parent Element) Expression {
	return &ForEach{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (f *ForEach) Kind() Kind { return KindForEach }

// VariableName returns the loop variable name, or "" for destructuring.
func (f *ForEach) VariableName() string {
	if p := f.src.Child(cst.SlotLoopParameter); p != nil {
		return nameOf(p)
	}
	return ""
}

func (f *ForEach) IteratedValue() Expression {
	return f.iterated.get(func() Expression {
		return convertOrEmpty(f.src.Child(cst.SlotIterable), f)
	})
}

func (f *ForEach) Body() Expression {
	return f.body.get(func() Expression {
		return convertOrEmpty(f.src.Child(cst.SlotBody), f)
	})
}

func (f *ForEach) Evaluate(context.Context, *ToolContext) (any, bool) { return nil, false }

func (f *ForEach) LogString() string {
	return fmt.Sprintf("UForEachExpression (%s)", f.VariableName())
}

// Jump is a break, continue, return or throw.
type Jump struct {
	exprBase
	kind  Kind
	value lazy[Expression]
}

func newJump(kind Kind) expressionCtor {
	return func(src cst.Node, parent Element) Expression {
		return &Jump{exprBase: exprBase{base{parent: parent, src: src}}, kind: kind}
	}
}

var (
	newBreakExpr    = newJump(KindBreak)
	newContinueExpr = newJump(KindContinue)
	newReturnExpr   = newJump(KindReturn)
	newThrowExpr    = newJump(KindThrow)
)

func (j *Jump) Kind() Kind { return j.kind }

// Label returns the jump label without the "@", or "".
func (j *Jump) Label() string { return labelOf(j.src) }

// Value returns the returned or thrown expression. It is nil for break,
// continue and a bare return.
func (j *Jump) Value() Expression {
	return j.value.get(func() Expression {
		switch j.kind {
		case KindReturn:
			return convertOrNil(j.src.Child(cst.SlotValue), j)
		case KindThrow:
			return convertOrEmpty(j.src.Child(cst.SlotValue), j)
		}
		return nil
	})
}

// Expressions returns the operand expressions of the jump.
func (j *Jump) Expressions() []Expression {
	if v := j.Value(); v != nil {
		return []Expression{v}
	}
	return nil
}

func (j *Jump) Evaluate(context.Context, *ToolContext) (any, bool) { return nil, false }

func (j *Jump) LogString() string {
	switch j.kind {
	case KindBreak:
		return "UBreakExpression"
	case KindContinue:
		return "UContinueExpression"
	case KindThrow:
		return "UThrowExpression"
	}
	return "UReturnExpression"
}

// Block is a brace-delimited statement list.
type Block struct {
	exprBase
	expressions lazy[[]Expression]
}

func newBlockExpr(src cst.Node, parent Element) Expression {
	return &Block{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (b *Block) Kind() Kind { return KindBlock }

// Expressions returns the statements in order. An empty block has none.
func (b *Block) Expressions() []Expression {
	return b.expressions.get(func() []Expression {
		return convertExpressions(b.src.Children(cst.SlotStatements), b)
	})
}

func (b *Block) Evaluate(context.Context, *ToolContext) (any, bool) { return nil, false }

func (b *Block) LogString() string { return "UBlockExpression" }

// Try is a try expression.
type Try struct {
	exprBase
	tryClause lazy[Expression]
	catches   lazy[[]*Catch]
	finally   lazy[Expression]
}

func newTryExpr(src cst.Node, parent Element) Expression {
	return &Try{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (t *Try) Kind() Kind { return KindTry }

func (t *Try) TryClause() Expression {
	return t.tryClause.get(func() Expression {
		return convertOrEmpty(t.src.Child(cst.SlotTry), t)
	})
}

func (t *Try) CatchClauses() []*Catch {
	return t.catches.get(func() []*Catch {
		srcs := t.src.Children(cst.SlotCatches)
		out := make([]*Catch, 0, len(srcs))
		for _, s := range srcs {
			out = append(out, newCatch(s, t))
		}
		return out
	})
}

// FinallyClause returns the finally block, or nil.
func (t *Try) FinallyClause() Expression {
	return t.finally.get(func() Expression {
		return convertOrNil(t.src.Child(cst.SlotFinally), t)
	})
}

func (t *Try) Evaluate(context.Context, *ToolContext) (any, bool) { return nil, false }

func (t *Try) LogString() string { return "UTryExpression" }

// Catch is a catch clause of a try expression.
type Catch struct {
	base
	parameter lazy[*Parameter]
	body      lazy[Expression]
}

func newCatch(src cst.Node, parent Element) *Catch {
	return &Catch{base: base{parent: parent, src: src}}
}

func (c *Catch) Kind() Kind { return KindCatch }

// Parameter returns the caught exception parameter, or nil.
func (c *Catch) Parameter() *Parameter {
	return c.parameter.get(func() *Parameter {
		params := convertParameters(c.src.Children(cst.SlotParameters), c)
		if len(params) == 0 {
			return nil
		}
		return params[0]
	})
}

func (c *Catch) Body() Expression {
	return c.body.get(func() Expression {
		return convertOrEmpty(c.src.Child(cst.SlotBody), c)
	})
}

func (c *Catch) LogString() string { return "UCatchClause" }

// ArrayAccess is an indexing expression.
type ArrayAccess struct {
	exprBase
	receiver lazy[Expression]
	indices  lazy[[]Expression]
}

func newArrayAccessExpr(src cst.Node, parent Element) Expression {
	return &ArrayAccess{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (a *ArrayAccess) Kind() Kind { return KindArrayAccess }

func (a *ArrayAccess) Receiver() Expression {
	return a.receiver.get(func() Expression {
		return convertOrEmpty(a.src.Child(cst.SlotReceiver), a)
	})
}

func (a *ArrayAccess) Indices() []Expression {
	return a.indices.get(func() []Expression {
		return convertExpressions(a.src.Children(cst.SlotIndices), a)
	})
}

func (a *ArrayAccess) LogString() string { return "UArrayAccessExpression" }

// Lambda is a lambda literal.
type Lambda struct {
	exprBase
	parameters lazy[[]*Parameter]
	body       lazy[Expression]
}

func newLambdaExpr(src cst.Node, parent Element) Expression {
	return &Lambda{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (l *Lambda) Kind() Kind { return KindLambda }

func (l *Lambda) ValueParameters() []*Parameter {
	return l.parameters.get(func() []*Parameter {
		return convertParameters(l.src.Children(cst.SlotParameters), l)
	})
}

func (l *Lambda) Body() Expression {
	return l.body.get(func() Expression {
		return convertOrEmpty(l.src.Child(cst.SlotBody), l)
	})
}

func (l *Lambda) Evaluate(context.Context, *ToolContext) (any, bool) { return nil, false }

func (l *Lambda) LogString() string { return "ULambdaExpression" }

// Empty stands in for an absent required child.
type Empty struct {
	exprBase
}

func newEmpty(parent Element) *Empty {
	return &Empty{exprBase: exprBase{base{parent: parent}}}
}

func (e *Empty) Kind() Kind { return KindEmpty }

func (e *Empty) Evaluate(context.Context, *ToolContext) (any, bool) { return nil, false }

func (e *Empty) LogString() string { return "EmptyExpression" }

// Unknown is the placeholder for source kinds without a unified variant.
// Tools should treat it as opaque.
type Unknown struct {
	exprBase
}

func newUnknown(src cst.Node, parent Element) *Unknown {
	return &Unknown{exprBase: exprBase{base{parent: parent, src: src}}}
}

func (u *Unknown) Kind() Kind { return KindUnknown }

// SourceKind returns the kind of the unconverted source node.
func (u *Unknown) SourceKind() cst.Kind { return u.src.Kind() }

func (u *Unknown) Evaluate(context.Context, *ToolContext) (any, bool) { return nil, false }

// LogString includes the raw source text of the unconverted node.
func (u *Unknown) LogString() string {
	return fmt.Sprintf("[!] Unknown %s (%s)", u.src.Kind(), u.src.Text())
}
