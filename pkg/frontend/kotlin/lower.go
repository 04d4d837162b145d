package kotlin

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// lowerer converts one tree-sitter tree into cst elements.
type lowerer struct {
	src    []byte
	errors int
}

var binaryTypes = map[string]bool{
	"additive_expression":       true,
	"multiplicative_expression": true,
	"comparison_expression":     true,
	"equality_expression":       true,
	"conjunction_expression":    true,
	"disjunction_expression":    true,
	"infix_expression":          true,
}

var typeTypes = map[string]bool{
	"user_type":          true,
	"nullable_type":      true,
	"non_nullable_type":  true,
	"function_type":      true,
	"parenthesized_type": true,
	"type":               true,
}

var literalTypes = map[string]bool{
	"integer_literal":   true,
	"long_literal":      true,
	"hex_literal":       true,
	"bin_literal":       true,
	"real_literal":      true,
	"boolean_literal":   true,
	"character_literal": true,
	"null_literal":      true,
	"unsigned_literal":  true,
	"null":              true,
}

// opaque maps grammar types of constructs the unified tree does not model.
var opaque = map[string]cst.Kind{
	"when_expression":    cst.KindWhen,
	"elvis_expression":   cst.KindElvis,
	"range_expression":   cst.KindRange,
	"object_literal":     cst.KindObjectLiteral,
	"callable_reference": cst.KindCallableReference,
	"type_alias":         cst.KindTypeAlias,
	"annotation":         cst.KindAnnotation,
}

func (l *lowerer) text(n *sitter.Node) string { return n.Content(l.src) }

func (l *lowerer) span(n *sitter.Node) cst.Span {
	start, end := n.StartPoint(), n.EndPoint()
	return cst.Span{
		Start: cst.Position{Line: int(start.Row) + 1, Column: int(start.Column) + 1, Offset: int(n.StartByte())},
		End:   cst.Position{Line: int(end.Row) + 1, Column: int(end.Column) + 1, Offset: int(n.EndByte())},
	}
}

func (l *lowerer) node(kind cst.Kind, n *sitter.Node) *cst.Element {
	return cst.New(kind, l.text(n)).SetSpan(l.span(n))
}

func (l *lowerer) ident(n *sitter.Node) *cst.Element {
	return l.node(cst.KindIdentifier, n)
}

func isComment(n *sitter.Node) bool {
	switch n.Type() {
	case "comment", "line_comment", "multiline_comment":
		return true
	}
	return false
}

// children returns all children of n except comments.
func children(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || isComment(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// namedChildren returns the named children of n except comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil || isComment(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func firstOfType(n *sitter.Node, types ...string) *sitter.Node {
	for _, c := range namedChildren(n) {
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

// isValue reports whether a child can stand as an expression operand.
func isValue(n *sitter.Node) bool {
	return (n.IsNamed() && !isComment(n)) || n.Type() == "null"
}

func isError(n *sitter.Node) bool { return n.Type() == "ERROR" || n.IsMissing() }

func (l *lowerer) errorNode(n *sitter.Node) *cst.Element {
	l.errors++
	return l.node(cst.KindError, n)
}

func (l *lowerer) file(root *sitter.Node) *cst.Element {
	file := l.node(cst.KindFile, root)
	for _, c := range namedChildren(root) {
		switch c.Type() {
		case "package_header":
			if id := firstOfType(c, "identifier"); id != nil {
				file.Set(cst.SlotPackage, l.ident(id))
			}
		case "import_list":
			for _, h := range namedChildren(c) {
				if h.Type() == "import_header" {
					file.Append(cst.SlotImports, l.importHeader(h))
				}
			}
		case "import_header":
			file.Append(cst.SlotImports, l.importHeader(c))
		case "shebang_line", "file_annotation":
		default:
			if d := l.declaration(c); d != nil {
				file.Append(cst.SlotDeclarations, d)
			} else if isError(c) {
				file.Append(cst.SlotDeclarations, l.errorNode(c))
			}
		}
	}
	return file
}

func (l *lowerer) importHeader(h *sitter.Node) *cst.Element {
	imp := l.node(cst.KindImport, h)
	id := firstOfType(h, "identifier")
	if id == nil {
		return imp
	}
	name := l.text(id)
	if firstOfType(h, "wildcard_import") != nil {
		name += ".*"
	}
	return imp.Set(cst.SlotName, cst.New(cst.KindIdentifier, name).SetSpan(l.span(id)))
}

// declaration lowers a declaration node, or returns nil if n is not one.
func (l *lowerer) declaration(n *sitter.Node) *cst.Element {
	switch n.Type() {
	case "class_declaration":
		return l.class(n, l.classKind(n))
	case "object_declaration", "companion_object":
		return l.class(n, cst.KindObject)
	case "function_declaration":
		return l.function(n)
	case "secondary_constructor":
		return l.constructor(n)
	case "property_declaration":
		return l.property(n)
	case "enum_entry":
		p := l.node(cst.KindProperty, n)
		if id := firstOfType(n, "simple_identifier"); id != nil {
			p.Set(cst.SlotName, l.ident(id))
		}
		return p
	case "type_alias":
		return l.node(cst.KindTypeAlias, n)
	}
	return nil
}

func (l *lowerer) classKind(n *sitter.Node) cst.Kind {
	for _, c := range children(n) {
		switch c.Type() {
		case "interface":
			return cst.KindInterface
		case "modifiers":
			for _, m := range namedChildren(c) {
				if m.Type() == "class_modifier" && l.text(m) == "enum" {
					return cst.KindEnumClass
				}
			}
		}
	}
	return cst.KindClass
}

func (l *lowerer) class(n *sitter.Node, kind cst.Kind) *cst.Element {
	cls := l.node(kind, n)
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "modifiers":
			l.modifiers(cls, c)
		case "type_identifier", "simple_identifier":
			if cls.Child(cst.SlotName) == nil {
				cls.Set(cst.SlotName, l.ident(c))
			}
		case "primary_constructor", "class_parameters":
			l.classParameters(cls, c)
		case "delegation_specifiers", "delegation_specifier":
			l.supertypes(cls, c)
		case "class_body", "enum_class_body":
			l.members(cls, c)
		}
	}
	return cls
}

func (l *lowerer) classParameters(cls *cst.Element, n *sitter.Node) {
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "class_parameters":
			l.classParameters(cls, c)
		case "class_parameter":
			cls.Append(cst.SlotParameters, l.parameter(c))
		}
	}
}

func (l *lowerer) supertypes(cls *cst.Element, n *sitter.Node) {
	if n.Type() == "delegation_specifiers" {
		for _, c := range namedChildren(n) {
			l.supertypes(cls, c)
		}
		return
	}
	if t := l.findType(n); t != nil {
		cls.Append(cst.SlotSupertypes, l.typeRef(t))
	}
}

// findType returns the first type node at or below n.
func (l *lowerer) findType(n *sitter.Node) *sitter.Node {
	if typeTypes[n.Type()] {
		return n
	}
	for _, c := range namedChildren(n) {
		if t := l.findType(c); t != nil {
			return t
		}
	}
	return nil
}

func (l *lowerer) members(cls *cst.Element, body *sitter.Node) {
	for _, c := range namedChildren(body) {
		if d := l.declaration(c); d != nil {
			cls.Append(cst.SlotDeclarations, d)
			continue
		}
		switch {
		case c.Type() == "class_member_declarations" || c.Type() == "enum_entries":
			l.members(cls, c)
		case isError(c):
			cls.Append(cst.SlotDeclarations, l.errorNode(c))
		}
	}
}

func (l *lowerer) modifiers(el *cst.Element, n *sitter.Node) {
	for _, m := range namedChildren(n) {
		if m.Type() == "annotation" {
			continue
		}
		el.Append(cst.SlotModifiers, l.node(cst.KindModifier, m))
	}
}

func (l *lowerer) keyword(el *cst.Element, n *sitter.Node) {
	el.Append(cst.SlotModifiers, l.node(cst.KindModifier, n))
}

// parameter lowers class parameters, function parameters and loop variables.
func (l *lowerer) parameter(n *sitter.Node) *cst.Element {
	p := l.node(cst.KindParameter, n)
	afterEq := false
	for _, c := range children(n) {
		switch {
		case c.Type() == "=":
			afterEq = true
		case c.Type() == "val" || c.Type() == "var":
			l.keyword(p, c)
		case c.Type() == "modifiers" || c.Type() == "parameter_modifiers":
			l.modifiers(p, c)
		case c.Type() == "simple_identifier" && p.Child(cst.SlotName) == nil:
			p.Set(cst.SlotName, l.ident(c))
		case typeTypes[c.Type()]:
			p.Set(cst.SlotType, l.typeRef(c))
		case afterEq && isValue(c):
			p.Set(cst.SlotInitializer, l.expr(c))
			afterEq = false
		}
	}
	return p
}

// valueParameters lowers function_value_parameters, where modifiers and
// default values are siblings of the parameter they belong to.
func (l *lowerer) valueParameters(owner *cst.Element, n *sitter.Node) {
	var last *cst.Element
	var pending *sitter.Node
	afterEq := false
	for _, c := range children(n) {
		switch {
		case c.Type() == "parameter_modifiers":
			pending = c
		case c.Type() == "parameter":
			last = l.parameter(c)
			if pending != nil {
				l.modifiers(last, pending)
				pending = nil
			}
			owner.Append(cst.SlotParameters, last)
		case c.Type() == "=":
			afterEq = true
		case afterEq && last != nil && isValue(c):
			last.Set(cst.SlotInitializer, l.expr(c))
			afterEq = false
		}
	}
}

func (l *lowerer) function(n *sitter.Node) *cst.Element {
	fn := l.node(cst.KindFunction, n)
	afterColon := false
	for _, c := range children(n) {
		switch {
		case c.Type() == "modifiers":
			l.modifiers(fn, c)
		case c.Type() == "simple_identifier" && fn.Child(cst.SlotName) == nil:
			fn.Set(cst.SlotName, l.ident(c))
		case c.Type() == "function_value_parameters":
			l.valueParameters(fn, c)
		case c.Type() == ":":
			afterColon = true
		case typeTypes[c.Type()] && afterColon:
			fn.Set(cst.SlotType, l.typeRef(c))
			afterColon = false
		case c.Type() == "function_body":
			fn.Set(cst.SlotBody, l.functionBody(c))
		}
	}
	return fn
}

func (l *lowerer) constructor(n *sitter.Node) *cst.Element {
	ctor := l.node(cst.KindConstructor, n)
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "modifiers":
			l.modifiers(ctor, c)
		case "function_value_parameters":
			l.valueParameters(ctor, c)
		}
	}
	if body := l.inlineBlock(n); body != nil {
		ctor.Set(cst.SlotBody, body)
	}
	return ctor
}

func (l *lowerer) property(n *sitter.Node) *cst.Element {
	prop := l.node(cst.KindProperty, n)
	afterEq := false
	for _, c := range children(n) {
		switch {
		case c.Type() == "modifiers":
			l.modifiers(prop, c)
		case c.Type() == "val" || c.Type() == "var" || c.Type() == "binding_pattern_kind":
			l.keyword(prop, c)
		case c.Type() == "variable_declaration":
			if id := firstOfType(c, "simple_identifier"); id != nil {
				prop.Set(cst.SlotName, l.ident(id))
			}
			if t := l.findType(c); t != nil {
				prop.Set(cst.SlotType, l.typeRef(t))
			}
		case c.Type() == "multi_variable_declaration":
			prop.Set(cst.SlotName, l.ident(c))
		case c.Type() == "=":
			afterEq = true
		case afterEq && isValue(c):
			prop.Set(cst.SlotInitializer, l.expr(c))
			afterEq = false
		}
	}
	return prop
}

// typeRef lowers a type. The name slot carries the possibly qualified type
// name without nullability or type arguments; function types have none.
func (l *lowerer) typeRef(n *sitter.Node) *cst.Element {
	t := l.node(cst.KindTypeReference, n)
	if name := cst.TypeName(l.text(n)); name != "" {
		t.Set(cst.SlotName, cst.New(cst.KindIdentifier, name).SetSpan(l.span(n)))
	}
	return t
}

func (l *lowerer) functionBody(n *sitter.Node) *cst.Element {
	for _, c := range children(n) {
		if c.Type() == "=" {
			if vals := namedChildren(n); len(vals) > 0 {
				return l.expr(vals[0])
			}
		}
	}
	if b := l.inlineBlock(n); b != nil {
		return b
	}
	return l.node(cst.KindBlock, n)
}

// inlineBlock lowers the braces block held directly by n, whether the
// grammar exposes it as a block node or inlines its statements.
func (l *lowerer) inlineBlock(n *sitter.Node) *cst.Element {
	if b := firstOfType(n, "block"); b != nil {
		return l.block(b)
	}
	var lbrace, rbrace *sitter.Node
	for _, c := range children(n) {
		switch c.Type() {
		case "{":
			if lbrace == nil {
				lbrace = c
			}
		case "}":
			if lbrace != nil && rbrace == nil {
				rbrace = c
			}
		}
	}
	if lbrace == nil || rbrace == nil {
		return nil
	}
	block := cst.New(cst.KindBlock, string(l.src[lbrace.StartByte():rbrace.EndByte()]))
	block.SetSpan(cst.Span{Start: l.span(lbrace).Start, End: l.span(rbrace).End})
	for _, c := range namedChildren(n) {
		if c.StartByte() > lbrace.StartByte() && c.EndByte() < rbrace.EndByte() {
			l.statements(block, c)
		}
	}
	return block
}

func (l *lowerer) block(n *sitter.Node) *cst.Element {
	block := l.node(cst.KindBlock, n)
	for _, c := range namedChildren(n) {
		l.statements(block, c)
	}
	return block
}

// statements appends n to block, flattening statement lists.
func (l *lowerer) statements(block *cst.Element, n *sitter.Node) {
	switch n.Type() {
	case "statements":
		for _, c := range namedChildren(n) {
			l.statements(block, c)
		}
	case "label":
	default:
		block.Append(cst.SlotStatements, l.statement(n))
	}
}

func (l *lowerer) statement(n *sitter.Node) *cst.Element {
	if d := l.declaration(n); d != nil {
		return d
	}
	return l.expr(n)
}

// body lowers a control_structure_body: a block, or a single statement.
func (l *lowerer) body(n *sitter.Node) *cst.Element {
	if n.Type() != "control_structure_body" {
		return l.statement(n)
	}
	if b := l.inlineBlock(n); b != nil {
		return b
	}
	if stmts := namedChildren(n); len(stmts) > 0 {
		return l.statement(stmts[0])
	}
	return l.node(cst.KindBlock, n)
}

// expr lowers an expression node.
func (l *lowerer) expr(n *sitter.Node) *cst.Element {
	if isError(n) {
		return l.errorNode(n)
	}
	if kind, ok := opaque[n.Type()]; ok {
		return l.node(kind, n)
	}
	if literalTypes[n.Type()] {
		return l.node(cst.KindLiteral, n)
	}
	if binaryTypes[n.Type()] {
		return l.binary(n)
	}

	switch n.Type() {
	case "simple_identifier", "identifier":
		return l.node(cst.KindNameReference, n)
	case "string_literal", "line_string_literal", "multi_line_string_literal":
		if cst.IsTemplate(l.text(n)) {
			return l.node(cst.KindStringTemplate, n)
		}
		return l.node(cst.KindLiteral, n)
	case "parenthesized_expression":
		p := l.node(cst.KindParenthesized, n)
		if inner := namedChildren(n); len(inner) > 0 {
			p.Set(cst.SlotValue, l.expr(inner[0]))
		}
		return p
	case "call_expression":
		return l.call(n)
	case "navigation_expression":
		return l.navigation(n)
	case "indexing_expression":
		return l.indexing(n)
	case "directly_assignable_expression":
		return l.assignable(n)
	case "assignment":
		return l.assignment(n)
	case "check_expression":
		return l.check(n)
	case "as_expression":
		return l.cast(n)
	case "prefix_expression":
		return l.unary(n, cst.KindPrefix)
	case "postfix_expression":
		return l.unary(n, cst.KindPostfix)
	case "this_expression":
		return l.labeled(l.node(cst.KindThis, n), n)
	case "super_expression":
		return l.labeled(l.node(cst.KindSuper, n), n)
	case "if_expression":
		return l.ifExpr(n)
	case "while_statement":
		return l.loop(n, cst.KindWhile)
	case "do_while_statement":
		return l.loop(n, cst.KindDoWhile)
	case "for_statement":
		return l.forLoop(n)
	case "jump_expression":
		return l.jump(n)
	case "try_expression":
		return l.try(n)
	case "lambda_literal":
		return l.lambda(n)
	case "annotated_lambda":
		if lam := firstOfType(n, "lambda_literal"); lam != nil {
			return l.lambda(lam)
		}
	case "control_structure_body":
		return l.body(n)
	}

	if inner := namedChildren(n); len(inner) == 1 {
		return l.expr(inner[0])
	}
	return l.node(cst.Kind(n.Type()), n)
}

// operator returns the first anonymous child that is not punctuation.
func (l *lowerer) operator(n *sitter.Node) *cst.Element {
	for _, c := range children(n) {
		if c.IsNamed() {
			continue
		}
		switch c.Type() {
		case "(", ")", "{", "}", ",", ";":
			continue
		}
		return l.node(cst.KindOperationReference, c)
	}
	return nil
}

func (l *lowerer) binary(n *sitter.Node) *cst.Element {
	b := l.node(cst.KindBinary, n)
	operands := namedChildren(n)
	if len(operands) == 0 {
		return b
	}
	b.Set(cst.SlotLeft, l.expr(operands[0]))
	if n.Type() == "infix_expression" && len(operands) == 3 {
		b.Set(cst.SlotOperator, l.node(cst.KindOperationReference, operands[1]))
	} else {
		b.Set(cst.SlotOperator, l.operator(n))
	}
	if len(operands) > 1 {
		b.Set(cst.SlotRight, l.expr(operands[len(operands)-1]))
	}
	return b
}

func (l *lowerer) assignment(n *sitter.Node) *cst.Element {
	b := l.node(cst.KindBinary, n)
	operands := namedChildren(n)
	if len(operands) > 0 {
		b.Set(cst.SlotLeft, l.expr(operands[0]))
	}
	b.Set(cst.SlotOperator, l.operator(n))
	if len(operands) > 1 {
		b.Set(cst.SlotRight, l.expr(operands[len(operands)-1]))
	}
	return b
}

func (l *lowerer) arguments(call *cst.Element, suffix *sitter.Node) {
	for _, c := range namedChildren(suffix) {
		switch c.Type() {
		case "value_arguments":
			for _, arg := range namedChildren(c) {
				if arg.Type() != "value_argument" {
					continue
				}
				// Named arguments carry the parameter name first.
				if vals := namedChildren(arg); len(vals) > 0 {
					call.Append(cst.SlotArguments, l.expr(vals[len(vals)-1]))
				}
			}
		case "annotated_lambda", "lambda_literal":
			call.Append(cst.SlotArguments, l.expr(c))
		}
	}
}

// call lowers call_expression. A call on a navigation becomes a qualified
// expression whose selector is the call, as in a.f(x).
func (l *lowerer) call(n *sitter.Node) *cst.Element {
	parts := namedChildren(n)
	if len(parts) == 0 {
		return l.node(cst.KindCall, n)
	}
	callee, suffix := parts[0], firstOfType(n, "call_suffix")

	if callee.Type() == "navigation_expression" {
		nav := namedChildren(callee)
		navSuffix := firstOfType(callee, "navigation_suffix")
		if len(nav) > 0 && navSuffix != nil {
			if name := firstOfType(navSuffix, "simple_identifier"); name != nil {
				q := l.node(l.qualifiedKind(navSuffix), n)
				q.Set(cst.SlotReceiver, l.expr(nav[0]))
				c := cst.New(cst.KindCall, string(l.src[name.StartByte():n.EndByte()]))
				c.SetSpan(cst.Span{Start: l.span(name).Start, End: l.span(n).End})
				c.Set(cst.SlotCallee, l.node(cst.KindNameReference, name))
				if suffix != nil {
					l.arguments(c, suffix)
				}
				return q.Set(cst.SlotSelector, c)
			}
		}
	}

	c := l.node(cst.KindCall, n)
	c.Set(cst.SlotCallee, l.expr(callee))
	if suffix != nil {
		l.arguments(c, suffix)
	}
	return c
}

func (l *lowerer) qualifiedKind(suffix *sitter.Node) cst.Kind {
	if strings.HasPrefix(strings.TrimSpace(l.text(suffix)), "?.") {
		return cst.KindSafeQualified
	}
	return cst.KindDotQualified
}

func (l *lowerer) navigation(n *sitter.Node) *cst.Element {
	parts := namedChildren(n)
	suffix := firstOfType(n, "navigation_suffix")
	if len(parts) == 0 || suffix == nil {
		return l.node(cst.Kind(n.Type()), n)
	}
	if strings.HasPrefix(strings.TrimSpace(l.text(suffix)), "::") {
		return l.node(cst.KindCallableReference, n)
	}
	q := l.node(l.qualifiedKind(suffix), n)
	q.Set(cst.SlotReceiver, l.expr(parts[0]))
	if sel := namedChildren(suffix); len(sel) > 0 {
		q.Set(cst.SlotSelector, l.expr(sel[0]))
	}
	return q
}

func (l *lowerer) indexing(n *sitter.Node) *cst.Element {
	a := l.node(cst.KindArrayAccess, n)
	parts := namedChildren(n)
	if len(parts) == 0 {
		return a
	}
	a.Set(cst.SlotReceiver, l.expr(parts[0]))
	if suffix := firstOfType(n, "indexing_suffix"); suffix != nil {
		for _, idx := range namedChildren(suffix) {
			a.Append(cst.SlotIndices, l.expr(idx))
		}
	}
	return a
}

// assignable lowers the left side of an assignment, which the grammar
// spells as an operand followed by a navigation or indexing suffix.
func (l *lowerer) assignable(n *sitter.Node) *cst.Element {
	parts := namedChildren(n)
	if len(parts) == 2 {
		switch parts[1].Type() {
		case "navigation_suffix":
			q := l.node(l.qualifiedKind(parts[1]), n)
			q.Set(cst.SlotReceiver, l.expr(parts[0]))
			if sel := namedChildren(parts[1]); len(sel) > 0 {
				q.Set(cst.SlotSelector, l.expr(sel[0]))
			}
			return q
		case "indexing_suffix":
			a := l.node(cst.KindArrayAccess, n)
			a.Set(cst.SlotReceiver, l.expr(parts[0]))
			for _, idx := range namedChildren(parts[1]) {
				a.Append(cst.SlotIndices, l.expr(idx))
			}
			return a
		}
	}
	if len(parts) == 1 {
		return l.expr(parts[0])
	}
	return l.node(cst.Kind(n.Type()), n)
}

// directType returns the first type among the direct children of n.
func directType(n *sitter.Node) *sitter.Node {
	for _, c := range namedChildren(n) {
		if typeTypes[c.Type()] {
			return c
		}
	}
	return nil
}

func (l *lowerer) check(n *sitter.Node) *cst.Element {
	parts := namedChildren(n)
	t := directType(n)
	if t == nil {
		// "in" and "!in" checks are plain binary expressions.
		return l.binary(n)
	}
	is := l.node(cst.KindIs, n)
	if len(parts) > 0 {
		is.Set(cst.SlotOperand, l.expr(parts[0]))
	}
	is.Set(cst.SlotOperator, l.operator(n))
	return is.Set(cst.SlotType, l.typeRef(t))
}

func (l *lowerer) cast(n *sitter.Node) *cst.Element {
	as := l.node(cst.KindAs, n)
	parts := namedChildren(n)
	if len(parts) > 0 {
		as.Set(cst.SlotOperand, l.expr(parts[0]))
	}
	as.Set(cst.SlotOperator, l.operator(n))
	if t := directType(n); t != nil {
		as.Set(cst.SlotType, l.typeRef(t))
	}
	return as
}

func (l *lowerer) unary(n *sitter.Node, kind cst.Kind) *cst.Element {
	op := l.operator(n)
	parts := namedChildren(n)
	if op == nil {
		// Annotated or labeled expressions carry no operator.
		if len(parts) > 0 {
			return l.expr(parts[len(parts)-1])
		}
		return l.node(cst.Kind(n.Type()), n)
	}
	u := l.node(kind, n).Set(cst.SlotOperator, op)
	if len(parts) > 0 {
		u.Set(cst.SlotOperand, l.expr(parts[len(parts)-1]))
	}
	return u
}

// labeled sets the label slot of this, super and jump expressions from the
// "@label" part of their text.
func (l *lowerer) labeled(el *cst.Element, n *sitter.Node) *cst.Element {
	text := l.text(n)
	i := strings.Index(text, "@")
	if i < 0 {
		return el
	}
	label := text[i+1:]
	if j := strings.IndexAny(label, " \t\r\n(;"); j >= 0 {
		label = label[:j]
	}
	if label != "" {
		el.Set(cst.SlotLabel, cst.New(cst.KindIdentifier, label))
	}
	return el
}

func (l *lowerer) ifExpr(n *sitter.Node) *cst.Element {
	el := l.node(cst.KindIf, n)
	afterElse := false
	for _, c := range children(n) {
		switch {
		case c.Type() == "else":
			afterElse = true
		case !isValue(c):
		case el.Child(cst.SlotCondition) == nil && c.Type() != "control_structure_body":
			el.Set(cst.SlotCondition, l.expr(c))
		case afterElse:
			el.Set(cst.SlotElse, l.body(c))
		default:
			el.Set(cst.SlotThen, l.body(c))
		}
	}
	return el
}

func (l *lowerer) loop(n *sitter.Node, kind cst.Kind) *cst.Element {
	el := l.node(kind, n)
	for _, c := range namedChildren(n) {
		if c.Type() == "control_structure_body" {
			el.Set(cst.SlotBody, l.body(c))
		} else if el.Child(cst.SlotCondition) == nil {
			el.Set(cst.SlotCondition, l.expr(c))
		}
	}
	if el.Child(cst.SlotBody) == nil {
		if b := l.inlineBlock(n); b != nil {
			el.Set(cst.SlotBody, b)
		}
	}
	return el
}

func (l *lowerer) forLoop(n *sitter.Node) *cst.Element {
	el := l.node(cst.KindFor, n)
	afterIn := false
	for _, c := range children(n) {
		switch {
		case c.Type() == "in":
			afterIn = true
		case c.Type() == "variable_declaration":
			el.Set(cst.SlotLoopParameter, l.parameter(c))
		case c.Type() == "multi_variable_declaration":
			el.Set(cst.SlotLoopParameter, l.node(cst.KindParameter, c))
		case c.Type() == "control_structure_body":
			el.Set(cst.SlotBody, l.body(c))
		case afterIn && isValue(c):
			el.Set(cst.SlotIterable, l.expr(c))
			afterIn = false
		}
	}
	return el
}

func (l *lowerer) jump(n *sitter.Node) *cst.Element {
	text := strings.TrimSpace(l.text(n))
	var kind cst.Kind
	switch {
	case strings.HasPrefix(text, "return"):
		kind = cst.KindReturn
	case strings.HasPrefix(text, "throw"):
		kind = cst.KindThrow
	case strings.HasPrefix(text, "break"):
		kind = cst.KindBreak
	default:
		kind = cst.KindContinue
	}
	el := l.labeled(l.node(kind, n), n)
	label := ""
	if lb := el.Child(cst.SlotLabel); lb != nil {
		label = lb.Text()
	}
	for _, c := range children(n) {
		if !isValue(c) || c.Type() == "label" {
			continue
		}
		if label != "" && l.text(c) == label && c.Type() == "simple_identifier" {
			label = ""
			continue
		}
		el.Set(cst.SlotValue, l.expr(c))
		break
	}
	return el
}

func (l *lowerer) try(n *sitter.Node) *cst.Element {
	el := l.node(cst.KindTry, n)
	if b := l.inlineBlock(n); b != nil {
		el.Set(cst.SlotTry, b)
	}
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "catch_block":
			el.Append(cst.SlotCatches, l.catch(c))
		case "finally_block":
			if b := l.inlineBlock(c); b != nil {
				el.Set(cst.SlotFinally, b)
			}
		}
	}
	return el
}

func (l *lowerer) catch(n *sitter.Node) *cst.Element {
	el := l.node(cst.KindCatch, n)
	param := l.node(cst.KindParameter, n)
	if id := firstOfType(n, "simple_identifier"); id != nil {
		param.Set(cst.SlotName, l.ident(id))
		param.SetText(l.text(id))
		param.SetSpan(l.span(id))
	}
	if t := firstOfType(n, "user_type", "nullable_type", "type"); t != nil {
		param.Set(cst.SlotType, l.typeRef(t))
	}
	el.Append(cst.SlotParameters, param)
	if b := l.inlineBlock(n); b != nil {
		el.Set(cst.SlotBody, b)
	}
	return el
}

func (l *lowerer) lambda(n *sitter.Node) *cst.Element {
	el := l.node(cst.KindLambda, n)
	body := l.node(cst.KindBlock, n)
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "lambda_parameters":
			for _, p := range namedChildren(c) {
				el.Append(cst.SlotParameters, l.parameter(p))
			}
		default:
			l.statements(body, c)
		}
	}
	return el.Set(cst.SlotBody, body)
}
