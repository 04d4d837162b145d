package uast

import (
	"context"
	"strings"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

func ident(name string) *cst.Element { return cst.New(cst.KindIdentifier, name) }

func named(kind cst.Kind, text, name string) *cst.Element {
	return cst.New(kind, text).Set(cst.SlotName, ident(name))
}

func ref(name string) *cst.Element { return cst.New(cst.KindNameReference, name) }

func lit(text string) *cst.Element { return cst.New(cst.KindLiteral, text) }

func typeRef(text, name string) *cst.Element {
	return named(cst.KindTypeReference, text, name)
}

func op(text string) *cst.Element { return cst.New(cst.KindOperationReference, text) }

func binary(left *cst.Element, operator string, right *cst.Element) *cst.Element {
	return cst.New(cst.KindBinary, left.Text()+" "+operator+" "+right.Text()).
		Set(cst.SlotLeft, left).
		Set(cst.SlotOperator, op(operator)).
		Set(cst.SlotRight, right)
}

func block(stmts ...*cst.Element) *cst.Element {
	texts := make([]string, 0, len(stmts))
	for _, s := range stmts {
		texts = append(texts, s.Text())
	}
	return cst.New(cst.KindBlock, "{"+strings.Join(texts, "; ")+"}").Append(cst.SlotStatements, stmts...)
}

func modifiers(e *cst.Element, kws ...string) *cst.Element {
	for _, kw := range kws {
		e.Append(cst.SlotModifiers, cst.New(cst.KindModifier, kw))
	}
	return e
}

// fixture is the tree for:
//
//	package demo
//	import demo.util.Helper
//	class B : Base(), Impl {
//	    fun f(a: Int) {
//	        val y = a
//	        return y / 2
//	    }
//	}
type fixture struct {
	file, imp, class, fn, param, body, local, localRef, ret, div, two *cst.Element
}

func newFixture() *fixture {
	f := &fixture{}
	f.two = lit("2")
	f.localRef = ref("a")
	f.local = named(cst.KindProperty, "val y = a", "y").Set(cst.SlotInitializer, f.localRef)
	modifiers(f.local, "val")
	f.div = binary(ref("y"), "/", f.two)
	f.ret = cst.New(cst.KindReturn, "return y / 2").Set(cst.SlotValue, f.div)
	f.body = block(f.local, f.ret)
	f.param = named(cst.KindParameter, "a: Int", "a").Set(cst.SlotType, typeRef("Int", "Int"))
	f.fn = named(cst.KindFunction, "fun f(a: Int) {...}", "f").
		Append(cst.SlotParameters, f.param).
		Set(cst.SlotBody, f.body)
	f.class = named(cst.KindClass, "class B : Base(), Impl {...}", "B").
		Append(cst.SlotSupertypes, typeRef("Base", "Base"), typeRef("Impl", "Impl")).
		Append(cst.SlotDeclarations, f.fn)
	f.imp = cst.New(cst.KindImport, "import demo.util.Helper").
		Set(cst.SlotName, cst.New(cst.KindIdentifier, "demo.util.Helper"))
	f.file = cst.New(cst.KindFile, "").
		Set(cst.SlotPackage, cst.New(cst.KindIdentifier, "demo")).
		Append(cst.SlotImports, f.imp).
		Append(cst.SlotDeclarations, f.class)
	return f
}

// fakeBindings answers semantic queries from fixed tables.
type fakeBindings struct {
	decls  map[cst.Node]cst.Node
	types  map[cst.Node]cst.Node
	errs   map[cst.Node]error
	consts map[cst.Node]any
}

func (b *fakeBindings) Declaration(n cst.Node) (cst.Node, error) {
	if err, ok := b.errs[n]; ok {
		return nil, err
	}
	if d, ok := b.decls[n]; ok {
		return d, nil
	}
	return nil, cst.ErrUnresolved
}

func (b *fakeBindings) TypeDeclaration(n cst.Node) (cst.Node, error) {
	if d, ok := b.types[n]; ok {
		return d, nil
	}
	return nil, cst.ErrUnresolved
}

func (b *fakeBindings) ConstantValue(n cst.Node) (any, bool) {
	v, ok := b.consts[n]
	return v, ok
}

type fakeAnalyzer struct {
	bindings *fakeBindings
	err      error
	calls    int
	depths   []cst.Depth
}

func (a *fakeAnalyzer) Analyze(_ context.Context, _ cst.Node, depth cst.Depth) (cst.Bindings, error) {
	a.calls++
	a.depths = append(a.depths, depth)
	if a.err != nil {
		return nil, a.err
	}
	return a.bindings, nil
}

func newFakeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{bindings: &fakeBindings{
		decls:  map[cst.Node]cst.Node{},
		types:  map[cst.Node]cst.Node{},
		errs:   map[cst.Node]error{},
		consts: map[cst.Node]any{},
	}}
}

// kindChain lists the kinds from el up to the root.
func kindChain(el Element) []Kind {
	var out []Kind
	for cur := el; cur != nil; cur = cur.Parent() {
		out = append(out, cur.Kind())
	}
	return out
}
