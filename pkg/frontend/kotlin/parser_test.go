package kotlin

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapuast/internal/testutil"
	"github.com/leapstack-labs/leapuast/pkg/cst"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

const greeter = `package demo.app

import demo.util.Helper

class Greeter(val name: String) {
    fun greet(times: Int): String {
        val prefix = "Hello"
        return prefix + name
    }
}
`

func parse(t *testing.T, src string) *cst.Element {
	t.Helper()
	p := NewParser(WithLogger(testutil.NewTestLogger(t)))
	root, err := p.Parse(t.Context(), []byte(src), "test.kt")
	require.NoError(t, err)
	require.NotNil(t, root)
	return root
}

// find returns the first element of kind in root, depth-first.
func find(root *cst.Element, kind cst.Kind) *cst.Element {
	var found *cst.Element
	cst.Walk(root, func(e *cst.Element) bool {
		if found != nil {
			return false
		}
		if e.Kind() == kind {
			found = e
			return false
		}
		return true
	})
	return found
}

func nameOf(n cst.Node) string {
	if n == nil {
		return ""
	}
	if name := n.Child(cst.SlotName); name != nil {
		return name.Text()
	}
	return ""
}

func TestParse_Declarations(t *testing.T) {
	root := parse(t, greeter)

	assert.Equal(t, cst.KindFile, root.Kind())
	require.NotNil(t, root.Child(cst.SlotPackage))
	assert.Equal(t, "demo.app", root.Child(cst.SlotPackage).Text())

	imports := root.Children(cst.SlotImports)
	require.Len(t, imports, 1)
	assert.Equal(t, "demo.util.Helper", nameOf(imports[0]))

	decls := root.Children(cst.SlotDeclarations)
	require.Len(t, decls, 1)
	cls := decls[0]
	assert.Equal(t, cst.KindClass, cls.Kind())
	assert.Equal(t, "Greeter", nameOf(cls))

	params := cls.Children(cst.SlotParameters)
	require.Len(t, params, 1)
	assert.Equal(t, "name", nameOf(params[0]))
	assert.Equal(t, "String", nameOf(params[0].Child(cst.SlotType)))

	fn := find(root, cst.KindFunction)
	require.NotNil(t, fn)
	assert.Same(t, cls, fn.Parent())
	assert.Equal(t, "greet", nameOf(fn))
	require.Len(t, fn.Children(cst.SlotParameters), 1)
	assert.Equal(t, "times", nameOf(fn.Children(cst.SlotParameters)[0]))
	assert.Equal(t, "String", nameOf(fn.Child(cst.SlotType)))

	body := fn.Child(cst.SlotBody)
	require.NotNil(t, body)
	assert.Equal(t, cst.KindBlock, body.Kind())
	stmts := body.Children(cst.SlotStatements)
	require.Len(t, stmts, 2)

	assert.Equal(t, cst.KindProperty, stmts[0].Kind())
	assert.Equal(t, "prefix", nameOf(stmts[0]))
	init := stmts[0].Child(cst.SlotInitializer)
	require.NotNil(t, init)
	assert.Equal(t, cst.KindLiteral, init.Kind())
	assert.Equal(t, `"Hello"`, init.Text())

	assert.Equal(t, cst.KindReturn, stmts[1].Kind())
	sum := stmts[1].Child(cst.SlotValue)
	require.NotNil(t, sum)
	assert.Equal(t, cst.KindBinary, sum.Kind())
	assert.Equal(t, "+", sum.Child(cst.SlotOperator).Text())
}

func TestParse_ParentsFollowSlots(t *testing.T) {
	root := parse(t, greeter)
	cst.Walk(root, func(e *cst.Element) bool {
		for _, slot := range e.Slots() {
			for _, c := range e.Children(slot) {
				assert.Same(t, e, c.Parent(), "%s in %s", c.Kind(), e.Kind())
			}
		}
		return true
	})
}

func TestParse_Spans(t *testing.T) {
	root := parse(t, greeter)

	// "prefix" in "return prefix + name" on line 8.
	n := cst.FindAt(root, cst.Position{Line: 8, Column: 17})
	require.NotNil(t, n)
	assert.Equal(t, cst.KindNameReference, n.Kind())
	assert.Equal(t, "prefix", n.Text())
	assert.Equal(t, 8, n.Span().Start.Line)
	assert.Equal(t, 16, n.Span().Start.Column)
	assert.Equal(t, strings.Index(greeter, "prefix + name"), n.Span().Start.Offset)
}

func TestParse_Expressions(t *testing.T) {
	tests := []struct {
		expr string
		want cst.Kind
	}{
		{"a.b", cst.KindDotQualified},
		{"a?.b", cst.KindSafeQualified},
		{"f(1, 2)", cst.KindCall},
		{"a.f(1)", cst.KindDotQualified},
		{"x is String", cst.KindIs},
		{"x as String", cst.KindAs},
		{"-x", cst.KindPrefix},
		{"(1)", cst.KindParenthesized},
		{"42", cst.KindLiteral},
		{"true", cst.KindLiteral},
		{`"plain"`, cst.KindLiteral},
		{`"hi $name"`, cst.KindStringTemplate},
		{"a * b", cst.KindBinary},
		{"a == b", cst.KindBinary},
		{"a && b", cst.KindBinary},
		{"x ?: y", cst.KindElvis},
		{"xs[0]", cst.KindArrayAccess},
		{"this", cst.KindThis},
		{"if (a) 1 else 2", cst.KindIf},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			root := parse(t, "fun f() {\n    val v = "+tt.expr+"\n}\n")
			prop := find(root, cst.KindProperty)
			require.NotNil(t, prop)
			init := prop.Child(cst.SlotInitializer)
			require.NotNil(t, init)
			assert.Equal(t, tt.want, init.Kind())
			assert.Equal(t, tt.expr, init.Text())
		})
	}
}

func TestParse_QualifiedCall(t *testing.T) {
	root := parse(t, "fun f() {\n    val v = repo.load(1, \"x\")\n}\n")
	q := find(root, cst.KindDotQualified)
	require.NotNil(t, q)
	assert.Equal(t, "repo", q.Child(cst.SlotReceiver).Text())

	call := q.Child(cst.SlotSelector)
	require.NotNil(t, call)
	assert.Equal(t, cst.KindCall, call.Kind())
	assert.Equal(t, "load", call.Child(cst.SlotCallee).Text())
	assert.Len(t, call.Children(cst.SlotArguments), 2)
}

func TestParse_Statements(t *testing.T) {
	tests := []struct {
		stmt string
		want cst.Kind
	}{
		{"while (a) { b() }", cst.KindWhile},
		{"for (i in xs) { println(i) }", cst.KindFor},
		{"try { a() } catch (e: Exception) { b() }", cst.KindTry},
		{"throw IllegalStateException()", cst.KindThrow},
		{"return", cst.KindReturn},
		{"x = 1", cst.KindBinary},
	}
	for _, tt := range tests {
		t.Run(tt.stmt, func(t *testing.T) {
			root := parse(t, "fun f() {\n    "+tt.stmt+"\n}\n")
			fn := find(root, cst.KindFunction)
			require.NotNil(t, fn)
			stmts := fn.Child(cst.SlotBody).Children(cst.SlotStatements)
			require.Len(t, stmts, 1)
			assert.Equal(t, tt.want, stmts[0].Kind())
		})
	}
}

func TestParse_ForLoopParts(t *testing.T) {
	root := parse(t, "fun f(xs: List<Int>) {\n    for (i in xs) { println(i) }\n}\n")
	loop := find(root, cst.KindFor)
	require.NotNil(t, loop)
	assert.Equal(t, "i", nameOf(loop.Child(cst.SlotLoopParameter)))
	assert.Equal(t, "xs", loop.Child(cst.SlotIterable).Text())
	assert.Equal(t, cst.KindBlock, loop.Child(cst.SlotBody).Kind())
}

func TestParse_TryParts(t *testing.T) {
	root := parse(t, "fun f() {\n    try { a() } catch (e: Exception) { } finally { b() }\n}\n")
	try := find(root, cst.KindTry)
	require.NotNil(t, try)
	require.NotNil(t, try.Child(cst.SlotTry))
	require.Len(t, try.Children(cst.SlotCatches), 1)

	catch := try.Children(cst.SlotCatches)[0]
	params := catch.Children(cst.SlotParameters)
	require.Len(t, params, 1)
	assert.Equal(t, "e", nameOf(params[0]))
	assert.Equal(t, "Exception", nameOf(params[0].Child(cst.SlotType)))
	assert.Empty(t, catch.Child(cst.SlotBody).Children(cst.SlotStatements))

	require.NotNil(t, try.Child(cst.SlotFinally))
	assert.Len(t, try.Child(cst.SlotFinally).Children(cst.SlotStatements), 1)
}

func TestParse_ClassKinds(t *testing.T) {
	tests := []struct {
		src  string
		want cst.Kind
		name string
	}{
		{"class A", cst.KindClass, "A"},
		{"interface Shape", cst.KindInterface, "Shape"},
		{"enum class Color { RED, GREEN }", cst.KindEnumClass, "Color"},
		{"object Registry", cst.KindObject, "Registry"},
		{"data class Point(val x: Int, val y: Int)", cst.KindClass, "Point"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			root := parse(t, tt.src+"\n")
			decls := root.Children(cst.SlotDeclarations)
			require.Len(t, decls, 1)
			assert.Equal(t, tt.want, decls[0].Kind())
			assert.Equal(t, tt.name, nameOf(decls[0]))
		})
	}
}

func TestParse_SupertypeNames(t *testing.T) {
	root := parse(t, "package demo\n\nclass B : Base<Int>(), demo.Impl\n")
	cls := root.Children(cst.SlotDeclarations)[0]
	supers := cls.Children(cst.SlotSupertypes)
	require.Len(t, supers, 2)
	assert.Equal(t, "Base", nameOf(supers[0]))
	assert.Equal(t, "demo.Impl", nameOf(supers[1]), "qualifier kept for lookup")

	c, ok := uast.Convert(cls, nil).(*uast.Class)
	require.True(t, ok)
	assert.Equal(t, "B (Base, Impl)", c.DisplayName())
	assert.Equal(t, "Impl", c.SuperTypes()[1].ReferencedName())
}

func TestParse_LocalDeclarationChain(t *testing.T) {
	root := parse(t, "fun f() { val y = a }\n")
	ref := find(root, cst.KindNameReference)
	require.NotNil(t, ref)
	require.Equal(t, "a", ref.Text())

	derived := uast.ConvertWithParent(ref)
	var manual uast.Element
	for _, n := range cst.Ancestors(ref) {
		manual = uast.Convert(n, manual)
	}

	var got, want []uast.Kind
	for el := derived; el != nil; el = el.Parent() {
		got = append(got, el.Kind())
	}
	for el := manual; el != nil; el = el.Parent() {
		want = append(want, el.Kind())
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []uast.Kind{uast.KindSimpleReference, uast.KindVariable, uast.KindBlock, uast.KindFunction, uast.KindFile}, got)
}

func TestParse_Modifiers(t *testing.T) {
	root := parse(t, "private const val LIMIT: Int = 10\n")
	prop := find(root, cst.KindProperty)
	require.NotNil(t, prop)

	var mods []string
	for _, m := range prop.Children(cst.SlotModifiers) {
		mods = append(mods, m.Text())
	}
	assert.Equal(t, []string{"private", "const", "val"}, mods)
	assert.Equal(t, "LIMIT", nameOf(prop))
	assert.Equal(t, "Int", nameOf(prop.Child(cst.SlotType)))
	assert.Equal(t, "10", prop.Child(cst.SlotInitializer).Text())
}

func TestParse_SyntaxErrorsDoNotFail(t *testing.T) {
	root := parse(t, "class {\n  fun (\n")
	assert.Equal(t, cst.KindFile, root.Kind())
}

func TestParse_Rejects(t *testing.T) {
	canceled, cancel := context.WithCancel(t.Context())
	cancel()

	tests := []struct {
		name    string
		parser  *Parser
		ctx     context.Context
		content []byte
		want    error
	}{
		{"too large", NewParser(WithMaxFileSize(8)), t.Context(), []byte("class Large"), ErrFileTooLarge},
		{"invalid utf-8", NewParser(), t.Context(), []byte{0xff, 0xfe}, ErrInvalidContent},
		{"canceled", NewParser(), canceled, []byte("class A"), context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := tt.parser.Parse(tt.ctx, tt.content, "x.kt")
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, root)
		})
	}
}
