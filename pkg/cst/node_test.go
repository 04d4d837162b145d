package cst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementSlots(t *testing.T) {
	call := New(KindCall, "f(1, 2)")
	callee := New(KindNameReference, "f")
	a1 := New(KindLiteral, "1")
	a2 := New(KindLiteral, "2")
	call.Set(SlotCallee, callee).Append(SlotArguments, a1, a2)

	assert.Equal(t, callee, call.Child(SlotCallee))
	assert.Nil(t, call.Child(SlotBody))
	require.Len(t, call.Children(SlotArguments), 2)
	assert.Equal(t, Node(a2), call.Children(SlotArguments)[1])
	assert.Empty(t, call.Children(SlotIndices))
	assert.Equal(t, []Slot{SlotCallee, SlotArguments}, call.Slots())

	assert.Equal(t, Node(call), a1.Parent())
	assert.Nil(t, call.Parent(), "root parent must be a nil interface")
}

func TestElementSetReplacesAndClears(t *testing.T) {
	ret := New(KindReturn, "return x")
	ret.Set(SlotValue, New(KindNameReference, "x"))
	ret.Set(SlotValue, New(KindNameReference, "y"))
	assert.Equal(t, "y", ret.Child(SlotValue).Text())

	ret.Set(SlotValue, nil)
	assert.Nil(t, ret.Child(SlotValue))
}

func TestElementGeneration(t *testing.T) {
	ref := New(KindNameReference, "x")
	ret := New(KindReturn, "return x").Set(SlotValue, ref)
	file := New(KindFile, "").Append(SlotDeclarations, ret)

	before := file.Generation()
	ref.SetText("y")
	assert.Greater(t, file.Generation(), before, "edits below the root reach it")

	before, retBefore := file.Generation(), ret.Generation()
	New(KindLiteral, "1").SetText("2")
	assert.Equal(t, before, file.Generation(), "detached edits do not")

	ret.Set(SlotValue, nil)
	assert.Greater(t, file.Generation(), before)
	assert.Greater(t, ret.Generation(), retBefore)

	before = file.Generation()
	ret.Set(SlotValue, nil)
	assert.Equal(t, before, file.Generation(), "clearing an empty slot is not an edit")
}

func TestRootAndAncestors(t *testing.T) {
	file := New(KindFile, "")
	fn := New(KindFunction, "fun f() {}")
	body := New(KindBlock, "{}")
	file.Append(SlotDeclarations, fn)
	fn.Set(SlotBody, body)

	assert.Equal(t, Node(file), Root(body))
	assert.Nil(t, Root(nil))

	chain := Ancestors(body)
	require.Len(t, chain, 3)
	assert.Equal(t, Node(file), chain[0])
	assert.Equal(t, Node(fn), chain[1])
	assert.Equal(t, Node(body), chain[2])
}

func TestWalkSkipsChildren(t *testing.T) {
	file := New(KindFile, "")
	cls := New(KindClass, "class A")
	file.Append(SlotDeclarations, cls)
	cls.Append(SlotDeclarations, New(KindFunction, "fun f() {}"))

	var seen []Kind
	Walk(file, func(e *Element) bool {
		seen = append(seen, e.Kind())
		return e.Kind() != KindClass
	})
	assert.Equal(t, []Kind{KindFile, KindClass}, seen)
}

func TestClassifyLiteral(t *testing.T) {
	tests := []struct {
		text string
		want LiteralKind
	}{
		{"null", LiteralNull},
		{"true", LiteralBoolean},
		{"false", LiteralBoolean},
		{"42", LiteralInteger},
		{"1_000", LiteralInteger},
		{"0xFF", LiteralInteger},
		{"10L", LiteralLong},
		{"1.5", LiteralFloat},
		{"2f", LiteralFloat},
		{"1e10", LiteralFloat},
		{"'c'", LiteralChar},
		{`"s"`, LiteralString},
		{"", LiteralUnknown},
		{"abc", LiteralUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLiteral(tt.text))
		})
	}
}

func TestSpanContainsPosition(t *testing.T) {
	span := Span{
		Start: Position{Line: 2, Column: 5},
		End:   Position{Line: 4, Column: 1},
	}
	assert.True(t, span.ContainsPosition(Position{Line: 2, Column: 5}))
	assert.True(t, span.ContainsPosition(Position{Line: 3, Column: 80}))
	assert.False(t, span.ContainsPosition(Position{Line: 2, Column: 4}))
	assert.False(t, span.ContainsPosition(Position{Line: 4, Column: 1}))
	assert.False(t, Span{}.ContainsPosition(Position{Line: 1, Column: 1}))
}

func TestParseDepth(t *testing.T) {
	d, err := ParseDepth("full")
	require.NoError(t, err)
	assert.Equal(t, DepthFull, d)

	d, err = ParseDepth("")
	require.NoError(t, err)
	assert.Equal(t, DepthPartial, d)

	_, err = ParseDepth("deep")
	assert.Error(t, err)
}
