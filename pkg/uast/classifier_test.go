package uast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

func TestConvert_SupportedKindsNeverUnknown(t *testing.T) {
	for _, kind := range SupportedKinds() {
		t.Run(string(kind), func(t *testing.T) {
			el := Convert(cst.New(kind, "x"), nil)
			require.NotNil(t, el)
			assert.NotEqual(t, KindUnknown, el.Kind())
		})
	}
}

func TestConvert_EveryKindHandled(t *testing.T) {
	supported := map[cst.Kind]bool{}
	for _, k := range SupportedKinds() {
		supported[k] = true
	}

	for _, kind := range cst.AllKinds() {
		t.Run(string(kind), func(t *testing.T) {
			src := cst.New(kind, "raw "+string(kind)+" text")
			el := Convert(src, nil)
			require.NotNil(t, el, "conversion must be total")

			if supported[kind] {
				assert.NotEqual(t, KindUnknown, el.Kind())
				return
			}
			u, ok := el.(*Unknown)
			require.True(t, ok, "unsupported kind should yield Unknown, got %s", el.Kind())
			assert.Contains(t, u.LogString(), "raw "+string(kind)+" text")
			assert.Equal(t, kind, u.SourceKind())
		})
	}
}

func TestConvert_UnseenKindYieldsUnknown(t *testing.T) {
	src := cst.New(cst.Kind("context_receiver"), "context(Logger)")

	el := Convert(src, nil)
	require.IsType(t, &Unknown{}, el)
	assert.Contains(t, el.LogString(), "context(Logger)")
	assert.Nil(t, ConvertDeclaration(src, nil))
}

func TestConvert_Nil(t *testing.T) {
	assert.Nil(t, Convert(nil, nil))
	assert.Nil(t, ConvertDeclaration(nil, nil))
	assert.Nil(t, ConvertExpression(nil, nil))
	assert.Nil(t, ConvertWithParent(nil))
}

func TestConvert_PassesParentThrough(t *testing.T) {
	parent := Convert(block(), nil)
	el := Convert(ref("x"), parent)
	require.NotNil(t, el)
	assert.Same(t, parent, el.Parent())
}

func TestConvertDeclaration_FiltersNonDeclarations(t *testing.T) {
	tests := []struct {
		name string
		src  *cst.Element
		want Kind
	}{
		{"class", named(cst.KindClass, "class A", "A"), KindClass},
		{"object", named(cst.KindObject, "object O", "O"), KindClass},
		{"interface", named(cst.KindInterface, "interface I", "I"), KindClass},
		{"enum", named(cst.KindEnumClass, "enum class E", "E"), KindClass},
		{"function", named(cst.KindFunction, "fun f()", "f"), KindFunction},
		{"constructor", cst.New(cst.KindConstructor, "constructor()"), KindFunction},
		{"property", named(cst.KindProperty, "val p = 1", "p"), KindVariable},
		{"parameter", named(cst.KindParameter, "p: Int", "p"), KindParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ConvertDeclaration(tt.src, nil)
			require.NotNil(t, d)
			assert.Equal(t, tt.want, d.Kind())
		})
	}

	assert.Nil(t, ConvertDeclaration(cst.New(cst.KindTypeAlias, "typealias S = String"), nil))
	assert.Nil(t, ConvertDeclaration(lit("1"), nil))
}

func TestConvert_ClassSkipsUnsupportedMembers(t *testing.T) {
	cls := named(cst.KindClass, "class A", "A").Append(cst.SlotDeclarations,
		named(cst.KindFunction, "fun f()", "f"),
		cst.New(cst.KindTypeAlias, "typealias S = String"),
		named(cst.KindProperty, "val p = 1", "p"),
	)

	c := Convert(cls, nil).(*Class)
	decls := c.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, KindFunction, decls[0].Kind())
	assert.Equal(t, KindVariable, decls[1].Kind())
}

func TestConvert_LocalDeclarationsAreWrapped(t *testing.T) {
	local := named(cst.KindProperty, "val x = 1", "x").Set(cst.SlotInitializer, lit("1"))
	localFn := named(cst.KindFunction, "fun g() {}", "g").Set(cst.SlotBody, block())
	body := block(local, localFn)

	b := Convert(body, nil).(*Block)
	exprs := b.Expressions()
	require.Len(t, exprs, 2)

	w, ok := exprs[0].(*Declarations)
	require.True(t, ok)
	v, ok := w.Declaration().(*Variable)
	require.True(t, ok)
	assert.Equal(t, "x", v.Name())
	assert.Same(t, w, v.Parent())
	assert.Same(t, b, w.Parent())
	assert.False(t, v.IsProperty())

	require.IsType(t, &Declarations{}, exprs[1])
	assert.Equal(t, KindFunction, exprs[1].(*Declarations).Declarations()[0].Kind())

	// Direct conversion picks the declaration variant whatever the parent.
	assert.IsType(t, &Variable{}, Convert(local, b))
	// Lambda parameters stay parameters.
	lambda := Convert(cst.New(cst.KindLambda, "{ p -> p }"), nil)
	assert.IsType(t, &Parameter{}, Convert(named(cst.KindParameter, "p", "p"), lambda))
}

func TestConvertExpression_Variants(t *testing.T) {
	tests := []struct {
		kind cst.Kind
		want Kind
	}{
		{cst.KindDotQualified, KindQualified},
		{cst.KindSafeQualified, KindSafeQualified},
		{cst.KindNameReference, KindSimpleReference},
		{cst.KindIdentifier, KindSimpleReference},
		{cst.KindCall, KindCall},
		{cst.KindBinary, KindBinary},
		{cst.KindPrefix, KindPrefix},
		{cst.KindPostfix, KindPostfix},
		{cst.KindParenthesized, KindParenthesized},
		{cst.KindThis, KindThis},
		{cst.KindSuper, KindSuper},
		{cst.KindIs, KindTypeCheck},
		{cst.KindAs, KindTypeCast},
		{cst.KindIf, KindIf},
		{cst.KindWhile, KindWhile},
		{cst.KindDoWhile, KindDoWhile},
		{cst.KindFor, KindForEach},
		{cst.KindBreak, KindBreak},
		{cst.KindContinue, KindContinue},
		{cst.KindReturn, KindReturn},
		{cst.KindThrow, KindThrow},
		{cst.KindBlock, KindBlock},
		{cst.KindLiteral, KindLiteral},
		{cst.KindStringTemplate, KindLiteral},
		{cst.KindTry, KindTry},
		{cst.KindArrayAccess, KindArrayAccess},
		{cst.KindLambda, KindLambda},
		{cst.KindProperty, KindDeclarations},
		{cst.KindWhen, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			el := ConvertExpression(cst.New(tt.kind, "x"), nil)
			require.NotNil(t, el)
			assert.Equal(t, tt.want, el.Kind())
		})
	}
}
