package uast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// manualLiteral walks from the file root down to the literal "2" through the
// child accessors.
func manualLiteral(t *testing.T, f *fixture) Element {
	t.Helper()
	file := Convert(f.file, nil).(*File)
	cls := file.Declarations()[0].(*Class)
	fn := cls.Declarations()[0].(*Function)
	body := fn.Body().(*Block)
	ret := body.Expressions()[1].(*Jump)
	div := ret.Value().(*Binary)
	return div.Right()
}

func TestConvertWithParent_MatchesManualWalk(t *testing.T) {
	f := newFixture()

	manual := manualLiteral(t, f)
	derived := ConvertWithParent(f.two)
	require.NotNil(t, derived)

	assert.Equal(t, kindChain(manual), kindChain(derived))
	assert.Equal(t, []Kind{KindLiteral, KindBinary, KindReturn, KindBlock, KindFunction, KindClass, KindFile}, kindChain(derived))

	// Same source node at every level.
	for m, d := manual, derived; m != nil || d != nil; m, d = m.Parent(), d.Parent() {
		require.NotNil(t, m)
		require.NotNil(t, d)
		assert.Equal(t, m.Source(), d.Source())
		assert.Equal(t, DisplayName(m), DisplayName(d))
	}
}

func TestConvertWithParent_Root(t *testing.T) {
	f := newFixture()

	el := ConvertWithParent(f.file)
	require.IsType(t, &File{}, el)
	assert.Nil(t, el.Parent())
	assert.Equal(t, "demo", el.(*File).PackageName())
}

// convertAncestors converts the precomputed ancestor chain of n root first,
// feeding each result in as the next parent.
func convertAncestors(n cst.Node) Element {
	var parent Element
	for _, a := range cst.Ancestors(n) {
		parent = Convert(a, parent)
	}
	return parent
}

func TestConvertWithParent_EqualsAncestorWalk(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name string
		node cst.Node
		want []Kind
	}{
		{"literal", f.two, []Kind{KindLiteral, KindBinary, KindReturn, KindBlock, KindFunction, KindClass, KindFile}},
		{"reference under local", f.localRef, []Kind{KindSimpleReference, KindVariable, KindBlock, KindFunction, KindClass, KindFile}},
		{"local declaration", f.local, []Kind{KindVariable, KindBlock, KindFunction, KindClass, KindFile}},
		{"parameter", f.param, []Kind{KindParameter, KindFunction, KindClass, KindFile}},
		{"root", f.file, []Kind{KindFile}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			derived := ConvertWithParent(tt.node)
			manual := convertAncestors(tt.node)
			require.NotNil(t, derived)

			assert.Equal(t, tt.want, kindChain(derived))
			assert.Equal(t, kindChain(manual), kindChain(derived))
			assert.Len(t, kindChain(derived), len(cst.Ancestors(tt.node)), "one unified node per source node")

			for m, d := manual, derived; m != nil || d != nil; m, d = m.Parent(), d.Parent() {
				require.NotNil(t, m)
				require.NotNil(t, d)
				assert.Equal(t, m.Source(), d.Source())
			}
		})
	}
}

func TestConvertWithParent_LocalDeclarationItself(t *testing.T) {
	f := newFixture()

	el := ConvertWithParent(f.local)
	v, ok := el.(*Variable)
	require.True(t, ok, "declaration kinds convert to their declaration variant")
	assert.Equal(t, "y", v.Name())
	assert.False(t, v.IsProperty())
	assert.Equal(t, KindBlock, v.Parent().Kind())
}

func TestConvertWithParent_FreshChainPerCall(t *testing.T) {
	f := newFixture()

	a := ConvertWithParent(f.div)
	b := ConvertWithParent(f.div)
	assert.NotSame(t, a, b)
	assert.NotSame(t, a.Parent(), b.Parent())
	assert.Equal(t, kindChain(a), kindChain(b))
}

func TestConvertWithParent_ParameterChain(t *testing.T) {
	f := newFixture()

	el := ConvertWithParent(f.param)
	p, ok := el.(*Parameter)
	require.True(t, ok)
	assert.Equal(t, "a", p.Name())
	assert.True(t, p.Type().IsInt())
	assert.Equal(t, "f", p.Parent().(*Function).Name())
}

func TestConvertWithParent_DetachedNode(t *testing.T) {
	el := ConvertWithParent(binary(ref("a"), "+", lit("1")))
	require.NotNil(t, el)
	assert.Nil(t, el.Parent())
	assert.Equal(t, KindBinary, el.Kind())

	unknown := ConvertWithParent(cst.New(cst.KindWhen, "when (x) {}"))
	assert.IsType(t, &Unknown{}, unknown)
}
