package semantic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

func TestAnalyze_Errors(t *testing.T) {
	e := NewEngine()

	_, err := e.Analyze(t.Context(), cst.New(cst.KindClass, "class A"), cst.DepthPartial)
	assert.ErrorIs(t, err, ErrDetached)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	r := ref("x")
	file("demo", fun("f", nil, r))
	_, err = e.Analyze(ctx, r, cst.DepthPartial)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_CachesUntilEdited(t *testing.T) {
	r := ref("x")
	x := prop("val", "x", lit("1"))
	root := file("demo", x, fun("f", nil, r))
	e := NewEngine()

	for range 3 {
		b := analyze(t, e, r, cst.DepthPartial)
		got, err := b.Declaration(r)
		require.NoError(t, err)
		assert.Same(t, x, got)
	}
	hits, misses := e.CacheStats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)

	// Renaming the property invalidates the cached index.
	x.Set(cst.SlotName, ident("z"))
	_, err := analyze(t, e, r, cst.DepthPartial).Declaration(r)
	assert.ErrorIs(t, err, cst.ErrUnresolved)
	_, misses = e.CacheStats()
	assert.Equal(t, int64(2), misses)

	root.Append(cst.SlotDeclarations, prop("val", "x", lit("2")))
	got, err := analyze(t, e, r, cst.DepthPartial).Declaration(r)
	require.NoError(t, err)
	assert.Equal(t, "2", got.Child(cst.SlotInitializer).Text())
}

func TestAnalyze_UnregisteredTreesShareOneSlot(t *testing.T) {
	ra, rb, rc := ref("x"), ref("x"), ref("x")
	a := file("demo", fun("f", nil, ra))
	_ = a
	b := file("demo", fun("f", nil, rb))
	kept := file("demo", fun("f", nil, rc))

	e := NewEngine()
	e.AddFile(kept)
	for range 2 {
		analyze(t, e, ra, cst.DepthPartial)
		analyze(t, e, rb, cst.DepthPartial)
		analyze(t, e, rc, cst.DepthPartial)
	}
	hits, misses := e.CacheStats()
	assert.Equal(t, int64(1), hits, "only the registered tree survives")
	assert.Equal(t, int64(5), misses)
	assert.Len(t, e.cache, 2)
	assert.Contains(t, e.cache, cst.Node(kept))
	assert.Contains(t, e.cache, cst.Node(b))

	// Registering the scratch tree keeps it cached.
	e.AddFile(b)
	analyze(t, e, ra, cst.DepthPartial)
	analyze(t, e, rb, cst.DepthPartial)
	hits, _ = e.CacheStats()
	assert.Equal(t, int64(2), hits)
	assert.Len(t, e.cache, 3)

	e.RemoveFile(b)
	assert.NotContains(t, e.cache, cst.Node(b))
}

func TestAnalyze_FullDepthIndexesRegisteredFiles(t *testing.T) {
	a := file("a", fun("helper", nil))
	r := call("helper")
	b := file("a", fun("main", nil, r))

	e := NewEngine()
	e.AddFile(a)
	e.AddFile(b)
	e.AddFile(nil)

	bindings := analyze(t, e, r, cst.DepthFull).(*Bindings)
	assert.Equal(t, cst.DepthFull, bindings.Depth())
	assert.Len(t, bindings.files, 2)
	assert.Same(t, b, bindings.order[0], "the queried file comes first")

	partial := analyze(t, e, r, cst.DepthPartial).(*Bindings)
	assert.Len(t, partial.files, 1)
}

func TestAnalyze_Concurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	x := prop("val", "x", lit("1"))
	var refs []*cst.Element
	var stmts []*cst.Element
	for range 16 {
		r := ref("x")
		refs = append(refs, r)
		stmts = append(stmts, r)
	}
	file("demo", x, fun("f", nil, stmts...))
	e := NewEngine()

	g, ctx := errgroup.WithContext(t.Context())
	for _, r := range refs {
		g.Go(func() error {
			b, err := e.Analyze(ctx, r, cst.DepthFull)
			if err != nil {
				return err
			}
			d, err := b.Declaration(r)
			if err != nil {
				return err
			}
			assert.Same(t, x, d)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	hits, misses := e.CacheStats()
	assert.Equal(t, int64(len(refs)), hits+misses)
}

func TestConstantValue(t *testing.T) {
	k := ref("K")
	mutable := ref("V")
	cyclic := ref("p")
	exprs := []*cst.Element{
		lit("1"),
		binary(lit("1"), "+", lit("2")),
		binary(lit("1.5"), "*", lit("2")),
		binary(lit("7"), "/", lit("2")),
		binary(lit("7"), "/", lit("0")),
		binary(lit("7"), "%", lit("4")),
		prefix("-", lit("5")),
		prefix("!", lit("true")),
		binary(lit(`"a"`), "+", lit(`"b"`)),
		binary(lit(`"a"`), "+", lit("1")),
		binary(lit("1"), "<", lit("2")),
		binary(lit("2"), "==", lit("2.0")),
		binary(lit(`"x"`), "!=", lit(`"y"`)),
		binary(lit("false"), "&&", ref("unknown")),
		binary(lit("true"), "||", ref("unknown")),
		binary(lit("true"), "&&", lit("false")),
		cst.New(cst.KindParenthesized, "(3)").Set(cst.SlotValue, lit("3")),
		cst.New(cst.KindStringTemplate, `"$name"`),
		lit("null"),
		binary(k, "*", lit("10")),
		mutable,
		cyclic,
		ref("unknown"),
		binary(lit("1"), "===", lit("1")),
	}
	want := []struct {
		v  any
		ok bool
	}{
		{int64(1), true},
		{int64(3), true},
		{float64(3), true},
		{int64(3), true},
		{nil, false},
		{int64(3), true},
		{int64(-5), true},
		{false, true},
		{"ab", true},
		{nil, false},
		{true, true},
		{true, true},
		{true, true},
		{false, true},
		{true, true},
		{false, true},
		{int64(3), true},
		{nil, false},
		{nil, true},
		{int64(20), true},
		{nil, false},
		{nil, false},
		{nil, false},
		{nil, false},
	}
	require.Len(t, want, len(exprs))

	decls := []*cst.Element{
		modifiers(prop("val", "K", lit("2")), "const"),
		prop("var", "V", lit("3")),
		prop("val", "p", ref("q")),
		prop("val", "q", ref("p")),
	}
	for _, expr := range exprs {
		decls = append(decls, prop("val", "t", expr))
	}
	file("demo", decls...)

	b := analyze(t, NewEngine(), k, cst.DepthPartial)
	for i, expr := range exprs {
		t.Run(expr.Text(), func(t *testing.T) {
			v, ok := b.ConstantValue(expr)
			assert.Equal(t, want[i].ok, ok)
			assert.Equal(t, want[i].v, v)
		})
	}

	v, ok := b.ConstantValue(nil)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestRemoveFile(t *testing.T) {
	a := file("a", fun("helper", nil))
	r := call("helper")
	b := file("a", fun("main", nil, r))

	e := NewEngine()
	e.AddFile(a)
	e.AddFile(b)
	_, err := analyze(t, e, r, cst.DepthFull).Declaration(r)
	require.NoError(t, err)

	e.RemoveFile(a)
	e.RemoveFile(nil)
	assert.Equal(t, []cst.Node{b}, e.Files())
	_, err = analyze(t, e, r, cst.DepthFull).Declaration(r)
	assert.ErrorIs(t, err, cst.ErrUnresolved)
}
