package uast

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// countingNode counts slot lookups on the wrapped node.
type countingNode struct {
	cst.Node
	lookups map[cst.Slot]*atomic.Int32
}

func newCountingNode(n cst.Node) *countingNode {
	c := &countingNode{Node: n, lookups: map[cst.Slot]*atomic.Int32{}}
	for _, s := range []cst.Slot{cst.SlotLeft, cst.SlotRight, cst.SlotOperator, cst.SlotStatements, cst.SlotSupertypes} {
		c.lookups[s] = &atomic.Int32{}
	}
	return c
}

func (c *countingNode) Child(slot cst.Slot) cst.Node {
	if n, ok := c.lookups[slot]; ok {
		n.Add(1)
	}
	return c.Node.Child(slot)
}

func (c *countingNode) Children(slot cst.Slot) []cst.Node {
	if n, ok := c.lookups[slot]; ok {
		n.Add(1)
	}
	return c.Node.Children(slot)
}

func TestLazy_ComputesOnce(t *testing.T) {
	var l lazy[int]
	calls := 0
	compute := func() int {
		calls++
		return 42
	}

	assert.Equal(t, 42, l.get(compute))
	assert.Equal(t, 42, l.get(compute))
	assert.Equal(t, 1, calls)
}

func TestLazy_PropertiesMemoized(t *testing.T) {
	src := newCountingNode(binary(ref("a"), "/", lit("2")))
	b := Convert(src, nil).(*Binary)

	left1 := b.Left()
	left2 := b.Left()
	assert.Same(t, left1, left2)
	assert.Equal(t, int32(1), src.lookups[cst.SlotLeft].Load())

	assert.Equal(t, BinaryDivide, b.OperatorType())
	assert.Equal(t, BinaryDivide, b.OperatorType())
	assert.Equal(t, int32(1), src.lookups[cst.SlotOperator].Load(), "classification reads the token once")

	assert.Equal(t, int32(0), src.lookups[cst.SlotRight].Load(), "unread properties are never computed")
}

func TestLazy_BlockChildrenMemoized(t *testing.T) {
	src := newCountingNode(block(ref("a"), ref("b")))
	b := Convert(src, nil).(*Block)

	first := b.Expressions()
	second := b.Expressions()
	require.Len(t, first, 2)
	assert.Same(t, first[0], second[0])
	assert.Equal(t, int32(1), src.lookups[cst.SlotStatements].Load())
}

func TestLazy_StaleAfterSourceMutation(t *testing.T) {
	src := lit("1")
	l := Convert(src, nil).(*Literal)

	v, ok := l.Value()
	require.True(t, ok)
	assert.Equal(t, int64(1), v)

	src.SetText("2")
	v, _ = l.Value()
	assert.Equal(t, int64(1), v, "cached value is a snapshot")

	fresh := Convert(src, nil).(*Literal)
	v, _ = fresh.Value()
	assert.Equal(t, int64(2), v)
}

func TestLazy_DisplayNameSnapshot(t *testing.T) {
	cls := named(cst.KindClass, "class B : Base", "B").Append(cst.SlotSupertypes, typeRef("Base", "Base"))
	c := Convert(cls, nil).(*Class)
	assert.Equal(t, "B (Base)", c.DisplayName())

	cls.Append(cst.SlotSupertypes, typeRef("Impl", "Impl"))
	assert.Equal(t, "B (Base)", c.DisplayName())
	assert.Equal(t, "B (Base, Impl)", Convert(cls, nil).(*Class).DisplayName())
}

func TestLazy_ConcurrentReaders(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := newCountingNode(binary(ref("a"), "+", lit("1")))
	b := Convert(src, nil).(*Binary)

	const readers = 32
	results := make([]Expression, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = b.Right()
		}(i)
	}
	wg.Wait()

	for i := 1; i < readers; i++ {
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, int32(1), src.lookups[cst.SlotRight].Load())
}
