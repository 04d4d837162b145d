package cst

// Node is a source tree node owned by a front end.
//
// The tree is assumed finite and acyclic; Parent returns nil only at the root.
type Node interface {
	Kind() Kind
	Parent() Node
	// Child returns the node in a single-valued slot, or nil.
	Child(slot Slot) Node
	// Children returns the nodes in a slot. For single-valued slots it
	// returns at most one node.
	Children(slot Slot) []Node
	// Text returns the raw lexical text of the node.
	Text() string
	Span() Span
}

// Element is a mutable in-memory Node.
type Element struct {
	kind   Kind
	text   string
	span   Span
	parent *Element
	slots  map[Slot][]*Element
	order  []Slot
	gen    uint64
}

// New creates a detached element.
func New(kind Kind, text string) *Element {
	return &Element{kind: kind, text: text}
}

// Kind implements Node.
func (e *Element) Kind() Kind { return e.kind }

// Parent implements Node.
func (e *Element) Parent() Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// Child implements Node.
func (e *Element) Child(slot Slot) Node {
	kids := e.slots[slot]
	if len(kids) == 0 || kids[0] == nil {
		return nil
	}
	return kids[0]
}

// Children implements Node.
func (e *Element) Children(slot Slot) []Node {
	kids := e.slots[slot]
	if len(kids) == 0 {
		return nil
	}
	out := make([]Node, len(kids))
	for i, k := range kids {
		out[i] = k
	}
	return out
}

// Text implements Node.
func (e *Element) Text() string { return e.text }

// Span implements Node.
func (e *Element) Span() Span { return e.span }

// Generation counts the mutations made to e and its descendants. Caches keyed
// by a tree root compare it to detect edits.
func (e *Element) Generation() uint64 { return e.gen }

// touch records a mutation on e and every ancestor.
func (e *Element) touch() {
	for cur := e; cur != nil; cur = cur.parent {
		cur.gen++
	}
}

// Slots returns the populated slots in insertion order.
func (e *Element) Slots() []Slot {
	return append([]Slot(nil), e.order...)
}

// Set places child in a single-valued slot, replacing any previous occupant.
// A nil child clears the slot.
func (e *Element) Set(slot Slot, child *Element) *Element {
	if child == nil {
		if _, ok := e.slots[slot]; ok {
			delete(e.slots, slot)
			for i, s := range e.order {
				if s == slot {
					e.order = append(e.order[:i], e.order[i+1:]...)
					break
				}
			}
			e.touch()
		}
		return e
	}
	e.ensure(slot)
	child.parent = e
	e.slots[slot] = []*Element{child}
	e.touch()
	return e
}

// Append adds children to a list slot.
func (e *Element) Append(slot Slot, children ...*Element) *Element {
	e.ensure(slot)
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = e
		e.slots[slot] = append(e.slots[slot], c)
	}
	e.touch()
	return e
}

// SetText replaces the raw text of the element.
func (e *Element) SetText(text string) *Element {
	e.text = text
	e.touch()
	return e
}

// SetSpan sets the source range of the element.
func (e *Element) SetSpan(span Span) *Element {
	e.span = span
	e.touch()
	return e
}

func (e *Element) ensure(slot Slot) {
	if e.slots == nil {
		e.slots = make(map[Slot][]*Element)
	}
	if _, ok := e.slots[slot]; !ok {
		e.order = append(e.order, slot)
	}
}

// Root returns the topmost ancestor of n.
func Root(n Node) Node {
	if n == nil {
		return nil
	}
	for p := n.Parent(); p != nil; p = n.Parent() {
		n = p
	}
	return n
}

// Ancestors returns the chain from the root down to n, inclusive.
func Ancestors(n Node) []Node {
	var chain []Node
	for cur := n; cur != nil; cur = cur.Parent() {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Walk visits n and its descendants depth-first in slot order.
// Returning false from fn skips the node's children.
func Walk(n *Element, fn func(*Element) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, slot := range n.order {
		for _, c := range n.slots[slot] {
			Walk(c, fn)
		}
	}
}

// FindAt returns the innermost descendant of root whose span covers pos, or
// nil when no node covers it.
func FindAt(root *Element, pos Position) *Element {
	var found *Element
	Walk(root, func(e *Element) bool {
		if !e.span.ContainsPosition(pos) {
			return e.span == Span{}
		}
		found = e
		return true
	})
	return found
}
