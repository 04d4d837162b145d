package uast

import "github.com/leapstack-labs/leapuast/pkg/cst"

var tokenKinds = map[cst.Kind]bool{
	cst.KindIdentifier:         true,
	cst.KindModifier:           true,
	cst.KindOperationReference: true,
}

// ElementAt returns the innermost unified element at pos, converted with its
// parent chain. Names, modifiers and operator tokens have no element of
// their own and yield their owner. It returns nil outside root.
func ElementAt(root *cst.Element, pos cst.Position) Element {
	n := cst.FindAt(root, pos)
	if n == nil {
		return nil
	}
	var node cst.Node = n
	for node != nil && tokenKinds[node.Kind()] {
		node = node.Parent()
	}
	if node == nil {
		return nil
	}
	return ConvertWithParent(node)
}

// NearestReference returns the first reference at or above el.
func NearestReference(el Element) Reference {
	for cur := el; cur != nil; cur = cur.Parent() {
		if ref, ok := cur.(Reference); ok {
			return ref
		}
	}
	return nil
}
