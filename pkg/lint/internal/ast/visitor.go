// Package ast provides unified tree traversal utilities for lint rules.
package ast

import (
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// Collect returns every element of type T under root, depth-first.
func Collect[T uast.Element](root uast.Element) []T {
	var out []T
	uast.Walk(root, func(el uast.Element) bool {
		if t, ok := el.(T); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}

// CollectKind returns every element under root whose kind is k.
func CollectKind(root uast.Element, k uast.Kind) []uast.Element {
	var out []uast.Element
	uast.Walk(root, func(el uast.Element) bool {
		if el.Kind() == k {
			out = append(out, el)
		}
		return true
	})
	return out
}

// Unparen strips any number of enclosing parentheses.
func Unparen(e uast.Expression) uast.Expression {
	for {
		p, ok := e.(*uast.Parenthesized)
		if !ok {
			return e
		}
		e = p.Expression()
	}
}

// IsEmptyBody reports whether e is absent, Empty or a Block with no
// expressions.
func IsEmptyBody(e uast.Expression) bool {
	switch b := e.(type) {
	case nil:
		return true
	case *uast.Empty:
		return true
	case *uast.Block:
		return len(b.Expressions()) == 0
	}
	return false
}
