package cst

import (
	"context"
	"errors"
)

// Depth selects how much of the project an analysis covers.
type Depth int

const (
	// DepthPartial analyzes only the file containing the node.
	DepthPartial Depth = iota
	// DepthFull analyzes every file known to the analyzer.
	DepthFull
)

func (d Depth) String() string {
	if d == DepthFull {
		return "full"
	}
	return "partial"
}

// ParseDepth converts a configuration string to a Depth.
func ParseDepth(s string) (Depth, error) {
	switch s {
	case "", "partial":
		return DepthPartial, nil
	case "full":
		return DepthFull, nil
	}
	return DepthPartial, errors.New("unknown analysis depth: " + s)
}

// Resolution failures reported by Bindings.
var (
	ErrUnresolved = errors.New("reference cannot be resolved")
	ErrAmbiguous  = errors.New("reference is ambiguous")
	ErrSynthetic  = errors.New("reference resolves to a synthetic declaration")
)

// Analyzer is the semantic engine collaborator.
type Analyzer interface {
	// Analyze returns the binding context covering node at the given depth.
	Analyze(ctx context.Context, node Node, depth Depth) (Bindings, error)
}

// Bindings answers semantic queries for one analysis result.
type Bindings interface {
	// Declaration returns the source declaration a reference or call binds to.
	Declaration(ref Node) (Node, error)
	// TypeDeclaration returns the class declaration a type reference names.
	TypeDeclaration(typeRef Node) (Node, error)
	// ConstantValue returns the compile-time value of expr, if it has one.
	ConstantValue(expr Node) (any, bool)
}
