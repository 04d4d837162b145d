// Package uast provides the unified syntax tree that analysis tools consume.
//
// Unified elements wrap source nodes from a front end (see package cst).
// Elements are created on demand by Convert or ConvertWithParent, keep a
// fixed reference to their parent, and compute derived properties lazily on
// first access. Nothing is shared between independent conversion calls.
package uast

import (
	"context"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// Kind identifies a unified element variant.
type Kind int

// Element variants.
const (
	KindUnknown Kind = iota
	KindFile
	KindImport
	KindClass
	KindFunction
	KindVariable
	KindParameter
	KindType
	KindDeclarations
	KindQualified
	KindSafeQualified
	KindSimpleReference
	KindCall
	KindBinary
	KindPrefix
	KindPostfix
	KindParenthesized
	KindThis
	KindSuper
	KindTypeCheck
	KindTypeCast
	KindIf
	KindWhile
	KindDoWhile
	KindForEach
	KindBreak
	KindContinue
	KindReturn
	KindThrow
	KindBlock
	KindLiteral
	KindTry
	KindCatch
	KindArrayAccess
	KindLambda
	KindEmpty
)

var kindNames = map[Kind]string{
	KindUnknown:         "Unknown",
	KindFile:            "File",
	KindImport:          "Import",
	KindClass:           "Class",
	KindFunction:        "Function",
	KindVariable:        "Variable",
	KindParameter:       "Parameter",
	KindType:            "Type",
	KindDeclarations:    "Declarations",
	KindQualified:       "Qualified",
	KindSafeQualified:   "SafeQualified",
	KindSimpleReference: "SimpleReference",
	KindCall:            "Call",
	KindBinary:          "Binary",
	KindPrefix:          "Prefix",
	KindPostfix:         "Postfix",
	KindParenthesized:   "Parenthesized",
	KindThis:            "This",
	KindSuper:           "Super",
	KindTypeCheck:       "TypeCheck",
	KindTypeCast:        "TypeCast",
	KindIf:              "If",
	KindWhile:           "While",
	KindDoWhile:         "DoWhile",
	KindForEach:         "ForEach",
	KindBreak:           "Break",
	KindContinue:        "Continue",
	KindReturn:          "Return",
	KindThrow:           "Throw",
	KindBlock:           "Block",
	KindLiteral:         "Literal",
	KindTry:             "Try",
	KindCatch:           "Catch",
	KindArrayAccess:     "ArrayAccess",
	KindLambda:          "Lambda",
	KindEmpty:           "Empty",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Element is a node of the unified tree.
type Element interface {
	Kind() Kind
	// Parent returns the element this one was converted under, or nil.
	Parent() Element
	// Source returns the wrapped source node. It is nil only for Empty.
	Source() cst.Node
	// LogString returns a one-line description used in tree dumps.
	LogString() string
	element()
}

// Declaration is an element that introduces a name.
type Declaration interface {
	Element
	Name() string
	declaration()
}

// Expression is an element in expression or statement position.
type Expression interface {
	Element
	// Evaluate returns the compile-time value of the expression, if any.
	Evaluate(ctx context.Context, tc *ToolContext) (any, bool)
	expression()
}

// Reference is an element that can be bound to a declaration through the
// semantic engine.
type Reference interface {
	Element
	Resolve(ctx context.Context, tc *ToolContext) Declaration
}

type base struct {
	parent Element
	src    cst.Node
}

func (b *base) Parent() Element  { return b.parent }
func (b *base) Source() cst.Node { return b.src }
func (b *base) element()         {}

func (b *base) text() string {
	if b.src == nil {
		return ""
	}
	return b.src.Text()
}

type declBase struct{ base }

func (d *declBase) declaration() {}

type exprBase struct{ base }

func (e *exprBase) expression() {}

func (e *exprBase) Evaluate(ctx context.Context, tc *ToolContext) (any, bool) {
	return evaluate(ctx, tc, e.src)
}
