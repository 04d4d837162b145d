// Package cst defines the contract between source front ends and the unified
// tree: a source node interface, its kind and slot vocabulary, the semantic
// analyzer interface, and an in-memory tree used by front ends and tests.
package cst

import "strings"

// Kind is the dynamic kind tag of a source node.
type Kind string

// Source node kinds. The set is open: front ends may emit kinds that the
// unified tree does not model.
const (
	KindFile   Kind = "file"
	KindImport Kind = "import"

	// Declarations
	KindClass       Kind = "class"
	KindObject      Kind = "object"
	KindInterface   Kind = "interface"
	KindEnumClass   Kind = "enum_class"
	KindFunction    Kind = "function"
	KindConstructor Kind = "constructor"
	KindProperty    Kind = "property"
	KindParameter   Kind = "parameter"

	// Types
	KindTypeReference Kind = "type_reference"

	// Expressions
	KindDotQualified   Kind = "dot_qualified"
	KindSafeQualified  Kind = "safe_qualified"
	KindNameReference  Kind = "name_reference"
	KindCall           Kind = "call"
	KindBinary         Kind = "binary"
	KindPrefix         Kind = "prefix"
	KindPostfix        Kind = "postfix"
	KindParenthesized  Kind = "parenthesized"
	KindThis           Kind = "this"
	KindSuper          Kind = "super"
	KindIs             Kind = "is"
	KindAs             Kind = "as"
	KindIf             Kind = "if"
	KindWhile          Kind = "while"
	KindDoWhile        Kind = "do_while"
	KindFor            Kind = "for"
	KindBreak          Kind = "break"
	KindContinue       Kind = "continue"
	KindReturn         Kind = "return"
	KindThrow          Kind = "throw"
	KindBlock          Kind = "block"
	KindLiteral        Kind = "literal"
	KindStringTemplate Kind = "string_template"
	KindTry            Kind = "try"
	KindCatch          Kind = "catch"
	KindArrayAccess    Kind = "array_access"
	KindLambda         Kind = "lambda"

	// Leaves
	KindIdentifier         Kind = "identifier"
	KindModifier           Kind = "modifier"
	KindOperationReference Kind = "operation_reference"

	// Constructs the unified tree does not model.
	KindWhen              Kind = "when"
	KindElvis             Kind = "elvis"
	KindRange             Kind = "range"
	KindObjectLiteral     Kind = "object_literal"
	KindCallableReference Kind = "callable_reference"
	KindTypeAlias         Kind = "type_alias"
	KindAnnotation        Kind = "annotation"
	KindError             Kind = "error"
)

// AllKinds returns every kind a front end in this module can emit.
func AllKinds() []Kind {
	return []Kind{
		KindFile, KindImport,
		KindClass, KindObject, KindInterface, KindEnumClass,
		KindFunction, KindConstructor, KindProperty, KindParameter,
		KindTypeReference,
		KindDotQualified, KindSafeQualified, KindNameReference, KindCall,
		KindBinary, KindPrefix, KindPostfix, KindParenthesized,
		KindThis, KindSuper, KindIs, KindAs,
		KindIf, KindWhile, KindDoWhile, KindFor,
		KindBreak, KindContinue, KindReturn, KindThrow,
		KindBlock, KindLiteral, KindStringTemplate,
		KindTry, KindCatch, KindArrayAccess, KindLambda,
		KindIdentifier, KindModifier, KindOperationReference,
		KindWhen, KindElvis, KindRange, KindObjectLiteral,
		KindCallableReference, KindTypeAlias, KindAnnotation, KindError,
	}
}

// IsDeclaration reports whether k names a declaration.
func (k Kind) IsDeclaration() bool {
	switch k {
	case KindClass, KindObject, KindInterface, KindEnumClass,
		KindFunction, KindConstructor, KindProperty, KindParameter:
		return true
	}
	return false
}

// LiteralKind classifies the lexical form of a literal node.
type LiteralKind int

const (
	LiteralUnknown LiteralKind = iota
	LiteralNull
	LiteralBoolean
	LiteralInteger
	LiteralLong
	LiteralFloat
	LiteralChar
	LiteralString
)

var literalKindNames = [...]string{"unknown", "null", "boolean", "integer", "long", "float", "char", "string"}

func (k LiteralKind) String() string {
	if int(k) < len(literalKindNames) {
		return literalKindNames[k]
	}
	return "unknown"
}

// ClassifyLiteral derives a literal's kind from its raw text.
func ClassifyLiteral(text string) LiteralKind {
	t := strings.TrimSpace(text)
	switch {
	case t == "":
		return LiteralUnknown
	case t == "null":
		return LiteralNull
	case t == "true" || t == "false":
		return LiteralBoolean
	case strings.HasPrefix(t, "\""):
		return LiteralString
	case strings.HasPrefix(t, "'"):
		return LiteralChar
	}
	lower := strings.ToLower(strings.ReplaceAll(t, "_", ""))
	if lower == "" {
		return LiteralUnknown
	}
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0b") {
		if strings.HasSuffix(lower, "l") {
			return LiteralLong
		}
		return LiteralInteger
	}
	if lower[0] < '0' || lower[0] > '9' {
		if lower[0] != '.' {
			return LiteralUnknown
		}
	}
	switch {
	case strings.HasSuffix(lower, "l"):
		return LiteralLong
	case strings.ContainsAny(lower, ".e") || strings.HasSuffix(lower, "f"):
		return LiteralFloat
	}
	return LiteralInteger
}
