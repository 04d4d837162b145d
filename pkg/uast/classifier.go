package uast

import (
	"sort"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

type (
	declarationCtor func(src cst.Node, parent Element) Declaration
	expressionCtor  func(src cst.Node, parent Element) Expression
)

// declarationTable covers source kinds valid in declaration position.
var declarationTable = map[cst.Kind]declarationCtor{
	cst.KindClass:       newClassDecl,
	cst.KindObject:      newClassDecl,
	cst.KindInterface:   newClassDecl,
	cst.KindEnumClass:   newClassDecl,
	cst.KindConstructor: newFunctionDecl,
	cst.KindFunction:    newFunctionDecl,
	cst.KindProperty:    newVariableDecl,
	cst.KindParameter:   newParameterDecl,
}

// localDeclarationKinds are declarations wrapped into a Declarations
// expression when they appear among statements.
var localDeclarationKinds = map[cst.Kind]bool{
	cst.KindClass:     true,
	cst.KindObject:    true,
	cst.KindInterface: true,
	cst.KindEnumClass: true,
	cst.KindFunction:  true,
	cst.KindProperty:  true,
}

// expressionTable covers source kinds valid in expression position.
var expressionTable map[cst.Kind]expressionCtor

func init() {
	expressionTable = map[cst.Kind]expressionCtor{
		cst.KindDotQualified:   newQualifiedExpr,
		cst.KindSafeQualified:  newQualifiedExpr,
		cst.KindNameReference:  newSimpleReferenceExpr,
		cst.KindIdentifier:     newSimpleReferenceExpr,
		cst.KindCall:           newCallExpr,
		cst.KindBinary:         newBinaryExpr,
		cst.KindParenthesized:  newParenthesizedExpr,
		cst.KindPrefix:         newPrefixExpr,
		cst.KindPostfix:        newPostfixExpr,
		cst.KindThis:           newThisExpr,
		cst.KindSuper:          newSuperExpr,
		cst.KindIs:             newTypeCheckExpr,
		cst.KindAs:             newTypeCastExpr,
		cst.KindIf:             newIfExpr,
		cst.KindWhile:          newWhileExpr,
		cst.KindDoWhile:        newDoWhileExpr,
		cst.KindFor:            newForEachExpr,
		cst.KindBreak:          newBreakExpr,
		cst.KindContinue:       newContinueExpr,
		cst.KindReturn:         newReturnExpr,
		cst.KindThrow:          newThrowExpr,
		cst.KindBlock:          newBlockExpr,
		cst.KindLiteral:        newLiteralExpr,
		cst.KindStringTemplate: newLiteralExpr,
		cst.KindTry:            newTryExpr,
		cst.KindArrayAccess:    newArrayAccessExpr,
		cst.KindLambda:         newLambdaExpr,
	}
	for k := range localDeclarationKinds {
		expressionTable[k] = newDeclarationsExpr
	}
}

// SupportedKinds returns every source kind that converts to a variant other
// than Unknown, sorted by name.
func SupportedKinds() []cst.Kind {
	seen := map[cst.Kind]bool{
		cst.KindFile:          true,
		cst.KindImport:        true,
		cst.KindCatch:         true,
		cst.KindTypeReference: true,
	}
	for k := range declarationTable {
		seen[k] = true
	}
	for k := range expressionTable {
		seen[k] = true
	}
	kinds := make([]cst.Kind, 0, len(seen))
	for k := range seen {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Convert maps a source node to exactly one unified variant with the given
// parent. It never fails: kinds without a variant yield an Unknown element,
// and a nil source yields nil.
//
// Declaration kinds always convert to their declaration variant, whatever the
// parent. Only the child accessors of statement containers wrap local
// declarations into a Declarations expression.
func Convert(src cst.Node, parent Element) Element {
	if src == nil {
		return nil
	}
	switch src.Kind() {
	case cst.KindFile:
		return newFile(src, parent)
	case cst.KindImport:
		return newImport(src, parent)
	case cst.KindCatch:
		return newCatch(src, parent)
	case cst.KindTypeReference:
		return newType(src, parent)
	}
	if d := ConvertDeclaration(src, parent); d != nil {
		return d
	}
	return ConvertExpression(src, parent)
}

// ConvertDeclaration converts a node in declaration position. It returns nil
// for kinds that are not declarations; callers filter those out.
func ConvertDeclaration(src cst.Node, parent Element) Declaration {
	if src == nil {
		return nil
	}
	ctor, ok := declarationTable[src.Kind()]
	if !ok {
		return nil
	}
	return ctor(src, parent)
}

// ConvertExpression converts a node in expression position. It returns nil
// only for a nil source; unsupported kinds yield an Unknown element.
func ConvertExpression(src cst.Node, parent Element) Expression {
	if src == nil {
		return nil
	}
	if ctor, ok := expressionTable[src.Kind()]; ok {
		return ctor(src, parent)
	}
	return newUnknown(src, parent)
}

// ConvertWithParent converts src after first converting every ancestor, root
// first, so the result carries a complete parent chain. Each call rebuilds
// the chain; nothing is memoized across calls.
func ConvertWithParent(src cst.Node) Element {
	if src == nil {
		return nil
	}
	var parent Element
	for _, n := range cst.Ancestors(src) {
		el := Convert(n, parent)
		if el == nil {
			return nil
		}
		parent = el
	}
	return parent
}

// convertOrEmpty converts a required expression slot, substituting an Empty
// element when the slot is absent.
func convertOrEmpty(src cst.Node, parent Element) Expression {
	if src == nil {
		return newEmpty(parent)
	}
	return ConvertExpression(src, parent)
}

// convertOrNil converts an optional expression slot.
func convertOrNil(src cst.Node, parent Element) Expression {
	if src == nil {
		return nil
	}
	return ConvertExpression(src, parent)
}

func convertExpressions(srcs []cst.Node, parent Element) []Expression {
	out := make([]Expression, 0, len(srcs))
	for _, s := range srcs {
		if e := ConvertExpression(s, parent); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func convertDeclarations(srcs []cst.Node, parent Element) []Declaration {
	out := make([]Declaration, 0, len(srcs))
	for _, s := range srcs {
		if d := ConvertDeclaration(s, parent); d != nil {
			out = append(out, d)
		}
	}
	return out
}

func convertParameters(srcs []cst.Node, parent Element) []*Parameter {
	out := make([]*Parameter, 0, len(srcs))
	for _, s := range srcs {
		if s.Kind() == cst.KindParameter {
			out = append(out, newParameter(s, parent))
		}
	}
	return out
}

func convertType(src cst.Node, parent Element) *Type {
	if src == nil || src.Kind() != cst.KindTypeReference {
		return nil
	}
	return newType(src, parent)
}
