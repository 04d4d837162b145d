package uast

// BinaryOperator classifies a binary operator token.
type BinaryOperator int

const (
	BinaryUnknown BinaryOperator = iota
	BinaryPlus
	BinaryMinus
	BinaryMultiply
	BinaryDivide
	BinaryModulo
	BinaryEquals
	BinaryNotEquals
	BinaryIdentityEquals
	BinaryIdentityNotEquals
	BinaryGreater
	BinaryGreaterOrEqual
	BinaryLess
	BinaryLessOrEqual
)

var binaryOperators = map[string]BinaryOperator{
	"+":   BinaryPlus,
	"-":   BinaryMinus,
	"*":   BinaryMultiply,
	"/":   BinaryDivide,
	"%":   BinaryModulo,
	"==":  BinaryEquals,
	"!=":  BinaryNotEquals,
	"===": BinaryIdentityEquals,
	"!==": BinaryIdentityNotEquals,
	">":   BinaryGreater,
	">=":  BinaryGreaterOrEqual,
	"<":   BinaryLess,
	"<=":  BinaryLessOrEqual,
}

var binaryOperatorNames = [...]string{
	"UNKNOWN", "PLUS", "MINUS", "MULTIPLY", "DIVIDE", "MODULO",
	"EQUALS", "NOT_EQUALS", "IDENTITY_EQUALS", "IDENTITY_NOT_EQUALS",
	"GREATER", "GREATER_OR_EQUAL", "LESS", "LESS_OR_EQUAL",
}

// ClassifyBinary maps an operator token to its classification. Tokens not in
// the table classify as BinaryUnknown.
func ClassifyBinary(token string) BinaryOperator {
	return binaryOperators[token]
}

func (o BinaryOperator) String() string {
	if int(o) < len(binaryOperatorNames) {
		return binaryOperatorNames[o]
	}
	return "UNKNOWN"
}

// IsComparison reports whether the operator yields a Boolean from ordering
// or equality.
func (o BinaryOperator) IsComparison() bool {
	return o >= BinaryEquals && o <= BinaryLessOrEqual
}

// PrefixOperator classifies a prefix operator token.
type PrefixOperator int

const (
	PrefixUnknown PrefixOperator = iota
	PrefixUnaryPlus
	PrefixUnaryMinus
	PrefixIncrement
	PrefixDecrement
)

var prefixOperators = map[string]PrefixOperator{
	"+":  PrefixUnaryPlus,
	"-":  PrefixUnaryMinus,
	"++": PrefixIncrement,
	"--": PrefixDecrement,
}

var prefixOperatorNames = [...]string{"UNKNOWN", "UNARY_PLUS", "UNARY_MINUS", "INC", "DEC"}

// ClassifyPrefix maps a prefix operator token to its classification.
// Logical negation is not in the table and classifies as PrefixUnknown.
func ClassifyPrefix(token string) PrefixOperator {
	return prefixOperators[token]
}

func (o PrefixOperator) String() string {
	if int(o) < len(prefixOperatorNames) {
		return prefixOperatorNames[o]
	}
	return "UNKNOWN"
}

// PostfixOperator classifies a postfix operator token.
type PostfixOperator int

const (
	PostfixUnknown PostfixOperator = iota
	PostfixIncrement
	PostfixDecrement
)

var postfixOperators = map[string]PostfixOperator{
	"++": PostfixIncrement,
	"--": PostfixDecrement,
}

var postfixOperatorNames = [...]string{"UNKNOWN", "INC", "DEC"}

// ClassifyPostfix maps a postfix operator token to its classification.
// The not-null assertion "!!" classifies as PostfixUnknown.
func ClassifyPostfix(token string) PostfixOperator {
	return postfixOperators[token]
}

func (o PostfixOperator) String() string {
	if int(o) < len(postfixOperatorNames) {
		return postfixOperatorNames[o]
	}
	return "UNKNOWN"
}
