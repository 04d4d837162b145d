package semantic

// defaultBuiltins are standard library functions and values that resolve to
// synthetic declarations.
var defaultBuiltins = []string{
	"println", "print", "readLine", "require", "requireNotNull", "check",
	"checkNotNull", "error", "TODO", "repeat", "run", "let", "also", "apply",
	"with", "takeIf", "takeUnless", "lazy", "listOf", "mutableListOf",
	"arrayOf", "emptyList", "setOf", "mutableSetOf", "mapOf", "mutableMapOf",
	"emptyMap", "sequenceOf", "maxOf", "minOf", "to",
}

// defaultBuiltinTypes are kotlin and kotlin.collections types that resolve to
// synthetic classes.
var defaultBuiltinTypes = []string{
	"Any", "Nothing", "Unit", "Boolean", "Byte", "Short", "Int", "Long",
	"Float", "Double", "Char", "String", "CharSequence", "Number", "Array",
	"IntArray", "List", "MutableList", "Set", "MutableSet", "Map",
	"MutableMap", "Collection", "Iterable", "Sequence", "Pair", "Triple",
	"Comparable", "Throwable", "Exception", "RuntimeException",
	"IllegalArgumentException", "IllegalStateException", "Enum",
}
