package cst

import "strings"

// TypeName strips nullability markers and type arguments from written type
// text, keeping any package or outer-class qualifier, so
// "demo.Outer<T>.Inner?" becomes "demo.Outer.Inner". Function types and
// other texts that do not name a user type yield "".
func TypeName(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	depth := 0
	for _, r := range text {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth == 0 {
				return ""
			}
			depth--
		case depth > 0:
		case r == '?' || r == ' ' || r == '\t' || r == '\n':
		default:
			b.WriteRune(r)
		}
	}
	name := b.String()
	if depth != 0 || name == "" || strings.ContainsAny(name, "()-,") {
		return ""
	}
	return name
}

// SimpleTypeName returns the referenced simple name of written type text:
// the last segment of TypeName.
func SimpleTypeName(text string) string {
	name := TypeName(text)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
