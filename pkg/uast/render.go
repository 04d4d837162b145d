package uast

import (
	"fmt"
	"io"
	"strings"
)

// Render writes an indented dump of the tree rooted at el, one element per
// line, using each element's LogString.
func Render(w io.Writer, el Element) error {
	var err error
	var render func(Element, int)
	render = func(e Element, depth int) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("    ", depth), e.LogString())
		for _, c := range Children(e) {
			render(c, depth+1)
		}
	}
	if el != nil {
		render(el, 0)
	}
	return err
}

// DisplayName returns the presentation name of a declaration: the class
// display name for classes, the plain name for other declarations, and ""
// for everything else.
func DisplayName(el Element) string {
	switch n := el.(type) {
	case *Class:
		return n.DisplayName()
	case Declaration:
		return n.Name()
	}
	return ""
}

// NameOf returns the name an element carries: the declared name for
// declarations and types, the identifier for references and the function
// name for calls. Other elements have no name.
func NameOf(el Element) string {
	switch n := el.(type) {
	case Declaration:
		return n.Name()
	case *SimpleReference:
		return n.Identifier()
	case *Call:
		return n.FunctionName()
	case *Type:
		return n.Name()
	case *Import:
		return n.ImportedName()
	}
	return ""
}

// EnclosingDeclaration returns the nearest declaration at or above el.
func EnclosingDeclaration(el Element) Declaration {
	for cur := el; cur != nil; cur = cur.Parent() {
		if d := asDeclaration(cur); d != nil {
			return d
		}
	}
	return nil
}

// EnclosingFile returns the File at the root of el's parent chain.
func EnclosingFile(el Element) *File {
	for cur := el; cur != nil; cur = cur.Parent() {
		if f, ok := cur.(*File); ok {
			return f
		}
	}
	return nil
}
