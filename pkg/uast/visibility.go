package uast

import "github.com/leapstack-labs/leapuast/pkg/cst"

// Visibility is the declared accessibility of a declaration.
type Visibility int

const (
	Public Visibility = iota
	Internal
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Protected:
		return "protected"
	case Internal:
		return "internal"
	}
	return "public"
}

// Modifier is a declaration modifier with meaning for analysis tools.
type Modifier int

const (
	ModifierAbstract Modifier = iota + 1
	ModifierOpen
	ModifierInner
	ModifierData
	ModifierOverride
	ModifierConst
)

var modifierKeywords = map[Modifier]string{
	ModifierAbstract: "abstract",
	ModifierOpen:     "open",
	ModifierInner:    "inner",
	ModifierData:     "data",
	ModifierOverride: "override",
	ModifierConst:    "const",
}

func (m Modifier) String() string { return modifierKeywords[m] }

// visibilityOf maps the modifier keywords of src to a Visibility. Keywords
// other than the four visibility keywords are ignored; no keyword means Public.
func visibilityOf(src cst.Node) Visibility {
	for _, m := range src.Children(cst.SlotModifiers) {
		switch m.Text() {
		case "private":
			return Private
		case "protected":
			return Protected
		case "internal":
			return Internal
		case "public":
			return Public
		}
	}
	return Public
}

func hasModifier(src cst.Node, m Modifier) bool {
	kw, ok := modifierKeywords[m]
	if !ok {
		return false
	}
	return hasKeyword(src, kw)
}

func hasKeyword(src cst.Node, kw string) bool {
	for _, n := range src.Children(cst.SlotModifiers) {
		if n.Text() == kw {
			return true
		}
	}
	return false
}
