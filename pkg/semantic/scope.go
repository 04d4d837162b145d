package semantic

import (
	"strings"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// scopeKind indicates what introduced a scope.
type scopeKind int

const (
	scopeFile scopeKind = iota
	scopeClass
	scopeFunction
	scopeBlock
	scopeLambda
	scopeLoop
	scopeCatch
)

// entry is a declaration registered in a scope. A reference sees the entry
// only if its sequence number is at least visibleFrom.
type entry struct {
	node        cst.Node
	visibleFrom int
}

// scope tracks the declarations introduced by one construct.
type scope struct {
	parent  *scope
	kind    scopeKind
	owner   cst.Node
	entries map[string][]entry
}

func newScope(parent *scope, kind scopeKind, owner cst.Node) *scope {
	return &scope{
		parent:  parent,
		kind:    kind,
		owner:   owner,
		entries: make(map[string][]entry),
	}
}

func (s *scope) declare(name string, node cst.Node, visibleFrom int) {
	if name == "" {
		return
	}
	s.entries[name] = append(s.entries[name], entry{node: node, visibleFrom: visibleFrom})
}

// lookup returns the declarations named name that are visible at seq and
// accepted by keep.
func (s *scope) lookup(name string, seq int, keep func(cst.Node) bool) []cst.Node {
	var out []cst.Node
	for _, e := range s.entries[name] {
		if seq < e.visibleFrom {
			continue
		}
		if keep == nil || keep(e.node) {
			out = append(out, e.node)
		}
	}
	return out
}

// fileIndex holds the scopes of one file.
type fileIndex struct {
	root    cst.Node
	pkg     string
	imports []string
	file    *scope
	scopes  map[cst.Node]*scope // innermost scope in effect at each node
	classes map[cst.Node]*scope // member scope of each class
	seq     map[cst.Node]int
}

// importsName reports whether the file imports fq, directly or through a
// star import of its package.
func (idx *fileIndex) importsName(fq string) bool {
	pkg := ""
	if i := strings.LastIndex(fq, "."); i >= 0 {
		pkg = fq[:i]
	}
	for _, imp := range idx.imports {
		if imp == fq || (pkg != "" && imp == pkg+".*") {
			return true
		}
	}
	return false
}

type indexBuilder struct {
	idx  *fileIndex
	next int
}

func buildIndex(root cst.Node) *fileIndex {
	idx := &fileIndex{
		root:    root,
		scopes:  make(map[cst.Node]*scope),
		classes: make(map[cst.Node]*scope),
		seq:     make(map[cst.Node]int),
	}
	if p := root.Child(cst.SlotPackage); p != nil {
		idx.pkg = p.Text()
	}
	for _, imp := range root.Children(cst.SlotImports) {
		if n := imp.Child(cst.SlotName); n != nil {
			idx.imports = append(idx.imports, n.Text())
		}
	}
	idx.file = newScope(nil, scopeFile, root)

	b := &indexBuilder{idx: idx}
	b.visit(root, idx.file)
	return idx
}

func (b *indexBuilder) mark(n cst.Node, sc *scope) {
	b.idx.seq[n] = b.next
	b.idx.scopes[n] = sc
	b.next++
}

func (b *indexBuilder) visitAll(nodes []cst.Node, sc *scope) {
	for _, n := range nodes {
		b.visit(n, sc)
	}
}

func (b *indexBuilder) visit(n cst.Node, sc *scope) {
	b.mark(n, sc)

	switch k := n.Kind(); {
	case k == cst.KindFile:
		for _, d := range n.Children(cst.SlotDeclarations) {
			sc.declare(declName(d), d, 0)
		}
		b.visitChildren(n, sc)

	case isClassKind(k):
		cs := newScope(sc, scopeClass, n)
		b.idx.classes[n] = cs
		for _, p := range n.Children(cst.SlotParameters) {
			cs.declare(declName(p), p, 0)
		}
		for _, d := range n.Children(cst.SlotDeclarations) {
			cs.declare(declName(d), d, 0)
		}
		b.visitChildren(n, cs)

	case k == cst.KindFunction || k == cst.KindConstructor:
		fs := newScope(sc, scopeFunction, n)
		for _, p := range n.Children(cst.SlotParameters) {
			fs.declare(declName(p), p, 0)
		}
		b.visitChildren(n, fs)

	case k == cst.KindBlock:
		bs := newScope(sc, scopeBlock, n)
		for _, stmt := range n.Children(cst.SlotStatements) {
			b.visitStatement(stmt, bs)
		}
		b.visitAll(n.Children(cst.SlotBody), bs)

	case k == cst.KindLambda:
		ls := newScope(sc, scopeLambda, n)
		for _, p := range n.Children(cst.SlotParameters) {
			ls.declare(declName(p), p, 0)
		}
		b.visitChildren(n, ls)

	case k == cst.KindFor:
		b.visitAll(n.Children(cst.SlotIterable), sc)
		loop := newScope(sc, scopeLoop, n)
		for _, p := range n.Children(cst.SlotLoopParameter) {
			loop.declare(declName(p), p, 0)
			b.visit(p, loop)
		}
		b.visitAll(n.Children(cst.SlotBody), loop)

	case k == cst.KindCatch:
		cs := newScope(sc, scopeCatch, n)
		for _, p := range n.Children(cst.SlotParameters) {
			cs.declare(declName(p), p, 0)
		}
		b.visitChildren(n, cs)

	default:
		b.visitChildren(n, sc)
	}
}

func (b *indexBuilder) visitChildren(n cst.Node, sc *scope) {
	b.visitAll(cst.ChildNodes(n), sc)
}

// visitStatement visits a block statement, registering local declarations.
// Local functions and classes are visible from their own declaration on;
// local variables only after their initializer.
func (b *indexBuilder) visitStatement(stmt cst.Node, bs *scope) {
	switch k := stmt.Kind(); {
	case k == cst.KindProperty:
		b.visit(stmt, bs)
		bs.declare(declName(stmt), stmt, b.next)
	case k == cst.KindFunction || isClassKind(k):
		bs.declare(declName(stmt), stmt, b.next)
		b.visit(stmt, bs)
	default:
		b.visit(stmt, bs)
	}
}

func isClassKind(k cst.Kind) bool {
	switch k {
	case cst.KindClass, cst.KindObject, cst.KindInterface, cst.KindEnumClass:
		return true
	}
	return false
}

func identifierText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`") {
		return s[1 : len(s)-1]
	}
	return s
}

func declName(n cst.Node) string {
	if name := n.Child(cst.SlotName); name != nil {
		return identifierText(name.Text())
	}
	return ""
}

// typeName returns the simple name a type reference names.
func typeName(t cst.Node) string {
	if name := t.Child(cst.SlotName); name != nil {
		return identifierText(name.Text())
	}
	s := strings.TrimSuffix(strings.TrimSpace(t.Text()), "?")
	if i := strings.Index(s, "<"); i >= 0 {
		s = s[:i]
	}
	return s
}

// fqName returns the package-qualified name of a class declaration.
func fqName(cls cst.Node) string {
	parts := []string{declName(cls)}
	for p := cls.Parent(); p != nil; p = p.Parent() {
		switch {
		case isClassKind(p.Kind()):
			parts = append(parts, declName(p))
		case p.Kind() == cst.KindFile:
			if pkg := p.Child(cst.SlotPackage); pkg != nil && pkg.Text() != "" {
				parts = append(parts, pkg.Text())
			}
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

func enclosingClass(n cst.Node) cst.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if isClassKind(p.Kind()) {
			return p
		}
	}
	return nil
}

func hasKeyword(n cst.Node, kw string) bool {
	for _, m := range n.Children(cst.SlotModifiers) {
		if m.Text() == kw {
			return true
		}
	}
	return false
}
