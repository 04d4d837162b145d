package semantic

import (
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// Bindings answers resolution queries for one analysis. It implements
// cst.Bindings.
type Bindings struct {
	engine *Engine
	depth  cst.Depth
	files  map[cst.Node]*fileIndex
	order  []cst.Node
}

// Depth returns the analysis depth the bindings were built with.
func (b *Bindings) Depth() cst.Depth { return b.depth }

// Declaration implements cst.Bindings.
func (b *Bindings) Declaration(ref cst.Node) (cst.Node, error) {
	if ref == nil {
		return nil, cst.ErrUnresolved
	}
	idx := b.indexOf(ref)
	if idx == nil {
		return nil, cst.ErrUnresolved
	}
	d, err := b.declaration(ref, idx, map[cst.Node]bool{})
	if err != nil {
		b.engine.logger.Debug("reference not resolved",
			slog.String("kind", string(ref.Kind())),
			slog.String("text", ref.Text()),
			slog.Any("error", err))
	}
	return d, err
}

// TypeDeclaration implements cst.Bindings.
func (b *Bindings) TypeDeclaration(typeRef cst.Node) (cst.Node, error) {
	if typeRef == nil {
		return nil, cst.ErrUnresolved
	}
	idx := b.indexOf(typeRef)
	if idx == nil {
		return nil, cst.ErrUnresolved
	}
	return b.typeDeclaration(typeRef, idx)
}

// ConstantValue implements cst.Bindings.
func (b *Bindings) ConstantValue(expr cst.Node) (any, bool) {
	if expr == nil || b.indexOf(expr) == nil {
		return nil, false
	}
	return b.constant(expr, map[cst.Node]bool{})
}

func (b *Bindings) indexOf(n cst.Node) *fileIndex {
	return b.files[cst.Root(n)]
}

func (b *Bindings) declaration(ref cst.Node, idx *fileIndex, seen map[cst.Node]bool) (cst.Node, error) {
	if seen[ref] {
		return nil, cst.ErrUnresolved
	}
	seen[ref] = true

	switch ref.Kind() {
	case cst.KindCall:
		return b.call(ref, idx, seen)
	case cst.KindDotQualified, cst.KindSafeQualified:
		sel := ref.Child(cst.SlotSelector)
		if sel == nil {
			return nil, cst.ErrUnresolved
		}
		return b.declaration(sel, idx, seen)
	case cst.KindThis:
		return b.thisClass(ref)
	case cst.KindSuper:
		cls, err := b.thisClass(ref)
		if err != nil {
			return nil, err
		}
		return b.superClass(cls)
	case cst.KindTypeReference:
		return b.typeDeclaration(ref, idx)
	case cst.KindNameReference, cst.KindIdentifier:
	default:
		return nil, cst.ErrUnresolved
	}

	name := identifierText(ref.Text())
	parent := ref.Parent()
	if parent != nil {
		switch parent.Kind() {
		case cst.KindCall:
			if parent.Child(cst.SlotCallee) == ref {
				return b.call(parent, idx, seen)
			}
		case cst.KindDotQualified, cst.KindSafeQualified:
			if parent.Child(cst.SlotSelector) == ref {
				cls, err := b.receiverClass(parent.Child(cst.SlotReceiver), seen)
				if err != nil {
					return nil, err
				}
				return b.member(cls, name, notCallable, map[cst.Node]bool{})
			}
		}
	}
	return b.lexical(ref, name, idx, notCallable, true)
}

// lexical resolves name outward from ref. The first scope holding a match
// wins; more than one match in that scope is ambiguous. Members inherited by
// enclosing classes are searched when inherit is set.
func (b *Bindings) lexical(ref cst.Node, name string, idx *fileIndex, keep func(cst.Node) bool, inherit bool) (cst.Node, error) {
	sc, seq := idx.scopes[ref], idx.seq[ref]
	if sc == nil {
		sc, seq = idx.file, math.MaxInt
	}
	for s := sc; s != nil; s = s.parent {
		if d, ok, err := pick(s.lookup(name, seq, keep)); ok {
			return d, err
		}
		if inherit && s.kind == scopeClass {
			d, err := b.inherited(s.owner, name, keep, map[cst.Node]bool{s.owner: true})
			if err == nil || errors.Is(err, cst.ErrAmbiguous) {
				return d, err
			}
		}
	}
	if d, ok, err := pick(b.crossFile(idx, name, keep)); ok {
		return d, err
	}
	if name == "it" && implicitIt(sc) {
		return nil, cst.ErrSynthetic
	}
	if b.engine.builtins[name] {
		return nil, cst.ErrSynthetic
	}
	return nil, cst.ErrUnresolved
}

// crossFile collects top-level declarations of other analyzed files that are
// visible from idx through a shared package or an import.
func (b *Bindings) crossFile(idx *fileIndex, name string, keep func(cst.Node) bool) []cst.Node {
	if b.depth != cst.DepthFull {
		return nil
	}
	var out []cst.Node
	for _, root := range b.order {
		other := b.files[root]
		if other == idx {
			continue
		}
		fq := name
		if other.pkg != "" {
			fq = other.pkg + "." + name
		}
		if other.pkg != idx.pkg && !idx.importsName(fq) {
			continue
		}
		out = append(out, other.file.lookup(name, math.MaxInt, keep)...)
	}
	return out
}

// member looks up name among the members of cls and its supertypes.
func (b *Bindings) member(cls cst.Node, name string, keep func(cst.Node) bool, seen map[cst.Node]bool) (cst.Node, error) {
	idx := b.indexOf(cls)
	if idx == nil {
		return nil, cst.ErrUnresolved
	}
	seen[cls] = true
	if cs := idx.classes[cls]; cs != nil {
		if d, ok, err := pick(cs.lookup(name, math.MaxInt, keep)); ok {
			return d, err
		}
	}
	return b.inherited(cls, name, keep, seen)
}

func (b *Bindings) inherited(cls cst.Node, name string, keep func(cst.Node) bool, seen map[cst.Node]bool) (cst.Node, error) {
	for _, st := range cls.Children(cst.SlotSupertypes) {
		super, err := b.TypeDeclaration(st)
		if err != nil || seen[super] {
			continue
		}
		if d, err := b.member(super, name, keep, seen); err == nil || errors.Is(err, cst.ErrAmbiguous) {
			return d, err
		}
	}
	return nil, cst.ErrUnresolved
}

// call resolves a call to the function or secondary constructor it invokes,
// disambiguating overloads by argument count.
func (b *Bindings) call(call cst.Node, idx *fileIndex, seen map[cst.Node]bool) (cst.Node, error) {
	callee := call.Child(cst.SlotCallee)
	if callee == nil {
		return nil, cst.ErrUnresolved
	}
	argc := len(call.Children(cst.SlotArguments))

	var candidates []cst.Node
	var err error
	switch {
	case callee.Kind() == cst.KindDotQualified || callee.Kind() == cst.KindSafeQualified:
		sel := callee.Child(cst.SlotSelector)
		if sel == nil {
			return nil, cst.ErrUnresolved
		}
		candidates, err = b.memberCandidates(callee.Child(cst.SlotReceiver), identifierText(sel.Text()), seen)
	case isQualifiedSelector(call):
		candidates, err = b.memberCandidates(call.Parent().Child(cst.SlotReceiver), identifierText(callee.Text()), seen)
	case callee.Kind() == cst.KindNameReference || callee.Kind() == cst.KindIdentifier:
		name := identifierText(callee.Text())
		candidates = b.lexicalCandidates(callee, name, idx)
		if len(candidates) == 0 {
			if b.engine.builtins[name] {
				return nil, cst.ErrSynthetic
			}
			return nil, cst.ErrUnresolved
		}
	default:
		return nil, cst.ErrUnresolved
	}
	if err != nil {
		return nil, err
	}

	var matches []cst.Node
	for _, c := range candidates {
		if isClassKind(c.Kind()) {
			ctor, err := b.constructor(c, argc)
			if errors.Is(err, cst.ErrUnresolved) {
				continue
			}
			if err != nil {
				return nil, err
			}
			matches = append(matches, ctor)
			continue
		}
		if accepts(c, argc) {
			matches = append(matches, c)
		}
	}
	d, ok, err := pick(matches)
	if !ok {
		return nil, cst.ErrUnresolved
	}
	return d, err
}

// lexicalCandidates returns the callables named name in the innermost scope
// that declares any, followed by other files at full depth.
func (b *Bindings) lexicalCandidates(ref cst.Node, name string, idx *fileIndex) []cst.Node {
	sc, seq := idx.scopes[ref], idx.seq[ref]
	if sc == nil {
		sc, seq = idx.file, math.MaxInt
	}
	for s := sc; s != nil; s = s.parent {
		if found := s.lookup(name, seq, callable); len(found) > 0 {
			return found
		}
		if s.kind == scopeClass {
			if found := b.inheritedCandidates(s.owner, name, map[cst.Node]bool{s.owner: true}); len(found) > 0 {
				return found
			}
		}
	}
	return b.crossFile(idx, name, callable)
}

func (b *Bindings) memberCandidates(receiver cst.Node, name string, seen map[cst.Node]bool) ([]cst.Node, error) {
	cls, err := b.receiverClass(receiver, seen)
	if err != nil {
		return nil, err
	}
	idx := b.indexOf(cls)
	if idx == nil {
		return nil, cst.ErrUnresolved
	}
	if cs := idx.classes[cls]; cs != nil {
		if found := cs.lookup(name, math.MaxInt, callable); len(found) > 0 {
			return found, nil
		}
	}
	return b.inheritedCandidates(cls, name, map[cst.Node]bool{cls: true}), nil
}

func (b *Bindings) inheritedCandidates(cls cst.Node, name string, seen map[cst.Node]bool) []cst.Node {
	for _, st := range cls.Children(cst.SlotSupertypes) {
		super, err := b.TypeDeclaration(st)
		if err != nil || seen[super] {
			continue
		}
		seen[super] = true
		idx := b.indexOf(super)
		if idx == nil {
			continue
		}
		if cs := idx.classes[super]; cs != nil {
			if found := cs.lookup(name, math.MaxInt, callable); len(found) > 0 {
				return found
			}
		}
		if found := b.inheritedCandidates(super, name, seen); len(found) > 0 {
			return found
		}
	}
	return nil
}

// constructor selects the constructor of cls taking argc arguments. Calls
// matching only the primary constructor resolve to a synthetic declaration.
func (b *Bindings) constructor(cls cst.Node, argc int) (cst.Node, error) {
	var ctors []cst.Node
	for _, d := range cls.Children(cst.SlotDeclarations) {
		if d.Kind() == cst.KindConstructor && accepts(d, argc) {
			ctors = append(ctors, d)
		}
	}
	if d, ok, err := pick(ctors); ok {
		return d, err
	}
	if accepts(cls, argc) {
		return nil, cst.ErrSynthetic
	}
	return nil, cst.ErrUnresolved
}

// receiverClass returns the class whose members a qualified selector sees.
func (b *Bindings) receiverClass(receiver cst.Node, seen map[cst.Node]bool) (cst.Node, error) {
	if receiver == nil {
		return nil, cst.ErrUnresolved
	}
	idx := b.indexOf(receiver)
	if idx == nil {
		return nil, cst.ErrUnresolved
	}
	d, err := b.declaration(receiver, idx, seen)
	if err != nil {
		return nil, err
	}
	return b.classOf(d, seen)
}

// classOf returns the class a declaration's value belongs to.
func (b *Bindings) classOf(d cst.Node, seen map[cst.Node]bool) (cst.Node, error) {
	switch k := d.Kind(); {
	case isClassKind(k):
		return d, nil
	case k == cst.KindConstructor:
		if cls := enclosingClass(d); cls != nil {
			return cls, nil
		}
	case k == cst.KindFunction:
		if t := d.Child(cst.SlotType); t != nil {
			return b.TypeDeclaration(t)
		}
	case k == cst.KindProperty || k == cst.KindParameter:
		if t := d.Child(cst.SlotType); t != nil {
			return b.TypeDeclaration(t)
		}
		if init := d.Child(cst.SlotInitializer); init != nil && init.Kind() == cst.KindCall {
			idx := b.indexOf(init)
			if idx == nil {
				break
			}
			callee := init.Child(cst.SlotCallee)
			if callee == nil {
				break
			}
			for _, c := range b.lexicalCandidates(callee, identifierText(callee.Text()), idx) {
				if isClassKind(c.Kind()) {
					return c, nil
				}
			}
			if fn, err := b.call(init, idx, seen); err == nil {
				return b.classOf(fn, seen)
			}
		}
	}
	return nil, cst.ErrUnresolved
}

// thisClass returns the class a this or super expression refers to,
// honouring an @Label qualifier.
func (b *Bindings) thisClass(n cst.Node) (cst.Node, error) {
	label := ""
	if i := strings.Index(n.Text(), "@"); i >= 0 {
		label = n.Text()[i+1:]
	}
	for cls := enclosingClass(n); cls != nil; cls = enclosingClass(cls) {
		if label == "" || declName(cls) == label {
			return cls, nil
		}
	}
	return nil, cst.ErrUnresolved
}

func (b *Bindings) superClass(cls cst.Node) (cst.Node, error) {
	for _, st := range cls.Children(cst.SlotSupertypes) {
		super, err := b.TypeDeclaration(st)
		if err == nil && super.Kind() != cst.KindInterface {
			return super, nil
		}
	}
	return nil, cst.ErrUnresolved
}

func (b *Bindings) typeDeclaration(t cst.Node, idx *fileIndex) (cst.Node, error) {
	name := typeName(t)
	if name == "" {
		return nil, cst.ErrUnresolved
	}
	if strings.Contains(name, ".") {
		var matches []cst.Node
		for _, root := range b.order {
			for _, cls := range classesOf(root) {
				if fqName(cls) == name {
					matches = append(matches, cls)
				}
			}
		}
		if d, ok, err := pick(matches); ok {
			return d, err
		}
		return nil, cst.ErrUnresolved
	}

	d, err := b.lexical(t, name, idx, isClass, false)
	if errors.Is(err, cst.ErrUnresolved) && b.engine.builtinTypes[name] {
		return nil, cst.ErrSynthetic
	}
	return d, err
}

// classesOf lists every class declared in a file, nested ones included.
func classesOf(root cst.Node) []cst.Node {
	var out []cst.Node
	var walk func(cst.Node)
	walk = func(n cst.Node) {
		if isClassKind(n.Kind()) {
			out = append(out, n)
		}
		for _, d := range n.Children(cst.SlotDeclarations) {
			walk(d)
		}
	}
	walk(root)
	return out
}

// pick returns the single declaration in found, or ErrAmbiguous when there
// are several. ok is false when found is empty.
func pick(found []cst.Node) (cst.Node, bool, error) {
	switch len(found) {
	case 0:
		return nil, false, nil
	case 1:
		return found[0], true, nil
	default:
		return nil, true, cst.ErrAmbiguous
	}
}

// accepts reports whether a function, constructor or class with primary
// constructor parameters can be called with argc arguments.
func accepts(decl cst.Node, argc int) bool {
	params := decl.Children(cst.SlotParameters)
	required := 0
	for _, p := range params {
		if hasKeyword(p, "vararg") {
			return argc >= required
		}
		if p.Child(cst.SlotInitializer) == nil {
			required++
		}
	}
	return argc >= required && argc <= len(params)
}

// implicitIt reports whether the innermost lambda around sc declares no
// parameters, making it the implicit parameter.
func implicitIt(sc *scope) bool {
	for s := sc; s != nil; s = s.parent {
		if s.kind == scopeLambda {
			return len(s.owner.Children(cst.SlotParameters)) == 0
		}
	}
	return false
}

func isQualifiedSelector(n cst.Node) bool {
	p := n.Parent()
	if p == nil {
		return false
	}
	return (p.Kind() == cst.KindDotQualified || p.Kind() == cst.KindSafeQualified) &&
		p.Child(cst.SlotSelector) == n
}

func callable(n cst.Node) bool {
	switch k := n.Kind(); {
	case k == cst.KindFunction, k == cst.KindConstructor, isClassKind(k):
		return true
	}
	return false
}

func notCallable(n cst.Node) bool {
	k := n.Kind()
	return k != cst.KindFunction && k != cst.KindConstructor
}

func isClass(n cst.Node) bool { return isClassKind(n.Kind()) }
