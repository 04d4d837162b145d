package uast

// Walk traverses the unified tree depth-first and calls fn for each element.
// If fn returns false, the element's children are skipped. Unknown elements
// are leaves.
func Walk(el Element, fn func(el Element) bool) {
	if el == nil {
		return
	}
	if !fn(el) {
		return
	}
	for _, c := range Children(el) {
		Walk(c, fn)
	}
}

// Children returns the direct children of el in source order. Absent
// optional children are omitted; absent required children appear as Empty.
func Children(el Element) []Element {
	var out []Element
	add := func(els ...Element) {
		for _, e := range els {
			if e != nil {
				out = append(out, e)
			}
		}
	}

	switch n := el.(type) {
	case *File:
		for _, i := range n.Imports() {
			add(i)
		}
		for _, d := range n.Declarations() {
			add(d)
		}

	case *Class:
		for _, t := range n.SuperTypes() {
			add(t)
		}
		for _, p := range n.ConstructorParameters() {
			add(p)
		}
		for _, d := range n.Declarations() {
			add(d)
		}

	case *Function:
		for _, p := range n.ValueParameters() {
			add(p)
		}
		if t := n.ReturnType(); t != nil {
			add(t)
		}
		add(n.Body())

	case *Variable:
		if t := n.Type(); t != nil {
			add(t)
		}
		add(n.Initializer())

	case *Parameter:
		if t := n.Type(); t != nil {
			add(t)
		}
		if v := n.DefaultValue(); v != nil {
			add(v)
		}

	case *Declarations:
		if d := n.Declaration(); d != nil {
			add(d)
		}

	case *Qualified:
		add(n.Receiver(), n.Selector())

	case *Call:
		add(n.Callee())
		for _, a := range n.Arguments() {
			add(a)
		}

	case *Binary:
		add(n.Left(), n.Right())

	case *Prefix:
		add(n.Operand())

	case *Postfix:
		add(n.Operand())

	case *Parenthesized:
		add(n.Expression())

	case *TypeCheck:
		add(n.Operand())
		if t := n.Type(); t != nil {
			add(t)
		}

	case *TypeCast:
		add(n.Operand())
		if t := n.Type(); t != nil {
			add(t)
		}

	case *If:
		add(n.Condition())
		if t := n.Then(); t != nil {
			add(t)
		}
		if e := n.Else(); e != nil {
			add(e)
		}

	case *While:
		add(n.Condition(), n.Body())

	case *DoWhile:
		add(n.Body(), n.Condition())

	case *ForEach:
		add(n.IteratedValue(), n.Body())

	case *Jump:
		for _, e := range n.Expressions() {
			add(e)
		}

	case *Block:
		for _, e := range n.Expressions() {
			add(e)
		}

	case *Try:
		add(n.TryClause())
		for _, c := range n.CatchClauses() {
			add(c)
		}
		if f := n.FinallyClause(); f != nil {
			add(f)
		}

	case *Catch:
		if p := n.Parameter(); p != nil {
			add(p)
		}
		add(n.Body())

	case *ArrayAccess:
		add(n.Receiver())
		for _, i := range n.Indices() {
			add(i)
		}

	case *Lambda:
		for _, p := range n.ValueParameters() {
			add(p)
		}
		add(n.Body())

	case *Import, *Type, *SimpleReference, *Literal, *This, *Super, *Empty, *Unknown:
		// Leaf nodes
	}
	return out
}
