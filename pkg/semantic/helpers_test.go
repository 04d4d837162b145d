package semantic

import (
	"strings"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

func ident(name string) *cst.Element { return cst.New(cst.KindIdentifier, name) }

func named(kind cst.Kind, text, name string) *cst.Element {
	return cst.New(kind, text).Set(cst.SlotName, ident(name))
}

func ref(name string) *cst.Element { return cst.New(cst.KindNameReference, name) }

func lit(text string) *cst.Element { return cst.New(cst.KindLiteral, text) }

func typeRef(name string) *cst.Element { return named(cst.KindTypeReference, name, name) }

func modifiers(e *cst.Element, kws ...string) *cst.Element {
	for _, kw := range kws {
		e.Append(cst.SlotModifiers, cst.New(cst.KindModifier, kw))
	}
	return e
}

func prop(kw, name string, init *cst.Element) *cst.Element {
	text := kw + " " + name
	if init != nil {
		text += " = " + init.Text()
	}
	return modifiers(named(cst.KindProperty, text, name).Set(cst.SlotInitializer, init), kw)
}

func param(name, typ string) *cst.Element {
	p := named(cst.KindParameter, name+": "+typ, name)
	if typ != "" {
		p.Set(cst.SlotType, typeRef(typ))
	}
	return p
}

func block(stmts ...*cst.Element) *cst.Element {
	return cst.New(cst.KindBlock, "{...}").Append(cst.SlotStatements, stmts...)
}

func fun(name string, params []*cst.Element, stmts ...*cst.Element) *cst.Element {
	return named(cst.KindFunction, "fun "+name+"(...)", name).
		Append(cst.SlotParameters, params...).
		Set(cst.SlotBody, block(stmts...))
}

func call(name string, args ...*cst.Element) *cst.Element {
	texts := make([]string, 0, len(args))
	for _, a := range args {
		texts = append(texts, a.Text())
	}
	return cst.New(cst.KindCall, name+"("+strings.Join(texts, ", ")+")").
		Set(cst.SlotCallee, ref(name)).
		Append(cst.SlotArguments, args...)
}

func dot(receiver, selector *cst.Element) *cst.Element {
	return cst.New(cst.KindDotQualified, receiver.Text()+"."+selector.Text()).
		Set(cst.SlotReceiver, receiver).
		Set(cst.SlotSelector, selector)
}

func binary(left *cst.Element, operator string, right *cst.Element) *cst.Element {
	return cst.New(cst.KindBinary, left.Text()+" "+operator+" "+right.Text()).
		Set(cst.SlotLeft, left).
		Set(cst.SlotOperator, cst.New(cst.KindOperationReference, operator)).
		Set(cst.SlotRight, right)
}

func prefix(operator string, operand *cst.Element) *cst.Element {
	return cst.New(cst.KindPrefix, operator+operand.Text()).
		Set(cst.SlotOperator, cst.New(cst.KindOperationReference, operator)).
		Set(cst.SlotOperand, operand)
}

func class(name string, params []*cst.Element, decls ...*cst.Element) *cst.Element {
	return named(cst.KindClass, "class "+name, name).
		Append(cst.SlotParameters, params...).
		Append(cst.SlotDeclarations, decls...)
}

func file(pkg string, decls ...*cst.Element) *cst.Element {
	f := cst.New(cst.KindFile, "")
	if pkg != "" {
		f.Set(cst.SlotPackage, ident(pkg))
	}
	return f.Append(cst.SlotDeclarations, decls...)
}

func imports(f *cst.Element, names ...string) *cst.Element {
	for _, n := range names {
		f.Append(cst.SlotImports, cst.New(cst.KindImport, "import "+n).Set(cst.SlotName, ident(n)))
	}
	return f
}
