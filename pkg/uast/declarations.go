package uast

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// ErrorName is the name reported for declarations whose name is missing.
const ErrorName = "<error name>"

// identifierText strips backtick quoting from an identifier.
func identifierText(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`") {
		return s[1 : len(s)-1]
	}
	return s
}

func nameOf(src cst.Node) string {
	if n := src.Child(cst.SlotName); n != nil {
		return identifierText(n.Text())
	}
	return ""
}

// File is the root of a converted source file.
type File struct {
	base
	imports      lazy[[]*Import]
	declarations lazy[[]Declaration]
}

func newFile(src cst.Node, parent Element) *File {
	return &File{base: base{parent: parent, src: src}}
}

func (f *File) Kind() Kind { return KindFile }

// PackageName returns the declared package, or "" for the default package.
func (f *File) PackageName() string {
	if p := f.src.Child(cst.SlotPackage); p != nil {
		return p.Text()
	}
	return ""
}

// Imports returns the file's import directives.
func (f *File) Imports() []*Import {
	return f.imports.get(func() []*Import {
		srcs := f.src.Children(cst.SlotImports)
		out := make([]*Import, 0, len(srcs))
		for _, s := range srcs {
			out = append(out, newImport(s, f))
		}
		return out
	})
}

// Declarations returns the top-level declarations. Kinds without a
// declaration variant are left out.
func (f *File) Declarations() []Declaration {
	return f.declarations.get(func() []Declaration {
		return convertDeclarations(f.src.Children(cst.SlotDeclarations), f)
	})
}

// Classes returns the top-level classes.
func (f *File) Classes() []*Class {
	var out []*Class
	for _, d := range f.Declarations() {
		if c, ok := d.(*Class); ok {
			out = append(out, c)
		}
	}
	return out
}

func (f *File) LogString() string {
	return fmt.Sprintf("UFile (package = %s)", f.PackageName())
}

// Import is an import directive.
type Import struct {
	base
}

func newImport(src cst.Node, parent Element) *Import {
	return &Import{base: base{parent: parent, src: src}}
}

func (i *Import) Kind() Kind { return KindImport }

// ImportedName returns the imported qualified name.
func (i *Import) ImportedName() string {
	if n := i.src.Child(cst.SlotName); n != nil {
		return n.Text()
	}
	return ""
}

func (i *Import) LogString() string {
	return fmt.Sprintf("UImportStatement (%s)", i.ImportedName())
}

// Class is a class, interface, object or enum class declaration.
type Class struct {
	declBase
	superTypes   lazy[[]*Type]
	declarations lazy[[]Declaration]
	parameters   lazy[[]*Parameter]
	displayName  lazy[string]
	fqName       lazy[string]
}

func newClass(src cst.Node, parent Element) *Class {
	return &Class{declBase: declBase{base{parent: parent, src: src}}}
}

func newClassDecl(src cst.Node, parent Element) Declaration { return newClass(src, parent) }

func (c *Class) Kind() Kind { return KindClass }

// Name returns the simple class name.
func (c *Class) Name() string {
	if n := nameOf(c.src); n != "" {
		return n
	}
	if c.IsObject() && c.src.Parent() != nil {
		return "Companion"
	}
	return ErrorName
}

// DisplayName returns the name followed by the referenced supertype names,
// as in "B (Base, Impl)" for "class B : Base<Int>(), demo.Impl".
func (c *Class) DisplayName() string {
	return c.displayName.get(func() string {
		supers := c.SuperTypes()
		names := make([]string, 0, len(supers))
		for _, t := range supers {
			names = append(names, t.ReferencedName())
		}
		return c.Name() + " (" + strings.Join(names, ", ") + ")"
	})
}

// FqName returns the package-qualified name, including enclosing classes.
func (c *Class) FqName() string {
	return c.fqName.get(func() string {
		parts := []string{c.Name()}
		for p := c.src.Parent(); p != nil; p = p.Parent() {
			switch {
			case isClassKind(p.Kind()):
				parts = append(parts, nameOf(p))
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
	})
}

func (c *Class) IsEnum() bool      { return c.src.Kind() == cst.KindEnumClass }
func (c *Class) IsInterface() bool { return c.src.Kind() == cst.KindInterface }
func (c *Class) IsObject() bool    { return c.src.Kind() == cst.KindObject }

func (c *Class) Visibility() Visibility      { return visibilityOf(c.src) }
func (c *Class) HasModifier(m Modifier) bool { return hasModifier(c.src, m) }

// SuperTypes returns the supertype references in declaration order.
func (c *Class) SuperTypes() []*Type {
	return c.superTypes.get(func() []*Type {
		srcs := c.src.Children(cst.SlotSupertypes)
		out := make([]*Type, 0, len(srcs))
		for _, s := range srcs {
			if t := convertType(s, c); t != nil {
				out = append(out, t)
			}
		}
		return out
	})
}

// Declarations returns the member declarations.
func (c *Class) Declarations() []Declaration {
	return c.declarations.get(func() []Declaration {
		return convertDeclarations(c.src.Children(cst.SlotDeclarations), c)
	})
}

// ConstructorParameters returns the primary constructor parameters.
func (c *Class) ConstructorParameters() []*Parameter {
	return c.parameters.get(func() []*Parameter {
		return convertParameters(c.src.Children(cst.SlotParameters), c)
	})
}

// Functions returns the member functions and constructors.
func (c *Class) Functions() []*Function {
	var out []*Function
	for _, d := range c.Declarations() {
		if f, ok := d.(*Function); ok {
			out = append(out, f)
		}
	}
	return out
}

// IsSubclassOf reports whether the class names the given type among its
// supertypes, directly or through resolved supertypes. name may be simple or
// fully qualified.
func (c *Class) IsSubclassOf(ctx context.Context, tc *ToolContext, name string) bool {
	return c.isSubclassOf(ctx, tc, name, map[cst.Node]bool{})
}

func (c *Class) isSubclassOf(ctx context.Context, tc *ToolContext, name string, seen map[cst.Node]bool) bool {
	if seen[c.src] {
		return false
	}
	seen[c.src] = true
	for _, t := range c.SuperTypes() {
		if t.Name() == name || t.Text() == name {
			return true
		}
		if super, ok := t.Resolve(ctx, tc).(*Class); ok {
			if super.FqName() == name || super.isSubclassOf(ctx, tc, name, seen) {
				return true
			}
		}
	}
	return false
}

func (c *Class) LogString() string {
	return fmt.Sprintf("UClass (name = %s)", c.Name())
}

func isClassKind(k cst.Kind) bool {
	switch k {
	case cst.KindClass, cst.KindObject, cst.KindInterface, cst.KindEnumClass:
		return true
	}
	return false
}

// Function is a function or constructor declaration.
type Function struct {
	declBase
	parameters lazy[[]*Parameter]
	body       lazy[Expression]
	returnType lazy[*Type]
}

func newFunction(src cst.Node, parent Element) *Function {
	return &Function{declBase: declBase{base{parent: parent, src: src}}}
}

func newFunctionDecl(src cst.Node, parent Element) Declaration { return newFunction(src, parent) }

func (f *Function) Kind() Kind { return KindFunction }

// IsConstructor reports whether the function is a secondary constructor.
func (f *Function) IsConstructor() bool { return f.src.Kind() == cst.KindConstructor }

// Name returns the function name. Constructors take the name of their class.
func (f *Function) Name() string {
	if f.IsConstructor() {
		for p := f.src.Parent(); p != nil; p = p.Parent() {
			if isClassKind(p.Kind()) {
				if n := nameOf(p); n != "" {
					return n
				}
				break
			}
		}
		return ErrorName
	}
	if n := nameOf(f.src); n != "" {
		return n
	}
	return ErrorName
}

// ValueParameters returns the declared parameters.
func (f *Function) ValueParameters() []*Parameter {
	return f.parameters.get(func() []*Parameter {
		return convertParameters(f.src.Children(cst.SlotParameters), f)
	})
}

func (f *Function) ValueParameterCount() int { return len(f.ValueParameters()) }

// Body returns the function body, or an Empty element if it has none.
func (f *Function) Body() Expression {
	return f.body.get(func() Expression {
		return convertOrEmpty(f.src.Child(cst.SlotBody), f)
	})
}

// ReturnType returns the declared return type, or nil.
func (f *Function) ReturnType() *Type {
	return f.returnType.get(func() *Type {
		return convertType(f.src.Child(cst.SlotType), f)
	})
}

func (f *Function) Visibility() Visibility      { return visibilityOf(f.src) }
func (f *Function) HasModifier(m Modifier) bool { return hasModifier(f.src, m) }

func (f *Function) LogString() string {
	if f.IsConstructor() {
		return fmt.Sprintf("UFunction (constructor, name = %s)", f.Name())
	}
	return fmt.Sprintf("UFunction (name = %s)", f.Name())
}

// Variable is a property or local variable declaration.
type Variable struct {
	declBase
	initializer lazy[Expression]
	typ         lazy[*Type]
}

func newVariable(src cst.Node, parent Element) *Variable {
	return &Variable{declBase: declBase{base{parent: parent, src: src}}}
}

func newVariableDecl(src cst.Node, parent Element) Declaration { return newVariable(src, parent) }

func (v *Variable) Kind() Kind { return KindVariable }

func (v *Variable) Name() string {
	if n := nameOf(v.src); n != "" {
		return n
	}
	return ErrorName
}

// Initializer returns the initializer, or an Empty element if there is none.
func (v *Variable) Initializer() Expression {
	return v.initializer.get(func() Expression {
		return convertOrEmpty(v.src.Child(cst.SlotInitializer), v)
	})
}

// Type returns the declared type, or nil when it is inferred.
func (v *Variable) Type() *Type {
	return v.typ.get(func() *Type {
		return convertType(v.src.Child(cst.SlotType), v)
	})
}

// IsProperty reports whether the variable is a class member or top-level
// property rather than a local.
func (v *Variable) IsProperty() bool {
	p := v.src.Parent()
	return p == nil || p.Kind() == cst.KindFile || isClassKind(p.Kind())
}

// IsMutable reports whether the variable was declared with var.
func (v *Variable) IsMutable() bool { return hasKeyword(v.src, "var") }

func (v *Variable) Visibility() Visibility      { return visibilityOf(v.src) }
func (v *Variable) HasModifier(m Modifier) bool { return hasModifier(v.src, m) }

func (v *Variable) LogString() string {
	return fmt.Sprintf("UVariable (name = %s)", v.Name())
}

// Parameter is a value parameter of a function, constructor, lambda or catch
// clause.
type Parameter struct {
	declBase
	typ          lazy[*Type]
	defaultValue lazy[Expression]
}

func newParameter(src cst.Node, parent Element) *Parameter {
	return &Parameter{declBase: declBase{base{parent: parent, src: src}}}
}

func newParameterDecl(src cst.Node, parent Element) Declaration { return newParameter(src, parent) }

func (p *Parameter) Kind() Kind { return KindParameter }

func (p *Parameter) Name() string {
	if n := nameOf(p.src); n != "" {
		return n
	}
	return ErrorName
}

// Type returns the declared parameter type, or nil.
func (p *Parameter) Type() *Type {
	return p.typ.get(func() *Type {
		return convertType(p.src.Child(cst.SlotType), p)
	})
}

// DefaultValue returns the default value expression, or nil.
func (p *Parameter) DefaultValue() Expression {
	return p.defaultValue.get(func() Expression {
		return convertOrNil(p.src.Child(cst.SlotInitializer), p)
	})
}

func (p *Parameter) LogString() string {
	return fmt.Sprintf("UParameter (name = %s)", p.Name())
}

// Type is a reference to a type as written in source.
type Type struct {
	base
}

func newType(src cst.Node, parent Element) *Type {
	return &Type{base: base{parent: parent, src: src}}
}

func (t *Type) Kind() Kind { return KindType }

// Name returns the type name as written, qualifier included, or the raw text
// for types without one.
func (t *Type) Name() string {
	if n := nameOf(t.src); n != "" {
		return n
	}
	if txt := t.src.Text(); txt != "" {
		return txt
	}
	return ErrorName
}

// ReferencedName returns the simple name the type refers to, without
// qualifier, nullability or type arguments. Types that name no user type
// fall back to their written text.
func (t *Type) ReferencedName() string {
	if n := cst.SimpleTypeName(t.Name()); n != "" {
		return n
	}
	return t.Name()
}

// Text returns the type as written.
func (t *Type) Text() string { return t.src.Text() }

// IsInt reports whether the type is the built-in Int.
func (t *Type) IsInt() bool {
	n := t.Name()
	return n == "Int" || n == "kotlin.Int"
}

// IsNullable reports whether the type is marked nullable.
func (t *Type) IsNullable() bool { return strings.HasSuffix(t.src.Text(), "?") }

// Resolve returns the class declaration the type names, or nil.
func (t *Type) Resolve(ctx context.Context, tc *ToolContext) Declaration {
	return resolveType(ctx, tc, t.src)
}

func (t *Type) LogString() string {
	return fmt.Sprintf("UType (name = %s)", t.Name())
}
