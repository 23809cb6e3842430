package typesys

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Type is a type declared in a [Universe].
//
// A Type is one of:
//   - a plain class, interface, struct or delegate,
//   - an open generic definition (it has type parameters),
//   - a closed generic (a definition closed over type arguments),
//   - an array (the array definition closed over an element type),
//   - a type parameter placeholder.
//
// Types are interned by their Universe, so two *Type values describe the same type
// if and only if they are the same pointer.
type Type struct {
	u     *Universe
	id    uint64
	name  string
	ident string
	kind  Kind

	// Generic definitions
	params     []TypeParam
	paramTypes []*Type

	// Closed generics and arrays
	def  *Type
	args []*Type

	// Type parameter placeholders
	owner    *Type
	position int

	static Declaration
	supers SupertypesFunc

	once sync.Once
	decl Declaration
}

// Declaration holds the supertypes of a type.
type Declaration struct {
	Base       *Type
	Interfaces []*Type
}

// SupertypesFunc computes the supertypes of a type.
//
// For a generic definition it is called once per closed type with the closed type as self
// and its type arguments as args, which lets supertypes refer to type parameters:
//
//	u.Define("List", typesys.ClassKind,
//		typesys.TypeParams(typesys.Inv("T")),
//		typesys.Supertypes(func(self *typesys.Type, args []*typesys.Type) typesys.Declaration {
//			return typesys.Declaration{
//				Interfaces: []*typesys.Type{enumerable.MustClose(args...)},
//			}
//		}),
//	)
type SupertypesFunc func(self *Type, args []*Type) Declaration

// Name returns the display name of the type.
//
// Closed generics are written as Name[Arg1,Arg2], open definitions as Name[] or Name[,],
// and arrays as []Elem.
func (t *Type) Name() string {
	return t.name
}

func (t *Type) String() string {
	return t.name
}

// ID returns a number that is unique within the Universe.
func (t *Type) ID() uint64 {
	return t.id
}

// Kind returns the kind of the type.
func (t *Type) Kind() Kind {
	return t.kind
}

// Universe returns the Universe the type was declared in.
func (t *Type) Universe() *Universe {
	return t.u
}

// IsGenericDefinition returns true if the type has unbound type parameters.
func (t *Type) IsGenericDefinition() bool {
	return len(t.params) > 0
}

// IsClosedGeneric returns true if the type is a generic definition closed over type arguments.
// Arrays are not closed generics, see [Type.IsArray].
func (t *Type) IsClosedGeneric() bool {
	return t.def != nil && t.kind != ArrayKind
}

// IsArray returns true if the type is an array of an element type.
func (t *Type) IsArray() bool {
	return t.def != nil && t.kind == ArrayKind
}

// IsValueType returns true for struct types.
func (t *Type) IsValueType() bool {
	return t.kind == StructKind
}

// IsReference returns true for class, interface, delegate and array types.
func (t *Type) IsReference() bool {
	return t.kind.IsReference()
}

// Definition returns the generic definition of a closed generic or an array.
// It returns nil for any other type.
func (t *Type) Definition() *Type {
	return t.def
}

// Args returns the type arguments of a closed generic, or the element type of an array.
func (t *Type) Args() []*Type {
	return slices.Clone(t.args)
}

// NumArgs returns the number of type arguments.
func (t *Type) NumArgs() int {
	return len(t.args)
}

// Arg returns the type argument at position i.
func (t *Type) Arg(i int) *Type {
	return t.args[i]
}

// Elem returns the element type of an array. It returns nil for other types.
func (t *Type) Elem() *Type {
	if !t.IsArray() {
		return nil
	}
	return t.args[0]
}

// Params returns the type parameters of a generic definition.
func (t *Type) Params() []TypeParam {
	return slices.Clone(t.params)
}

// NumParams returns the number of type parameters of a generic definition.
func (t *Type) NumParams() int {
	return len(t.params)
}

// Param returns the type parameter at position i.
func (t *Type) Param(i int) TypeParam {
	return t.params[i]
}

// ParamTypes returns the placeholder types of a generic definition's type parameters.
func (t *Type) ParamTypes() []*Type {
	return slices.Clone(t.paramTypes)
}

// Base returns the base class of a class, delegate, or array.
//
// Classes, delegates and arrays without an explicit base extend the root object type.
// Interfaces, structs, generic definitions and the root itself have no base.
func (t *Type) Base() *Type {
	t.resolve()
	return t.decl.Base
}

// Interfaces returns the interfaces directly implemented (or extended) by the type.
func (t *Type) Interfaces() []*Type {
	t.resolve()
	return slices.Clone(t.decl.Interfaces)
}

// MustClose is like [Type.Close] but panics if there is an error.
func (t *Type) MustClose(args ...*Type) *Type {
	ct, err := t.Close(args...)
	if err != nil {
		panic(err)
	}
	return ct
}

// Close returns the closed generic type of the definition t over args.
//
// The closed type is interned: closing the same definition over the same arguments
// always returns the same *Type.
func (t *Type) Close(args ...*Type) (*Type, error) {
	return t.u.close(t, args)
}

func (t *Type) resolve() {
	t.once.Do(func() {
		if t.IsGenericDefinition() || t.kind == ParamKind {
			return
		}

		src := t
		if t.IsClosedGeneric() {
			src = t.def
		}

		decl := Declaration{
			Base:       src.static.Base,
			Interfaces: slices.Clone(src.static.Interfaces),
		}

		if src.supers != nil {
			d := src.supers(t, t.args)
			if d.Base != nil {
				decl.Base = d.Base
			}
			decl.Interfaces = append(decl.Interfaces, d.Interfaces...)
		}

		if decl.Base == nil && t != t.u.object {
			switch t.kind {
			case ClassKind, DelegateKind, ArrayKind:
				decl.Base = t.u.object
			}
		}

		if err := checkDeclaration(t, decl); err != nil {
			// The host type graph is inconsistent. This is a programming error.
			panic(err)
		}

		decl.Interfaces = compactTypes(decl.Interfaces)
		t.decl = decl
	})
}

func checkDeclaration(t *Type, decl Declaration) error {
	if b := decl.Base; b != nil {
		if t.kind != ClassKind && b != t.u.object {
			return fmt.Errorf("type %s: %s cannot extend %s", t, t.kind, b)
		}
		if b.kind != ClassKind || b.IsGenericDefinition() {
			return fmt.Errorf("type %s: base %s is not a class", t, b)
		}
		if b == t {
			return fmt.Errorf("type %s: type extends itself", t)
		}
	}

	for _, iface := range decl.Interfaces {
		if iface == nil {
			return fmt.Errorf("type %s: nil interface", t)
		}
		if iface.kind != InterfaceKind || iface.IsGenericDefinition() {
			return fmt.Errorf("type %s: %s is not an interface", t, iface)
		}
		if iface == t {
			return fmt.Errorf("type %s: interface implements itself", t)
		}
	}

	return nil
}

// compactTypes removes duplicate types and keeps the first occurrence.
func compactTypes(types []*Type) []*Type {
	out := make([]*Type, 0, len(types))
	for _, t := range types {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func definitionName(name string, numParams int) string {
	return name + "[" + strings.Repeat(",", numParams-1) + "]"
}

func closedName(def *Type, args []*Type) string {
	if def.kind == ArrayKind {
		return "[]" + args[0].name
	}

	var sb strings.Builder
	sb.WriteString(def.ident)
	sb.WriteByte('[')
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(arg.name)
	}
	sb.WriteByte(']')
	return sb.String()
}
