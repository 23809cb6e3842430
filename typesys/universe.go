package typesys

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/sectrean/di-registry/internal/errors"
)

// Universe declares and interns types.
//
// A Universe is the host type system the registration engine introspects: it answers
// which base class and interfaces a type has, which definition a closed generic was
// built from, and which variance each type parameter was declared with.
//
// Every Universe pre-declares these types:
//   - object is the root class. Classes, delegates and arrays extend it.
//   - string is a class.
//   - int and bool are value types.
//
// A Universe is safe for concurrent use.
type Universe struct {
	mu     sync.Mutex
	nextID uint64
	named  map[string]*Type
	closed map[string]*Type

	object   *Type
	str      *Type
	integer  *Type
	boolean  *Type
	arrayDef *Type
}

// NewUniverse creates a new [Universe] with the pre-declared types.
func NewUniverse() *Universe {
	u := &Universe{
		named:  make(map[string]*Type),
		closed: make(map[string]*Type),
	}

	u.object = u.MustDefine("object", ClassKind)
	u.str = u.MustDefine("string", ClassKind)
	u.integer = u.MustDefine("int", StructKind)
	u.boolean = u.MustDefine("bool", StructKind)

	u.arrayDef = u.newType("[]", "[]", ArrayKind)
	u.arrayDef.params = []TypeParam{Out("T")}
	u.arrayDef.paramTypes = []*Type{u.newParam(u.arrayDef, "T", 0)}

	return u
}

// Object returns the root object type.
func (u *Universe) Object() *Type { return u.object }

// String returns the pre-declared string class.
func (u *Universe) String() *Type { return u.str }

// Int returns the pre-declared int value type.
func (u *Universe) Int() *Type { return u.integer }

// Bool returns the pre-declared bool value type.
func (u *Universe) Bool() *Type { return u.boolean }

// ArrayDefinition returns the open array definition.
// It has a single covariant type parameter: the element type.
func (u *Universe) ArrayDefinition() *Type { return u.arrayDef }

// Lookup returns the declared type with the given name.
func (u *Universe) Lookup(name string) (*Type, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	t, ok := u.named[name]
	return t, ok
}

// DefineOption is used to configure a type when calling [Universe.Define].
//
// Available options:
//   - [Extends] sets the base class.
//   - [Implements] adds implemented interfaces.
//   - [TypeParams] makes the type a generic definition.
//   - [Supertypes] computes supertypes that refer to the type itself or its type arguments.
type DefineOption interface {
	applyDefinition(*Type) error
}

type defineOption func(*Type) error

func (o defineOption) applyDefinition(t *Type) error {
	return o(t)
}

// Extends sets the base class of a class.
func Extends(base *Type) DefineOption {
	return defineOption(func(t *Type) error {
		if base == nil {
			return errors.New("extends: base is nil")
		}
		if t.kind != ClassKind {
			return errors.Errorf("extends %s: %s types cannot extend a class", base, t.kind)
		}
		if base.kind != ClassKind || base.IsGenericDefinition() {
			return errors.Errorf("extends %s: base is not a class", base)
		}
		if base.u != t.u {
			return errors.Errorf("extends %s: base belongs to a different universe", base)
		}

		t.static.Base = base
		return nil
	})
}

// Implements adds interfaces implemented by a type.
func Implements(ifaces ...*Type) DefineOption {
	return defineOption(func(t *Type) error {
		for _, iface := range ifaces {
			if iface == nil {
				return errors.New("implements: interface is nil")
			}
			if iface.kind != InterfaceKind || iface.IsGenericDefinition() {
				return errors.Errorf("implements %s: not an interface", iface)
			}
			if iface.u != t.u {
				return errors.Errorf("implements %s: interface belongs to a different universe", iface)
			}
		}

		t.static.Interfaces = append(t.static.Interfaces, ifaces...)
		return nil
	})
}

// TypeParams makes the type a generic definition with the given type parameters.
//
// Variant type parameters ([In], [Out]) are only allowed on interfaces and delegates.
func TypeParams(params ...TypeParam) DefineOption {
	return defineOption(func(t *Type) error {
		if len(params) == 0 {
			return errors.New("type params: no type parameters")
		}

		for i, p := range params {
			if p.Name == "" || !validIdent(p.Name) {
				return errors.Errorf("type params: invalid name %q", p.Name)
			}
			if slices.ContainsFunc(params[:i], func(o TypeParam) bool { return o.Name == p.Name }) {
				return errors.Errorf("type params: duplicate name %q", p.Name)
			}
			if p.Variance != Invariant && t.kind != InterfaceKind && t.kind != DelegateKind {
				return errors.Errorf("type params: %s: variant type parameters are only allowed on interfaces and delegates", p)
			}
		}

		t.params = slices.Clone(params)
		return nil
	})
}

// Supertypes sets a function that computes the supertypes of the type.
//
// The result is merged with [Extends] and [Implements].
func Supertypes(fn SupertypesFunc) DefineOption {
	return defineOption(func(t *Type) error {
		if fn == nil {
			return errors.New("supertypes: fn is nil")
		}

		t.supers = fn
		return nil
	})
}

// MustDefine is like [Universe.Define] but panics if there is an error.
func (u *Universe) MustDefine(name string, kind Kind, opts ...DefineOption) *Type {
	t, err := u.Define(name, kind, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Define declares a new named type.
//
// The kind must be one of [ClassKind], [InterfaceKind], [StructKind], or [DelegateKind].
func (u *Universe) Define(name string, kind Kind, opts ...DefineOption) (*Type, error) {
	if !validIdent(name) {
		return nil, errors.Errorf("typesys.Define %q: invalid name", name)
	}

	switch kind {
	case ClassKind, InterfaceKind, StructKind, DelegateKind:
	default:
		return nil, errors.Errorf("typesys.Define %s: invalid kind %s", name, kind)
	}

	t := &Type{
		u:     u,
		name:  name,
		ident: name,
		kind:  kind,
	}

	var errs errors.MultiError
	for _, opt := range opts {
		errs = errs.Append(opt.applyDefinition(t))
	}
	if err := errs.Wrapf("typesys.Define %s", name); err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if _, exists := u.named[name]; exists {
		return nil, errors.Errorf("typesys.Define %s: type already defined", name)
	}

	t.id = u.nextID
	u.nextID++

	if len(t.params) > 0 {
		t.name = definitionName(name, len(t.params))
		t.paramTypes = make([]*Type, len(t.params))
		for i, p := range t.params {
			t.paramTypes[i] = u.newParamLocked(t, p.Name, i)
		}
	}

	u.named[name] = t
	return t, nil
}

// MustArrayOf is like [Universe.ArrayOf] but panics if there is an error.
func (u *Universe) MustArrayOf(elem *Type) *Type {
	t, err := u.ArrayOf(elem)
	if err != nil {
		panic(err)
	}
	return t
}

// ArrayOf returns the array type with the given element type.
func (u *Universe) ArrayOf(elem *Type) (*Type, error) {
	return u.close(u.arrayDef, []*Type{elem})
}

func (u *Universe) close(def *Type, args []*Type) (*Type, error) {
	if !def.IsGenericDefinition() {
		return nil, errors.Errorf("close %s: not a generic definition", def)
	}
	if len(args) != len(def.params) {
		return nil, errors.Errorf("close %s: expected %d type arguments, got %d", def, len(def.params), len(args))
	}

	for i, arg := range args {
		if arg == nil {
			return nil, errors.Errorf("close %s: type argument %d is nil", def, i)
		}
		if arg.IsGenericDefinition() {
			return nil, errors.Errorf("close %s: type argument %s is a generic definition", def, arg)
		}
		if arg.u != u {
			return nil, errors.Errorf("close %s: type argument %s belongs to a different universe", def, arg)
		}
	}

	key := closedKey(def, args)

	u.mu.Lock()
	defer u.mu.Unlock()

	if t, ok := u.closed[key]; ok {
		return t, nil
	}

	t := &Type{
		u:     u,
		id:    u.nextID,
		name:  closedName(def, args),
		ident: def.ident,
		kind:  def.kind,
		def:   def,
		args:  slices.Clone(args),
	}
	u.nextID++
	u.closed[key] = t

	return t, nil
}

// lookupClosed returns the closed type of def over args if it was already created.
func (u *Universe) lookupClosed(def *Type, args []*Type) (*Type, bool) {
	if len(args) != len(def.params) {
		return nil, false
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	t, ok := u.closed[closedKey(def, args)]
	return t, ok
}

func (u *Universe) newType(name, ident string, kind Kind) *Type {
	u.mu.Lock()
	defer u.mu.Unlock()

	t := &Type{u: u, id: u.nextID, name: name, ident: ident, kind: kind}
	u.nextID++
	return t
}

func (u *Universe) newParam(owner *Type, name string, position int) *Type {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.newParamLocked(owner, name, position)
}

func (u *Universe) newParamLocked(owner *Type, name string, position int) *Type {
	t := &Type{
		u:        u,
		id:       u.nextID,
		name:     name,
		ident:    name,
		kind:     ParamKind,
		owner:    owner,
		position: position,
	}
	u.nextID++
	return t
}

func closedKey(def *Type, args []*Type) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(def.id, 10))
	for _, arg := range args {
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatUint(arg.id, 10))
	}
	return sb.String()
}

func validIdent(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, "[], \t\r\n")
}
