package di

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sectrean/di-registry/typesys"
)

// DescriptorKind is the structural kind of a [TypeDescriptor].
type DescriptorKind uint8

const (
	// PlainKind is a non-generic, non-array type.
	PlainKind DescriptorKind = iota

	// ArrayKind is an array. It is treated as the array definition closed over its element type.
	ArrayKind

	// ClosedGenericKind is a generic definition closed over type arguments.
	ClosedGenericKind

	// OpenGenericKind is a generic definition with unbound type parameters.
	OpenGenericKind
)

func (k DescriptorKind) String() string {
	switch k {
	case PlainKind:
		return "Plain"
	case ArrayKind:
		return "Array"
	case ClosedGenericKind:
		return "ClosedGeneric"
	case OpenGenericKind:
		return "OpenGenericDefinition"
	default:
		return fmt.Sprintf("Unknown DescriptorKind %d", k)
	}
}

// TypeDescriptor is the canonical node for one type in an [Index].
//
// Descriptors are interned: there is exactly one descriptor per type per Index, so
// descriptors can be compared by pointer. A descriptor never changes after it is
// published, except that its back-references only grow as related types are indexed.
type TypeDescriptor struct {
	typ  *typesys.Type
	id   uint64
	kind DescriptorKind

	// Closed generics and arrays
	definition *TypeDescriptor
	args       []*TypeDescriptor

	// Open generic definitions
	variances []typesys.Variance
	closed    *xsync.MapOf[string, *TypeDescriptor]
	instances descriptorList

	base              *TypeDescriptor
	genericInterfaces []*TypeDescriptor
	plainInterfaces   []*TypeDescriptor

	derived      descriptorList
	implementing descriptorList
}

// Type returns the host type.
func (d *TypeDescriptor) Type() *typesys.Type {
	return d.typ
}

// Kind returns the structural kind.
func (d *TypeDescriptor) Kind() DescriptorKind {
	return d.kind
}

// Definition returns the open generic definition of a closed generic or array.
func (d *TypeDescriptor) Definition() *TypeDescriptor {
	return d.definition
}

// Args returns the type arguments of a closed generic, or the element of an array.
func (d *TypeDescriptor) Args() []*TypeDescriptor {
	return slices.Clone(d.args)
}

// Variances returns the declared variance of each type parameter of an open generic definition.
func (d *TypeDescriptor) Variances() []typesys.Variance {
	return slices.Clone(d.variances)
}

// Base returns the base class descriptor, if any.
func (d *TypeDescriptor) Base() *TypeDescriptor {
	return d.base
}

// Interfaces returns the directly implemented interfaces, generic ones first.
func (d *TypeDescriptor) Interfaces() []*TypeDescriptor {
	return slices.Concat(d.genericInterfaces, d.plainInterfaces)
}

// DerivedTypes returns the indexed types whose base is d, in indexing order.
func (d *TypeDescriptor) DerivedTypes() []*TypeDescriptor {
	return slices.Clone(d.derived.load())
}

// ImplementingTypes returns the indexed types that directly implement d, in indexing order.
func (d *TypeDescriptor) ImplementingTypes() []*TypeDescriptor {
	return slices.Clone(d.implementing.load())
}

// Instantiations returns the indexed closed types built from the open definition d.
func (d *TypeDescriptor) Instantiations() []*TypeDescriptor {
	return slices.Clone(d.instances.load())
}

// IsGeneric returns true for closed generics and arrays.
func (d *TypeDescriptor) IsGeneric() bool {
	return d.kind == ClosedGenericKind || d.kind == ArrayKind
}

func (d *TypeDescriptor) String() string {
	return d.typ.String()
}

// closedInstance returns the indexed instantiation of the definition d over args.
func (d *TypeDescriptor) closedInstance(args []*TypeDescriptor) (*TypeDescriptor, bool) {
	if d.closed == nil {
		return nil, false
	}
	return d.closed.Load(argsKey(args))
}

func argsKey(args []*TypeDescriptor) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(strconv.FormatUint(arg.id, 10))
	}
	return sb.String()
}

// descriptorList is an append-only list that can be read without locks.
// Writers must be serialized by the caller.
type descriptorList struct {
	p atomic.Pointer[[]*TypeDescriptor]
}

func (l *descriptorList) load() []*TypeDescriptor {
	if s := l.p.Load(); s != nil {
		return *s
	}
	return nil
}

func (l *descriptorList) add(d *TypeDescriptor) {
	cur := l.load()
	next := make([]*TypeDescriptor, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, d)
	l.p.Store(&next)
}
