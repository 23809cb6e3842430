package di

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sectrean/di-registry/typesys"
)

// Index is the Type Descriptor Index: a process-wide, append-only cache of
// [TypeDescriptor] values, one per type.
//
// Create one Index at startup and share it with every [Store]. Descriptors are built
// lazily: building a descriptor builds descriptors for its base class, interfaces,
// generic definition and type arguments.
//
// Lookups of already indexed types do not take locks. Building new descriptors is
// serialized by a single mutex.
type Index struct {
	descriptors *xsync.MapOf[*typesys.Type, *TypeDescriptor]
	generation  atomic.Uint64

	mu       sync.Mutex
	building map[*typesys.Type]*TypeDescriptor
	nextID   uint64
}

// NewIndex creates a new, empty [Index].
func NewIndex() *Index {
	return &Index{
		descriptors: xsync.NewMapOf[*typesys.Type, *TypeDescriptor](),
		building:    make(map[*typesys.Type]*TypeDescriptor),
	}
}

// For returns the descriptor for t, building it if necessary.
//
// For is idempotent: it always returns the same descriptor for the same type.
// It returns nil if t is nil.
func (x *Index) For(t *typesys.Type) *TypeDescriptor {
	if t == nil {
		return nil
	}

	if d, ok := x.descriptors.Load(t); ok {
		return d
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	// Check if another goroutine indexed the type since the last check
	if d, ok := x.descriptors.Load(t); ok {
		return d
	}

	var built []*TypeDescriptor
	d := x.build(t, &built)
	x.publish(built)

	return d
}

// Lookup returns the descriptor for t if it has already been indexed.
func (x *Index) Lookup(t *typesys.Type) (*TypeDescriptor, bool) {
	if t == nil {
		return nil, false
	}
	return x.descriptors.Load(t)
}

// Len returns the number of indexed types.
func (x *Index) Len() int {
	return x.descriptors.Size()
}

// Generation increases every time new descriptors are published.
func (x *Index) Generation() uint64 {
	return x.generation.Load()
}

// lookupLocked resolves a type while building, returning in-progress descriptors
// for types that are currently being built. x.mu must be held.
func (x *Index) lookupLocked(t *typesys.Type, built *[]*TypeDescriptor) *TypeDescriptor {
	if t == nil {
		return nil
	}
	if d, ok := x.descriptors.Load(t); ok {
		return d
	}
	if d, ok := x.building[t]; ok {
		return d
	}
	return x.build(t, built)
}

// build creates the descriptor for t and every descriptor it refers to.
// The descriptor is registered as in-progress before recursing, which breaks
// cycles such as a class implementing a generic interface closed over itself.
func (x *Index) build(t *typesys.Type, built *[]*TypeDescriptor) *TypeDescriptor {
	d := &TypeDescriptor{
		typ: t,
		id:  x.nextID,
	}
	x.nextID++

	x.building[t] = d
	*built = append(*built, d)

	switch {
	case t.IsGenericDefinition():
		d.kind = OpenGenericKind
		d.variances = make([]typesys.Variance, t.NumParams())
		for i := range t.NumParams() {
			d.variances[i] = t.Param(i).Variance
		}
		d.closed = xsync.NewMapOf[string, *TypeDescriptor]()

	case t.IsArray(), t.IsClosedGeneric():
		d.kind = ClosedGenericKind
		if t.IsArray() {
			d.kind = ArrayKind
		}

		d.definition = x.lookupLocked(t.Definition(), built)
		d.args = make([]*TypeDescriptor, t.NumArgs())
		for i := range t.NumArgs() {
			d.args[i] = x.lookupLocked(t.Arg(i), built)
		}

	default:
		d.kind = PlainKind
	}

	d.base = x.lookupLocked(t.Base(), built)

	for _, iface := range t.Interfaces() {
		id := x.lookupLocked(iface, built)
		if id.IsGeneric() {
			d.genericInterfaces = append(d.genericInterfaces, id)
		} else {
			d.plainInterfaces = append(d.plainInterfaces, id)
		}
	}

	// Interfaces have no base, but every reference type converts to the root object type.
	if isRootInterface(d) {
		x.lookupLocked(t.Universe().Object(), built)
	}

	return d
}

// publish makes built descriptors visible to lock-free readers and links back-references.
// x.mu must be held.
func (x *Index) publish(built []*TypeDescriptor) {
	for _, d := range built {
		delete(x.building, d.typ)
		x.descriptors.Store(d.typ, d)
	}

	for _, d := range built {
		if d.base != nil {
			d.base.derived.add(d)
		}
		for _, iface := range d.Interfaces() {
			iface.implementing.add(d)
		}
		if d.definition != nil {
			d.definition.closed.Store(argsKey(d.args), d)
			d.definition.instances.add(d)
		}

		if isRootInterface(d) {
			if root, ok := x.descriptors.Load(d.typ.Universe().Object()); ok {
				root.implementing.add(d)
			}
		}
	}

	x.generation.Add(1)
}

// isRootInterface returns true for interfaces that do not extend other interfaces.
func isRootInterface(d *TypeDescriptor) bool {
	return d.typ.Kind() == typesys.InterfaceKind &&
		d.kind != OpenGenericKind &&
		len(d.genericInterfaces)+len(d.plainInterfaces) == 0
}
