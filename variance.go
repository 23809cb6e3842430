package di

import (
	"iter"

	"github.com/hashicorp/go-set/v3"

	"github.com/sectrean/di-registry/typesys"
)

// Direction tracks whether variance is inverted by an odd number of
// contravariant positions between the requested type and a type argument.
type Direction uint8

const (
	// Forward keeps declared variances as they are.
	Forward Direction = iota

	// Inverted swaps covariance and contravariance.
	Inverted
)

// Apply returns the effective variance of a parameter declared with v.
func (dir Direction) Apply(v typesys.Variance) typesys.Variance {
	if dir == Inverted {
		return v.Invert()
	}
	return v
}

// Through returns the direction for the type arguments of a generic type
// found in a position with effective variance v.
func (dir Direction) Through(v typesys.Variance) Direction {
	if v == typesys.Contravariant {
		return dir ^ 1
	}
	return dir
}

func (dir Direction) String() string {
	if dir == Inverted {
		return "Inverted"
	}
	return "Forward"
}

// directionOf returns the direction for the type arguments of a generic type
// found in a position with effective variance v.
func directionOf(v typesys.Variance) Direction {
	return Forward.Through(v)
}

// ParameterVariance returns the declared variance of the type parameter at position
// of an open generic definition. Arrays are an implicit definition with a single
// covariant parameter.
//
// It returns [typesys.Invariant] if def is not an open definition or position is out of range.
func ParameterVariance(def *TypeDescriptor, position int) typesys.Variance {
	if def == nil || def.kind != OpenGenericKind {
		return typesys.Invariant
	}
	if position < 0 || position >= len(def.variances) {
		return typesys.Invariant
	}
	return def.variances[position]
}

// CompatibleSubstitutions returns the types that may replace arg in a position with
// variance v (after applying dir), nearest first:
//   - Invariant: arg only.
//   - Covariant: arg, then the indexed types derived from or implementing arg, breadth-first.
//   - Contravariant: arg, then its base classes and interfaces, breadth-first, ending with
//     the root object type.
//
// Value types, and positions holding value types, only ever substitute themselves.
// The sequence is lazy and reads the index without locks.
func (x *Index) CompatibleSubstitutions(
	arg *TypeDescriptor,
	v typesys.Variance,
	dir Direction,
) iter.Seq[*TypeDescriptor] {
	return func(yield func(*TypeDescriptor) bool) {
		if arg == nil {
			return
		}
		if !yield(arg) {
			return
		}

		if !substitutable(arg) {
			return
		}

		switch dir.Apply(v) {
		case typesys.Covariant:
			walk(arg, derivedOf, yield)

		case typesys.Contravariant:
			root, _ := x.Lookup(arg.typ.Universe().Object())
			if root == arg {
				return
			}

			stopped := false
			walk(arg, func(d *TypeDescriptor) []*TypeDescriptor {
				return withoutRoot(supertypesOf(d), root)
			}, func(d *TypeDescriptor) bool {
				if !yield(d) {
					stopped = true
					return false
				}
				return true
			})

			if !stopped && root != nil {
				yield(root)
			}
		}
	}
}

// walk visits the types reachable from start through next, breadth-first,
// skipping start itself and anything that cannot be a variant substitute.
func walk(
	start *TypeDescriptor,
	next func(*TypeDescriptor) []*TypeDescriptor,
	yield func(*TypeDescriptor) bool,
) {
	visited := set.From([]*TypeDescriptor{start})
	queue := []*TypeDescriptor{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, d := range next(cur) {
			if !visited.Insert(d) {
				continue
			}
			queue = append(queue, d)

			if !substitutable(d) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// substitutable returns true for reference types that can be used as type arguments.
func substitutable(d *TypeDescriptor) bool {
	return d.kind != OpenGenericKind && d.typ.IsReference()
}

func derivedOf(d *TypeDescriptor) []*TypeDescriptor {
	derived := d.derived.load()
	implementing := d.implementing.load()
	if len(implementing) == 0 {
		return derived
	}
	out := make([]*TypeDescriptor, 0, len(derived)+len(implementing))
	out = append(out, derived...)
	return append(out, implementing...)
}

func supertypesOf(d *TypeDescriptor) []*TypeDescriptor {
	out := make([]*TypeDescriptor, 0, 1+len(d.genericInterfaces)+len(d.plainInterfaces))
	if d.base != nil {
		out = append(out, d.base)
	}
	out = append(out, d.genericInterfaces...)
	return append(out, d.plainInterfaces...)
}

func withoutRoot(types []*TypeDescriptor, root *TypeDescriptor) []*TypeDescriptor {
	if root == nil {
		return types
	}
	out := types[:0]
	for _, d := range types {
		if d != root {
			out = append(out, d)
		}
	}
	return out
}
