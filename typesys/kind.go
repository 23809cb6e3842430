package typesys

import "fmt"

// Kind is the category of a declared [Type].
type Kind uint8

const (
	// ClassKind is a reference type with single inheritance.
	ClassKind Kind = iota + 1

	// InterfaceKind is a reference type that other types implement.
	InterfaceKind

	// StructKind is a value type. Value types never take part in variance.
	StructKind

	// DelegateKind is a function-like reference type. Its type parameters may be variant.
	DelegateKind

	// ArrayKind is an array of an element type, or the array definition itself.
	ArrayKind

	// ParamKind is a type parameter placeholder of a generic definition.
	ParamKind
)

func (k Kind) String() string {
	switch k {
	case ClassKind:
		return "class"
	case InterfaceKind:
		return "interface"
	case StructKind:
		return "struct"
	case DelegateKind:
		return "delegate"
	case ArrayKind:
		return "array"
	case ParamKind:
		return "param"
	default:
		return fmt.Sprintf("Unknown Kind %d", k)
	}
}

// IsReference returns true for kinds whose values are references.
func (k Kind) IsReference() bool {
	switch k {
	case ClassKind, InterfaceKind, DelegateKind, ArrayKind:
		return true
	default:
		return false
	}
}

// Variance is the declared variance of a generic type parameter.
//
// Available variances:
//   - [Invariant] only the exact type argument matches.
//   - [Covariant] a more derived type argument matches (out).
//   - [Contravariant] a more general type argument matches (in).
type Variance uint8

const (
	// Invariant parameters only accept the exact type argument.
	Invariant Variance = iota

	// Covariant parameters accept more derived type arguments.
	Covariant

	// Contravariant parameters accept more general type arguments.
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Invariant:
		return "Invariant"
	case Covariant:
		return "Covariant"
	case Contravariant:
		return "Contravariant"
	default:
		return fmt.Sprintf("Unknown Variance %d", v)
	}
}

// Invert swaps covariance and contravariance.
func (v Variance) Invert() Variance {
	switch v {
	case Covariant:
		return Contravariant
	case Contravariant:
		return Covariant
	default:
		return v
	}
}

// Compose returns the effective variance of a parameter declared with inner variance
// when the generic type holding it appears in a position with variance v.
//
// Invariance absorbs everything, a contravariant outer position inverts the inner variance.
func (v Variance) Compose(inner Variance) Variance {
	switch v {
	case Covariant:
		return inner
	case Contravariant:
		return inner.Invert()
	default:
		return Invariant
	}
}

// TypeParam declares a type parameter of a generic definition.
type TypeParam struct {
	Name     string
	Variance Variance
}

// In declares a contravariant type parameter.
func In(name string) TypeParam {
	return TypeParam{Name: name, Variance: Contravariant}
}

// Out declares a covariant type parameter.
func Out(name string) TypeParam {
	return TypeParam{Name: name, Variance: Covariant}
}

// Inv declares an invariant type parameter.
func Inv(name string) TypeParam {
	return TypeParam{Name: name, Variance: Invariant}
}

func (p TypeParam) String() string {
	switch p.Variance {
	case Covariant:
		return "out " + p.Name
	case Contravariant:
		return "in " + p.Name
	default:
		return p.Name
	}
}
