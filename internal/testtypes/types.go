package testtypes

import (
	"github.com/sectrean/di-registry/typesys"
)

// Fixture is a small type hierarchy used across tests.
//
//	class Base; class Child : Base; class Grandchild : Child; class Other
//	interface IService; class Service : IService
//	interface IGeneric[T]; class Generic[T] : IGeneric[T]; class AltGeneric[T] : IGeneric[T]
//	interface IContravariant[in T]; interface ICovariant[out T]
//	interface IEnumerable[out T]; class List[T] : IEnumerable[T]
//	delegate Func[out TResult]; delegate Converter[in TInput, out TOutput]
//	interface IComparable[in T]; class Version : IComparable[Version]
type Fixture struct {
	U *typesys.Universe

	Object *typesys.Type
	String *typesys.Type
	Int    *typesys.Type

	Base       *typesys.Type
	Child      *typesys.Type
	Grandchild *typesys.Type
	Other      *typesys.Type

	IService *typesys.Type
	Service  *typesys.Type

	IGeneric   *typesys.Type
	Generic    *typesys.Type
	AltGeneric *typesys.Type

	IContravariant *typesys.Type
	ICovariant     *typesys.Type
	IEnumerable    *typesys.Type
	List           *typesys.Type

	Func      *typesys.Type
	Converter *typesys.Type

	IComparable *typesys.Type
	Version     *typesys.Type
}

// NewFixture declares the fixture types in a new Universe.
func NewFixture() *Fixture {
	u := typesys.NewUniverse()
	f := &Fixture{
		U:      u,
		Object: u.Object(),
		String: u.String(),
		Int:    u.Int(),
	}

	f.Base = u.MustDefine("Base", typesys.ClassKind)
	f.Child = u.MustDefine("Child", typesys.ClassKind, typesys.Extends(f.Base))
	f.Grandchild = u.MustDefine("Grandchild", typesys.ClassKind, typesys.Extends(f.Child))
	f.Other = u.MustDefine("Other", typesys.ClassKind)

	f.IService = u.MustDefine("IService", typesys.InterfaceKind)
	f.Service = u.MustDefine("Service", typesys.ClassKind, typesys.Implements(f.IService))

	f.IGeneric = u.MustDefine("IGeneric", typesys.InterfaceKind,
		typesys.TypeParams(typesys.Inv("T")),
	)
	f.Generic = u.MustDefine("Generic", typesys.ClassKind,
		typesys.TypeParams(typesys.Inv("T")),
		typesys.Supertypes(implementsClosed(f.IGeneric)),
	)
	f.AltGeneric = u.MustDefine("AltGeneric", typesys.ClassKind,
		typesys.TypeParams(typesys.Inv("T")),
		typesys.Supertypes(implementsClosed(f.IGeneric)),
	)

	f.IContravariant = u.MustDefine("IContravariant", typesys.InterfaceKind,
		typesys.TypeParams(typesys.In("T")),
	)
	f.ICovariant = u.MustDefine("ICovariant", typesys.InterfaceKind,
		typesys.TypeParams(typesys.Out("T")),
	)
	f.IEnumerable = u.MustDefine("IEnumerable", typesys.InterfaceKind,
		typesys.TypeParams(typesys.Out("T")),
	)
	f.List = u.MustDefine("List", typesys.ClassKind,
		typesys.TypeParams(typesys.Inv("T")),
		typesys.Supertypes(implementsClosed(f.IEnumerable)),
	)

	f.Func = u.MustDefine("Func", typesys.DelegateKind,
		typesys.TypeParams(typesys.Out("TResult")),
	)
	f.Converter = u.MustDefine("Converter", typesys.DelegateKind,
		typesys.TypeParams(typesys.In("TInput"), typesys.Out("TOutput")),
	)

	f.IComparable = u.MustDefine("IComparable", typesys.InterfaceKind,
		typesys.TypeParams(typesys.In("T")),
	)
	f.Version = u.MustDefine("Version", typesys.ClassKind,
		typesys.Supertypes(func(self *typesys.Type, _ []*typesys.Type) typesys.Declaration {
			return typesys.Declaration{
				Interfaces: []*typesys.Type{f.IComparable.MustClose(self)},
			}
		}),
	)

	return f
}

// implementsClosed returns a SupertypesFunc for a generic type that implements iface
// closed over the same type arguments.
func implementsClosed(iface *typesys.Type) typesys.SupertypesFunc {
	return func(_ *typesys.Type, args []*typesys.Type) typesys.Declaration {
		return typesys.Declaration{
			Interfaces: []*typesys.Type{iface.MustClose(args...)},
		}
	}
}
