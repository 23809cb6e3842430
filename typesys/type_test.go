package typesys_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/di-registry/internal/testtypes"
	"github.com/sectrean/di-registry/internal/testutils"
	"github.com/sectrean/di-registry/typesys"
)

func Test_Universe_Define(t *testing.T) {
	t.Run("class extends object", func(t *testing.T) {
		f := testtypes.NewFixture()

		assert.Same(t, f.Object, f.Base.Base())
		assert.Same(t, f.Base, f.Child.Base())
		assert.Nil(t, f.Object.Base())
		assert.Nil(t, f.IService.Base())
		assert.Nil(t, f.Int.Base())
	})

	t.Run("lookup", func(t *testing.T) {
		f := testtypes.NewFixture()

		got, ok := f.U.Lookup("Child")
		assert.True(t, ok)
		assert.Same(t, f.Child, got)

		_, ok = f.U.Lookup("Missing")
		assert.False(t, ok)
	})

	tests := []struct {
		name    string
		define  func(f *testtypes.Fixture) (*typesys.Type, error)
		wantErr string
	}{
		{
			name: "empty name",
			define: func(f *testtypes.Fixture) (*typesys.Type, error) {
				return f.U.Define("", typesys.ClassKind)
			},
			wantErr: `typesys.Define "": invalid name`,
		},
		{
			name: "invalid kind",
			define: func(f *testtypes.Fixture) (*typesys.Type, error) {
				return f.U.Define("Foo", typesys.ArrayKind)
			},
			wantErr: "typesys.Define Foo: invalid kind array",
		},
		{
			name: "already defined",
			define: func(f *testtypes.Fixture) (*typesys.Type, error) {
				return f.U.Define("string", typesys.ClassKind)
			},
			wantErr: "typesys.Define string: type already defined",
		},
		{
			name: "variant class parameter",
			define: func(f *testtypes.Fixture) (*typesys.Type, error) {
				return f.U.Define("Box", typesys.ClassKind, typesys.TypeParams(typesys.Out("T")))
			},
			wantErr: "typesys.Define Box: type params: out T: variant type parameters are only allowed on interfaces and delegates",
		},
		{
			name: "duplicate type parameter",
			define: func(f *testtypes.Fixture) (*typesys.Type, error) {
				return f.U.Define("Pair", typesys.ClassKind, typesys.TypeParams(typesys.Inv("T"), typesys.Inv("T")))
			},
			wantErr: `typesys.Define Pair: type params: duplicate name "T"`,
		},
		{
			name: "interface extends class",
			define: func(f *testtypes.Fixture) (*typesys.Type, error) {
				return f.U.Define("IFoo", typesys.InterfaceKind, typesys.Extends(f.Base))
			},
			wantErr: "typesys.Define IFoo: extends Base: interface types cannot extend a class",
		},
		{
			name: "implements class",
			define: func(f *testtypes.Fixture) (*typesys.Type, error) {
				return f.U.Define("Foo", typesys.ClassKind, typesys.Implements(f.Base))
			},
			wantErr: "typesys.Define Foo: implements Base: not an interface",
		},
		{
			name: "implements open definition",
			define: func(f *testtypes.Fixture) (*typesys.Type, error) {
				return f.U.Define("Foo", typesys.ClassKind, typesys.Implements(f.IGeneric))
			},
			wantErr: "typesys.Define Foo: implements IGeneric[]: not an interface",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testtypes.NewFixture()

			got, err := tt.define(f)
			testutils.LogError(t, err)

			assert.Nil(t, got)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func Test_Type_Close(t *testing.T) {
	t.Run("interned", func(t *testing.T) {
		f := testtypes.NewFixture()

		a := f.IGeneric.MustClose(f.Int)
		b, err := f.IGeneric.Close(f.Int)
		require.NoError(t, err)

		assert.Same(t, a, b)
		assert.Same(t, f.IGeneric, a.Definition())
		assert.Equal(t, []*typesys.Type{f.Int}, a.Args())
		assert.True(t, a.IsClosedGeneric())
		assert.False(t, a.IsGenericDefinition())
		assert.Equal(t, typesys.InterfaceKind, a.Kind())
	})

	t.Run("arrays", func(t *testing.T) {
		f := testtypes.NewFixture()

		arr := f.U.MustArrayOf(f.Base)
		assert.Same(t, arr, f.U.ArrayDefinition().MustClose(f.Base))
		assert.True(t, arr.IsArray())
		assert.False(t, arr.IsClosedGeneric())
		assert.Same(t, f.Base, arr.Elem())
		assert.Same(t, f.Object, arr.Base())
		assert.Equal(t, typesys.Covariant, f.U.ArrayDefinition().Param(0).Variance)
	})

	t.Run("supertypes from type arguments", func(t *testing.T) {
		f := testtypes.NewFixture()

		g := f.Generic.MustClose(f.Int)
		assert.Equal(t, []*typesys.Type{f.IGeneric.MustClose(f.Int)}, g.Interfaces())
		assert.Same(t, f.Object, g.Base())
	})

	t.Run("self referential supertypes", func(t *testing.T) {
		f := testtypes.NewFixture()

		ifaces := f.Version.Interfaces()
		require.Len(t, ifaces, 1)
		assert.Same(t, f.Version, ifaces[0].Arg(0))
	})

	tests := []struct {
		name    string
		close   func(f *testtypes.Fixture) (*typesys.Type, error)
		wantErr string
	}{
		{
			name:    "not a definition",
			close:   func(f *testtypes.Fixture) (*typesys.Type, error) { return f.Base.Close(f.Int) },
			wantErr: "close Base: not a generic definition",
		},
		{
			name:    "wrong argument count",
			close:   func(f *testtypes.Fixture) (*typesys.Type, error) { return f.IGeneric.Close(f.Int, f.Int) },
			wantErr: "close IGeneric[]: expected 1 type arguments, got 2",
		},
		{
			name:    "nil argument",
			close:   func(f *testtypes.Fixture) (*typesys.Type, error) { return f.IGeneric.Close(nil) },
			wantErr: "close IGeneric[]: type argument 0 is nil",
		},
		{
			name:    "definition argument",
			close:   func(f *testtypes.Fixture) (*typesys.Type, error) { return f.IGeneric.Close(f.List) },
			wantErr: "close IGeneric[]: type argument List[] is a generic definition",
		},
		{
			name: "different universe",
			close: func(f *testtypes.Fixture) (*typesys.Type, error) {
				return f.IGeneric.Close(typesys.NewUniverse().Int())
			},
			wantErr: "close IGeneric[]: type argument int belongs to a different universe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testtypes.NewFixture()

			got, err := tt.close(f)
			testutils.LogError(t, err)

			assert.Nil(t, got)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func Test_Type_Name(t *testing.T) {
	f := testtypes.NewFixture()

	tests := []struct {
		name string
		typ  *typesys.Type
		want string
	}{
		{name: "plain", typ: f.Base, want: "Base"},
		{name: "definition", typ: f.IGeneric, want: "IGeneric[]"},
		{name: "two parameter definition", typ: f.Converter, want: "Converter[,]"},
		{name: "closed", typ: f.Converter.MustClose(f.String, f.Int), want: "Converter[string,int]"},
		{name: "array", typ: f.U.MustArrayOf(f.Base), want: "[]Base"},
		{name: "nested", typ: f.IGeneric.MustClose(f.U.MustArrayOf(f.Base)), want: "IGeneric[[]Base]"},
		{name: "array definition", typ: f.U.ArrayDefinition(), want: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Name())
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func Test_AllSupertypes(t *testing.T) {
	f := testtypes.NewFixture()

	assert.Equal(t, []*typesys.Type{f.Child, f.Base, f.Object}, typesys.AllSupertypes(f.Grandchild))
	assert.Equal(t,
		[]*typesys.Type{f.Object, f.IEnumerable.MustClose(f.Child)},
		typesys.AllSupertypes(f.List.MustClose(f.Child)),
	)
	assert.Empty(t, typesys.AllSupertypes(f.Object))
	assert.Nil(t, typesys.AllSupertypes(nil))
}

func Test_AssignableTo(t *testing.T) {
	f := testtypes.NewFixture()
	arr := f.U.MustArrayOf

	tests := []struct {
		name string
		src  *typesys.Type
		dst  *typesys.Type
		want bool
	}{
		{name: "same type", src: f.Base, dst: f.Base, want: true},
		{name: "derived to base", src: f.Grandchild, dst: f.Base, want: true},
		{name: "base to derived", src: f.Base, dst: f.Child, want: false},
		{name: "class to interface", src: f.Service, dst: f.IService, want: true},
		{name: "anything to object", src: f.IService, dst: f.Object, want: true},
		{name: "value type to object", src: f.Int, dst: f.Object, want: true},
		{name: "unrelated", src: f.Other, dst: f.Base, want: false},
		{name: "nil", src: nil, dst: f.Base, want: false},

		{name: "contravariant", src: f.IContravariant.MustClose(f.Base), dst: f.IContravariant.MustClose(f.Grandchild), want: true},
		{name: "contravariant reversed", src: f.IContravariant.MustClose(f.Grandchild), dst: f.IContravariant.MustClose(f.Base), want: false},
		{name: "covariant", src: f.ICovariant.MustClose(f.Child), dst: f.ICovariant.MustClose(f.Base), want: true},
		{name: "covariant reversed", src: f.ICovariant.MustClose(f.Base), dst: f.ICovariant.MustClose(f.Child), want: false},
		{name: "invariant", src: f.IGeneric.MustClose(f.Child), dst: f.IGeneric.MustClose(f.Base), want: false},
		{name: "delegate return", src: f.Func.MustClose(f.String), dst: f.Func.MustClose(f.Object), want: true},
		{name: "value type argument", src: f.Func.MustClose(f.Int), dst: f.Func.MustClose(f.Object), want: false},
		{name: "mixed variance", src: f.Converter.MustClose(f.Base, f.Child), dst: f.Converter.MustClose(f.Child, f.Base), want: true},
		{name: "mixed variance wrong way", src: f.Converter.MustClose(f.Child, f.Child), dst: f.Converter.MustClose(f.Base, f.Base), want: false},
		{name: "implemented variant interface", src: f.List.MustClose(f.Child), dst: f.IEnumerable.MustClose(f.Base), want: true},
		{name: "self referential", src: f.Version, dst: f.IComparable.MustClose(f.Version), want: true},

		{name: "array covariance", src: arr(f.Child), dst: arr(f.Base), want: true},
		{name: "value type array", src: arr(f.Int), dst: arr(f.Object), want: false},
		{name: "array to object", src: arr(f.Base), dst: f.Object, want: true},

		{name: "open definitions", src: f.Generic, dst: f.IGeneric, want: true},
		{name: "unrelated open definitions", src: f.List, dst: f.IGeneric, want: false},
		{name: "open definition to closed", src: f.Generic, dst: f.IGeneric.MustClose(f.Int), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := typesys.AssignableTo(tt.src, tt.dst)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Universe_Parse(t *testing.T) {
	f := testtypes.NewFixture()

	tests := []struct {
		name  string
		input string
		want  *typesys.Type
	}{
		{name: "plain", input: "Base", want: f.Base},
		{name: "closed", input: "IGeneric[int]", want: f.IGeneric.MustClose(f.Int)},
		{name: "spaces", input: " Converter[ Base , string ] ", want: f.Converter.MustClose(f.Base, f.String)},
		{name: "definition by name", input: "IGeneric", want: f.IGeneric},
		{name: "definition with brackets", input: "Converter[,]", want: f.Converter},
		{name: "array", input: "[]Base", want: f.U.MustArrayOf(f.Base)},
		{name: "array definition", input: "[]", want: f.U.ArrayDefinition()},
		{name: "nested", input: "IEnumerable[[]Func[Child]]", want: f.IEnumerable.MustClose(f.U.MustArrayOf(f.Func.MustClose(f.Child)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.U.Parse(tt.input)
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}

	t.Run("with env", func(t *testing.T) {
		params := f.List.ParamTypes()
		got, err := f.U.ParseWith("IEnumerable[T]", map[string]*typesys.Type{"T": params[0]})
		require.NoError(t, err)
		assert.Same(t, f.IEnumerable.MustClose(params[0]), got)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := f.U.Parse("IGeneric[Missing]")
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, typesys.ErrUnknownType)
		assert.EqualError(t, err, `parse "IGeneric[Missing]": Missing: unknown type`)
	})

	errTests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "not generic", input: "Base[int]", wantErr: `parse "Base[int]": Base is not a generic definition`},
		{name: "unterminated", input: "IGeneric[int", wantErr: `parse "IGeneric[int": unexpected end of input`},
		{name: "trailing input", input: "IGeneric[int] x", wantErr: `parse "IGeneric[int] x": unexpected "x" at offset 14`},
		{name: "wrong parameter count", input: "IGeneric[,]", wantErr: `parse "IGeneric[,]": IGeneric[]: expected 1 type parameters`},
		{name: "empty", input: "", wantErr: `parse "": expected type name at offset 0`},
	}

	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.U.Parse(tt.input)
			testutils.LogError(t, err)

			assert.Nil(t, got)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func Test_Universe_Resolve(t *testing.T) {
	t.Run("existing types", func(t *testing.T) {
		f := testtypes.NewFixture()
		closed := f.IGeneric.MustClose(f.Int)
		arr := f.U.MustArrayOf(f.Base)

		tests := []struct {
			input string
			want  *typesys.Type
		}{
			{input: "Base", want: f.Base},
			{input: "IGeneric[int]", want: closed},
			{input: "[]Base", want: arr},
			{input: "Converter[,]", want: f.Converter},
			{input: "[]", want: f.U.ArrayDefinition()},
		}

		for _, tt := range tests {
			got, err := f.U.Resolve(tt.input)
			require.NoError(t, err, tt.input)
			assert.Same(t, tt.want, got, tt.input)
		}
	})

	t.Run("does not create types", func(t *testing.T) {
		f := testtypes.NewFixture()

		for _, input := range []string{"IGeneric[string]", "[]Child", "IEnumerable[[]Base]"} {
			got, err := f.U.Resolve(input)
			testutils.LogError(t, err)

			assert.Nil(t, got, input)
			assert.ErrorIs(t, err, typesys.ErrUnknownType, input)
		}

		// Resolving again still fails because nothing was interned
		_, err := f.U.Resolve("IGeneric[string]")
		assert.EqualError(t, err, `parse "IGeneric[string]": IGeneric[string]: unknown type`)

		got, err := f.U.Parse("IGeneric[string]")
		require.NoError(t, err)

		resolved, err := f.U.Resolve("IGeneric[string]")
		require.NoError(t, err)
		assert.Same(t, got, resolved)
	})

	t.Run("syntax errors", func(t *testing.T) {
		f := testtypes.NewFixture()

		_, err := f.U.Resolve("IGeneric[int")
		assert.EqualError(t, err, `parse "IGeneric[int": unexpected end of input`)
	})
}

func Test_Variance_Compose(t *testing.T) {
	tests := []struct {
		outer typesys.Variance
		inner typesys.Variance
		want  typesys.Variance
	}{
		{outer: typesys.Covariant, inner: typesys.Covariant, want: typesys.Covariant},
		{outer: typesys.Covariant, inner: typesys.Contravariant, want: typesys.Contravariant},
		{outer: typesys.Contravariant, inner: typesys.Covariant, want: typesys.Contravariant},
		{outer: typesys.Contravariant, inner: typesys.Contravariant, want: typesys.Covariant},
		{outer: typesys.Invariant, inner: typesys.Covariant, want: typesys.Invariant},
		{outer: typesys.Covariant, inner: typesys.Invariant, want: typesys.Invariant},
	}

	for _, tt := range tests {
		t.Run(tt.outer.String()+" of "+tt.inner.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outer.Compose(tt.inner))
		})
	}
}
