package di_test

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sectrean/di-registry"
	"github.com/sectrean/di-registry/internal/testtypes"
	"github.com/sectrean/di-registry/typesys"
)

func collectNames(seq iter.Seq[*di.TypeDescriptor]) []string {
	var names []string
	for d := range seq {
		names = append(names, d.String())
	}
	return names
}

func Test_Direction(t *testing.T) {
	assert.Equal(t, typesys.Covariant, di.Forward.Apply(typesys.Covariant))
	assert.Equal(t, typesys.Contravariant, di.Inverted.Apply(typesys.Covariant))
	assert.Equal(t, typesys.Covariant, di.Inverted.Apply(typesys.Contravariant))
	assert.Equal(t, typesys.Invariant, di.Inverted.Apply(typesys.Invariant))

	assert.Equal(t, di.Inverted, di.Forward.Through(typesys.Contravariant))
	assert.Equal(t, di.Forward, di.Inverted.Through(typesys.Contravariant))
	assert.Equal(t, di.Inverted, di.Inverted.Through(typesys.Covariant))
	assert.Equal(t, di.Forward, di.Forward.Through(typesys.Invariant))
}

func Test_ParameterVariance(t *testing.T) {
	f := testtypes.NewFixture()
	x := di.NewIndex()

	converter := x.For(f.Converter)
	array := x.For(f.U.ArrayDefinition())

	tests := []struct {
		name     string
		def      *di.TypeDescriptor
		position int
		want     typesys.Variance
	}{
		{name: "contravariant input", def: converter, position: 0, want: typesys.Contravariant},
		{name: "covariant output", def: converter, position: 1, want: typesys.Covariant},
		{name: "out of range", def: converter, position: 2, want: typesys.Invariant},
		{name: "invariant", def: x.For(f.IGeneric), position: 0, want: typesys.Invariant},
		{name: "array element", def: array, position: 0, want: typesys.Covariant},
		{name: "closed generic", def: x.For(f.Converter.MustClose(f.Base, f.Base)), position: 0, want: typesys.Invariant},
		{name: "nil", def: nil, position: 0, want: typesys.Invariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, di.ParameterVariance(tt.def, tt.position))
		})
	}
}

func Test_Index_CompatibleSubstitutions(t *testing.T) {
	f := testtypes.NewFixture()
	x := di.NewIndex()
	x.For(f.Grandchild)
	x.For(f.Service)

	tests := []struct {
		name string
		arg  *typesys.Type
		v    typesys.Variance
		dir  di.Direction
		want []string
	}{
		{
			name: "invariant",
			arg:  f.Base,
			v:    typesys.Invariant,
			dir:  di.Forward,
			want: []string{"Base"},
		},
		{
			name: "covariant class",
			arg:  f.Base,
			v:    typesys.Covariant,
			dir:  di.Forward,
			want: []string{"Base", "Child", "Grandchild"},
		},
		{
			name: "contravariant class",
			arg:  f.Grandchild,
			v:    typesys.Contravariant,
			dir:  di.Forward,
			want: []string{"Grandchild", "Child", "Base", "object"},
		},
		{
			name: "inverted covariant",
			arg:  f.Grandchild,
			v:    typesys.Covariant,
			dir:  di.Inverted,
			want: []string{"Grandchild", "Child", "Base", "object"},
		},
		{
			name: "inverted contravariant",
			arg:  f.Child,
			v:    typesys.Contravariant,
			dir:  di.Inverted,
			want: []string{"Child", "Grandchild"},
		},
		{
			name: "covariant interface",
			arg:  f.IService,
			v:    typesys.Covariant,
			dir:  di.Forward,
			want: []string{"IService", "Service"},
		},
		{
			name: "contravariant implementation",
			arg:  f.Service,
			v:    typesys.Contravariant,
			dir:  di.Forward,
			want: []string{"Service", "IService", "object"},
		},
		{
			name: "contravariant root",
			arg:  f.Object,
			v:    typesys.Contravariant,
			dir:  di.Forward,
			want: []string{"object"},
		},
		{
			name: "value type",
			arg:  f.Int,
			v:    typesys.Covariant,
			dir:  di.Forward,
			want: []string{"int"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectNames(x.CompatibleSubstitutions(x.For(tt.arg), tt.v, tt.dir))
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("stops early", func(t *testing.T) {
		var got []string
		for d := range x.CompatibleSubstitutions(x.For(f.Grandchild), typesys.Contravariant, di.Forward) {
			got = append(got, d.String())
			if len(got) == 2 {
				break
			}
		}
		assert.Equal(t, []string{"Grandchild", "Child"}, got)
	})

	t.Run("nil", func(t *testing.T) {
		assert.Empty(t, collectNames(x.CompatibleSubstitutions(nil, typesys.Covariant, di.Forward)))
	})
}
