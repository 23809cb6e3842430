package di_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sectrean/di-registry"
	"github.com/sectrean/di-registry/internal/mocks"
	"github.com/sectrean/di-registry/internal/testtypes"
)

func Test_FetchAs(t *testing.T) {
	f := testtypes.NewFixture()
	p := di.MustNewProducer(f.Service)
	s := newStore(t, di.WithRegistration(p, f.IService))

	t.Run("found", func(t *testing.T) {
		got, ok := di.FetchAs[*di.TypeProducer](s, f.IService)
		assert.True(t, ok)
		assert.Same(t, p, got)
	})

	t.Run("other producer type", func(t *testing.T) {
		got, ok := di.FetchAs[*mocks.ProducerMock](s, f.IService)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("not found", func(t *testing.T) {
		got, ok := di.FetchAs[*di.TypeProducer](s, f.Base)
		assert.False(t, ok)
		assert.Nil(t, got)
	})
}

func Test_MustFetch(t *testing.T) {
	f := testtypes.NewFixture()
	p := di.MustNewProducer(f.Service)
	s := newStore(t, di.WithRegistration(p, f.IService))

	t.Run("found", func(t *testing.T) {
		assert.NotPanics(t, func() {
			got := di.MustFetch(s, f.IService)
			assert.Same(t, p, got)
		})
	})

	t.Run("not found", func(t *testing.T) {
		assert.PanicsWithError(t, "di.MustFetch Base: no producer found", func() {
			di.MustFetch(s, f.Base)
		})
	})
}
