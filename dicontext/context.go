package dicontext

import (
	"context"

	"github.com/sectrean/di-registry"
	"github.com/sectrean/di-registry/internal/errors"
	"github.com/sectrean/di-registry/typesys"
)

type lookupContextKey struct{}

// WithLookup returns a new [context.Context] that carries the provided [di.Lookup].
func WithLookup(ctx context.Context, l di.Lookup) context.Context {
	return context.WithValue(ctx, lookupContextKey{}, l)
}

// Lookup returns the [di.Lookup] stored on the [context.Context], if present.
func Lookup(ctx context.Context) di.Lookup {
	if l, ok := ctx.Value(lookupContextKey{}).(di.Lookup); ok {
		return l
	}
	return nil
}

// Fetch the producer for t from the [di.Lookup] stored on the [context.Context].
//
// The error wraps [di.ErrNotFound] if nothing matches.
func Fetch(ctx context.Context, t *typesys.Type) (di.Producer, error) {
	l := Lookup(ctx)
	if l == nil {
		return nil, errors.Errorf("fetch %s from context: lookup not found on context", t)
	}

	p, ok := l.Fetch(t)
	if !ok {
		return nil, errors.Wrapf(di.ErrNotFound, "fetch %s from context", t)
	}

	return p, nil
}

// MustFetch fetches the producer for t from the [di.Lookup] stored on the
// [context.Context]. It panics if there is no lookup or nothing matches.
func MustFetch(ctx context.Context, t *typesys.Type) di.Producer {
	p, err := Fetch(ctx, t)
	if err != nil {
		panic(err)
	}
	return p
}

// FetchAll fetches every producer for t from the [di.Lookup] stored on the
// [context.Context].
func FetchAll(ctx context.Context, t *typesys.Type) ([]di.Producer, error) {
	l := Lookup(ctx)
	if l == nil {
		return nil, errors.Errorf("fetch all %s from context: lookup not found on context", t)
	}

	return l.FetchAll(t), nil
}
