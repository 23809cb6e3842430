package dihttp

import (
	"net/http"

	"github.com/sectrean/di-registry"
	"github.com/sectrean/di-registry/internal/errors"
)

// StoreMiddlewareOption is an option used to configure the store middleware when calling
// [NewRequestStoreMiddleware].
type StoreMiddlewareOption interface {
	applyStoreMiddleware(*storeMiddleware) error
}

type storeMiddlewareOption func(*storeMiddleware) error

func (o storeMiddlewareOption) applyStoreMiddleware(m *storeMiddleware) error {
	return o(m)
}

// WithStoreOptions sets the options to use when calling [di.Store.NewChild] for each request.
func WithStoreOptions(opts ...di.StoreOption) StoreMiddlewareOption {
	return storeMiddlewareOption(func(m *storeMiddleware) error {
		m.opts = append(m.opts, opts...)
		return nil
	})
}

// WithRequestOptions adds options built from each request when calling [di.Store.NewChild].
//
// Example:
//
//	dihttp.WithRequestOptions(func(r *http.Request) []di.StoreOption {
//		tenant := tenants[r.Header.Get("X-Tenant")]
//		return []di.StoreOption{di.WithRegistration(tenant, tenantType)}
//	})
func WithRequestOptions(fn func(*http.Request) []di.StoreOption) StoreMiddlewareOption {
	return storeMiddlewareOption(func(m *storeMiddleware) error {
		if fn == nil {
			return errors.New("WithRequestOptions: fn is nil")
		}

		m.requestOpts = append(m.requestOpts, fn)
		return nil
	})
}

// WithNewStoreErrorHandler sets the error handler for when there is an error creating a new store.
func WithNewStoreErrorHandler(h NewStoreErrorHandler) StoreMiddlewareOption {
	return storeMiddlewareOption(func(m *storeMiddleware) error {
		if h == nil {
			return errors.New("WithNewStoreErrorHandler: h is nil")
		}

		m.newStoreHandler = h
		return nil
	})
}
