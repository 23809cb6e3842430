package dihttp

import (
	"log/slog"
	"net/http"

	"github.com/sectrean/di-registry"
	"github.com/sectrean/di-registry/dicontext"
	"github.com/sectrean/di-registry/internal/errors"
)

// NewRequestStoreMiddleware creates a new child [di.Store] for each request.
//
// The child store is stored on the request context and can be accessed using
// [dicontext.Lookup], [dicontext.Fetch], or [dicontext.MustFetch].
//
// Available options:
//   - [WithStoreOptions] sets [di.StoreOption]s to use when creating each request store.
//   - [WithRequestOptions] builds additional [di.StoreOption]s from the request.
//   - [WithNewStoreErrorHandler] sets the error handler for when there is an error creating a new store.
func NewRequestStoreMiddleware(
	parent *di.Store,
	opts ...StoreMiddlewareOption,
) (func(http.Handler) http.Handler, error) {
	if parent == nil {
		return nil, errors.New("dihttp.NewRequestStoreMiddleware: parent is nil")
	}

	mw := &storeMiddleware{
		parent:          parent,
		newStoreHandler: defaultNewStoreErrorHandler,
	}

	var errs errors.MultiError
	for _, opt := range opts {
		errs = errs.Append(opt.applyStoreMiddleware(mw))
	}
	if err := errs.Wrap("dihttp.NewRequestStoreMiddleware"); err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return &storeHandler{
			storeMiddleware: mw,
			next:            next,
		}
	}, nil
}

// NewStoreErrorHandler is a function that writes an error response to the client.
// This is called by the store middleware when there is an error creating the [di.Store].
//
// The default handler logs the error to [slog.Default()] and writes a 500 Internal Server Error response.
type NewStoreErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

func defaultNewStoreErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error creating new HTTP request store", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type storeMiddleware struct {
	parent          *di.Store
	opts            []di.StoreOption
	requestOpts     []func(*http.Request) []di.StoreOption
	newStoreHandler NewStoreErrorHandler
}

type storeHandler struct {
	*storeMiddleware
	next http.Handler
}

func (h *storeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	opts := make([]di.StoreOption, 0, len(h.opts))
	opts = append(opts, h.opts...)
	for _, fn := range h.requestOpts {
		opts = append(opts, fn(r)...)
	}

	store, err := h.parent.NewChild(opts...)
	if err != nil {
		h.newStoreHandler(w, r, err)
		return
	}

	ctx := dicontext.WithLookup(r.Context(), store)
	h.next.ServeHTTP(w, r.WithContext(ctx))
}
