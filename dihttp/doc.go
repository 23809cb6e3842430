/*
Package dihttp provides HTTP middleware that creates a child [di.Store] for each request,
and a diagnostics handler that reports how a store resolves types.

Example:

	package main

	import (
		"net/http"

		"github.com/sectrean/di-registry"
		"github.com/sectrean/di-registry/dicontext"
		"github.com/sectrean/di-registry/dihttp"
	)

	func main() {
		store, err := di.NewStore(index,
			di.WithRegistration(auditHandler, handlerOfEvent),
		)

		// Create a new store middleware
		storeMiddleware, err := dihttp.NewRequestStoreMiddleware(store,
			dihttp.WithRequestOptions(func(r *http.Request) []di.StoreOption {
				return []di.StoreOption{di.WithRegistration(userFor(r), userType)}
			}),
		)

		// Create a handler function
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := dicontext.MustFetch(r.Context(), handlerOfOrderCreated)

			serve(p, w, r)
		})

		diagnostics, err := dihttp.NewDiagnosticsHandler(store, universe)

		mux := http.NewServeMux()
		mux.Handle("/", storeMiddleware(handler))
		mux.Handle("/debug/di/", http.StripPrefix("/debug/di", diagnostics))
		http.ListenAndServe(":8080", mux)
	}
*/
package dihttp
