/*
Package dihttp provides HTTP middleware that creates a [di.Container] scope
for each request.

Example:

	package main

	import (
		"net/http"

		"github.com/go-chi/chi/v5"
		di "github.com/graftlabs/graft"
		"github.com/graftlabs/graft/dicontext"
		"github.com/graftlabs/graft/dihttp"
	)

	func main() {
		c, err := di.NewContainer(
			di.WithBinding(NewStore),
			di.WithBinding(NewRequestHandler, di.Scoped),
		)
		if err != nil {
			panic(err)
		}

		r := chi.NewRouter()
		r.Use(dihttp.RequestScopeMiddleware(c))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			h := dicontext.MustResolve[*RequestHandler](r.Context())
			h.Handle(w, r)
		})

		http.ListenAndServe(":8080", r)
	}
*/
package dihttp
