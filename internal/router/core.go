// Package router collects the HTTP handlers of the local API. Each feature
// package provides its handlers through AsRoute and NewMux mounts them.
package router

import (
	"net/http"

	"go.uber.org/fx"

	"github.com/go-chi/chi/v5"
)

type Handler interface {
	RegisterRoute(r *chi.Mux)
	Handle(w http.ResponseWriter, r *http.Request)
}

// AsRoute tags a handler constructor into the "handlers" value group.
func AsRoute(constructor any) any {
	return fx.Annotate(
		constructor,
		fx.As(new(Handler)),
		fx.ResultTags(`group:"handlers"`),
	)
}

// Mount registers every handler on r and returns the method+pattern pairs
// now served, which NewMux logs at start-up.
func Mount(r *chi.Mux, handlers []Handler) []string {
	for _, h := range handlers {
		h.RegisterRoute(r)
	}

	var routes []string
	_ = chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	return routes
}
