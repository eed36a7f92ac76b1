package event

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns event routes. Public lookup and join need no
// identity; dashboard operations do.
func (h *Handler) Routes(identityMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{slug}", h.GetBySlug)
	r.Post("/{slug}/join", h.Join)

	r.Group(func(r chi.Router) {
		r.Use(identityMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Patch("/{slug}", h.Update)
		r.Delete("/{slug}", h.Delete)
	})

	return r
}
