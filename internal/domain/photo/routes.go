package photo

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// UploadRoutes returns upload presign routes
func (h *Handler) UploadRoutes(identityMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(identityMiddleware)

	r.Post("/presign", h.Presign)

	return r
}

// ImageRoutes returns the public image proxy routes
func (h *Handler) ImageRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/*", h.GetImage)

	return r
}
