package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/livedrop/livedrop-api/internal/pkg/response"
)

// Handler handles stats HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates stats handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ForEvent handles GET /events/{slug}/stats
// @Summary Event dashboard statistics
// @Tags Stats
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} response.Response{data=EventStats}
// @Failure 404,500 {object} response.Response
// @Router /events/{slug}/stats [get]
func (h *Handler) ForEvent(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.ForEvent(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if err == ErrEventNotFound {
			response.NotFound(w, "Event not found")
		} else {
			response.InternalError(w)
		}
		return
	}
	response.OK(w, stats)
}
