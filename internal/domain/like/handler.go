package like

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/livedrop/livedrop-api/internal/middleware"
	"github.com/livedrop/livedrop-api/internal/pkg/response"
)

// Handler handles like HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates like handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Toggle handles POST /photos/{id}/like
// @Summary Toggle a like on a photo
// @Tags Like
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Success 200 {object} response.Response{data=ToggleResult}
// @Failure 400,404,500 {object} response.Response
// @Router /photos/{id}/like [post]
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	photoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid photo ID")
		return
	}

	userID := middleware.GetGuestID(r.Context())
	result, err := h.service.Toggle(r.Context(), photoID, userID)
	if err != nil {
		if err == ErrPhotoNotFound {
			response.NotFound(w, "Photo not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}
