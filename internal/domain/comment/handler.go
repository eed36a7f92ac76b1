package comment

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/livedrop/livedrop-api/internal/middleware"
	"github.com/livedrop/livedrop-api/internal/pkg/response"
	"github.com/livedrop/livedrop-api/internal/pkg/validator"
)

// Handler handles comment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates comment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Add handles POST /photos/{id}/comments
// @Summary Add a comment to a photo
// @Tags Comment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Param request body AddCommentRequest true "Comment body"
// @Success 201 {object} response.Response{data=Comment}
// @Failure 400,404,500 {object} response.Response
// @Router /photos/{id}/comments [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	photoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid photo ID")
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	userID := middleware.GetGuestID(r.Context())
	comment, err := h.service.Add(r.Context(), photoID, userID, &req)
	if err != nil {
		if err == ErrPhotoNotFound {
			response.NotFound(w, "Photo not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.Created(w, comment)
}

// List handles GET /photos/{id}/comments
// @Summary List a photo's comments
// @Tags Comment
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {object} response.Response{data=[]Comment}
// @Failure 400,404,500 {object} response.Response
// @Router /photos/{id}/comments [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	photoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid photo ID")
		return
	}

	comments, err := h.service.ListByPhoto(r.Context(), photoID)
	if err != nil {
		if err == ErrPhotoNotFound {
			response.NotFound(w, "Photo not found")
		} else {
			response.InternalError(w)
		}
		return
	}
	if comments == nil {
		comments = []*Comment{}
	}

	response.OK(w, comments)
}
