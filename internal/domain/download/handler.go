package download

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/livedrop/livedrop-api/internal/pkg/archive"
	"github.com/livedrop/livedrop-api/internal/pkg/response"
	"github.com/livedrop/livedrop-api/internal/pkg/validator"
)

// Handler handles archive download requests
type Handler struct {
	service *Service
}

// NewHandler creates download handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Download handles POST /download/{slug}
// @Summary Download event photos as a zip archive
// @Tags Download
// @Accept json
// @Produce application/zip
// @Param slug path string true "Event slug"
// @Param request body DownloadRequest true "Filter"
// @Success 200 {file} binary "Zip archive"
// @Failure 400,404,500 {object} response.Response
// @Router /download/{slug} [post]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	result, err := h.service.Download(r.Context(), chi.URLParam(r, "slug"), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.NotFound(w, "Event not found")
		case errors.Is(err, ErrNoPhotosFound):
			response.NotFound(w, "No photos match the request")
		case errors.Is(err, ErrInvalidRequest):
			response.BadRequest(w, "Select photos, a date range, or download_all")
		case errors.Is(err, archive.ErrNoContent):
			response.InternalError(w)
		default:
			response.InternalError(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, result.FileName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(result.Bytes)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Bytes)
}
