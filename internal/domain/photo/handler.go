package photo

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/livedrop/livedrop-api/internal/middleware"
	"github.com/livedrop/livedrop-api/internal/pkg/imaging"
	"github.com/livedrop/livedrop-api/internal/pkg/response"
	"github.com/livedrop/livedrop-api/internal/pkg/validator"
)

// Handler handles photo HTTP requests
type Handler struct {
	service   *Service
	processor *imaging.Processor
}

// NewHandler creates photo handler
func NewHandler(service *Service, processor *imaging.Processor) *Handler {
	return &Handler{service: service, processor: processor}
}

// Presign handles POST /uploads/presign
// @Summary Get a presigned URL for photo upload
// @Tags Photo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PresignRequest true "Upload parameters"
// @Success 200 {object} response.Response{data=PresignResponse}
// @Failure 400,404,500 {object} response.Response
// @Router /uploads/presign [post]
func (h *Handler) Presign(w http.ResponseWriter, r *http.Request) {
	var req PresignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	guestID := middleware.GetGuestID(r.Context())
	eventID := middleware.GetEventID(r.Context())
	result, err := h.service.Presign(r.Context(), eventID, guestID, &req)
	if err != nil {
		switch err {
		case ErrEventNotFound:
			response.NotFound(w, "Event not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}

// ConfirmUpload handles POST /photos
// @Summary Confirm a finished photo upload
// @Tags Photo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ConfirmUploadRequest true "Upload key"
// @Success 201 {object} response.Response{data=PhotoResponse}
// @Failure 400,404,500 {object} response.Response
// @Router /photos [post]
func (h *Handler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	var req ConfirmUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	guestID := middleware.GetGuestID(r.Context())
	eventID := middleware.GetEventID(r.Context())
	photo, err := h.service.ConfirmUpload(r.Context(), eventID, guestID, &req)
	if err != nil {
		switch err {
		case ErrEventNotFound:
			response.NotFound(w, "Event not found")
		case ErrUploadNotVerified:
			response.BadRequest(w, "File not found. Please upload first.")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, h.service.ResponseFromEntity(photo))
}

// ListByEvent handles GET /events/{slug}/photos
// @Summary List visible photos of an event
// @Tags Photo
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} response.Response{data=[]PhotoResponse}
// @Failure 404,500 {object} response.Response
// @Router /events/{slug}/photos [get]
func (h *Handler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	ev, err := h.service.events.ResolveBySlug(r.Context(), slug)
	if err != nil || ev == nil {
		response.NotFound(w, "Event not found")
		return
	}

	photos, err := h.service.ListVisibleByEvent(r.Context(), ev.ID)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*PhotoResponse, len(photos))
	for i, p := range photos {
		items[i] = h.service.ResponseFromEntity(p)
	}

	response.OK(w, items)
}

// SetVisibility handles PATCH /photos/{id}/visibility
// @Summary Toggle photo visibility (host moderation)
// @Tags Photo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Param request body SetVisibilityRequest true "New visibility"
// @Success 200 {object} response.Response{data=PhotoResponse}
// @Failure 400,403,404,500 {object} response.Response
// @Router /photos/{id}/visibility [patch]
func (h *Handler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	photoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid photo ID")
		return
	}

	var req SetVisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	actorID := middleware.GetGuestID(r.Context())
	photo, err := h.service.SetVisibility(r.Context(), actorID, photoID, req.IsVisible)
	if err != nil {
		switch err {
		case ErrPhotoNotFound:
			response.NotFound(w, "Photo not found")
		case ErrNotPhotoOwner:
			response.Forbidden(w, "Only the event host can moderate photos")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, h.service.ResponseFromEntity(photo))
}

// Delete handles DELETE /photos/{id}
// @Summary Delete a photo
// @Tags Photo
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Success 204 {string} string "No Content"
// @Failure 400,403,404,500 {object} response.Response
// @Router /photos/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	photoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid photo ID")
		return
	}

	actorID := middleware.GetGuestID(r.Context())
	if err := h.service.Delete(r.Context(), actorID, photoID); err != nil {
		switch err {
		case ErrPhotoNotFound:
			response.NotFound(w, "Photo not found")
		case ErrNotPhotoOwner:
			response.Forbidden(w, "You can only delete your own photos")
		default:
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}

// GetImage handles GET /images/* — streams a blob with optional resize.
// Width is capped by the processor config.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		response.BadRequest(w, "Missing image key")
		return
	}

	data, err := h.service.GetImage(r.Context(), key)
	if err != nil {
		if err == ErrPhotoNotFound {
			response.NotFound(w, "Image not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	contentType := "image/jpeg"
	if widthParam := r.URL.Query().Get("w"); widthParam != "" {
		width, err := strconv.Atoi(widthParam)
		if err != nil || width <= 0 {
			response.BadRequest(w, "Invalid width")
			return
		}
		resized, ct, err := h.processor.Resize(bytes.NewReader(data), width)
		if err == nil {
			data = resized
			contentType = ct
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}
