package event

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/livedrop/livedrop-api/internal/middleware"
	"github.com/livedrop/livedrop-api/internal/pkg/response"
	"github.com/livedrop/livedrop-api/internal/pkg/validator"
)

// Handler handles event HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates event handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /events
// @Summary Create a new event
// @Tags Event
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateEventRequest true "Event data"
// @Success 201 {object} response.Response{data=Event}
// @Failure 400,409,500 {object} response.Response
// @Router /events [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	hostID := middleware.GetGuestID(r.Context())
	event, err := h.service.Create(r.Context(), hostID, &req)
	if err != nil {
		if err == ErrSlugTaken {
			response.Conflict(w, "Slug already taken")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.Created(w, event)
}

// List handles GET /events
// @Summary List events owned by the caller
// @Tags Event
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]Event}
// @Failure 500 {object} response.Response
// @Router /events [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetGuestID(r.Context())
	events, err := h.service.ListByHost(r.Context(), hostID)
	if err != nil {
		response.InternalError(w)
		return
	}
	if events == nil {
		events = []*Event{}
	}
	response.OK(w, events)
}

// GetBySlug handles GET /events/{slug}
// @Summary Get a public event by slug
// @Tags Event
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} response.Response{data=Event}
// @Failure 404,500 {object} response.Response
// @Router /events/{slug} [get]
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if err == ErrEventNotFound {
			response.NotFound(w, "Event not found")
		} else {
			response.InternalError(w)
		}
		return
	}
	response.OK(w, event)
}

// Update handles PATCH /events/{slug}
// @Summary Rename an event
// @Tags Event
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Param request body UpdateEventRequest true "New name"
// @Success 200 {object} response.Response{data=Event}
// @Failure 400,403,404,500 {object} response.Response
// @Router /events/{slug} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	actorID := middleware.GetGuestID(r.Context())
	event, err := h.service.Rename(r.Context(), actorID, chi.URLParam(r, "slug"), &req)
	if err != nil {
		switch err {
		case ErrEventNotFound:
			response.NotFound(w, "Event not found")
		case ErrNotEventHost:
			response.Forbidden(w, "Only the host can modify this event")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, event)
}

// Delete handles DELETE /events/{slug}
// @Summary Delete an event and all its photos
// @Tags Event
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 204 {string} string "No Content"
// @Failure 403,404,500 {object} response.Response
// @Router /events/{slug} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetGuestID(r.Context())
	if err := h.service.Delete(r.Context(), actorID, chi.URLParam(r, "slug")); err != nil {
		switch err {
		case ErrEventNotFound:
			response.NotFound(w, "Event not found")
		case ErrNotEventHost:
			response.Forbidden(w, "Only the host can delete this event")
		default:
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}

// Join handles POST /events/{slug}/join
// @Summary Join an event as a guest
// @Tags Event
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} response.Response{data=JoinResponse}
// @Failure 404,500 {object} response.Response
// @Router /events/{slug}/join [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Join(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if err == ErrEventNotFound {
			response.NotFound(w, "Event not found")
		} else {
			response.InternalError(w)
		}
		return
	}
	response.OK(w, result)
}

// Identity handles POST /identity
// @Summary Issue a host identity token
// @Tags Event
// @Produce json
// @Success 200 {object} response.Response{data=IdentityResponse}
// @Failure 500 {object} response.Response
// @Router /identity [post]
func (h *Handler) Identity(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Identity(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, result)
}
