package event

import "time"

// CreateEventRequest creates a new event
type CreateEventRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
	Slug string `json:"slug" validate:"omitempty,slug,min=3,max=64"`
}

// UpdateEventRequest renames an event
type UpdateEventRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

// JoinResponse carries a guest identity token for one event
type JoinResponse struct {
	Token     string    `json:"token"`
	GuestID   string    `json:"guest_id"`
	EventID   string    `json:"event_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IdentityResponse carries a host identity token (not bound to an event)
type IdentityResponse struct {
	Token     string    `json:"token"`
	GuestID   string    `json:"guest_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
