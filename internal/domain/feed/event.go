package feed

import (
	"context"

	"github.com/google/uuid"

	"github.com/livedrop/livedrop-api/internal/domain/photo"
)

// Stream identifies which table an event originated from
type Stream string

const (
	StreamPhotos   Stream = "photos"
	StreamLikes    Stream = "likes"
	StreamComments Stream = "comments"
)

// Kind is the type of change carried by an event
type Kind string

const (
	KindInserted Kind = "inserted"
	KindUpdated  Kind = "updated"
	KindDeleted  Kind = "deleted"
)

// Event is a single change pushed over the live feed.
// Photo is populated for photo inserts/updates; deletes and the
// like/comment streams only carry the referenced IDs.
type Event struct {
	Stream  Stream       `json:"stream"`
	Kind    Kind         `json:"kind"`
	EventID uuid.UUID    `json:"event_id"`
	Photo   *photo.Photo `json:"photo,omitempty"`
	PhotoID uuid.UUID    `json:"photo_id,omitempty"`
	UserID  uuid.UUID    `json:"user_id,omitempty"`
}

// Status reports the health of a feed subscription
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Feed delivers change events for a single event's gallery.
// Subscribe returns a cancel function that releases the subscription.
type Feed interface {
	Subscribe(ctx context.Context, eventID uuid.UUID, onEvent func(Event), onStatus func(Status)) (func(), error)
}
