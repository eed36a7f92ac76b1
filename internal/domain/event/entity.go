package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a photo-sharing event (wedding, party, conference)
type Event struct {
	ID        uuid.UUID `db:"id" json:"id"`
	HostID    uuid.UUID `db:"host_id" json:"host_id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	QRCodeURL string    `db:"qr_code_url" json:"qr_code_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
