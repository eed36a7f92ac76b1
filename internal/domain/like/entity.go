package like

import (
	"time"

	"github.com/google/uuid"
)

// Like marks one user's like on one photo
type Like struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PhotoID   uuid.UUID `db:"photo_id" json:"photo_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
