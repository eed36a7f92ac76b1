package comment

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a guest comment on a photo
type Comment struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PhotoID    uuid.UUID `db:"photo_id" json:"photo_id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Body       string    `db:"body" json:"body"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
