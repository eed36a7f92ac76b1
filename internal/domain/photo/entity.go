package photo

import (
	"time"

	"github.com/google/uuid"
)

// Photo represents one uploaded event photo (metadata only, blob in R2).
// LikeCount and CommentCount are aggregates over the side tables,
// denormalized into the read model by repository queries.
type Photo struct {
	ID            uuid.UUID `db:"id" json:"id"`
	EventID       uuid.UUID `db:"event_id" json:"event_id"`
	UploaderID    uuid.UUID `db:"uploader_id" json:"uploader_id"`
	StoragePath   string    `db:"storage_path" json:"storage_path"`
	IsVisible     bool      `db:"is_visible" json:"is_visible"`
	LikeCount     int       `db:"like_count" json:"like_count"`
	CommentCount  int       `db:"comment_count" json:"comment_count"`
	DownloadCount int       `db:"download_count" json:"download_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
