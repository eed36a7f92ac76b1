package photo

import (
	"time"

	"github.com/google/uuid"
)

// PresignRequest for POST /uploads/presign
type PresignRequest struct {
	ContentType string `json:"content_type" validate:"required"`
	Size        int64  `json:"size" validate:"required,gt=0"`
}

// PresignResponse for presigned URL
type PresignResponse struct {
	UploadURL string    `json:"upload_url"` // PUT to this URL
	Key       string    `json:"key"`        // Save this for confirmation
	PublicURL string    `json:"public_url"` // Final URL after upload
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfirmUploadRequest for POST /photos
type ConfirmUploadRequest struct {
	Key string `json:"key" validate:"required"`
}

// SetVisibilityRequest for PATCH /photos/{id}/visibility
type SetVisibilityRequest struct {
	IsVisible bool `json:"is_visible"`
}

// PhotoResponse represents photo in API response
type PhotoResponse struct {
	ID            uuid.UUID `json:"id"`
	EventID       uuid.UUID `json:"event_id"`
	UploaderID    uuid.UUID `json:"uploader_id"`
	URL           string    `json:"url"`
	IsVisible     bool      `json:"is_visible"`
	LikeCount     int       `json:"like_count"`
	CommentCount  int       `json:"comment_count"`
	DownloadCount int       `json:"download_count"`
	CreatedAt     string    `json:"created_at"`
}

// ResponseFromEntity converts entity to response DTO
func (s *Service) ResponseFromEntity(p *Photo) *PhotoResponse {
	return &PhotoResponse{
		ID:            p.ID,
		EventID:       p.EventID,
		UploaderID:    p.UploaderID,
		URL:           s.store.PublicURL(p.StoragePath),
		IsVisible:     p.IsVisible,
		LikeCount:     p.LikeCount,
		CommentCount:  p.CommentCount,
		DownloadCount: p.DownloadCount,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}
