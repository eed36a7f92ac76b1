package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UploadSample is one photo creation timestamp used for the hourly
// upload distribution.
type UploadSample struct {
	CreatedAt time.Time `db:"created_at"`
}

// Repository defines stats data access interface
type Repository interface {
	CountPhotos(ctx context.Context, eventID uuid.UUID) (int, error)
	CountPhotosSince(ctx context.Context, eventID uuid.UUID, since time.Time) (int, error)
	CountLikes(ctx context.Context, eventID uuid.UUID) (int, error)
	CountComments(ctx context.Context, eventID uuid.UUID) (int, error)
	SumDownloads(ctx context.Context, eventID uuid.UUID) (int, error)
	CountViewersSince(ctx context.Context, eventID uuid.UUID, since time.Time) (int, error)
	ListUploadsSince(ctx context.Context, eventID uuid.UUID, since time.Time) ([]UploadSample, error)
	TouchViewer(ctx context.Context, eventID, userID uuid.UUID, seenAt time.Time) error
	RemoveViewer(ctx context.Context, eventID, userID uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new stats repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountPhotos(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM photos WHERE event_id = $1 AND is_visible = TRUE`
	err := r.db.GetContext(ctx, &count, query, eventID)
	return count, err
}

func (r *repository) CountPhotosSince(ctx context.Context, eventID uuid.UUID, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM photos WHERE event_id = $1 AND is_visible = TRUE AND created_at >= $2`
	err := r.db.GetContext(ctx, &count, query, eventID, since)
	return count, err
}

func (r *repository) CountLikes(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM photo_likes l
		JOIN photos p ON p.id = l.photo_id
		WHERE p.event_id = $1
	`
	err := r.db.GetContext(ctx, &count, query, eventID)
	return count, err
}

func (r *repository) CountComments(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM photo_comments c
		JOIN photos p ON p.id = c.photo_id
		WHERE p.event_id = $1
	`
	err := r.db.GetContext(ctx, &count, query, eventID)
	return count, err
}

func (r *repository) SumDownloads(ctx context.Context, eventID uuid.UUID) (int, error) {
	var sum int
	query := `SELECT COALESCE(SUM(download_count), 0) FROM photos WHERE event_id = $1`
	err := r.db.GetContext(ctx, &sum, query, eventID)
	return sum, err
}

func (r *repository) CountViewersSince(ctx context.Context, eventID uuid.UUID, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM event_viewers WHERE event_id = $1 AND last_seen_at >= $2`
	err := r.db.GetContext(ctx, &count, query, eventID, since)
	return count, err
}

func (r *repository) ListUploadsSince(ctx context.Context, eventID uuid.UUID, since time.Time) ([]UploadSample, error) {
	var samples []UploadSample
	query := `SELECT created_at FROM photos WHERE event_id = $1 AND created_at >= $2 ORDER BY created_at`
	err := r.db.SelectContext(ctx, &samples, query, eventID, since)
	return samples, err
}

func (r *repository) TouchViewer(ctx context.Context, eventID, userID uuid.UUID, seenAt time.Time) error {
	query := `
		INSERT INTO event_viewers (id, event_id, user_id, last_seen_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at
	`
	_, err := r.db.ExecContext(ctx, query, uuid.New(), eventID, userID, seenAt)
	return err
}

func (r *repository) RemoveViewer(ctx context.Context, eventID, userID uuid.UUID) error {
	query := `DELETE FROM event_viewers WHERE event_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, eventID, userID)
	return err
}
