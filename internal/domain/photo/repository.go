package photo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines photo data access interface
type Repository interface {
	Create(ctx context.Context, photo *Photo) error
	GetByID(ctx context.Context, id uuid.UUID) (*Photo, error)
	GetByStorageKey(ctx context.Context, key string) (*Photo, error)
	ListVisibleByEvent(ctx context.Context, eventID uuid.UUID) ([]*Photo, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Photo, error)
	ListByIDs(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]*Photo, error)
	ListByEventRange(ctx context.Context, eventID uuid.UUID, from, to *time.Time) ([]*Photo, error)
	ListStorageKeys(ctx context.Context, eventID uuid.UUID) ([]string, error)
	SetVisibility(ctx context.Context, id uuid.UUID, visible bool) error
	IncrementDownloadCount(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// withCounts selects photo rows with like/comment aggregates attached.
const withCounts = `
	SELECT p.*,
	       (SELECT COUNT(*) FROM photo_likes l WHERE l.photo_id = p.id) AS like_count,
	       (SELECT COUNT(*) FROM photo_comments c WHERE c.photo_id = p.id) AS comment_count
	FROM photos p
`

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new photo repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, photo *Photo) error {
	query := `
		INSERT INTO photos (id, event_id, uploader_id, storage_path, is_visible, download_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		photo.ID,
		photo.EventID,
		photo.UploaderID,
		photo.StoragePath,
		photo.IsVisible,
		photo.DownloadCount,
		photo.CreatedAt,
		photo.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Photo, error) {
	query := withCounts + `WHERE p.id = $1`
	var photo Photo
	err := r.db.GetContext(ctx, &photo, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

func (r *repository) GetByStorageKey(ctx context.Context, key string) (*Photo, error) {
	query := withCounts + `WHERE p.storage_path = $1`
	var photo Photo
	err := r.db.GetContext(ctx, &photo, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

func (r *repository) ListVisibleByEvent(ctx context.Context, eventID uuid.UUID) ([]*Photo, error) {
	query := withCounts + `WHERE p.event_id = $1 AND p.is_visible = true ORDER BY p.created_at DESC, p.id`
	var photos []*Photo
	err := r.db.SelectContext(ctx, &photos, query, eventID)
	return photos, err
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Photo, error) {
	query := withCounts + `WHERE p.event_id = $1 ORDER BY p.created_at, p.id`
	var photos []*Photo
	err := r.db.SelectContext(ctx, &photos, query, eventID)
	return photos, err
}

func (r *repository) ListByIDs(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]*Photo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		withCounts+`WHERE p.event_id = ? AND p.id IN (?) ORDER BY p.created_at, p.id`,
		eventID, ids,
	)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var photos []*Photo
	err = r.db.SelectContext(ctx, &photos, query, args...)
	return photos, err
}

func (r *repository) ListByEventRange(ctx context.Context, eventID uuid.UUID, from, to *time.Time) ([]*Photo, error) {
	query := withCounts + `WHERE p.event_id = $1`
	args := []interface{}{eventID}

	if from != nil {
		args = append(args, *from)
		query += ` AND p.created_at >= $2`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND p.created_at < $3`
		} else {
			query += ` AND p.created_at < $2`
		}
	}
	query += ` ORDER BY p.created_at, p.id`

	var photos []*Photo
	err := r.db.SelectContext(ctx, &photos, query, args...)
	return photos, err
}

func (r *repository) ListStorageKeys(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	query := `SELECT storage_path FROM photos WHERE event_id = $1`
	var keys []string
	err := r.db.SelectContext(ctx, &keys, query, eventID)
	return keys, err
}

func (r *repository) SetVisibility(ctx context.Context, id uuid.UUID, visible bool) error {
	query := `UPDATE photos SET is_visible = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, visible)
	return err
}

func (r *repository) IncrementDownloadCount(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE photos SET download_count = download_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM photos WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
