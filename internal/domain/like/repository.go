package like

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines like data access interface
type Repository interface {
	Add(ctx context.Context, like *Like) error
	Remove(ctx context.Context, photoID, userID uuid.UUID) error
	GetByPhotoAndUser(ctx context.Context, photoID, userID uuid.UUID) (*Like, error)
	CountByPhoto(ctx context.Context, photoID uuid.UUID) (int, error)
	ListPhotoIDsByUser(ctx context.Context, eventID, userID uuid.UUID) ([]uuid.UUID, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new like repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Add(ctx context.Context, like *Like) error {
	query := `
		INSERT INTO photo_likes (id, photo_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (photo_id, user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, like.ID, like.PhotoID, like.UserID, like.CreatedAt)
	return err
}

func (r *repository) Remove(ctx context.Context, photoID, userID uuid.UUID) error {
	query := `DELETE FROM photo_likes WHERE photo_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, photoID, userID)
	return err
}

func (r *repository) GetByPhotoAndUser(ctx context.Context, photoID, userID uuid.UUID) (*Like, error) {
	var like Like
	query := `SELECT * FROM photo_likes WHERE photo_id = $1 AND user_id = $2`
	err := r.db.GetContext(ctx, &like, query, photoID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &like, nil
}

func (r *repository) CountByPhoto(ctx context.Context, photoID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM photo_likes WHERE photo_id = $1`
	err := r.db.GetContext(ctx, &count, query, photoID)
	return count, err
}

func (r *repository) ListPhotoIDsByUser(ctx context.Context, eventID, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `
		SELECT l.photo_id FROM photo_likes l
		JOIN photos p ON p.id = l.photo_id
		WHERE p.event_id = $1 AND l.user_id = $2
	`
	err := r.db.SelectContext(ctx, &ids, query, eventID, userID)
	return ids, err
}
