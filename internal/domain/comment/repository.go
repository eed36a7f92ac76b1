package comment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines comment data access interface
type Repository interface {
	Add(ctx context.Context, comment *Comment) error
	ListByPhoto(ctx context.Context, photoID uuid.UUID) ([]*Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new comment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Add(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO photo_comments (id, photo_id, user_id, author_name, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.PhotoID,
		comment.UserID,
		comment.AuthorName,
		comment.Body,
		comment.CreatedAt,
	)
	return err
}

func (r *repository) ListByPhoto(ctx context.Context, photoID uuid.UUID) ([]*Comment, error) {
	var comments []*Comment
	query := `SELECT * FROM photo_comments WHERE photo_id = $1 ORDER BY created_at ASC`
	err := r.db.SelectContext(ctx, &comments, query, photoID)
	return comments, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM photo_comments WHERE id = $1`, id)
	return err
}
