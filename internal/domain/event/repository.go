package event

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines event data access interface
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]*Event, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new event repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO events (id, host_id, name, slug, qr_code_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.HostID,
		event.Name,
		event.Slug,
		event.QRCodeURL,
		event.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.GetContext(ctx, &event, `SELECT * FROM events WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Event, error) {
	var event Event
	err := r.db.GetContext(ctx, &event, `SELECT * FROM events WHERE slug = $1`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) ListByHost(ctx context.Context, hostID uuid.UUID) ([]*Event, error) {
	var events []*Event
	query := `SELECT * FROM events WHERE host_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &events, query, hostID)
	return events, err
}

func (r *repository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE events SET name = $2 WHERE id = $1`, id, name)
	return err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	// photos, likes, comments, viewers cascade via FK
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}
