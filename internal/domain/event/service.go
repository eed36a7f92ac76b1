package event

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/livedrop/livedrop-api/internal/pkg/storage"
	"github.com/livedrop/livedrop-api/internal/pkg/token"
)

// PhotoKeyLister exposes the storage keys of an event's photos so
// deleting an event can clear its blobs first.
type PhotoKeyLister interface {
	ListStorageKeys(ctx context.Context, eventID uuid.UUID) ([]string, error)
}

// Service handles event business logic
type Service struct {
	repo   Repository
	photos PhotoKeyLister
	store  storage.ObjectStore
	tokens *token.Service
}

// NewService creates event service
func NewService(repo Repository, photos PhotoKeyLister, store storage.ObjectStore, tokens *token.Service) *Service {
	return &Service{repo: repo, photos: photos, store: store, tokens: tokens}
}

// Create creates an event owned by hostID. A missing slug is derived
// from the name with a random suffix to avoid collisions.
func (s *Service) Create(ctx context.Context, hostID uuid.UUID, req *CreateEventRequest) (*Event, error) {
	slug := req.Slug
	if slug == "" {
		slug = fmt.Sprintf("%s-%s", slugify(req.Name), uuid.New().String()[:8])
	}

	event := &Event{
		ID:        uuid.New(),
		HostID:    hostID,
		Name:      req.Name,
		Slug:      slug,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// GetBySlug returns an event by its public slug
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Event, error) {
	event, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// GetByID returns an event by id
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// ListByHost returns events owned by hostID, newest first
func (s *Service) ListByHost(ctx context.Context, hostID uuid.UUID) ([]*Event, error) {
	return s.repo.ListByHost(ctx, hostID)
}

// Rename changes an event's name. Host only.
func (s *Service) Rename(ctx context.Context, actorID uuid.UUID, slug string, req *UpdateEventRequest) (*Event, error) {
	event, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if event.HostID != actorID {
		return nil, ErrNotEventHost
	}

	if err := s.repo.UpdateName(ctx, event.ID, req.Name); err != nil {
		return nil, err
	}
	event.Name = req.Name
	return event, nil
}

// Delete removes an event, its blobs first and then its rows. Host only.
// A failed blob batch is logged and skipped so orphaned objects never
// block the delete.
func (s *Service) Delete(ctx context.Context, actorID uuid.UUID, slug string) error {
	event, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if event.HostID != actorID {
		return ErrNotEventHost
	}

	keys, err := s.photos.ListStorageKeys(ctx, event.ID)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := s.store.DeleteMany(ctx, keys); err != nil {
			log.Error().Err(err).
				Str("event_id", event.ID.String()).
				Int("keys", len(keys)).
				Msg("Failed to delete event blobs")
		}
	}

	return s.repo.Delete(ctx, event.ID)
}

// Join issues a guest identity token bound to the event behind slug
func (s *Service) Join(ctx context.Context, slug string) (*JoinResponse, error) {
	event, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	guestID := uuid.New()
	signed, expiresAt, err := s.tokens.IssueGuest(guestID, event.ID)
	if err != nil {
		return nil, err
	}

	return &JoinResponse{
		Token:     signed,
		GuestID:   guestID.String(),
		EventID:   event.ID.String(),
		ExpiresAt: expiresAt,
	}, nil
}

// Identity issues a host identity token not bound to any event,
// used by the dashboard to create and manage events.
func (s *Service) Identity(ctx context.Context) (*IdentityResponse, error) {
	hostID := uuid.New()
	signed, expiresAt, err := s.tokens.IssueGuest(hostID, uuid.Nil)
	if err != nil {
		return nil, err
	}

	return &IdentityResponse{
		Token:     signed,
		GuestID:   hostID.String(),
		ExpiresAt: expiresAt,
	}, nil
}

// slugify lowercases and strips a name down to url-safe characters
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "event"
	}
	if len(slug) > 40 {
		slug = strings.Trim(slug[:40], "-")
	}
	return slug
}
