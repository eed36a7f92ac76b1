package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/livedrop/livedrop-api/internal/pkg/storage"
)

// EventInfo is the slice of the event entity this package needs
type EventInfo struct {
	ID     uuid.UUID
	HostID uuid.UUID
	Slug   string
}

// EventResolver looks up events for upload key generation and host checks
type EventResolver interface {
	ResolveByID(ctx context.Context, id uuid.UUID) (*EventInfo, error)
	ResolveBySlug(ctx context.Context, slug string) (*EventInfo, error)
}

// FeedPublisher pushes row changes into the live change feed.
// Publish failures are absorbed by the feed: the periodic poll is the
// backstop.
type FeedPublisher interface {
	PhotoInserted(ctx context.Context, p *Photo)
	PhotoUpdated(ctx context.Context, p *Photo)
	PhotoDeleted(ctx context.Context, eventID, photoID uuid.UUID)
}

const presignTTL = 15 * time.Minute

// Service handles photo business logic
type Service struct {
	repo   Repository
	events EventResolver
	store  storage.ObjectStore
	feed   FeedPublisher
}

// NewService creates photo service
func NewService(repo Repository, events EventResolver, store storage.ObjectStore, feed FeedPublisher) *Service {
	return &Service{
		repo:   repo,
		events: events,
		store:  store,
		feed:   feed,
	}
}

// Presign creates a presigned PUT URL for direct upload.
// The row insert happens only after the blob write is confirmed.
func (s *Service) Presign(ctx context.Context, eventID, guestID uuid.UUID, req *PresignRequest) (*PresignResponse, error) {
	ev, err := s.events.ResolveByID(ctx, eventID)
	if err != nil || ev == nil {
		return nil, ErrEventNotFound
	}

	ext := extensionFor(req.ContentType)
	key := fmt.Sprintf("%s/%s-%d.%s", ev.Slug, guestID, time.Now().Unix(), ext)

	uploadURL, err := s.store.PresignPut(ctx, key, req.ContentType, presignTTL)
	if err != nil {
		return nil, err
	}

	return &PresignResponse{
		UploadURL: uploadURL,
		Key:       key,
		PublicURL: s.store.PublicURL(key),
		ExpiresAt: time.Now().Add(presignTTL),
	}, nil
}

// ConfirmUpload registers an uploaded blob as a photo row
func (s *Service) ConfirmUpload(ctx context.Context, eventID, guestID uuid.UUID, req *ConfirmUploadRequest) (*Photo, error) {
	ev, err := s.events.ResolveByID(ctx, eventID)
	if err != nil || ev == nil {
		return nil, ErrEventNotFound
	}

	// Row insert only after the blob write succeeded
	exists, err := s.store.Exists(ctx, req.Key)
	if err != nil || !exists {
		return nil, ErrUploadNotVerified
	}

	// Idempotency: re-confirming the same key returns the existing row
	existing, _ := s.repo.GetByStorageKey(ctx, req.Key)
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	photo := &Photo{
		ID:          uuid.New(),
		EventID:     ev.ID,
		UploaderID:  guestID,
		StoragePath: req.Key,
		IsVisible:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, photo); err != nil {
		return nil, err
	}

	s.feed.PhotoInserted(ctx, photo)

	return photo, nil
}

// ListVisibleByEvent returns the currently visible photos, newest first.
// This backs both the initial gallery snapshot and the poll refresh.
func (s *Service) ListVisibleByEvent(ctx context.Context, eventID uuid.UUID) ([]*Photo, error) {
	return s.repo.ListVisibleByEvent(ctx, eventID)
}

// SetVisibility toggles a photo's visibility (host moderation).
// A hidden photo disappears from live galleries via the feed update.
func (s *Service) SetVisibility(ctx context.Context, actorID, photoID uuid.UUID, visible bool) (*Photo, error) {
	p, err := s.repo.GetByID(ctx, photoID)
	if err != nil || p == nil {
		return nil, ErrPhotoNotFound
	}

	ev, err := s.events.ResolveByID(ctx, p.EventID)
	if err != nil || ev == nil {
		return nil, ErrEventNotFound
	}
	if ev.HostID != actorID {
		return nil, ErrNotPhotoOwner
	}

	if err := s.repo.SetVisibility(ctx, photoID, visible); err != nil {
		return nil, err
	}
	p.IsVisible = visible
	p.UpdatedAt = time.Now()

	s.feed.PhotoUpdated(ctx, p)

	return p, nil
}

// Delete removes a photo. The blob is removed before the row so the
// store never holds rows pointing at missing blobs; a dangling blob on
// row-delete failure is tolerated.
func (s *Service) Delete(ctx context.Context, actorID, photoID uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, photoID)
	if err != nil || p == nil {
		return ErrPhotoNotFound
	}

	ev, err := s.events.ResolveByID(ctx, p.EventID)
	if err != nil || ev == nil {
		return ErrEventNotFound
	}
	if p.UploaderID != actorID && ev.HostID != actorID {
		return ErrNotPhotoOwner
	}

	if err := s.store.Delete(ctx, p.StoragePath); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if err := s.repo.Delete(ctx, photoID); err != nil {
		return err
	}

	s.feed.PhotoDeleted(ctx, p.EventID, photoID)

	return nil
}

// GetImage streams a photo blob, optionally resized, for the image proxy
func (s *Service) GetImage(ctx context.Context, key string) ([]byte, error) {
	body, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	defer body.Close()

	return io.ReadAll(body)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}
