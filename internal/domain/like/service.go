package like

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/livedrop/livedrop-api/internal/domain/photo"
)

var ErrPhotoNotFound = errors.New("photo not found")

// Notifier announces like changes to live sessions
type Notifier interface {
	LikeAdded(ctx context.Context, eventID, photoID, userID uuid.UUID)
	LikeRemoved(ctx context.Context, eventID, photoID, userID uuid.UUID)
}

// PhotoGetter resolves the photo a like targets
type PhotoGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*photo.Photo, error)
}

// ToggleResult is the state after a toggle
type ToggleResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// Service handles like business logic
type Service struct {
	repo   Repository
	photos PhotoGetter
	feed   Notifier
}

// NewService creates like service
func NewService(repo Repository, photos PhotoGetter, feed Notifier) *Service {
	return &Service{repo: repo, photos: photos, feed: feed}
}

// Toggle adds the like if absent, removes it if present, and returns
// the resulting state with the authoritative count.
func (s *Service) Toggle(ctx context.Context, photoID, userID uuid.UUID) (*ToggleResult, error) {
	p, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPhotoNotFound
	}

	existing, err := s.repo.GetByPhotoAndUser(ctx, photoID, userID)
	if err != nil {
		return nil, err
	}

	liked := existing == nil
	if liked {
		err = s.repo.Add(ctx, &Like{
			ID:        uuid.New(),
			PhotoID:   photoID,
			UserID:    userID,
			CreatedAt: time.Now(),
		})
	} else {
		err = s.repo.Remove(ctx, photoID, userID)
	}
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountByPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}

	if liked {
		s.feed.LikeAdded(ctx, p.EventID, photoID, userID)
	} else {
		s.feed.LikeRemoved(ctx, p.EventID, photoID, userID)
	}

	return &ToggleResult{Liked: liked, LikeCount: count}, nil
}

// ListLikedPhotoIDs returns the photo ids a user has liked in an event
func (s *Service) ListLikedPhotoIDs(ctx context.Context, eventID, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.ListPhotoIDsByUser(ctx, eventID, userID)
}
