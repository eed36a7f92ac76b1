package comment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/livedrop/livedrop-api/internal/domain/photo"
)

var ErrPhotoNotFound = errors.New("photo not found")

// Notifier announces comment changes to live sessions
type Notifier interface {
	CommentAdded(ctx context.Context, eventID, photoID, userID uuid.UUID)
}

// PhotoGetter resolves the photo a comment targets
type PhotoGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*photo.Photo, error)
}

// Service handles comment business logic
type Service struct {
	repo   Repository
	photos PhotoGetter
	feed   Notifier
}

// NewService creates comment service
func NewService(repo Repository, photos PhotoGetter, feed Notifier) *Service {
	return &Service{repo: repo, photos: photos, feed: feed}
}

// Add stores a comment and announces it on the feed
func (s *Service) Add(ctx context.Context, photoID, userID uuid.UUID, req *AddCommentRequest) (*Comment, error) {
	p, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPhotoNotFound
	}

	name := req.AuthorName
	if name == "" {
		name = "Guest"
	}

	comment := &Comment{
		ID:         uuid.New(),
		PhotoID:    photoID,
		UserID:     userID,
		AuthorName: name,
		Body:       req.Body,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Add(ctx, comment); err != nil {
		return nil, err
	}

	s.feed.CommentAdded(ctx, p.EventID, photoID, userID)
	return comment, nil
}

// ListByPhoto returns a photo's comments, oldest first
func (s *Service) ListByPhoto(ctx context.Context, photoID uuid.UUID) ([]*Comment, error) {
	p, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPhotoNotFound
	}
	return s.repo.ListByPhoto(ctx, photoID)
}
