package stats

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEventNotFound = errors.New("event not found")

// EventResolver maps a public slug to an event id
type EventResolver interface {
	ResolveBySlug(ctx context.Context, slug string) (uuid.UUID, error)
}

// HourBucket is one hour of the upload distribution
type HourBucket struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// EventStats is the dashboard summary for one event
type EventStats struct {
	PhotoCount    int          `json:"photo_count"`
	PhotosToday   int          `json:"photos_today"`
	LikeCount     int          `json:"like_count"`
	CommentCount  int          `json:"comment_count"`
	DownloadCount int          `json:"download_count"`
	OnlineViewers int          `json:"online_viewers"`
	UploadsByHour []HourBucket `json:"uploads_by_hour"`
}

// Service aggregates event statistics and tracks viewer presence
type Service struct {
	repo   Repository
	events EventResolver

	// onlineWindow is how recently a viewer must have been seen to
	// count as online.
	onlineWindow time.Duration

	now func() time.Time
}

// NewService creates stats service
func NewService(repo Repository, events EventResolver, onlineWindow time.Duration) *Service {
	if onlineWindow <= 0 {
		onlineWindow = 5 * time.Minute
	}
	return &Service{repo: repo, events: events, onlineWindow: onlineWindow, now: time.Now}
}

// ForEvent builds the stats summary for the event behind slug
func (s *Service) ForEvent(ctx context.Context, slug string) (*EventStats, error) {
	eventID, err := s.events.ResolveBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if eventID == uuid.Nil {
		return nil, ErrEventNotFound
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &EventStats{}
	if stats.PhotoCount, err = s.repo.CountPhotos(ctx, eventID); err != nil {
		return nil, err
	}
	if stats.PhotosToday, err = s.repo.CountPhotosSince(ctx, eventID, startOfDay); err != nil {
		return nil, err
	}
	if stats.LikeCount, err = s.repo.CountLikes(ctx, eventID); err != nil {
		return nil, err
	}
	if stats.CommentCount, err = s.repo.CountComments(ctx, eventID); err != nil {
		return nil, err
	}
	if stats.DownloadCount, err = s.repo.SumDownloads(ctx, eventID); err != nil {
		return nil, err
	}
	if stats.OnlineViewers, err = s.repo.CountViewersSince(ctx, eventID, now.Add(-s.onlineWindow)); err != nil {
		return nil, err
	}

	samples, err := s.repo.ListUploadsSince(ctx, eventID, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	stats.UploadsByHour = BucketByHour(samples, now)

	return stats, nil
}

// Touch marks a viewer as online now
func (s *Service) Touch(ctx context.Context, eventID, userID uuid.UUID) error {
	return s.repo.TouchViewer(ctx, eventID, userID, s.now())
}

// Leave removes a viewer's presence row
func (s *Service) Leave(ctx context.Context, eventID, userID uuid.UUID) error {
	return s.repo.RemoveViewer(ctx, eventID, userID)
}

// BucketByHour distributes upload timestamps over the trailing 24
// hours ending at now, oldest bucket first. Hours are truncated in UTC
// and labeled "15:00".
func BucketByHour(samples []UploadSample, now time.Time) []HourBucket {
	end := now.UTC().Truncate(time.Hour)
	start := end.Add(-23 * time.Hour)

	buckets := make([]HourBucket, 24)
	index := make(map[time.Time]int, 24)
	for i := 0; i < 24; i++ {
		h := start.Add(time.Duration(i) * time.Hour)
		buckets[i] = HourBucket{Hour: h.Format("15:00")}
		index[h] = i
	}

	for _, s := range samples {
		h := s.CreatedAt.UTC().Truncate(time.Hour)
		if i, ok := index[h]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}
