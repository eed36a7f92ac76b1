package gallery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/livedrop/livedrop-api/internal/domain/photo"
)

// VisibleLister fetches the currently visible photo set for an event
type VisibleLister interface {
	ListVisibleByEvent(ctx context.Context, eventID uuid.UUID) ([]*photo.Photo, error)
}

// Poller periodically re-fetches the visible set and hands it to the
// session as an authoritative full replace. It is the backstop for
// events the feed silently dropped: a fetch error leaves the session
// untouched and is only logged.
type Poller struct {
	photos   VisibleLister
	interval time.Duration
}

// NewPoller creates a refresh poller
func NewPoller(photos VisibleLister, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{photos: photos, interval: interval}
}

// Run polls until ctx is cancelled. Call in a goroutine.
func (p *Poller) Run(ctx context.Context, eventID uuid.UUID, session *Session) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			photos, err := p.photos.ListVisibleByEvent(ctx, eventID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn().Err(err).
					Str("event_id", eventID.String()).
					Msg("Gallery refresh poll failed")
				continue
			}
			session.ApplyPollRefresh(photos)
		}
	}
}
