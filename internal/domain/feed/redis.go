package feed

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/livedrop/livedrop-api/internal/domain/photo"
)

const channelPrefix = "feed:event:"

// RedisFeed publishes and delivers change events over Redis Pub/Sub.
// Every API instance publishes mutations here so sessions on any
// instance see them.
type RedisFeed struct {
	client *redis.Client
}

// NewRedisFeed creates a Redis-backed feed
func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func channelFor(eventID uuid.UUID) string {
	return channelPrefix + eventID.String()
}

func (f *RedisFeed) publish(ctx context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal feed event")
		return
	}

	if err := f.client.Publish(ctx, channelFor(ev.EventID), data).Err(); err != nil {
		// Mutations must not fail because the feed is down; readers
		// converge through the refresh poll anyway.
		log.Error().Err(err).
			Str("event_id", ev.EventID.String()).
			Str("stream", string(ev.Stream)).
			Msg("Failed to publish feed event")
	}
}

// PhotoInserted announces a newly visible photo
func (f *RedisFeed) PhotoInserted(ctx context.Context, p *photo.Photo) {
	f.publish(ctx, Event{Stream: StreamPhotos, Kind: KindInserted, EventID: p.EventID, Photo: p, PhotoID: p.ID})
}

// PhotoUpdated announces a changed photo (visibility, counters)
func (f *RedisFeed) PhotoUpdated(ctx context.Context, p *photo.Photo) {
	f.publish(ctx, Event{Stream: StreamPhotos, Kind: KindUpdated, EventID: p.EventID, Photo: p, PhotoID: p.ID})
}

// PhotoDeleted announces a removed photo
func (f *RedisFeed) PhotoDeleted(ctx context.Context, eventID, photoID uuid.UUID) {
	f.publish(ctx, Event{Stream: StreamPhotos, Kind: KindDeleted, EventID: eventID, PhotoID: photoID})
}

// LikeAdded announces a new like on a photo
func (f *RedisFeed) LikeAdded(ctx context.Context, eventID, photoID, userID uuid.UUID) {
	f.publish(ctx, Event{Stream: StreamLikes, Kind: KindInserted, EventID: eventID, PhotoID: photoID, UserID: userID})
}

// LikeRemoved announces a removed like
func (f *RedisFeed) LikeRemoved(ctx context.Context, eventID, photoID, userID uuid.UUID) {
	f.publish(ctx, Event{Stream: StreamLikes, Kind: KindDeleted, EventID: eventID, PhotoID: photoID, UserID: userID})
}

// CommentAdded announces a new comment on a photo
func (f *RedisFeed) CommentAdded(ctx context.Context, eventID, photoID, userID uuid.UUID) {
	f.publish(ctx, Event{Stream: StreamComments, Kind: KindInserted, EventID: eventID, PhotoID: photoID, UserID: userID})
}

// Subscribe starts delivering events for one gallery. onStatus fires
// Connecting immediately, Connected once the subscription is confirmed,
// and Disconnected when the pubsub channel closes. The returned cancel
// function stops delivery and closes the subscription.
func (f *RedisFeed) Subscribe(ctx context.Context, eventID uuid.UUID, onEvent func(Event), onStatus func(Status)) (func(), error) {
	onStatus(StatusConnecting)

	pubsub := f.client.Subscribe(ctx, channelFor(eventID))

	// Receive blocks until Redis confirms the subscription, so events
	// published after Subscribe returns are never missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		onStatus(StatusDisconnected)
		return nil, err
	}
	onStatus(StatusConnected)

	done := make(chan struct{})
	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				onStatus(StatusDisconnected)
				return
			case msg, ok := <-ch:
				if !ok {
					onStatus(StatusDisconnected)
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Warn().Err(err).Msg("Dropping malformed feed event")
					continue
				}
				onEvent(ev)
			}
		}
	}()

	var cancel = func() {
		close(done)
		pubsub.Close()
	}
	return cancel, nil
}
