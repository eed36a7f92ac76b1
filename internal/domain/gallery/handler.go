package gallery

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/livedrop/livedrop-api/internal/domain/feed"
	"github.com/livedrop/livedrop-api/internal/domain/photo"
	"github.com/livedrop/livedrop-api/internal/middleware"
	"github.com/livedrop/livedrop-api/internal/pkg/response"
	"github.com/livedrop/livedrop-api/internal/pkg/validator"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

// EventResolver maps a public slug to an event id
type EventResolver interface {
	ResolveBySlug(ctx context.Context, slug string) (uuid.UUID, error)
}

// LikeToggler flips a like and returns the authoritative state
type LikeToggler interface {
	Toggle(ctx context.Context, photoID, userID uuid.UUID) (liked bool, count int, err error)
	ListLikedPhotoIDs(ctx context.Context, eventID, userID uuid.UUID) ([]uuid.UUID, error)
}

// PresenceRecorder tracks who is currently watching an event
type PresenceRecorder interface {
	Touch(ctx context.Context, eventID, userID uuid.UUID) error
	Leave(ctx context.Context, eventID, userID uuid.UUID) error
}

// Presenter renders a photo row into its public shape
type Presenter interface {
	ResponseFromEntity(p *photo.Photo) *photo.PhotoResponse
}

// Config tunes the live session loops
type Config struct {
	PollInterval     time.Duration
	PresenceInterval time.Duration
}

// Handler upgrades live gallery WebSocket sessions
type Handler struct {
	events    EventResolver
	photos    VisibleLister
	likes     LikeToggler
	presence  PresenceRecorder
	presenter Presenter
	feed      feed.Feed
	cfg       Config
	upgrader  websocket.Upgrader
}

// NewHandler creates the live gallery handler
func NewHandler(events EventResolver, photos VisibleLister, likes LikeToggler, presence PresenceRecorder, presenter Presenter, liveFeed feed.Feed, cfg Config, allowedOrigins []string) *Handler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.PresenceInterval <= 0 {
		cfg.PresenceInterval = 60 * time.Second
	}
	return &Handler{
		events:    events,
		photos:    photos,
		likes:     likes,
		presence:  presence,
		presenter: presenter,
		feed:      liveFeed,
		cfg:       cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allowedOrigins) == 0 {
					return true
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
				return false
			},
		},
	}
}

// inboundMessage is what the live client may send
type inboundMessage struct {
	Type    string    `json:"type" validate:"required"`
	Sort    SortMode  `json:"sort,omitempty" validate:"sort_mode"`
	PhotoID uuid.UUID `json:"photo_id,omitempty"`
}

type wsPhoto struct {
	*photo.PhotoResponse
	LikedByMe bool `json:"liked_by_me"`
}

// outboundMessage is the full gallery state pushed on every change
type outboundMessage struct {
	Type   string      `json:"type"`
	Status feed.Status `json:"status"`
	Sort   SortMode    `json:"sort"`
	Photos []wsPhoto   `json:"photos"`
}

// Live handles GET /events/{slug}/live
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetGuestID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Identity required")
		return
	}

	eventID, err := h.events.ResolveBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil || eventID == uuid.Nil {
		response.NotFound(w, "Event not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	// The request context dies when this handler returns; the session
	// lives as long as the socket.
	ctx, cancel := context.WithCancel(context.Background())
	session := NewSession(userID)

	// Seed before subscribing so the first push is never empty when
	// photos already exist.
	if photos, err := h.photos.ListVisibleByEvent(ctx, eventID); err == nil {
		session.Seed(photos)
	} else {
		log.Warn().Err(err).Str("event_id", eventID.String()).Msg("Gallery seed failed")
	}
	if liked, err := h.likes.ListLikedPhotoIDs(ctx, eventID, userID); err == nil {
		session.SeedLiked(liked)
	} else {
		log.Warn().Err(err).Str("event_id", eventID.String()).Msg("Liked-photo seed failed")
	}

	unsubscribe, err := h.feed.Subscribe(ctx, eventID, session.Apply, session.SetConnState)
	if err != nil {
		// Poll still converges; the client just sees "disconnected".
		log.Warn().Err(err).Str("event_id", eventID.String()).Msg("Feed subscribe failed")
		unsubscribe = func() {}
	}

	go NewPoller(h.photos, h.cfg.PollInterval).Run(ctx, eventID, session)
	go h.heartbeat(ctx, eventID, userID)
	go h.writer(ctx, conn, session)
	go h.reader(ctx, cancel, conn, session, eventID, userID, unsubscribe)
}

// heartbeat keeps the viewer marked online and clears it on teardown
func (h *Handler) heartbeat(ctx context.Context, eventID, userID uuid.UUID) {
	if err := h.presence.Touch(ctx, eventID, userID); err != nil {
		log.Debug().Err(err).Msg("Presence touch failed")
	}

	ticker := time.NewTicker(h.cfg.PresenceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			leaveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.presence.Leave(leaveCtx, eventID, userID); err != nil {
				log.Debug().Err(err).Msg("Presence leave failed")
			}
			return
		case <-ticker.C:
			if err := h.presence.Touch(ctx, eventID, userID); err != nil {
				log.Debug().Err(err).Msg("Presence touch failed")
			}
		}
	}
}

// writer is the only goroutine writing to the socket. It pushes the
// full sorted view whenever the session signals a change.
func (h *Handler) writer(ctx context.Context, conn *websocket.Conn, session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	push := func() bool {
		view := session.SortedView()
		photos := make([]wsPhoto, len(view))
		for i := range view {
			p := view[i].Photo
			photos[i] = wsPhoto{
				PhotoResponse: h.presenter.ResponseFromEntity(&p),
				LikedByMe:     view[i].LikedByMe,
			}
		}
		msg := outboundMessage{
			Type:   "gallery",
			Status: session.ConnState(),
			Sort:   session.Sort(),
			Photos: photos,
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg) == nil
	}

	// initial state
	if !push() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-session.Changes():
			if !push() {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) reader(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, session *Session, eventID, userID uuid.UUID, unsubscribe func()) {
	defer func() {
		unsubscribe()
		cancel()
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("user_id", userID.String()).Msg("WebSocket read error")
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if errs := validator.Validate(&msg); errs != nil {
			continue
		}

		switch msg.Type {
		case "set_sort":
			if msg.Sort != "" {
				session.SetSort(msg.Sort)
			}
		case "toggle_like":
			if msg.PhotoID == uuid.Nil {
				continue
			}
			h.toggleLike(ctx, session, msg.PhotoID, userID)
		}
	}
}

// toggleLike applies the optimistic overlay, then settles it with the
// authoritative toggle result or rolls it back on failure.
func (h *Handler) toggleLike(ctx context.Context, session *Session, photoID, userID uuid.UUID) {
	delta := 1
	if session.IsLiked(photoID) {
		delta = -1
	}
	session.ApplyOptimisticLike(photoID, delta)

	go func() {
		callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		liked, count, err := h.likes.Toggle(callCtx, photoID, userID)
		if err != nil {
			log.Warn().Err(err).Str("photo_id", photoID.String()).Msg("Like toggle failed")
			session.RollbackLike(photoID)
			return
		}
		session.ResolveLike(photoID, liked, count)
	}()
}
