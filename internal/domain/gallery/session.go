package gallery

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/livedrop/livedrop-api/internal/domain/feed"
	"github.com/livedrop/livedrop-api/internal/domain/photo"
)

// SortMode orders the gallery view
type SortMode string

const (
	SortNewest  SortMode = "newest"
	SortPopular SortMode = "popular"
)

const (
	tombstoneTTL = 5 * time.Minute
	// resolvedTTL shields a just-confirmed like toggle from its own
	// feed echo so the count is not adjusted twice.
	resolvedTTL = 10 * time.Second
)

type overlayKey struct {
	photoID uuid.UUID
	userID  uuid.UUID
}

// ViewPhoto is one gallery entry as the client should see it: the
// authoritative row with any pending like overlay already applied.
type ViewPhoto struct {
	photo.Photo
	LikedByMe bool `json:"liked_by_me"`
}

// Session holds the reconciled photo state for one live client.
// Three inputs race into it: the seed snapshot, push feed events, and
// the periodic poll refresh. All mutations are serialized behind one
// mutex so a stale poll can never resurrect a deleted photo or drop a
// newer insert.
type Session struct {
	mu     sync.Mutex
	userID uuid.UUID

	order []uuid.UUID
	byID  map[uuid.UUID]photo.Photo

	// tombstones remember observed deletes so a late duplicate insert
	// with an older row timestamp is dropped instead of resurrected.
	tombstones map[uuid.UUID]time.Time

	// overlays hold the user's own unconfirmed like toggles as
	// view-time deltas, keyed by (photo, user). They survive poll
	// full-replaces because they are never baked into byID.
	overlays map[overlayKey]int

	// resolved marks (photo, user) pairs whose toggle already came
	// back from the direct call, so the feed echo is a no-op.
	resolved map[overlayKey]time.Time

	likedByMe map[uuid.UUID]bool

	sortMode SortMode
	state    feed.Status

	changes chan struct{}

	now func() time.Time
}

// NewSession creates session state for one viewer
func NewSession(userID uuid.UUID) *Session {
	return &Session{
		userID:     userID,
		byID:       make(map[uuid.UUID]photo.Photo),
		tombstones: make(map[uuid.UUID]time.Time),
		overlays:   make(map[overlayKey]int),
		resolved:   make(map[overlayKey]time.Time),
		likedByMe:  make(map[uuid.UUID]bool),
		sortMode:   SortNewest,
		state:      feed.StatusDisconnected,
		changes:    make(chan struct{}, 1),
		now:        time.Now,
	}
}

// Changes signals after each mutation. The channel is coalescing:
// multiple mutations between reads collapse into one wakeup.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

func (s *Session) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Seed installs the initial snapshot, replacing everything
func (s *Session) Seed(photos []*photo.Photo) {
	s.mu.Lock()
	s.replace(photos)
	s.mu.Unlock()
	s.notify()
}

// SeedLiked installs the user's pre-existing likes
func (s *Session) SeedLiked(photoIDs []uuid.UUID) {
	s.mu.Lock()
	for _, id := range photoIDs {
		s.likedByMe[id] = true
	}
	s.mu.Unlock()
	s.notify()
}

// replace swaps the whole collection. Caller holds the lock.
func (s *Session) replace(photos []*photo.Photo) {
	s.order = s.order[:0]
	s.byID = make(map[uuid.UUID]photo.Photo, len(photos))
	for _, p := range photos {
		if _, dead := s.tombstones[p.ID]; dead {
			continue
		}
		if _, dup := s.byID[p.ID]; dup {
			continue
		}
		s.byID[p.ID] = *p
		s.order = append(s.order, p.ID)
	}
}

// Apply merges one feed event. Events are idempotent: duplicates,
// reordering and references to unknown ids are all tolerated.
func (s *Session) Apply(ev feed.Event) {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.notify()
	}()

	s.prune()

	switch ev.Stream {
	case feed.StreamPhotos:
		s.applyPhoto(ev)
	case feed.StreamLikes:
		s.applyLike(ev)
	case feed.StreamComments:
		s.applyComment(ev)
	}
}

func (s *Session) applyPhoto(ev feed.Event) {
	switch ev.Kind {
	case feed.KindInserted, feed.KindUpdated:
		if ev.Photo == nil {
			return
		}
		p := *ev.Photo
		if !p.IsVisible {
			s.remove(p.ID)
			return
		}
		if deletedAt, dead := s.tombstones[p.ID]; dead {
			if !p.UpdatedAt.After(deletedAt) {
				// stale insert racing a delete we already saw
				return
			}
			delete(s.tombstones, p.ID)
		}
		if _, present := s.byID[p.ID]; present {
			s.byID[p.ID] = p
			return
		}
		// newly visible photos go to the front
		s.byID[p.ID] = p
		s.order = append([]uuid.UUID{p.ID}, s.order...)

	case feed.KindDeleted:
		s.tombstones[ev.PhotoID] = s.now()
		s.remove(ev.PhotoID)
	}
}

func (s *Session) applyLike(ev feed.Event) {
	key := overlayKey{photoID: ev.PhotoID, userID: ev.UserID}

	if ev.UserID == s.userID {
		if at, ok := s.resolved[key]; ok && s.now().Sub(at) < resolvedTTL {
			// echo of a toggle already settled by the direct call
			delete(s.resolved, key)
			return
		}
		// feed beat the direct response: the count adjustment below
		// replaces the overlay, so the displayed value holds steady
		delete(s.overlays, key)
		s.likedByMe[ev.PhotoID] = ev.Kind == feed.KindInserted
	}

	p, ok := s.byID[ev.PhotoID]
	if !ok {
		return
	}
	switch ev.Kind {
	case feed.KindInserted:
		p.LikeCount++
	case feed.KindDeleted:
		if p.LikeCount > 0 {
			p.LikeCount--
		}
	}
	s.byID[ev.PhotoID] = p
}

func (s *Session) applyComment(ev feed.Event) {
	if ev.Kind != feed.KindInserted {
		return
	}
	p, ok := s.byID[ev.PhotoID]
	if !ok {
		return
	}
	p.CommentCount++
	s.byID[ev.PhotoID] = p
}

// ApplyPollRefresh installs the authoritative visible set from the
// periodic poll. Tombstoned ids stay out; like overlays are untouched
// so an unconfirmed toggle never visibly regresses.
func (s *Session) ApplyPollRefresh(photos []*photo.Photo) {
	s.mu.Lock()
	s.prune()
	sorted := make([]*photo.Photo, len(photos))
	copy(sorted, photos)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})
	s.replace(sorted)
	s.mu.Unlock()
	s.notify()
}

// ApplyOptimisticLike records the user's own toggle as a pending
// view-time delta (+1 like, -1 unlike) before the server confirms it.
func (s *Session) ApplyOptimisticLike(photoID uuid.UUID, delta int) {
	s.mu.Lock()
	key := overlayKey{photoID: photoID, userID: s.userID}
	s.overlays[key] = delta
	s.likedByMe[photoID] = delta > 0
	s.mu.Unlock()
	s.notify()
}

// ResolveLike settles an optimistic toggle with the authoritative
// response: the overlay is dropped and the true count installed.
func (s *Session) ResolveLike(photoID uuid.UUID, liked bool, count int) {
	s.mu.Lock()
	key := overlayKey{photoID: photoID, userID: s.userID}
	delete(s.overlays, key)
	s.resolved[key] = s.now()
	s.likedByMe[photoID] = liked
	if p, ok := s.byID[photoID]; ok {
		p.LikeCount = count
		s.byID[photoID] = p
	}
	s.mu.Unlock()
	s.notify()
}

// RollbackLike reverts a toggle whose network call failed
func (s *Session) RollbackLike(photoID uuid.UUID) {
	s.mu.Lock()
	key := overlayKey{photoID: photoID, userID: s.userID}
	if delta, ok := s.overlays[key]; ok {
		delete(s.overlays, key)
		s.likedByMe[photoID] = delta < 0
	}
	s.mu.Unlock()
	s.notify()
}

// SetSort changes the view ordering
func (s *Session) SetSort(mode SortMode) {
	s.mu.Lock()
	s.sortMode = mode
	s.mu.Unlock()
	s.notify()
}

// SetConnState records feed connectivity. Driven only by the feed's
// status callback; seed and poll data apply regardless of state.
func (s *Session) SetConnState(status feed.Status) {
	s.mu.Lock()
	s.state = status
	s.mu.Unlock()
	s.notify()
}

// ConnState returns current feed connectivity
func (s *Session) ConnState() feed.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Sort returns the active sort mode
func (s *Session) Sort() SortMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortMode
}

// SortedView renders the collection under the session's sort mode with
// overlays applied. The slice is a copy; callers own it.
func (s *Session) SortedView() []ViewPhoto {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := make([]ViewPhoto, 0, len(s.order))
	for _, id := range s.order {
		p := s.byID[id]
		if delta, ok := s.overlays[overlayKey{photoID: id, userID: s.userID}]; ok {
			p.LikeCount += delta
			if p.LikeCount < 0 {
				p.LikeCount = 0
			}
		}
		view = append(view, ViewPhoto{Photo: p, LikedByMe: s.likedByMe[id]})
	}

	switch s.sortMode {
	case SortPopular:
		sort.SliceStable(view, func(i, j int) bool {
			if view[i].LikeCount != view[j].LikeCount {
				return view[i].LikeCount > view[j].LikeCount
			}
			if !view[i].CreatedAt.Equal(view[j].CreatedAt) {
				return view[i].CreatedAt.After(view[j].CreatedAt)
			}
			return view[i].ID.String() < view[j].ID.String()
		})
	default:
		sort.SliceStable(view, func(i, j int) bool {
			if !view[i].CreatedAt.Equal(view[j].CreatedAt) {
				return view[i].CreatedAt.After(view[j].CreatedAt)
			}
			return view[i].ID.String() < view[j].ID.String()
		})
	}
	return view
}

// IsLiked reports whether the session user has liked photoID,
// including any pending optimistic toggle.
func (s *Session) IsLiked(photoID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likedByMe[photoID]
}

// remove drops one entry. Absence is fine. Caller holds the lock.
func (s *Session) remove(id uuid.UUID) {
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// prune drops expired tombstones and resolved markers.
// Caller holds the lock.
func (s *Session) prune() {
	now := s.now()
	for id, at := range s.tombstones {
		if now.Sub(at) > tombstoneTTL {
			delete(s.tombstones, id)
		}
	}
	for key, at := range s.resolved {
		if now.Sub(at) > resolvedTTL {
			delete(s.resolved, key)
		}
	}
}
