package gallery

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/livedrop/livedrop-api/internal/domain/feed"
	"github.com/livedrop/livedrop-api/internal/domain/photo"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testPhoto(id uuid.UUID, createdAt time.Time, likes int) *photo.Photo {
	return &photo.Photo{
		ID:        id,
		EventID:   uuid.New(),
		IsVisible: true,
		LikeCount: likes,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func viewIDs(s *Session) []uuid.UUID {
	view := s.SortedView()
	ids := make([]uuid.UUID, len(view))
	for i, v := range view {
		ids[i] = v.ID
	}
	return ids
}

func insertedEvent(p *photo.Photo) feed.Event {
	return feed.Event{Stream: feed.StreamPhotos, Kind: feed.KindInserted, Photo: p, PhotoID: p.ID}
}

func TestApplyInsertedIsIdempotent(t *testing.T) {
	s := NewSession(uuid.New())
	p := testPhoto(uuid.New(), baseTime, 0)

	s.Apply(insertedEvent(p))
	s.Apply(insertedEvent(p))

	if got := len(s.SortedView()); got != 1 {
		t.Fatalf("expected 1 entry after duplicate insert, got %d", got)
	}
}

func TestDeleteWinsOverStaleInsert(t *testing.T) {
	s := NewSession(uuid.New())
	p := testPhoto(uuid.New(), baseTime, 0)

	s.Apply(insertedEvent(p))
	s.Apply(feed.Event{Stream: feed.StreamPhotos, Kind: feed.KindDeleted, PhotoID: p.ID})

	// late duplicate of the original insert, same row timestamp
	s.Apply(insertedEvent(p))

	if got := len(s.SortedView()); got != 0 {
		t.Fatalf("stale insert resurrected a deleted photo, view has %d entries", got)
	}
}

func TestStalePollDoesNotResurrectDeleted(t *testing.T) {
	s := NewSession(uuid.New())
	p := testPhoto(uuid.New(), baseTime, 0)

	s.Seed([]*photo.Photo{p})
	s.Apply(feed.Event{Stream: feed.StreamPhotos, Kind: feed.KindDeleted, PhotoID: p.ID})

	// poll result fetched before the delete landed
	s.ApplyPollRefresh([]*photo.Photo{p})

	if got := len(s.SortedView()); got != 0 {
		t.Fatalf("stale poll resurrected a deleted photo, view has %d entries", got)
	}
}

func TestUpdatedTogglesVisibility(t *testing.T) {
	s := NewSession(uuid.New())
	p := testPhoto(uuid.New(), baseTime, 0)

	// updated with visible=true on an absent photo inserts it
	s.Apply(feed.Event{Stream: feed.StreamPhotos, Kind: feed.KindUpdated, Photo: p, PhotoID: p.ID})
	if got := len(s.SortedView()); got != 1 {
		t.Fatalf("expected insert on visible update, got %d entries", got)
	}

	hidden := *p
	hidden.IsVisible = false
	s.Apply(feed.Event{Stream: feed.StreamPhotos, Kind: feed.KindUpdated, Photo: &hidden, PhotoID: p.ID})
	if got := len(s.SortedView()); got != 0 {
		t.Fatalf("expected removal on invisible update, got %d entries", got)
	}
}

func TestUnknownUpdateAndDeleteAreNoOps(t *testing.T) {
	s := NewSession(uuid.New())

	s.Apply(feed.Event{Stream: feed.StreamPhotos, Kind: feed.KindDeleted, PhotoID: uuid.New()})
	hidden := testPhoto(uuid.New(), baseTime, 0)
	hidden.IsVisible = false
	s.Apply(feed.Event{Stream: feed.StreamPhotos, Kind: feed.KindUpdated, Photo: hidden, PhotoID: hidden.ID})

	if got := len(s.SortedView()); got != 0 {
		t.Fatalf("expected empty view, got %d entries", got)
	}
}

func TestOverlaySurvivesPollRefresh(t *testing.T) {
	userID := uuid.New()
	s := NewSession(userID)
	p := testPhoto(uuid.New(), baseTime, 3)

	s.Seed([]*photo.Photo{p})
	s.ApplyOptimisticLike(p.ID, +1)

	// poll returns the authoritative count, toggle not yet confirmed
	s.ApplyPollRefresh([]*photo.Photo{p})

	view := s.SortedView()
	if len(view) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(view))
	}
	if view[0].LikeCount != 4 {
		t.Fatalf("expected overlayed count 4 after poll, got %d", view[0].LikeCount)
	}
	if !view[0].LikedByMe {
		t.Fatalf("expected liked_by_me after optimistic toggle")
	}

	// authoritative response settles the overlay
	s.ResolveLike(p.ID, true, 4)
	view = s.SortedView()
	if view[0].LikeCount != 4 {
		t.Fatalf("expected resolved count 4, got %d", view[0].LikeCount)
	}
}

func TestRollbackRestoresCount(t *testing.T) {
	s := NewSession(uuid.New())
	p := testPhoto(uuid.New(), baseTime, 3)

	s.Seed([]*photo.Photo{p})
	s.ApplyOptimisticLike(p.ID, +1)
	s.RollbackLike(p.ID)

	view := s.SortedView()
	if view[0].LikeCount != 3 {
		t.Fatalf("expected count back to 3 after rollback, got %d", view[0].LikeCount)
	}
	if view[0].LikedByMe {
		t.Fatalf("expected liked_by_me cleared after rollback")
	}
}

func TestFeedEchoAfterResolveDoesNotDoubleCount(t *testing.T) {
	userID := uuid.New()
	s := NewSession(userID)
	p := testPhoto(uuid.New(), baseTime, 0)

	s.Seed([]*photo.Photo{p})
	s.ApplyOptimisticLike(p.ID, +1)
	s.ResolveLike(p.ID, true, 1)

	// the feed now echoes the toggle we already settled
	s.Apply(feed.Event{Stream: feed.StreamLikes, Kind: feed.KindInserted, PhotoID: p.ID, UserID: userID})

	view := s.SortedView()
	if view[0].LikeCount != 1 {
		t.Fatalf("expected count 1 after echo, got %d", view[0].LikeCount)
	}
}

func TestFeedConfirmBeforeResolveHoldsDisplayedCount(t *testing.T) {
	userID := uuid.New()
	s := NewSession(userID)
	p := testPhoto(uuid.New(), baseTime, 0)

	s.Seed([]*photo.Photo{p})
	s.ApplyOptimisticLike(p.ID, +1)

	// feed event for our own toggle lands before the direct response
	s.Apply(feed.Event{Stream: feed.StreamLikes, Kind: feed.KindInserted, PhotoID: p.ID, UserID: userID})

	view := s.SortedView()
	if view[0].LikeCount != 1 {
		t.Fatalf("expected count 1 when feed confirms pending overlay, got %d", view[0].LikeCount)
	}
}

func TestOtherUsersLikesAdjustCounts(t *testing.T) {
	s := NewSession(uuid.New())
	p := testPhoto(uuid.New(), baseTime, 1)

	s.Seed([]*photo.Photo{p})
	other := uuid.New()
	s.Apply(feed.Event{Stream: feed.StreamLikes, Kind: feed.KindInserted, PhotoID: p.ID, UserID: other})
	s.Apply(feed.Event{Stream: feed.StreamComments, Kind: feed.KindInserted, PhotoID: p.ID, UserID: other})

	view := s.SortedView()
	if view[0].LikeCount != 2 {
		t.Fatalf("expected like count 2, got %d", view[0].LikeCount)
	}
	if view[0].CommentCount != 1 {
		t.Fatalf("expected comment count 1, got %d", view[0].CommentCount)
	}
	if view[0].LikedByMe {
		t.Fatalf("another user's like must not set liked_by_me")
	}
}

func TestPopularSortIsDeterministic(t *testing.T) {
	s := NewSession(uuid.New())
	a := testPhoto(uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000"), baseTime, 2)
	b := testPhoto(uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000"), baseTime, 2)
	c := testPhoto(uuid.New(), baseTime.Add(time.Minute), 2)
	d := testPhoto(uuid.New(), baseTime, 5)

	s.Seed([]*photo.Photo{a, b, c, d})
	s.SetSort(SortPopular)

	want := []uuid.UUID{d.ID, c.ID, a.ID, b.ID}
	for i := 0; i < 5; i++ {
		got := viewIDs(s)
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("run %d: position %d: expected %s, got %s", i, j, want[j], got[j])
			}
		}
	}
}

func TestEndToEndSeedFeedPoll(t *testing.T) {
	s := NewSession(uuid.New())
	s.Seed(nil)

	p1 := testPhoto(uuid.New(), baseTime, 0)
	p2 := testPhoto(uuid.New(), baseTime.Add(time.Minute), 0)
	s.Apply(insertedEvent(p1))
	s.Apply(insertedEvent(p2))

	got := viewIDs(s)
	if len(got) != 2 || got[0] != p2.ID || got[1] != p1.ID {
		t.Fatalf("expected [p2 p1] after inserts, got %v", got)
	}

	hidden := *p1
	hidden.IsVisible = false
	s.Apply(feed.Event{Stream: feed.StreamPhotos, Kind: feed.KindUpdated, Photo: &hidden, PhotoID: p1.ID})

	got = viewIDs(s)
	if len(got) != 1 || got[0] != p2.ID {
		t.Fatalf("expected [p2] after hide, got %v", got)
	}

	// poll reveals p3, inserted while the feed was down
	p3 := testPhoto(uuid.New(), baseTime.Add(2*time.Minute), 0)
	s.ApplyPollRefresh([]*photo.Photo{p2, p3})

	got = viewIDs(s)
	if len(got) != 2 || got[0] != p3.ID || got[1] != p2.ID {
		t.Fatalf("expected [p3 p2] after poll, got %v", got)
	}
}

func TestConnStateFollowsFeedStatus(t *testing.T) {
	s := NewSession(uuid.New())
	if s.ConnState() != feed.StatusDisconnected {
		t.Fatalf("expected disconnected at start, got %s", s.ConnState())
	}
	s.SetConnState(feed.StatusConnecting)
	s.SetConnState(feed.StatusConnected)
	if s.ConnState() != feed.StatusConnected {
		t.Fatalf("expected connected, got %s", s.ConnState())
	}
}

func TestChangesCoalesce(t *testing.T) {
	s := NewSession(uuid.New())
	for i := 0; i < 10; i++ {
		s.Apply(insertedEvent(testPhoto(uuid.New(), baseTime.Add(time.Duration(i)*time.Second), 0)))
	}

	select {
	case <-s.Changes():
	default:
		t.Fatalf("expected a pending change notification")
	}
	select {
	case <-s.Changes():
		t.Fatalf("expected notifications to coalesce into one")
	default:
	}
}

func TestConcurrentFeedAndPoll(t *testing.T) {
	s := NewSession(uuid.New())
	photos := make([]*photo.Photo, 20)
	for i := range photos {
		photos[i] = testPhoto(uuid.New(), baseTime.Add(time.Duration(i)*time.Second), 0)
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for _, p := range photos {
			s.Apply(insertedEvent(p))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			s.ApplyPollRefresh(photos)
		}
	}()
	go func() {
		defer wg.Done()
		for _, p := range photos {
			s.Apply(feed.Event{Stream: feed.StreamLikes, Kind: feed.KindInserted, PhotoID: p.ID, UserID: uuid.New()})
		}
	}()
	wg.Wait()

	if got := len(s.SortedView()); got != len(photos) {
		t.Fatalf("expected %d entries after concurrent ingest, got %d", len(photos), got)
	}
}
