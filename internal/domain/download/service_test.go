package download

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/livedrop/livedrop-api/internal/domain/photo"
	"github.com/livedrop/livedrop-api/internal/pkg/archive"
)

type fakeResolver struct {
	event *EventInfo
}

func (f *fakeResolver) ResolveBySlug(_ context.Context, slug string) (*EventInfo, error) {
	if f.event == nil {
		return nil, nil
	}
	return f.event, nil
}

type fakeCatalog struct {
	mu     sync.Mutex
	photos []*photo.Photo
	counts map[uuid.UUID]int
}

func (f *fakeCatalog) ListByIDs(_ context.Context, _ uuid.UUID, ids []uuid.UUID) ([]*photo.Photo, error) {
	var out []*photo.Photo
	for _, p := range f.photos {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListByEventRange(_ context.Context, _ uuid.UUID, from, to *time.Time) ([]*photo.Photo, error) {
	var out []*photo.Photo
	for _, p := range f.photos {
		if from != nil && p.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !p.CreatedAt.Before(*to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) IncrementDownloadCount(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = make(map[uuid.UUID]int)
	}
	f.counts[id]++
	return nil
}

type staticFetcher struct{}

func (staticFetcher) Get(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("blob:" + key)), nil
}

func catalogPhotoAt(created time.Time) *photo.Photo {
	return &photo.Photo{
		ID:          uuid.New(),
		StoragePath: "evt/" + uuid.New().String() + ".jpg",
		CreatedAt:   created,
	}
}

func newTestService(photos []*photo.Photo) (*Service, *fakeCatalog) {
	catalog := &fakeCatalog{photos: photos}
	resolver := &fakeResolver{event: &EventInfo{ID: uuid.New(), Name: "Summer Party"}}
	builder := archive.NewBuilder(staticFetcher{}, 4, time.Second)
	return NewService(resolver, catalog, builder), catalog
}

func TestDownloadAll(t *testing.T) {
	photos := []*photo.Photo{
		catalogPhotoAt(time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)),
		catalogPhotoAt(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)),
	}
	svc, _ := newTestService(photos)

	result, err := svc.Download(context.Background(), "summer", &DownloadRequest{DownloadAll: true})
	if err != nil {
		t.Fatalf("download all: %v", err)
	}
	if result.Included != 2 {
		t.Fatalf("expected 2 included, got %d", result.Included)
	}
	if !strings.HasSuffix(result.FileName, "_2-photos.zip") {
		t.Fatalf("unexpected archive name %q", result.FileName)
	}
}

func TestDownloadByIDs(t *testing.T) {
	photos := []*photo.Photo{
		catalogPhotoAt(time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)),
		catalogPhotoAt(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)),
		catalogPhotoAt(time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC)),
	}
	svc, _ := newTestService(photos)

	result, err := svc.Download(context.Background(), "summer", &DownloadRequest{
		PhotoIDs: []uuid.UUID{photos[0].ID, photos[2].ID},
	})
	if err != nil {
		t.Fatalf("download by ids: %v", err)
	}
	if result.Included != 2 {
		t.Fatalf("expected 2 included, got %d", result.Included)
	}
}

func TestDateToIncludesWholeEndDay(t *testing.T) {
	inside := catalogPhotoAt(time.Date(2024, 1, 5, 23, 59, 59, 0, time.UTC))
	outside := catalogPhotoAt(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC))
	svc, _ := newTestService([]*photo.Photo{inside, outside})

	result, err := svc.Download(context.Background(), "summer", &DownloadRequest{
		DownloadAll: true,
		DateTo:      "2024-01-05",
	})
	if err != nil {
		t.Fatalf("ranged download: %v", err)
	}
	if result.Included != 1 {
		t.Fatalf("expected only the end-day photo, got %d", result.Included)
	}
}

func TestDateBoundsNarrowExplicitIDs(t *testing.T) {
	early := catalogPhotoAt(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	late := catalogPhotoAt(time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC))
	svc, _ := newTestService([]*photo.Photo{early, late})

	result, err := svc.Download(context.Background(), "summer", &DownloadRequest{
		PhotoIDs: []uuid.UUID{early.ID, late.ID},
		DateFrom: "2024-01-05",
	})
	if err != nil {
		t.Fatalf("narrowed download: %v", err)
	}
	if result.Included != 1 {
		t.Fatalf("expected date bound to drop the early photo, got %d", result.Included)
	}
}

func TestDownloadNoMatches(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Download(context.Background(), "summer", &DownloadRequest{DownloadAll: true})
	if !errors.Is(err, ErrNoPhotosFound) {
		t.Fatalf("expected ErrNoPhotosFound, got %v", err)
	}
}

func TestDownloadUnknownEvent(t *testing.T) {
	catalog := &fakeCatalog{}
	builder := archive.NewBuilder(staticFetcher{}, 4, time.Second)
	svc := NewService(&fakeResolver{}, catalog, builder)

	_, err := svc.Download(context.Background(), "nope", &DownloadRequest{DownloadAll: true})
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestDownloadEmptyFilterRejected(t *testing.T) {
	svc, _ := newTestService([]*photo.Photo{catalogPhotoAt(time.Now())})

	_, err := svc.Download(context.Background(), "summer", &DownloadRequest{})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestDownloadRecordsTelemetry(t *testing.T) {
	photos := []*photo.Photo{
		catalogPhotoAt(time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)),
		catalogPhotoAt(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)),
	}
	svc, catalog := newTestService(photos)

	if _, err := svc.Download(context.Background(), "summer", &DownloadRequest{DownloadAll: true}); err != nil {
		t.Fatalf("download: %v", err)
	}

	// increments are fire-and-forget; give them a moment
	deadline := time.Now().Add(time.Second)
	for {
		catalog.mu.Lock()
		done := len(catalog.counts) == 2
		catalog.mu.Unlock()
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("download counters never recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
