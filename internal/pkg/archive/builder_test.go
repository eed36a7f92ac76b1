package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeFetcher struct {
	objects map[string][]byte
	delays  map[string]time.Duration
	failing map[string]bool
}

func (f *fakeFetcher) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if d, ok := f.delays[key]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.failing[key] {
		return nil, errors.New("fetch failed")
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	files := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		files[f.Name] = content
	}
	return files
}

func TestBuildNamingIsStableAcrossCompletionOrder(t *testing.T) {
	// The first record completes last; names must still follow input order.
	fetcher := &fakeFetcher{
		objects: map[string][]byte{
			"evt/a.jpg": []byte("first"),
			"evt/b.png": []byte("second"),
		},
		delays: map[string]time.Duration{
			"evt/a.jpg": 50 * time.Millisecond,
		},
	}

	records := []Record{
		{ID: uuid.New(), StorageKey: "evt/a.jpg", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), StorageKey: "evt/b.png", CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	builder := NewBuilder(fetcher, 4, time.Second)
	result, err := builder.Build(context.Background(), records, "wedding")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	files := readArchive(t, result.Bytes)
	if got := files["wedding/2024-01-01T00-00-00_001.jpg"]; string(got) != "first" {
		t.Errorf("entry 001 = %q, want %q", got, "first")
	}
	if got := files["wedding/2024-01-02T00-00-00_002.png"]; string(got) != "second" {
		t.Errorf("entry 002 = %q, want %q", got, "second")
	}

	if result.Entries[0].Name != "2024-01-01T00-00-00_001.jpg" {
		t.Errorf("entry[0].Name = %q", result.Entries[0].Name)
	}
	if result.Entries[1].Name != "2024-01-02T00-00-00_002.png" {
		t.Errorf("entry[1].Name = %q", result.Entries[1].Name)
	}
}

func TestBuildToleratesPartialFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		objects: map[string][]byte{},
		failing: map[string]bool{},
	}

	records := make([]Record, 5)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range records {
		key := "evt/photo-" + string(rune('a'+i)) + ".jpg"
		records[i] = Record{ID: uuid.New(), StorageKey: key, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if i == 1 || i == 3 {
			fetcher.failing[key] = true
		} else {
			fetcher.objects[key] = []byte("data")
		}
	}

	builder := NewBuilder(fetcher, 4, time.Second)
	result, err := builder.Build(context.Background(), records, "party")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if result.Included != 3 {
		t.Errorf("Included = %d, want 3", result.Included)
	}

	failed := 0
	for _, e := range result.Entries {
		if e.Outcome == OutcomeFetchFailed {
			failed++
		}
	}
	if failed != 2 {
		t.Errorf("fetch_failed entries = %d, want 2", failed)
	}

	files := readArchive(t, result.Bytes)
	if len(files) != 3 {
		t.Errorf("archive entries = %d, want 3", len(files))
	}
}

func TestBuildFailsWhenNothingFetched(t *testing.T) {
	fetcher := &fakeFetcher{failing: map[string]bool{}}

	records := make([]Record, 5)
	for i := range records {
		key := "evt/gone-" + string(rune('a'+i)) + ".jpg"
		records[i] = Record{ID: uuid.New(), StorageKey: key, CreatedAt: time.Now()}
		fetcher.failing[key] = true
	}

	builder := NewBuilder(fetcher, 4, time.Second)
	_, err := builder.Build(context.Background(), records, "party")
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
}

func TestEntryNameDefaultsExtension(t *testing.T) {
	name := entryName(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), 12, "evt/no-extension")
	if name != "2024-05-06T07-08-09_012.jpg" {
		t.Errorf("name = %q", name)
	}
}

func TestBuildFallsBackToGenericFolder(t *testing.T) {
	fetcher := &fakeFetcher{objects: map[string][]byte{"k.jpg": []byte("x")}}
	builder := NewBuilder(fetcher, 1, time.Second)

	result, err := builder.Build(context.Background(), []Record{
		{ID: uuid.New(), StorageKey: "k.jpg", CreatedAt: time.Now()},
	}, "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	files := readArchive(t, result.Bytes)
	for name := range files {
		if !strings.HasPrefix(name, "photos/") {
			t.Errorf("entry %q not under photos/", name)
		}
	}
}

func TestFileName(t *testing.T) {
	got := FileName("Summer Party!", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), 42)
	want := "Summer Party-_2024-06-01_42-photos.zip"
	if got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}
