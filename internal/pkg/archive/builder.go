package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrNoContent is returned when no entry could be fetched at all.
// Partial failures do not fail the build; an empty archive does.
var ErrNoContent = errors.New("archive: no entries could be fetched")

// Outcome tags the per-record result of an archive build
type Outcome string

const (
	OutcomeIncluded    Outcome = "included"
	OutcomeFetchFailed Outcome = "fetch_failed"
)

// ObjectFetcher fetches blob payloads by storage key
type ObjectFetcher interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Record is one photo resolved for archiving. The record list is fixed
// before the build starts; entry names derive from input positions.
type Record struct {
	ID         uuid.UUID
	StorageKey string
	CreatedAt  time.Time
}

// Entry is the per-record outcome of a build
type Entry struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Outcome Outcome   `json:"outcome"`
}

// Result holds the finished archive plus per-record outcomes
type Result struct {
	Bytes    []byte
	Entries  []Entry
	Included int
}

// Builder packages photo blobs into a single ZIP archive
type Builder struct {
	fetcher      ObjectFetcher
	concurrency  int
	fetchTimeout time.Duration
}

// NewBuilder creates an archive builder.
// concurrency bounds parallel blob fetches; fetchTimeout bounds each fetch
// so one unreachable object cannot stall the whole batch.
func NewBuilder(fetcher ObjectFetcher, concurrency int, fetchTimeout time.Duration) *Builder {
	if concurrency <= 0 {
		concurrency = 8
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &Builder{
		fetcher:      fetcher,
		concurrency:  concurrency,
		fetchTimeout: fetchTimeout,
	}
}

// Build fetches every record's blob and writes the successful ones into a
// ZIP archive under a single top-level folder named after label. Individual
// fetch failures are recorded, not retried. Only a fully empty result is an
// error.
func (b *Builder) Build(ctx context.Context, records []Record, label string) (*Result, error) {
	payloads := make([][]byte, len(records))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
			defer cancel()

			body, err := b.fetcher.Get(fetchCtx, rec.StorageKey)
			if err != nil {
				log.Warn().Err(err).
					Str("photo_id", rec.ID.String()).
					Str("key", rec.StorageKey).
					Msg("Failed to fetch photo for archive, skipping")
				return nil
			}
			defer body.Close()

			data, err := io.ReadAll(body)
			if err != nil {
				log.Warn().Err(err).
					Str("photo_id", rec.ID.String()).
					Str("key", rec.StorageKey).
					Msg("Failed to read photo body for archive, skipping")
				return nil
			}
			payloads[i] = data
			return nil
		})
	}

	// Fetches never return errors; Wait is a settle barrier, not fail-fast.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	folder := sanitizeLabel(label)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})

	entries := make([]Entry, len(records))
	included := 0

	// Entries are written in input order so naming and archive layout are
	// stable regardless of fetch completion timing.
	for i, rec := range records {
		name := entryName(rec.CreatedAt, i+1, rec.StorageKey)
		if payloads[i] == nil {
			entries[i] = Entry{ID: rec.ID, Name: name, Outcome: OutcomeFetchFailed}
			continue
		}

		w, err := zw.Create(folder + "/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry %s: %w", name, err)
		}
		if _, err := w.Write(payloads[i]); err != nil {
			return nil, fmt.Errorf("failed to write archive entry %s: %w", name, err)
		}

		entries[i] = Entry{ID: rec.ID, Name: name, Outcome: OutcomeIncluded}
		included++
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	if included == 0 {
		return nil, ErrNoContent
	}

	return &Result{
		Bytes:    buf.Bytes(),
		Entries:  entries,
		Included: included,
	}, nil
}

// FileName builds the archive-level download name,
// e.g. "summer-party_2024-06-01_42-photos.zip".
func FileName(label string, t time.Time, included int) string {
	return fmt.Sprintf("%s_%s_%d-photos.zip", sanitizeLabel(label), t.Format("2006-01-02"), included)
}

// entryName derives a deterministic entry file name from the record's
// creation timestamp and its 1-based position in the input order.
// Timestamps are normalized to second precision with filename-safe runes.
func entryName(createdAt time.Time, seq int, storageKey string) string {
	ts := createdAt.UTC().Format("2006-01-02T15-04-05")
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(storageKey)), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s_%03d.%s", ts, seq, ext)
}

// sanitizeLabel cleans an event name for use in file and folder names
func sanitizeLabel(label string) string {
	name := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == ' ' {
			return r
		}
		return '-'
	}, label)
	name = strings.TrimSpace(name)

	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		name = "photos"
	}
	return name
}
