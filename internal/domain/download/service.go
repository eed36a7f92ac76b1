package download

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/livedrop/livedrop-api/internal/domain/photo"
	"github.com/livedrop/livedrop-api/internal/pkg/archive"
)

// EventInfo is the slice of an event a download needs
type EventInfo struct {
	ID   uuid.UUID
	Name string
}

// EventResolver maps a public slug to event info
type EventResolver interface {
	ResolveBySlug(ctx context.Context, slug string) (*EventInfo, error)
}

// PhotoCatalog queries the photo rows behind a filter and records
// download telemetry. Satisfied by the photo repository.
type PhotoCatalog interface {
	ListByIDs(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]*photo.Photo, error)
	ListByEventRange(ctx context.Context, eventID uuid.UUID, from, to *time.Time) ([]*photo.Photo, error)
	IncrementDownloadCount(ctx context.Context, id uuid.UUID) error
}

// Result is a finished archive ready to stream
type Result struct {
	Bytes    []byte
	FileName string
	Included int
	Total    int
}

// Service resolves download filters and builds archives
type Service struct {
	events  EventResolver
	catalog PhotoCatalog
	builder *archive.Builder
}

// NewService creates download service
func NewService(events EventResolver, catalog PhotoCatalog, builder *archive.Builder) *Service {
	return &Service{events: events, catalog: catalog, builder: builder}
}

// Download resolves the filter against the event's catalog, builds the
// archive, and fires download-count increments without blocking the
// response.
func (s *Service) Download(ctx context.Context, slug string, req *DownloadRequest) (*Result, error) {
	event, err := s.events.ResolveBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	from, to, err := parseDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, ErrInvalidRequest
	}

	records, err := s.resolve(ctx, event.ID, req, from, to)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoPhotosFound
	}

	result, err := s.builder.Build(ctx, records, event.Name)
	if err != nil {
		return nil, err
	}

	s.recordDownloads(result.Entries)

	return &Result{
		Bytes:    result.Bytes,
		FileName: archive.FileName(event.Name, time.Now(), result.Included),
		Included: result.Included,
		Total:    len(records),
	}, nil
}

func (s *Service) resolve(ctx context.Context, eventID uuid.UUID, req *DownloadRequest, from, to *time.Time) ([]archive.Record, error) {
	var (
		rows []*photo.Photo
		err  error
	)

	switch {
	case len(req.PhotoIDs) > 0:
		rows, err = s.catalog.ListByIDs(ctx, eventID, req.PhotoIDs)
		if err != nil {
			return nil, err
		}
		rows = filterByRange(rows, from, to)

	case req.DownloadAll || from != nil || to != nil:
		rows, err = s.catalog.ListByEventRange(ctx, eventID, from, to)
		if err != nil {
			return nil, err
		}

	default:
		return nil, ErrInvalidRequest
	}

	records := make([]archive.Record, len(rows))
	for i, p := range rows {
		records[i] = archive.Record{ID: p.ID, StorageKey: p.StoragePath, CreatedAt: p.CreatedAt}
	}
	return records, nil
}

// recordDownloads detaches the counter increments from the response
// path; failures are logged and swallowed.
func (s *Service) recordDownloads(entries []archive.Entry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		for _, entry := range entries {
			if entry.Outcome != archive.OutcomeIncluded {
				continue
			}
			if err := s.catalog.IncrementDownloadCount(ctx, entry.ID); err != nil {
				log.Warn().Err(err).
					Str("photo_id", entry.ID.String()).
					Msg("Failed to record download")
			}
		}
	}()
}

// parseDateRange converts the request bounds: from is inclusive at the
// start of its day, to is exclusive at the start of the day after so
// the supplied end date is fully included.
func parseDateRange(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return nil, nil, err
		}
		end := t.AddDate(0, 0, 1)
		to = &end
	}
	return from, to, nil
}

func filterByRange(rows []*photo.Photo, from, to *time.Time) []*photo.Photo {
	if from == nil && to == nil {
		return rows
	}
	filtered := rows[:0]
	for _, p := range rows {
		if from != nil && p.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !p.CreatedAt.Before(*to) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}
