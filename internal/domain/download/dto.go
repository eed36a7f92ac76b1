package download

import "github.com/google/uuid"

// DownloadRequest is the archive filter. Explicit ids scope the result;
// otherwise all of the event's photos are considered. Date bounds apply
// in both cases when given.
type DownloadRequest struct {
	PhotoIDs    []uuid.UUID `json:"photo_ids" validate:"omitempty,max=1000"`
	DateFrom    string      `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo      string      `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
	DownloadAll bool        `json:"download_all"`
}
