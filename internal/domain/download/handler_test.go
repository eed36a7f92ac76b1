package download

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/livedrop/livedrop-api/internal/domain/photo"
	"github.com/livedrop/livedrop-api/internal/pkg/archive"
)

func newTestRouter(svc *Service) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/download/{slug}", NewHandler(svc).Download)
	return r
}

func TestDownloadEndpointStreamsZip(t *testing.T) {
	photos := []*photo.Photo{
		catalogPhotoAt(time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)),
	}
	svc, _ := newTestService(photos)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/download/summer", strings.NewReader(`{"download_all":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("expected application/zip, got %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, ".zip") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("response is not a zip: %v", err)
	}
	if len(zr.File) != 1 {
		t.Fatalf("expected 1 zip entry, got %d", len(zr.File))
	}
}

func TestDownloadEndpointUnknownEventIs404(t *testing.T) {
	catalog := &fakeCatalog{}
	builder := archive.NewBuilder(staticFetcher{}, 4, time.Second)
	svc := NewService(&fakeResolver{}, catalog, builder)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/download/nope", strings.NewReader(`{"download_all":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDownloadEndpointNoMatchesIs404(t *testing.T) {
	svc, _ := newTestService(nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/download/summer", strings.NewReader(`{"download_all":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDownloadEndpointBadDateIsRejected(t *testing.T) {
	svc, _ := newTestService(nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/download/summer", strings.NewReader(`{"date_from":"not-a-date"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestDownloadEndpointEmptyFilterIs400(t *testing.T) {
	svc, _ := newTestService(nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/download/summer", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
