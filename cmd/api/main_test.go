package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

// The router registers explicit /events/{slug}/... paths next to the
// mounted /events subrouter; chi panics at registration time if such a
// mix conflicts, so build the same layout and exercise both sides.
func TestEventRoutesCoexistWithMount(t *testing.T) {
	okHandler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	sub := chi.NewRouter()
	sub.Get("/{slug}", okHandler)
	sub.Post("/{slug}/join", okHandler)
	sub.Delete("/{slug}", okHandler)

	root := chi.NewRouter()
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				t.Fatalf("registering event routes panicked: %v", rec)
			}
		}()
		root.Mount("/events", sub)
		root.Get("/events/{slug}/photos", okHandler)
		root.Get("/events/{slug}/stats", okHandler)
	}()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/events/summer-party"},
		{http.MethodPost, "/events/summer-party/join"},
		{http.MethodGet, "/events/summer-party/photos"},
		{http.MethodGet, "/events/summer-party/stats"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rr := httptest.NewRecorder()
		root.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200, got %d", tc.method, tc.path, rr.Code)
		}
	}
}
