package gallery

import (
	"testing"

	"github.com/livedrop/livedrop-api/internal/pkg/validator"
)

func TestInboundMessageSortValidation(t *testing.T) {
	cases := []struct {
		name string
		msg  inboundMessage
		ok   bool
	}{
		{"newest", inboundMessage{Type: "set_sort", Sort: SortNewest}, true},
		{"popular", inboundMessage{Type: "set_sort", Sort: SortPopular}, true},
		{"empty sort allowed", inboundMessage{Type: "toggle_like"}, true},
		{"unknown mode rejected", inboundMessage{Type: "set_sort", Sort: SortMode("oldest")}, false},
		{"missing type rejected", inboundMessage{Sort: SortNewest}, false},
	}

	for _, tc := range cases {
		errs := validator.Validate(&tc.msg)
		if tc.ok && errs != nil {
			t.Fatalf("%s: unexpected validation errors: %v", tc.name, errs)
		}
		if !tc.ok && errs == nil {
			t.Fatalf("%s: expected validation errors, got none", tc.name)
		}
	}
}
