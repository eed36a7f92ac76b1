package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/livedrop/livedrop-api/internal/pkg/response"
	"github.com/livedrop/livedrop-api/internal/pkg/token"
)

type contextKey string

const (
	GuestIDKey contextKey = "guest_id"
	EventIDKey contextKey = "event_id"
)

// GuestIdentity returns middleware that validates the guest token issued
// at event join. WebSocket clients cannot set headers, so a "token" query
// parameter is accepted as a fallback.
func GuestIdentity(tokenService *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				raw = r.URL.Query().Get("token")
			}
			if raw == "" {
				response.Unauthorized(w, "Missing guest token")
				return
			}

			claims, err := tokenService.ValidateGuest(raw)
			if err != nil {
				if err == token.ErrExpiredToken {
					response.Unauthorized(w, "Guest token expired")
				} else {
					response.Unauthorized(w, "Invalid guest token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), GuestIDKey, claims.GuestID)
			ctx = context.WithValue(ctx, EventIDKey, claims.EventID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

// GetGuestID extracts the guest ID from context
func GetGuestID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(GuestIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetEventID extracts the token's event ID from context
func GetEventID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(EventIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
