package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// GuestClaims identifies one guest inside one event. This is identity
// plumbing for uploads, likes and comments, not an authorization layer.
type GuestClaims struct {
	GuestID uuid.UUID `json:"guest_id"`
	EventID uuid.UUID `json:"event_id"`
	jwt.RegisteredClaims
}

// Service issues and validates guest identity tokens
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates token service
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// IssueGuest generates a signed token for a guest joining an event
func (s *Service) IssueGuest(guestID, eventID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := GuestClaims{
		GuestID: guestID,
		EventID: eventID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   guestID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateGuest validates and parses a guest token
func (s *Service) ValidateGuest(tokenString string) (*GuestClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &GuestClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*GuestClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
