package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionService defines operations for minting and validating the signed
// tokens that back login sessions. Tokens travel in an HTTP-only cookie;
// the web layer owns the cookie, this service owns the token.
type SessionService interface {
	// GenerateToken creates a signed session token for the given user.
	// Returns the token string or an error if signing fails.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken or ErrInvalidToken on validation failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the claims carried by a session token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
