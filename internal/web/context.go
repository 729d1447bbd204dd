package web

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a private type for context values set by this package.
type contextKey string

// userIDContextKey is the context key under which the authenticated user's
// ID is stored by the session middleware.
const userIDContextKey contextKey = "userID"

// withUserID returns a context carrying the authenticated user's ID.
func withUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts the authenticated user's ID from the context.
// The second return value is false for unauthenticated requests.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
