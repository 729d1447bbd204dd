package auth

import "time"

// NewTestSessionService creates a SessionService with an injectable time
// function for deterministic tests. Not for production use.
func NewTestSessionService(secret string, lifetime time.Duration, timeFunc func() time.Time) SessionService {
	return &hmacSessionService{
		signingKey:    []byte(secret),
		tokenLifetime: lifetime,
		timeFunc:      timeFunc,
		clockSkew:     0,
	}
}
