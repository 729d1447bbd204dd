package web

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/service/auth"
)

// SessionMiddleware resolves the current user from the session cookie.
// It never rejects a request: routes that require a login are guarded by
// RequireAuth. It also attaches a request-scoped logger carrying the chi
// request ID.
type SessionMiddleware struct {
	sessions auth.SessionService
	logger   *slog.Logger
}

// NewSessionMiddleware creates a new SessionMiddleware.
func NewSessionMiddleware(sessions auth.SessionService, log *slog.Logger) *SessionMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return &SessionMiddleware{sessions: sessions, logger: log}
}

// Handler validates the session cookie and adds the user ID to the request
// context for authenticated requests. Invalid or expired cookies are treated
// as an anonymous request.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := m.logger
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			log = log.With(slog.String("request_id", reqID))
		}
		ctx := logger.WithLogger(r.Context(), log)

		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			claims, err := m.sessions.ValidateToken(ctx, cookie.Value)
			if err != nil {
				// A stale cookie is routine; clear it and carry on anonymous.
				log.Debug("discarding invalid session cookie", "error", err)
				clearSessionCookie(w)
			} else {
				ctx = withUserID(ctx, claims.UserID)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth guards protected routes. Unauthenticated requests are
// redirected to the login page with the original path preserved in the
// next parameter.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// redirectToLogin sends the client to the login page, preserving the
// originally requested path in the next query parameter.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login/?next="+url.QueryEscape(next), http.StatusFound)
}
