package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/http/response"
)

// sessionCookieName is the cookie that carries the opaque session token for
// browser clients. API clients send the same token as a Bearer header.
const sessionCookieName = "pageturn_session"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyUser contextKey = "user"

// requireAuth resolves the session token and attaches the user to the
// request context. Browser-style requests (cookie flow) are redirected to
// /login; requests that presented a Bearer header get a 401 JSON error.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, fromHeader := extractToken(r)

		user, err := s.sessions.Authenticate(r.Context(), token)
		if err != nil {
			if fromHeader {
				response.Unauthorized(w, "Invalid or expired session", s.logger)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the session token from the Authorization header or the
// session cookie. The bool reports whether it came from the header.
func extractToken(r *http.Request) (token string, fromHeader bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1], true
		}
		return "", true
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value, false
	}

	return "", false
}

// currentUser extracts the authenticated user from the request context.
// Returns nil outside of requireAuth-guarded routes.
func currentUser(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(contextKeyUser).(*domain.User); ok {
		return user
	}
	return nil
}
