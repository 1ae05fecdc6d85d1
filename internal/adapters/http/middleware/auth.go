package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	sessionStore "checkin/internal/adapters/storage/session"
	domainSession "checkin/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "checkin_session"

// SecureCookies marks cookies Secure. NewMux sets it in production.
var SecureCookies = false

// SessionLookup resolves a session token.
type SessionLookup interface {
	Get(ctx context.Context, token string) (domainSession.Session, error)
}

// Auth returns middleware that resolves the session cookie and puts the
// session in the request context. It does not block anonymous requests;
// use RequireSession for that. A stale cookie is cleared.
func Auth(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := sessions.Get(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(ContextWithSession(r.Context(), sess))
			case errors.Is(err, sessionStore.ErrNotFound):
				ClearSessionCookie(w)
			default:
				slog.Warn("auth_event", "event", "session_lookup_failed", "error", err.Error())
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession returns middleware that sends anonymous requests back to
// the member picker.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (domainSession.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(domainSession.Session)
	return sess, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess domainSession.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SessionToken returns the raw session cookie value, or "".
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetSessionCookie sets the session cookie on the response.
// POST: the cookie lives as long as the session TTL
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(domainSession.TTL.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
