package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	"radio-broadcast/internal/platform/apperr"
	"radio-broadcast/internal/session"
)

// TokenHeader carries the session token on API requests.
const TokenHeader = "X-Session-Token"

type sessionKey struct{}

// tokenFrom reads the token from the session header, a bearer Authorization
// header, or the "token" query parameter (for <audio src> URLs).
func tokenFrom(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(TokenHeader)); t != "" {
		return t
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		if t, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}
	return r.URL.Query().Get("token")
}

func sessionFrom(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(session.Session)
	return s, ok
}

// requireSession rejects requests without a live session token.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := h.sessions.Resolve(tokenFrom(r))
		if !ok {
			apperr.Write(w, h.log, apperr.Unauthorized("unauthorized"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

// requireModerator must run after requireSession.
func (h *Handler) requireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(r.Context())
		if !ok {
			apperr.Write(w, h.log, apperr.Unauthorized("unauthorized"))
			return
		}
		if !sess.IsModerator() {
			apperr.Write(w, h.log, apperr.Forbidden("moderator only"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
