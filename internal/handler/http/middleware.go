package http

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/akshansh2332/driftclic-aesthetic-studio/pkg/errors"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/httputil"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/middleware"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// sessionIDKey is the context key for the shopper session ID.
const sessionIDKey contextKey = "session_id"

// SessionIDFromHeader is middleware that reads the X-Session-ID header and
// stores it in the request context. When allowQuery is set the session_id
// query parameter is accepted too, for clients that cannot set headers.
// Requests without a session are rejected with 401 Unauthorized.
func SessionIDFromHeader(allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := r.Header.Get(middleware.SessionIDHeader)
			if sid == "" && allowQuery {
				sid = r.URL.Query().Get("session_id")
			}
			if sid == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("session required"), nil)
				return
			}
			ctx := context.WithValue(r.Context(), sessionIDKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionIDFromContext extracts the session ID from the request context.
func sessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteError(w, r, apperrors.UnsupportedMediaType("application/json"), nil)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
