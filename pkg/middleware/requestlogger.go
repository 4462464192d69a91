package middleware

import (
	"log/slog"
	"net/http"

	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/logger"
)

// SessionIDHeader identifies the shopper session a request acts on.
const SessionIDHeader = "X-Session-ID"

// RequestLogger returns middleware that builds a request-scoped logger enriched
// with correlation_id, session_id, trace_id, and span_id, then stores it in
// context via logger.NewContext. Downstream handlers retrieve it with
// logger.FromContext(ctx).
//
// Mount it after RequestLogging (which sets correlation_id) and Tracing
// (which sets the OpenTelemetry span context).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// The websocket stream cannot send custom headers from browsers,
			// so the session id may arrive as a query parameter instead.
			sessionID := r.Header.Get(SessionIDHeader)
			if sessionID == "" {
				sessionID = r.URL.Query().Get("session_id")
			}
			if sessionID != "" {
				ctx = logger.WithSessionID(ctx, sessionID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
