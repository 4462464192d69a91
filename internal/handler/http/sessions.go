package http

import (
	"log/slog"
	"net/http"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/service"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/httputil"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/middleware"
)

// SessionHandler starts and ends shopper sessions.
type SessionHandler struct {
	service *service.SessionService
	logger  *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(svc *service.SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		service: svc,
		logger:  logger,
	}
}

// SessionResponse is returned when a session starts.
type SessionResponse struct {
	SessionID string               `json:"session_id"`
	Cart      service.CartView     `json:"cart"`
	Wishlist  service.WishlistView `json:"wishlist"`
}

// CreateSession handles POST /api/v1/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.CreateSession(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set(middleware.SessionIDHeader, snap.ID)
	httputil.WriteData(w, http.StatusCreated, SessionResponse{
		SessionID: snap.ID,
		Cart:      service.NewCartView(snap),
		Wishlist: service.WishlistView{
			SessionID:  snap.ID,
			ProductIDs: snap.Wishlist,
			Products:   []domain.Product{},
		},
	})
}

// EndSession handles DELETE /api/v1/sessions
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.EndSession(r.Context(), sessionIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
