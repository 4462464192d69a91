package http

import (
	"log/slog"
	"net/http"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/service"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/httputil"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.SessionService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.SessionService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: svc,
		logger:  logger,
	}
}

// MembershipResponse tells whether a product is on the wishlist.
type MembershipResponse struct {
	ProductID  string `json:"product_id"`
	InWishlist bool   `json:"in_wishlist"`
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Wishlist(r.Context(), sessionIDFromContext(r.Context()))
	h.respond(w, r, view, err)
}

// Contains handles GET /api/v1/wishlist/{productId}
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	productID, err := pathParam(r, "productId")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	in, err := h.service.InWishlist(r.Context(), sessionIDFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, MembershipResponse{ProductID: productID, InWishlist: in})
}

// Add handles PUT /api/v1/wishlist/{productId}
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	productID, err := pathParam(r, "productId")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view, err := h.service.AddToWishlist(r.Context(), sessionIDFromContext(r.Context()), productID)
	h.respond(w, r, view, err)
}

// Remove handles DELETE /api/v1/wishlist/{productId}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID, err := pathParam(r, "productId")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view, err := h.service.RemoveFromWishlist(r.Context(), sessionIDFromContext(r.Context()), productID)
	h.respond(w, r, view, err)
}

func (h *WishlistHandler) respond(w http.ResponseWriter, r *http.Request, view service.WishlistView, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}
