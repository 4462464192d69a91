package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/service"
	apperrors "github.com/akshansh2332/driftclic-aesthetic-studio/pkg/errors"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/httputil"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.SessionService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.SessionService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Cart(r.Context(), sessionIDFromContext(r.Context()))
	h.respond(w, r, cart, err)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddToCartInput
	if !httputil.Bind(w, r, &req) {
		return
	}

	cart, err := h.service.AddToCart(r.Context(), sessionIDFromContext(r.Context()), req)
	h.respond(w, r, cart, err)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}/{size}/{color}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateQuantityInput
	if !httputil.Bind(w, r, &req) {
		return
	}

	key, err := lineKey(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), sessionIDFromContext(r.Context()), key, *req.Quantity)
	h.respond(w, r, cart, err)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}/{size}/{color}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	key, err := lineKey(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.RemoveFromCart(r.Context(), sessionIDFromContext(r.Context()), key)
	h.respond(w, r, cart, err)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.ClearCart(r.Context(), sessionIDFromContext(r.Context()))
	h.respond(w, r, cart, err)
}

// OpenCart handles POST /api/v1/cart/open
func (h *CartHandler) OpenCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.OpenCart(r.Context(), sessionIDFromContext(r.Context()))
	h.respond(w, r, cart, err)
}

// CloseCart handles POST /api/v1/cart/close
func (h *CartHandler) CloseCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.CloseCart(r.Context(), sessionIDFromContext(r.Context()))
	h.respond(w, r, cart, err)
}

// ToggleCart handles POST /api/v1/cart/toggle
func (h *CartHandler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.ToggleCart(r.Context(), sessionIDFromContext(r.Context()))
	h.respond(w, r, cart, err)
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, cart service.CartView, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

// lineKey reads a cart line key from the URL path. Values are matched after
// URL decoding, so "Navy%2FSand" addresses the "Navy/Sand" line.
func lineKey(r *http.Request) (domain.LineKey, error) {
	var key domain.LineKey
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"productId", &key.ProductID},
		{"size", &key.Size},
		{"color", &key.Color},
	} {
		v, err := pathParam(r, f.name)
		if err != nil {
			return domain.LineKey{}, err
		}
		*f.dst = v
	}
	return key, nil
}

// pathParam returns a URL parameter in decoded form. chi matches against
// RawPath when the request has one, and its parameters are then still escaped.
func pathParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v, nil
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return "", apperrors.InvalidInput(fmt.Sprintf("malformed %s in path", name))
	}
	return decoded, nil
}
