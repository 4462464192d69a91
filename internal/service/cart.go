package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/store"
	apperrors "github.com/akshansh2332/driftclic-aesthetic-studio/pkg/errors"
)

// CartLineView is a cart line with its subtotal.
type CartLineView struct {
	domain.CartLine
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView is the read model of a session's cart.
type CartView struct {
	SessionID string          `json:"session_id"`
	Lines     []CartLineView  `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	Open      bool            `json:"open"`
	Version   int             `json:"version"`
}

// NewCartView builds the cart read model from a snapshot.
func NewCartView(s domain.Session) CartView {
	lines := make([]CartLineView, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = CartLineView{CartLine: l, Subtotal: l.Subtotal()}
	}
	return CartView{
		SessionID: s.ID,
		Lines:     lines,
		ItemCount: s.ItemCount(),
		Total:     s.TotalAmount(),
		Open:      s.Open,
		Version:   s.Version,
	}
}

// AddToCartInput holds the parameters for adding a product variant to the cart.
type AddToCartInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Color     string `json:"color" validate:"required"`
}

// UpdateQuantityInput holds the target quantity of a cart line. Values below
// 1 are accepted and ignored by the store.
type UpdateQuantityInput struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// Cart returns the session's cart.
func (s *SessionService) Cart(ctx context.Context, sessionID string) (CartView, error) {
	st, err := s.session(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return NewCartView(st.Snapshot()), nil
}

// AddToCart adds one unit of a product variant. The product must exist and
// the size and color must both be chosen from what the product offers;
// otherwise the store is left untouched.
func (s *SessionService) AddToCart(ctx context.Context, sessionID string, input AddToCartInput) (CartView, error) {
	ctx, span := s.tracer.Start(ctx, "SessionService.AddToCart", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("product.id", input.ProductID),
	))
	defer span.End()

	product, err := s.catalog.Get(input.ProductID)
	if err != nil {
		return CartView{}, err
	}
	if input.Size == "" {
		return CartView{}, apperrors.InvalidInput("a size must be selected")
	}
	if input.Color == "" {
		return CartView{}, apperrors.InvalidInput("a color must be selected")
	}
	if !product.HasSize(input.Size) {
		return CartView{}, apperrors.InvalidInput(fmt.Sprintf("size %q is not offered for %s", input.Size, product.ID))
	}
	if !product.HasColor(input.Color) {
		return CartView{}, apperrors.InvalidInput(fmt.Sprintf("color %q is not offered for %s", input.Color, product.ID))
	}

	return s.mutateCart(ctx, sessionID, func(st *store.Store) (store.Change, bool) {
		return st.AddToCart(product, input.Size, input.Color)
	})
}

// RemoveFromCart removes a line. Removing a line that is not in the cart
// changes nothing.
func (s *SessionService) RemoveFromCart(ctx context.Context, sessionID string, key domain.LineKey) (CartView, error) {
	return s.mutateCart(ctx, sessionID, func(st *store.Store) (store.Change, bool) {
		return st.RemoveFromCart(key.ProductID, key.Size, key.Color)
	})
}

// UpdateQuantity sets a line's quantity. Quantities below 1 and unknown
// lines change nothing.
func (s *SessionService) UpdateQuantity(ctx context.Context, sessionID string, key domain.LineKey, quantity int) (CartView, error) {
	return s.mutateCart(ctx, sessionID, func(st *store.Store) (store.Change, bool) {
		return st.UpdateQuantity(key.ProductID, key.Size, key.Color, quantity)
	})
}

// ClearCart empties the cart.
func (s *SessionService) ClearCart(ctx context.Context, sessionID string) (CartView, error) {
	return s.mutateCart(ctx, sessionID, (*store.Store).ClearCart)
}

// OpenCart shows the cart panel.
func (s *SessionService) OpenCart(ctx context.Context, sessionID string) (CartView, error) {
	return s.mutateCart(ctx, sessionID, (*store.Store).OpenCart)
}

// CloseCart hides the cart panel.
func (s *SessionService) CloseCart(ctx context.Context, sessionID string) (CartView, error) {
	return s.mutateCart(ctx, sessionID, (*store.Store).CloseCart)
}

// ToggleCart flips the cart panel.
func (s *SessionService) ToggleCart(ctx context.Context, sessionID string) (CartView, error) {
	return s.mutateCart(ctx, sessionID, (*store.Store).ToggleCart)
}

func (s *SessionService) mutateCart(ctx context.Context, sessionID string, fn func(*store.Store) (store.Change, bool)) (CartView, error) {
	st, err := s.session(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	if c, changed := fn(st); changed {
		s.publish(ctx, c)
	}
	return NewCartView(st.Snapshot()), nil
}
