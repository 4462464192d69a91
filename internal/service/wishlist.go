package service

import (
	"context"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/store"
	apperrors "github.com/akshansh2332/driftclic-aesthetic-studio/pkg/errors"
)

// WishlistView is the read model of a session's wishlist.
type WishlistView struct {
	SessionID  string           `json:"session_id"`
	ProductIDs []string         `json:"product_ids"`
	Products   []domain.Product `json:"products"`
	Version    int              `json:"version"`
}

// Wishlist returns the wishlist ids in insertion order with their products.
func (s *SessionService) Wishlist(ctx context.Context, sessionID string) (WishlistView, error) {
	st, err := s.session(ctx, sessionID)
	if err != nil {
		return WishlistView{}, err
	}
	return s.wishlistView(st.Snapshot()), nil
}

// InWishlist reports whether productID is on the wishlist.
func (s *SessionService) InWishlist(ctx context.Context, sessionID, productID string) (bool, error) {
	st, err := s.session(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if !s.catalog.Exists(productID) {
		return false, apperrors.NotFound("product", productID)
	}
	return st.IsInWishlist(productID), nil
}

// AddToWishlist adds a known product. Adding it twice changes nothing.
func (s *SessionService) AddToWishlist(ctx context.Context, sessionID, productID string) (WishlistView, error) {
	st, err := s.session(ctx, sessionID)
	if err != nil {
		return WishlistView{}, err
	}
	if !s.catalog.Exists(productID) {
		return WishlistView{}, apperrors.NotFound("product", productID)
	}
	return s.mutateWishlist(ctx, st, productID, (*store.Store).AddToWishlist)
}

// RemoveFromWishlist removes a product. Removing an absent one changes
// nothing. The product need not be in the catalog, so ids left over from an
// older catalog can still be removed.
func (s *SessionService) RemoveFromWishlist(ctx context.Context, sessionID, productID string) (WishlistView, error) {
	st, err := s.session(ctx, sessionID)
	if err != nil {
		return WishlistView{}, err
	}
	return s.mutateWishlist(ctx, st, productID, (*store.Store).RemoveFromWishlist)
}

func (s *SessionService) mutateWishlist(ctx context.Context, st *store.Store, productID string, fn func(*store.Store, string) (store.Change, bool)) (WishlistView, error) {
	if c, changed := fn(st, productID); changed {
		s.publish(ctx, c)
	}
	return s.wishlistView(st.Snapshot()), nil
}

func (s *SessionService) wishlistView(snap domain.Session) WishlistView {
	products := s.catalog.Resolve(snap.Wishlist)
	if products == nil {
		products = []domain.Product{}
	}
	return WishlistView{
		SessionID:  snap.ID,
		ProductIDs: snap.Wishlist,
		Products:   products,
		Version:    snap.Version,
	}
}
