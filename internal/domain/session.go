package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// LineKey identifies a cart line. Variants of one product are independent
// lines, so the key is the product id together with the chosen size and color.
type LineKey struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CartLine is a product variant in the cart. Quantity is always at least 1.
type CartLine struct {
	Product
	Quantity      int    `json:"quantity"`
	SelectedSize  string `json:"selected_size"`
	SelectedColor string `json:"selected_color"`
}

// Key returns the line's identity key.
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ID, Size: l.SelectedSize, Color: l.SelectedColor}
}

// Subtotal returns price × quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Session is a point-in-time snapshot of one shopper's cart and wishlist.
// Version increases with every state change and orders snapshots of the
// same session.
type Session struct {
	ID        string     `json:"id"`
	Lines     []CartLine `json:"lines"`
	Wishlist  []string   `json:"wishlist"`
	Open      bool       `json:"open"`
	Version   int        `json:"version"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TotalAmount sums price × quantity over all lines.
func (s Session) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount sums quantities over all lines (units, not lines).
func (s Session) ItemCount() int {
	var n int
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// FindLine returns the index of the line with key k, or -1.
func (s Session) FindLine(k LineKey) int {
	return slices.IndexFunc(s.Lines, func(l CartLine) bool { return l.Key() == k })
}

// InWishlist reports wishlist membership.
func (s Session) InWishlist(productID string) bool {
	return slices.Contains(s.Wishlist, productID)
}

// Clone returns a deep copy. Product slices inside lines are shared because
// catalog products are immutable.
func (s Session) Clone() Session {
	out := s
	out.Lines = slices.Clone(s.Lines)
	out.Wishlist = slices.Clone(s.Wishlist)
	if out.Lines == nil {
		out.Lines = []CartLine{}
	}
	if out.Wishlist == nil {
		out.Wishlist = []string{}
	}
	return out
}
