// Package store holds one shopper's cart and wishlist. It is the single
// source of truth for that state: every mutation goes through a Store method,
// and observers receive immutable snapshots after each effective change.
package store

import (
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
)

// Op names the mutation that produced a Change.
type Op string

const (
	OpAddToCart          Op = "cart.add"
	OpRemoveFromCart     Op = "cart.remove"
	OpUpdateQuantity     Op = "cart.update_quantity"
	OpClearCart          Op = "cart.clear"
	OpOpenCart           Op = "cart.open"
	OpCloseCart          Op = "cart.close"
	OpToggleCart         Op = "cart.toggle"
	OpAddToWishlist      Op = "wishlist.add"
	OpRemoveFromWishlist Op = "wishlist.remove"
)

// AffectsCart reports whether the op changes cart lines.
func (o Op) AffectsCart() bool {
	switch o {
	case OpAddToCart, OpRemoveFromCart, OpUpdateQuantity, OpClearCart:
		return true
	}
	return false
}

// AffectsWishlist reports whether the op changes the wishlist.
func (o Op) AffectsWishlist() bool {
	return o == OpAddToWishlist || o == OpRemoveFromWishlist
}

// Change is delivered to listeners, and returned to the caller, after a
// mutation that changed state.
type Change struct {
	Op       Op
	Snapshot domain.Session
}

// Listener observes changes. Listeners run synchronously while the store is
// locked, so they must not call back into the same store.
type Listener func(Change)

type subscription struct {
	id int
	fn Listener
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is a goroutine-safe cart and wishlist for one session.
type Store struct {
	mu sync.Mutex

	id       string
	lines    []domain.CartLine
	index    map[domain.LineKey]int
	wishlist []string
	wished   map[string]struct{}
	open     bool
	version  int
	updated  time.Time

	subs   []subscription
	nextID int
	now    func() time.Time
}

// New returns an empty store: no lines, no wishlist, panel closed.
func New(id string, opts ...Option) *Store {
	s := &Store{
		id:     id,
		index:  make(map[domain.LineKey]int),
		wished: make(map[string]struct{}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.updated = s.now().UTC()
	return s
}

// Restore rebuilds a store from a snapshot. Lines with quantity below 1 and
// repeated keys or wishlist ids are dropped so the invariants hold even for
// a hand-edited snapshot.
func Restore(snap domain.Session, opts ...Option) *Store {
	s := New(snap.ID, opts...)
	for _, l := range snap.Lines {
		if l.Quantity < 1 {
			continue
		}
		if _, dup := s.index[l.Key()]; dup {
			continue
		}
		s.index[l.Key()] = len(s.lines)
		s.lines = append(s.lines, l)
	}
	for _, id := range snap.Wishlist {
		if _, dup := s.wished[id]; dup {
			continue
		}
		s.wished[id] = struct{}{}
		s.wishlist = append(s.wishlist, id)
	}
	s.open = snap.Open
	s.version = snap.Version
	if !snap.UpdatedAt.IsZero() {
		s.updated = snap.UpdatedAt
	}
	return s
}

// ID returns the session id the store belongs to.
func (s *Store) ID() string { return s.id }

// Subscribe registers l and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: l})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == id })
		})
	}
}

// AddToCart merges into the line for (product, size, color) or appends a new
// line with quantity 1, then opens the cart panel. Size and color are taken
// as given; callers validate the selection.
func (s *Store) AddToCart(p domain.Product, size, color string) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.LineKey{ProductID: p.ID, Size: size, Color: color}
	if i, ok := s.index[key]; ok {
		s.lines[i].Quantity++
	} else {
		s.index[key] = len(s.lines)
		s.lines = append(s.lines, domain.CartLine{
			Product:       p,
			Quantity:      1,
			SelectedSize:  size,
			SelectedColor: color,
		})
	}
	s.open = true
	return s.commit(OpAddToCart), true
}

// RemoveFromCart deletes the matching line. Absent keys are a no-op.
func (s *Store) RemoveFromCart(productID, size, color string) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.LineKey{ProductID: productID, Size: size, Color: color}
	i, ok := s.index[key]
	if !ok {
		return Change{}, false
	}
	s.lines = slices.Delete(s.lines, i, i+1)
	s.reindex()
	return s.commit(OpRemoveFromCart), true
}

// UpdateQuantity sets the matching line's quantity. Quantities below 1 and
// absent keys are a no-op; RemoveFromCart is the only way to drop a line.
func (s *Store) UpdateQuantity(productID, size, color string, quantity int) (Change, bool) {
	if quantity < 1 {
		return Change{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[domain.LineKey{ProductID: productID, Size: size, Color: color}]
	if !ok || s.lines[i].Quantity == quantity {
		return Change{}, false
	}
	s.lines[i].Quantity = quantity
	return s.commit(OpUpdateQuantity), true
}

// ClearCart empties the cart.
func (s *Store) ClearCart() (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return Change{}, false
	}
	s.lines = nil
	clear(s.index)
	return s.commit(OpClearCart), true
}

// OpenCart shows the cart panel.
func (s *Store) OpenCart() (Change, bool) { return s.setOpen(true, OpOpenCart) }

// CloseCart hides the cart panel.
func (s *Store) CloseCart() (Change, bool) { return s.setOpen(false, OpCloseCart) }

// ToggleCart flips the cart panel.
func (s *Store) ToggleCart() (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open = !s.open
	return s.commit(OpToggleCart), true
}

func (s *Store) setOpen(open bool, op Op) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open == open {
		return Change{}, false
	}
	s.open = open
	return s.commit(op), true
}

// AddToWishlist inserts productID if absent.
func (s *Store) AddToWishlist(productID string) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wished[productID]; ok {
		return Change{}, false
	}
	s.wished[productID] = struct{}{}
	s.wishlist = append(s.wishlist, productID)
	return s.commit(OpAddToWishlist), true
}

// RemoveFromWishlist removes productID if present.
func (s *Store) RemoveFromWishlist(productID string) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wished[productID]; !ok {
		return Change{}, false
	}
	delete(s.wished, productID)
	s.wishlist = slices.DeleteFunc(s.wishlist, func(id string) bool { return id == productID })
	return s.commit(OpRemoveFromWishlist), true
}

// IsInWishlist reports wishlist membership.
func (s *Store) IsInWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.wished[productID]
	return ok
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

// Wishlist returns a copy of the wishlist ids in insertion order.
func (s *Store) Wishlist() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.wishlist)
}

// IsOpen reports whether the cart panel is open.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// CartTotal is Σ price × quantity, computed from the current lines.
func (s *Store) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot().TotalAmount()
}

// CartCount is Σ quantity, computed from the current lines.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot().ItemCount()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// snapshot requires s.mu.
func (s *Store) snapshot() domain.Session {
	return domain.Session{
		ID:        s.id,
		Lines:     s.lines,
		Wishlist:  s.wishlist,
		Open:      s.open,
		Version:   s.version,
		UpdatedAt: s.updated,
	}.Clone()
}

func (s *Store) reindex() {
	clear(s.index)
	for i, l := range s.lines {
		s.index[l.Key()] = i
	}
}

// commit bumps the version, notifies listeners and returns the change.
// Requires s.mu.
func (s *Store) commit(op Op) Change {
	s.version++
	s.updated = s.now().UTC()
	snap := s.snapshot()
	for _, sub := range s.subs {
		sub.fn(Change{Op: op, Snapshot: snap.Clone()})
	}
	return Change{Op: op, Snapshot: snap}
}
