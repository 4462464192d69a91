package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultRelatedLimit is how many related products a detail view shows.
const DefaultRelatedLimit = 4

// PriceRange is an inclusive price interval. An invalid Max means unbounded.
type PriceRange struct {
	Min decimal.Decimal     `json:"min"`
	Max decimal.NullDecimal `json:"max"`
}

// Unbounded reports whether the range has no upper limit.
func (r PriceRange) Unbounded() bool { return !r.Max.Valid }

// Contains reports whether Min ≤ price ≤ Max.
func (r PriceRange) Contains(price decimal.Decimal) bool {
	if price.LessThan(r.Min) {
		return false
	}
	return !r.Max.Valid || price.LessThanOrEqual(r.Max.Decimal)
}

// IsAll reports whether the range admits every non-negative price.
func (r PriceRange) IsAll() bool {
	return r.Min.IsZero() && !r.Max.Valid
}

// PricePreset is a named price range offered as a filter option.
type PricePreset struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Range PriceRange `json:"range"`
}

// PriceAll admits every price.
var PriceAll = PriceRange{Min: decimal.Zero}

// PricePresets lists the price filter options in display order.
var PricePresets = []PricePreset{
	{ID: "all", Label: "All", Range: PriceAll},
	{ID: "under-100", Label: "Under $100", Range: boundedRange(0, 100)},
	{ID: "100-200", Label: "$100 - $200", Range: boundedRange(100, 200)},
	{ID: "over-200", Label: "Over $200", Range: PriceRange{Min: decimal.NewFromInt(200)}},
}

func boundedRange(lo, hi int64) PriceRange {
	return PriceRange{
		Min: decimal.NewFromInt(lo),
		Max: decimal.NewNullDecimal(decimal.NewFromInt(hi)),
	}
}

// PresetByID looks up a price preset.
func PresetByID(id string) (PricePreset, bool) {
	for _, p := range PricePresets {
		if p.ID == id {
			return p, true
		}
	}
	return PricePreset{}, false
}

// Criteria selects products. Zero values mean "no constraint" on that axis.
type Criteria struct {
	Category Category
	Size     string
	Color    string
	Price    *PriceRange
}

// HasActiveFilters reports whether any axis is constrained.
func HasActiveFilters(c Criteria) bool {
	return (c.Category != "" && c.Category != CategoryAll) ||
		c.Size != "" ||
		c.Color != "" ||
		(c.Price != nil && !c.Price.IsAll())
}

// Matches tests p against every active axis. Color is a case-insensitive
// substring match against any of the product's colors, unlike category and
// size which match exactly.
func (c Criteria) Matches(p Product) bool {
	if c.Category != "" && c.Category != CategoryAll && p.Category != c.Category {
		return false
	}
	if c.Size != "" && !p.HasSize(c.Size) {
		return false
	}
	if c.Color != "" && !MatchesColor(p, c.Color) {
		return false
	}
	if c.Price != nil && !c.Price.Contains(p.Price) {
		return false
	}
	return true
}

// MatchesColor reports whether any of p's colors contains color, ignoring case.
func MatchesColor(p Product, color string) bool {
	needle := strings.ToLower(color)
	for _, c := range p.Colors {
		if strings.Contains(strings.ToLower(c), needle) {
			return true
		}
	}
	return false
}

// Filter returns the products matching c in their original order. The input
// slice is never modified.
func Filter(products []Product, c Criteria) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Related returns up to limit other products sharing p's category, in
// catalog order. A non-positive limit uses DefaultRelatedLimit.
func Related(products []Product, p Product, limit int) []Product {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	out := make([]Product, 0, limit)
	for _, candidate := range products {
		if len(out) == limit {
			break
		}
		if candidate.ID != p.ID && candidate.Category == p.Category {
			out = append(out, candidate)
		}
	}
	return out
}

// BestSellers returns the products flagged as best sellers, in catalog order.
func BestSellers(products []Product) []Product {
	return selectWhere(products, func(p Product) bool { return p.IsBestSeller })
}

// NewArrivals returns the products flagged as new, in catalog order.
func NewArrivals(products []Product) []Product {
	return selectWhere(products, func(p Product) bool { return p.IsNew })
}

// WishlistProducts resolves wishlist ids to products in catalog order.
// Ids with no catalog product are skipped.
func WishlistProducts(products []Product, ids []string) []Product {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return selectWhere(products, func(p Product) bool {
		_, ok := set[p.ID]
		return ok
	})
}

func selectWhere(products []Product, keep func(Product) bool) []Product {
	out := make([]Product, 0)
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
