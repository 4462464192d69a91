package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Filter Tests
// ============================================================================

func TestFilter_NoCriteria_ReturnsCatalogInOrder(t *testing.T) {
	catalog := testCatalog()
	got := Filter(catalog, Criteria{})
	assert.Equal(t, ids(catalog), ids(got))
}

func TestFilter_CategoryAllSentinel(t *testing.T) {
	catalog := testCatalog()
	got := Filter(catalog, Criteria{Category: CategoryAll})
	assert.Len(t, got, len(catalog))
}

func TestFilter_CategoryMen_PreservesOrder(t *testing.T) {
	got := Filter(testCatalog(), Criteria{Category: CategoryMen})
	assert.Equal(t, []string{"m1", "m2", "m3", "m4", "m5", "m6"}, ids(got))
	for _, p := range got {
		assert.Equal(t, CategoryMen, p.Category)
	}
}

func TestFilter_SizeExactMembership(t *testing.T) {
	got := Filter(testCatalog(), Criteria{Size: "XL"})
	assert.Equal(t, []string{"m3"}, ids(got))

	// Size is not a substring match.
	assert.Empty(t, Filter(testCatalog(), Criteria{Size: "X"}))
}

func TestFilter_SizeNotOnAnyProduct_Empty(t *testing.T) {
	got := Filter(testCatalog(), Criteria{Size: "5XL"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilter_ColorCaseInsensitiveSubstring(t *testing.T) {
	got := Filter(testCatalog(), Criteria{Color: "whit"})
	assert.Equal(t, []string{"m1", "m6"}, ids(got))
}

func TestFilter_ColorMatchesAnyEntry(t *testing.T) {
	got := Filter(testCatalog(), Criteria{Color: "BLACK"})
	assert.Equal(t, []string{"m1", "u1", "m5"}, ids(got))
}

func TestFilter_PriceInclusiveBounds(t *testing.T) {
	preset, ok := PresetByID("100-200")
	require.True(t, ok)

	got := Filter(testCatalog(), Criteria{Price: &preset.Range})
	// 100 and 200 are both included.
	assert.Equal(t, []string{"w1", "m2", "u1", "m5"}, ids(got))
}

func TestFilter_PriceUnboundedMax(t *testing.T) {
	preset, ok := PresetByID("over-200")
	require.True(t, ok)

	got := Filter(testCatalog(), Criteria{Price: &preset.Range})
	assert.Equal(t, []string{"m3", "m5"}, ids(got))
}

func TestFilter_AllAxesAreANDed(t *testing.T) {
	under := PriceRange{Min: decimal.Zero, Max: decimal.NewNullDecimal(decimal.NewFromInt(100))}
	got := Filter(testCatalog(), Criteria{
		Category: CategoryMen,
		Size:     "M",
		Color:    "a",
		Price:    &under,
	})
	// m1 has "Black", m4 has "Sand"; m2 is over budget.
	assert.Equal(t, []string{"m1", "m4"}, ids(got))
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	catalog := testCatalog()
	before := ids(catalog)
	_ = Filter(catalog, Criteria{Category: CategoryWomen})
	assert.Equal(t, before, ids(catalog))
}

// ============================================================================
// PriceRange Tests
// ============================================================================

func TestPriceRange_Contains(t *testing.T) {
	r := PriceRange{Min: decimal.NewFromInt(10), Max: decimal.NewNullDecimal(decimal.NewFromInt(20))}

	assert.True(t, r.Contains(decimal.NewFromInt(10)))
	assert.True(t, r.Contains(decimal.RequireFromString("19.99")))
	assert.True(t, r.Contains(decimal.NewFromInt(20)))
	assert.False(t, r.Contains(decimal.RequireFromString("9.99")))
	assert.False(t, r.Contains(decimal.RequireFromString("20.01")))
	assert.False(t, r.Unbounded())
}

func TestPricePresets_Order(t *testing.T) {
	var got []string
	for _, p := range PricePresets {
		got = append(got, p.ID)
	}
	assert.Equal(t, []string{"all", "under-100", "100-200", "over-200"}, got)
	assert.True(t, PricePresets[0].Range.IsAll())
	assert.True(t, PricePresets[3].Range.Unbounded())
}

func TestPresetByID_Unknown(t *testing.T) {
	_, ok := PresetByID("cheap")
	assert.False(t, ok)
}

// ============================================================================
// HasActiveFilters Tests
// ============================================================================

func TestHasActiveFilters(t *testing.T) {
	over := PricePresets[3].Range
	tests := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"empty", Criteria{}, false},
		{"all sentinel", Criteria{Category: CategoryAll, Price: &PriceAll}, false},
		{"category", Criteria{Category: CategoryWomen}, true},
		{"size", Criteria{Size: "M"}, true},
		{"color", Criteria{Color: "navy"}, true},
		{"price", Criteria{Price: &over}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasActiveFilters(tt.c))
		})
	}
}

// ============================================================================
// Related / collections Tests
// ============================================================================

func TestRelated_LimitsToFourExcludingSelf(t *testing.T) {
	catalog := testCatalog()
	got := Related(catalog, catalog[0], DefaultRelatedLimit)
	assert.Equal(t, []string{"m2", "m3", "m4", "m5"}, ids(got))
}

func TestRelated_FewerThanLimit(t *testing.T) {
	catalog := testCatalog()
	got := Related(catalog, catalog[1], 4)
	assert.Empty(t, got, "w1 is the only women's product")
}

func TestRelated_NonPositiveLimitUsesDefault(t *testing.T) {
	catalog := testCatalog()
	assert.Len(t, Related(catalog, catalog[0], 0), DefaultRelatedLimit)
}

func TestBestSellersAndNewArrivals(t *testing.T) {
	catalog := testCatalog()
	catalog[2].IsBestSeller = true
	catalog[4].IsBestSeller = true
	catalog[1].IsNew = true

	assert.Equal(t, []string{"m2", "u1"}, ids(BestSellers(catalog)))
	assert.Equal(t, []string{"w1"}, ids(NewArrivals(catalog)))
}

func TestWishlistProducts_CatalogOrderSkipsUnknown(t *testing.T) {
	got := WishlistProducts(testCatalog(), []string{"u1", "gone", "m1"})
	assert.Equal(t, []string{"m1", "u1"}, ids(got))
}

func TestCategory_Valid(t *testing.T) {
	assert.True(t, CategoryMen.Valid())
	assert.True(t, CategoryUnisex.Valid())
	assert.False(t, CategoryAll.Valid())
	assert.False(t, Category("kids").Valid())
}
