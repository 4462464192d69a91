package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/catalog"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
)

func productIDs(products []domain.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func TestListProducts_Filters(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		query  string
		want   []string
		active bool
	}{
		{"no filters", "", []string{"dc-001", "dc-002", "dc-003", "dc-004", "dc-005", "dc-006", "dc-007", "dc-008", "dc-009", "dc-010", "dc-011", "dc-012"}, false},
		{"all sentinel", "?category=all&price=all", []string{"dc-001", "dc-002", "dc-003", "dc-004", "dc-005", "dc-006", "dc-007", "dc-008", "dc-009", "dc-010", "dc-011", "dc-012"}, false},
		{"category", "?category=women", []string{"dc-007", "dc-008", "dc-009"}, true},
		{"color substring", "?color=whit", []string{"dc-001", "dc-007", "dc-009", "dc-010"}, true},
		{"size and category", "?category=unisex&size=XS", []string{"dc-010"}, true},
		{"size exact", "?size=xs", []string{}, true},
		{"unknown size", "?size=XXXL", []string{}, true},
		{"preset under 100", "?price=under-100", []string{"dc-001", "dc-006", "dc-009", "dc-011"}, true},
		{"preset inclusive bounds", "?price=100-200", []string{"dc-002", "dc-003", "dc-007", "dc-008", "dc-010"}, true},
		{"preset over 200", "?price=over-200", []string{"dc-004", "dc-005", "dc-012"}, true},
		{"min price", "?min_price=210", []string{"dc-004", "dc-005", "dc-012"}, true},
		{"max price", "?max_price=65", []string{"dc-001", "dc-011"}, true},
		{"preset narrowed", "?price=under-100&min_price=90", []string{"dc-006", "dc-009"}, true},
		{"combined", "?category=men&color=navy&price=over-200", []string{"dc-004", "dc-005"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(t, http.MethodGet, "/api/v1/products"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			list := decode[ProductListResponse](t, body.Data)
			assert.Equal(t, tt.want, productIDs(list.Products))
			assert.Equal(t, len(tt.want), list.Total)
			assert.Equal(t, tt.active, list.FiltersActive)
		})
	}
}

func TestListProducts_InvalidQuery(t *testing.T) {
	env := newTestEnv(t)

	for _, query := range []string{
		"?category=kids",
		"?price=cheap",
		"?min_price=abc",
		"?max_price=-5",
		"?min_price=300&max_price=100",
		"?page=0",
		"?per_page=500",
	} {
		t.Run(query, func(t *testing.T) {
			rec, body := env.do(t, http.MethodGet, "/api/v1/products"+query, "", nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, body.Error)
			assert.Equal(t, "INVALID_INPUT", body.Error.Code)
		})
	}
}

func TestListProducts_Pagination(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/products?category=men&per_page=2&page=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	list := decode[ProductListResponse](t, body.Data)
	assert.Equal(t, []string{"dc-003", "dc-004"}, productIDs(list.Products))
	assert.Equal(t, 6, list.Total)
	require.NotNil(t, list.Pagination)
	assert.Equal(t, PageInfo{Page: 2, PerPage: 2, TotalPages: 3, HasNext: true, HasPrev: true}, *list.Pagination)

	rec, body = env.do(t, http.MethodGet, "/api/v1/products?page=4&per_page=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[ProductListResponse](t, body.Data)
	assert.Empty(t, list.Products)
	assert.NotNil(t, list.Products)
	assert.Equal(t, 12, list.Total)
}

func TestFilterOptions(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/products/filters", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	opts := decode[catalog.Options](t, body.Data)
	assert.Equal(t, domain.Categories, opts.Categories)
	assert.Equal(t, domain.Sizes, opts.Sizes)
	require.Len(t, opts.Prices, 4)
	assert.Equal(t, "all", opts.Prices[0].ID)
	assert.False(t, opts.Prices[0].Range.Max.Valid)
	assert.True(t, opts.Prices[1].Range.Max.Valid)
}

func TestBestSellersAndNewArrivals(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/products/best-sellers", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"dc-001", "dc-002", "dc-007", "dc-010"}, productIDs(decode[ProductListResponse](t, body.Data).Products))

	rec, body = env.do(t, http.MethodGet, "/api/v1/products/new-arrivals", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"dc-003", "dc-005", "dc-007", "dc-009", "dc-012"}, productIDs(decode[ProductListResponse](t, body.Data).Products))
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/products/dc-001", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	detail := decode[ProductDetailResponse](t, body.Data)
	assert.Equal(t, "Essential Oversized Tee", detail.Product.Name)
	assert.Equal(t, "65", detail.Product.Price.String())
	assert.Equal(t, []string{"dc-002", "dc-003", "dc-004", "dc-005"}, productIDs(detail.Related))
}

func TestGetProduct_BySlug(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/products/bias-cut-slip-skirt", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	detail := decode[ProductDetailResponse](t, body.Data)
	assert.Equal(t, "dc-008", detail.Product.ID)
	assert.Equal(t, "bias-cut-slip-skirt", detail.Product.Slug)
	assert.Equal(t, []string{"dc-007", "dc-009"}, productIDs(detail.Related))
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/products/dc-999", "/api/v1/products/dc-999/related"} {
		rec, body := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		require.NotNil(t, body.Error)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
	}
}

func TestGetProduct_EncodedID(t *testing.T) {
	env := reservedCharEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/products/capsule%2F01", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "capsule/01", decode[ProductDetailResponse](t, body.Data).Product.ID)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/products/capsule%2F01/related", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRelatedProducts(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/products/dc-008/related", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[ProductListResponse](t, body.Data)
	assert.Equal(t, []string{"dc-007", "dc-009"}, productIDs(list.Products))
}

func TestListCollections(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/collections", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	collections := decode[[]domain.Collection](t, body.Data)
	require.Len(t, collections, 3)
	assert.Equal(t, domain.CategoryMen, collections[0].ID)
}
