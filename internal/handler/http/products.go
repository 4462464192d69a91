package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/catalog"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
	apperrors "github.com/akshansh2332/driftclic-aesthetic-studio/pkg/errors"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/httputil"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/pagination"
)

// ProductHandler serves the read-only catalog.
type ProductHandler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(c *catalog.Catalog, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: c,
		logger:  logger,
	}
}

// --- Response DTOs ---

// ProductListResponse is a list of products with its size. Total counts
// every match; Products holds only the requested page when paged.
type ProductListResponse struct {
	Products      []domain.Product `json:"products"`
	Total         int              `json:"total"`
	FiltersActive bool             `json:"filters_active"`
	Pagination    *PageInfo        `json:"pagination,omitempty"`
}

// PageInfo describes the page returned in a ProductListResponse.
type PageInfo struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ProductDetailResponse is a product with the products shown beside it.
type ProductDetailResponse struct {
	Product domain.Product   `json:"product"`
	Related []domain.Product `json:"related"`
}

func newProductList(products []domain.Product, active bool) ProductListResponse {
	if products == nil {
		products = []domain.Product{}
	}
	return ProductListResponse{Products: products, Total: len(products), FiltersActive: active}
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	params, err := pagination.FromQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page := pagination.Apply(h.catalog.Filter(criteria), params)
	resp := newProductList(page.Items, domain.HasActiveFilters(criteria))
	resp.Total = page.Total
	resp.Pagination = &PageInfo{
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	}
	httputil.WriteData(w, http.StatusOK, resp)
}

// FilterOptions handles GET /api/v1/products/filters
func (h *ProductHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.catalog.FilterOptions())
}

// BestSellers handles GET /api/v1/products/best-sellers
func (h *ProductHandler) BestSellers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, newProductList(h.catalog.BestSellers(), false))
}

// NewArrivals handles GET /api/v1/products/new-arrivals
func (h *ProductHandler) NewArrivals(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, newProductList(h.catalog.NewArrivals(), false))
}

// GetProduct handles GET /api/v1/products/{id}. The path segment may also be
// the product slug.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	product, err := h.catalog.Lookup(id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	related, err := h.catalog.Related(product.ID, domain.DefaultRelatedLimit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if related == nil {
		related = []domain.Product{}
	}

	httputil.WriteData(w, http.StatusOK, ProductDetailResponse{Product: product, Related: related})
}

// RelatedProducts handles GET /api/v1/products/{id}/related
func (h *ProductHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	related, err := h.catalog.Related(id, domain.DefaultRelatedLimit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newProductList(related, false))
}

// ListCollections handles GET /api/v1/collections
func (h *ProductHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections := h.catalog.Collections()
	if collections == nil {
		collections = []domain.Collection{}
	}
	httputil.WriteData(w, http.StatusOK, collections)
}

// parseCriteria reads filter criteria from query parameters. A price preset
// selects a range; min_price and max_price then narrow it explicitly.
func parseCriteria(q url.Values) (domain.Criteria, error) {
	c := domain.Criteria{
		Category: domain.Category(q.Get("category")),
		Size:     q.Get("size"),
		Color:    q.Get("color"),
	}
	if c.Category != "" && c.Category != domain.CategoryAll && !c.Category.Valid() {
		return c, apperrors.InvalidInput(fmt.Sprintf("unknown category %q", c.Category))
	}

	if id := q.Get("price"); id != "" {
		preset, ok := domain.PresetByID(id)
		if !ok {
			return c, apperrors.InvalidInput(fmt.Sprintf("unknown price range %q", id))
		}
		rng := preset.Range
		c.Price = &rng
	}

	minRaw, maxRaw := q.Get("min_price"), q.Get("max_price")
	if minRaw == "" && maxRaw == "" {
		return c, nil
	}

	rng := domain.PriceAll
	if c.Price != nil {
		rng = *c.Price
	}
	if minRaw != "" {
		v, err := decimal.NewFromString(minRaw)
		if err != nil || v.IsNegative() {
			return c, apperrors.InvalidInput("min_price must be a non-negative number")
		}
		rng.Min = v
	}
	if maxRaw != "" {
		v, err := decimal.NewFromString(maxRaw)
		if err != nil || v.IsNegative() {
			return c, apperrors.InvalidInput("max_price must be a non-negative number")
		}
		rng.Max = decimal.NewNullDecimal(v)
	}
	if rng.Max.Valid && rng.Min.GreaterThan(rng.Max.Decimal) {
		return c, apperrors.InvalidInput("min_price must not exceed max_price")
	}
	c.Price = &rng
	return c, nil
}
