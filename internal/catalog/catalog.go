// Package catalog owns the storefront's immutable product list.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
	apperrors "github.com/akshansh2332/driftclic-aesthetic-studio/pkg/errors"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/slug"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/validator"
)

//go:embed products.yaml
var embedded []byte

type catalogFile struct {
	Collections []domain.Collection `yaml:"collections" json:"collections" validate:"unique=ID,dive"`
	Products    []domain.Product    `yaml:"products" json:"products" validate:"min=1,unique=ID,dive"`
}

// Catalog is a read-only, validated product list. All methods are safe for
// concurrent use because nothing is mutated after construction.
type Catalog struct {
	products    []domain.Product
	collections []domain.Collection
	byID        map[string]int
	bySlug      map[string]int
}

// Options are the filter choices offered to shoppers.
type Options struct {
	Categories []domain.Category    `json:"categories"`
	Sizes      []string             `json:"sizes"`
	Colors     []string             `json:"colors"`
	Prices     []domain.PricePreset `json:"prices"`
}

// Load reads the catalog from path, or the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(embedded)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode catalog: empty document")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return build(f)
}

// New builds a catalog from in-memory products, applying the same
// validation as Parse.
func New(products []domain.Product, collections []domain.Collection) (*Catalog, error) {
	return build(catalogFile{Products: products, Collections: collections})
}

func build(f catalogFile) (*Catalog, error) {
	if err := validator.Validate(f); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	for i, p := range f.Products {
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("validate catalog: products[%d].price must not be negative", i)
		}
	}

	c := &Catalog{
		products:    slices.Clone(f.Products),
		collections: slices.Clone(f.Collections),
		byID:        make(map[string]int, len(f.Products)),
		bySlug:      make(map[string]int, len(f.Products)),
	}
	for i := range c.products {
		p := &c.products[i]
		if p.Slug == "" {
			p.Slug = slug.Generate(p.Name)
		}
		if _, dup := c.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("validate catalog: products[%d].slug %q is already taken", i, p.Slug)
		}
		c.byID[p.ID] = i
		c.bySlug[p.Slug] = i
	}
	return c, nil
}

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.products) }

// All returns every product in catalog order.
func (c *Catalog) All() []domain.Product {
	return slices.Clone(c.products)
}

// Collections returns the merchandising collections in display order.
func (c *Catalog) Collections() []domain.Collection {
	return slices.Clone(c.collections)
}

// Get looks up a product by id.
func (c *Catalog) Get(id string) (domain.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return c.products[i], nil
}

// BySlug looks up a product by its URL slug.
func (c *Catalog) BySlug(s string) (domain.Product, error) {
	i, ok := c.bySlug[s]
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", s)
	}
	return c.products[i], nil
}

// Lookup resolves a product id, falling back to a slug.
func (c *Catalog) Lookup(ref string) (domain.Product, error) {
	if p, err := c.Get(ref); err == nil {
		return p, nil
	}
	return c.BySlug(ref)
}

// Exists reports whether id names a catalog product.
func (c *Catalog) Exists(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Filter returns the products matching criteria in catalog order.
func (c *Catalog) Filter(criteria domain.Criteria) []domain.Product {
	return domain.Filter(c.products, criteria)
}

// Related returns up to limit products sharing the category of id.
func (c *Catalog) Related(id string, limit int) ([]domain.Product, error) {
	p, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	return domain.Related(c.products, p, limit), nil
}

// BestSellers returns the best-selling products in catalog order.
func (c *Catalog) BestSellers() []domain.Product {
	return domain.BestSellers(c.products)
}

// NewArrivals returns the new products in catalog order.
func (c *Catalog) NewArrivals() []domain.Product {
	return domain.NewArrivals(c.products)
}

// Resolve maps product ids to catalog products in catalog order, skipping
// ids the catalog does not know.
func (c *Catalog) Resolve(ids []string) []domain.Product {
	return domain.WishlistProducts(c.products, ids)
}

// FilterOptions returns the filter option lists.
func (c *Catalog) FilterOptions() Options {
	return Options{
		Categories: slices.Clone(domain.Categories),
		Sizes:      slices.Clone(domain.Sizes),
		Colors:     slices.Clone(domain.Colors),
		Prices:     slices.Clone(domain.PricePresets),
	}
}
