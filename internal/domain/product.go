package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Category is the audience a product is merchandised for.
type Category string

const (
	CategoryMen    Category = "men"
	CategoryWomen  Category = "women"
	CategoryUnisex Category = "unisex"

	// CategoryAll is the filter sentinel meaning "no category constraint".
	CategoryAll Category = "all"
)

// Categories lists the filter options in display order, sentinel first.
var Categories = []Category{CategoryAll, CategoryMen, CategoryWomen, CategoryUnisex}

// Sizes lists the size filter options in display order.
var Sizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

// Colors lists the color filter options in display order.
var Colors = []string{"Off White", "Black", "Stone", "Sand", "Navy", "Cream", "Grey"}

// Valid reports whether c is one of the merchandised categories. The
// CategoryAll sentinel is not a valid product category.
func (c Category) Valid() bool {
	switch c {
	case CategoryMen, CategoryWomen, CategoryUnisex:
		return true
	}
	return false
}

// Product is an immutable catalog entry.
type Product struct {
	ID           string          `json:"id" yaml:"id" validate:"required"`
	Name         string          `json:"name" yaml:"name" validate:"required"`
	Slug         string          `json:"slug" yaml:"slug"`
	Description  string          `json:"description" yaml:"description"`
	Price        decimal.Decimal `json:"price" yaml:"price"`
	Image        string          `json:"image" yaml:"image" validate:"required"`
	HoverImage   string          `json:"hover_image,omitempty" yaml:"hoverImage"`
	Category     Category        `json:"category" yaml:"category" validate:"oneof=men women unisex"`
	Sizes        []string        `json:"sizes" yaml:"sizes" validate:"min=1,unique,dive,required"`
	Colors       []string        `json:"colors" yaml:"colors" validate:"min=1,unique,dive,required"`
	IsBestSeller bool            `json:"is_best_seller" yaml:"isBestSeller"`
	IsNew        bool            `json:"is_new" yaml:"isNew"`
}

// HasSize reports whether size is one of the product's exact size labels.
func (p Product) HasSize(size string) bool {
	return slices.Contains(p.Sizes, size)
}

// HasColor reports whether color is one of the product's exact color labels.
// Used to validate a selection; filtering uses MatchesColor.
func (p Product) HasColor(color string) bool {
	return slices.Contains(p.Colors, color)
}

// Collection is a merchandising entry point onto one category.
type Collection struct {
	ID          Category `json:"id" yaml:"id" validate:"oneof=men women unisex"`
	Name        string   `json:"name" yaml:"name" validate:"required"`
	Description string   `json:"description" yaml:"description"`
	Image       string   `json:"image" yaml:"image"`
}
