// Package pagination pages in-memory result sets addressed by page and
// per_page query parameters.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"

	apperrors "github.com/akshansh2332/driftclic-aesthetic-studio/pkg/errors"
)

const (
	DefaultPerPage = 24
	MaxPerPage     = 100
)

// Params identifies one page of a result set. Page is 1-based.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultParams returns the first page at the default size.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// Offset is the index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// FromQuery reads page and per_page. Absent values take the defaults; values
// that are not positive integers, or a per_page above MaxPerPage, are
// rejected with an invalid input error.
func FromQuery(q url.Values) (Params, error) {
	p := DefaultParams()

	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return p, apperrors.InvalidInput(fmt.Sprintf("page must be a positive integer, got %q", raw))
		}
		p.Page = v
	}

	if raw := q.Get("per_page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > MaxPerPage {
			return p, apperrors.InvalidInput(fmt.Sprintf("per_page must be between 1 and %d, got %q", MaxPerPage, raw))
		}
		p.PerPage = v
	}

	return p, nil
}

// Page is one page of items together with the size of the whole set.
type Page[T any] struct {
	Items      []T
	Total      int
	Page       int
	PerPage    int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// Apply cuts the page described by p out of items. A page past the end is
// empty, never nil.
func Apply[T any](items []T, p Params) Page[T] {
	total := len(items)
	totalPages := total / p.PerPage
	if total%p.PerPage > 0 {
		totalPages++
	}

	start := min(p.Offset(), total)
	end := min(start+p.PerPage, total)

	return Page[T]{
		Items:      append(make([]T, 0, end-start), items[start:end]...),
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
