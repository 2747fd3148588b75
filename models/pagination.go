package models

import "math"

// Default page sizes for listings
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a 1-based page request
type Page struct {
	Page  int
	Limit int
}

// NewPage normalizes the page and limit values coming from a request
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

// Skip returns the number of documents before the page
func (p Page) Skip() int {
	return (p.Page - 1) * p.Limit
}

// PageResult wraps one page of a listing with its metadata
type PageResult[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// NewPageResult builds the listing response. A nil data slice is replaced
// with an empty one so it marshals as [].
func NewPageResult[T any](data []T, p Page, total int64) PageResult[T] {
	if data == nil {
		data = []T{}
	}
	return PageResult[T]{
		Data:       data,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: total,
		TotalPages: int(math.Ceil(float64(total) / float64(p.Limit))),
	}
}
