package service

import (
	"strings"

	"craftopia/internal/repository"
)

// Limits bound the page size of one listing endpoint.
type Limits struct {
	Default int
	Max     int
}

var (
	UserLimits     = Limits{Default: 10, Max: 100}
	CategoryLimits = Limits{Default: 12, Max: 50}
	DecorLimits    = Limits{Default: 12, Max: 50}
	FeaturedLimits = Limits{Default: 8, Max: 20}
)

// MaxPage caps the requested page so the row offset stays small.
const MaxPage = 100000

// PageRequest is the raw page/limit pair from a query string.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize applies defaults and clamps the page and the limit.
func (p PageRequest) Normalize(l Limits) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = l.Default
	}
	if p.Limit > l.Max {
		p.Limit = l.Max
	}
	return p
}

// Window converts a normalized request into an offset/limit pair.
func (p PageRequest) Window() repository.Page {
	return repository.Page{Offset: (p.Page - 1) * p.Limit, Limit: p.Limit}
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	Pages       int   `json:"pages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination builds the pagination block for a normalized request.
func NewPagination(p PageRequest, total int64) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       total,
		Pages:       pages,
		HasNextPage: p.Page < pages,
		HasPrevPage: p.Page > 1,
	}
}

// PageResult is one page of items.
type PageResult[T any] struct {
	Items      []T
	Pagination Pagination
}

// parseSort maps a public sort key onto a column from allowed, falling back
// to def. Order is descending unless sortOrder is "asc".
func parseSort(sortBy, sortOrder string, allowed map[string]string, def string) repository.Sort {
	column, ok := allowed[sortBy]
	if !ok {
		column = allowed[def]
	}
	return repository.Sort{Column: column, Desc: !strings.EqualFold(sortOrder, "asc")}
}
