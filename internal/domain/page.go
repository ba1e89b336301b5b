package domain

import (
	"math"
	"strings"
)

// SortOrder is the direction of a paginated listing.
type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

const (
	DefaultPageTake = 10
	MaxPageTake     = 100
	MaxPage         = 1_000_000
)

// PageOptions describes a requested page of a listing.
type PageOptions struct {
	Page   int
	Take   int
	Order  SortOrder
	SortBy string
	Search string
}

// Normalize applies defaults and bounds.
func (p PageOptions) Normalize() PageOptions {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Take < 1 {
		p.Take = DefaultPageTake
	}
	if p.Take > MaxPageTake {
		p.Take = MaxPageTake
	}
	switch SortOrder(strings.ToUpper(string(p.Order))) {
	case OrderAsc:
		p.Order = OrderAsc
	default:
		p.Order = OrderDesc
	}
	if p.SortBy == "" {
		p.SortBy = "createdAt"
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// Skip returns the number of rows preceding the page. It never goes negative,
// even for options that were not normalized.
func (p PageOptions) Skip() int {
	if p.Page < 1 || p.Take < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Take {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Take
}

// PageMeta echoes the page options alongside the total match count.
type PageMeta struct {
	Total           int64
	Page            int
	Take            int
	Order           SortOrder
	SortBy          string
	Search          string
	PageCount       int
	HasPreviousPage bool
	HasNextPage     bool
}

// NewPageMeta computes metadata for a page. A nil opts yields a bare count.
func NewPageMeta(total int64, opts *PageOptions) PageMeta {
	meta := PageMeta{Total: total}
	if opts == nil {
		return meta
	}
	meta.Page = opts.Page
	meta.Take = opts.Take
	meta.Order = opts.Order
	meta.SortBy = opts.SortBy
	meta.Search = opts.Search
	if opts.Take > 0 {
		meta.PageCount = int((total + int64(opts.Take) - 1) / int64(opts.Take))
	}
	meta.HasPreviousPage = opts.Page > 1
	meta.HasNextPage = opts.Page < meta.PageCount
	return meta
}

// DirectoryPage is the result of a directory query.
type DirectoryPage struct {
	Data     []DirectoryUser
	Metadata PageMeta
}
