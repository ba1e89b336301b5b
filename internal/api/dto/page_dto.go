package dto

import "github.com/spec-kit/commerce-admin/internal/domain"

// PageQuery binds the listing query string.
type PageQuery struct {
	Page   int    `query:"page" json:"page" validate:"omitempty,min=1,max=1000000"`
	Take   int    `query:"take" json:"take" validate:"omitempty,min=1,max=100"`
	Order  string `query:"order" json:"order" validate:"omitempty,oneof=ASC DESC asc desc"`
	SortBy string `query:"sortBy" json:"sortBy" validate:"omitempty,max=32"`
	Search string `query:"search" json:"search" validate:"omitempty,max=200"`
}

// Options converts the query into page options.
func (q PageQuery) Options() domain.PageOptions {
	return domain.PageOptions{
		Page:   q.Page,
		Take:   q.Take,
		Order:  domain.SortOrder(q.Order),
		SortBy: q.SortBy,
		Search: q.Search,
	}
}

// PageMetaResponse is the metadata block of list responses.
type PageMetaResponse struct {
	Total           int64            `json:"total"`
	Page            int              `json:"page"`
	Take            int              `json:"take"`
	Order           domain.SortOrder `json:"order"`
	SortBy          string           `json:"sortBy"`
	Search          string           `json:"search,omitempty"`
	PageCount       int              `json:"pageCount"`
	HasPreviousPage bool             `json:"hasPreviousPage"`
	HasNextPage     bool             `json:"hasNextPage"`
}

// NewPageMetaResponse maps page metadata.
func NewPageMetaResponse(m domain.PageMeta) PageMetaResponse {
	return PageMetaResponse{
		Total:           m.Total,
		Page:            m.Page,
		Take:            m.Take,
		Order:           m.Order,
		SortBy:          m.SortBy,
		Search:          m.Search,
		PageCount:       m.PageCount,
		HasPreviousPage: m.HasPreviousPage,
		HasNextPage:     m.HasNextPage,
	}
}
