package dto

import (
	"time"

	"github.com/spec-kit/commerce-admin/internal/domain"
)

// CreateDiscountRequest payload.
type CreateDiscountRequest struct {
	Code        string     `json:"code" validate:"required,max=64"`
	Description string     `json:"description" validate:"max=500"`
	Percent     int        `json:"percent" validate:"required,min=1,max=100"`
	Active      *bool      `json:"active"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

// UpdateDiscountRequest payload; absent fields are left unchanged.
type UpdateDiscountRequest struct {
	Code        *string    `json:"code" validate:"omitempty,min=1,max=64"`
	Description *string    `json:"description" validate:"omitempty,max=500"`
	Percent     *int       `json:"percent" validate:"omitempty,min=1,max=100"`
	Active      *bool      `json:"active"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

// DiscountListQuery filters the discount listing.
type DiscountListQuery struct {
	PageQuery
	Active string `query:"active" json:"active" validate:"omitempty,oneof=true false"`
}

// DiscountResponse is the API view of a discount.
type DiscountResponse struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Percent     int        `json:"percent"`
	Active      bool       `json:"active"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewDiscountResponse maps a discount.
func NewDiscountResponse(d domain.Discount) DiscountResponse {
	return DiscountResponse{
		ID:          d.ID,
		Code:        d.Code,
		Description: d.Description,
		Percent:     d.Percent,
		Active:      d.Active,
		StartsAt:    d.StartsAt,
		EndsAt:      d.EndsAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// NewDiscountResponses maps a list of discounts.
func NewDiscountResponses(items []domain.Discount) []DiscountResponse {
	out := make([]DiscountResponse, 0, len(items))
	for _, d := range items {
		out = append(out, NewDiscountResponse(d))
	}
	return out
}
