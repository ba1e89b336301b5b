package dto

import (
	"time"

	"github.com/spec-kit/commerce-admin/internal/domain"
)

// CreateCartRequest opens a cart for a user.
type CreateCartRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// CartProductRequest is one cart line.
type CartProductRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// ReplaceCartProductsRequest overwrites the cart lines.
type ReplaceCartProductsRequest struct {
	Products []CartProductRequest `json:"products" validate:"dive"`
}

// UpdateCartStatusRequest checks out or cancels a cart.
type UpdateCartStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ORDERED CANCELED"`
}

// CartListQuery filters the cart listing.
type CartListQuery struct {
	PageQuery
	UserID string `query:"userId" json:"userId"`
	Status string `query:"status" json:"status" validate:"omitempty,oneof=ACTIVE ORDERED CANCELED"`
}

// CartResponse is the API view of a cart.
type CartResponse struct {
	ID        string               `json:"id"`
	UserID    string               `json:"userId"`
	Status    domain.CartStatus    `json:"status"`
	Products  []domain.CartProduct `json:"products"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// Lines converts the request lines.
func (r ReplaceCartProductsRequest) Lines() []domain.CartProduct {
	lines := make([]domain.CartProduct, 0, len(r.Products))
	for _, p := range r.Products {
		lines = append(lines, domain.CartProduct{ProductID: p.ProductID, Quantity: p.Quantity})
	}
	return lines
}

// NewCartResponse maps a cart.
func NewCartResponse(c domain.Cart) CartResponse {
	products := c.Products
	if products == nil {
		products = []domain.CartProduct{}
	}
	return CartResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Status:    c.Status,
		Products:  products,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewCartResponses maps a list of carts.
func NewCartResponses(carts []domain.Cart) []CartResponse {
	out := make([]CartResponse, 0, len(carts))
	for _, c := range carts {
		out = append(out, NewCartResponse(c))
	}
	return out
}
