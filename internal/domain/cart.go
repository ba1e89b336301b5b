package domain

import "time"

// CartStatus represents the state of a shopping cart.
type CartStatus string

const (
	CartStatusActive   CartStatus = "ACTIVE"
	CartStatusOrdered  CartStatus = "ORDERED"
	CartStatusCanceled CartStatus = "CANCELED"
)

// Valid reports whether the status is known.
func (s CartStatus) Valid() bool {
	switch s {
	case CartStatusActive, CartStatusOrdered, CartStatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a cart may move from s to next.
// Only active carts change state.
func (s CartStatus) CanTransitionTo(next CartStatus) bool {
	return s == CartStatusActive && (next == CartStatusOrdered || next == CartStatusCanceled)
}

// CartProduct is a line of a cart.
type CartProduct struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is a user's shopping cart.
type Cart struct {
	ID        string
	UserID    string
	Status    CartStatus
	Products  []CartProduct
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MergeCartProducts collapses duplicate product lines by summing quantities,
// keeping first-seen order.
func MergeCartProducts(lines []CartProduct) []CartProduct {
	merged := make([]CartProduct, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}
