package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/commerce-admin/internal/domain"
)

type memoryCartRepository struct {
	store *MemoryStore
}

// NewMemoryCartRepository returns a CartRepository backed by store.
func NewMemoryCartRepository(store *MemoryStore) CartRepository {
	return &memoryCartRepository{store: store}
}

func cloneCart(cart domain.Cart) domain.Cart {
	cart.Products = append([]domain.CartProduct{}, cart.Products...)
	return cart
}

func (r *memoryCartRepository) Create(_ context.Context, cart *domain.Cart) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[cart.UserID]; !ok {
		return ErrNotFound
	}
	cart.ID = newID()
	cart.CreatedAt = s.now()
	cart.UpdatedAt = cart.CreatedAt
	if cart.Products == nil {
		cart.Products = []domain.CartProduct{}
	}
	s.carts[cart.ID] = cloneCart(*cart)
	return nil
}

func (r *memoryCartRepository) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := cloneCart(cart)
	return &found, nil
}

func (r *memoryCartRepository) List(_ context.Context, filter CartFilter, page domain.PageOptions) ([]domain.Cart, int64, error) {
	page = page.Normalize()
	if _, ok := cartSortColumns[page.SortBy]; !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownSortField, page.SortBy)
	}

	s := r.store
	s.mu.Lock()
	matched := make([]domain.Cart, 0, len(s.carts))
	for _, cart := range s.carts {
		if filter.UserID != "" && cart.UserID != filter.UserID {
			continue
		}
		if filter.Status != nil && cart.Status != *filter.Status {
			continue
		}
		matched = append(matched, cloneCart(cart))
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		c := a.CreatedAt.Compare(b.CreatedAt)
		if page.SortBy == "updatedAt" {
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if page.Order == domain.OrderDesc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(matched))
	start := min(page.Skip(), len(matched))
	end := min(start+page.Take, len(matched))
	return matched[start:end], total, nil
}

func (r *memoryCartRepository) ReplaceProducts(_ context.Context, id string, products []domain.CartProduct) (*domain.Cart, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[id]
	if !ok || cart.Status != domain.CartStatusActive {
		return nil, ErrNotFound
	}
	cart.Products = append([]domain.CartProduct{}, products...)
	cart.UpdatedAt = s.now()
	s.carts[id] = cart
	updated := cloneCart(cart)
	return &updated, nil
}

func (r *memoryCartRepository) UpdateStatus(_ context.Context, id string, from, to domain.CartStatus) (*domain.Cart, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[id]
	if !ok || cart.Status != from {
		return nil, ErrNotFound
	}
	cart.Status = to
	cart.UpdatedAt = s.now()
	s.carts[id] = cart
	updated := cloneCart(cart)
	return &updated, nil
}

func (r *memoryCartRepository) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[id]; !ok {
		return ErrNotFound
	}
	delete(s.carts, id)
	return nil
}
