package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/commerce-admin/internal/domain"
)

type memoryDiscountRepository struct {
	store *MemoryStore
}

// NewMemoryDiscountRepository returns a DiscountRepository backed by store.
func NewMemoryDiscountRepository(store *MemoryStore) DiscountRepository {
	return &memoryDiscountRepository{store: store}
}

func (r *memoryDiscountRepository) Create(_ context.Context, d *domain.Discount) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.codes[d.Code]; taken {
		return ErrDiscountCodeTaken
	}
	d.ID = newID()
	d.CreatedAt = s.now()
	d.UpdatedAt = d.CreatedAt
	s.discounts[d.ID] = *d
	s.codes[d.Code] = d.ID
	return nil
}

func (r *memoryDiscountRepository) GetByID(_ context.Context, id string) (*domain.Discount, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.discounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (r *memoryDiscountRepository) GetByCode(ctx context.Context, code string) (*domain.Discount, error) {
	s := r.store
	s.mu.Lock()
	id, ok := s.codes[domain.NormalizeDiscountCode(code)]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *memoryDiscountRepository) List(_ context.Context, filter DiscountFilter, page domain.PageOptions) ([]domain.Discount, int64, error) {
	page = page.Normalize()
	if _, ok := discountSortColumns[page.SortBy]; !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownSortField, page.SortBy)
	}
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	if term == "" {
		term = strings.ToLower(page.Search)
	}

	s := r.store
	s.mu.Lock()
	matched := make([]domain.Discount, 0, len(s.discounts))
	for _, d := range s.discounts {
		if filter.Active != nil && d.Active != *filter.Active {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(d.Code), term) && !strings.Contains(strings.ToLower(d.Description), term) {
			continue
		}
		matched = append(matched, d)
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var c int
		switch page.SortBy {
		case "updatedAt":
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		case "code":
			c = strings.Compare(a.Code, b.Code)
		case "percent":
			c = a.Percent - b.Percent
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
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

func (r *memoryDiscountRepository) Update(_ context.Context, d *domain.Discount) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.discounts[d.ID]
	if !ok {
		return ErrNotFound
	}
	if d.Code != current.Code {
		if _, taken := s.codes[d.Code]; taken {
			return ErrDiscountCodeTaken
		}
		delete(s.codes, current.Code)
		s.codes[d.Code] = d.ID
	}
	d.CreatedAt = current.CreatedAt
	d.UpdatedAt = s.now()
	s.discounts[d.ID] = *d
	return nil
}

func (r *memoryDiscountRepository) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.discounts[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.discounts, id)
	delete(s.codes, d.Code)
	return nil
}
