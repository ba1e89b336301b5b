package repository

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/commerce-admin/internal/domain"
)

// MemoryStore is a process-local backing store used by the memory storage
// driver and by tests. It enforces the same uniqueness rules as the Postgres
// schema: one account per email and at most one superuser.
type MemoryStore struct {
	mu        sync.Mutex
	users     map[string]domain.User
	emails    map[string]string
	superuser string
	carts     map[string]domain.Cart
	discounts map[string]domain.Discount
	codes     map[string]string
	now       func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]domain.User),
		emails:    make(map[string]string),
		carts:     make(map[string]domain.Cart),
		discounts: make(map[string]domain.Discount),
		codes:     make(map[string]string),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func newID() string {
	return uuid.NewString()
}
