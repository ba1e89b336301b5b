package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"github.com/spec-kit/commerce-admin/internal/domain"
)

type memoryUserRepository struct {
	store *MemoryStore
}

// NewMemoryUserRepository returns a UserRepository backed by store.
func NewMemoryUserRepository(store *MemoryStore) UserRepository {
	return &memoryUserRepository{store: store}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Role == domain.UserRoleSuperuser && s.superuser != "" {
		return ErrSuperuserExists
	}
	if _, taken := s.emails[user.Email]; taken {
		return ErrEmailTaken
	}

	user.ID = newID()
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	s.emails[user.Email] = user.ID
	if user.Role == domain.UserRoleSuperuser {
		s.superuser = user.ID
	}
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.FindOne(ctx, UserLookup{ID: id})
}

func (r *memoryUserRepository) FindOne(_ context.Context, lookup UserLookup) (*domain.User, error) {
	if lookup.Empty() {
		return nil, ErrNotFound
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if lookup.ID != "" && user.ID != lookup.ID {
			continue
		}
		if lookup.Email != "" && user.Email != lookup.Email {
			continue
		}
		if lookup.VerificationCode != "" && (user.VerificationCode == nil || *user.VerificationCode != lookup.VerificationCode) {
			continue
		}
		if lookup.Role != nil && user.Role != *lookup.Role {
			continue
		}
		found := user
		return &found, nil
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) TransitionStatus(_ context.Context, id string, from, to domain.UserStatus, verificationCode string) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok || user.Status != from {
		return nil, ErrNotFound
	}
	code := verificationCode
	user.Status = to
	user.VerificationCode = &code
	user.UpdatedAt = s.now()
	s.users[id] = user
	return &user, nil
}

func (r *memoryUserRepository) Activate(_ context.Context, id, passwordHash string) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok || user.Status != domain.UserStatusInActive {
		return nil, ErrNotFound
	}
	hash := passwordHash
	user.PasswordHash = &hash
	user.Status = domain.UserStatusActive
	user.UpdatedAt = s.now()
	s.users[id] = user
	return &user, nil
}

func (r *memoryUserRepository) UpdateProfile(_ context.Context, id string, patch UserPatch) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Role != nil && *patch.Role != user.Role {
		if *patch.Role == domain.UserRoleSuperuser && s.superuser != "" {
			return nil, ErrSuperuserExists
		}
		if user.Role == domain.UserRoleSuperuser {
			s.superuser = ""
		}
		if *patch.Role == domain.UserRoleSuperuser {
			s.superuser = id
		}
		user.Role = *patch.Role
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	user.UpdatedAt = s.now()
	s.users[id] = user
	return &user, nil
}

func (r *memoryUserRepository) Delete(_ context.Context, id string) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.users, id)
	delete(s.emails, user.Email)
	if s.superuser == id {
		s.superuser = ""
	}
	for cartID, cart := range s.carts {
		if cart.UserID == id {
			delete(s.carts, cartID)
		}
	}
	return &user, nil
}

func (r *memoryUserRepository) Directory(_ context.Context, q DirectoryQuery) (*domain.DirectoryPage, error) {
	filter := q.Filter
	opts := domain.PageOptions{Page: 1, Take: 1, Order: domain.OrderDesc, SortBy: "createdAt"}
	if q.Page != nil {
		opts = q.Page.Normalize()
		if opts.Search != "" {
			filter.Search = opts.Search
		}
	}
	if !IsSortable(opts.SortBy) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSortField, opts.SortBy)
	}

	s := r.store
	s.mu.Lock()
	matched := make([]domain.User, 0, len(s.users))
	matcher := search.New(language.English, search.IgnoreCase)
	term := strings.TrimSpace(filter.Search)
	for _, user := range s.users {
		if matchesDirectoryFilter(user, filter, matcher, term) {
			matched = append(matched, user)
		}
	}
	s.mu.Unlock()

	sortDirectory(matched, opts.SortBy, opts.Order)

	total := int64(len(matched))
	start := opts.Skip()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + opts.Take
	if end > len(matched) {
		end = len(matched)
	}

	data := make([]domain.DirectoryUser, 0, end-start)
	for _, user := range matched[start:end] {
		data = append(data, domain.Decorate(user))
	}

	var meta domain.PageMeta
	if q.Page == nil {
		meta = domain.NewPageMeta(total, nil)
	} else {
		meta = domain.NewPageMeta(total, &opts)
	}
	return &domain.DirectoryPage{Data: data, Metadata: meta}, nil
}

func matchesDirectoryFilter(user domain.User, f DirectoryFilter, matcher *search.Matcher, term string) bool {
	if f.ID != "" && user.ID != f.ID {
		return false
	}
	if f.Email != "" && user.Email != domain.NormalizeEmail(f.Email) {
		return false
	}
	if f.VerificationCode != "" && (user.VerificationCode == nil || *user.VerificationCode != f.VerificationCode) {
		return false
	}
	if f.Role != nil && user.Role != *f.Role {
		return false
	}
	if f.Status != nil && user.Status != *f.Status {
		return false
	}
	if term != "" {
		if start, _ := matcher.IndexString(user.Name, term); start >= 0 {
			return true
		}
		start, _ := matcher.IndexString(user.Email, term)
		return start >= 0
	}
	return true
}

// sortDirectory orders users the way the Postgres directory does: text keys
// compare case-insensitively and ties fall back to the id.
func sortDirectory(users []domain.User, sortBy string, order domain.SortOrder) {
	collator := collate.New(language.English, collate.IgnoreCase)
	compare := func(a, b domain.User) int {
		var c int
		switch sortBy {
		case "name":
			c = collator.CompareString(a.Name, b.Name)
		case "email":
			c = collator.CompareString(a.Email, b.Email)
		case "updatedAt":
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if order == domain.OrderDesc {
			return -c
		}
		return c
	}
	sort.SliceStable(users, func(i, j int) bool {
		return compare(users[i], users[j]) < 0
	})
}
