package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageOptions_Normalize(t *testing.T) {
	opts := PageOptions{Page: 0, Take: 500, Order: "asc", Search: "  ann "}.Normalize()

	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, MaxPageTake, opts.Take)
	assert.Equal(t, OrderAsc, opts.Order)
	assert.Equal(t, "createdAt", opts.SortBy)
	assert.Equal(t, "ann", opts.Search)

	defaults := PageOptions{}.Normalize()
	assert.Equal(t, DefaultPageTake, defaults.Take)
	assert.Equal(t, OrderDesc, defaults.Order)
	assert.Equal(t, 0, defaults.Skip())
	assert.Equal(t, 20, PageOptions{Page: 3, Take: 10}.Skip())
}

func TestPageOptions_SkipNeverNegative(t *testing.T) {
	huge := PageOptions{Page: 1 << 62, Take: 100}
	assert.Equal(t, math.MaxInt, huge.Skip())

	normalized := huge.Normalize()
	assert.Equal(t, MaxPage, normalized.Page)
	assert.Equal(t, (MaxPage-1)*100, normalized.Skip())

	assert.Equal(t, 0, PageOptions{Page: 5}.Skip())
}

func TestNewPageMeta(t *testing.T) {
	opts := PageOptions{Page: 2, Take: 10}.Normalize()
	meta := NewPageMeta(25, &opts)

	assert.Equal(t, int64(25), meta.Total)
	assert.Equal(t, 3, meta.PageCount)
	assert.True(t, meta.HasPreviousPage)
	assert.True(t, meta.HasNextPage)

	bare := NewPageMeta(4, nil)
	assert.Equal(t, int64(4), bare.Total)
	assert.Zero(t, bare.PageCount)
}

func TestCartStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, CartStatusActive.CanTransitionTo(CartStatusOrdered))
	assert.True(t, CartStatusActive.CanTransitionTo(CartStatusCanceled))
	assert.False(t, CartStatusActive.CanTransitionTo(CartStatusActive))
	assert.False(t, CartStatusOrdered.CanTransitionTo(CartStatusCanceled))
	assert.False(t, CartStatusCanceled.CanTransitionTo(CartStatusOrdered))
}

func TestMergeCartProducts(t *testing.T) {
	merged := MergeCartProducts([]CartProduct{
		{ProductID: "b", Quantity: 1},
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 4},
	})
	assert.Equal(t, []CartProduct{{ProductID: "b", Quantity: 5}, {ProductID: "a", Quantity: 2}}, merged)
}

func TestUserRoles(t *testing.T) {
	role, ok := ParseUserRole(" manager ")
	assert.True(t, ok)
	assert.Equal(t, UserRoleManager, role)

	_, ok = ParseUserRole("owner")
	assert.False(t, ok)

	assert.Equal(t, UserStatusActive, InitialStatusFor(UserRoleSuperuser))
	assert.Equal(t, UserStatusInActive, InitialStatusFor(UserRoleUser))
	assert.Equal(t, "ann@example.com", NormalizeEmail("  Ann@Example.COM "))

	decorated := Decorate(User{ID: "1", Role: UserRoleSuperuser})
	assert.True(t, decorated.IsSuperuser)
	assert.False(t, decorated.IsManager)
}
