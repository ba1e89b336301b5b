package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-admin/internal/domain"
	"github.com/spec-kit/commerce-admin/internal/repository"
	"github.com/spec-kit/commerce-admin/pkg/util"
)

func newCartFixture(t *testing.T) (*CartService, string) {
	t.Helper()
	store := repository.NewMemoryStore()
	users := repository.NewMemoryUserRepository(store)
	owner := &domain.User{Name: "Owner", Email: "owner@x.com", Role: domain.UserRoleUser, Status: domain.UserStatusActive}
	require.NoError(t, users.Create(context.Background(), owner))

	svc := NewCartService(CartDependencies{
		CartRepo: repository.NewMemoryCartRepository(store),
		UserRepo: users,
		Logger:   zap.NewNop(),
	})
	return svc, owner.ID
}

func TestCartService_CreateRequiresUser(t *testing.T) {
	svc, ownerID := newCartFixture(t)
	ctx := context.Background()

	cart, err := svc.CreateCart(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, domain.CartStatusActive, cart.Status)
	assert.Empty(t, cart.Products)

	_, err = svc.CreateCart(ctx, "missing")
	assertDomainError(t, err, util.CodeNotFound, MsgUserNotExistedPlain)
}

func TestCartService_ReplaceProductsMergesDuplicates(t *testing.T) {
	svc, ownerID := newCartFixture(t)
	ctx := context.Background()
	cart, err := svc.CreateCart(ctx, ownerID)
	require.NoError(t, err)

	updated, err := svc.ReplaceProducts(ctx, cart.ID, []domain.CartProduct{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 2},
		{ProductID: "p1", Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.CartProduct{{ProductID: "p1", Quantity: 4}, {ProductID: "p2", Quantity: 2}}, updated.Products)

	_, err = svc.ReplaceProducts(ctx, cart.ID, []domain.CartProduct{{ProductID: "p1", Quantity: 0}})
	assert.True(t, util.IsCode(err, util.CodeValidationFailed))
}

func TestCartService_StatusTransitions(t *testing.T) {
	svc, ownerID := newCartFixture(t)
	ctx := context.Background()
	cart, err := svc.CreateCart(ctx, ownerID)
	require.NoError(t, err)

	ordered, err := svc.UpdateStatus(ctx, cart.ID, domain.CartStatusOrdered)
	require.NoError(t, err)
	assert.Equal(t, domain.CartStatusOrdered, ordered.Status)

	_, err = svc.UpdateStatus(ctx, cart.ID, domain.CartStatusCanceled)
	assertDomainError(t, err, util.CodeBadRequest, MsgCartStatusMove)

	_, err = svc.ReplaceProducts(ctx, cart.ID, []domain.CartProduct{{ProductID: "p1", Quantity: 1}})
	assertDomainError(t, err, util.CodeBadRequest, MsgCartNotActive)

	_, err = svc.UpdateStatus(ctx, "missing", domain.CartStatusCanceled)
	assertDomainError(t, err, util.CodeNotFound, MsgCartNotExisted)
}

func TestCartService_ListAndDelete(t *testing.T) {
	svc, ownerID := newCartFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.CreateCart(ctx, ownerID)
		require.NoError(t, err)
	}

	page, err := svc.ListCarts(ctx, repository.CartFilter{UserID: ownerID}, domain.PageOptions{Take: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Metadata.Total)
	assert.True(t, page.Metadata.HasNextPage)

	require.NoError(t, svc.DeleteCart(ctx, page.Data[0].ID))
	err = svc.DeleteCart(ctx, page.Data[0].ID)
	assertDomainError(t, err, util.CodeNotFound, MsgCartNotExisted)

	_, err = svc.ListCarts(ctx, repository.CartFilter{}, domain.PageOptions{SortBy: "name"})
	assert.True(t, util.IsCode(err, util.CodeValidationFailed))
}
