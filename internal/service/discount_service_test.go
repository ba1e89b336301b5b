package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-admin/internal/domain"
	"github.com/spec-kit/commerce-admin/internal/repository"
	"github.com/spec-kit/commerce-admin/pkg/util"
)

func newDiscountService() *DiscountService {
	return NewDiscountService(repository.NewMemoryDiscountRepository(repository.NewMemoryStore()), zap.NewNop())
}

func TestDiscountService_CreateNormalizesAndRejectsDuplicates(t *testing.T) {
	svc := newDiscountService()
	ctx := context.Background()

	d, err := svc.CreateDiscount(ctx, DiscountInput{Code: " summer10 ", Description: "Summer", Percent: 10})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", d.Code)
	assert.True(t, d.Active)

	_, err = svc.CreateDiscount(ctx, DiscountInput{Code: "Summer10", Percent: 5})
	assertDomainError(t, err, util.CodeConflict, MsgDiscountExisted)
}

func TestDiscountService_Validation(t *testing.T) {
	svc := newDiscountService()
	ctx := context.Background()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, err := svc.CreateDiscount(ctx, DiscountInput{Code: "X", Percent: 0})
	assertDomainError(t, err, util.CodeBadRequest, MsgDiscountPercent)

	_, err = svc.CreateDiscount(ctx, DiscountInput{Code: "X", Percent: 10, StartsAt: &start, EndsAt: &end})
	assertDomainError(t, err, util.CodeBadRequest, MsgDiscountWindow)

	_, err = svc.CreateDiscount(ctx, DiscountInput{Code: "  ", Percent: 10})
	assert.True(t, util.IsCode(err, util.CodeValidationFailed))
}

func TestDiscountService_UpdateListDelete(t *testing.T) {
	svc := newDiscountService()
	ctx := context.Background()

	first, err := svc.CreateDiscount(ctx, DiscountInput{Code: "A10", Percent: 10})
	require.NoError(t, err)
	_, err = svc.CreateDiscount(ctx, DiscountInput{Code: "B20", Percent: 20})
	require.NoError(t, err)

	percent, inactive := 15, false
	updated, err := svc.UpdateDiscount(ctx, first.ID, DiscountPatch{Percent: &percent, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Percent)
	assert.False(t, updated.Active)

	taken := "b20"
	_, err = svc.UpdateDiscount(ctx, first.ID, DiscountPatch{Code: &taken})
	assertDomainError(t, err, util.CodeConflict, MsgDiscountExisted)

	active := true
	page, err := svc.ListDiscounts(ctx, repository.DiscountFilter{Active: &active}, domain.PageOptions{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "B20", page.Data[0].Code)

	require.NoError(t, svc.DeleteDiscount(ctx, first.ID))
	_, err = svc.GetDiscount(ctx, first.ID)
	assertDomainError(t, err, util.CodeNotFound, MsgDiscountNotExisted)
}
