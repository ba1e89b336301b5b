package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-admin/internal/domain"
	"github.com/spec-kit/commerce-admin/internal/repository"
	"github.com/spec-kit/commerce-admin/pkg/util"
)

const (
	MsgDiscountExisted    = "discount_is_existed"
	MsgDiscountNotExisted = "discount_is_not_existed"
	MsgDiscountWindow     = "discount_window_invalid"
	MsgDiscountPercent    = "discount_percent_invalid"
)

// DiscountInput creates a discount.
type DiscountInput struct {
	Code        string
	Description string
	Percent     int
	Active      *bool
	StartsAt    *time.Time
	EndsAt      *time.Time
}

// DiscountPatch holds optional discount changes.
type DiscountPatch struct {
	Code        *string
	Description *string
	Percent     *int
	Active      *bool
	StartsAt    *time.Time
	EndsAt      *time.Time
}

// DiscountPage is a page of discounts with listing metadata.
type DiscountPage struct {
	Data     []domain.Discount
	Metadata domain.PageMeta
}

// DiscountService manages discount codes.
type DiscountService struct {
	discounts repository.DiscountRepository
	logger    *zap.Logger
}

// NewDiscountService builds the service.
func NewDiscountService(repo repository.DiscountRepository, logger *zap.Logger) *DiscountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscountService{discounts: repo, logger: logger}
}

// CreateDiscount stores a new discount. Codes are unique after upper-casing.
func (s *DiscountService) CreateDiscount(ctx context.Context, input DiscountInput) (*domain.Discount, error) {
	d := &domain.Discount{
		Code:        domain.NormalizeDiscountCode(input.Code),
		Description: strings.TrimSpace(input.Description),
		Percent:     input.Percent,
		Active:      true,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
	}
	if input.Active != nil {
		d.Active = *input.Active
	}
	if err := validateDiscount(d); err != nil {
		return nil, err
	}

	if err := s.discounts.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDiscountCodeTaken) {
			return nil, util.NewConflict(MsgDiscountExisted, map[string]any{"code": d.Code})
		}
		return nil, util.NewInternalError(err)
	}
	s.logger.Info("discount created", zap.String("discount_id", d.ID), zap.String("code", d.Code))
	return d, nil
}

// GetDiscount returns a discount by id.
func (s *DiscountService) GetDiscount(ctx context.Context, id string) (*domain.Discount, error) {
	d, err := s.discounts.GetByID(ctx, id)
	if err != nil {
		return nil, discountError(err)
	}
	return d, nil
}

// ListDiscounts pages through discounts.
func (s *DiscountService) ListDiscounts(ctx context.Context, filter repository.DiscountFilter, opts domain.PageOptions) (*DiscountPage, error) {
	opts = opts.Normalize()
	items, total, err := s.discounts.List(ctx, filter, opts)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownSortField) {
			return nil, util.NewValidationError("invalid sort field", map[string]any{"sortBy": opts.SortBy})
		}
		return nil, util.NewInternalError(err)
	}
	return &DiscountPage{Data: items, Metadata: domain.NewPageMeta(total, &opts)}, nil
}

// UpdateDiscount applies a partial change.
func (s *DiscountService) UpdateDiscount(ctx context.Context, id string, patch DiscountPatch) (*domain.Discount, error) {
	d, err := s.discounts.GetByID(ctx, id)
	if err != nil {
		return nil, discountError(err)
	}

	if patch.Code != nil {
		d.Code = domain.NormalizeDiscountCode(*patch.Code)
	}
	if patch.Description != nil {
		d.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Percent != nil {
		d.Percent = *patch.Percent
	}
	if patch.Active != nil {
		d.Active = *patch.Active
	}
	if patch.StartsAt != nil {
		d.StartsAt = patch.StartsAt
	}
	if patch.EndsAt != nil {
		d.EndsAt = patch.EndsAt
	}
	if err := validateDiscount(d); err != nil {
		return nil, err
	}

	if err := s.discounts.Update(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDiscountCodeTaken) {
			return nil, util.NewConflict(MsgDiscountExisted, map[string]any{"code": d.Code})
		}
		return nil, discountError(err)
	}
	return d, nil
}

// DeleteDiscount removes a discount.
func (s *DiscountService) DeleteDiscount(ctx context.Context, id string) error {
	if err := s.discounts.Delete(ctx, id); err != nil {
		return discountError(err)
	}
	return nil
}

func validateDiscount(d *domain.Discount) error {
	if d.Code == "" {
		return util.NewValidationError("code is required", map[string]any{"code": "required"})
	}
	if d.Percent < 1 || d.Percent > 100 {
		return util.NewBadRequest(MsgDiscountPercent)
	}
	if !d.ValidWindow() {
		return util.NewBadRequest(MsgDiscountWindow)
	}
	return nil
}

func discountError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return util.NewNotFoundMessage(MsgDiscountNotExisted)
	}
	return util.NewInternalError(err)
}
