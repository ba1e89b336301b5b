package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-admin/internal/domain"
	"github.com/spec-kit/commerce-admin/internal/repository"
	"github.com/spec-kit/commerce-admin/pkg/util"
)

const (
	MsgCartNotExisted  = "cart_is_not_existed"
	MsgCartNotActive   = "cart_is_not_active"
	MsgCartStatusMove  = "cart_status_transition_invalid"
	MsgCartQuantityLow = "cart_quantity_invalid"
)

// CartPage is a page of carts with listing metadata.
type CartPage struct {
	Data     []domain.Cart
	Metadata domain.PageMeta
}

// CartService manages shopping carts.
type CartService struct {
	carts  repository.CartRepository
	users  repository.UserRepository
	logger *zap.Logger
}

// CartDependencies collects the collaborators of CartService.
type CartDependencies struct {
	CartRepo repository.CartRepository
	UserRepo repository.UserRepository
	Logger   *zap.Logger
}

// NewCartService builds the service.
func NewCartService(deps CartDependencies) *CartService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{carts: deps.CartRepo, users: deps.UserRepo, logger: logger}
}

// CreateCart opens an empty ACTIVE cart for an existing user.
func (s *CartService) CreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFoundMessage(MsgUserNotExistedPlain)
		}
		return nil, util.NewInternalError(err)
	}

	cart := &domain.Cart{UserID: userID, Status: domain.CartStatusActive, Products: []domain.CartProduct{}}
	if err := s.carts.Create(ctx, cart); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFoundMessage(MsgUserNotExistedPlain)
		}
		return nil, util.NewInternalError(err)
	}
	s.logger.Info("cart created", zap.String("cart_id", cart.ID), zap.String("user_id", userID))
	return cart, nil
}

// GetCart returns a cart by id.
func (s *CartService) GetCart(ctx context.Context, id string) (*domain.Cart, error) {
	cart, err := s.carts.GetByID(ctx, id)
	if err != nil {
		return nil, cartError(err)
	}
	return cart, nil
}

// ListCarts pages through carts, optionally for a single user.
func (s *CartService) ListCarts(ctx context.Context, filter repository.CartFilter, opts domain.PageOptions) (*CartPage, error) {
	opts = opts.Normalize()
	carts, total, err := s.carts.List(ctx, filter, opts)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownSortField) {
			return nil, util.NewValidationError("invalid sort field", map[string]any{"sortBy": opts.SortBy})
		}
		return nil, util.NewInternalError(err)
	}
	return &CartPage{Data: carts, Metadata: domain.NewPageMeta(total, &opts)}, nil
}

// ReplaceProducts overwrites the lines of an ACTIVE cart, merging duplicates.
func (s *CartService) ReplaceProducts(ctx context.Context, id string, products []domain.CartProduct) (*domain.Cart, error) {
	for _, line := range products {
		if line.Quantity < 1 || line.ProductID == "" {
			return nil, util.NewValidationError(MsgCartQuantityLow, map[string]any{"productId": line.ProductID})
		}
	}

	current, err := s.carts.GetByID(ctx, id)
	if err != nil {
		return nil, cartError(err)
	}
	if current.Status != domain.CartStatusActive {
		return nil, util.NewBadRequest(MsgCartNotActive)
	}

	updated, err := s.carts.ReplaceProducts(ctx, id, domain.MergeCartProducts(products))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewBadRequest(MsgCartNotActive)
		}
		return nil, util.NewInternalError(err)
	}
	return updated, nil
}

// UpdateStatus checks out or cancels an ACTIVE cart.
func (s *CartService) UpdateStatus(ctx context.Context, id string, next domain.CartStatus) (*domain.Cart, error) {
	current, err := s.carts.GetByID(ctx, id)
	if err != nil {
		return nil, cartError(err)
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, util.NewBadRequest(MsgCartStatusMove)
	}

	updated, err := s.carts.UpdateStatus(ctx, id, current.Status, next)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewBadRequest(MsgCartStatusMove)
		}
		return nil, util.NewInternalError(err)
	}
	s.logger.Info("cart status changed",
		zap.String("cart_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next)))
	return updated, nil
}

// DeleteCart removes a cart.
func (s *CartService) DeleteCart(ctx context.Context, id string) error {
	if err := s.carts.Delete(ctx, id); err != nil {
		return cartError(err)
	}
	return nil
}

func cartError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return util.NewNotFoundMessage(MsgCartNotExisted)
	}
	return util.NewInternalError(err)
}
