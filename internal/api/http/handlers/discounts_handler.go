package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-admin/internal/api/dto"
	"github.com/spec-kit/commerce-admin/internal/domain"
	"github.com/spec-kit/commerce-admin/internal/repository"
	"github.com/spec-kit/commerce-admin/internal/service"
	"github.com/spec-kit/commerce-admin/pkg/util"
)

// DiscountService is the discount API used by DiscountsHandler.
type DiscountService interface {
	CreateDiscount(ctx context.Context, input service.DiscountInput) (*domain.Discount, error)
	GetDiscount(ctx context.Context, id string) (*domain.Discount, error)
	ListDiscounts(ctx context.Context, filter repository.DiscountFilter, opts domain.PageOptions) (*service.DiscountPage, error)
	UpdateDiscount(ctx context.Context, id string, patch service.DiscountPatch) (*domain.Discount, error)
	DeleteDiscount(ctx context.Context, id string) error
}

// DiscountsHandler exposes discount endpoints.
type DiscountsHandler struct {
	discounts DiscountService
}

// NewDiscountsHandler constructs handler.
func NewDiscountsHandler(discounts DiscountService) *DiscountsHandler {
	return &DiscountsHandler{discounts: discounts}
}

// Create handles POST /discounts.
func (h *DiscountsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDiscountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	d, err := h.discounts.CreateDiscount(c.UserContext(), service.DiscountInput{
		Code:        req.Code,
		Description: req.Description,
		Percent:     req.Percent,
		Active:      req.Active,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDiscountResponse(*d)})
}

// List handles GET /discounts.
func (h *DiscountsHandler) List(c *fiber.Ctx) error {
	var query dto.DiscountListQuery
	if err := c.QueryParser(&query); err != nil {
		return util.NewValidationError("invalid query", nil)
	}
	if err := dto.Validate(&query); err != nil {
		return err
	}

	filter := repository.DiscountFilter{}
	if query.Active != "" {
		active := query.Active == "true"
		filter.Active = &active
	}

	page, err := h.discounts.ListDiscounts(c.UserContext(), filter, query.Options())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":     dto.NewDiscountResponses(page.Data),
		"metadata": dto.NewPageMetaResponse(page.Metadata),
	})
}

// Get handles GET /discounts/:id.
func (h *DiscountsHandler) Get(c *fiber.Ctx) error {
	d, err := h.discounts.GetDiscount(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDiscountResponse(*d)})
}

// Update handles PATCH /discounts/:id.
func (h *DiscountsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateDiscountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	d, err := h.discounts.UpdateDiscount(c.UserContext(), c.Params("id"), service.DiscountPatch{
		Code:        req.Code,
		Description: req.Description,
		Percent:     req.Percent,
		Active:      req.Active,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDiscountResponse(*d)})
}

// Delete handles DELETE /discounts/:id.
func (h *DiscountsHandler) Delete(c *fiber.Ctx) error {
	if err := h.discounts.DeleteDiscount(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
