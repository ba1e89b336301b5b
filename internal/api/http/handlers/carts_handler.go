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

// CartService is the cart API used by CartsHandler.
type CartService interface {
	CreateCart(ctx context.Context, userID string) (*domain.Cart, error)
	GetCart(ctx context.Context, id string) (*domain.Cart, error)
	ListCarts(ctx context.Context, filter repository.CartFilter, opts domain.PageOptions) (*service.CartPage, error)
	ReplaceProducts(ctx context.Context, id string, products []domain.CartProduct) (*domain.Cart, error)
	UpdateStatus(ctx context.Context, id string, next domain.CartStatus) (*domain.Cart, error)
	DeleteCart(ctx context.Context, id string) error
}

// CartsHandler exposes cart endpoints.
type CartsHandler struct {
	carts CartService
}

// NewCartsHandler constructs handler.
func NewCartsHandler(carts CartService) *CartsHandler {
	return &CartsHandler{carts: carts}
}

// Create handles POST /carts.
func (h *CartsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCartRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cart, err := h.carts.CreateCart(c.UserContext(), req.UserID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCartResponse(*cart)})
}

// List handles GET /carts.
func (h *CartsHandler) List(c *fiber.Ctx) error {
	var query dto.CartListQuery
	if err := c.QueryParser(&query); err != nil {
		return util.NewValidationError("invalid query", nil)
	}
	if err := dto.Validate(&query); err != nil {
		return err
	}

	filter := repository.CartFilter{UserID: query.UserID}
	if query.Status != "" {
		status := domain.CartStatus(query.Status)
		filter.Status = &status
	}

	page, err := h.carts.ListCarts(c.UserContext(), filter, query.Options())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":     dto.NewCartResponses(page.Data),
		"metadata": dto.NewPageMetaResponse(page.Metadata),
	})
}

// Get handles GET /carts/:id.
func (h *CartsHandler) Get(c *fiber.Ctx) error {
	cart, err := h.carts.GetCart(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCartResponse(*cart)})
}

// ReplaceProducts handles PUT /carts/:id/products.
func (h *CartsHandler) ReplaceProducts(c *fiber.Ctx) error {
	var req dto.ReplaceCartProductsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cart, err := h.carts.ReplaceProducts(c.UserContext(), c.Params("id"), req.Lines())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCartResponse(*cart)})
}

// UpdateStatus handles PATCH /carts/:id/status.
func (h *CartsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateCartStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cart, err := h.carts.UpdateStatus(c.UserContext(), c.Params("id"), domain.CartStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCartResponse(*cart)})
}

// Delete handles DELETE /carts/:id.
func (h *CartsHandler) Delete(c *fiber.Ctx) error {
	if err := h.carts.DeleteCart(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
