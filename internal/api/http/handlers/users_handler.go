package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-admin/internal/api/dto"
	"github.com/spec-kit/commerce-admin/internal/domain"
	"github.com/spec-kit/commerce-admin/internal/service"
	"github.com/spec-kit/commerce-admin/pkg/util"
)

// UserService is the account API used by UsersHandler.
type UserService interface {
	CreateUser(ctx context.Context, input service.CreateUserInput) (*service.UserCreated, error)
	RequestAccount(ctx context.Context, name, email string) error
	Approve(ctx context.Context, id string) error
	ResendVerification(ctx context.Context, id string) error
	Activate(ctx context.Context, code, newPassword string) error
	UpdateUser(ctx context.Context, id string, input service.UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (*domain.DirectoryUser, error)
	ListUsers(ctx context.Context, opts domain.PageOptions) (*domain.DirectoryPage, error)
}

// UsersHandler exposes the account lifecycle and directory endpoints.
type UsersHandler struct {
	users UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(out)
}

func message(c *fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{"data": dto.MessageResponse{Message: code}})
}

// RequestAccount handles POST /users/request.
func (h *UsersHandler) RequestAccount(c *fiber.Ctx) error {
	var req dto.RequestAccountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.users.RequestAccount(c.UserContext(), req.Name, req.Email); err != nil {
		return err
	}
	return message(c, http.StatusCreated, service.MsgRequestSuccessfully)
}

// Activate handles POST /users/activate.
func (h *UsersHandler) Activate(c *fiber.Ctx) error {
	var req dto.ActivateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.users.Activate(c.UserContext(), req.VerificationCode, req.Password); err != nil {
		return err
	}
	return message(c, http.StatusOK, service.MsgActiveSuccessfully)
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	var query dto.PageQuery
	if err := c.QueryParser(&query); err != nil {
		return util.NewValidationError("invalid query", nil)
	}
	if err := dto.Validate(&query); err != nil {
		return err
	}

	page, err := h.users.ListUsers(c.UserContext(), query.Options())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":     dto.NewUserResponses(page.Data),
		"metadata": dto.NewPageMetaResponse(page.Metadata),
	})
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	created, err := h.users.CreateUser(c.UserContext(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.UserCreatedResponse{
			UserResponse:     dto.NewUserResponse(created.User),
			VerificationCode: created.VerificationCode,
		},
	})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(*user)})
}

// Update handles PATCH /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	updated, err := h.users.UpdateUser(c.UserContext(), c.Params("id"), service.UpdateUserInput{
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(domain.Decorate(*updated))})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return message(c, http.StatusOK, service.MsgDeleteUserSuccessful)
}

// Approve handles POST /users/:id/approve.
func (h *UsersHandler) Approve(c *fiber.Ctx) error {
	if err := h.users.Approve(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return message(c, http.StatusOK, service.MsgUserApproved)
}

// ResendVerification handles POST /users/:id/resend-verification.
func (h *UsersHandler) ResendVerification(c *fiber.Ctx) error {
	if err := h.users.ResendVerification(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return message(c, http.StatusOK, service.MsgResendVerification)
}
