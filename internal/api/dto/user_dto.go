package dto

import (
	"time"

	"github.com/spec-kit/commerce-admin/internal/domain"
)

// RequestAccountRequest is the self-service signup payload.
type RequestAccountRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
}

// CreateUserRequest is the administrative create payload.
type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Email    string  `json:"email" validate:"required,email"`
	Role     string  `json:"role" validate:"required"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// UpdateUserRequest carries optional name and role changes.
type UpdateUserRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=200"`
	Role *string `json:"role" validate:"omitempty"`
}

// ActivateRequest completes an account with a verification code.
type ActivateRequest struct {
	VerificationCode string `json:"verificationCode" validate:"required"`
	Password         string `json:"password" validate:"required,min=6,max=72"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Role        domain.UserRole   `json:"role"`
	Status      domain.UserStatus `json:"status"`
	IsManager   bool              `json:"isManager"`
	IsSuperuser bool              `json:"isSuperuser"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// UserCreatedResponse adds the issued verification code.
type UserCreatedResponse struct {
	UserResponse
	VerificationCode string `json:"verificationCode"`
}

// MessageResponse acknowledges an operation with a message code.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewUserResponse maps a directory record.
func NewUserResponse(u domain.DirectoryUser) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Status:      u.Status,
		IsManager:   u.IsManager,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// NewUserResponses maps a page of directory records.
func NewUserResponses(users []domain.DirectoryUser) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
