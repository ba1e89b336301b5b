package domain

import (
	"strings"
	"time"
)

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusRequest  UserStatus = "REQUEST"
	UserStatusInActive UserStatus = "IN_ACTIVE"
	UserStatusActive   UserStatus = "ACTIVE"
)

// UserRole enumerates account roles.
type UserRole string

const (
	UserRoleUser      UserRole = "USER"
	UserRoleManager   UserRole = "MANAGER"
	UserRoleSuperuser UserRole = "SUPERUSER"
)

// ParseUserRole maps an input name onto the closed role set.
func ParseUserRole(name string) (UserRole, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case string(UserRoleUser):
		return UserRoleUser, true
	case string(UserRoleManager):
		return UserRoleManager, true
	case string(UserRoleSuperuser):
		return UserRoleSuperuser, true
	default:
		return "", false
	}
}

// Valid reports whether the status belongs to the lifecycle.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusRequest, UserStatusInActive, UserStatusActive:
		return true
	}
	return false
}

// InitialStatusFor returns the status assigned to administratively created accounts.
func InitialStatusFor(role UserRole) UserStatus {
	if role == UserRoleSuperuser {
		return UserStatusActive
	}
	return UserStatusInActive
}

// User is the persistent account record.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     *string
	Role             UserRole
	Status           UserStatus
	VerificationCode *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NormalizeEmail trims and lower-cases an address before lookups and inserts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DirectoryUser is a user row as returned by directory queries, decorated with
// computed role flags. Secrets are never part of it.
type DirectoryUser struct {
	ID          string
	Name        string
	Email       string
	Role        UserRole
	Status      UserStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	IsManager   bool
	IsSuperuser bool
}

// Decorate builds the directory view of a stored user.
func Decorate(u User) DirectoryUser {
	return DirectoryUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		IsManager:   u.Role == UserRoleManager,
		IsSuperuser: u.Role == UserRoleSuperuser,
	}
}
