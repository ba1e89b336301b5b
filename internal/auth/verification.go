package auth

import (
	"strings"

	"github.com/google/uuid"
)

// CodeGenerator issues opaque verification codes.
type CodeGenerator func() string

// NewVerificationCode returns 32 hex characters drawn from a random UUID.
func NewVerificationCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
