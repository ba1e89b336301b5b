package domain

import (
	"strings"
	"time"
)

// Discount is a percentage promotion identified by a code.
type Discount struct {
	ID          string
	Code        string
	Description string
	Percent     int
	Active      bool
	StartsAt    *time.Time
	EndsAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeDiscountCode upper-cases and trims a code.
func NormalizeDiscountCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidWindow reports whether the optional validity window is ordered.
func (d Discount) ValidWindow() bool {
	if d.StartsAt == nil || d.EndsAt == nil {
		return true
	}
	return d.EndsAt.After(*d.StartsAt)
}
