package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/commerce-admin/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated        EventType = "user_created"
	EventAccountRequested   EventType = "account_requested"
	EventUserApproved       EventType = "user_approved"
	EventVerificationResent EventType = "verification_resent"
	EventUserActivated      EventType = "user_activated"
	EventUserDeleted        EventType = "user_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, userID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// AccountPayload describes the account an event refers to.
type AccountPayload struct {
	Name   string            `json:"name"`
	Email  string            `json:"email"`
	Role   domain.UserRole   `json:"role"`
	Status domain.UserStatus `json:"status"`
}

// VerificationPayload is carried by events that issue a verification code.
type VerificationPayload struct {
	AccountPayload
	VerificationCode string `json:"verification_code"`
}

// VerificationCode extracts the code from an event payload, if any.
func (e Event) VerificationCode() (VerificationPayload, bool) {
	switch p := e.Payload.(type) {
	case VerificationPayload:
		return p, p.VerificationCode != ""
	case *VerificationPayload:
		if p == nil {
			return VerificationPayload{}, false
		}
		return *p, p.VerificationCode != ""
	}
	return VerificationPayload{}, false
}
