package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-admin/internal/config"
	"github.com/spec-kit/commerce-admin/internal/events"
)

// VerificationMessage is the outbox record consumed by the mail sender.
type VerificationMessage struct {
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Code     string    `json:"code"`
	Reason   string    `json:"reason"`
	From     string    `json:"from"`
	QueuedAt time.Time `json:"queuedAt"`
}

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	outbox     redis.Cmdable
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. A nil outbox keeps delivery log-only.
func NewNotificationService(dispatcher events.Dispatcher, outbox redis.Cmdable, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		outbox:     outbox,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserCreated, n.handleVerificationIssued)
	n.dispatcher.Subscribe(events.EventUserApproved, n.handleVerificationIssued)
	n.dispatcher.Subscribe(events.EventVerificationResent, n.handleVerificationIssued)
	n.dispatcher.Subscribe(events.EventAccountRequested, n.handleAudit)
	n.dispatcher.Subscribe(events.EventUserActivated, n.handleAudit)
	n.dispatcher.Subscribe(events.EventUserDeleted, n.handleAudit)
}

func (n *NotificationService) handleAudit(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("user_id", event.UserID), zap.String("event_id", event.ID))
	return nil
}

func (n *NotificationService) handleVerificationIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.VerificationCode()
	if !ok {
		return nil
	}
	n.logger.Info(string(event.Type), zap.String("user_id", event.UserID), zap.String("event_id", event.ID))

	msg := VerificationMessage{
		UserID:   event.UserID,
		Email:    payload.Email,
		Name:     payload.Name,
		Code:     payload.VerificationCode,
		Reason:   string(event.Type),
		From:     n.cfg.EmailFrom,
		QueuedAt: event.Timestamp,
	}
	n.sendEmailNotificationStub(msg)
	return n.enqueue(ctx, msg)
}

func (n *NotificationService) sendEmailNotificationStub(msg VerificationMessage) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", msg.From),
		zap.String("to", msg.Email),
		zap.String("reason", msg.Reason))
}

func (n *NotificationService) enqueue(ctx context.Context, msg VerificationMessage) error {
	if n.outbox == nil || n.cfg.OutboxKey == "" {
		return nil
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := n.outbox.RPush(ctx, n.cfg.OutboxKey, body).Err(); err != nil {
		n.logger.Warn("verification outbox push failed", zap.String("user_id", msg.UserID), zap.Error(err))
		return fmt.Errorf("push verification message: %w", err)
	}
	return nil
}
