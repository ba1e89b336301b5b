package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-admin/internal/config"
	"github.com/spec-kit/commerce-admin/internal/events"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNotificationService_PushesVerificationMessages(t *testing.T) {
	mr, client := newMiniredisClient(t)
	dispatcher := events.NewInMemoryDispatcher()
	cfg := config.NotificationConfig{EmailFrom: "noreply@shop.test", OutboxKey: "outbox"}
	NewNotificationService(dispatcher, client, zap.NewNop(), cfg).RegisterHandlers()

	payload := events.VerificationPayload{
		AccountPayload:   events.AccountPayload{Name: "Alice", Email: "a@x.com"},
		VerificationCode: "code-1",
	}
	require.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventUserApproved, "u1", payload)))

	items, err := mr.List("outbox")
	require.NoError(t, err)
	require.Len(t, items, 1)

	var msg VerificationMessage
	require.NoError(t, json.Unmarshal([]byte(items[0]), &msg))
	assert.Equal(t, "u1", msg.UserID)
	assert.Equal(t, "a@x.com", msg.Email)
	assert.Equal(t, "code-1", msg.Code)
	assert.Equal(t, string(events.EventUserApproved), msg.Reason)
	assert.Equal(t, "noreply@shop.test", msg.From)
}

func TestNotificationService_IgnoresEventsWithoutCode(t *testing.T) {
	mr, client := newMiniredisClient(t)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, client, zap.NewNop(), config.NotificationConfig{OutboxKey: "outbox"}).RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventUserCreated, "u1", events.VerificationPayload{})))
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventUserDeleted, "u1", events.AccountPayload{})))

	assert.False(t, mr.Exists("outbox"))
}

func TestNotificationService_ReportsOutboxFailure(t *testing.T) {
	mr, client := newMiniredisClient(t)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, client, zap.NewNop(), config.NotificationConfig{OutboxKey: "outbox"}).RegisterHandlers()
	mr.Close()

	payload := events.VerificationPayload{VerificationCode: "code-1"}
	err := dispatcher.Publish(context.Background(), events.NewEvent(events.EventVerificationResent, "u1", payload))
	assert.Error(t, err)
}

func TestNotificationService_NilOutboxIsLogOnly(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, nil, zap.NewNop(), config.NotificationConfig{OutboxKey: "outbox"}).RegisterHandlers()

	payload := events.VerificationPayload{VerificationCode: "code-1"}
	assert.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventUserCreated, "u1", payload)))
}
