package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher()

	var approved, deleted int
	d.Subscribe(EventUserApproved, func(context.Context, Event) error { approved++; return nil })
	d.Subscribe(EventUserApproved, func(context.Context, Event) error { approved++; return nil })
	d.Subscribe(EventUserDeleted, func(context.Context, Event) error { deleted++; return nil })

	require.NoError(t, d.Publish(context.Background(), NewEvent(EventUserApproved, "u1", nil)))
	assert.Equal(t, 2, approved)
	assert.Zero(t, deleted)
}

func TestDispatcher_RunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	var ran int
	d.Subscribe(EventUserCreated, func(context.Context, Event) error { ran++; return boom })
	d.Subscribe(EventUserCreated, func(context.Context, Event) error { ran++; return nil })

	err := d.Publish(context.Background(), NewEvent(EventUserCreated, "u1", nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, ran)
}

func TestEvent_VerificationCode(t *testing.T) {
	withCode := NewEvent(EventUserApproved, "u1", VerificationPayload{VerificationCode: "abc"})
	payload, ok := withCode.VerificationCode()
	assert.True(t, ok)
	assert.Equal(t, "abc", payload.VerificationCode)

	_, ok = NewEvent(EventUserDeleted, "u1", AccountPayload{}).VerificationCode()
	assert.False(t, ok)
}
