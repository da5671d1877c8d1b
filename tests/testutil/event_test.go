package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventHandler_RecordsEvents(t *testing.T) {
	handler := NewMockEventHandler("workorder.completed", "workpackage.rolled_up")
	assert.Equal(t, []string{"workorder.completed", "workpackage.rolled_up"}, handler.EventTypes())
	assert.Equal(t, 0, handler.HandledCount())

	event := NewTestEvent("workorder.completed", TestCompanyID())
	require.NoError(t, handler.Handle(context.Background(), event))

	assert.Equal(t, 1, handler.HandledCount())
	assert.Equal(t, event, handler.Handled()[0])
}

func TestMockEventHandler_SetError(t *testing.T) {
	handler := NewMockEventHandler("workorder.completed")
	handler.SetError(assert.AnError)

	err := handler.Handle(context.Background(), NewTestEvent("workorder.completed", TestCompanyID()))
	assert.Equal(t, assert.AnError, err)
}

func TestMockEventHandler_Reset(t *testing.T) {
	handler := NewMockEventHandler("workorder.completed")
	handler.SetError(assert.AnError)
	_ = handler.Handle(context.Background(), NewTestEvent("workorder.completed", TestCompanyID()))
	require.Equal(t, 1, handler.HandledCount())

	handler.Reset()

	assert.Equal(t, 0, handler.HandledCount())
	assert.NoError(t, handler.Handle(context.Background(), NewTestEvent("workorder.completed", TestCompanyID())))
}

func TestNewTestEvent(t *testing.T) {
	companyID := TestCompanyID()
	event := NewTestEvent("order.confirmed", companyID)

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "order.confirmed", event.EventType())
	assert.Equal(t, companyID, event.CompanyID())
	assert.False(t, event.OccurredAt().IsZero())
}

func TestNewTestEventWithID_PinsEventID(t *testing.T) {
	eventID := NewTestUUID("replayed-event")

	first := NewTestEventWithID(eventID, "workpackage.rolled_up", TestCompanyID())
	second := NewTestEventWithID(eventID, "workpackage.rolled_up", TestCompanyID())

	assert.Equal(t, eventID, first.EventID())
	assert.Equal(t, first.EventID(), second.EventID())
}

func TestWaitForCondition(t *testing.T) {
	t.Run("condition met", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			time.Sleep(20 * time.Millisecond)
			close(done)
		}()

		met := WaitForCondition(t, func() bool {
			select {
			case <-done:
				return true
			default:
				return false
			}
		}, 200*time.Millisecond, 10*time.Millisecond)

		assert.True(t, met)
	})

	t.Run("timeout", func(t *testing.T) {
		met := WaitForCondition(t, func() bool { return false }, 50*time.Millisecond, 10*time.Millisecond)
		assert.False(t, met)
	})
}

func TestWaitForEventCount(t *testing.T) {
	handler := NewMockEventHandler("workorder.completed")

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = handler.Handle(context.Background(), NewTestEvent("workorder.completed", TestCompanyID()))
		_ = handler.Handle(context.Background(), NewTestEvent("workorder.completed", TestCompanyID()))
	}()

	assert.True(t, WaitForEventCount(t, handler, 2, 200*time.Millisecond))
}
