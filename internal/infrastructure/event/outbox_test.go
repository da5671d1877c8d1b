package event

import (
	"testing"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewOutboxEntry_CapturesEventIdentity(t *testing.T) {
	companyID := uuid.New()
	evt := newOrderEvent("OrderCreated", companyID)
	payload := []byte(`{"reference":"ORD-2024-0042"}`)

	entry := shared.NewOutboxEntry(companyID, evt, payload)

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, companyID, entry.CompanyID)
	assert.Equal(t, evt.EventID(), entry.EventID)
	assert.Equal(t, "OrderCreated", entry.EventType)
	assert.Equal(t, evt.AggregateID(), entry.AggregateID)
	assert.Equal(t, "Order", entry.AggregateType)
	assert.Equal(t, payload, entry.Payload)
	assert.Equal(t, shared.OutboxStatusPending, entry.Status)
	assert.Zero(t, entry.RetryCount)
	assert.Equal(t, shared.DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_CanRetry(t *testing.T) {
	for name, tc := range map[string]struct {
		status     shared.OutboxStatus
		retryCount int
		want       bool
	}{
		"pending is not retryable":        {shared.OutboxStatusPending, 0, false},
		"failed with budget left":         {shared.OutboxStatusFailed, 2, true},
		"failed with budget spent":        {shared.OutboxStatusFailed, shared.DefaultMaxRetries, false},
		"dead letters stay dead":          {shared.OutboxStatusDead, shared.DefaultMaxRetries, false},
		"sent entries never come back":    {shared.OutboxStatusSent, 0, false},
	} {
		t.Run(name, func(t *testing.T) {
			entry := &shared.OutboxEntry{
				Status:     tc.status,
				RetryCount: tc.retryCount,
				MaxRetries: shared.DefaultMaxRetries,
			}
			assert.Equal(t, tc.want, entry.CanRetry())
		})
	}
}

func TestOutboxEntry_MarkSent_StampsProcessedAt(t *testing.T) {
	entry := &shared.OutboxEntry{Status: shared.OutboxStatusProcessing}

	entry.MarkSent()

	assert.Equal(t, shared.OutboxStatusSent, entry.Status)
	assert.NotNil(t, entry.ProcessedAt)
}
