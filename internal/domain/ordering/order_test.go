package ordering

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestOrder(t *testing.T) *Order {
	companyID := uuid.New()
	order, err := NewOrder(companyID, "ORD-2026-00001", "Acme Steel Ltd")
	require.NoError(t, err)
	return order
}

// ============================================
// OrderStatus Tests
// ============================================

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		isValid bool
	}{
		{OrderStatusDraft, true},
		{OrderStatusConfirmed, true},
		{OrderStatusComplete, true},
		{OrderStatusCancelled, true},
		{OrderStatus("INVALID"), false},
		{OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		canTrans bool
	}{
		// From DRAFT
		{OrderStatusDraft, OrderStatusConfirmed, true},
		{OrderStatusDraft, OrderStatusCancelled, true},
		{OrderStatusDraft, OrderStatusComplete, false},
		// From CONFIRMED
		{OrderStatusConfirmed, OrderStatusComplete, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusDraft, false},
		// From COMPLETE (terminal)
		{OrderStatusComplete, OrderStatusDraft, false},
		{OrderStatusComplete, OrderStatusConfirmed, false},
		{OrderStatusComplete, OrderStatusCancelled, false},
		// From CANCELLED (terminal)
		{OrderStatusCancelled, OrderStatusDraft, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
		{OrderStatusCancelled, OrderStatusComplete, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// Order Tests
// ============================================

func TestNewOrder(t *testing.T) {
	companyID := uuid.New()

	order, err := NewOrder(companyID, "ORD-2026-00001", "Acme Steel Ltd")
	require.NoError(t, err)

	assert.Equal(t, "ORD-2026-00001", order.OrderNumber)
	assert.Equal(t, "Acme Steel Ltd", order.CustomerName)
	assert.Equal(t, OrderStatusDraft, order.Status)
	assert.Equal(t, companyID, order.CompanyID)
	assert.True(t, order.EstimatedCost.IsZero())

	events := order.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeOrderCreated, events[0].EventType())
}

func TestNewOrder_Validation(t *testing.T) {
	companyID := uuid.New()

	tests := []struct {
		name         string
		companyID    uuid.UUID
		orderNumber  string
		customerName string
	}{
		{"empty order number", companyID, "", "Acme"},
		{"empty customer name", companyID, "ORD-2026-00001", ""},
		{"nil company", uuid.Nil, "ORD-2026-00001", "Acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.companyID, tt.orderNumber, tt.customerName)
			assert.Error(t, err)
		})
	}
}

func TestOrder_Confirm(t *testing.T) {
	order := createTestOrder(t)

	err := order.Confirm()
	require.NoError(t, err)

	assert.Equal(t, OrderStatusConfirmed, order.Status)
	assert.NotNil(t, order.ConfirmedAt)

	// Confirming twice fails
	err = order.Confirm()
	assert.Error(t, err)
}

func TestOrder_Complete(t *testing.T) {
	order := createTestOrder(t)

	// Cannot complete a draft
	err := order.Complete()
	assert.Error(t, err)

	require.NoError(t, order.Confirm())
	require.NoError(t, order.Complete())
	assert.Equal(t, OrderStatusComplete, order.Status)
	assert.NotNil(t, order.CompletedAt)
}

func TestOrder_Cancel(t *testing.T) {
	order := createTestOrder(t)

	err := order.Cancel("customer withdrew")
	require.NoError(t, err)

	assert.Equal(t, OrderStatusCancelled, order.Status)
	assert.Equal(t, "customer withdrew", order.CancelReason)
	assert.NotNil(t, order.CancelledAt)
	assert.True(t, order.IsTerminal())

	// Cancelling a terminal order fails
	err = order.Cancel("again")
	assert.Error(t, err)
}

func TestOrder_UpdateDetails(t *testing.T) {
	order := createTestOrder(t)
	required := time.Now().AddDate(0, 1, 0)

	err := order.UpdateDetails("Acme Steel Ltd", "PO-9981", "Mezzanine package", &required)
	require.NoError(t, err)
	assert.Equal(t, "PO-9981", order.CustomerReference)

	require.NoError(t, order.Confirm())
	err = order.UpdateDetails("Acme Steel Ltd", "PO-9982", "", nil)
	assert.Error(t, err, "confirmed orders do not accept detail changes")
}

func TestOrder_ApplyRollup(t *testing.T) {
	order := createTestOrder(t)

	err := order.ApplyRollup(decimal.NewFromFloat(42.5), decimal.NewFromInt(12800))
	require.NoError(t, err)
	assert.True(t, order.EstimatedHours.Equal(decimal.NewFromFloat(42.5)))
	assert.True(t, order.EstimatedCost.Equal(decimal.NewFromInt(12800)))

	err = order.ApplyRollup(decimal.NewFromInt(-1), decimal.Zero)
	assert.Error(t, err)
}
