package ordering

import (
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusComplete  OrderStatus = "COMPLETE"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusComplete, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusComplete || target == OrderStatusCancelled
	case OrderStatusComplete, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// Order represents a customer purchase context.
// Work packages are scheduled under an order; the order carries cost and
// hour rollups aggregated from them.
type Order struct {
	shared.CompanyAggregateRoot
	OrderNumber       string
	CustomerName      string
	CustomerReference string
	Description       string
	Status            OrderStatus
	RequiredDate      *time.Time
	EstimatedHours    decimal.Decimal
	EstimatedCost     decimal.Decimal
	ConfirmedAt       *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	CancelReason      string
}

// NewOrder creates a new order in Draft status
func NewOrder(companyID uuid.UUID, orderNumber, customerName string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}

	order := &Order{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		OrderNumber:          orderNumber,
		CustomerName:         customerName,
		Status:               OrderStatusDraft,
		EstimatedHours:       decimal.Zero,
		EstimatedCost:        decimal.Zero,
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))
	return order, nil
}

// UpdateDetails updates the mutable order header fields.
// Only draft orders accept detail changes.
func (o *Order) UpdateDetails(customerName, customerReference, description string, requiredDate *time.Time) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft orders can be updated")
	}
	if customerName == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	o.CustomerName = customerName
	o.CustomerReference = customerReference
	o.Description = description
	o.RequiredDate = requiredDate
	o.UpdatedAt = time.Now()
	return nil
}

// Confirm transitions the order from Draft to Confirmed
func (o *Order) Confirm() error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot confirm order in status "+o.Status.String())
	}

	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderConfirmedEvent(o))
	return nil
}

// Complete transitions the order to Complete
func (o *Order) Complete() error {
	if !o.Status.CanTransitionTo(OrderStatusComplete) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot complete order in status "+o.Status.String())
	}

	now := time.Now()
	o.Status = OrderStatusComplete
	o.CompletedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCompletedEvent(o))
	return nil
}

// Cancel cancels the order with a reason
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot cancel order in status "+o.Status.String())
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCancelledEvent(o, reason))
	return nil
}

// ApplyRollup replaces the estimated hour and cost rollups aggregated
// from the order's work packages.
func (o *Order) ApplyRollup(estimatedHours, estimatedCost decimal.Decimal) error {
	if estimatedHours.IsNegative() || estimatedCost.IsNegative() {
		return shared.NewDomainError("INVALID_ROLLUP", "Rollup values cannot be negative")
	}

	o.EstimatedHours = estimatedHours
	o.EstimatedCost = estimatedCost
	o.UpdatedAt = time.Now()
	return nil
}

// IsTerminal reports whether the order is in a terminal status
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusComplete || o.Status == OrderStatusCancelled
}
