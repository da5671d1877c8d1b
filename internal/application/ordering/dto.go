package ordering

import (
	"time"

	"github.com/fabmate/backend/internal/domain/ordering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Order DTOs ====================

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerName      string     `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerReference string     `json:"customer_reference" binding:"max=100"`
	Description       string     `json:"description" binding:"max=2000"`
	RequiredDate      *time.Time `json:"required_date"`
}

// UpdateOrderRequest represents a request to update an order (only in Draft status)
type UpdateOrderRequest struct {
	CustomerName      *string    `json:"customer_name"`
	CustomerReference *string    `json:"customer_reference"`
	Description       *string    `json:"description"`
	RequiredDate      *time.Time `json:"required_date"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListOrdersRequest represents a request to list orders
type ListOrdersRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID       `json:"id"`
	CompanyID         uuid.UUID       `json:"company_id"`
	OrderNumber       string          `json:"order_number"`
	CustomerName      string          `json:"customer_name"`
	CustomerReference string          `json:"customer_reference"`
	Description       string          `json:"description"`
	Status            string          `json:"status"`
	RequiredDate      *time.Time      `json:"required_date"`
	EstimatedHours    decimal.Decimal `json:"estimated_hours"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
	ConfirmedAt       *time.Time      `json:"confirmed_at"`
	CompletedAt       *time.Time      `json:"completed_at"`
	CancelledAt       *time.Time      `json:"cancelled_at"`
	CancelReason      string          `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(order *ordering.Order) OrderResponse {
	return OrderResponse{
		ID:                order.ID,
		CompanyID:         order.CompanyID,
		OrderNumber:       order.OrderNumber,
		CustomerName:      order.CustomerName,
		CustomerReference: order.CustomerReference,
		Description:       order.Description,
		Status:            string(order.Status),
		RequiredDate:      order.RequiredDate,
		EstimatedHours:    order.EstimatedHours,
		EstimatedCost:     order.EstimatedCost,
		ConfirmedAt:       order.ConfirmedAt,
		CompletedAt:       order.CompletedAt,
		CancelledAt:       order.CancelledAt,
		CancelReason:      order.CancelReason,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
		Version:           order.Version,
	}
}

// ToOrderResponses converts a slice of domain orders to response DTOs
func ToOrderResponses(orders []ordering.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}
