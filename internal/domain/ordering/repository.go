package ordering

import (
	"context"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForCompany finds an order by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by order number for a company
	FindByOrderNumber(ctx context.Context, companyID uuid.UUID, orderNumber string) (*Order, error)

	// FindAllForCompany finds all orders for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByStatus finds orders by status for a company
	FindByStatus(ctx context.Context, companyID uuid.UUID, status OrderStatus, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *Order) error

	// SaveWithLockAndEvents saves with optimistic locking and writes domain
	// events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, order *Order, events []shared.DomainEvent) error

	// DeleteForCompany deletes an order for a company (soft delete)
	DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error

	// CountForCompany counts orders for a company with optional filters
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)

	// GenerateOrderNumber generates the next order number for a company
	GenerateOrderNumber(ctx context.Context, companyID uuid.UUID) (string, error)
}
