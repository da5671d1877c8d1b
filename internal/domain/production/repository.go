package production

import (
	"context"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WorkPackageRepository defines the interface for work package persistence
type WorkPackageRepository interface {
	// FindByIDForCompany finds a work package by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*WorkPackage, error)

	// FindByOrder finds all work packages under an order
	FindByOrder(ctx context.Context, companyID, orderID uuid.UUID, filter shared.Filter) ([]WorkPackage, error)

	// FindAllForCompany finds all work packages for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]WorkPackage, error)

	// Save creates or updates a work package
	Save(ctx context.Context, wp *WorkPackage) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, wp *WorkPackage) error

	// SoftDeleteWithCascade soft-deletes the work package and cancels its
	// work orders in one transaction
	SoftDeleteWithCascade(ctx context.Context, wp *WorkPackage, workOrders []WorkOrder) error

	// CountForCompany counts work packages for a company with optional filters
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)

	// GeneratePackageNumber generates the next package number for a company
	GeneratePackageNumber(ctx context.Context, companyID uuid.UUID) (string, error)
}

// WorkOrderRepository defines the interface for work order persistence
type WorkOrderRepository interface {
	// FindByIDForCompany finds a work order (with routing lines) by ID for a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*WorkOrder, error)

	// FindByWorkPackage finds all work orders under a work package
	FindByWorkPackage(ctx context.Context, companyID, workPackageID uuid.UUID) ([]WorkOrder, error)

	// FindAllForCompany finds all work orders for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]WorkOrder, error)

	// Save creates or updates a work order and its routing lines
	Save(ctx context.Context, wo *WorkOrder) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, wo *WorkOrder) error

	// DeleteForCompany deletes a work order for a company
	DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error

	// CountForCompany counts work orders for a company with optional filters
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)

	// CountActiveByWorkPackage counts non-terminal work orders under a work package
	CountActiveByWorkPackage(ctx context.Context, companyID, workPackageID uuid.UUID) (int64, error)

	// GenerateWorkOrderNumber generates the next work order number for a company
	GenerateWorkOrderNumber(ctx context.Context, companyID uuid.UUID) (string, error)
}

// WorkCenterRepository defines the interface for work center persistence
type WorkCenterRepository interface {
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*WorkCenter, error)
	FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*WorkCenter, error)
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]WorkCenter, error)
	Save(ctx context.Context, wc *WorkCenter) error
	DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
}

// ResourceRepository defines the interface for resource persistence
type ResourceRepository interface {
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Resource, error)
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Resource, error)
	Save(ctx context.Context, r *Resource) error
	DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
}

// RoutingTemplateRepository defines the interface for routing template persistence
type RoutingTemplateRepository interface {
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*RoutingTemplate, error)
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]RoutingTemplate, error)
	Save(ctx context.Context, t *RoutingTemplate) error
	DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
}
