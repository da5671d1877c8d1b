package production

import (
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeWorkPackage = "WorkPackage"
	AggregateTypeWorkOrder   = "WorkOrder"
)

// Event type constants
const (
	EventTypeWorkPackageCreated       = "WorkPackageCreated"
	EventTypeWorkPackageStatusChanged = "WorkPackageStatusChanged"
	EventTypeWorkPackageDeleted       = "WorkPackageDeleted"
	EventTypeWorkOrderCreated         = "WorkOrderCreated"
	EventTypeWorkOrderStatusChanged   = "WorkOrderStatusChanged"
)

// WorkPackageCreatedEvent is raised when a new work package is created
type WorkPackageCreatedEvent struct {
	shared.BaseDomainEvent
	WorkPackageID uuid.UUID `json:"work_package_id"`
	OrderID       uuid.UUID `json:"order_id"`
	PackageNumber string    `json:"package_number"`
	Name          string    `json:"name"`
}

// NewWorkPackageCreatedEvent creates a new WorkPackageCreatedEvent
func NewWorkPackageCreatedEvent(wp *WorkPackage) *WorkPackageCreatedEvent {
	return &WorkPackageCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkPackageCreated, AggregateTypeWorkPackage, wp.ID, wp.CompanyID),
		WorkPackageID:   wp.ID,
		OrderID:         wp.OrderID,
		PackageNumber:   wp.PackageNumber,
		Name:            wp.Name,
	}
}

// EventType returns the event type name
func (e *WorkPackageCreatedEvent) EventType() string {
	return EventTypeWorkPackageCreated
}

// WorkPackageStatusChangedEvent is raised when a work package changes status
type WorkPackageStatusChangedEvent struct {
	shared.BaseDomainEvent
	WorkPackageID uuid.UUID         `json:"work_package_id"`
	PackageNumber string            `json:"package_number"`
	Status        WorkPackageStatus `json:"status"`
}

// NewWorkPackageStatusChangedEvent creates a new WorkPackageStatusChangedEvent
func NewWorkPackageStatusChangedEvent(wp *WorkPackage) *WorkPackageStatusChangedEvent {
	return &WorkPackageStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkPackageStatusChanged, AggregateTypeWorkPackage, wp.ID, wp.CompanyID),
		WorkPackageID:   wp.ID,
		PackageNumber:   wp.PackageNumber,
		Status:          wp.Status,
	}
}

// EventType returns the event type name
func (e *WorkPackageStatusChangedEvent) EventType() string {
	return EventTypeWorkPackageStatusChanged
}

// WorkPackageDeletedEvent is raised when a work package is soft-deleted.
// Its work orders are cancelled as part of the same operation.
type WorkPackageDeletedEvent struct {
	shared.BaseDomainEvent
	WorkPackageID       uuid.UUID   `json:"work_package_id"`
	OrderID             uuid.UUID   `json:"order_id"`
	PackageNumber       string      `json:"package_number"`
	CancelledWorkOrders []uuid.UUID `json:"cancelled_work_orders"`
}

// NewWorkPackageDeletedEvent creates a new WorkPackageDeletedEvent
func NewWorkPackageDeletedEvent(wp *WorkPackage, cancelledWorkOrders []uuid.UUID) *WorkPackageDeletedEvent {
	return &WorkPackageDeletedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeWorkPackageDeleted, AggregateTypeWorkPackage, wp.ID, wp.CompanyID),
		WorkPackageID:       wp.ID,
		OrderID:             wp.OrderID,
		PackageNumber:       wp.PackageNumber,
		CancelledWorkOrders: cancelledWorkOrders,
	}
}

// EventType returns the event type name
func (e *WorkPackageDeletedEvent) EventType() string {
	return EventTypeWorkPackageDeleted
}

// WorkOrderCreatedEvent is raised when a new work order is created
type WorkOrderCreatedEvent struct {
	shared.BaseDomainEvent
	WorkOrderID     uuid.UUID     `json:"work_order_id"`
	WorkPackageID   uuid.UUID     `json:"work_package_id"`
	WorkOrderNumber string        `json:"work_order_number"`
	Type            WorkOrderType `json:"type"`
	Priority        Priority      `json:"priority"`
}

// NewWorkOrderCreatedEvent creates a new WorkOrderCreatedEvent
func NewWorkOrderCreatedEvent(wo *WorkOrder) *WorkOrderCreatedEvent {
	return &WorkOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkOrderCreated, AggregateTypeWorkOrder, wo.ID, wo.CompanyID),
		WorkOrderID:     wo.ID,
		WorkPackageID:   wo.WorkPackageID,
		WorkOrderNumber: wo.WorkOrderNumber,
		Type:            wo.Type,
		Priority:        wo.Priority,
	}
}

// EventType returns the event type name
func (e *WorkOrderCreatedEvent) EventType() string {
	return EventTypeWorkOrderCreated
}

// WorkOrderStatusChangedEvent is raised on every work order status transition
type WorkOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	WorkOrderID     uuid.UUID       `json:"work_order_id"`
	WorkOrderNumber string          `json:"work_order_number"`
	Status          WorkOrderStatus `json:"status"`
}

// NewWorkOrderStatusChangedEvent creates a new WorkOrderStatusChangedEvent
func NewWorkOrderStatusChangedEvent(wo *WorkOrder) *WorkOrderStatusChangedEvent {
	return &WorkOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkOrderStatusChanged, AggregateTypeWorkOrder, wo.ID, wo.CompanyID),
		WorkOrderID:     wo.ID,
		WorkOrderNumber: wo.WorkOrderNumber,
		Status:          wo.Status,
	}
}

// EventType returns the event type name
func (e *WorkOrderStatusChangedEvent) EventType() string {
	return EventTypeWorkOrderStatusChanged
}
