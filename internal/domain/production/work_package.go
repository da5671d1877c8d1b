package production

import (
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WorkPackageStatus represents the status of a work package
type WorkPackageStatus string

const (
	WorkPackageStatusPlanned    WorkPackageStatus = "PLANNED"
	WorkPackageStatusReleased   WorkPackageStatus = "RELEASED"
	WorkPackageStatusInProgress WorkPackageStatus = "IN_PROGRESS"
	WorkPackageStatusComplete   WorkPackageStatus = "COMPLETE"
	WorkPackageStatusCancelled  WorkPackageStatus = "CANCELLED"
)

// IsValid checks if the status is a valid WorkPackageStatus
func (s WorkPackageStatus) IsValid() bool {
	switch s {
	case WorkPackageStatusPlanned, WorkPackageStatusReleased, WorkPackageStatusInProgress,
		WorkPackageStatusComplete, WorkPackageStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of WorkPackageStatus
func (s WorkPackageStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s WorkPackageStatus) CanTransitionTo(target WorkPackageStatus) bool {
	switch s {
	case WorkPackageStatusPlanned:
		return target == WorkPackageStatusReleased || target == WorkPackageStatusCancelled
	case WorkPackageStatusReleased:
		return target == WorkPackageStatusInProgress || target == WorkPackageStatusCancelled
	case WorkPackageStatusInProgress:
		return target == WorkPackageStatusComplete || target == WorkPackageStatusCancelled
	case WorkPackageStatusComplete, WorkPackageStatusCancelled:
		return false // Terminal states
	}
	return false
}

// Priority represents the scheduling priority of a work package or work order
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// AllPriorities lists the accepted priority values, used in validation messages
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// IsValid checks if the priority is a valid Priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// String returns the string representation of Priority
func (p Priority) String() string {
	return string(p)
}

// WorkPackage represents a schedulable grouping of work orders under an order
type WorkPackage struct {
	shared.CompanyAggregateRoot
	OrderID        uuid.UUID
	PackageNumber  string
	Name           string
	Description    string
	Status         WorkPackageStatus
	Priority       Priority
	PlannedStart   *time.Time
	PlannedEnd     *time.Time
	EstimatedHours decimal.Decimal
	EstimatedCost  decimal.Decimal
	ActualHours    decimal.Decimal
	ActualCost     decimal.Decimal
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// NewWorkPackage creates a new work package in Planned status
func NewWorkPackage(companyID, orderID uuid.UUID, packageNumber, name string, priority Priority) (*WorkPackage, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if packageNumber == "" {
		return nil, shared.NewDomainError("INVALID_PACKAGE_NUMBER", "Package number cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Work package name cannot be empty")
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		return nil, NewInvalidPriorityError(priority)
	}

	wp := &WorkPackage{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		OrderID:              orderID,
		PackageNumber:        packageNumber,
		Name:                 name,
		Status:               WorkPackageStatusPlanned,
		Priority:             priority,
		EstimatedHours:       decimal.Zero,
		EstimatedCost:        decimal.Zero,
		ActualHours:          decimal.Zero,
		ActualCost:           decimal.Zero,
	}

	wp.AddDomainEvent(NewWorkPackageCreatedEvent(wp))
	return wp, nil
}

// UpdateDetails updates the mutable work package fields
func (wp *WorkPackage) UpdateDetails(name, description string, priority Priority, plannedStart, plannedEnd *time.Time) error {
	if wp.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a completed or cancelled work package")
	}
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Work package name cannot be empty")
	}
	if !priority.IsValid() {
		return NewInvalidPriorityError(priority)
	}
	if plannedStart != nil && plannedEnd != nil && plannedEnd.Before(*plannedStart) {
		return shared.NewDomainError("INVALID_SCHEDULE", "Planned end cannot be before planned start")
	}

	wp.Name = name
	wp.Description = description
	wp.Priority = priority
	wp.PlannedStart = plannedStart
	wp.PlannedEnd = plannedEnd
	wp.UpdatedAt = time.Now()
	return nil
}

// TransitionTo moves the work package to the target status
func (wp *WorkPackage) TransitionTo(target WorkPackageStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown work package status: "+target.String())
	}
	if !wp.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot transition work package from "+wp.Status.String()+" to "+target.String())
	}

	wp.Status = target
	wp.UpdatedAt = time.Now()

	wp.AddDomainEvent(NewWorkPackageStatusChangedEvent(wp))
	return nil
}

// Cancel cancels the work package. Used both directly and by the
// soft-delete cascade.
func (wp *WorkPackage) Cancel() error {
	if wp.Status == WorkPackageStatusCancelled {
		return nil
	}
	return wp.TransitionTo(WorkPackageStatusCancelled)
}

// ApplyRollup replaces the hour and cost rollups aggregated from work orders
func (wp *WorkPackage) ApplyRollup(estimatedHours, estimatedCost, actualHours, actualCost decimal.Decimal) error {
	if estimatedHours.IsNegative() || estimatedCost.IsNegative() ||
		actualHours.IsNegative() || actualCost.IsNegative() {
		return shared.NewDomainError("INVALID_ROLLUP", "Rollup values cannot be negative")
	}

	wp.EstimatedHours = estimatedHours
	wp.EstimatedCost = estimatedCost
	wp.ActualHours = actualHours
	wp.ActualCost = actualCost
	wp.UpdatedAt = time.Now()
	return nil
}

// IsTerminal reports whether the work package is in a terminal status
func (wp *WorkPackage) IsTerminal() bool {
	return wp.Status == WorkPackageStatusComplete || wp.Status == WorkPackageStatusCancelled
}

// NewInvalidPriorityError builds the validation error listing the allowed set
func NewInvalidPriorityError(p Priority) *shared.DomainError {
	allowed := ""
	for i, v := range AllPriorities() {
		if i > 0 {
			allowed += ", "
		}
		allowed += v.String()
	}
	return shared.NewDomainError("INVALID_PRIORITY",
		"Invalid priority '"+p.String()+"'. Allowed values: "+allowed)
}
