package production

import (
	"strconv"
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkOrderType classifies the kind of shop-floor work
type WorkOrderType string

const (
	WorkOrderTypeFabrication WorkOrderType = "FABRICATION"
	WorkOrderTypeAssembly    WorkOrderType = "ASSEMBLY"
	WorkOrderTypeWelding     WorkOrderType = "WELDING"
	WorkOrderTypeCoating     WorkOrderType = "COATING"
	WorkOrderTypeInspection  WorkOrderType = "INSPECTION"
)

// AllWorkOrderTypes lists the accepted type values, used in validation messages
func AllWorkOrderTypes() []WorkOrderType {
	return []WorkOrderType{
		WorkOrderTypeFabrication, WorkOrderTypeAssembly, WorkOrderTypeWelding,
		WorkOrderTypeCoating, WorkOrderTypeInspection,
	}
}

// IsValid checks if the type is a valid WorkOrderType
func (t WorkOrderType) IsValid() bool {
	switch t {
	case WorkOrderTypeFabrication, WorkOrderTypeAssembly, WorkOrderTypeWelding,
		WorkOrderTypeCoating, WorkOrderTypeInspection:
		return true
	}
	return false
}

// String returns the string representation of WorkOrderType
func (t WorkOrderType) String() string {
	return string(t)
}

// NewInvalidWorkOrderTypeError builds the validation error listing the allowed set
func NewInvalidWorkOrderTypeError(t WorkOrderType) *shared.DomainError {
	allowed := ""
	for i, v := range AllWorkOrderTypes() {
		if i > 0 {
			allowed += ", "
		}
		allowed += v.String()
	}
	return shared.NewDomainError("INVALID_WORK_ORDER_TYPE",
		"Invalid work order type '"+t.String()+"'. Allowed values: "+allowed)
}

// WorkOrderStatus represents the status of a work order
type WorkOrderStatus string

const (
	WorkOrderStatusCreated    WorkOrderStatus = "CREATED"
	WorkOrderStatusReleased   WorkOrderStatus = "RELEASED"
	WorkOrderStatusInProgress WorkOrderStatus = "IN_PROGRESS"
	WorkOrderStatusComplete   WorkOrderStatus = "COMPLETE"
	WorkOrderStatusCancelled  WorkOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid WorkOrderStatus
func (s WorkOrderStatus) IsValid() bool {
	switch s {
	case WorkOrderStatusCreated, WorkOrderStatusReleased, WorkOrderStatusInProgress,
		WorkOrderStatusComplete, WorkOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of WorkOrderStatus
func (s WorkOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s WorkOrderStatus) CanTransitionTo(target WorkOrderStatus) bool {
	switch s {
	case WorkOrderStatusCreated:
		return target == WorkOrderStatusReleased || target == WorkOrderStatusCancelled
	case WorkOrderStatusReleased:
		return target == WorkOrderStatusInProgress || target == WorkOrderStatusCancelled
	case WorkOrderStatusInProgress:
		return target == WorkOrderStatusComplete || target == WorkOrderStatusCancelled
	case WorkOrderStatusComplete, WorkOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// RoutingLineStatus represents the status of a single routing operation
type RoutingLineStatus string

const (
	RoutingLineStatusPending    RoutingLineStatus = "PENDING"
	RoutingLineStatusStarted    RoutingLineStatus = "STARTED"
	RoutingLineStatusInProgress RoutingLineStatus = "IN_PROGRESS"
	RoutingLineStatusFinished   RoutingLineStatus = "FINISHED"
	RoutingLineStatusClosed     RoutingLineStatus = "CLOSED"
)

// IsValid checks if the status is a valid RoutingLineStatus
func (s RoutingLineStatus) IsValid() bool {
	switch s {
	case RoutingLineStatusPending, RoutingLineStatusStarted, RoutingLineStatusInProgress,
		RoutingLineStatusFinished, RoutingLineStatusClosed:
		return true
	}
	return false
}

// String returns the string representation of RoutingLineStatus
func (s RoutingLineStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s RoutingLineStatus) CanTransitionTo(target RoutingLineStatus) bool {
	switch s {
	case RoutingLineStatusPending:
		return target == RoutingLineStatusStarted
	case RoutingLineStatusStarted:
		return target == RoutingLineStatusInProgress || target == RoutingLineStatusFinished
	case RoutingLineStatusInProgress:
		return target == RoutingLineStatusFinished
	case RoutingLineStatusFinished:
		return target == RoutingLineStatusClosed
	case RoutingLineStatusClosed:
		return false // Terminal state
	}
	return false
}

// RoutingLine represents one operation step in a work order's routing
type RoutingLine struct {
	ID                  uuid.UUID
	WorkOrderID         uuid.UUID
	SequenceNumber      int
	OperationCode       string
	OperationName       string
	WorkCenterID        *uuid.UUID
	Status              RoutingLineStatus
	PlannedSetupMinutes decimal.Decimal
	PlannedRunMinutes   decimal.Decimal
	ActualSetupMinutes  decimal.Decimal
	ActualRunMinutes    decimal.Decimal
	StartedAt           *time.Time
	FinishedAt          *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewRoutingLine creates a new routing line in Pending status
func NewRoutingLine(workOrderID uuid.UUID, sequenceNumber int, operationCode, operationName string, plannedSetupMinutes, plannedRunMinutes decimal.Decimal) (*RoutingLine, error) {
	if workOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORK_ORDER", "Work order ID cannot be empty")
	}
	if sequenceNumber <= 0 {
		return nil, shared.NewDomainError("INVALID_SEQUENCE", "Sequence number must be positive")
	}
	if operationCode == "" {
		return nil, shared.NewDomainError("INVALID_OPERATION", "Operation code cannot be empty")
	}
	if plannedSetupMinutes.IsNegative() || plannedRunMinutes.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DURATION", "Planned minutes cannot be negative")
	}

	now := time.Now()
	return &RoutingLine{
		ID:                  uuid.New(),
		WorkOrderID:         workOrderID,
		SequenceNumber:      sequenceNumber,
		OperationCode:       operationCode,
		OperationName:       operationName,
		Status:              RoutingLineStatusPending,
		PlannedSetupMinutes: plannedSetupMinutes,
		PlannedRunMinutes:   plannedRunMinutes,
		ActualSetupMinutes:  decimal.Zero,
		ActualRunMinutes:    decimal.Zero,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// Transition moves the routing line to the target status, stamping
// start/finish times along the way.
func (l *RoutingLine) Transition(target RoutingLineStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown routing line status: "+target.String())
	}
	if !l.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot transition operation from "+l.Status.String()+" to "+target.String())
	}

	now := time.Now()
	switch target {
	case RoutingLineStatusStarted:
		l.StartedAt = &now
	case RoutingLineStatusFinished:
		l.FinishedAt = &now
	}
	l.Status = target
	l.UpdatedAt = now
	return nil
}

// RecordActuals records the actual setup and run minutes for the operation
func (l *RoutingLine) RecordActuals(setupMinutes, runMinutes decimal.Decimal) error {
	if setupMinutes.IsNegative() || runMinutes.IsNegative() {
		return shared.NewDomainError("INVALID_DURATION", "Actual minutes cannot be negative")
	}

	l.ActualSetupMinutes = setupMinutes
	l.ActualRunMinutes = runMinutes
	l.UpdatedAt = time.Now()
	return nil
}

// WorkOrder represents the unit of shop-floor work.
// It owns an ordered routing of operations and references the primary
// resource and work center doing the work.
type WorkOrder struct {
	shared.CompanyAggregateRoot
	WorkPackageID   uuid.UUID
	WorkOrderNumber string
	Type            WorkOrderType
	Priority        Priority
	Status          WorkOrderStatus
	Description     string
	Quantity        decimal.Decimal
	ResourceID      *uuid.UUID
	WorkCenterID    *uuid.UUID
	RoutingLines    []RoutingLine
	PlannedHours    decimal.Decimal
	ActualHours     decimal.Decimal
	ReleasedAt      *time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	CancelledAt     *time.Time
	CancelReason    string
}

// NewWorkOrder creates a new work order in Created status
func NewWorkOrder(companyID, workPackageID uuid.UUID, workOrderNumber string, woType WorkOrderType, priority Priority, quantity decimal.Decimal) (*WorkOrder, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if workPackageID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORK_PACKAGE", "Work package ID cannot be empty")
	}
	if workOrderNumber == "" {
		return nil, shared.NewDomainError("INVALID_WORK_ORDER_NUMBER", "Work order number cannot be empty")
	}
	if !woType.IsValid() {
		return nil, NewInvalidWorkOrderTypeError(woType)
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		return nil, NewInvalidPriorityError(priority)
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	wo := &WorkOrder{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		WorkPackageID:        workPackageID,
		WorkOrderNumber:      workOrderNumber,
		Type:                 woType,
		Priority:             priority,
		Status:               WorkOrderStatusCreated,
		Quantity:             quantity,
		RoutingLines:         make([]RoutingLine, 0),
		PlannedHours:         decimal.Zero,
		ActualHours:          decimal.Zero,
	}

	wo.AddDomainEvent(NewWorkOrderCreatedEvent(wo))
	return wo, nil
}

// AddRoutingLine appends an operation to the routing.
// Sequence numbers must be unique within the work order.
func (wo *WorkOrder) AddRoutingLine(line *RoutingLine) error {
	if wo.Status != WorkOrderStatusCreated {
		return shared.NewDomainError("INVALID_STATE", "Routing can only be edited before release")
	}
	for _, existing := range wo.RoutingLines {
		if existing.SequenceNumber == line.SequenceNumber {
			return shared.NewDomainError("DUPLICATE_SEQUENCE",
				"Routing already contains sequence number "+strconv.Itoa(line.SequenceNumber))
		}
	}

	line.WorkOrderID = wo.ID
	wo.RoutingLines = append(wo.RoutingLines, *line)
	wo.recalculatePlannedHours()
	wo.UpdatedAt = time.Now()
	return nil
}

// RemoveRoutingLine removes an operation from the routing by line ID
func (wo *WorkOrder) RemoveRoutingLine(lineID uuid.UUID) error {
	if wo.Status != WorkOrderStatusCreated {
		return shared.NewDomainError("INVALID_STATE", "Routing can only be edited before release")
	}
	for i, line := range wo.RoutingLines {
		if line.ID == lineID {
			wo.RoutingLines = append(wo.RoutingLines[:i], wo.RoutingLines[i+1:]...)
			wo.recalculatePlannedHours()
			wo.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Routing line not found in work order")
}

// FindRoutingLine returns the routing line with the given ID
func (wo *WorkOrder) FindRoutingLine(lineID uuid.UUID) (*RoutingLine, error) {
	for i := range wo.RoutingLines {
		if wo.RoutingLines[i].ID == lineID {
			return &wo.RoutingLines[i], nil
		}
	}
	return nil, shared.NewDomainError("LINE_NOT_FOUND", "Routing line not found in work order")
}

// AssignResource sets the primary resource for the work order
func (wo *WorkOrder) AssignResource(resourceID uuid.UUID) error {
	if wo.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot assign resource to a finished work order")
	}
	if resourceID == uuid.Nil {
		return shared.NewDomainError("INVALID_RESOURCE", "Resource ID cannot be empty")
	}
	wo.ResourceID = &resourceID
	wo.UpdatedAt = time.Now()
	return nil
}

// AssignWorkCenter sets the primary work center for the work order
func (wo *WorkOrder) AssignWorkCenter(workCenterID uuid.UUID) error {
	if wo.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot assign work center to a finished work order")
	}
	if workCenterID == uuid.Nil {
		return shared.NewDomainError("INVALID_WORK_CENTER", "Work center ID cannot be empty")
	}
	wo.WorkCenterID = &workCenterID
	wo.UpdatedAt = time.Now()
	return nil
}

// Release transitions the work order from Created to Released
func (wo *WorkOrder) Release() error {
	if !wo.Status.CanTransitionTo(WorkOrderStatusReleased) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot release work order in status "+wo.Status.String())
	}
	if len(wo.RoutingLines) == 0 {
		return shared.NewDomainError("EMPTY_ROUTING", "Cannot release a work order without routing operations")
	}

	now := time.Now()
	wo.Status = WorkOrderStatusReleased
	wo.ReleasedAt = &now
	wo.UpdatedAt = now

	wo.AddDomainEvent(NewWorkOrderStatusChangedEvent(wo))
	return nil
}

// Start transitions the work order from Released to InProgress
func (wo *WorkOrder) Start() error {
	if !wo.Status.CanTransitionTo(WorkOrderStatusInProgress) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot start work order in status "+wo.Status.String())
	}

	now := time.Now()
	wo.Status = WorkOrderStatusInProgress
	wo.StartedAt = &now
	wo.UpdatedAt = now

	wo.AddDomainEvent(NewWorkOrderStatusChangedEvent(wo))
	return nil
}

// Complete transitions the work order to Complete and rolls up actual hours
func (wo *WorkOrder) Complete() error {
	if !wo.Status.CanTransitionTo(WorkOrderStatusComplete) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot complete work order in status "+wo.Status.String())
	}

	now := time.Now()
	wo.Status = WorkOrderStatusComplete
	wo.CompletedAt = &now
	wo.recalculateActualHours()
	wo.UpdatedAt = now

	wo.AddDomainEvent(NewWorkOrderStatusChangedEvent(wo))
	return nil
}

// Cancel cancels the work order with a reason.
// Cancelling an already-cancelled work order is a no-op so the
// work-package soft-delete cascade stays idempotent.
func (wo *WorkOrder) Cancel(reason string) error {
	if wo.Status == WorkOrderStatusCancelled {
		return nil
	}
	if !wo.Status.CanTransitionTo(WorkOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot cancel work order in status "+wo.Status.String())
	}

	now := time.Now()
	wo.Status = WorkOrderStatusCancelled
	wo.CancelledAt = &now
	wo.CancelReason = reason
	wo.UpdatedAt = now

	wo.AddDomainEvent(NewWorkOrderStatusChangedEvent(wo))
	return nil
}

// IsTerminal reports whether the work order is in a terminal status
func (wo *WorkOrder) IsTerminal() bool {
	return wo.Status == WorkOrderStatusComplete || wo.Status == WorkOrderStatusCancelled
}

// RecalculateHours recomputes planned and actual hours from the routing
func (wo *WorkOrder) RecalculateHours() {
	wo.recalculatePlannedHours()
	wo.recalculateActualHours()
}

func (wo *WorkOrder) recalculatePlannedHours() {
	total := decimal.Zero
	for _, line := range wo.RoutingLines {
		total = total.Add(line.PlannedSetupMinutes).Add(line.PlannedRunMinutes)
	}
	wo.PlannedHours = total.Div(decimal.NewFromInt(60)).Round(2)
}

func (wo *WorkOrder) recalculateActualHours() {
	total := decimal.Zero
	for _, line := range wo.RoutingLines {
		total = total.Add(line.ActualSetupMinutes).Add(line.ActualRunMinutes)
	}
	wo.ActualHours = total.Div(decimal.NewFromInt(60)).Round(2)
}
