package production

import (
	"context"

	"github.com/fabmate/backend/internal/domain/production"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WorkPackageService handles work package business operations
type WorkPackageService struct {
	workPackageRepo production.WorkPackageRepository
	workOrderRepo   production.WorkOrderRepository
	eventPublisher  shared.EventPublisher
}

// NewWorkPackageService creates a new WorkPackageService
func NewWorkPackageService(workPackageRepo production.WorkPackageRepository, workOrderRepo production.WorkOrderRepository) *WorkPackageService {
	return &WorkPackageService{
		workPackageRepo: workPackageRepo,
		workOrderRepo:   workOrderRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *WorkPackageService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new work package in Planned status
func (s *WorkPackageService) Create(ctx context.Context, companyID uuid.UUID, req CreateWorkPackageRequest, createdBy *uuid.UUID) (*WorkPackageResponse, error) {
	packageNumber, err := s.workPackageRepo.GeneratePackageNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}

	wp, err := production.NewWorkPackage(companyID, req.OrderID, packageNumber, req.Name, production.Priority(req.Priority))
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		wp.SetCreatedBy(*createdBy)
	}

	if req.Description != "" || req.PlannedStart != nil || req.PlannedEnd != nil {
		if err := wp.UpdateDetails(req.Name, req.Description, wp.Priority, req.PlannedStart, req.PlannedEnd); err != nil {
			return nil, err
		}
	}

	if err := s.workPackageRepo.Save(ctx, wp); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, &wp.CompanyAggregateRoot)

	response := ToWorkPackageResponse(wp)
	return &response, nil
}

// GetByID retrieves a work package by ID
func (s *WorkPackageService) GetByID(ctx context.Context, companyID, workPackageID uuid.UUID) (*WorkPackageResponse, error) {
	wp, err := s.workPackageRepo.FindByIDForCompany(ctx, companyID, workPackageID)
	if err != nil {
		return nil, err
	}
	response := ToWorkPackageResponse(wp)
	return &response, nil
}

// List retrieves work packages with filtering and pagination
func (s *WorkPackageService) List(ctx context.Context, companyID uuid.UUID, req ListWorkPackagesRequest) ([]WorkPackageResponse, int64, error) {
	// Set defaults
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.OrderBy == "" {
		req.OrderBy = "created_at"
	}
	if req.OrderDir == "" {
		req.OrderDir = "desc"
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  map[string]interface{}{},
	}
	if req.Status != "" {
		status := production.WorkPackageStatus(req.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid work package status filter")
		}
		filter.Filters["status"] = string(status)
	}
	if req.Priority != "" {
		priority := production.Priority(req.Priority)
		if !priority.IsValid() {
			return nil, 0, production.NewInvalidPriorityError(priority)
		}
		filter.Filters["priority"] = string(priority)
	}
	if req.OrderID != "" {
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_ORDER_ID", "Invalid order ID filter")
		}
		filter.Filters["order_id"] = orderID
	}

	packages, err := s.workPackageRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.workPackageRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	return ToWorkPackageResponses(packages), total, nil
}

// Update updates a work package's mutable fields
func (s *WorkPackageService) Update(ctx context.Context, companyID, workPackageID uuid.UUID, req UpdateWorkPackageRequest) (*WorkPackageResponse, error) {
	wp, err := s.workPackageRepo.FindByIDForCompany(ctx, companyID, workPackageID)
	if err != nil {
		return nil, err
	}

	name := wp.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := wp.Description
	if req.Description != nil {
		description = *req.Description
	}
	priority := wp.Priority
	if req.Priority != nil {
		priority = production.Priority(*req.Priority)
	}
	plannedStart := wp.PlannedStart
	if req.PlannedStart != nil {
		plannedStart = req.PlannedStart
	}
	plannedEnd := wp.PlannedEnd
	if req.PlannedEnd != nil {
		plannedEnd = req.PlannedEnd
	}

	if err := wp.UpdateDetails(name, description, priority, plannedStart, plannedEnd); err != nil {
		return nil, err
	}

	if err := s.workPackageRepo.SaveWithLock(ctx, wp); err != nil {
		return nil, err
	}

	response := ToWorkPackageResponse(wp)
	return &response, nil
}

// Transition moves a work package to a new status
func (s *WorkPackageService) Transition(ctx context.Context, companyID, workPackageID uuid.UUID, req TransitionWorkPackageRequest) (*WorkPackageResponse, error) {
	wp, err := s.workPackageRepo.FindByIDForCompany(ctx, companyID, workPackageID)
	if err != nil {
		return nil, err
	}

	target := production.WorkPackageStatus(req.Status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid work package status")
	}

	if err := wp.TransitionTo(target); err != nil {
		return nil, err
	}

	if err := s.workPackageRepo.SaveWithLock(ctx, wp); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, &wp.CompanyAggregateRoot)

	response := ToWorkPackageResponse(wp)
	return &response, nil
}

// Delete soft-deletes a work package and cancels its work orders.
// The delete is rejected while any work order under the package is in progress.
func (s *WorkPackageService) Delete(ctx context.Context, companyID, workPackageID uuid.UUID) error {
	wp, err := s.workPackageRepo.FindByIDForCompany(ctx, companyID, workPackageID)
	if err != nil {
		return err
	}

	inProgress, err := s.workOrderRepo.CountActiveByWorkPackage(ctx, companyID, workPackageID)
	if err != nil {
		return err
	}
	if inProgress > 0 {
		return shared.NewDomainError("WORK_ORDERS_IN_PROGRESS",
			"Cannot delete a work package while work orders are in progress")
	}

	workOrders, err := s.workOrderRepo.FindByWorkPackage(ctx, companyID, workPackageID)
	if err != nil {
		return err
	}

	cancelled := make([]production.WorkOrder, 0, len(workOrders))
	cancelledIDs := make([]uuid.UUID, 0, len(workOrders))
	for i := range workOrders {
		wo := &workOrders[i]
		if wo.IsTerminal() {
			continue
		}
		if err := wo.Cancel("Work package deleted"); err != nil {
			return err
		}
		cancelled = append(cancelled, *wo)
		cancelledIDs = append(cancelledIDs, wo.ID)
	}

	if err := wp.Cancel(); err != nil {
		return err
	}
	wp.AddDomainEvent(production.NewWorkPackageDeletedEvent(wp, cancelledIDs))

	if err := s.workPackageRepo.SoftDeleteWithCascade(ctx, wp, cancelled); err != nil {
		return err
	}

	s.publishEvents(ctx, &wp.CompanyAggregateRoot)
	return nil
}

func (s *WorkPackageService) publishEvents(ctx context.Context, agg *shared.CompanyAggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range agg.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	agg.ClearDomainEvents()
}
