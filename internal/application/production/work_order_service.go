package production

import (
	"context"

	"github.com/fabmate/backend/internal/domain/production"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WorkOrderService handles work order business operations
type WorkOrderService struct {
	workOrderRepo   production.WorkOrderRepository
	workPackageRepo production.WorkPackageRepository
	templateRepo    production.RoutingTemplateRepository
	resourceRepo    production.ResourceRepository
	workCenterRepo  production.WorkCenterRepository
	eventPublisher  shared.EventPublisher
}

// NewWorkOrderService creates a new WorkOrderService
func NewWorkOrderService(
	workOrderRepo production.WorkOrderRepository,
	workPackageRepo production.WorkPackageRepository,
	templateRepo production.RoutingTemplateRepository,
	resourceRepo production.ResourceRepository,
	workCenterRepo production.WorkCenterRepository,
) *WorkOrderService {
	return &WorkOrderService{
		workOrderRepo:   workOrderRepo,
		workPackageRepo: workPackageRepo,
		templateRepo:    templateRepo,
		resourceRepo:    resourceRepo,
		workCenterRepo:  workCenterRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *WorkOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new work order under a work package, optionally seeding
// its routing from a template
func (s *WorkOrderService) Create(ctx context.Context, companyID uuid.UUID, req CreateWorkOrderRequest, createdBy *uuid.UUID) (*WorkOrderResponse, error) {
	wp, err := s.workPackageRepo.FindByIDForCompany(ctx, companyID, req.WorkPackageID)
	if err != nil {
		return nil, err
	}
	if wp.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add work orders to a completed or cancelled work package")
	}

	workOrderNumber, err := s.workOrderRepo.GenerateWorkOrderNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}

	wo, err := production.NewWorkOrder(companyID, req.WorkPackageID, workOrderNumber,
		production.WorkOrderType(req.Type), production.Priority(req.Priority), req.Quantity)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		wo.SetCreatedBy(*createdBy)
	}
	wo.Description = req.Description

	if req.RoutingTemplateID != nil {
		template, err := s.templateRepo.FindByIDForCompany(ctx, companyID, *req.RoutingTemplateID)
		if err != nil {
			return nil, err
		}
		lines, err := template.InstantiateRouting(wo.ID)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			if err := wo.AddRoutingLine(line); err != nil {
				return nil, err
			}
		}
	}

	if err := s.workOrderRepo.Save(ctx, wo); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, wo)

	response := ToWorkOrderResponse(wo)
	return &response, nil
}

// GetByID retrieves a work order by ID with its routing lines
func (s *WorkOrderService) GetByID(ctx context.Context, companyID, workOrderID uuid.UUID) (*WorkOrderResponse, error) {
	wo, err := s.workOrderRepo.FindByIDForCompany(ctx, companyID, workOrderID)
	if err != nil {
		return nil, err
	}
	response := ToWorkOrderResponse(wo)
	return &response, nil
}

// List retrieves work orders with filtering and pagination
func (s *WorkOrderService) List(ctx context.Context, companyID uuid.UUID, req ListWorkOrdersRequest) ([]WorkOrderResponse, int64, error) {
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
		status := production.WorkOrderStatus(req.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid work order status filter")
		}
		filter.Filters["status"] = string(status)
	}
	if req.Type != "" {
		woType := production.WorkOrderType(req.Type)
		if !woType.IsValid() {
			return nil, 0, production.NewInvalidWorkOrderTypeError(woType)
		}
		filter.Filters["type"] = string(woType)
	}
	if req.Priority != "" {
		priority := production.Priority(req.Priority)
		if !priority.IsValid() {
			return nil, 0, production.NewInvalidPriorityError(priority)
		}
		filter.Filters["priority"] = string(priority)
	}
	if req.WorkPackageID != "" {
		workPackageID, err := uuid.Parse(req.WorkPackageID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_WORK_PACKAGE_ID", "Invalid work package ID filter")
		}
		filter.Filters["work_package_id"] = workPackageID
	}

	orders, err := s.workOrderRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.workOrderRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	return ToWorkOrderResponses(orders), total, nil
}

// Update updates a work order's mutable fields before release
func (s *WorkOrderService) Update(ctx context.Context, companyID, workOrderID uuid.UUID, req UpdateWorkOrderRequest) (*WorkOrderResponse, error) {
	wo, err := s.workOrderRepo.FindByIDForCompany(ctx, companyID, workOrderID)
	if err != nil {
		return nil, err
	}

	if wo.Status != production.WorkOrderStatusCreated {
		return nil, shared.NewDomainError("INVALID_STATE", "Work order can only be edited before release")
	}

	if req.Priority != nil {
		priority := production.Priority(*req.Priority)
		if !priority.IsValid() {
			return nil, production.NewInvalidPriorityError(priority)
		}
		wo.Priority = priority
	}
	if req.Description != nil {
		wo.Description = *req.Description
	}
	if req.Quantity != nil {
		if req.Quantity.IsPositive() {
			wo.Quantity = *req.Quantity
		} else {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
	}

	if err := s.workOrderRepo.SaveWithLock(ctx, wo); err != nil {
		return nil, err
	}

	response := ToWorkOrderResponse(wo)
	return &response, nil
}

// Assign assigns a resource and/or work center to a work order
func (s *WorkOrderService) Assign(ctx context.Context, companyID, workOrderID uuid.UUID, req AssignWorkOrderRequest) (*WorkOrderResponse, error) {
	wo, err := s.workOrderRepo.FindByIDForCompany(ctx, companyID, workOrderID)
	if err != nil {
		return nil, err
	}

	if req.ResourceID != nil {
		resource, err := s.resourceRepo.FindByIDForCompany(ctx, companyID, *req.ResourceID)
		if err != nil {
			return nil, err
		}
		if !resource.IsActive {
			return nil, shared.NewDomainError("RESOURCE_INACTIVE", "Cannot assign an inactive resource")
		}
		if err := wo.AssignResource(resource.ID); err != nil {
			return nil, err
		}
	}
	if req.WorkCenterID != nil {
		workCenter, err := s.workCenterRepo.FindByIDForCompany(ctx, companyID, *req.WorkCenterID)
		if err != nil {
			return nil, err
		}
		if !workCenter.IsActive {
			return nil, shared.NewDomainError("WORK_CENTER_INACTIVE", "Cannot assign an inactive work center")
		}
		if err := wo.AssignWorkCenter(workCenter.ID); err != nil {
			return nil, err
		}
	}

	if err := s.workOrderRepo.SaveWithLock(ctx, wo); err != nil {
		return nil, err
	}

	response := ToWorkOrderResponse(wo)
	return &response, nil
}

// AddRoutingLine appends an operation to a work order's routing
func (s *WorkOrderService) AddRoutingLine(ctx context.Context, companyID, workOrderID uuid.UUID, req AddRoutingLineRequest) (*WorkOrderResponse, error) {
	wo, err := s.workOrderRepo.FindByIDForCompany(ctx, companyID, workOrderID)
	if err != nil {
		return nil, err
	}

	line, err := production.NewRoutingLine(wo.ID, req.SequenceNumber, req.OperationCode, req.OperationName,
		req.PlannedSetupMinutes, req.PlannedRunMinutes)
	if err != nil {
		return nil, err
	}

	if err := wo.AddRoutingLine(line); err != nil {
		return nil, err
	}

	if err := s.workOrderRepo.SaveWithLock(ctx, wo); err != nil {
		return nil, err
	}

	response := ToWorkOrderResponse(wo)
	return &response, nil
}

// RemoveRoutingLine removes an operation from a work order's routing
func (s *WorkOrderService) RemoveRoutingLine(ctx context.Context, companyID, workOrderID, lineID uuid.UUID) (*WorkOrderResponse, error) {
	wo, err := s.workOrderRepo.FindByIDForCompany(ctx, companyID, workOrderID)
	if err != nil {
		return nil, err
	}

	if err := wo.RemoveRoutingLine(lineID); err != nil {
		return nil, err
	}

	if err := s.workOrderRepo.SaveWithLock(ctx, wo); err != nil {
		return nil, err
	}

	response := ToWorkOrderResponse(wo)
	return &response, nil
}

// TransitionRoutingLine moves a routing line to a new status, recording
// actual times when finishing
func (s *WorkOrderService) TransitionRoutingLine(ctx context.Context, companyID, workOrderID, lineID uuid.UUID, req TransitionRoutingLineRequest) (*WorkOrderResponse, error) {
	wo, err := s.workOrderRepo.FindByIDForCompany(ctx, companyID, workOrderID)
	if err != nil {
		return nil, err
	}

	line, err := wo.FindRoutingLine(lineID)
	if err != nil {
		return nil, err
	}

	target := production.RoutingLineStatus(req.Status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid routing line status")
	}

	if err := line.Transition(target); err != nil {
		return nil, err
	}

	if req.SetupMinutes != nil || req.RunMinutes != nil {
		setup := line.ActualSetupMinutes
		if req.SetupMinutes != nil {
			setup = *req.SetupMinutes
		}
		run := line.ActualRunMinutes
		if req.RunMinutes != nil {
			run = *req.RunMinutes
		}
		if err := line.RecordActuals(setup, run); err != nil {
			return nil, err
		}
	}

	wo.RecalculateHours()

	if err := s.workOrderRepo.SaveWithLock(ctx, wo); err != nil {
		return nil, err
	}

	response := ToWorkOrderResponse(wo)
	return &response, nil
}

// Release releases a work order to the shop floor
func (s *WorkOrderService) Release(ctx context.Context, companyID, workOrderID uuid.UUID) (*WorkOrderResponse, error) {
	return s.transition(ctx, companyID, workOrderID, func(wo *production.WorkOrder) error {
		return wo.Release()
	})
}

// Start moves a released work order to InProgress
func (s *WorkOrderService) Start(ctx context.Context, companyID, workOrderID uuid.UUID) (*WorkOrderResponse, error) {
	return s.transition(ctx, companyID, workOrderID, func(wo *production.WorkOrder) error {
		return wo.Start()
	})
}

// Complete completes an in-progress work order
func (s *WorkOrderService) Complete(ctx context.Context, companyID, workOrderID uuid.UUID) (*WorkOrderResponse, error) {
	return s.transition(ctx, companyID, workOrderID, func(wo *production.WorkOrder) error {
		return wo.Complete()
	})
}

// Cancel cancels a work order
func (s *WorkOrderService) Cancel(ctx context.Context, companyID, workOrderID uuid.UUID, req CancelWorkOrderRequest) (*WorkOrderResponse, error) {
	return s.transition(ctx, companyID, workOrderID, func(wo *production.WorkOrder) error {
		return wo.Cancel(req.Reason)
	})
}

func (s *WorkOrderService) transition(ctx context.Context, companyID, workOrderID uuid.UUID, apply func(*production.WorkOrder) error) (*WorkOrderResponse, error) {
	wo, err := s.workOrderRepo.FindByIDForCompany(ctx, companyID, workOrderID)
	if err != nil {
		return nil, err
	}

	if err := apply(wo); err != nil {
		return nil, err
	}

	if err := s.workOrderRepo.SaveWithLock(ctx, wo); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, wo)

	response := ToWorkOrderResponse(wo)
	return &response, nil
}

func (s *WorkOrderService) publishEvents(ctx context.Context, wo *production.WorkOrder) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range wo.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	wo.ClearDomainEvents()
}
