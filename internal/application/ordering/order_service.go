package ordering

import (
	"context"

	"github.com/fabmate/backend/internal/domain/ordering"
	"github.com/fabmate/backend/internal/domain/production"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService handles customer order business operations
type OrderService struct {
	orderRepo       ordering.OrderRepository
	workPackageRepo production.WorkPackageRepository
	eventPublisher  shared.EventPublisher
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo ordering.OrderRepository, workPackageRepo production.WorkPackageRepository) *OrderService {
	return &OrderService{
		orderRepo:       orderRepo,
		workPackageRepo: workPackageRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new order in Draft status
func (s *OrderService) Create(ctx context.Context, companyID uuid.UUID, req CreateOrderRequest, createdBy *uuid.UUID) (*OrderResponse, error) {
	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}

	order, err := ordering.NewOrder(companyID, orderNumber, req.CustomerName)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		order.SetCreatedBy(*createdBy)
	}

	if req.CustomerReference != "" || req.Description != "" || req.RequiredDate != nil {
		if err := order.UpdateDetails(req.CustomerName, req.CustomerReference, req.Description, req.RequiredDate); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, companyID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForCompany(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber retrieves an order by its order number
func (s *OrderService) GetByOrderNumber(ctx context.Context, companyID uuid.UUID, orderNumber string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, companyID, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, companyID uuid.UUID, req ListOrdersRequest) ([]OrderResponse, int64, error) {
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
		status := ordering.OrderStatus(req.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid order status filter")
		}
		filter.Filters["status"] = string(status)
	}

	orders, err := s.orderRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderResponses(orders), total, nil
}

// Update updates a draft order's details
func (s *OrderService) Update(ctx context.Context, companyID, orderID uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForCompany(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}

	customerName := order.CustomerName
	if req.CustomerName != nil {
		customerName = *req.CustomerName
	}
	customerReference := order.CustomerReference
	if req.CustomerReference != nil {
		customerReference = *req.CustomerReference
	}
	description := order.Description
	if req.Description != nil {
		description = *req.Description
	}
	requiredDate := order.RequiredDate
	if req.RequiredDate != nil {
		requiredDate = req.RequiredDate
	}

	if err := order.UpdateDetails(customerName, customerReference, description, requiredDate); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// Confirm confirms a draft order
func (s *OrderService) Confirm(ctx context.Context, companyID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForCompany(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Confirm(); err != nil {
		return nil, err
	}

	// Collect domain events before save
	events := order.GetDomainEvents()
	order.ClearDomainEvents()

	// Save with optimistic locking and events atomically (transactional outbox pattern)
	if err := s.orderRepo.SaveWithLockAndEvents(ctx, order, events); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// Complete marks a confirmed order as complete
func (s *OrderService) Complete(ctx context.Context, companyID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForCompany(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Complete(); err != nil {
		return nil, err
	}

	events := order.GetDomainEvents()
	order.ClearDomainEvents()

	if err := s.orderRepo.SaveWithLockAndEvents(ctx, order, events); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// Cancel cancels an order
func (s *OrderService) Cancel(ctx context.Context, companyID, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForCompany(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}

	events := order.GetDomainEvents()
	order.ClearDomainEvents()

	if err := s.orderRepo.SaveWithLockAndEvents(ctx, order, events); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// RecalculateRollup recomputes the order's estimate rollups from its work packages
func (s *OrderService) RecalculateRollup(ctx context.Context, companyID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForCompany(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}

	packages, err := s.workPackageRepo.FindByOrder(ctx, companyID, orderID, shared.Filter{})
	if err != nil {
		return nil, err
	}

	hours := decimal.Zero
	cost := decimal.Zero
	for i := range packages {
		if packages[i].Status == production.WorkPackageStatusCancelled {
			continue
		}
		hours = hours.Add(packages[i].EstimatedHours)
		cost = cost.Add(packages[i].EstimatedCost)
	}

	if err := order.ApplyRollup(hours, cost); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) publishEvents(ctx context.Context, order *ordering.Order) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range order.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	order.ClearDomainEvents()
}
