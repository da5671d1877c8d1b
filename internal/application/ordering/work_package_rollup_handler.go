package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/fabmate/backend/internal/domain/production"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkPackageRollupHandler recalculates order rollups when the work packages
// under an order change. Creation events carry the order id directly; status
// change and delete events resolve it through the work package.
type WorkPackageRollupHandler struct {
	orderService    *OrderService
	workPackageRepo production.WorkPackageRepository
	logger          *zap.Logger
}

// NewWorkPackageRollupHandler creates a new handler for work package events
func NewWorkPackageRollupHandler(
	orderService *OrderService,
	workPackageRepo production.WorkPackageRepository,
	logger *zap.Logger,
) *WorkPackageRollupHandler {
	return &WorkPackageRollupHandler{
		orderService:    orderService,
		workPackageRepo: workPackageRepo,
		logger:          logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *WorkPackageRollupHandler) EventTypes() []string {
	return []string{
		production.EventTypeWorkPackageCreated,
		production.EventTypeWorkPackageStatusChanged,
		production.EventTypeWorkPackageDeleted,
	}
}

// Handle processes a work package event and refreshes the parent order
func (h *WorkPackageRollupHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *production.WorkPackageCreatedEvent:
		return h.recalculate(ctx, event, e.OrderID)
	case *production.WorkPackageStatusChangedEvent:
		return h.recalculateFromWorkPackage(ctx, event, e.WorkPackageID)
	case *production.WorkPackageDeletedEvent:
		return h.recalculate(ctx, event, e.OrderID)
	default:
		h.logger.Error("unexpected event type",
			zap.String("event_type", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *WorkPackageRollupHandler) recalculate(ctx context.Context, event shared.DomainEvent, orderID uuid.UUID) error {
	if _, err := h.orderService.RecalculateRollup(ctx, event.CompanyID(), orderID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("order gone before rollup recalculation",
				zap.String("order_id", orderID.String()),
				zap.String("event_type", event.EventType()),
			)
			return nil
		}
		return fmt.Errorf("recalculate order rollup: %w", err)
	}

	h.logger.Debug("order rollup recalculated",
		zap.String("order_id", orderID.String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

// recalculateFromWorkPackage resolves the parent order through the work
// package; a miss just skips the rollup.
func (h *WorkPackageRollupHandler) recalculateFromWorkPackage(ctx context.Context, event shared.DomainEvent, workPackageID uuid.UUID) error {
	wp, err := h.workPackageRepo.FindByIDForCompany(ctx, event.CompanyID(), workPackageID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("work package gone before rollup recalculation",
				zap.String("work_package_id", workPackageID.String()),
				zap.String("event_type", event.EventType()),
			)
			return nil
		}
		return fmt.Errorf("load work package for rollup: %w", err)
	}

	return h.recalculate(ctx, event, wp.OrderID)
}
