package event

import (
	"github.com/fabmate/backend/internal/domain/identity"
	"github.com/fabmate/backend/internal/domain/ordering"
	"github.com/fabmate/backend/internal/domain/production"
	"github.com/fabmate/backend/internal/domain/takeoff"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer EventCodec) {
	// Ordering domain events
	serializer.Register(ordering.EventTypeOrderCreated, &ordering.OrderCreatedEvent{})
	serializer.Register(ordering.EventTypeOrderConfirmed, &ordering.OrderConfirmedEvent{})
	serializer.Register(ordering.EventTypeOrderCompleted, &ordering.OrderCompletedEvent{})
	serializer.Register(ordering.EventTypeOrderCancelled, &ordering.OrderCancelledEvent{})

	// Production domain events
	serializer.Register(production.EventTypeWorkPackageCreated, &production.WorkPackageCreatedEvent{})
	serializer.Register(production.EventTypeWorkPackageStatusChanged, &production.WorkPackageStatusChangedEvent{})
	serializer.Register(production.EventTypeWorkPackageDeleted, &production.WorkPackageDeletedEvent{})
	serializer.Register(production.EventTypeWorkOrderCreated, &production.WorkOrderCreatedEvent{})
	serializer.Register(production.EventTypeWorkOrderStatusChanged, &production.WorkOrderStatusChangedEvent{})

	// Takeoff domain events
	serializer.Register(takeoff.EventTypeDrawingUploaded, &takeoff.DrawingUploadedEvent{})
	serializer.Register(takeoff.EventTypeInstantJSONUpdated, &takeoff.InstantJSONUpdatedEvent{})
	serializer.Register(takeoff.EventTypeMeasurementCreated, &takeoff.MeasurementCreatedEvent{})
	serializer.Register(takeoff.EventTypeMeasurementUpdated, &takeoff.MeasurementUpdatedEvent{})
	serializer.Register(takeoff.EventTypeMeasurementDeleted, &takeoff.MeasurementDeletedEvent{})

	// Identity domain events
	serializer.Register(identity.EventTypeCompanyCreated, &identity.CompanyCreatedEvent{})
	serializer.Register(identity.EventTypeCompanyStatusChanged, &identity.CompanyStatusChangedEvent{})
	serializer.Register(identity.EventTypeUserCreated, &identity.UserCreatedEvent{})
	serializer.Register(identity.EventTypeUserStatusChanged, &identity.UserStatusChangedEvent{})
	serializer.Register(identity.EventTypeInvitationCreated, &identity.InvitationCreatedEvent{})
	serializer.Register(identity.EventTypeInvitationAccepted, &identity.InvitationAcceptedEvent{})
}
