package takeoff

import (
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypePackageDrawing = "PackageDrawing"
	AggregateTypeMeasurement    = "TraceTakeoffMeasurement"
)

// Event type constants. The measurement hub forwards these to subscribed
// browser clients.
const (
	EventTypeDrawingUploaded    = "DrawingUploaded"
	EventTypeInstantJSONUpdated = "DrawingInstantJSONUpdated"
	EventTypeMeasurementCreated = "MeasurementCreated"
	EventTypeMeasurementUpdated = "MeasurementUpdated"
	EventTypeMeasurementDeleted = "MeasurementDeleted"
)

// DrawingUploadedEvent is raised when a PDF is registered against a work package
type DrawingUploadedEvent struct {
	shared.BaseDomainEvent
	DrawingID     uuid.UUID `json:"drawing_id"`
	WorkPackageID uuid.UUID `json:"work_package_id"`
	FileName      string    `json:"file_name"`
}

// NewDrawingUploadedEvent creates a new DrawingUploadedEvent
func NewDrawingUploadedEvent(d *PackageDrawing) *DrawingUploadedEvent {
	return &DrawingUploadedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDrawingUploaded, AggregateTypePackageDrawing, d.ID, d.CompanyID),
		DrawingID:       d.ID,
		WorkPackageID:   d.WorkPackageID,
		FileName:        d.FileName,
	}
}

// EventType returns the event type name
func (e *DrawingUploadedEvent) EventType() string {
	return EventTypeDrawingUploaded
}

// InstantJSONUpdatedEvent is raised when the annotation blob is replaced
type InstantJSONUpdatedEvent struct {
	shared.BaseDomainEvent
	DrawingID   uuid.UUID `json:"drawing_id"`
	SyncVersion int64     `json:"sync_version"`
}

// NewInstantJSONUpdatedEvent creates a new InstantJSONUpdatedEvent
func NewInstantJSONUpdatedEvent(d *PackageDrawing) *InstantJSONUpdatedEvent {
	return &InstantJSONUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstantJSONUpdated, AggregateTypePackageDrawing, d.ID, d.CompanyID),
		DrawingID:       d.ID,
		SyncVersion:     d.SyncVersion,
	}
}

// EventType returns the event type name
func (e *InstantJSONUpdatedEvent) EventType() string {
	return EventTypeInstantJSONUpdated
}

// MeasurementCreatedEvent is raised when a measurement is persisted
type MeasurementCreatedEvent struct {
	shared.BaseDomainEvent
	MeasurementID uuid.UUID `json:"measurement_id"`
	DrawingID     uuid.UUID `json:"drawing_id"`
	AnnotationID  string    `json:"annotation_id"`
}

// NewMeasurementCreatedEvent creates a new MeasurementCreatedEvent
func NewMeasurementCreatedEvent(m *TraceTakeoffMeasurement) *MeasurementCreatedEvent {
	return &MeasurementCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeasurementCreated, AggregateTypeMeasurement, m.ID, m.CompanyID),
		MeasurementID:   m.ID,
		DrawingID:       m.DrawingID,
		AnnotationID:    m.AnnotationID,
	}
}

// EventType returns the event type name
func (e *MeasurementCreatedEvent) EventType() string {
	return EventTypeMeasurementCreated
}

// MeasurementUpdatedEvent is raised when a measurement's values change
type MeasurementUpdatedEvent struct {
	shared.BaseDomainEvent
	MeasurementID uuid.UUID `json:"measurement_id"`
	DrawingID     uuid.UUID `json:"drawing_id"`
	AnnotationID  string    `json:"annotation_id"`
}

// NewMeasurementUpdatedEvent creates a new MeasurementUpdatedEvent
func NewMeasurementUpdatedEvent(m *TraceTakeoffMeasurement) *MeasurementUpdatedEvent {
	return &MeasurementUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeasurementUpdated, AggregateTypeMeasurement, m.ID, m.CompanyID),
		MeasurementID:   m.ID,
		DrawingID:       m.DrawingID,
		AnnotationID:    m.AnnotationID,
	}
}

// EventType returns the event type name
func (e *MeasurementUpdatedEvent) EventType() string {
	return EventTypeMeasurementUpdated
}

// MeasurementDeletedEvent is raised when an annotation delete cascades to
// its linked measurement
type MeasurementDeletedEvent struct {
	shared.BaseDomainEvent
	MeasurementID uuid.UUID `json:"measurement_id"`
	DrawingID     uuid.UUID `json:"drawing_id"`
	AnnotationID  string    `json:"annotation_id"`
}

// NewMeasurementDeletedEvent creates a new MeasurementDeletedEvent
func NewMeasurementDeletedEvent(m *TraceTakeoffMeasurement) *MeasurementDeletedEvent {
	return &MeasurementDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeasurementDeleted, AggregateTypeMeasurement, m.ID, m.CompanyID),
		MeasurementID:   m.ID,
		DrawingID:       m.DrawingID,
		AnnotationID:    m.AnnotationID,
	}
}

// EventType returns the event type name
func (e *MeasurementDeletedEvent) EventType() string {
	return EventTypeMeasurementDeleted
}
