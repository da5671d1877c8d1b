package shared

import (
	"cmp"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is what aggregates record and the outbox publishes.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	CompanyID() uuid.UUID
}

// VersionedEvent adds schema versioning for events whose payload shape has
// changed since they were first written to the outbox.
type VersionedEvent interface {
	DomainEvent
	// SchemaVersion is 1-based; events that never set one report 1.
	SchemaVersion() int
}

// BaseDomainEvent carries the envelope fields every event shares. Embed it
// and add payload fields on the concrete event type.
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	AggID          uuid.UUID `json:"aggregate_id"`
	AggType        string    `json:"aggregate_type"`
	CompanyIDValue uuid.UUID `json:"company_id"`

	Version int `json:"schema_version,omitempty"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID    { return e.ID }
func (e *BaseDomainEvent) EventType() string     { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }

func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string  { return e.AggType }
func (e *BaseDomainEvent) CompanyID() uuid.UUID   { return e.CompanyIDValue }

// SchemaVersion treats the zero value as version 1, so events stored before
// versioning existed deserialize correctly.
func (e *BaseDomainEvent) SchemaVersion() int {
	return cmp.Or(e.Version, 1)
}

// NewBaseDomainEvent stamps a fresh envelope at schema version 1.
func NewBaseDomainEvent(eventType, aggType string, aggID, companyID uuid.UUID) BaseDomainEvent {
	return NewVersionedBaseDomainEvent(eventType, aggType, aggID, companyID, 1)
}

// NewVersionedBaseDomainEvent stamps a fresh envelope at the given schema
// version; versions below 1 are clamped to 1.
func NewVersionedBaseDomainEvent(eventType, aggType string, aggID, companyID uuid.UUID, schemaVersion int) BaseDomainEvent {
	return BaseDomainEvent{
		ID:             uuid.New(),
		Type:           eventType,
		Timestamp:      time.Now(),
		AggID:          aggID,
		AggType:        aggType,
		CompanyIDValue: companyID,
		Version:        max(schemaVersion, 1),
	}
}
