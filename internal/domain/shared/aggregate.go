package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is an entity that owns a consistency boundary: it versions
// itself for optimistic locking and buffers domain events until a repository
// saves it.
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot implements the event buffer and version counter.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

func (a *BaseAggregateRoot) GetVersion() int    { return a.Version }
func (a *BaseAggregateRoot) IncrementVersion()  { a.Version++ }
func (a *BaseAggregateRoot) ClearDomainEvents() { a.domainEvents = nil }

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// CompanyAggregateRoot is the base for every company-owned aggregate.
// Queries over these tables must filter on CompanyID; CreatedBy feeds the
// per-user data scope checks.
type CompanyAggregateRoot struct {
	BaseAggregateRoot
	CompanyID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

func NewCompanyAggregateRoot(companyID uuid.UUID) CompanyAggregateRoot {
	return CompanyAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		CompanyID:         companyID,
	}
}

func NewCompanyAggregateRootWithCreator(companyID, createdBy uuid.UUID) CompanyAggregateRoot {
	root := NewCompanyAggregateRoot(companyID)
	root.CreatedBy = &createdBy
	return root
}

func (c *CompanyAggregateRoot) SetCreatedBy(userID uuid.UUID) { c.CreatedBy = &userID }

func (c *CompanyAggregateRoot) GetCreatedBy() *uuid.UUID { return c.CreatedBy }
