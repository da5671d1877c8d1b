package production

import (
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResourceType classifies a production resource
type ResourceType string

const (
	ResourceTypePerson  ResourceType = "PERSON"
	ResourceTypeMachine ResourceType = "MACHINE"
)

// IsValid checks if the type is a valid ResourceType
func (t ResourceType) IsValid() bool {
	return t == ResourceTypePerson || t == ResourceTypeMachine
}

// String returns the string representation of ResourceType
func (t ResourceType) String() string {
	return string(t)
}

// Resource represents a person or machine assignable to work orders
type Resource struct {
	shared.CompanyAggregateRoot
	Name       string
	Type       ResourceType
	HourlyRate decimal.Decimal
	IsActive   bool `gorm:"not null;default:true"`
}

// NewResource creates a new resource
func NewResource(companyID uuid.UUID, name string, resourceType ResourceType, hourlyRate decimal.Decimal) (*Resource, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Resource name cannot be empty")
	}
	if !resourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RESOURCE_TYPE",
			"Invalid resource type '"+resourceType.String()+"'. Allowed values: PERSON, MACHINE")
	}
	if hourlyRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Hourly rate cannot be negative")
	}

	return &Resource{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		Type:                 resourceType,
		HourlyRate:           hourlyRate,
		IsActive:             true,
	}, nil
}

// Update updates the mutable resource fields
func (r *Resource) Update(name string, hourlyRate decimal.Decimal) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Resource name cannot be empty")
	}
	if hourlyRate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Hourly rate cannot be negative")
	}

	r.Name = name
	r.HourlyRate = hourlyRate
	r.UpdatedAt = time.Now()
	return nil
}

// Deactivate marks the resource inactive
func (r *Resource) Deactivate() {
	r.IsActive = false
	r.UpdatedAt = time.Now()
}

// Activate marks the resource active
func (r *Resource) Activate() {
	r.IsActive = true
	r.UpdatedAt = time.Now()
}
