package production

import (
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkCenter represents a shop-floor station where operations run
type WorkCenter struct {
	shared.CompanyAggregateRoot
	Code       string
	Name       string
	HourlyRate decimal.Decimal
	Capacity   int
	IsActive   bool `gorm:"not null;default:true"`
}

// NewWorkCenter creates a new work center
func NewWorkCenter(companyID uuid.UUID, code, name string, hourlyRate decimal.Decimal, capacity int) (*WorkCenter, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Work center code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Work center name cannot be empty")
	}
	if hourlyRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Hourly rate cannot be negative")
	}
	if capacity <= 0 {
		return nil, shared.NewDomainError("INVALID_CAPACITY", "Capacity must be positive")
	}

	return &WorkCenter{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Code:                 code,
		Name:                 name,
		HourlyRate:           hourlyRate,
		Capacity:             capacity,
		IsActive:             true,
	}, nil
}

// Update updates the mutable work center fields
func (w *WorkCenter) Update(name string, hourlyRate decimal.Decimal, capacity int) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Work center name cannot be empty")
	}
	if hourlyRate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Hourly rate cannot be negative")
	}
	if capacity <= 0 {
		return shared.NewDomainError("INVALID_CAPACITY", "Capacity must be positive")
	}

	w.Name = name
	w.HourlyRate = hourlyRate
	w.Capacity = capacity
	w.UpdatedAt = time.Now()
	return nil
}

// Deactivate marks the work center inactive without deleting it
func (w *WorkCenter) Deactivate() {
	w.IsActive = false
	w.UpdatedAt = time.Now()
}

// Activate marks the work center active
func (w *WorkCenter) Activate() {
	w.IsActive = true
	w.UpdatedAt = time.Now()
}
