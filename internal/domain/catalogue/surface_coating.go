package catalogue

import (
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SurfaceCoating is a coating definition applied to fabricated parts,
// costed per square metre of treated surface.
type SurfaceCoating struct {
	shared.CompanyAggregateRoot
	Code               string
	Name               string
	CostPerSquareMetre decimal.Decimal
	IsActive           bool `gorm:"not null;default:true"`
}

// NewSurfaceCoating creates a new surface coating
func NewSurfaceCoating(companyID uuid.UUID, code, name string, costPerSquareMetre decimal.Decimal) (*SurfaceCoating, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Coating code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Coating name cannot be empty")
	}
	if costPerSquareMetre.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Coating cost cannot be negative")
	}

	return &SurfaceCoating{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Code:                 code,
		Name:                 name,
		CostPerSquareMetre:   costPerSquareMetre,
		IsActive:             true,
	}, nil
}

// Update updates the mutable coating fields
func (s *SurfaceCoating) Update(name string, costPerSquareMetre decimal.Decimal) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Coating name cannot be empty")
	}
	if costPerSquareMetre.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Coating cost cannot be negative")
	}

	s.Name = name
	s.CostPerSquareMetre = costPerSquareMetre
	s.UpdatedAt = time.Now()
	return nil
}

// Deactivate marks the coating inactive
func (s *SurfaceCoating) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
}
