package catalogue

import (
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Catalogue is a material/pricing list. System catalogues are shared
// read-only reference data (CompanyID is nil); custom catalogues belong to
// one company and are mutable by it.
type Catalogue struct {
	shared.BaseAggregateRoot
	CompanyID   *uuid.UUID `gorm:"type:uuid;index"`
	Name        string
	Description string
	IsSystem    bool `gorm:"not null;default:false"`
	CreatedBy   *uuid.UUID
}

// NewCustomCatalogue creates a company-owned mutable catalogue
func NewCustomCatalogue(companyID uuid.UUID, name, description string) (*Catalogue, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Catalogue name cannot be empty")
	}

	return &Catalogue{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyID:         &companyID,
		Name:              name,
		Description:       description,
		IsSystem:          false,
	}, nil
}

// NewSystemCatalogue creates a shared read-only catalogue.
// Only seed/admin tooling calls this; company APIs never do.
func NewSystemCatalogue(name, description string) (*Catalogue, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Catalogue name cannot be empty")
	}

	return &Catalogue{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		IsSystem:          true,
	}, nil
}

// EnsureMutableBy rejects mutation of system catalogues and of catalogues
// owned by a different company.
func (c *Catalogue) EnsureMutableBy(companyID uuid.UUID) error {
	if c.IsSystem {
		return shared.ErrSystemReadOnly
	}
	if c.CompanyID == nil || *c.CompanyID != companyID {
		return shared.ErrNotFound
	}
	return nil
}

// VisibleTo reports whether the catalogue is visible to the company:
// system catalogues are visible to everyone, custom ones to their owner.
func (c *Catalogue) VisibleTo(companyID uuid.UUID) bool {
	if c.IsSystem {
		return true
	}
	return c.CompanyID != nil && *c.CompanyID == companyID
}

// Rename updates the catalogue name and description
func (c *Catalogue) Rename(companyID uuid.UUID, name, description string) error {
	if err := c.EnsureMutableBy(companyID); err != nil {
		return err
	}
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Catalogue name cannot be empty")
	}

	c.Name = name
	c.Description = description
	c.UpdatedAt = time.Now()
	return nil
}
