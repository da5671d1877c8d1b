package catalogue

import (
	"context"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CatalogueRepository defines the interface for catalogue persistence.
// Visibility is wider than plain company scoping: system catalogues are
// readable by every company but writable by none.
type CatalogueRepository interface {
	// FindByIDVisibleTo finds a catalogue by ID when it is a system
	// catalogue or owned by the company
	FindByIDVisibleTo(ctx context.Context, companyID, id uuid.UUID) (*Catalogue, error)

	// FindAllVisibleTo lists system catalogues plus the company's own
	FindAllVisibleTo(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Catalogue, error)

	// Save creates or updates a catalogue
	Save(ctx context.Context, c *Catalogue) error

	// DeleteCustom deletes a company-owned catalogue; system catalogues
	// are rejected at the domain layer before this is reached
	DeleteCustom(ctx context.Context, companyID, id uuid.UUID) error

	// CountVisibleTo counts catalogues visible to the company
	CountVisibleTo(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
}

// CatalogueItemRepository defines the interface for catalogue item persistence
type CatalogueItemRepository interface {
	// FindByID finds a catalogue item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CatalogueItem, error)

	// FindByCatalogue lists items in a catalogue
	FindByCatalogue(ctx context.Context, catalogueID uuid.UUID, filter shared.Filter) ([]CatalogueItem, error)

	// FindByItemCode finds an item by its code within a catalogue
	FindByItemCode(ctx context.Context, catalogueID uuid.UUID, itemCode string) (*CatalogueItem, error)

	// Save creates or updates a catalogue item
	Save(ctx context.Context, item *CatalogueItem) error

	// Delete deletes a catalogue item
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByCatalogue counts items in a catalogue
	CountByCatalogue(ctx context.Context, catalogueID uuid.UUID, filter shared.Filter) (int64, error)
}

// SurfaceCoatingRepository defines the interface for surface coating persistence
type SurfaceCoatingRepository interface {
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*SurfaceCoating, error)
	FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*SurfaceCoating, error)
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]SurfaceCoating, error)
	Save(ctx context.Context, s *SurfaceCoating) error
	DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
}
