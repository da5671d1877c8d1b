package catalogue

import (
	"context"
	"errors"

	"github.com/fabmate/backend/internal/domain/catalogue"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CatalogueService handles catalogue and catalogue item operations.
// System catalogues are visible to every company but never writable
// through this service.
type CatalogueService struct {
	catalogueRepo catalogue.CatalogueRepository
	itemRepo      catalogue.CatalogueItemRepository
}

// NewCatalogueService creates a new CatalogueService
func NewCatalogueService(catalogueRepo catalogue.CatalogueRepository, itemRepo catalogue.CatalogueItemRepository) *CatalogueService {
	return &CatalogueService{
		catalogueRepo: catalogueRepo,
		itemRepo:      itemRepo,
	}
}

// Create creates a company-owned custom catalogue
func (s *CatalogueService) Create(ctx context.Context, companyID uuid.UUID, req CreateCatalogueRequest, createdBy *uuid.UUID) (*CatalogueResponse, error) {
	c, err := catalogue.NewCustomCatalogue(companyID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	c.CreatedBy = createdBy

	if err := s.catalogueRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToCatalogueResponse(c)
	return &response, nil
}

// GetByID retrieves a catalogue visible to the company
func (s *CatalogueService) GetByID(ctx context.Context, companyID, catalogueID uuid.UUID) (*CatalogueResponse, error) {
	c, err := s.catalogueRepo.FindByIDVisibleTo(ctx, companyID, catalogueID)
	if err != nil {
		return nil, err
	}
	response := ToCatalogueResponse(c)
	return &response, nil
}

// List retrieves system catalogues plus the company's own
func (s *CatalogueService) List(ctx context.Context, companyID uuid.UUID, page, pageSize int, search string) ([]CatalogueResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   search,
	}

	catalogues, err := s.catalogueRepo.FindAllVisibleTo(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.catalogueRepo.CountVisibleTo(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CatalogueResponse, len(catalogues))
	for i := range catalogues {
		responses[i] = ToCatalogueResponse(&catalogues[i])
	}
	return responses, total, nil
}

// Update renames a company-owned catalogue
func (s *CatalogueService) Update(ctx context.Context, companyID, catalogueID uuid.UUID, req UpdateCatalogueRequest) (*CatalogueResponse, error) {
	c, err := s.catalogueRepo.FindByIDVisibleTo(ctx, companyID, catalogueID)
	if err != nil {
		return nil, err
	}

	name := c.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := c.Description
	if req.Description != nil {
		description = *req.Description
	}

	if err := c.Rename(companyID, name, description); err != nil {
		return nil, err
	}

	if err := s.catalogueRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToCatalogueResponse(c)
	return &response, nil
}

// Delete deletes a company-owned catalogue and its items
func (s *CatalogueService) Delete(ctx context.Context, companyID, catalogueID uuid.UUID) error {
	c, err := s.catalogueRepo.FindByIDVisibleTo(ctx, companyID, catalogueID)
	if err != nil {
		return err
	}

	if err := c.EnsureMutableBy(companyID); err != nil {
		return err
	}

	return s.catalogueRepo.DeleteCustom(ctx, companyID, catalogueID)
}

// CreateItem adds an item to a company-owned catalogue
func (s *CatalogueService) CreateItem(ctx context.Context, companyID, catalogueID uuid.UUID, req CreateCatalogueItemRequest) (*CatalogueItemResponse, error) {
	c, err := s.catalogueRepo.FindByIDVisibleTo(ctx, companyID, catalogueID)
	if err != nil {
		return nil, err
	}
	if err := c.EnsureMutableBy(companyID); err != nil {
		return nil, err
	}

	existing, err := s.itemRepo.FindByItemCode(ctx, catalogueID, req.ItemCode)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_ITEM_CODE", "An item with this code already exists in the catalogue")
	}

	item, err := catalogue.NewCatalogueItem(catalogueID, req.ItemCode, req.Description,
		catalogue.Unit(req.Unit), req.UnitWeightKg, req.UnitCost)
	if err != nil {
		return nil, err
	}

	if req.MaterialGrade != "" {
		item.MaterialGrade = req.MaterialGrade
	}
	if req.LengthMM != nil || req.WidthMM != nil || req.ThicknessMM != nil {
		length := item.LengthMM
		if req.LengthMM != nil {
			length = *req.LengthMM
		}
		width := item.WidthMM
		if req.WidthMM != nil {
			width = *req.WidthMM
		}
		thickness := item.ThicknessMM
		if req.ThicknessMM != nil {
			thickness = *req.ThicknessMM
		}
		if err := item.SetDimensions(length, width, thickness); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToCatalogueItemResponse(item)
	return &response, nil
}

// GetItem retrieves a catalogue item when its catalogue is visible to the company
func (s *CatalogueService) GetItem(ctx context.Context, companyID, itemID uuid.UUID) (*CatalogueItemResponse, error) {
	item, err := s.findVisibleItem(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}
	response := ToCatalogueItemResponse(item)
	return &response, nil
}

// ListItems lists items in a catalogue visible to the company
func (s *CatalogueService) ListItems(ctx context.Context, companyID, catalogueID uuid.UUID, page, pageSize int, search string) ([]CatalogueItemResponse, int64, error) {
	if _, err := s.catalogueRepo.FindByIDVisibleTo(ctx, companyID, catalogueID); err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "item_code",
		OrderDir: "asc",
		Search:   search,
	}

	items, err := s.itemRepo.FindByCatalogue(ctx, catalogueID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.itemRepo.CountByCatalogue(ctx, catalogueID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CatalogueItemResponse, len(items))
	for i := range items {
		responses[i] = ToCatalogueItemResponse(&items[i])
	}
	return responses, total, nil
}

// UpdateItem updates an item in a company-owned catalogue
func (s *CatalogueService) UpdateItem(ctx context.Context, companyID, itemID uuid.UUID, req UpdateCatalogueItemRequest) (*CatalogueItemResponse, error) {
	item, err := s.findVisibleItem(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}

	c, err := s.catalogueRepo.FindByIDVisibleTo(ctx, companyID, item.CatalogueID)
	if err != nil {
		return nil, err
	}
	if err := c.EnsureMutableBy(companyID); err != nil {
		return nil, err
	}

	description := item.Description
	if req.Description != nil {
		description = *req.Description
	}
	materialGrade := item.MaterialGrade
	if req.MaterialGrade != nil {
		materialGrade = *req.MaterialGrade
	}
	unit := item.Unit
	if req.Unit != nil {
		unit = catalogue.Unit(*req.Unit)
	}
	unitWeightKg := item.UnitWeightKg
	if req.UnitWeightKg != nil {
		unitWeightKg = *req.UnitWeightKg
	}
	unitCost := item.UnitCost
	if req.UnitCost != nil {
		unitCost = *req.UnitCost
	}

	if err := item.Update(description, materialGrade, unit, unitWeightKg, unitCost); err != nil {
		return nil, err
	}

	if req.LengthMM != nil || req.WidthMM != nil || req.ThicknessMM != nil {
		length := item.LengthMM
		if req.LengthMM != nil {
			length = *req.LengthMM
		}
		width := item.WidthMM
		if req.WidthMM != nil {
			width = *req.WidthMM
		}
		thickness := item.ThicknessMM
		if req.ThicknessMM != nil {
			thickness = *req.ThicknessMM
		}
		if err := item.SetDimensions(length, width, thickness); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToCatalogueItemResponse(item)
	return &response, nil
}

// DeleteItem removes an item from a company-owned catalogue
func (s *CatalogueService) DeleteItem(ctx context.Context, companyID, itemID uuid.UUID) error {
	item, err := s.findVisibleItem(ctx, companyID, itemID)
	if err != nil {
		return err
	}

	c, err := s.catalogueRepo.FindByIDVisibleTo(ctx, companyID, item.CatalogueID)
	if err != nil {
		return err
	}
	if err := c.EnsureMutableBy(companyID); err != nil {
		return err
	}

	return s.itemRepo.Delete(ctx, itemID)
}

// findVisibleItem loads an item and verifies its catalogue is visible
// to the company
func (s *CatalogueService) findVisibleItem(ctx context.Context, companyID, itemID uuid.UUID) (*catalogue.CatalogueItem, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalogueRepo.FindByIDVisibleTo(ctx, companyID, item.CatalogueID); err != nil {
		return nil, err
	}
	return item, nil
}
