package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/fabmate/backend/internal/domain/catalogue"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCatalogueItemRepository implements CatalogueItemRepository using GORM
type GormCatalogueItemRepository struct {
	db *gorm.DB
}

// NewGormCatalogueItemRepository creates a new GormCatalogueItemRepository
func NewGormCatalogueItemRepository(db *gorm.DB) *GormCatalogueItemRepository {
	return &GormCatalogueItemRepository{db: db}
}

// FindByID finds a catalogue item by its ID
func (r *GormCatalogueItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalogue.CatalogueItem, error) {
	var item catalogue.CatalogueItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByCatalogue lists items in a catalogue
func (r *GormCatalogueItemRepository) FindByCatalogue(ctx context.Context, catalogueID uuid.UUID, filter shared.Filter) ([]catalogue.CatalogueItem, error) {
	var items []catalogue.CatalogueItem
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&catalogue.CatalogueItem{}).
			Where("catalogue_id = ?", catalogueID),
		filter,
	)

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByItemCode finds an item by its code within a catalogue
func (r *GormCatalogueItemRepository) FindByItemCode(ctx context.Context, catalogueID uuid.UUID, itemCode string) (*catalogue.CatalogueItem, error) {
	var item catalogue.CatalogueItem
	if err := r.db.WithContext(ctx).
		Where("catalogue_id = ? AND item_code = ?", catalogueID, strings.ToUpper(itemCode)).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Save creates or updates a catalogue item
func (r *GormCatalogueItemRepository) Save(ctx context.Context, item *catalogue.CatalogueItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete deletes a catalogue item
func (r *GormCatalogueItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalogue.CatalogueItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByCatalogue counts items in a catalogue
func (r *GormCatalogueItemRepository) CountByCatalogue(ctx context.Context, catalogueID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&catalogue.CatalogueItem{}).Where("catalogue_id = ?", catalogueID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormCatalogueItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, CatalogueItemSortFields, "item_code")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("item_code ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCatalogueItemRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("item_code ILIKE ? OR description ILIKE ? OR material_grade ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "unit":
			query = query.Where("unit = ?", value)
		case "material_grade":
			query = query.Where("material_grade = ?", value)
		}
	}

	return query
}
