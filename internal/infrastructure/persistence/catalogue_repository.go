package persistence

import (
	"context"
	"errors"

	"github.com/fabmate/backend/internal/domain/catalogue"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCatalogueRepository implements CatalogueRepository using GORM.
// System catalogues (is_system = true, company_id NULL) are visible to every
// company; custom catalogues only to their owner.
type GormCatalogueRepository struct {
	db *gorm.DB
}

// NewGormCatalogueRepository creates a new GormCatalogueRepository
func NewGormCatalogueRepository(db *gorm.DB) *GormCatalogueRepository {
	return &GormCatalogueRepository{db: db}
}

// FindByIDVisibleTo finds a catalogue by ID when the company can see it
func (r *GormCatalogueRepository) FindByIDVisibleTo(ctx context.Context, companyID, id uuid.UUID) (*catalogue.Catalogue, error) {
	var c catalogue.Catalogue
	if err := r.db.WithContext(ctx).
		Where("id = ? AND (is_system = ? OR company_id = ?)", id, true, companyID).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAllVisibleTo lists system catalogues plus the company's own
func (r *GormCatalogueRepository) FindAllVisibleTo(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]catalogue.Catalogue, error) {
	var catalogues []catalogue.Catalogue
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&catalogue.Catalogue{}).
			Where("is_system = ? OR company_id = ?", true, companyID),
		filter,
	)

	if err := query.Find(&catalogues).Error; err != nil {
		return nil, err
	}
	return catalogues, nil
}

// Save creates or updates a catalogue
func (r *GormCatalogueRepository) Save(ctx context.Context, c *catalogue.Catalogue) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// DeleteCustom deletes a company-owned catalogue and everything in it.
// The is_system guard keeps a bug above this layer from touching shared data.
func (r *GormCatalogueRepository) DeleteCustom(ctx context.Context, companyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("catalogue_id = ?", id).
			Delete(&catalogue.CatalogueItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&catalogue.Catalogue{},
			"id = ? AND company_id = ? AND is_system = ?", id, companyID, false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountVisibleTo counts catalogues visible to the company
func (r *GormCatalogueRepository) CountVisibleTo(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&catalogue.Catalogue{}).
		Where("is_system = ? OR company_id = ?", true, companyID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormCatalogueRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, CatalogueSortFields, "name")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		// System catalogues first, then alphabetical
		query = query.Order("is_system DESC, name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCatalogueRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_system":
			query = query.Where("is_system = ?", value)
		}
	}

	return query
}
