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

// GormSurfaceCoatingRepository implements SurfaceCoatingRepository using GORM
type GormSurfaceCoatingRepository struct {
	db *gorm.DB
}

// NewGormSurfaceCoatingRepository creates a new GormSurfaceCoatingRepository
func NewGormSurfaceCoatingRepository(db *gorm.DB) *GormSurfaceCoatingRepository {
	return &GormSurfaceCoatingRepository{db: db}
}

// FindByIDForCompany finds a surface coating by ID within a company
func (r *GormSurfaceCoatingRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*catalogue.SurfaceCoating, error) {
	var coating catalogue.SurfaceCoating
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&coating).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &coating, nil
}

// FindByCode finds a surface coating by its code within a company
func (r *GormSurfaceCoatingRepository) FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*catalogue.SurfaceCoating, error) {
	var coating catalogue.SurfaceCoating
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND code = ?", companyID, strings.ToUpper(code)).
		First(&coating).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &coating, nil
}

// FindAllForCompany finds all surface coatings for a company
func (r *GormSurfaceCoatingRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]catalogue.SurfaceCoating, error) {
	var coatings []catalogue.SurfaceCoating
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalogue.SurfaceCoating{}).Where("company_id = ?", companyID), filter)

	if err := query.Find(&coatings).Error; err != nil {
		return nil, err
	}
	return coatings, nil
}

// Save creates or updates a surface coating
func (r *GormSurfaceCoatingRepository) Save(ctx context.Context, s *catalogue.SurfaceCoating) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// DeleteForCompany deletes a surface coating within a company
func (r *GormSurfaceCoatingRepository) DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalogue.SurfaceCoating{}, "company_id = ? AND id = ?", companyID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForCompany counts surface coatings for a company
func (r *GormSurfaceCoatingRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&catalogue.SurfaceCoating{}).Where("company_id = ?", companyID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormSurfaceCoatingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, SurfaceCoatingSortFields, "code")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("code ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormSurfaceCoatingRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}

	return query
}
