package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/fabmate/backend/internal/domain/production"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWorkCenterRepository implements WorkCenterRepository using GORM
type GormWorkCenterRepository struct {
	db *gorm.DB
}

// NewGormWorkCenterRepository creates a new GormWorkCenterRepository
func NewGormWorkCenterRepository(db *gorm.DB) *GormWorkCenterRepository {
	return &GormWorkCenterRepository{db: db}
}

// FindByIDForCompany finds a work center by ID within a company
func (r *GormWorkCenterRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*production.WorkCenter, error) {
	var wc production.WorkCenter
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&wc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &wc, nil
}

// FindByCode finds a work center by its code within a company
func (r *GormWorkCenterRepository) FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*production.WorkCenter, error) {
	var wc production.WorkCenter
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND code = ?", companyID, strings.ToUpper(code)).
		First(&wc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &wc, nil
}

// FindAllForCompany finds all work centers for a company
func (r *GormWorkCenterRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]production.WorkCenter, error) {
	var centers []production.WorkCenter
	query := r.applyFilter(r.db.WithContext(ctx).Model(&production.WorkCenter{}).Where("company_id = ?", companyID), filter)

	if err := query.Find(&centers).Error; err != nil {
		return nil, err
	}
	return centers, nil
}

// Save creates or updates a work center
func (r *GormWorkCenterRepository) Save(ctx context.Context, wc *production.WorkCenter) error {
	return r.db.WithContext(ctx).Save(wc).Error
}

// DeleteForCompany deletes a work center within a company
func (r *GormWorkCenterRepository) DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&production.WorkCenter{}, "company_id = ? AND id = ?", companyID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForCompany counts work centers for a company
func (r *GormWorkCenterRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&production.WorkCenter{}).Where("company_id = ?", companyID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormWorkCenterRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, WorkCenterSortFields, "code")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("code ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormWorkCenterRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
