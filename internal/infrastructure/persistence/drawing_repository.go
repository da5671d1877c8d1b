package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/fabmate/backend/internal/domain/takeoff"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDrawingRepository implements DrawingRepository using GORM
type GormDrawingRepository struct {
	db *gorm.DB
}

// NewGormDrawingRepository creates a new GormDrawingRepository
func NewGormDrawingRepository(db *gorm.DB) *GormDrawingRepository {
	return &GormDrawingRepository{db: db}
}

// FindByIDForCompany finds a drawing by ID within a company
func (r *GormDrawingRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*takeoff.PackageDrawing, error) {
	var drawing takeoff.PackageDrawing
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&drawing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &drawing, nil
}

// FindByWorkPackage lists drawings under a work package
func (r *GormDrawingRepository) FindByWorkPackage(ctx context.Context, companyID, workPackageID uuid.UUID, filter shared.Filter) ([]takeoff.PackageDrawing, error) {
	var drawings []takeoff.PackageDrawing
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&takeoff.PackageDrawing{}).
			Where("company_id = ? AND work_package_id = ?", companyID, workPackageID),
		filter,
	)

	if err := query.Find(&drawings).Error; err != nil {
		return nil, err
	}
	return drawings, nil
}

// Save creates or updates a drawing
func (r *GormDrawingRepository) Save(ctx context.Context, d *takeoff.PackageDrawing) error {
	return r.db.WithContext(ctx).Save(d).Error
}

// ReplaceInstantJSON swaps the annotation blob when the stored sync_version
// still equals baseVersion. On a lost race it returns the current stored
// version together with shared.ErrConcurrencyConflict so the caller can
// resync.
func (r *GormDrawingRepository) ReplaceInstantJSON(ctx context.Context, companyID, id uuid.UUID, blob string, baseVersion int64) (int64, error) {
	newVersion := baseVersion + 1

	result := r.db.WithContext(ctx).
		Model(&takeoff.PackageDrawing{}).
		Where("company_id = ? AND id = ? AND sync_version = ?", companyID, id, baseVersion).
		Updates(map[string]interface{}{
			"instant_json": blob,
			"sync_version": newVersion,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		return newVersion, nil
	}

	// No row matched: the drawing is gone or the version moved on
	var current struct {
		SyncVersion int64
	}
	err := r.db.WithContext(ctx).
		Model(&takeoff.PackageDrawing{}).
		Where("company_id = ? AND id = ?", companyID, id).
		Select("sync_version").
		Take(&current).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}

	return current.SyncVersion, shared.ErrConcurrencyConflict
}

// DeleteForCompany deletes a drawing together with its annotations and
// measurements
func (r *GormDrawingRepository) DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ? AND drawing_id = ?", companyID, id).
			Delete(&takeoff.TraceTakeoffMeasurement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("company_id = ? AND drawing_id = ?", companyID, id).
			Delete(&takeoff.DrawingAnnotation{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&takeoff.PackageDrawing{}, "company_id = ? AND id = ?", companyID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForCompany counts drawings for a company
func (r *GormDrawingRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&takeoff.PackageDrawing{}).Where("company_id = ?", companyID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormDrawingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, DrawingSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("file_name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormDrawingRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("file_name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "work_package_id":
			query = query.Where("work_package_id = ?", value)
		}
	}

	return query
}
