package persistence

import (
	"context"
	"errors"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/fabmate/backend/internal/domain/takeoff"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMeasurementRepository implements MeasurementRepository using GORM
type GormMeasurementRepository struct {
	db *gorm.DB
}

// NewGormMeasurementRepository creates a new GormMeasurementRepository
func NewGormMeasurementRepository(db *gorm.DB) *GormMeasurementRepository {
	return &GormMeasurementRepository{db: db}
}

// FindByIDForCompany finds a measurement by ID within a company
func (r *GormMeasurementRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*takeoff.TraceTakeoffMeasurement, error) {
	var measurement takeoff.TraceTakeoffMeasurement
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&measurement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &measurement, nil
}

// FindByAnnotationID finds the measurement linked to an annotation
func (r *GormMeasurementRepository) FindByAnnotationID(ctx context.Context, companyID, drawingID uuid.UUID, annotationID string) (*takeoff.TraceTakeoffMeasurement, error) {
	var measurement takeoff.TraceTakeoffMeasurement
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND drawing_id = ? AND annotation_id = ?", companyID, drawingID, annotationID).
		First(&measurement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &measurement, nil
}

// FindByDrawing lists measurements on a drawing
func (r *GormMeasurementRepository) FindByDrawing(ctx context.Context, companyID, drawingID uuid.UUID, filter shared.Filter) ([]takeoff.TraceTakeoffMeasurement, error) {
	var measurements []takeoff.TraceTakeoffMeasurement
	query := r.db.WithContext(ctx).Model(&takeoff.TraceTakeoffMeasurement{}).
		Where("company_id = ? AND drawing_id = ?", companyID, drawingID)

	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "catalogue_item_id":
			query = query.Where("catalogue_item_id = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Order("created_at ASC").Find(&measurements).Error; err != nil {
		return nil, err
	}
	return measurements, nil
}

// Save creates or updates a measurement
func (r *GormMeasurementRepository) Save(ctx context.Context, m *takeoff.TraceTakeoffMeasurement) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// DeleteForCompany deletes a measurement
func (r *GormMeasurementRepository) DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&takeoff.TraceTakeoffMeasurement{}, "company_id = ? AND id = ?", companyID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByDrawing counts measurements on a drawing
func (r *GormMeasurementRepository) CountByDrawing(ctx context.Context, companyID, drawingID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&takeoff.TraceTakeoffMeasurement{}).
		Where("company_id = ? AND drawing_id = ?", companyID, drawingID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
