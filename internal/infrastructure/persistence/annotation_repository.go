package persistence

import (
	"context"
	"errors"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/fabmate/backend/internal/domain/takeoff"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAnnotationRepository implements AnnotationRepository using GORM
type GormAnnotationRepository struct {
	db *gorm.DB
}

// NewGormAnnotationRepository creates a new GormAnnotationRepository
func NewGormAnnotationRepository(db *gorm.DB) *GormAnnotationRepository {
	return &GormAnnotationRepository{db: db}
}

// FindByAnnotationID finds an annotation by its SDK identifier on a drawing
func (r *GormAnnotationRepository) FindByAnnotationID(ctx context.Context, companyID, drawingID uuid.UUID, annotationID string) (*takeoff.DrawingAnnotation, error) {
	var annotation takeoff.DrawingAnnotation
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND drawing_id = ? AND annotation_id = ?", companyID, drawingID, annotationID).
		First(&annotation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &annotation, nil
}

// FindByDrawing lists annotations on a drawing ordered by page then creation
func (r *GormAnnotationRepository) FindByDrawing(ctx context.Context, companyID, drawingID uuid.UUID) ([]takeoff.DrawingAnnotation, error) {
	var annotations []takeoff.DrawingAnnotation
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND drawing_id = ?", companyID, drawingID).
		Order("page_index ASC, created_at ASC").
		Find(&annotations).Error; err != nil {
		return nil, err
	}
	return annotations, nil
}

// Save creates or updates an annotation
func (r *GormAnnotationRepository) Save(ctx context.Context, a *takeoff.DrawingAnnotation) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// DeleteWithMeasurement deletes the annotation and any measurement linked to
// it in one transaction. Reports whether a measurement was removed.
func (r *GormAnnotationRepository) DeleteWithMeasurement(ctx context.Context, companyID, drawingID uuid.UUID, annotationID string) (bool, error) {
	var measurementRemoved bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("company_id = ? AND drawing_id = ? AND annotation_id = ?", companyID, drawingID, annotationID).
			Delete(&takeoff.TraceTakeoffMeasurement{})
		if result.Error != nil {
			return result.Error
		}
		measurementRemoved = result.RowsAffected > 0

		result = tx.Where("company_id = ? AND drawing_id = ? AND annotation_id = ?", companyID, drawingID, annotationID).
			Delete(&takeoff.DrawingAnnotation{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return measurementRemoved, nil
}

// CountByDrawing counts annotations on a drawing
func (r *GormAnnotationRepository) CountByDrawing(ctx context.Context, companyID, drawingID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&takeoff.DrawingAnnotation{}).
		Where("company_id = ? AND drawing_id = ?", companyID, drawingID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
