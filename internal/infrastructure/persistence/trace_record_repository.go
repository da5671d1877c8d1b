package persistence

import (
	"context"
	"errors"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/fabmate/backend/internal/domain/trace"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTraceRecordRepository implements TraceRecordRepository using GORM
type GormTraceRecordRepository struct {
	db *gorm.DB
}

// NewGormTraceRecordRepository creates a new GormTraceRecordRepository
func NewGormTraceRecordRepository(db *gorm.DB) *GormTraceRecordRepository {
	return &GormTraceRecordRepository{db: db}
}

// FindByIDForCompany finds a trace record by ID within a company
func (r *GormTraceRecordRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*trace.TraceRecord, error) {
	var record trace.TraceRecord
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByReference finds records anchored to an entity
func (r *GormTraceRecordRepository) FindByReference(ctx context.Context, companyID uuid.UUID, referenceType string, referenceID uuid.UUID) ([]trace.TraceRecord, error) {
	var records []trace.TraceRecord
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND reference_type = ? AND reference_id = ?", companyID, referenceType, referenceID).
		Order("recorded_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindChildren lists direct children of a record
func (r *GormTraceRecordRepository) FindChildren(ctx context.Context, companyID, parentID uuid.UUID) ([]trace.TraceRecord, error) {
	var records []trace.TraceRecord
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND parent_id = ?", companyID, parentID).
		Order("recorded_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindAllForCompany lists records for a company
func (r *GormTraceRecordRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]trace.TraceRecord, error) {
	var records []trace.TraceRecord
	query := r.applyFilter(r.db.WithContext(ctx).Model(&trace.TraceRecord{}).Where("company_id = ?", companyID), filter)

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a trace record
func (r *GormTraceRecordRepository) Save(ctx context.Context, record *trace.TraceRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// DeleteForCompany deletes a trace record
func (r *GormTraceRecordRepository) DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&trace.TraceRecord{}, "company_id = ? AND id = ?", companyID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForCompany counts records for a company
func (r *GormTraceRecordRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&trace.TraceRecord{}).Where("company_id = ?", companyID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormTraceRecordRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, TraceRecordSortFields, "recorded_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("recorded_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTraceRecordRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("description ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "record_type":
			query = query.Where("record_type = ?", value)
		case "reference_type":
			query = query.Where("reference_type = ?", value)
		case "reference_id":
			query = query.Where("reference_id = ?", value)
		case "parent_id":
			query = query.Where("parent_id = ?", value)
		}
	}

	return query
}
