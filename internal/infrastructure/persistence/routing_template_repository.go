package persistence

import (
	"context"
	"errors"

	"github.com/fabmate/backend/internal/domain/production"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRoutingTemplateRepository implements RoutingTemplateRepository using GORM
type GormRoutingTemplateRepository struct {
	db *gorm.DB
}

// NewGormRoutingTemplateRepository creates a new GormRoutingTemplateRepository
func NewGormRoutingTemplateRepository(db *gorm.DB) *GormRoutingTemplateRepository {
	return &GormRoutingTemplateRepository{db: db}
}

// FindByIDForCompany finds a routing template with its lines within a company
func (r *GormRoutingTemplateRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*production.RoutingTemplate, error) {
	var template production.RoutingTemplate
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_number ASC")
		}).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// FindAllForCompany finds all routing templates for a company
func (r *GormRoutingTemplateRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]production.RoutingTemplate, error) {
	var templates []production.RoutingTemplate
	query := r.applyFilter(r.db.WithContext(ctx).Model(&production.RoutingTemplate{}).Where("company_id = ?", companyID), filter)

	if err := query.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_number ASC")
	}).Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Save creates or updates a routing template and its lines
func (r *GormRoutingTemplateRepository) Save(ctx context.Context, template *production.RoutingTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(template).Error; err != nil {
			return err
		}

		currentLineIDs := make([]uuid.UUID, len(template.Lines))
		for i, line := range template.Lines {
			currentLineIDs[i] = line.ID
		}

		if len(currentLineIDs) > 0 {
			if err := tx.Where("template_id = ? AND id NOT IN ?", template.ID, currentLineIDs).
				Delete(&production.RoutingTemplateLine{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("template_id = ?", template.ID).
				Delete(&production.RoutingTemplateLine{}).Error; err != nil {
				return err
			}
		}

		for i := range template.Lines {
			template.Lines[i].TemplateID = template.ID
			if err := tx.Save(&template.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteForCompany deletes a routing template and its lines
func (r *GormRoutingTemplateRepository) DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).
			Delete(&production.RoutingTemplateLine{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&production.RoutingTemplate{}, "company_id = ? AND id = ?", companyID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForCompany counts routing templates for a company
func (r *GormRoutingTemplateRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&production.RoutingTemplate{}).Where("company_id = ?", companyID)
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormRoutingTemplateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "name")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("name ASC")
	}

	return query
}
