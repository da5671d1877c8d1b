package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fabmate/backend/internal/domain/production"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWorkPackageRepository implements WorkPackageRepository using GORM
type GormWorkPackageRepository struct {
	db *gorm.DB
}

// NewGormWorkPackageRepository creates a new GormWorkPackageRepository
func NewGormWorkPackageRepository(db *gorm.DB) *GormWorkPackageRepository {
	return &GormWorkPackageRepository{db: db}
}

// FindByIDForCompany finds a work package by ID within a company
func (r *GormWorkPackageRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*production.WorkPackage, error) {
	var wp production.WorkPackage
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&wp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &wp, nil
}

// FindByOrder finds all work packages under an order
func (r *GormWorkPackageRepository) FindByOrder(ctx context.Context, companyID, orderID uuid.UUID, filter shared.Filter) ([]production.WorkPackage, error) {
	var packages []production.WorkPackage
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&production.WorkPackage{}).
			Where("company_id = ? AND order_id = ?", companyID, orderID),
		filter,
	)

	if err := query.Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}

// FindAllForCompany finds all work packages for a company
func (r *GormWorkPackageRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]production.WorkPackage, error) {
	var packages []production.WorkPackage
	query := r.applyFilter(r.db.WithContext(ctx).Model(&production.WorkPackage{}).Where("company_id = ?", companyID), filter)

	if err := query.Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}

// Save creates or updates a work package
func (r *GormWorkPackageRepository) Save(ctx context.Context, wp *production.WorkPackage) error {
	return r.db.WithContext(ctx).Save(wp).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormWorkPackageRepository) SaveWithLock(ctx context.Context, wp *production.WorkPackage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&production.WorkPackage{}).
			Where("id = ?", wp.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != wp.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The work package has been modified by another user")
		}

		wp.Version++
		wp.UpdatedAt = time.Now()

		result := tx.Model(&production.WorkPackage{}).
			Where("id = ? AND version = ?", wp.ID, currentVersion).
			Updates(map[string]interface{}{
				"name":            wp.Name,
				"description":     wp.Description,
				"status":          wp.Status,
				"priority":        wp.Priority,
				"planned_start":   wp.PlannedStart,
				"planned_end":     wp.PlannedEnd,
				"estimated_hours": wp.EstimatedHours,
				"estimated_cost":  wp.EstimatedCost,
				"actual_hours":    wp.ActualHours,
				"actual_cost":     wp.ActualCost,
				"version":         wp.Version,
				"updated_at":      wp.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The work package has been modified by another user")
		}
		return nil
	})
}

// SoftDeleteWithCascade soft-deletes the work package and persists the
// cancellation of its work orders in one transaction
func (r *GormWorkPackageRepository) SoftDeleteWithCascade(ctx context.Context, wp *production.WorkPackage, workOrders []production.WorkOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range workOrders {
			wo := &workOrders[i]
			result := tx.Model(&production.WorkOrder{}).
				Where("id = ?", wo.ID).
				Updates(map[string]interface{}{
					"status":        wo.Status,
					"cancelled_at":  wo.CancelledAt,
					"cancel_reason": wo.CancelReason,
					"updated_at":    time.Now(),
				})
			if result.Error != nil {
				return result.Error
			}
		}

		result := tx.Model(&production.WorkPackage{}).
			Where("company_id = ? AND id = ?", wp.CompanyID, wp.ID).
			Updates(map[string]interface{}{
				"status":     wp.Status,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		return tx.Delete(&production.WorkPackage{}, "id = ?", wp.ID).Error
	})
}

// CountForCompany counts work packages for a company
func (r *GormWorkPackageRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&production.WorkPackage{}).Where("company_id = ?", companyID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByPackageNumber checks if a package number exists within a company
func (r *GormWorkPackageRepository) ExistsByPackageNumber(ctx context.Context, companyID uuid.UUID, packageNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&production.WorkPackage{}).
		Where("company_id = ? AND package_number = ?", companyID, packageNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GeneratePackageNumber generates a unique package number for a company.
// Format: WP-YYYY-NNNNN (e.g., WP-2026-00001)
func (r *GormWorkPackageRepository) GeneratePackageNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("WP-%d-", year)

	var lastPackage production.WorkPackage
	err := r.db.WithContext(ctx).
		Model(&production.WorkPackage{}).
		Where("company_id = ? AND package_number LIKE ?", companyID, prefix+"%").
		Order("package_number DESC").
		First(&lastPackage).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastPackage.PackageNumber != "" {
		parts := strings.Split(lastPackage.PackageNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	packageNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.ExistsByPackageNumber(ctx, companyID, packageNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			packageNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByPackageNumber(ctx, companyID, packageNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return packageNumber, nil
}

// applyFilter applies filter options to the query
func (r *GormWorkPackageRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, WorkPackageSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormWorkPackageRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("package_number ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "priority":
			query = query.Where("priority = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		}
	}

	return query
}
