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

// GormWorkOrderRepository implements WorkOrderRepository using GORM
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates a new GormWorkOrderRepository
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// FindByIDForCompany finds a work order with its routing lines within a company
func (r *GormWorkOrderRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*production.WorkOrder, error) {
	var wo production.WorkOrder
	if err := r.db.WithContext(ctx).
		Preload("RoutingLines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_number ASC")
		}).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&wo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// FindByWorkPackage finds all work orders under a work package
func (r *GormWorkOrderRepository) FindByWorkPackage(ctx context.Context, companyID, workPackageID uuid.UUID) ([]production.WorkOrder, error) {
	var orders []production.WorkOrder
	if err := r.db.WithContext(ctx).
		Preload("RoutingLines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_number ASC")
		}).
		Where("company_id = ? AND work_package_id = ?", companyID, workPackageID).
		Order("work_order_number ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAllForCompany finds all work orders for a company
func (r *GormWorkOrderRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]production.WorkOrder, error) {
	var orders []production.WorkOrder
	query := r.applyFilter(r.db.WithContext(ctx).Model(&production.WorkOrder{}).Where("company_id = ?", companyID), filter)

	if err := query.Preload("RoutingLines", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_number ASC")
	}).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a work order and its routing lines
func (r *GormWorkOrderRepository) Save(ctx context.Context, wo *production.WorkOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("RoutingLines").Save(wo).Error; err != nil {
			return err
		}
		return r.saveRoutingLines(tx, wo)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormWorkOrderRepository) SaveWithLock(ctx context.Context, wo *production.WorkOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&production.WorkOrder{}).
			Where("id = ?", wo.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != wo.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The work order has been modified by another user")
		}

		wo.Version++
		wo.UpdatedAt = time.Now()

		result := tx.Model(&production.WorkOrder{}).
			Where("id = ? AND version = ?", wo.ID, currentVersion).
			Updates(map[string]interface{}{
				"type":           wo.Type,
				"priority":       wo.Priority,
				"status":         wo.Status,
				"description":    wo.Description,
				"quantity":       wo.Quantity,
				"resource_id":    wo.ResourceID,
				"work_center_id": wo.WorkCenterID,
				"planned_hours":  wo.PlannedHours,
				"actual_hours":   wo.ActualHours,
				"released_at":    wo.ReleasedAt,
				"started_at":     wo.StartedAt,
				"completed_at":   wo.CompletedAt,
				"cancelled_at":   wo.CancelledAt,
				"cancel_reason":  wo.CancelReason,
				"version":        wo.Version,
				"updated_at":     wo.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The work order has been modified by another user")
		}

		return r.saveRoutingLines(tx, wo)
	})
}

// saveRoutingLines reconciles the stored routing lines with the aggregate's
func (r *GormWorkOrderRepository) saveRoutingLines(tx *gorm.DB, wo *production.WorkOrder) error {
	currentLineIDs := make([]uuid.UUID, len(wo.RoutingLines))
	for i, line := range wo.RoutingLines {
		currentLineIDs[i] = line.ID
	}

	if len(currentLineIDs) > 0 {
		if err := tx.Where("work_order_id = ? AND id NOT IN ?", wo.ID, currentLineIDs).
			Delete(&production.RoutingLine{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("work_order_id = ?", wo.ID).
			Delete(&production.RoutingLine{}).Error; err != nil {
			return err
		}
	}

	for i := range wo.RoutingLines {
		wo.RoutingLines[i].WorkOrderID = wo.ID
		if err := tx.Save(&wo.RoutingLines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteForCompany deletes a work order and its routing lines
func (r *GormWorkOrderRepository) DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("work_order_id = ?", id).
			Delete(&production.RoutingLine{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&production.WorkOrder{}, "company_id = ? AND id = ?", companyID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForCompany counts work orders for a company
func (r *GormWorkOrderRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&production.WorkOrder{}).Where("company_id = ?", companyID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountActiveByWorkPackage counts non-terminal work orders under a work package
func (r *GormWorkOrderRepository) CountActiveByWorkPackage(ctx context.Context, companyID, workPackageID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&production.WorkOrder{}).
		Where("company_id = ? AND work_package_id = ? AND status NOT IN ?",
			companyID, workPackageID,
			[]production.WorkOrderStatus{production.WorkOrderStatusComplete, production.WorkOrderStatusCancelled}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByWorkOrderNumber checks if a work order number exists within a company
func (r *GormWorkOrderRepository) ExistsByWorkOrderNumber(ctx context.Context, companyID uuid.UUID, workOrderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&production.WorkOrder{}).
		Where("company_id = ? AND work_order_number = ?", companyID, workOrderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateWorkOrderNumber generates a unique work order number for a company.
// Format: WO-YYYY-NNNNN (e.g., WO-2026-00001)
func (r *GormWorkOrderRepository) GenerateWorkOrderNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("WO-%d-", year)

	var lastOrder production.WorkOrder
	err := r.db.WithContext(ctx).
		Model(&production.WorkOrder{}).
		Where("company_id = ? AND work_order_number LIKE ?", companyID, prefix+"%").
		Order("work_order_number DESC").
		First(&lastOrder).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.WorkOrderNumber != "" {
		parts := strings.Split(lastOrder.WorkOrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	workOrderNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.ExistsByWorkOrderNumber(ctx, companyID, workOrderNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			workOrderNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByWorkOrderNumber(ctx, companyID, workOrderNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return workOrderNumber, nil
}

// applyFilter applies filter options to the query
func (r *GormWorkOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, WorkOrderSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormWorkOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("work_order_number ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "priority":
			query = query.Where("priority = ?", value)
		case "work_package_id":
			query = query.Where("work_package_id = ?", value)
		case "resource_id":
			query = query.Where("resource_id = ?", value)
		case "work_center_id":
			query = query.Where("work_center_id = ?", value)
		}
	}

	return query
}
