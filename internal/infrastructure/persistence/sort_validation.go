package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"order_number":    true,
	"customer_name":   true,
	"status":          true,
	"required_date":   true,
	"estimated_hours": true,
	"estimated_cost":  true,
}

// WorkPackageSortFields contains allowed sort fields for work packages
var WorkPackageSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"package_number": true,
	"name":           true,
	"status":         true,
	"priority":       true,
	"planned_start":  true,
	"planned_end":    true,
}

// WorkOrderSortFields contains allowed sort fields for work orders
var WorkOrderSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"work_order_number": true,
	"type":              true,
	"status":            true,
	"priority":          true,
	"quantity":          true,
	"planned_hours":     true,
	"actual_hours":      true,
}

// WorkCenterSortFields contains allowed sort fields for work centers
var WorkCenterSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"code":        true,
	"name":        true,
	"hourly_rate": true,
	"capacity":    true,
	"is_active":   true,
}

// ResourceSortFields contains allowed sort fields for resources
var ResourceSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"name":        true,
	"type":        true,
	"hourly_rate": true,
	"is_active":   true,
}

// CatalogueSortFields contains allowed sort fields for catalogues
var CatalogueSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"is_system":  true,
}

// CatalogueItemSortFields contains allowed sort fields for catalogue items
var CatalogueItemSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"item_code":      true,
	"description":    true,
	"material_grade": true,
	"unit":           true,
	"unit_weight_kg": true,
	"unit_cost":      true,
}

// SurfaceCoatingSortFields contains allowed sort fields for surface coatings
var SurfaceCoatingSortFields = map[string]bool{
	"id":                    true,
	"created_at":            true,
	"updated_at":            true,
	"code":                  true,
	"name":                  true,
	"cost_per_square_metre": true,
	"is_active":             true,
}

// DrawingSortFields contains allowed sort fields for package drawings
var DrawingSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"file_name":       true,
	"file_size_bytes": true,
	"page_count":      true,
	"sync_version":    true,
}

// TraceRecordSortFields contains allowed sort fields for trace records
var TraceRecordSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"record_type":    true,
	"reference_type": true,
	"recorded_at":    true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"email":         true,
	"display_name":  true,
	"role":          true,
	"status":        true,
	"last_login_at": true,
}

// CompanySortFields contains allowed sort fields for companies
var CompanySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"status":     true,
}
