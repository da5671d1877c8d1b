package production

import (
	"time"

	"github.com/fabmate/backend/internal/domain/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Work Package DTOs ====================

// CreateWorkPackageRequest represents a request to create a work package
type CreateWorkPackageRequest struct {
	OrderID      uuid.UUID  `json:"order_id" binding:"required"`
	Name         string     `json:"name" binding:"required,min=1,max=200"`
	Description  string     `json:"description" binding:"max=2000"`
	Priority     string     `json:"priority"`
	PlannedStart *time.Time `json:"planned_start"`
	PlannedEnd   *time.Time `json:"planned_end"`
}

// UpdateWorkPackageRequest represents a request to update a work package
type UpdateWorkPackageRequest struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	Priority     *string    `json:"priority"`
	PlannedStart *time.Time `json:"planned_start"`
	PlannedEnd   *time.Time `json:"planned_end"`
}

// TransitionWorkPackageRequest represents a status transition request
type TransitionWorkPackageRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListWorkPackagesRequest represents a request to list work packages
type ListWorkPackagesRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderID  string `form:"order_id"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// WorkPackageResponse represents a work package in API responses
type WorkPackageResponse struct {
	ID             uuid.UUID       `json:"id"`
	CompanyID      uuid.UUID       `json:"company_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	PackageNumber  string          `json:"package_number"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Status         string          `json:"status"`
	Priority       string          `json:"priority"`
	PlannedStart   *time.Time      `json:"planned_start"`
	PlannedEnd     *time.Time      `json:"planned_end"`
	EstimatedHours decimal.Decimal `json:"estimated_hours"`
	EstimatedCost  decimal.Decimal `json:"estimated_cost"`
	ActualHours    decimal.Decimal `json:"actual_hours"`
	ActualCost     decimal.Decimal `json:"actual_cost"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToWorkPackageResponse converts a domain work package to a response DTO
func ToWorkPackageResponse(wp *production.WorkPackage) WorkPackageResponse {
	return WorkPackageResponse{
		ID:             wp.ID,
		CompanyID:      wp.CompanyID,
		OrderID:        wp.OrderID,
		PackageNumber:  wp.PackageNumber,
		Name:           wp.Name,
		Description:    wp.Description,
		Status:         string(wp.Status),
		Priority:       string(wp.Priority),
		PlannedStart:   wp.PlannedStart,
		PlannedEnd:     wp.PlannedEnd,
		EstimatedHours: wp.EstimatedHours,
		EstimatedCost:  wp.EstimatedCost,
		ActualHours:    wp.ActualHours,
		ActualCost:     wp.ActualCost,
		CreatedAt:      wp.CreatedAt,
		UpdatedAt:      wp.UpdatedAt,
		Version:        wp.Version,
	}
}

// ToWorkPackageResponses converts a slice of work packages to response DTOs
func ToWorkPackageResponses(packages []production.WorkPackage) []WorkPackageResponse {
	responses := make([]WorkPackageResponse, len(packages))
	for i := range packages {
		responses[i] = ToWorkPackageResponse(&packages[i])
	}
	return responses
}

// ==================== Work Order DTOs ====================

// CreateWorkOrderRequest represents a request to create a work order
type CreateWorkOrderRequest struct {
	WorkPackageID     uuid.UUID       `json:"work_package_id" binding:"required"`
	Type              string          `json:"type" binding:"required"`
	Priority          string          `json:"priority"`
	Description       string          `json:"description" binding:"max=2000"`
	Quantity          decimal.Decimal `json:"quantity" binding:"required"`
	RoutingTemplateID *uuid.UUID      `json:"routing_template_id"`
}

// UpdateWorkOrderRequest represents a request to update a work order
type UpdateWorkOrderRequest struct {
	Priority    *string          `json:"priority"`
	Description *string          `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
}

// AssignWorkOrderRequest represents a resource/work-center assignment request
type AssignWorkOrderRequest struct {
	ResourceID   *uuid.UUID `json:"resource_id"`
	WorkCenterID *uuid.UUID `json:"work_center_id"`
}

// CancelWorkOrderRequest represents a request to cancel a work order
type CancelWorkOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// AddRoutingLineRequest represents a request to append a routing operation
type AddRoutingLineRequest struct {
	SequenceNumber      int             `json:"sequence_number" binding:"required,min=1"`
	OperationCode       string          `json:"operation_code" binding:"required,min=1,max=50"`
	OperationName       string          `json:"operation_name" binding:"required,min=1,max=200"`
	PlannedSetupMinutes decimal.Decimal `json:"planned_setup_minutes"`
	PlannedRunMinutes   decimal.Decimal `json:"planned_run_minutes"`
}

// TransitionRoutingLineRequest represents a routing line status transition
type TransitionRoutingLineRequest struct {
	Status       string           `json:"status" binding:"required"`
	SetupMinutes *decimal.Decimal `json:"setup_minutes"`
	RunMinutes   *decimal.Decimal `json:"run_minutes"`
}

// ListWorkOrdersRequest represents a request to list work orders
type ListWorkOrdersRequest struct {
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size"`
	WorkPackageID string `form:"work_package_id"`
	Type          string `form:"type"`
	Status        string `form:"status"`
	Priority      string `form:"priority"`
	Search        string `form:"search"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir"`
}

// RoutingLineResponse represents a routing line in API responses
type RoutingLineResponse struct {
	ID                  uuid.UUID       `json:"id"`
	WorkOrderID         uuid.UUID       `json:"work_order_id"`
	SequenceNumber      int             `json:"sequence_number"`
	OperationCode       string          `json:"operation_code"`
	OperationName       string          `json:"operation_name"`
	Status              string          `json:"status"`
	PlannedSetupMinutes decimal.Decimal `json:"planned_setup_minutes"`
	PlannedRunMinutes   decimal.Decimal `json:"planned_run_minutes"`
	ActualSetupMinutes  decimal.Decimal `json:"actual_setup_minutes"`
	ActualRunMinutes    decimal.Decimal `json:"actual_run_minutes"`
	StartedAt           *time.Time      `json:"started_at"`
	FinishedAt          *time.Time      `json:"finished_at"`
}

// WorkOrderResponse represents a work order in API responses
type WorkOrderResponse struct {
	ID              uuid.UUID             `json:"id"`
	CompanyID       uuid.UUID             `json:"company_id"`
	WorkPackageID   uuid.UUID             `json:"work_package_id"`
	WorkOrderNumber string                `json:"work_order_number"`
	Type            string                `json:"type"`
	Priority        string                `json:"priority"`
	Status          string                `json:"status"`
	Description     string                `json:"description"`
	Quantity        decimal.Decimal       `json:"quantity"`
	ResourceID      *uuid.UUID            `json:"resource_id"`
	WorkCenterID    *uuid.UUID            `json:"work_center_id"`
	RoutingLines    []RoutingLineResponse `json:"routing_lines"`
	PlannedHours    decimal.Decimal       `json:"planned_hours"`
	ActualHours     decimal.Decimal       `json:"actual_hours"`
	ReleasedAt      *time.Time            `json:"released_at"`
	StartedAt       *time.Time            `json:"started_at"`
	CompletedAt     *time.Time            `json:"completed_at"`
	CancelledAt     *time.Time            `json:"cancelled_at"`
	CancelReason    string                `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Version         int                   `json:"version"`
}

// ToRoutingLineResponse converts a routing line to a response DTO
func ToRoutingLineResponse(line *production.RoutingLine) RoutingLineResponse {
	return RoutingLineResponse{
		ID:                  line.ID,
		WorkOrderID:         line.WorkOrderID,
		SequenceNumber:      line.SequenceNumber,
		OperationCode:       line.OperationCode,
		OperationName:       line.OperationName,
		Status:              string(line.Status),
		PlannedSetupMinutes: line.PlannedSetupMinutes,
		PlannedRunMinutes:   line.PlannedRunMinutes,
		ActualSetupMinutes:  line.ActualSetupMinutes,
		ActualRunMinutes:    line.ActualRunMinutes,
		StartedAt:           line.StartedAt,
		FinishedAt:          line.FinishedAt,
	}
}

// ToWorkOrderResponse converts a domain work order to a response DTO
func ToWorkOrderResponse(wo *production.WorkOrder) WorkOrderResponse {
	lines := make([]RoutingLineResponse, len(wo.RoutingLines))
	for i := range wo.RoutingLines {
		lines[i] = ToRoutingLineResponse(&wo.RoutingLines[i])
	}

	return WorkOrderResponse{
		ID:              wo.ID,
		CompanyID:       wo.CompanyID,
		WorkPackageID:   wo.WorkPackageID,
		WorkOrderNumber: wo.WorkOrderNumber,
		Type:            string(wo.Type),
		Priority:        string(wo.Priority),
		Status:          string(wo.Status),
		Description:     wo.Description,
		Quantity:        wo.Quantity,
		ResourceID:      wo.ResourceID,
		WorkCenterID:    wo.WorkCenterID,
		RoutingLines:    lines,
		PlannedHours:    wo.PlannedHours,
		ActualHours:     wo.ActualHours,
		ReleasedAt:      wo.ReleasedAt,
		StartedAt:       wo.StartedAt,
		CompletedAt:     wo.CompletedAt,
		CancelledAt:     wo.CancelledAt,
		CancelReason:    wo.CancelReason,
		CreatedAt:       wo.CreatedAt,
		UpdatedAt:       wo.UpdatedAt,
		Version:         wo.Version,
	}
}

// ToWorkOrderResponses converts a slice of work orders to response DTOs
func ToWorkOrderResponses(orders []production.WorkOrder) []WorkOrderResponse {
	responses := make([]WorkOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToWorkOrderResponse(&orders[i])
	}
	return responses
}

// ==================== Work Center DTOs ====================

// CreateWorkCenterRequest represents a request to create a work center
type CreateWorkCenterRequest struct {
	Code       string          `json:"code" binding:"required,min=1,max=50"`
	Name       string          `json:"name" binding:"required,min=1,max=200"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Capacity   int             `json:"capacity" binding:"min=0"`
}

// UpdateWorkCenterRequest represents a request to update a work center
type UpdateWorkCenterRequest struct {
	Name       *string          `json:"name"`
	HourlyRate *decimal.Decimal `json:"hourly_rate"`
	Capacity   *int             `json:"capacity"`
	IsActive   *bool            `json:"is_active"`
}

// WorkCenterResponse represents a work center in API responses
type WorkCenterResponse struct {
	ID         uuid.UUID       `json:"id"`
	CompanyID  uuid.UUID       `json:"company_id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Capacity   int             `json:"capacity"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ToWorkCenterResponse converts a work center to a response DTO
func ToWorkCenterResponse(wc *production.WorkCenter) WorkCenterResponse {
	return WorkCenterResponse{
		ID:         wc.ID,
		CompanyID:  wc.CompanyID,
		Code:       wc.Code,
		Name:       wc.Name,
		HourlyRate: wc.HourlyRate,
		Capacity:   wc.Capacity,
		IsActive:   wc.IsActive,
		CreatedAt:  wc.CreatedAt,
		UpdatedAt:  wc.UpdatedAt,
	}
}

// ==================== Resource DTOs ====================

// CreateResourceRequest represents a request to create a resource
type CreateResourceRequest struct {
	Name       string          `json:"name" binding:"required,min=1,max=200"`
	Type       string          `json:"type" binding:"required"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}

// UpdateResourceRequest represents a request to update a resource
type UpdateResourceRequest struct {
	Name       *string          `json:"name"`
	HourlyRate *decimal.Decimal `json:"hourly_rate"`
	IsActive   *bool            `json:"is_active"`
}

// ResourceResponse represents a resource in API responses
type ResourceResponse struct {
	ID         uuid.UUID       `json:"id"`
	CompanyID  uuid.UUID       `json:"company_id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ToResourceResponse converts a resource to a response DTO
func ToResourceResponse(r *production.Resource) ResourceResponse {
	return ResourceResponse{
		ID:         r.ID,
		CompanyID:  r.CompanyID,
		Name:       r.Name,
		Type:       string(r.Type),
		HourlyRate: r.HourlyRate,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// ==================== Routing Template DTOs ====================

// RoutingTemplateLineInput represents a template line in create/update requests
type RoutingTemplateLineInput struct {
	SequenceNumber      int             `json:"sequence_number" binding:"required,min=1"`
	OperationCode       string          `json:"operation_code" binding:"required,min=1,max=50"`
	OperationName       string          `json:"operation_name" binding:"required,min=1,max=200"`
	PlannedSetupMinutes decimal.Decimal `json:"planned_setup_minutes"`
	PlannedRunMinutes   decimal.Decimal `json:"planned_run_minutes"`
}

// CreateRoutingTemplateRequest represents a request to create a routing template
type CreateRoutingTemplateRequest struct {
	Name        string                     `json:"name" binding:"required,min=1,max=200"`
	Description string                     `json:"description" binding:"max=2000"`
	Lines       []RoutingTemplateLineInput `json:"lines"`
}

// RoutingTemplateLineResponse represents a template line in API responses
type RoutingTemplateLineResponse struct {
	ID                  uuid.UUID       `json:"id"`
	SequenceNumber      int             `json:"sequence_number"`
	OperationCode       string          `json:"operation_code"`
	OperationName       string          `json:"operation_name"`
	PlannedSetupMinutes decimal.Decimal `json:"planned_setup_minutes"`
	PlannedRunMinutes   decimal.Decimal `json:"planned_run_minutes"`
}

// RoutingTemplateResponse represents a routing template in API responses
type RoutingTemplateResponse struct {
	ID          uuid.UUID                     `json:"id"`
	CompanyID   uuid.UUID                     `json:"company_id"`
	Name        string                        `json:"name"`
	Description string                        `json:"description"`
	Lines       []RoutingTemplateLineResponse `json:"lines"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

// ToRoutingTemplateResponse converts a routing template to a response DTO
func ToRoutingTemplateResponse(t *production.RoutingTemplate) RoutingTemplateResponse {
	lines := make([]RoutingTemplateLineResponse, len(t.Lines))
	for i, line := range t.Lines {
		lines[i] = RoutingTemplateLineResponse{
			ID:                  line.ID,
			SequenceNumber:      line.SequenceNumber,
			OperationCode:       line.OperationCode,
			OperationName:       line.OperationName,
			PlannedSetupMinutes: line.PlannedSetupMinutes,
			PlannedRunMinutes:   line.PlannedRunMinutes,
		}
	}
	return RoutingTemplateResponse{
		ID:          t.ID,
		CompanyID:   t.CompanyID,
		Name:        t.Name,
		Description: t.Description,
		Lines:       lines,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
