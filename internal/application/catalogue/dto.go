package catalogue

import (
	"time"

	"github.com/fabmate/backend/internal/domain/catalogue"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Catalogue DTOs ====================

// CreateCatalogueRequest represents a request to create a custom catalogue
type CreateCatalogueRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateCatalogueRequest represents a request to rename a custom catalogue
type UpdateCatalogueRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CatalogueResponse represents a catalogue in API responses
type CatalogueResponse struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   *uuid.UUID `json:"company_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsSystem    bool       `json:"is_system"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToCatalogueResponse converts a domain catalogue to a response DTO
func ToCatalogueResponse(c *catalogue.Catalogue) CatalogueResponse {
	return CatalogueResponse{
		ID:          c.ID,
		CompanyID:   c.CompanyID,
		Name:        c.Name,
		Description: c.Description,
		IsSystem:    c.IsSystem,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ==================== Catalogue Item DTOs ====================

// CreateCatalogueItemRequest represents a request to add an item to a catalogue
type CreateCatalogueItemRequest struct {
	ItemCode      string           `json:"item_code" binding:"required,min=1,max=50"`
	Description   string           `json:"description" binding:"required,min=1,max=500"`
	MaterialGrade string           `json:"material_grade" binding:"max=100"`
	Unit          string           `json:"unit" binding:"required"`
	LengthMM      *decimal.Decimal `json:"length_mm"`
	WidthMM       *decimal.Decimal `json:"width_mm"`
	ThicknessMM   *decimal.Decimal `json:"thickness_mm"`
	UnitWeightKg  decimal.Decimal  `json:"unit_weight_kg"`
	UnitCost      decimal.Decimal  `json:"unit_cost"`
}

// UpdateCatalogueItemRequest represents a request to update a catalogue item
type UpdateCatalogueItemRequest struct {
	Description   *string          `json:"description"`
	MaterialGrade *string          `json:"material_grade"`
	Unit          *string          `json:"unit"`
	LengthMM      *decimal.Decimal `json:"length_mm"`
	WidthMM       *decimal.Decimal `json:"width_mm"`
	ThicknessMM   *decimal.Decimal `json:"thickness_mm"`
	UnitWeightKg  *decimal.Decimal `json:"unit_weight_kg"`
	UnitCost      *decimal.Decimal `json:"unit_cost"`
}

// CatalogueItemResponse represents a catalogue item in API responses
type CatalogueItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	CatalogueID   uuid.UUID       `json:"catalogue_id"`
	ItemCode      string          `json:"item_code"`
	Description   string          `json:"description"`
	MaterialGrade string          `json:"material_grade"`
	Unit          string          `json:"unit"`
	LengthMM      decimal.Decimal `json:"length_mm"`
	WidthMM       decimal.Decimal `json:"width_mm"`
	ThicknessMM   decimal.Decimal `json:"thickness_mm"`
	UnitWeightKg  decimal.Decimal `json:"unit_weight_kg"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToCatalogueItemResponse converts a catalogue item to a response DTO
func ToCatalogueItemResponse(item *catalogue.CatalogueItem) CatalogueItemResponse {
	return CatalogueItemResponse{
		ID:            item.ID,
		CatalogueID:   item.CatalogueID,
		ItemCode:      item.ItemCode,
		Description:   item.Description,
		MaterialGrade: item.MaterialGrade,
		Unit:          string(item.Unit),
		LengthMM:      item.LengthMM,
		WidthMM:       item.WidthMM,
		ThicknessMM:   item.ThicknessMM,
		UnitWeightKg:  item.UnitWeightKg,
		UnitCost:      item.UnitCost,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

// ==================== Surface Coating DTOs ====================

// CreateSurfaceCoatingRequest represents a request to create a surface coating
type CreateSurfaceCoatingRequest struct {
	Code               string          `json:"code" binding:"required,min=1,max=50"`
	Name               string          `json:"name" binding:"required,min=1,max=200"`
	CostPerSquareMetre decimal.Decimal `json:"cost_per_square_metre"`
}

// UpdateSurfaceCoatingRequest represents a request to update a surface coating
type UpdateSurfaceCoatingRequest struct {
	Name               *string          `json:"name"`
	CostPerSquareMetre *decimal.Decimal `json:"cost_per_square_metre"`
	IsActive           *bool            `json:"is_active"`
}

// SurfaceCoatingResponse represents a surface coating in API responses
type SurfaceCoatingResponse struct {
	ID                 uuid.UUID       `json:"id"`
	CompanyID          uuid.UUID       `json:"company_id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	CostPerSquareMetre decimal.Decimal `json:"cost_per_square_metre"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ToSurfaceCoatingResponse converts a surface coating to a response DTO
func ToSurfaceCoatingResponse(sc *catalogue.SurfaceCoating) SurfaceCoatingResponse {
	return SurfaceCoatingResponse{
		ID:                 sc.ID,
		CompanyID:          sc.CompanyID,
		Code:               sc.Code,
		Name:               sc.Name,
		CostPerSquareMetre: sc.CostPerSquareMetre,
		IsActive:           sc.IsActive,
		CreatedAt:          sc.CreatedAt,
		UpdatedAt:          sc.UpdatedAt,
	}
}
