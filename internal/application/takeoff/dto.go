package takeoff

import (
	"time"

	"github.com/fabmate/backend/internal/domain/takeoff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Drawing DTOs ====================

// InitiateDrawingUploadRequest represents a request to upload a PDF drawing
// against a work package
type InitiateDrawingUploadRequest struct {
	WorkPackageID uuid.UUID `json:"work_package_id" binding:"required"`
	FileName      string    `json:"file_name" binding:"required,min=1,max=255"`
	FileSizeBytes int64     `json:"file_size_bytes" binding:"required,min=1"`
	PageCount     int       `json:"page_count" binding:"min=0"`
}

// InitiateDrawingUploadResponse carries the created drawing and the
// presigned URL the client PUTs the PDF to
type InitiateDrawingUploadResponse struct {
	Drawing   DrawingResponse `json:"drawing"`
	UploadURL string          `json:"upload_url"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// SaveInstantJSONRequest represents a debounced autosave of the annotation
// blob. BaseVersion is the sync version the client last loaded; the save is
// rejected when the server has moved past it.
type SaveInstantJSONRequest struct {
	InstantJSON string `json:"instant_json" binding:"required"`
	BaseVersion int64  `json:"base_version" binding:"required,min=1"`
}

// SaveInstantJSONResponse reports the sync version after a successful save
type SaveInstantJSONResponse struct {
	DrawingID   uuid.UUID `json:"drawing_id"`
	SyncVersion int64     `json:"sync_version"`
}

// DrawingResponse represents a package drawing in API responses
type DrawingResponse struct {
	ID            uuid.UUID `json:"id"`
	CompanyID     uuid.UUID `json:"company_id"`
	WorkPackageID uuid.UUID `json:"work_package_id"`
	FileName      string    `json:"file_name"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	PageCount     int       `json:"page_count"`
	SyncVersion   int64     `json:"sync_version"`
	DownloadURL   string    `json:"download_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DrawingDetailResponse is a drawing plus its annotation blob, returned when
// the client opens the drawing for measurement
type DrawingDetailResponse struct {
	DrawingResponse
	InstantJSON string `json:"instant_json"`
}

// ToDrawingResponse converts a domain drawing to a response DTO
func ToDrawingResponse(d *takeoff.PackageDrawing) DrawingResponse {
	return DrawingResponse{
		ID:            d.ID,
		CompanyID:     d.CompanyID,
		WorkPackageID: d.WorkPackageID,
		FileName:      d.FileName,
		FileSizeBytes: d.FileSizeBytes,
		PageCount:     d.PageCount,
		SyncVersion:   d.SyncVersion,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// ==================== Annotation / Measurement DTOs ====================

// CreateAnnotationRequest records an annotation drawn on a drawing. When
// Kind is set a measurement is created alongside, optionally priced
// against a catalogue item.
type CreateAnnotationRequest struct {
	AnnotationID    string           `json:"annotation_id" binding:"required,min=1,max=100"`
	Type            string           `json:"type" binding:"required"`
	PageIndex       int              `json:"page_index" binding:"min=0"`
	Geometry        string           `json:"geometry"`
	Kind            string           `json:"kind"`
	RawValue        *decimal.Decimal `json:"raw_value"`
	CatalogueItemID *uuid.UUID       `json:"catalogue_item_id"`
}

// UpdateAnnotationRequest updates an annotation's geometry and re-measures it
type UpdateAnnotationRequest struct {
	Geometry *string          `json:"geometry"`
	RawValue *decimal.Decimal `json:"raw_value"`
}

// LinkMeasurementRequest prices an existing measurement against a catalogue item
type LinkMeasurementRequest struct {
	CatalogueItemID uuid.UUID `json:"catalogue_item_id" binding:"required"`
}

// AnnotationResponse represents an annotation in API responses
type AnnotationResponse struct {
	ID           uuid.UUID `json:"id"`
	DrawingID    uuid.UUID `json:"drawing_id"`
	AnnotationID string    `json:"annotation_id"`
	Type         string    `json:"type"`
	PageIndex    int       `json:"page_index"`
	Geometry     string    `json:"geometry,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MeasurementResponse represents a takeoff measurement in API responses
type MeasurementResponse struct {
	ID              uuid.UUID       `json:"id"`
	DrawingID       uuid.UUID       `json:"drawing_id"`
	AnnotationID    string          `json:"annotation_id"`
	CatalogueItemID *uuid.UUID      `json:"catalogue_item_id"`
	Kind            string          `json:"kind"`
	RawValue        decimal.Decimal `json:"raw_value"`
	Quantity        decimal.Decimal `json:"quantity"`
	WeightKg        decimal.Decimal `json:"weight_kg"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AnnotationWithMeasurementResponse pairs an annotation with its measurement
// when one exists
type AnnotationWithMeasurementResponse struct {
	Annotation  AnnotationResponse   `json:"annotation"`
	Measurement *MeasurementResponse `json:"measurement,omitempty"`
}

// ToAnnotationResponse converts a domain annotation to a response DTO
func ToAnnotationResponse(a *takeoff.DrawingAnnotation) AnnotationResponse {
	return AnnotationResponse{
		ID:           a.ID,
		DrawingID:    a.DrawingID,
		AnnotationID: a.AnnotationID,
		Type:         string(a.Type),
		PageIndex:    a.PageIndex,
		Geometry:     a.Geometry,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ToMeasurementResponse converts a domain measurement to a response DTO
func ToMeasurementResponse(m *takeoff.TraceTakeoffMeasurement) MeasurementResponse {
	return MeasurementResponse{
		ID:              m.ID,
		DrawingID:       m.DrawingID,
		AnnotationID:    m.AnnotationID,
		CatalogueItemID: m.CatalogueItemID,
		Kind:            string(m.Kind),
		RawValue:        m.RawValue,
		Quantity:        m.Quantity,
		WeightKg:        m.WeightKg,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ToMeasurementResponses converts a slice of measurements to response DTOs
func ToMeasurementResponses(measurements []takeoff.TraceTakeoffMeasurement) []MeasurementResponse {
	responses := make([]MeasurementResponse, len(measurements))
	for i := range measurements {
		responses[i] = ToMeasurementResponse(&measurements[i])
	}
	return responses
}

// ==================== Bill of Materials DTOs ====================

// BOMLineResponse is one catalogue item aggregated across a drawing's
// measurements
type BOMLineResponse struct {
	CatalogueItemID uuid.UUID       `json:"catalogue_item_id"`
	ItemCode        string          `json:"item_code"`
	Description     string          `json:"description"`
	Unit            string          `json:"unit"`
	Quantity        decimal.Decimal `json:"quantity"`
	WeightKg        decimal.Decimal `json:"weight_kg"`
	Cost            decimal.Decimal `json:"cost"`
}

// BOMResponse is the bill of materials generated from a drawing's takeoff
type BOMResponse struct {
	DrawingID     uuid.UUID         `json:"drawing_id"`
	WorkPackageID uuid.UUID         `json:"work_package_id"`
	Lines         []BOMLineResponse `json:"lines"`
	TotalWeightKg decimal.Decimal   `json:"total_weight_kg"`
	TotalCost     decimal.Decimal   `json:"total_cost"`
	GeneratedAt   time.Time         `json:"generated_at"`
}
