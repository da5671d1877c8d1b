package takeoff

import (
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MeasurementKind classifies a takeoff measurement
type MeasurementKind string

const (
	MeasurementKindLinear MeasurementKind = "LINEAR"
	MeasurementKindArea   MeasurementKind = "AREA"
	MeasurementKindCount  MeasurementKind = "COUNT"
)

// IsValid checks if the kind is a valid MeasurementKind
func (k MeasurementKind) IsValid() bool {
	switch k {
	case MeasurementKindLinear, MeasurementKindArea, MeasurementKindCount:
		return true
	}
	return false
}

// String returns the string representation of MeasurementKind
func (k MeasurementKind) String() string {
	return string(k)
}

// TraceTakeoffMeasurement is a measurement taken from a drawing, keyed by the
// annotation that produced it. When linked to a catalogue item it carries the
// computed quantity and weight used for bill-of-materials generation.
type TraceTakeoffMeasurement struct {
	shared.CompanyAggregateRoot
	DrawingID       uuid.UUID `gorm:"type:uuid;not null;index"`
	AnnotationID    string    `gorm:"not null;index"`
	CatalogueItemID *uuid.UUID
	Kind            MeasurementKind
	RawValue        decimal.Decimal // Metres, square metres or piece count as measured
	Quantity        decimal.Decimal // Quantity in the catalogue item's unit
	WeightKg        decimal.Decimal
}

// NewTraceTakeoffMeasurement creates a measurement for an annotation
func NewTraceTakeoffMeasurement(companyID, drawingID uuid.UUID, annotationID string, kind MeasurementKind, rawValue decimal.Decimal) (*TraceTakeoffMeasurement, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if drawingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DRAWING", "Drawing ID cannot be empty")
	}
	if annotationID == "" {
		return nil, shared.NewDomainError("INVALID_ANNOTATION_ID", "Annotation ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MEASUREMENT_KIND",
			"Invalid measurement kind '"+kind.String()+"'. Allowed values: LINEAR, AREA, COUNT")
	}
	if rawValue.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VALUE", "Measured value cannot be negative")
	}

	return &TraceTakeoffMeasurement{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		DrawingID:            drawingID,
		AnnotationID:         annotationID,
		Kind:                 kind,
		RawValue:             rawValue,
		Quantity:             rawValue,
		WeightKg:             decimal.Zero,
	}, nil
}

// LinkCatalogueItem attaches a catalogue item and applies the computed
// quantity and weight.
func (m *TraceTakeoffMeasurement) LinkCatalogueItem(itemID uuid.UUID, quantity, weightKg decimal.Decimal) error {
	if itemID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATALOGUE_ITEM", "Catalogue item ID cannot be empty")
	}
	if quantity.IsNegative() || weightKg.IsNegative() {
		return shared.NewDomainError("INVALID_VALUE", "Computed values cannot be negative")
	}

	m.CatalogueItemID = &itemID
	m.Quantity = quantity
	m.WeightKg = weightKg
	m.UpdatedAt = time.Now()
	return nil
}

// UpdateRawValue replaces the measured value and the derived quantity/weight
func (m *TraceTakeoffMeasurement) UpdateRawValue(rawValue, quantity, weightKg decimal.Decimal) error {
	if rawValue.IsNegative() || quantity.IsNegative() || weightKg.IsNegative() {
		return shared.NewDomainError("INVALID_VALUE", "Measured values cannot be negative")
	}

	m.RawValue = rawValue
	m.Quantity = quantity
	m.WeightKg = weightKg
	m.UpdatedAt = time.Now()
	return nil
}
