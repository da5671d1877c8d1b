package takeoff

import (
	"github.com/fabmate/backend/internal/domain/catalogue"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CalculationResult represents the quantity and weight derived from a
// measurement against a catalogue item
type CalculationResult struct {
	// The raw measured value (metres, square metres or piece count)
	RawValue decimal.Decimal
	// The quantity expressed in the catalogue item's unit
	Quantity decimal.Decimal
	// The unit the quantity is expressed in
	Unit catalogue.Unit
	// The total weight in kilograms
	WeightKg decimal.Decimal
	// The material cost at the item's unit cost
	Cost decimal.Decimal
}

// Calculator derives quantities and weights from takeoff measurements.
// This is a domain service as it operates across the takeoff and catalogue
// aggregates.
type Calculator struct{}

// NewCalculator creates a new takeoff calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate computes the quantity, weight and cost for a measured value
// against a catalogue item.
//
// The measurement kind must be compatible with the item's unit: linear
// measurements price items sold per metre, area measurements items sold per
// square metre, and counts items sold per piece. Items sold by weight (KG)
// accept linear measurements and derive mass from the item's unit weight
// per metre.
func (c *Calculator) Calculate(kind MeasurementKind, rawValue decimal.Decimal, item *catalogue.CatalogueItem) (*CalculationResult, error) {
	if item == nil {
		return nil, shared.NewDomainError("INVALID_CATALOGUE_ITEM", "Catalogue item is required for calculation")
	}
	if rawValue.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VALUE", "Measured value cannot be negative")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MEASUREMENT_KIND",
			"Invalid measurement kind '"+kind.String()+"'. Allowed values: LINEAR, AREA, COUNT")
	}

	var quantity decimal.Decimal
	switch item.Unit {
	case catalogue.UnitMetre:
		if kind != MeasurementKindLinear {
			return nil, incompatible(kind, item.Unit)
		}
		quantity = rawValue
	case catalogue.UnitSquareMetre:
		if kind != MeasurementKindArea {
			return nil, incompatible(kind, item.Unit)
		}
		quantity = rawValue
	case catalogue.UnitEach:
		if kind != MeasurementKindCount {
			return nil, incompatible(kind, item.Unit)
		}
		quantity = rawValue
	case catalogue.UnitKilogram:
		if kind != MeasurementKindLinear {
			return nil, incompatible(kind, item.Unit)
		}
		// Weight-priced items: quantity is the derived mass itself
		quantity = rawValue.Mul(item.UnitWeightKg).Round(4)
	default:
		return nil, shared.NewDomainError("INVALID_UNIT", "Catalogue item has an unsupported unit")
	}

	quantity = quantity.Round(4)

	var weight decimal.Decimal
	if item.Unit == catalogue.UnitKilogram {
		weight = quantity
	} else {
		weight = quantity.Mul(item.UnitWeightKg).Round(4)
	}

	cost := quantity.Mul(item.UnitCost).Round(2)

	return &CalculationResult{
		RawValue: rawValue,
		Quantity: quantity,
		Unit:     item.Unit,
		WeightKg: weight,
		Cost:     cost,
	}, nil
}

func incompatible(kind MeasurementKind, unit catalogue.Unit) *shared.DomainError {
	return shared.NewDomainError("INCOMPATIBLE_MEASUREMENT",
		"Measurement kind "+kind.String()+" cannot quantify an item sold per "+unit.String())
}
