package catalogue

import (
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/fabmate/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Unit is the unit of measure a catalogue item is quantified in
type Unit string

const (
	UnitEach        Unit = "EA" // Discrete pieces
	UnitMetre       Unit = "M"  // Linear metres
	UnitSquareMetre Unit = "M2" // Square metres
	UnitKilogram    Unit = "KG" // Kilograms
)

// IsValid checks if the unit is a valid Unit
func (u Unit) IsValid() bool {
	switch u {
	case UnitEach, UnitMetre, UnitSquareMetre, UnitKilogram:
		return true
	}
	return false
}

// String returns the string representation of Unit
func (u Unit) String() string {
	return string(u)
}

// CatalogueItem is a reusable material/part definition. Dimensions and unit
// weight drive the quantity/weight calculation for takeoff measurements.
type CatalogueItem struct {
	shared.BaseAggregateRoot
	CatalogueID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ItemCode      string
	Description   string
	MaterialGrade string
	Unit          Unit
	LengthMM      decimal.Decimal
	WidthMM       decimal.Decimal
	ThicknessMM   decimal.Decimal
	UnitWeightKg  decimal.Decimal
	UnitCost      decimal.Decimal
}

// NewCatalogueItem creates a new catalogue item
func NewCatalogueItem(catalogueID uuid.UUID, itemCode, description string, unit Unit, unitWeightKg, unitCost decimal.Decimal) (*CatalogueItem, error) {
	if catalogueID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATALOGUE", "Catalogue ID cannot be empty")
	}
	if itemCode == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_CODE", "Item code cannot be empty")
	}
	if !unit.IsValid() {
		return nil, shared.NewDomainError("INVALID_UNIT",
			"Invalid unit '"+unit.String()+"'. Allowed values: EA, M, M2, KG")
	}
	if unitWeightKg.IsNegative() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Unit weight cannot be negative")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	return &CatalogueItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CatalogueID:       catalogueID,
		ItemCode:          itemCode,
		Description:       description,
		Unit:              unit,
		LengthMM:          decimal.Zero,
		WidthMM:           decimal.Zero,
		ThicknessMM:       decimal.Zero,
		UnitWeightKg:      unitWeightKg,
		UnitCost:          unitCost,
	}, nil
}

// Update updates the mutable catalogue item fields
func (i *CatalogueItem) Update(description, materialGrade string, unit Unit, unitWeightKg, unitCost decimal.Decimal) error {
	if !unit.IsValid() {
		return shared.NewDomainError("INVALID_UNIT",
			"Invalid unit '"+unit.String()+"'. Allowed values: EA, M, M2, KG")
	}
	if unitWeightKg.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Unit weight cannot be negative")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	i.Description = description
	i.MaterialGrade = materialGrade
	i.Unit = unit
	i.UnitWeightKg = unitWeightKg
	i.UnitCost = unitCost
	i.UpdatedAt = time.Now()
	return nil
}

// SetDimensions sets the physical dimensions in millimetres
func (i *CatalogueItem) SetDimensions(lengthMM, widthMM, thicknessMM decimal.Decimal) error {
	if lengthMM.IsNegative() || widthMM.IsNegative() || thicknessMM.IsNegative() {
		return shared.NewDomainError("INVALID_DIMENSIONS", "Dimensions cannot be negative")
	}

	i.LengthMM = lengthMM
	i.WidthMM = widthMM
	i.ThicknessMM = thicknessMM
	i.UpdatedAt = time.Now()
	return nil
}

// GetUnitCostMoney returns the unit cost as a Money value object
func (i *CatalogueItem) GetUnitCostMoney() valueobject.Money {
	return valueobject.NewMoneyGBP(i.UnitCost)
}
