package takeoff

import (
	"testing"

	"github.com/fabmate/backend/internal/domain/catalogue"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T, unit catalogue.Unit, unitWeightKg, unitCost float64) *catalogue.CatalogueItem {
	item, err := catalogue.NewCatalogueItem(uuid.New(), "ITEM-1", "test item", unit,
		decimal.NewFromFloat(unitWeightKg), decimal.NewFromFloat(unitCost))
	require.NoError(t, err)
	return item
}

func TestCalculator_Calculate(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name     string
		kind     MeasurementKind
		raw      float64
		unit     catalogue.Unit
		weightKg float64
		cost     float64
		wantQty  float64
		wantKg   float64
		wantCost float64
	}{
		{
			name: "linear metres of beam", kind: MeasurementKindLinear, raw: 12.5,
			unit: catalogue.UnitMetre, weightKg: 25.1, cost: 38.50,
			wantQty: 12.5, wantKg: 313.75, wantCost: 481.25,
		},
		{
			name: "area of plate", kind: MeasurementKindArea, raw: 3.2,
			unit: catalogue.UnitSquareMetre, weightKg: 78.5, cost: 95,
			wantQty: 3.2, wantKg: 251.2, wantCost: 304,
		},
		{
			name: "count of bolts", kind: MeasurementKindCount, raw: 48,
			unit: catalogue.UnitEach, weightKg: 0.12, cost: 0.85,
			wantQty: 48, wantKg: 5.76, wantCost: 40.80,
		},
		{
			name: "weight-priced item from linear run", kind: MeasurementKindLinear, raw: 10,
			unit: catalogue.UnitKilogram, weightKg: 25.1, cost: 1.10,
			wantQty: 251, wantKg: 251, wantCost: 276.10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := newTestItem(t, tt.unit, tt.weightKg, tt.cost)

			res, err := calc.Calculate(tt.kind, decimal.NewFromFloat(tt.raw), item)
			require.NoError(t, err)

			assert.True(t, res.Quantity.Equal(decimal.NewFromFloat(tt.wantQty)), "quantity: got %s", res.Quantity)
			assert.True(t, res.WeightKg.Equal(decimal.NewFromFloat(tt.wantKg)), "weight: got %s", res.WeightKg)
			assert.True(t, res.Cost.Equal(decimal.NewFromFloat(tt.wantCost)), "cost: got %s", res.Cost)
		})
	}
}

func TestCalculator_IncompatibleKind(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name string
		kind MeasurementKind
		unit catalogue.Unit
	}{
		{"area against per-metre item", MeasurementKindArea, catalogue.UnitMetre},
		{"count against per-m2 item", MeasurementKindCount, catalogue.UnitSquareMetre},
		{"linear against per-piece item", MeasurementKindLinear, catalogue.UnitEach},
		{"count against weight-priced item", MeasurementKindCount, catalogue.UnitKilogram},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := newTestItem(t, tt.unit, 1, 1)
			_, err := calc.Calculate(tt.kind, decimal.NewFromInt(1), item)
			assert.Error(t, err)
		})
	}
}

func TestCalculator_Validation(t *testing.T) {
	calc := NewCalculator()
	item := newTestItem(t, catalogue.UnitMetre, 25.1, 38.50)

	_, err := calc.Calculate(MeasurementKindLinear, decimal.NewFromInt(-1), item)
	assert.Error(t, err)

	_, err = calc.Calculate(MeasurementKind("VOLUME"), decimal.NewFromInt(1), item)
	assert.Error(t, err)

	_, err = calc.Calculate(MeasurementKindLinear, decimal.NewFromInt(1), nil)
	assert.Error(t, err)
}
