package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(14.25), GBP)
		require.NoError(t, err)
		assert.Equal(t, GBP, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(14.25)))
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(14.25), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("parses decimal string", func(t *testing.T) {
		m, err := NewMoneyFromString("3.87", EUR)
		require.NoError(t, err)
		assert.Equal(t, EUR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(3.87)))
	})

	t.Run("rejects non-numeric string", func(t *testing.T) {
		_, err := NewMoneyFromString("POA", GBP)
		assert.Error(t, err)
	})
}

func TestNewMoneyGBP(t *testing.T) {
	m := NewMoneyGBP(decimal.NewFromFloat(42.80))
	assert.Equal(t, GBP, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(42.80)))
}

func TestNewMoneyGBPFromString(t *testing.T) {
	m, err := NewMoneyGBPFromString("199.99")
	require.NoError(t, err)
	assert.Equal(t, GBP, m.Currency())
	assert.Equal(t, "199.99", m.StringFixed(2))
}

func TestZeroMoney(t *testing.T) {
	m := Zero(USD)
	assert.True(t, m.IsZero())
	assert.Equal(t, USD, m.Currency())

	gbp := ZeroGBP()
	assert.True(t, gbp.IsZero())
	assert.Equal(t, GBP, gbp.Currency())
}

func TestMoneySignPredicates(t *testing.T) {
	unitCost := NewMoneyGBPFromFloat(14.25)
	creditNote := NewMoneyGBPFromFloat(-14.25)
	zero := ZeroGBP()

	assert.True(t, unitCost.IsPositive())
	assert.False(t, unitCost.IsNegative())
	assert.False(t, unitCost.IsZero())

	assert.False(t, creditNote.IsPositive())
	assert.True(t, creditNote.IsNegative())

	assert.False(t, zero.IsPositive())
	assert.False(t, zero.IsNegative())
	assert.True(t, zero.IsZero())
}

func TestMoneyAdd(t *testing.T) {
	t.Run("sums matching currencies", func(t *testing.T) {
		flange := NewMoneyGBPFromFloat(42.80)
		gasket := NewMoneyGBPFromFloat(1.95)
		total, err := flange.Add(gasket)
		require.NoError(t, err)
		assert.True(t, total.Amount().Equal(decimal.NewFromFloat(44.75)))
	})

	t.Run("refuses mixed currencies", func(t *testing.T) {
		gbp := NewMoneyGBPFromFloat(42.80)
		usd, err := NewMoney(decimal.NewFromFloat(42.80), USD)
		require.NoError(t, err)
		_, err = gbp.Add(usd)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "different currencies")
	})
}

func TestMoneySubtract(t *testing.T) {
	t.Run("subtracts matching currencies", func(t *testing.T) {
		listPrice := NewMoneyGBPFromFloat(50.00)
		rebate := NewMoneyGBPFromFloat(7.20)
		net, err := listPrice.Subtract(rebate)
		require.NoError(t, err)
		assert.True(t, net.Amount().Equal(decimal.NewFromFloat(42.80)))
	})

	t.Run("refuses mixed currencies", func(t *testing.T) {
		gbp := NewMoneyGBPFromFloat(50.00)
		eur, err := NewMoney(decimal.NewFromFloat(7.20), EUR)
		require.NoError(t, err)
		_, err = gbp.Subtract(eur)
		assert.Error(t, err)
	})
}

func TestMoneyMultiply(t *testing.T) {
	unitCost := NewMoneyGBPFromFloat(14.25)

	t.Run("scales by decimal factor", func(t *testing.T) {
		withWastage := unitCost.Multiply(decimal.NewFromFloat(1.1))
		assert.Equal(t, "15.68", withWastage.Round(2).StringFixed(2))
	})

	t.Run("extends a line by quantity", func(t *testing.T) {
		lineTotal := unitCost.MultiplyByInt(12)
		assert.True(t, lineTotal.Amount().Equal(decimal.NewFromFloat(171.00)))
		assert.Equal(t, GBP, lineTotal.Currency())
	})
}

func TestMoneyRound(t *testing.T) {
	m := NewMoneyGBPFromFloat(14.256)
	assert.Equal(t, "14.26", m.Round(2).StringFixed(2))
}

func TestMoneyComparisons(t *testing.T) {
	flange := NewMoneyGBPFromFloat(42.80)
	gasket := NewMoneyGBPFromFloat(1.95)
	flangeAgain := NewMoneyGBPFromFloat(42.80)

	t.Run("equals", func(t *testing.T) {
		assert.True(t, flange.Equals(flangeAgain))
		assert.False(t, flange.Equals(gasket))
	})

	t.Run("less than", func(t *testing.T) {
		cheaper, err := gasket.LessThan(flange)
		require.NoError(t, err)
		assert.True(t, cheaper)
	})

	t.Run("greater than", func(t *testing.T) {
		dearer, err := flange.GreaterThan(gasket)
		require.NoError(t, err)
		assert.True(t, dearer)
	})

	t.Run("refuses mixed currencies", func(t *testing.T) {
		usd, err := NewMoney(decimal.NewFromFloat(42.80), USD)
		require.NoError(t, err)
		_, err = flange.LessThan(usd)
		assert.Error(t, err)
	})
}

func TestMoneyString(t *testing.T) {
	m := NewMoneyGBPFromFloat(42.8)
	assert.Equal(t, "42.80 GBP", m.String())
}

func TestMoneyJSON(t *testing.T) {
	t.Run("marshals amount as string", func(t *testing.T) {
		data, err := json.Marshal(NewMoneyGBPFromFloat(14.25))
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount":"14.25","currency":"GBP"}`, string(data))
	})

	t.Run("unmarshals wire form", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"3.87","currency":"EUR"}`), &m)
		require.NoError(t, err)
		assert.Equal(t, EUR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(3.87)))
	})

	t.Run("rejects non-numeric amount", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"POA","currency":"GBP"}`), &m)
		assert.Error(t, err)
	})
}

func TestMoneyScan(t *testing.T) {
	t.Run("scan string takes default currency", func(t *testing.T) {
		var m Money
		err := m.Scan("14.25")
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(14.25)))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scan bytes", func(t *testing.T) {
		var m Money
		err := m.Scan([]byte("1.95"))
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(1.95)))
	})

	t.Run("scan nil yields zero", func(t *testing.T) {
		var m Money
		err := m.Scan(nil)
		require.NoError(t, err)
		assert.True(t, m.IsZero())
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scan rejects unsupported type", func(t *testing.T) {
		var m Money
		err := m.Scan(1425)
		assert.Error(t, err)
	})
}

func TestMoneyValue(t *testing.T) {
	m := NewMoneyGBPFromFloat(14.25)
	val, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "14.25", val)
}
