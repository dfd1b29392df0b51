package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalcValue(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		price    decimal.Decimal
		weight   *decimal.Decimal
		expected decimal.Decimal
	}{
		{
			name:     "normal",
			amount:   decimal.NewFromFloat(100),
			price:    decimal.NewFromFloat(2),
			weight:   decimalPtr(decimal.NewFromFloat(0.5)),
			expected: decimal.NewFromFloat(100),
		},
		{
			name:     "zero amount",
			amount:   decimal.Zero,
			price:    decimal.NewFromFloat(2),
			weight:   decimalPtr(decimal.NewFromFloat(0.5)),
			expected: decimal.Zero,
		},
		{
			name:     "nil weight",
			amount:   decimal.NewFromFloat(100),
			price:    decimal.NewFromFloat(2),
			weight:   nil,
			expected: decimal.NewFromFloat(200),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalcValue(tt.amount, tt.price, tt.weight)
			assert.NoError(t, err)
			assert.True(t, result.Equal(tt.expected), "expected %s, got %s", tt.expected, result)
		})
	}
}

func TestCalcAmount(t *testing.T) {
	tests := []struct {
		name     string
		value    decimal.Decimal
		price    decimal.Decimal
		expected decimal.Decimal
		wantErr  bool
	}{
		{
			name:     "normal",
			value:    decimal.NewFromFloat(200),
			price:    decimal.NewFromFloat(2),
			expected: decimal.NewFromFloat(100),
		},
		{
			name:    "zero price",
			value:   decimal.NewFromFloat(200),
			price:   decimal.Zero,
			wantErr: true,
		},
		{
			name:    "negative price",
			value:   decimal.NewFromFloat(200),
			price:   decimal.NewFromFloat(-3),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalcAmount(tt.value, tt.price)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOraclePrice)
				return
			}
			assert.NoError(t, err)
			assert.True(t, result.Equal(tt.expected), "expected %s, got %s", tt.expected, result)
		})
	}
}

func TestCalcHealthFactor(t *testing.T) {
	tests := []struct {
		name            string
		collateralValue decimal.Decimal
		debtMinted      decimal.Decimal
		expected        decimal.Decimal
	}{
		{
			name:            "exactly at minimum",
			collateralValue: decimal.NewFromInt(20000),
			debtMinted:      decimal.NewFromInt(10000),
			expected:        ONE,
		},
		{
			name:            "undercollateralized after price drop",
			collateralValue: decimal.NewFromInt(10000),
			debtMinted:      decimal.NewFromInt(10000),
			expected:        decimal.NewFromFloat(0.5),
		},
		{
			name:            "zero debt is unbounded",
			collateralValue: decimal.NewFromInt(20000),
			debtMinted:      decimal.Zero,
			expected:        MAX_HEALTH_FACTOR,
		},
		{
			name:            "no collateral and no debt",
			collateralValue: decimal.Zero,
			debtMinted:      decimal.Zero,
			expected:        MAX_HEALTH_FACTOR,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalcHealthFactor(tt.collateralValue, tt.debtMinted)
			assert.True(t, result.Equal(tt.expected), "expected %s, got %s", tt.expected, result)
		})
	}
}

func TestCalcCollateralToSeize(t *testing.T) {
	seize, err := CalcCollateralToSeize(decimal.NewFromInt(3000), decimal.NewFromInt(1500))
	assert.NoError(t, err)
	assert.True(t, seize.Equal(decimal.NewFromFloat(2.2)), "expected 2.2, got %s", seize)

	_, err = CalcCollateralToSeize(decimal.NewFromInt(3000), decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidOraclePrice)
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
