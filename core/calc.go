package core

import (
	"github.com/shopspring/decimal"
)

// CalcValue converts an asset amount into its USD value at the given
// price, optionally weighted.
func CalcValue(amount decimal.Decimal, price decimal.Decimal, weight *decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, nil
	}

	weightedAmount := amount
	if weight != nil {
		weightedAmount = amount.Mul(*weight)
	}

	return weightedAmount.Mul(price), nil
}

// CalcAmount converts a USD value into an asset amount at the given
// price.
func CalcAmount(value decimal.Decimal, price decimal.Decimal) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Zero, ErrInvalidOraclePrice
	}
	return value.Div(price), nil
}

// CalcHealthFactor is the solvency ratio of a position: risk-adjusted
// collateral value over debt, with 1.0 as the minimum safe ratio. A
// position with no debt cannot be undercollateralized.
func CalcHealthFactor(collateralValue, debtMinted decimal.Decimal) decimal.Decimal {
	if debtMinted.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD) {
		return MAX_HEALTH_FACTOR
	}
	return collateralValue.Mul(LIQUIDATION_THRESHOLD).Div(debtMinted)
}

// CalcCollateralToSeize converts covered debt into the bonus-adjusted
// collateral amount owed to the liquidator.
func CalcCollateralToSeize(debtToCover, price decimal.Decimal) (decimal.Decimal, error) {
	baseAmount, err := CalcAmount(debtToCover, price)
	if err != nil {
		return decimal.Zero, err
	}
	return baseAmount.Mul(ONE.Add(LIQUIDATION_BONUS)), nil
}
