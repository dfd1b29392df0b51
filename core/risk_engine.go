package core

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RiskEngine computes account health from the two ledgers and the
// registered oracles, and enforces the solvency invariant.
type RiskEngine struct {
	ledger LedgerService
	prices PriceAdapterMgr
}

func NewRiskEngine(ledger LedgerService, prices PriceAdapterMgr) *RiskEngine {
	return &RiskEngine{
		ledger: ledger,
		prices: prices,
	}
}

// AccountCollateralValue sums price * collateral over every asset the
// account holds, scaled to the peg unit. Read-only.
func (r *RiskEngine) AccountCollateralValue(ctx context.Context, accountId uuid.UUID) (decimal.Decimal, error) {
	balances, err := r.ledger.ListBalances(ctx, accountId)
	if err != nil {
		return decimal.Zero, err
	}

	totalValue := decimal.Zero
	for _, balance := range balances {
		if balance.IsEmpty() {
			continue
		}
		adapter, err := r.prices.GetPriceAdapter(balance.AssetId)
		if err != nil {
			return decimal.Zero, err
		}
		price, err := adapter.Price(ctx)
		if err != nil {
			return decimal.Zero, err
		}
		value, err := CalcValue(balance.Collateral, price, nil)
		if err != nil {
			return decimal.Zero, err
		}
		totalValue = totalValue.Add(value)
	}
	return totalValue, nil
}

// HealthComponents returns the account's collateral value and recorded
// debt as one consistent pair.
func (r *RiskEngine) HealthComponents(ctx context.Context, accountId uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	collateralValue, err := r.AccountCollateralValue(ctx, accountId)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	position, err := r.ledger.FindDebtPosition(ctx, accountId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return collateralValue, decimal.Zero, nil
		}
		return decimal.Zero, decimal.Zero, err
	}
	return collateralValue, position.DebtMinted, nil
}

func (r *RiskEngine) HealthFactor(ctx context.Context, accountId uuid.UUID) (decimal.Decimal, error) {
	collateralValue, debtMinted, err := r.HealthComponents(ctx, accountId)
	if err != nil {
		return decimal.Zero, err
	}
	return CalcHealthFactor(collateralValue, debtMinted), nil
}

// AssertHealthy fails when the account's health factor is strictly below
// the minimum. Every state transition that can reduce collateral or
// increase debt calls this before releasing external effects.
func (r *RiskEngine) AssertHealthy(ctx context.Context, accountId uuid.UUID) error {
	healthFactor, err := r.HealthFactor(ctx, accountId)
	if err != nil {
		return err
	}
	if healthFactor.LessThan(MIN_HEALTH_FACTOR) {
		return ErrHealthFactorBroken
	}
	return nil
}
