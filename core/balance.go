package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type (
	// Balance is one collateral ledger row: the deposited amount of a
	// single asset for a single account. Absence of a row is equivalent
	// to a zero balance.
	Balance struct {
		AccountId uuid.UUID `json:"accountId"`
		AssetId   uuid.UUID `json:"assetId"`

		Collateral decimal.Decimal `json:"collateral"`
		LastUpdate int64           `json:"lastUpdate"`
	}

	// DebtPosition is one debt ledger row: the synthetic liability an
	// account has minted, denominated in the peg unit.
	DebtPosition struct {
		AccountId uuid.UUID `json:"accountId"`

		DebtMinted decimal.Decimal `json:"debtMinted"`
		LastUpdate int64           `json:"lastUpdate"`
	}
)

func NewBalance(clk clock.Clock, accountId, assetId uuid.UUID) *Balance {
	return &Balance{
		AccountId:  accountId,
		AssetId:    assetId,
		Collateral: decimal.Zero,
		LastUpdate: clk.Now().Unix(),
	}
}

// FindOrCreateBalance loads the collateral row for (account, asset),
// creating the implicit zero row on first use.
func FindOrCreateBalance(ctx context.Context, clk clock.Clock, ledger LedgerService, accountId, assetId uuid.UUID) (*Balance, error) {
	balance, err := ledger.FindBalance(ctx, accountId, assetId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			balance = NewBalance(clk, accountId, assetId)
			if err := ledger.UpsertBalance(ctx, balance); err != nil {
				return nil, err
			}
			return balance, nil
		}
		return nil, err
	}
	return balance, nil
}

func (b *Balance) Clone() *Balance {
	return &Balance{
		AccountId:  b.AccountId,
		AssetId:    b.AssetId,
		Collateral: b.Collateral,
		LastUpdate: b.LastUpdate,
	}
}

// ChangeCollateral applies a signed delta. The ledger never goes below
// zero.
func (b *Balance) ChangeCollateral(delta decimal.Decimal) error {
	collateral := b.Collateral.Add(delta)
	if collateral.LessThan(decimal.Zero) {
		return ErrInsufficientCollateral
	}
	b.Collateral = collateral
	return nil
}

func (b *Balance) Touch(clk clock.Clock) {
	b.LastUpdate = clk.Now().Unix()
}

func (b *Balance) IsEmpty() bool {
	return b.Collateral.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD)
}

func NewDebtPosition(clk clock.Clock, accountId uuid.UUID) *DebtPosition {
	return &DebtPosition{
		AccountId:  accountId,
		DebtMinted: decimal.Zero,
		LastUpdate: clk.Now().Unix(),
	}
}

// FindOrCreateDebtPosition loads the debt row for an account, creating
// the implicit zero row on first use.
func FindOrCreateDebtPosition(ctx context.Context, clk clock.Clock, ledger LedgerService, accountId uuid.UUID) (*DebtPosition, error) {
	position, err := ledger.FindDebtPosition(ctx, accountId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			position = NewDebtPosition(clk, accountId)
			if err := ledger.UpsertDebtPosition(ctx, position); err != nil {
				return nil, err
			}
			return position, nil
		}
		return nil, err
	}
	return position, nil
}

func (p *DebtPosition) Clone() *DebtPosition {
	return &DebtPosition{
		AccountId:  p.AccountId,
		DebtMinted: p.DebtMinted,
		LastUpdate: p.LastUpdate,
	}
}

// ChangeDebt applies a signed delta. Recorded debt never goes below zero.
func (p *DebtPosition) ChangeDebt(delta decimal.Decimal) error {
	debt := p.DebtMinted.Add(delta)
	if debt.LessThan(decimal.Zero) {
		return ErrInsufficientDebt
	}
	p.DebtMinted = debt
	return nil
}

func (p *DebtPosition) Touch(clk clock.Clock) {
	p.LastUpdate = clk.Now().Unix()
}

func (p *DebtPosition) IsEmpty() bool {
	return p.DebtMinted.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD)
}
