package core

import (
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// LiquidationBalances captures the target's ledger rows on one side of a
// liquidation.
type LiquidationBalances struct {
	TargetCollateral *Balance      `json:"targetCollateral"`
	TargetDebt       *DebtPosition `json:"targetDebt"`
}

// LiquidateResult reports a completed liquidation to the caller, usually
// an external keeper process deciding on its next move.
type LiquidateResult struct {
	LiquidatorId uuid.UUID `json:"liquidatorId"`
	TargetId     uuid.UUID `json:"targetId"`
	AssetId      uuid.UUID `json:"assetId"`

	DebtCovered      decimal.Decimal `json:"debtCovered"`
	CollateralSeized decimal.Decimal `json:"collateralSeized"`

	PreBalances  *LiquidationBalances `json:"preBalances"`
	PostBalances *LiquidationBalances `json:"postBalances"`

	TargetPreHealth  decimal.Decimal `json:"targetPreHealth"`
	TargetPostHealth decimal.Decimal `json:"targetPostHealth"`
}
