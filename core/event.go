package core

import (
	"strconv"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/vimageDE/stablecoin/utils"
)

type EventKind string

const (
	EventCollateralDeposited EventKind = "collateral_deposited"
	EventCollateralWithdrawn EventKind = "collateral_withdrawn"
	EventDebtMinted          EventKind = "debt_minted"
	EventDebtBurned          EventKind = "debt_burned"
	EventLiquidated          EventKind = "liquidated"
)

// Event is an observable log record of a completed ledger mutation. It is
// written inside the same operation that produced it, never for a failed
// one.
type Event struct {
	Id   uuid.UUID `json:"id"`
	Kind EventKind `json:"kind"`

	AccountId uuid.UUID       `json:"accountId"`
	AssetId   uuid.UUID       `json:"assetId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`

	// CounterpartyId is set on liquidations: the liquidator that covered
	// the account's debt.
	CounterpartyId uuid.UUID `json:"counterpartyId,omitempty"`

	CreatedAt int64 `json:"createdAt"`
}

func NewEvent(clk clock.Clock, kind EventKind, accountId, assetId uuid.UUID, amount decimal.Decimal) *Event {
	now := clk.Now()
	return &Event{
		Id: uuid.Must(uuid.FromString(utils.DeriveUuid(
			string(kind),
			accountId.String(),
			assetId.String(),
			amount.String(),
			strconv.FormatInt(now.UnixNano(), 10),
		))),
		Kind:      kind,
		AccountId: accountId,
		AssetId:   assetId,
		Amount:    amount,
		CreatedAt: now.Unix(),
	}
}
