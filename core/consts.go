package core

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// Oracle readings older than this many seconds are refused unless the
	// engine is configured with its own bound.
	DEFAULT_ORACLE_MAX_AGE = 90
)

var (
	ONE = decimal.NewFromInt(1)

	// MIN_HEALTH_FACTOR is the lowest health factor a position may hold
	// after an operation that reduces collateral or increases debt. The
	// check is strict: a position exactly at the minimum is accepted.
	MIN_HEALTH_FACTOR = ONE

	// MAX_HEALTH_FACTOR stands in for the unbounded health of a position
	// with zero debt.
	MAX_HEALTH_FACTOR = decimal.NewFromUint64(math.MaxUint64)

	// LIQUIDATION_THRESHOLD is the share of raw collateral value counted
	// toward solvency. 0.5 means collateral must be worth twice the debt.
	LIQUIDATION_THRESHOLD = decimal.NewFromFloat(0.5)

	// LIQUIDATION_BONUS is the premium a liquidator receives in seized
	// collateral on top of the covered debt value.
	LIQUIDATION_BONUS = decimal.NewFromFloat(0.1)

	ZERO_AMOUNT_THRESHOLD = decimal.Zero
)
