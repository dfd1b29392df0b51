package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type (
	// OracleReading is a raw price feed sample: an integer-scaled price
	// carrying Precision fractional digits, plus the unix time at which
	// it was observed.
	OracleReading struct {
		Price     decimal.Decimal `json:"price"`
		Precision int32           `json:"precision"`
		Timestamp int64           `json:"timestamp"`
	}

	PriceFeed interface {
		LatestReading(ctx context.Context) (*OracleReading, error)
	}

	// PriceAdapter normalizes feed readings to the engine's internal
	// scale and refuses invalid or stale ones. There is no caching: every
	// valuation re-reads the feed.
	PriceAdapter struct {
		feed   PriceFeed
		maxAge int64
		clk    clock.Clock
	}

	// PriceAdapterMgr resolves the adapter registered for an asset.
	PriceAdapterMgr interface {
		GetPriceAdapter(assetId uuid.UUID) (*PriceAdapter, error)
	}
)

func NewPriceAdapter(feed PriceFeed, maxAge int64, clk clock.Clock) *PriceAdapter {
	if maxAge <= 0 {
		maxAge = DEFAULT_ORACLE_MAX_AGE
	}
	if clk == nil {
		clk = clock.New()
	}
	return &PriceAdapter{
		feed:   feed,
		maxAge: maxAge,
		clk:    clk,
	}
}

// Price returns the USD value of one unit of the adapted asset, scaled to
// the engine's internal precision.
func (p *PriceAdapter) Price(ctx context.Context) (decimal.Decimal, error) {
	reading, err := p.feed.LatestReading(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(ErrInvalidOraclePrice, err.Error())
	}
	if reading == nil || !reading.Price.IsPositive() {
		return decimal.Zero, ErrInvalidOraclePrice
	}
	if p.clk.Now().Unix()-reading.Timestamp > p.maxAge {
		return decimal.Zero, ErrStaleOraclePrice
	}
	return reading.Price.Shift(-reading.Precision), nil
}
