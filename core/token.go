package core

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type (
	// LiabilityToken is the mint/burn capable accounting token the engine
	// issues debt in. Both calls are fallible; a failure aborts the whole
	// operation that triggered it.
	LiabilityToken interface {
		Mint(ctx context.Context, accountId uuid.UUID, amount decimal.Decimal) error
		Burn(ctx context.Context, accountId uuid.UUID, amount decimal.Decimal) error
	}

	// ValueTransfer moves units of a single collateral asset between
	// accounts and the engine's custody. An error return is treated the
	// same as an exception: the calling operation reverts entirely.
	ValueTransfer interface {
		Transfer(ctx context.Context, to uuid.UUID, amount decimal.Decimal) error
		TransferFrom(ctx context.Context, from, to uuid.UUID, amount decimal.Decimal) error
	}
)
