package core

import "github.com/pkg/errors"

var (
	ErrZeroAmount              = errors.New("amount must be greater than zero")
	ErrUnsupportedAsset        = errors.New("asset not in registry")
	ErrTransferFailed          = errors.New("collaborator value movement failed")
	ErrHealthFactorBroken      = errors.New("health factor below minimum")
	ErrHealthFactorOk          = errors.New("cannot liquidate a healthy position")
	ErrHealthFactorNotImproved = errors.New("liquidation did not improve health factor")
	ErrInsufficientCollateral  = errors.New("insufficient collateral balance")
	ErrInsufficientDebt        = errors.New("repay exceeds recorded debt")
	ErrOracleNotRegistered     = errors.New("no oracle registered for asset")
	ErrInvalidOraclePrice      = errors.New("oracle returned an invalid price")
	ErrStaleOraclePrice        = errors.New("oracle reading is stale")
	ErrReentrancyBlocked       = errors.New("reentrant call blocked")
	ErrConfigMismatch          = errors.New("asset, oracle and transfer lists do not match")
)
