package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vimageDE/stablecoin/utils"
)

type (
	// EngineConfig fixes the engine's collaterals and collaborators at
	// construction time. The three asset slices are parallel.
	EngineConfig struct {
		Name string

		AssetIds  []uuid.UUID
		Feeds     []PriceFeed
		Transfers []ValueTransfer

		// OracleMaxAge bounds the age of accepted oracle readings in
		// seconds; zero selects DEFAULT_ORACLE_MAX_AGE.
		OracleMaxAge int64

		Token LiabilityToken
	}

	// Engine is the single global ledger: it mediates all external value
	// movement, owns the reentrancy guard and runs every operation in
	// checks, ledger effects, health assert, external interaction order.
	Engine struct {
		Id uuid.UUID

		registry *AssetRegistry
		ledger   LedgerService
		token    LiabilityToken
		risk     *RiskEngine
		guard    ReentrancyGuard

		clk clock.Clock
		log Log
	}

	// AccountSummary is the read-only view of one account's position.
	AccountSummary struct {
		AccountId       uuid.UUID       `json:"accountId"`
		CollateralValue decimal.Decimal `json:"collateralValue"`
		DebtMinted      decimal.Decimal `json:"debtMinted"`
		HealthFactor    decimal.Decimal `json:"healthFactor"`
	}
)

type OptionFunc func(e *Engine)

func WithClock(clk clock.Clock) OptionFunc {
	return func(e *Engine) {
		e.clk = clk
	}
}

func WithLog(log Log) OptionFunc {
	return func(e *Engine) {
		e.log = log
	}
}

func NewEngine(cfg EngineConfig, ledger LedgerService, opts ...OptionFunc) (*Engine, error) {
	nop := zerolog.Nop()
	engine := &Engine{
		Id:     uuid.Must(uuid.FromString(utils.DeriveUuid(cfg.Name))),
		ledger: ledger,
		token:  cfg.Token,
		clk:    clock.New(),
		log:    &nop,
	}
	for _, opt := range opts {
		opt(engine)
	}

	if cfg.Token == nil {
		return nil, ErrConfigMismatch
	}
	if len(cfg.AssetIds) != len(cfg.Feeds) || len(cfg.AssetIds) != len(cfg.Transfers) {
		return nil, ErrConfigMismatch
	}

	oracles := make([]*PriceAdapter, len(cfg.Feeds))
	for i, feed := range cfg.Feeds {
		if feed == nil {
			return nil, ErrConfigMismatch
		}
		oracles[i] = NewPriceAdapter(feed, cfg.OracleMaxAge, engine.clk)
	}

	registry, err := NewAssetRegistry(cfg.AssetIds, oracles, cfg.Transfers)
	if err != nil {
		return nil, err
	}
	engine.registry = registry
	engine.risk = NewRiskEngine(ledger, registry)

	return engine, nil
}

// ------------ Exposed mutating surface. Every entry point holds the
// guard for the whole operation; composed operations reuse the internal
// variants under a single hold.

func (e *Engine) DepositCollateral(ctx context.Context, accountId, assetId uuid.UUID, amount decimal.Decimal) error {
	if err := e.guard.Enter(); err != nil {
		return err
	}
	defer e.guard.Exit()

	return e.depositCollateral(ctx, accountId, assetId, amount)
}

func (e *Engine) WithdrawCollateral(ctx context.Context, accountId, assetId uuid.UUID, amount decimal.Decimal) error {
	if err := e.guard.Enter(); err != nil {
		return err
	}
	defer e.guard.Exit()

	return e.withdrawCollateral(ctx, accountId, assetId, amount)
}

func (e *Engine) MintDebt(ctx context.Context, accountId uuid.UUID, amount decimal.Decimal) error {
	if err := e.guard.Enter(); err != nil {
		return err
	}
	defer e.guard.Exit()

	return e.mintDebt(ctx, accountId, amount)
}

func (e *Engine) BurnDebt(ctx context.Context, accountId uuid.UUID, amount decimal.Decimal) error {
	if err := e.guard.Enter(); err != nil {
		return err
	}
	defer e.guard.Exit()

	return e.burnDebt(ctx, accountId, amount)
}

// BurnAllDebt burns the account's entire recorded debt and returns the
// amount burned.
func (e *Engine) BurnAllDebt(ctx context.Context, accountId uuid.UUID) (decimal.Decimal, error) {
	if err := e.guard.Enter(); err != nil {
		return decimal.Zero, err
	}
	defer e.guard.Exit()

	position, err := e.findDebtPosition(ctx, accountId)
	if err != nil {
		return decimal.Zero, err
	}
	if position.IsEmpty() {
		return decimal.Zero, ErrInsufficientDebt
	}

	amount := position.DebtMinted
	if err := e.burnDebt(ctx, accountId, amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// DepositCollateralAndMintDebt composes a deposit and a mint as one
// atomic unit. Health is validated once, after both ledger halves are
// applied.
func (e *Engine) DepositCollateralAndMintDebt(ctx context.Context, accountId, assetId uuid.UUID, collateralAmount, mintAmount decimal.Decimal) error {
	if err := e.guard.Enter(); err != nil {
		return err
	}
	defer e.guard.Exit()

	if !collateralAmount.IsPositive() || !mintAmount.IsPositive() {
		return ErrZeroAmount
	}
	entry, err := e.registry.Get(assetId)
	if err != nil {
		return err
	}

	balance, err := FindOrCreateBalance(ctx, e.clk, e.ledger, accountId, assetId)
	if err != nil {
		return err
	}
	position, err := FindOrCreateDebtPosition(ctx, e.clk, e.ledger, accountId)
	if err != nil {
		return err
	}
	prevBalance, prevPosition := balance.Clone(), position.Clone()

	if err := e.applyBalance(ctx, balance, collateralAmount); err != nil {
		return err
	}
	if err := e.applyDebt(ctx, position, mintAmount); err != nil {
		e.rollbackBalance(ctx, prevBalance)
		return err
	}

	if err := e.risk.AssertHealthy(ctx, accountId); err != nil {
		e.rollbackBalance(ctx, prevBalance)
		e.rollbackDebt(ctx, prevPosition)
		return err
	}

	if err := entry.Transfer.TransferFrom(ctx, accountId, e.Id, collateralAmount); err != nil {
		e.rollbackBalance(ctx, prevBalance)
		e.rollbackDebt(ctx, prevPosition)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}
	if err := e.token.Mint(ctx, accountId, mintAmount); err != nil {
		// The collateral pull already settled; push it back before
		// discarding the ledger changes.
		if refundErr := entry.Transfer.Transfer(ctx, accountId, collateralAmount); refundErr != nil {
			e.log.Error().Msgf("refund of %s after failed mint also failed: %v", collateralAmount, refundErr)
		}
		e.rollbackBalance(ctx, prevBalance)
		e.rollbackDebt(ctx, prevPosition)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}

	e.writeEvent(ctx, EventCollateralDeposited, accountId, assetId, collateralAmount, uuid.Nil)
	e.writeEvent(ctx, EventDebtMinted, accountId, uuid.Nil, mintAmount, uuid.Nil)
	return nil
}

// RedeemCollateralForDebt composes a burn and a withdrawal as one atomic
// unit. Health is validated once, after both ledger halves are applied.
func (e *Engine) RedeemCollateralForDebt(ctx context.Context, accountId, assetId uuid.UUID, collateralAmount, burnAmount decimal.Decimal) error {
	if err := e.guard.Enter(); err != nil {
		return err
	}
	defer e.guard.Exit()

	if !collateralAmount.IsPositive() || !burnAmount.IsPositive() {
		return ErrZeroAmount
	}
	entry, err := e.registry.Get(assetId)
	if err != nil {
		return err
	}

	balance, err := e.findBalance(ctx, accountId, assetId)
	if err != nil {
		return err
	}
	position, err := e.findDebtPosition(ctx, accountId)
	if err != nil {
		return err
	}
	prevBalance, prevPosition := balance.Clone(), position.Clone()

	if err := e.applyDebt(ctx, position, burnAmount.Neg()); err != nil {
		return err
	}
	if err := e.applyBalance(ctx, balance, collateralAmount.Neg()); err != nil {
		e.rollbackDebt(ctx, prevPosition)
		return err
	}

	if err := e.risk.AssertHealthy(ctx, accountId); err != nil {
		e.rollbackBalance(ctx, prevBalance)
		e.rollbackDebt(ctx, prevPosition)
		return err
	}

	if err := e.token.Burn(ctx, accountId, burnAmount); err != nil {
		e.rollbackBalance(ctx, prevBalance)
		e.rollbackDebt(ctx, prevPosition)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}
	if err := entry.Transfer.Transfer(ctx, accountId, collateralAmount); err != nil {
		// The burn already settled; restore the supply before discarding
		// the ledger changes.
		if mintErr := e.token.Mint(ctx, accountId, burnAmount); mintErr != nil {
			e.log.Error().Msgf("re-mint of %s after failed withdrawal also failed: %v", burnAmount, mintErr)
		}
		e.rollbackBalance(ctx, prevBalance)
		e.rollbackDebt(ctx, prevPosition)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}

	e.writeEvent(ctx, EventDebtBurned, accountId, uuid.Nil, burnAmount, uuid.Nil)
	e.writeEvent(ctx, EventCollateralWithdrawn, accountId, assetId, collateralAmount, uuid.Nil)
	return nil
}

// Liquidate lets a third party repay part of an unhealthy account's debt
// and seize a bonus-adjusted amount of that account's collateral.
func (e *Engine) Liquidate(ctx context.Context, liquidatorId, targetId, assetId uuid.UUID, debtToCover decimal.Decimal) (*LiquidateResult, error) {
	if err := e.guard.Enter(); err != nil {
		return nil, err
	}
	defer e.guard.Exit()

	if !debtToCover.IsPositive() {
		return nil, ErrZeroAmount
	}
	entry, err := e.registry.Get(assetId)
	if err != nil {
		return nil, err
	}

	preHealth, err := e.risk.HealthFactor(ctx, targetId)
	if err != nil {
		return nil, err
	}
	if preHealth.GreaterThanOrEqual(MIN_HEALTH_FACTOR) {
		return nil, ErrHealthFactorOk
	}

	price, err := entry.Oracle.Price(ctx)
	if err != nil {
		return nil, err
	}
	collateralToSeize, err := CalcCollateralToSeize(debtToCover, price)
	if err != nil {
		return nil, err
	}

	balance, err := e.findBalance(ctx, targetId, assetId)
	if err != nil {
		return nil, err
	}
	position, err := e.findDebtPosition(ctx, targetId)
	if err != nil {
		return nil, err
	}
	if debtToCover.GreaterThan(position.DebtMinted) {
		return nil, ErrInsufficientDebt
	}
	prevBalance, prevPosition := balance.Clone(), position.Clone()

	if err := e.applyDebt(ctx, position, debtToCover.Neg()); err != nil {
		return nil, err
	}
	if err := e.applyBalance(ctx, balance, collateralToSeize.Neg()); err != nil {
		e.rollbackDebt(ctx, prevPosition)
		return nil, err
	}

	postHealth, err := e.risk.HealthFactor(ctx, targetId)
	if err != nil {
		e.rollbackBalance(ctx, prevBalance)
		e.rollbackDebt(ctx, prevPosition)
		return nil, err
	}
	// The target's ratio must strictly rise. Equal post health means the
	// seizure consumed exactly as much value as the covered debt freed,
	// accomplishing nothing for the position; that and any worsening are
	// refused and undone.
	if postHealth.LessThanOrEqual(preHealth) {
		e.rollbackBalance(ctx, prevBalance)
		e.rollbackDebt(ctx, prevPosition)
		return nil, ErrHealthFactorNotImproved
	}
	if err := e.risk.AssertHealthy(ctx, liquidatorId); err != nil {
		e.rollbackBalance(ctx, prevBalance)
		e.rollbackDebt(ctx, prevPosition)
		return nil, err
	}

	// The covered debt is burned out of circulation, not transferred to
	// the engine.
	if err := e.token.Burn(ctx, liquidatorId, debtToCover); err != nil {
		e.rollbackBalance(ctx, prevBalance)
		e.rollbackDebt(ctx, prevPosition)
		return nil, errors.Wrap(ErrTransferFailed, err.Error())
	}
	if err := entry.Transfer.Transfer(ctx, liquidatorId, collateralToSeize); err != nil {
		if mintErr := e.token.Mint(ctx, liquidatorId, debtToCover); mintErr != nil {
			e.log.Error().Msgf("re-mint of %s after failed seizure payout also failed: %v", debtToCover, mintErr)
		}
		e.rollbackBalance(ctx, prevBalance)
		e.rollbackDebt(ctx, prevPosition)
		return nil, errors.Wrap(ErrTransferFailed, err.Error())
	}

	e.writeEvent(ctx, EventLiquidated, targetId, assetId, collateralToSeize, liquidatorId)
	e.log.Info().Msgf("liquidated %s of account %s debt, seized %s of asset %s", debtToCover, targetId, collateralToSeize, assetId)

	return &LiquidateResult{
		LiquidatorId:     liquidatorId,
		TargetId:         targetId,
		AssetId:          assetId,
		DebtCovered:      debtToCover,
		CollateralSeized: collateralToSeize,
		PreBalances: &LiquidationBalances{
			TargetCollateral: prevBalance,
			TargetDebt:       prevPosition,
		},
		PostBalances: &LiquidationBalances{
			TargetCollateral: balance.Clone(),
			TargetDebt:       position.Clone(),
		},
		TargetPreHealth:  preHealth,
		TargetPostHealth: postHealth,
	}, nil
}

// ------------ Read-only surface. Getters take no guard: they mutate
// nothing and make no external calls beyond oracle reads.

func (e *Engine) HealthFactor(ctx context.Context, accountId uuid.UUID) (decimal.Decimal, error) {
	return e.risk.HealthFactor(ctx, accountId)
}

func (e *Engine) AccountCollateralValue(ctx context.Context, accountId uuid.UUID) (decimal.Decimal, error) {
	return e.risk.AccountCollateralValue(ctx, accountId)
}

func (e *Engine) AccountSummary(ctx context.Context, accountId uuid.UUID) (*AccountSummary, error) {
	collateralValue, debtMinted, err := e.risk.HealthComponents(ctx, accountId)
	if err != nil {
		return nil, err
	}
	return &AccountSummary{
		AccountId:       accountId,
		CollateralValue: collateralValue,
		DebtMinted:      debtMinted,
		HealthFactor:    CalcHealthFactor(collateralValue, debtMinted),
	}, nil
}

// ------------ Internal operation bodies, run under a held guard.

func (e *Engine) depositCollateral(ctx context.Context, accountId, assetId uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrZeroAmount
	}
	entry, err := e.registry.Get(assetId)
	if err != nil {
		return err
	}

	balance, err := FindOrCreateBalance(ctx, e.clk, e.ledger, accountId, assetId)
	if err != nil {
		return err
	}
	prevBalance := balance.Clone()

	if err := e.applyBalance(ctx, balance, amount); err != nil {
		return err
	}

	// Ledger first, pull second: the transfer callback must only ever see
	// committed state.
	if err := entry.Transfer.TransferFrom(ctx, accountId, e.Id, amount); err != nil {
		e.rollbackBalance(ctx, prevBalance)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}

	e.writeEvent(ctx, EventCollateralDeposited, accountId, assetId, amount, uuid.Nil)
	e.log.Debug().Msgf("account %s deposited %s of asset %s", accountId, amount, assetId)
	return nil
}

func (e *Engine) withdrawCollateral(ctx context.Context, accountId, assetId uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrZeroAmount
	}
	entry, err := e.registry.Get(assetId)
	if err != nil {
		return err
	}

	balance, err := e.findBalance(ctx, accountId, assetId)
	if err != nil {
		return err
	}
	prevBalance := balance.Clone()

	if err := e.applyBalance(ctx, balance, amount.Neg()); err != nil {
		return err
	}

	if err := e.risk.AssertHealthy(ctx, accountId); err != nil {
		e.rollbackBalance(ctx, prevBalance)
		return err
	}

	if err := entry.Transfer.Transfer(ctx, accountId, amount); err != nil {
		e.rollbackBalance(ctx, prevBalance)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}

	e.writeEvent(ctx, EventCollateralWithdrawn, accountId, assetId, amount, uuid.Nil)
	e.log.Debug().Msgf("account %s withdrew %s of asset %s", accountId, amount, assetId)
	return nil
}

func (e *Engine) mintDebt(ctx context.Context, accountId uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrZeroAmount
	}

	position, err := FindOrCreateDebtPosition(ctx, e.clk, e.ledger, accountId)
	if err != nil {
		return err
	}
	prevPosition := position.Clone()

	if err := e.applyDebt(ctx, position, amount); err != nil {
		return err
	}

	if err := e.risk.AssertHealthy(ctx, accountId); err != nil {
		e.rollbackDebt(ctx, prevPosition)
		return err
	}

	if err := e.token.Mint(ctx, accountId, amount); err != nil {
		e.rollbackDebt(ctx, prevPosition)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}

	e.writeEvent(ctx, EventDebtMinted, accountId, uuid.Nil, amount, uuid.Nil)
	e.log.Debug().Msgf("account %s minted %s of debt", accountId, amount)
	return nil
}

func (e *Engine) burnDebt(ctx context.Context, accountId uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrZeroAmount
	}

	position, err := e.findDebtPosition(ctx, accountId)
	if err != nil {
		return err
	}
	prevPosition := position.Clone()

	if err := e.applyDebt(ctx, position, amount.Neg()); err != nil {
		return err
	}

	// Burning can only improve the ratio; no health check. The token burn
	// and the ledger decrement still commit as one unit.
	if err := e.token.Burn(ctx, accountId, amount); err != nil {
		e.rollbackDebt(ctx, prevPosition)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}

	e.writeEvent(ctx, EventDebtBurned, accountId, uuid.Nil, amount, uuid.Nil)
	e.log.Debug().Msgf("account %s burned %s of debt", accountId, amount)
	return nil
}

// ------------ Ledger mutation helpers.

// findBalance maps a missing row to the domain sentinel and passes any
// other store failure through unchanged.
func (e *Engine) findBalance(ctx context.Context, accountId, assetId uuid.UUID) (*Balance, error) {
	balance, err := e.ledger.FindBalance(ctx, accountId, assetId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInsufficientCollateral
		}
		return nil, err
	}
	return balance, nil
}

func (e *Engine) findDebtPosition(ctx context.Context, accountId uuid.UUID) (*DebtPosition, error) {
	position, err := e.ledger.FindDebtPosition(ctx, accountId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInsufficientDebt
		}
		return nil, err
	}
	return position, nil
}

func (e *Engine) applyBalance(ctx context.Context, balance *Balance, delta decimal.Decimal) error {
	if err := balance.ChangeCollateral(delta); err != nil {
		return err
	}
	balance.Touch(e.clk)
	return e.ledger.UpsertBalance(ctx, balance)
}

func (e *Engine) applyDebt(ctx context.Context, position *DebtPosition, delta decimal.Decimal) error {
	if err := position.ChangeDebt(delta); err != nil {
		return err
	}
	position.Touch(e.clk)
	return e.ledger.UpsertDebtPosition(ctx, position)
}

// Rollbacks restore pre-operation clones. A failing restore leaves the
// ledger inconsistent and is loudly logged; the memory store cannot fail
// here.
func (e *Engine) rollbackBalance(ctx context.Context, prev *Balance) {
	if err := e.ledger.UpsertBalance(ctx, prev); err != nil {
		e.log.Error().Msgf("balance rollback failed for account %s asset %s: %v", prev.AccountId, prev.AssetId, err)
	}
}

func (e *Engine) rollbackDebt(ctx context.Context, prev *DebtPosition) {
	if err := e.ledger.UpsertDebtPosition(ctx, prev); err != nil {
		e.log.Error().Msgf("debt rollback failed for account %s: %v", prev.AccountId, err)
	}
}

func (e *Engine) writeEvent(ctx context.Context, kind EventKind, accountId, assetId uuid.UUID, amount decimal.Decimal, counterpartyId uuid.UUID) {
	event := NewEvent(e.clk, kind, accountId, assetId, amount)
	event.CounterpartyId = counterpartyId
	if err := e.ledger.CreateEvent(ctx, event); err != nil {
		e.log.Warn().Msgf("event %s not recorded: %v", kind, err)
	}
}
