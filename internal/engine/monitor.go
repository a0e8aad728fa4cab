package engine

import (
	"context"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/instruction"
	"github.com/lugondev/go-ammcore/internal/market"
	"github.com/lugondev/go-ammcore/internal/metrics"
)

// MonitorStep account indexes.
const (
	monIdxTokenProgram = iota
	monIdxPool
	monIdxAuthority
	monIdxOpenOrders
	monIdxTargetOrders
	monIdxCoinVault
	monIdxPcVault
	monIdxMarket
	monIdxMarketProgram
	monIdxEventQueue

	monAccounts
)

// monitorStep is the crank: it re-baselines PnL against current reserves,
// then flattens the book and settles so the next planning pass starts from
// clean vault balances.
func (e *Engine) monitorStep(ctx context.Context, args *instruction.MonitorStep, accounts []*Account) error {
	if err := expectAccounts(accounts, monAccounts, 0); err != nil {
		return err
	}

	poolAcc := accounts[monIdxPool]
	pool, err := e.loadPool(poolAcc)
	if err != nil {
		return err
	}
	if !pool.GetStatus().OrderBookAllowed() {
		return errors.ErrInvalidStatus.WithDetails(map[string]any{
			"status": pool.GetStatus().String(),
		})
	}
	if err := e.checkAuthority(accounts[monIdxAuthority].Key, pool.Nonce); err != nil {
		return err
	}
	if err := checkKey(accounts[monIdxOpenOrders], pool.OpenOrders, errors.ErrInvalidOpenOrders); err != nil {
		return err
	}
	if err := checkKey(accounts[monIdxMarket], pool.Market, errors.ErrInvalidMarket); err != nil {
		return err
	}
	if err := checkKey(accounts[monIdxMarketProgram], pool.MarketProgram, errors.ErrInvalidMarketProgram); err != nil {
		return err
	}
	coinVault, pcVault, err := e.checkVaults(accounts[monIdxCoinVault], accounts[monIdxPcVault], pool)
	if err != nil {
		return err
	}
	target, err := e.loadTarget(accounts[monIdxTargetOrders], pool, poolAcc.Key)
	if err != nil {
		return err
	}

	snapshot, err := e.reconciler.LoadState(ctx, pool.Market, pool.OpenOrders)
	if err != nil {
		return err
	}
	totalCoin, totalPc, err := e.reconciler.TotalReserves(coinVault.Amount, pcVault.Amount, snapshot)
	if err != nil {
		return err
	}
	coinNet, pcNet, err := totalWithoutTakePnl(totalCoin, totalPc, pool)
	if err != nil {
		return err
	}
	x, y, err := e.takePnl(pool, target, coinNet, pcNet)
	if err != nil {
		return err
	}
	target.SetBaseline(x, y)

	if err := e.reconciler.CancelAndSettle(ctx, pool.Market, pool.OpenOrders, market.DrainBoth, nil); err != nil {
		return err
	}

	if err := saveTarget(accounts[monIdxTargetOrders], target); err != nil {
		return err
	}
	if err := savePool(poolAcc, pool); err != nil {
		return err
	}
	e.metrics.IncrementCounter(ctx, metrics.MetricMonitorSteps, 1)
	return nil
}

// AdminCancelOrders account indexes.
const (
	acIdxPool = iota
	acIdxOwner
	acIdxAuthority
	acIdxOpenOrders
	acIdxTargetOrders
	acIdxMarket
	acIdxMarketProgram
	acIdxEventQueue

	acAccounts
)

func (e *Engine) adminCancelOrders(ctx context.Context, args *instruction.AdminCancelOrders, accounts []*Account) error {
	if err := expectAccounts(accounts, acAccounts, 0); err != nil {
		return err
	}
	if err := checkSigner(accounts[acIdxOwner]); err != nil {
		return err
	}

	poolAcc := accounts[acIdxPool]
	pool, err := e.loadPool(poolAcc)
	if err != nil {
		return err
	}
	if accounts[acIdxOwner].Key != pool.AmmOwner {
		return errors.ErrInvalidOwner
	}
	if err := e.checkAuthority(accounts[acIdxAuthority].Key, pool.Nonce); err != nil {
		return err
	}
	if err := checkKey(accounts[acIdxOpenOrders], pool.OpenOrders, errors.ErrInvalidOpenOrders); err != nil {
		return err
	}
	if err := checkKey(accounts[acIdxMarket], pool.Market, errors.ErrInvalidMarket); err != nil {
		return err
	}
	if err := checkKey(accounts[acIdxMarketProgram], pool.MarketProgram, errors.ErrInvalidMarketProgram); err != nil {
		return err
	}

	if err := e.reconciler.CancelAndSettle(ctx, pool.Market, pool.OpenOrders, market.DrainBoth, nil); err != nil {
		return err
	}
	e.metrics.IncrementCounter(ctx, metrics.MetricAdminCancels, 1)
	return nil
}

// MigrateToVenue account indexes.
const (
	migIdxPool = iota
	migIdxOwner
	migIdxAuthority
	migIdxOpenOrders
	migIdxMarket
	migIdxMarketProgram
	migIdxNewMarket
	migIdxNewMarketProgram
	migIdxEventQueue

	migAccounts
)

// migrateToVenue flattens the book on the old market, settles, and
// repoints the pool at the canonical venue.
func (e *Engine) migrateToVenue(ctx context.Context, accounts []*Account) error {
	if err := expectAccounts(accounts, migAccounts, 0); err != nil {
		return err
	}
	if err := checkSigner(accounts[migIdxOwner]); err != nil {
		return err
	}

	poolAcc := accounts[migIdxPool]
	pool, err := e.loadPool(poolAcc)
	if err != nil {
		return err
	}
	if accounts[migIdxOwner].Key != pool.AmmOwner {
		return errors.ErrInvalidOwner
	}
	if err := e.checkAuthority(accounts[migIdxAuthority].Key, pool.Nonce); err != nil {
		return err
	}
	if err := checkKey(accounts[migIdxOpenOrders], pool.OpenOrders, errors.ErrInvalidOpenOrders); err != nil {
		return err
	}
	if err := checkKey(accounts[migIdxMarket], pool.Market, errors.ErrInvalidMarket); err != nil {
		return err
	}
	if err := checkKey(accounts[migIdxMarketProgram], pool.MarketProgram, errors.ErrInvalidMarketProgram); err != nil {
		return err
	}
	if accounts[migIdxNewMarketProgram].Key == pool.MarketProgram {
		return errors.ErrInvalidMarketProgram
	}

	if err := e.reconciler.CancelAndSettle(ctx, pool.Market, pool.OpenOrders, market.DrainBoth, nil); err != nil {
		return err
	}

	pool.Market = accounts[migIdxNewMarket].Key
	pool.MarketProgram = accounts[migIdxNewMarketProgram].Key
	pool.ClientOrderID = 0

	if err := savePool(poolAcc, pool); err != nil {
		return err
	}
	e.GetLogger().Info("pool migrated",
		"pool", poolAcc.Key.String(),
		"market", pool.Market.String(),
		"market_program", pool.MarketProgram.String(),
	)
	e.metrics.IncrementCounter(ctx, metrics.MetricMigrations, 1)
	return nil
}
