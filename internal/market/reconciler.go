package market

import (
	"context"

	"github.com/lugondev/go-ammcore/internal/common"
	"github.com/lugondev/go-ammcore/internal/errors"
	ammmath "github.com/lugondev/go-ammcore/internal/math"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// Reconciler drives the two-phase cancel-then-settle sequence and computes
// the pool's true reserves including venue-held value.
type Reconciler struct {
	common.LoggerMixin

	venue Venue
}

// NewReconciler creates a reconciler over venue.
func NewReconciler(venue Venue) *Reconciler {
	return &Reconciler{
		LoggerMixin: common.NewLoggerMixin(),
		venue:       venue,
	}
}

// TotalReserves sums the vault balances with everything the venue holds on
// the pool's behalf (resting orders plus settleable balance). When
// order-book participation is disabled the caller passes a nil snapshot and
// reserves equal the vault balances directly.
func (r *Reconciler) TotalReserves(vaultCoin, vaultPc uint64, snapshot *State) (coin, pc uint64, err error) {
	if snapshot == nil {
		return vaultCoin, vaultPc, nil
	}
	coin, err = ammmath.CheckedAdd(vaultCoin, snapshot.CoinTotal)
	if err != nil {
		return 0, 0, err
	}
	pc, err = ammmath.CheckedAdd(vaultPc, snapshot.PcTotal)
	if err != nil {
		return 0, 0, err
	}
	return coin, pc, nil
}

// LoadState fetches a fresh venue snapshot for the pool's open orders.
func (r *Reconciler) LoadState(ctx context.Context, market, openOrders types.Pubkey) (*State, error) {
	snapshot, err := r.venue.LoadState(ctx, market, openOrders)
	if err != nil {
		return nil, errors.ErrOrderBookLoad.WithCause(err)
	}
	return snapshot, nil
}

// CancelAndSettle flattens the selected side(s) of the pool's resting
// orders in batches of CancelBatchSize client ids, then issues a single
// settle call to move venue-held funds back into the pool vaults. The
// settle call runs even when no orders were resting, because previously
// matched funds may still sit settleable at the venue.
func (r *Reconciler) CancelAndSettle(ctx context.Context, market, openOrders types.Pubkey, mode DrainMode, referrer *types.Pubkey) error {
	orders, err := r.venue.ListOrders(ctx, market, openOrders)
	if err != nil {
		return errors.ErrOrderBookLoad.WithCause(err)
	}

	bids, asks := SplitAndSort(orders)
	batches := BuildCancelBatches(bids, asks, mode)
	for i, batch := range batches {
		if err := r.venue.CancelBatch(ctx, market, openOrders, batch); err != nil {
			return errors.ErrOrderCancel.WithCause(err).WithDetails(map[string]any{
				"batch": i,
			})
		}
	}
	r.GetLogger().Debug("cancelled resting orders",
		"market", market.String(),
		"bids", len(bids),
		"asks", len(asks),
		"batches", len(batches),
	)

	if err := r.venue.Settle(ctx, market, openOrders, referrer); err != nil {
		return errors.ErrSettleFunds.WithCause(err)
	}
	return nil
}
