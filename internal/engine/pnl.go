package engine

import (
	"github.com/lugondev/go-ammcore/internal/errors"
	ammmath "github.com/lugondev/go-ammcore/internal/math"
	"github.com/lugondev/go-ammcore/internal/state"
)

// totalWithoutTakePnl removes the already-skimmed amounts from raw
// reserves. The skim accumulator sits in the vaults but no longer belongs
// to LP holders.
func totalWithoutTakePnl(totalCoin, totalPc uint64, pool *state.PoolInfo) (coin, pc uint64, err error) {
	coin, err = ammmath.CheckedSub(totalCoin, pool.StateData.NeedTakePnlCoin)
	if err != nil {
		return 0, 0, errors.ErrTakePnl.WithCause(err)
	}
	pc, err = ammmath.CheckedSub(totalPc, pool.StateData.NeedTakePnlPc)
	if err != nil {
		return 0, 0, errors.ErrTakePnl.WithCause(err)
	}
	return coin, pc, nil
}

// takePnl skims profit accrued since the stored baseline. totalCoin and
// totalPc are native reserves already net of the pending skim. It returns
// the normalized reserves after the skim; the caller rewrites the baseline
// to the post-operation reserves once the operation's own deltas are known.
//
// A reserve product below the baseline means the accounting is corrupted;
// the operation fails rather than silently re-baselining.
func (e *Engine) takePnl(pool *state.PoolInfo, target *state.TargetOrders, totalCoin, totalPc uint64) (x, y uint64, err error) {
	x1, err := ammmath.Normalize(totalCoin, uint8(pool.CoinDecimals), pool.SysDecimalValue)
	if err != nil {
		return 0, 0, err
	}
	y1, err := ammmath.Normalize(totalPc, uint8(pool.PcDecimals), pool.SysDecimalValue)
	if err != nil {
		return 0, 0, err
	}

	bx, by, err := target.Baseline()
	if err != nil {
		return 0, 0, errors.ErrCalcPnl.WithCause(err)
	}
	if bx == 0 && by == 0 {
		// Fresh pool, nothing to measure against yet.
		return x1, y1, nil
	}
	if !ammmath.ProductGE(x1, y1, bx, by) {
		return 0, 0, errors.ErrCalcPnl.WithDetails(map[string]any{
			"x1": x1, "y1": y1, "bx": bx, "by": by,
		})
	}

	x2, y2, err := ammmath.PnlBaseline(x1, y1, bx, by)
	if err != nil {
		return 0, 0, err
	}
	grownX, err := ammmath.CheckedSub(x1, x2)
	if err != nil {
		return 0, 0, errors.ErrCalcPnl.WithCause(err)
	}
	grownY, err := ammmath.CheckedSub(y1, y2)
	if err != nil {
		return 0, 0, errors.ErrCalcPnl.WithCause(err)
	}

	deltaX, err := ammmath.ApplyRatio(grownX, pool.Fees.PnlNumerator, pool.Fees.PnlDenominator, ammmath.Floor)
	if err != nil {
		return 0, 0, err
	}
	deltaY, err := ammmath.ApplyRatio(grownY, pool.Fees.PnlNumerator, pool.Fees.PnlDenominator, ammmath.Floor)
	if err != nil {
		return 0, 0, err
	}
	if deltaX == 0 && deltaY == 0 {
		return x1, y1, nil
	}

	nativeCoin, err := ammmath.Restore(deltaX, uint8(pool.CoinDecimals), pool.SysDecimalValue)
	if err != nil {
		return 0, 0, err
	}
	nativePc, err := ammmath.Restore(deltaY, uint8(pool.PcDecimals), pool.SysDecimalValue)
	if err != nil {
		return 0, 0, err
	}

	pool.StateData.NeedTakePnlCoin, err = ammmath.CheckedAdd(pool.StateData.NeedTakePnlCoin, nativeCoin)
	if err != nil {
		return 0, 0, err
	}
	pool.StateData.NeedTakePnlPc, err = ammmath.CheckedAdd(pool.StateData.NeedTakePnlPc, nativePc)
	if err != nil {
		return 0, 0, err
	}
	pool.StateData.TotalPnlCoin, err = ammmath.CheckedAdd(pool.StateData.TotalPnlCoin, nativeCoin)
	if err != nil {
		return 0, 0, err
	}
	pool.StateData.TotalPnlPc, err = ammmath.CheckedAdd(pool.StateData.TotalPnlPc, nativePc)
	if err != nil {
		return 0, 0, err
	}

	x, err = ammmath.CheckedSub(x1, deltaX)
	if err != nil {
		return 0, 0, err
	}
	y, err = ammmath.CheckedSub(y1, deltaY)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
