package engine

import (
	"context"
	"encoding/json"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/instruction"
	ammmath "github.com/lugondev/go-ammcore/internal/math"
	"github.com/lugondev/go-ammcore/internal/state"
)

// SimulateInfo account indexes.
const (
	simIdxPool = iota
	simIdxOpenOrders
	simIdxCoinVault
	simIdxPcVault
	simIdxLpMint
	simIdxMarket

	simAccounts
)

// PoolSnapshot is the read-only view simulateInfo reports.
type PoolSnapshot struct {
	Status       string `json:"status"`
	CoinDecimals uint64 `json:"coin_decimals"`
	PcDecimals   uint64 `json:"pc_decimals"`
	LpDecimals   uint64 `json:"lp_decimals"`
	PoolCoin     uint64 `json:"pool_coin"`
	PoolPc       uint64 `json:"pool_pc"`
	LpSupply     uint64 `json:"lp_supply"`
	PoolOpenTime uint64 `json:"pool_open_time"`
}

// SwapQuote is a no-side-effect swap computation.
type SwapQuote struct {
	AmountIn  uint64 `json:"amount_in"`
	AmountOut uint64 `json:"amount_out"`
	Fee       uint64 `json:"fee"`
}

// QuoteBaseIn prices an exact-input swap against the given net reserves.
// totalIn is the reserve of the leg being paid in, totalOut the leg paid
// out.
func QuoteBaseIn(fees *state.Fees, amountIn, totalIn, totalOut uint64) (*SwapQuote, error) {
	if amountIn == 0 {
		return nil, errors.ErrInvalidInput
	}
	fee, err := ammmath.Fee(amountIn, fees.SwapFeeNumerator, fees.SwapFeeDenominator)
	if err != nil {
		return nil, err
	}
	netIn, err := ammmath.CheckedSub(amountIn, fee)
	if err != nil {
		return nil, err
	}
	amountOut, err := ammmath.Exchange(netIn, totalIn, totalOut, ammmath.Floor)
	if err != nil {
		return nil, err
	}
	if amountOut >= totalOut {
		return nil, errors.ErrInsufficientFunds
	}
	return &SwapQuote{AmountIn: amountIn, AmountOut: amountOut, Fee: fee}, nil
}

// QuoteBaseOut prices an exact-output swap against the given net reserves.
func QuoteBaseOut(fees *state.Fees, amountOut, totalIn, totalOut uint64) (*SwapQuote, error) {
	if amountOut == 0 {
		return nil, errors.ErrInvalidInput
	}
	netIn, err := ammmath.ExchangeBaseOut(amountOut, totalIn, totalOut, ammmath.Ceiling)
	if err != nil {
		return nil, err
	}
	if fees.SwapFeeDenominator <= fees.SwapFeeNumerator {
		return nil, errors.ErrInvalidParamsSet
	}
	amountIn, err := ammmath.ApplyRatio(netIn, fees.SwapFeeDenominator,
		fees.SwapFeeDenominator-fees.SwapFeeNumerator, ammmath.Ceiling)
	if err != nil {
		return nil, err
	}
	return &SwapQuote{AmountIn: amountIn, AmountOut: amountOut, Fee: amountIn - netIn}, nil
}

// simulateInfo computes pool state or a swap quote and reports it through
// the logger. Nothing is written back; the account list carries no signer.
func (e *Engine) simulateInfo(ctx context.Context, args *instruction.SimulateInfo, accounts []*Account) error {
	if err := expectAccounts(accounts, simAccounts, 0); err != nil {
		return err
	}

	poolAcc := accounts[simIdxPool]
	pool, err := e.loadPool(poolAcc)
	if err != nil {
		return err
	}
	if err := checkKey(accounts[simIdxOpenOrders], pool.OpenOrders, errors.ErrInvalidOpenOrders); err != nil {
		return err
	}
	if err := checkKey(accounts[simIdxLpMint], pool.LpMint, errors.ErrInvalidPoolMint); err != nil {
		return err
	}
	if err := checkKey(accounts[simIdxMarket], pool.Market, errors.ErrInvalidMarket); err != nil {
		return err
	}
	coinVault, pcVault, err := e.checkVaults(accounts[simIdxCoinVault], accounts[simIdxPcVault], pool)
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

	var payload any
	switch instruction.SimulateParam(args.Param) {
	case instruction.SimulatePoolInfo, instruction.SimulateRunCrankInfo:
		payload = &PoolSnapshot{
			Status:       pool.GetStatus().String(),
			CoinDecimals: pool.CoinDecimals,
			PcDecimals:   pool.PcDecimals,
			LpDecimals:   pool.CoinDecimals,
			PoolCoin:     coinNet,
			PoolPc:       pcNet,
			LpSupply:     pool.LpAmount,
			PoolOpenTime: pool.StateData.PoolOpenTime,
		}
	case instruction.SimulateSwapBaseIn:
		if args.SwapBaseIn == nil {
			return errors.ErrInvalidInput
		}
		payload, err = QuoteBaseIn(&pool.Fees, args.SwapBaseIn.AmountIn, coinNet, pcNet)
		if err != nil {
			return err
		}
	case instruction.SimulateSwapBaseOut:
		if args.SwapBaseOut == nil {
			return errors.ErrInvalidInput
		}
		payload, err = QuoteBaseOut(&pool.Fees, args.SwapBaseOut.AmountOut, coinNet, pcNet)
		if err != nil {
			return err
		}
	default:
		return errors.ErrInvalidInput.WithDetails(map[string]any{
			"param": args.Param,
		})
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return errors.ErrConversionFailure.WithCause(err)
	}
	e.GetLogger().Info("simulate result",
		"pool", poolAcc.Key.String(),
		"param", args.Param,
		"result", string(encoded),
	)
	return nil
}
