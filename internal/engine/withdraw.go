package engine

import (
	"context"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/instruction"
	"github.com/lugondev/go-ammcore/internal/market"
	ammmath "github.com/lugondev/go-ammcore/internal/math"
	"github.com/lugondev/go-ammcore/internal/metrics"
	"github.com/lugondev/go-ammcore/internal/oplog"
	"github.com/lugondev/go-ammcore/internal/state"
	"github.com/lugondev/go-ammcore/internal/token"
	"github.com/lugondev/go-ammcore/pkg/types"
)

func (e *Engine) withdraw(ctx context.Context, args *instruction.Withdraw, accounts []*Account) error {
	if err := expectAccounts(accounts, withdrawBaseAccounts, 3); err != nil {
		return err
	}
	if args.Amount == 0 {
		return errors.ErrInvalidInput
	}
	if err := checkSigner(accounts[wdIdxUserOwner]); err != nil {
		return err
	}

	poolAcc := accounts[wdIdxPool]
	pool, err := e.loadPool(poolAcc)
	if err != nil {
		return err
	}
	status := pool.GetStatus()
	if !status.WithdrawAllowed() {
		return errors.ErrInvalidStatus.WithDetails(map[string]any{
			"status": status.String(),
		})
	}
	if err := e.checkAuthority(accounts[wdIdxAuthority].Key, pool.Nonce); err != nil {
		return err
	}
	if err := checkKey(accounts[wdIdxOpenOrders], pool.OpenOrders, errors.ErrInvalidOpenOrders); err != nil {
		return err
	}
	if err := checkKey(accounts[wdIdxLpMint], pool.LpMint, errors.ErrInvalidPoolMint); err != nil {
		return err
	}
	if err := checkKey(accounts[wdIdxMarket], pool.Market, errors.ErrInvalidMarket); err != nil {
		return err
	}
	if err := checkKey(accounts[wdIdxMarketProgram], pool.MarketProgram, errors.ErrInvalidMarketProgram); err != nil {
		return err
	}
	if err := checkKey(accounts[wdIdxCoinMint], pool.CoinVaultMint, errors.ErrInvalidCoinMint); err != nil {
		return err
	}
	if err := checkKey(accounts[wdIdxPcMint], pool.PcVaultMint, errors.ErrInvalidPCMint); err != nil {
		return err
	}
	coinVault, pcVault, err := e.checkVaults(accounts[wdIdxCoinVault], accounts[wdIdxPcVault], pool)
	if err != nil {
		return err
	}
	target, err := e.loadTarget(accounts[wdIdxTargetOrders], pool, poolAcc.Key)
	if err != nil {
		return err
	}

	userLp, err := loadTokenAccount(accounts[wdIdxUserLp])
	if err != nil {
		return err
	}
	if userLp.Mint != pool.LpMint {
		return errors.ErrInvalidTokenLP
	}
	userCoin, err := loadTokenAccount(accounts[wdIdxUserCoin])
	if err != nil {
		return err
	}
	userPc, err := loadTokenAccount(accounts[wdIdxUserPc])
	if err != nil {
		return err
	}
	if userCoin.Mint != pool.CoinVaultMint || userPc.Mint != pool.PcVaultMint {
		return errors.ErrInvalidUserToken
	}
	lpMint, err := loadMint(accounts[wdIdxLpMint])
	if err != nil {
		return err
	}

	if args.Amount > userLp.Amount {
		return errors.ErrInsufficientFunds
	}
	if args.Amount > lpMint.Supply {
		return errors.ErrInsufficientFunds
	}
	// Redeeming the entire supply would leave a zero-share pool.
	if args.Amount >= pool.LpAmount {
		return errors.ErrNotAllowZeroLP
	}

	// A withdrawal must settle against true reserves: flatten the book
	// first, then count everything the venue was holding as vault value.
	referrer := e.referrerWallet(accounts, pool)
	var snapshot *market.State
	if status.OrderBookAllowed() {
		snapshot, err = e.reconciler.LoadState(ctx, pool.Market, pool.OpenOrders)
		if err != nil {
			return err
		}
		if err := e.reconciler.CancelAndSettle(ctx, pool.Market, pool.OpenOrders, market.DrainBoth, referrer); err != nil {
			return err
		}
	}
	totalCoin, totalPc, err := e.reconciler.TotalReserves(coinVault.Amount, pcVault.Amount, snapshot)
	if err != nil {
		return err
	}
	coinNet, pcNet, err := totalWithoutTakePnl(totalCoin, totalPc, pool)
	if err != nil {
		return err
	}

	// Wind-down pools skip the skim.
	reconciled := false
	if status != state.StatusWithdrawOnly {
		if _, _, err := e.takePnl(pool, target, coinNet, pcNet); err != nil {
			return err
		}
		coinNet, pcNet, err = totalWithoutTakePnl(totalCoin, totalPc, pool)
		if err != nil {
			return err
		}
		reconciled = true
	}

	coinOut, err := ammmath.ShareRedeemAmount(args.Amount, pool.LpAmount, coinNet, ammmath.Floor)
	if err != nil {
		return err
	}
	pcOut, err := ammmath.ShareRedeemAmount(args.Amount, pool.LpAmount, pcNet, ammmath.Floor)
	if err != nil {
		return err
	}
	if args.MinCoinAmount != nil && coinOut < *args.MinCoinAmount {
		e.recordWithdrawLog(ctx, poolAcc, args, pool, target, userLp, coinNet, pcNet, coinOut, pcOut, false)
		return errors.ErrExceededSlippage
	}
	if args.MinPcAmount != nil && pcOut < *args.MinPcAmount {
		e.recordWithdrawLog(ctx, poolAcc, args, pool, target, userLp, coinNet, pcNet, coinOut, pcOut, false)
		return errors.ErrExceededSlippage
	}
	// The redeemed amounts must be physically satisfiable without
	// touching the earmarked skim.
	if coinOut >= coinNet || pcOut >= pcNet {
		return errors.ErrTakePnl
	}

	if err := e.invoker.Burn(ctx, accounts[wdIdxUserLp].Key, pool.LpMint,
		accounts[wdIdxUserOwner].Key, args.Amount); err != nil {
		return errors.ErrTransfer.WithCause(err)
	}

	whitelist, err := e.loadWhitelist(accounts, wdIdxWhitelist)
	if err != nil {
		return err
	}
	coinMint, err := loadMint(accounts[wdIdxCoinMint])
	if err != nil {
		return err
	}
	pcMint, err := loadMint(accounts[wdIdxPcMint])
	if err != nil {
		return err
	}
	seeds := e.authoritySeeds(pool.Nonce)
	err = e.gate.Transfer(ctx, token.TransferParams{
		TokenProgram:   accounts[wdIdxTokenProgram].Key,
		Source:         pool.CoinVault,
		Mint:           pool.CoinVaultMint,
		Destination:    accounts[wdIdxUserCoin].Key,
		Authority:      accounts[wdIdxAuthority].Key,
		Amount:         coinOut,
		Decimals:       uint8(pool.CoinDecimals),
		AuthoritySeeds: seeds,
	}, coinMint.HookProgram, whitelist)
	if err != nil {
		return err
	}
	err = e.gate.Transfer(ctx, token.TransferParams{
		TokenProgram:   accounts[wdIdxTokenProgram].Key,
		Source:         pool.PcVault,
		Mint:           pool.PcVaultMint,
		Destination:    accounts[wdIdxUserPc].Key,
		Authority:      accounts[wdIdxAuthority].Key,
		Amount:         pcOut,
		Decimals:       uint8(pool.PcDecimals),
		AuthoritySeeds: seeds,
	}, pcMint.HookProgram, whitelist)
	if err != nil {
		return err
	}

	pool.LpAmount, err = ammmath.CheckedSub(pool.LpAmount, args.Amount)
	if err != nil {
		return err
	}

	if reconciled {
		postCoin, err := ammmath.CheckedSub(coinNet, coinOut)
		if err != nil {
			return err
		}
		postPc, err := ammmath.CheckedSub(pcNet, pcOut)
		if err != nil {
			return err
		}
		bx, err := ammmath.Normalize(postCoin, uint8(pool.CoinDecimals), pool.SysDecimalValue)
		if err != nil {
			return err
		}
		by, err := ammmath.Normalize(postPc, uint8(pool.PcDecimals), pool.SysDecimalValue)
		if err != nil {
			return err
		}
		target.SetBaseline(bx, by)
		if err := saveTarget(accounts[wdIdxTargetOrders], target); err != nil {
			return err
		}
	}
	if err := savePool(poolAcc, pool); err != nil {
		return err
	}

	e.recordWithdrawLog(ctx, poolAcc, args, pool, target, userLp, coinNet, pcNet, coinOut, pcOut, true)
	e.metrics.IncrementCounter(ctx, metrics.MetricWithdraws, 1)
	e.metrics.RecordHistogram(ctx, metrics.MetricWithdrawLpBurned, float64(args.Amount))
	return nil
}

// referrerWallet returns the optional referrer pc wallet when supplied.
func (e *Engine) referrerWallet(accounts []*Account, pool *state.PoolInfo) *types.Pubkey {
	if wdIdxReferrerPc >= len(accounts) {
		return nil
	}
	acc := accounts[wdIdxReferrerPc]
	wallet, err := loadTokenAccount(acc)
	if err != nil || wallet.Mint != pool.PcVaultMint {
		return nil
	}
	key := acc.Key
	return &key
}

func (e *Engine) recordWithdrawLog(ctx context.Context, poolAcc *Account, args *instruction.Withdraw, pool *state.PoolInfo, target *state.TargetOrders, userLp *token.Account, poolCoin, poolPc, outCoin, outPc uint64, succeeded bool) {
	e.recorder.Record(ctx, poolAcc.Key, &oplog.WithdrawLog{
		LogType:    uint8(oplog.LogTypeWithdraw),
		WithdrawLp: args.Amount,
		UserLp:     userLp.Amount,
		PoolCoin:   poolCoin,
		PoolPc:     poolPc,
		PoolLp:     pool.LpAmount,
		CalcPnlX:   target.CalcPnlX,
		CalcPnlY:   target.CalcPnlY,
		OutCoin:    outCoin,
		OutPc:      outPc,
	}, succeeded)
}
