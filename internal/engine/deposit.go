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
)

func (e *Engine) deposit(ctx context.Context, args *instruction.Deposit, accounts []*Account) error {
	if err := expectAccounts(accounts, depositBaseAccounts, 1); err != nil {
		return err
	}
	if args.MaxCoinAmount == 0 || args.MaxPcAmount == 0 {
		return errors.ErrInvalidInput
	}
	if err := checkSigner(accounts[depIdxUserOwner]); err != nil {
		return err
	}

	poolAcc := accounts[depIdxPool]
	pool, err := e.loadPool(poolAcc)
	if err != nil {
		return err
	}
	if !pool.GetStatus().DepositAllowed() {
		return errors.ErrInvalidStatus.WithDetails(map[string]any{
			"status": pool.GetStatus().String(),
		})
	}
	if err := e.checkAuthority(accounts[depIdxAuthority].Key, pool.Nonce); err != nil {
		return err
	}
	if err := checkKey(accounts[depIdxOpenOrders], pool.OpenOrders, errors.ErrInvalidOpenOrders); err != nil {
		return err
	}
	if err := checkKey(accounts[depIdxLpMint], pool.LpMint, errors.ErrInvalidPoolMint); err != nil {
		return err
	}
	if err := checkKey(accounts[depIdxMarket], pool.Market, errors.ErrInvalidMarket); err != nil {
		return err
	}
	if err := checkKey(accounts[depIdxCoinMint], pool.CoinVaultMint, errors.ErrInvalidCoinMint); err != nil {
		return err
	}
	if err := checkKey(accounts[depIdxPcMint], pool.PcVaultMint, errors.ErrInvalidPCMint); err != nil {
		return err
	}
	coinVault, pcVault, err := e.checkVaults(accounts[depIdxCoinVault], accounts[depIdxPcVault], pool)
	if err != nil {
		return err
	}
	target, err := e.loadTarget(accounts[depIdxTargetOrders], pool, poolAcc.Key)
	if err != nil {
		return err
	}

	userCoin, err := loadTokenAccount(accounts[depIdxUserCoin])
	if err != nil {
		return err
	}
	userPc, err := loadTokenAccount(accounts[depIdxUserPc])
	if err != nil {
		return err
	}
	userLp, err := loadTokenAccount(accounts[depIdxUserLp])
	if err != nil {
		return err
	}
	if userCoin.Mint != pool.CoinVaultMint || userPc.Mint != pool.PcVaultMint {
		return errors.ErrInvalidUserToken
	}
	if userLp.Mint != pool.LpMint {
		return errors.ErrInvalidTokenLP
	}

	if pool.LpAmount == 0 {
		return errors.ErrNotAllowZeroLP
	}

	// True reserves include value resting at the venue.
	var snapshot *market.State
	if pool.GetStatus().OrderBookAllowed() {
		snapshot, err = e.reconciler.LoadState(ctx, pool.Market, pool.OpenOrders)
		if err != nil {
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
	if _, _, err := e.takePnl(pool, target, coinNet, pcNet); err != nil {
		return err
	}
	// The skim accumulator may have grown; re-net the reserves.
	coinNet, pcNet, err = totalWithoutTakePnl(totalCoin, totalPc, pool)
	if err != nil {
		return err
	}
	if coinNet == 0 || pcNet == 0 {
		return errors.ErrCheckedEmptyFunds
	}

	// Derive the non-base leg from the live ratio, rounding up.
	var deductCoin, deductPc uint64
	if args.BaseSide == 0 {
		deductCoin = args.MaxCoinAmount
		deductPc, err = ammmath.ApplyRatio(deductCoin, pcNet, coinNet, ammmath.Ceiling)
		if err != nil {
			return err
		}
		if deductPc > args.MaxPcAmount {
			e.recordDepositLog(ctx, poolAcc, args, pool, target, coinNet, pcNet, deductCoin, deductPc, 0, false)
			return errors.ErrExceededSlippage
		}
		if args.OtherAmountMin != nil && deductPc < *args.OtherAmountMin {
			e.recordDepositLog(ctx, poolAcc, args, pool, target, coinNet, pcNet, deductCoin, deductPc, 0, false)
			return errors.ErrExceededSlippage
		}
	} else {
		deductPc = args.MaxPcAmount
		deductCoin, err = ammmath.ApplyRatio(deductPc, coinNet, pcNet, ammmath.Ceiling)
		if err != nil {
			return err
		}
		if deductCoin > args.MaxCoinAmount {
			e.recordDepositLog(ctx, poolAcc, args, pool, target, coinNet, pcNet, deductCoin, deductPc, 0, false)
			return errors.ErrExceededSlippage
		}
		if args.OtherAmountMin != nil && deductCoin < *args.OtherAmountMin {
			e.recordDepositLog(ctx, poolAcc, args, pool, target, coinNet, pcNet, deductCoin, deductPc, 0, false)
			return errors.ErrExceededSlippage
		}
	}
	if userCoin.Amount < deductCoin || userPc.Amount < deductPc {
		return errors.ErrInsufficientFunds
	}

	// LP shares proportional to the base-side contribution, rounded down.
	var mintLp uint64
	if args.BaseSide == 0 {
		mintLp, err = ammmath.ShareMintAmount(deductCoin, coinNet, pool.LpAmount, ammmath.Floor)
	} else {
		mintLp, err = ammmath.ShareMintAmount(deductPc, pcNet, pool.LpAmount, ammmath.Floor)
	}
	if err != nil {
		return err
	}
	if mintLp == 0 {
		return errors.ErrNotAllowZeroLP
	}

	whitelist, err := e.loadWhitelist(accounts, depIdxWhitelist)
	if err != nil {
		return err
	}
	coinMint, err := loadMint(accounts[depIdxCoinMint])
	if err != nil {
		return err
	}
	pcMint, err := loadMint(accounts[depIdxPcMint])
	if err != nil {
		return err
	}

	err = e.gate.Transfer(ctx, token.TransferParams{
		TokenProgram: accounts[depIdxTokenProgram].Key,
		Source:       accounts[depIdxUserCoin].Key,
		Mint:         pool.CoinVaultMint,
		Destination:  pool.CoinVault,
		Authority:    accounts[depIdxUserOwner].Key,
		Amount:       deductCoin,
		Decimals:     uint8(pool.CoinDecimals),
	}, coinMint.HookProgram, whitelist)
	if err != nil {
		return err
	}
	err = e.gate.Transfer(ctx, token.TransferParams{
		TokenProgram: accounts[depIdxTokenProgram].Key,
		Source:       accounts[depIdxUserPc].Key,
		Mint:         pool.PcVaultMint,
		Destination:  pool.PcVault,
		Authority:    accounts[depIdxUserOwner].Key,
		Amount:       deductPc,
		Decimals:     uint8(pool.PcDecimals),
	}, pcMint.HookProgram, whitelist)
	if err != nil {
		return err
	}
	err = e.invoker.MintTo(ctx, pool.LpMint, accounts[depIdxUserLp].Key,
		accounts[depIdxAuthority].Key, mintLp, e.authoritySeeds(pool.Nonce))
	if err != nil {
		return errors.ErrTransfer.WithCause(err)
	}

	pool.LpAmount, err = ammmath.CheckedAdd(pool.LpAmount, mintLp)
	if err != nil {
		return err
	}

	// Rewrite the baseline to the post-deposit reserves.
	postCoin, err := ammmath.CheckedAdd(coinNet, deductCoin)
	if err != nil {
		return err
	}
	postPc, err := ammmath.CheckedAdd(pcNet, deductPc)
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

	if err := saveTarget(accounts[depIdxTargetOrders], target); err != nil {
		return err
	}
	if err := savePool(poolAcc, pool); err != nil {
		return err
	}

	e.recordDepositLog(ctx, poolAcc, args, pool, target, coinNet, pcNet, deductCoin, deductPc, mintLp, true)
	e.metrics.IncrementCounter(ctx, metrics.MetricDeposits, 1)
	e.metrics.RecordHistogram(ctx, metrics.MetricDepositLpMinted, float64(mintLp))
	return nil
}

func (e *Engine) recordDepositLog(ctx context.Context, poolAcc *Account, args *instruction.Deposit, pool *state.PoolInfo, target *state.TargetOrders, poolCoin, poolPc, deductCoin, deductPc, mintLp uint64, succeeded bool) {
	e.recorder.Record(ctx, poolAcc.Key, &oplog.DepositLog{
		LogType:    uint8(oplog.LogTypeDeposit),
		MaxCoin:    args.MaxCoinAmount,
		MaxPc:      args.MaxPcAmount,
		Base:       args.BaseSide,
		PoolCoin:   poolCoin,
		PoolPc:     poolPc,
		PoolLp:     pool.LpAmount,
		CalcPnlX:   target.CalcPnlX,
		CalcPnlY:   target.CalcPnlY,
		DeductCoin: deductCoin,
		DeductPc:   deductPc,
		MintLp:     mintLp,
	}, succeeded)
}
