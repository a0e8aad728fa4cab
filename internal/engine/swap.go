package engine

import (
	"context"

	bin "github.com/gagliardetto/binary"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/instruction"
	"github.com/lugondev/go-ammcore/internal/market"
	ammmath "github.com/lugondev/go-ammcore/internal/math"
	"github.com/lugondev/go-ammcore/internal/metrics"
	"github.com/lugondev/go-ammcore/internal/oplog"
	"github.com/lugondev/go-ammcore/internal/state"
	"github.com/lugondev/go-ammcore/internal/token"
)

// Swap directions. Values appear in operation logs.
const (
	swapCoinToPc uint64 = 1
	swapPcToCoin uint64 = 2
)

// swapEnv is the validated context shared by both swap entry points.
type swapEnv struct {
	poolAcc   *Account
	pool      *state.PoolInfo
	target    *state.TargetOrders
	direction uint64

	userSource *token.Account
	snapshot   *market.State

	// Reserves net of the pending skim, in native units.
	coinNet uint64
	pcNet   uint64

	// Direct vault balances net of the pending skim, without venue
	// holdings; the drain decision compares against these.
	coinDirect uint64
	pcDirect   uint64
}

// prepareSwap runs the validation pipeline shared by base-in and base-out:
// account count, signer, status (with self-transitions), identities, and
// reserve computation.
func (e *Engine) prepareSwap(ctx context.Context, accounts []*Account) (*swapEnv, error) {
	if err := expectAccounts(accounts, swapBaseAccounts, 1); err != nil {
		return nil, err
	}
	if err := checkSigner(accounts[swapIdxUserOwner]); err != nil {
		return nil, err
	}

	poolAcc := accounts[swapIdxPool]
	pool, err := e.loadPool(poolAcc)
	if err != nil {
		return nil, err
	}
	if err := pool.CheckSwapPermission(e.now()); err != nil {
		return nil, err
	}
	if err := e.checkAuthority(accounts[swapIdxAuthority].Key, pool.Nonce); err != nil {
		return nil, err
	}
	if err := checkKey(accounts[swapIdxOpenOrders], pool.OpenOrders, errors.ErrInvalidOpenOrders); err != nil {
		return nil, err
	}
	if err := checkKey(accounts[swapIdxMarket], pool.Market, errors.ErrInvalidMarket); err != nil {
		return nil, err
	}
	if err := checkKey(accounts[swapIdxMarketProgram], pool.MarketProgram, errors.ErrInvalidMarketProgram); err != nil {
		return nil, err
	}
	if err := checkKey(accounts[swapIdxCoinMint], pool.CoinVaultMint, errors.ErrInvalidCoinMint); err != nil {
		return nil, err
	}
	if err := checkKey(accounts[swapIdxPcMint], pool.PcVaultMint, errors.ErrInvalidPCMint); err != nil {
		return nil, err
	}
	coinVault, pcVault, err := e.checkVaults(accounts[swapIdxCoinVault], accounts[swapIdxPcVault], pool)
	if err != nil {
		return nil, err
	}
	target, err := e.loadTarget(accounts[swapIdxTargetOrders], pool, poolAcc.Key)
	if err != nil {
		return nil, err
	}

	userSource, err := loadTokenAccount(accounts[swapIdxUserSource])
	if err != nil {
		return nil, err
	}
	userDest, err := loadTokenAccount(accounts[swapIdxUserDest])
	if err != nil {
		return nil, err
	}

	// Direction follows from the source leg; the destination must be the
	// opposite leg.
	var direction uint64
	switch {
	case userSource.Mint == pool.CoinVaultMint && userDest.Mint == pool.PcVaultMint:
		direction = swapCoinToPc
	case userSource.Mint == pool.PcVaultMint && userDest.Mint == pool.CoinVaultMint:
		direction = swapPcToCoin
	default:
		return nil, errors.ErrInvalidUserToken
	}

	var snapshot *market.State
	if pool.GetStatus().OrderBookAllowed() {
		snapshot, err = e.reconciler.LoadState(ctx, pool.Market, pool.OpenOrders)
		if err != nil {
			return nil, err
		}
	}
	totalCoin, totalPc, err := e.reconciler.TotalReserves(coinVault.Amount, pcVault.Amount, snapshot)
	if err != nil {
		return nil, err
	}
	coinNet, pcNet, err := totalWithoutTakePnl(totalCoin, totalPc, pool)
	if err != nil {
		return nil, err
	}
	coinDirect, pcDirect, err := totalWithoutTakePnl(coinVault.Amount, pcVault.Amount, pool)
	if err != nil {
		return nil, err
	}

	return &swapEnv{
		poolAcc:    poolAcc,
		pool:       pool,
		target:     target,
		direction:  direction,
		userSource: userSource,
		snapshot:   snapshot,
		coinNet:    coinNet,
		pcNet:      pcNet,
		coinDirect: coinDirect,
		pcDirect:   pcDirect,
	}, nil
}

// drainForOutput cancels resting orders on the side holding the output leg
// when the vault's direct balance cannot cover amountOut, then settles.
func (e *Engine) drainForOutput(ctx context.Context, env *swapEnv, amountOut uint64) error {
	if env.snapshot == nil {
		return nil
	}
	var direct uint64
	var mode market.DrainMode
	if env.direction == swapCoinToPc {
		direct = env.pcDirect
		mode = market.DrainBids // pc rests on the bid side
	} else {
		direct = env.coinDirect
		mode = market.DrainAsks // coin rests on the ask side
	}
	if direct >= amountOut {
		return nil
	}
	return e.reconciler.CancelAndSettle(ctx, env.pool.Market, env.pool.OpenOrders, mode, nil)
}

// executeSwapTransfers moves amountIn from the user into the input-leg
// vault and amountOut from the output-leg vault to the user.
func (e *Engine) executeSwapTransfers(ctx context.Context, env *swapEnv, accounts []*Account, amountIn, amountOut uint64) error {
	whitelist, err := e.loadWhitelist(accounts, swapIdxWhitelist)
	if err != nil {
		return err
	}
	coinMint, err := loadMint(accounts[swapIdxCoinMint])
	if err != nil {
		return err
	}
	pcMint, err := loadMint(accounts[swapIdxPcMint])
	if err != nil {
		return err
	}

	pool := env.pool
	inMint, outMint := coinMint, pcMint
	inVault, outVault := pool.CoinVault, pool.PcVault
	inMintKey, outMintKey := pool.CoinVaultMint, pool.PcVaultMint
	inDecimals, outDecimals := uint8(pool.CoinDecimals), uint8(pool.PcDecimals)
	if env.direction == swapPcToCoin {
		inMint, outMint = pcMint, coinMint
		inVault, outVault = pool.PcVault, pool.CoinVault
		inMintKey, outMintKey = pool.PcVaultMint, pool.CoinVaultMint
		inDecimals, outDecimals = outDecimals, inDecimals
	}

	err = e.gate.Transfer(ctx, token.TransferParams{
		TokenProgram: accounts[swapIdxTokenProgram].Key,
		Source:       accounts[swapIdxUserSource].Key,
		Mint:         inMintKey,
		Destination:  inVault,
		Authority:    accounts[swapIdxUserOwner].Key,
		Amount:       amountIn,
		Decimals:     inDecimals,
	}, inMint.HookProgram, whitelist)
	if err != nil {
		return err
	}
	return e.gate.Transfer(ctx, token.TransferParams{
		TokenProgram:   accounts[swapIdxTokenProgram].Key,
		Source:         outVault,
		Mint:           outMintKey,
		Destination:    accounts[swapIdxUserDest].Key,
		Authority:      accounts[swapIdxAuthority].Key,
		Amount:         amountOut,
		Decimals:       outDecimals,
		AuthoritySeeds: e.authoritySeeds(pool.Nonce),
	}, outMint.HookProgram, whitelist)
}

func addU128(v *bin.Uint128, amount uint64) {
	lo := v.Lo + amount
	if lo < v.Lo {
		v.Hi++
	}
	v.Lo = lo
}

// applySwapCounters updates the running volume and fee counters.
func applySwapCounters(pool *state.PoolInfo, direction, amountIn, amountOut, fee uint64) {
	sd := &pool.StateData
	if direction == swapCoinToPc {
		addU128(&sd.SwapCoinInAmount, amountIn)
		addU128(&sd.SwapPcOutAmount, amountOut)
		sd.SwapAccCoinFee += fee
	} else {
		addU128(&sd.SwapPcInAmount, amountIn)
		addU128(&sd.SwapCoinOutAmount, amountOut)
		sd.SwapAccPcFee += fee
	}
}

func (e *Engine) swapBaseIn(ctx context.Context, args *instruction.SwapBaseIn, accounts []*Account) error {
	if args.AmountIn == 0 {
		return errors.ErrInvalidInput
	}
	env, err := e.prepareSwap(ctx, accounts)
	if err != nil {
		return err
	}
	pool := env.pool

	fee, err := ammmath.Fee(args.AmountIn, pool.Fees.SwapFeeNumerator, pool.Fees.SwapFeeDenominator)
	if err != nil {
		return err
	}
	netIn, err := ammmath.CheckedSub(args.AmountIn, fee)
	if err != nil {
		return err
	}

	totalIn, totalOut := env.coinNet, env.pcNet
	if env.direction == swapPcToCoin {
		totalIn, totalOut = env.pcNet, env.coinNet
	}
	amountOut, err := ammmath.Exchange(netIn, totalIn, totalOut, ammmath.Floor)
	if err != nil {
		return err
	}

	logRecord := &oplog.SwapBaseInLog{
		LogType:    uint8(oplog.LogTypeSwapBaseIn),
		AmountIn:   args.AmountIn,
		MinimumOut: args.MinimumAmountOut,
		Direction:  env.direction,
		UserSource: env.userSource.Amount,
		PoolCoin:   env.coinNet,
		PoolPc:     env.pcNet,
		OutAmount:  amountOut,
	}
	if amountOut < args.MinimumAmountOut {
		e.recorder.Record(ctx, env.poolAcc.Key, logRecord, false)
		return errors.ErrExceededSlippage.WithDetails(map[string]any{
			"amount_out": amountOut,
			"minimum":    args.MinimumAmountOut,
		})
	}
	if amountOut >= totalOut {
		e.recorder.Record(ctx, env.poolAcc.Key, logRecord, false)
		return errors.ErrInsufficientFunds
	}
	if env.userSource.Amount < args.AmountIn {
		return errors.ErrInsufficientFunds
	}

	if err := e.drainForOutput(ctx, env, amountOut); err != nil {
		return err
	}
	if err := e.executeSwapTransfers(ctx, env, accounts, args.AmountIn, amountOut); err != nil {
		return err
	}

	applySwapCounters(pool, env.direction, args.AmountIn, amountOut, fee)
	if err := savePool(env.poolAcc, pool); err != nil {
		return err
	}

	e.recorder.Record(ctx, env.poolAcc.Key, logRecord, true)
	e.metrics.IncrementCounter(ctx, metrics.MetricSwapBaseIn, 1)
	e.metrics.RecordHistogram(ctx, metrics.MetricSwapFee, float64(fee))
	return nil
}

func (e *Engine) swapBaseOut(ctx context.Context, args *instruction.SwapBaseOut, accounts []*Account) error {
	if args.AmountOut == 0 {
		return errors.ErrInvalidInput
	}
	env, err := e.prepareSwap(ctx, accounts)
	if err != nil {
		return err
	}
	pool := env.pool

	totalIn, totalOut := env.coinNet, env.pcNet
	if env.direction == swapPcToCoin {
		totalIn, totalOut = env.pcNet, env.coinNet
	}
	netIn, err := ammmath.ExchangeBaseOut(args.AmountOut, totalIn, totalOut, ammmath.Ceiling)
	if err != nil {
		return err
	}
	// Gross the net input back up so the fee comes out of the amount the
	// user pays: input = ceil(net * den / (den - num)).
	feeDen := pool.Fees.SwapFeeDenominator
	feeNum := pool.Fees.SwapFeeNumerator
	if feeDen <= feeNum {
		return errors.ErrInvalidParamsSet
	}
	amountIn, err := ammmath.ApplyRatio(netIn, feeDen, feeDen-feeNum, ammmath.Ceiling)
	if err != nil {
		return err
	}
	fee, err := ammmath.CheckedSub(amountIn, netIn)
	if err != nil {
		return err
	}

	logRecord := &oplog.SwapBaseOutLog{
		LogType:    uint8(oplog.LogTypeSwapBaseOut),
		MaxIn:      args.MaxAmountIn,
		AmountOut:  args.AmountOut,
		Direction:  env.direction,
		UserSource: env.userSource.Amount,
		PoolCoin:   env.coinNet,
		PoolPc:     env.pcNet,
		DeductIn:   amountIn,
	}
	if amountIn > args.MaxAmountIn {
		e.recorder.Record(ctx, env.poolAcc.Key, logRecord, false)
		return errors.ErrExceededSlippage.WithDetails(map[string]any{
			"required_in": amountIn,
			"maximum":     args.MaxAmountIn,
		})
	}
	if env.userSource.Amount < amountIn {
		return errors.ErrInsufficientFunds
	}

	if err := e.drainForOutput(ctx, env, args.AmountOut); err != nil {
		return err
	}
	if err := e.executeSwapTransfers(ctx, env, accounts, amountIn, args.AmountOut); err != nil {
		return err
	}

	applySwapCounters(pool, env.direction, amountIn, args.AmountOut, fee)
	if err := savePool(env.poolAcc, pool); err != nil {
		return err
	}

	e.recorder.Record(ctx, env.poolAcc.Key, logRecord, true)
	e.metrics.IncrementCounter(ctx, metrics.MetricSwapBaseOut, 1)
	e.metrics.RecordHistogram(ctx, metrics.MetricSwapFee, float64(fee))
	return nil
}
