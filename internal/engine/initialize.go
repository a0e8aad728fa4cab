package engine

import (
	"context"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/instruction"
	ammmath "github.com/lugondev/go-ammcore/internal/math"
	"github.com/lugondev/go-ammcore/internal/metrics"
	"github.com/lugondev/go-ammcore/internal/oplog"
	"github.com/lugondev/go-ammcore/internal/state"
	"github.com/lugondev/go-ammcore/internal/token"
)

// Initialize2 account indexes.
const (
	initIdxTokenProgram = iota
	initIdxPool
	initIdxAuthority
	initIdxOpenOrders
	initIdxTargetOrders
	initIdxLpMint
	initIdxCoinMint
	initIdxPcMint
	initIdxCoinVault
	initIdxPcVault
	initIdxMarket
	initIdxMarketProgram
	initIdxUserOwner
	initIdxUserCoin
	initIdxUserPc
	initIdxUserLp

	initAccounts
)

// initIdxWhitelist is the optional hook whitelist account, required when
// either mint carries a transfer hook.
const initIdxWhitelist = initAccounts

// defaultSysDecimalValue is the common normalization scale when neither
// leg exceeds nine decimals.
const defaultSysDecimalValue = 1_000_000_000

func (e *Engine) initialize2(ctx context.Context, args *instruction.Initialize2, accounts []*Account) error {
	if err := expectAccounts(accounts, initAccounts, 1); err != nil {
		return err
	}
	if args.InitCoinAmount == 0 || args.InitPcAmount == 0 {
		return errors.ErrInvalidInput
	}
	if err := checkSigner(accounts[initIdxUserOwner]); err != nil {
		return err
	}

	poolAcc := accounts[initIdxPool]
	if poolAcc.Owner != e.programID {
		return errors.ErrInvalidAmmAccountOwner
	}
	if existing, err := state.DecodePoolInfo(poolAcc.Data); err == nil &&
		existing.GetStatus() != state.StatusUninitialized {
		return errors.ErrAlreadyInUse
	}
	if err := e.checkAuthority(accounts[initIdxAuthority].Key, uint64(args.Nonce)); err != nil {
		return err
	}

	coinMint, err := loadMint(accounts[initIdxCoinMint])
	if err != nil {
		return err
	}
	pcMint, err := loadMint(accounts[initIdxPcMint])
	if err != nil {
		return err
	}
	if coinMint.FreezeAuthority != nil || pcMint.FreezeAuthority != nil {
		return errors.ErrInvalidFreezeAuthority
	}
	coinVault, err := loadTokenAccount(accounts[initIdxCoinVault])
	if err != nil {
		return err
	}
	pcVault, err := loadTokenAccount(accounts[initIdxPcVault])
	if err != nil {
		return err
	}
	if coinVault.Mint != accounts[initIdxCoinMint].Key {
		return errors.ErrInvalidCoinVault
	}
	if pcVault.Mint != accounts[initIdxPcMint].Key {
		return errors.ErrInvalidPCVault
	}

	sysScale := uint64(defaultSysDecimalValue)
	maxDecimals := coinMint.Decimals
	if pcMint.Decimals > maxDecimals {
		maxDecimals = pcMint.Decimals
	}
	for d := uint8(9); d < maxDecimals; d++ {
		sysScale *= 10
	}

	lpAmount, err := ammmath.InitialShares(args.InitCoinAmount, args.InitPcAmount)
	if err != nil {
		return err
	}
	if lpAmount == 0 {
		return errors.ErrNotAllowZeroLP
	}

	now := e.now()
	status := state.StatusInitialized
	if args.OpenTime > now {
		status = state.StatusWaitingTrade
	}

	pool := &state.PoolInfo{
		Nonce:           uint64(args.Nonce),
		OrderNum:        7,
		Depth:           3,
		CoinDecimals:    uint64(coinMint.Decimals),
		PcDecimals:      uint64(pcMint.Decimals),
		SysDecimalValue: sysScale,
		Fees:            state.DefaultFees(),
		CoinVault:       accounts[initIdxCoinVault].Key,
		PcVault:         accounts[initIdxPcVault].Key,
		CoinVaultMint:   accounts[initIdxCoinMint].Key,
		PcVaultMint:     accounts[initIdxPcMint].Key,
		LpMint:          accounts[initIdxLpMint].Key,
		OpenOrders:      accounts[initIdxOpenOrders].Key,
		Market:          accounts[initIdxMarket].Key,
		MarketProgram:   accounts[initIdxMarketProgram].Key,
		TargetOrders:    accounts[initIdxTargetOrders].Key,
		AmmOwner:        accounts[initIdxUserOwner].Key,
		LpAmount:        lpAmount,
	}
	pool.SetStatus(status)
	pool.StateData.PoolOpenTime = args.OpenTime

	target := state.NewTargetOrders(poolAcc.Key)
	bx, err := ammmath.Normalize(args.InitCoinAmount, coinMint.Decimals, sysScale)
	if err != nil {
		return err
	}
	by, err := ammmath.Normalize(args.InitPcAmount, pcMint.Decimals, sysScale)
	if err != nil {
		return err
	}
	target.SetBaseline(bx, by)

	whitelist, err := e.loadWhitelist(accounts, initIdxWhitelist)
	if err != nil {
		return err
	}

	// Fund the vaults and mint the initial shares. Hooked mints go through
	// the gate like any other funding transfer.
	err = e.gate.Transfer(ctx, token.TransferParams{
		TokenProgram: accounts[initIdxTokenProgram].Key,
		Source:       accounts[initIdxUserCoin].Key,
		Mint:         pool.CoinVaultMint,
		Destination:  pool.CoinVault,
		Authority:    accounts[initIdxUserOwner].Key,
		Amount:       args.InitCoinAmount,
		Decimals:     coinMint.Decimals,
	}, coinMint.HookProgram, whitelist)
	if err != nil {
		return err
	}
	err = e.gate.Transfer(ctx, token.TransferParams{
		TokenProgram: accounts[initIdxTokenProgram].Key,
		Source:       accounts[initIdxUserPc].Key,
		Mint:         pool.PcVaultMint,
		Destination:  pool.PcVault,
		Authority:    accounts[initIdxUserOwner].Key,
		Amount:       args.InitPcAmount,
		Decimals:     pcMint.Decimals,
	}, pcMint.HookProgram, whitelist)
	if err != nil {
		return err
	}
	err = e.invoker.MintTo(ctx, pool.LpMint, accounts[initIdxUserLp].Key,
		accounts[initIdxAuthority].Key, lpAmount, e.authoritySeeds(pool.Nonce))
	if err != nil {
		return errors.ErrTransfer.WithCause(err)
	}

	if err := saveTarget(accounts[initIdxTargetOrders], target); err != nil {
		return err
	}
	if err := savePool(poolAcc, pool); err != nil {
		return err
	}

	e.recorder.Record(ctx, poolAcc.Key, &oplog.InitLog{
		LogType:      uint8(oplog.LogTypeInit),
		Time:         now,
		PcDecimals:   pcMint.Decimals,
		CoinDecimals: coinMint.Decimals,
		PcLotSize:    pool.PcLotSize,
		CoinLotSize:  pool.CoinLotSize,
		PcAmount:     args.InitPcAmount,
		CoinAmount:   args.InitCoinAmount,
		Market:       pool.Market,
	}, true)
	e.metrics.IncrementCounter(ctx, metrics.MetricPoolInitialized, 1)
	return nil
}
