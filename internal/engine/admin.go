package engine

import (
	"context"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/instruction"
	"github.com/lugondev/go-ammcore/internal/metrics"
	"github.com/lugondev/go-ammcore/internal/state"
	"github.com/lugondev/go-ammcore/internal/token"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// SetParams account indexes.
const (
	spIdxPool = iota
	spIdxOwner
	spIdxTargetOrders // optional, required for ParamLastOrderDistance

	spBaseAccounts = 2
)

func (e *Engine) setParams(ctx context.Context, args *instruction.SetParams, accounts []*Account) error {
	if err := expectAccounts(accounts, spBaseAccounts, 1); err != nil {
		return err
	}
	if err := checkSigner(accounts[spIdxOwner]); err != nil {
		return err
	}

	poolAcc := accounts[spIdxPool]
	pool, err := e.loadPool(poolAcc)
	if err != nil {
		return err
	}
	if accounts[spIdxOwner].Key != pool.AmmOwner {
		return errors.ErrInvalidOwner
	}

	needValue := func() (uint64, error) {
		if args.Value == nil {
			return 0, errors.ErrInvalidParamsSet
		}
		return *args.Value, nil
	}

	switch instruction.SetParamsTarget(args.Param) {
	case instruction.ParamStatus:
		v, err := needValue()
		if err != nil {
			return err
		}
		next := state.Status(v)
		if !next.Valid() || next == state.StatusUninitialized {
			return errors.ErrInvalidParamsSet
		}
		pool.SetStatus(next)
	case instruction.ParamState:
		v, err := needValue()
		if err != nil {
			return err
		}
		pool.State = v
	case instruction.ParamOrderNum:
		v, err := needValue()
		if err != nil {
			return err
		}
		pool.OrderNum = v
	case instruction.ParamDepth:
		v, err := needValue()
		if err != nil {
			return err
		}
		pool.Depth = v
	case instruction.ParamAmountWave:
		v, err := needValue()
		if err != nil {
			return err
		}
		pool.AmountWave = v
	case instruction.ParamMinPriceMultiplier:
		v, err := needValue()
		if err != nil {
			return err
		}
		pool.MinPriceMultiplier = v
	case instruction.ParamMaxPriceMultiplier:
		v, err := needValue()
		if err != nil {
			return err
		}
		pool.MaxPriceMultiplier = v
	case instruction.ParamMinSize:
		v, err := needValue()
		if err != nil {
			return err
		}
		pool.MinSize = v
	case instruction.ParamVolMaxCutRatio:
		v, err := needValue()
		if err != nil {
			return err
		}
		pool.VolMaxCutRatio = v
	case instruction.ParamFees:
		if args.Fees == nil {
			return errors.ErrInvalidParamsSet
		}
		if err := args.Fees.Validate(); err != nil {
			return err
		}
		pool.Fees = *args.Fees
	case instruction.ParamAmmOwner:
		if args.NewPubkey == nil || *args.NewPubkey == types.ZeroPubkey {
			return errors.ErrInvalidParamsSet
		}
		pool.AmmOwner = *args.NewPubkey
	case instruction.ParamSetOpenTime:
		v, err := needValue()
		if err != nil {
			return err
		}
		pool.StateData.PoolOpenTime = v
	case instruction.ParamClearOpenTime:
		pool.StateData.PoolOpenTime = 0
	case instruction.ParamSetSwitchTime:
		v, err := needValue()
		if err != nil {
			return err
		}
		pool.StateData.OrderbookToInitTime = v
	case instruction.ParamLastOrderDistance:
		if args.LastOrderDistance == nil {
			return errors.ErrInvalidParamsSet
		}
		if len(accounts) <= spIdxTargetOrders {
			return errors.ErrWrongAccountsNumber
		}
		target, err := e.loadTarget(accounts[spIdxTargetOrders], pool, poolAcc.Key)
		if err != nil {
			return err
		}
		d := args.LastOrderDistance
		if d.LastOrderDenominator == 0 || d.LastOrderNumerator > d.LastOrderDenominator {
			return errors.ErrInvalidParamsSet
		}
		target.LastOrderNumerator = d.LastOrderNumerator
		target.LastOrderDenominator = d.LastOrderDenominator
		if err := saveTarget(accounts[spIdxTargetOrders], target); err != nil {
			return err
		}
	default:
		return errors.ErrInvalidParamsSet.WithDetails(map[string]any{
			"param": args.Param,
		})
	}

	if err := savePool(poolAcc, pool); err != nil {
		return err
	}
	e.GetLogger().Info("pool parameter updated",
		"pool", poolAcc.Key.String(),
		"param", args.Param,
	)
	return nil
}

// WithdrawPnl account indexes.
const (
	wpIdxTokenProgram = iota
	wpIdxPool
	wpIdxConfig
	wpIdxPnlOwner
	wpIdxAuthority
	wpIdxOpenOrders
	wpIdxCoinVault
	wpIdxPcVault
	wpIdxCoinMint
	wpIdxPcMint
	wpIdxUserCoin
	wpIdxUserPc
	wpIdxMarket

	wpBaseAccounts
	wpIdxWhitelist = wpBaseAccounts // optional
)

// withdrawPnl pays the accumulated skim out to the protocol's PnL owner
// and clears the accumulators.
func (e *Engine) withdrawPnl(ctx context.Context, accounts []*Account) error {
	if err := expectAccounts(accounts, wpBaseAccounts, 1); err != nil {
		return err
	}
	if err := checkSigner(accounts[wpIdxPnlOwner]); err != nil {
		return err
	}

	poolAcc := accounts[wpIdxPool]
	pool, err := e.loadPool(poolAcc)
	if err != nil {
		return err
	}
	cfgAddr, err := ConfigAddress(e.programID)
	if err != nil {
		return err
	}
	if err := checkKey(accounts[wpIdxConfig], cfgAddr, errors.ErrInvalidConfigAccount); err != nil {
		return err
	}
	cfg, err := state.DecodeAmmConfig(accounts[wpIdxConfig].Data)
	if err != nil {
		return err
	}
	if accounts[wpIdxPnlOwner].Key != cfg.PnlOwner {
		return errors.ErrInvalidOwner
	}
	if err := e.checkAuthority(accounts[wpIdxAuthority].Key, pool.Nonce); err != nil {
		return err
	}
	if err := checkKey(accounts[wpIdxOpenOrders], pool.OpenOrders, errors.ErrInvalidOpenOrders); err != nil {
		return err
	}
	if err := checkKey(accounts[wpIdxMarket], pool.Market, errors.ErrInvalidMarket); err != nil {
		return err
	}
	if err := checkKey(accounts[wpIdxCoinMint], pool.CoinVaultMint, errors.ErrInvalidCoinMint); err != nil {
		return err
	}
	if err := checkKey(accounts[wpIdxPcMint], pool.PcVaultMint, errors.ErrInvalidPCMint); err != nil {
		return err
	}
	coinVault, pcVault, err := e.checkVaults(accounts[wpIdxCoinVault], accounts[wpIdxPcVault], pool)
	if err != nil {
		return err
	}

	takeCoin := pool.StateData.NeedTakePnlCoin
	takePc := pool.StateData.NeedTakePnlPc
	if takeCoin == 0 && takePc == 0 {
		return nil
	}
	if takeCoin > coinVault.Amount || takePc > pcVault.Amount {
		return errors.ErrTakePnl
	}

	whitelist, err := e.loadWhitelist(accounts, wpIdxWhitelist)
	if err != nil {
		return err
	}
	coinMint, err := loadMint(accounts[wpIdxCoinMint])
	if err != nil {
		return err
	}
	pcMint, err := loadMint(accounts[wpIdxPcMint])
	if err != nil {
		return err
	}
	seeds := e.authoritySeeds(pool.Nonce)
	if takeCoin > 0 {
		err = e.gate.Transfer(ctx, token.TransferParams{
			TokenProgram:   accounts[wpIdxTokenProgram].Key,
			Source:         pool.CoinVault,
			Mint:           pool.CoinVaultMint,
			Destination:    accounts[wpIdxUserCoin].Key,
			Authority:      accounts[wpIdxAuthority].Key,
			Amount:         takeCoin,
			Decimals:       uint8(pool.CoinDecimals),
			AuthoritySeeds: seeds,
		}, coinMint.HookProgram, whitelist)
		if err != nil {
			return err
		}
	}
	if takePc > 0 {
		err = e.gate.Transfer(ctx, token.TransferParams{
			TokenProgram:   accounts[wpIdxTokenProgram].Key,
			Source:         pool.PcVault,
			Mint:           pool.PcVaultMint,
			Destination:    accounts[wpIdxUserPc].Key,
			Authority:      accounts[wpIdxAuthority].Key,
			Amount:         takePc,
			Decimals:       uint8(pool.PcDecimals),
			AuthoritySeeds: seeds,
		}, pcMint.HookProgram, whitelist)
		if err != nil {
			return err
		}
	}

	pool.StateData.NeedTakePnlCoin = 0
	pool.StateData.NeedTakePnlPc = 0
	if err := savePool(poolAcc, pool); err != nil {
		return err
	}

	e.metrics.IncrementCounter(ctx, metrics.MetricWithdrawPnl, 1)
	e.metrics.RecordHistogram(ctx, metrics.MetricWithdrawPnlCoin, float64(takeCoin))
	e.metrics.RecordHistogram(ctx, metrics.MetricWithdrawPnlPc, float64(takePc))
	return nil
}

// WithdrawDest account indexes.
const (
	wdsIdxTokenProgram = iota
	wdsIdxPool
	wdsIdxOwner
	wdsIdxAuthority
	wdsIdxSource
	wdsIdxSourceMint
	wdsIdxDest

	wdsBaseAccounts
	wdsIdxWhitelist = wdsBaseAccounts // optional
)

// withdrawDest sweeps an auxiliary token balance held under the pool's
// derived authority. The pool's own vaults are off limits.
func (e *Engine) withdrawDest(ctx context.Context, args *instruction.WithdrawDest, accounts []*Account) error {
	if err := expectAccounts(accounts, wdsBaseAccounts, 1); err != nil {
		return err
	}
	if args.Amount == 0 {
		return errors.ErrInvalidInput
	}
	if err := checkSigner(accounts[wdsIdxOwner]); err != nil {
		return err
	}

	pool, err := e.loadPool(accounts[wdsIdxPool])
	if err != nil {
		return err
	}
	if accounts[wdsIdxOwner].Key != pool.AmmOwner {
		return errors.ErrInvalidOwner
	}
	if err := e.checkAuthority(accounts[wdsIdxAuthority].Key, pool.Nonce); err != nil {
		return err
	}

	srcAcc := accounts[wdsIdxSource]
	if srcAcc.Key == pool.CoinVault || srcAcc.Key == pool.PcVault {
		return errors.ErrInvalidSrmToken
	}
	source, err := loadTokenAccount(srcAcc)
	if err != nil {
		return err
	}
	if source.Mint != accounts[wdsIdxSourceMint].Key {
		return errors.ErrInvalidSrmMint
	}
	if source.Amount < args.Amount {
		return errors.ErrInsufficientFunds
	}

	whitelist, err := e.loadWhitelist(accounts, wdsIdxWhitelist)
	if err != nil {
		return err
	}
	srcMint, err := loadMint(accounts[wdsIdxSourceMint])
	if err != nil {
		return err
	}
	err = e.gate.Transfer(ctx, token.TransferParams{
		TokenProgram:   accounts[wdsIdxTokenProgram].Key,
		Source:         srcAcc.Key,
		Mint:           source.Mint,
		Destination:    accounts[wdsIdxDest].Key,
		Authority:      accounts[wdsIdxAuthority].Key,
		Amount:         args.Amount,
		Decimals:       srcMint.Decimals,
		AuthoritySeeds: e.authoritySeeds(pool.Nonce),
	}, srcMint.HookProgram, whitelist)
	if err != nil {
		return err
	}
	e.metrics.IncrementCounter(ctx, metrics.MetricWithdrawDest, 1)
	return nil
}

// Config account indexes.
const (
	cfgIdxConfig = iota
	cfgIdxAdmin

	cfgAccounts
)

func (e *Engine) createConfig(ctx context.Context, accounts []*Account) error {
	if err := expectAccounts(accounts, cfgAccounts, 0); err != nil {
		return err
	}
	if err := checkSigner(accounts[cfgIdxAdmin]); err != nil {
		return err
	}
	cfgAddr, err := ConfigAddress(e.programID)
	if err != nil {
		return err
	}
	if err := checkKey(accounts[cfgIdxConfig], cfgAddr, errors.ErrInvalidConfigAccount); err != nil {
		return err
	}
	if existing, err := state.DecodeAmmConfig(accounts[cfgIdxConfig].Data); err == nil &&
		existing.PnlOwner != types.ZeroPubkey {
		return errors.ErrRepeatCreateConfigAccount
	}

	cfg := &state.AmmConfig{
		PnlOwner:    accounts[cfgIdxAdmin].Key,
		CancelOwner: accounts[cfgIdxAdmin].Key,
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	accounts[cfgIdxConfig].Data = data
	return nil
}

func (e *Engine) updateConfig(ctx context.Context, args *instruction.UpdateConfig, accounts []*Account) error {
	if err := expectAccounts(accounts, cfgAccounts, 0); err != nil {
		return err
	}
	if err := checkSigner(accounts[cfgIdxAdmin]); err != nil {
		return err
	}
	cfgAddr, err := ConfigAddress(e.programID)
	if err != nil {
		return err
	}
	if err := checkKey(accounts[cfgIdxConfig], cfgAddr, errors.ErrInvalidConfigAccount); err != nil {
		return err
	}
	cfg, err := state.DecodeAmmConfig(accounts[cfgIdxConfig].Data)
	if err != nil {
		return err
	}
	if accounts[cfgIdxAdmin].Key != cfg.PnlOwner {
		return errors.ErrInvalidOwner
	}

	var value uint64
	if args.Value != nil {
		value = *args.Value
	}
	if err := cfg.Update(state.UpdateParam(args.Param), value, args.NewOwner); err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	accounts[cfgIdxConfig].Data = data
	return nil
}
