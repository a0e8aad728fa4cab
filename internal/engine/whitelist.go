package engine

import (
	"context"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/instruction"
	"github.com/lugondev/go-ammcore/internal/metrics"
	"github.com/lugondev/go-ammcore/internal/state"
	"github.com/lugondev/go-ammcore/internal/token"
)

// UpdateHookWhitelist account indexes.
const (
	whIdxWhitelist = iota
	whIdxAuthority

	whAccounts
)

// updateHookWhitelist mutates the deployment's hook whitelist. The first
// call against an empty record claims it: the signer becomes the
// authority before the action is applied.
func (e *Engine) updateHookWhitelist(ctx context.Context, args *instruction.UpdateHookWhitelist, accounts []*Account) error {
	if err := expectAccounts(accounts, whAccounts, 0); err != nil {
		return err
	}
	if err := checkSigner(accounts[whIdxAuthority]); err != nil {
		return err
	}

	wlAcc := accounts[whIdxWhitelist]
	want, err := WhitelistAddress(e.programID)
	if err != nil {
		return err
	}
	if err := checkKey(wlAcc, want, errors.ErrInvalidConfigAccount); err != nil {
		return err
	}

	caller := accounts[whIdxAuthority].Key
	wl := state.NewHookWhitelist(caller)
	if len(wlAcc.Data) > 0 {
		decoded, err := state.DecodeHookWhitelist(wlAcc.Data)
		if err != nil {
			return err
		}
		if decoded.Initialized() {
			wl = decoded
		}
	}

	switch instruction.WhitelistAction(args.Action) {
	case instruction.WhitelistAdd:
		err = wl.Add(caller, args.Target)
	case instruction.WhitelistRemove:
		err = wl.Remove(caller, args.Target)
	case instruction.WhitelistTransferAuthority:
		err = wl.TransferAuthority(caller, args.Target)
	default:
		err = errors.ErrInvalidInput.WithDetails(map[string]any{
			"action": args.Action,
		})
	}
	if err != nil {
		return err
	}

	data, err := wl.Marshal()
	if err != nil {
		return err
	}
	wlAcc.Data = data

	e.GetLogger().Info("hook whitelist updated",
		"action", args.Action,
		"target", args.Target.String(),
		"count", wl.Count,
	)
	e.metrics.IncrementCounter(ctx, metrics.MetricWhitelistUpdates, 1)
	return nil
}

// TokenTransfer account indexes.
const (
	ttIdxTokenProgram = iota
	ttIdxSource
	ttIdxMint
	ttIdxDest
	ttIdxAuthority

	ttBaseAccounts
	ttIdxWhitelist = ttBaseAccounts // optional
)

// tokenTransfer moves tokens through the hook gate on behalf of the
// signing authority. Hooked mints require the whitelist account; plain
// mints transfer directly.
func (e *Engine) tokenTransfer(ctx context.Context, args *instruction.TokenTransfer, accounts []*Account) error {
	if err := expectAccounts(accounts, ttBaseAccounts, 1); err != nil {
		return err
	}
	if args.Amount == 0 {
		return errors.ErrInvalidInput
	}
	if err := checkSigner(accounts[ttIdxAuthority]); err != nil {
		return err
	}

	source, err := loadTokenAccount(accounts[ttIdxSource])
	if err != nil {
		return err
	}
	if source.Mint != accounts[ttIdxMint].Key {
		return errors.ErrInvalidUserToken
	}
	if source.Owner != accounts[ttIdxAuthority].Key {
		return errors.ErrInvalidOwner
	}
	if source.Amount < args.Amount {
		return errors.ErrInsufficientFunds
	}
	mint, err := loadMint(accounts[ttIdxMint])
	if err != nil {
		return err
	}
	whitelist, err := e.loadWhitelist(accounts, ttIdxWhitelist)
	if err != nil {
		return err
	}

	return e.gate.Transfer(ctx, token.TransferParams{
		TokenProgram: accounts[ttIdxTokenProgram].Key,
		Source:       accounts[ttIdxSource].Key,
		Mint:         accounts[ttIdxMint].Key,
		Destination:  accounts[ttIdxDest].Key,
		Authority:    accounts[ttIdxAuthority].Key,
		Amount:       args.Amount,
		Decimals:     mint.Decimals,
	}, mint.HookProgram, whitelist)
}
