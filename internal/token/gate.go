package token

import (
	"context"

	"github.com/lugondev/go-ammcore/internal/common"
	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/state"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// TransferParams describes one value-checked transfer.
type TransferParams struct {
	TokenProgram types.Pubkey
	Source       types.Pubkey
	Mint         types.Pubkey
	Destination  types.Pubkey
	Authority    types.Pubkey
	Amount       uint64
	Decimals     uint8

	// AuthoritySeeds are the derivation seeds when Authority is the
	// pool's derived credential rather than a user signer.
	AuthoritySeeds [][]byte
}

// Invoker is the gate's access to the token layer. Implementations issue
// the real calls; tests substitute fakes.
type Invoker interface {
	// TransferChecked performs the underlying value-checked transfer.
	TransferChecked(ctx context.Context, params TransferParams) error

	// SetTransferringMarker sets the transient re-entrancy marker on the
	// source account. Implementations return nil when the account does
	// not carry the marker extension; its absence is not an error.
	SetTransferringMarker(ctx context.Context, account types.Pubkey) error

	// ClearTransferringMarker clears the marker.
	ClearTransferringMarker(ctx context.Context, account types.Pubkey) error

	// ResolveExtraAccounts reads the hook's published metadata list for
	// mint and resolves the accounts the hook requires.
	ResolveExtraAccounts(ctx context.Context, hookProgram, mint types.Pubkey) ([]types.AccountMeta, error)

	// InitMetaList writes a default metadata list for a supported hook
	// program whose list is missing or malformed.
	InitMetaList(ctx context.Context, hookProgram, mint types.Pubkey) error

	// InvokeHook calls the hook program with the resolved accounts and
	// the transfer amount.
	InvokeHook(ctx context.Context, hookProgram types.Pubkey, accounts []types.AccountMeta, amount uint64) error

	// MintTo mints LP shares to dest under the pool's derived authority.
	MintTo(ctx context.Context, mint, dest, authority types.Pubkey, amount uint64, authoritySeeds [][]byte) error

	// Burn burns LP shares from account with the owner's signature.
	Burn(ctx context.Context, account, mint, owner types.Pubkey, amount uint64) error
}

// Gate authorizes and invokes transfer hooks around token transfers. For
// mints with no hook the gate degrades to a plain transfer.
type Gate struct {
	common.LoggerMixin

	invoker Invoker

	// autoInit names the hook programs whose metadata list the gate may
	// create itself when missing. Any other hook with missing metadata
	// fails.
	autoInit map[types.Pubkey]bool
}

// NewGate creates a gate over invoker. autoInitHooks lists the hook
// programs eligible for metadata auto-initialization.
func NewGate(invoker Invoker, autoInitHooks []types.Pubkey) *Gate {
	set := make(map[types.Pubkey]bool, len(autoInitHooks))
	for _, h := range autoInitHooks {
		set[h] = true
	}
	return &Gate{
		LoggerMixin: common.NewLoggerMixin(),
		invoker:     invoker,
		autoInit:    set,
	}
}

// Transfer moves params.Amount through the token layer. hookProgram is the
// mint's declared hook, nil for plain mints. whitelist may be nil — a
// missing whitelist denies every hooked transfer, it never allows one.
func (g *Gate) Transfer(ctx context.Context, params TransferParams, hookProgram *types.Pubkey, whitelist *state.HookWhitelist) error {
	if hookProgram == nil {
		if err := g.invoker.TransferChecked(ctx, params); err != nil {
			return errors.ErrTransfer.WithCause(err)
		}
		return nil
	}

	// Fail closed: no whitelist record means nothing is whitelisted.
	if whitelist == nil || !whitelist.Initialized() || !whitelist.Contains(*hookProgram) {
		return errors.ErrTransferHookNotWhitelisted.WithDetails(map[string]any{
			"hook_program": hookProgram.String(),
		})
	}

	if err := g.invoker.SetTransferringMarker(ctx, params.Source); err != nil {
		return errors.ErrTransfer.WithCause(err)
	}

	// The marker must come off on every exit path from here on, or the
	// source account is stuck permanently "transferring".
	hookErr := g.runHook(ctx, *hookProgram, params)
	if clearErr := g.invoker.ClearTransferringMarker(ctx, params.Source); clearErr != nil {
		g.GetLogger().Error("failed to clear transferring marker",
			"account", params.Source.String(),
			"error", clearErr,
		)
		if hookErr == nil {
			return errors.ErrTransfer.WithCause(clearErr)
		}
	}
	if hookErr != nil {
		return hookErr
	}

	if err := g.invoker.TransferChecked(ctx, params); err != nil {
		return errors.ErrTransfer.WithCause(err)
	}
	return nil
}

// runHook resolves the hook's extra accounts and invokes it.
func (g *Gate) runHook(ctx context.Context, hookProgram types.Pubkey, params TransferParams) error {
	metas, err := g.invoker.ResolveExtraAccounts(ctx, hookProgram, params.Mint)
	if err != nil {
		if !g.autoInit[hookProgram] {
			return errors.ErrHookProgramNotSupportedForInit.WithCause(err).WithDetails(map[string]any{
				"hook_program": hookProgram.String(),
			})
		}
		g.GetLogger().Info("initializing hook metadata list",
			"hook_program", hookProgram.String(),
			"mint", params.Mint.String(),
		)
		if err := g.invoker.InitMetaList(ctx, hookProgram, params.Mint); err != nil {
			return errors.ErrHookMetaListAutoInitFailed.WithCause(err)
		}
		metas, err = g.invoker.ResolveExtraAccounts(ctx, hookProgram, params.Mint)
		if err != nil {
			return errors.ErrHookExtraAccountsUnresolved.WithCause(err)
		}
	}

	if err := g.invoker.InvokeHook(ctx, hookProgram, metas, params.Amount); err != nil {
		return errors.ErrHookInvoke.WithCause(err)
	}
	return nil
}
