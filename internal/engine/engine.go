// Package engine implements the pool operations: liquidity provision and
// redemption, swaps, the reconciliation crank, parameter administration,
// and the whitelist-gated token transfer entry point. Each operation
// validates its fixed account list, checks status and identities, runs the
// calculator, and only then issues transfers.
package engine

import (
	"context"

	"github.com/lugondev/go-ammcore/internal/common"
	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/instruction"
	"github.com/lugondev/go-ammcore/internal/market"
	"github.com/lugondev/go-ammcore/internal/metrics"
	"github.com/lugondev/go-ammcore/internal/oplog"
	"github.com/lugondev/go-ammcore/internal/token"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// Account is one resolved external resource passed to an operation. The
// host ledger resolves addresses to live records; the engine mutates Data
// in place and relies on the host's atomicity to discard partial writes on
// failure.
type Account struct {
	Key        types.Pubkey
	IsSigner   bool
	IsWritable bool
	Owner      types.Pubkey
	Lamports   uint64
	Data       []byte
}

// Engine processes pool operations.
type Engine struct {
	common.LoggerMixin

	programID  types.Pubkey
	reconciler *market.Reconciler
	gate       *token.Gate
	invoker    token.Invoker
	recorder   *oplog.Recorder
	metrics    metrics.Metrics

	// now returns the current unix time; overridable in tests.
	now func() uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithRecorder sets the operation log recorder.
func WithRecorder(r *oplog.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithClock overrides the time source.
func WithClock(now func() uint64) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine for the given program identity.
func New(programID types.Pubkey, venue market.Venue, invoker token.Invoker, autoInitHooks []types.Pubkey, opts ...Option) *Engine {
	e := &Engine{
		LoggerMixin: common.NewLoggerMixin(),
		programID:   programID,
		reconciler:  market.NewReconciler(venue),
		gate:        token.NewGate(invoker, autoInitHooks),
		invoker:     invoker,
		recorder:    oplog.NewRecorder(nil),
		metrics:     metrics.NewNoopMetrics(),
		now:         unixNow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process decodes and executes one request against its account list.
func (e *Engine) Process(ctx context.Context, data []byte, accounts []*Account) error {
	req, err := instruction.Decode(data)
	if err != nil {
		return err
	}

	logger := e.GetLogger().With("op", req.Opcode.String())
	logger.Debug("processing operation", "accounts", len(accounts))

	switch req.Opcode {
	case instruction.OpInitialize2:
		err = e.initialize2(ctx, req.Payload.(*instruction.Initialize2), accounts)
	case instruction.OpMonitorStep:
		err = e.monitorStep(ctx, req.Payload.(*instruction.MonitorStep), accounts)
	case instruction.OpDeposit:
		err = e.deposit(ctx, req.Payload.(*instruction.Deposit), accounts)
	case instruction.OpWithdraw:
		err = e.withdraw(ctx, req.Payload.(*instruction.Withdraw), accounts)
	case instruction.OpMigrateToVenue:
		err = e.migrateToVenue(ctx, accounts)
	case instruction.OpSetParams:
		err = e.setParams(ctx, req.Payload.(*instruction.SetParams), accounts)
	case instruction.OpWithdrawPnl:
		err = e.withdrawPnl(ctx, accounts)
	case instruction.OpWithdrawDest:
		err = e.withdrawDest(ctx, req.Payload.(*instruction.WithdrawDest), accounts)
	case instruction.OpSwapBaseIn:
		err = e.swapBaseIn(ctx, req.Payload.(*instruction.SwapBaseIn), accounts)
	case instruction.OpSwapBaseOut:
		err = e.swapBaseOut(ctx, req.Payload.(*instruction.SwapBaseOut), accounts)
	case instruction.OpSimulateInfo:
		err = e.simulateInfo(ctx, req.Payload.(*instruction.SimulateInfo), accounts)
	case instruction.OpAdminCancelOrders:
		err = e.adminCancelOrders(ctx, req.Payload.(*instruction.AdminCancelOrders), accounts)
	case instruction.OpCreateConfig:
		err = e.createConfig(ctx, accounts)
	case instruction.OpUpdateConfig:
		err = e.updateConfig(ctx, req.Payload.(*instruction.UpdateConfig), accounts)
	case instruction.OpUpdateHookWhitelist:
		err = e.updateHookWhitelist(ctx, req.Payload.(*instruction.UpdateHookWhitelist), accounts)
	case instruction.OpTokenTransfer:
		err = e.tokenTransfer(ctx, req.Payload.(*instruction.TokenTransfer), accounts)
	default:
		err = errors.ErrInvalidInstruction
	}

	if err != nil {
		logger.Warn("operation failed", "error", err)
		return err
	}
	return nil
}
