// Package oplog defines the fixed-layout operation log records every engine
// operation emits, successful or not, plus the recorder that encodes them,
// mirrors them to structured logging, and optionally persists them.
package oplog

import (
	"bytes"
	"context"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/google/uuid"

	"github.com/lugondev/go-ammcore/internal/common"
	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// LogType tags a record's layout. Values are part of the encoded form.
type LogType uint8

const (
	LogTypeInit LogType = iota
	LogTypeDeposit
	LogTypeWithdraw
	LogTypeSwapBaseIn
	LogTypeSwapBaseOut
)

func (t LogType) String() string {
	switch t {
	case LogTypeInit:
		return "init"
	case LogTypeDeposit:
		return "deposit"
	case LogTypeWithdraw:
		return "withdraw"
	case LogTypeSwapBaseIn:
		return "swap_base_in"
	case LogTypeSwapBaseOut:
		return "swap_base_out"
	default:
		return "unknown"
	}
}

// Record is any fixed-layout log payload.
type Record interface {
	Type() LogType
}

// InitLog is emitted by pool bootstrap.
type InitLog struct {
	LogType      uint8        `json:"log_type"`
	Time         uint64       `json:"time"`
	PcDecimals   uint8        `json:"pc_decimals"`
	CoinDecimals uint8        `json:"coin_decimals"`
	PcLotSize    uint64       `json:"pc_lot_size"`
	CoinLotSize  uint64       `json:"coin_lot_size"`
	PcAmount     uint64       `json:"pc_amount"`
	CoinAmount   uint64       `json:"coin_amount"`
	Market       types.Pubkey `json:"market"`
}

func (l *InitLog) Type() LogType { return LogTypeInit }

// DepositLog is emitted by deposits.
type DepositLog struct {
	LogType uint8 `json:"log_type"`

	// Inputs.
	MaxCoin uint64 `json:"max_coin"`
	MaxPc   uint64 `json:"max_pc"`
	Base    uint64 `json:"base"`

	// Pool state at calculation time.
	PoolCoin uint64      `json:"pool_coin"`
	PoolPc   uint64      `json:"pool_pc"`
	PoolLp   uint64      `json:"pool_lp"`
	CalcPnlX bin.Uint128 `json:"calc_pnl_x"`
	CalcPnlY bin.Uint128 `json:"calc_pnl_y"`

	// Results.
	DeductCoin uint64 `json:"deduct_coin"`
	DeductPc   uint64 `json:"deduct_pc"`
	MintLp     uint64 `json:"mint_lp"`
}

func (l *DepositLog) Type() LogType { return LogTypeDeposit }

// WithdrawLog is emitted by withdrawals.
type WithdrawLog struct {
	LogType uint8 `json:"log_type"`

	WithdrawLp uint64 `json:"withdraw_lp"`

	UserLp   uint64      `json:"user_lp"`
	PoolCoin uint64      `json:"pool_coin"`
	PoolPc   uint64      `json:"pool_pc"`
	PoolLp   uint64      `json:"pool_lp"`
	CalcPnlX bin.Uint128 `json:"calc_pnl_x"`
	CalcPnlY bin.Uint128 `json:"calc_pnl_y"`

	OutCoin uint64 `json:"out_coin"`
	OutPc   uint64 `json:"out_pc"`
}

func (l *WithdrawLog) Type() LogType { return LogTypeWithdraw }

// SwapBaseInLog is emitted by exact-input swaps.
type SwapBaseInLog struct {
	LogType uint8 `json:"log_type"`

	AmountIn   uint64 `json:"amount_in"`
	MinimumOut uint64 `json:"minimum_out"`
	Direction  uint64 `json:"direction"`

	UserSource uint64 `json:"user_source"`
	PoolCoin   uint64 `json:"pool_coin"`
	PoolPc     uint64 `json:"pool_pc"`

	OutAmount uint64 `json:"out_amount"`
}

func (l *SwapBaseInLog) Type() LogType { return LogTypeSwapBaseIn }

// SwapBaseOutLog is emitted by exact-output swaps.
type SwapBaseOutLog struct {
	LogType uint8 `json:"log_type"`

	MaxIn     uint64 `json:"max_in"`
	AmountOut uint64 `json:"amount_out"`
	Direction uint64 `json:"direction"`

	UserSource uint64 `json:"user_source"`
	PoolCoin   uint64 `json:"pool_coin"`
	PoolPc     uint64 `json:"pool_pc"`

	DeductIn uint64 `json:"deduct_in"`
}

func (l *SwapBaseOutLog) Type() LogType { return LogTypeSwapBaseOut }

// Encode serializes a record in its fixed layout.
func Encode(r Record) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(r); err != nil {
		return nil, errors.ErrInvalidInput.WithCause(err)
	}
	return buf.Bytes(), nil
}

// Entry is one persisted operation log.
type Entry struct {
	ID        uuid.UUID    `json:"id"`
	Pool      types.Pubkey `json:"pool"`
	LogType   LogType      `json:"log_type"`
	Data      []byte       `json:"data"`
	Succeeded bool         `json:"succeeded"`
	CreatedAt time.Time    `json:"created_at"`
}

// Repository persists log entries. A nil repository on the recorder means
// records are only emitted to structured logging.
type Repository interface {
	SaveEntry(ctx context.Context, entry *Entry) error
	ListEntriesByPool(ctx context.Context, pool types.Pubkey, limit int) ([]*Entry, error)
}

// Recorder encodes and sinks operation logs.
type Recorder struct {
	common.LoggerMixin

	repo Repository
}

// NewRecorder creates a recorder; repo may be nil.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{
		LoggerMixin: common.NewLoggerMixin(),
		repo:        repo,
	}
}

// Record encodes r and sinks it. Called on failure paths too, with
// succeeded=false, before the operation returns its error. Persistence
// failures are logged and swallowed: the operation outcome must not depend
// on the log store.
func (r *Recorder) Record(ctx context.Context, pool types.Pubkey, rec Record, succeeded bool) {
	data, err := Encode(rec)
	if err != nil {
		r.GetLogger().Error("failed to encode operation log",
			"pool", pool.String(),
			"log_type", rec.Type().String(),
			"error", err,
		)
		return
	}
	r.GetLogger().Info("operation log",
		"pool", pool.String(),
		"log_type", rec.Type().String(),
		"succeeded", succeeded,
	)
	if r.repo == nil {
		return
	}
	entry := &Entry{
		ID:        uuid.New(),
		Pool:      pool,
		LogType:   rec.Type(),
		Data:      data,
		Succeeded: succeeded,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.SaveEntry(ctx, entry); err != nil {
		r.GetLogger().Error("failed to persist operation log",
			"pool", pool.String(),
			"entry_id", entry.ID.String(),
			"error", err,
		)
	}
}
