// Package instruction defines the engine's operation opcodes and their
// fixed-layout payloads. Every request carries a one-byte opcode followed
// by the payload for that operation; unknown opcodes fail decoding.
package instruction

import (
	"bytes"

	bin "github.com/gagliardetto/binary"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/state"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// Opcode identifies an operation. Values are part of the wire format.
type Opcode uint8

const (
	OpInitialize Opcode = iota // legacy, rejected
	OpInitialize2
	OpMonitorStep
	OpDeposit
	OpWithdraw
	OpMigrateToVenue
	OpSetParams
	OpWithdrawPnl
	OpWithdrawDest
	OpSwapBaseIn
	OpPreInitialize // legacy, rejected
	OpSwapBaseOut
	OpSimulateInfo
	OpAdminCancelOrders
	OpCreateConfig
	OpUpdateConfig
	OpUpdateHookWhitelist
	OpTokenTransfer

	opLimit
)

func (o Opcode) String() string {
	names := [...]string{
		"initialize", "initialize2", "monitor_step", "deposit", "withdraw",
		"migrate_to_venue", "set_params", "withdraw_pnl", "withdraw_dest",
		"swap_base_in", "pre_initialize", "swap_base_out", "simulate_info",
		"admin_cancel_orders", "create_config", "update_config",
		"update_hook_whitelist", "token_transfer",
	}
	if int(o) < len(names) {
		return names[o]
	}
	return "unknown"
}

// Initialize2 bootstraps a pool.
type Initialize2 struct {
	Nonce          uint8  `json:"nonce"`
	OpenTime       uint64 `json:"open_time"`
	InitPcAmount   uint64 `json:"init_pc_amount"`
	InitCoinAmount uint64 `json:"init_coin_amount"`
}

// MonitorStep runs one crank pass.
type MonitorStep struct {
	PlanOrderLimit   uint16 `json:"plan_order_limit"`
	PlaceOrderLimit  uint16 `json:"place_order_limit"`
	CancelOrderLimit uint16 `json:"cancel_order_limit"`
}

// Deposit adds liquidity.
type Deposit struct {
	MaxCoinAmount uint64 `json:"max_coin_amount"`
	MaxPcAmount   uint64 `json:"max_pc_amount"`
	// BaseSide selects the leg whose amount is taken as given: 0 coin,
	// anything else pc.
	BaseSide uint64 `json:"base_side"`
	// OtherAmountMin floors the derived leg; nil skips the check.
	OtherAmountMin *uint64 `json:"other_amount_min" bin:"optional"`
}

// Withdraw redeems LP shares.
type Withdraw struct {
	Amount        uint64  `json:"amount"`
	MinCoinAmount *uint64 `json:"min_coin_amount" bin:"optional"`
	MinPcAmount   *uint64 `json:"min_pc_amount" bin:"optional"`
}

// SwapBaseIn swaps an exact input for a bounded-below output.
type SwapBaseIn struct {
	AmountIn         uint64 `json:"amount_in"`
	MinimumAmountOut uint64 `json:"minimum_amount_out"`
}

// SwapBaseOut swaps a bounded-above input for an exact output.
type SwapBaseOut struct {
	MaxAmountIn uint64 `json:"max_amount_in"`
	AmountOut   uint64 `json:"amount_out"`
}

// SetParamsTarget selects which parameter a SetParams call updates.
type SetParamsTarget uint8

const (
	ParamStatus SetParamsTarget = iota
	ParamState
	ParamOrderNum
	ParamDepth
	ParamAmountWave
	ParamMinPriceMultiplier
	ParamMaxPriceMultiplier
	ParamMinSize
	ParamVolMaxCutRatio
	ParamFees
	ParamAmmOwner
	ParamSetOpenTime
	ParamLastOrderDistance
	ParamInitOrderDepth
	ParamSetSwitchTime
	ParamClearOpenTime
	ParamSeparate
	ParamUpdateOpenOrder
)

// LastOrderDistance tunes the crank's replacement threshold.
type LastOrderDistance struct {
	LastOrderNumerator   uint64 `json:"last_order_numerator"`
	LastOrderDenominator uint64 `json:"last_order_denominator"`
}

// SetParams updates one pool parameter, owner gated.
type SetParams struct {
	Param             uint8              `json:"param"`
	Value             *uint64            `json:"value" bin:"optional"`
	NewPubkey         *types.Pubkey      `json:"new_pubkey" bin:"optional"`
	Fees              *state.Fees        `json:"fees" bin:"optional"`
	LastOrderDistance *LastOrderDistance `json:"last_order_distance" bin:"optional"`
}

// WithdrawDest sweeps an auxiliary vault held by the pool authority.
type WithdrawDest struct {
	Amount uint64 `json:"amount"`
}

// AdminCancelOrders cancels up to Limit resting orders, owner gated.
type AdminCancelOrders struct {
	Limit uint16 `json:"limit"`
}

// SimulateParam selects what a SimulateInfo call computes.
type SimulateParam uint8

const (
	SimulatePoolInfo SimulateParam = iota
	SimulateSwapBaseIn
	SimulateSwapBaseOut
	SimulateRunCrankInfo
)

// SimulateInfo reads pool state or quotes a swap without side effects.
type SimulateInfo struct {
	Param       uint8        `json:"param"`
	SwapBaseIn  *SwapBaseIn  `json:"swap_base_in" bin:"optional"`
	SwapBaseOut *SwapBaseOut `json:"swap_base_out" bin:"optional"`
}

// UpdateConfig updates one field of the global config record.
type UpdateConfig struct {
	Param    uint8         `json:"param"`
	Value    *uint64       `json:"value" bin:"optional"`
	NewOwner *types.Pubkey `json:"new_owner" bin:"optional"`
}

// WhitelistAction selects an UpdateHookWhitelist mutation.
type WhitelistAction uint8

const (
	WhitelistAdd WhitelistAction = iota
	WhitelistRemove
	WhitelistTransferAuthority
)

// UpdateHookWhitelist mutates the hook whitelist, authority gated.
type UpdateHookWhitelist struct {
	Action uint8        `json:"action"`
	Target types.Pubkey `json:"target"`
}

// TokenTransfer moves tokens through the hook gate.
type TokenTransfer struct {
	Amount uint64 `json:"amount"`
}

// Request is one decoded operation.
type Request struct {
	Opcode  Opcode
	Payload any
}

// Decode parses an opcode-prefixed request. Unknown opcodes and trailing
// or truncated payloads fail with ErrInvalidInstruction.
func Decode(data []byte) (*Request, error) {
	if len(data) == 0 {
		return nil, errors.ErrInvalidInstruction
	}
	op := Opcode(data[0])
	if op >= opLimit {
		return nil, errors.ErrInvalidInstruction.WithDetails(map[string]any{
			"opcode": uint8(op),
		})
	}

	var payload any
	switch op {
	case OpInitialize2:
		payload = new(Initialize2)
	case OpMonitorStep:
		payload = new(MonitorStep)
	case OpDeposit:
		payload = new(Deposit)
	case OpWithdraw:
		payload = new(Withdraw)
	case OpSetParams:
		payload = new(SetParams)
	case OpWithdrawDest:
		payload = new(WithdrawDest)
	case OpSwapBaseIn:
		payload = new(SwapBaseIn)
	case OpSwapBaseOut:
		payload = new(SwapBaseOut)
	case OpSimulateInfo:
		payload = new(SimulateInfo)
	case OpAdminCancelOrders:
		payload = new(AdminCancelOrders)
	case OpUpdateConfig:
		payload = new(UpdateConfig)
	case OpUpdateHookWhitelist:
		payload = new(UpdateHookWhitelist)
	case OpTokenTransfer:
		payload = new(TokenTransfer)
	case OpMigrateToVenue, OpWithdrawPnl, OpCreateConfig:
		// No payload.
		if len(data) != 1 {
			return nil, errors.ErrInvalidInstruction
		}
		return &Request{Opcode: op}, nil
	default:
		// Legacy bootstrap opcodes are recognized but not serviced.
		return nil, errors.ErrInvalidInstruction.WithDetails(map[string]any{
			"opcode": op.String(),
		})
	}

	decoder := bin.NewBorshDecoder(data[1:])
	if err := decoder.Decode(payload); err != nil {
		return nil, errors.ErrInvalidInstruction.WithCause(err)
	}
	if decoder.Remaining() != 0 {
		return nil, errors.ErrInvalidInstruction
	}
	return &Request{Opcode: op, Payload: payload}, nil
}

// Encode serializes a request back to its wire form.
func Encode(op Opcode, payload any) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(op))
	if payload != nil {
		if err := bin.NewBorshEncoder(buf).Encode(payload); err != nil {
			return nil, errors.ErrInvalidInstruction.WithCause(err)
		}
	}
	return buf.Bytes(), nil
}
