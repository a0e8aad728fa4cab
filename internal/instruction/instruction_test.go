package instruction

import (
	"errors"
	"testing"

	ammerrors "github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/state"
	"github.com/lugondev/go-ammcore/pkg/types"
)

func u64p(v uint64) *uint64 { return &v }

func TestDecodeRejectsUnknownOpcode(t *testing.T) {
	if _, err := Decode([]byte{0xFF}); !errors.Is(err, ammerrors.ErrInvalidInstruction) {
		t.Errorf("Decode(0xFF) error = %v, want ErrInvalidInstruction", err)
	}
	if _, err := Decode(nil); !errors.Is(err, ammerrors.ErrInvalidInstruction) {
		t.Errorf("Decode(empty) error = %v, want ErrInvalidInstruction", err)
	}
}

func TestDecodeRejectsLegacyBootstrap(t *testing.T) {
	for _, op := range []Opcode{OpInitialize, OpPreInitialize} {
		if _, err := Decode([]byte{byte(op)}); !errors.Is(err, ammerrors.ErrInvalidInstruction) {
			t.Errorf("Decode(%v) error = %v, want ErrInvalidInstruction", op, err)
		}
	}
}

func TestRoundTripPayloads(t *testing.T) {
	fees := state.DefaultFees()
	owner := types.MustPubkey("GThUX1Atko4tqhN2NaiTazWSeFWMuiUvfFnyJyUghFMJ")

	tests := []struct {
		name    string
		op      Opcode
		payload any
	}{
		{"initialize2", OpInitialize2, &Initialize2{Nonce: 253, OpenTime: 1_700_000_000, InitPcAmount: 5_000, InitCoinAmount: 7_000}},
		{"monitor_step", OpMonitorStep, &MonitorStep{PlanOrderLimit: 10, PlaceOrderLimit: 10, CancelOrderLimit: 20}},
		{"deposit with min", OpDeposit, &Deposit{MaxCoinAmount: 100, MaxPcAmount: 200, BaseSide: 0, OtherAmountMin: u64p(150)}},
		{"deposit without min", OpDeposit, &Deposit{MaxCoinAmount: 100, MaxPcAmount: 200, BaseSide: 1}},
		{"withdraw", OpWithdraw, &Withdraw{Amount: 55, MinCoinAmount: u64p(1), MinPcAmount: u64p(2)}},
		{"withdraw bare", OpWithdraw, &Withdraw{Amount: 55}},
		{"swap base in", OpSwapBaseIn, &SwapBaseIn{AmountIn: 100, MinimumAmountOut: 90}},
		{"swap base out", OpSwapBaseOut, &SwapBaseOut{MaxAmountIn: 110, AmountOut: 100}},
		{"set params fees", OpSetParams, &SetParams{Param: uint8(ParamFees), Fees: &fees}},
		{"set params owner", OpSetParams, &SetParams{Param: uint8(ParamAmmOwner), NewPubkey: &owner}},
		{"set params status", OpSetParams, &SetParams{Param: uint8(ParamStatus), Value: u64p(uint64(state.StatusWithdrawOnly))}},
		{"withdraw dest", OpWithdrawDest, &WithdrawDest{Amount: 42}},
		{"admin cancel", OpAdminCancelOrders, &AdminCancelOrders{Limit: 16}},
		{"simulate quote", OpSimulateInfo, &SimulateInfo{Param: uint8(SimulateSwapBaseIn), SwapBaseIn: &SwapBaseIn{AmountIn: 10, MinimumAmountOut: 1}}},
		{"update config", OpUpdateConfig, &UpdateConfig{Param: 1, NewOwner: &owner}},
		{"whitelist add", OpUpdateHookWhitelist, &UpdateHookWhitelist{Action: uint8(WhitelistAdd), Target: owner}},
		{"token transfer", OpTokenTransfer, &TokenTransfer{Amount: 77}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.op, tt.payload)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			req, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if req.Opcode != tt.op {
				t.Errorf("Opcode = %v, want %v", req.Opcode, tt.op)
			}
			back, err := Encode(req.Opcode, req.Payload)
			if err != nil {
				t.Fatalf("re-Encode() error = %v", err)
			}
			if string(back) != string(data) {
				t.Errorf("re-encoded bytes differ:\n got %x\nwant %x", back, data)
			}
		})
	}
}

func TestRoundTripNoPayloadOps(t *testing.T) {
	for _, op := range []Opcode{OpMigrateToVenue, OpWithdrawPnl, OpCreateConfig} {
		data, err := Encode(op, nil)
		if err != nil {
			t.Fatalf("Encode(%v) error = %v", op, err)
		}
		req, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(%v) error = %v", op, err)
		}
		if req.Opcode != op || req.Payload != nil {
			t.Errorf("Decode(%v) = %+v", op, req)
		}

		// Trailing bytes are malformed.
		if _, err := Decode(append(data, 0)); !errors.Is(err, ammerrors.ErrInvalidInstruction) {
			t.Errorf("Decode(%v with trailing byte) error = %v, want ErrInvalidInstruction", op, err)
		}
	}
}

func TestDecodeTruncatedPayload(t *testing.T) {
	data, err := Encode(OpSwapBaseIn, &SwapBaseIn{AmountIn: 100, MinimumAmountOut: 90})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if _, err := Decode(data[:len(data)-3]); !errors.Is(err, ammerrors.ErrInvalidInstruction) {
		t.Errorf("Decode(truncated) error = %v, want ErrInvalidInstruction", err)
	}
	if _, err := Decode(append(data, 1, 2)); !errors.Is(err, ammerrors.ErrInvalidInstruction) {
		t.Errorf("Decode(trailing) error = %v, want ErrInvalidInstruction", err)
	}
}
