package state

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	ammerrors "github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/pkg/types"
)

func testPubkey(b byte) types.Pubkey {
	var pk types.Pubkey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func TestStatusPermissionMatrix(t *testing.T) {
	tests := []struct {
		status                            Status
		deposit, withdraw, swap, orderbook bool
	}{
		{StatusUninitialized, false, false, false, false},
		{StatusInitialized, true, true, true, true},
		{StatusDisabled, false, false, false, false},
		{StatusWithdrawOnly, false, true, false, false},
		{StatusLiquidityOnly, true, true, false, false},
		{StatusOrderBookOnly, true, true, true, true},
		{StatusSwapOnly, true, true, true, false},
		{StatusWaitingTrade, true, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.DepositAllowed(); got != tt.deposit {
				t.Errorf("DepositAllowed() = %v, want %v", got, tt.deposit)
			}
			if got := tt.status.WithdrawAllowed(); got != tt.withdraw {
				t.Errorf("WithdrawAllowed() = %v, want %v", got, tt.withdraw)
			}
			if got := tt.status.SwapAllowed(); got != tt.swap {
				t.Errorf("SwapAllowed() = %v, want %v", got, tt.swap)
			}
			if got := tt.status.OrderBookAllowed(); got != tt.orderbook {
				t.Errorf("OrderBookAllowed() = %v, want %v", got, tt.orderbook)
			}
		})
	}
}

func TestSwapSelfTransitions(t *testing.T) {
	pool := &PoolInfo{}
	pool.SetStatus(StatusWaitingTrade)
	pool.StateData.PoolOpenTime = 1000

	// Before open time the swap is rejected and the status is unchanged.
	if err := pool.CheckSwapPermission(999); !errors.Is(err, ammerrors.ErrInvalidStatus) {
		t.Fatalf("CheckSwapPermission(999) error = %v, want ErrInvalidStatus", err)
	}
	if pool.GetStatus() != StatusWaitingTrade {
		t.Fatalf("status changed on rejected swap: %v", pool.GetStatus())
	}

	// At open time the pool flips to swap-only as a side effect.
	if err := pool.CheckSwapPermission(1000); err != nil {
		t.Fatalf("CheckSwapPermission(1000) error = %v", err)
	}
	if pool.GetStatus() != StatusSwapOnly {
		t.Errorf("status = %v, want swap_only", pool.GetStatus())
	}

	pool.SetStatus(StatusOrderBookOnly)
	pool.StateData.OrderbookToInitTime = 2000
	if err := pool.CheckSwapPermission(1999); err != nil {
		t.Fatalf("CheckSwapPermission(1999) error = %v", err)
	}
	if pool.GetStatus() != StatusOrderBookOnly {
		t.Errorf("status flipped early: %v", pool.GetStatus())
	}
	if err := pool.CheckSwapPermission(2000); err != nil {
		t.Fatalf("CheckSwapPermission(2000) error = %v", err)
	}
	if pool.GetStatus() != StatusInitialized {
		t.Errorf("status = %v, want initialized", pool.GetStatus())
	}

	pool.SetStatus(StatusWithdrawOnly)
	if err := pool.CheckSwapPermission(5000); !errors.Is(err, ammerrors.ErrInvalidStatus) {
		t.Errorf("CheckSwapPermission() error = %v, want ErrInvalidStatus", err)
	}
}

func TestFeesValidate(t *testing.T) {
	fees := DefaultFees()
	if err := fees.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	fees.SwapFeeNumerator = fees.SwapFeeDenominator + 1
	if err := fees.Validate(); !errors.Is(err, ammerrors.ErrInvalidParamsSet) {
		t.Errorf("Validate() error = %v, want ErrInvalidParamsSet", err)
	}

	fees = DefaultFees()
	fees.PnlDenominator = 0
	if err := fees.Validate(); !errors.Is(err, ammerrors.ErrInvalidParamsSet) {
		t.Errorf("Validate() error = %v, want ErrInvalidParamsSet", err)
	}
}

func TestPoolInfoRoundTrip(t *testing.T) {
	pool := &PoolInfo{
		Nonce:           253,
		CoinDecimals:    9,
		PcDecimals:      6,
		SysDecimalValue: 1_000_000_000,
		Fees:            DefaultFees(),
		CoinVault:       testPubkey(1),
		PcVault:         testPubkey(2),
		LpMint:          testPubkey(3),
		Market:          testPubkey(4),
		AmmOwner:        testPubkey(5),
		LpAmount:        123_456,
		ClientOrderID:   99,
	}
	pool.SetStatus(StatusInitialized)
	pool.StateData.NeedTakePnlCoin = 77

	data, err := pool.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := DecodePoolInfo(data)
	if err != nil {
		t.Fatalf("DecodePoolInfo() error = %v", err)
	}
	if got.GetStatus() != StatusInitialized || got.Nonce != pool.Nonce ||
		got.Fees != pool.Fees || got.CoinVault != pool.CoinVault ||
		got.LpAmount != pool.LpAmount ||
		got.StateData.NeedTakePnlCoin != 77 {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, pool)
	}
	data2, err := got.Marshal()
	if err != nil {
		t.Fatalf("re-Marshal() error = %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Error("re-encoded bytes differ from original")
	}
}

func TestTargetOrdersBaseline(t *testing.T) {
	owner := testPubkey(9)
	target := NewTargetOrders(owner)
	if err := target.CheckOwner(owner); err != nil {
		t.Fatalf("CheckOwner() error = %v", err)
	}
	if err := target.CheckOwner(testPubkey(10)); !errors.Is(err, ammerrors.ErrInvalidTargetOwner) {
		t.Fatalf("CheckOwner(other) error = %v, want ErrInvalidTargetOwner", err)
	}

	target.SetBaseline(1_000_000, 2_000_000)
	bx, by, err := target.Baseline()
	if err != nil {
		t.Fatalf("Baseline() error = %v", err)
	}
	if bx != 1_000_000 || by != 2_000_000 {
		t.Errorf("Baseline() = (%d, %d), want (1000000, 2000000)", bx, by)
	}

	data, err := target.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := DecodeTargetOrders(data)
	if err != nil {
		t.Fatalf("DecodeTargetOrders() error = %v", err)
	}
	gbx, gby, err := got.Baseline()
	if err != nil {
		t.Fatalf("decoded Baseline() error = %v", err)
	}
	if gbx != bx || gby != by {
		t.Errorf("decoded baseline = (%d, %d), want (%d, %d)", gbx, gby, bx, by)
	}
	if err := got.CheckOwner(owner); err != nil {
		t.Errorf("decoded CheckOwner() error = %v", err)
	}
}

func TestWhitelistAddRemove(t *testing.T) {
	authority := testPubkey(1)
	wl := NewHookWhitelist(authority)

	hook := testPubkey(42)
	if err := wl.Add(authority, hook); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !wl.Contains(hook) {
		t.Fatal("Contains() = false after Add")
	}

	// Idempotent re-add.
	if err := wl.Add(authority, hook); err != nil {
		t.Fatalf("Add() repeat error = %v", err)
	}
	if wl.Count != 1 {
		t.Errorf("Count = %d after duplicate add, want 1", wl.Count)
	}

	if err := wl.Remove(authority, hook); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if wl.Contains(hook) {
		t.Error("Contains() = true after Remove")
	}
	if err := wl.Remove(authority, hook); !errors.Is(err, ammerrors.ErrWhitelistHookNotFound) {
		t.Errorf("Remove(absent) error = %v, want ErrWhitelistHookNotFound", err)
	}
}

func TestWhitelistCapacity(t *testing.T) {
	authority := testPubkey(1)
	wl := NewHookWhitelist(authority)

	for i := 0; i < WhitelistCapacity; i++ {
		var hook types.Pubkey
		copy(hook[:], fmt.Sprintf("hook-%03d", i))
		if err := wl.Add(authority, hook); err != nil {
			t.Fatalf("Add(#%d) error = %v", i, err)
		}
	}
	var extra types.Pubkey
	copy(extra[:], "hook-overflow")
	if err := wl.Add(authority, extra); !errors.Is(err, ammerrors.ErrWhitelistCapacityExceeded) {
		t.Errorf("Add(#101) error = %v, want ErrWhitelistCapacityExceeded", err)
	}
}

func TestWhitelistAuthority(t *testing.T) {
	authority := testPubkey(1)
	stranger := testPubkey(2)
	wl := NewHookWhitelist(authority)

	if err := wl.Add(stranger, testPubkey(3)); !errors.Is(err, ammerrors.ErrInvalidWhitelistAuthority) {
		t.Errorf("Add by stranger error = %v, want ErrInvalidWhitelistAuthority", err)
	}
	if err := wl.TransferAuthority(stranger, stranger); !errors.Is(err, ammerrors.ErrInvalidWhitelistAuthority) {
		t.Errorf("TransferAuthority by stranger error = %v, want ErrInvalidWhitelistAuthority", err)
	}
	if err := wl.TransferAuthority(authority, stranger); err != nil {
		t.Fatalf("TransferAuthority() error = %v", err)
	}
	if err := wl.Add(stranger, testPubkey(3)); err != nil {
		t.Errorf("Add by new authority error = %v", err)
	}

	// An uninitialized record refuses all mutation.
	empty := &HookWhitelist{}
	if err := empty.Add(authority, testPubkey(4)); !errors.Is(err, ammerrors.ErrWhitelistNotInitialized) {
		t.Errorf("Add on empty record error = %v, want ErrWhitelistNotInitialized", err)
	}
	if empty.Contains(testPubkey(4)) {
		t.Error("empty whitelist must contain nothing")
	}
}
