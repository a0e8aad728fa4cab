package math

import (
	"errors"
	"testing"

	ammerrors "github.com/lugondev/go-ammcore/internal/errors"
)

func TestNormalizeRestoreRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		amount   uint64
		decimals uint8
		sysScale uint64
	}{
		{"six decimals to nine", 1_500_000, 6, 1_000_000_000},
		{"nine decimals to nine", 42_000_000_000, 9, 1_000_000_000},
		{"zero amount", 0, 6, 1_000_000_000},
		{"large amount", 18_000_000_000_000_000, 6, 1_000_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Normalize(tt.amount, tt.decimals, tt.sysScale)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			r, err := Restore(n, tt.decimals, tt.sysScale)
			if err != nil {
				t.Fatalf("Restore() error = %v", err)
			}
			if r != tt.amount {
				t.Errorf("round trip = %d, want %d", r, tt.amount)
			}
		})
	}
}

func TestNormalizeScalesUp(t *testing.T) {
	// 1.5 tokens at 6 decimals normalized to a 10^9 scale.
	got, err := Normalize(1_500_000, 6, 1_000_000_000)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got != 1_500_000_000 {
		t.Errorf("Normalize() = %d, want 1500000000", got)
	}
}

func TestExchangeBaseIn(t *testing.T) {
	// Reserves (1000, 1000), fee 25/10000, swap 100 in.
	fee, err := Fee(100, 25, 10000)
	if err != nil {
		t.Fatalf("Fee() error = %v", err)
	}
	if fee != 1 {
		t.Fatalf("Fee() = %d, want 1", fee)
	}
	netIn := uint64(100 - fee)
	out, err := Exchange(netIn, 1000, 1000, Floor)
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if out != 91 {
		t.Errorf("Exchange() = %d, want 91", out)
	}
}

func TestExchangeRounding(t *testing.T) {
	// 1000*1000/1099 = 909.91...: Floor keeps 909 back (output 91),
	// Ceiling keeps 910 back (output 90).
	floorOut, err := Exchange(99, 1000, 1000, Floor)
	if err != nil {
		t.Fatalf("Exchange(Floor) error = %v", err)
	}
	ceilOut, err := Exchange(99, 1000, 1000, Ceiling)
	if err != nil {
		t.Fatalf("Exchange(Ceiling) error = %v", err)
	}
	if floorOut != 91 || ceilOut != 90 {
		t.Errorf("Exchange() = (%d, %d), want (91, 90)", floorOut, ceilOut)
	}
}

func TestExchangeEmptyReserves(t *testing.T) {
	if _, err := Exchange(10, 0, 1000, Floor); !errors.Is(err, ammerrors.ErrCheckedEmptyFunds) {
		t.Errorf("Exchange() error = %v, want ErrCheckedEmptyFunds", err)
	}
	if _, err := Exchange(10, 1000, 0, Floor); !errors.Is(err, ammerrors.ErrCheckedEmptyFunds) {
		t.Errorf("Exchange() error = %v, want ErrCheckedEmptyFunds", err)
	}
}

func TestExchangeBaseOutInverse(t *testing.T) {
	// The base-out quote must always be sufficient: paying it in buys at
	// least the requested output. Because Exchange with Floor rounds the
	// output in the user's favor, the quoted cost may exceed the original
	// input, but never by more than one unit.
	const totalIn, totalOut = 1_000_000, 5_000_000
	for _, in := range []uint64{1, 999, 37_213, 500_000} {
		out, err := Exchange(in, totalIn, totalOut, Floor)
		if err != nil {
			t.Fatalf("Exchange(%d) error = %v", in, err)
		}
		if out == 0 {
			continue
		}
		back, err := ExchangeBaseOut(out, totalIn, totalOut, Ceiling)
		if err != nil {
			t.Fatalf("ExchangeBaseOut(%d) error = %v", out, err)
		}
		if back > in+1 {
			t.Errorf("ExchangeBaseOut(%d) = %d, want at most %d", out, back, in+1)
		}
		recovered, err := Exchange(back, totalIn, totalOut, Floor)
		if err != nil {
			t.Fatalf("Exchange(%d) error = %v", back, err)
		}
		if recovered < out {
			t.Errorf("Exchange(%d) = %d, quote does not cover the requested output %d", back, recovered, out)
		}
	}
}

func TestExchangeBaseOutRejectsDrain(t *testing.T) {
	for _, out := range []uint64{1000, 1001} {
		if _, err := ExchangeBaseOut(out, 1000, 1000, Ceiling); !errors.Is(err, ammerrors.ErrInsufficientFunds) {
			t.Errorf("ExchangeBaseOut(%d) error = %v, want ErrInsufficientFunds", out, err)
		}
	}
}

func TestFeeCeiling(t *testing.T) {
	tests := []struct {
		amount, num, den uint64
		want             uint64
	}{
		{100, 25, 10000, 1},
		{10000, 25, 10000, 25},
		{1, 25, 10000, 1},
		{0, 25, 10000, 0},
		{4000, 25, 10000, 10},
	}
	for _, tt := range tests {
		got, err := Fee(tt.amount, tt.num, tt.den)
		if err != nil {
			t.Fatalf("Fee(%d) error = %v", tt.amount, err)
		}
		if got != tt.want {
			t.Errorf("Fee(%d, %d/%d) = %d, want %d", tt.amount, tt.num, tt.den, got, tt.want)
		}
	}
}

func TestInitialShares(t *testing.T) {
	got, err := InitialShares(400, 900)
	if err != nil {
		t.Fatalf("InitialShares() error = %v", err)
	}
	if got != 600 {
		t.Errorf("InitialShares(400, 900) = %d, want 600", got)
	}

	// Non-perfect square floors.
	got, err = InitialShares(2, 5)
	if err != nil {
		t.Fatalf("InitialShares() error = %v", err)
	}
	if got != 3 {
		t.Errorf("InitialShares(2, 5) = %d, want 3", got)
	}
}

func TestShareMintRedeem(t *testing.T) {
	// Minting against a 1/4 contribution of the reserve yields 1/4 of the
	// share supply, floored.
	minted, err := ShareMintAmount(250, 1000, 999, Floor)
	if err != nil {
		t.Fatalf("ShareMintAmount() error = %v", err)
	}
	if minted != 249 {
		t.Errorf("ShareMintAmount() = %d, want 249", minted)
	}

	redeemed, err := ShareRedeemAmount(249, 999, 1000, Floor)
	if err != nil {
		t.Fatalf("ShareRedeemAmount() error = %v", err)
	}
	if redeemed > 250 {
		t.Errorf("ShareRedeemAmount() = %d, exceeds contribution 250", redeemed)
	}
}

func TestPnlBaseline(t *testing.T) {
	// Baseline (1000, 1000); reserves grew to (1100, 1100) at unchanged
	// price. The rescaled baseline is the original point, so the whole
	// growth is profit.
	x2, y2, err := PnlBaseline(1100, 1100, 1000, 1000)
	if err != nil {
		t.Fatalf("PnlBaseline() error = %v", err)
	}
	if x2 != 1000 || y2 != 1000 {
		t.Errorf("PnlBaseline() = (%d, %d), want (1000, 1000)", x2, y2)
	}

	// Price moved but product unchanged: rescaled baseline lands on the
	// current reserves, no profit.
	x2, y2, err = PnlBaseline(2000, 500, 1000, 1000)
	if err != nil {
		t.Fatalf("PnlBaseline() error = %v", err)
	}
	if x2 != 2000 || y2 != 500 {
		t.Errorf("PnlBaseline() = (%d, %d), want (2000, 500)", x2, y2)
	}
}

func TestCheckedOps(t *testing.T) {
	if _, err := CheckedSub(1, 2); !errors.Is(err, ammerrors.ErrCheckedSubOverflow) {
		t.Errorf("CheckedSub(1, 2) error = %v, want ErrCheckedSubOverflow", err)
	}
	if v, err := CheckedSub(5, 2); err != nil || v != 3 {
		t.Errorf("CheckedSub(5, 2) = (%d, %v), want (3, nil)", v, err)
	}
	const maxU64 = ^uint64(0)
	if _, err := CheckedAdd(maxU64, 1); !errors.Is(err, ammerrors.ErrCheckedAddOverflow) {
		t.Errorf("CheckedAdd overflow error = %v, want ErrCheckedAddOverflow", err)
	}
	if _, err := CheckedMul(maxU64, 2); !errors.Is(err, ammerrors.ErrCheckedMulOverflow) {
		t.Errorf("CheckedMul overflow error = %v, want ErrCheckedMulOverflow", err)
	}
	if v, err := CheckedMul(0, maxU64); err != nil || v != 0 {
		t.Errorf("CheckedMul(0, max) = (%d, %v), want (0, nil)", v, err)
	}
}
