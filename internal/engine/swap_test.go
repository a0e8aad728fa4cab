package engine

import (
	"context"
	"errors"
	"testing"

	ammerrors "github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/instruction"
	"github.com/lugondev/go-ammcore/internal/market"
	"github.com/lugondev/go-ammcore/internal/state"
)

// swapAccounts builds the fixed swap list for a coin-to-pc swap.
func (f *poolFixture) swapAccounts(t *testing.T, coinVault, pcVault, userSource uint64) []*Account {
	t.Helper()
	return []*Account{
		plainAccount(testKey(0xC0)), // token program
		f.poolAccount(t),
		plainAccount(f.authority),
		plainAccount(f.openOrders),
		f.targetAccount(t),
		f.tokenAccount(f.coinVaultKey, f.coinMint, f.authority, coinVault),
		f.tokenAccount(f.pcVaultKey, f.pcMint, f.authority, pcVault),
		f.mintAccount(f.coinMint, 0),
		f.mintAccount(f.pcMint, 0),
		plainAccount(f.marketProgram),
		plainAccount(f.marketKey),
		plainAccount(testKey(0xC1)), // bids
		plainAccount(testKey(0xC2)), // asks
		plainAccount(testKey(0xC3)), // event queue
		plainAccount(testKey(0xC4)), // market coin vault
		plainAccount(testKey(0xC5)), // market pc vault
		f.tokenAccount(testKey(0xC6), f.coinMint, f.userOwner, userSource),
		f.tokenAccount(testKey(0xC7), f.pcMint, f.userOwner, 0),
		signerAccount(f.userOwner),
	}
}

func TestSwapBaseInExactQuote(t *testing.T) {
	f := newPoolFixture(t, 1000, 1000, 1000, state.StatusSwapOnly)
	ctx := context.Background()
	accounts := f.swapAccounts(t, 1000, 1000, 1000)

	// 100 in at 25/10000 fee: fee 1, net 99, output 91.
	err := f.engine.swapBaseIn(ctx, &instruction.SwapBaseIn{
		AmountIn:         100,
		MinimumAmountOut: 91,
	}, accounts)
	if err != nil {
		t.Fatalf("swapBaseIn error = %v", err)
	}
	if len(f.invoker.transfers) != 2 {
		t.Fatalf("transfers = %d, want 2", len(f.invoker.transfers))
	}
	if f.invoker.transfers[0].Amount != 100 || f.invoker.transfers[1].Amount != 91 {
		t.Errorf("amounts = %d/%d, want 100/91",
			f.invoker.transfers[0].Amount, f.invoker.transfers[1].Amount)
	}

	pool := decodePool(t, accounts[1])
	sd := pool.StateData
	if sd.SwapCoinInAmount.Lo != 100 || sd.SwapPcOutAmount.Lo != 91 {
		t.Errorf("volume counters = %d/%d, want 100/91",
			sd.SwapCoinInAmount.Lo, sd.SwapPcOutAmount.Lo)
	}
	if sd.SwapAccCoinFee != 1 {
		t.Errorf("SwapAccCoinFee = %d, want 1", sd.SwapAccCoinFee)
	}
}

func TestSwapBaseInSlippage(t *testing.T) {
	f := newPoolFixture(t, 1000, 1000, 1000, state.StatusSwapOnly)
	ctx := context.Background()

	err := f.engine.swapBaseIn(ctx, &instruction.SwapBaseIn{
		AmountIn:         100,
		MinimumAmountOut: 92,
	}, f.swapAccounts(t, 1000, 1000, 1000))
	if !errors.Is(err, ammerrors.ErrExceededSlippage) {
		t.Fatalf("swapBaseIn error = %v, want ErrExceededSlippage", err)
	}
	if len(f.invoker.transfers) != 0 {
		t.Error("transfers issued despite slippage failure")
	}
}

func TestSwapBaseOutGrossUp(t *testing.T) {
	f := newPoolFixture(t, 1000, 1000, 1000, state.StatusSwapOnly)
	ctx := context.Background()
	accounts := f.swapAccounts(t, 1000, 1000, 1000)

	// 91 out needs net 101 in; grossed up for the 25/10000 fee that is 102.
	err := f.engine.swapBaseOut(ctx, &instruction.SwapBaseOut{
		MaxAmountIn: 110,
		AmountOut:   91,
	}, accounts)
	if err != nil {
		t.Fatalf("swapBaseOut error = %v", err)
	}
	if f.invoker.transfers[0].Amount != 102 || f.invoker.transfers[1].Amount != 91 {
		t.Errorf("amounts = %d/%d, want 102/91",
			f.invoker.transfers[0].Amount, f.invoker.transfers[1].Amount)
	}

	pool := decodePool(t, accounts[1])
	if pool.StateData.SwapAccCoinFee != 1 {
		t.Errorf("SwapAccCoinFee = %d, want 1", pool.StateData.SwapAccCoinFee)
	}
}

func TestSwapBaseOutBounds(t *testing.T) {
	f := newPoolFixture(t, 1000, 1000, 1000, state.StatusSwapOnly)
	ctx := context.Background()

	// Draining the whole output reserve is impossible.
	err := f.engine.swapBaseOut(ctx, &instruction.SwapBaseOut{
		MaxAmountIn: 1 << 40,
		AmountOut:   1000,
	}, f.swapAccounts(t, 1000, 1000, 1000))
	if !errors.Is(err, ammerrors.ErrInsufficientFunds) {
		t.Errorf("drain error = %v, want ErrInsufficientFunds", err)
	}

	// A too-tight input cap fails as slippage.
	err = f.engine.swapBaseOut(ctx, &instruction.SwapBaseOut{
		MaxAmountIn: 101,
		AmountOut:   91,
	}, f.swapAccounts(t, 1000, 1000, 1000))
	if !errors.Is(err, ammerrors.ErrExceededSlippage) {
		t.Errorf("tight cap error = %v, want ErrExceededSlippage", err)
	}
}

func TestSwapSelfTransitions(t *testing.T) {
	// A waiting pool opens at its open time as a side effect of the swap.
	f := newPoolFixture(t, 1000, 1000, 1000, state.StatusWaitingTrade)
	f.pool.StateData.PoolOpenTime = fixedNow
	ctx := context.Background()
	accounts := f.swapAccounts(t, 1000, 1000, 1000)

	err := f.engine.swapBaseIn(ctx, &instruction.SwapBaseIn{AmountIn: 100}, accounts)
	if err != nil {
		t.Fatalf("swapBaseIn error = %v", err)
	}
	if got := decodePool(t, accounts[1]).GetStatus(); got != state.StatusSwapOnly {
		t.Errorf("status = %v, want StatusSwapOnly", got)
	}

	// Before the open time the swap is rejected and nothing transitions.
	f = newPoolFixture(t, 1000, 1000, 1000, state.StatusWaitingTrade)
	f.pool.StateData.PoolOpenTime = fixedNow + 60
	err = f.engine.swapBaseIn(ctx, &instruction.SwapBaseIn{AmountIn: 100},
		f.swapAccounts(t, 1000, 1000, 1000))
	if !errors.Is(err, ammerrors.ErrInvalidStatus) {
		t.Fatalf("early swap error = %v, want ErrInvalidStatus", err)
	}

	// An order-book-only pool reverts to initialized at its switch time.
	f = newPoolFixture(t, 1000, 1000, 1000, state.StatusOrderBookOnly)
	f.pool.StateData.OrderbookToInitTime = fixedNow
	accounts = f.swapAccounts(t, 1000, 1000, 1000)
	err = f.engine.swapBaseIn(ctx, &instruction.SwapBaseIn{AmountIn: 100}, accounts)
	if err != nil {
		t.Fatalf("swapBaseIn error = %v", err)
	}
	if got := decodePool(t, accounts[1]).GetStatus(); got != state.StatusInitialized {
		t.Errorf("status = %v, want StatusInitialized", got)
	}
}

func TestSwapDrainsOutputSideWhenVaultShort(t *testing.T) {
	f := newPoolFixture(t, 1000, 1000, 1000, state.StatusInitialized)
	f.venue.state = &market.State{PcTotal: 950}
	f.venue.orders = []market.Order{
		{ClientID: 1, Side: market.SideBid, Price: 100},
		{ClientID: 2, Side: market.SideBid, Price: 99},
		{ClientID: 3, Side: market.SideAsk, Price: 110},
	}
	ctx := context.Background()

	// The pc vault holds only 50 directly; the 91 output forces a bid-side
	// drain before the transfer.
	accounts := f.swapAccounts(t, 1000, 50, 1000)
	err := f.engine.swapBaseIn(ctx, &instruction.SwapBaseIn{
		AmountIn:         100,
		MinimumAmountOut: 91,
	}, accounts)
	if err != nil {
		t.Fatalf("swapBaseIn error = %v", err)
	}
	if f.venue.settles != 1 {
		t.Errorf("settles = %d, want 1", f.venue.settles)
	}
	if len(f.venue.cancelled) != 1 {
		t.Fatalf("cancel batches = %d, want 1", len(f.venue.cancelled))
	}
	for _, id := range f.venue.cancelled[0] {
		if id == 3 {
			t.Error("ask-side order cancelled during a bid-side drain")
		}
	}
	if len(f.venue.cancelled[0]) != 2 {
		t.Errorf("cancelled ids = %v, want both bids", f.venue.cancelled[0])
	}
}

func TestSwapRejectsWrongAccountCount(t *testing.T) {
	f := newPoolFixture(t, 1000, 1000, 1000, state.StatusSwapOnly)
	ctx := context.Background()

	accounts := f.swapAccounts(t, 1000, 1000, 1000)
	err := f.engine.swapBaseIn(ctx, &instruction.SwapBaseIn{AmountIn: 100}, accounts[:18])
	if !errors.Is(err, ammerrors.ErrWrongAccountsNumber) {
		t.Errorf("short list error = %v, want ErrWrongAccountsNumber", err)
	}
}
