package market

import (
	"context"
	"testing"

	"github.com/lugondev/go-ammcore/pkg/types"
)

type fakeVenue struct {
	orders  []Order
	state   State
	batches [][]uint64
	settles int
}

func (f *fakeVenue) LoadState(ctx context.Context, market, openOrders types.Pubkey) (*State, error) {
	s := f.state
	return &s, nil
}

func (f *fakeVenue) ListOrders(ctx context.Context, market, openOrders types.Pubkey) ([]Order, error) {
	return f.orders, nil
}

func (f *fakeVenue) CancelBatch(ctx context.Context, market, openOrders types.Pubkey, clientIDs []uint64) error {
	ids := make([]uint64, len(clientIDs))
	copy(ids, clientIDs)
	f.batches = append(f.batches, ids)
	return nil
}

func (f *fakeVenue) Settle(ctx context.Context, market, openOrders types.Pubkey, referrer *types.Pubkey) error {
	f.settles++
	return nil
}

func makeOrders(bidN, askN int) []Order {
	var orders []Order
	for i := 0; i < bidN; i++ {
		orders = append(orders, Order{
			ClientID: uint64(100 + i),
			Side:     SideBid,
			Price:    uint64(50 - i),
		})
	}
	for i := 0; i < askN; i++ {
		orders = append(orders, Order{
			ClientID: uint64(200 + i),
			Side:     SideAsk,
			Price:    uint64(60 + i),
		})
	}
	return orders
}

func TestSplitAndSortOrdering(t *testing.T) {
	orders := []Order{
		{ClientID: 1, Side: SideBid, Price: 10},
		{ClientID: 2, Side: SideBid, Price: 30},
		{ClientID: 3, Side: SideBid, Price: 20},
		{ClientID: 4, Side: SideAsk, Price: 90},
		{ClientID: 5, Side: SideAsk, Price: 70},
		{ClientID: 6, Side: SideAsk, Price: 80},
	}
	bids, asks := SplitAndSort(orders)

	wantBids := []uint64{2, 3, 1} // price 30, 20, 10
	for i, id := range wantBids {
		if bids[i].ClientID != id {
			t.Errorf("bids[%d].ClientID = %d, want %d", i, bids[i].ClientID, id)
		}
	}
	wantAsks := []uint64{5, 6, 4} // price 70, 80, 90
	for i, id := range wantAsks {
		if asks[i].ClientID != id {
			t.Errorf("asks[%d].ClientID = %d, want %d", i, asks[i].ClientID, id)
		}
	}
}

func TestBuildCancelBatchesRoundRobin(t *testing.T) {
	bids, asks := SplitAndSort(makeOrders(3, 2))
	batches := BuildCancelBatches(bids, asks, DrainBoth)
	if len(batches) != 1 {
		t.Fatalf("len(batches) = %d, want 1", len(batches))
	}
	// Best bid, best ask, next bid, next ask, last bid.
	want := []uint64{100, 200, 101, 201, 102}
	got := batches[0]
	if len(got) != len(want) {
		t.Fatalf("batch = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("batch[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBuildCancelBatchesCountAndCoverage(t *testing.T) {
	tests := []struct {
		bidN, askN  int
		mode        DrainMode
		wantBatches int
		wantIDs     int
	}{
		{0, 0, DrainBoth, 0, 0},
		{4, 4, DrainBoth, 1, 8},
		{5, 4, DrainBoth, 2, 9},
		{10, 7, DrainBoth, 3, 17},
		{10, 7, DrainBids, 2, 10},
		{10, 7, DrainAsks, 1, 7},
	}
	for _, tt := range tests {
		bids, asks := SplitAndSort(makeOrders(tt.bidN, tt.askN))
		batches := BuildCancelBatches(bids, asks, tt.mode)
		if len(batches) != tt.wantBatches {
			t.Errorf("(%d, %d, %v): len(batches) = %d, want %d",
				tt.bidN, tt.askN, tt.mode, len(batches), tt.wantBatches)
		}
		seen := make(map[uint64]int)
		total := 0
		for _, b := range batches {
			if len(b) > CancelBatchSize {
				t.Errorf("batch size %d exceeds %d", len(b), CancelBatchSize)
			}
			for _, id := range b {
				seen[id]++
				total++
			}
		}
		if total != tt.wantIDs {
			t.Errorf("(%d, %d, %v): cancelled %d ids, want %d",
				tt.bidN, tt.askN, tt.mode, total, tt.wantIDs)
		}
		for id, n := range seen {
			if n != 1 {
				t.Errorf("client id %d cancelled %d times", id, n)
			}
		}
	}
}

func TestCancelAndSettle(t *testing.T) {
	venue := &fakeVenue{orders: makeOrders(9, 9)}
	r := NewReconciler(venue)

	var market, oo types.Pubkey
	if err := r.CancelAndSettle(context.Background(), market, oo, DrainBoth, nil); err != nil {
		t.Fatalf("CancelAndSettle() error = %v", err)
	}
	if len(venue.batches) != 3 { // ceil(18/8)
		t.Errorf("batches = %d, want 3", len(venue.batches))
	}
	if venue.settles != 1 {
		t.Errorf("settles = %d, want exactly 1", venue.settles)
	}
}

func TestCancelAndSettleEmptyBookStillSettles(t *testing.T) {
	venue := &fakeVenue{}
	r := NewReconciler(venue)

	var market, oo types.Pubkey
	if err := r.CancelAndSettle(context.Background(), market, oo, DrainBoth, nil); err != nil {
		t.Fatalf("CancelAndSettle() error = %v", err)
	}
	if len(venue.batches) != 0 {
		t.Errorf("batches = %d, want 0", len(venue.batches))
	}
	if venue.settles != 1 {
		t.Errorf("settles = %d, want 1", venue.settles)
	}
}

func TestTotalReserves(t *testing.T) {
	r := NewReconciler(&fakeVenue{})

	// Order book disabled: vault balances pass through.
	coin, pc, err := r.TotalReserves(1000, 2000, nil)
	if err != nil {
		t.Fatalf("TotalReserves(nil) error = %v", err)
	}
	if coin != 1000 || pc != 2000 {
		t.Errorf("TotalReserves(nil) = (%d, %d), want (1000, 2000)", coin, pc)
	}

	// Enabled: venue-held totals are included.
	coin, pc, err = r.TotalReserves(1000, 2000, &State{CoinTotal: 300, PcTotal: 500})
	if err != nil {
		t.Fatalf("TotalReserves() error = %v", err)
	}
	if coin != 1300 || pc != 2500 {
		t.Errorf("TotalReserves() = (%d, %d), want (1300, 2500)", coin, pc)
	}
}
