package market

import (
	"sort"
)

// DrainMode selects which side(s) of the book a cancellation pass drains.
type DrainMode uint8

const (
	// DrainBoth drains bids and asks round-robin; used by withdraw and
	// the monitor crank, which must flatten the whole book.
	DrainBoth DrainMode = iota

	// DrainBids drains only the bid side.
	DrainBids

	// DrainAsks drains only the ask side.
	DrainAsks
)

// SplitAndSort partitions orders into bids and asks in processing order:
// bids price descending, asks price ascending. The ordering is cosmetic to
// cancellation but fixed for deterministic logging and replay. Ties break
// on client id so equal-priced orders also process deterministically.
func SplitAndSort(orders []Order) (bids, asks []Order) {
	for _, o := range orders {
		if o.Side == SideBid {
			bids = append(bids, o)
		} else {
			asks = append(asks, o)
		}
	}
	sort.Slice(bids, func(i, j int) bool {
		if bids[i].Price != bids[j].Price {
			return bids[i].Price > bids[j].Price
		}
		return bids[i].ClientID < bids[j].ClientID
	})
	sort.Slice(asks, func(i, j int) bool {
		if asks[i].Price != asks[j].Price {
			return asks[i].Price < asks[j].Price
		}
		return asks[i].ClientID < asks[j].ClientID
	})
	return bids, asks
}

// BuildCancelBatches assembles the client-id batches for a cancellation
// pass. In DrainBoth mode bids and asks are interleaved round-robin; the
// single-side modes take their side's orders in processing order. Every
// batch holds at most CancelBatchSize ids.
func BuildCancelBatches(bids, asks []Order, mode DrainMode) [][]uint64 {
	var ids []uint64
	switch mode {
	case DrainBids:
		for _, o := range bids {
			ids = append(ids, o.ClientID)
		}
	case DrainAsks:
		for _, o := range asks {
			ids = append(ids, o.ClientID)
		}
	default:
		for i := 0; i < len(bids) || i < len(asks); i++ {
			if i < len(bids) {
				ids = append(ids, bids[i].ClientID)
			}
			if i < len(asks) {
				ids = append(ids, asks[i].ClientID)
			}
		}
	}

	var batches [][]uint64
	for len(ids) > 0 {
		n := len(ids)
		if n > CancelBatchSize {
			n = CancelBatchSize
		}
		batches = append(batches, ids[:n])
		ids = ids[n:]
	}
	return batches
}
