// Package market models the pool's relationship with the external order
// book venue: the narrow venue interface, resting-order snapshots, and the
// cancel/settle reconciliation that turns venue-held value back into vault
// balances.
//
// The venue's matching engine is opaque to this package. Everything here
// works off a single state snapshot loaded per operation; snapshots are
// never cached across operations because venue state can change between
// invocations.
package market

import (
	"context"

	"github.com/lugondev/go-ammcore/pkg/types"
)

// CancelBatchSize is the venue's per-call bound on client-order-id
// cancellation.
const CancelBatchSize = 8

// Side distinguishes the two halves of the book.
type Side uint8

const (
	SideBid Side = iota
	SideAsk
)

func (s Side) String() string {
	if s == SideBid {
		return "bid"
	}
	return "ask"
}

// Order is one resting order owned by the pool.
type Order struct {
	// ClientID is the pool-assigned client order id used for cancellation.
	ClientID uint64 `json:"client_id"`

	Side  Side   `json:"side"`
	Price uint64 `json:"price"`

	// CoinQty and PcQty are the amounts locked in this order, in the
	// pool's two legs.
	CoinQty uint64 `json:"coin_qty"`
	PcQty   uint64 `json:"pc_qty"`
}

// State is a snapshot of the value the venue holds on the pool's behalf.
type State struct {
	// CoinTotal and PcTotal include both free and order-locked balances.
	CoinTotal uint64 `json:"coin_total"`
	PcTotal   uint64 `json:"pc_total"`

	// CoinFree and PcFree are settleable immediately.
	CoinFree uint64 `json:"coin_free"`
	PcFree   uint64 `json:"pc_free"`
}

// Venue is the external order book. Implementations wrap the real venue
// program; tests substitute fakes.
type Venue interface {
	// LoadState returns the venue-held balances for the pool's open
	// orders record.
	LoadState(ctx context.Context, market, openOrders types.Pubkey) (*State, error)

	// ListOrders returns every resting order owned by openOrders.
	ListOrders(ctx context.Context, market, openOrders types.Pubkey) ([]Order, error)

	// CancelBatch cancels up to CancelBatchSize orders by client id.
	CancelBatch(ctx context.Context, market, openOrders types.Pubkey, clientIDs []uint64) error

	// Settle moves matched and cancelled funds from venue-held vaults
	// back into the pool vaults. The optional referrer receives the
	// venue's referral rebate.
	Settle(ctx context.Context, market, openOrders types.Pubkey, referrer *types.Pubkey) error
}
