package state

import (
	"bytes"

	bin "github.com/gagliardetto/binary"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// TargetOrder is one planned price level.
type TargetOrder struct {
	Price uint64 `json:"price"`
	Vol   uint64 `json:"vol"`
}

// TargetOrders is the order planning record attached one-to-one to a pool.
// CalcPnlX/CalcPnlY carry the normalized reserve baseline the PnL skim
// measures profit against. Field order is the persisted layout.
type TargetOrders struct {
	Owner      [4]uint64       `json:"owner"`
	BuyOrders  [10]TargetOrder `json:"buy_orders"`
	Padding1   [8]uint64       `json:"-"`
	TargetX    bin.Uint128     `json:"target_x"`
	TargetY    bin.Uint128     `json:"target_y"`
	PlanXBuy   bin.Uint128     `json:"plan_x_buy"`
	PlanYBuy   bin.Uint128     `json:"plan_y_buy"`
	PlanXSell  bin.Uint128     `json:"plan_x_sell"`
	PlanYSell  bin.Uint128     `json:"plan_y_sell"`
	PlacedX    bin.Uint128     `json:"placed_x"`
	PlacedY    bin.Uint128     `json:"placed_y"`
	CalcPnlX   bin.Uint128     `json:"calc_pnl_x"`
	CalcPnlY   bin.Uint128     `json:"calc_pnl_y"`
	SellOrders [10]TargetOrder `json:"sell_orders"`
	Padding2   [6]uint64       `json:"-"`

	ReplaceBuyClientID   [10]uint64  `json:"replace_buy_client_id"`
	ReplaceSellClientID  [10]uint64  `json:"replace_sell_client_id"`
	LastOrderNumerator   uint64      `json:"last_order_numerator"`
	LastOrderDenominator uint64      `json:"last_order_denominator"`
	FreeSlotBits         bin.Uint128 `json:"free_slot_bits"`
}

// NewTargetOrders returns a record bound to owner with every order slot
// free.
func NewTargetOrders(owner types.Pubkey) *TargetOrders {
	t := new(TargetOrders)
	for i := range t.Owner {
		t.Owner[i] = ownerWord(owner, i)
	}
	t.FreeSlotBits = bin.Uint128{Lo: ^uint64(0), Hi: ^uint64(0)}
	return t
}

// ownerWord packs 8 bytes of the owner key into a u64, little-endian.
func ownerWord(owner types.Pubkey, i int) uint64 {
	var w uint64
	for b := 7; b >= 0; b-- {
		w = w<<8 | uint64(owner[i*8+b])
	}
	return w
}

// CheckOwner verifies the record belongs to owner.
func (t *TargetOrders) CheckOwner(owner types.Pubkey) error {
	for i := range t.Owner {
		if t.Owner[i] != ownerWord(owner, i) {
			return errors.ErrInvalidTargetOwner
		}
	}
	return nil
}

// Baseline returns the stored PnL baseline (bx, by).
func (t *TargetOrders) Baseline() (uint64, uint64, error) {
	if t.CalcPnlX.Hi != 0 || t.CalcPnlY.Hi != 0 {
		return 0, 0, errors.ErrConversionFailure
	}
	return t.CalcPnlX.Lo, t.CalcPnlY.Lo, nil
}

// SetBaseline rewrites the PnL baseline to the given normalized reserves.
func (t *TargetOrders) SetBaseline(x, y uint64) {
	t.CalcPnlX = bin.Uint128{Lo: x}
	t.CalcPnlY = bin.Uint128{Lo: y}
}

// Marshal encodes the record in its fixed layout.
func (t *TargetOrders) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(t); err != nil {
		return nil, errors.ErrInvalidInput.WithCause(err)
	}
	return buf.Bytes(), nil
}

// DecodeTargetOrders decodes a record from its fixed layout.
func DecodeTargetOrders(data []byte) (*TargetOrders, error) {
	t := new(TargetOrders)
	if err := bin.NewBorshDecoder(data).Decode(t); err != nil {
		return nil, errors.ErrExpectedAccount.WithCause(err)
	}
	return t, nil
}
