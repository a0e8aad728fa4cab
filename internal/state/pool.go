// Package state defines the persisted pool records: the pool ledger itself,
// the target-orders planning record holding the PnL baseline, and the hook
// whitelist. All records use a fixed borsh layout so they round-trip
// byte-for-byte through the host ledger.
package state

import (
	"bytes"

	bin "github.com/gagliardetto/binary"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// Fees holds the pool's fee schedule as fraction pairs. Each numerator must
// not exceed its denominator.
type Fees struct {
	MinSeparateNumerator   uint64 `json:"min_separate_numerator"`
	MinSeparateDenominator uint64 `json:"min_separate_denominator"`
	TradeFeeNumerator      uint64 `json:"trade_fee_numerator"`
	TradeFeeDenominator    uint64 `json:"trade_fee_denominator"`
	PnlNumerator           uint64 `json:"pnl_numerator"`
	PnlDenominator         uint64 `json:"pnl_denominator"`
	SwapFeeNumerator       uint64 `json:"swap_fee_numerator"`
	SwapFeeDenominator     uint64 `json:"swap_fee_denominator"`
}

// DefaultFees is the fee schedule applied at pool initialization: a 0.25%
// swap fee with 1/8 of collected fees skimmed as protocol PnL.
func DefaultFees() Fees {
	return Fees{
		MinSeparateNumerator:   5,
		MinSeparateDenominator: 10000,
		TradeFeeNumerator:      25,
		TradeFeeDenominator:    10000,
		PnlNumerator:           12,
		PnlDenominator:         100,
		SwapFeeNumerator:       25,
		SwapFeeDenominator:     10000,
	}
}

// Validate checks every fraction pair.
func (f *Fees) Validate() error {
	pairs := [][2]uint64{
		{f.MinSeparateNumerator, f.MinSeparateDenominator},
		{f.TradeFeeNumerator, f.TradeFeeDenominator},
		{f.PnlNumerator, f.PnlDenominator},
		{f.SwapFeeNumerator, f.SwapFeeDenominator},
	}
	for _, p := range pairs {
		if p[1] == 0 || p[0] > p[1] {
			return errors.ErrInvalidParamsSet.WithDetails(map[string]any{
				"numerator":   p[0],
				"denominator": p[1],
			})
		}
	}
	return nil
}

// StateData holds the pool's running accounting counters.
type StateData struct {
	// NeedTakePnlCoin is skimmed coin profit awaiting owner withdrawal.
	NeedTakePnlCoin uint64 `json:"need_take_pnl_coin"`
	// NeedTakePnlPc is skimmed pc profit awaiting owner withdrawal.
	NeedTakePnlPc uint64 `json:"need_take_pnl_pc"`
	// TotalPnlPc is cumulative pc profit ever skimmed.
	TotalPnlPc uint64 `json:"total_pnl_pc"`
	// TotalPnlCoin is cumulative coin profit ever skimmed.
	TotalPnlCoin uint64 `json:"total_pnl_coin"`
	// PoolOpenTime is the unix time swaps unlock for a waiting pool.
	PoolOpenTime uint64 `json:"pool_open_time"`
	// PunishPcAmount and PunishCoinAmount record confiscated amounts.
	PunishPcAmount   uint64 `json:"punish_pc_amount"`
	PunishCoinAmount uint64 `json:"punish_coin_amount"`
	// OrderbookToInitTime is when an orderbook-only pool reverts to
	// full permissions.
	OrderbookToInitTime uint64 `json:"orderbook_to_init_time"`

	SwapCoinInAmount  bin.Uint128 `json:"swap_coin_in_amount"`
	SwapPcOutAmount   bin.Uint128 `json:"swap_pc_out_amount"`
	SwapAccPcFee      uint64      `json:"swap_acc_pc_fee"`
	SwapPcInAmount    bin.Uint128 `json:"swap_pc_in_amount"`
	SwapCoinOutAmount bin.Uint128 `json:"swap_coin_out_amount"`
	SwapAccCoinFee    uint64      `json:"swap_acc_coin_fee"`
}

// PoolInfo is the pool ledger record. Field order is the persisted layout.
type PoolInfo struct {
	Status             uint64    `json:"status"`
	Nonce              uint64    `json:"nonce"`
	OrderNum           uint64    `json:"order_num"`
	Depth              uint64    `json:"depth"`
	CoinDecimals       uint64    `json:"coin_decimals"`
	PcDecimals         uint64    `json:"pc_decimals"`
	State              uint64    `json:"state"`
	ResetFlag          uint64    `json:"reset_flag"`
	MinSize            uint64    `json:"min_size"`
	VolMaxCutRatio     uint64    `json:"vol_max_cut_ratio"`
	AmountWave         uint64    `json:"amount_wave"`
	CoinLotSize        uint64    `json:"coin_lot_size"`
	PcLotSize          uint64    `json:"pc_lot_size"`
	MinPriceMultiplier uint64    `json:"min_price_multiplier"`
	MaxPriceMultiplier uint64    `json:"max_price_multiplier"`
	SysDecimalValue    uint64    `json:"sys_decimal_value"`
	Fees               Fees      `json:"fees"`
	StateData          StateData `json:"state_data"`

	CoinVault     types.Pubkey `json:"coin_vault"`
	PcVault       types.Pubkey `json:"pc_vault"`
	CoinVaultMint types.Pubkey `json:"coin_vault_mint"`
	PcVaultMint   types.Pubkey `json:"pc_vault_mint"`
	LpMint        types.Pubkey `json:"lp_mint"`
	OpenOrders    types.Pubkey `json:"open_orders"`
	Market        types.Pubkey `json:"market"`
	MarketProgram types.Pubkey `json:"market_program"`
	TargetOrders  types.Pubkey `json:"target_orders"`

	Padding1      [8]uint64    `json:"-"`
	AmmOwner      types.Pubkey `json:"amm_owner"`
	LpAmount      uint64       `json:"lp_amount"`
	ClientOrderID uint64       `json:"client_order_id"`
	RecentEpoch   uint64       `json:"recent_epoch"`
	Padding2      uint64       `json:"-"`
}

// GetStatus returns the typed status.
func (p *PoolInfo) GetStatus() Status {
	return Status(p.Status)
}

// SetStatus stores a typed status.
func (p *PoolInfo) SetStatus(s Status) {
	p.Status = uint64(s)
}

// CheckSwapPermission validates that a swap may run now and applies the two
// time-based self-transitions:
//
//   - StatusWaitingTrade flips to StatusSwapOnly once PoolOpenTime passes;
//     before that time the swap is rejected.
//   - StatusOrderBookOnly flips back to StatusInitialized once
//     OrderbookToInitTime passes.
//
// The transitions mutate the pool record as a side effect of the swap call.
func (p *PoolInfo) CheckSwapPermission(now uint64) error {
	status := p.GetStatus()
	if !status.SwapAllowed() {
		return errors.ErrInvalidStatus.WithDetails(map[string]any{
			"status": status.String(),
		})
	}
	switch status {
	case StatusWaitingTrade:
		if now < p.StateData.PoolOpenTime {
			return errors.ErrInvalidStatus.WithDetails(map[string]any{
				"status":         status.String(),
				"pool_open_time": p.StateData.PoolOpenTime,
				"now":            now,
			})
		}
		p.SetStatus(StatusSwapOnly)
	case StatusOrderBookOnly:
		if now >= p.StateData.OrderbookToInitTime {
			p.SetStatus(StatusInitialized)
		}
	}
	return nil
}

// Marshal encodes the pool record in its fixed layout.
func (p *PoolInfo) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(p); err != nil {
		return nil, errors.ErrInvalidInput.WithCause(err)
	}
	return buf.Bytes(), nil
}

// DecodePoolInfo decodes a pool record from its fixed layout.
func DecodePoolInfo(data []byte) (*PoolInfo, error) {
	p := new(PoolInfo)
	if err := bin.NewBorshDecoder(data).Decode(p); err != nil {
		return nil, errors.ErrExpectedAccount.WithCause(err)
	}
	return p, nil
}
