package state

// Status is the pool lifecycle state. The numeric values are part of the
// persisted pool layout and must not be reordered.
type Status uint64

const (
	StatusUninitialized Status = iota
	StatusInitialized
	StatusDisabled
	StatusWithdrawOnly
	StatusLiquidityOnly
	StatusOrderBookOnly
	StatusSwapOnly
	StatusWaitingTrade
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusInitialized:
		return "initialized"
	case StatusDisabled:
		return "disabled"
	case StatusWithdrawOnly:
		return "withdraw_only"
	case StatusLiquidityOnly:
		return "liquidity_only"
	case StatusOrderBookOnly:
		return "orderbook_only"
	case StatusSwapOnly:
		return "swap_only"
	case StatusWaitingTrade:
		return "waiting_trade"
	default:
		return "invalid"
	}
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s <= StatusWaitingTrade
}

// DepositAllowed reports whether deposits are permitted in this status.
func (s Status) DepositAllowed() bool {
	switch s {
	case StatusInitialized, StatusLiquidityOnly, StatusOrderBookOnly,
		StatusSwapOnly, StatusWaitingTrade:
		return true
	default:
		return false
	}
}

// WithdrawAllowed reports whether withdrawals are permitted in this status.
func (s Status) WithdrawAllowed() bool {
	switch s {
	case StatusInitialized, StatusWithdrawOnly, StatusLiquidityOnly,
		StatusOrderBookOnly, StatusSwapOnly, StatusWaitingTrade:
		return true
	default:
		return false
	}
}

// SwapAllowed reports whether swaps are permitted in this status.
// StatusWaitingTrade additionally gates on pool_open_time; that check and
// the accompanying self-transition live on PoolInfo.
func (s Status) SwapAllowed() bool {
	switch s {
	case StatusInitialized, StatusOrderBookOnly, StatusSwapOnly,
		StatusWaitingTrade:
		return true
	default:
		return false
	}
}

// OrderBookAllowed reports whether the pool may keep liquidity resting as
// orders on the external venue in this status.
func (s Status) OrderBookAllowed() bool {
	switch s {
	case StatusInitialized, StatusOrderBookOnly:
		return true
	default:
		return false
	}
}
