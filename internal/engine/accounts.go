package engine

import (
	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/state"
	"github.com/lugondev/go-ammcore/internal/token"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// Account list layouts. Each operation receives a fixed, ordered account
// list; optional tail accounts extend the base count.
const (
	// Deposit: token program, pool, authority, open orders, target
	// orders, lp mint, coin vault, pc vault, coin mint, pc mint, market,
	// user coin, user pc, user lp, user owner, event queue
	// (+ optional hook whitelist).
	depositBaseAccounts = 16

	// SwapBaseIn/SwapBaseOut: token program, pool, authority, open
	// orders, target orders, coin vault, pc vault, coin mint, pc mint,
	// market program, market, bids, asks, event queue, market coin
	// vault, market pc vault, user source, user dest, user owner
	// (+ optional hook whitelist).
	swapBaseAccounts = 19

	// Withdraw: token program, pool, authority, open orders, target
	// orders, lp mint, coin vault, pc vault, coin mint, pc mint, market
	// program, market, market coin vault, market pc vault, market vault
	// signer, user lp, user coin, user pc, user owner, event queue
	// (+ optional referrer pc wallet, hook whitelist, padding).
	withdrawBaseAccounts = 20
)

// Deposit account indexes.
const (
	depIdxTokenProgram = iota
	depIdxPool
	depIdxAuthority
	depIdxOpenOrders
	depIdxTargetOrders
	depIdxLpMint
	depIdxCoinVault
	depIdxPcVault
	depIdxCoinMint
	depIdxPcMint
	depIdxMarket
	depIdxUserCoin
	depIdxUserPc
	depIdxUserLp
	depIdxUserOwner
	depIdxEventQueue
	depIdxWhitelist // optional
)

// Swap account indexes.
const (
	swapIdxTokenProgram = iota
	swapIdxPool
	swapIdxAuthority
	swapIdxOpenOrders
	swapIdxTargetOrders
	swapIdxCoinVault
	swapIdxPcVault
	swapIdxCoinMint
	swapIdxPcMint
	swapIdxMarketProgram
	swapIdxMarket
	swapIdxBids
	swapIdxAsks
	swapIdxEventQueue
	swapIdxMarketCoinVault
	swapIdxMarketPcVault
	swapIdxUserSource
	swapIdxUserDest
	swapIdxUserOwner
	swapIdxWhitelist // optional
)

// Withdraw account indexes.
const (
	wdIdxTokenProgram = iota
	wdIdxPool
	wdIdxAuthority
	wdIdxOpenOrders
	wdIdxTargetOrders
	wdIdxLpMint
	wdIdxCoinVault
	wdIdxPcVault
	wdIdxCoinMint
	wdIdxPcMint
	wdIdxMarketProgram
	wdIdxMarket
	wdIdxMarketCoinVault
	wdIdxMarketPcVault
	wdIdxMarketVaultSigner
	wdIdxUserLp
	wdIdxUserCoin
	wdIdxUserPc
	wdIdxUserOwner
	wdIdxEventQueue
	wdIdxReferrerPc // optional
	wdIdxWhitelist  // optional
)

// expectAccounts validates the account count against the operation's base
// count plus up to optional tail accounts.
func expectAccounts(accounts []*Account, base, optional int) error {
	if len(accounts) < base || len(accounts) > base+optional {
		return errors.ErrWrongAccountsNumber.WithDetails(map[string]any{
			"got":  len(accounts),
			"want": base,
		})
	}
	return nil
}

func checkSigner(acc *Account) error {
	if !acc.IsSigner {
		return errors.ErrInvalidSignAccount.WithDetails(map[string]any{
			"account": acc.Key.String(),
		})
	}
	return nil
}

func checkKey(acc *Account, want types.Pubkey, sentinel *errors.AmmError) error {
	if acc.Key != want {
		return sentinel.WithDetails(map[string]any{
			"got":  acc.Key.String(),
			"want": want.String(),
		})
	}
	return nil
}

// loadPool decodes the pool record and verifies this program owns it.
func (e *Engine) loadPool(acc *Account) (*state.PoolInfo, error) {
	if acc.Owner != e.programID {
		return nil, errors.ErrInvalidAmmAccountOwner
	}
	pool, err := state.DecodePoolInfo(acc.Data)
	if err != nil {
		return nil, err
	}
	if !pool.GetStatus().Valid() {
		return nil, errors.ErrInvalidStatus
	}
	return pool, nil
}

func savePool(acc *Account, pool *state.PoolInfo) error {
	data, err := pool.Marshal()
	if err != nil {
		return err
	}
	acc.Data = data
	return nil
}

func (e *Engine) loadTarget(acc *Account, pool *state.PoolInfo, poolKey types.Pubkey) (*state.TargetOrders, error) {
	if err := checkKey(acc, pool.TargetOrders, errors.ErrInvalidTargetOrders); err != nil {
		return nil, err
	}
	if acc.Owner != e.programID {
		return nil, errors.ErrInvalidTargetAccountOwner
	}
	target, err := state.DecodeTargetOrders(acc.Data)
	if err != nil {
		return nil, err
	}
	if err := target.CheckOwner(poolKey); err != nil {
		return nil, err
	}
	return target, nil
}

func saveTarget(acc *Account, target *state.TargetOrders) error {
	data, err := target.Marshal()
	if err != nil {
		return err
	}
	acc.Data = data
	return nil
}

func loadTokenAccount(acc *Account) (*token.Account, error) {
	return token.DecodeAccount(acc.Data)
}

func loadMint(acc *Account) (*token.Mint, error) {
	return token.DecodeMint(acc.Data)
}

// loadWhitelist decodes the optional whitelist account at idx, verifying
// its derived address. Returns nil when the caller did not supply it; the
// gate fails closed on nil for hooked mints.
func (e *Engine) loadWhitelist(accounts []*Account, idx int) (*state.HookWhitelist, error) {
	if idx >= len(accounts) {
		return nil, nil
	}
	acc := accounts[idx]
	want, err := WhitelistAddress(e.programID)
	if err != nil {
		return nil, err
	}
	if err := checkKey(acc, want, errors.ErrInvalidConfigAccount); err != nil {
		return nil, err
	}
	return state.DecodeHookWhitelist(acc.Data)
}

// checkVaults verifies both vault accounts against the pool record and
// returns their decoded balances.
func (e *Engine) checkVaults(coinAcc, pcAcc *Account, pool *state.PoolInfo) (*token.Account, *token.Account, error) {
	if err := checkKey(coinAcc, pool.CoinVault, errors.ErrInvalidCoinVault); err != nil {
		return nil, nil, err
	}
	if err := checkKey(pcAcc, pool.PcVault, errors.ErrInvalidPCVault); err != nil {
		return nil, nil, err
	}
	coinVault, err := loadTokenAccount(coinAcc)
	if err != nil {
		return nil, nil, err
	}
	pcVault, err := loadTokenAccount(pcAcc)
	if err != nil {
		return nil, nil, err
	}
	return coinVault, pcVault, nil
}
