package engine

import (
	"time"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/internal/state"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// AuthoritySeed is the namespace tag of the pool authority credential.
const AuthoritySeed = "amm authority"

func unixNow() uint64 {
	return uint64(time.Now().Unix())
}

// DeriveAuthority recomputes the pool's derived authority from the program
// identity and the pool's stored nonce.
func DeriveAuthority(programID types.Pubkey, nonce uint8) (types.Pubkey, error) {
	addr, err := types.CreateProgramAddress(
		[][]byte{[]byte(AuthoritySeed), {nonce}},
		programID,
	)
	if err != nil {
		return types.ZeroPubkey, errors.ErrInvalidProgramAddress.WithCause(err)
	}
	return addr, nil
}

// checkAuthority verifies that supplied matches the pool's derived
// authority.
func (e *Engine) checkAuthority(supplied types.Pubkey, nonce uint64) error {
	derived, err := DeriveAuthority(e.programID, uint8(nonce))
	if err != nil {
		return err
	}
	if supplied != derived {
		return errors.ErrInvalidProgramAddress.WithDetails(map[string]any{
			"supplied": supplied.String(),
			"derived":  derived.String(),
		})
	}
	return nil
}

// authoritySeeds returns the signing seeds for the derived authority.
func (e *Engine) authoritySeeds(nonce uint64) [][]byte {
	return [][]byte{[]byte(AuthoritySeed), {uint8(nonce)}}
}

// AssociatedAddress derives the deterministic address for one of the
// pool's companion records (vaults, lp mint, open orders, target orders)
// from the market it serves and a record-specific tag.
func AssociatedAddress(programID, market types.Pubkey, tag []byte) (types.Pubkey, error) {
	addr, _, err := types.FindProgramAddress(
		[][]byte{programID[:], market[:], tag},
		programID,
	)
	if err != nil {
		return types.ZeroPubkey, errors.ErrInvalidProgramAddress.WithCause(err)
	}
	return addr, nil
}

// WhitelistAddress derives the deployment's single whitelist record
// address.
func WhitelistAddress(programID types.Pubkey) (types.Pubkey, error) {
	addr, _, err := types.FindProgramAddress(
		[][]byte{[]byte(state.WhitelistSeed)},
		programID,
	)
	if err != nil {
		return types.ZeroPubkey, errors.ErrInvalidProgramAddress.WithCause(err)
	}
	return addr, nil
}

// ConfigAddress derives the deployment's single config record address.
func ConfigAddress(programID types.Pubkey) (types.Pubkey, error) {
	addr, _, err := types.FindProgramAddress(
		[][]byte{[]byte(state.ConfigSeed)},
		programID,
	)
	if err != nil {
		return types.ZeroPubkey, errors.ErrInvalidProgramAddress.WithCause(err)
	}
	return addr, nil
}
