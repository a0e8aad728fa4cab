// Package token implements the engine's view of the token layer: fixed
// layout decoding of token accounts and mints (including the hook-program
// extension carried by newer mints) and the whitelist-gated transfer path
// for hooked mints.
package token

import (
	"encoding/binary"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// Token program identifiers.
var (
	TokenProgramID     = types.MustPubkey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	Token2022ProgramID = types.MustPubkey("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
)

// Base layout sizes. Extended accounts pad the base record to accountLen,
// append one account-type byte, then carry TLV extension entries.
const (
	mintLen    = 82
	accountLen = 165
	tlvStart   = accountLen + 1
)

// TLV extension type tags.
const (
	extTransferHook        uint16 = 14
	extTransferHookAccount uint16 = 15
)

// Account is a decoded token holding account.
type Account struct {
	Mint   types.Pubkey
	Owner  types.Pubkey
	Amount uint64

	Delegate        *types.Pubkey
	State           uint8
	DelegatedAmount uint64
	CloseAuthority  *types.Pubkey

	// Transferring is the transient re-entrancy marker set while a
	// hooked transfer is in flight. Only present on extended accounts.
	Transferring bool
}

// Mint is a decoded token mint.
type Mint struct {
	Supply          uint64
	Decimals        uint8
	Initialized     bool
	FreezeAuthority *types.Pubkey

	// HookProgram is the transfer-hook program this mint mandates, nil
	// when the mint carries no hook extension.
	HookProgram *types.Pubkey
}

func readOptionalPubkey(data []byte, offset int) *types.Pubkey {
	if binary.LittleEndian.Uint32(data[offset:]) == 0 {
		return nil
	}
	var pk types.Pubkey
	copy(pk[:], data[offset+4:offset+36])
	return &pk
}

// DecodeAccount decodes a token holding account from its fixed layout.
func DecodeAccount(data []byte) (*Account, error) {
	if len(data) < accountLen {
		return nil, errors.ErrExpectedAccount.WithDetails(map[string]any{
			"len": len(data),
		})
	}
	a := &Account{
		Amount:          binary.LittleEndian.Uint64(data[64:72]),
		State:           data[108],
		DelegatedAmount: binary.LittleEndian.Uint64(data[121:129]),
	}
	copy(a.Mint[:], data[0:32])
	copy(a.Owner[:], data[32:64])
	a.Delegate = readOptionalPubkey(data, 72)
	a.CloseAuthority = readOptionalPubkey(data, 129)
	if a.State == 0 {
		return nil, errors.ErrExpectedAccount
	}

	if len(data) > accountLen {
		if data[accountLen] != 2 { // account type tag
			return nil, errors.ErrExpectedAccount
		}
		if ext, ok := findExtension(data[tlvStart:], extTransferHookAccount); ok && len(ext) >= 1 {
			a.Transferring = ext[0] != 0
		}
	}
	return a, nil
}

// DecodeMint decodes a token mint from its fixed layout, picking up the
// hook-program extension when present.
func DecodeMint(data []byte) (*Mint, error) {
	if len(data) < mintLen {
		return nil, errors.ErrExpectedMint.WithDetails(map[string]any{
			"len": len(data),
		})
	}
	m := &Mint{
		Supply:      binary.LittleEndian.Uint64(data[36:44]),
		Decimals:    data[44],
		Initialized: data[45] != 0,
	}
	m.FreezeAuthority = readOptionalPubkey(data, 46)
	if !m.Initialized {
		return nil, errors.ErrExpectedMint
	}

	if len(data) > accountLen {
		if data[accountLen] != 1 { // mint type tag
			return nil, errors.ErrExpectedMint
		}
		if ext, ok := findExtension(data[tlvStart:], extTransferHook); ok && len(ext) >= 64 {
			var hook types.Pubkey
			copy(hook[:], ext[32:64]) // authority precedes the program id
			if hook != types.ZeroPubkey {
				m.HookProgram = &hook
			}
		}
	}
	return m, nil
}

// findExtension walks the TLV region looking for the given type tag.
func findExtension(tlv []byte, want uint16) ([]byte, bool) {
	for len(tlv) >= 4 {
		typ := binary.LittleEndian.Uint16(tlv[0:2])
		length := int(binary.LittleEndian.Uint16(tlv[2:4]))
		if len(tlv) < 4+length {
			return nil, false
		}
		if typ == want {
			return tlv[4 : 4+length], true
		}
		if typ == 0 { // uninitialized tail
			return nil, false
		}
		tlv = tlv[4+length:]
	}
	return nil, false
}

// MetaListAddress derives the address of the hook's extra-accounts metadata
// list for mint: a deterministic address under the hook program itself.
func MetaListAddress(hookProgram, mint types.Pubkey) (types.Pubkey, error) {
	addr, _, err := types.FindProgramAddress(
		[][]byte{[]byte("extra-account-metas"), mint[:]},
		hookProgram,
	)
	if err != nil {
		return types.ZeroPubkey, errors.ErrInvalidProgramAddress.WithCause(err)
	}
	return addr, nil
}
