package state

import (
	"bytes"

	bin "github.com/gagliardetto/binary"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// WhitelistCapacity is the fixed number of hook program slots.
const WhitelistCapacity = 100

// WhitelistSeed is the namespace tag the whitelist record's address is
// derived from. Callers cannot substitute an arbitrary record.
const WhitelistSeed = "hook_whitelist"

// HookWhitelist is the authorization list of transfer-hook programs the
// engine will invoke. One record exists per deployment, at an address
// derived from WhitelistSeed.
type HookWhitelist struct {
	// Authority is the only key allowed to mutate the list.
	Authority types.Pubkey `json:"authority"`

	// Hooks holds the whitelisted program ids in slots [0, Count).
	Hooks [WhitelistCapacity]types.Pubkey `json:"hooks"`

	// Count is the number of occupied slots.
	Count uint64 `json:"count"`
}

// NewHookWhitelist returns an empty whitelist owned by authority.
func NewHookWhitelist(authority types.Pubkey) *HookWhitelist {
	return &HookWhitelist{Authority: authority}
}

// Initialized reports whether the record carries an authority. A zero
// authority means the record was never created; the gate treats that as
// "nothing whitelisted".
func (w *HookWhitelist) Initialized() bool {
	return w.Authority != types.ZeroPubkey
}

// Contains reports whether hook is whitelisted. Linear scan; capacity is
// small and fixed.
func (w *HookWhitelist) Contains(hook types.Pubkey) bool {
	for i := uint64(0); i < w.Count && i < WhitelistCapacity; i++ {
		if w.Hooks[i] == hook {
			return true
		}
	}
	return false
}

func (w *HookWhitelist) checkAuthority(caller types.Pubkey) error {
	if !w.Initialized() {
		return errors.ErrWhitelistNotInitialized
	}
	if caller != w.Authority {
		return errors.ErrInvalidWhitelistAuthority
	}
	return nil
}

// Add appends hook to the list. Adding a hook already present is a no-op
// success.
func (w *HookWhitelist) Add(caller, hook types.Pubkey) error {
	if err := w.checkAuthority(caller); err != nil {
		return err
	}
	if w.Contains(hook) {
		return nil
	}
	if w.Count >= WhitelistCapacity {
		return errors.ErrWhitelistCapacityExceeded
	}
	w.Hooks[w.Count] = hook
	w.Count++
	return nil
}

// Remove deletes hook from the list, compacting the occupied slots.
func (w *HookWhitelist) Remove(caller, hook types.Pubkey) error {
	if err := w.checkAuthority(caller); err != nil {
		return err
	}
	for i := uint64(0); i < w.Count; i++ {
		if w.Hooks[i] != hook {
			continue
		}
		w.Count--
		w.Hooks[i] = w.Hooks[w.Count]
		w.Hooks[w.Count] = types.ZeroPubkey
		return nil
	}
	return errors.ErrWhitelistHookNotFound
}

// TransferAuthority hands the list to a new authority.
func (w *HookWhitelist) TransferAuthority(caller, next types.Pubkey) error {
	if err := w.checkAuthority(caller); err != nil {
		return err
	}
	if next == types.ZeroPubkey {
		return errors.ErrInvalidInput
	}
	w.Authority = next
	return nil
}

// Marshal encodes the record in its fixed layout.
func (w *HookWhitelist) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(w); err != nil {
		return nil, errors.ErrInvalidInput.WithCause(err)
	}
	return buf.Bytes(), nil
}

// DecodeHookWhitelist decodes a record from its fixed layout.
func DecodeHookWhitelist(data []byte) (*HookWhitelist, error) {
	w := new(HookWhitelist)
	if err := bin.NewBorshDecoder(data).Decode(w); err != nil {
		return nil, errors.ErrExpectedAccount.WithCause(err)
	}
	return w, nil
}
