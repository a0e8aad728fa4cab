package token

import (
	"encoding/binary"
	"testing"

	"github.com/lugondev/go-ammcore/pkg/types"
)

func buildAccountData(mint, owner types.Pubkey, amount uint64) []byte {
	data := make([]byte, accountLen)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1 // initialized
	return data
}

func buildMintData(supply uint64, decimals uint8) []byte {
	data := make([]byte, mintLen)
	binary.LittleEndian.PutUint64(data[36:44], supply)
	data[44] = decimals
	data[45] = 1 // initialized
	return data
}

func withHookExtension(mintData []byte, hookProgram types.Pubkey) []byte {
	data := make([]byte, tlvStart)
	copy(data, mintData)
	data[accountLen] = 1 // mint type tag

	var tlv [4 + 64]byte
	binary.LittleEndian.PutUint16(tlv[0:2], extTransferHook)
	binary.LittleEndian.PutUint16(tlv[2:4], 64)
	copy(tlv[4+32:], hookProgram[:])
	return append(data, tlv[:]...)
}

func TestDecodeAccount(t *testing.T) {
	mint := testPubkey(1)
	owner := testPubkey(2)
	acc, err := DecodeAccount(buildAccountData(mint, owner, 12345))
	if err != nil {
		t.Fatalf("DecodeAccount() error = %v", err)
	}
	if acc.Mint != mint || acc.Owner != owner || acc.Amount != 12345 {
		t.Errorf("decoded = %+v", acc)
	}
	if acc.Delegate != nil || acc.CloseAuthority != nil {
		t.Error("expected no delegate or close authority")
	}
}

func TestDecodeAccountRejectsShortOrUninitialized(t *testing.T) {
	if _, err := DecodeAccount(make([]byte, 10)); err == nil {
		t.Error("DecodeAccount(short) succeeded")
	}
	data := buildAccountData(testPubkey(1), testPubkey(2), 1)
	data[108] = 0 // uninitialized state
	if _, err := DecodeAccount(data); err == nil {
		t.Error("DecodeAccount(uninitialized) succeeded")
	}
}

func TestDecodeAccountDelegate(t *testing.T) {
	data := buildAccountData(testPubkey(1), testPubkey(2), 1)
	binary.LittleEndian.PutUint32(data[72:76], 1)
	delegate := testPubkey(5)
	copy(data[76:108], delegate[:])

	acc, err := DecodeAccount(data)
	if err != nil {
		t.Fatalf("DecodeAccount() error = %v", err)
	}
	if acc.Delegate == nil || *acc.Delegate != delegate {
		t.Errorf("Delegate = %v, want %v", acc.Delegate, delegate)
	}
}

func TestDecodeMintPlain(t *testing.T) {
	m, err := DecodeMint(buildMintData(1_000_000, 6))
	if err != nil {
		t.Fatalf("DecodeMint() error = %v", err)
	}
	if m.Supply != 1_000_000 || m.Decimals != 6 {
		t.Errorf("decoded = %+v", m)
	}
	if m.HookProgram != nil {
		t.Error("plain mint must have no hook program")
	}
}

func TestDecodeMintWithHook(t *testing.T) {
	hook := testPubkey(9)
	m, err := DecodeMint(withHookExtension(buildMintData(500, 9), hook))
	if err != nil {
		t.Fatalf("DecodeMint() error = %v", err)
	}
	if m.HookProgram == nil || *m.HookProgram != hook {
		t.Errorf("HookProgram = %v, want %v", m.HookProgram, hook)
	}
}

func TestDecodeMintHookZeroProgramIgnored(t *testing.T) {
	m, err := DecodeMint(withHookExtension(buildMintData(500, 9), types.ZeroPubkey))
	if err != nil {
		t.Fatalf("DecodeMint() error = %v", err)
	}
	if m.HookProgram != nil {
		t.Error("zeroed hook extension must decode as no hook")
	}
}

func TestMetaListAddressDeterministic(t *testing.T) {
	hook := testPubkey(3)
	mint := testPubkey(4)
	a1, err := MetaListAddress(hook, mint)
	if err != nil {
		t.Fatalf("MetaListAddress() error = %v", err)
	}
	a2, err := MetaListAddress(hook, mint)
	if err != nil {
		t.Fatalf("MetaListAddress() error = %v", err)
	}
	if a1 != a2 {
		t.Error("derivation is not deterministic")
	}
	other, err := MetaListAddress(hook, testPubkey(5))
	if err != nil {
		t.Fatalf("MetaListAddress() error = %v", err)
	}
	if other == a1 {
		t.Error("different mints derived the same address")
	}
}
