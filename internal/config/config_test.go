package config

import "testing"

func TestEngineConfigHookKeys(t *testing.T) {
	ec := &EngineConfig{AutoInitHooks: []string{
		"11111111111111111111111111111111",
		"TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb",
	}}
	keys, err := ec.HookKeys()
	if err != nil {
		t.Fatalf("HookKeys() error = %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("len(keys) = %d, want 2", len(keys))
	}
	if keys[1].String() != "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb" {
		t.Errorf("keys[1] = %s", keys[1])
	}
}

func TestEngineConfigHookKeysRejectsBadKey(t *testing.T) {
	ec := &EngineConfig{AutoInitHooks: []string{"not-a-key"}}
	if _, err := ec.HookKeys(); err == nil {
		t.Fatal("HookKeys() accepted an invalid base58 key")
	}
}

func TestGetRPCEndpoint(t *testing.T) {
	sc := &SolanaConfig{RPC: "http://127.0.0.1:8899"}
	if got := sc.GetRPCEndpoint(); got != "http://127.0.0.1:8899" {
		t.Errorf("explicit RPC = %s", got)
	}
	sc = &SolanaConfig{Network: "mainnet-beta"}
	if got := sc.GetRPCEndpoint(); got != "https://api.mainnet-beta.solana.com" {
		t.Errorf("mainnet endpoint = %s", got)
	}
}
