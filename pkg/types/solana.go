// Package types provides base Solana types and structures used throughout the
// ammcore engine. It wraps and extends the solana-go library types for
// consistency and convenience.
package types

import (
	"github.com/gagliardetto/solana-go"
)

// Pubkey is a Solana public key (32 bytes).
type Pubkey = solana.PublicKey

// Signature is a Solana transaction signature (64 bytes).
type Signature = solana.Signature

// Hash is a Solana hash (32 bytes), typically used for blockhashes.
type Hash = solana.Hash

// ZeroPubkey is the all-zero public key, used as the "absent" marker for
// optional account references such as the referrer wallet.
var ZeroPubkey = Pubkey{}

// Account represents a Solana account with its data and metadata.
type Account struct {
	// Lamports is the number of lamports owned by this account.
	Lamports uint64 `json:"lamports"`

	// Data is the data held in this account.
	Data []byte `json:"data"`

	// Owner is the program that owns this account.
	Owner Pubkey `json:"owner"`

	// Executable indicates if the account contains a program.
	Executable bool `json:"executable"`

	// RentEpoch is the epoch at which this account will next owe rent.
	RentEpoch uint64 `json:"rent_epoch"`
}

// AccountMeta describes a single account involved in an instruction.
type AccountMeta struct {
	// Pubkey is the public key of the account.
	Pubkey Pubkey `json:"pubkey"`

	// IsSigner indicates if the account is a signer.
	IsSigner bool `json:"is_signer"`

	// IsWritable indicates if the account is writable.
	IsWritable bool `json:"is_writable"`
}

// ToSolanaAccountMeta converts to solana-go AccountMeta.
func (am *AccountMeta) ToSolanaAccountMeta() *solana.AccountMeta {
	return &solana.AccountMeta{
		PublicKey:  am.Pubkey,
		IsSigner:   am.IsSigner,
		IsWritable: am.IsWritable,
	}
}

// FromSolanaAccountMeta creates AccountMeta from solana-go AccountMeta.
func FromSolanaAccountMeta(meta *solana.AccountMeta) AccountMeta {
	return AccountMeta{
		Pubkey:     meta.PublicKey,
		IsSigner:   meta.IsSigner,
		IsWritable: meta.IsWritable,
	}
}

// Instruction represents a Solana instruction.
type Instruction struct {
	// ProgramID is the program that will process this instruction.
	ProgramID Pubkey `json:"program_id"`

	// Accounts is the list of accounts to pass to the program.
	Accounts []AccountMeta `json:"accounts"`

	// Data is the instruction data.
	Data []byte `json:"data"`
}

// MustPubkey parses a base58 public key and panics on failure. It is meant
// for hard-coded program identifiers validated at startup.
func MustPubkey(s string) Pubkey {
	return solana.MustPublicKeyFromBase58(s)
}

// PubkeyFromBase58 parses a base58 public key.
func PubkeyFromBase58(s string) (Pubkey, error) {
	return solana.PublicKeyFromBase58(s)
}

// CreateProgramAddress derives a program address from seeds. It fails when
// the result lands on the ed25519 curve, so callers carrying a stored bump
// seed get exactly the address recorded at creation or an error.
func CreateProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, error) {
	return solana.CreateProgramAddress(seeds, programID)
}

// FindProgramAddress searches bump seeds for a valid derived address.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, uint8, error) {
	return solana.FindProgramAddress(seeds, programID)
}
