// Package solana wraps the RPC client with the small read surface the CLI
// needs to fetch pool and vault state for offline quoting.
package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client wraps the Solana RPC client
type Client struct {
	rpc *rpc.Client
}

// NewClient creates a new Solana client
func NewClient(endpoint string) *Client {
	return &Client{
		rpc: rpc.New(endpoint),
	}
}

// GetBalance returns the balance of an account in lamports
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	result, err := c.rpc.GetBalance(ctx, pubkey, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return result.Value, nil
}

// GetAccountInfo returns the account info for a given public key
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	result, err := c.rpc.GetAccountInfo(ctx, pubkey)
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}
	return result, nil
}

// GetAccountData fetches and returns just the raw data of an account.
func (c *Client) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	result, err := c.GetAccountInfo(ctx, pubkey)
	if err != nil {
		return nil, err
	}
	if result.Value == nil {
		return nil, fmt.Errorf("account %s not found", pubkey)
	}
	return result.Value.Data.GetBinary(), nil
}

// Close closes the client connection
func (c *Client) Close() error {
	// The underlying RPC client has no close method.
	return nil
}
