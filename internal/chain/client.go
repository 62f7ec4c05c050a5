// Package chain talks to the Solana RPC backend. Every call here is the
// expensive producer the flight cache exists to protect.
package chain

import (
	"context"
	"time"

	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// BalanceFetcher abstracts the balance lookup so handlers can be tested
// against a fake backend.
type BalanceFetcher interface {
	GetBalance(ctx context.Context, pubkey sol.PublicKey) (lamports uint64, latency time.Duration, err error)
}

// Client is the RPC-backed BalanceFetcher.
type Client struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
}

// NewClient builds a client against rpcURL. An empty commitment defaults to
// finalized.
func NewClient(rpcURL, commitment string) *Client {
	cm := rpc.CommitmentType(commitment)
	if cm == "" {
		cm = rpc.CommitmentFinalized
	}
	return &Client{rpc: rpc.New(rpcURL), commitment: cm}
}

// GetBalance returns the wallet balance in lamports along with the observed
// RPC round-trip time.
func (c *Client) GetBalance(ctx context.Context, pubkey sol.PublicKey) (uint64, time.Duration, error) {
	start := time.Now()
	res, err := c.rpc.GetBalance(ctx, pubkey, c.commitment)
	latency := time.Since(start)
	if err != nil {
		return 0, latency, err
	}
	return uint64(res.Value), latency, nil
}
