package types

import "time"

const lamportsPerSOL = 1_000_000_000

// BalancesRequest is the payload for batch balance lookups.
type BalancesRequest struct {
	Wallets []string `json:"wallets"`
}

// BalanceEntry is one wallet's result.
type BalanceEntry struct {
	Wallet    string  `json:"wallet"`
	Lamports  uint64  `json:"lamports"`
	Sol       float64 `json:"sol"`
	Source    string  `json:"source"`     // "cache" or "rpc"
	FetchedAt string  `json:"fetched_at"` // RFC3339
}

// ErrorEntry captures a per-wallet failure.
type ErrorEntry struct {
	Wallet string `json:"wallet"`
	Error  string `json:"error"`
}

// BalancesResponse is the JSON response for the balances endpoint.
type BalancesResponse struct {
	Balances []BalanceEntry `json:"balances"`
	Errors   []ErrorEntry   `json:"errors,omitempty"`
}

// LamportsToSol converts lamports to SOL.
func LamportsToSol(l uint64) float64 { return float64(l) / lamportsPerSOL }

// NewBalanceEntry builds a BalanceEntry from raw lamports.
func NewBalanceEntry(wallet string, lamports uint64, source string, ts time.Time) BalanceEntry {
	return BalanceEntry{
		Wallet:    wallet,
		Lamports:  lamports,
		Sol:       LamportsToSol(lamports),
		Source:    source,
		FetchedAt: ts.UTC().Format(time.RFC3339),
	}
}
