package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	sol "github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/example/solcache/internal/chain"
	"github.com/example/solcache/internal/flightcache"
	"github.com/example/solcache/internal/types"
	"github.com/example/solcache/pkg/jsonutil"
)

const maxWalletsPerRequest = 100

// balance is the value cached per wallet.
type balance struct {
	Lamports  uint64
	FetchedAt time.Time
}

// BalanceDeps bundles the handler's dependencies and cache tuning.
type BalanceDeps struct {
	Fetcher        chain.BalanceFetcher
	Timeout        time.Duration
	MaxConcurrency int

	CacheTTL          time.Duration
	CacheMaxEvicted   int
	CacheScanInterval time.Duration
}

// BalanceHandler serves batch wallet balance lookups. Each wallet goes
// through a coalescing cache, so concurrent requests for the same wallet
// trigger a single RPC call per validity window.
type BalanceHandler struct {
	deps  BalanceDeps
	cache *flightcache.Cache[string, balance]
}

func NewBalanceHandler(deps BalanceDeps) *BalanceHandler {
	return &BalanceHandler{
		deps: deps,
		cache: flightcache.New[string, balance](deps.CacheTTL,
			flightcache.WithMaxEvicted(deps.CacheMaxEvicted),
			flightcache.WithScanInterval(deps.CacheScanInterval)),
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, w := range in {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func (h *BalanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req types.BalancesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	if len(req.Wallets) == 0 {
		jsonutil.Error(w, http.StatusBadRequest, "wallets required")
		return
	}
	if len(req.Wallets) > maxWalletsPerRequest {
		jsonutil.Error(w, http.StatusBadRequest, "too many wallets")
		return
	}

	wallets := dedupe(req.Wallets)
	resp := types.BalancesResponse{Balances: make([]types.BalanceEntry, 0, len(wallets))}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(h.deps.MaxConcurrency)
	for _, wstr := range wallets {
		pk, err := sol.PublicKeyFromBase58(wstr)
		if err != nil {
			mu.Lock()
			resp.Errors = append(resp.Errors, types.ErrorEntry{Wallet: wstr, Error: "invalid public key"})
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(r.Context(), h.deps.Timeout)
			defer cancel()

			val, hit, err := h.cache.Get(ctx, wstr, func(ctx context.Context) (balance, error) {
				lamports, latency, err := h.deps.Fetcher.GetBalance(ctx, pk)
				if err != nil {
					return balance{}, err
				}
				log.WithFields(log.Fields{
					"wallet":     wstr,
					"latency_ms": latency.Milliseconds(),
				}).Info("rpc fetch")
				return balance{Lamports: lamports, FetchedAt: time.Now().UTC()}, nil
			})
			if err != nil {
				mu.Lock()
				resp.Errors = append(resp.Errors, types.ErrorEntry{Wallet: wstr, Error: err.Error()})
				mu.Unlock()
				return nil
			}
			source := "rpc"
			if hit {
				source = "cache"
			}
			mu.Lock()
			resp.Balances = append(resp.Balances, types.NewBalanceEntry(wstr, val.Lamports, source, val.FetchedAt))
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Deterministic output ordering.
	sort.Slice(resp.Balances, func(i, j int) bool { return resp.Balances[i].Wallet < resp.Balances[j].Wallet })
	sort.Slice(resp.Errors, func(i, j int) bool { return resp.Errors[i].Wallet < resp.Errors[j].Wallet })

	jsonutil.JSON(w, http.StatusOK, resp)
}

// CacheLen reports the number of cached wallets, for tests and diagnostics.
func (h *BalanceHandler) CacheLen() int { return h.cache.Len() }
