package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "SOLANA_RPC_URL", "SOL_COMMITMENT", "MONGO_URI", "MONGO_DB",
		"ADMIN_TOKEN", "RATE_LIMIT_RPM", "MAX_CONCURRENCY", "BALANCE_TIMEOUT",
		"KEY_CACHE_TTL", "CACHE_TTL", "CACHE_MAX_EVICTED", "CACHE_SCAN_INTERVAL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c := Load()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "finalized", c.Commitment)
	assert.NotEmpty(t, c.MongoURI)
	assert.NotEmpty(t, c.MongoDB)
	assert.Equal(t, 10, c.RateLimitRPM)
	assert.Equal(t, 16, c.MaxConcurrency)
	assert.Equal(t, 3*time.Second, c.BalanceTimeout)
	assert.Equal(t, 10*time.Second, c.CacheTTL)
	assert.Equal(t, 2, c.CacheMaxEvicted)
	assert.Equal(t, time.Minute, c.CacheScanInterval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT_RPM", "123")
	t.Setenv("CACHE_TTL", "150ms")
	t.Setenv("CACHE_MAX_EVICTED", "5")
	t.Setenv("CACHE_SCAN_INTERVAL", "0s")
	t.Setenv("BALANCE_TIMEOUT", "5s")
	t.Setenv("MAX_CONCURRENCY", "7")

	c := Load()
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 123, c.RateLimitRPM)
	assert.Equal(t, 150*time.Millisecond, c.CacheTTL)
	assert.Equal(t, 5, c.CacheMaxEvicted)
	assert.Equal(t, time.Duration(0), c.CacheScanInterval)
	assert.Equal(t, 5*time.Second, c.BalanceTimeout)
	assert.Equal(t, 7, c.MaxConcurrency)
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_RPM", "not-a-number")
	t.Setenv("CACHE_TTL", "soon")

	c := Load()
	assert.Equal(t, 10, c.RateLimitRPM)
	assert.Equal(t, 10*time.Second, c.CacheTTL)
}
