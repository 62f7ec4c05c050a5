package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	Port           string
	RPCURL         string
	Commitment     string
	MongoURI       string
	MongoDB        string
	AdminToken     string
	RateLimitRPM   int
	MaxConcurrency int

	BalanceTimeout time.Duration
	KeyCacheTTL    time.Duration

	// Flight cache tuning. CacheTTL == 0 disables caching entirely; a
	// negative value switches to periodic eviction of the oldest entries.
	CacheTTL          time.Duration
	CacheMaxEvicted   int
	CacheScanInterval time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// Load reads configuration from the environment with sane defaults. A .env
// file in the working directory is applied first when present; real
// environment variables win over it.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:           getenv("PORT", "8080"),
		RPCURL:         getenv("SOLANA_RPC_URL", ""),
		Commitment:     getenv("SOL_COMMITMENT", "finalized"),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGO_DB", "solcache"),
		AdminToken:     getenv("ADMIN_TOKEN", ""),
		RateLimitRPM:   getint("RATE_LIMIT_RPM", 10),
		MaxConcurrency: getint("MAX_CONCURRENCY", 16),

		BalanceTimeout: getdur("BALANCE_TIMEOUT", 3*time.Second),
		KeyCacheTTL:    getdur("KEY_CACHE_TTL", 60*time.Second),

		CacheTTL:          getdur("CACHE_TTL", 10*time.Second),
		CacheMaxEvicted:   getint("CACHE_MAX_EVICTED", 2),
		CacheScanInterval: getdur("CACHE_SCAN_INTERVAL", time.Minute),
	}
}
