package rate

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterMap_AllowAndThrottle(t *testing.T) {
	lm := NewLimiterMap(2, 1, 200*time.Millisecond) // 2 req/min, burst 1
	defer lm.Stop()

	ip := "1.2.3.4"
	assert.True(t, lm.Allow(ip), "first request passes")
	assert.False(t, lm.Allow(ip), "burst exhausted")
	assert.True(t, lm.Allow("9.9.9.9"), "other IPs have their own bucket")
}

func TestLimiterMap_ReapsIdleEntries(t *testing.T) {
	lm := NewLimiterMap(100, 1, 50*time.Millisecond)
	defer lm.Stop()

	ip := "5.6.7.8"
	assert.True(t, lm.Allow(ip))
	time.Sleep(120 * time.Millisecond)

	lm.mu.Lock()
	_, stillThere := lm.buckets[ip]
	lm.mu.Unlock()
	assert.False(t, stillThere, "idle bucket should be reaped")

	// A fresh bucket is created on the next request.
	assert.True(t, lm.Allow(ip))
}

func TestIPFromRequest(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "http://x/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")
	assert.Equal(t, "203.0.113.1", IPFromRequest(r))

	r2, _ := http.NewRequest(http.MethodGet, "http://x/", nil)
	r2.RemoteAddr = "192.0.2.5:1234"
	assert.Equal(t, "192.0.2.5", IPFromRequest(r2))

	r3, _ := http.NewRequest(http.MethodGet, "http://x/", nil)
	r3.RemoteAddr = "192.0.2.6"
	assert.Equal(t, "192.0.2.6", IPFromRequest(r3))
}
