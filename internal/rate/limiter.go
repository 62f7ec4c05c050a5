package rate

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LimiterMap provides per-IP token-bucket rate limiting. Idle entries are
// reaped by a background goroutine so the map does not grow with every client
// ever seen.
type LimiterMap struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rpm     int
	burst   int
	idle    time.Duration
	stop    chan struct{}
}

// NewLimiterMap allows rpm requests per minute per IP with the given burst.
// Entries idle longer than idleTTL are dropped.
func NewLimiterMap(rpm, burst int, idleTTL time.Duration) *LimiterMap {
	lm := &LimiterMap{
		buckets: make(map[string]*bucket),
		rpm:     rpm,
		burst:   burst,
		idle:    idleTTL,
		stop:    make(chan struct{}),
	}
	go lm.reap()
	return lm
}

func (l *LimiterMap) reap() {
	t := time.NewTicker(l.idle)
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-t.C:
			l.mu.Lock()
			for ip, b := range l.buckets {
				if now.Sub(b.lastSeen) > l.idle {
					delete(l.buckets, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop terminates the reaper goroutine.
func (l *LimiterMap) Stop() { close(l.stop) }

// Allow reports whether a request from ip should proceed.
func (l *LimiterMap) Allow(ip string) bool {
	l.mu.Lock()
	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.rpm)), l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	l.mu.Unlock()
	return b.limiter.Allow()
}

// IPFromRequest extracts the client IP, preferring the first entry of
// X-Forwarded-For when a proxy set it.
func IPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
