// Package flightcache provides a request-coalescing TTL cache: for a given
// key, a producer function runs at most once per validity window, its single
// result fans out to every caller that arrived while it was running, and
// stale entries are evicted lazily by a bounded scan at the start of each
// call rather than by a background timer.
package flightcache

import (
	"context"
	"sync"
	"time"
)

// Defaults applied by New when the corresponding option is not given.
const (
	DefaultMaxEvicted   = 2
	DefaultScanInterval = time.Minute
)

// Option configures a Cache.
type Option func(*settings)

type settings struct {
	maxEvicted   int
	scanInterval time.Duration
}

// WithMaxEvicted bounds how many records a single scan pass may remove.
func WithMaxEvicted(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxEvicted = n
		}
	}
}

// WithScanInterval sets the minimum wall-clock time between scan passes.
// Zero makes every Get eligible to scan.
func WithScanInterval(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.scanInterval = d
		}
	}
}

// result is the settled outcome of a producer call, fanned out to waiters.
type result[V any] struct {
	val V
	err error
}

// flight collects the waiters attached to an in-flight producer call, in
// arrival order. Fan-out resolves them in that order, but no ordering is
// promised relative to caller arrival or to the originating caller's own
// continuation: every caller receives the same value or error, nothing more.
type flight[V any] struct {
	waiters []chan result[V]
}

// record is the per-key cache entry. It has exactly two shapes: while the
// producer is running, pending is non-nil and the completed fields are unset;
// once it settles, the record is replaced by one with pending nil, the value,
// the creation timestamp (zero when entries do not expire by age) and the
// sequence number of its eviction-queue slot.
type record[V any] struct {
	pending *flight[V]

	val V
	at  time.Time
	seq uint64
}

// Cache coalesces concurrent lookups per key and caches results for a
// configurable validity window.
//
// The ttl passed to New selects the policy:
//
//	ttl == 0  caching disabled; a producer call still coalesces concurrent
//	          callers, but nothing is retained once it settles
//	ttl <  0  entries never expire by age; each scan pass unconditionally
//	          evicts up to MaxEvicted oldest entries
//	ttl >  0  entries expire ttl after creation
//
// All methods are safe for concurrent use. A single mutex guards the record
// store, the eviction queue and the scan throttle; the producer always runs
// outside the lock.
type Cache[K comparable, V any] struct {
	ttl          time.Duration
	maxEvicted   int
	scanInterval time.Duration

	mu       sync.Mutex
	records  map[K]*record[V]
	queue    evictQueue[K]
	lastScan time.Time

	now func() time.Time // test hook
}

// New returns a Cache with the given ttl policy.
func New[K comparable, V any](ttl time.Duration, opts ...Option) *Cache[K, V] {
	s := settings{
		maxEvicted:   DefaultMaxEvicted,
		scanInterval: DefaultScanInterval,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Cache[K, V]{
		ttl:          ttl,
		maxEvicted:   s.maxEvicted,
		scanInterval: s.scanInterval,
		records:      make(map[K]*record[V]),
		now:          time.Now,
	}
}

// Get returns the value for key, invoking fetch at most once per validity
// window no matter how many callers ask concurrently. The boolean reports
// whether the value was served from a completed cache entry. A fetch error is
// propagated verbatim to every coalesced caller and the failed entry is
// dropped, so the next Get retries from scratch.
//
// If ctx is cancelled while waiting on another caller's in-flight fetch, Get
// returns ctx.Err(); the fetch itself is not cancelled and its result still
// serves the remaining callers.
func (c *Cache[K, V]) Get(ctx context.Context, key K, fetch func(context.Context) (V, error)) (V, bool, error) {
	c.mu.Lock()
	c.shrink()

	rec, ok := c.records[key]
	if ok && rec.pending != nil {
		// Someone else's fetch is in flight; attach and wait for fan-out.
		w := make(chan result[V], 1)
		rec.pending.waiters = append(rec.pending.waiters, w)
		c.mu.Unlock()
		select {
		case res := <-w:
			return res.val, false, res.err
		case <-ctx.Done():
			var zero V
			return zero, false, ctx.Err()
		}
	}
	if ok {
		if c.ttl > 0 && rec.at.Add(c.ttl).Before(c.now()) {
			// Expired on read. The queue slot is tombstoned rather than
			// removed so the slots behind it keep their sequence numbers.
			c.queue.kill(rec.seq)
			delete(c.records, key)
		} else {
			v := rec.val
			c.mu.Unlock()
			return v, true, nil
		}
	}
	return c.fill(ctx, key, fetch)
}

// fill runs the producer for key. The caller must hold c.mu; fill unlocks it
// before invoking fetch. Installing the pending record before the producer
// runs is what makes the single-flight guarantee hold: every Get that arrives
// while fetch is running finds the pending record and attaches a waiter
// instead of starting a duplicate call.
func (c *Cache[K, V]) fill(ctx context.Context, key K, fetch func(context.Context) (V, error)) (V, bool, error) {
	fl := &flight[V]{}
	c.records[key] = &record[V]{pending: fl}
	c.mu.Unlock()

	val, err := fetch(ctx)

	c.mu.Lock()
	switch {
	case err != nil:
		// No negative caching: drop the pending record so the next call
		// retries. The key was never pushed onto the queue.
		delete(c.records, key)
	case c.ttl == 0:
		delete(c.records, key)
	default:
		rec := &record[V]{val: val, seq: c.queue.push(key)}
		if c.ttl > 0 {
			rec.at = c.now()
		}
		c.records[key] = rec
	}
	waiters := fl.waiters
	c.mu.Unlock()

	// Waiter channels are buffered, so fan-out never blocks on a caller that
	// abandoned its wait.
	for _, w := range waiters {
		w <- result[V]{val: val, err: err}
	}
	if err != nil {
		var zero V
		return zero, false, err
	}
	return val, false, nil
}

// shrink is the lazy eviction pass run at the start of every Get, under c.mu.
// It is throttled to one pass per scanInterval and removes at most maxEvicted
// records, tying cleanup cost to call traffic instead of a background timer.
// Returns the number of records evicted.
func (c *Cache[K, V]) shrink() int {
	if c.ttl == 0 {
		return 0
	}
	now := c.now()
	if now.Before(c.lastScan.Add(c.scanInterval)) {
		return 0
	}
	c.lastScan = now

	evicted := 0
	if c.ttl < 0 {
		// Age-independent mode: the oldest entries go, valid or not.
		for evicted < c.maxEvicted {
			s, ok := c.queue.pop()
			if !ok {
				break
			}
			if s.dead {
				continue
			}
			delete(c.records, s.key)
			evicted++
		}
		return evicted
	}

	for evicted < c.maxEvicted {
		s, ok := c.queue.pop()
		if !ok {
			break
		}
		if s.dead {
			// Already removed by an expired-on-read Get. Not counted
			// against the eviction budget.
			continue
		}
		rec, ok := c.records[s.key]
		if !ok || rec.pending != nil {
			// Defensive: a live slot should always point at a completed
			// record, but a missing one is skipped, not treated as fatal.
			continue
		}
		if rec.at.Add(c.ttl).Before(now) {
			delete(c.records, s.key)
			evicted++
			continue
		}
		// The queue is FIFO by creation time, so the first unexpired entry
		// means everything behind it is unexpired too.
		c.queue.unpop(s)
		break
	}
	return evicted
}

// Len reports the number of records currently in the store, pending included.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}
