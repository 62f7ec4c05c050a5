package flightcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvictQueue_FIFO(t *testing.T) {
	var q evictQueue[string]

	assert.Equal(t, uint64(0), q.push("a"))
	assert.Equal(t, uint64(1), q.push("b"))
	assert.Equal(t, uint64(2), q.push("c"))
	assert.Equal(t, 3, q.len())

	s, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, "a", s.key)
	s, ok = q.pop()
	require.True(t, ok)
	assert.Equal(t, "b", s.key)

	// Sequence numbers keep growing across pops.
	assert.Equal(t, uint64(3), q.push("d"))

	s, ok = q.pop()
	require.True(t, ok)
	assert.Equal(t, "c", s.key)
	s, ok = q.pop()
	require.True(t, ok)
	assert.Equal(t, "d", s.key)

	_, ok = q.pop()
	assert.False(t, ok)
	assert.Equal(t, 0, q.len())
}

func TestEvictQueue_Unpop(t *testing.T) {
	var q evictQueue[string]
	q.push("a")
	q.push("b")

	s, ok := q.pop()
	require.True(t, ok)
	q.unpop(s)

	s, ok = q.pop()
	require.True(t, ok)
	assert.Equal(t, "a", s.key, "unpop must restore the popped slot at the front")

	// Popping the last slot compacts the backing slice; unpop must still work.
	s, ok = q.pop()
	require.True(t, ok)
	require.Equal(t, "b", s.key)
	q.unpop(s)
	require.Equal(t, 1, q.len())
	s, ok = q.pop()
	require.True(t, ok)
	assert.Equal(t, "b", s.key)
}

func TestEvictQueue_Kill(t *testing.T) {
	var q evictQueue[string]
	seqA := q.push("a")
	seqB := q.push("b")

	q.kill(seqB)
	s, ok := q.pop()
	require.True(t, ok)
	assert.False(t, s.dead)

	// Killing an already-popped sequence number is a no-op.
	q.kill(seqA)
	s, ok = q.pop()
	require.True(t, ok)
	assert.Equal(t, "b", s.key)
	assert.True(t, s.dead)

	// Out-of-window (never pushed) sequence numbers are ignored too.
	q.kill(99)
}

func TestEvictQueue_DuplicateKeySlots(t *testing.T) {
	var q evictQueue[string]
	old := q.push("k")
	q.kill(old)
	fresh := q.push("k")

	require.NotEqual(t, old, fresh)
	s, ok := q.pop()
	require.True(t, ok)
	assert.True(t, s.dead)
	s, ok = q.pop()
	require.True(t, ok)
	assert.Equal(t, "k", s.key)
	assert.False(t, s.dead)
}
