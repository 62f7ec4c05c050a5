package flightcache

// slot is one position in the eviction queue. A dead slot is a tombstone: its
// record was already removed by the read path, and the position is kept so
// that the sequence numbers of the slots behind it stay valid.
type slot[K comparable] struct {
	key  K
	dead bool
}

// evictQueue holds cache keys in creation order. It is a strict FIFO:
// appended at the back, consumed from the front, with a single-slot unpop to
// undo the last pop. Slots are addressed by a sequence number that never
// changes while the slot is in the queue, which is what lets a record
// tombstone its own slot in O(1) without reindexing everything behind it.
type evictQueue[K comparable] struct {
	slots []slot[K]
	head  int    // index of the logical front within slots
	front uint64 // sequence number of the logical front
}

func (q *evictQueue[K]) len() int { return len(q.slots) - q.head }

// push appends a key at the back and returns the sequence number of its slot.
func (q *evictQueue[K]) push(key K) uint64 {
	q.slots = append(q.slots, slot[K]{key: key})
	return q.front + uint64(q.len()) - 1
}

// pop removes and returns the oldest slot.
func (q *evictQueue[K]) pop() (slot[K], bool) {
	if q.head == len(q.slots) {
		return slot[K]{}, false
	}
	s := q.slots[q.head]
	q.slots[q.head] = slot[K]{} // drop the key reference
	q.head++
	q.front++
	if q.head == len(q.slots) {
		q.slots = q.slots[:0]
		q.head = 0
	}
	return s, true
}

// unpop puts a slot back at the front. Only valid immediately after a
// successful pop, to undo it.
func (q *evictQueue[K]) unpop(s slot[K]) {
	if q.head == 0 {
		q.slots = append(q.slots, slot[K]{})
		copy(q.slots[1:], q.slots)
		q.slots[0] = s
	} else {
		q.head--
		q.slots[q.head] = s
	}
	q.front--
}

// kill tombstones the slot with the given sequence number. Out-of-window
// sequence numbers (already popped) are ignored.
func (q *evictQueue[K]) kill(seq uint64) {
	if seq < q.front {
		return
	}
	i := q.head + int(seq-q.front)
	if i >= len(q.slots) {
		return
	}
	q.slots[i].dead = true
}
