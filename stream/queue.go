// SPDX-License-Identifier: EPL-2.0

package stream

import "sync"

// trackQueue is a fixed-capacity FIFO of tracks that have not started.
// Control-plane callers take the lock; the engine only ever tries it.
type trackQueue struct {
	mtx   sync.Mutex
	slots []*TrackStream
	head  int
	size  int
}

func newTrackQueue(capacity int) *trackQueue {
	return &trackQueue{slots: make([]*TrackStream, capacity)}
}

func (q *trackQueue) push(t *TrackStream) error {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	if q.size == len(q.slots) {
		return ErrQueueFull
	}
	q.slots[(q.head+q.size)%len(q.slots)] = t
	q.size++

	return nil
}

// tryPop returns the oldest track. It reports false when the queue is empty
// or the lock is held elsewhere.
func (q *trackQueue) tryPop() (*TrackStream, bool) {
	if !q.mtx.TryLock() {
		return nil, false
	}
	defer q.mtx.Unlock()

	if q.size == 0 {
		return nil, false
	}
	t := q.slots[q.head]
	q.slots[q.head] = nil
	q.head = (q.head + 1) % len(q.slots)
	q.size--

	return t, true
}

// drain empties the queue and returns the removed tracks in order.
func (q *trackQueue) drain() []*TrackStream {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	out := make([]*TrackStream, 0, q.size)
	for q.size > 0 {
		out = append(out, q.slots[q.head])
		q.slots[q.head] = nil
		q.head = (q.head + 1) % len(q.slots)
		q.size--
	}

	return out
}

func (q *trackQueue) len() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return q.size
}

func (q *trackQueue) capacity() int { return len(q.slots) }
