// SPDX-License-Identifier: EPL-2.0

package stream

import "sync/atomic"

// waker parks one producer goroutine. The channel holds at most one token,
// so a wake delivered before the producer parks is not lost.
type waker struct {
	ch chan struct{}
}

func newWaker() *waker {
	return &waker{ch: make(chan struct{}, 1)}
}

// mailbox is a one-slot handoff of a waiting producer to the consumer.
// There is a single producer per track, so at most one waker is pending.
type mailbox struct {
	slot atomic.Pointer[waker]
}

func (m *mailbox) register(w *waker) {
	m.slot.Store(w)
}

// wake resumes the pending producer, if any. It never blocks.
func (m *mailbox) wake() {
	w := m.slot.Swap(nil)
	if w == nil {
		return
	}
	select {
	case w.ch <- struct{}{}:
	default:
	}
}
