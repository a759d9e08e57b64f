// SPDX-License-Identifier: EPL-2.0

package stream

import "testing"

func TestMailbox_WakeNeverBlocks(t *testing.T) {
	t.Parallel()

	var m mailbox
	// Nothing registered
	m.wake()

	w := newWaker()
	m.register(w)
	m.wake()
	// The slot is empty again and the token is already held
	m.wake()

	select {
	case <-w.ch:
	default:
		t.Fatal("wake before parking was lost")
	}

	// A second registration while the token is unconsumed does not block
	m.register(w)
	w.ch <- struct{}{}
	m.wake()
	<-w.ch
}

func TestMailbox_WakeZeroAllocs(t *testing.T) {
	var m mailbox
	w := newWaker()

	allocs := testing.AllocsPerRun(1000, func() {
		m.register(w)
		m.wake()
		<-w.ch
	})
	if allocs != 0 {
		t.Errorf("wake allocated %v times per run, want 0", allocs)
	}
}
