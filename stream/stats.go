// SPDX-License-Identifier: EPL-2.0

package stream

import "sync/atomic"

// Stats is a snapshot of the engine counters.
type Stats struct {
	Callbacks        uint64
	StarvedCallbacks uint64
	TracksStarted    uint64
	TracksFinished   uint64
	Clears           uint64
	SilentSamples    uint64
	Faults           uint64
	QueueLen         int
	Idle             bool
	Playing          bool
}

type counters struct {
	callbacks      atomic.Uint64
	starved        atomic.Uint64
	tracksStarted  atomic.Uint64
	tracksFinished atomic.Uint64
	clears         atomic.Uint64
	silentSamples  atomic.Uint64
	faults         atomic.Uint64
}
