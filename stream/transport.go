// SPDX-License-Identifier: EPL-2.0

package stream

import "sync/atomic"

// Transport holds the flags shared between the control plane and the render
// engine. The engine only reads playing and consumes clear.
type Transport struct {
	playing atomic.Bool
	clear   atomic.Bool
}

// Playing reports whether the engine drains tracks.
func (t *Transport) Playing() bool { return t.playing.Load() }

// ClearPending reports whether a clear has been requested but not yet
// processed by the engine.
func (t *Transport) ClearPending() bool { return t.clear.Load() }
