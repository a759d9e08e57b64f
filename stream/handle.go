// SPDX-License-Identifier: EPL-2.0

package stream

// MainStreamHandle controls a MainStream from non-real-time code. All
// methods are safe for concurrent use and never wait on the engine.
type MainStreamHandle struct {
	transport *Transport
	queue     *trackQueue
	engine    *MainStream

	outputRate  int
	blockFrames int
	ringFrames  int
	maxCallback int
}

// Play resumes output. The engine renders tracks from its next callback.
func (h *MainStreamHandle) Play() { h.transport.playing.Store(true) }

// Pause silences output and holds every track at its position.
func (h *MainStreamHandle) Pause() { h.transport.playing.Store(false) }

// TogglePlaying flips the playing flag and returns the new state.
func (h *MainStreamHandle) TogglePlaying() bool {
	for {
		cur := h.transport.playing.Load()
		if h.transport.playing.CompareAndSwap(cur, !cur) {
			return !cur
		}
	}
}

// IsPlaying reports whether output is running.
func (h *MainStreamHandle) IsPlaying() bool { return h.transport.playing.Load() }

// Clear asks the engine to drop the current track and its buffered audio
// on the next callback. Queued tracks are kept.
func (h *MainStreamHandle) Clear() { h.transport.clear.Store(true) }

// ClearQueue closes and removes every track that has not started yet.
func (h *MainStreamHandle) ClearQueue() int {
	dropped := h.queue.drain()
	for _, t := range dropped {
		_ = t.Close()
	}
	return len(dropped)
}

// Stop empties the queue, then clears the current track.
func (h *MainStreamHandle) Stop() {
	h.ClearQueue()
	h.Clear()
}

// Queue appends a track to play after the ones already queued. When the
// queue is full it returns ErrQueueFull and changes nothing.
func (h *MainStreamHandle) Queue(t *TrackStream) error {
	return h.queue.push(t)
}

// SpawnTrackStream creates a track whose producer accepts audio at
// inputRate and whose consumer yields audio at the output rate.
func (h *MainStreamHandle) SpawnTrackStream(inputRate int) (*TrackStream, *TrackStreamHandle, error) {
	return newTrack(inputRate, h.outputRate, h.blockFrames, h.TrackCapacity(inputRate))
}

// TrackCapacity is the ring size, in samples, of a track spawned for
// inputRate.
func (h *MainStreamHandle) TrackCapacity(inputRate int) int {
	frames := h.ringFrames
	// One converted block can exceed the input block when upsampling
	blockOut := h.blockFrames
	if inputRate > 0 {
		blockOut = (h.blockFrames*h.outputRate+inputRate-1)/inputRate + 1
	}
	frames = max(frames, 2*h.maxCallback+blockOut)

	return frames * Channels
}

// OutputRate is the engine sample rate in Hz.
func (h *MainStreamHandle) OutputRate() int { return h.outputRate }

// QueueLen is the number of tracks waiting to start.
func (h *MainStreamHandle) QueueLen() int { return h.queue.len() }

// QueueCapacity is the most tracks that can wait to start.
func (h *MainStreamHandle) QueueCapacity() int { return h.queue.capacity() }

// Stats returns the engine counters.
func (h *MainStreamHandle) Stats() Stats { return h.engine.Stats() }
