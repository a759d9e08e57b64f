// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"sync/atomic"

	"github.com/ik5/audplay/audio"
)

// Channels is the only output layout: interleaved stereo.
const Channels = 2

// ReadStatus reports the state of a track after a non-blocking read.
type ReadStatus int

const (
	// ReadOK means the buffer was filled completely.
	ReadOK ReadStatus = iota
	// ReadWaiting means the track ran dry but its producer is still alive.
	ReadWaiting
	// ReadDone means the producer is gone and every buffered sample has
	// been delivered. The read may still have returned samples.
	ReadDone
)

func (s ReadStatus) String() string {
	switch s {
	case ReadOK:
		return "ok"
	case ReadWaiting:
		return "waiting"
	case ReadDone:
		return "done"
	default:
		return "unknown"
	}
}

// trackChannel is the state shared by both ends of a track.
type trackChannel struct {
	ring *sampleRing
	mail mailbox

	abandoned    atomic.Bool
	consumerGone atomic.Bool
}

// TrackStream is the consumer end of a track, read by the render engine.
type TrackStream struct {
	ch *trackChannel
}

// ReadSamples copies buffered samples into buf without blocking.
func (t *TrackStream) ReadSamples(buf []float32) (int, ReadStatus) {
	want := len(buf) - len(buf)%Channels
	if want == 0 {
		return 0, ReadOK
	}

	// Loaded before the ring indices: if the producer was abandoned at this
	// point, everything it wrote is already visible.
	abandoned := t.ch.abandoned.Load()

	n := t.ch.ring.read(buf[:want])
	if n > 0 {
		t.ch.mail.wake()
	}

	switch {
	case n == want:
		return n, ReadOK
	case abandoned:
		return n, ReadDone
	default:
		return n, ReadWaiting
	}
}

// Buffered is the number of samples waiting to be read.
func (t *TrackStream) Buffered() int { return t.ch.ring.buffered() }

// Abandoned reports whether the producer has finished or given up.
func (t *TrackStream) Abandoned() bool { return t.ch.abandoned.Load() }

// discard drops all buffered samples and frees the producer.
func (t *TrackStream) discard() {
	if t.ch.ring.discard() > 0 {
		t.ch.mail.wake()
	}
}

// Close marks the consumer gone. A producer blocked in Send is woken and
// every later Send returns ErrTrackClosed.
func (t *TrackStream) Close() error {
	t.ch.consumerGone.Store(true)
	t.ch.mail.wake()
	return nil
}

// TrackStreamHandle is the producer end of a track. It converts input-rate
// audio to the engine's output rate before buffering it.
//
// A handle must be used by one goroutine at a time; cancel a blocked Send
// through its context.
type TrackStreamHandle struct {
	ch   *trackChannel
	conv *audio.BlockConverter
	wk   *waker
	done bool

	inputRate int
	sendCtx   context.Context
	emitFn    func([]float32) error
}

func newTrack(inputRate, outputRate, blockFrames, capacity int) (*TrackStream, *TrackStreamHandle, error) {
	conv, err := audio.NewBlockConverter(inputRate, outputRate, blockFrames, Channels)
	if err != nil {
		return nil, nil, err
	}

	ch := &trackChannel{ring: newSampleRing(capacity, Channels)}
	h := &TrackStreamHandle{
		ch:        ch,
		conv:      conv,
		wk:        newWaker(),
		inputRate: inputRate,
	}
	h.emitFn = h.emit

	return &TrackStream{ch: ch}, h, nil
}

// InputRate is the sample rate Send expects.
func (h *TrackStreamHandle) InputRate() int { return h.inputRate }

// Send converts interleaved stereo samples and writes them to the track,
// parking while the buffer is full. samples must hold whole frames.
func (h *TrackStreamHandle) Send(ctx context.Context, samples []float32) error {
	if h.done {
		return ErrAbandoned
	}
	if h.ch.consumerGone.Load() {
		return ErrTrackClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	h.sendCtx = ctx
	defer func() { h.sendCtx = nil }()

	return h.conv.Write(samples, h.emitFn)
}

// Finish converts any carried-over input, writes it, and abandons the track
// so the consumer sees it as done once drained. The track is abandoned even
// when the final write fails.
func (h *TrackStreamHandle) Finish(ctx context.Context) error {
	if h.done {
		return ErrAbandoned
	}
	defer h.abandon()

	if h.ch.consumerGone.Load() {
		return ErrTrackClosed
	}

	h.sendCtx = ctx
	defer func() { h.sendCtx = nil }()

	return h.conv.Flush(h.emitFn)
}

// Close abandons the track without flushing. It is safe to call repeatedly.
func (h *TrackStreamHandle) Close() error {
	h.abandon()
	return nil
}

func (h *TrackStreamHandle) abandon() {
	if h.done {
		return
	}
	h.done = true
	h.ch.abandoned.Store(true)
}

func (h *TrackStreamHandle) emit(samples []float32) error {
	ring := h.ch.ring
	for len(samples) > 0 {
		if h.ch.consumerGone.Load() {
			return ErrTrackClosed
		}

		n := ring.write(samples)
		samples = samples[n:]
		if n > 0 {
			continue
		}

		// Register, then re-check so a read between the failed write and
		// the registration cannot be missed.
		h.ch.mail.register(h.wk)
		if ring.free() >= Channels || h.ch.consumerGone.Load() {
			continue
		}

		select {
		case <-h.wk.ch:
		case <-h.sendCtx.Done():
			return h.sendCtx.Err()
		}
	}

	return nil
}
