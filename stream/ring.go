// SPDX-License-Identifier: EPL-2.0

package stream

import "sync/atomic"

// sampleRing is a single-producer single-consumer ring of interleaved
// samples. head and tail are monotonic sample counts; the producer owns
// tail, the consumer owns head. Transfers are rounded down to whole frames.
type sampleRing struct {
	buf      []float32
	channels uint64

	head atomic.Uint64
	tail atomic.Uint64
}

func newSampleRing(capacity, channels int) *sampleRing {
	// Capacity is kept a multiple of the frame size
	capacity -= capacity % channels
	return &sampleRing{
		buf:      make([]float32, capacity),
		channels: uint64(channels),
	}
}

func (r *sampleRing) capacity() int { return len(r.buf) }

// buffered is the number of samples ready for the consumer.
func (r *sampleRing) buffered() int {
	return int(r.tail.Load() - r.head.Load())
}

// free is the number of samples the producer may write.
func (r *sampleRing) free() int {
	return len(r.buf) - r.buffered()
}

// write copies as many whole frames of src as fit. Producer only.
func (r *sampleRing) write(src []float32) int {
	tail := r.tail.Load()
	head := r.head.Load()

	n := uint64(len(src))
	if space := uint64(len(r.buf)) - (tail - head); n > space {
		n = space
	}
	n -= n % r.channels
	if n == 0 {
		return 0
	}

	size := uint64(len(r.buf))
	start := tail % size
	first := min(n, size-start)
	copy(r.buf[start:start+first], src[:first])
	copy(r.buf[:n-first], src[first:n])

	r.tail.Store(tail + n)
	return int(n)
}

// read copies up to len(dst) buffered samples, whole frames only.
// Consumer only.
func (r *sampleRing) read(dst []float32) int {
	head := r.head.Load()
	tail := r.tail.Load()

	n := min(uint64(len(dst)), tail-head)
	n -= n % r.channels
	if n == 0 {
		return 0
	}

	size := uint64(len(r.buf))
	start := head % size
	first := min(n, size-start)
	copy(dst[:first], r.buf[start:start+first])
	copy(dst[first:n], r.buf[:n-first])

	r.head.Store(head + n)
	return int(n)
}

// discard drops everything currently buffered. Consumer only.
func (r *sampleRing) discard() int {
	head := r.head.Load()
	tail := r.tail.Load()
	r.head.Store(tail)
	return int(tail - head)
}
