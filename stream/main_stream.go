// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"fmt"
	"sync/atomic"

	"github.com/ik5/audplay/pcm"
)

const (
	// DefaultBlockFrames is the rate converter block size.
	DefaultBlockFrames = 1024
	// DefaultTrackBufferFrames is the requested ring size of a track.
	DefaultTrackBufferFrames = 1 << 15
	// DefaultQueueCapacity is how many tracks may wait to start.
	DefaultQueueCapacity = 256
	// DefaultMaxCallbackFrames is the largest chunk filled at once.
	DefaultMaxCallbackFrames = 4096
)

// Options configures a MainStream. Zero fields take the defaults above;
// OutputRate is required.
type Options struct {
	// OutputRate is the device sample rate in Hz.
	OutputRate int
	// Format is the sample encoding produced by Read. Defaults to Float32.
	Format pcm.Format
	// BlockFrames is the rate converter block size of every track.
	BlockFrames int
	// TrackBufferFrames is the requested ring size of every track. It is
	// raised when needed to hold two callbacks plus one converted block.
	TrackBufferFrames int
	// QueueCapacity bounds the number of tracks waiting to start.
	QueueCapacity int
	// MaxCallbackFrames is the largest chunk Read fills at once.
	MaxCallbackFrames int
}

func (o Options) withDefaults() (Options, error) {
	if o.OutputRate <= 0 {
		return o, ErrInvalidOutputRate
	}
	if o.Format == pcm.Invalid {
		o.Format = pcm.Float32
	}
	if !o.Format.Valid() {
		return o, fmt.Errorf("%w: %d", pcm.ErrUnknownFormat, o.Format)
	}
	if o.BlockFrames == 0 {
		o.BlockFrames = DefaultBlockFrames
	}
	if o.TrackBufferFrames == 0 {
		o.TrackBufferFrames = DefaultTrackBufferFrames
	}
	if o.QueueCapacity == 0 {
		o.QueueCapacity = DefaultQueueCapacity
	}
	if o.MaxCallbackFrames == 0 {
		o.MaxCallbackFrames = DefaultMaxCallbackFrames
	}
	if o.BlockFrames < 0 || o.TrackBufferFrames < 0 || o.QueueCapacity < 0 || o.MaxCallbackFrames < 0 {
		return o, ErrInvalidCapacity
	}

	return o, nil
}

// MainStream is the render engine. Fill and Read must be called from a
// single goroutine, normally the audio device callback.
type MainStream struct {
	transport *Transport
	queue     *trackQueue
	current   *TrackStream

	format         pcm.Format
	encode         pcm.Encoder
	bytesPerSample int
	scratch        []float32

	idle  atomic.Bool
	stats counters
}

// New creates an engine and the handle that controls it. The engine starts
// paused.
func New(opts Options) (*MainStream, *MainStreamHandle, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, nil, err
	}

	encode, err := opts.Format.Encoder()
	if err != nil {
		return nil, nil, err
	}

	transport := &Transport{}
	queue := newTrackQueue(opts.QueueCapacity)

	m := &MainStream{
		transport:      transport,
		queue:          queue,
		format:         opts.Format,
		encode:         encode,
		bytesPerSample: opts.Format.BytesPerSample(),
		scratch:        make([]float32, opts.MaxCallbackFrames*Channels),
	}
	m.idle.Store(true)

	h := &MainStreamHandle{
		transport:   transport,
		queue:       queue,
		engine:      m,
		outputRate:  opts.OutputRate,
		blockFrames: opts.BlockFrames,
		ringFrames:  opts.TrackBufferFrames,
		maxCallback: opts.MaxCallbackFrames,
	}

	return m, h, nil
}

// Format is the encoding produced by Read.
func (m *MainStream) Format() pcm.Format { return m.format }

// Idle reports whether the engine had no current track after the last fill.
func (m *MainStream) Idle() bool { return m.idle.Load() }

// Stats returns a snapshot of the engine counters.
func (m *MainStream) Stats() Stats {
	return Stats{
		Callbacks:        m.stats.callbacks.Load(),
		StarvedCallbacks: m.stats.starved.Load(),
		TracksStarted:    m.stats.tracksStarted.Load(),
		TracksFinished:   m.stats.tracksFinished.Load(),
		Clears:           m.stats.clears.Load(),
		SilentSamples:    m.stats.silentSamples.Load(),
		Faults:           m.stats.faults.Load(),
		QueueLen:         m.queue.len(),
		Idle:             m.idle.Load(),
		Playing:          m.transport.playing.Load(),
	}
}

// Fill renders interleaved stereo samples into buf and returns how many of
// them carry track audio. They always form a prefix of buf; the rest is
// silence. Fill never blocks.
func (m *MainStream) Fill(buf []float32) (n int) {
	m.stats.callbacks.Add(1)

	defer func() {
		if r := recover(); r != nil {
			// The faulting track is dropped so the next callback recovers
			m.stats.faults.Add(1)
			m.current = nil
			clear(buf)
			n = 0
		}
		if n < len(buf) {
			m.stats.silentSamples.Add(uint64(len(buf) - n))
		}
	}()

	n = m.fill(buf)
	clear(buf[n:])

	return n
}

func (m *MainStream) fill(buf []float32) int {
	if m.transport.clear.Swap(false) && m.current != nil {
		m.current.discard()
		_ = m.current.Close()
		m.current = nil
		m.stats.clears.Add(1)
	}

	if !m.transport.playing.Load() {
		m.idle.Store(m.current == nil)
		return 0
	}

	n := 0
	for n < len(buf) {
		if m.current == nil {
			next, ok := m.queue.tryPop()
			if !ok {
				break
			}
			m.current = next
			m.stats.tracksStarted.Add(1)
		}

		read, status := m.current.ReadSamples(buf[n:])
		n += read
		if status == ReadWaiting {
			m.stats.starved.Add(1)
			break
		}
		if status == ReadOK {
			break
		}

		m.current = nil
		m.stats.tracksFinished.Add(1)
	}

	m.idle.Store(m.current == nil)
	return n
}

// Read implements io.Reader for the output device. It fills p with encoded
// frames and never returns an error. Trailing bytes that do not make up a
// whole frame are silence.
func (m *MainStream) Read(p []byte) (int, error) {
	sampleBytes := m.bytesPerSample
	frameBytes := sampleBytes * Channels
	whole := len(p) - len(p)%frameBytes

	for off := 0; off < whole; {
		samples := min((whole-off)/sampleBytes, len(m.scratch))
		chunk := m.scratch[:samples]

		m.Fill(chunk)
		off += m.encode(p[off:], chunk)
	}
	m.format.PutSilence(p[whole:])

	return len(p), nil
}
