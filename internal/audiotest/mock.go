// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides synthetic audio sources for tests. It mirrors
// audio.Source without importing the audio package.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the value of channel ch at frame.
type Waveform func(frame, ch int) float32

// Source generates a fixed number of frames from a Waveform.
type Source struct {
	sampleRate int
	channels   int
	frames     int
	pos        int
	wave       Waveform

	maxFrames int
	failAt    int
	failErr   error
	closed    bool
}

func NewSource(sampleRate, channels, frames int, wave Waveform) *Source {
	return &Source{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		wave:       wave,
		failAt:     -1,
	}
}

func NewSilentSource(sampleRate, channels, frames int) *Source {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *Source {
	return NewSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func NewSineSource(sampleRate, channels, frames int, frequency float64) *Source {
	return NewSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// WithMaxRead limits every ReadSamples call to n frames, like a decoder
// that returns one packet at a time.
func (s *Source) WithMaxRead(n int) *Source {
	s.maxFrames = n
	return s
}

// WithError makes reads fail with err once frame has been produced.
func (s *Source) WithError(frame int, err error) *Source {
	s.failAt = frame
	s.failErr = err
	return s
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return 4096 }

func (s *Source) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Source) Closed() bool { return s.closed }

// Reset rewinds to the first frame.
func (s *Source) Reset() { s.pos = 0 }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.failAt >= 0 && s.pos >= s.failAt {
		return 0, s.failErr
	}
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/s.channels, s.frames-s.pos)
	if s.maxFrames > 0 {
		n = min(n, s.maxFrames)
	}
	if s.failAt >= 0 {
		n = min(n, s.failAt-s.pos)
	}

	for f := range n {
		for ch := range s.channels {
			dst[f*s.channels+ch] = s.wave(s.pos+f, ch)
		}
	}
	s.pos += n

	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}
	return n * s.channels, nil
}
