// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/ik5/audplay/audio"
)

// frameParser is the subset of *flac.Stream used by source.
type frameParser interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

// source decodes one FLAC frame at a time and hands out its samples
// interleaved.
type source struct {
	stream     frameParser
	sampleRate int
	channels   int
	scale      float32

	// pending holds decoded, not yet delivered samples of the current frame.
	pending []float32
	off     int
	eof     bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return max(cap(s.pending), 4096) }

func (s *source) Close() error {
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	total := 0

	for total < want {
		if s.off == len(s.pending) {
			if s.eof {
				break
			}
			if err := s.decodeFrame(); err != nil {
				if errors.Is(err, io.EOF) {
					s.eof = true
					break
				}
				return total, err
			}
			continue
		}

		n := copy(dst[total:want], s.pending[s.off:])
		s.off += n
		total += n
	}

	if total == 0 && s.eof {
		return 0, io.EOF
	}
	return total, nil
}

func (s *source) decodeFrame() error {
	f, err := s.stream.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("decoding frame: %w", err)
	}
	if len(f.Subframes) != s.channels {
		return fmt.Errorf("%w: frame has %d channels, stream has %d", ErrInvalidStream, len(f.Subframes), s.channels)
	}

	frames := len(f.Subframes[0].Samples)
	size := frames * s.channels
	if cap(s.pending) < size {
		s.pending = make([]float32, size)
	}
	s.pending = s.pending[:size]
	s.off = 0

	for ch, sub := range f.Subframes {
		for i, v := range sub.Samples[:frames] {
			s.pending[i*s.channels+ch] = float32(v) * s.scale
		}
	}

	return nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStream, err)
	}

	info := stream.Info
	bits := int(info.BitsPerSample)
	if bits < 4 || bits > 32 {
		_ = stream.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bits)
	}
	if info.NChannels == 0 || info.SampleRate == 0 {
		_ = stream.Close()
		return nil, ErrInvalidStream
	}

	return newSource(stream, int(info.SampleRate), int(info.NChannels), bits), nil
}

func newSource(stream frameParser, sampleRate, channels, bits int) *source {
	return &source{
		stream:     stream,
		sampleRate: sampleRate,
		channels:   channels,
		scale:      float32(1 / float64(int64(1)<<(bits-1))),
	}
}
