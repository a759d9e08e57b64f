// SPDX-License-Identifier: EPL-2.0

// Package gopcm adapts go-audio integer PCM decoders to audio.Source.
package gopcm

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

// Reader is the subset of the go-audio wav and aiff decoders used here.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source reads integer PCM from a go-audio decoder as normalized float32.
type Source struct {
	dec        Reader
	closer     io.Closer
	sampleRate int
	channels   int
	bitDepth   int
	unsigned8  bool
	intBuf     *goaudio.IntBuffer
}

// Options describe the stream behind a Reader.
type Options struct {
	SampleRate int
	Channels   int
	BitDepth   int
	// Unsigned8 marks 8-bit data stored as offset binary (WAV).
	Unsigned8 bool
	// Closer, when set, is closed with the source.
	Closer io.Closer
}

func NewSource(dec Reader, opts Options) *Source {
	return &Source{
		dec:        dec,
		closer:     opts.Closer,
		sampleRate: opts.SampleRate,
		channels:   opts.Channels,
		bitDepth:   opts.BitDepth,
		unsigned8:  opts.Unsigned8 && opts.BitDepth == 8,
	}
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }

func (s *Source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < want {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, want),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:want]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	// A truncated final frame is dropped
	n -= n % s.channels
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		if s.unsigned8 {
			v -= 128
		}
		dst[i] = utils.IntToFloat32(v, s.bitDepth)
	}

	// Short read without error means the data chunk is exhausted
	if n < want && err == nil {
		return n, io.EOF
	}
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}

	return n, err
}

// ReadSeeker returns r itself when it can seek, otherwise its buffered
// contents.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffering input: %w", err)
	}

	return bytes.NewReader(data), nil
}

// SupportedBitDepth reports whether the integer depth can be normalized.
func SupportedBitDepth(bits int) bool {
	switch bits {
	case 8, 16, 24, 32:
		return true
	}
	return false
}

var _ audio.Source = (*Source)(nil)
