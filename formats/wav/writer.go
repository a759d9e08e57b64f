// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

// Writer streams interleaved float32 audio into a 16-bit PCM WAV. Sizes in
// the header are patched on Close, so the destination must seek.
type Writer struct {
	enc      *wav.Encoder
	buf      *goaudio.IntBuffer
	channels int
	frames   int
	closed   bool
}

func NewWriter(w io.WriteSeeker, sampleRate, channels int) *Writer {
	return &Writer{
		enc:      wav.NewEncoder(w, sampleRate, 16, channels, formatPCM),
		channels: channels,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}
}

// Write appends samples, which must hold whole frames.
func (w *Writer) Write(samples []float32) error {
	if w.closed {
		return ErrWriterClosed
	}
	if len(samples)%w.channels != 0 {
		return audio.ErrInvalidDstSize
	}
	if len(samples) == 0 {
		return nil
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, v := range samples {
		w.buf.Data[i] = int(utils.Float32ToInt16(v))
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	w.frames += len(samples) / w.channels

	return nil
}

// Frames is the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// Close finalizes the header. It does not close the destination. A writer
// that never received a frame still produces a valid, empty WAV.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	// The encoder emits its header on the first Write only
	if w.frames == 0 {
		empty := &goaudio.IntBuffer{Format: w.buf.Format, SourceBitDepth: 16, Data: []int{}}
		if err := w.enc.Write(empty); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
