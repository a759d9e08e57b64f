// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/stream"
)

// RenderFrames is the number of frames pulled per engine fill.
const RenderFrames = 1024

// ErrRenderPaused is returned when Render is started on a paused engine.
var ErrRenderPaused = errors.New("engine is paused")

// Render pulls audio from engine and writes it to w as a 16-bit stereo WAV
// at rate. Only track audio is written; callbacks that starve are retried
// after a short sleep instead of being padded with silence.
//
// It returns once done is closed and the engine has no current or queued
// track, or when ctx ends. The WAV header is finalized in both cases. The
// returned count is the number of frames written.
func Render(ctx context.Context, engine *stream.MainStream, rate int, w io.WriteSeeker, done <-chan struct{}) (int, error) {
	if !engine.Stats().Playing {
		return 0, ErrRenderPaused
	}

	out := wav.NewWriter(w, rate, stream.Channels)
	buf := make([]float32, RenderFrames*stream.Channels)

	err := render(ctx, engine, out, buf, done)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("finalize wav: %w", cerr)
	}

	return out.Frames(), err
}

func render(ctx context.Context, engine *stream.MainStream, out *wav.Writer, buf []float32, done <-chan struct{}) error {
	finished := false

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := engine.Fill(buf)
		if n > 0 {
			if err := out.Write(buf[:n]); err != nil {
				return fmt.Errorf("write wav: %w", err)
			}
		}
		if n == len(buf) {
			continue
		}

		if !finished {
			select {
			case <-done:
				finished = true
			default:
			}
		}
		// done only guarantees every track was queued, so the queue must
		// drain before the engine going idle means the end
		if finished && engine.Idle() && engine.Stats().QueueLen == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}
