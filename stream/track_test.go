// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"errors"
	"math/rand/v2"
	"runtime"
	"testing"
	"time"

	"github.com/ik5/audplay/audio"
)

// stereoRamp returns frames frames whose left channel counts up from start
// and whose right channel mirrors it negatively.
func stereoRamp(start, frames int) []float32 {
	out := make([]float32, frames*Channels)
	for f := range frames {
		v := float32(start+f) / 65536
		out[2*f] = v
		out[2*f+1] = -v
	}
	return out
}

func newTestTrack(t *testing.T, inRate, outRate, block, capacity int) (*TrackStream, *TrackStreamHandle) {
	t.Helper()

	ts, h, err := newTrack(inRate, outRate, block, capacity)
	if err != nil {
		t.Fatalf("newTrack() error = %v", err)
	}
	return ts, h
}

func TestTrackStream_ReadStatus(t *testing.T) {
	t.Parallel()

	ts, h := newTestTrack(t, 48000, 48000, 8, 64)
	ctx := context.Background()

	buf := make([]float32, 8)
	if n, st := ts.ReadSamples(buf); n != 0 || st != ReadWaiting {
		t.Fatalf("empty live read = (%d, %v), want (0, waiting)", n, st)
	}

	if err := h.Send(ctx, stereoRamp(0, 6)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := h.Finish(ctx); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	if n, st := ts.ReadSamples(buf); n != 8 || st != ReadOK {
		t.Fatalf("first read = (%d, %v), want (8, ok)", n, st)
	}
	if n, st := ts.ReadSamples(buf); n != 4 || st != ReadDone {
		t.Fatalf("second read = (%d, %v), want (4, done)", n, st)
	}
	if n, st := ts.ReadSamples(buf); n != 0 || st != ReadDone {
		t.Fatalf("drained read = (%d, %v), want (0, done)", n, st)
	}
}

func TestTrackStreamHandle_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, h := newTestTrack(t, 44100, 48000, 16, 256)
	if err := h.Send(ctx, make([]float32, 3)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("Send(partial frame) error = %v, want %v", err, audio.ErrInvalidDstSize)
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := h.Send(ctx, make([]float32, 2)); !errors.Is(err, ErrAbandoned) {
		t.Errorf("Send after Close error = %v, want %v", err, ErrAbandoned)
	}
	if err := h.Finish(ctx); !errors.Is(err, ErrAbandoned) {
		t.Errorf("Finish after Close error = %v, want %v", err, ErrAbandoned)
	}

	ts, h2 := newTestTrack(t, 48000, 48000, 16, 256)
	_ = ts.Close()
	if err := h2.Send(ctx, make([]float32, 2)); !errors.Is(err, ErrTrackClosed) {
		t.Errorf("Send to closed consumer error = %v, want %v", err, ErrTrackClosed)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, h3 := newTestTrack(t, 48000, 48000, 16, 256)
	if err := h3.Send(cancelled, make([]float32, 2)); !errors.Is(err, context.Canceled) {
		t.Errorf("Send with cancelled context error = %v, want %v", err, context.Canceled)
	}
}

func TestTrackStreamHandle_AbandonWithoutFinish(t *testing.T) {
	t.Parallel()

	ts, h := newTestTrack(t, 48000, 48000, 4, 64)
	if err := h.Send(context.Background(), stereoRamp(0, 10)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	_ = h.Close()

	// Frames already in the ring are still delivered
	buf := make([]float32, 64)
	n, st := ts.ReadSamples(buf)
	if st != ReadDone {
		t.Fatalf("status = %v, want done", st)
	}
	if n == 0 || n%Channels != 0 {
		t.Fatalf("read %d samples, want a non-empty whole-frame count", n)
	}
	for f := range n / Channels {
		want := float32(f) / 65536
		if buf[2*f] != want || buf[2*f+1] != -want {
			t.Fatalf("frame %d = (%v, %v), want (%v, %v)", f, buf[2*f], buf[2*f+1], want, -want)
		}
	}
}

func TestTrackStreamHandle_BlocksWhenFull(t *testing.T) {
	t.Parallel()

	ts, h := newTestTrack(t, 48000, 48000, 4, 16)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sent := make(chan error, 1)
	go func() {
		sent <- h.Send(ctx, stereoRamp(0, 40))
	}()

	select {
	case err := <-sent:
		t.Fatalf("Send returned early with %v while ring was full", err)
	case <-time.After(50 * time.Millisecond):
	}

	buf := make([]float32, 16)
	total := 0
	for total < 60 {
		n, _ := ts.ReadSamples(buf)
		total += n
		runtime.Gosched()
	}
	if err := <-sent; err != nil {
		t.Fatalf("Send() error = %v", err)
	}
}

func TestTrackStreamHandle_ContextCancelWhileParked(t *testing.T) {
	t.Parallel()

	_, h := newTestTrack(t, 48000, 48000, 4, 16)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := h.Send(ctx, stereoRamp(0, 100))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Send() error = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestTrackStream_CloseWakesProducer(t *testing.T) {
	t.Parallel()

	ts, h := newTestTrack(t, 48000, 48000, 4, 16)
	sent := make(chan error, 1)
	go func() {
		sent <- h.Send(context.Background(), stereoRamp(0, 100))
	}()

	time.Sleep(20 * time.Millisecond)
	_ = ts.Close()

	select {
	case err := <-sent:
		if !errors.Is(err, ErrTrackClosed) {
			t.Errorf("Send() error = %v, want %v", err, ErrTrackClosed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("producer was not woken by consumer Close")
	}
}

// Writes far larger than the ring complete in order while a consumer
// drains with random read sizes.
func TestTrackStream_LargeWritesFIFO(t *testing.T) {
	t.Parallel()

	const frames = 20000
	ts, h := newTestTrack(t, 48000, 48000, 32, 64)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		in := stereoRamp(0, frames)
		for len(in) > 0 {
			n := min(len(in), 1000)
			if err := h.Send(ctx, in[:n]); err != nil {
				done <- err
				return
			}
			in = in[n:]
		}
		done <- h.Finish(ctx)
	}()

	rng := rand.New(rand.NewPCG(3, 4))
	buf := make([]float32, 128)
	got := make([]float32, 0, frames*Channels)
	for {
		if ctx.Err() != nil {
			t.Fatal("consumer timed out")
		}
		n, st := ts.ReadSamples(buf[:rng.IntN(len(buf))+1])
		got = append(got, buf[:n]...)
		if st == ReadDone {
			break
		}
		runtime.Gosched()
	}

	if err := <-done; err != nil {
		t.Fatalf("producer error = %v", err)
	}
	if len(got) != frames*Channels {
		t.Fatalf("received %d samples, want %d", len(got), frames*Channels)
	}
	want := stereoRamp(0, frames)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTrackStream_ResampledLength(t *testing.T) {
	t.Parallel()

	const frames = 5000
	ts, h := newTestTrack(t, 44100, 48000, 256, 512)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		if err := h.Send(ctx, stereoRamp(0, frames)); err != nil {
			_ = h.Close()
			return
		}
		_ = h.Finish(ctx)
	}()

	buf := make([]float32, 200)
	total := 0
	for {
		if ctx.Err() != nil {
			t.Fatal("consumer timed out")
		}
		n, st := ts.ReadSamples(buf)
		total += n
		if st == ReadDone {
			break
		}
		runtime.Gosched()
	}

	// ceil(5000 * 48000 / 44100) frames
	if want := 5443 * Channels; total != want {
		t.Errorf("received %d samples, want %d", total, want)
	}
}
