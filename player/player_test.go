// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/stream"
)

const testRate = 8000

// writeWAV creates a mono 16-bit WAV holding frames samples of value.
func writeWAV(t *testing.T, dir, name string, frames int, value float32) string {
	t.Helper()

	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()

	w := wav.NewWriter(f, testRate, 1)
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = value
	}
	if err := w.Write(samples); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return p
}

func newTestPlayer(t *testing.T, opts Options) (*stream.MainStream, *stream.MainStreamHandle, *Player) {
	t.Helper()

	engine, h, err := stream.New(stream.Options{OutputRate: testRate})
	if err != nil {
		t.Fatalf("stream.New() error = %v", err)
	}
	opts.Logger = zerolog.Nop()
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Millisecond
	}
	if opts.EventBuffer == 0 {
		opts.EventBuffer = 64
	}
	p := New(h, opts)
	t.Cleanup(func() { _ = p.Close() })

	return engine, h, p
}

// pump drives the engine until done reports true for the audio rendered so
// far, failing after a timeout.
func pump(t *testing.T, engine *stream.MainStream, done func(audio []float32) bool) []float32 {
	t.Helper()

	var rendered []float32
	buf := make([]float32, 256*stream.Channels)
	deadline := time.Now().Add(5 * time.Second)
	for !done(rendered) {
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %d samples", len(rendered))
		}
		n := engine.Fill(buf)
		rendered = append(rendered, buf[:n]...)
		if n < len(buf) {
			time.Sleep(time.Millisecond)
		}
	}
	return rendered
}

// collect reads events until want of them have been seen or a timeout.
func collect(t *testing.T, p *Player, want int) []Event {
	t.Helper()

	var got []Event
	timeout := time.After(5 * time.Second)
	for len(got) < want {
		select {
		case ev, ok := <-p.Events():
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("got %d events, want %d: %+v", len(got), want, got)
		}
	}
	return got
}

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-3 }

func TestPlayer_PlaysLocalTracksInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := writeWAV(t, dir, "first.wav", 800, 0.25)
	second := writeWAV(t, dir, "second.wav", 400, -0.5)

	engine, _, p := newTestPlayer(t, Options{ChunkFrames: 128})

	if err := p.Play(context.Background(), TrackAt(first), TrackAt(second)); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	const want = (800 + 400) * stream.Channels
	got := pump(t, engine, func(a []float32) bool { return len(a) >= want })
	if len(got) != want {
		t.Fatalf("rendered %d samples, want %d", len(got), want)
	}
	for i, v := range got {
		expect := float32(0.25)
		if i >= 800*stream.Channels {
			expect = -0.5
		}
		if !near(v, expect) {
			t.Fatalf("sample %d = %v, want %v", i, v, expect)
		}
	}

	events := collect(t, p, 3)
	if events[0].Event != EventUpdatePlaying || !events[0].Data.(UpdatePlaying).Playing {
		t.Errorf("event 0 = %+v, want playing", events[0])
	}
	titles := []string{"first.wav", "second.wav"}
	for i, ev := range events[1:] {
		if ev.Event != EventUpdateCurrentTrack {
			t.Fatalf("event %d = %s, want %s", i+1, ev.Event, EventUpdateCurrentTrack)
		}
		cur := ev.Data.(UpdateCurrentTrack).CurrentTrack
		if cur.TrackTitle != titles[i] {
			t.Errorf("event %d title = %q, want %q", i+1, cur.TrackTitle, titles[i])
		}
		if cur.ID == "" {
			t.Errorf("event %d has no track ID", i+1)
		}
	}
}

func TestPlayer_FetchesOverHTTP(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	track := writeWAV(t, dir, "track.bin", 500, 0.5)

	mux := http.NewServeMux()
	mux.HandleFunc("/typed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/wav")
		http.ServeFile(w, r, track)
	})
	mux.HandleFunc("/by-extension.wav", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		http.ServeFile(w, r, track)
	})
	mux.HandleFunc("/missing.wav", http.NotFound)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	engine, _, p := newTestPlayer(t, Options{Client: srv.Client()})

	err := p.Play(context.Background(),
		TrackAt(srv.URL+"/missing.wav"),
		TrackAt(srv.URL+"/typed"),
		TrackAt(srv.URL+"/by-extension.wav"),
	)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	// The missing track is skipped
	const want = 2 * 500 * stream.Channels
	got := pump(t, engine, func(a []float32) bool { return len(a) >= want })
	if len(got) != want {
		t.Errorf("rendered %d samples, want %d", len(got), want)
	}
}

func TestPlayer_Open(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeWAV(t, dir, "good.wav", 10, 0)
	unknown := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(unknown, []byte("hello"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	corrupt := filepath.Join(dir, "corrupt.wav")
	if err := os.WriteFile(corrupt, []byte("not a wav file at all"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(srv.Close)

	_, _, p := newTestPlayer(t, Options{Client: srv.Client()})

	tests := []struct {
		name     string
		location string
		wantErr  error
	}{
		{name: "local wav", location: good},
		{name: "unknown extension", location: unknown, wantErr: ErrUnknownFormat},
		{name: "missing file", location: filepath.Join(dir, "absent.wav"), wantErr: os.ErrNotExist},
		{name: "corrupt", location: corrupt, wantErr: wav.ErrNotWavFile},
		{name: "http status", location: srv.URL + "/x.wav", wantErr: ErrHTTPStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := p.open(context.Background(), TrackAt(tt.location))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("open() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("open() error = %v", err)
			}
			if err := src.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
	}
}

func TestPlayer_SkipMovesToNextTrack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Longer than a track ring so the feeder is parked when skipping
	long := writeWAV(t, dir, "long.wav", 80000, 0.25)
	short := writeWAV(t, dir, "short.wav", 400, -0.5)

	engine, h, p := newTestPlayer(t, Options{})
	if err := p.Play(context.Background(), TrackAt(long), TrackAt(short)); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	pump(t, engine, func(a []float32) bool { return len(a) > 0 })
	p.Skip()

	got := pump(t, engine, func(a []float32) bool {
		return len(a) > 0 && near(a[len(a)-1], -0.5)
	})
	if len(got) >= 80000*stream.Channels {
		t.Errorf("rendered %d samples, long track was not skipped", len(got))
	}
	if s := h.Stats(); s.Clears != 1 {
		t.Errorf("Clears = %d, want 1", s.Clears)
	}
}

func TestPlayer_Transport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	track := writeWAV(t, dir, "t.wav", 100, 0)

	_, h, p := newTestPlayer(t, Options{})

	if err := p.Play(context.Background()); !errors.Is(err, ErrNoTracks) {
		t.Errorf("Play() error = %v, want %v", err, ErrNoTracks)
	}
	if err := p.Enqueue(context.Background(), TrackAt(track)); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if h.IsPlaying() {
		t.Error("Enqueue without a session started playback")
	}

	if got := p.TogglePlaying(); !got {
		t.Error("TogglePlaying() = false, want true")
	}
	if got := p.TogglePlaying(); got {
		t.Error("TogglePlaying() = true, want false")
	}
	p.Stop()

	want := []bool{true, false, false}
	for i, ev := range collect(t, p, len(want)) {
		up, ok := ev.Data.(UpdatePlaying)
		if !ok || up.Playing != want[i] {
			t.Errorf("event %d = %+v, want playing=%v", i, ev, want[i])
		}
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, ok := <-p.Events(); ok {
		t.Error("Events() still open after Close")
	}
	if err := p.Play(context.Background(), TrackAt(track)); !errors.Is(err, ErrClosed) {
		t.Errorf("Play() after Close error = %v, want %v", err, ErrClosed)
	}
	if err := p.Enqueue(context.Background(), TrackAt(track)); !errors.Is(err, ErrClosed) {
		t.Errorf("Enqueue() after Close error = %v, want %v", err, ErrClosed)
	}
	p.TogglePlaying()
}

func TestPlayer_PlayReplacesSession(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	long := writeWAV(t, dir, "long.wav", 80000, 0.25)
	other := writeWAV(t, dir, "other.wav", 300, -0.5)

	engine, h, p := newTestPlayer(t, Options{})
	ctx := context.Background()

	if err := p.Play(ctx, TrackAt(long)); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	pump(t, engine, func(a []float32) bool { return len(a) > 0 })

	if err := p.Play(ctx, TrackAt(other)); err != nil {
		t.Fatalf("second Play() error = %v", err)
	}
	got := pump(t, engine, func(a []float32) bool {
		return len(a) > 0 && near(a[len(a)-1], -0.5)
	})
	for _, v := range got {
		if near(v, 0.25) {
			t.Fatal("audio from the replaced session was rendered")
		}
	}
	if !h.IsPlaying() {
		t.Error("IsPlaying() = false after Play")
	}
}

func TestPlayer_EventsDropWhenFull(t *testing.T) {
	t.Parallel()

	_, _, p := newTestPlayer(t, Options{EventBuffer: 1})
	for range 5 {
		p.TogglePlaying()
	}
	if got := len(p.Events()); got != 1 {
		t.Errorf("buffered events = %d, want 1", got)
	}
}

func TestEvent_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "playing",
			ev:   playingEvent(true),
			want: `{"event":"UpdatePlaying","data":{"playing":true}}`,
		},
		{
			name: "current track",
			ev:   currentTrackEvent(Track{ID: "a1", Title: "Crusades", Artist: "Geese", CoverArtID: 1}),
			want: `{"event":"UpdateCurrentTrack","data":{"current_track":` +
				`{"id":"a1","track_title":"Crusades","artist_title":"Geese","cover_art_id":1}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := json.Marshal(tt.ev)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTrackAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		location string
		want     string
	}{
		{"/music/a.flac", "a.flac"},
		{"b.wav", "b.wav"},
		{"https://example.com/get-track/c.mp3?id=3", "c.mp3"},
	}
	for _, tt := range tests {
		if got := TrackAt(tt.location).Title; got != tt.want {
			t.Errorf("TrackAt(%q).Title = %q, want %q", tt.location, got, tt.want)
		}
	}
}

func TestPlayer_WaitBuffered(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeWAV(t, dir, "a.wav", 300, 0.1)
	b := writeWAV(t, dir, "b.wav", 300, 0.2)

	_, h, p := newTestPlayer(t, Options{})

	if err := p.WaitBuffered(context.Background()); err != nil {
		t.Fatalf("WaitBuffered() without a session error = %v", err)
	}
	if err := p.Play(context.Background(), TrackAt(a), TrackAt(b), TrackAt(filepath.Join(dir, "gone.wav"))); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.WaitBuffered(ctx); err != nil {
		t.Fatalf("WaitBuffered() error = %v", err)
	}

	// Nothing rendered yet, so both good tracks wait in the queue
	if got := h.QueueLen(); got != 2 {
		t.Errorf("QueueLen() = %d, want 2", got)
	}
}
