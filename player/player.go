// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats"
	"github.com/ik5/audplay/stream"
)

const (
	DefaultChunkFrames  = 4096
	DefaultEventBuffer  = 16
	DefaultPollInterval = 20 * time.Millisecond
)

// Options configure a Player. Zero values select the defaults.
type Options struct {
	Client   *http.Client
	Registry *audio.Registry
	Logger   zerolog.Logger

	// ChunkFrames is how many frames are decoded per Send.
	ChunkFrames int
	// EventBuffer is the capacity of the Events channel.
	EventBuffer int
	// PollInterval is how often the engine is checked for track changes.
	PollInterval time.Duration
}

// Player plays lists of tracks through a stream engine.
type Player struct {
	h        *stream.MainStreamHandle
	client   *http.Client
	registry *audio.Registry
	log      zerolog.Logger

	chunkFrames int
	poll        time.Duration

	mu      sync.Mutex
	session *session
	closed  bool

	evMu     sync.RWMutex
	events   chan Event
	evClosed bool
}

// session is one run of the feeder and the now-playing watcher.
type session struct {
	cancel context.CancelFunc
	group  *errgroup.Group

	mu      sync.Mutex
	pending []Track
	notify  chan struct{}
	// busy is set while the feeder works on a track.
	busy bool
	// queued lists tracks handed to the engine, in order.
	queued    []Track
	announced int
	// base is the engine's started-track count when the session began.
	base uint64
}

func New(h *stream.MainStreamHandle, opts Options) *Player {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Registry == nil {
		opts.Registry = formats.NewRegistry()
	}
	if opts.ChunkFrames <= 0 {
		opts.ChunkFrames = DefaultChunkFrames
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	return &Player{
		h:           h,
		client:      opts.Client,
		registry:    opts.Registry,
		log:         opts.Logger,
		chunkFrames: opts.ChunkFrames,
		poll:        opts.PollInterval,
		events:      make(chan Event, opts.EventBuffer),
	}
}

// Events delivers playback updates. Updates are dropped while the channel
// is full. It is closed by Close.
func (p *Player) Events() <-chan Event { return p.events }

// Play replaces whatever is playing with tracks and starts playback. The
// session runs until ctx ends or it is replaced or stopped.
func (p *Player) Play(ctx context.Context, tracks ...Track) error {
	if len(tracks) == 0 {
		return ErrNoTracks
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	p.stopLocked()
	p.h.Stop()
	p.startLocked(ctx, withIDs(tracks))
	p.h.Play()

	p.log.Info().Int("tracks", len(tracks)).Msg("playback started")
	p.emit(playingEvent(true))

	return nil
}

// Enqueue appends tracks after the ones already waiting. Without a running
// session it starts one without changing the play state.
func (p *Player) Enqueue(ctx context.Context, tracks ...Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if len(tracks) == 0 {
		return nil
	}

	tracks = withIDs(tracks)
	if p.session == nil {
		p.startLocked(ctx, tracks)
	} else {
		p.session.push(tracks)
	}

	p.log.Debug().Int("tracks", len(tracks)).Msg("tracks enqueued")

	return nil
}

// WaitBuffered returns once every track handed to the player has been
// written to the engine in full or has failed. Tracks may still be
// playing when it returns.
func (p *Player) WaitBuffered(ctx context.Context) error {
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		p.mu.Lock()
		s := p.session
		p.mu.Unlock()

		if s == nil || s.buffered() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// TogglePlaying pauses or resumes and returns the new state.
func (p *Player) TogglePlaying() bool {
	playing := p.h.TogglePlaying()

	p.log.Debug().Bool("playing", playing).Msg("toggled playback")
	p.emit(playingEvent(playing))

	return playing
}

// Skip drops the track being heard. The next one starts on the following
// engine callback.
func (p *Player) Skip() {
	p.h.Clear()
	p.log.Debug().Msg("skipping track")
}

// Stop ends the session, drops every track and pauses.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.h.Stop()
	p.h.Pause()

	p.log.Info().Msg("playback stopped")
	p.emit(playingEvent(false))
}

// Close stops playback and closes the Events channel.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.stopLocked()
	p.h.Stop()
	p.h.Pause()
	p.mu.Unlock()

	p.evMu.Lock()
	p.evClosed = true
	close(p.events)
	p.evMu.Unlock()

	return nil
}

func (p *Player) emit(ev Event) {
	p.evMu.RLock()
	defer p.evMu.RUnlock()

	if p.evClosed {
		return
	}
	select {
	case p.events <- ev:
	default:
		p.log.Debug().Str("event", ev.Event).Msg("event dropped")
	}
}

func (p *Player) startLocked(ctx context.Context, tracks []Track) {
	sctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(sctx)

	s := &session{
		cancel:  cancel,
		group:   g,
		pending: tracks,
		notify:  make(chan struct{}, 1),
		base:    p.h.Stats().TracksStarted,
	}
	p.session = s

	g.Go(func() error { return p.feed(gctx, s) })
	g.Go(func() error { return p.watch(gctx, s) })
}

func (p *Player) stopLocked() {
	s := p.session
	if s == nil {
		return
	}
	p.session = nil

	s.cancel()
	if err := s.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		p.log.Warn().Err(err).Msg("playback session ended with error")
	}
}

func (s *session) push(tracks []Track) {
	s.mu.Lock()
	s.pending = append(s.pending, tracks...)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// next waits for the next pending track.
func (s *session) next(ctx context.Context) (Track, error) {
	for {
		s.mu.Lock()
		if len(s.pending) > 0 {
			t := s.pending[0]
			s.pending = s.pending[1:]
			s.busy = true
			s.mu.Unlock()
			return t, nil
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return Track{}, ctx.Err()
		case <-s.notify:
		}
	}
}

func (s *session) setIdle() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *session) buffered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) == 0 && !s.busy
}

func (s *session) markQueued(t Track) {
	s.mu.Lock()
	s.queued = append(s.queued, t)
	s.mu.Unlock()
}

// started returns the queued tracks the engine has begun since the last
// call.
func (s *session) started(count uint64) []Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int(count - s.base)
	if n > len(s.queued) {
		n = len(s.queued)
	}
	if n <= s.announced {
		return nil
	}
	out := s.queued[s.announced:n]
	s.announced = n
	return out
}

// feed decodes pending tracks one at a time. A track that fails is logged
// and skipped.
func (p *Player) feed(ctx context.Context, s *session) error {
	for {
		t, err := s.next(ctx)
		if err != nil {
			return nil
		}

		log := p.log.With().
			Str("track", t.ID).
			Str("location", t.Location).
			Str("kind", locationKind(t.Location)).
			Logger()

		err = p.feedTrack(ctx, s, t, log)
		s.setIdle()

		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, stream.ErrTrackClosed):
			log.Debug().Msg("track dropped by the engine")
		case err != nil:
			log.Error().Err(err).Msg("track failed")
		default:
			log.Debug().Msg("track fully buffered")
		}
	}
}

func (p *Player) feedTrack(ctx context.Context, s *session, t Track, log zerolog.Logger) error {
	src, err := p.open(ctx, t)
	if err != nil {
		return err
	}
	defer src.Close()

	stereo, err := audio.NewStereoAdapter(src)
	if err != nil {
		return fmt.Errorf("adapt channels: %w", err)
	}

	ts, producer, err := p.h.SpawnTrackStream(stereo.SampleRate())
	if err != nil {
		return fmt.Errorf("spawn track: %w", err)
	}
	defer producer.Close()

	if err := p.queue(ctx, ts); err != nil {
		_ = ts.Close()
		return err
	}
	s.markQueued(t)

	log.Debug().
		Int("rate", src.SampleRate()).
		Int("channels", src.Channels()).
		Msg("track queued")

	buf := make([]float32, p.chunkFrames*stream.Channels)
	for {
		n, rerr := stereo.ReadSamples(buf)
		if n > 0 {
			if err := producer.Send(ctx, buf[:n]); err != nil {
				return err
			}
		}
		if errors.Is(rerr, io.EOF) {
			return producer.Finish(ctx)
		}
		if rerr != nil {
			return fmt.Errorf("read samples: %w", rerr)
		}
	}
}

// queue retries while the engine queue is full.
func (p *Player) queue(ctx context.Context, ts *stream.TrackStream) error {
	for {
		err := p.h.Queue(ts)
		if !errors.Is(err, stream.ErrQueueFull) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.poll):
		}
	}
}

// watch announces tracks as the engine starts them.
func (p *Player) watch(ctx context.Context, s *session) error {
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		for _, t := range s.started(p.h.Stats().TracksStarted) {
			p.log.Info().Str("track", t.ID).Str("title", t.Title).Msg("now playing")
			p.emit(currentTrackEvent(t))
		}
	}
}
