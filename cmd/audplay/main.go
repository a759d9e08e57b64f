// SPDX-License-Identifier: EPL-2.0

// Command audplay plays local files and http(s) URLs through the default
// audio output, or renders them to a WAV file with -render.
//
// While playing, commands are read from stdin, one per line:
//
//	p       toggle pause
//	n       skip to the next track
//	s       stop
//	+ LOC   enqueue a track
//	i       print engine statistics
//	q       quit
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/device"
	"github.com/ik5/audplay/internal/config"
	"github.com/ik5/audplay/internal/metrics"
	"github.com/ik5/audplay/player"
	"github.com/ik5/audplay/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "audplay: %v\n", err)
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(cfg.Level).
		With().Timestamp().
		Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RenderPath != "" {
		err = render(ctx, cfg, logger)
	} else {
		err = play(ctx, cfg, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("audplay failed")
		os.Exit(1)
	}
}

func tracks(cfg config.Config) []player.Track {
	out := make([]player.Track, len(cfg.Tracks))
	for i, loc := range cfg.Tracks {
		out[i] = player.TrackAt(loc)
	}
	return out
}

func newPlayer(h *stream.MainStreamHandle, cfg config.Config, logger zerolog.Logger) *player.Player {
	return player.New(h, player.Options{
		Client: &http.Client{Timeout: cfg.Timeout},
		Logger: logger.With().Str("component", "player").Logger(),
	})
}

func render(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	engine, h, err := stream.New(cfg.StreamOptions())
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	out, err := os.Create(cfg.RenderPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	p := newPlayer(h, cfg, logger)
	defer p.Close()

	if err := p.Play(ctx, tracks(cfg)...); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.WaitBuffered(ctx)
	}()

	start := time.Now()
	frames, err := audplay.Render(ctx, engine, cfg.Device.SampleRate, out, done)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	logger.Info().
		Str("path", cfg.RenderPath).
		Int("frames", frames).
		Dur("audio", time.Duration(frames)*time.Second/time.Duration(cfg.Device.SampleRate)).
		Dur("took", time.Since(start)).
		Msg("render finished")

	return out.Close()
}

func play(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	dev, h, err := device.Init(cfg.Device)
	if err != nil {
		return err
	}
	defer dev.Close()

	logger.Info().
		Int("rate", cfg.Device.SampleRate).
		Str("format", cfg.Device.Format.String()).
		Dur("latency", cfg.Device.Latency).
		Msg("output device opened")

	p := newPlayer(h, cfg, logger)
	defer p.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics != "" {
		reg := metrics.NewRegistry(dev.Stats)
		g.Go(func() error { return metrics.Serve(gctx, cfg.Metrics, reg) })
		logger.Info().Str("addr", cfg.Metrics).Msg("serving metrics")
	}

	g.Go(func() error {
		logEvents(gctx, p, logger)
		return nil
	})

	if err := p.Play(gctx, tracks(cfg)...); err != nil {
		return err
	}

	g.Go(func() error {
		if err := waitFinished(gctx, p, dev); err != nil {
			return err
		}
		logger.Info().Msg("playlist finished")
		cancel()
		return nil
	})

	// Reading stdin cannot be interrupted, so it stays outside the group
	go commands(gctx, os.Stdin, cancel, p, dev, logger)

	err = g.Wait()
	if derr := dev.Err(); derr != nil {
		logger.Warn().Err(derr).Msg("audio device reported an error")
	}
	return err
}

// waitFinished returns once every track was buffered and the engine has
// nothing current or queued.
func waitFinished(ctx context.Context, p *player.Player, dev *device.Device) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := p.WaitBuffered(ctx); err != nil {
			return err
		}
		if s := dev.Stats(); s.Idle && s.QueueLen == 0 && s.Playing {
			return nil
		}
	}
}

func logEvents(ctx context.Context, p *player.Player, logger zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-p.Events():
			if !ok {
				return
			}
			raw, err := json.Marshal(ev)
			if err != nil {
				logger.Warn().Err(err).Msg("encode event")
				continue
			}
			logger.Info().RawJSON("update", raw).Msg(ev.Event)
		}
	}
}

func commands(ctx context.Context, r io.Reader, quit context.CancelFunc, p *player.Player, dev *device.Device, logger zerolog.Logger) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		cmd, arg, _ := strings.Cut(line, " ")

		switch cmd {
		case "":
		case "p":
			p.TogglePlaying()
		case "n":
			p.Skip()
		case "s":
			p.Stop()
		case "+":
			arg = strings.TrimSpace(arg)
			if arg == "" {
				logger.Warn().Msg("+ needs a track location")
				continue
			}
			if err := p.Enqueue(ctx, player.TrackAt(arg)); err != nil {
				logger.Warn().Err(err).Msg("enqueue failed")
			}
		case "i":
			s := dev.Stats()
			logger.Info().
				Uint64("callbacks", s.Callbacks).
				Uint64("starved", s.StarvedCallbacks).
				Uint64("started", s.TracksStarted).
				Uint64("finished", s.TracksFinished).
				Uint64("faults", s.Faults).
				Int("queued", s.QueueLen).
				Bool("playing", s.Playing).
				Msg("engine stats")
		case "q":
			quit()
			return
		default:
			logger.Warn().Str("command", cmd).Msg("unknown command")
		}
	}
}
