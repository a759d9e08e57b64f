// SPDX-License-Identifier: EPL-2.0

// Package config reads the audplay command line. Every flag may also be set
// in an ini file given with -config.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vharitonsky/iniflags"

	"github.com/ik5/audplay/device"
	"github.com/ik5/audplay/pcm"
	"github.com/ik5/audplay/stream"
)

var (
	ErrNoTracks       = errors.New("no tracks given")
	ErrInvalidValue   = errors.New("invalid flag value")
	ErrInvalidLatency = errors.New("latency must be positive")
)

// Config is the validated command line.
type Config struct {
	Device  device.Config
	Metrics string
	Level   zerolog.Level
	// RenderPath, when set, renders to a WAV file instead of the device.
	RenderPath string
	// Timeout bounds each HTTP track fetch. Zero disables it.
	Timeout time.Duration
	Tracks  []string
}

// Flags holds the raw flag values until they are validated.
type Flags struct {
	fs *flag.FlagSet

	rate     *int
	format   *string
	latency  *time.Duration
	buffer   *int
	block    *int
	queue    *int
	callback *int
	metrics  *string
	logLevel *string
	render   *string
	timeout  *time.Duration
}

// Define registers the audplay flags on fs.
func Define(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:     fs,
		rate:   fs.Int("rate", device.DefaultSampleRate, "Output sample rate in Hz."),
		format: fs.String("format", pcm.Float32.String(), "Output sample format (s8, s16, s32, u8, f32, ...)."),
		latency: fs.Duration("latency", device.DefaultLatency,
			"Buffer size requested from the audio backend."),
		buffer: fs.Int("buffer", stream.DefaultTrackBufferFrames,
			"Per-track buffer in frames."),
		block: fs.Int("block", stream.DefaultBlockFrames,
			"Rate converter block size in frames."),
		queue: fs.Int("queue", stream.DefaultQueueCapacity,
			"Maximum number of tracks waiting to play."),
		callback: fs.Int("callback", stream.DefaultMaxCallbackFrames,
			"Largest device callback in frames."),
		metrics: fs.String("metrics", "",
			"[address][:port] serving Prometheus metrics. Empty disables it."),
		logLevel: fs.String("loglevel", zerolog.InfoLevel.String(),
			"Log level (trace, debug, info, warn, error)."),
		render: fs.String("render", "",
			"Write a WAV file to this path instead of playing through the device."),
		timeout: fs.Duration("timeout", 30*time.Second,
			"Timeout for fetching each remote track. 0 disables it."),
	}
}

// Load defines the flags on the process command line, parses it along with
// any -config file and validates the result.
func Load() (Config, error) {
	f := Define(flag.CommandLine)

	// Reword usage strings of flags from iniflags package
	if configFlag := flag.Lookup("config"); configFlag != nil {
		configFlag.Usage =
			"Path to ini file containing values for command-line flags in 'flagName = value' format."
	}
	if dumpflagsFlag := flag.Lookup("dumpflags"); dumpflagsFlag != nil {
		dumpflagsFlag.Usage =
			"Print values for all command-line flags to stdout in a format compatible with -config, then exit."
	}

	iniflags.Parse()

	return f.Config()
}

// Config validates the parsed flags.
func (f *Flags) Config() (Config, error) {
	format, err := pcm.ParseFormat(*f.format)
	if err != nil {
		return Config{}, fmt.Errorf("-format: %w", err)
	}

	level, err := zerolog.ParseLevel(*f.logLevel)
	if err != nil {
		return Config{}, fmt.Errorf("-loglevel: %w", err)
	}

	for _, v := range []struct {
		name  string
		value int
	}{
		{"rate", *f.rate},
		{"buffer", *f.buffer},
		{"block", *f.block},
		{"queue", *f.queue},
		{"callback", *f.callback},
	} {
		if v.value <= 0 {
			return Config{}, fmt.Errorf("-%s=%d: %w", v.name, v.value, ErrInvalidValue)
		}
	}
	if *f.latency <= 0 {
		return Config{}, ErrInvalidLatency
	}
	if *f.timeout < 0 {
		return Config{}, fmt.Errorf("-timeout=%s: %w", *f.timeout, ErrInvalidValue)
	}

	tracks := f.fs.Args()
	if len(tracks) == 0 {
		return Config{}, ErrNoTracks
	}

	return Config{
		Device: device.Config{
			SampleRate: *f.rate,
			Format:     format,
			Latency:    *f.latency,
			Stream: stream.Options{
				BlockFrames:       *f.block,
				TrackBufferFrames: *f.buffer,
				QueueCapacity:     *f.queue,
				MaxCallbackFrames: *f.callback,
			},
		},
		Metrics:    *f.metrics,
		Level:      level,
		RenderPath: *f.render,
		Timeout:    *f.timeout,
		Tracks:     tracks,
	}, nil
}

// StreamOptions returns the engine options for offline rendering, where no
// device fixes the output format.
func (c Config) StreamOptions() stream.Options {
	opts := c.Device.Stream
	opts.OutputRate = c.Device.SampleRate
	opts.Format = c.Device.Format
	return opts
}
