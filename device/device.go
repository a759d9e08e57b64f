// SPDX-License-Identifier: EPL-2.0

package device

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/audplay/pcm"
	"github.com/ik5/audplay/stream"
)

const (
	DefaultSampleRate = 48000
	DefaultLatency    = 50 * time.Millisecond
)

// Config selects the output format. Engine sizing comes from Stream; its
// OutputRate and Format are overwritten with SampleRate and Format.
type Config struct {
	SampleRate int
	Format     pcm.Format
	// Latency is the OS-level buffer requested from the backend.
	Latency time.Duration
	Stream  stream.Options
}

// Device is the default output opened through oto. The player pulls encoded
// frames from the render engine on oto's own goroutine.
type Device struct {
	ctx    *oto.Context
	player *oto.Player
	engine *stream.MainStream
}

// Init opens the default output and starts pulling from a new engine. The
// engine starts paused, so the device plays silence until the handle's Play
// is called. Only one Device may exist per process.
func Init(cfg Config) (*Device, *stream.MainStreamHandle, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Format == pcm.Invalid {
		cfg.Format = pcm.Float32
	}
	if cfg.Latency == 0 {
		cfg.Latency = DefaultLatency
	}

	format, err := otoFormat(cfg.Format)
	if err != nil {
		return nil, nil, err
	}

	opts := cfg.Stream
	opts.OutputRate = cfg.SampleRate
	opts.Format = cfg.Format
	engine, handle, err := stream.New(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("create engine: %w", err)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: stream.Channels,
		Format:       format,
		BufferSize:   cfg.Latency,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open output device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(engine)
	// Keep the mux buffer near the requested latency instead of oto's 0.5s
	player.SetBufferSize(bufferBytes(cfg.SampleRate, cfg.Format, cfg.Latency))
	player.Play()

	return &Device{ctx: ctx, player: player, engine: engine}, handle, nil
}

// Engine is the render engine feeding the device.
func (d *Device) Engine() *stream.MainStream { return d.engine }

// Stats returns the engine counters.
func (d *Device) Stats() stream.Stats { return d.engine.Stats() }

// Err reports a backend failure, if any.
func (d *Device) Err() error {
	if err := d.player.Err(); err != nil {
		return fmt.Errorf("player: %w", err)
	}
	if err := d.ctx.Err(); err != nil {
		return fmt.Errorf("context: %w", err)
	}
	return nil
}

// SetVolume sets the output gain, clamped to [0, 1].
func (d *Device) SetVolume(v float64) {
	d.player.SetVolume(min(max(v, 0), 1))
}

func (d *Device) Close() error {
	if err := d.player.Close(); err != nil {
		return fmt.Errorf("close player: %w", err)
	}
	return nil
}

func otoFormat(f pcm.Format) (oto.Format, error) {
	switch f {
	case pcm.Float32:
		return oto.FormatFloat32LE, nil
	case pcm.Int16:
		return oto.FormatSignedInt16LE, nil
	case pcm.Uint8:
		return oto.FormatUnsignedInt8, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}

func bufferBytes(rate int, f pcm.Format, latency time.Duration) int {
	frames := int(int64(rate) * int64(latency) / int64(time.Second))
	return max(frames, 256) * stream.Channels * f.BytesPerSample()
}
