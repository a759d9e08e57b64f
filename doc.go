// SPDX-License-Identifier: EPL-2.0

// Package audplay is a real-time streaming playback core.
//
// Decoded tracks are pushed through per-track bounded channels into a single
// render engine that an audio device (or an offline renderer) pulls from.
// The engine never blocks and never allocates while rendering: when a track
// has nothing buffered it outputs silence, and when a track ends it backfills
// the callback from the next queued track so there is no gap between them.
//
// # Packages
//
//   - stream: the render engine, its transport handle and track channels
//   - audio: sources, decoders, the block rate converter and the stereo adapter
//   - formats: WAV, AIFF, MP3, Ogg Vorbis and FLAC decoders
//   - pcm: output sample formats and their encoders
//   - device: oto-backed output device
//   - player: fetches, decodes and feeds tracks into the engine
//
// # Quick Start
//
//	dev, h, err := device.Init(device.Config{SampleRate: 48000})
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//
//	p := player.New(h, player.Options{})
//	defer p.Close()
//	_ = p.Play(ctx, player.TrackAt("https://example.com/a.flac"), player.TrackAt("b.wav"))
//
// # Offline Rendering
//
// Render drives an engine without a device and writes the result as a
// 16-bit stereo WAV:
//
//	engine, h, _ := stream.New(stream.Options{OutputRate: 44100})
//	h.Play()
//	out, _ := os.Create("out.wav")
//	frames, err := audplay.Render(ctx, engine, 44100, out, feederDone)
package audplay
