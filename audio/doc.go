// SPDX-License-Identifier: EPL-2.0

// Package audio provides decoded-audio primitives shared by decoders and the
// playback engine.
//
//   - Source, the pull interface every decoder returns
//   - Registry, decoders keyed by format name
//   - RateConverter, block-based cubic sample rate conversion
//   - BlockConverter, which feeds arbitrary-length interleaved input into a
//     RateConverter and flushes the tail
//   - StereoAdapter, which presents mono sources as stereo
//
// # Sample Format
//
// Audio samples are float32 in the range [-1.0, 1.0], interleaved by frame.
// 0.0 is silence.
//
// # Rate Conversion
//
// RateConverter works on fixed-size de-interleaved blocks and keeps three
// frames of history between calls, so block boundaries are seamless. The
// number of output frames per block depends only on the rate pair and the
// block index:
//
//	rc, _ := audio.NewRateConverter(44100, 48000, 1024, 2)
//	out, _ := rc.Process(block) // block is [2][1024]float32 as slices
//
// Most callers want BlockConverter, which accepts interleaved input of any
// length and emits interleaved output:
//
//	bc, _ := audio.NewBlockConverter(44100, 48000, 1024, 2)
//	_ = bc.Write(samples, emit)
//	_ = bc.Flush(emit)
//
// After Flush, N input frames have produced exactly ceil(N*48000/44100)
// output frames.
package audio
