// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio decoding.
//
// This package uses github.com/hajimehoshi/go-mp3, which always produces
// interleaved stereo 16-bit PCM at the file's sample rate. The source
// normalizes it to float32 in [-1.0, 1.0]:
//
//	source, err := mp3.Decoder{}.Decode(resp.Body)
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// Reads always return whole frames; a truncated final frame is dropped.
// When the input implements io.Closer, closing the source closes it.
package mp3
