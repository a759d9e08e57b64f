// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis decoding through
// github.com/jfreymuth/oggvorbis.
//
// Samples are decoded directly into the caller's buffer, interleaved by
// channel:
//
//	[L0, R0, L1, R1, L2, R2, ...]
//
// Usage:
//
//	source, err := vorbis.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// The stream is decoded as it is read and never seeks.
package vorbis
