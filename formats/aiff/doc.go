// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF (Audio Interchange File Format) files through
// github.com/go-audio/aiff.
//
// Big-endian integer PCM at 8, 16, 24 and 32 bits is supported with any
// channel count and sample rate. Non-seekable inputs are buffered in memory,
// as go-audio needs to seek between chunks.
//
//	source, err := aiff.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
package aiff
