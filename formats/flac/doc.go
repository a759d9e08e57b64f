// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC streams through github.com/mewkiz/flac.
//
// Frames are decoded one at a time as samples are requested, so the input
// is never buffered whole and need not seek.
//
//	source, err := flac.Decoder{}.Decode(resp.Body)
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
package flac
