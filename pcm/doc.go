// SPDX-License-Identifier: EPL-2.0

// Package pcm describes the sample representations an output device can
// accept and converts canonical float32 samples into them.
//
// A Format is chosen once, when the output stream is built. Its Encoder is a
// plain function holding one tight loop per representation, so the render
// path pays for the format switch once per stream rather than once per
// sample:
//
//	enc, err := pcm.Int16.Encoder()
//	if err != nil {
//	    return err
//	}
//	n := enc(out, samples) // bytes written, little-endian
//
// Canonical samples are clamped to [-1, 1]. Signed integer formats scale by
// their maximum value, unsigned formats are offset binary with silence at
// 2^(n-1), and float formats pass through.
package pcm
