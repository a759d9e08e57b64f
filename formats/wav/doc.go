// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes WAV files through github.com/go-audio/wav.
//
// The Decoder accepts integer PCM at 8, 16, 24 and 32 bits with any channel
// count and sample rate, including WAVE_FORMAT_EXTENSIBLE headers. Inputs
// that cannot seek are buffered in memory first.
//
//	source, err := wav.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// Writer produces 16-bit PCM from float32 samples:
//
//	w := wav.NewWriter(file, 48000, 2)
//	_ = w.Write(samples)
//	_ = w.Close()
package wav
