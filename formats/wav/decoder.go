// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/internal/gopcm"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, err := gopcm.ReadSeeker(r)
	if err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
		}
		return nil, ErrNotWavFile
	}

	switch dec.WavAudioFormat {
	case formatPCM, formatExtensible:
	default:
		return nil, fmt.Errorf("%w: format tag %#x", ErrOnlyPCMSupported, dec.WavAudioFormat)
	}

	bits := int(dec.BitDepth)
	if !gopcm.SupportedBitDepth(bits) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bits)
	}

	channels := int(dec.NumChans)
	if channels == 0 || dec.SampleRate == 0 {
		return nil, ErrUnsupportedWavLayout
	}

	return gopcm.NewSource(dec, gopcm.Options{
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
		BitDepth:   bits,
		// 8-bit WAV is unsigned
		Unsigned8: true,
	}), nil
}
