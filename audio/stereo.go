// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// StereoAdapter presents a mono or stereo Source as interleaved stereo.
// Mono frames are duplicated to both channels; stereo passes through.
type StereoAdapter struct {
	src Source
	tmp []float32
}

// NewStereoAdapter wraps src. Sources with more than two channels are
// rejected with ErrUnsupportedChannels.
func NewStereoAdapter(src Source) (*StereoAdapter, error) {
	switch src.Channels() {
	case 1, 2:
	default:
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedChannels, src.Channels())
	}

	return &StereoAdapter{src: src}, nil
}

func (s *StereoAdapter) SampleRate() int { return s.src.SampleRate() }
func (s *StereoAdapter) Channels() int   { return 2 }

func (s *StereoAdapter) BufSize() int {
	if s.src.Channels() == 1 {
		return s.src.BufSize() * 2
	}
	return s.src.BufSize()
}

func (s *StereoAdapter) Close() error {
	err := s.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *StereoAdapter) ReadSamples(dst []float32) (int, error) {
	if len(dst)%2 != 0 {
		return 0, ErrInvalidDstSize
	}
	if s.src.Channels() == 2 {
		return s.src.ReadSamples(dst)
	}

	frames := len(dst) / 2
	if frames == 0 {
		return 0, nil
	}

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(s.tmp) < frames {
		s.tmp = make([]float32, max(frames, 4096))
	}
	mono := s.tmp[:frames]

	n, err := s.src.ReadSamples(mono)
	for f := range n {
		dst[f<<1] = mono[f]
		dst[f<<1+1] = mono[f]
	}

	return n * 2, err
}
