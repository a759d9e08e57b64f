// SPDX-License-Identifier: EPL-2.0

package audio

// BlockConverter feeds interleaved audio of any length into a RateConverter.
//
// Input that does not fill a whole block is carried over to the next Write.
// Flush pads the final partial block with silence and emits only output
// frames whose source position lies inside the written audio, so a stream of
// N input frames produces ceil(N*outRate/inRate) output frames.
type BlockConverter struct {
	rc       *RateConverter
	channels int
	block    [][]float32
	fill     int
	out      []float32
	flushed  bool
}

// NewBlockConverter creates a converter for interleaved audio with the given
// channel count.
func NewBlockConverter(inRate, outRate, blockFrames, channels int) (*BlockConverter, error) {
	rc, err := NewRateConverter(inRate, outRate, blockFrames, channels)
	if err != nil {
		return nil, err
	}

	b := &BlockConverter{
		rc:       rc,
		channels: channels,
		block:    make([][]float32, channels),
		out:      make([]float32, rc.MaxOutputFrames()*channels),
	}
	for ch := range channels {
		b.block[ch] = make([]float32, blockFrames)
	}

	return b, nil
}

// MaxOutputSamples is the largest interleaved slice passed to emit.
func (b *BlockConverter) MaxOutputSamples() int { return len(b.out) }

// Pending is the number of input frames waiting for a full block.
func (b *BlockConverter) Pending() int { return b.fill }

// Write converts interleaved samples, calling emit with interleaved output
// for every completed block. The slice passed to emit is reused afterwards.
func (b *BlockConverter) Write(interleaved []float32, emit func([]float32) error) error {
	if b.flushed {
		return ErrConverterFlushed
	}
	if len(interleaved)%b.channels != 0 {
		return ErrInvalidDstSize
	}

	blockFrames := b.rc.blockFrames
	frames := len(interleaved) / b.channels
	for i := 0; i < frames; {
		n := min(frames-i, blockFrames-b.fill)
		for f := range n {
			idx := (i + f) * b.channels
			for ch := range b.channels {
				b.block[ch][b.fill+f] = interleaved[idx+ch]
			}
		}
		b.fill += n
		i += n

		if b.fill < blockFrames {
			break
		}
		b.fill = 0
		if err := b.emit(b.rc.process(b.block, noLimit), emit); err != nil {
			return err
		}
	}

	return nil
}

// Flush converts the carried-over remainder and every output still owed for
// the stream. The converter accepts no further input afterwards.
func (b *BlockConverter) Flush(emit func([]float32) error) error {
	if b.flushed {
		return nil
	}
	b.flushed = true

	blockSpan := int64(b.rc.blockFrames) * b.rc.den
	limit := int64(b.fill) * b.rc.den
	for ch := range b.channels {
		clear(b.block[ch][b.fill:])
	}

	for {
		if err := b.emit(b.rc.process(b.block, limit), emit); err != nil {
			return err
		}
		limit -= blockSpan
		if b.rc.pos >= limit {
			break
		}
		for ch := range b.channels {
			clear(b.block[ch])
		}
	}
	b.fill = 0

	return nil
}

func (b *BlockConverter) emit(out [][]float32, emit func([]float32) error) error {
	frames := len(out[0])
	if frames == 0 {
		return nil
	}
	for f := range frames {
		idx := f * b.channels
		for ch := range b.channels {
			b.out[idx+ch] = out[ch][f]
		}
	}
	return emit(b.out[:frames*b.channels])
}
