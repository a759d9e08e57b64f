// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"

	"github.com/ik5/audplay/utils"
)

// historyFrames is how many frames of the previous block the cubic window
// needs: interpolating at position t reads frames floor(t)-1 .. floor(t)+2.
const historyFrames = 3

// minBlockFrames keeps at least one interpolation point inside a block.
const minBlockFrames = 4

// noLimit disables the end-of-stream cut in process.
const noLimit = math.MaxInt64

// RateConverter changes the sample rate of de-interleaved audio processed in
// fixed-size blocks using cubic interpolation.
//
// Positions are tracked with an exact integer accumulator (input frames in
// units of 1/den, with step/den = inRate/outRate in lowest terms), so the
// number of frames produced for the k-th block depends only on k and the
// rate pair. When downsampling, input passes through a one-pole low-pass
// filter with its cutoff at the output Nyquist frequency.
type RateConverter struct {
	inRate      int
	outRate     int
	blockFrames int
	channels    int

	step int64
	den  int64

	// window[c] holds historyFrames carried frames followed by the block.
	window [][]float32
	// pos is the next output position relative to the start of the
	// current block, in 1/den input frames. It is never below -2*den.
	pos int64

	out  [][]float32
	view [][]float32

	useFilter   bool
	filterAlpha float32
	filterState []float32
	primed      bool
}

// NewRateConverter creates a converter from inRate to outRate that accepts
// blocks of exactly blockFrames frames per channel.
func NewRateConverter(inRate, outRate, blockFrames, channels int) (*RateConverter, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, ErrInvalidRate
	}
	if blockFrames < minBlockFrames {
		return nil, ErrInvalidBlockSize
	}
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	g := gcd(inRate, outRate)
	c := &RateConverter{
		inRate:      inRate,
		outRate:     outRate,
		blockFrames: blockFrames,
		channels:    channels,
		step:        int64(inRate / g),
		den:         int64(outRate / g),
		window:      make([][]float32, channels),
		out:         make([][]float32, channels),
		view:        make([][]float32, channels),
		filterState: make([]float32, channels),
	}

	maxOut := c.MaxOutputFrames()
	for ch := range channels {
		c.window[ch] = make([]float32, historyFrames+blockFrames)
		c.out[ch] = make([]float32, maxOut)
	}

	if inRate > outRate {
		// One-pole low-pass, cutoff at the Nyquist frequency of the output
		cutoff := float64(outRate) / 2
		c.useFilter = true
		c.filterAlpha = float32(1 - math.Exp(-2*math.Pi*cutoff/float64(inRate)))
	}

	return c, nil
}

func (c *RateConverter) InputRate() int   { return c.inRate }
func (c *RateConverter) OutputRate() int  { return c.outRate }
func (c *RateConverter) BlockFrames() int { return c.blockFrames }
func (c *RateConverter) Channels() int    { return c.channels }

// MaxOutputFrames is the largest number of frames a single block can yield.
func (c *RateConverter) MaxOutputFrames() int {
	span := int64(c.blockFrames) * c.den
	return int((span+c.step-1)/c.step) + 1
}

// Process converts one block. in must hold Channels slices of exactly
// BlockFrames samples. The returned slices are owned by the converter and
// stay valid until the next call.
func (c *RateConverter) Process(in [][]float32) ([][]float32, error) {
	if len(in) != c.channels {
		return nil, ErrInvalidChannels
	}
	for _, samples := range in {
		if len(samples) != c.blockFrames {
			return nil, ErrBlockSize
		}
	}

	return c.process(in, noLimit), nil
}

// process emits every output position below limit (relative to the start
// of this block) that the window can serve, then carries the history over.
func (c *RateConverter) process(in [][]float32, limit int64) [][]float32 {
	for ch := range c.channels {
		dst := c.window[ch][historyFrames:]
		if !c.useFilter {
			copy(dst, in[ch])
			continue
		}
		state := c.filterState[ch]
		if !c.primed {
			// Avoid a warm-up transient from a zero state
			state = in[ch][0]
		}
		for i, x := range in[ch] {
			state = c.filterAlpha*x + (1-c.filterAlpha)*state
			dst[i] = state
		}
		c.filterState[ch] = state
	}
	c.primed = true

	maxQ := int64(c.blockFrames - historyFrames)
	n := 0
	for c.pos < limit {
		q, r := floorDivMod(c.pos, c.den)
		if q > maxQ {
			break
		}
		wts := utils.CatmullRomWeights(float32(r) / float32(c.den))
		base := int(q) + 2
		for ch := range c.channels {
			w := c.window[ch]
			c.out[ch][n] = utils.Apply4(wts, w[base], w[base+1], w[base+2], w[base+3])
		}
		n++
		c.pos += c.step
	}

	for ch := range c.channels {
		w := c.window[ch]
		copy(w[:historyFrames], w[c.blockFrames:])
		c.view[ch] = c.out[ch][:n]
	}
	c.pos -= int64(c.blockFrames) * c.den

	return c.view
}

func floorDivMod(a, b int64) (int64, int64) {
	q, r := a/b, a%b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
