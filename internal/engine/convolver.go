// Package engine runs the block-wise windowed-sinc convolution that turns one
// interleaved signal at the input rate into one at the output rate.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-sinc-resampler/internal/filter"
	"github.com/tphakala/go-sinc-resampler/internal/simdops"
)

// Errors returned by the convolver.
var (
	// ErrInvalidInput indicates a non-positive length, channel count or rate.
	ErrInvalidInput = errors.New("invalid convolver input")

	// ErrShortBuffer indicates a source or destination shorter than required.
	ErrShortBuffer = errors.New("buffer too short")
)

// EdgeMode selects how outputs near the signal boundaries are weighted.
type EdgeMode int

const (
	// EdgeTruncate drops the kernel taps that fall outside the signal and
	// keeps the remaining weights as they are.
	EdgeTruncate EdgeMode = iota

	// EdgeRenormalize divides a truncated output by the sum of the weights
	// that were kept, so a constant signal stays constant up to the edges.
	EdgeRenormalize
)

// String returns the mode name.
func (m EdgeMode) String() string {
	switch m {
	case EdgeTruncate:
		return "truncate"
	case EdgeRenormalize:
		return "renormalize"
	default:
		return fmt.Sprintf("EdgeMode(%d)", int(m))
	}
}

// Options tune a Convolver. The zero value reproduces plain ascending
// float32 accumulation with truncated edges.
type Options struct {
	Edge EdgeMode

	// UseSIMD accumulates mono signals with a SIMD dot product. The
	// summation order then differs from ascending, so results agree with
	// the scalar path only to within float32 rounding.
	UseSIMD bool
}

// Convolver resamples one signal at a time with a fixed window.
// It owns scratch buffers and is not safe for concurrent use; create one
// per goroutine. The window itself may be shared.
type Convolver struct {
	window *filter.Window
	opts   Options
	ops    *simdops.Ops[float32]

	weights []float32 // kernel weights for the current output
	acc     []float32 // per-channel accumulator

	// Statistics
	samplesIn  int64
	samplesOut int64
}

// NewConvolver creates a convolver around w.
func NewConvolver(w *filter.Window, opts Options) (*Convolver, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil window", ErrInvalidInput)
	}
	if opts.Edge != EdgeTruncate && opts.Edge != EdgeRenormalize {
		return nil, fmt.Errorf("%w: unknown edge mode %d", ErrInvalidInput, int(opts.Edge))
	}
	return &Convolver{
		window:  w,
		opts:    opts,
		ops:     simdops.Float32Ops(),
		weights: make([]float32, w.Support()),
	}, nil
}

// Window returns the kernel the convolver evaluates.
func (c *Convolver) Window() *filter.Window {
	return c.window
}

// OutputLength returns the number of output frames produced for length
// input frames: ceil(length·outRate/inRate), computed in float64.
// Equal rates always give length.
func OutputLength(length int, inRate, outRate float64) int {
	if inRate == outRate {
		return length
	}
	return int(math.Ceil(float64(length) * outRate / inRate))
}

// Process resamples length interleaved frames of src into dst and returns
// the number of output frames written.
//
// Output is produced in blocks of BlockSize frames. Each block re-anchors
// its source position from the block index in float64, so the float32
// position accumulated inside a block never drifts across blocks.
// ctx is checked before every block; on cancellation the frames written
// so far are returned together with ctx.Err().
func (c *Convolver) Process(ctx context.Context, dst, src []float32, length, channels int, inRate, outRate float64) (int, error) {
	if length <= 0 || channels <= 0 {
		return 0, fmt.Errorf("%w: length=%d channels=%d", ErrInvalidInput, length, channels)
	}
	if !(inRate > 0) || !(outRate > 0) || math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return 0, fmt.Errorf("%w: rates must be positive and finite: in=%v out=%v", ErrInvalidInput, inRate, outRate)
	}

	outEnd := OutputLength(length, inRate, outRate)
	if len(src) < length*channels {
		return 0, fmt.Errorf("%w: source has %d samples, need %d", ErrShortBuffer, len(src), length*channels)
	}
	if len(dst) < outEnd*channels {
		return 0, fmt.Errorf("%w: destination has %d samples, need %d", ErrShortBuffer, len(dst), outEnd*channels)
	}

	if cap(c.acc) < channels {
		c.acc = make([]float32, channels)
	}
	acc := c.acc[:channels]

	w := c.window
	scale := inRate / outRate
	fscale := float32(scale)
	mono := channels == 1 && c.opts.UseSIMD

	for outBlock := 0; outBlock < outEnd; outBlock += BlockSize {
		if err := ctx.Err(); err != nil {
			return outBlock, err
		}

		blockEnd := min(outBlock+BlockSize, outEnd)
		inBlockRaw := float64(outBlock) * scale
		inBlockRounded := int(math.Floor(inBlockRaw))
		inPos := float32(inBlockRaw - float64(inBlockRounded))

		for outPos := outBlock; outPos < blockEnd; outPos++ {
			i0, i1 := w.InputRange(inPos)
			clipped := false
			if i0+inBlockRounded < 0 {
				i0 = -inBlockRounded
				clipped = true
			}
			if i1+inBlockRounded >= length {
				i1 = length - 1 - inBlockRounded
				clipped = true
			}

			clear(acc)
			if i1 >= i0 {
				n := i1 - i0 + 1
				ws := c.weights[:n]
				w.Weights(ws, i0, inPos)
				first := inBlockRounded + i0

				if mono {
					acc[0] = c.ops.DotProductUnsafe(ws, src[first:first+n])
				} else {
					accumulate(acc, ws, src[first*channels:(first+n)*channels])
				}

				if clipped && c.opts.Edge == EdgeRenormalize {
					if sum := c.ops.Sum(ws); sum != 0 {
						for ch := range acc {
							acc[ch] /= sum
						}
					}
				}
			}

			copy(dst[outPos*channels:(outPos+1)*channels], acc)
			inPos += fscale
		}
	}

	c.samplesIn += int64(length)
	c.samplesOut += int64(outEnd)
	return outEnd, nil
}

// accumulate adds rows[j*channels+ch]·ws[j] into acc[ch] in ascending j.
func accumulate(acc, ws, rows []float32) {
	channels := len(acc)
	for j, wj := range ws {
		row := rows[j*channels : (j+1)*channels]
		for ch, v := range row {
			acc[ch] += float32(v * wj)
		}
	}
}

// Statistics returns frame counters accumulated over all Process calls.
func (c *Convolver) Statistics() map[string]int64 {
	return map[string]int64{
		"samplesIn":  c.samplesIn,
		"samplesOut": c.samplesOut,
	}
}
