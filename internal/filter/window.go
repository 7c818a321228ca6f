// Package filter builds the windowed-sinc lookup table and evaluates the
// interpolation kernel from it.
package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-sinc-resampler/internal/mathutil"
)

// ErrInvalidWindow is returned when a window cannot be built from the
// requested coefficient and lobe counts.
var ErrInvalidWindow = errors.New("invalid window parameters")

// Window is a sampled, enveloped sinc kernel.
//
// LUT holds Coeffs samples of sinc(x)·envelope(x/lobes) over x ∈ [-Lobes, Lobes],
// padded by one zero guard entry on each side, so len(LUT) == Coeffs+2.
// Scale and Center map a kernel argument onto a fractional LUT index:
// fi = x*Scale + Center.
//
// A Window is immutable once built and may be read from several goroutines.
type Window struct {
	LUT    []float32
	Scale  float32
	Center float32
	Lobes  int
	Coeffs int
}

// NewWindowedSinc samples the enveloped sinc into a lookup table of coeffs
// points spanning lobes zero crossings on each side of the center.
// A nil envelope selects Hann.
//
// coeffs should be odd so the center lands on a table entry; the quality
// mapping always produces odd sizes.
func NewWindowedSinc(coeffs, lobes int, env mathutil.Envelope) (*Window, error) {
	if coeffs < minCoeffs {
		return nil, fmt.Errorf("%w: coefficient count %d below minimum %d", ErrInvalidWindow, coeffs, minCoeffs)
	}
	if lobes < 1 {
		return nil, fmt.Errorf("%w: lobe count must be positive, got %d", ErrInvalidWindow, lobes)
	}
	if env == nil {
		env = mathutil.Hann
	}

	scale := float32(2*lobes) / float32(coeffs-1)
	scaleEnvelope := float32(envelopeSpan) / float32(coeffs)
	center := (coeffs - 1) / 2

	lut := make([]float32, coeffs+guardEntries)
	for i := range coeffs {
		x := float32(i-center) * scale
		y := float32(i-center) * scaleEnvelope
		lut[i+1] = float32(mathutil.Sinc(float64(x)) * env(float64(y)))
	}

	return &Window{
		LUT:    lut,
		Scale:  1 / scale,
		Center: float32(center + 1),
		Lobes:  lobes,
		Coeffs: coeffs,
	}, nil
}

// NewForQuality builds the window for a quality value in [0, 100].
// The caller is responsible for validating quality.
func NewForQuality(quality float64, env mathutil.Envelope) (*Window, error) {
	lobes := LobesForQuality(quality)
	return NewWindowedSinc(LUTSize(lobes), lobes, env)
}

// Eval returns the kernel value at offset x, linearly interpolated between
// the two nearest table entries. Offsets outside the table evaluate to 0.
func (w *Window) Eval(x float32) float32 {
	// explicit conversions keep each product rounded to float32 so Eval and
	// Eval4 agree bit-for-bit regardless of FMA contraction
	fi := float32(x*w.Scale) + w.Center
	i := int(math.Floor(float64(fi)))
	if i < 0 || i > w.Coeffs {
		return 0
	}
	d := fi - float32(i)
	lo := w.LUT[i]
	hi := w.LUT[i+1]
	return lo + float32(d*(hi-lo))
}

// Eval4 evaluates the kernel at four offsets. Lane k of the result is
// bit-identical to Eval(x[k]).
func (w *Window) Eval4(x [4]float32) [4]float32 {
	var (
		fi  [4]float32
		idx [4]int
		out [4]float32
	)

	fi[0] = float32(x[0]*w.Scale) + w.Center
	fi[1] = float32(x[1]*w.Scale) + w.Center
	fi[2] = float32(x[2]*w.Scale) + w.Center
	fi[3] = float32(x[3]*w.Scale) + w.Center

	idx[0] = int(math.Floor(float64(fi[0])))
	idx[1] = int(math.Floor(float64(fi[1])))
	idx[2] = int(math.Floor(float64(fi[2])))
	idx[3] = int(math.Floor(float64(fi[3])))

	for lane := range out {
		i := idx[lane]
		if i < 0 || i > w.Coeffs {
			continue
		}
		d := fi[lane] - float32(i)
		lo := w.LUT[i]
		hi := w.LUT[i+1]
		out[lane] = lo + float32(d*(hi-lo))
	}
	return out
}

// InputRange returns the inclusive range of integer source offsets that
// contribute to an output located at fractional offset x.
func (w *Window) InputRange(x float32) (i0, i1 int) {
	xd := float64(x)
	return int(math.Ceil(xd)) - w.Lobes, int(math.Floor(xd)) + w.Lobes
}

// Support returns the maximum number of source samples a single output reads.
func (w *Window) Support() int {
	return 2*w.Lobes + 1
}

// Weights fills dst with the kernel sampled at source offsets
// i0, i0+1, ..., i0+len(dst)-1 relative to the fractional position pos.
// Four offsets are evaluated per step; the tail falls back to Eval.
func (w *Window) Weights(dst []float32, i0 int, pos float32) {
	n := len(dst)
	j := 0
	for ; j+lanes <= n; j += lanes {
		k := float32(i0 + j)
		v := w.Eval4([4]float32{k - pos, k + 1 - pos, k + 2 - pos, k + 3 - pos})
		copy(dst[j:j+lanes], v[:])
	}
	for ; j < n; j++ {
		dst[j] = w.Eval(float32(i0+j) - pos)
	}
}
