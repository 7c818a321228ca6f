// Package analysis measures resampling kernels and signals: kernel
// frequency response, DC gain per fractional phase and error metrics
// between signals.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-sinc-resampler/internal/filter"
)

// ErrLengthMismatch is returned when two signals that must be compared
// element-wise differ in length.
var ErrLengthMismatch = errors.New("signal lengths differ")

// Response holds the magnitude response of a kernel.
type Response struct {
	// Frequencies in cycles per input sample, from 0 up to the oversampled Nyquist.
	Frequencies []float64

	// Magnitude response at each frequency (linear scale, DC normalized to 1).
	Magnitude []float64
}

// KernelResponse evaluates w on a grid of oversample points per input
// sample, zero-pads it to size and returns its magnitude spectrum.
// size must be a power of two no smaller than the sampled kernel.
func KernelResponse(w *filter.Window, oversample, size int) (*Response, error) {
	if oversample <= 0 {
		return nil, fmt.Errorf("oversample must be positive, got %d", oversample)
	}
	taps := 2*w.Lobes*oversample + 1
	if size < taps {
		return nil, fmt.Errorf("FFT size %d smaller than kernel of %d taps", size, taps)
	}

	seq := make([]float64, size)
	half := w.Lobes * oversample
	for n := range taps {
		x := float32(n-half) / float32(oversample)
		seq[n] = float64(w.Eval(x))
	}

	fft := fourier.NewFFT(size)
	coeffs := fft.Coefficients(nil, seq)

	resp := &Response{
		Frequencies: make([]float64, len(coeffs)),
		Magnitude:   make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		resp.Frequencies[i] = fft.Freq(i) * float64(oversample)
		resp.Magnitude[i] = math.Hypot(real(c), imag(c))
	}

	if dc := resp.Magnitude[0]; dc > 0 {
		floats.Scale(1/dc, resp.Magnitude)
	}
	return resp, nil
}

// PeakAbove returns the largest magnitude, in dB, at frequencies at or above
// f (cycles per input sample). It returns -Inf when no bin qualifies.
func (r *Response) PeakAbove(f float64) float64 {
	peak := 0.0
	for i, freq := range r.Frequencies {
		if freq >= f {
			peak = math.Max(peak, r.Magnitude[i])
		}
	}
	return ToDB(peak)
}

// GainAt returns the magnitude, in dB, at the bin nearest f.
func (r *Response) GainAt(f float64) float64 {
	best := 0
	for i, freq := range r.Frequencies {
		if math.Abs(freq-f) < math.Abs(r.Frequencies[best]-f) {
			best = i
		}
	}
	return ToDB(r.Magnitude[best])
}

// ToDB converts a linear magnitude to decibels.
func ToDB(mag float64) float64 {
	if mag <= 0 {
		return math.Inf(-1)
	}
	return dbScale * math.Log10(mag)
}

// PhaseGains returns, for phases evenly spaced positions in [0, 1), the sum
// of the kernel weights applied to one output at that fractional position.
// An ideal interpolator gives exactly 1 at every phase.
func PhaseGains(w *filter.Window, phases int) []float64 {
	gains := make([]float64, phases)
	weights := make([]float32, w.Support())
	wide := make([]float64, w.Support())

	for p := range phases {
		pos := float32(p) / float32(phases)
		i0, i1 := w.InputRange(pos)
		n := i1 - i0 + 1
		w.Weights(weights[:n], i0, pos)
		for j := range n {
			wide[j] = float64(weights[j])
		}
		gains[p] = floats.Sum(wide[:n])
	}
	return gains
}

// Widen converts float32 samples to float64.
func Widen(s []float32) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}

// RMSError returns the root-mean-square difference between two signals.
func RMSError(ref, got []float64) (float64, error) {
	if len(ref) != len(got) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(ref), len(got))
	}
	if len(ref) == 0 {
		return 0, nil
	}
	return floats.Distance(ref, got, 2) / math.Sqrt(float64(len(ref))), nil
}

// MaxAbsError returns the largest absolute difference between two signals.
func MaxAbsError(ref, got []float64) (float64, error) {
	if len(ref) != len(got) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(ref), len(got))
	}
	if len(ref) == 0 {
		return 0, nil
	}
	return floats.Distance(ref, got, math.Inf(1)), nil
}

// SNR returns the ratio, in dB, of the reference power to the power of the
// difference between the signals.
func SNR(ref, got []float64) (float64, error) {
	noise, err := RMSError(ref, got)
	if err != nil {
		return 0, err
	}
	signal := floats.Norm(ref, 2) / math.Sqrt(float64(len(ref)))
	if noise == 0 {
		return math.Inf(1), nil
	}
	return dbScale * math.Log10(signal/noise), nil
}

// ToneAmplitude estimates the amplitude of a sinusoid at freq in x, sampled
// at rate, from the nearest FFT bin of a Hann-windowed copy.
func ToneAmplitude(x []float64, freq, rate float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	windowed := make([]float64, n)
	for i, v := range x {
		windowed[i] = v * hannGain * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, windowed)

	bin := int(math.Round(freq * float64(n) / rate))
	bin = min(max(bin, 0), len(coeffs)-1)
	c := coeffs[bin]
	// Hann coherent gain is 0.5
	return hannCoherentInverse * math.Hypot(real(c), imag(c)) / float64(n)
}
