package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-sinc-resampler/internal/filter"
	"github.com/tphakala/go-sinc-resampler/internal/testutil"
)

const (
	testQuality    = 50.0
	rateCD         = 44100.0
	rateDAT        = 48000.0
	testToneFreq   = 1000.0
	referenceDelta = 1e-5
)

func newTestConvolver(t testing.TB, quality float64, opts Options) *Convolver {
	t.Helper()
	w, err := filter.NewForQuality(quality, nil)
	require.NoError(t, err)
	c, err := NewConvolver(w, opts)
	require.NoError(t, err)
	return c
}

func process(t *testing.T, c *Convolver, src []float32, length, channels int, inRate, outRate float64) []float32 {
	t.Helper()
	dst := make([]float32, OutputLength(length, inRate, outRate)*channels)
	n, err := c.Process(context.Background(), dst, src, length, channels, inRate, outRate)
	require.NoError(t, err)
	require.Equal(t, OutputLength(length, inRate, outRate), n)
	return dst
}

// referenceResample evaluates every output directly from Window.Eval with
// float64 accumulation, following the same block anchoring as Process.
func referenceResample(w *filter.Window, src []float32, length, channels int, inRate, outRate float64) []float64 {
	outEnd := OutputLength(length, inRate, outRate)
	out := make([]float64, outEnd*channels)
	scale := inRate / outRate

	for outBlock := 0; outBlock < outEnd; outBlock += BlockSize {
		raw := float64(outBlock) * scale
		anchor := int(math.Floor(raw))
		pos := float32(raw - float64(anchor))
		for j := outBlock; j < min(outBlock+BlockSize, outEnd); j++ {
			i0, i1 := w.InputRange(pos)
			i0 = max(i0, -anchor)
			i1 = min(i1, length-1-anchor)
			for k := i0; k <= i1; k++ {
				weight := float64(w.Eval(float32(k) - pos))
				for ch := range channels {
					out[j*channels+ch] += float64(src[(anchor+k)*channels+ch]) * weight
				}
			}
			pos += float32(scale)
		}
	}
	return out
}

func TestOutputLength(t *testing.T) {
	tests := []struct {
		name            string
		length          int
		inRate, outRate float64
		expected        int
	}{
		{"CD to DAT", 100, rateCD, rateDAT, 109},
		{"Exact halving", 8, 8000, 4000, 4},
		{"Triple", 5, 1, 3, 15},
		{"Single frame downsample", 1, 48000, 8000, 1},
		{"Equal rates", 1234, rateDAT, rateDAT, 1234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OutputLength(tt.length, tt.inRate, tt.outRate))
		})
	}
}

// TestProcess_HalvingPicksEvenSamples covers exact 2:1 decimation: every
// kernel argument is an integer, where the windowed sinc is one at zero and
// vanishes elsewhere, so the output is every other input sample.
func TestProcess_HalvingPicksEvenSamples(t *testing.T) {
	c := newTestConvolver(t, testQuality, Options{})
	src := testutil.Ramp(8)

	dst := process(t, c, src, 8, 1, 8000, 4000)

	testutil.AssertSlicesInDelta(t, []float32{1, 3, 5, 7}, dst, referenceDelta)
}

func TestProcess_UnitRatioReproducesInput(t *testing.T) {
	c := newTestConvolver(t, testQuality, Options{})
	src := testutil.Sine(300, 2, testToneFreq, rateDAT, 0.8)

	dst := process(t, c, src, 300, 2, rateDAT, rateDAT)

	testutil.AssertSlicesInDelta(t, src, dst, referenceDelta)
}

func TestProcess_MatchesReference(t *testing.T) {
	tests := []struct {
		name            string
		quality         float64
		frames          int
		channels        int
		inRate, outRate float64
	}{
		{"Upsample mono multi-block", 50, 3000, 1, rateCD, rateDAT},
		{"Downsample stereo", 50, 2500, 2, rateDAT, rateCD},
		{"Upsample 3x quick", 0, 700, 1, 16000, 48000},
		{"Downsample 6ch high", 75, 1500, 6, 96000, rateCD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConvolver(t, tt.quality, Options{})
			src := testutil.Sine(tt.frames, tt.channels, 3*testToneFreq, tt.inRate, 0.9)

			dst := process(t, c, src, tt.frames, tt.channels, tt.inRate, tt.outRate)
			ref := referenceResample(c.Window(), src, tt.frames, tt.channels, tt.inRate, tt.outRate)

			require.Len(t, dst, len(ref))
			for i := range ref {
				require.InDelta(t, ref[i], dst[i], referenceDelta, "sample %d", i)
			}
			testutil.AssertNoNaNOrInf(t, dst)
		})
	}
}

func TestProcess_ToneSurvivesUpsampling(t *testing.T) {
	const (
		inRate  = 16000.0
		outRate = 48000.0
		frames  = 1600
	)
	c := newTestConvolver(t, testQuality, Options{})
	src := testutil.Sine(frames, 1, testToneFreq, inRate, 1)

	dst := process(t, c, src, frames, 1, inRate, outRate)

	// away from the edges the output is the same tone sampled at 48 kHz
	margin := 3 * c.Window().Lobes * int(outRate/inRate)
	for i := margin; i < len(dst)-margin; i++ {
		expected := math.Sin(2 * math.Pi * testToneFreq * float64(i) / outRate)
		require.InDelta(t, expected, dst[i], 1e-2, "sample %d", i)
	}
}

// TestProcess_ChannelIsolation scales one channel by powers of two; the
// arithmetic is then exact, so each channel must come out exactly scaled.
func TestProcess_ChannelIsolation(t *testing.T) {
	const frames = 1200
	base := testutil.Sine(frames, 1, 440, rateCD, 0.7)
	src := make([]float32, frames*3)
	for i, v := range base {
		src[i*3] = v
		src[i*3+1] = 2 * v
		src[i*3+2] = -0.5 * v
	}

	c := newTestConvolver(t, testQuality, Options{})
	dst := process(t, c, src, frames, 3, rateCD, rateDAT)

	for i := 0; i < len(dst); i += 3 {
		require.Equal(t, 2*dst[i], dst[i+1], "frame %d", i/3)
		require.Equal(t, -0.5*dst[i], dst[i+2], "frame %d", i/3)
	}
}

func TestProcess_TinySignals(t *testing.T) {
	c := newTestConvolver(t, 100, Options{})

	dst := process(t, c, []float32{0.25}, 1, 1, 48000, 8000)
	assert.Equal(t, []float32{0.25}, dst)

	dst = process(t, c, []float32{1, -1}, 2, 1, 8000, 32000)
	assert.Len(t, dst, 8)
	testutil.AssertNoNaNOrInf(t, dst)
	assert.Equal(t, float32(1), dst[0])
}

func TestProcess_EdgeModes(t *testing.T) {
	const frames = 200
	ones := make([]float32, frames)
	for i := range ones {
		ones[i] = 1
	}

	truncated := process(t, newTestConvolver(t, testQuality, Options{}), ones, frames, 1, rateCD, rateDAT)
	var maxDev float64
	for _, v := range truncated[:10] {
		maxDev = math.Max(maxDev, math.Abs(float64(v)-1))
	}
	assert.Greater(t, maxDev, 1e-2, "truncated edges should sag or overshoot")

	renorm := process(t, newTestConvolver(t, testQuality, Options{Edge: EdgeRenormalize}), ones, frames, 1, rateCD, rateDAT)
	for i, v := range renorm {
		assert.InDelta(t, 1, v, 1e-2, "sample %d", i)
	}
}

func TestProcess_SIMDMonoCloseToScalar(t *testing.T) {
	const frames = 2200
	src := testutil.Sine(frames, 1, testToneFreq, rateCD, 0.9)

	scalar := process(t, newTestConvolver(t, testQuality, Options{}), src, frames, 1, rateCD, rateDAT)
	simd := process(t, newTestConvolver(t, testQuality, Options{UseSIMD: true}), src, frames, 1, rateCD, rateDAT)

	testutil.AssertSlicesInDelta(t, scalar, simd, referenceDelta)
}

func TestProcess_ReusedConvolverIsDeterministic(t *testing.T) {
	c := newTestConvolver(t, testQuality, Options{})
	stereo := testutil.Sine(500, 2, testToneFreq, rateCD, 0.5)
	mono := testutil.Sine(900, 1, testToneFreq, rateDAT, 0.5)

	first := process(t, c, stereo, 500, 2, rateCD, rateDAT)
	_ = process(t, c, mono, 900, 1, rateDAT, rateCD)
	second := process(t, c, stereo, 500, 2, rateCD, rateDAT)

	assert.Equal(t, first, second)
	stats := c.Statistics()
	assert.Equal(t, int64(1900), stats["samplesIn"])
}

func TestProcess_Errors(t *testing.T) {
	c := newTestConvolver(t, 0, Options{})
	ctx := context.Background()
	src := make([]float32, 10)
	dst := make([]float32, 20)

	tests := []struct {
		name            string
		dst, src        []float32
		length, ch      int
		inRate, outRate float64
		want            error
	}{
		{"Zero length", dst, src, 0, 1, 1, 2, ErrInvalidInput},
		{"Zero channels", dst, src, 10, 0, 1, 2, ErrInvalidInput},
		{"Zero rate", dst, src, 10, 1, 0, 2, ErrInvalidInput},
		{"NaN rate", dst, src, 10, 1, math.NaN(), 2, ErrInvalidInput},
		{"Infinite rate", dst, src, 10, 1, 1, math.Inf(1), ErrInvalidInput},
		{"Short source", dst, src, 11, 1, 1, 1, ErrShortBuffer},
		{"Short destination", dst, src, 10, 1, 1, 3, ErrShortBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Process(ctx, tt.dst, tt.src, tt.length, tt.ch, tt.inRate, tt.outRate)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewConvolver_Invalid(t *testing.T) {
	_, err := NewConvolver(nil, Options{})
	require.ErrorIs(t, err, ErrInvalidInput)

	w, err := filter.NewForQuality(0, nil)
	require.NoError(t, err)
	_, err = NewConvolver(w, Options{Edge: EdgeMode(7)})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "EdgeMode(7)", EdgeMode(7).String())
}

// cancelAfter reports cancellation once Err has been polled n times.
type cancelAfter struct {
	context.Context
	n int
}

func (c *cancelAfter) Err() error {
	if c.n <= 0 {
		return context.Canceled
	}
	c.n--
	return nil
}

func TestProcess_CancelledBetweenBlocks(t *testing.T) {
	const frames = 3 * BlockSize
	c := newTestConvolver(t, 0, Options{})
	src := testutil.Sine(frames, 1, testToneFreq, rateDAT, 1)
	dst := make([]float32, frames)

	n, err := c.Process(&cancelAfter{Context: context.Background(), n: 1}, dst, src, frames, 1, rateDAT, rateDAT)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, BlockSize, n, "one block completes before cancellation is seen")
	assert.Zero(t, dst[BlockSize], "later blocks are not written")
}

func TestProcess_CancelledUpFront(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestConvolver(t, 0, Options{})

	n, err := c.Process(ctx, make([]float32, 4), []float32{1, 2}, 2, 1, 1, 2)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func BenchmarkProcess_StereoCDtoDAT(b *testing.B) {
	const frames = 44100
	c := newTestConvolver(b, testQuality, Options{})
	src := testutil.Sine(frames, 2, testToneFreq, rateCD, 0.5)
	dst := make([]float32, OutputLength(frames, rateCD, rateDAT)*2)
	ctx := context.Background()

	b.ReportAllocs()
	for b.Loop() {
		_, _ = c.Process(ctx, dst, src, frames, 2, rateCD, rateDAT)
	}
}

func BenchmarkProcess_MonoSIMD(b *testing.B) {
	const frames = 44100
	c := newTestConvolver(b, testQuality, Options{UseSIMD: true})
	src := testutil.Sine(frames, 1, testToneFreq, rateCD, 0.5)
	dst := make([]float32, OutputLength(frames, rateCD, rateDAT))
	ctx := context.Background()

	b.ReportAllocs()
	for b.Loop() {
		_, _ = c.Process(ctx, dst, src, frames, 1, rateCD, rateDAT)
	}
}
