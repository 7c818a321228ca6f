package resampler

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-sinc-resampler/internal/testutil"
)

func TestDescriptorView(t *testing.T) {
	buf := make([]float32, 20)
	d := Descriptor{N: 2, NStride: 10, HStride: 3}

	view, err := d.View(buf, 1, 3, 2)
	require.NoError(t, err)
	assert.Len(t, view, 2*3+2)
	assert.Equal(t, len(view), cap(view), "view is capped")

	view[0] = 9
	assert.InDelta(t, 9.0, buf[10], 0)

	empty, err := d.View(buf, 1, 0, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)

	tests := []struct {
		name                string
		i, frames, channels int
		want                error
	}{
		{"negative item", -1, 1, 1, ErrInvalidArgument},
		{"item past batch", 2, 1, 1, ErrInvalidArgument},
		{"channels wider than stride", 0, 1, 4, ErrInvalidArgument},
		{"zero channels", 0, 1, 0, ErrInvalidArgument},
		{"negative frames", 0, -1, 1, ErrInvalidArgument},
		{"past buffer end", 1, 4, 3, ErrBufferTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.View(buf, tt.i, tt.frames, tt.channels)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDescriptorViewHugeStrides(t *testing.T) {
	buf := make([]float32, 16)

	tests := []struct {
		name                string
		d                   Descriptor
		i, frames, channels int
	}{
		{"item stride wraps", Descriptor{N: 3, NStride: math.MaxInt/2 + 1, HStride: 1}, 2, 1, 1},
		{"item stride past end", Descriptor{N: 3, NStride: 9, HStride: 1}, 2, 0, 1},
		{"frame stride wraps", Descriptor{N: 1, NStride: 16, HStride: math.MaxInt/2 + 1}, 0, 3, 1},
		{"channels wider than buffer", Descriptor{N: 1, NStride: 16, HStride: math.MaxInt}, 0, 1, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				_, err := tt.d.View(buf, tt.i, tt.frames, tt.channels)
				require.ErrorIs(t, err, ErrBufferTooSmall)
			})
		})
	}
}

func TestDescriptorWritableView(t *testing.T) {
	buf := make([]float32, 20)

	view, err := Descriptor{N: 2, NStride: 10, HStride: 2}.WritableView(buf, 0, 5, 2)
	require.NoError(t, err)
	assert.Len(t, view, 10)

	_, err = Descriptor{N: 2, NStride: 10, HStride: 2}.WritableView(buf, 0, 6, 1)
	require.ErrorIs(t, err, ErrInvalidArgument, "11 elements reach item 1")

	_, err = Descriptor{N: 2, NStride: 0, HStride: 1}.WritableView(buf, 1, 4, 1)
	require.ErrorIs(t, err, ErrInvalidArgument, "items share one range")

	// a single item may use the whole buffer whatever its stride
	_, err = Descriptor{N: 1, NStride: 0, HStride: 1}.WritableView(buf, 0, 20, 1)
	require.NoError(t, err)
}

func TestDescriptorValidate(t *testing.T) {
	require.NoError(t, Descriptor{N: 0, NStride: 0, HStride: 1}.Validate())
	require.ErrorIs(t, Descriptor{N: -1, HStride: 1}.Validate(), ErrInvalidArgument)
	require.ErrorIs(t, Descriptor{N: 1, HStride: 0}.Validate(), ErrInvalidArgument)
	require.ErrorIs(t, Descriptor{N: 1, NStride: -4, HStride: 1}.Validate(), ErrInvalidArgument)
}

// packBatch lays signals out in one buffer at a fixed item stride and frame stride.
func packBatch(signals [][]float32, frames, channels []int, nStride, hStride int) []float32 {
	buf := make([]float32, nStride*len(signals))
	for i, s := range signals {
		for j := range frames[i] {
			copy(buf[i*nStride+j*hStride:], s[j*channels[i]:(j+1)*channels[i]])
		}
	}
	return buf
}

func TestProcessTensorMatchesProcess(t *testing.T) {
	r, _ := quietResampler(t, &Config{Quality: 50})

	frames := []int{500, 320}
	channels := []int{1, 2}
	inRate := []float64{44100, 16000}
	outRate := []float64{48000, 8000}
	signals := [][]float32{
		testutil.Sine(frames[0], channels[0], 440, inRate[0], 0.5),
		testutil.Sine(frames[1], channels[1], 1000, inRate[1], 0.5),
	}

	src := make([]Signal, 2)
	dst := make([][]float32, 2)
	for i := range src {
		src[i] = Signal{Samples: signals[i], Length: frames[i], Channels: channels[i], InRate: inRate[i], OutRate: outRate[i]}
		dst[i] = outputFor(src[i])
	}
	_, err := r.Process(context.Background(), dst, src)
	require.NoError(t, err)

	for _, hStride := range []int{2, 3} {
		srcDesc := Descriptor{N: 2, NStride: 1024 * hStride, HStride: hStride}
		dstDesc := Descriptor{N: 2, NStride: 1024 * hStride, HStride: hStride}
		flatSrc := packBatch(signals, frames, channels, srcDesc.NStride, hStride)
		flatDst := make([]float32, dstDesc.NStride*2)

		res, err := r.ProcessTensor(context.Background(), flatSrc, srcDesc, flatDst, dstDesc, inRate, outRate, frames, channels)
		require.NoError(t, err)

		for i := range src {
			n := res.Items[i].OutputLength
			require.Equal(t, OutputLength(frames[i], inRate[i], outRate[i]), n)
			view, err := dstDesc.View(flatDst, i, n, channels[i])
			require.NoError(t, err)
			for j := range n {
				got := view[j*hStride : j*hStride+channels[i]]
				assert.Equal(t, dst[i][j*channels[i]:(j+1)*channels[i]], got, "hStride %d item %d frame %d", hStride, i, j)
			}
		}
	}
}

func TestProcessTensorItemErrors(t *testing.T) {
	r, _ := quietResampler(t, nil)

	desc := Descriptor{N: 3, NStride: 100, HStride: 1}
	src := make([]float32, 300)
	copy(src, testutil.Ramp(300))
	dst := make([]float32, 250)

	res, err := r.ProcessTensor(context.Background(),
		src, desc, dst, desc,
		[]float64{1000, 1000, 0},
		[]float64{1000, 2000, 1000},
		[]int{100, 100, 10},
		[]int{1, 1, 1},
	)
	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, res.Failed())
	assert.NoError(t, res.Items[0].Err)
	assert.ErrorIs(t, res.Items[1].Err, ErrBufferTooSmall, "200 output frames do not fit the last item")
	assert.ErrorIs(t, res.Items[2].Err, ErrInvalidArgument)
	assert.Equal(t, src[:100], dst[:100])

	var itemErr *ItemError
	require.ErrorAs(t, res.Items[2].Err, &itemErr)
	assert.Equal(t, 2, itemErr.Index)
}

func TestProcessTensorOverlappingDestinations(t *testing.T) {
	r, _ := quietResampler(t, nil)

	ones := make([]float32, 50)
	minusOnes := make([]float32, 50)
	for i := range ones {
		ones[i], minusOnes[i] = 1, -1
	}
	src := append(append([]float32{}, ones...), minusOnes...)
	srcDesc := Descriptor{N: 2, NStride: 50, HStride: 1}
	dst := make([]float32, 200)
	for i := range dst {
		dst[i] = 7
	}

	// every item would write the same 100 elements
	res, err := r.ProcessTensor(context.Background(),
		src, srcDesc, dst, Descriptor{N: 2, NStride: 0, HStride: 1},
		[]float64{1000, 1000}, []float64{2000, 2000}, []int{50, 50}, []int{1, 1},
	)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, []int{0, 1}, res.Failed())
	for i, v := range dst {
		require.InDelta(t, 7.0, v, 0, "dst[%d] untouched", i)
	}

	// items 100 apart do not overlap
	res, err = r.ProcessTensor(context.Background(),
		src, srcDesc, dst, Descriptor{N: 2, NStride: 100, HStride: 1},
		[]float64{1000, 1000}, []float64{2000, 2000}, []int{50, 50}, []int{1, 1},
	)
	require.NoError(t, err)
	assert.Empty(t, res.Failed())
	assert.Positive(t, dst[50])
	assert.Negative(t, dst[150])
}

func TestProcessTensorRejectsInconsistentArrays(t *testing.T) {
	r, _ := quietResampler(t, nil)
	desc := Descriptor{N: 2, NStride: 10, HStride: 1}

	_, err := r.ProcessTensor(context.Background(), nil, desc, nil, desc,
		[]float64{1}, []float64{1, 2}, []int{1, 1}, []int{1, 1})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = r.ProcessTensor(context.Background(), nil, Descriptor{N: 1, HStride: 0}, nil, desc,
		nil, nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
}
