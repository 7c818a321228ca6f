package wavio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-sinc-resampler/internal/testutil"
)

func TestWriteReadRoundTrip(t *testing.T) {
	for _, bitDepth := range []int{16, 24, 32} {
		t.Run(fmt.Sprintf("%dbit", bitDepth), func(t *testing.T) {
			in := &Audio{
				Samples:    testutil.Sine(480, 2, 1000, 48000, 0.5),
				Frames:     480,
				Channels:   2,
				SampleRate: 48000,
				BitDepth:   bitDepth,
			}
			path := filepath.Join(t.TempDir(), "tone.wav")
			require.NoError(t, WriteFile(path, in))

			out, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, 480, out.Frames)
			assert.Equal(t, 2, out.Channels)
			assert.Equal(t, 48000, out.SampleRate)
			assert.Equal(t, bitDepth, out.BitDepth)

			maxVal, err := fullScale(bitDepth)
			require.NoError(t, err)
			testutil.AssertSlicesInDelta(t, in.Samples, out.Samples, 2/maxVal+1e-6)
		})
	}
}

func TestWriterHeaderSizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	w, err := NewWriter(f, 16000, 16, 1)
	require.NoError(t, err)
	require.NoError(t, w.Write([]float32{0, 0.5, -0.5, 1}))
	require.NoError(t, w.WriteInts([]int{100}))
	assert.Equal(t, 5, w.Frames())
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, wavHeaderSize+10)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, []byte{46, 0, 0, 0}, data[4:8], "RIFF size is file size - 8")
	assert.Equal(t, []byte{10, 0, 0, 0}, data[40:44], "data size")

	a, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, a.Frames)
	assert.InDelta(t, 0.5, a.Samples[1], 1e-4)
	assert.InDelta(t, 100/maxInt16, a.Samples[4], 1e-6)
}

func TestToIntClamps(t *testing.T) {
	buf, err := ToInt([]float32{2, -2, 0.5}, 1, 8000, 16)
	require.NoError(t, err)
	assert.Equal(t, []int{32767, -32767, 16383}, buf.Data)
	assert.Equal(t, 16, buf.SourceBitDepth)
	assert.Equal(t, 8000, buf.Format.SampleRate)
}

func TestToFloat(t *testing.T) {
	out, err := ToFloat(&audio.IntBuffer{Data: []int{0, 8388607, -8388607}}, 24)
	require.NoError(t, err)
	testutil.AssertSlicesInDelta(t, []float32{0, 1, -1}, out, 1e-7)
}

func TestUnsupportedFormats(t *testing.T) {
	_, err := ToInt([]float32{0}, 1, 8000, 12)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ToFloat(&audio.IntBuffer{Data: []int{0}}, 8)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	f, err := os.Create(filepath.Join(t.TempDir(), "x.wav"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	_, err = NewWriter(f, 8000, 20, 1)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = NewWriter(f, 8000, 16, 0)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not a wav file at all, just text")))
	require.ErrorIs(t, err, ErrInvalidFile)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
}
