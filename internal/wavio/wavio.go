// Package wavio reads and writes integer PCM WAV files as interleaved
// float32 samples normalized to [-1, 1].
package wavio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-sinc-resampler/internal/simdops"
)

var (
	// ErrInvalidFile is returned for input that is not a RIFF/WAVE file.
	ErrInvalidFile = errors.New("invalid WAV file")

	// ErrUnsupportedFormat is returned for bit depths other than 16, 24 and 32.
	ErrUnsupportedFormat = errors.New("unsupported WAV format")
)

// Audio is a decoded WAV file.
type Audio struct {
	// Samples holds Frames×Channels interleaved samples in [-1, 1].
	Samples    []float32
	Frames     int
	Channels   int
	SampleRate int
	BitDepth   int
}

// fullScale returns the largest sample value for the given bit depth.
func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16, nil
	case bitsPerSample24:
		return maxInt24, nil
	case bitsPerSample32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedFormat, bitDepth)
	}
}

// ReadFile opens and decodes a WAV file.
func ReadFile(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	a, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Decode reads a whole WAV stream.
func Decode(r io.ReadSeeker) (*Audio, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidFile
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	channels := int(decoder.NumChans)
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFile, channels)
	}

	if decoder.SampleRate == 0 {
		return nil, fmt.Errorf("%w: zero sample rate", ErrInvalidFile)
	}

	bitDepth := int(decoder.BitDepth)
	samples, err := ToFloat(buf, bitDepth)
	if err != nil {
		return nil, err
	}

	frames := len(samples) / channels
	return &Audio{
		Samples:    samples[:frames*channels],
		Frames:     frames,
		Channels:   channels,
		SampleRate: int(decoder.SampleRate),
		BitDepth:   bitDepth,
	}, nil
}

// ToFloat converts integer PCM to float32 scaled to [-1, 1].
func ToFloat(buf *audio.IntBuffer, bitDepth int) ([]float32, error) {
	maxVal, err := fullScale(bitDepth)
	if err != nil {
		return nil, err
	}

	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float32(v)
	}
	simdops.Float32Ops().Scale(out, out, float32(1/maxVal))
	return out, nil
}

// ToInt quantizes float samples to integer PCM at bitDepth, clamping to
// [-1, 1] first.
func ToInt(samples []float32, channels, sampleRate, bitDepth int) (*audio.IntBuffer, error) {
	maxVal, err := fullScale(bitDepth)
	if err != nil {
		return nil, err
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		v := min(max(float64(s), -1), 1)
		data[i] = int(v * maxVal)
	}

	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}, nil
}

// WriteFile encodes a to path at its own rate and bit depth.
func WriteFile(path string, a *Audio) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	w, err := NewWriter(f, a.SampleRate, a.BitDepth, a.Channels)
	if err != nil {
		return err
	}
	if err := w.Write(a.Samples[:a.Frames*a.Channels]); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return w.Close()
}
