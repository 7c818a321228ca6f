package resampler

import (
	"context"
	"fmt"

	"github.com/tphakala/go-sinc-resampler/internal/simdops"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateSpeech is the speech recognition common sample rate.
	RateSpeech = 22050
)

// NewPreset creates a resampler using a quality preset and otherwise
// default settings.
func NewPreset(quality QualityPreset) (*Resampler, error) {
	cfg := DefaultConfig()
	cfg.Quality = PresetQuality(quality)
	return New(cfg)
}

// ResampleInterleaved is a convenience function for one-shot resampling of
// one interleaved signal.
func ResampleInterleaved(samples []float32, channels int, inputRate, outputRate float64, quality QualityPreset) ([]float32, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channels must be positive, got %d", ErrInvalidArgument, channels)
	}
	r, err := NewPreset(quality)
	if err != nil {
		return nil, err
	}
	return r.ProcessSignal(context.Background(), Signal{
		Samples:  samples,
		Length:   len(samples) / channels,
		Channels: channels,
		InRate:   inputRate,
		OutRate:  outputRate,
	})
}

// ResampleMono is a convenience function for one-shot mono resampling.
func ResampleMono(input []float32, inputRate, outputRate float64, quality QualityPreset) ([]float32, error) {
	return ResampleInterleaved(input, 1, inputRate, outputRate, quality)
}

// ResampleStereo is a convenience function for one-shot stereo resampling
// of planar channels. Both channels are truncated to the shorter one.
func ResampleStereo(left, right []float32, inputRate, outputRate float64, quality QualityPreset) (leftOut, rightOut []float32, err error) {
	out, err := ResampleInterleaved(InterleaveStereo(left, right), stereoChannels, inputRate, outputRate, quality)
	if err != nil {
		return nil, nil, err
	}
	leftOut, rightOut = DeinterleaveStereo(out)
	return leftOut, rightOut, nil
}

// InterleaveStereo converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func InterleaveStereo(left, right []float32) []float32 {
	n := min(len(left), len(right))
	result := make([]float32, n*stereoChannels)
	simdops.Float32Ops().Interleave2(result, left[:n], right[:n])
	return result
}

// DeinterleaveStereo converts interleaved stereo to two mono channels.
// Input format: [L0, R0, L1, R1, L2, R2, ...]
func DeinterleaveStereo(interleaved []float32) (left, right []float32) {
	numSamples := len(interleaved) / stereoChannels
	left = make([]float32, numSamples)
	right = make([]float32, numSamples)
	for i := range numSamples {
		left[i] = interleaved[i*stereoChannels]
		right[i] = interleaved[i*stereoChannels+1]
	}
	return left, right
}
