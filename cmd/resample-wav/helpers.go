package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	resampler "github.com/tphakala/go-sinc-resampler"
	"github.com/tphakala/go-sinc-resampler/internal/wavio"
)

var errUsage = errors.New("expected input/output file pairs")

// job is one input file and the path its conversion is written to.
type job struct {
	input  string
	output string
}

// pairArgs groups positional arguments into input/output pairs.
func pairArgs(args []string) ([]job, error) {
	if len(args) < minRequiredArgs || len(args)%2 != 0 {
		return nil, fmt.Errorf("%w, got %d arguments", errUsage, len(args))
	}
	jobs := make([]job, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		jobs = append(jobs, job{input: args[i], output: args[i+1]})
	}
	return jobs, nil
}

// parseQuality accepts a preset name or a numeric quality.
func parseQuality(q string) (float64, error) {
	if preset, ok := resampler.ParseQualityPreset(strings.ToLower(q)); ok {
		return resampler.PresetQuality(preset), nil
	}
	v, err := strconv.ParseFloat(q, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown quality %q", q)
	}
	return v, nil
}

// parseEdge maps an edge policy name to its value.
func parseEdge(name string) (resampler.EdgePolicy, error) {
	switch strings.ToLower(name) {
	case "truncate":
		return resampler.EdgeTruncate, nil
	case "renormalize":
		return resampler.EdgeRenormalize, nil
	default:
		return 0, fmt.Errorf("unknown edge policy %q", name)
	}
}

// buildConfig assembles a resampler configuration from flag values.
func buildConfig(quality, envelope, edge string, workers int, simd bool) (*resampler.Config, error) {
	q, err := parseQuality(quality)
	if err != nil {
		return nil, err
	}
	env, ok := resampler.ParseEnvelope(strings.ToLower(envelope))
	if !ok {
		return nil, fmt.Errorf("unknown envelope %q", envelope)
	}
	policy, err := parseEdge(edge)
	if err != nil {
		return nil, err
	}

	cfg := &resampler.Config{
		Quality:    q,
		Envelope:   env,
		MaxWorkers: workers,
		EdgePolicy: policy,
		EnableSIMD: simd,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// trimAudio keeps length seconds of a starting at start seconds. A zero
// length keeps the rest of the file. Requests past the end are clipped.
func trimAudio(a *wavio.Audio, start, length float64) (*wavio.Audio, error) {
	if start == 0 && length == 0 {
		return a, nil
	}
	if start < 0 || length < 0 {
		return nil, fmt.Errorf("trim values must not be negative: start=%v length=%v", start, length)
	}

	first := int(math.Round(start * float64(a.SampleRate)))
	frames := a.Frames - first
	if length > 0 {
		frames = int(math.Round(length * float64(a.SampleRate)))
	}
	if first >= a.Frames || frames <= 0 {
		return nil, fmt.Errorf("trim window starts past the end of %d frames", a.Frames)
	}

	dst := make([]float32, min(frames, a.Frames-first)*a.Channels)
	res, err := resampler.Slice(
		a.Samples, resampler.Descriptor{N: 1, NStride: len(a.Samples), HStride: a.Channels},
		[]resampler.Shape{{Frames: a.Frames, Channels: a.Channels}},
		dst, resampler.Descriptor{N: 1, NStride: len(dst), HStride: a.Channels},
		[]resampler.Region{{Frame: first, Frames: frames, Channels: a.Channels}},
		0, resampler.OutOfBoundsTrimToShape,
	)
	if err != nil {
		return nil, err
	}

	kept := res.Items[0].OutputLength
	return &wavio.Audio{
		Samples:    dst[:kept*a.Channels],
		Frames:     kept,
		Channels:   a.Channels,
		SampleRate: a.SampleRate,
		BitDepth:   a.BitDepth,
	}, nil
}

// outputSamples returns the destination size for converting a to rate.
func outputSamples(a *wavio.Audio, rate int) int {
	return resampler.OutputLength(a.Frames, float64(a.SampleRate), float64(rate)) * a.Channels
}
