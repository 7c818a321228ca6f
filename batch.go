package resampler

import (
	"context"
	"fmt"
	"math"

	"github.com/remeh/sizedwaitgroup"
	"github.com/sirupsen/logrus"
	"github.com/tphakala/go-sinc-resampler/internal/engine"
	"github.com/tphakala/go-sinc-resampler/internal/filter"
)

// Process resamples every signal in src into the matching destination in
// dst. Items run concurrently and independently: each builds its own
// kernel and convolver and writes only its own destination.
//
// dst[i] must hold at least OutputLength(src[i].Length, src[i].InRate,
// src[i].OutRate)·src[i].Channels samples. Items that fail validation are
// reported in the result and leave their destination untouched; the other
// items still run. An item interrupted by ctx has the part of its
// destination it may have written zeroed.
//
// The returned result is always non-nil when len(dst) == len(src). The
// error is nil when every item succeeded and a *BatchError otherwise.
func (r *Resampler) Process(ctx context.Context, dst [][]float32, src []Signal) (*BatchResult, error) {
	if len(dst) != len(src) {
		return nil, fmt.Errorf("%w: %d destinations for %d signals", ErrInvalidArgument, len(dst), len(src))
	}

	result := &BatchResult{Items: make([]ItemResult, len(src))}
	if len(src) == 0 {
		return result, nil
	}

	workers := len(src)
	if r.config.MaxWorkers > 0 && r.config.MaxWorkers < workers {
		workers = r.config.MaxWorkers
	}

	swg := sizedwaitgroup.New(workers)
	for i := range src {
		if err := swg.AddWithContext(ctx); err != nil {
			// items not yet admitted never start
			for j := i; j < len(src); j++ {
				result.Items[j] = ItemResult{Index: j, Err: &ItemError{Index: j, Err: err}}
			}
			break
		}
		go func() {
			defer swg.Done()
			result.Items[i] = r.processItem(ctx, i, dst[i], src[i])
		}()
	}
	swg.Wait()

	err := result.Err()
	r.logger.WithFields(logrus.Fields{
		"items":   len(src),
		"workers": workers,
		"failed":  len(result.Failed()),
	}).Debug("batch complete")

	return result, err
}

// processItem validates and runs one batch item.
func (r *Resampler) processItem(ctx context.Context, index int, dst []float32, sig Signal) ItemResult {
	log := r.logger.WithFields(logrus.Fields{
		"item":     index,
		"inRate":   sig.InRate,
		"outRate":  sig.OutRate,
		"length":   sig.Length,
		"channels": sig.Channels,
	})

	fail := func(err error) ItemResult {
		log.WithError(err).Warn("batch item failed")
		return ItemResult{Index: index, Err: &ItemError{Index: index, Err: err}}
	}

	if err := r.validateItem(dst, sig); err != nil {
		return fail(err)
	}

	samples := sig.Length * sig.Channels
	if sig.InRate == sig.OutRate {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		copy(dst[:samples], sig.Samples[:samples])
		log.Debug("rates match, copied input")
		return ItemResult{Index: index, OutputLength: sig.Length, Channels: sig.Channels, FastPath: true}
	}

	window, err := filter.NewForQuality(r.config.Quality, r.config.Envelope.fn)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrUnsupportedQuality, err))
	}
	conv, err := engine.NewConvolver(window, engine.Options{
		Edge:    r.config.EdgePolicy.engineMode(),
		UseSIMD: r.config.EnableSIMD,
	})
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	outLen := OutputLength(sig.Length, sig.InRate, sig.OutRate)
	log.WithFields(logrus.Fields{
		"lobes":     window.Lobes,
		"outLength": outLen,
	}).Debug("resampling batch item")

	n, err := conv.Process(ctx, dst, sig.Samples, sig.Length, sig.Channels, sig.InRate, sig.OutRate)
	if err != nil {
		clear(dst[:outLen*sig.Channels])
		if ctx.Err() != nil {
			return fail(err)
		}
		return fail(fmt.Errorf("%w: %w", ErrInvalidArgument, err))
	}

	stats := conv.Statistics()
	log.WithFields(logrus.Fields{
		"framesIn":  stats["samplesIn"],
		"framesOut": stats["samplesOut"],
	}).Debug("batch item done")

	return ItemResult{Index: index, OutputLength: n, Channels: sig.Channels}
}

// validateItem checks one item against its destination before any sample
// is written.
func (r *Resampler) validateItem(dst []float32, sig Signal) error {
	if sig.Length <= 0 {
		return fmt.Errorf("%w: length must be positive, got %d", ErrInvalidArgument, sig.Length)
	}
	if sig.Channels <= 0 || sig.Channels > maxChannels {
		return fmt.Errorf("%w: channels must be in [1, %d], got %d", ErrInvalidArgument, maxChannels, sig.Channels)
	}
	if !validRate(sig.InRate) || !validRate(sig.OutRate) {
		return fmt.Errorf("%w: rates must be positive and finite, got in=%v out=%v", ErrInvalidArgument, sig.InRate, sig.OutRate)
	}

	outFrames := float64(sig.Length) * sig.OutRate / sig.InRate
	if outFrames*float64(sig.Channels) > maxOutputSamples {
		return fmt.Errorf("%w: output of %.0f frames is too large", ErrInvalidArgument, outFrames)
	}

	if need := sig.Length * sig.Channels; len(sig.Samples) < need {
		return fmt.Errorf("%w: source has %d samples, need %d", ErrBufferTooSmall, len(sig.Samples), need)
	}
	if need := OutputLength(sig.Length, sig.InRate, sig.OutRate) * sig.Channels; len(dst) < need {
		return fmt.Errorf("%w: destination has %d samples, need %d", ErrBufferTooSmall, len(dst), need)
	}

	return validateQuality(r.config.Quality)
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0)
}

// ProcessSignal resamples a single signal into a newly allocated buffer.
// Outputs larger than 2^30 samples are refused with ErrInvalidArgument
// rather than allocated; use Process with a caller-owned buffer for those.
func (r *Resampler) ProcessSignal(ctx context.Context, sig Signal) ([]float32, error) {
	// invalid signals get an empty buffer and are rejected by Process
	n := 0
	if sig.Length > 0 && sig.Channels > 0 && validRate(sig.InRate) && validRate(sig.OutRate) {
		samples := float64(sig.Length) * sig.OutRate / sig.InRate * float64(sig.Channels)
		if samples > maxAllocSamples {
			return nil, fmt.Errorf("%w: output of %.0f samples exceeds the %d a single allocation may hold",
				ErrInvalidArgument, samples, maxAllocSamples)
		}
		n = OutputLength(sig.Length, sig.InRate, sig.OutRate) * sig.Channels
	}

	out := make([]float32, n)
	res, err := r.Process(ctx, [][]float32{out}, []Signal{sig})
	if err != nil {
		return nil, res.Items[0].Err
	}
	return out[:res.Items[0].OutputLength*sig.Channels], nil
}

// Resample is a one-shot batch conversion with the default configuration
// at the given quality.
func Resample(ctx context.Context, dst [][]float32, src []Signal, quality float64) (*BatchResult, error) {
	cfg := DefaultConfig()
	cfg.Quality = quality
	r, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return r.Process(ctx, dst, src)
}
