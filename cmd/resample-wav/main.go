// Command resample-wav resamples WAV audio files to a target sample rate.
//
// Usage:
//
//	resample-wav -rate 48 input.wav output.wav
//	resample-wav -rate 16 -quality high a.wav a16.wav b.wav b16.wav
//	resample-wav -rate 48 -trim-start 1.5 -trim-length 10 input.wav clip.wav
//
// All input/output pairs are converted as one batch, concurrently.
// A file that fails does not stop the others.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"

	resampler "github.com/tphakala/go-sinc-resampler"
	"github.com/tphakala/go-sinc-resampler/internal/wavio"
)

const (
	// Conversion constants
	kHzToHz = 1000

	// CLI defaults
	defaultRateKHz  = 48.0
	minRequiredArgs = 2
)

func main() {
	if err := run(); err != nil {
		logrus.Fatal(err)
	}
}

func run() error {
	rateKHz := flag.Float64("rate", defaultRateKHz, "Target sample rate in kHz (e.g., 16, 32, 44.1, 48, 96)")
	quality := flag.String("quality", "high", "Quality preset (quick, low, medium, high, veryhigh) or a number in [0, 100]")
	envelope := flag.String("envelope", "hann", "Sinc envelope: hann, hamming, blackman, kaiser")
	edge := flag.String("edge", "truncate", "Edge handling: truncate, renormalize")
	workers := flag.Int("workers", 0, "Maximum files processed concurrently (0 = all)")
	simd := flag.Bool("simd", false, "Use SIMD accumulation for mono files")
	trimStart := flag.Float64("trim-start", 0, "Seconds to skip at the start of each input")
	trimLength := flag.Float64("trim-length", 0, "Seconds of input to keep after trim-start (0 = rest of file)")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	jobs, err := pairArgs(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] in.wav out.wav [in2.wav out2.wav ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -rate 48 input.wav output.wav      # Resample to 48kHz\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -rate 16 speech.wav speech_16k.wav # Downsample for speech\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -rate 96 a.wav a96.wav b.wav b96.wav # Two files in one batch\n", os.Args[0])
		return err
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	cfg, err := buildConfig(*quality, *envelope, *edge, *workers, *simd)
	if err != nil {
		return err
	}
	r, err := resampler.New(cfg)
	if err != nil {
		return err
	}

	targetRate := int(*rateKHz * kHzToHz)
	info := r.Info()
	logrus.WithFields(logrus.Fields{
		"files":    len(jobs),
		"rate":     targetRate,
		"quality":  info.Quality,
		"lobes":    info.Lobes,
		"envelope": info.Envelope,
		"edge":     info.EdgePolicy,
		"simd":     info.SIMDType,
	}).Debug("starting batch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	stats, err := resampleFiles(ctx, r, jobs, targetRate, *trimStart, *trimLength)
	elapsed := time.Since(start)

	for _, s := range stats {
		fmt.Printf("Resampled %s -> %s\n", filepath.Base(s.job.input), filepath.Base(s.job.output))
		fmt.Printf("  %d Hz -> %d Hz (%d channels, %d-bit)\n", s.inputRate, targetRate, s.channels, s.bitDepth)
		fmt.Printf("  %d frames -> %d frames\n", s.inputFrames, s.outputFrames)
	}
	if len(stats) > 0 {
		fmt.Printf("Duration: %.2fs\n", elapsed.Seconds())
	}

	return err
}

// fileStats summarizes one converted file.
type fileStats struct {
	job          job
	inputRate    int
	channels     int
	bitDepth     int
	inputFrames  int
	outputFrames int
}

// resampleFiles loads every input, converts them as one batch and writes
// the outputs of the items that succeeded.
func resampleFiles(ctx context.Context, r *resampler.Resampler, jobs []job, targetRate int, trimStart, trimLength float64) ([]fileStats, error) {
	var (
		errs    []error
		inputs  []*wavio.Audio
		pending []job
	)

	for _, j := range jobs {
		a, err := wavio.ReadFile(j.input)
		if err != nil {
			logrus.WithError(err).WithField("input", j.input).Warn("skipping input")
			errs = append(errs, err)
			continue
		}
		a, err = trimAudio(a, trimStart, trimLength)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", j.input, err))
			continue
		}
		logrus.WithFields(logrus.Fields{
			"input":    j.input,
			"rate":     a.SampleRate,
			"channels": a.Channels,
			"bits":     a.BitDepth,
			"frames":   a.Frames,
		}).Debug("loaded input")
		inputs = append(inputs, a)
		pending = append(pending, j)
	}

	src := make([]resampler.Signal, len(inputs))
	dst := make([][]float32, len(inputs))
	for i, a := range inputs {
		src[i] = resampler.Signal{
			Samples:  a.Samples,
			Length:   a.Frames,
			Channels: a.Channels,
			InRate:   float64(a.SampleRate),
			OutRate:  float64(targetRate),
		}
		dst[i] = make([]float32, outputSamples(a, targetRate))
	}

	res, err := r.Process(ctx, dst, src)
	if res == nil {
		return nil, err
	}

	var stats []fileStats
	for i, item := range res.Items {
		if item.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", pending[i].input, item.Err))
			continue
		}
		out := &wavio.Audio{
			Samples:    dst[i],
			Frames:     item.OutputLength,
			Channels:   item.Channels,
			SampleRate: targetRate,
			BitDepth:   inputs[i].BitDepth,
		}
		if err := wavio.WriteFile(pending[i].output, out); err != nil {
			errs = append(errs, err)
			continue
		}
		stats = append(stats, fileStats{
			job:          pending[i],
			inputRate:    inputs[i].SampleRate,
			channels:     item.Channels,
			bitDepth:     inputs[i].BitDepth,
			inputFrames:  inputs[i].Frames,
			outputFrames: item.OutputLength,
		})
	}

	return stats, errors.Join(errs...)
}
