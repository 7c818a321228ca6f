// Command resample converts synthetic test signals in one batch and reports
// the round-trip error of each item.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	resampler "github.com/tphakala/go-sinc-resampler"
	"github.com/tphakala/go-sinc-resampler/internal/analysis"
)

func main() {
	var (
		inputRate  = flag.Float64("input-rate", defaultInputRate, "Input sample rate in Hz")
		outputRate = flag.Float64("output-rate", defaultOutputRate, "Output sample rate in Hz")
		channels   = flag.Int("channels", defaultChannels, "Number of audio channels")
		items      = flag.Int("items", defaultItems, "Number of signals in the batch")
		quality    = flag.String("quality", "high", "Quality preset: quick, low, medium, high, veryhigh")
		workers    = flag.Int("workers", 0, "Maximum concurrent items (0 = all)")
		demo       = flag.Bool("demo", false, "Run a demonstration")
		verbose    = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *demo {
		runDemo()
		return
	}

	preset, ok := resampler.ParseQualityPreset(*quality)
	if !ok {
		logrus.Fatalf("unknown quality preset %q", *quality)
	}

	r, err := resampler.New(&resampler.Config{
		Quality:    resampler.PresetQuality(preset),
		MaxWorkers: *workers,
		EnableSIMD: true,
	})
	if err != nil {
		logrus.Fatalf("Failed to create resampler: %v", err)
	}

	info := r.Info()
	fmt.Printf("Resampler created:\n")
	fmt.Printf("  Quality: %g (%s)\n", info.Quality, preset)
	fmt.Printf("  Lobes: %d, table: %d entries, support: %d frames\n", info.Lobes, info.LUTSize, info.Support)
	fmt.Printf("  Envelope: %s, edges: %s\n", info.Envelope, info.EdgePolicy)
	fmt.Printf("  SIMD: %v (%s)\n", info.SIMDEnabled, info.SIMDType)

	frames := int(*inputRate * testSignalSeconds)
	src := make([]resampler.Signal, *items)
	for i := range src {
		src[i] = resampler.Signal{
			Samples:  generateTestSignal(frames, *channels, testSignalFrequency*float64(i+1), *inputRate),
			Length:   frames,
			Channels: *channels,
			InRate:   *inputRate,
			OutRate:  *outputRate,
		}
	}

	fmt.Printf("\nProcessing %d items of %d frames x %d channels...\n", *items, frames, *channels)
	start := time.Now()
	forward, err := process(r, src)
	if err != nil {
		logrus.Fatalf("Processing failed: %v", err)
	}
	elapsed := time.Since(start)

	back := make([]resampler.Signal, len(forward))
	for i, out := range forward {
		back[i] = resampler.Signal{
			Samples:  out,
			Length:   len(out) / *channels,
			Channels: *channels,
			InRate:   *outputRate,
			OutRate:  *inputRate,
		}
	}
	restored, err := process(r, back)
	if err != nil {
		logrus.Fatalf("Processing failed: %v", err)
	}

	for i := range src {
		fmt.Printf("  item %d: %.0f Hz tone, %d -> %d frames, round-trip SNR %.1f dB\n",
			i, testSignalFrequency*float64(i+1), frames, len(forward[i]) / *channels,
			roundTripSNR(src[i].Samples, restored[i]))
	}
	fmt.Printf("Forward pass: %v (%.1fx realtime)\n", elapsed,
		float64(*items)*testSignalSeconds/elapsed.Seconds())
}

// process runs one batch and returns each item's output trimmed to its length.
func process(r *resampler.Resampler, src []resampler.Signal) ([][]float32, error) {
	dst := make([][]float32, len(src))
	for i, s := range src {
		dst[i] = make([]float32, resampler.OutputLength(s.Length, s.InRate, s.OutRate)*s.Channels)
	}
	res, err := r.Process(context.Background(), dst, src)
	if err != nil {
		return nil, err
	}
	for i, item := range res.Items {
		dst[i] = dst[i][:item.OutputLength*item.Channels]
	}
	return dst, nil
}

// roundTripSNR compares a signal with its restored copy away from the edges.
func roundTripSNR(ref, got []float32) float64 {
	n := min(len(ref), len(got))
	margin := int(float64(n) * edgeMarginFraction)
	snr, err := analysis.SNR(analysis.Widen(ref[margin:n-margin]), analysis.Widen(got[margin:n-margin]))
	if err != nil {
		return math.NaN()
	}
	return snr
}

// generateTestSignal returns an interleaved sine with each channel phase-shifted.
func generateTestSignal(frames, channels int, frequency, sampleRate float64) []float32 {
	signal := make([]float32, frames*channels)
	omega := 2 * math.Pi * frequency / sampleRate

	for i := range frames {
		for ch := range channels {
			phase := float64(ch) * math.Pi / 4
			signal[i*channels+ch] = float32(testSignalAmplitude * math.Sin(omega*float64(i)+phase))
		}
	}

	return signal
}

func runDemo() {
	fmt.Println("=== Go Sinc Resampler Demo ===")

	fmt.Println("1. Comparing Quality Levels")
	fmt.Println("----------------------------")

	testRatios := []struct {
		from, to float64
		name     string
	}{
		{sampleRateCD, sampleRateDAT, "CD to DAT"},
		{sampleRateDAT, sampleRateCD, "DAT to CD"},
		{sampleRateCD, sampleRate2xCD, "CD to 2x"},
		{sampleRateVoIP, sampleRateHiRes, "VoIP to hi-res"},
	}

	qualities := []resampler.QualityPreset{
		resampler.QualityQuick,
		resampler.QualityMedium,
		resampler.QualityHigh,
		resampler.QualityVeryHigh,
	}

	for _, ratio := range testRatios {
		fmt.Printf("\n%s (%.0f Hz -> %.0f Hz, ratio: %.4f):\n",
			ratio.name, ratio.from, ratio.to, ratio.to/ratio.from)

		frames := int(ratio.from * testSignalSeconds)
		tone := generateTestSignal(frames, monoChannels, testSignalFrequency, ratio.from)

		for _, q := range qualities {
			r, err := resampler.NewPreset(q)
			if err != nil {
				fmt.Printf("  %s: Error - %v\n", q, err)
				continue
			}

			fwd, err := process(r, []resampler.Signal{{Samples: tone, Length: frames, Channels: monoChannels, InRate: ratio.from, OutRate: ratio.to}})
			if err != nil {
				fmt.Printf("  %s: Error - %v\n", q, err)
				continue
			}
			back, err := process(r, []resampler.Signal{{Samples: fwd[0], Length: len(fwd[0]), Channels: monoChannels, InRate: ratio.to, OutRate: ratio.from}})
			if err != nil {
				fmt.Printf("  %s: Error - %v\n", q, err)
				continue
			}

			fmt.Printf("  %-8s %2d lobes, round-trip SNR %.1f dB\n",
				q, r.Info().Lobes, roundTripSNR(tone, back[0]))
		}
	}

	fmt.Println("\n2. Multi-channel Batch")
	fmt.Println("----------------------")

	channelCounts := []int{monoChannels, stereoChannels, surround5_1, surround7_1}
	frames := int(sampleRateDAT * testSignalSeconds)
	src := make([]resampler.Signal, len(channelCounts))
	for i, ch := range channelCounts {
		src[i] = resampler.Signal{
			Samples:  generateTestSignal(frames, ch, testSignalFrequency, sampleRateDAT),
			Length:   frames,
			Channels: ch,
			InRate:   sampleRateDAT,
			OutRate:  sampleRateCD,
		}
	}

	r, err := resampler.NewPreset(resampler.QualityHigh)
	if err != nil {
		fmt.Printf("  Error - %v\n", err)
		return
	}
	start := time.Now()
	out, err := process(r, src)
	if err != nil {
		fmt.Printf("  Error - %v\n", err)
		return
	}
	for i, ch := range channelCounts {
		fmt.Printf("  %d channels: %d -> %d frames\n", ch, frames, len(out[i])/ch)
	}
	fmt.Printf("  batch of %d items in %v\n", len(src), time.Since(start))

	fmt.Println("\n=== Demo Complete ===")
}
