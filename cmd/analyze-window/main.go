// Command analyze-window prints the lookup-table size, per-phase DC gain
// and frequency response of the interpolation kernel for a set of quality
// levels and envelopes.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-sinc-resampler/internal/analysis"
	"github.com/tphakala/go-sinc-resampler/internal/filter"
	"github.com/tphakala/go-sinc-resampler/internal/mathutil"
)

const (
	defaultPhases     = 64   // Fractional positions sampled for DC gain
	defaultOversample = 16   // Kernel samples per input frame for the FFT
	fftPadding        = 4    // FFT size relative to the sampled kernel
	passbandEdge      = 0.45 // Cycles per input frame
	kaiserAttenuation = 80.0 // dB, for the named "kaiser" envelope
)

func main() {
	qualities := flag.String("qualities", "0,25,50,75,100", "Comma-separated quality values")
	envelopes := flag.String("envelopes", "hann,hamming,blackman,kaiser", "Comma-separated envelope names (kaiser:<beta> for a specific Kaiser shape)")
	phases := flag.Int("phases", defaultPhases, "Fractional positions sampled for DC gain")
	oversample := flag.Int("oversample", defaultOversample, "Kernel samples per input frame for the FFT")
	flag.Parse()

	qs, err := parseQualities(*qualities)
	if err != nil {
		logrus.Fatal(err)
	}

	fmt.Println("=== Analyzing Interpolation Kernels ===")
	fmt.Printf("%-11s %7s %5s %6s %12s %12s %10s %12s %10s\n",
		"envelope", "quality", "lobes", "lut", "dc min", "dc max", "gain@0.45", "stopband", "design")

	for _, name := range strings.Split(*envelopes, ",") {
		name = strings.TrimSpace(name)
		env, design, ok := envelopeByName(name)
		if !ok {
			logrus.WithField("envelope", name).Warn("unknown envelope, skipping")
			continue
		}
		for _, q := range qs {
			if err := analyze(os.Stdout, name, env, design, q, *phases, *oversample); err != nil {
				logrus.WithError(err).WithField("quality", q).Error("analysis failed")
			}
		}
	}
}

// analyze prints one table row. design is the nominal sidelobe attenuation
// of the envelope in dB, NaN when it has none.
func analyze(out *os.File, name string, env mathutil.Envelope, design, quality float64, phases, oversample int) error {
	w, err := filter.NewForQuality(quality, env)
	if err != nil {
		return err
	}

	gains := analysis.PhaseGains(w, phases)

	size := 1
	for size < fftPadding*(2*w.Lobes*oversample+1) {
		size <<= 1
	}
	resp, err := analysis.KernelResponse(w, oversample, size)
	if err != nil {
		return err
	}

	// the envelope's main lobe widens the cutoff by about one lobe spacing
	stopband := 0.5 + 1/float64(w.Lobes)

	designCol := "-"
	if !math.IsNaN(design) {
		designCol = fmt.Sprintf("%.1f dB", design)
	}

	_, err = fmt.Fprintf(out, "%-11s %7g %5d %6d %12.8f %12.8f %9.4f %9.1f dB %10s\n",
		name, quality, w.Lobes, w.Coeffs,
		floats.Min(gains), floats.Max(gains),
		resp.GainAt(passbandEdge), resp.PeakAbove(stopband), designCol)
	return err
}

func parseQualities(s string) ([]float64, error) {
	var qs []float64
	for _, field := range strings.Split(s, ",") {
		q, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quality %q: %w", field, err)
		}
		qs = append(qs, q)
	}
	return qs, nil
}

// envelopeByName resolves an envelope and, for Kaiser shapes, the sidelobe
// attenuation its beta is designed for.
func envelopeByName(name string) (env mathutil.Envelope, design float64, ok bool) {
	switch name {
	case "hann":
		return mathutil.Hann, math.NaN(), true
	case "hamming":
		return mathutil.Hamming, math.NaN(), true
	case "blackman":
		return mathutil.Blackman, math.NaN(), true
	case "kaiser":
		return kaiserByBeta(mathutil.KaiserBeta(kaiserAttenuation))
	}

	if arg, found := strings.CutPrefix(name, "kaiser:"); found {
		beta, err := strconv.ParseFloat(arg, 64)
		if err != nil || beta < 0 {
			return nil, 0, false
		}
		return kaiserByBeta(beta)
	}
	return nil, 0, false
}

func kaiserByBeta(beta float64) (mathutil.Envelope, float64, bool) {
	return mathutil.Kaiser(beta), mathutil.KaiserAttenuation(beta), true
}
