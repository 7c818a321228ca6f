// Package mathutil provides the scalar math behind the windowed-sinc kernel:
// the normalized sinc, the window envelopes and the Bessel function used by
// the Kaiser envelope.
package mathutil

import (
	"math"
)

// BesselI0 computes the modified Bessel function of the first kind, order zero: I₀(x).
// It is the normalizer of the Kaiser envelope.
//
// The implementation uses Chebyshev polynomial approximations:
//   - For |x| < 3.75: direct polynomial series expansion
//   - For |x| ≥ 3.75: asymptotic expansion with exponential scaling
//
// Reference: Abramowitz & Stegun, "Handbook of Mathematical Functions"
func BesselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		// I₀(x) ≈ 1 + P(t) where t = (x/3.75)²
		t := x / besselSmallArgThreshold
		t *= t

		return 1.0 + t*(besselI0Coeff1+t*(besselI0Coeff2+t*(besselI0Coeff3+
			t*(besselI0Coeff4+t*(besselI0Coeff5+t*besselI0Coeff6)))))
	}

	// I₀(x) ≈ (eˣ / √x) * P(t) where t = 3.75/x
	t := besselSmallArgThreshold / ax

	result := besselI0AsympCoeff0 + t*(besselI0AsympCoeff1+t*(besselI0AsympCoeff2+
		t*(besselI0AsympCoeff3+t*(besselI0AsympCoeff4+t*(besselI0AsympCoeff5+
			t*(besselI0AsympCoeff6+t*(besselI0AsympCoeff7+t*besselI0AsympCoeff8)))))))

	return math.Exp(ax) * result / math.Sqrt(ax)
}

// KaiserBeta computes the Kaiser window β parameter from the desired
// stopband attenuation in decibels.
//
// Formula from Kaiser & Schafer:
//   - For att > 50 dB: β = 0.1102 * (att - 8.7)
//   - For 21 dB ≤ att ≤ 50 dB: β = 0.5842 * (att - 21)^0.4 + 0.07886 * (att - 21)
//   - For att < 21 dB: β = 0
func KaiserBeta(attenuation float64) float64 {
	if attenuation > kaiserAttHigh {
		return kaiserBetaHighCoeff1 * (attenuation - kaiserBetaHighOffset)
	} else if attenuation >= kaiserAttMedium {
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	}
	return 0.0
}

// KaiserAttenuation returns the stopband attenuation in dB that KaiserBeta
// maps to beta. Only the linear branch above 50 dB is inverted; smaller
// betas give an estimate.
func KaiserAttenuation(beta float64) float64 {
	if beta < kaiserBetaMinThreshold {
		return 0
	}
	return beta/kaiserBetaHighCoeff1 + kaiserBetaHighOffset
}
