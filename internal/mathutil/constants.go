package mathutil

// Bessel function approximation constants
// These constants are Chebyshev polynomial coefficients from
// Abramowitz & Stegun, "Handbook of Mathematical Functions"

const (
	besselSmallArgThreshold = 3.75 // |x| threshold between series and asymptotic forms
	kaiserBetaMinThreshold  = 0.1  // Minimum β for attenuation calculation
)

// Chebyshev coefficients for I₀(x) small argument approximation
const (
	besselI0Coeff1 = 3.5156229
	besselI0Coeff2 = 3.0899424
	besselI0Coeff3 = 1.2067492
	besselI0Coeff4 = 0.2659732
	besselI0Coeff5 = 0.360768e-1
	besselI0Coeff6 = 0.45813e-2
)

// Chebyshev coefficients for I₀(x) large argument approximation
const (
	besselI0AsympCoeff0 = 0.39894228
	besselI0AsympCoeff1 = 0.1328592e-1
	besselI0AsympCoeff2 = 0.225319e-2
	besselI0AsympCoeff3 = -0.157565e-2
	besselI0AsympCoeff4 = 0.916281e-2
	besselI0AsympCoeff5 = -0.2057706e-1
	besselI0AsympCoeff6 = 0.2635537e-1
	besselI0AsympCoeff7 = -0.1647633e-1
	besselI0AsympCoeff8 = 0.392377e-2
)

// Kaiser window formula constants
// From Kaiser & Schafer's empirical formulas
const (
	kaiserAttHigh   = 50.0 // High attenuation threshold (dB)
	kaiserAttMedium = 21.0 // Medium attenuation threshold (dB)

	kaiserBetaHighCoeff1 = 0.1102 // Coefficient for high attenuation
	kaiserBetaHighOffset = 8.7    // Offset for high attenuation

	kaiserBetaMediumCoeff1 = 0.5842  // Primary coefficient for medium attenuation
	kaiserBetaMediumPower  = 0.4     // Power for medium attenuation formula
	kaiserBetaMediumCoeff2 = 0.07886 // Secondary coefficient for medium attenuation
)

// Sinc and envelope constants
const (
	sincTaylorThreshold = 1e-5 // |πx| below which sinc uses its Taylor expansion
	sincTaylorDivisor   = 6.0  // sin(t)/t ≈ 1 - t²/6

	hannHalf = 0.5 // Hann: 0.5 * (1 + cos(πy))

	hammingAlpha = 0.54 // Hamming: 0.54 + 0.46*cos(πy)
	hammingBeta  = 0.46

	blackmanA0 = 0.42 // Blackman: 0.42 + 0.5*cos(πy) + 0.08*cos(2πy)
	blackmanA1 = 0.5
	blackmanA2 = 0.08
)
