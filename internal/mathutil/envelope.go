package mathutil

import "math"

// Envelope is a symmetric taper evaluated on the normalized position
// y ∈ [-1, 1]. It should be 1 at y = 0 and fall towards 0 at |y| = 1.
type Envelope func(y float64) float64

// Sinc computes the normalized sinc sin(πx)/(πx).
// Near zero it switches to the Taylor form 1 - (πx)²/6 to avoid 0/0.
func Sinc(x float64) float64 {
	x *= math.Pi
	if math.Abs(x) < sincTaylorThreshold {
		return 1 - x*x/sincTaylorDivisor
	}
	return math.Sin(x) / x
}

// Hann is the raised cosine 0.5 * (1 + cos(πy)).
func Hann(y float64) float64 {
	return hannHalf * (1 + math.Cos(y*math.Pi))
}

// Hamming is 0.54 + 0.46*cos(πy). It does not reach zero at the edges.
func Hamming(y float64) float64 {
	return hammingAlpha + hammingBeta*math.Cos(y*math.Pi)
}

// Blackman is the classic three-term Blackman window.
func Blackman(y float64) float64 {
	return blackmanA0 + blackmanA1*math.Cos(y*math.Pi) + blackmanA2*math.Cos(2*y*math.Pi)
}

// Kaiser returns a Kaiser envelope I₀(β√(1-y²)) / I₀(β).
// Positions outside [-1, 1] evaluate to 0.
func Kaiser(beta float64) Envelope {
	norm := 1 / BesselI0(beta)
	return func(y float64) float64 {
		r := 1 - y*y
		if r < 0 {
			return 0
		}
		return BesselI0(beta*math.Sqrt(r)) * norm
	}
}
