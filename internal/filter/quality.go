package filter

import "math"

// LobesForQuality maps a quality value in [0, 100] to the number of sinc
// zero crossings kept on each side of the kernel center:
//
//	lobes = round(0.007·q² − 0.09·q + 3)
//
// The curve gives 3 lobes at q = 0, 16 at q = 50 and 64 at q = 100.
func LobesForQuality(quality float64) int {
	// each term rounded separately so the result does not depend on FMA
	square := float64(qualityQuadCoeff * quality * quality)
	linear := float64(qualityLinearCoeff * quality)
	return int(math.Round(square - linear + qualityConstant))
}

// LUTSize returns the lookup table length used for a given lobe count.
func LUTSize(lobes int) int {
	return lobes*lutDensity + 1
}
