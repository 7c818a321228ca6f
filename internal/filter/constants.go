package filter

// Window table layout
const (
	minCoeffs    = 3   // Smallest table that still has a center and two neighbours
	guardEntries = 2   // Zero entries padding the table on both ends
	envelopeSpan = 2.0 // Envelope argument covers [-1, 1]
	lutDensity   = 64  // Table entries per lobe
	lanes        = 4   // Offsets evaluated per Eval4 call
)

// Quality to lobe count polynomial
const (
	qualityQuadCoeff   = 0.007
	qualityLinearCoeff = 0.09
	qualityConstant    = 3.0
)
