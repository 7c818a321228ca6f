package analysis

const (
	dbScale             = 20.0 // Amplitude ratio to dB
	hannGain            = 0.5  // Hann window: 0.5 * (1 - cos(2πn/N))
	hannCoherentInverse = 4.0  // 2 for the one-sided spectrum, 2 for Hann coherent gain
)
