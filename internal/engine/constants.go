package engine

// Block processing constants
const (
	// BlockSize is the number of output frames produced per block. The
	// source anchor is recomputed in float64 at every block start.
	BlockSize = 1024
)
