package resampler

// Channel constants
const (
	stereoChannels = 2   // Stereo channel count (used by interleave functions)
	maxChannels    = 256 // Maximum supported channel count
)

// Quality range
const (
	minQuality = 0.0
	maxQuality = 100.0
)

// Quality preset values
const (
	quickQuality    = 0.0
	lowQuality      = 25.0
	mediumQuality   = 50.0
	highQuality     = 75.0
	veryHighQuality = 100.0
)

// Output size guard
const (
	maxOutputSamples = 1 << 40 // Largest frames·channels product accepted for one output
	maxAllocSamples  = 1 << 30 // Largest output ProcessSignal allocates itself
)

// Envelope defaults
const (
	defaultKaiserAttenuation = 80.0 // dB, used when "kaiser" is selected by name
)

// Error formatting
const (
	maxListedItemErrors = 8 // Item errors spelled out in a BatchError message
)
