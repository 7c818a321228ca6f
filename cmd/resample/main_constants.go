package main

// Default command-line flag values
const (
	defaultInputRate  = 44100.0 // CD quality sample rate
	defaultOutputRate = 48000.0 // DAT/DVD sample rate
	defaultChannels   = 2       // Stereo
	defaultItems      = 4       // Signals per batch
)

// Test signal parameters
const (
	testSignalFrequency = 1000.0 // 1 kHz test tone
	testSignalSeconds   = 1.0    // Default test signal length
	testSignalAmplitude = 0.5
	edgeMarginFraction  = 0.1 // Share of the signal ignored at each end by error metrics
)

// Demo sample rates for testing
const (
	sampleRateVoIP  = 16000.0 // Wideband speech
	sampleRateCD    = 44100.0 // CD quality
	sampleRateDAT   = 48000.0 // DAT/DVD
	sampleRate2xCD  = 88200.0 // 2x CD
	sampleRateHiRes = 96000.0 // Hi-res audio
)

// Demo channel configurations
const (
	monoChannels   = 1
	stereoChannels = 2
	surround5_1    = 6
	surround7_1    = 8
)
