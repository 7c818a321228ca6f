package wavio

const (
	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Full-scale values per bit depth
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// WAV format constants
	wavHeaderSize      = 44 // Total WAV header size in bytes
	wavRiffHeaderSize  = 36 // RIFF header size (file size - 8 = riffHeaderSize + dataSize)
	wavPCMSubchunkSize = 16 // fmt subchunk size for PCM format
	wavPCMFormat       = 1  // AudioFormat tag for integer PCM
	wavFileSizeOffset  = 4  // Byte offset for file size field in header
	wavDataSizeOffset  = 40 // Byte offset for data size field in header

	// Byte sizes for PCM sample formats
	bytesPerSample16 = 2
	bytesPerSample24 = 3
	bytesPerSample32 = 4
	bitsPerByte      = 8

	// Bit shift amounts for 24-bit sample encoding
	bitShift8  = 8
	bitShift16 = 16

	// I/O buffer sizes
	writerBufferSize = 256 * 1024 // 256KB write buffer
	uint32Size       = 4
)
