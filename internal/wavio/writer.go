package wavio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Writer writes PCM data directly without per-sample allocations.
// The header is written with placeholder sizes and patched by Close.
type Writer struct {
	w          *bufio.Writer
	ws         io.WriteSeeker
	sampleRate int
	bitDepth   int
	channels   int
	dataSize   uint32
	byteBuf    []byte // Reused encoding buffer
}

// NewWriter writes a WAV header to ws and returns a writer for its samples.
func NewWriter(ws io.WriteSeeker, sampleRate, bitDepth, channels int) (*Writer, error) {
	if _, err := fullScale(bitDepth); err != nil {
		return nil, err
	}
	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, channels, sampleRate)
	}

	w := &Writer{
		w:          bufio.NewWriterSize(ws, writerBufferSize),
		ws:         ws,
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
		channels:   channels,
	}

	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	byteRate := w.sampleRate * w.channels * (w.bitDepth / bitsPerByte)
	blockAlign := w.channels * (w.bitDepth / bitsPerByte)

	header := make([]byte, wavHeaderSize)

	// RIFF header
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 0) // Placeholder for file size - 8
	copy(header[8:12], "WAVE")

	// fmt subchunk
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavPCMSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], wavPCMFormat)
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(w.bitDepth))

	// data subchunk
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], 0) // Placeholder for data size

	_, err := w.w.Write(header)
	return err
}

// Write quantizes interleaved float samples and appends them.
func (w *Writer) Write(samples []float32) error {
	buf, err := ToInt(samples, w.channels, w.sampleRate, w.bitDepth)
	if err != nil {
		return err
	}
	return w.WriteInts(buf.Data)
}

// WriteInts appends integer PCM samples at the writer's bit depth.
func (w *Writer) WriteInts(samples []int) error {
	width := w.bitDepth / bitsPerByte
	needed := len(samples) * width
	if len(w.byteBuf) < needed {
		w.byteBuf = make([]byte, needed)
	}
	buf := w.byteBuf[:needed]

	switch w.bitDepth {
	case bitsPerSample16:
		for i, s := range samples {
			binary.LittleEndian.PutUint16(buf[i*bytesPerSample16:], uint16(int16(s)))
		}
	case bitsPerSample24:
		for i, s := range samples {
			buf[i*bytesPerSample24] = byte(s)
			buf[i*bytesPerSample24+1] = byte(s >> bitShift8)
			buf[i*bytesPerSample24+2] = byte(s >> bitShift16)
		}
	case bitsPerSample32:
		for i, s := range samples {
			binary.LittleEndian.PutUint32(buf[i*bytesPerSample32:], uint32(int32(s)))
		}
	}

	written, err := w.w.Write(buf)
	w.dataSize += uint32(written)
	return err
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int {
	return int(w.dataSize) / (w.channels * w.bitDepth / bitsPerByte)
}

// Close flushes buffered data and patches the header sizes. It does not
// close the underlying stream.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}

	sizeBytes := make([]byte, uint32Size)

	// file size at offset 4 is total size - 8
	if _, err := w.ws.Seek(wavFileSizeOffset, io.SeekStart); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(sizeBytes, wavRiffHeaderSize+w.dataSize)
	if _, err := w.ws.Write(sizeBytes); err != nil {
		return err
	}

	if _, err := w.ws.Seek(wavDataSizeOffset, io.SeekStart); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(sizeBytes, w.dataSize)
	if _, err := w.ws.Write(sizeBytes); err != nil {
		return err
	}

	_, err := w.ws.Seek(0, io.SeekEnd)
	return err
}
