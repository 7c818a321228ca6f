// Package resampler provides batch sample-rate conversion of multi-channel
// float32 audio using windowed-sinc interpolation, in pure Go.
//
// A batch is any number of independent interleaved signals, each with its
// own length, channel count and input/output rates. Items are converted
// concurrently; each one samples its own kernel table and writes only its
// own destination.
//
// # Features
//
//   - Windowed-sinc interpolation from a 64-entries-per-lobe lookup table
//   - Quality from 0 to 100 mapped to 3..64 sinc lobes, with named presets
//   - Pluggable envelopes: Hann (default), Hamming, Blackman, Kaiser or custom
//   - Concurrent batch processing with a bounded worker count
//   - Per-item errors: one bad signal never stops the rest of the batch
//   - Cancellation through context.Context, checked between output blocks
//   - Flat-buffer batches addressed through strided descriptors
//   - Optional SIMD accumulation via github.com/tphakala/simd
//
// # Quick Start
//
// For a single signal:
//
//	out, err := resampler.ResampleMono(input, 44100, 48000, resampler.QualityHigh)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For a batch with a reusable resampler:
//
//	r, err := resampler.New(&resampler.Config{Quality: 75, MaxWorkers: 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	src := []resampler.Signal{
//	    {Samples: speech, Length: len(speech), Channels: 1, InRate: 16000, OutRate: 48000},
//	    {Samples: music, Length: len(music) / 2, Channels: 2, InRate: 44100, OutRate: 48000},
//	}
//	dst := make([][]float32, len(src))
//	for i, s := range src {
//	    dst[i] = make([]float32, resampler.OutputLength(s.Length, s.InRate, s.OutRate)*s.Channels)
//	}
//
//	res, err := r.Process(ctx, dst, src)
//	if err != nil {
//	    // res.Failed() lists the items that did not run; the others are valid
//	}
//
// # Algorithm
//
// Each output frame at position t (in input frames) is
//
//	y[t] = Σ x[k] · sinc(k − t) · envelope((k − t) / lobes)
//
// over the integer k within lobes of t that fall inside the signal. The
// kernel is read from a table with linear interpolation between entries.
// Output is produced in blocks of 1024 frames; each block recomputes its
// source anchor in float64, so the float32 position used inside a block
// never accumulates error across blocks.
//
// Kernel taps that fall outside the signal are dropped. [EdgeRenormalize]
// rescales those outputs by the weights that remain.
//
// Resampling between different rates does not pre-filter for downsampling;
// the kernel bandwidth is always the input Nyquist frequency.
//
// # Errors
//
// [Resampler.Process] validates every item before touching its
// destination. Failures are reported per item in [BatchResult] and
// aggregated in a [*BatchError], which supports errors.Is against
// [ErrInvalidArgument], [ErrBufferTooSmall] and [ErrUnsupportedQuality].
//
// # Thread Safety
//
// A [Resampler] holds only its configuration and is safe for concurrent use.
package resampler
