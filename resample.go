package resampler

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/tphakala/go-sinc-resampler/internal/engine"
	"github.com/tphakala/go-sinc-resampler/internal/filter"
	"github.com/tphakala/simd/cpu"
)

// Common errors returned by the resampler.
var (
	// ErrInvalidArgument indicates a signal with a non-positive length,
	// channel count or rate, or mismatched batch arrays.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBufferTooSmall indicates a source or destination buffer shorter
	// than the signal it has to hold.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrUnsupportedQuality indicates a quality outside [0, 100] or one that
	// maps to no usable kernel.
	ErrUnsupportedQuality = errors.New("unsupported quality")

	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid resampler configuration")
)

// Signal is one interleaved multi-channel signal and the rate conversion to
// apply to it. Samples are sample-major: frame i of channel c lives at
// Samples[i*Channels+c]. The caller owns Samples; the resampler only reads it.
type Signal struct {
	Samples  []float32
	Length   int // frames
	Channels int
	InRate   float64
	OutRate  float64
}

// EdgePolicy selects how outputs whose kernel extends past either end of
// the signal are weighted.
type EdgePolicy int

const (
	// EdgeTruncate drops out-of-range taps and keeps the other weights as is.
	EdgeTruncate EdgePolicy = iota

	// EdgeRenormalize rescales truncated outputs by the sum of the kept
	// weights, so DC level is preserved up to the signal boundaries.
	EdgeRenormalize
)

// String returns the policy name.
func (p EdgePolicy) String() string {
	switch p {
	case EdgeTruncate:
		return "truncate"
	case EdgeRenormalize:
		return "renormalize"
	default:
		return fmt.Sprintf("EdgePolicy(%d)", int(p))
	}
}

func (p EdgePolicy) engineMode() engine.EdgeMode {
	if p == EdgeRenormalize {
		return engine.EdgeRenormalize
	}
	return engine.EdgeTruncate
}

// Config holds resampling configuration shared by every item of a batch.
type Config struct {
	// Quality in [0, 100] sets the kernel width. Higher values use more
	// sinc lobes: 3 at 0, 16 at 50, 64 at 100. See PresetQuality.
	Quality float64

	// Envelope tapers the sinc. The zero value selects Hann.
	Envelope Envelope

	// MaxWorkers caps the number of items processed concurrently.
	// Zero runs every item of a batch at once.
	MaxWorkers int

	// EdgePolicy controls boundary handling. The default truncates.
	EdgePolicy EdgePolicy

	// EnableSIMD accumulates mono signals with SIMD dot products when
	// available. Results then differ from the scalar path by float32
	// rounding. Multi-channel signals always use the scalar path.
	EnableSIMD bool

	// Logger receives per-item diagnostics. Nil uses logrus' standard logger.
	Logger logrus.FieldLogger
}

// DefaultConfig returns the configuration used by the one-shot helpers:
// medium quality, Hann envelope, truncated edges, unbounded workers.
func DefaultConfig() *Config {
	return &Config{
		Quality: PresetQuality(QualityMedium),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validateQuality(c.Quality); err != nil {
		return err
	}

	if c.MaxWorkers < 0 {
		return fmt.Errorf("%w: max workers must not be negative", ErrInvalidConfig)
	}

	if c.EdgePolicy != EdgeTruncate && c.EdgePolicy != EdgeRenormalize {
		return fmt.Errorf("%w: unknown edge policy %d", ErrInvalidConfig, int(c.EdgePolicy))
	}

	if c.Envelope.fn == nil && c.Envelope.name != "" {
		return fmt.Errorf("%w: envelope %q has no function", ErrInvalidConfig, c.Envelope.name)
	}

	return nil
}

// validateQuality accepts finite qualities in [0, 100] that map to at
// least one lobe.
func validateQuality(q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return fmt.Errorf("%w: quality must be finite, got %v", ErrUnsupportedQuality, q)
	}
	if q < minQuality || q > maxQuality {
		return fmt.Errorf("%w: quality %v outside [%v, %v]", ErrUnsupportedQuality, q, minQuality, maxQuality)
	}
	if lobes := filter.LobesForQuality(q); lobes <= 0 {
		return fmt.Errorf("%w: quality %v yields %d lobes", ErrUnsupportedQuality, q, lobes)
	}
	return nil
}

// Resampler converts batches of signals with one shared configuration.
// It holds no per-batch state and is safe for concurrent use.
type Resampler struct {
	config Config
	lobes  int
	logger logrus.FieldLogger
}

// New creates a resampler with the specified configuration.
// A nil config uses DefaultConfig.
func New(config *Config) (*Resampler, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := *config
	if cfg.Envelope.fn == nil {
		cfg.Envelope = HannEnvelope
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Resampler{
		config: cfg,
		lobes:  filter.LobesForQuality(cfg.Quality),
		logger: logger,
	}, nil
}

// Config returns a copy of the resampler configuration.
func (r *Resampler) Config() Config {
	return r.config
}

// Info returns information about the resampler implementation.
type Info struct {
	// Quality is the configured quality in [0, 100].
	Quality float64

	// Lobes is the number of sinc zero crossings on each side of the kernel.
	Lobes int

	// LUTSize is the number of sampled kernel coefficients.
	LUTSize int

	// Support is the maximum number of input frames read per output frame.
	Support int

	// Envelope names the sinc taper.
	Envelope string

	// EdgePolicy names the boundary handling.
	EdgePolicy string

	// MaxWorkers is the concurrency cap; 0 means one worker per item.
	MaxWorkers int

	// SIMDEnabled indicates if SIMD accumulation is requested.
	SIMDEnabled bool

	// SIMDType describes the SIMD instruction set detected on this CPU.
	SIMDType string
}

// Info reports the kernel and runtime parameters of r.
func (r *Resampler) Info() Info {
	return Info{
		Quality:     r.config.Quality,
		Lobes:       r.lobes,
		LUTSize:     filter.LUTSize(r.lobes),
		Support:     2*r.lobes + 1,
		Envelope:    r.config.Envelope.Name(),
		EdgePolicy:  r.config.EdgePolicy.String(),
		MaxWorkers:  r.config.MaxWorkers,
		SIMDEnabled: r.config.EnableSIMD,
		SIMDType:    cpu.Info(),
	}
}

// OutputLength returns the number of frames produced when resampling
// length frames from inRate to outRate: ceil(length·outRate/inRate).
// The product is evaluated in float64.
func OutputLength(length int, inRate, outRate float64) int {
	return engine.OutputLength(length, inRate, outRate)
}
