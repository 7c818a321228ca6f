package resampler

import (
	"fmt"

	"github.com/tphakala/go-sinc-resampler/internal/mathutil"
)

// Envelope is the taper applied to the sinc. It is evaluated on the
// normalized kernel position y ∈ [-1, 1] and should be 1 at the center.
// The zero value selects Hann.
type Envelope struct {
	name string
	fn   mathutil.Envelope
}

// Built-in envelopes.
var (
	// HannEnvelope is the raised cosine 0.5·(1 + cos(πy)).
	HannEnvelope = Envelope{name: "hann", fn: mathutil.Hann}

	// HammingEnvelope is 0.54 + 0.46·cos(πy).
	HammingEnvelope = Envelope{name: "hamming", fn: mathutil.Hamming}

	// BlackmanEnvelope is the three-term Blackman window.
	BlackmanEnvelope = Envelope{name: "blackman", fn: mathutil.Blackman}
)

// KaiserEnvelope returns a Kaiser envelope with shape parameter beta.
// Larger beta trades a wider main lobe for lower sidelobes.
func KaiserEnvelope(beta float64) Envelope {
	return Envelope{name: fmt.Sprintf("kaiser(%g)", beta), fn: mathutil.Kaiser(beta)}
}

// KaiserEnvelopeForAttenuation returns the Kaiser envelope whose sidelobes
// sit roughly attenuation dB below the main lobe.
func KaiserEnvelopeForAttenuation(attenuation float64) Envelope {
	return KaiserEnvelope(mathutil.KaiserBeta(attenuation))
}

// CustomEnvelope wraps an arbitrary taper.
func CustomEnvelope(name string, fn func(y float64) float64) Envelope {
	return Envelope{name: name, fn: fn}
}

// Name returns the envelope name.
func (e Envelope) Name() string {
	if e.fn == nil {
		return HannEnvelope.name
	}
	return e.name
}

// ParseEnvelope maps a name to a built-in envelope. Kaiser is returned with
// the β for 80 dB of attenuation.
func ParseEnvelope(name string) (Envelope, bool) {
	switch name {
	case "hann", "":
		return HannEnvelope, true
	case "hamming":
		return HammingEnvelope, true
	case "blackman":
		return BlackmanEnvelope, true
	case "kaiser":
		return KaiserEnvelopeForAttenuation(defaultKaiserAttenuation), true
	default:
		return Envelope{}, false
	}
}
