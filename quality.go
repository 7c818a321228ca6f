package resampler

import "github.com/tphakala/go-sinc-resampler/internal/filter"

// QualityPreset enumerates predefined quality levels.
type QualityPreset int

const (
	// QualityQuick uses the narrowest kernel (3 lobes). Fastest, with a wide
	// transition band; suitable for previews.
	QualityQuick QualityPreset = iota

	// QualityLow uses 5 lobes. Good for speech.
	QualityLow

	// QualityMedium uses 16 lobes. Suitable for most music.
	QualityMedium

	// QualityHigh uses 36 lobes.
	QualityHigh

	// QualityVeryHigh uses the widest kernel (64 lobes).
	QualityVeryHigh
)

// String returns the preset name.
func (p QualityPreset) String() string {
	switch p {
	case QualityQuick:
		return "quick"
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	case QualityVeryHigh:
		return "veryhigh"
	default:
		return "unknown"
	}
}

// PresetQuality returns the numeric quality of a preset. Unknown presets
// map to QualityMedium.
func PresetQuality(preset QualityPreset) float64 {
	switch preset {
	case QualityQuick:
		return quickQuality
	case QualityLow:
		return lowQuality
	case QualityMedium:
		return mediumQuality
	case QualityHigh:
		return highQuality
	case QualityVeryHigh:
		return veryHighQuality
	default:
		return mediumQuality
	}
}

// ParseQualityPreset maps a preset name to its value.
func ParseQualityPreset(name string) (QualityPreset, bool) {
	for p := QualityQuick; p <= QualityVeryHigh; p++ {
		if p.String() == name {
			return p, true
		}
	}
	return QualityMedium, false
}

// LobesForQuality returns the number of sinc lobes on each side of the
// kernel center for a quality value.
func LobesForQuality(quality float64) int {
	return filter.LobesForQuality(quality)
}

// LUTSize returns the kernel table length for a lobe count.
func LUTSize(lobes int) int {
	return filter.LUTSize(lobes)
}
