package light

import "fmt"

// Value ranges accepted by the light.
const (
	MinBrightness = 0
	MaxBrightness = 100

	MinKelvin = 2900
	MaxKelvin = 7000

	// DefaultBrightness and DefaultKelvin are used by "on" without flags.
	DefaultBrightness = 10
	DefaultKelvin     = 3000

	// MaxBrightnessDelta bounds a relative brightness change in either direction.
	MaxBrightnessDelta = 100

	miredScale = 1_000_000
)

// State is the controllable state of a single light.
type State struct {
	On         bool
	Brightness int // percent, 0..100
	Mireds     int // colour temperature in the device's native scale
}

// Kelvin returns the colour temperature in Kelvin, or 0 when unknown.
func (s State) Kelvin() int {
	return MiredsToKelvin(s.Mireds)
}

// KelvinToMireds converts Kelvin to mireds (1,000,000 / K, truncated).
func KelvinToMireds(kelvin int) int {
	if kelvin <= 0 {
		return 0
	}
	return miredScale / kelvin
}

// MiredsToKelvin converts mireds to Kelvin (1,000,000 / mireds, truncated).
func MiredsToKelvin(mireds int) int {
	if mireds <= 0 {
		return 0
	}
	return miredScale / mireds
}

// ClampBrightness saturates b into 0..100.
func ClampBrightness(b int) int {
	return min(max(b, MinBrightness), MaxBrightness)
}

// ValidateBrightness checks an absolute brightness.
func ValidateBrightness(b int) error {
	if b < MinBrightness || b > MaxBrightness {
		return fmt.Errorf("%w: brightness must be between %d and %d, got %d", ErrOutOfRange, MinBrightness, MaxBrightness, b)
	}
	return nil
}

// ValidateBrightnessDelta checks a relative brightness change.
func ValidateBrightnessDelta(d int) error {
	if d < -MaxBrightnessDelta || d > MaxBrightnessDelta {
		return fmt.Errorf("%w: brightness change must be between %d and %d, got %d", ErrOutOfRange, -MaxBrightnessDelta, MaxBrightnessDelta, d)
	}
	return nil
}

// ValidateKelvin checks a colour temperature.
func ValidateKelvin(k int) error {
	if k < MinKelvin || k > MaxKelvin {
		return fmt.Errorf("%w: temperature must be between %d and %d, got %d", ErrOutOfRange, MinKelvin, MaxKelvin, k)
	}
	return nil
}
