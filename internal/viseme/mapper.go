// Package viseme maps audio amplitude to a mouth-opening level under a
// configurable sync profile. Two rules are provided: a discrete bucketed
// MouthState kept for telemetry and simpler renderers, and the continuous
// open factor the frame compositor consumes.
package viseme

import (
	"errors"
	"math"
)

// ErrUnknownProfile is returned when a profile string is not one of the
// supported values.
var ErrUnknownProfile = errors.New("viseme: unknown sync profile")

// Profile names a multiplier controlling how strongly the mouth reacts to
// audio amplitude. Immutable configuration, not derived at runtime.
type Profile string

const (
	ProfileDefault     Profile = "default"
	ProfileSubtle      Profile = "subtle"
	ProfileExaggerated Profile = "exaggerated"
	ProfileRealistic   Profile = "realistic"
)

// ParseProfile validates a profile string from config or the CLI.
func ParseProfile(s string) (Profile, error) {
	switch Profile(s) {
	case ProfileDefault, ProfileSubtle, ProfileExaggerated, ProfileRealistic:
		return Profile(s), nil
	case "":
		return ProfileDefault, nil
	}
	return "", ErrUnknownProfile
}

// Intensity returns the profile's amplitude multiplier. Ordering is strict:
// subtle < default < realistic < exaggerated.
func (p Profile) Intensity() float64 {
	switch p {
	case ProfileSubtle:
		return 0.5
	case ProfileExaggerated:
		return 2.0
	case ProfileRealistic:
		return 1.2
	default:
		return 1.0
	}
}

// MouthState is the bucketed mouth-opening level.
type MouthState int

const (
	MouthClosed MouthState = iota
	MouthSlightly
	MouthMedium
	MouthWide
)

// String implements fmt.Stringer for telemetry and logging.
func (m MouthState) String() string {
	switch m {
	case MouthClosed:
		return "closed"
	case MouthSlightly:
		return "slightly"
	case MouthMedium:
		return "medium"
	case MouthWide:
		return "wide"
	}
	return "unknown"
}

// Offset returns the fixed vertical-offset weight carried by each state,
// used only by the bucketed rendering variant.
func (m MouthState) Offset() float64 {
	switch m {
	case MouthSlightly:
		return 0.25
	case MouthMedium:
		return 0.6
	case MouthWide:
		return 1.0
	}
	return 0
}

// Bucket thresholds on the normalized (unscaled) amplitude. These are the
// original 0-255 thresholds 40/100/160 normalized to [0,1].
const (
	thresholdSlightly = 40.0 / 255.0
	thresholdMedium   = 100.0 / 255.0
	thresholdWide     = 160.0 / 255.0
)

// normalize boosts a raw mean-magnitude amplitude into [0,1]. Speech energy
// averages are small; the ×5 gain restores a usable dynamic range.
func normalize(amplitude float64) float64 {
	v := amplitude * 5
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// EffectiveAmplitude is the normalized amplitude scaled by the profile's
// intensity. Monotonic non-decreasing in amplitude for a fixed profile.
func EffectiveAmplitude(amplitude float64, p Profile) float64 {
	return normalize(amplitude) * p.Intensity()
}

// State applies the bucketed rule. Thresholds are compared against the
// normalized amplitude before profile scaling, so all profiles agree on the
// bucket and differ only in rendered intensity.
func State(amplitude float64) MouthState {
	v := normalize(amplitude)
	switch {
	case v < thresholdSlightly:
		return MouthClosed
	case v < thresholdMedium:
		return MouthSlightly
	case v < thresholdWide:
		return MouthMedium
	}
	return MouthWide
}

// OpenFactor applies the continuous rule: sin(effective × π) × 0.7. The sine
// shape opens the mouth fastest through mid-range amplitudes and eases out
// toward the extremes.
func OpenFactor(amplitude float64, p Profile) float64 {
	return math.Sin(EffectiveAmplitude(amplitude, p)*math.Pi) * 0.7
}
