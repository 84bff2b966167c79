package shaper

import "github.com/printmetrics/resotune/pkg/spectral"

// Backend abstracts the host firmware's shaper evaluation capability. The
// host integration layer resolves the right implementation once at startup
// and injects it; analysis code never probes the host at runtime.
type Backend interface {
	// FindBestShaper evaluates the shaper catalog against the measured
	// frequency response.
	FindBestShaper(calib *spectral.CalibrationData, opts Options) (*Candidate, []*Candidate, error)
	// ReducedAccuracy reports whether the backend had to drop the
	// damping-ratio and corner-velocity awareness of the search.
	ReducedAccuracy() bool
}

// ModernBackend runs the full damping-aware search.
type ModernBackend struct {
	cal *Calibrator
}

// NewModernBackend creates the damping-aware backend.
func NewModernBackend() *ModernBackend {
	return &ModernBackend{cal: NewCalibrator()}
}

func (b *ModernBackend) FindBestShaper(calib *spectral.CalibrationData, opts Options) (*Candidate, []*Candidate, error) {
	return b.cal.FindBestShaper(calib, opts)
}

func (b *ModernBackend) ReducedAccuracy() bool { return false }

// LegacyBackend mirrors older host firmware that cannot inject the
// measured damping ratio or the square corner velocity into the search.
// Results stay valid but recommendations must be flagged as approximate.
type LegacyBackend struct {
	cal *Calibrator
}

// NewLegacyBackend creates the reduced-accuracy backend.
func NewLegacyBackend() *LegacyBackend {
	return &LegacyBackend{cal: NewCalibrator()}
}

func (b *LegacyBackend) FindBestShaper(calib *spectral.CalibrationData, opts Options) (*Candidate, []*Candidate, error) {
	// Only the smoothing cap and frequency band survive; damping ratio
	// and SCV are pinned to their defaults.
	legacyOpts := Options{
		MaxSmoothing: opts.MaxSmoothing,
		MaxFreq:      opts.MaxFreq,
		Shapers:      opts.Shapers,
	}
	return b.cal.FindBestShaper(calib, legacyOpts)
}

func (b *LegacyBackend) ReducedAccuracy() bool { return true }

// ResolveBackend picks the backend implementation for the host's
// capability level.
func ResolveBackend(legacy bool) Backend {
	if legacy {
		return NewLegacyBackend()
	}
	return NewModernBackend()
}
