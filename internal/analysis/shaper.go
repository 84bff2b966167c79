package analysis

import (
	"fmt"

	"github.com/printmetrics/resotune/pkg/accel"
	"github.com/printmetrics/resotune/pkg/logging"
	"github.com/printmetrics/resotune/pkg/shaper"
	"github.com/printmetrics/resotune/pkg/spectral"
)

const (
	// shaperPeakThreshold marks resonance peaks worth reporting.
	shaperPeakThreshold = 0.05
	// shaperEffectThreshold marks peaks strong enough to affect print
	// quality; counted separately in the report.
	shaperEffectThreshold = 0.12
	// maxVibrationsPct: a shaper leaving more residual vibration than this
	// never qualifies as the performance recommendation.
	maxVibrationsPct = 5.0
	// minSmoothing is the cap of the second fitting pass, which projects
	// the true maximum accelerations regardless of the user's cap.
	minSmoothing = 0.001
)

// ShaperParams configure an input shaper fitting.
type ShaperParams struct {
	MaxFreq      float64
	MaxScale     int
	MaxSmoothing float64
	SCV          float64
	AccelPerHz   float64
	Version      string
}

// ShaperResult is the outcome of fitting the shaper catalog against one
// axis capture.
type ShaperResult struct {
	Metadata     Metadata
	Measurements []*accel.Measurement
	Calibration  *spectral.CalibrationData
	Spectrogram  *spectral.Spectrogram

	// Fr and Zeta describe the dominant resonance of the axis; Zeta falls
	// back to the catalog default when the bandwidth cannot be measured.
	Fr           float64
	Zeta         float64
	ZetaMeasured bool

	BestShaper *shaper.Candidate
	// Shapers is the per-type candidate list under the user's smoothing
	// cap; ShapersTuned repeats the fit at minSmoothing to expose the true
	// acceleration ceiling of each type.
	Shapers      []*shaper.Candidate
	ShapersTuned []*shaper.Candidate
	// PerformanceShaper is the low-vibration alternative trading a bit of
	// smoothing for acceleration headroom, when one exists.
	PerformanceShaper *shaper.Candidate
	Recommendations   []string

	Peaks          []int
	PeaksFreqs     []float64
	PeaksThreshold [2]float64
	// EffectPeaks counts the detected peaks strong enough to affect print
	// quality (above the second threshold).
	EffectPeaks int

	MaxSmoothingComputed float64
	// Compat is set when the reduced-accuracy backend served the search.
	Compat       bool
	MaxFreq      float64
	MaxScale     int
	MaxSmoothing float64
	SCV          float64
	AccelPerHz   float64
}

// PlotData exposes the result to the rendering collaborator.
func (r *ShaperResult) PlotData() map[string]any {
	return map[string]any{
		"measurements":           r.Measurements,
		"calibration_data":       r.Calibration,
		"spectrogram":            r.Spectrogram,
		"fr":                     r.Fr,
		"zeta":                   r.Zeta,
		"compat":                 r.Compat,
		"klipper_shaper_choice":  r.BestShaper,
		"shapers":                r.Shapers,
		"shapers_tuned":          r.ShapersTuned,
		"perf_shaper":            r.PerformanceShaper,
		"recommendations":        r.Recommendations,
		"peaks":                  r.Peaks,
		"peaks_freqs":            r.PeaksFreqs,
		"peaks_threshold":        r.PeaksThreshold,
		"effect_peaks":           r.EffectPeaks,
		"max_smoothing_computed": r.MaxSmoothingComputed,
		"max_freq":               r.MaxFreq,
		"max_scale":              r.MaxScale,
		"max_smoothing":          r.MaxSmoothing,
		"scv":                    r.SCV,
		"st_version":             r.Metadata.Version,
	}
}

// ShaperComputation fits the input shaper catalog against a single-axis
// resonance capture and derives tuning recommendations.
type ShaperComputation struct {
	measurements []*accel.Measurement
	params       ShaperParams
	backend      shaper.Backend
	processor    *spectral.Processor
	logger       logging.Logger
}

// NewShaperComputation creates a shaper fitting over one axis capture. Any
// Backend implementation works; nil falls back to the full-accuracy one.
func NewShaperComputation(measurements []*accel.Measurement, params ShaperParams, backend shaper.Backend) *ShaperComputation {
	if params.MaxFreq <= 0 {
		params.MaxFreq = spectral.MaxFreq
	}
	if backend == nil {
		backend = shaper.NewModernBackend()
	}
	return &ShaperComputation{
		measurements: measurements,
		params:       params,
		backend:      backend,
		processor:    spectral.NewProcessor(),
		logger: logging.WithFields(logging.Fields{
			"component": "shaper_computation",
		}),
	}
}

// Compute runs the fitting.
func (c *ShaperComputation) Compute() (Result, error) {
	if len(c.measurements) == 0 {
		return nil, &CardinalityError{
			Want:   1,
			Got:    0,
			Names:  nil,
			Reason: "one resonance capture of the tested axis",
		}
	}

	usable := accel.Usable(c.measurements)
	if len(usable) == 0 {
		return nil, fmt.Errorf("shaper fitting: %w", spectral.ErrNoData)
	}
	if len(usable) > 1 {
		c.logger.Warn("Multiple measurements provided, only the first one is used", logging.Fields{
			"measurements": accel.Names(usable),
		})
	}
	capture := usable[0]

	calib, err := c.processor.ProcessAccelerometerData(capture)
	if err != nil {
		return nil, err
	}
	calib.NormalizeToFrequencies()
	trimmed := calib.Trimmed(c.params.MaxFreq)

	mech := spectral.ComputeMechanicalParameters(trimmed.PsdSum, trimmed.FreqBins)
	zeta := mech.DampingRatio
	if !mech.HasDamping {
		zeta = shaper.DefaultDampingRatio
		c.logger.Warn("Could not measure the damping ratio, using the default", logging.Fields{
			"measurement":   capture.Name,
			"damping_ratio": zeta,
		})
	}

	opts := shaper.Options{
		DampingRatio: zeta,
		SCV:          c.params.SCV,
		MaxSmoothing: c.params.MaxSmoothing,
		MaxFreq:      c.params.MaxFreq,
	}
	best, all, err := c.backend.FindBestShaper(trimmed, opts)
	if err != nil {
		return nil, fmt.Errorf("shaper fitting of %q: %w", capture.Name, err)
	}

	// Second pass without the user's smoothing cap to learn how far each
	// shaper type could be pushed.
	tunedOpts := opts
	tunedOpts.MaxSmoothing = minSmoothing
	_, tuned, err := c.backend.FindBestShaper(trimmed, tunedOpts)
	if err != nil {
		c.logger.Warn("Max accel projection pass failed, keeping capped candidates", logging.Fields{
			"error": err.Error(),
		})
		tuned = all
	}

	spectrogram, err := c.processor.ComputeSpectrogram(capture)
	if err != nil {
		return nil, err
	}

	detector := spectral.NewPeakDetector()
	maxPsd := maxOf(trimmed.PsdSum)
	_, peaks, peakFreqs := detector.DetectPeaks(trimmed.PsdSum, trimmed.FreqBins, shaperPeakThreshold*maxPsd)

	effectPeaks := 0
	for _, p := range peaks {
		if trimmed.PsdSum[p] >= shaperEffectThreshold*maxPsd {
			effectPeaks++
		}
	}

	var maxSmoothingComputed float64
	for _, cand := range all {
		if cand.Smoothing > maxSmoothingComputed {
			maxSmoothingComputed = cand.Smoothing
		}
	}

	perf := c.pickPerformanceShaper(best, all)
	recommendations := c.recommendations(best, perf)

	if c.backend.ReducedAccuracy() {
		recommendations = append(recommendations,
			"Recommendations computed with reduced accuracy: damping ratio and square corner velocity were ignored")
		c.logger.Warn("Shaper search ran with reduced accuracy: damping ratio and square corner velocity were ignored", nil)
	}

	c.logger.Info("Shaper fitting done", logging.Fields{
		"measurement": capture.Name,
		"fr":          mech.ResonantFreq,
		"zeta":        zeta,
		"best":        best.Name,
		"best_freq":   best.Freq,
		"peaks":       len(peaks),
	})

	return &ShaperResult{
		Metadata: Metadata{
			Title:   "INPUT SHAPER CALIBRATION TOOL",
			Version: c.params.Version,
			AdditionalInfo: map[string]any{
				"accel_per_hz": c.params.AccelPerHz,
			},
		},
		Measurements:         c.measurements,
		Calibration:          trimmed,
		Spectrogram:          spectrogram,
		Fr:                   mech.ResonantFreq,
		Zeta:                 zeta,
		ZetaMeasured:         mech.HasDamping,
		BestShaper:           best,
		Shapers:              all,
		ShapersTuned:         tuned,
		PerformanceShaper:    perf,
		Recommendations:      recommendations,
		Peaks:                peaks,
		PeaksFreqs:           peakFreqs,
		PeaksThreshold:       [2]float64{shaperPeakThreshold * maxPsd, shaperEffectThreshold * maxPsd},
		EffectPeaks:          effectPeaks,
		MaxSmoothingComputed: maxSmoothingComputed,
		Compat:               c.backend.ReducedAccuracy(),
		MaxFreq:              c.params.MaxFreq,
		MaxScale:             c.params.MaxScale,
		MaxSmoothing:         c.params.MaxSmoothing,
		SCV:                  c.params.SCV,
		AccelPerHz:           c.params.AccelPerHz,
	}, nil
}

// pickPerformanceShaper searches the nominal candidate list for the type
// with the highest acceleration ceiling that still keeps residual
// vibrations low. It must beat the nominal choice to be worth
// recommending.
func (c *ShaperComputation) pickPerformanceShaper(best *shaper.Candidate, candidates []*shaper.Candidate) *shaper.Candidate {
	var perf *shaper.Candidate
	for _, cand := range candidates {
		if cand.Vibrs*100.0 >= maxVibrationsPct {
			continue
		}
		if perf == nil || cand.MaxAccel > perf.MaxAccel {
			perf = cand
		}
	}
	if perf == nil || perf.Name == best.Name || perf.MaxAccel < best.MaxAccel {
		return nil
	}
	return perf
}

func (c *ShaperComputation) recommendations(best *shaper.Candidate, perf *shaper.Candidate) []string {
	if perf != nil {
		return []string{
			fmt.Sprintf("For performance: %s @ %.1f Hz", perf.Name, perf.Freq),
			fmt.Sprintf("For low vibrations: %s @ %.1f Hz", best.Name, best.Freq),
		}
	}
	return []string{fmt.Sprintf("Best shaper: %s @ %.1f Hz", best.Name, best.Freq)}
}
