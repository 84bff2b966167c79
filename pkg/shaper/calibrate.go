package shaper

import (
	"fmt"
	"math"

	"github.com/printmetrics/resotune/pkg/logging"
	"github.com/printmetrics/resotune/pkg/spectral"
)

const (
	// MaxShaperFreq bounds the frequency sweep for every shaper type.
	MaxShaperFreq = 150.0

	freqStep = 0.2

	// smoothing is evaluated against a nominal acceleration so that
	// candidates of different frequencies stay comparable.
	smoothingTestAccel = 5000.0
	// DefaultSCV is the square corner velocity assumed when the host does
	// not provide one.
	DefaultSCV = 5.0

	// targetSmoothing is the empirical smoothing ceiling used to project
	// the maximum usable acceleration for a fitted shaper.
	targetSmoothing = 0.12
)

// testDampingRatios: the exact damping ratio of the machine is uncertain,
// so residual vibrations are pessimized over this range.
var testDampingRatios = []float64{0.075, 0.1, 0.15}

// Candidate is one fitted shaper: a shaper type pinned to a resonant
// frequency, with its predicted effect on the measured system. Immutable
// once produced.
type Candidate struct {
	Name string
	// Freq is the tuned resonant frequency of the filter.
	Freq float64
	// Vals is the frequency response of the filter on the analysis grid,
	// pessimized over the test damping ratios.
	Vals []float64
	// Vibrs is the residual vibration fraction (0-1).
	Vibrs float64
	// Smoothing is the motion blur metric at the nominal acceleration.
	Smoothing float64
	// Score trades residual vibration against smoothing growth.
	Score float64
	// MaxAccel is the projected maximum acceleration before smoothing
	// becomes unacceptable.
	MaxAccel float64
}

// Options tune a best-shaper search.
type Options struct {
	// DampingRatio of the machine; 0 falls back to DefaultDampingRatio.
	DampingRatio float64
	// SCV is the square corner velocity; 0 falls back to DefaultSCV.
	SCV float64
	// MaxSmoothing rejects candidates above this smoothing; 0 disables
	// the constraint.
	MaxSmoothing float64
	// MaxFreq truncates the analyzed PSD; 0 keeps the full band.
	MaxFreq float64
	// Shapers restricts the evaluated types; nil uses the autotune set.
	Shapers []string
}

func (o Options) withDefaults() Options {
	if o.DampingRatio <= 0 {
		o.DampingRatio = DefaultDampingRatio
	}
	if o.SCV <= 0 {
		o.SCV = DefaultSCV
	}
	if o.MaxFreq <= 0 {
		o.MaxFreq = spectral.MaxFreq
	}
	if o.Shapers == nil {
		o.Shapers = autotuneShapers
	}
	return o
}

// Calibrator fits shaper filters against a measured frequency response.
type Calibrator struct {
	logger logging.Logger
}

// NewCalibrator creates a shaper calibrator.
func NewCalibrator() *Calibrator {
	return &Calibrator{
		logger: logging.WithFields(logging.Fields{
			"component": "shaper_calibrator",
		}),
	}
}

// FindBestShaper evaluates the configured shaper types against the
// calibration data and returns the recommended candidate plus the full
// per-type candidate list, in catalog order.
func (c *Calibrator) FindBestShaper(calib *spectral.CalibrationData, opts Options) (*Candidate, []*Candidate, error) {
	opts = opts.withDefaults()

	if calib == nil || len(calib.FreqBins) == 0 {
		return nil, nil, fmt.Errorf("shaper search: %w", spectral.ErrNoData)
	}

	maxFreq := math.Max(opts.MaxFreq, MaxShaperFreq)
	trimmed := calib.Trimmed(maxFreq)
	if len(trimmed.FreqBins) == 0 || maxValue(trimmed.PsdSum) <= 0 {
		return nil, nil, fmt.Errorf("shaper search: %w", spectral.ErrNoData)
	}

	var best *Candidate
	var all []*Candidate
	for _, cfg := range catalog {
		if !contains(opts.Shapers, cfg.Name) {
			continue
		}
		candidate := c.fitShaper(cfg, trimmed.FreqBins, trimmed.PsdSum, opts)
		if candidate == nil {
			continue
		}
		all = append(all, candidate)

		c.logger.Debug("Fitted shaper", logging.Fields{
			"shaper":     candidate.Name,
			"freq":       candidate.Freq,
			"vibrations": candidate.Vibrs,
			"smoothing":  candidate.Smoothing,
			"max_accel":  candidate.MaxAccel,
		})

		// Prefer a significantly better score, or a slightly worse score
		// bought with clearly less smoothing.
		if best == nil || candidate.Score*1.2 < best.Score ||
			(candidate.Score*1.05 < best.Score && candidate.Smoothing*1.1 < best.Smoothing) {
			best = candidate
		}
	}

	if best == nil {
		return nil, nil, fmt.Errorf("no shaper satisfies max_smoothing=%.4f", opts.MaxSmoothing)
	}
	return best, all, nil
}

// fitShaper sweeps the valid frequency range for one shaper type and picks
// the best frequency: lowest residual vibration, then relaxed towards less
// smoothing as long as vibrations stay within 110% of the optimum.
func (c *Calibrator) fitShaper(cfg Config, freqBins, psd []float64, opts Options) *Candidate {
	var results []*Candidate
	var best *Candidate

	// Sweep descending: smoothing grows as frequency drops, so the sweep
	// can stop at the first over-smoothed candidate.
	for freq := sweepStart(cfg.MinFreq); freq >= cfg.MinFreq; freq -= freqStep {
		A, T := cfg.Init(freq, opts.DampingRatio)
		smoothing := shaperSmoothing(A, T, smoothingTestAccel, opts.SCV)
		if opts.MaxSmoothing > 0 && smoothing > opts.MaxSmoothing && best != nil {
			break
		}

		vibr := 0.0
		vals := make([]float64, len(freqBins))
		for _, dr := range testDampingRatios {
			v, curve := estimateRemainingVibrations(A, T, dr, freqBins, psd)
			for i := range vals {
				vals[i] = math.Max(vals[i], curve[i])
			}
			vibr = math.Max(vibr, v)
		}

		candidate := &Candidate{
			Name:      cfg.Name,
			Freq:      freq,
			Vals:      vals,
			Vibrs:     vibr,
			Smoothing: smoothing,
			Score:     smoothing * (math.Pow(vibr, 1.5) + vibr*0.2 + 0.01),
			MaxAccel:  findMaxAccel(A, T, opts.SCV),
		}
		results = append(results, candidate)

		if best == nil || candidate.Vibrs < best.Vibrs {
			best = candidate
		}
	}

	if best == nil {
		return nil
	}

	// Among near-optimal frequencies prefer the one with the best
	// vibration/smoothing trade-off score.
	selected := best
	for i := len(results) - 1; i >= 0; i-- {
		res := results[i]
		if res.Vibrs < best.Vibrs*1.1 && res.Score < selected.Score {
			selected = res
		}
	}
	return selected
}

func sweepStart(minFreq float64) float64 {
	// Align the sweep so its last step lands exactly on minFreq.
	steps := math.Floor((MaxShaperFreq - minFreq) / freqStep)
	return minFreq + steps*freqStep
}

// shaperResponse computes the residual vibration amplitude of the impulse
// train at each test frequency, for a damped oscillator.
func shaperResponse(A, T []float64, dampingRatio float64, freqs []float64) []float64 {
	invD := 1.0 / sum(A)
	tLast := T[len(T)-1]
	dfr := math.Sqrt(1.0 - dampingRatio*dampingRatio)

	vals := make([]float64, len(freqs))
	for i, f := range freqs {
		omega := 2.0 * math.Pi * f
		damping := dampingRatio * omega
		omegaD := omega * dfr

		var s, cs float64
		for j := range A {
			w := A[j] * math.Exp(-damping*(tLast-T[j]))
			s += w * math.Sin(omegaD*T[j])
			cs += w * math.Cos(omegaD*T[j])
		}
		vals[i] = math.Sqrt(s*s+cs*cs) * invD
	}
	return vals
}

// estimateRemainingVibrations weighs the shaper response by the measured
// PSD. Vibrations below 1/vibrationReduction of the strongest response are
// beyond what any shaper can cancel and are ignored.
func estimateRemainingVibrations(A, T []float64, dampingRatio float64, freqBins, psd []float64) (float64, []float64) {
	vals := shaperResponse(A, T, dampingRatio, freqBins)

	threshold := maxValue(psd) / vibrationReduction
	var remaining, total float64
	for i := range psd {
		remaining += math.Max(vals[i]*psd[i]-threshold, 0)
		total += math.Max(psd[i]-threshold, 0)
	}
	if total <= 0 {
		return 0, vals
	}
	return remaining / total, vals
}

// shaperSmoothing estimates the toolhead position error introduced by the
// impulse train during 90 and 180 degree direction changes at the given
// acceleration and square corner velocity.
func shaperSmoothing(A, T []float64, accel, scv float64) float64 {
	halfAccel := accel * 0.5
	invD := 1.0 / sum(A)

	var ts float64
	for i := range A {
		ts += A[i] * T[i]
	}
	ts *= invD

	var offset90, offset180 float64
	for i := range A {
		dt := T[i] - ts
		if T[i] >= ts {
			offset90 += A[i] * (scv + halfAccel*dt) * dt
		}
		offset180 += A[i] * halfAccel * dt * dt
	}
	offset90 *= invD * math.Sqrt2
	offset180 *= invD
	return math.Max(offset90, offset180)
}

// findMaxAccel projects the maximum acceleration keeping smoothing at or
// below the empirical targetSmoothing, by bisection over the acceleration.
func findMaxAccel(A, T []float64, scv float64) float64 {
	fits := func(accel float64) bool {
		return shaperSmoothing(A, T, accel, scv) <= targetSmoothing
	}

	left, right := 1.0, 1.0
	for !fits(left) {
		right = left
		left *= 0.5
	}
	if right == left {
		for fits(right) {
			right *= 2.0
		}
	}
	for right-left > 1e-8*right {
		middle := (left + right) * 0.5
		if fits(middle) {
			left = middle
		} else {
			right = middle
		}
	}
	return left
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func maxValue(values []float64) float64 {
	var m float64
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}
