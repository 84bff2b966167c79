package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"github.com/printmetrics/resotune/pkg/accel"
	"github.com/printmetrics/resotune/pkg/logging"
	"github.com/printmetrics/resotune/pkg/shaper"
	"github.com/printmetrics/resotune/pkg/spectral"
)

const (
	// goodVibrationBand accepts speeds (or angles) whose energy sits in the
	// lowest 30% of the observed energy span.
	goodVibrationBand = 0.3
	// vibrationsGridSize is the common frequency grid of the motor
	// resonance profiles.
	vibrationsGridSize = 500
)

// captureNamePattern encodes the movement parameters in the capture name,
// e.g. "vib_an57.3_sp120" for a 57.3 degree move at 120 mm/s.
var captureNamePattern = regexp.MustCompile(`an([0-9]+(?:\.[0-9]+)?)_sp([0-9]+(?:\.[0-9]+)?)`)

// VibrationsParams configure a vibrations profile analysis.
type VibrationsParams struct {
	Kinematics string
	Accel      float64
	MaxFreq    float64
	Version    string
}

// VibrationsResult maps the machine's vibration behavior over movement
// angle and speed, and profiles the motor resonances.
type VibrationsResult struct {
	Metadata     Metadata
	Measurements []*accel.Measurement
	Kinematics   string
	Accel        float64
	MaxFreq      float64

	// AllAngles and AllSpeeds are the sorted test coordinates; PowerGrid is
	// the vibration energy at [angle][speed].
	AllAngles []float64
	AllSpeeds []float64
	PowerGrid [][]float64

	// AnglesPowers and SpeedsPowers are the grid marginals: mean energy per
	// angle (over speeds) and per speed (over angles).
	AnglesPowers []float64
	SpeedsPowers []float64

	// GoodSpeeds and GoodAngles sit in the low-energy band of their
	// marginal and are safe default choices for print settings.
	GoodSpeeds []float64
	GoodAngles []float64

	// SymmetryFactor is the mean correlation (in percent) between the
	// energy profiles of opposed movement directions.
	SymmetryFactor    float64
	SymmetryAvailable bool

	// SpeedPowerSpectra is the mean PSD per test speed on the profile
	// grid, [speed][freq], the heat-map view of where each speed shakes.
	SpeedPowerSpectra [][]float64

	// MotorProfiles holds the mean normalized PSD per angle; the global
	// profile averages them all and carries the motor resonance estimate.
	ProfileFreqs       []float64
	MotorProfiles      map[float64][]float64
	GlobalMotorProfile []float64
	MotorFr            float64
	MotorZeta          float64
	MotorZetaMeasured  bool
	MotorResIdx        int
	// MotorProfilePeaks are the resonance peaks of the global profile.
	MotorProfilePeaks []int

	// VibrationMetric is the relative spread of the speed energy curve, in
	// percent. High values mean speed choice matters a lot on this machine.
	VibrationMetric float64
}

// PlotData exposes the result to the rendering collaborator.
func (r *VibrationsResult) PlotData() map[string]any {
	return map[string]any{
		"measurements":         r.Measurements,
		"kinematics":           r.Kinematics,
		"accel":                r.Accel,
		"max_freq":             r.MaxFreq,
		"all_angles":           r.AllAngles,
		"all_speeds":           r.AllSpeeds,
		"power_grid":           r.PowerGrid,
		"all_angles_energy":    r.AnglesPowers,
		"speeds_powers":        r.SpeedsPowers,
		"good_speeds":          r.GoodSpeeds,
		"good_angles":          r.GoodAngles,
		"speed_power_spectra":  r.SpeedPowerSpectra,
		"symmetry_factor":      r.SymmetryFactor,
		"profile_freqs":        r.ProfileFreqs,
		"motor_profiles":       r.MotorProfiles,
		"global_motor_profile": r.GlobalMotorProfile,
		"motor_fr":             r.MotorFr,
		"motor_zeta":           r.MotorZeta,
		"motor_res_idx":        r.MotorResIdx,
		"motor_profile_peaks":  r.MotorProfilePeaks,
		"vibration_metric":     r.VibrationMetric,
		"st_version":           r.Metadata.Version,
	}
}

type vibrationCapture struct {
	angle   float64
	speed   float64
	measure *accel.Measurement
}

// VibrationsComputation sweeps the captures of a full angle/speed test
// pattern into a vibration map of the machine.
type VibrationsComputation struct {
	measurements []*accel.Measurement
	params       VibrationsParams
	processor    *spectral.Processor
	logger       logging.Logger
}

// NewVibrationsComputation creates a vibrations profile analysis. Each
// measurement name must carry its movement angle and speed.
func NewVibrationsComputation(measurements []*accel.Measurement, params VibrationsParams) *VibrationsComputation {
	if params.MaxFreq <= 0 {
		params.MaxFreq = spectral.MaxFreq
	}
	return &VibrationsComputation{
		measurements: measurements,
		params:       params,
		processor:    spectral.NewProcessor(),
		logger: logging.WithFields(logging.Fields{
			"component": "vibrations_computation",
		}),
	}
}

// Compute runs the analysis.
func (c *VibrationsComputation) Compute() (Result, error) {
	usable := accel.Usable(c.measurements)
	if len(usable) == 0 {
		return nil, fmt.Errorf("vibrations profile: %w", spectral.ErrNoData)
	}

	captures, err := parseCaptures(usable)
	if err != nil {
		return nil, err
	}

	angles := sortedUnique(captures, func(cp vibrationCapture) float64 { return cp.angle })
	speeds := sortedUnique(captures, func(cp vibrationCapture) float64 { return cp.speed })

	profileFreqs := linspace(0, c.params.MaxFreq, vibrationsGridSize)

	grid := make([][]float64, len(angles))
	for i := range grid {
		grid[i] = make([]float64, len(speeds))
	}
	profileSums := make(map[float64][]float64, len(angles))
	profileCounts := make(map[float64]int, len(angles))
	speedSums := make([][]float64, len(speeds))
	speedCounts := make([]int, len(speeds))
	for j := range speedSums {
		speedSums[j] = make([]float64, len(profileFreqs))
	}

	for _, cp := range captures {
		calib, err := c.processor.ProcessAccelerometerData(cp.measure)
		if err != nil {
			return nil, err
		}
		trimmed := calib.Trimmed(c.params.MaxFreq)

		i := indexOf(angles, cp.angle)
		j := indexOf(speeds, cp.speed)
		grid[i][j] = integrate.Trapezoidal(trimmed.FreqBins, trimmed.PsdSum)

		profile, err := resamplePsd(trimmed, profileFreqs)
		if err != nil {
			return nil, fmt.Errorf("capture %q: %w", cp.measure.Name, err)
		}
		if profileSums[cp.angle] == nil {
			profileSums[cp.angle] = make([]float64, len(profileFreqs))
		}
		for k, v := range profile {
			profileSums[cp.angle][k] += v
			speedSums[j][k] += v
		}
		profileCounts[cp.angle]++
		speedCounts[j]++
	}

	speedSpectra := make([][]float64, len(speeds))
	for j := range speedSums {
		speedSpectra[j] = speedSums[j]
		if speedCounts[j] > 1 {
			for k := range speedSpectra[j] {
				speedSpectra[j][k] /= float64(speedCounts[j])
			}
		}
	}

	anglesPowers := rowMeans(grid)
	speedsPowers := colMeans(grid)
	goodAngles := lowEnergyBand(angles, anglesPowers)
	goodSpeeds := lowEnergyBand(speeds, speedsPowers)

	motorProfiles := make(map[float64][]float64, len(profileSums))
	global := make([]float64, len(profileFreqs))
	for angle, sum := range profileSums {
		n := float64(profileCounts[angle])
		profile := make([]float64, len(sum))
		for k, v := range sum {
			profile[k] = v / n
			global[k] += profile[k]
		}
		motorProfiles[angle] = profile
	}
	for k := range global {
		global[k] /= float64(len(profileSums))
	}

	mech := spectral.ComputeMechanicalParameters(global, profileFreqs)
	motorZeta := mech.DampingRatio
	if !mech.HasDamping {
		motorZeta = shaper.DefaultDampingRatio
	}

	detector := spectral.NewPeakDetector()
	_, motorPeaks, _ := detector.DetectPeaks(global, profileFreqs, 0.1*maxOf(global))

	symmetry, symmetryOK := symmetryFactor(angles, grid)
	metric := vibrationMetric(speedsPowers)

	c.logger.Info("Vibrations profile done", logging.Fields{
		"captures":         len(captures),
		"angles":           len(angles),
		"speeds":           len(speeds),
		"motor_fr":         mech.ResonantFreq,
		"vibration_metric": metric,
	})

	return &VibrationsResult{
		Metadata: Metadata{
			Title:   "MACHINE VIBRATIONS ANALYSIS TOOL",
			Version: c.params.Version,
			AdditionalInfo: map[string]any{
				"kinematics": c.params.Kinematics,
				"accel":      c.params.Accel,
			},
		},
		Measurements:       c.measurements,
		Kinematics:         c.params.Kinematics,
		Accel:              c.params.Accel,
		MaxFreq:            c.params.MaxFreq,
		AllAngles:          angles,
		AllSpeeds:          speeds,
		PowerGrid:          grid,
		AnglesPowers:       anglesPowers,
		SpeedsPowers:       speedsPowers,
		GoodSpeeds:         goodSpeeds,
		GoodAngles:         goodAngles,
		SpeedPowerSpectra:  speedSpectra,
		SymmetryFactor:     symmetry,
		SymmetryAvailable:  symmetryOK,
		ProfileFreqs:       profileFreqs,
		MotorProfiles:      motorProfiles,
		GlobalMotorProfile: global,
		MotorFr:            mech.ResonantFreq,
		MotorZeta:          motorZeta,
		MotorZetaMeasured:  mech.HasDamping,
		MotorResIdx:        mech.PeakIndex,
		MotorProfilePeaks:  motorPeaks,
		VibrationMetric:    metric,
	}, nil
}

func parseCaptures(measurements []*accel.Measurement) ([]vibrationCapture, error) {
	captures := make([]vibrationCapture, 0, len(measurements))
	for _, m := range measurements {
		match := captureNamePattern.FindStringSubmatch(m.Name)
		if match == nil {
			return nil, fmt.Errorf("capture %q does not encode its movement angle and speed (expected a name like an45_sp100)", m.Name)
		}
		angle, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return nil, fmt.Errorf("capture %q: bad angle: %w", m.Name, err)
		}
		speed, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			return nil, fmt.Errorf("capture %q: bad speed: %w", m.Name, err)
		}
		captures = append(captures, vibrationCapture{angle: angle, speed: speed, measure: m})
	}
	return captures, nil
}

func resamplePsd(cd *spectral.CalibrationData, targetFreqs []float64) ([]float64, error) {
	var pl interp.PiecewiseLinear
	if err := pl.Fit(cd.FreqBins, cd.PsdSum); err != nil {
		return nil, err
	}
	lo := cd.FreqBins[0]
	hi := cd.FreqBins[len(cd.FreqBins)-1]
	out := make([]float64, len(targetFreqs))
	for i, f := range targetFreqs {
		out[i] = pl.Predict(clamp(f, lo, hi))
	}
	return out, nil
}

// symmetryFactor correlates the speed energy profile of each angle against
// the profile of the opposed direction (angle + 180 degrees). Returns the
// mean correlation in percent and whether any opposed pair exists.
func symmetryFactor(angles []float64, grid [][]float64) (float64, bool) {
	var total float64
	var pairs int
	for i, a := range angles {
		opposed := math.Mod(a+180.0, 360.0)
		j := indexOf(angles, opposed)
		if j < 0 || j <= i {
			continue
		}
		total += stat.Correlation(grid[i], grid[j], nil)
		pairs++
	}
	if pairs == 0 {
		return 0, false
	}
	return clamp(total/float64(pairs)*100.0, 0, 100), true
}

// vibrationMetric is the relative spread of the speed energy curve.
func vibrationMetric(speedsPowers []float64) float64 {
	maxP := maxOf(speedsPowers)
	if maxP <= 0 {
		return 0
	}
	minP := speedsPowers[0]
	for _, v := range speedsPowers {
		if v < minP {
			minP = v
		}
	}
	return (maxP - minP) / maxP * 100.0
}

// lowEnergyBand keeps the coordinates whose energy sits within
// goodVibrationBand of the span above the minimum.
func lowEnergyBand(coords, powers []float64) []float64 {
	if len(powers) == 0 {
		return nil
	}
	minP, maxP := powers[0], powers[0]
	for _, v := range powers {
		minP = math.Min(minP, v)
		maxP = math.Max(maxP, v)
	}
	cutoff := minP + goodVibrationBand*(maxP-minP)

	var good []float64
	for i, v := range powers {
		if v <= cutoff {
			good = append(good, coords[i])
		}
	}
	return good
}

func sortedUnique(captures []vibrationCapture, key func(vibrationCapture) float64) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, cp := range captures {
		k := key(cp)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Float64s(out)
	return out
}

func indexOf(values []float64, v float64) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return -1
}

func rowMeans(grid [][]float64) []float64 {
	out := make([]float64, len(grid))
	for i, row := range grid {
		out[i] = sum(row) / float64(len(row))
	}
	return out
}

func colMeans(grid [][]float64) []float64 {
	if len(grid) == 0 {
		return nil
	}
	out := make([]float64, len(grid[0]))
	for _, row := range grid {
		for j, v := range row {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(len(grid))
	}
	return out
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
