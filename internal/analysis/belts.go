package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"github.com/printmetrics/resotune/pkg/accel"
	"github.com/printmetrics/resotune/pkg/logging"
	"github.com/printmetrics/resotune/pkg/spectral"
)

const (
	// beltsPeakThreshold detects peaks above 10% of the strongest
	// response; weaker wiggles are measurement noise.
	beltsPeakThreshold = 0.1
	// beltsGridSize is the common frequency grid shared by both belt
	// signals so their PSDs stay point-wise comparable.
	beltsGridSize = 500

	beltsPeakWindow   = 20
	beltsPeakVicinity = 15
)

// symmetricKinematics lists the kinematics whose belts drive both axes
// together, making the two belt spectra directly comparable.
var symmetricKinematics = map[string]bool{
	"corexy":         true,
	"limited_corexy": true,
	"corexz":         true,
	"limited_corexz": true,
}

// beltAxisHints maps conventional belt names to their motion axis.
var beltAxisHints = map[string]string{
	"A": " (axis 1,-1)",
	"B": " (axis 1, 1)",
}

// BeltsParams configure a belts comparison.
type BeltsParams struct {
	Kinematics string
	MaxFreq    float64
	MaxScale   int
	TestParams map[string]any
	Version    string
}

// BeltsResult is the outcome of a relative belts comparison.
type BeltsResult struct {
	Metadata         Metadata
	Measurements     []*accel.Measurement
	Signal1          SignalData
	Signal2          SignalData
	Signal1Belt      string
	Signal2Belt      string
	Kinematics       string
	MaxFreq          float64
	MaxScale         int
	TestParams       map[string]any
	SimilarityFactor float64
	// Health is nil for kinematics without belt symmetry.
	Health *HealthScore
}

// PlotData exposes the result to the rendering collaborator.
func (r *BeltsResult) PlotData() map[string]any {
	data := map[string]any{
		"signal1":           r.Signal1,
		"signal2":           r.Signal2,
		"signal1_belt":      r.Signal1Belt,
		"signal2_belt":      r.Signal2Belt,
		"kinematics":        r.Kinematics,
		"similarity_factor": r.SimilarityFactor,
		"test_params":       r.TestParams,
		"max_freq":          r.MaxFreq,
		"max_scale":         r.MaxScale,
		"measurements":      r.Measurements,
		"st_version":        r.Metadata.Version,
	}
	if r.Health != nil {
		data["mhi"] = fmt.Sprintf("%.0f%% (%s)", r.Health.MHI, r.Health.Label)
	}
	return data
}

// BeltsComputation compares the frequency responses of the two belts of a
// symmetric drive to judge their relative tension and health.
type BeltsComputation struct {
	measurements []*accel.Measurement
	params       BeltsParams
	processor    *spectral.Processor
	logger       logging.Logger
}

// NewBeltsComputation creates a belts comparison over two measurements,
// one per belt.
func NewBeltsComputation(measurements []*accel.Measurement, params BeltsParams) *BeltsComputation {
	if params.MaxFreq <= 0 {
		params.MaxFreq = spectral.MaxFreq
	}
	return &BeltsComputation{
		measurements: measurements,
		params:       params,
		processor:    spectral.NewProcessor(),
		logger: logging.WithFields(logging.Fields{
			"component": "belts_computation",
		}),
	}
}

// Compute runs the comparison.
func (c *BeltsComputation) Compute() (Result, error) {
	if len(c.measurements) != 2 {
		return nil, &CardinalityError{
			Want:   2,
			Got:    len(c.measurements),
			Names:  measurementNames(c.measurements),
			Reason: "one for each belt",
		}
	}

	usable := accel.Usable(c.measurements)
	if len(usable) != 2 {
		return nil, fmt.Errorf("belts comparison: %w", spectral.ErrNoData)
	}

	commonFreqs := linspace(0, c.params.MaxFreq, beltsGridSize)
	signal1, err := c.computeSignalData(usable[0], commonFreqs)
	if err != nil {
		return nil, err
	}
	signal2, err := c.computeSignalData(usable[1], commonFreqs)
	if err != nil {
		return nil, err
	}

	pairing := PairPeaks(
		signal1.Peaks, signal1.Freqs, signal1.Psd,
		signal2.Peaks, signal2.Freqs, signal2.Psd,
	)
	signal1.PairedPeaks = pairing.PairedPeaks
	signal1.UnpairedPeaks = pairing.UnpairedPeaks1
	signal2.PairedPeaks = pairing.PairedPeaks
	signal2.UnpairedPeaks = pairing.UnpairedPeaks2

	result := &BeltsResult{
		Metadata: Metadata{
			Title:   "RELATIVE BELTS CALIBRATION TOOL",
			Version: c.params.Version,
			AdditionalInfo: map[string]any{
				"kinematics":  c.params.Kinematics,
				"test_params": c.params.TestParams,
			},
		},
		Measurements: c.measurements,
		Signal1:      *signal1,
		Signal2:      *signal2,
		Signal1Belt:  beltLabel(usable[0].Name),
		Signal2Belt:  beltLabel(usable[1].Name),
		Kinematics:   c.params.Kinematics,
		MaxFreq:      c.params.MaxFreq,
		MaxScale:     c.params.MaxScale,
		TestParams:   c.params.TestParams,
	}

	// Similarity and health scoring only make sense when both belts see
	// the same mechanical load.
	if symmetricKinematics[c.params.Kinematics] {
		correlation := stat.Correlation(signal1.Psd, signal2.Psd, nil)
		result.SimilarityFactor = clamp(correlation*100.0, 0, 100)

		health := ScoreMechanicalHealth(result.SimilarityFactor, signal1, signal2)
		result.Health = &health

		c.logger.Info("Belts comparison scored", logging.Fields{
			"similarity_pct": result.SimilarityFactor,
			"mhi":            health.MHI,
			"label":          health.Label,
			"paired_peaks":   len(pairing.PairedPeaks),
			"unpaired_peaks": len(pairing.UnpairedPeaks1) + len(pairing.UnpairedPeaks2),
		})
	}

	return result, nil
}

// computeSignalData derives the comparable frequency-domain view of one
// belt capture: PSD re-interpolated onto the common grid plus its peaks.
func (c *BeltsComputation) computeSignalData(m *accel.Measurement, commonFreqs []float64) (*SignalData, error) {
	calib, err := c.processor.ProcessAccelerometerData(m)
	if err != nil {
		return nil, err
	}
	trimmed := calib.Trimmed(c.params.MaxFreq)

	var pl interp.PiecewiseLinear
	if err := pl.Fit(trimmed.FreqBins, trimmed.PsdSum); err != nil {
		return nil, fmt.Errorf("failed to re-interpolate PSD of %q: %w", m.Name, err)
	}

	lo := trimmed.FreqBins[0]
	hi := trimmed.FreqBins[len(trimmed.FreqBins)-1]
	psd := make([]float64, len(commonFreqs))
	for i, f := range commonFreqs {
		psd[i] = pl.Predict(clamp(f, lo, hi))
	}

	detector := &spectral.PeakDetector{WindowSize: beltsPeakWindow, Vicinity: beltsPeakVicinity}
	_, peaks, _ := detector.DetectPeaks(psd, commonFreqs, beltsPeakThreshold*maxOf(psd))

	return &SignalData{Freqs: commonFreqs, Psd: psd, Peaks: peaks}, nil
}

// beltLabel turns a capture name like "belt_A" into a display label with
// the axis hint of conventional belt names.
func beltLabel(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return name
	}
	belt := parts[1]
	return belt + beltAxisHints[belt]
}

func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
