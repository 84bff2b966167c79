package shaper

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printmetrics/resotune/pkg/spectral"
)

// resonanceData builds calibration data with one smooth resonance.
func resonanceData(fr, sigma float64) *spectral.CalibrationData {
	cd := &spectral.CalibrationData{Name: "synthetic"}
	for f := 0.0; f <= 200.0; f += 0.5 {
		d := (f - fr) / sigma
		cd.FreqBins = append(cd.FreqBins, f)
		cd.PsdSum = append(cd.PsdSum, math.Exp(-0.5*d*d))
	}
	cd.PsdX = append([]float64(nil), cd.PsdSum...)
	cd.PsdY = make([]float64, len(cd.PsdSum))
	cd.PsdZ = make([]float64, len(cd.PsdSum))
	return cd
}

func TestFindBestShaperOnCleanResonance(t *testing.T) {
	cal := NewCalibrator()

	best, all, err := cal.FindBestShaper(resonanceData(50.0, 4.0), Options{})
	require.NoError(t, err)
	require.NotNil(t, best)
	require.Len(t, all, 5)

	// Every fitted candidate is sane.
	for _, c := range all {
		assert.GreaterOrEqual(t, c.Freq, ByName(c.Name).MinFreq, c.Name)
		assert.LessOrEqual(t, c.Freq, MaxShaperFreq, c.Name)
		assert.GreaterOrEqual(t, c.Vibrs, 0.0, c.Name)
		assert.LessOrEqual(t, c.Vibrs, 1.0, c.Name)
		assert.Greater(t, c.Smoothing, 0.0, c.Name)
		assert.Greater(t, c.MaxAccel, 0.0, c.Name)
		assert.Len(t, c.Vals, len(resonanceData(50.0, 4.0).FreqBins), c.Name)
	}

	// A well-tuned shaper cancels most of a single clean resonance.
	assert.Less(t, best.Vibrs, 0.5)
}

func TestFindBestShaperRestrictedTypes(t *testing.T) {
	cal := NewCalibrator()

	best, all, err := cal.FindBestShaper(resonanceData(50.0, 4.0), Options{
		Shapers: []string{"mzv"},
	})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "mzv", best.Name)
}

func TestFindBestShaperRejectsEmptyData(t *testing.T) {
	cal := NewCalibrator()

	_, _, err := cal.FindBestShaper(nil, Options{})
	assert.ErrorIs(t, err, spectral.ErrNoData)

	_, _, err = cal.FindBestShaper(&spectral.CalibrationData{}, Options{})
	assert.ErrorIs(t, err, spectral.ErrNoData)
}

func TestShaperSmoothingGrowsWithAcceleration(t *testing.T) {
	A, T := ByName("mzv").Init(40.0, DefaultDampingRatio)

	low := shaperSmoothing(A, T, 1000.0, DefaultSCV)
	high := shaperSmoothing(A, T, 10000.0, DefaultSCV)

	assert.Greater(t, high, low)
}

func TestShaperSmoothingGrowsAsFrequencyDrops(t *testing.T) {
	cfg := ByName("ei")

	aHigh, tHigh := cfg.Init(80.0, DefaultDampingRatio)
	aLow, tLow := cfg.Init(35.0, DefaultDampingRatio)

	assert.Greater(t,
		shaperSmoothing(aLow, tLow, smoothingTestAccel, DefaultSCV),
		shaperSmoothing(aHigh, tHigh, smoothingTestAccel, DefaultSCV))
}

func TestFindMaxAccelMatchesSmoothingTarget(t *testing.T) {
	A, T := ByName("zv").Init(50.0, DefaultDampingRatio)

	maxAccel := findMaxAccel(A, T, DefaultSCV)
	require.Greater(t, maxAccel, 0.0)

	assert.LessOrEqual(t, shaperSmoothing(A, T, maxAccel, DefaultSCV), targetSmoothing+1e-6)
	assert.Greater(t, shaperSmoothing(A, T, maxAccel*1.05, DefaultSCV), targetSmoothing)
}

func TestShaperResponseCancelsTargetFrequency(t *testing.T) {
	A, T := ByName("zv").Init(50.0, DefaultDampingRatio)

	freqs := []float64{10, 30, 50, 70, 100}
	vals := shaperResponse(A, T, DefaultDampingRatio, freqs)
	require.Len(t, vals, len(freqs))

	// The response at the tuned frequency is far below the response at
	// frequencies the filter was not built for.
	atTarget := vals[2]
	assert.Less(t, atTarget, 0.05)
	assert.Less(t, atTarget, vals[0]/5)
}

func TestBackends(t *testing.T) {
	assert.False(t, ResolveBackend(false).ReducedAccuracy())
	assert.True(t, ResolveBackend(true).ReducedAccuracy())

	// The legacy backend still produces a usable recommendation.
	best, _, err := ResolveBackend(true).FindBestShaper(resonanceData(50.0, 4.0), Options{
		DampingRatio: 0.2,
		SCV:          8.0,
	})
	require.NoError(t, err)
	assert.NotNil(t, best)
}
