package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gaussianResonance builds a single smooth resonance centered on fr.
func gaussianResonance(fr, sigma float64) ([]float64, []float64) {
	var freqs, psd []float64
	for f := 0.0; f <= 200.0; f += 0.5 {
		freqs = append(freqs, f)
		d := (f - fr) / sigma
		psd = append(psd, math.Exp(-0.5*d*d))
	}
	return psd, freqs
}

func TestComputeMechanicalParameters(t *testing.T) {
	psd, freqs := gaussianResonance(50.0, 5.0)

	params := ComputeMechanicalParameters(psd, freqs)

	assert.InDelta(t, 50.0, params.ResonantFreq, 0.5)
	require.True(t, params.HasDamping)
	assert.Greater(t, params.DampingRatio, 0.01)
	assert.Less(t, params.DampingRatio, 0.3)
	assert.Greater(t, params.Bandwidth, 0.0)
}

func TestComputeMechanicalParametersNarrowerPeakMeansLessDamping(t *testing.T) {
	narrowPsd, freqs := gaussianResonance(50.0, 2.0)
	widePsd, _ := gaussianResonance(50.0, 10.0)

	narrow := ComputeMechanicalParameters(narrowPsd, freqs)
	wide := ComputeMechanicalParameters(widePsd, freqs)

	require.True(t, narrow.HasDamping)
	require.True(t, wide.HasDamping)
	assert.Less(t, narrow.DampingRatio, wide.DampingRatio)
}

func TestComputeMechanicalParametersUnbracketedPeak(t *testing.T) {
	// Monotonic curve: the half-power point exists on one side only, so the
	// damping ratio is reported unavailable.
	freqs := []float64{10, 20, 30, 40}
	psd := []float64{0.1, 0.4, 0.8, 1.0}

	params := ComputeMechanicalParameters(psd, freqs)

	assert.Equal(t, 40.0, params.ResonantFreq)
	assert.False(t, params.HasDamping)
}

func TestComputeMechanicalParametersFlatSignal(t *testing.T) {
	// A stuck or stationary sensor produces an all-zero PSD. There is no
	// resonance to bracket, so the damping ratio is unavailable.
	freqs := []float64{10, 20, 30, 40, 50}
	psd := []float64{0, 0, 0, 0, 0}

	params := ComputeMechanicalParameters(psd, freqs)

	assert.Equal(t, 10.0, params.ResonantFreq)
	assert.False(t, params.HasDamping)
	assert.Zero(t, params.DampingRatio)
	assert.Zero(t, params.Bandwidth)
}

func TestComputeMechanicalParametersEmptyInput(t *testing.T) {
	params := ComputeMechanicalParameters(nil, nil)
	assert.Zero(t, params.ResonantFreq)
	assert.False(t, params.HasDamping)
}
