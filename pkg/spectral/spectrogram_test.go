package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/integrate"
)

func TestComputeSpectrogramShape(t *testing.T) {
	p := NewProcessor()

	capture := sineCapture("steady", 50.0, 1600.0, 2.0)
	sg, err := p.ComputeSpectrogram(capture)
	require.NoError(t, err)

	// fs=1600 and a 32 ms frame give nfft=64.
	require.Len(t, sg.FreqBins, 64/2+1)
	require.NotEmpty(t, sg.Power)
	require.Len(t, sg.TimeBins, len(sg.Power))
	for _, row := range sg.Power {
		require.Len(t, row, len(sg.FreqBins))
	}

	// Time bins are strictly increasing and inside the capture span.
	for i := 1; i < len(sg.TimeBins); i++ {
		assert.Greater(t, sg.TimeBins[i], sg.TimeBins[i-1])
	}
	assert.GreaterOrEqual(t, sg.TimeBins[0], 0.0)
	assert.Less(t, sg.TimeBins[len(sg.TimeBins)-1], 2.0)
}

func TestComputeSpectrogramSteadyExcitationIsStable(t *testing.T) {
	p := NewProcessor()

	capture := sineCapture("steady", 50.0, 1600.0, 2.0)
	sg, err := p.ComputeSpectrogram(capture)
	require.NoError(t, err)

	energies := sg.TotalEnergyPerFrame()
	require.Len(t, energies, len(sg.TimeBins))

	// A constant-amplitude excitation keeps the per-frame energy steady;
	// only the window phase alignment wiggles it.
	var minE, maxE float64
	for i, e := range energies {
		require.Greater(t, e, 0.0)
		if i == 0 || e < minE {
			minE = e
		}
		if e > maxE {
			maxE = e
		}
	}
	assert.Less(t, maxE/minE, 2.0)
}

func TestComputeSpectrogramEnergyMatchesPsdIntegral(t *testing.T) {
	p := NewProcessor()

	// 150 Hz lands on a bin of both the 1024-point Welch segments and the
	// 64-point spectrogram frames at fs=1600.
	capture := sineCapture("steady", 150.0, 1600.0, 2.0)

	calib, err := p.ProcessAccelerometerData(capture)
	require.NoError(t, err)
	psdEnergy := integrate.Trapezoidal(calib.FreqBins, calib.PsdSum)

	sg, err := p.ComputeSpectrogram(capture)
	require.NoError(t, err)
	energies := sg.TotalEnergyPerFrame()
	require.NotEmpty(t, energies)

	var meanFrame float64
	for _, e := range energies {
		meanFrame += e
	}
	meanFrame /= float64(len(energies))

	// A unit sine carries 0.5 of signal power; the PSD integral and the
	// mean per-frame spectrogram energy must both recover it.
	assert.InDelta(t, 0.5, psdEnergy, 0.05)
	assert.InEpsilon(t, psdEnergy, meanFrame, 0.1)
}

func TestComputeSpectrogramRejectsEmptyCapture(t *testing.T) {
	p := NewProcessor()

	_, err := p.ComputeSpectrogram(nil)
	assert.ErrorIs(t, err, ErrNoData)
}
