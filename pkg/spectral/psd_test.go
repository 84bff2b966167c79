package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/printmetrics/resotune/pkg/accel"
)

// sineCapture builds a capture vibrating on the X axis at the given
// frequency.
func sineCapture(name string, freq, fs, duration float64) *accel.Measurement {
	n := int(fs * duration)
	m := &accel.Measurement{Name: name}
	for i := 0; i < n; i++ {
		ts := float64(i) / fs
		m.Samples = append(m.Samples, accel.Sample{
			Time: ts,
			X:    math.Sin(2 * math.Pi * freq * ts),
		})
	}
	return m
}

func TestProcessAccelerometerDataLocatesResonance(t *testing.T) {
	p := NewProcessor()

	// 50 Hz lands exactly on a frequency bin at fs=1600 and nfft=1024.
	capture := sineCapture("resonance", 50.0, 1600.0, 2.0)
	calib, err := p.ProcessAccelerometerData(capture)
	require.NoError(t, err)
	require.NotEmpty(t, calib.FreqBins)
	require.Len(t, calib.PsdSum, len(calib.FreqBins))

	peak := floats.MaxIdx(calib.PsdSum)
	assert.InDelta(t, 50.0, calib.FreqBins[peak], 2.0)

	// All the energy is on the X axis.
	assert.Equal(t, calib.PsdX[peak], calib.PSD("x")[peak])
	assert.Less(t, calib.PsdY[peak], calib.PsdX[peak]/1000)
	assert.Less(t, calib.PsdZ[peak], calib.PsdX[peak]/1000)
}

func TestProcessAccelerometerDataShortCaptureDegrades(t *testing.T) {
	p := NewProcessor()

	// 100 samples at 1600 Hz is well below the nominal 0.5 s window; the
	// processor degrades the segment length instead of failing.
	capture := sineCapture("short", 50.0, 1600.0, 100.0/1600.0)
	calib, err := p.ProcessAccelerometerData(capture)
	require.NoError(t, err)
	assert.Equal(t, 64/2+1, len(calib.FreqBins))
}

func TestProcessAccelerometerDataRejectsEmptyCapture(t *testing.T) {
	p := NewProcessor()

	_, err := p.ProcessAccelerometerData(&accel.Measurement{Name: "empty"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = p.ProcessAccelerometerData(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestNormalizeToFrequenciesTapersLowEnd(t *testing.T) {
	cd := &CalibrationData{
		FreqBins: []float64{1, 5, 50, 100},
		PsdSum:   []float64{1, 1, 1, 1},
	}
	cd.NormalizeToFrequencies()

	// Below 2x MinFreq the taper crushes the test-movement noise.
	assert.Less(t, cd.PsdSum[0], 1e-6)
	// Higher frequencies keep the plain 1/f weighting.
	assert.InDelta(t, 1.0/50.1, cd.PsdSum[2], 1e-9)
	assert.InDelta(t, 1.0/100.1, cd.PsdSum[3], 1e-9)
}

func TestTrimmedRestrictsBand(t *testing.T) {
	cd := &CalibrationData{
		FreqBins: []float64{0, 50, 100, 150, 200, 250},
		PsdSum:   []float64{1, 2, 3, 4, 5, 6},
		PsdX:     []float64{1, 2, 3, 4, 5, 6},
		PsdY:     []float64{1, 2, 3, 4, 5, 6},
		PsdZ:     []float64{1, 2, 3, 4, 5, 6},
	}

	out := cd.Trimmed(200)
	assert.Equal(t, []float64{0, 50, 100, 150, 200}, out.FreqBins)
	assert.Len(t, out.PsdSum, 5)

	// The original is untouched.
	assert.Len(t, cd.FreqBins, 6)
}

func TestKaiserWindowShape(t *testing.T) {
	w := kaiserWindow(64, 6.0)
	require.Len(t, w, 64)

	// Symmetric, peaked in the middle, tapered at the edges.
	for i := 0; i < 32; i++ {
		assert.InDelta(t, w[i], w[63-i], 1e-12)
	}
	mid := floats.MaxIdx(w)
	assert.True(t, mid == 31 || mid == 32)
	assert.Less(t, w[0], 0.05)
}
