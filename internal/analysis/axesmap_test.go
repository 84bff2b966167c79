package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printmetrics/resotune/pkg/accel"
)

// probeCapture builds a straight move seen on one sensor axis: accelerate
// for the first half, decelerate for the second. sign flips the direction.
func probeCapture(name string, axis int, sign float64) *accel.Measurement {
	const (
		fs        = 200.0
		moveAccel = 100.0
	)
	m := &accel.Measurement{Name: name}
	n := int(fs)
	for i := 0; i < n; i++ {
		ts := float64(i) / fs
		a := float64(moveAccel)
		if i >= n/2 {
			a = -moveAccel
		}
		s := accel3(axis, sign*a)
		s.Time = ts
		m.Samples = append(m.Samples, s)
	}
	return m
}

func accel3(axis int, value float64) accel.Sample {
	switch axis {
	case 0:
		return accel.Sample{X: value}
	case 1:
		return accel.Sample{Y: value}
	default:
		return accel.Sample{Z: value}
	}
}

func TestAxesMapComputationDetectsOrientation(t *testing.T) {
	measurements := []*accel.Measurement{
		probeCapture("axemap_X", 0, 1),  // machine X maps to sensor +x
		probeCapture("axemap_Y", 1, -1), // machine Y maps to sensor -y
		probeCapture("axemap_Z", 2, 1),  // machine Z maps to sensor +z
	}

	comp := NewAxesMapComputation(measurements, AxesMapParams{
		Accel:         1000.0,
		SegmentLength: 30.0,
	})
	result, err := comp.Compute()
	require.NoError(t, err)

	res, ok := result.(*AxesMapResult)
	require.True(t, ok)

	assert.Equal(t, "x, -y, z", res.AxesMap)

	require.Len(t, res.DirectionVectors, 3)
	require.Len(t, res.AngleErrors, 3)
	for _, e := range res.AngleErrors {
		assert.Less(t, e, 5.0)
	}

	require.Len(t, res.TotalNoise, 3)
	require.Len(t, res.TotalG, 3)
	assert.Equal(t, "Extremely clean signal", res.NoiseLabel)

	assert.Contains(t, res.PlotData(), "axes_map")
}

func TestAxesMapComputationWrongCount(t *testing.T) {
	measurements := []*accel.Measurement{
		probeCapture("axemap_X", 0, 1),
		probeCapture("axemap_Y", 1, 1),
	}

	comp := NewAxesMapComputation(measurements, AxesMapParams{})
	_, err := comp.Compute()
	require.Error(t, err)

	var cardErr *CardinalityError
	require.ErrorAs(t, err, &cardErr)
	assert.Equal(t, 3, cardErr.Want)
	assert.Equal(t, 2, cardErr.Got)
}

func TestAxesMapComputationRejectsStationaryCapture(t *testing.T) {
	still := &accel.Measurement{Name: "still"}
	for i := 0; i < 100; i++ {
		still.Samples = append(still.Samples, accel.Sample{Time: float64(i) / 200.0})
	}

	measurements := []*accel.Measurement{still, still, still}
	comp := NewAxesMapComputation(measurements, AxesMapParams{})

	_, err := comp.Compute()
	assert.Error(t, err)
}
