package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/printmetrics/resotune/pkg/accel"
)

// toneCapture builds a capture holding a mix of X-axis tones.
func toneCapture(name string, tones map[float64]float64, fs, duration float64) *accel.Measurement {
	n := int(fs * duration)
	m := &accel.Measurement{Name: name}
	for i := 0; i < n; i++ {
		ts := float64(i) / fs
		var x float64
		for freq, amp := range tones {
			x += amp * math.Sin(2*math.Pi*freq*ts)
		}
		m.Samples = append(m.Samples, accel.Sample{Time: ts, X: x})
	}
	return m
}

type BeltsComputationSuite struct {
	suite.Suite
	beltA *accel.Measurement
	beltB *accel.Measurement
}

func (s *BeltsComputationSuite) SetupTest() {
	tones := map[float64]float64{45.0: 1.0, 85.0: 0.8}
	s.beltA = toneCapture("belt_A", tones, 1600.0, 2.0)
	s.beltB = toneCapture("belt_B", tones, 1600.0, 2.0)
}

func (s *BeltsComputationSuite) TestIdenticalBeltsScoreExcellent() {
	comp := NewBeltsComputation([]*accel.Measurement{s.beltA, s.beltB}, BeltsParams{
		Kinematics: "corexy",
	})

	result, err := comp.Compute()
	s.Require().NoError(err)

	belts, ok := result.(*BeltsResult)
	s.Require().True(ok)

	s.Equal("A (axis 1,-1)", belts.Signal1Belt)
	s.Equal("B (axis 1, 1)", belts.Signal2Belt)

	s.Len(belts.Signal1.Peaks, 2)
	s.Len(belts.Signal2.Peaks, 2)
	s.Len(belts.Signal1.PairedPeaks, 2)
	s.Empty(belts.Signal1.UnpairedPeaks)
	s.Empty(belts.Signal2.UnpairedPeaks)

	s.Greater(belts.SimilarityFactor, 99.0)
	s.Require().NotNil(belts.Health)
	s.Greater(belts.Health.MHI, 95.0)
	s.Equal("Excellent mechanical health", belts.Health.Label)

	data := belts.PlotData()
	s.Contains(data, "similarity_factor")
	s.Contains(data, "mhi")
}

func (s *BeltsComputationSuite) TestAsymmetricKinematicsSkipsHealth() {
	comp := NewBeltsComputation([]*accel.Measurement{s.beltA, s.beltB}, BeltsParams{
		Kinematics: "cartesian",
	})

	result, err := comp.Compute()
	s.Require().NoError(err)

	belts := result.(*BeltsResult)
	s.Nil(belts.Health)
	s.Zero(belts.SimilarityFactor)
	s.NotContains(belts.PlotData(), "mhi")
}

func (s *BeltsComputationSuite) TestWrongMeasurementCountFails() {
	extra := toneCapture("belt_C", map[float64]float64{45.0: 1.0}, 1600.0, 1.0)
	comp := NewBeltsComputation([]*accel.Measurement{s.beltA, s.beltB, extra}, BeltsParams{
		Kinematics: "corexy",
	})

	_, err := comp.Compute()
	s.Require().Error(err)

	var cardErr *CardinalityError
	s.Require().ErrorAs(err, &cardErr)
	s.Equal(2, cardErr.Want)
	s.Equal(3, cardErr.Got)
	s.Contains(err.Error(), "belt_A")
	s.Contains(err.Error(), "belt_B")
	s.Contains(err.Error(), "belt_C")
}

func (s *BeltsComputationSuite) TestCommonGridSpansRequestedBand() {
	comp := NewBeltsComputation([]*accel.Measurement{s.beltA, s.beltB}, BeltsParams{
		Kinematics: "corexy",
		MaxFreq:    150.0,
	})

	result, err := comp.Compute()
	s.Require().NoError(err)

	belts := result.(*BeltsResult)
	s.Len(belts.Signal1.Freqs, 500)
	s.Zero(belts.Signal1.Freqs[0])
	s.InDelta(150.0, belts.Signal1.Freqs[499], 1e-9)
	s.Equal(belts.Signal1.Freqs, belts.Signal2.Freqs)
}

func TestBeltsComputationSuite(t *testing.T) {
	suite.Run(t, new(BeltsComputationSuite))
}
