package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signalWithPairs(paired int, unpaired []int, psd []float64) *SignalData {
	s := &SignalData{Psd: psd, UnpairedPeaks: unpaired}
	for i := 0; i < paired; i++ {
		s.PairedPeaks = append(s.PairedPeaks, PeakPair{})
	}
	return s
}

func TestScoreMechanicalHealthCleanPair(t *testing.T) {
	psd := []float64{0.2, 1.0, 0.3}
	s1 := signalWithPairs(2, nil, psd)
	s2 := signalWithPairs(2, nil, psd)

	score := ScoreMechanicalHealth(95.0, s1, s2)

	assert.InDelta(t, 95.0, score.MHI, 1e-9)
	assert.Equal(t, "Excellent mechanical health", score.Label)
}

func TestScoreMechanicalHealthExtraPairsDiluteScore(t *testing.T) {
	psd := []float64{0.2, 1.0, 0.3}
	s1 := signalWithPairs(4, nil, psd)
	s2 := signalWithPairs(4, nil, psd)

	score := ScoreMechanicalHealth(90.0, s1, s2)

	assert.InDelta(t, 45.0, score.MHI, 1e-9)
	assert.Equal(t, "Potential signs of a mechanical issue", score.Label)
}

func TestScoreMechanicalHealthUnpairedPeaksPenalize(t *testing.T) {
	psd := []float64{1.0, 0.5}
	s1 := signalWithPairs(0, []int{0}, psd)
	s2 := signalWithPairs(0, nil, psd)

	// One unmatched peak at full amplitude costs the whole 30-point weight.
	score := ScoreMechanicalHealth(80.0, s1, s2)

	assert.InDelta(t, 50.0, score.MHI, 1e-9)
	assert.Equal(t, "Acceptable mechanical health", score.Label)
}

func TestScoreMechanicalHealthBounded(t *testing.T) {
	psd := []float64{1.0, 1.0, 1.0}

	cases := []struct {
		similarity float64
		unpaired   []int
	}{
		{0, nil},
		{100, nil},
		{150, nil},
		{-20, nil},
		{10, []int{0, 1, 2}},
		{100, []int{0, 1, 2}},
	}
	for _, tc := range cases {
		s1 := signalWithPairs(0, tc.unpaired, psd)
		s2 := signalWithPairs(0, tc.unpaired, psd)

		score := ScoreMechanicalHealth(tc.similarity, s1, s2)
		assert.GreaterOrEqual(t, score.MHI, 0.0)
		assert.LessOrEqual(t, score.MHI, 100.0)
		assert.NotEmpty(t, score.Label)
	}
}

func TestHealthLabelRanges(t *testing.T) {
	cases := []struct {
		mhi   float64
		label string
	}{
		{100, "Excellent mechanical health"},
		{80, "Excellent mechanical health"},
		{70.0001, "Excellent mechanical health"},
		{70, "Good mechanical health"},
		{60, "Good mechanical health"},
		{55, "Acceptable mechanical health"},
		{50, "Acceptable mechanical health"},
		{45, "Potential signs of a mechanical issue"},
		{35, "Potential signs of a mechanical issue"},
		{30, "Likely a mechanical issue"},
		{20, "Likely a mechanical issue"},
		{15, "Mechanical issue detected"},
		{5, "Mechanical issue detected"},
		{0, "Mechanical issue detected"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.label, healthLabel(tc.mhi), "mhi=%v", tc.mhi)
	}
}

func TestCardinalityErrorMessage(t *testing.T) {
	err := &CardinalityError{
		Want:   2,
		Got:    3,
		Names:  []string{"belt_A", "belt_B", "belt_C"},
		Reason: "one for each belt",
	}

	msg := err.Error()
	require.Contains(t, msg, "2 measurements")
	require.Contains(t, msg, "3 measurements")
	assert.Contains(t, msg, "one for each belt")
	assert.Contains(t, msg, "belt_A")
	assert.Contains(t, msg, "belt_B")
	assert.Contains(t, msg, "belt_C")
}
