package analysis

import "math"

const (
	// idealPeakCount: a healthy belt pair shows at most two shared
	// resonance peaks; more dilute the score.
	idealPeakCount = 2
	// unpairedPeakWeight scales the penalty of each unmatched peak by its
	// relative amplitude.
	unpairedPeakWeight = 30.0
)

// HealthScore is the synthesized belt-drive health verdict.
type HealthScore struct {
	// MHI is the mechanical health indicator, 0-100.
	MHI float64
	// Label is the human-readable classification of MHI.
	Label string
}

var healthRanges = []struct {
	lower, upper float64
	label        string
}{
	{70, 100, "Excellent mechanical health"},
	{55, 70, "Good mechanical health"},
	{45, 55, "Acceptable mechanical health"},
	{30, 45, "Potential signs of a mechanical issue"},
	{15, 30, "Likely a mechanical issue"},
	{0, 15, "Mechanical issue detected"},
}

// ScoreMechanicalHealth converts the PSD similarity of two belt signals
// and their peak pairing outcome into a 0-100 indicator with a label.
//
// The similarity percentage is the starting point; it is scaled down when
// more than idealPeakCount shared resonances exist, then reduced for every
// unmatched peak in proportion to its amplitude against the strongest
// response of either signal.
func ScoreMechanicalHealth(similarityPct float64, signal1, signal2 *SignalData) HealthScore {
	mhi := clamp(similarityPct, 0, 100)

	pairedCount := len(signal1.PairedPeaks)
	if pairedCount >= idealPeakCount {
		mhi *= float64(idealPeakCount) / float64(pairedCount)
	}

	maxPsd := math.Max(maxOf(signal1.Psd), maxOf(signal2.Psd))
	if maxPsd > 0 {
		var penalty float64
		for _, p := range signal1.UnpairedPeaks {
			penalty += signal1.Psd[p] / maxPsd * unpairedPeakWeight
		}
		for _, p := range signal2.UnpairedPeaks {
			penalty += signal2.Psd[p] / maxPsd * unpairedPeakWeight
		}
		mhi -= penalty
	}

	mhi = clamp(mhi, 0, 100)
	return HealthScore{MHI: mhi, Label: healthLabel(mhi)}
}

func healthLabel(mhi float64) string {
	mhi = clamp(mhi, 1, 100)
	for _, r := range healthRanges {
		if r.lower < mhi && mhi <= r.upper {
			return r.label
		}
	}
	return "Unknown mechanical health"
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func maxOf(values []float64) float64 {
	var m float64
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}
