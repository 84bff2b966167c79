package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MechanicalParameters describes the dominant resonance of a PSD curve.
type MechanicalParameters struct {
	// ResonantFreq is the frequency of the strongest response.
	ResonantFreq float64
	// DampingRatio estimated from the half-power bandwidth. Valid only
	// when HasDamping is true.
	DampingRatio float64
	HasDamping   bool
	// PeakIndex is the index of the strongest response in the input.
	PeakIndex int
	Bandwidth float64
}

// ComputeMechanicalParameters estimates the resonant frequency and damping
// ratio of the strongest resonance using the -3 dB (half-power) bandwidth
// method. When the half-power points cannot be bracketed on both sides of
// the peak, the damping ratio is reported as unavailable and callers fall
// back to a default.
func ComputeMechanicalParameters(psd, freqs []float64) MechanicalParameters {
	if len(psd) == 0 || len(psd) != len(freqs) {
		return MechanicalParameters{}
	}

	peakIdx := floats.MaxIdx(psd)
	params := MechanicalParameters{
		ResonantFreq: freqs[peakIdx],
		PeakIndex:    peakIdx,
	}

	// A flat or all-zero curve has no resonance to bracket.
	if psd[peakIdx] <= 0 {
		return params
	}

	halfPower := psd[peakIdx] / math.Sqrt2

	// Walk outwards from the peak to find the half-power crossings, with
	// linear interpolation between the bracketing bins.
	below := -1
	for i := peakIdx; i >= 0; i-- {
		if psd[i] <= halfPower {
			below = i
			break
		}
	}
	above := -1
	for i := peakIdx; i < len(psd); i++ {
		if psd[i] <= halfPower {
			above = i
			break
		}
	}
	if below < 0 || above < 0 {
		return params
	}

	fLow := interpolateCrossing(freqs[below], freqs[below+1], psd[below], psd[below+1], halfPower)
	fHigh := interpolateCrossing(freqs[above-1], freqs[above], psd[above-1], psd[above], halfPower)

	bandwidth := fHigh - fLow
	if bandwidth <= 0 || params.ResonantFreq <= 0 {
		return params
	}

	qFactor := params.ResonantFreq / bandwidth
	params.Bandwidth = bandwidth
	params.DampingRatio = 1.0 / (2.0 * qFactor)
	params.HasDamping = true
	return params
}

func interpolateCrossing(x0, x1, y0, y1, target float64) float64 {
	if y1 == y0 {
		return x0
	}
	return x0 + (target-y0)*(x1-x0)/(y1-y0)
}
