package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// maxPairingDistance caps the dynamic pairing threshold: two resonance
// peaks further than this apart never describe the same mechanical mode.
const maxPairingDistance = 10.0 // Hz

// PairingResult distributes every peak of two compared signals into
// either a matched pair or the unpaired leftovers of its own signal.
type PairingResult struct {
	PairedPeaks    []PeakPair
	UnpairedPeaks1 []int
	UnpairedPeaks2 []int
}

// PairPeaks matches peaks between two signals by frequency proximity.
//
// The acceptance threshold adapts to the data: median + 1.5*IQR of all
// pairwise distances, capped at maxPairingDistance (and equal to the cap
// when either peak set is empty). Matching is greedy on the globally
// closest remaining pair, scanning in ascending index order so that exact
// distance ties resolve deterministically.
func PairPeaks(peaks1 []int, freqs1, psd1 []float64, peaks2 []int, freqs2, psd2 []float64) PairingResult {
	threshold := pairingThreshold(peaks1, freqs1, peaks2, freqs2)

	used1 := make([]bool, len(peaks1))
	used2 := make([]bool, len(peaks2))

	var paired []PeakPair
	for {
		bestDistance := math.Inf(1)
		bestI, bestJ := -1, -1
		for i, p1 := range peaks1 {
			if used1[i] {
				continue
			}
			for j, p2 := range peaks2 {
				if used2[j] {
					continue
				}
				d := math.Abs(freqs1[p1] - freqs2[p2])
				if d < bestDistance {
					bestDistance = d
					bestI, bestJ = i, j
				}
			}
		}
		if bestI < 0 || bestDistance >= threshold {
			break
		}

		used1[bestI] = true
		used2[bestJ] = true
		p1, p2 := peaks1[bestI], peaks2[bestJ]
		paired = append(paired, PeakPair{
			First:  PairedPeak{Index: p1, Freq: freqs1[p1], Psd: psd1[p1]},
			Second: PairedPeak{Index: p2, Freq: freqs2[p2], Psd: psd2[p2]},
		})
	}

	result := PairingResult{PairedPeaks: paired}
	for i, p := range peaks1 {
		if !used1[i] {
			result.UnpairedPeaks1 = append(result.UnpairedPeaks1, p)
		}
	}
	for j, p := range peaks2 {
		if !used2[j] {
			result.UnpairedPeaks2 = append(result.UnpairedPeaks2, p)
		}
	}
	return result
}

func pairingThreshold(peaks1 []int, freqs1 []float64, peaks2 []int, freqs2 []float64) float64 {
	distances := make([]float64, 0, len(peaks1)*len(peaks2))
	for _, p1 := range peaks1 {
		for _, p2 := range peaks2 {
			distances = append(distances, math.Abs(freqs1[p1]-freqs2[p2]))
		}
	}
	if len(distances) == 0 {
		return maxPairingDistance
	}

	sort.Float64s(distances)
	median := stat.Quantile(0.5, stat.LinInterp, distances, nil)
	iqr := stat.Quantile(0.75, stat.LinInterp, distances, nil) -
		stat.Quantile(0.25, stat.LinInterp, distances, nil)

	return math.Min(median+1.5*iqr, maxPairingDistance)
}
