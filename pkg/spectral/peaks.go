package spectral

// Default peak detection tuning. Callers working on heavily interpolated
// curves (e.g. the 500-point belt comparison grid) widen these.
const (
	DefaultPeakWindow   = 2
	DefaultPeakVicinity = 3
)

// PeakDetector finds local maxima in a 1-D curve above a threshold.
type PeakDetector struct {
	// WindowSize is the half-width (in indices) a candidate must dominate.
	WindowSize int
	// Vicinity merges candidate peaks closer than this many indices,
	// keeping the higher one.
	Vicinity int
}

// NewPeakDetector returns a detector with default tuning.
func NewPeakDetector() *PeakDetector {
	return &PeakDetector{WindowSize: DefaultPeakWindow, Vicinity: DefaultPeakVicinity}
}

// DetectPeaks returns the number of peaks, their indices in ascending
// position order and the corresponding x-axis values. A candidate index is
// a peak iff its value is >= threshold and is the maximum within
// +-WindowSize neighbors. Candidates closer than Vicinity indices are
// merged, keeping the higher one. An empty or all-below-threshold signal
// yields an empty result.
func (d *PeakDetector) DetectPeaks(signal, xAxis []float64, threshold float64) (int, []int, []float64) {
	window := d.WindowSize
	if window <= 0 {
		window = DefaultPeakWindow
	}
	vicinity := d.Vicinity
	if vicinity <= 0 {
		vicinity = DefaultPeakVicinity
	}

	var candidates []int
	for i := range signal {
		if signal[i] < threshold {
			continue
		}
		lo := max(0, i-window)
		hi := min(len(signal), i+window+1)
		isMax := true
		for j := lo; j < hi; j++ {
			if signal[j] > signal[i] {
				isMax = false
				break
			}
		}
		if isMax {
			candidates = append(candidates, i)
		}
	}

	// Merge candidates that crowd each other, keeping the higher one.
	var peaks []int
	for _, c := range candidates {
		if len(peaks) > 0 && c-peaks[len(peaks)-1] < vicinity {
			if signal[c] > signal[peaks[len(peaks)-1]] {
				peaks[len(peaks)-1] = c
			}
			continue
		}
		peaks = append(peaks, c)
	}

	xValues := make([]float64, len(peaks))
	for i, idx := range peaks {
		if idx < len(xAxis) {
			xValues[i] = xAxis[idx]
		}
	}
	return len(peaks), peaks, xValues
}
