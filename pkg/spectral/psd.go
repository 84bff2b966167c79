package spectral

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/printmetrics/resotune/pkg/accel"
	"github.com/printmetrics/resotune/pkg/logging"
)

const (
	// MinFreq is the lower bound of the analysis band. Content below it is
	// dominated by the test movement itself, not by resonances.
	MinFreq = 5.0
	// MaxFreq is the upper bound of the analysis band.
	MaxFreq = 200.0

	// psdWindowSeconds sets the nominal Welch segment duration. Fixed so
	// that every analysis shares the same frequency resolution and PSD
	// curves stay comparable across tools.
	psdWindowSeconds = 0.5

	kaiserBeta = 6.0
)

// ErrNoData reports a capture without any usable samples.
var ErrNoData = errors.New("no usable accelerometer samples")

// CalibrationData holds the frequency response of one capture: a shared
// frequency grid with per-axis PSD curves and their sum.
type CalibrationData struct {
	Name     string
	FreqBins []float64
	PsdSum   []float64
	PsdX     []float64
	PsdY     []float64
	PsdZ     []float64
}

// PSD returns the curve for the requested axis; any other value ("all",
// "sum", "") returns the summed curve.
func (cd *CalibrationData) PSD(axis string) []float64 {
	switch axis {
	case "x":
		return cd.PsdX
	case "y":
		return cd.PsdY
	case "z":
		return cd.PsdZ
	default:
		return cd.PsdSum
	}
}

// NormalizeToFrequencies rescales the PSD curves for shaper fitting:
// divides by frequency (with a small bias against div-by-zero) and tapers
// the noisy region below 2x MinFreq.
func (cd *CalibrationData) NormalizeToFrequencies() {
	for _, psd := range [][]float64{cd.PsdSum, cd.PsdX, cd.PsdY, cd.PsdZ} {
		if psd == nil {
			continue
		}
		for i := range psd {
			f := cd.FreqBins[i]
			psd[i] /= f + 0.1
			if f < 2.0*MinFreq {
				x := 2.0 * MinFreq / (f + 0.1)
				psd[i] *= math.Exp(-x*x + 1.0)
			}
		}
	}
}

// Trimmed returns a copy restricted to frequencies <= maxFreq.
func (cd *CalibrationData) Trimmed(maxFreq float64) *CalibrationData {
	n := 0
	for _, f := range cd.FreqBins {
		if f > maxFreq {
			break
		}
		n++
	}
	out := &CalibrationData{Name: cd.Name}
	out.FreqBins = append([]float64(nil), cd.FreqBins[:n]...)
	out.PsdSum = append([]float64(nil), cd.PsdSum[:n]...)
	out.PsdX = append([]float64(nil), cd.PsdX[:n]...)
	out.PsdY = append([]float64(nil), cd.PsdY[:n]...)
	out.PsdZ = append([]float64(nil), cd.PsdZ[:n]...)
	return out
}

// Processor turns raw accelerometer captures into frequency-domain data.
// Stateless apart from its logger; safe to share across analyses.
type Processor struct {
	logger logging.Logger
}

// NewProcessor creates a spectral processor.
func NewProcessor() *Processor {
	return &Processor{
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_processor",
		}),
	}
}

// ProcessAccelerometerData computes a Welch PSD estimate per axis plus the
// summed curve. The nominal segment length is psdWindowSeconds of samples
// rounded up to a power of two; shorter captures degrade to a smaller
// segment instead of failing.
func (p *Processor) ProcessAccelerometerData(m *accel.Measurement) (*CalibrationData, error) {
	if m == nil || len(m.Samples) == 0 {
		return nil, fmt.Errorf("measurement %q: %w", nameOf(m), ErrNoData)
	}

	fs := m.SampleRate()
	if fs <= 0 {
		return nil, fmt.Errorf("measurement %q has no time span: %w", m.Name, ErrNoData)
	}

	n := len(m.Samples)
	nfft := nextPowerOf2(int(fs * psdWindowSeconds))
	if nfft > n {
		// Short recording: degrade the resolution rather than fail.
		nfft = prevPowerOf2(n)
		p.logger.Warn("Capture shorter than nominal PSD window, degrading resolution", logging.Fields{
			"measurement": m.Name,
			"samples":     n,
			"window":      nfft,
		})
	}
	if nfft < 2 {
		return nil, fmt.Errorf("measurement %q too short for spectral analysis: %w", m.Name, ErrNoData)
	}

	w := newWelch(nfft, fs)
	freqs := w.freqBins()
	psdX := w.estimate(m.Axis("x"))
	psdY := w.estimate(m.Axis("y"))
	psdZ := w.estimate(m.Axis("z"))

	psdSum := make([]float64, len(psdX))
	for i := range psdSum {
		psdSum[i] = psdX[i] + psdY[i] + psdZ[i]
	}

	p.logger.Debug("Computed PSD", logging.Fields{
		"measurement": m.Name,
		"sample_rate": fs,
		"window":      nfft,
		"freq_bins":   len(freqs),
	})

	return &CalibrationData{
		Name:     m.Name,
		FreqBins: freqs,
		PsdSum:   psdSum,
		PsdX:     psdX,
		PsdY:     psdY,
		PsdZ:     psdZ,
	}, nil
}

// welch implements Welch's method with a Kaiser window and 50% overlap.
type welch struct {
	nfft   int
	fs     float64
	fft    *fourier.FFT
	window []float64
	scale  float64
}

func newWelch(nfft int, fs float64) *welch {
	window := kaiserWindow(nfft, kaiserBeta)
	var sumSq float64
	for _, v := range window {
		sumSq += v * v
	}
	return &welch{
		nfft:   nfft,
		fs:     fs,
		fft:    fourier.NewFFT(nfft),
		window: window,
		scale:  1.0 / sumSq,
	}
}

func (w *welch) freqBins() []float64 {
	numBins := w.nfft/2 + 1
	freqs := make([]float64, numBins)
	df := w.fs / float64(w.nfft)
	for i := range freqs {
		freqs[i] = float64(i) * df
	}
	return freqs
}

// estimate averages the windowed periodograms of all 50%-overlapped
// segments. Each segment is detrended by its own mean before windowing.
func (w *welch) estimate(x []float64) []float64 {
	numBins := w.nfft/2 + 1
	acc := make([]float64, numBins)

	step := w.nfft / 2
	numSegments := 0
	buf := make([]float64, w.nfft)
	for start := 0; start+w.nfft <= len(x); start += step {
		segment := x[start : start+w.nfft]

		var mean float64
		for _, v := range segment {
			mean += v
		}
		mean /= float64(len(segment))

		for i := range buf {
			buf[i] = w.window[i] * (segment[i] - mean)
		}

		coeffs := w.fft.Coefficients(nil, buf)
		for i := 0; i < numBins; i++ {
			acc[i] += real(coeffs[i])*real(coeffs[i]) + imag(coeffs[i])*imag(coeffs[i])
		}
		numSegments++
	}

	psd := make([]float64, numBins)
	if numSegments == 0 {
		return psd
	}
	for i := range psd {
		psd[i] = acc[i] * w.scale / (w.fs * float64(numSegments))
		// One-sided spectrum: double everything except DC and Nyquist.
		if i > 0 && i < numBins-1 {
			psd[i] *= 2.0
		}
	}
	return psd
}

func nameOf(m *accel.Measurement) string {
	if m == nil {
		return "unknown"
	}
	return m.Name
}
