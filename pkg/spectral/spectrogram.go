package spectral

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"

	"github.com/printmetrics/resotune/pkg/accel"
	"github.com/printmetrics/resotune/pkg/logging"
)

// spectrogramWindowSeconds sets the STFT frame duration. Much shorter than
// the Welch segment so transient content stays visible on the time axis.
const spectrogramWindowSeconds = 0.032

// Spectrogram is a time-frequency power matrix summed over the three axes.
// Power is indexed [time][frequency].
type Spectrogram struct {
	Power    [][]float64
	FreqBins []float64
	TimeBins []float64
}

// TotalEnergyPerFrame sums power over frequency for each time frame,
// weighted by the bin width. Useful for energy consistency checks and for
// the vibration profile energy curves.
func (s *Spectrogram) TotalEnergyPerFrame() []float64 {
	if len(s.FreqBins) < 2 {
		return make([]float64, len(s.TimeBins))
	}
	df := s.FreqBins[1] - s.FreqBins[0]
	out := make([]float64, len(s.Power))
	for t, row := range s.Power {
		var sum float64
		for _, v := range row {
			sum += v
		}
		out[t] = sum * df
	}
	return out
}

// ComputeSpectrogram computes a short-time Fourier transform of the
// capture, magnitude-squared with PSD scaling, summed across the three
// axes. Frames overlap by 50%.
func (p *Processor) ComputeSpectrogram(m *accel.Measurement) (*Spectrogram, error) {
	if m == nil || len(m.Samples) == 0 {
		return nil, fmt.Errorf("measurement %q: %w", nameOf(m), ErrNoData)
	}

	fs := m.SampleRate()
	if fs <= 0 {
		return nil, fmt.Errorf("measurement %q has no time span: %w", m.Name, ErrNoData)
	}

	n := len(m.Samples)
	nfft := nextPowerOf2(int(fs * spectrogramWindowSeconds))
	if nfft > n {
		nfft = prevPowerOf2(n)
	}
	if nfft < 2 {
		return nil, fmt.Errorf("measurement %q too short for spectrogram: %w", m.Name, ErrNoData)
	}

	window := kaiserWindow(nfft, kaiserBeta)
	var sumSq float64
	for _, v := range window {
		sumSq += v * v
	}
	scale := 1.0 / (sumSq * fs)

	numBins := nfft/2 + 1
	step := nfft / 2
	numFrames := (n-nfft)/step + 1

	power := make([][]float64, numFrames)
	timeBins := make([]float64, numFrames)
	t0 := m.Samples[0].Time
	for t := 0; t < numFrames; t++ {
		power[t] = make([]float64, numBins)
		center := t*step + nfft/2
		timeBins[t] = m.Samples[center].Time - t0
	}

	for _, axis := range []string{"x", "y", "z"} {
		signal := m.Axis(axis)

		// Detrend the whole axis by its mean before framing.
		var mean float64
		for _, v := range signal {
			mean += v
		}
		mean /= float64(len(signal))

		buf := make([]float64, nfft)
		for t := 0; t < numFrames; t++ {
			start := t * step
			for i := range buf {
				buf[i] = window[i] * (signal[start+i] - mean)
			}
			spectrum := fft.FFTReal(buf)
			for i := 0; i < numBins; i++ {
				re, im := real(spectrum[i]), imag(spectrum[i])
				pw := (re*re + im*im) * scale
				if i > 0 && i < numBins-1 {
					pw *= 2.0
				}
				power[t][i] += pw
			}
		}
	}

	freqs := make([]float64, numBins)
	df := fs / float64(nfft)
	for i := range freqs {
		freqs[i] = float64(i) * df
	}

	p.logger.Debug("Computed spectrogram", logging.Fields{
		"measurement": m.Name,
		"frames":      numFrames,
		"freq_bins":   numBins,
		"window":      nfft,
	})

	return &Spectrogram{Power: power, FreqBins: freqs, TimeBins: timeBins}, nil
}
