package analysis

import (
	"fmt"

	"github.com/printmetrics/resotune/pkg/accel"
	"github.com/printmetrics/resotune/pkg/logging"
	"github.com/printmetrics/resotune/pkg/spectral"
)

// StaticFrequencyParams configure a static frequency excitation analysis.
type StaticFrequencyParams struct {
	// Freq is the frequency the toolhead was excited at.
	Freq float64
	// Duration of the excitation in seconds; 0 derives it from the capture.
	Duration   float64
	AccelPerHz float64
	MaxFreq    float64
	Version    string
}

// StaticFrequencyResult is the time-frequency view of a sustained
// excitation at one fixed frequency.
type StaticFrequencyResult struct {
	Metadata     Metadata
	Measurements []*accel.Measurement
	Spectrogram  *spectral.Spectrogram
	Freq         float64
	Duration     float64
	AccelPerHz   float64
	MaxFreq      float64
}

// PlotData exposes the result to the rendering collaborator.
func (r *StaticFrequencyResult) PlotData() map[string]any {
	return map[string]any{
		"measurements": r.Measurements,
		"spectrogram":  r.Spectrogram,
		"freq":         r.Freq,
		"duration":     r.Duration,
		"accel_per_hz": r.AccelPerHz,
		"max_freq":     r.MaxFreq,
		"st_version":   r.Metadata.Version,
	}
}

// StaticFrequencyComputation renders the spectral content of a sustained
// single-frequency excitation, used to hunt cross-resonances and to verify
// that an excited frequency actually shows up where expected.
type StaticFrequencyComputation struct {
	measurements []*accel.Measurement
	params       StaticFrequencyParams
	processor    *spectral.Processor
	logger       logging.Logger
}

// NewStaticFrequencyComputation creates a static frequency analysis over
// one capture.
func NewStaticFrequencyComputation(measurements []*accel.Measurement, params StaticFrequencyParams) *StaticFrequencyComputation {
	if params.MaxFreq <= 0 {
		params.MaxFreq = spectral.MaxFreq
	}
	return &StaticFrequencyComputation{
		measurements: measurements,
		params:       params,
		processor:    spectral.NewProcessor(),
		logger: logging.WithFields(logging.Fields{
			"component": "static_frequency_computation",
		}),
	}
}

// Compute runs the analysis.
func (c *StaticFrequencyComputation) Compute() (Result, error) {
	if len(c.measurements) == 0 {
		return nil, &CardinalityError{
			Want:   1,
			Got:    0,
			Names:  nil,
			Reason: "one capture of the maintained excitation",
		}
	}

	usable := accel.Usable(c.measurements)
	if len(usable) == 0 {
		return nil, fmt.Errorf("static frequency analysis: %w", spectral.ErrNoData)
	}
	if len(usable) > 1 {
		c.logger.Warn("Multiple measurements provided, only the first one is used", logging.Fields{
			"measurements": accel.Names(usable),
		})
	}
	capture := usable[0]

	spectrogram, err := c.processor.ComputeSpectrogram(capture)
	if err != nil {
		return nil, err
	}

	duration := c.params.Duration
	if duration <= 0 && len(capture.Samples) > 1 {
		duration = capture.Samples[len(capture.Samples)-1].Time - capture.Samples[0].Time
	}

	c.logger.Info("Static frequency analysis done", logging.Fields{
		"measurement": capture.Name,
		"freq":        c.params.Freq,
		"duration":    duration,
		"frames":      len(spectrogram.TimeBins),
	})

	return &StaticFrequencyResult{
		Metadata: Metadata{
			Title:   "STATIC FREQUENCY HELPER TOOL",
			Version: c.params.Version,
			AdditionalInfo: map[string]any{
				"freq":         c.params.Freq,
				"duration":     duration,
				"accel_per_hz": c.params.AccelPerHz,
			},
		},
		Measurements: c.measurements,
		Spectrogram:  spectrogram,
		Freq:         c.params.Freq,
		Duration:     duration,
		AccelPerHz:   c.params.AccelPerHz,
		MaxFreq:      c.params.MaxFreq,
	}, nil
}
