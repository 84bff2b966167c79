package analysis

import "github.com/printmetrics/resotune/pkg/accel"

// Metadata carries the common header of every computation result.
type Metadata struct {
	Title          string
	Version        string
	AdditionalInfo map[string]any
}

// Result is the contract between a computation and the rendering
// collaborator: an immutable value exposing its plottable content as a
// flat key/value extraction.
type Result interface {
	PlotData() map[string]any
}

// Computation is one configured analysis, ready to run. Compute is
// stateless and side-effect free apart from logging; concurrent calls on
// separate instances are safe.
type Computation interface {
	Compute() (Result, error)
}

// PairedPeak is one side of a matched peak: its index on the shared
// frequency grid plus the resolved frequency and amplitude.
type PairedPeak struct {
	Index int
	Freq  float64
	Psd   float64
}

// PeakPair couples one peak from each compared signal.
type PeakPair struct {
	First  PairedPeak
	Second PairedPeak
}

// SignalData is the frequency-domain view of one measurement on a grid
// shared with every signal it is compared against.
type SignalData struct {
	Freqs []float64
	Psd   []float64
	// Peaks holds indices into Freqs/Psd, ascending.
	Peaks []int
	// PairedPeaks and UnpairedPeaks are populated by the pairing engine.
	PairedPeaks   []PeakPair
	UnpairedPeaks []int
}

func measurementNames(measurements []*accel.Measurement) []string {
	return accel.Names(measurements)
}
