package analysis

import (
	"fmt"
	"sort"

	"github.com/printmetrics/resotune/pkg/accel"
	"github.com/printmetrics/resotune/pkg/shaper"
)

// Type identifies one analysis tool.
type Type string

const (
	TypeBelts           Type = "belts"
	TypeInputShaper     Type = "input_shaper"
	TypeStaticFrequency Type = "static_freq"
	TypeVibrations      Type = "vibrations"
	TypeAxesMap         Type = "axes_map"
)

// Request carries everything a computation could need. Each analysis type
// reads the fields relevant to it and ignores the rest.
type Request struct {
	Measurements []*accel.Measurement
	Version      string

	MaxFreq  float64
	MaxScale int

	// Belts and vibrations.
	Kinematics string

	// Input shaper.
	MaxSmoothing float64
	SCV          float64
	AccelPerHz   float64
	Backend      shaper.Backend

	// Static frequency.
	Freq     float64
	Duration float64

	// Vibrations and axes map.
	Accel         float64
	SegmentLength float64
}

var constructors = map[Type]func(Request) Computation{
	TypeBelts: func(r Request) Computation {
		return NewBeltsComputation(r.Measurements, BeltsParams{
			Kinematics: r.Kinematics,
			MaxFreq:    r.MaxFreq,
			MaxScale:   r.MaxScale,
			Version:    r.Version,
		})
	},
	TypeInputShaper: func(r Request) Computation {
		return NewShaperComputation(r.Measurements, ShaperParams{
			MaxFreq:      r.MaxFreq,
			MaxScale:     r.MaxScale,
			MaxSmoothing: r.MaxSmoothing,
			SCV:          r.SCV,
			AccelPerHz:   r.AccelPerHz,
			Version:      r.Version,
		}, r.Backend)
	},
	TypeStaticFrequency: func(r Request) Computation {
		return NewStaticFrequencyComputation(r.Measurements, StaticFrequencyParams{
			Freq:       r.Freq,
			Duration:   r.Duration,
			AccelPerHz: r.AccelPerHz,
			MaxFreq:    r.MaxFreq,
			Version:    r.Version,
		})
	},
	TypeVibrations: func(r Request) Computation {
		return NewVibrationsComputation(r.Measurements, VibrationsParams{
			Kinematics: r.Kinematics,
			Accel:      r.Accel,
			MaxFreq:    r.MaxFreq,
			Version:    r.Version,
		})
	},
	TypeAxesMap: func(r Request) Computation {
		return NewAxesMapComputation(r.Measurements, AxesMapParams{
			Accel:         r.Accel,
			SegmentLength: r.SegmentLength,
			Version:       r.Version,
		})
	},
}

// New builds the computation for the requested analysis type.
func New(t Type, r Request) (Computation, error) {
	ctor, ok := constructors[t]
	if !ok {
		return nil, fmt.Errorf("unknown analysis type %q (known: %v)", t, Types())
	}
	return ctor(r), nil
}

// Types lists the known analysis types, sorted.
func Types() []Type {
	out := make([]Type, 0, len(constructors))
	for t := range constructors {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
