package accel

// Sample is a single accelerometer reading.
type Sample struct {
	Time float64 `json:"time"`
	X    float64 `json:"accel_x"`
	Y    float64 `json:"accel_y"`
	Z    float64 `json:"accel_z"`
}

// Measurement is one named accelerometer capture. Samples are ordered by
// time and never mutated after loading; analysis code receives read-only
// references.
type Measurement struct {
	Name    string   `json:"name"`
	Samples []Sample `json:"samples"`
}

// SampleRate estimates the sampling frequency from the capture timestamps.
// Returns 0 when the capture holds fewer than two samples.
func (m *Measurement) SampleRate() float64 {
	n := len(m.Samples)
	if n < 2 {
		return 0
	}
	span := m.Samples[n-1].Time - m.Samples[0].Time
	if span <= 0 {
		return 0
	}
	return float64(n-1) / span
}

// Axis extracts one column of the capture: "time", "x", "y" or "z".
func (m *Measurement) Axis(axis string) []float64 {
	out := make([]float64, len(m.Samples))
	for i, s := range m.Samples {
		switch axis {
		case "time":
			out[i] = s.Time
		case "x":
			out[i] = s.X
		case "y":
			out[i] = s.Y
		default:
			out[i] = s.Z
		}
	}
	return out
}

// Usable filters out measurements without samples. Hosts occasionally hand
// over captures whose sample payload was dropped; those are skipped rather
// than treated as an error.
func Usable(measurements []*Measurement) []*Measurement {
	out := make([]*Measurement, 0, len(measurements))
	for _, m := range measurements {
		if m == nil || len(m.Samples) == 0 {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Names returns the measurement names in order, "unknown" for nil entries.
func Names(measurements []*Measurement) []string {
	names := make([]string, len(measurements))
	for i, m := range measurements {
		if m == nil || m.Name == "" {
			names[i] = "unknown"
			continue
		}
		names[i] = m.Name
	}
	return names
}
