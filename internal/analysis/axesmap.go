package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/printmetrics/resotune/pkg/accel"
	"github.com/printmetrics/resotune/pkg/logging"
	"github.com/printmetrics/resotune/pkg/spectral"
)

const (
	gravity = 9.80665 // m/s^2

	// Noise classification thresholds on the accumulated accelerometer
	// noise, in mm/s^2.
	noiseCleanThreshold = 350.0
	noiseLoudThreshold  = 700.0
)

var machineAxes = []string{"x", "y", "z"}

// AxesMapParams configure an accelerometer orientation detection.
type AxesMapParams struct {
	// Accel is the acceleration of the three probe moves.
	Accel float64
	// SegmentLength is the travel distance of each probe move, in mm.
	SegmentLength float64
	Version       string
}

// AxesMapResult describes how the accelerometer is mounted: which sensor
// axis responds to each machine axis, and how noisy the sensor is.
type AxesMapResult struct {
	Metadata      Metadata
	Measurements  []*accel.Measurement
	Accel         float64
	SegmentLength float64

	// Position holds the double-integrated sensor trajectory of each probe
	// move, [move][sample][xyz].
	Position [][][3]float64
	// DirectionVectors is the normalized net displacement of each move.
	DirectionVectors [][3]float64
	// AngleErrors is the deviation of each move from its nearest sensor
	// axis, in degrees.
	AngleErrors []float64

	// AxesMap is the detected mapping formatted the way the host firmware
	// expects it, e.g. "x, -y, z".
	AxesMap string

	// TotalNoise and TotalG summarize the sensor signal per move: the
	// accumulated noise estimate and the mean measured acceleration in g.
	TotalNoise []float64
	TotalG     []float64
	NoiseLabel string
}

// PlotData exposes the result to the rendering collaborator.
func (r *AxesMapResult) PlotData() map[string]any {
	return map[string]any{
		"measurements":      r.Measurements,
		"accel":             r.Accel,
		"segment_length":    r.SegmentLength,
		"position_data":     r.Position,
		"direction_vectors": r.DirectionVectors,
		"angle_errors":      r.AngleErrors,
		"axes_map":          r.AxesMap,
		"total_noise":       r.TotalNoise,
		"total_g":           r.TotalG,
		"noise_label":       r.NoiseLabel,
		"st_version":        r.Metadata.Version,
	}
}

// AxesMapComputation detects the accelerometer mounting orientation from
// three straight probe moves, one along each machine axis in order.
type AxesMapComputation struct {
	measurements []*accel.Measurement
	params       AxesMapParams
	logger       logging.Logger
}

// NewAxesMapComputation creates an orientation detection over exactly
// three captures, ordered X, Y, Z.
func NewAxesMapComputation(measurements []*accel.Measurement, params AxesMapParams) *AxesMapComputation {
	return &AxesMapComputation{
		measurements: measurements,
		params:       params,
		logger: logging.WithFields(logging.Fields{
			"component": "axes_map_computation",
		}),
	}
}

// Compute runs the detection.
func (c *AxesMapComputation) Compute() (Result, error) {
	if len(c.measurements) != 3 {
		return nil, &CardinalityError{
			Want:   3,
			Got:    len(c.measurements),
			Names:  measurementNames(c.measurements),
			Reason: "one for each machine axis",
		}
	}

	usable := accel.Usable(c.measurements)
	if len(usable) != 3 {
		return nil, fmt.Errorf("axes map detection: %w", spectral.ErrNoData)
	}

	result := &AxesMapResult{
		Metadata: Metadata{
			Title:   "AXES MAP CALIBRATION TOOL",
			Version: c.params.Version,
			AdditionalInfo: map[string]any{
				"accel":          c.params.Accel,
				"segment_length": c.params.SegmentLength,
			},
		},
		Measurements:  c.measurements,
		Accel:         c.params.Accel,
		SegmentLength: c.params.SegmentLength,
	}

	sensorAxes := make([]string, 3)
	for i, m := range usable {
		move, err := analyzeProbeMove(m)
		if err != nil {
			return nil, fmt.Errorf("probe move along %s: %w", machineAxes[i], err)
		}

		result.Position = append(result.Position, move.position)
		result.DirectionVectors = append(result.DirectionVectors, move.direction)
		result.AngleErrors = append(result.AngleErrors, move.angleError)
		result.TotalNoise = append(result.TotalNoise, move.noise)
		result.TotalG = append(result.TotalG, move.meanG)
		sensorAxes[i] = move.sensorAxis

		c.logger.Debug("Analyzed probe move", logging.Fields{
			"machine_axis": machineAxes[i],
			"sensor_axis":  move.sensorAxis,
			"angle_error":  move.angleError,
			"noise":        move.noise,
		})
	}

	result.AxesMap = fmt.Sprintf("%s, %s, %s", sensorAxes[0], sensorAxes[1], sensorAxes[2])
	result.NoiseLabel = noiseLabel(mean(result.TotalNoise))

	c.logger.Info("Axes map detected", logging.Fields{
		"axes_map":    result.AxesMap,
		"noise_label": result.NoiseLabel,
	})
	return result, nil
}

type probeMove struct {
	position   [][3]float64
	direction  [3]float64
	sensorAxis string
	angleError float64
	noise      float64
	meanG      float64
}

// analyzeProbeMove integrates one straight move twice to recover the
// sensor-frame trajectory and reads the dominant displacement axis off the
// normalized net displacement.
func analyzeProbeMove(m *accel.Measurement) (*probeMove, error) {
	if len(m.Samples) < 3 {
		return nil, spectral.ErrNoData
	}

	times := m.Axis("time")
	axes := [3][]float64{m.Axis("x"), m.Axis("y"), m.Axis("z")}

	var meanG float64
	for _, s := range m.Samples {
		meanG += math.Sqrt(s.X*s.X+s.Y*s.Y+s.Z*s.Z) / gravity
	}
	meanG /= float64(len(m.Samples))

	var noise float64
	detrended := [3][]float64{}
	for k, signal := range axes {
		// Removing the mean strips gravity and sensor bias; what is left is
		// the move acceleration plus noise.
		mu := mean(signal)
		d := make([]float64, len(signal))
		for i, v := range signal {
			d[i] = v - mu
		}
		detrended[k] = d
		noise += stat.StdDev(d, nil)
	}

	position := make([][3]float64, len(times))
	var net [3]float64
	for k := range detrended {
		velocity := cumTrapz(times, detrended[k])
		pos := cumTrapz(times, velocity)
		for i, v := range pos {
			position[i][k] = v
		}
		net[k] = pos[len(pos)-1]
	}

	norm := math.Sqrt(net[0]*net[0] + net[1]*net[1] + net[2]*net[2])
	if norm == 0 {
		return nil, fmt.Errorf("measurement %q shows no net displacement", m.Name)
	}
	var direction [3]float64
	for k := range net {
		direction[k] = net[k] / norm
	}

	dominant := 0
	for k := 1; k < 3; k++ {
		if math.Abs(direction[k]) > math.Abs(direction[dominant]) {
			dominant = k
		}
	}
	sensorAxis := machineAxes[dominant]
	if direction[dominant] < 0 {
		sensorAxis = "-" + sensorAxis
	}

	// Angle between the measured direction and its nearest sensor axis.
	cos := clamp(math.Abs(direction[dominant]), -1, 1)
	angleError := math.Acos(cos) * 180.0 / math.Pi

	return &probeMove{
		position:   position,
		direction:  direction,
		sensorAxis: sensorAxis,
		angleError: angleError,
		noise:      noise,
		meanG:      meanG,
	}, nil
}

// cumTrapz is the cumulative trapezoidal integral of y over x, anchored
// at zero.
func cumTrapz(x, y []float64) []float64 {
	out := make([]float64, len(y))
	for i := 1; i < len(y); i++ {
		out[i] = out[i-1] + 0.5*(y[i]+y[i-1])*(x[i]-x[i-1])
	}
	return out
}

func noiseLabel(avgNoise float64) string {
	switch {
	case avgNoise < noiseCleanThreshold:
		return "Extremely clean signal"
	case avgNoise < noiseLoudThreshold:
		return "Clean signal"
	default:
		return "Noisy signal, detection may be unreliable"
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}
