package shaper

import "math"

const (
	// vibrationReduction is the amplitude reduction factor the shaper
	// families are designed for. EI-family tolerances derive from it.
	vibrationReduction = 20.0

	// DefaultDampingRatio is assumed when the mechanical damping ratio of
	// the machine cannot be measured.
	DefaultDampingRatio = 0.1
)

// Config describes one shaper filter type: its name, the lowest resonant
// frequency it can reasonably target, and the impulse train generator.
type Config struct {
	Name    string
	MinFreq float64
	// Init returns the impulse amplitudes A and times T for the given
	// target frequency and damping ratio.
	Init func(freq, dampingRatio float64) (A, T []float64)
}

// catalog lists every supported shaper type, mildest smoothing first.
var catalog = []Config{
	{Name: "zv", MinFreq: 21.0, Init: zvShaper},
	{Name: "mzv", MinFreq: 23.0, Init: mzvShaper},
	{Name: "zvd", MinFreq: 29.0, Init: zvdShaper},
	{Name: "ei", MinFreq: 29.0, Init: eiShaper},
	{Name: "2hump_ei", MinFreq: 39.0, Init: twoHumpEIShaper},
	{Name: "3hump_ei", MinFreq: 48.0, Init: threeHumpEIShaper},
}

// autotuneShapers are the types evaluated during automatic calibration.
// ZVD is excluded: EI dominates it at equal pulse count.
var autotuneShapers = []string{"zv", "mzv", "ei", "2hump_ei", "3hump_ei"}

// Catalog returns the full shaper type catalog.
func Catalog() []Config {
	return catalog
}

// ByName looks up a shaper configuration; nil when unknown.
func ByName(name string) *Config {
	for i := range catalog {
		if catalog[i].Name == name {
			return &catalog[i]
		}
	}
	return nil
}

func shaperConstants(freq, dampingRatio float64) (k, td float64) {
	df := math.Sqrt(1.0 - dampingRatio*dampingRatio)
	k = math.Exp(-dampingRatio * math.Pi / df)
	td = 1.0 / (freq * df)
	return k, td
}

func zvShaper(freq, dampingRatio float64) ([]float64, []float64) {
	k, td := shaperConstants(freq, dampingRatio)
	A := []float64{1.0, k}
	T := []float64{0.0, 0.5 * td}
	return A, T
}

func zvdShaper(freq, dampingRatio float64) ([]float64, []float64) {
	k, td := shaperConstants(freq, dampingRatio)
	A := []float64{1.0, 2.0 * k, k * k}
	T := []float64{0.0, 0.5 * td, td}
	return A, T
}

func mzvShaper(freq, dampingRatio float64) ([]float64, []float64) {
	df := math.Sqrt(1.0 - dampingRatio*dampingRatio)
	k := math.Exp(-0.75 * dampingRatio * math.Pi / df)
	td := 1.0 / (freq * df)

	a1 := 1.0 - 1.0/math.Sqrt2
	a2 := (math.Sqrt2 - 1.0) * k
	a3 := a1 * k * k

	A := []float64{a1, a2, a3}
	T := []float64{0.0, 0.375 * td, 0.75 * td}
	return A, T
}

func eiShaper(freq, dampingRatio float64) ([]float64, []float64) {
	vTol := 1.0 / vibrationReduction
	k, td := shaperConstants(freq, dampingRatio)

	a1 := 0.25 * (1.0 + vTol)
	a2 := 0.5 * (1.0 - vTol) * k
	a3 := a1 * k * k

	A := []float64{a1, a2, a3}
	T := []float64{0.0, 0.5 * td, td}
	return A, T
}

func twoHumpEIShaper(freq, dampingRatio float64) ([]float64, []float64) {
	vTol := 1.0 / vibrationReduction
	k, td := shaperConstants(freq, dampingRatio)

	v2 := vTol * vTol
	x := math.Pow(v2*(math.Sqrt(1.0-v2)+1.0), 1.0/3.0)
	a1 := (3.0*x*x + 2.0*x + 3.0*v2) / (16.0 * x)
	a2 := (0.5 - a1) * k
	a3 := a2 * k
	a4 := a1 * k * k * k

	A := []float64{a1, a2, a3, a4}
	T := []float64{0.0, 0.5 * td, td, 1.5 * td}
	return A, T
}

func threeHumpEIShaper(freq, dampingRatio float64) ([]float64, []float64) {
	vTol := 1.0 / vibrationReduction
	k, td := shaperConstants(freq, dampingRatio)

	k2 := k * k
	a1 := 0.0625 * (1.0 + 3.0*vTol + 2.0*math.Sqrt(2.0*(vTol+1.0)*vTol))
	a2 := 0.25 * (1.0 - vTol) * k
	a3 := (0.5*(1.0+vTol) - 2.0*a1) * k2
	a4 := a2 * k2
	a5 := a1 * k2 * k2

	A := []float64{a1, a2, a3, a4, a5}
	T := []float64{0.0, 0.5 * td, td, 1.5 * td, 2.0 * td}
	return A, T
}
