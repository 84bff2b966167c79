package accel

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/printmetrics/resotune/pkg/logging"
)

// Manifest describes a set of captures making up one analysis input.
type Manifest struct {
	Measurements []ManifestEntry `yaml:"measurements"`
}

// ManifestEntry binds a measurement name to its capture file.
type ManifestEntry struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// LoadManifest reads a YAML manifest and loads every capture it lists.
// Capture paths are resolved relative to the manifest location.
func LoadManifest(path string) ([]*Measurement, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if len(manifest.Measurements) == 0 {
		return nil, fmt.Errorf("manifest %s lists no measurements", path)
	}

	logger := logging.WithFields(logging.Fields{
		"component": "measurement_loader",
		"manifest":  path,
	})

	base := filepath.Dir(path)
	measurements := make([]*Measurement, 0, len(manifest.Measurements))
	for _, entry := range manifest.Measurements {
		file := entry.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(base, file)
		}
		m, err := LoadCSV(file, entry.Name)
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded capture", logging.Fields{
			"name":    m.Name,
			"samples": len(m.Samples),
		})
		measurements = append(measurements, m)
	}
	return measurements, nil
}

// LoadCSV reads a raw accelerometer capture in the host firmware's CSV
// export format: one `time,accel_x,accel_y,accel_z` record per line, with
// `#`-prefixed header lines. An empty name defaults to the file stem.
func LoadCSV(path, name string) (*Measurement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	m := &Measurement{Name: name}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, ",")
		if len(cols) < 4 {
			return nil, fmt.Errorf("capture %s line %d: expected 4 columns, got %d", path, lineNo, len(cols))
		}
		var vals [4]float64
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(cols[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("capture %s line %d: %w", path, lineNo, err)
			}
			vals[i] = v
		}
		m.Samples = append(m.Samples, Sample{Time: vals[0], X: vals[1], Y: vals[2], Z: vals[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read capture %s: %w", path, err)
	}
	return m, nil
}
