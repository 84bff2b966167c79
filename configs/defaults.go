package configs

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/printmetrics/resotune/pkg/shaper"
	"github.com/printmetrics/resotune/pkg/spectral"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Shared analysis defaults
	if !v.IsSet("analysis.max_freq") {
		v.Set("analysis.max_freq", spectral.MaxFreq)
	}
	if !v.IsSet("analysis.max_scale") {
		v.Set("analysis.max_scale", 0)
	}
	if !v.IsSet("analysis.kinematics") {
		v.Set("analysis.kinematics", "corexy")
	}

	// Input shaper defaults
	if !v.IsSet("shaper.max_smoothing") {
		v.Set("shaper.max_smoothing", 0.0)
	}
	if !v.IsSet("shaper.scv") {
		v.Set("shaper.scv", shaper.DefaultSCV)
	}
	if !v.IsSet("shaper.accel_per_hz") {
		v.Set("shaper.accel_per_hz", 75.0)
	}
	if !v.IsSet("shaper.legacy_backend") {
		v.Set("shaper.legacy_backend", false)
	}

	// Vibrations profile defaults
	if !v.IsSet("vibrations.accel") {
		v.Set("vibrations.accel", 3000.0)
	}

	// Axes map defaults
	if !v.IsSet("axes_map.accel") {
		v.Set("axes_map.accel", 1000.0)
	}
	if !v.IsSet("axes_map.segment_length") {
		v.Set("axes_map.segment_length", 30.0)
	}

	// Output defaults
	if !v.IsSet("output.precision") {
		v.Set("output.precision", 3)
	}
	if !v.IsSet("output.include_metadata") {
		v.Set("output.include_metadata", true)
	}
	if !v.IsSet("output.timestamps") {
		v.Set("output.timestamps", true)
	}

	// Application defaults
	if !v.IsSet("verbose") {
		v.Set("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", "json")
	}
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "json",
		DataDir:      filepath.Join(home, ".local", "share", "resotune"),

		Analysis:   GetDefaultAnalysisConfig(),
		Shaper:     GetDefaultShaperConfig(),
		Vibrations: GetDefaultVibrationsConfig(),
		AxesMap:    GetDefaultAxesMapConfig(),
		Output:     GetDefaultOutputConfig(),
	}
}

// GetDefaultAnalysisConfig returns default shared analysis settings
func GetDefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		MaxFreq:    spectral.MaxFreq,
		MaxScale:   0,
		Kinematics: "corexy",
	}
}

// GetDefaultShaperConfig returns default input shaper search settings
func GetDefaultShaperConfig() ShaperConfig {
	return ShaperConfig{
		MaxSmoothing:  0,
		SCV:           shaper.DefaultSCV,
		AccelPerHz:    75.0,
		LegacyBackend: false,
	}
}

// GetDefaultVibrationsConfig returns default vibrations profile settings
func GetDefaultVibrationsConfig() VibrationsConfig {
	return VibrationsConfig{
		Accel: 3000.0,
	}
}

// GetDefaultAxesMapConfig returns default axes map detection settings
func GetDefaultAxesMapConfig() AxesMapConfig {
	return AxesMapConfig{
		Accel:         1000.0,
		SegmentLength: 30.0,
	}
}

// GetDefaultOutputConfig returns default output formatting settings
func GetDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Precision:       3,
		IncludeMetadata: true,
		Timestamps:      true,
	}
}
