package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`
	DataDir      string `mapstructure:"data_dir"`

	// Analysis configuration shared by every tool
	Analysis AnalysisConfig `mapstructure:"analysis"`

	// Input shaper search configuration
	Shaper ShaperConfig `mapstructure:"shaper"`

	// Vibrations profile configuration
	Vibrations VibrationsConfig `mapstructure:"vibrations"`

	// Axes map detection configuration
	AxesMap AxesMapConfig `mapstructure:"axes_map"`

	// Output configuration
	Output OutputConfig `mapstructure:"output"`
}

// AnalysisConfig contains settings shared by all analysis tools
type AnalysisConfig struct {
	MaxFreq    float64 `mapstructure:"max_freq"`
	MaxScale   int     `mapstructure:"max_scale"`
	Kinematics string  `mapstructure:"kinematics"`
}

// ShaperConfig contains input shaper search settings
type ShaperConfig struct {
	MaxSmoothing  float64 `mapstructure:"max_smoothing"`
	SCV           float64 `mapstructure:"scv"`
	AccelPerHz    float64 `mapstructure:"accel_per_hz"`
	LegacyBackend bool    `mapstructure:"legacy_backend"`
}

// VibrationsConfig contains vibrations profile settings
type VibrationsConfig struct {
	Accel float64 `mapstructure:"accel"`
}

// AxesMapConfig contains axes map detection settings
type AxesMapConfig struct {
	Accel         float64 `mapstructure:"accel"`
	SegmentLength float64 `mapstructure:"segment_length"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Precision       int  `mapstructure:"precision"`
	IncludeMetadata bool `mapstructure:"include_metadata"`
	Timestamps      bool `mapstructure:"timestamps"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Analysis.MaxFreq <= 0 {
		return fmt.Errorf("analysis max frequency must be positive")
	}

	if config.Shaper.SCV <= 0 {
		return fmt.Errorf("square corner velocity must be positive")
	}

	if config.Shaper.MaxSmoothing < 0 {
		return fmt.Errorf("max smoothing cannot be negative")
	}

	if config.Vibrations.Accel < 0 || config.AxesMap.Accel < 0 {
		return fmt.Errorf("acceleration cannot be negative")
	}

	if config.AxesMap.SegmentLength <= 0 {
		return fmt.Errorf("axes map segment length must be positive")
	}

	return nil
}
