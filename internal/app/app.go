package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/printmetrics/resotune/configs"
	"github.com/printmetrics/resotune/internal/analysis"
	"github.com/printmetrics/resotune/pkg/accel"
	"github.com/printmetrics/resotune/pkg/logging"
	"github.com/printmetrics/resotune/pkg/shaper"
)

// Version is stamped into every result so graphs can be traced back to the
// code that produced them.
const Version = "1.3.0"

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ManifestPath string
	OutputFile   string
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Analysis selection and its tool-specific parameters; Measurements
	// and config-backed fields are filled by the app.
	Type    analysis.Type
	Request analysis.Request

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// AnalysisApp handles one analysis run end to end
type AnalysisApp struct {
	ctx    *Context
	config *configs.Config
	logger logging.Logger
}

// NewAnalysisApp creates a new analysis application
func NewAnalysisApp(ctx *Context) (*AnalysisApp, error) {
	logger := setupLogging(ctx)
	ctx.Logger = logger

	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	ctx.Config = config

	logger.Info("Analysis application initialized", logging.Fields{
		"analysis": string(ctx.Type),
		"manifest": ctx.ManifestPath,
		"format":   ctx.OutputFormat,
	})

	return &AnalysisApp{
		ctx:    ctx,
		config: config,
		logger: logger,
	}, nil
}

// Run executes the analysis
func (app *AnalysisApp) Run() error {
	measurements, err := accel.LoadManifest(app.ctx.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to load measurements: %w", err)
	}

	request := app.buildRequest(measurements)
	computation, err := analysis.New(app.ctx.Type, request)
	if err != nil {
		return err
	}

	started := time.Now()
	result, err := computation.Compute()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	app.logger.Info("Analysis complete", logging.Fields{
		"analysis":     string(app.ctx.Type),
		"measurements": len(measurements),
		"elapsed":      time.Since(started).Seconds(),
	})

	return app.outputResult(result)
}

// buildRequest merges the configuration defaults with the per-invocation
// parameters the subcommand collected.
func (app *AnalysisApp) buildRequest(measurements []*accel.Measurement) analysis.Request {
	request := app.ctx.Request
	request.Measurements = measurements
	request.Version = Version

	if request.MaxFreq <= 0 {
		request.MaxFreq = app.config.Analysis.MaxFreq
	}
	if request.MaxScale <= 0 {
		request.MaxScale = app.config.Analysis.MaxScale
	}
	if request.Kinematics == "" {
		request.Kinematics = app.config.Analysis.Kinematics
	}
	if request.MaxSmoothing <= 0 {
		request.MaxSmoothing = app.config.Shaper.MaxSmoothing
	}
	if request.SCV <= 0 {
		request.SCV = app.config.Shaper.SCV
	}
	if request.AccelPerHz <= 0 {
		request.AccelPerHz = app.config.Shaper.AccelPerHz
	}
	if request.Backend == nil {
		request.Backend = shaper.ResolveBackend(app.config.Shaper.LegacyBackend)
	}
	if request.Accel <= 0 {
		if app.ctx.Type == analysis.TypeAxesMap {
			request.Accel = app.config.AxesMap.Accel
		} else {
			request.Accel = app.config.Vibrations.Accel
		}
	}
	if request.SegmentLength <= 0 {
		request.SegmentLength = app.config.AxesMap.SegmentLength
	}
	return request
}

// outputResult serializes the plottable view of the result
func (app *AnalysisApp) outputResult(result analysis.Result) error {
	outputData := map[string]any{
		"analysis": string(app.ctx.Type),
		"result":   result.PlotData(),
	}
	if app.config.Output.Timestamps {
		outputData["timestamp"] = time.Now()
	}
	if app.config.Output.IncludeMetadata {
		outputData["version"] = Version
	}

	var formatted []byte
	var err error
	switch app.ctx.OutputFormat {
	case "yaml":
		formatted, err = yaml.Marshal(outputData)
	default:
		formatted, err = json.MarshalIndent(outputData, "", "  ")
		formatted = append(formatted, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to format output data: %w", err)
	}

	if app.ctx.OutputFile != "" {
		return app.writeToFile(formatted)
	}

	_, err = os.Stdout.Write(formatted)
	return err
}

// writeToFile writes data to the specified output file
func (app *AnalysisApp) writeToFile(data []byte) error {
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Info("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context) logging.Logger {
	level := "info"
	if ctx.Verbose {
		level = "debug"
	} else if ctx.Quiet {
		level = "error"
	}
	_ = logging.SetLevel(level)
	return logging.NewDefaultLogger()
}
