package cmd

import (
	"github.com/printmetrics/resotune/internal/analysis"
	"github.com/printmetrics/resotune/internal/app"
)

// runAnalysis wires a subcommand invocation into the application runner.
func runAnalysis(t analysis.Type, manifest string, request analysis.Request) error {
	ctx := &app.Context{
		ManifestPath: manifest,
		OutputFile:   outputFile,
		OutputFormat: outputFormat,
		Verbose:      verbose,
		Quiet:        quiet,
		Type:         t,
		Request:      request,
	}

	application, err := app.NewAnalysisApp(ctx)
	if err != nil {
		return err
	}
	return application.Run()
}
