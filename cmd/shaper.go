package cmd

import (
	"github.com/spf13/cobra"

	"github.com/printmetrics/resotune/internal/analysis"
	"github.com/printmetrics/resotune/pkg/shaper"
)

var (
	shaperMaxFreq      float64
	shaperMaxScale     int
	shaperMaxSmoothing float64
	shaperSCV          float64
	shaperAccelPerHz   float64
	shaperLegacy       bool
)

var shaperCmd = &cobra.Command{
	Use:   "shaper <manifest>",
	Short: "Fit the input shaper catalog against an axis resonance capture",
	Long: `Runs the input shaper search against one axis resonance capture and
recommends the shaper type and frequency with the best trade-off between
residual vibrations and smoothing, together with the acceleration each
shaper type could sustain.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var backend shaper.Backend
		if cmd.Flags().Changed("legacy-backend") {
			backend = shaper.ResolveBackend(shaperLegacy)
		}
		return runAnalysis(analysis.TypeInputShaper, args[0], analysis.Request{
			MaxFreq:      shaperMaxFreq,
			MaxScale:     shaperMaxScale,
			MaxSmoothing: shaperMaxSmoothing,
			SCV:          shaperSCV,
			AccelPerHz:   shaperAccelPerHz,
			Backend:      backend,
		})
	},
}

func init() {
	shaperCmd.Flags().Float64Var(&shaperMaxFreq, "max-freq", 0,
		"upper bound of the analyzed frequency band in Hz")
	shaperCmd.Flags().IntVar(&shaperMaxScale, "max-scale", 0,
		"fixed amplitude scale of the rendered graph (0 = auto)")
	shaperCmd.Flags().Float64Var(&shaperMaxSmoothing, "max-smoothing", 0,
		"reject shapers smoothing the motion more than this (0 = no limit)")
	shaperCmd.Flags().Float64Var(&shaperSCV, "scv", 0,
		"square corner velocity of the printer in mm/s")
	shaperCmd.Flags().Float64Var(&shaperAccelPerHz, "accel-per-hz", 0,
		"acceleration per excited Hz used during the test")
	shaperCmd.Flags().BoolVar(&shaperLegacy, "legacy-backend", false,
		"use the reduced-accuracy search of older host firmware")

	rootCmd.AddCommand(shaperCmd)
}
