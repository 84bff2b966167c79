package cmd

import (
	"github.com/spf13/cobra"

	"github.com/printmetrics/resotune/internal/analysis"
)

var (
	axesMapAccel         float64
	axesMapSegmentLength float64
)

var axesMapCmd = &cobra.Command{
	Use:   "axesmap <manifest>",
	Short: "Detect the accelerometer mounting orientation",
	Long: `Detects which accelerometer axis responds to each machine axis from
three straight probe moves, one along each machine axis in order, and
formats the mapping the way the host firmware expects it (e.g. "x, -y, z").

The manifest must list exactly three measurements, ordered X, Y, Z.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(analysis.TypeAxesMap, args[0], analysis.Request{
			Accel:         axesMapAccel,
			SegmentLength: axesMapSegmentLength,
		})
	},
}

func init() {
	axesMapCmd.Flags().Float64Var(&axesMapAccel, "accel", 0,
		"acceleration of the probe moves in mm/s^2")
	axesMapCmd.Flags().Float64Var(&axesMapSegmentLength, "segment-length", 0,
		"travel distance of each probe move in mm")

	rootCmd.AddCommand(axesMapCmd)
}
