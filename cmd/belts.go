package cmd

import (
	"github.com/spf13/cobra"

	"github.com/printmetrics/resotune/internal/analysis"
)

var (
	beltsKinematics string
	beltsMaxFreq    float64
	beltsMaxScale   int
)

var beltsCmd = &cobra.Command{
	Use:   "belts <manifest>",
	Short: "Compare the frequency response of the two belts",
	Long: `Compares two accelerometer captures, one per belt, and scores how
similar their frequency responses are. On symmetric drives (CoreXY and
friends) the comparison also yields a mechanical health indicator.

The manifest must list exactly two measurements, one for each belt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(analysis.TypeBelts, args[0], analysis.Request{
			Kinematics: beltsKinematics,
			MaxFreq:    beltsMaxFreq,
			MaxScale:   beltsMaxScale,
		})
	},
}

func init() {
	beltsCmd.Flags().StringVar(&beltsKinematics, "kinematics", "",
		"printer kinematics (corexy, limited_corexy, corexz, limited_corexz, cartesian, ...)")
	beltsCmd.Flags().Float64Var(&beltsMaxFreq, "max-freq", 0,
		"upper bound of the analyzed frequency band in Hz")
	beltsCmd.Flags().IntVar(&beltsMaxScale, "max-scale", 0,
		"fixed amplitude scale of the rendered graph (0 = auto)")

	rootCmd.AddCommand(beltsCmd)
}
