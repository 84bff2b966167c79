package cmd

import (
	"github.com/spf13/cobra"

	"github.com/printmetrics/resotune/internal/analysis"
)

var (
	vibrationsKinematics string
	vibrationsAccel      float64
	vibrationsMaxFreq    float64
)

var vibrationsCmd = &cobra.Command{
	Use:   "vibrations <manifest>",
	Short: "Map vibration energy over movement angle and speed",
	Long: `Sweeps the captures of a full angle/speed test pattern into a
vibration map of the machine: which speeds and angles vibrate the least,
how symmetric opposed directions behave and where the motors resonate.

Each measurement name must encode its movement parameters, e.g.
"vib_an45_sp120" for a 45 degree move at 120 mm/s.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(analysis.TypeVibrations, args[0], analysis.Request{
			Kinematics: vibrationsKinematics,
			Accel:      vibrationsAccel,
			MaxFreq:    vibrationsMaxFreq,
		})
	},
}

func init() {
	vibrationsCmd.Flags().StringVar(&vibrationsKinematics, "kinematics", "",
		"printer kinematics the test pattern was generated for")
	vibrationsCmd.Flags().Float64Var(&vibrationsAccel, "accel", 0,
		"acceleration of the test moves in mm/s^2")
	vibrationsCmd.Flags().Float64Var(&vibrationsMaxFreq, "max-freq", 0,
		"upper bound of the analyzed frequency band in Hz")

	rootCmd.AddCommand(vibrationsCmd)
}
