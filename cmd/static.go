package cmd

import (
	"github.com/spf13/cobra"

	"github.com/printmetrics/resotune/internal/analysis"
)

var (
	staticFreq       float64
	staticDuration   float64
	staticAccelPerHz float64
	staticMaxFreq    float64
)

var staticCmd = &cobra.Command{
	Use:   "static <manifest>",
	Short: "Inspect a sustained excitation at one fixed frequency",
	Long: `Renders the time-frequency content of a capture recorded while the
toolhead was vibrated at a single maintained frequency. Useful to hunt
cross-resonances and to verify that the excited frequency actually shows
up where expected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(analysis.TypeStaticFrequency, args[0], analysis.Request{
			Freq:       staticFreq,
			Duration:   staticDuration,
			AccelPerHz: staticAccelPerHz,
			MaxFreq:    staticMaxFreq,
		})
	},
}

func init() {
	staticCmd.Flags().Float64Var(&staticFreq, "freq", 0,
		"excitation frequency in Hz")
	staticCmd.Flags().Float64Var(&staticDuration, "duration", 0,
		"excitation duration in seconds (0 = derive from the capture)")
	staticCmd.Flags().Float64Var(&staticAccelPerHz, "accel-per-hz", 0,
		"acceleration per excited Hz used during the test")
	staticCmd.Flags().Float64Var(&staticMaxFreq, "max-freq", 0,
		"upper bound of the analyzed frequency band in Hz")

	rootCmd.AddCommand(staticCmd)
}
