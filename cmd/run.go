package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/perfgate/perfgate/harness"
	"github.com/perfgate/perfgate/harness/report"
)

// runCmd replays a device capture through the full regression pipeline and
// compares every configuration against its golden baseline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the regression comparison over a recorded measurement session",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging()

		if recordingPath == "" {
			logrus.Fatalf("No recording provided (--recording). A device capture is required to replay measurements.")
		}
		rec, err := harness.LoadRecording(recordingPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		backend := harness.NewRecordedBackend(rec)
		profile := resolveProfile(backend)

		golden, err := harness.LoadBaselines(baselinesDir)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		runner := harness.NewRunner(profile, backend, golden)
		runner.Tolerance = harness.ToleranceBand{Abs: toleranceAbs, Rel: toleranceRel}
		runner.Out = os.Stdout

		cases := selectCases()
		logrus.Infof("Running %d configurations on %s (tolerance abs=%.3f rel=%.3f)",
			len(cases), profile, toleranceAbs, toleranceRel)

		run, err := runner.Run(cases)
		if err != nil {
			logrus.Fatalf("Run aborted: %v", err)
		}

		summary := report.Summarize(run)
		fmt.Printf("\n%d configurations: %d passed, %d failed, %d skipped\n",
			summary.Total, summary.Passed, summary.Failed, summary.Skipped)
		if summary.Failed > 0 {
			if summary.WorstKey != "" {
				fmt.Printf("worst regression: %s (dif=%+.3f)\n", summary.WorstKey, summary.WorstDiff)
			}
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&recordingPath, "recording", "", "Recorded measurement session (YAML) to replay")
	runCmd.Flags().StringSliceVar(&families, "family", nil, "Kernel families to run (matmul, elementwise, attention); default all")
	runCmd.Flags().Float64Var(&toleranceAbs, "tolerance-abs", harness.DefaultTolerance.Abs, "Absolute utilization tolerance")
	runCmd.Flags().Float64Var(&toleranceRel, "tolerance-rel", harness.DefaultTolerance.Rel, "Relative utilization tolerance")
	rootCmd.AddCommand(runCmd)
}
