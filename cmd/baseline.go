package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/perfgate/perfgate/harness"
)

var baselineOutput string

// baselineCmd re-records golden values from a measurement session. Entries
// are appended or updated for the measured configurations; nothing is ever
// removed, so the resulting file stays a superset of the previous table.
var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Re-record golden utilization values from a recorded measurement session",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging()

		if recordingPath == "" {
			logrus.Fatalf("No recording provided (--recording)")
		}
		rec, err := harness.LoadRecording(recordingPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		backend := harness.NewRecordedBackend(rec)
		profile := resolveProfile(backend)

		golden, err := harness.LoadBaselines(baselinesDir)
		if err != nil {
			logrus.Warnf("Starting from an empty baseline table: %v", err)
			golden = harness.NewGoldenStore()
		}

		runner := harness.NewRunner(profile, backend, golden)
		recorded := 0
		for _, c := range selectCases() {
			var skip *harness.SkipError
			if err := harness.CheckSupported(profile, c); errors.As(err, &skip) {
				continue
			}
			// Substituted precisions (element-wise bfloat16) take their value
			// from the entry they substitute; re-measuring them would
			// overwrite it.
			if c.GoldenKey() != c.Key() {
				continue
			}
			result, err := runner.Measure(c)
			if err != nil {
				logrus.Warnf("Skipping %s: %v", c.Key(), err)
				continue
			}
			golden.Append(profile, c, result.Utilization)
			recorded++
		}

		output := baselineOutput
		if output == "" {
			output = filepath.Join(baselinesDir, fmt.Sprintf("%s.yaml", profile))
		}
		if err := golden.Save(output, profile); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Recorded %d golden values for %s into %s", recorded, profile, output)
	},
}

func init() {
	baselineCmd.Flags().StringVar(&recordingPath, "recording", "", "Recorded measurement session (YAML) to baseline from")
	baselineCmd.Flags().StringSliceVar(&families, "family", nil, "Kernel families to baseline; default all")
	baselineCmd.Flags().StringVar(&baselineOutput, "output", "", "Output baseline file (default <baselines>/<profile>.yaml)")
	rootCmd.AddCommand(baselineCmd)
}
