package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/perfgate/perfgate/harness"
)

var checkCompleteness bool

// matrixCmd prints the configuration matrix with skip decisions for a
// profile, without touching any hardware. With --check it also verifies the
// completeness invariant: every configuration the skip policy would run must
// have a golden entry.
var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "List the configuration matrix and skip decisions for a hardware profile",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging()

		if hardware == "" || hardware == "auto" {
			logrus.Fatalf("matrix requires an explicit --hardware profile (no device to detect from)")
		}
		profile, err := harness.ParseProfile(hardware)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		cases := selectCases()
		for _, c := range cases {
			var skip *harness.SkipError
			if err := harness.CheckSupported(profile, c); errors.As(err, &skip) {
				fmt.Printf("%-60s SKIP (%s)\n", c.Key(), skip.Reason)
				continue
			}
			fmt.Printf("%-60s RUN\n", c.Key())
		}

		if !checkCompleteness {
			return
		}
		golden, err := harness.LoadBaselines(baselinesDir)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		missing := golden.MissingEntries(profile, cases)
		if len(missing) > 0 {
			fmt.Printf("\n%d configurations have no golden baseline on %s:\n", len(missing), profile)
			for _, key := range missing {
				fmt.Printf("  %s\n", key)
			}
			os.Exit(1)
		}
		fmt.Printf("\nall measured configurations have golden baselines on %s\n", profile)
	},
}

func init() {
	matrixCmd.Flags().StringSliceVar(&families, "family", nil, "Kernel families to list (matmul, elementwise, attention); default all")
	matrixCmd.Flags().BoolVar(&checkCompleteness, "check", false, "Verify every runnable configuration has a golden baseline entry")
	rootCmd.AddCommand(matrixCmd)
}
