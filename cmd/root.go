package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/perfgate/perfgate/harness"
)

var (
	// Persistent CLI flags
	logLevel     string // Log verbosity level
	baselinesDir string // Directory holding golden baseline YAML files
	hardware     string // Hardware profile override ("auto" = detect from capability)

	// Flags shared by run/baseline
	recordingPath string   // Device capture to replay
	families      []string // Kernel families to include
	toleranceAbs  float64  // Absolute tolerance component
	toleranceRel  float64  // Relative tolerance component
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "perfgate",
	Short: "Utilization-based performance regression harness for GPU compute kernels",
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configureLogging applies the --log flag.
func configureLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveProfile returns the active hardware profile: the --hardware override
// when given, otherwise the family detected from the backend's compute
// capability. A failed capability query is fatal to the whole run.
func resolveProfile(backend harness.Backend) harness.HardwareProfile {
	if hardware != "" && hardware != "auto" {
		profile, err := harness.ParseProfile(hardware)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		return profile
	}
	major, minor, err := backend.Capability()
	if err != nil {
		logrus.Fatalf("Capability query failed: %v", err)
	}
	profile, err := harness.DetectProfile(major, minor)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	return profile
}

// selectCases enumerates the configuration matrix for the requested families
// (all three when the flag is empty).
func selectCases() []harness.Case {
	if len(families) == 0 {
		return harness.AllCases()
	}
	var cases []harness.Case
	for _, name := range families {
		familyCases := harness.FamilyCases(harness.KernelFamily(name))
		if familyCases == nil {
			logrus.Fatalf("Unknown kernel family %q (supported: matmul, elementwise, attention)", name)
		}
		cases = append(cases, familyCases...)
	}
	return cases
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&baselinesDir, "baselines", "baselines", "Directory holding golden baseline YAML files")
	rootCmd.PersistentFlags().StringVar(&hardware, "hardware", "auto", "Hardware profile (v100, a100, or auto to detect)")
}
