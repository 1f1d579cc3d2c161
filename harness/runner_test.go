package harness

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfgate/perfgate/harness/report"
)

// latencyForUtilization returns the matmul latency that produces the target
// utilization at the given peak.
func latencyForUtilization(cfg MatmulConfig, target, peakTFLOPS float64) float64 {
	return MatmulFLOPs(cfg) * 1e-9 / (target * peakTFLOPS)
}

func a100Peak(t *testing.T, p Precision) float64 {
	t.Helper()
	peak, err := PeakTensorTFLOPS(ProfileA100, p, 1350)
	require.NoError(t, err)
	return peak
}

func newA100Runner(t *testing.T, latencies map[string]float64) (*Runner, *GoldenStore) {
	t.Helper()
	rec := &Recording{
		CapabilityMajor: 8,
		SMClockMHz:      1350,
		MemClockMHz:     1215,
		LatenciesMs:     latencies,
	}
	golden := NewGoldenStore()
	runner := NewRunner(ProfileA100, NewRecordedBackend(rec), golden)
	return runner, golden
}

func TestRunner_Pass(t *testing.T) {
	// GIVEN a measured latency whose utilization lands 0.001 above golden
	cfg := MatmulConfig{M: 1024, N: 1024, K: 1024}
	c := Case{Config: cfg, Precision: PrecisionFloat16}
	ms := latencyForUtilization(cfg, 0.284, a100Peak(t, PrecisionFloat16))

	runner, golden := newA100Runner(t, map[string]float64{c.Key(): ms})
	golden.Append(ProfileA100, c, 0.283)

	var out bytes.Buffer
	runner.Out = &out

	// WHEN the runner processes the case
	run, err := runner.Run([]Case{c})
	require.NoError(t, err)

	// THEN it passes and reports the measured line
	require.Len(t, run.Outcomes, 1)
	outcome := run.Outcomes[0]
	assert.Equal(t, report.StatusPass, outcome.Status)
	assert.InDelta(t, 0.284, outcome.Current, 1e-9)
	assert.Equal(t, 0.283, outcome.Golden)
	assert.InDelta(t, 0.001, outcome.Diff, 1e-9)
	assert.InDelta(t, ms, outcome.LatencyMs, 1e-15)
	assert.Contains(t, out.String(), "cur: 0.284")
	assert.Contains(t, out.String(), "ref: 0.283")
}

func TestRunner_Regression(t *testing.T) {
	// GIVEN a latency that only achieves 0.200 utilization against 0.283
	cfg := MatmulConfig{M: 1024, N: 1024, K: 1024}
	c := Case{Config: cfg, Precision: PrecisionFloat16}
	ms := latencyForUtilization(cfg, 0.200, a100Peak(t, PrecisionFloat16))

	runner, golden := newA100Runner(t, map[string]float64{c.Key(): ms})
	golden.Append(ProfileA100, c, 0.283)

	run, err := runner.Run([]Case{c})
	require.NoError(t, err)

	require.Len(t, run.Outcomes, 1)
	outcome := run.Outcomes[0]
	assert.Equal(t, report.StatusFail, outcome.Status)
	assert.InDelta(t, -0.083, outcome.Diff, 1e-9)
	assert.Contains(t, outcome.Reason, "regression")
	assert.True(t, run.Failed())
}

func TestRunner_SkippedCaseIsNeverMeasured(t *testing.T) {
	// The shared-memory float32 exclusion: no latency exists in the recording
	// and none is needed, because skip precedes measurement.
	c := Case{Config: MatmulConfig{M: 64, N: 4096, K: 4096}, Precision: PrecisionFloat32}
	runner, golden := newA100Runner(t, map[string]float64{})
	golden.Append(ProfileA100, c, 0.0)

	run, err := runner.Run([]Case{c})
	require.NoError(t, err)

	require.Len(t, run.Outcomes, 1)
	assert.Equal(t, report.StatusSkip, run.Outcomes[0].Status)
	assert.Equal(t, "out of shared memory in float32", run.Outcomes[0].Reason)
	assert.False(t, run.Failed())
}

func TestRunner_MissingGoldenFailsCase(t *testing.T) {
	cfg := MatmulConfig{M: 1024, N: 1024, K: 1024}
	c := Case{Config: cfg, Precision: PrecisionFloat16}
	runner, _ := newA100Runner(t, map[string]float64{c.Key(): 0.025})

	run, err := runner.Run([]Case{c})
	require.NoError(t, err)

	require.Len(t, run.Outcomes, 1)
	assert.Equal(t, report.StatusFail, run.Outcomes[0].Status)
	assert.Contains(t, run.Outcomes[0].Reason, "golden")
}

// One configuration's failure does not abort its siblings.
func TestRunner_FailureIsolation(t *testing.T) {
	good := Case{Config: MatmulConfig{M: 512, N: 512, K: 512}, Precision: PrecisionFloat16}
	bad := Case{Config: MatmulConfig{M: 1024, N: 1024, K: 1024}, Precision: PrecisionFloat16}
	peak := a100Peak(t, PrecisionFloat16)

	runner, golden := newA100Runner(t, map[string]float64{
		bad.Key():  latencyForUtilization(bad.Config.(MatmulConfig), 0.100, peak),
		good.Key(): latencyForUtilization(good.Config.(MatmulConfig), 0.061, peak),
	})
	golden.Append(ProfileA100, bad, 0.283)
	golden.Append(ProfileA100, good, 0.061)

	run, err := runner.Run([]Case{bad, good})
	require.NoError(t, err)

	require.Len(t, run.Outcomes, 2)
	assert.Equal(t, report.StatusFail, run.Outcomes[0].Status)
	assert.Equal(t, report.StatusPass, run.Outcomes[1].Status)
}

type failingClockBackend struct {
	*RecordedBackend
}

func (b *failingClockBackend) Clocks() (ClockSample, error) {
	return ClockSample{}, &HardwareQueryError{Op: "clocks.current.sm", Err: assert.AnError}
}

// A hardware query failure aborts the whole run: nothing can be normalized
// without live clocks.
func TestRunner_HardwareQueryFailureAborts(t *testing.T) {
	first := Case{Config: MatmulConfig{M: 512, N: 512, K: 512}, Precision: PrecisionFloat16}
	second := Case{Config: MatmulConfig{M: 1024, N: 1024, K: 1024}, Precision: PrecisionFloat16}

	rec := &Recording{
		CapabilityMajor: 8,
		LatenciesMs: map[string]float64{
			first.Key():  0.01,
			second.Key(): 0.02,
		},
	}
	golden := NewGoldenStore()
	golden.Append(ProfileA100, first, 0.061)
	golden.Append(ProfileA100, second, 0.283)

	runner := NewRunner(ProfileA100, &failingClockBackend{NewRecordedBackend(rec)}, golden)
	run, err := runner.Run([]Case{first, second})
	require.Error(t, err)

	var hwErr *HardwareQueryError
	assert.ErrorAs(t, err, &hwErr)
	// The run stopped at the first case; the sibling was never attempted.
	assert.Len(t, run.Outcomes, 1)
}

func TestRunner_ElementwisePipeline(t *testing.T) {
	cfg := ElementwiseConfig{N: 16777216}
	c := Case{Config: cfg, Precision: PrecisionFloat16}

	// Latency that achieves 0.762 of the 1555.2 GB/s DRAM roofline.
	peak := PeakDRAMGBps(ProfileA100, 1215)
	ms := ElementwiseBytes(cfg, PrecisionFloat16) * 1e-6 / (0.762 * peak)

	runner, golden := newA100Runner(t, map[string]float64{c.Key(): ms})
	golden.Append(ProfileA100, c, 0.762)

	run, err := runner.Run([]Case{c})
	require.NoError(t, err)
	require.Len(t, run.Outcomes, 1)
	assert.Equal(t, report.StatusPass, run.Outcomes[0].Status)
	assert.InDelta(t, 0.762, run.Outcomes[0].Current, 1e-9)
}

func TestRunner_AttentionPipeline(t *testing.T) {
	cfg := AttentionConfig{Z: 4, H: 48, NCtx: 4096, DHead: 64, SeqPar: true, Causal: true, Mode: ModeBackward}
	c := Case{Config: cfg, Precision: PrecisionFloat16}

	peak := a100Peak(t, PrecisionFloat16)
	ms := AttentionFLOPs(cfg) * 1e-9 / (0.204 * peak)

	runner, golden := newA100Runner(t, map[string]float64{c.Key(): ms})
	golden.Append(ProfileA100, c, 0.204)

	run, err := runner.Run([]Case{c})
	require.NoError(t, err)
	require.Len(t, run.Outcomes, 1)
	assert.Equal(t, report.StatusPass, run.Outcomes[0].Status)
}

func TestRunner_InvalidToleranceRejected(t *testing.T) {
	runner, _ := newA100Runner(t, map[string]float64{})
	runner.Tolerance = ToleranceBand{Abs: -1}
	_, err := runner.Run(nil)
	assert.Error(t, err)
}

func TestRunner_Measure(t *testing.T) {
	cfg := MatmulConfig{M: 512, N: 512, K: 512}
	c := Case{Config: cfg, Precision: PrecisionFloat16}
	ms := latencyForUtilization(cfg, 0.061, a100Peak(t, PrecisionFloat16))

	runner, _ := newA100Runner(t, map[string]float64{c.Key(): ms})
	result, err := runner.Measure(c)
	require.NoError(t, err)
	assert.InDelta(t, 0.061, result.Utilization, 1e-9)
	assert.Greater(t, result.Achieved, 0.0)
	assert.Equal(t, ms, result.LatencyMs)
}

func TestRunner_FullMatrixAgainstShippedBaselines(t *testing.T) {
	// Synthesize a recording whose latencies reproduce every shipped golden
	// value exactly; the full a100 matrix must then pass end to end.
	golden := loadShippedBaselines(t)

	latencies := make(map[string]float64)
	for _, c := range AllCases() {
		if CheckSupported(ProfileA100, c) != nil {
			continue
		}
		target, err := golden.Lookup(ProfileA100, c)
		require.NoError(t, err)
		if target == 0 {
			// Shapes recorded as 0.000 are unreachable (they are skipped);
			// CheckSupported already excluded them.
			continue
		}
		switch cfg := c.Config.(type) {
		case MatmulConfig:
			latencies[c.Key()] = MatmulFLOPs(cfg) * 1e-9 / (target * a100Peak(t, c.Precision))
		case ElementwiseConfig:
			latencies[c.Key()] = ElementwiseBytes(cfg, c.Precision) * 1e-6 / (target * PeakDRAMGBps(ProfileA100, 1215))
		case AttentionConfig:
			latencies[c.Key()] = AttentionFLOPs(cfg) * 1e-9 / (target * a100Peak(t, c.Precision))
		}
	}

	rec := &Recording{CapabilityMajor: 8, SMClockMHz: 1350, MemClockMHz: 1215, LatenciesMs: latencies}
	runner := NewRunner(ProfileA100, NewRecordedBackend(rec), golden)

	run, err := runner.Run(AllCases())
	require.NoError(t, err)
	assert.False(t, run.Failed(), "outcomes: %+v", run.Outcomes)

	summary := report.Summarize(run)
	assert.Equal(t, len(AllCases()), summary.Total)
	assert.Zero(t, summary.Failed)
	// The only a100 skips are the three shared-memory float32 matmul shapes.
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, len(AllCases())-3, summary.Passed)
}
