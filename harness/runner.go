package harness

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/perfgate/perfgate/harness/report"
)

// Runner drives the regression pipeline: skip policy, measurement, roofline
// normalization, golden lookup, and comparison. Cases run strictly
// sequentially; each case's failure is isolated from its siblings. Only a
// hardware-query failure aborts the run, since nothing can be normalized
// without live clocks.
type Runner struct {
	Profile   HardwareProfile
	Backend   Backend
	Golden    *GoldenStore
	Tolerance ToleranceBand
	Out       io.Writer // per-case report lines; nil silences them
}

// NewRunner wires a runner with the default tolerance band.
func NewRunner(profile HardwareProfile, backend Backend, golden *GoldenStore) *Runner {
	return &Runner{
		Profile:   profile,
		Backend:   backend,
		Golden:    golden,
		Tolerance: DefaultTolerance,
	}
}

// Run measures and compares every case. The returned report always covers all
// attempted cases; the error is non-nil only when a hardware query failed and
// the run was aborted.
func (r *Runner) Run(cases []Case) (*report.Run, error) {
	if err := r.Tolerance.Validate(); err != nil {
		return nil, err
	}
	run := report.NewRun(string(r.Profile))
	for _, c := range cases {
		outcome, err := r.runCase(c)
		run.Record(outcome)
		r.emit(outcome)
		if err != nil {
			return run, err
		}
	}
	return run, nil
}

func (r *Runner) emit(o report.Outcome) {
	if r.Out != nil {
		fmt.Fprintln(r.Out, o.Line())
	}
}

// runCase returns the outcome for one case, plus a non-nil error only when
// the run must abort (hardware query failure).
func (r *Runner) runCase(c Case) (report.Outcome, error) {
	outcome := report.Outcome{Family: string(c.Family()), Key: c.Key()}

	var skip *SkipError
	if err := CheckSupported(r.Profile, c); errors.As(err, &skip) {
		outcome.Status = report.StatusSkip
		outcome.Reason = skip.Reason
		return outcome, nil
	}

	// Golden lookup precedes measurement: a missing baseline is a maintenance
	// bug and measuring anyway would waste device time.
	golden, err := r.Golden.Lookup(r.Profile, c)
	if err != nil {
		outcome.Status = report.StatusFail
		outcome.Reason = err.Error()
		return outcome, nil
	}

	result, err := r.Measure(c)
	if err != nil {
		var hwErr *HardwareQueryError
		if errors.As(err, &hwErr) {
			outcome.Status = report.StatusFail
			outcome.Reason = err.Error()
			return outcome, err
		}
		outcome.Status = report.StatusFail
		outcome.Reason = err.Error()
		return outcome, nil
	}

	outcome.LatencyMs = result.LatencyMs
	outcome.Current = result.Utilization
	outcome.Golden = golden
	outcome.Diff = result.Utilization - golden

	if err := Compare(result.Utilization, golden, r.Tolerance); err != nil {
		outcome.Status = report.StatusFail
		outcome.Reason = err.Error()
		return outcome, nil
	}
	outcome.Status = report.StatusPass
	return outcome, nil
}

// Measure runs the measurement half of the pipeline for one case: live
// clocks, kernel preparation, benchmark, cost model, roofline, utilization.
// No comparison happens here; re-baselining uses it directly.
func (r *Runner) Measure(c Case) (MeasurementResult, error) {
	clocks, err := r.Backend.Clocks()
	if err != nil {
		return MeasurementResult{}, err
	}

	var fn func()
	switch cfg := c.Config.(type) {
	case MatmulConfig:
		fn, err = r.Backend.PrepareMatmul(cfg, c.Precision)
	case ElementwiseConfig:
		fn, err = r.Backend.PrepareElementwise(cfg, c.Precision)
	case AttentionConfig:
		fn, err = r.Backend.PrepareAttention(cfg, c.Precision)
	default:
		err = fmt.Errorf("unknown kernel configuration %T", c.Config)
	}
	if err != nil {
		return MeasurementResult{}, fmt.Errorf("prepare %s: %w", c.Key(), err)
	}

	latencyMs, err := r.Backend.Benchmark(fn)
	if err != nil {
		return MeasurementResult{}, fmt.Errorf("benchmark %s: %w", c.Key(), err)
	}
	if invalidPositiveFloat(latencyMs) {
		return MeasurementResult{}, fmt.Errorf("benchmark %s: non-positive latency %v ms", c.Key(), latencyMs)
	}

	var achieved, peak float64
	switch cfg := c.Config.(type) {
	case MatmulConfig:
		achieved = MatmulTFLOPS(cfg, latencyMs)
		peak, err = PeakTensorTFLOPS(r.Profile, c.Precision, clocks.SMClockMHz)
	case ElementwiseConfig:
		achieved = ElementwiseGBps(cfg, c.Precision, latencyMs)
		peak = PeakDRAMGBps(r.Profile, clocks.MemClockMHz)
	case AttentionConfig:
		achieved = AttentionTFLOPS(cfg, latencyMs)
		peak, err = PeakTensorTFLOPS(r.Profile, c.Precision, clocks.SMClockMHz)
	}
	if err != nil {
		return MeasurementResult{}, fmt.Errorf("roofline for %s: %w", c.Key(), err)
	}

	utilization, err := Utilization(achieved, peak)
	if err != nil {
		return MeasurementResult{}, fmt.Errorf("utilization for %s: %w", c.Key(), err)
	}
	if utilization > 1.1 {
		logrus.Warnf("Utilization %.3f for %s exceeds the roofline ceiling; the peak model for %s is likely wrong",
			utilization, c.Key(), r.Profile)
	}

	return MeasurementResult{LatencyMs: latencyMs, Achieved: achieved, Utilization: utilization}, nil
}
