package harness

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ClockSample is one live reading of the device clock domains in MHz.
type ClockSample struct {
	SMClockMHz  float64
	MemClockMHz float64
}

// Backend is the boundary to the device-side collaborators: kernel
// preparation, the synchronized timing primitive, and hardware introspection.
// Prepare* returns an opaque zero-argument callable representing one warmed-up
// kernel invocation; Benchmark must block until all device work dispatched by
// the callable has completed and return a noise-reduced per-call latency in
// milliseconds.
type Backend interface {
	Capability() (major, minor int, err error)
	Clocks() (ClockSample, error)
	PrepareMatmul(cfg MatmulConfig, p Precision) (func(), error)
	PrepareElementwise(cfg ElementwiseConfig, p Precision) (func(), error)
	PrepareAttention(cfg AttentionConfig, p Precision) (func(), error)
	Benchmark(fn func()) (float64, error)
}

// MeasurementResult is the ephemeral outcome of measuring one case. Achieved
// is in TFLOP/s for compute-bound families and GB/s for memory-bound ones;
// Utilization is dimensionless.
type MeasurementResult struct {
	LatencyMs   float64
	Achieved    float64
	Utilization float64
}

// invalidPositiveFloat returns true if v is not a valid positive float64
// (v <= 0, NaN, or Inf). Used to validate roofline denominators.
func invalidPositiveFloat(v float64) bool {
	return v <= 0 || math.IsNaN(v) || math.IsInf(v, 0)
}

// Utilization returns achieved/peak. It refuses a zero, negative, or
// non-finite peak rather than propagating NaN into the comparison. The result
// is not clamped: values near 1.0 are legitimate and values far above it
// indicate a roofline-model error the caller must surface.
func Utilization(achieved, peak float64) (float64, error) {
	if invalidPositiveFloat(peak) {
		return 0, fmt.Errorf("roofline peak must be a valid positive number, got %v", peak)
	}
	return achieved / peak, nil
}

// MedianLatency reduces raw repetition samples to a robust per-call latency.
// Backends whose timing primitive already aggregates internally do not need
// it; it exists for backends that expose individual replay timings.
func MedianLatency(samplesMs []float64) (float64, error) {
	if len(samplesMs) == 0 {
		return 0, fmt.Errorf("no latency samples")
	}
	sorted := make([]float64, len(samplesMs))
	copy(sorted, samplesMs)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil), nil
}
