package harness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtilization(t *testing.T) {
	got, err := Utilization(84.5, 298.5984)
	require.NoError(t, err)
	assert.InDelta(t, 0.283, got, 1e-3)
	assert.Greater(t, got, 0.0)
	assert.False(t, math.IsNaN(got))
	assert.False(t, math.IsInf(got, 0))
}

func TestUtilization_InvalidPeak(t *testing.T) {
	for _, peak := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Utilization(10, peak)
		assert.Error(t, err, "peak=%v", peak)
	}
}

// Utilization is not clamped: a value above 1.0 is returned so the caller can
// surface the roofline-model error.
func TestUtilization_NoClamping(t *testing.T) {
	got, err := Utilization(400, 298.5984)
	require.NoError(t, err)
	assert.Greater(t, got, 1.0)
}

func TestMedianLatency(t *testing.T) {
	got, err := MedianLatency([]float64{0.5, 0.3, 0.9})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)

	// A single outlier does not move the median.
	got, err = MedianLatency([]float64{0.3, 0.31, 0.29, 0.3, 50.0})
	require.NoError(t, err)
	assert.InDelta(t, 0.3, got, 1e-12)
}

func TestMedianLatency_Empty(t *testing.T) {
	_, err := MedianLatency(nil)
	assert.Error(t, err)
}

func TestMedianLatency_DoesNotMutateInput(t *testing.T) {
	samples := []float64{0.9, 0.1, 0.5}
	_, err := MedianLatency(samples)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.1, 0.5}, samples)
}
