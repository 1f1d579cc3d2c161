package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reflexivity: compare(x, x) passes for any band with non-negative
// components, including the zero band.
func TestCompare_Reflexive(t *testing.T) {
	for _, x := range []float64{0, 0.001, 0.283, 0.999, 1.0} {
		assert.NoError(t, Compare(x, x, ToleranceBand{}), "x=%v", x)
		assert.NoError(t, Compare(x, x, DefaultTolerance), "x=%v", x)
	}
}

func TestCompare_WithinBand(t *testing.T) {
	// Measured 0.284 against golden 0.283 under abs=0.02.
	assert.NoError(t, Compare(0.284, 0.283, DefaultTolerance))
	// Just inside the combined band (abs 0.02 + rel 0.01*0.5 = 0.025).
	assert.NoError(t, Compare(0.524, 0.5, DefaultTolerance))
	assert.Error(t, Compare(0.526, 0.5, DefaultTolerance))
}

func TestCompare_Regression(t *testing.T) {
	err := Compare(0.20, 0.283, ToleranceBand{Abs: 0.02})
	require.Error(t, err)

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.InDelta(t, -0.083, mismatch.Diff, 1e-12)
	assert.Equal(t, 0.20, mismatch.Current)
	assert.Equal(t, 0.283, mismatch.Golden)
	assert.Contains(t, mismatch.Error(), "regression")
}

// An improvement outside tolerance still fails, but the diagnostic says so:
// the signed diff tells maintainers which direction the change went.
func TestCompare_ImprovementStillFails(t *testing.T) {
	err := Compare(0.40, 0.283, DefaultTolerance)
	require.Error(t, err)

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Greater(t, mismatch.Diff, 0.0)
	assert.Contains(t, mismatch.Error(), "improvement")
}

func TestToleranceBand_Validate(t *testing.T) {
	assert.NoError(t, ToleranceBand{}.Validate())
	assert.NoError(t, DefaultTolerance.Validate())
	assert.Error(t, ToleranceBand{Abs: -0.01}.Validate())
	assert.Error(t, ToleranceBand{Rel: -0.01}.Validate())
}

func TestDefaultTolerance(t *testing.T) {
	assert.Equal(t, ToleranceBand{Abs: 0.02, Rel: 0.01}, DefaultTolerance)
}
