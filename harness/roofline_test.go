package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeakTensorTFLOPS_A100(t *testing.T) {
	// 108 SMs x 4 sub-cores x 1350e3 kHz x ops/cycle x 1e-9
	tests := []struct {
		precision Precision
		want      float64
	}{
		{PrecisionFloat16, 298.5984},
		{PrecisionBfloat16, 298.5984},
		{PrecisionFloat32, 149.2992},
		{PrecisionInt8, 597.1968},
	}
	for _, tc := range tests {
		got, err := PeakTensorTFLOPS(ProfileA100, tc.precision, 1350)
		require.NoError(t, err, "precision %s", tc.precision)
		assert.InDelta(t, tc.want, got, 1e-9, "precision %s", tc.precision)
	}
}

func TestPeakTensorTFLOPS_V100(t *testing.T) {
	got, err := PeakTensorTFLOPS(ProfileV100, PrecisionFloat16, 1350)
	require.NoError(t, err)
	assert.InDelta(t, 110.592, got, 1e-9)
}

func TestPeakTensorTFLOPS_UnmodeledPrecision(t *testing.T) {
	for _, p := range []Precision{PrecisionFloat32, PrecisionBfloat16, PrecisionInt8} {
		_, err := PeakTensorTFLOPS(ProfileV100, p, 1350)
		assert.Error(t, err, "precision %s should not be modeled on v100", p)
	}
}

func TestPeakTensorTFLOPS_LinearInClock(t *testing.T) {
	base, err := PeakTensorTFLOPS(ProfileA100, PrecisionFloat16, 1000)
	require.NoError(t, err)
	throttled, err := PeakTensorTFLOPS(ProfileA100, PrecisionFloat16, 500)
	require.NoError(t, err)
	assert.InDelta(t, base/2, throttled, 1e-9)
}

func TestPeakDRAMGBps(t *testing.T) {
	// DDR x clock x bus bytes: a100 at nominal memory clock is ~1.55 TB/s,
	// v100 ~0.9 TB/s.
	assert.InDelta(t, 1555.2, PeakDRAMGBps(ProfileA100, 1215), 1e-9)
	assert.InDelta(t, 898.048, PeakDRAMGBps(ProfileV100, 877), 1e-9)
}
