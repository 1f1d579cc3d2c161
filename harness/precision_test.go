package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrecision_RoundTrip(t *testing.T) {
	for _, name := range []string{"float16", "bfloat16", "float32", "int8"} {
		p, err := ParsePrecision(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.String())
	}
}

func TestParsePrecision_Unknown(t *testing.T) {
	_, err := ParsePrecision("float64")
	assert.Error(t, err)
}

func TestElementSize(t *testing.T) {
	assert.Equal(t, 2, PrecisionFloat16.ElementSize())
	assert.Equal(t, 2, PrecisionBfloat16.ElementSize())
	assert.Equal(t, 4, PrecisionFloat32.ElementSize())
	assert.Equal(t, 1, PrecisionInt8.ElementSize())
}
