package harness

import "fmt"

// Precision is the numeric format a kernel runs in. It selects the roofline
// constants and is part of the golden lookup key.
type Precision string

const (
	PrecisionFloat16  Precision = "float16"
	PrecisionBfloat16 Precision = "bfloat16"
	PrecisionFloat32  Precision = "float32"
	PrecisionInt8     Precision = "int8"
)

var elementSizes = map[Precision]int{
	PrecisionFloat16:  2,
	PrecisionBfloat16: 2,
	PrecisionFloat32:  4,
	PrecisionInt8:     1,
}

// ParsePrecision validates a precision name.
func ParsePrecision(s string) (Precision, error) {
	p := Precision(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown precision %q", s)
	}
	return p, nil
}

// Valid reports whether p is a recognized precision.
func (p Precision) Valid() bool {
	_, ok := elementSizes[p]
	return ok
}

// ElementSize returns the storage size of one element in bytes.
func (p Precision) ElementSize() int {
	size, ok := elementSizes[p]
	if !ok {
		panic(fmt.Sprintf("unknown precision %q", p))
	}
	return size
}

func (p Precision) String() string { return string(p) }
