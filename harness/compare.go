package harness

import (
	"fmt"
	"math"
)

// ToleranceBand is the combined absolute/relative closeness band applied when
// comparing a measured utilization against its golden value. Fixed per run,
// not per entry.
type ToleranceBand struct {
	Abs float64
	Rel float64
}

// DefaultTolerance matches the band the golden values were recorded under.
var DefaultTolerance = ToleranceBand{Abs: 0.02, Rel: 0.01}

// Validate rejects bands with negative components, which would make even a
// self-comparison fail.
func (t ToleranceBand) Validate() error {
	if t.Abs < 0 || t.Rel < 0 {
		return fmt.Errorf("tolerance components must be non-negative, got abs=%v rel=%v", t.Abs, t.Rel)
	}
	return nil
}

// Compare checks |current - golden| <= abs + rel*|golden|. It returns nil on
// a pass and a *MismatchError carrying the signed difference on a fail. This
// is the sole assertion point of the harness.
func Compare(current, golden float64, tol ToleranceBand) error {
	diff := current - golden
	if math.Abs(diff) <= tol.Abs+tol.Rel*math.Abs(golden) {
		return nil
	}
	return &MismatchError{Current: current, Golden: golden, Diff: diff}
}
