package harness

import (
	"errors"
	"fmt"
)

// ErrGoldenMissing marks a configuration that was run but has no baseline
// entry for the active profile. The matrix and the baseline dataset must stay
// in sync, so a miss is a test-maintenance bug, not a recoverable condition.
var ErrGoldenMissing = errors.New("no golden baseline entry")

// SkipError is returned by the skip policy for configurations known to be
// unsupported or inapplicable on the active hardware. It is surfaced as an
// explicit skip, never as a failure.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "configuration unsupported: " + e.Reason
}

// MismatchError reports a utilization regression. Diff is signed
// (current - golden): negative means a regression, positive an improvement
// that drifted outside tolerance and likely calls for re-baselining.
type MismatchError struct {
	Current float64
	Golden  float64
	Diff    float64
}

func (e *MismatchError) Error() string {
	direction := "regression"
	if e.Diff > 0 {
		direction = "improvement"
	}
	return fmt.Sprintf("utilization mismatch (%s): cur=%.3f ref=%.3f dif=%+.3f",
		direction, e.Current, e.Golden, e.Diff)
}

// HardwareQueryError wraps a failed capability or live-clock query. Without
// it no measurement can be normalized, so it is fatal to the whole run.
type HardwareQueryError struct {
	Op  string
	Err error
}

func (e *HardwareQueryError) Error() string {
	return fmt.Sprintf("hardware query %s: %v", e.Op, e.Err)
}

func (e *HardwareQueryError) Unwrap() error { return e.Err }
