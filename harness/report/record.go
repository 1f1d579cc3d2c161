// Package report collects per-configuration outcomes of a regression run.
// It has no dependency on harness/ — it stores pure data types, so external
// tooling can consume run results without pulling in the measurement stack.
package report

import "fmt"

// Status is the decision reached for one configuration.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Outcome captures a single configuration's result. LatencyMs, Current,
// Golden, and Diff are zero for skips; Reason carries the skip reason or the
// failure description.
type Outcome struct {
	Family    string
	Key       string
	Status    Status
	Reason    string
	LatencyMs float64
	Current   float64
	Golden    float64
	Diff      float64 // signed, Current - Golden
}

// Line renders the human-readable per-case report line.
func (o Outcome) Line() string {
	switch o.Status {
	case StatusSkip:
		return fmt.Sprintf("%-60s SKIP (%s)", o.Key, o.Reason)
	case StatusFail:
		if o.LatencyMs == 0 {
			return fmt.Sprintf("%-60s FAIL (%s)", o.Key, o.Reason)
		}
		return fmt.Sprintf("%-60s %.3f ms \t cur: %.3f \t ref: %.3f \t dif=%+.3f \t FAIL",
			o.Key, o.LatencyMs, o.Current, o.Golden, o.Diff)
	default:
		return fmt.Sprintf("%-60s %.3f ms \t cur: %.3f \t ref: %.3f \t dif=%+.3f",
			o.Key, o.LatencyMs, o.Current, o.Golden, o.Diff)
	}
}

// Run accumulates outcomes for one hardware profile.
type Run struct {
	Hardware string
	Outcomes []Outcome
}

// NewRun creates a Run ready for recording.
func NewRun(hardware string) *Run {
	return &Run{Hardware: hardware, Outcomes: make([]Outcome, 0)}
}

// Record appends one outcome.
func (r *Run) Record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Failed reports whether any configuration failed.
func (r *Run) Failed() bool {
	for _, o := range r.Outcomes {
		if o.Status == StatusFail {
			return true
		}
	}
	return false
}
