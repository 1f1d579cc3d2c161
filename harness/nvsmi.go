package harness

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// NvsmiQuerier reads live device state through the nvidia-smi CSV interface.
// It covers the two introspection contracts the harness needs (capability and
// current clocks); kernel preparation and timing come from a full Backend
// that embeds it.
type NvsmiQuerier struct {
	Index int // device index passed to -i

	// run executes a command and returns its stdout. Overridable in tests.
	run func(name string, args ...string) ([]byte, error)
}

// NewNvsmiQuerier returns a querier for the given device index.
func NewNvsmiQuerier(index int) *NvsmiQuerier {
	return &NvsmiQuerier{
		Index: index,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
	}
}

// query runs one nvidia-smi --query-gpu call and returns the comma-separated
// fields of the single output row.
func (q *NvsmiQuerier) query(attrs ...string) ([]string, error) {
	args := []string{
		"-i", strconv.Itoa(q.Index),
		"--query-gpu=" + strings.Join(attrs, ","),
		"--format=csv,noheader,nounits",
	}
	out, err := q.run("nvidia-smi", args...)
	if err != nil {
		return nil, &HardwareQueryError{Op: "nvidia-smi", Err: err}
	}
	fields := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(fields) != len(attrs) {
		return nil, &HardwareQueryError{
			Op:  "nvidia-smi",
			Err: fmt.Errorf("expected %d fields, got %q", len(attrs), string(out)),
		}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, nil
}

// Clocks returns the current SM and memory clock frequencies in MHz.
func (q *NvsmiQuerier) Clocks() (ClockSample, error) {
	fields, err := q.query("clocks.current.sm", "clocks.current.memory")
	if err != nil {
		return ClockSample{}, err
	}
	sm, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return ClockSample{}, &HardwareQueryError{Op: "clocks.current.sm", Err: err}
	}
	mem, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return ClockSample{}, &HardwareQueryError{Op: "clocks.current.memory", Err: err}
	}
	return ClockSample{SMClockMHz: sm, MemClockMHz: mem}, nil
}

// Capability returns the device compute capability as (major, minor).
func (q *NvsmiQuerier) Capability() (int, int, error) {
	fields, err := q.query("compute_cap")
	if err != nil {
		return 0, 0, err
	}
	parts := strings.SplitN(fields[0], ".", 2)
	if len(parts) != 2 {
		return 0, 0, &HardwareQueryError{
			Op:  "compute_cap",
			Err: fmt.Errorf("malformed capability %q", fields[0]),
		}
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, &HardwareQueryError{Op: "compute_cap", Err: err}
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, &HardwareQueryError{Op: "compute_cap", Err: err}
	}
	return major, minor, nil
}
