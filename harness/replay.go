package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Recording is a device capture: per-case latencies plus the clock sample and
// capability observed while they were measured. It lets CI replay a
// measurement session through the full comparison pipeline on machines
// without the device.
type Recording struct {
	Hardware        string             `yaml:"hardware"`
	CapabilityMajor int                `yaml:"capability_major"`
	CapabilityMinor int                `yaml:"capability_minor"`
	SMClockMHz      float64            `yaml:"sm_clock_mhz"`
	MemClockMHz     float64            `yaml:"mem_clock_mhz"`
	LatenciesMs     map[string]float64 `yaml:"latencies_ms"` // Case.Key() -> ms
}

// LoadRecording reads a recording YAML file.
func LoadRecording(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording %q: %w", path, err)
	}
	var rec Recording
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse recording YAML: %w", err)
	}
	if rec.CapabilityMajor == 0 {
		return nil, fmt.Errorf("recording %q missing capability_major", path)
	}
	return &rec, nil
}

// RecordedBackend replays a Recording through the Backend interface. The
// prepared callable marks which case Benchmark should resolve; the harness
// drives cases strictly sequentially, so a single pending key suffices.
type RecordedBackend struct {
	rec     *Recording
	pending string
}

// NewRecordedBackend wraps a recording.
func NewRecordedBackend(rec *Recording) *RecordedBackend {
	return &RecordedBackend{rec: rec}
}

func (b *RecordedBackend) Capability() (int, int, error) {
	return b.rec.CapabilityMajor, b.rec.CapabilityMinor, nil
}

// Clocks returns the clocks captured with the recording, falling back to the
// profile's nominal clocks for captures that predate clock recording.
func (b *RecordedBackend) Clocks() (ClockSample, error) {
	sample := ClockSample{SMClockMHz: b.rec.SMClockMHz, MemClockMHz: b.rec.MemClockMHz}
	if sample.SMClockMHz > 0 && sample.MemClockMHz > 0 {
		return sample, nil
	}
	profile, err := DetectProfile(b.rec.CapabilityMajor, b.rec.CapabilityMinor)
	if err != nil {
		return ClockSample{}, &HardwareQueryError{Op: "recording clocks", Err: err}
	}
	spec := profile.Spec()
	if sample.SMClockMHz <= 0 {
		sample.SMClockMHz = spec.NominalSMClockMHz
	}
	if sample.MemClockMHz <= 0 {
		sample.MemClockMHz = spec.NominalMemClockMHz
	}
	return sample, nil
}

func (b *RecordedBackend) prepare(c Case) (func(), error) {
	key := c.Key()
	if _, ok := b.rec.LatenciesMs[key]; !ok {
		return nil, fmt.Errorf("recording has no latency for %s", key)
	}
	return func() { b.pending = key }, nil
}

func (b *RecordedBackend) PrepareMatmul(cfg MatmulConfig, p Precision) (func(), error) {
	return b.prepare(Case{Config: cfg, Precision: p})
}

func (b *RecordedBackend) PrepareElementwise(cfg ElementwiseConfig, p Precision) (func(), error) {
	return b.prepare(Case{Config: cfg, Precision: p})
}

func (b *RecordedBackend) PrepareAttention(cfg AttentionConfig, p Precision) (func(), error) {
	return b.prepare(Case{Config: cfg, Precision: p})
}

// Benchmark invokes the callable and returns the recorded latency for the
// case it marked.
func (b *RecordedBackend) Benchmark(fn func()) (float64, error) {
	b.pending = ""
	fn()
	ms, ok := b.rec.LatenciesMs[b.pending]
	if !ok {
		return 0, fmt.Errorf("benchmarked callable was not prepared by this recording")
	}
	return ms, nil
}
