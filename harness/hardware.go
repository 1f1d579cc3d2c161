package harness

import (
	"fmt"
	"sort"
)

// HardwareProfile identifies the device family a run executes on. It selects
// the golden baseline sub-table, the roofline constant block, and the skip
// rules that apply. Derived once per run from the capability query and
// immutable afterwards.
type HardwareProfile string

const (
	ProfileV100 HardwareProfile = "v100"
	ProfileA100 HardwareProfile = "a100"
)

// HardwareSpec holds the fixed per-profile constants used by the roofline
// model. Nominal clocks are reference values only; live measurements always
// use the clocks reported by the backend.
type HardwareSpec struct {
	CapabilityMajor    int // minimum compute capability major of this family
	SMCount            int
	SubcoresPerSM      int // tensor sub-cores (warp schedulers) per SM
	BusWidthBits       int // DRAM bus width
	NominalSMClockMHz  float64
	NominalMemClockMHz float64
}

var hardwareSpecs = map[HardwareProfile]HardwareSpec{
	ProfileV100: {
		CapabilityMajor:    7,
		SMCount:            80,
		SubcoresPerSM:      4,
		BusWidthBits:       4096,
		NominalSMClockMHz:  1350,
		NominalMemClockMHz: 877,
	},
	ProfileA100: {
		CapabilityMajor:    8,
		SMCount:            108,
		SubcoresPerSM:      4,
		BusWidthBits:       5120,
		NominalSMClockMHz:  1350,
		NominalMemClockMHz: 1215,
	},
}

// Spec returns the constant block for the profile. Panics on an unknown
// profile; callers obtain profiles via DetectProfile or ParseProfile, which
// validate.
func (p HardwareProfile) Spec() HardwareSpec {
	spec, ok := hardwareSpecs[p]
	if !ok {
		panic(fmt.Sprintf("unknown hardware profile %q", p))
	}
	return spec
}

// Valid reports whether p names a supported device family.
func (p HardwareProfile) Valid() bool {
	_, ok := hardwareSpecs[p]
	return ok
}

// Profiles returns all supported profiles in stable order.
func Profiles() []HardwareProfile {
	out := make([]HardwareProfile, 0, len(hardwareSpecs))
	for p := range hardwareSpecs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DetectProfile maps a compute-capability tuple to a device family.
// Capability majors without a modeled family are an error: measurements on
// unknown hardware cannot be normalized against any golden table.
func DetectProfile(major, minor int) (HardwareProfile, error) {
	for p, spec := range hardwareSpecs {
		if spec.CapabilityMajor == major {
			return p, nil
		}
	}
	return "", fmt.Errorf("no hardware profile for compute capability %d.%d", major, minor)
}

// ParseProfile validates a user-supplied profile name (e.g. a CLI flag).
func ParseProfile(s string) (HardwareProfile, error) {
	p := HardwareProfile(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown hardware profile %q (supported: %v)", s, Profiles())
	}
	return p, nil
}
