package harness

import "fmt"

// tensorOpsPerCycle maps (profile, precision) to the number of tensor-core
// operations one sub-core retires per cycle. v100 tensor cores only run
// half-precision math; a100 adds tf32-path float32, bfloat16 at the float16
// rate, and double-rate int8.
var tensorOpsPerCycle = map[HardwareProfile]map[Precision]float64{
	ProfileV100: {
		PrecisionFloat16: 256,
	},
	ProfileA100: {
		PrecisionFloat32:  256,
		PrecisionFloat16:  512,
		PrecisionBfloat16: 512,
		PrecisionInt8:     1024,
	},
}

// PeakTensorTFLOPS returns the compute-bound roofline ceiling in TFLOP/s for
// the given precision at the given SM clock. The clock must be the *current*
// operating frequency, not the datasheet value: GPUs throttle dynamically and
// normalizing against a nominal clock would bias every utilization figure.
// Returns an error if the precision is not modeled for the profile.
func PeakTensorTFLOPS(profile HardwareProfile, precision Precision, smClockMHz float64) (float64, error) {
	ops, ok := tensorOpsPerCycle[profile][precision]
	if !ok {
		return 0, fmt.Errorf("precision %s not modeled on %s tensor cores", precision, profile)
	}
	spec := profile.Spec()
	subcores := float64(spec.SMCount * spec.SubcoresPerSM)
	clockKHz := smClockMHz * 1e3
	return subcores * clockKHz * ops * 1e-9, nil
}

// PeakDRAMGBps returns the memory-bound roofline ceiling in GB/s at the given
// memory clock. Bandwidth is precision-independent: the bus moves bytes.
// The factor of 2 accounts for double data rate.
func PeakDRAMGBps(profile HardwareProfile, memClockMHz float64) float64 {
	spec := profile.Spec()
	busBytes := float64(spec.BusWidthBits / 8)
	return 2 * memClockMHz * 1e6 * busBytes * 1e-9
}
