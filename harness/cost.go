package harness

// Cost models: the documented FLOP / byte-transfer cost of each kernel family
// as a pure function of its configuration. Kept separate from measurement so
// the arithmetic is unit-testable without hardware.

// MatmulFLOPs returns the floating-point operation count of one matmul call.
// Factor of 2: each output element is a K-long chain of multiply-adds.
func MatmulFLOPs(c MatmulConfig) float64 {
	return 2 * float64(c.M) * float64(c.N) * float64(c.K)
}

// MatmulTFLOPS converts a per-call latency into achieved TFLOP/s.
func MatmulTFLOPS(c MatmulConfig, latencyMs float64) float64 {
	return MatmulFLOPs(c) / latencyMs * 1e-9
}

// ElementwiseBytes returns the bytes moved by one element-wise add call.
// Factor of 3: two operand reads plus one result write.
func ElementwiseBytes(c ElementwiseConfig, p Precision) float64 {
	return 3 * float64(c.N) * float64(p.ElementSize())
}

// ElementwiseGBps converts a per-call latency into achieved GB/s.
func ElementwiseGBps(c ElementwiseConfig, p Precision, latencyMs float64) float64 {
	return ElementwiseBytes(c, p) / latencyMs * 1e-6
}

// AttentionFLOPs returns the floating-point operation count of one attention
// call. Two matmuls (QK^T and PV) per block; the 0.5 halves the score matrix
// for causal masking and is applied to every mask mode, matching the scale
// the baselines were recorded at. Backward runs the two backward matmuls
// (2.0x) plus a forward recomputation (0.5x), 2.5x total.
func AttentionFLOPs(c AttentionConfig) float64 {
	flopsPerMatmul := 2 * float64(c.Z) * float64(c.H) *
		float64(c.NCtx) * float64(c.NCtx) * float64(c.DHead) * 0.5
	total := 2 * flopsPerMatmul
	if c.Mode == ModeBackward {
		total *= 2.5
	}
	return total
}

// AttentionTFLOPS converts a per-call latency into achieved TFLOP/s.
func AttentionTFLOPS(c AttentionConfig, latencyMs float64) float64 {
	return AttentionFLOPs(c) / latencyMs * 1e-9
}
