package harness

// The configuration matrix: the cross-product of shapes, precisions, and mode
// flags each family is measured under, plus the skip rules for combinations
// known to be unsupported on a given device family.

var matmulShapes = []MatmulConfig{
	// square
	{512, 512, 512},
	{1024, 1024, 1024},
	{2048, 2048, 2048},
	{8192, 8192, 8192},
	// tall-skinny
	{16, 1024, 1024},
	{16, 4096, 4096},
	{16, 8192, 8192},
	{64, 1024, 1024},
	{64, 4096, 4096},
	{64, 8192, 8192},
	{1024, 64, 1024},
	{4096, 64, 4096},
	{8192, 64, 8192},
	// K not a multiple of the tile size
	{8192, 8192, 8176},
}

var matmulPrecisions = []Precision{PrecisionFloat16, PrecisionFloat32, PrecisionInt8}

// matmulSharedMemoryExcluded lists float32 shapes whose working set exceeds
// on-chip shared memory for the chosen kernel strategy. A literal exclusion
// list, not a derived capacity model: deriving it would silently change
// coverage if the capacity formula disagreed with the kernels.
var matmulSharedMemoryExcluded = map[MatmulConfig]bool{
	{M: 64, N: 4096, K: 4096}: true,
	{M: 64, N: 8192, K: 8192}: true,
	{M: 8192, N: 64, K: 8192}: true,
}

var elementwiseSizes = []ElementwiseConfig{
	{N: 1024 * 16},
	{N: 1024 * 64},
	{N: 1024 * 256},
	{N: 1024 * 1024},
	{N: 1024 * 16384},
	{N: 1024 * 65536},
	// non power of two
	{N: 1020 * 100},
	{N: 10003 * 7007},
}

var elementwisePrecisions = []Precision{PrecisionFloat16, PrecisionBfloat16, PrecisionFloat32}

var attentionPrecisions = []Precision{PrecisionFloat16, PrecisionBfloat16, PrecisionFloat32}

// MatmulCases enumerates the matmul matrix.
func MatmulCases() []Case {
	var cases []Case
	for _, shape := range matmulShapes {
		for _, p := range matmulPrecisions {
			cases = append(cases, Case{Config: shape, Precision: p})
		}
	}
	return cases
}

// ElementwiseCases enumerates the element-wise matrix.
func ElementwiseCases() []Case {
	var cases []Case
	for _, size := range elementwiseSizes {
		for _, p := range elementwisePrecisions {
			cases = append(cases, Case{Config: size, Precision: p})
		}
	}
	return cases
}

// AttentionCases enumerates the attention matrix. Under float32 the full
// shape is infeasible, so the sequence length and head dimension are reduced
// here, before any golden lookup: the reduced shape is the lookup key.
func AttentionCases() []Case {
	var cases []Case
	for _, seqPar := range []bool{true, false} {
		for _, causal := range []bool{true, false} {
			for _, mode := range []AttentionMode{ModeForward, ModeBackward} {
				for _, p := range attentionPrecisions {
					cfg := AttentionConfig{
						Z: 4, H: 48, NCtx: 4096, DHead: 64,
						SeqPar: seqPar, Causal: causal, Mode: mode,
					}
					if p == PrecisionFloat32 {
						cfg.NCtx = 1024
						cfg.DHead = 16
					}
					cases = append(cases, Case{Config: cfg, Precision: p})
				}
			}
		}
	}
	return cases
}

// AllCases enumerates every family's matrix in reporting order.
func AllCases() []Case {
	var cases []Case
	cases = append(cases, MatmulCases()...)
	cases = append(cases, ElementwiseCases()...)
	cases = append(cases, AttentionCases()...)
	return cases
}

// FamilyCases enumerates the matrix of a single family.
func FamilyCases(family KernelFamily) []Case {
	switch family {
	case FamilyMatmul:
		return MatmulCases()
	case FamilyElementwise:
		return ElementwiseCases()
	case FamilyAttention:
		return AttentionCases()
	}
	return nil
}

// CheckSupported is the skip policy. It returns nil when the case should be
// measured on the profile, or a *SkipError carrying the reason. Decisions
// depend only on (profile, case) and never vary across runs.
func CheckSupported(profile HardwareProfile, c Case) error {
	spec := profile.Spec()
	switch cfg := c.Config.(type) {
	case MatmulConfig:
		if (c.Precision == PrecisionFloat32 || c.Precision == PrecisionInt8) && spec.CapabilityMajor < 8 {
			return &SkipError{Reason: "float32 and int8 matmul only measured on a100-class hardware"}
		}
		if c.Precision == PrecisionFloat32 && matmulSharedMemoryExcluded[cfg] {
			return &SkipError{Reason: "out of shared memory in float32"}
		}
	case ElementwiseConfig:
		if c.Precision == PrecisionBfloat16 && spec.CapabilityMajor < 8 {
			return &SkipError{Reason: "bfloat16 only measured on a100-class hardware"}
		}
	case AttentionConfig:
		if spec.CapabilityMajor < 8 {
			return &SkipError{Reason: "flash attention requires compute capability 8.0 or newer"}
		}
	}
	return nil
}
