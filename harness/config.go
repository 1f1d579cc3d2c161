package harness

import "fmt"

// KernelFamily names one of the three benchmarked kernel families.
type KernelFamily string

const (
	FamilyMatmul      KernelFamily = "matmul"
	FamilyElementwise KernelFamily = "elementwise"
	FamilyAttention   KernelFamily = "attention"
)

// KernelConfig is a problem shape plus mode flags for one kernel family.
// Its Key is stable and forms part of the golden lookup key and the
// recorded-latency key.
type KernelConfig interface {
	Family() KernelFamily
	Key() string
}

// MatmulConfig is a dense matrix multiplication shape: (M,K) x (K,N).
type MatmulConfig struct {
	M, N, K int
}

func (c MatmulConfig) Family() KernelFamily { return FamilyMatmul }
func (c MatmulConfig) Key() string          { return fmt.Sprintf("%dx%dx%d", c.M, c.N, c.K) }

// ElementwiseConfig is an element-wise add over N elements.
type ElementwiseConfig struct {
	N int
}

func (c ElementwiseConfig) Family() KernelFamily { return FamilyElementwise }
func (c ElementwiseConfig) Key() string          { return fmt.Sprintf("%d", c.N) }

// AttentionMode selects the measured direction of the attention kernel.
type AttentionMode string

const (
	ModeForward  AttentionMode = "forward"
	ModeBackward AttentionMode = "backward"
)

// AttentionConfig is a fused-attention shape: batch Z, heads H, sequence
// length NCtx, per-head dimension DHead, plus the kernel mode flags.
type AttentionConfig struct {
	Z, H, NCtx, DHead int
	SeqPar            bool // sequence-parallel backward variant
	Causal            bool
	Mode              AttentionMode
}

func (c AttentionConfig) Family() KernelFamily { return FamilyAttention }

func (c AttentionConfig) Key() string {
	return fmt.Sprintf("z%dh%dn%dd%d-seqpar%v-causal%v-%s",
		c.Z, c.H, c.NCtx, c.DHead, c.SeqPar, c.Causal, c.Mode)
}

// Case is one cell of the configuration matrix: a kernel configuration at a
// precision. Each (HardwareProfile, Case) pair maps to at most one golden
// utilization value.
type Case struct {
	Config    KernelConfig
	Precision Precision
}

// Key uniquely identifies the case within a profile, e.g.
// "matmul/1024x1024x1024/float16". Recorded latencies are keyed by it.
func (c Case) Key() string {
	return fmt.Sprintf("%s/%s/%s", c.Config.Family(), c.Config.Key(), c.Precision)
}

// GoldenKey is Key with precision-family normalization applied: element-wise
// bfloat16 runs at the float16 DRAM rate and reuses the float16 baseline
// rather than recording a duplicate entry.
func (c Case) GoldenKey() string {
	precision := c.Precision
	if c.Config.Family() == FamilyElementwise && precision == PrecisionBfloat16 {
		precision = PrecisionFloat16
	}
	return fmt.Sprintf("%s/%s/%s", c.Config.Family(), c.Config.Key(), precision)
}

func (c Case) Family() KernelFamily { return c.Config.Family() }
