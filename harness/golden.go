package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// The golden baseline store: a versioned, hand-maintained dataset of
// utilization fractions keyed by hardware family and configuration. Loaded
// once at startup from baselines/<profile>.yaml, read-only during a run,
// append-only when re-baselining.

type baselineFile struct {
	Version     int                   `yaml:"version"`
	Hardware    string                `yaml:"hardware"`
	Matmul      []matmulBaseline      `yaml:"matmul,omitempty"`
	Elementwise []elementwiseBaseline `yaml:"elementwise,omitempty"`
	Attention   []attentionBaseline   `yaml:"attention,omitempty"`
}

type matmulBaseline struct {
	M           int                `yaml:"m"`
	N           int                `yaml:"n"`
	K           int                `yaml:"k"`
	Utilization map[string]float64 `yaml:"utilization"`
}

type elementwiseBaseline struct {
	N           int                `yaml:"n"`
	Utilization map[string]float64 `yaml:"utilization"`
}

type attentionBaseline struct {
	Z           int     `yaml:"z"`
	H           int     `yaml:"h"`
	NCtx        int     `yaml:"n_ctx"`
	DHead       int     `yaml:"d_head"`
	SeqPar      bool    `yaml:"seq_par"`
	Causal      bool    `yaml:"causal"`
	Mode        string  `yaml:"mode"`
	Precision   string  `yaml:"precision"`
	Utilization float64 `yaml:"utilization"`
}

// GoldenStore maps HardwareProfile -> golden key -> utilization fraction.
type GoldenStore struct {
	entries map[HardwareProfile]map[string]float64
	files   map[HardwareProfile]*baselineFile
}

// NewGoldenStore returns an empty store. Tests and the re-baselining path
// populate it via Append; regression runs use LoadBaselines.
func NewGoldenStore() *GoldenStore {
	return &GoldenStore{
		entries: make(map[HardwareProfile]map[string]float64),
		files:   make(map[HardwareProfile]*baselineFile),
	}
}

// LoadBaselines reads every *.yaml baseline file under dir into one store.
func LoadBaselines(dir string) (*GoldenStore, error) {
	pattern := filepath.Join(dir, "*.yaml")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob baseline files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no baseline files found in %s", dir)
	}

	store := NewGoldenStore()
	for _, path := range files {
		if err := store.loadFile(path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return store, nil
}

func (s *GoldenStore) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read baseline file: %w", err)
	}
	var f baselineFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse baseline YAML: %w", err)
	}
	profile, err := ParseProfile(f.Hardware)
	if err != nil {
		return err
	}

	entries := make(map[string]float64)
	add := func(key string, util float64) error {
		if _, dup := entries[key]; dup {
			return fmt.Errorf("duplicate baseline entry %s", key)
		}
		entries[key] = util
		return nil
	}

	for _, row := range f.Matmul {
		cfg := MatmulConfig{M: row.M, N: row.N, K: row.K}
		for name, util := range row.Utilization {
			p, err := ParsePrecision(name)
			if err != nil {
				return fmt.Errorf("matmul %s: %w", cfg.Key(), err)
			}
			if err := add(Case{Config: cfg, Precision: p}.GoldenKey(), util); err != nil {
				return err
			}
		}
	}
	for _, row := range f.Elementwise {
		cfg := ElementwiseConfig{N: row.N}
		for name, util := range row.Utilization {
			p, err := ParsePrecision(name)
			if err != nil {
				return fmt.Errorf("elementwise %s: %w", cfg.Key(), err)
			}
			if err := add(Case{Config: cfg, Precision: p}.GoldenKey(), util); err != nil {
				return err
			}
		}
	}
	for _, row := range f.Attention {
		cfg := AttentionConfig{
			Z: row.Z, H: row.H, NCtx: row.NCtx, DHead: row.DHead,
			SeqPar: row.SeqPar, Causal: row.Causal, Mode: AttentionMode(row.Mode),
		}
		if cfg.Mode != ModeForward && cfg.Mode != ModeBackward {
			return fmt.Errorf("attention %s: unknown mode %q", cfg.Key(), row.Mode)
		}
		p, err := ParsePrecision(row.Precision)
		if err != nil {
			return fmt.Errorf("attention %s: %w", cfg.Key(), err)
		}
		if err := add(Case{Config: cfg, Precision: p}.GoldenKey(), row.Utilization); err != nil {
			return err
		}
	}

	if existing, ok := s.entries[profile]; ok {
		for k, v := range entries {
			if _, dup := existing[k]; dup {
				return fmt.Errorf("duplicate baseline entry %s for profile %s", k, profile)
			}
			existing[k] = v
		}
	} else {
		s.entries[profile] = entries
		s.files[profile] = &f
	}

	logrus.Debugf("Loaded %d golden entries for %s from %s", len(entries), profile, path)
	return nil
}

// Lookup returns the golden utilization for (profile, case), applying the
// documented precision substitutions via Case.GoldenKey. A miss wraps
// ErrGoldenMissing.
func (s *GoldenStore) Lookup(profile HardwareProfile, c Case) (float64, error) {
	entries, ok := s.entries[profile]
	if !ok {
		return 0, fmt.Errorf("%w: no baseline table for profile %s", ErrGoldenMissing, profile)
	}
	key := c.GoldenKey()
	value, ok := entries[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s on %s", ErrGoldenMissing, key, profile)
	}
	if key != c.Key() {
		logrus.Debugf("Golden lookup for %s substituted %s", c.Key(), key)
	}
	return value, nil
}

// Has reports whether a golden entry exists for (profile, case).
func (s *GoldenStore) Has(profile HardwareProfile, c Case) bool {
	_, err := s.Lookup(profile, c)
	return err == nil
}

// MissingEntries returns the keys of cases that the skip policy would run on
// the profile but that have no golden entry. An empty result is the
// completeness invariant the test suite enforces.
func (s *GoldenStore) MissingEntries(profile HardwareProfile, cases []Case) []string {
	var missing []string
	for _, c := range cases {
		if err := CheckSupported(profile, c); err != nil {
			continue
		}
		if !s.Has(profile, c) {
			missing = append(missing, c.Key())
		}
	}
	return missing
}

// Append records a utilization for (profile, case), creating the profile
// table if needed. Existing entries are overwritten with a warning; entries
// are never removed. Cases whose golden key is a substitution (element-wise
// bfloat16) update the substituted entry.
func (s *GoldenStore) Append(profile HardwareProfile, c Case, utilization float64) {
	if _, ok := s.entries[profile]; !ok {
		s.entries[profile] = make(map[string]float64)
		s.files[profile] = &baselineFile{Version: 1, Hardware: string(profile)}
	}
	key := c.GoldenKey()
	if old, ok := s.entries[profile][key]; ok && old != utilization {
		logrus.Warnf("Re-baselining %s on %s: %.3f -> %.3f", key, profile, old, utilization)
	}
	s.entries[profile][key] = utilization
	s.appendToFile(profile, c, utilization)
}

func (s *GoldenStore) appendToFile(profile HardwareProfile, c Case, utilization float64) {
	f := s.files[profile]
	switch cfg := c.Config.(type) {
	case MatmulConfig:
		for i := range f.Matmul {
			if f.Matmul[i].M == cfg.M && f.Matmul[i].N == cfg.N && f.Matmul[i].K == cfg.K {
				f.Matmul[i].Utilization[string(c.Precision)] = utilization
				return
			}
		}
		f.Matmul = append(f.Matmul, matmulBaseline{
			M: cfg.M, N: cfg.N, K: cfg.K,
			Utilization: map[string]float64{string(c.Precision): utilization},
		})
	case ElementwiseConfig:
		precision := c.Precision
		if precision == PrecisionBfloat16 {
			precision = PrecisionFloat16
		}
		for i := range f.Elementwise {
			if f.Elementwise[i].N == cfg.N {
				f.Elementwise[i].Utilization[string(precision)] = utilization
				return
			}
		}
		f.Elementwise = append(f.Elementwise, elementwiseBaseline{
			N:           cfg.N,
			Utilization: map[string]float64{string(precision): utilization},
		})
	case AttentionConfig:
		for i := range f.Attention {
			row := &f.Attention[i]
			if row.Z == cfg.Z && row.H == cfg.H && row.NCtx == cfg.NCtx && row.DHead == cfg.DHead &&
				row.SeqPar == cfg.SeqPar && row.Causal == cfg.Causal &&
				row.Mode == string(cfg.Mode) && row.Precision == string(c.Precision) {
				row.Utilization = utilization
				return
			}
		}
		f.Attention = append(f.Attention, attentionBaseline{
			Z: cfg.Z, H: cfg.H, NCtx: cfg.NCtx, DHead: cfg.DHead,
			SeqPar: cfg.SeqPar, Causal: cfg.Causal,
			Mode: string(cfg.Mode), Precision: string(c.Precision),
			Utilization: utilization,
		})
	}
}

// Save writes the profile's baseline table to path as YAML.
func (s *GoldenStore) Save(path string, profile HardwareProfile) error {
	f, ok := s.files[profile]
	if !ok {
		return fmt.Errorf("no baseline table for profile %s", profile)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal baseline YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write baseline file: %w", err)
	}
	return nil
}
