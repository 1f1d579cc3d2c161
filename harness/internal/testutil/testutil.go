// Package testutil provides shared test infrastructure for the harness
// packages: repository-relative path resolution for versioned datasets and a
// tolerance assertion matching the comparator's closeness semantics.
package testutil

import (
	"math"
	"path/filepath"
	"runtime"
	"testing"
)

// RepoPath resolves a path relative to the repository root. The root is
// located from this source file: harness/internal/testutil/ -> repo root.
func RepoPath(t *testing.T, elems ...string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	root := filepath.Join(filepath.Dir(thisFile), "..", "..", "..")
	return filepath.Join(append([]string{root}, elems...)...)
}

// AssertWithin compares two float64 values under a combined
// absolute/relative tolerance band.
func AssertWithin(t *testing.T, name string, want, got, abs, rel float64) {
	t.Helper()
	diff := math.Abs(want - got)
	if diff > abs+rel*math.Abs(want) {
		t.Errorf("%s: got %v, want %v (diff=%v, band=abs %v + rel %v)", name, got, want, diff, abs, rel)
	}
}
