package report

// Summary aggregates statistics from a Run.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int

	// WorstDiff is the most negative signed difference among failures (the
	// deepest regression); WorstKey names its configuration. Zero/empty when
	// nothing failed.
	WorstDiff float64
	WorstKey  string

	FamilyCounts map[string]int // family -> measured (non-skip) configurations
}

// Summarize computes aggregate statistics from a Run.
// Safe for nil or empty runs (returns zero-value fields).
func Summarize(r *Run) *Summary {
	summary := &Summary{FamilyCounts: make(map[string]int)}
	if r == nil {
		return summary
	}

	summary.Total = len(r.Outcomes)
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusPass:
			summary.Passed++
		case StatusFail:
			summary.Failed++
		case StatusSkip:
			summary.Skipped++
		}
		if o.Status != StatusSkip {
			summary.FamilyCounts[o.Family]++
		}
		if o.Status == StatusFail && o.Diff < summary.WorstDiff {
			summary.WorstDiff = o.Diff
			summary.WorstKey = o.Key
		}
	}
	return summary
}
