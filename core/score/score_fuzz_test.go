package score

import (
	"math"
	"testing"

	"github.com/huangsam/codescore/schema"
)

// FuzzAggregate checks the clamp invariants of the score bundle for arbitrary metrics.
func FuzzAggregate(f *testing.F) {
	f.Add(4, 2, 10.0, 50.0, 3, 8.0)
	f.Add(0, 0, 0.0, 0.0, 0, 0.0)
	f.Add(1000, 1000, 100.0, 1e6, 50, 10.0)

	f.Fuzz(func(t *testing.T, functions, classes int, ratio, complexity float64, findings int, lint float64) {
		if math.IsNaN(ratio) || math.IsNaN(complexity) || math.IsInf(ratio, 0) || math.IsInf(complexity, 0) {
			return
		}
		if functions < 0 || classes < 0 || findings < 0 {
			return
		}

		m := schema.AnalysisMetrics{
			FunctionCount:   functions,
			ClassCount:      classes,
			CommentRatio:    ratio,
			ComplexityScore: complexity,
		}
		got := Aggregate(m, findings, lint, DefaultWeights())

		if got.MaintainabilityScore < 0 || got.MaintainabilityScore > 100 {
			t.Errorf("maintainability out of range: %v", got.MaintainabilityScore)
		}
		if got.SecurityScore < 0 || got.SecurityScore > 100 {
			t.Errorf("security out of range: %v", got.SecurityScore)
		}
	})
}

// FuzzComputeMetrics checks that metrics stay consistent for arbitrary text.
func FuzzComputeMetrics(f *testing.F) {
	f.Add("def f():\n    return 1\n")
	f.Add("# only a comment")
	f.Add("")

	f.Fuzz(func(t *testing.T, src string) {
		m, err := ComputeMetrics(src)
		if err != nil {
			return
		}
		if m.CommentRatio < 0 || m.CommentRatio > 100 {
			t.Errorf("comment ratio out of range: %v", m.CommentRatio)
		}
		if m.CodeSize < 0 || m.ComplexityScore < 0 {
			t.Errorf("negative metrics: %+v", m)
		}
	})
}
