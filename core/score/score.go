// Package score turns analysis metrics and collaborator findings into quality scores.
// Everything here is pure and safe to call concurrently.
package score

import (
	"math"
	"strconv"

	"github.com/huangsam/codescore/schema"
)

// Weights are the coefficients of the overall score.
type Weights struct {
	Complexity      float64 `json:"complexity" mapstructure:"complexity"`
	Maintainability float64 `json:"maintainability" mapstructure:"maintainability"`
	Security        float64 `json:"security" mapstructure:"security"`
	Lint            float64 `json:"lint" mapstructure:"lint"`
}

// DefaultWeights returns the standard 0.3 / 0.3 / 0.2 / 0.2 weighting.
func DefaultWeights() Weights {
	return Weights{
		Complexity:      0.3,
		Maintainability: 0.3,
		Security:        0.2,
		Lint:            0.2,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Complexity + w.Maintainability + w.Security + w.Lint
}

// Per-unit contributions of the sub-scores.
const (
	functionReward     = 5.0
	classReward        = 10.0
	commentReward      = 2.0
	securityPenalty    = 10.0
	lintIssuePenalty   = 0.1
	maxScore           = 100.0
	maxLintScore       = 10.0
	functionComplexity = 2.0
	lineComplexity     = 0.1
)

func clamp(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round2 rounds to two decimals, the precision of every reported score.
// Rounding works on the exact binary value and breaks exact ties to even,
// so 0.125 becomes 0.12 and 2.675 (stored just below) becomes 2.67.
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// Maintainability rewards decomposition and documentation, clamped to 0-100.
func Maintainability(m schema.AnalysisMetrics) float64 {
	raw := float64(m.FunctionCount)*functionReward +
		float64(m.ClassCount)*classReward +
		m.CommentRatio*commentReward
	return clamp(0, maxScore, raw)
}

// Security costs a flat 10 points per finding, floored at zero.
func Security(findings int) float64 {
	return math.Max(0, maxScore-securityPenalty*float64(findings))
}

// Complexity passes through the raw complexity metric. It is a magnitude, not a percentage.
func Complexity(m schema.AnalysisMetrics) float64 {
	return m.ComplexityScore
}

// Overall is the weighted composite. It is not clamped.
func Overall(complexity, maintainability, security, lint float64, w Weights) float64 {
	return w.Complexity*complexity +
		w.Maintainability*maintainability +
		w.Security*security +
		w.Lint*lint
}

// LintScore converts a lint issue count into a whole-number 0-10 score.
func LintScore(issues int) float64 {
	return math.Trunc(math.Max(0, maxLintScore-lintIssuePenalty*float64(issues)))
}

// Aggregate computes the full score bundle, rounding every score to two decimals.
func Aggregate(m schema.AnalysisMetrics, securityFindings int, lintScore float64, w Weights) schema.ScoreBundle {
	c := Complexity(m)
	mt := Maintainability(m)
	s := Security(securityFindings)
	return schema.ScoreBundle{
		ComplexityScore:      Round2(c),
		MaintainabilityScore: Round2(mt),
		SecurityScore:        Round2(s),
		OverallScore:         Round2(Overall(c, mt, s, lintScore, w)),
	}
}
