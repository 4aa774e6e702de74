// Package schema has models and enum types shared by all parts of codescore.
package schema

import "slices"

// Finding is a single issue reported by an analysis collaborator.
type Finding struct {
	Type    FindingType `json:"type"`
	Message string      `json:"message"`
	Line    int         `json:"line"`
	Column  *int        `json:"column,omitempty"`
	RuleID  string      `json:"rule_id,omitempty"`
}

// ToolReport is what one collaborator returns for one source text.
type ToolReport struct {
	Tool     string    `json:"tool"`
	Kind     ToolKind  `json:"kind"`
	Findings []Finding `json:"findings"`
	Score    *float64  `json:"score,omitempty"` // only lint tools report a score
}

// AnalysisMetrics holds the line and structure metrics computed from source text.
type AnalysisMetrics struct {
	CodeSize        int     `json:"code_size"`        // non-blank, non-comment lines
	FunctionCount   int     `json:"function_count"`   // def statements
	ClassCount      int     `json:"class_count"`      // class statements
	CommentRatio    float64 `json:"comment_ratio"`    // percentage, 0-100
	ComplexityScore float64 `json:"complexity_score"` // unbounded
	PylintScore     float64 `json:"pylint_score"`     // 0-10, lint collaborator score
}

// ScoreBundle holds the four reported quality scores.
type ScoreBundle struct {
	ComplexityScore      float64 `json:"complexity_score"`
	MaintainabilityScore float64 `json:"maintainability_score"`
	SecurityScore        float64 `json:"security_score"`
	OverallScore         float64 `json:"overall_score"`
}

// Prediction is the per-call smell classification attached to a result.
type Prediction struct {
	Prediction int     `json:"prediction"` // CleanLabel or SmellLabel
	Confidence float64 `json:"confidence"` // 0-1
}

// AnalysisResult is the payload produced by a single analysis and held in the result cache.
type AnalysisResult struct {
	PylintScore float64 `json:"pylint_score"`
	ScoreBundle
	Metrics        AnalysisMetrics   `json:"metrics"`
	StyleIssues    []Finding         `json:"flake8_issues"`
	SecurityIssues []Finding         `json:"bandit_issues"`
	LintIssues     []Finding         `json:"pylint_issues"`
	ToolErrors     map[string]string `json:"tool_errors,omitempty"`

	// Prediction is computed per call and never served from the cache.
	Prediction *Prediction `json:"prediction,omitempty"`
}

// Clone returns a deep copy of the result so callers never share slices with the cache.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	c := *r
	c.StyleIssues = cloneFindings(r.StyleIssues)
	c.SecurityIssues = cloneFindings(r.SecurityIssues)
	c.LintIssues = cloneFindings(r.LintIssues)
	if r.ToolErrors != nil {
		c.ToolErrors = make(map[string]string, len(r.ToolErrors))
		for k, v := range r.ToolErrors {
			c.ToolErrors[k] = v
		}
	}
	if r.Prediction != nil {
		p := *r.Prediction
		c.Prediction = &p
	}
	return &c
}

func cloneFindings(in []Finding) []Finding {
	if in == nil {
		return nil
	}
	out := slices.Clone(in)
	for i := range out {
		if in[i].Column != nil {
			col := *in[i].Column
			out[i].Column = &col
		}
	}
	return out
}

// CacheStats is the JSON view of the result cache counters.
type CacheStats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	CurrentSize int    `json:"current_size"`
	MaxSize     int    `json:"max_size"`
}
