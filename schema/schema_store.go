package schema

import "time"

// CommitInfo carries the repository metadata attached to webhook analyses.
type CommitInfo struct {
	Repository    *string `json:"repository"`
	CommitSHA     *string `json:"commit_sha"`
	CommitMessage *string `json:"commit_message"`
	CommitAuthor  *string `json:"commit_author"`
	FilePath      *string `json:"file_path"`
}

// AnalysisRecord is a persisted analysis.
type AnalysisRecord struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CommitInfo

	PylintScore float64 `json:"pylint_score"`
	ScoreBundle
	Metrics        AnalysisMetrics `json:"metrics"`
	StyleIssues    []Finding       `json:"flake8_issues"`
	SecurityIssues []Finding       `json:"bandit_issues"`
	LintIssues     []Finding       `json:"pylint_issues"`
	Label          *int            `json:"label"`

	// Prediction is never persisted; it is echoed back on the analyze response only.
	Prediction *Prediction `json:"prediction,omitempty"`
}

// NewAnalysisRecord builds an unsaved record from an analysis result.
func NewAnalysisRecord(code string, res *AnalysisResult, info CommitInfo, at time.Time) AnalysisRecord {
	return AnalysisRecord{
		Code:           code,
		CreatedAt:      at,
		UpdatedAt:      at,
		CommitInfo:     info,
		PylintScore:    res.PylintScore,
		ScoreBundle:    res.ScoreBundle,
		Metrics:        res.Metrics,
		StyleIssues:    nonNil(res.StyleIssues),
		SecurityIssues: nonNil(res.SecurityIssues),
		LintIssues:     nonNil(res.LintIssues),
		Prediction:     res.Prediction,
	}
}

func nonNil(in []Finding) []Finding {
	if in == nil {
		return []Finding{}
	}
	return in
}

// ListQuery filters and pages stored analyses.
type ListQuery struct {
	Skip       int
	Limit      int
	Repository string // empty means all repositories
}

// StoreStatus holds status information about the analysis store.
type StoreStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	SchemaVersion    uint             `json:"schema_version"`
	TotalAnalyses    int64            `json:"total_analyses"`
	LabeledAnalyses  int64            `json:"labeled_analyses"`
	Repositories     int64            `json:"repositories"`
	LastAnalysisID   int64            `json:"last_analysis_id"`
	LastAnalysisTime time.Time        `json:"last_analysis_time"`
	OldestTime       time.Time        `json:"oldest_time"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}
