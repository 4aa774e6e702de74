package schema

// SmellMetrics are the syntax-tree metrics behind smell detection.
type SmellMetrics struct {
	LOC             int     `json:"loc"`
	Complexity      int     `json:"complexity"`
	FunctionCount   int     `json:"function_count"`
	ClassCount      int     `json:"class_count"`
	CommentCount    int     `json:"comment_count"`
	Maintainability float64 `json:"maintainability"`
}

// SmellReport is the result of smell analysis on a source text.
type SmellReport struct {
	Language    string       `json:"language"`
	CodeSmells  []Finding    `json:"code_smells"`
	Suggestions []Finding    `json:"suggestions"`
	Metrics     SmellMetrics `json:"metrics"`
	AIScore     float64      `json:"ai_score"`
}
