package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisResultClone(t *testing.T) {
	col := 4
	orig := &AnalysisResult{
		PylintScore:    7,
		ScoreBundle:    ScoreBundle{OverallScore: 55.5},
		StyleIssues:    []Finding{{Type: WarningFinding, Message: "E501", Line: 1, Column: &col}},
		SecurityIssues: []Finding{{Type: ErrorFinding, Message: "eval", Line: 2}},
		ToolErrors:     map[string]string{"pylint": "boom"},
		Prediction:     &Prediction{Prediction: SmellLabel, Confidence: 0.9},
	}

	c := orig.Clone()
	require.NotNil(t, c)
	assert.Equal(t, orig, c)

	c.StyleIssues[0].Message = "changed"
	*c.StyleIssues[0].Column = 99
	c.SecurityIssues = append(c.SecurityIssues, Finding{Message: "extra"})
	c.ToolErrors["bandit"] = "also"
	c.Prediction.Confidence = 0.1

	assert.Equal(t, "E501", orig.StyleIssues[0].Message)
	assert.Equal(t, 4, *orig.StyleIssues[0].Column)
	assert.Len(t, orig.SecurityIssues, 1)
	assert.NotContains(t, orig.ToolErrors, "bandit")
	assert.InDelta(t, 0.9, orig.Prediction.Confidence, 1e-9)
}

func TestAnalysisResultCloneNil(t *testing.T) {
	var r *AnalysisResult
	assert.Nil(t, r.Clone())

	c := (&AnalysisResult{}).Clone()
	assert.Nil(t, c.StyleIssues)
	assert.Nil(t, c.ToolErrors)
	assert.Nil(t, c.Prediction)
}

func TestNewAnalysisRecord(t *testing.T) {
	repo := "octo/demo"
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	res := &AnalysisResult{
		PylintScore:    8,
		ScoreBundle:    ScoreBundle{SecurityScore: 75},
		Metrics:        AnalysisMetrics{CodeSize: 3},
		SecurityIssues: []Finding{{Message: "eval"}},
		Prediction:     &Prediction{Prediction: CleanLabel, Confidence: 0.6},
	}

	rec := NewAnalysisRecord("x = 1", res, CommitInfo{Repository: &repo}, at)
	assert.Equal(t, "x = 1", rec.Code)
	assert.Equal(t, at, rec.CreatedAt)
	assert.Equal(t, at, rec.UpdatedAt)
	assert.Equal(t, &repo, rec.Repository)
	assert.InDelta(t, 75.0, rec.SecurityScore, 1e-9)
	assert.Equal(t, 3, rec.Metrics.CodeSize)
	assert.Len(t, rec.SecurityIssues, 1)
	assert.NotNil(t, rec.StyleIssues)
	assert.Empty(t, rec.StyleIssues)
	assert.NotNil(t, rec.LintIssues)
	assert.Nil(t, rec.Label)
	assert.Same(t, res.Prediction, rec.Prediction)
}

func TestValidEnums(t *testing.T) {
	assert.Contains(t, ValidOutputModes, ParquetOut)
	assert.Contains(t, ValidDatabaseBackends, NoneBackend)
	assert.Contains(t, ValidLogFormats, JSONLog)
	assert.NotContains(t, ValidDatabaseBackends, DatabaseBackend("oracle"))
}
