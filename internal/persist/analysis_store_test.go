package persist

import (
	"testing"
	"time"

	"github.com/huangsam/codescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *AnalysisStoreImpl {
	t.Helper()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*AnalysisStoreImpl)
}

func sampleRecord(code string, at time.Time, repo string) schema.AnalysisRecord {
	col := 80
	res := &schema.AnalysisResult{
		PylintScore: 9,
		ScoreBundle: schema.ScoreBundle{
			ComplexityScore:      2.2,
			MaintainabilityScore: 5,
			SecurityScore:        70,
			OverallScore:         17.96,
		},
		Metrics: schema.AnalysisMetrics{CodeSize: 2, FunctionCount: 1, ComplexityScore: 2.2, PylintScore: 9},
		StyleIssues: []schema.Finding{
			{Type: schema.ErrorFinding, Message: "line too long (88 > 79 characters)", Line: 1, Column: &col, RuleID: "E501"},
		},
		SecurityIssues: []schema.Finding{
			{Type: schema.WarningFinding, Message: "Use of eval detected", Line: 2, RuleID: "B307"},
		},
		Prediction: &schema.Prediction{Prediction: schema.CleanLabel, Confidence: 0.9},
	}
	var info schema.CommitInfo
	if repo != "" {
		sha := "deadbeef"
		path := "app/main.py"
		info = schema.CommitInfo{Repository: &repo, CommitSHA: &sha, FilePath: &path}
	}
	return schema.NewAnalysisRecord(code, res, info, at)
}

func TestAnalysisStore_NoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)
	ctx := t.Context()

	id, err := store.SaveAnalysis(ctx, sampleRecord("x = 1\n", time.Now(), ""))
	assert.NoError(t, err)
	assert.Equal(t, int64(0), id)

	_, err = store.GetAnalysis(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := store.ListAnalyses(ctx, schema.ListQuery{Limit: 10})
	assert.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, store.SetLabel(ctx, 1, schema.SmellLabel), ErrNotFound)
	assert.NoError(t, store.Clear(ctx))

	status, err := store.GetStatus(ctx)
	assert.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, "none", status.Backend)

	assert.NoError(t, store.Close())
}

func TestAnalysisStore_UnsupportedBackend(t *testing.T) {
	_, err := NewAnalysisStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}

func TestAnalysisStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	at := time.Date(2024, 3, 1, 9, 30, 0, 123456000, time.UTC)

	rec := sampleRecord("def add(a, b):\n    return a + b\n", at, "octo/demo")
	id, err := store.SaveAnalysis(ctx, rec)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	got, err := store.GetAnalysis(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, rec.Code, got.Code)
	assert.True(t, at.Equal(got.CreatedAt), "created_at should round trip")
	assert.True(t, at.Equal(got.UpdatedAt))
	require.NotNil(t, got.Repository)
	assert.Equal(t, "octo/demo", *got.Repository)
	require.NotNil(t, got.FilePath)
	assert.Equal(t, "app/main.py", *got.FilePath)
	assert.Nil(t, got.CommitMessage)

	assert.Equal(t, rec.ScoreBundle, got.ScoreBundle)
	assert.Equal(t, rec.PylintScore, got.PylintScore)
	assert.Equal(t, rec.Metrics, got.Metrics)
	assert.Equal(t, rec.StyleIssues, got.StyleIssues)
	assert.Equal(t, rec.SecurityIssues, got.SecurityIssues)
	assert.NotNil(t, got.LintIssues)
	assert.Empty(t, got.LintIssues)
	assert.Nil(t, got.Label)
	assert.Nil(t, got.Prediction, "predictions are never persisted")
}

func TestAnalysisStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetAnalysis(t.Context(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnalysisStore_ListAnalyses(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	repos := []string{"octo/a", "", "octo/b", "octo/a"}
	for i, repo := range repos {
		_, err := store.SaveAnalysis(ctx, sampleRecord("x = 1\n", base.Add(time.Duration(i)*time.Hour), repo))
		require.NoError(t, err)
	}

	page, err := store.ListAnalyses(ctx, schema.ListQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(4), page[0].ID)
	assert.Equal(t, int64(3), page[1].ID)

	page, err = store.ListAnalyses(ctx, schema.ListQuery{Skip: 3, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(1), page[0].ID)

	filtered, err := store.ListAnalyses(ctx, schema.ListQuery{Limit: 10, Repository: "octo/a"})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, int64(4), filtered[0].ID)
	assert.Equal(t, int64(1), filtered[1].ID)

	empty, err := store.ListAnalyses(ctx, schema.ListQuery{Limit: 10, Repository: "octo/none"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(4), all[3].ID)
}

func TestAnalysisStore_SetLabel(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	id, err := store.SaveAnalysis(ctx, sampleRecord("x = 1\n", time.Now().Add(-time.Hour), ""))
	require.NoError(t, err)

	require.NoError(t, store.SetLabel(ctx, id, schema.SmellLabel))

	got, err := store.GetAnalysis(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Label)
	assert.Equal(t, schema.SmellLabel, *got.Label)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	// Relabeling with the same value still matches the row
	require.NoError(t, store.SetLabel(ctx, id, schema.SmellLabel))
	require.NoError(t, store.SetLabel(ctx, id, schema.CleanLabel))

	assert.ErrorIs(t, store.SetLabel(ctx, id, 2), ErrInvalidLabel)
	assert.ErrorIs(t, store.SetLabel(ctx, id, -1), ErrInvalidLabel)
	assert.ErrorIs(t, store.SetLabel(ctx, id+100, schema.CleanLabel), ErrNotFound)
}

func TestAnalysisStore_StatusAndClear(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, uint(LatestVersion), status.SchemaVersion)
	assert.Zero(t, status.TotalAnalyses)
	assert.Equal(t, int64(0), status.TableSizes["code_analyses"])

	first := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	last := first.Add(48 * time.Hour)
	_, err = store.SaveAnalysis(ctx, sampleRecord("a = 1\n", first, "octo/a"))
	require.NoError(t, err)
	_, err = store.SaveAnalysis(ctx, sampleRecord("b = 1\n", first.Add(time.Hour), "octo/b"))
	require.NoError(t, err)
	id, err := store.SaveAnalysis(ctx, sampleRecord("c = 1\n", last, ""))
	require.NoError(t, err)
	require.NoError(t, store.SetLabel(ctx, id, schema.CleanLabel))

	status, err = store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), status.TotalAnalyses)
	assert.Equal(t, int64(1), status.LabeledAnalyses)
	assert.Equal(t, int64(2), status.Repositories)
	assert.Equal(t, id, status.LastAnalysisID)
	assert.True(t, last.Equal(status.LastAnalysisTime))
	assert.True(t, first.Equal(status.OldestTime))
	assert.Equal(t, int64(3), status.TableSizes["code_analyses"])

	require.NoError(t, store.Clear(ctx))
	status, err = store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.TotalAnalyses)
}

func TestAnalysisStore_ZeroTimestampsDefaultToNow(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	rec := sampleRecord("x = 1\n", time.Time{}, "")
	before := time.Now().Add(-time.Second)
	id, err := store.SaveAnalysis(ctx, rec)
	require.NoError(t, err)

	got, err := store.GetAnalysis(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.After(before))
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}
