package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
)

// analysisColumns lists every column read back into a record, in scan order.
const analysisColumns = `id, code, created_at, updated_at,
	repository, commit_sha, commit_message, commit_author, file_path,
	pylint_score, complexity_score, maintainability_score, security_score, overall_score,
	metrics, flake8_issues, bandit_issues, pylint_issues, label`

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend
// and migrates its schema to the latest version.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled persistence
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := ensureSchema(db, backend, connStr); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare analysis schema: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

func (as *AnalysisStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

func (as *AnalysisStoreImpl) table() string {
	return quoteTableName(analysesTable, as.backend)
}

// SaveAnalysis inserts a record and returns its ID.
func (as *AnalysisStoreImpl) SaveAnalysis(ctx context.Context, rec schema.AnalysisRecord) (int64, error) {
	if as.disabled() {
		return 0, nil
	}

	metricsJSON, err := json.Marshal(rec.Metrics)
	if err != nil {
		return 0, fmt.Errorf("failed to encode metrics: %w", err)
	}
	issues := make([]string, 0, 3)
	for _, list := range [][]schema.Finding{rec.StyleIssues, rec.SecurityIssues, rec.LintIssues} {
		if list == nil {
			list = []schema.Finding{}
		}
		b, err := json.Marshal(list)
		if err != nil {
			return 0, fmt.Errorf("failed to encode findings: %w", err)
		}
		issues = append(issues, string(b))
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (code, created_at, updated_at,
		                repository, commit_sha, commit_message, commit_author, file_path,
		                pylint_score, complexity_score, maintainability_score, security_score, overall_score,
		                metrics, flake8_issues, bandit_issues, pylint_issues)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, as.table())
	args := []any{
		rec.Code, formatTime(createdAt, as.backend), formatTime(updatedAt, as.backend),
		rec.Repository, rec.CommitSHA, rec.CommitMessage, rec.CommitAuthor, rec.FilePath,
		rec.PylintScore, rec.ComplexityScore, rec.MaintainabilityScore, rec.SecurityScore, rec.OverallScore,
		string(metricsJSON), issues[0], issues[1], issues[2],
	}

	var id int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		err = as.db.QueryRowContext(ctx, rebind(query+" RETURNING id", as.backend), args...).Scan(&id)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = as.db.ExecContext(ctx, query, args...)
		if err == nil {
			id, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}
	return id, nil
}

// GetAnalysis returns a single record by ID.
func (as *AnalysisStoreImpl) GetAnalysis(ctx context.Context, id int64) (schema.AnalysisRecord, error) {
	if as.disabled() {
		return schema.AnalysisRecord{}, ErrNotFound
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", analysisColumns, as.table())
	rec, err := scanRecord(as.db.QueryRowContext(ctx, rebind(query, as.backend), id))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.AnalysisRecord{}, fmt.Errorf("analysis %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return schema.AnalysisRecord{}, fmt.Errorf("failed to get analysis %d: %w", id, err)
	}
	return rec, nil
}

// ListAnalyses returns a page of records, newest first.
func (as *AnalysisStoreImpl) ListAnalyses(ctx context.Context, q schema.ListQuery) ([]schema.AnalysisRecord, error) {
	if as.disabled() {
		return []schema.AnalysisRecord{}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s", analysisColumns, as.table())
	var args []any
	if q.Repository != "" {
		query += " WHERE repository = ?"
		args = append(args, q.Repository)
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, max(q.Limit, 0), max(q.Skip, 0))

	return as.queryRecords(ctx, rebind(query, as.backend), args...)
}

// ListAll returns every record in insertion order.
func (as *AnalysisStoreImpl) ListAll(ctx context.Context) ([]schema.AnalysisRecord, error) {
	if as.disabled() {
		return []schema.AnalysisRecord{}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", analysisColumns, as.table())
	return as.queryRecords(ctx, query)
}

func (as *AnalysisStoreImpl) queryRecords(ctx context.Context, query string, args ...any) ([]schema.AnalysisRecord, error) {
	rows, err := as.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []schema.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}
	return results, nil
}

// SetLabel attaches a clean or smell label to a record.
func (as *AnalysisStoreImpl) SetLabel(ctx context.Context, id int64, label int) error {
	if label != schema.CleanLabel && label != schema.SmellLabel {
		return ErrInvalidLabel
	}
	if as.disabled() {
		return ErrNotFound
	}

	query := fmt.Sprintf("UPDATE %s SET label = ?, updated_at = ? WHERE id = ?", as.table())
	result, err := as.db.ExecContext(ctx, rebind(query, as.backend), label, formatTime(time.Now(), as.backend), id)
	if err != nil {
		return fmt.Errorf("failed to label analysis %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to label analysis %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("analysis %d: %w", id, ErrNotFound)
	}
	return nil
}

// Clear deletes every record.
func (as *AnalysisStoreImpl) Clear(ctx context.Context) error {
	if as.disabled() {
		return nil
	}
	if _, err := as.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", as.table())); err != nil {
		return fmt.Errorf("failed to clear analyses: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.disabled() {
		return status, nil
	}

	table := as.table()
	counts := []struct {
		what  string
		query string
		dest  *int64
	}{
		{"total analyses", fmt.Sprintf("SELECT COUNT(*) FROM %s", table), &status.TotalAnalyses},
		{"labeled analyses", fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE label IS NOT NULL", table), &status.LabeledAnalyses},
		{"repositories", fmt.Sprintf("SELECT COUNT(DISTINCT repository) FROM %s", table), &status.Repositories},
	}
	for _, c := range counts {
		if err := as.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return status, fmt.Errorf("failed to get %s: %w", c.what, err)
		}
	}
	status.TableSizes[analysesTable] = status.TotalAnalyses

	if status.TotalAnalyses > 0 {
		var last, oldest dbTime
		lastQuery := fmt.Sprintf("SELECT id, created_at FROM %s ORDER BY id DESC LIMIT 1", table)
		if err := as.db.QueryRowContext(ctx, lastQuery).Scan(&status.LastAnalysisID, &last); err != nil {
			return status, fmt.Errorf("failed to get last analysis info: %w", err)
		}
		oldestQuery := fmt.Sprintf("SELECT MIN(created_at) FROM %s", table)
		if err := as.db.QueryRowContext(ctx, oldestQuery).Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest analysis time: %w", err)
		}
		status.LastAnalysisTime = last.Time
		status.OldestTime = oldest.Time
	}

	// A missing or empty version table only means migrations never ran through this path
	var version sql.NullInt64
	versionQuery := "SELECT version FROM schema_migrations LIMIT 1"
	if err := as.db.QueryRowContext(ctx, versionQuery).Scan(&version); err == nil && version.Valid {
		status.SchemaVersion = uint(version.Int64)
	}

	return status, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (schema.AnalysisRecord, error) {
	var rec schema.AnalysisRecord
	var createdAt, updatedAt dbTime
	var metricsJSON, styleJSON, securityJSON, lintJSON string
	var label sql.NullInt64

	if err := row.Scan(
		&rec.ID, &rec.Code, &createdAt, &updatedAt,
		&rec.Repository, &rec.CommitSHA, &rec.CommitMessage, &rec.CommitAuthor, &rec.FilePath,
		&rec.PylintScore, &rec.ComplexityScore, &rec.MaintainabilityScore, &rec.SecurityScore, &rec.OverallScore,
		&metricsJSON, &styleJSON, &securityJSON, &lintJSON, &label,
	); err != nil {
		return rec, err
	}
	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time
	if label.Valid {
		l := int(label.Int64)
		rec.Label = &l
	}

	if err := json.Unmarshal([]byte(metricsJSON), &rec.Metrics); err != nil {
		return rec, fmt.Errorf("failed to decode metrics: %w", err)
	}
	for _, f := range []struct {
		raw  string
		dest *[]schema.Finding
	}{
		{styleJSON, &rec.StyleIssues},
		{securityJSON, &rec.SecurityIssues},
		{lintJSON, &rec.LintIssues},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dest); err != nil {
			return rec, fmt.Errorf("failed to decode findings: %w", err)
		}
		if *f.dest == nil {
			*f.dest = []schema.Finding{}
		}
	}
	return rec, nil
}
