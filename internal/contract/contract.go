// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/codescore/schema"
)

// Tool is a single analysis collaborator: a linter, style checker or security scanner.
// Implementations must be safe for concurrent use.
type Tool interface {
	// Name identifies the tool in logs, metrics and tool_errors.
	Name() string

	// Kind decides which findings list the report feeds.
	Kind() schema.ToolKind

	// Run analyzes source and returns structured findings.
	Run(ctx context.Context, source string) (schema.ToolReport, error)
}

// Predictor classifies source as clean or smelly. The result is volatile and never cached.
type Predictor interface {
	Predict(ctx context.Context, source string) (schema.Prediction, error)
}

// SmellDetector produces the smell report served by the ML analysis endpoint.
type SmellDetector interface {
	Detect(ctx context.Context, source string) (schema.SmellReport, error)
}

// SourceFetcher retrieves file contents for webhook-driven analyses.
// This allows the webhook layer to be tested without reaching a code host.
type SourceFetcher interface {
	Fetch(ctx context.Context, repository, ref, path string) (string, error)
}

// CodeAnalyzer is the orchestrator surface consumed by the HTTP, MCP and webhook layers.
type CodeAnalyzer interface {
	Analyze(ctx context.Context, source string) (*schema.AnalysisResult, error)
	ClearCache()
	CacheStats() schema.CacheStats
}

// AnalysisStore defines the interface for durable analysis storage.
type AnalysisStore interface {
	// SaveAnalysis inserts a record and returns its ID
	SaveAnalysis(ctx context.Context, rec schema.AnalysisRecord) (int64, error)

	// GetAnalysis returns a single record by ID
	GetAnalysis(ctx context.Context, id int64) (schema.AnalysisRecord, error)

	// ListAnalyses returns records ordered by ID
	ListAnalyses(ctx context.Context, q schema.ListQuery) ([]schema.AnalysisRecord, error)

	// ListAll returns every record, used for exports
	ListAll(ctx context.Context) ([]schema.AnalysisRecord, error)

	// SetLabel attaches a clean/smell label to a record
	SetLabel(ctx context.Context, id int64, label int) error

	// Clear deletes every record
	Clear(ctx context.Context) error

	// GetStatus returns status information about the store
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}
