package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for analysis storage.
	DatabaseBackend string

	// FindingType represents the severity class of a finding.
	FindingType string

	// ToolKind represents which result bucket a collaborator feeds.
	ToolKind string

	// LogFormat represents the structured log encoding.
	LogFormat string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Finding types reported by collaborators.
const (
	ErrorFinding   FindingType = "error"
	WarningFinding FindingType = "warning"
	InfoFinding    FindingType = "info"
)

// Tool kinds. Each kind maps to one findings list on AnalysisResult.
const (
	LintTool     ToolKind = "lint"     // pylint_issues, also provides the lint score
	StyleTool    ToolKind = "style"    // flake8_issues
	SecurityTool ToolKind = "security" // bandit_issues
)

// Log formats.
const (
	TextLog LogFormat = "text" // default
	JSONLog LogFormat = "json"
)

// Smell labels used by predictions and stored labels.
const (
	CleanLabel = 0
	SmellLabel = 1
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid storage backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidLogFormats lists all valid log formats.
var ValidLogFormats = map[LogFormat]struct{}{
	TextLog: {},
	JSONLog: {},
}
