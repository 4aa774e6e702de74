// Package parquet provides data structures and functions for exporting stored
// analyses to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/codescore/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRow is one stored analysis flattened for columnar export.
// This struct maps to the code_analyses database table, minus the findings.
type AnalysisRow struct {
	// ID is the primary key of the analysis
	ID int64 `parquet:"id,snappy"`

	// CreatedAt is when the analysis was stored, or the commit time for webhook analyses
	CreatedAt time.Time `parquet:"created_at,snappy"`

	// Repository metadata is only present for webhook analyses
	Repository    *string `parquet:"repository,optional,snappy"`
	CommitSHA     *string `parquet:"commit_sha,optional,snappy"`
	CommitAuthor  *string `parquet:"commit_author,optional,snappy"`
	FilePath      *string `parquet:"file_path,optional,snappy"`
	CodeSize      int32   `parquet:"code_size,snappy"`
	FunctionCount int32   `parquet:"function_count,snappy"`
	ClassCount    int32   `parquet:"class_count,snappy"`
	CommentRatio  float64 `parquet:"comment_ratio,snappy"`

	PylintScore          float64 `parquet:"pylint_score,snappy"`
	ComplexityScore      float64 `parquet:"complexity_score,snappy"`
	MaintainabilityScore float64 `parquet:"maintainability_score,snappy"`
	SecurityScore        float64 `parquet:"security_score,snappy"`
	OverallScore         float64 `parquet:"overall_score,snappy"`

	StyleIssueCount    int32 `parquet:"flake8_issue_count,snappy"`
	SecurityIssueCount int32 `parquet:"bandit_issue_count,snappy"`
	LintIssueCount     int32 `parquet:"pylint_issue_count,snappy"`

	// Label is the clean/smell training label (nullable)
	Label *int32 `parquet:"label,optional,snappy"`

	// Code is the analyzed source text
	Code string `parquet:"code,zstd"`
}

// FindingRow is one finding of one analysis.
type FindingRow struct {
	AnalysisID int64  `parquet:"analysis_id,snappy"`
	Tool       string `parquet:"tool,dict,snappy"`
	Type       string `parquet:"type,dict,snappy"`
	RuleID     string `parquet:"rule_id,dict,snappy"`
	Line       int32  `parquet:"line,snappy"`
	Column     *int32 `parquet:"column,optional,snappy"`
	Message    string `parquet:"message,snappy"`
}

// WriteAnalysesParquet writes a slice of AnalysisRow structs to a Parquet file.
func WriteAnalysesParquet(data []AnalysisRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFindingsParquet writes a slice of FindingRow structs to a Parquet file.
func WriteFindingsParquet(data []FindingRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertAnalysisRecords converts stored records to AnalysisRow for Parquet export.
func ConvertAnalysisRecords(records []schema.AnalysisRecord) []AnalysisRow {
	result := make([]AnalysisRow, len(records))
	for i, record := range records {
		var label *int32
		if record.Label != nil {
			l := int32(*record.Label)
			label = &l
		}
		result[i] = AnalysisRow{
			ID:                   record.ID,
			CreatedAt:            record.CreatedAt,
			Repository:           record.Repository,
			CommitSHA:            record.CommitSHA,
			CommitAuthor:         record.CommitAuthor,
			FilePath:             record.FilePath,
			CodeSize:             int32(record.Metrics.CodeSize),
			FunctionCount:        int32(record.Metrics.FunctionCount),
			ClassCount:           int32(record.Metrics.ClassCount),
			CommentRatio:         record.Metrics.CommentRatio,
			PylintScore:          record.PylintScore,
			ComplexityScore:      record.ComplexityScore,
			MaintainabilityScore: record.MaintainabilityScore,
			SecurityScore:        record.SecurityScore,
			OverallScore:         record.OverallScore,
			StyleIssueCount:      int32(len(record.StyleIssues)),
			SecurityIssueCount:   int32(len(record.SecurityIssues)),
			LintIssueCount:       int32(len(record.LintIssues)),
			Label:                label,
			Code:                 record.Code,
		}
	}
	return result
}

// ConvertFindings flattens the findings of every record into FindingRow values.
// Tool names follow the JSON field each list is served under.
func ConvertFindings(records []schema.AnalysisRecord) []FindingRow {
	var result []FindingRow
	for _, record := range records {
		groups := []struct {
			tool     string
			findings []schema.Finding
		}{
			{"flake8", record.StyleIssues},
			{"bandit", record.SecurityIssues},
			{"pylint", record.LintIssues},
		}
		for _, g := range groups {
			for _, f := range g.findings {
				var col *int32
				if f.Column != nil {
					c := int32(*f.Column)
					col = &c
				}
				result = append(result, FindingRow{
					AnalysisID: record.ID,
					Tool:       g.tool,
					Type:       string(f.Type),
					RuleID:     f.RuleID,
					Line:       int32(f.Line),
					Column:     col,
					Message:    f.Message,
				})
			}
		}
	}
	return result
}
