package persist

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/internal/parquet"
)

// ErrNothingToExport is returned when the store holds no analyses.
var ErrNothingToExport = errors.New("no analysis data found to export")

// ExportAnalyses writes every stored analysis to outputFile plus a sibling
// findings file, reporting progress to w.
func ExportAnalyses(ctx context.Context, w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalAnalyses == 0 {
		return ErrNothingToExport
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analyses: %d\n", status.TotalAnalyses)

	records, err := store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve analyses: %w", err)
	}

	rows := parquet.ConvertAnalysisRecords(records)
	analysesFile := outputFile + ".analyses.parquet"
	if err := parquet.WriteAnalysesParquet(rows, analysesFile); err != nil {
		return fmt.Errorf("failed to write analyses: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analyses to: %s\n", len(rows), analysesFile)

	findings := parquet.ConvertFindings(records)
	findingsFile := outputFile + ".findings.parquet"
	if err := parquet.WriteFindingsParquet(findings, findingsFile); err != nil {
		return fmt.Errorf("failed to write findings: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d findings to: %s\n", len(findings), findingsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be loaded with pandas, DuckDB or Spark.")
	return nil
}
