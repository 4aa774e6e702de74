package persist

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/huangsam/codescore/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintAnalysisStatus prints analysis store status information.
func PrintAnalysisStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Analysis Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Schema Version: %d\n", status.SchemaVersion)
	_, _ = fmt.Fprintf(w, "Total Analyses: %d\n", status.TotalAnalyses)
	if status.TotalAnalyses > 0 {
		_, _ = fmt.Fprintf(w, "Labeled Analyses: %d\n", status.LabeledAnalyses)
		_, _ = fmt.Fprintf(w, "Repositories: %d\n", status.Repositories)
		_, _ = fmt.Fprintf(w, "Last Analysis ID: %d\n", status.LastAnalysisID)
		_, _ = fmt.Fprintf(w, "Last Analysis: %s\n", status.LastAnalysisTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Analysis: %s\n", status.OldestTime.Format(statusTimeLayout))
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
