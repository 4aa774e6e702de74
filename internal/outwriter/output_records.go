package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintAnalysisRecords outputs stored analyses, dispatching based on the output format configured.
func PrintAnalysisRecords(records []schema.AnalysisRecord, cfg *contract.Config) error {
	if records == nil {
		records = []schema.AnalysisRecord{}
	}
	return dispatch(cfg, records, func(w io.Writer) error {
		return writeRecordsTable(w, records, cfg)
	})
}

// writeRecordsTable generates and writes the human-readable list of analyses.
func writeRecordsTable(w io.Writer, records []schema.AnalysisRecord, cfg *contract.Config) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No analyses stored.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Created", "Repository", "Path", "Overall", "Maint", "Security", "Cmplx", "Pylint", "Quality", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := getMaxRepoWidth(cfg)
	data := make([][]string, 0, len(records))
	for _, r := range records {
		data = append(data, []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.Format("2006-01-02 15:04"),
			contract.TruncateText(fmtOptional(r.Repository), maxWidth),
			contract.TruncateText(fmtOptional(r.FilePath), maxWidth),
			fmtFloat(r.OverallScore),
			fmtFloat(r.MaintainabilityScore),
			fmtFloat(r.SecurityScore),
			fmtFloat(r.ComplexityScore),
			fmtFloat(r.PylintScore),
			scoreLabel(r.OverallScore, cfg),
			fmtLabel(r.Label),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	labeled := 0
	for _, r := range records {
		if r.Label != nil {
			labeled++
		}
	}
	_, err := fmt.Fprintf(w, "Showing %d analyses (%d labeled)\n", len(records), labeled)
	return err
}
