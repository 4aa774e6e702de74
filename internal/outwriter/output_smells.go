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

// PrintSmellReport outputs a smell report, dispatching based on the output format configured.
func PrintSmellReport(report schema.SmellReport, cfg *contract.Config) error {
	return dispatch(cfg, report, func(w io.Writer) error {
		return writeSmellTable(w, report, cfg)
	})
}

func writeSmellTable(w io.Writer, report schema.SmellReport, cfg *contract.Config) error {
	m := report.Metrics
	if _, err := fmt.Fprintf(w, "Language: %s | LOC: %d | Complexity: %d | Maintainability: %s | AI score: %s (%s)\n",
		report.Language, m.LOC, m.Complexity, fmtFloat(m.Maintainability),
		fmtFloat(report.AIScore), scoreLabel(report.AIScore, cfg)); err != nil {
		return err
	}

	var rows []toolFinding
	for _, f := range report.CodeSmells {
		rows = append(rows, toolFinding{Tool: "smell", Finding: f})
	}
	for _, f := range report.Suggestions {
		rows = append(rows, toolFinding{Tool: "suggestion", Finding: f})
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No smells detected.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Kind", "Line", "Type", "Message"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	maxWidth := getMaxMessageWidth(cfg)
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			r.Tool,
			strconv.Itoa(r.Line),
			string(r.Type),
			contract.TruncateText(r.Message, maxWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
