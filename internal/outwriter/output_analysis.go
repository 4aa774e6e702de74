package outwriter

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintAnalysisResult outputs one analysis, dispatching based on the output format configured.
func PrintAnalysisResult(result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg, result, func(w io.Writer) error {
		return writeAnalysisTable(w, result, cfg, duration)
	})
}

// writeAnalysisTable writes the score table, the findings table and the prediction.
func writeAnalysisTable(w io.Writer, result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	if err := writeScoreTable(w, result, cfg); err != nil {
		return err
	}

	findings := groupFindings(result.StyleIssues, result.SecurityIssues, result.LintIssues)
	if len(findings) > 0 {
		if err := writeFindingsTable(w, findings, cfg); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintln(w, "No findings reported."); err != nil {
		return err
	}

	for _, tool := range slices.Sorted(maps.Keys(result.ToolErrors)) {
		if _, err := fmt.Fprintf(w, "⚠️  %s failed: %s\n", tool, result.ToolErrors[tool]); err != nil {
			return err
		}
	}

	if p := result.Prediction; p != nil {
		verdict := "clean"
		if p.Prediction == schema.SmellLabel {
			verdict = "smell"
		}
		if _, err := fmt.Fprintf(w, "Prediction: %s (confidence %.2f)\n", verdict, p.Confidence); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Analysis completed in %v\n", duration)
	return err
}

func writeScoreTable(w io.Writer, result *schema.AnalysisResult, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	m := result.Metrics
	data := [][]string{
		{"Overall", fmtFloat(result.OverallScore), scoreLabel(result.OverallScore, cfg)},
		{"Maintainability", fmtFloat(result.MaintainabilityScore), scoreLabel(result.MaintainabilityScore, cfg)},
		{"Security", fmtFloat(result.SecurityScore), scoreLabel(result.SecurityScore, cfg)},
		{"Complexity", fmtFloat(result.ComplexityScore), "-"},
		{"Pylint", fmtFloat(result.PylintScore), scoreLabel(result.PylintScore*10, cfg)},
		{"Code size", strconv.Itoa(m.CodeSize), "-"},
		{"Functions", strconv.Itoa(m.FunctionCount), "-"},
		{"Classes", strconv.Itoa(m.ClassCount), "-"},
		{"Comment ratio", fmtFloat(m.CommentRatio) + "%", "-"},
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// toolFinding is a finding tagged with the tool that reported it.
type toolFinding struct {
	Tool string
	schema.Finding
}

// groupFindings flattens the three finding lists in display order.
func groupFindings(style, security, lint []schema.Finding) []toolFinding {
	var out []toolFinding
	for _, g := range []struct {
		tool     string
		findings []schema.Finding
	}{
		{"flake8", style},
		{"bandit", security},
		{"pylint", lint},
	} {
		for _, f := range g.findings {
			out = append(out, toolFinding{Tool: g.tool, Finding: f})
		}
	}
	return out
}

func writeFindingsTable(w io.Writer, findings []toolFinding, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Tool", "Line", "Col", "Rule", "Type", "Message"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	maxWidth := getMaxMessageWidth(cfg)
	data := make([][]string, 0, len(findings))
	for _, f := range findings {
		rule := f.RuleID
		if rule == "" {
			rule = "-"
		}
		data = append(data, []string{
			f.Tool,
			strconv.Itoa(f.Line),
			fmtColumn(f.Column),
			rule,
			string(f.Type),
			contract.TruncateText(f.Message, maxWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d findings\n", len(findings))
	return err
}
