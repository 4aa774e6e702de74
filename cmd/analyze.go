package cmd

import (
	"time"

	"github.com/huangsam/codescore/internal/outwriter"
	"github.com/huangsam/codescore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analyzeCmd scores a single Python file or stdin.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Score the quality of a Python file",
	Long: `Run the style, security and lint checks over one Python source and print
its complexity, maintainability, security and overall scores with every finding.

Reads from stdin when the file is '-' or omitted. Pass --save to store the
result in the configured analysis backend.

Examples:
  # Score a file
  codescore analyze app.py

  # Score stdin as JSON
  cat app.py | codescore analyze --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		save := viper.GetBool("save")
		a, err := newApp(save)
		if err != nil {
			return err
		}
		defer a.Close()

		start := time.Now()
		result, err := a.analyzer.Analyze(cmd.Context(), source)
		if err != nil {
			return err
		}
		duration := time.Since(start)

		if save {
			rec := schema.NewAnalysisRecord(source, result, schema.CommitInfo{}, time.Now().UTC())
			id, err := a.store.SaveAnalysis(cmd.Context(), rec)
			if err != nil {
				return err
			}
			cmd.PrintErrf("Saved analysis %d\n", id)
		}
		return outwriter.NewOutWriter().WriteAnalysis(result, cfg, duration)
	},
}

// smellsCmd prints the smell report of a single source.
var smellsCmd = &cobra.Command{
	Use:   "smells [file|-]",
	Short: "Detect code smells and compute the AI quality score",
	Long: `Parse one source, report code smells and improvement suggestions, and
compute the AI quality score from them.

Reads from stdin when the file is '-' or omitted.

Examples:
  codescore smells app.py
  codescore smells --output json < app.py`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		a, err := newApp(false)
		if err != nil {
			return err
		}
		report, err := a.detector.Detect(cmd.Context(), source)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteSmells(report, cfg)
	},
}
