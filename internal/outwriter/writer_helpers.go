package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// dispatch routes output to JSON or the text renderer.
// Parquet is only meaningful for stored analyses and is handled by the export command.
func dispatch(cfg *contract.Config, data any, text func(io.Writer) error) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, data)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
		return nil
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported by 'analysis export'")
	default:
		return writeWithFile(cfg.OutputFile, text, "Wrote table")
	}
}

// scoreLabel returns the quality label of a 0-100 score, colored when enabled.
func scoreLabel(score float64, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(score)
	}
	return contract.GetPlainLabel(score)
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// fmtColumn renders an optional finding column.
func fmtColumn(col *int) string {
	if col == nil {
		return "-"
	}
	return strconv.Itoa(*col)
}

// fmtLabel renders a stored training label.
func fmtLabel(label *int) string {
	if label == nil {
		return "-"
	}
	if *label == schema.SmellLabel {
		return "smell"
	}
	return "clean"
}

func fmtOptional(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
