package outwriter

import (
	"os"

	"github.com/huangsam/codescore/internal/contract"
	"golang.org/x/term"
)

// getTerminalWidth returns the width override, the detected terminal width, or 80.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Conservative default for narrow terminals and CI
		return 80
	}
	return detectedWidth
}

// getMaxMessageWidth calculates the maximum width for finding messages in table
// output based on terminal width.
func getMaxMessageWidth(cfg *contract.Config) int {
	// Tool + Line + Col + Rule + Type columns, borders and padding
	baseWidth := 50

	available := getTerminalWidth(cfg) - baseWidth
	if available < 20 {
		return 20
	}
	if available > 100 {
		return 100
	}
	return available
}

// getMaxRepoWidth calculates the maximum width for repository and path cells
// in the analyses list.
func getMaxRepoWidth(cfg *contract.Config) int {
	// ID + Created + five score columns + Label, borders and padding
	baseWidth := 90

	available := getTerminalWidth(cfg) - baseWidth
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
