package score

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/codescore/schema"
)

// ErrUnparseable is returned when source text cannot be turned into metrics.
var ErrUnparseable = errors.New("source cannot be parsed into metrics")

var (
	functionPattern = regexp.MustCompile(`def\s+\w+\s*\(`)
	classPattern    = regexp.MustCompile(`class\s+\w+`)
)

// ComputeMetrics derives line and structure metrics from Python source text.
// The lint score is left at zero; the orchestrator fills it from the lint collaborator.
func ComputeMetrics(source string) (schema.AnalysisMetrics, error) {
	if !utf8.ValidString(source) || strings.ContainsRune(source, 0) {
		return schema.AnalysisMetrics{}, ErrUnparseable
	}

	lines := splitLines(source)
	var codeLines, commentLines int
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case strings.HasPrefix(trimmed, "#"):
			commentLines++
		default:
			codeLines++
		}
	}

	functions := len(functionPattern.FindAllStringIndex(source, -1))
	classes := len(classPattern.FindAllStringIndex(source, -1))

	var ratio float64
	if len(lines) > 0 {
		ratio = float64(commentLines) / float64(len(lines)) * 100
	}

	return schema.AnalysisMetrics{
		CodeSize:        codeLines,
		FunctionCount:   functions,
		ClassCount:      classes,
		CommentRatio:    Round2(ratio),
		ComplexityScore: Round2(float64(functions)*functionComplexity + float64(codeLines)*lineComplexity),
	}, nil
}

// splitLines splits on every Python line boundary (\n, \r, \r\n, \v, \f,
// \x1c-\x1e, \x85, \u2028, \u2029) without yielding a trailing empty line,
// so "a\nb\n" has two lines and "" has none.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if !isLineBoundary(r) {
			continue
		}
		if r == '\n' && i > 0 && s[i-1] == '\r' {
			start = i + 1
			continue
		}
		lines = append(lines, s[start:i])
		start = i + utf8.RuneLen(r)
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
