package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
)

// StyleName is the tool name reported for style findings.
const StyleName = "flake8"

// DefaultMaxLineLength is the PEP 8 line limit used by the style checker.
const DefaultMaxLineLength = 79

var (
	noneComparison = regexp.MustCompile(`[=!]=\s*None\b`)
	boolComparison = regexp.MustCompile(`==\s*(True|False)\b`)
	multiImport    = regexp.MustCompile(`^\s*import\s+[\w.]+\s*,`)
	bareExcept     = regexp.MustCompile(`^\s*except\s*:`)
	semicolonEnd   = regexp.MustCompile(`;\s*$`)
)

// StyleChecker reports PEP 8 style violations line by line.
type StyleChecker struct {
	MaxLineLength int
}

var _ contract.Tool = &StyleChecker{} // Compile-time check

// NewStyleChecker returns a checker with the PEP 8 line limit.
func NewStyleChecker() *StyleChecker {
	return &StyleChecker{MaxLineLength: DefaultMaxLineLength}
}

// Name implements contract.Tool.
func (s *StyleChecker) Name() string { return StyleName }

// Kind implements contract.Tool.
func (s *StyleChecker) Kind() schema.ToolKind { return schema.StyleTool }

// Run implements contract.Tool.
func (s *StyleChecker) Run(ctx context.Context, source string) (schema.ToolReport, error) {
	report := schema.ToolReport{Tool: StyleName, Kind: schema.StyleTool, Findings: []schema.Finding{}}
	if source == "" {
		return report, nil
	}

	maxLen := s.MaxLineLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLineLength
	}

	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	endsWithNewline := lines[len(lines)-1] == ""
	if endsWithNewline {
		lines = lines[:len(lines)-1]
	}

	add := func(lineNo, col int, code, msg string) {
		c := col
		report.Findings = append(report.Findings, schema.Finding{
			Type:    schema.ErrorFinding,
			Message: msg,
			Line:    lineNo,
			Column:  &c,
			RuleID:  code,
		})
	}

	for i, raw := range lines {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		n := i + 1
		code := stripComment(raw)

		if width := utf8.RuneCountInString(raw); width > maxLen {
			add(n, maxLen+1, "E501", fmt.Sprintf("line too long (%d > %d characters)", width, maxLen))
		}
		if trimmed := strings.TrimRight(raw, " \t"); trimmed != raw {
			if strings.TrimSpace(raw) == "" {
				add(n, 1, "W293", "blank line contains whitespace")
			} else {
				add(n, utf8.RuneCountInString(trimmed)+1, "W291", "trailing whitespace")
			}
		}
		if indent := leadingWhitespace(raw); strings.Contains(indent, "\t") {
			add(n, 1, "W191", "indentation contains tabs")
		}
		if loc := noneComparison.FindStringIndex(code); loc != nil {
			add(n, loc[0]+1, "E711", "comparison to None should be 'if cond is None:'")
		}
		if loc := boolComparison.FindStringIndex(code); loc != nil {
			add(n, loc[0]+1, "E712", "comparison to True should be 'if cond is True:' or 'if cond:'")
		}
		if multiImport.MatchString(code) {
			add(n, 1, "E401", "multiple imports on one line")
		}
		if bareExcept.MatchString(code) {
			add(n, strings.Index(code, "except")+1, "E722", "do not use bare 'except'")
		}
		if semicolonEnd.MatchString(code) {
			add(n, strings.LastIndex(code, ";")+1, "E703", "statement ends with a semicolon")
		}
	}

	if !endsWithNewline {
		last := lines[len(lines)-1]
		add(len(lines), utf8.RuneCountInString(last)+1, "W292", "no newline at end of file")
	}
	return report, nil
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// stripComment drops a trailing # comment that is not inside a string literal.
func stripComment(s string) string {
	var quote rune
	escaped := false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '#':
			return s[:i]
		}
	}
	return s
}
