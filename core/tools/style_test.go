package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/huangsam/codescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleIDs(findings []schema.Finding) []string {
	ids := make([]string, 0, len(findings))
	for _, f := range findings {
		ids = append(ids, f.RuleID)
	}
	return ids
}

func TestStyleCheckerIdentity(t *testing.T) {
	s := NewStyleChecker()
	assert.Equal(t, "flake8", s.Name())
	assert.Equal(t, schema.StyleTool, s.Kind())
}

func TestStyleCheckerRules(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected []string
		line     int
		column   int
	}{
		{"clean", "x = 1\n", []string{}, 0, 0},
		{"empty", "", []string{}, 0, 0},
		{"long line", strings.Repeat("a", 80) + "\n", []string{"E501"}, 1, 80},
		{"trailing whitespace", "x = 1 \n", []string{"W291"}, 1, 6},
		{"whitespace only line", "x = 1\n   \ny = 2\n", []string{"W293"}, 2, 1},
		{"tab indentation", "if x:\n\tpass\n", []string{"W191"}, 2, 1},
		{"comparison to None", "if x == None:\n    pass\n", []string{"E711"}, 1, 6},
		{"comparison to True", "if x == True:\n    pass\n", []string{"E712"}, 1, 6},
		{"multiple imports", "import os, sys\n", []string{"E401"}, 1, 1},
		{"bare except", "try:\n    pass\nexcept:\n    pass\n", []string{"E722"}, 3, 1},
		{"trailing semicolon", "x = 1;\n", []string{"E703"}, 1, 6},
		{"no newline at end", "x = 1", []string{"W292"}, 1, 6},
		{"comment is ignored", "# if x == None;\n", []string{}, 0, 0},
		{"hash inside string", "s = '#' == None\n", []string{"E711"}, 1, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := NewStyleChecker().Run(context.Background(), tt.source)
			require.NoError(t, err)
			assert.Equal(t, StyleName, report.Tool)
			assert.Equal(t, tt.expected, ruleIDs(report.Findings))
			if len(tt.expected) == 1 {
				f := report.Findings[0]
				assert.Equal(t, schema.ErrorFinding, f.Type)
				assert.Equal(t, tt.line, f.Line)
				require.NotNil(t, f.Column)
				assert.Equal(t, tt.column, *f.Column)
			}
		})
	}
}

func TestStyleCheckerCRLF(t *testing.T) {
	report, err := NewStyleChecker().Run(context.Background(), "x = 1\r\ny = 2\r\n")
	require.NoError(t, err)
	assert.Empty(t, report.Findings)
}

func TestStyleCheckerCustomLineLength(t *testing.T) {
	s := &StyleChecker{MaxLineLength: 10}
	report, err := s.Run(context.Background(), "value = 12345\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"E501"}, ruleIDs(report.Findings))
}

func TestStyleCheckerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStyleChecker().Run(ctx, "x = 1\n")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStripComment(t *testing.T) {
	assert.Equal(t, "x = 1  ", stripComment("x = 1  # note"))
	assert.Equal(t, `s = "a#b"`, stripComment(`s = "a#b"`))
	assert.Equal(t, `s = 'it\'s' `, stripComment(`s = 'it\'s' # c`))
}
