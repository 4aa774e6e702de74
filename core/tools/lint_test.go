package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/huangsam/codescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanModule = `"""Path helpers."""

import os


def read_path(name):
    """Return a data path."""
    return os.path.join("/data", name)


def _helper():
    return 1
`

const messyModule = `import sys


def BadName(a, b, c, d, e, f):
    return a


class lower_case:
    pass
`

func TestLinterIdentity(t *testing.T) {
	l := NewLinter()
	assert.Equal(t, "pylint", l.Name())
	assert.Equal(t, schema.LintTool, l.Kind())
}

func TestLinterCleanModule(t *testing.T) {
	report, err := NewLinter().Run(context.Background(), cleanModule)
	require.NoError(t, err)
	assert.Empty(t, report.Findings)
	require.NotNil(t, report.Score)
	assert.Equal(t, 10.0, *report.Score)
}

func TestLinterMessyModule(t *testing.T) {
	report, err := NewLinter().Run(context.Background(), messyModule)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"C0114", "C0116", "C0103", "R0913", "C0115", "C0103", "W0611"},
		ruleIDs(report.Findings))
	require.NotNil(t, report.Score)
	assert.Equal(t, 9.0, *report.Score)

	for _, f := range report.Findings {
		if f.RuleID == "W0611" {
			assert.Equal(t, 1, f.Line)
			assert.Contains(t, f.Message, "sys")
		}
		if f.RuleID == "R0913" {
			assert.Equal(t, 4, f.Line)
			assert.Equal(t, "Too many arguments (6/5)", f.Message)
		}
	}
}

func TestLinterSyntaxError(t *testing.T) {
	report, err := NewLinter().Run(context.Background(), "def broken(:\n    pass\n")
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "E0001", report.Findings[0].RuleID)
	assert.Equal(t, schema.ErrorFinding, report.Findings[0].Type)
	assert.Equal(t, 9.0, *report.Score)
}

func TestLinterLongLine(t *testing.T) {
	source := "\"\"\"Doc.\"\"\"\nx = \"" + strings.Repeat("a", 100) + "\"\n"
	report, err := NewLinter().Run(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, []string{"C0301"}, ruleIDs(report.Findings))
	assert.Equal(t, 2, report.Findings[0].Line)
}

func TestLinterAliasedImport(t *testing.T) {
	source := "\"\"\"Doc.\"\"\"\nimport numpy as np\nfrom os import path as p\n\nprint(np)\n"
	report, err := NewLinter().Run(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "W0611", report.Findings[0].RuleID)
	assert.Equal(t, "Unused import p", report.Findings[0].Message)
}

func TestLinterEmptySource(t *testing.T) {
	report, err := NewLinter().Run(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, report.Findings)
	assert.Equal(t, 10.0, *report.Score)
}

func TestCountBranches(t *testing.T) {
	var b strings.Builder
	b.WriteString("\"\"\"Doc.\"\"\"\n\n\ndef route(x):\n    \"\"\"Route.\"\"\"\n")
	for i := 0; i < 13; i++ {
		b.WriteString("    if x:\n        x -= 1\n")
	}
	b.WriteString("    return x\n")

	report, err := NewLinter().Run(context.Background(), b.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"R0912"}, ruleIDs(report.Findings))
}
