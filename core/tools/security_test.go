package tools

import (
	"context"
	"testing"

	"github.com/huangsam/codescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityScannerRules(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected []string
	}{
		{"eval", "value = eval(text)\n", []string{"B307"}},
		{"literal eval is safe", "value = ast.literal_eval(text)\n", []string{}},
		{"exec", "exec(code)\n", []string{"B102"}},
		{"os system", "os.system('ls')\n", []string{"B605"}},
		{"shell subprocess", "subprocess.call(cmd, shell=True)\n", []string{"B602"}},
		{"subprocess without shell", "subprocess.call(['ls'])\n", []string{}},
		{"hardcoded password", "password = 'hunter2'\n", []string{"B105"}},
		{"pickle", "data = pickle.loads(blob)\n", []string{"B301"}},
		{"unsafe yaml", "cfg = yaml.load(f)\n", []string{"B506"}},
		{"safe yaml loader", "cfg = yaml.load(f, Loader=yaml.SafeLoader)\n", []string{}},
		{"weak hash", "h = hashlib.md5(b'x')\n", []string{"B324"}},
		{"temp dir", "path = '/tmp/out.txt'\n", []string{"B108"}},
		{"random", "n = random.randint(1, 6)\n", []string{"B311"}},
		{"commented out", "# eval(text)\n", []string{}},
		{"two rules one line", "assert eval(x)\n", []string{"B101", "B307"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := NewSecurityScanner().Run(context.Background(), tt.source)
			require.NoError(t, err)
			assert.Equal(t, SecurityName, report.Tool)
			assert.Equal(t, schema.SecurityTool, report.Kind)
			assert.Equal(t, tt.expected, ruleIDs(report.Findings))
		})
	}
}

func TestSecurityScannerLineNumbers(t *testing.T) {
	source := "import os\n\nos.system('rm -rf build')\n"
	report, err := NewSecurityScanner().Run(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)

	f := report.Findings[0]
	assert.Equal(t, 3, f.Line)
	assert.Nil(t, f.Column)
	assert.Equal(t, schema.ErrorFinding, f.Type)
	assert.Nil(t, report.Score)
}
