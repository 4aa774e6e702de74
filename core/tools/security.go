package tools

import (
	"context"
	"regexp"
	"strings"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
)

// SecurityName is the tool name reported for security findings.
const SecurityName = "bandit"

type securityRule struct {
	id       string
	pattern  *regexp.Regexp
	severity schema.FindingType
	message  string
}

var securityRules = []securityRule{
	{"B101", regexp.MustCompile(`^\s*assert\b`), schema.InfoFinding,
		"Use of assert detected. The enclosed code will be removed when compiling to optimised byte code."},
	{"B102", regexp.MustCompile(`\bexec\s*\(`), schema.WarningFinding,
		"Use of exec detected."},
	{"B105", regexp.MustCompile(`(?i)\b\w*(password|passwd|secret|token)\w*\s*=\s*["'][^"']+["']`), schema.InfoFinding,
		"Possible hardcoded password."},
	{"B108", regexp.MustCompile(`["']/tmp/`), schema.WarningFinding,
		"Probable insecure usage of temp file/directory."},
	{"B301", regexp.MustCompile(`\b(c?[Pp]ickle)\.loads?\s*\(`), schema.WarningFinding,
		"Pickle and modules that wrap it can be unsafe when used to deserialize untrusted data."},
	{"B307", regexp.MustCompile(`(^|[^.\w])eval\s*\(`), schema.WarningFinding,
		"Use of possibly insecure function - consider using safer ast.literal_eval."},
	{"B311", regexp.MustCompile(`\brandom\.(random|randint|choice|randrange|uniform)\s*\(`), schema.InfoFinding,
		"Standard pseudo-random generators are not suitable for security/cryptographic purposes."},
	{"B324", regexp.MustCompile(`\bhashlib\.(md5|sha1)\s*\(`), schema.WarningFinding,
		"Use of weak MD5 or SHA1 hash for security."},
	{"B506", regexp.MustCompile(`\byaml\.load\s*\((?:[^)]*)\)`), schema.WarningFinding,
		"Use of unsafe yaml load. Allows instantiation of arbitrary objects. Consider yaml.safe_load()."},
	{"B602", regexp.MustCompile(`\bsubprocess\.\w+\s*\(.*shell\s*=\s*True`), schema.ErrorFinding,
		"subprocess call with shell=True identified, security issue."},
	{"B605", regexp.MustCompile(`\bos\.(system|popen)\s*\(`), schema.ErrorFinding,
		"Starting a process with a shell, possible injection detected, security issue."},
}

// SecurityScanner flags insecure Python idioms with per-line pattern rules.
type SecurityScanner struct{}

var _ contract.Tool = &SecurityScanner{} // Compile-time check

// NewSecurityScanner returns a scanner with the built-in rule set.
func NewSecurityScanner() *SecurityScanner { return &SecurityScanner{} }

// Name implements contract.Tool.
func (s *SecurityScanner) Name() string { return SecurityName }

// Kind implements contract.Tool.
func (s *SecurityScanner) Kind() schema.ToolKind { return schema.SecurityTool }

// Run implements contract.Tool.
func (s *SecurityScanner) Run(ctx context.Context, source string) (schema.ToolReport, error) {
	report := schema.ToolReport{Tool: SecurityName, Kind: schema.SecurityTool, Findings: []schema.Finding{}}

	for i, raw := range strings.Split(source, "\n") {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		code := stripComment(strings.TrimRight(raw, "\r"))
		if strings.TrimSpace(code) == "" {
			continue
		}
		for _, rule := range securityRules {
			if !rule.pattern.MatchString(code) {
				continue
			}
			if rule.id == "B506" && strings.Contains(code, "SafeLoader") {
				continue
			}
			report.Findings = append(report.Findings, schema.Finding{
				Type:    rule.severity,
				Message: rule.message,
				Line:    i + 1,
				RuleID:  rule.id,
			})
		}
	}
	return report, nil
}
