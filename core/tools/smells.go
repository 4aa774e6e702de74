package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
	sitter "github.com/smacker/go-tree-sitter"
)

// Smell thresholds.
const (
	complexityThreshold      = 10
	maintainabilityThreshold = 20
	longCodeThreshold        = 20
	suggestComplexity        = complexityThreshold * 0.7
	commentRatioThreshold    = 0.1
	fallbackMaintainability  = 50
)

// AI score deductions.
const (
	warningSmellPenalty = 5.0
	infoSmellPenalty    = 2.0
	suggestionPenalty   = 1.5
	metricPenaltyFactor = 2.0
)

var (
	pythonHint     = regexp.MustCompile(`\bdef\s+\w+|\bclass\s+\w+`)
	javascriptHint = regexp.MustCompile(`\bfunction\s+\w+|\bconst\s+\w+|\blet\s+\w+|\bvar\s+\w+`)
	pyComment      = regexp.MustCompile(`(?m)#.*$`)
	jsComment      = regexp.MustCompile(`(?s)//[^\n]*|/\*.*?\*/`)
	pyBranchWord   = regexp.MustCompile(`\b(if|for|while|try|except)\b`)
	jsBranchWord   = regexp.MustCompile(`\b(if|for|while|switch|try)\b`)
	pyFunctionWord = regexp.MustCompile(`\bdef\s+\w+`)
	jsFunctionWord = regexp.MustCompile(`\bfunction\s+\w+|\bconst\s+\w+\s*=\s*\([^)]*\)\s*=>`)
	classWord      = regexp.MustCompile(`\bclass\s+\w+`)
	assignTarget   = regexp.MustCompile(`\b([a-zA-Z_][a-zA-Z0-9_]*)\s*=`)
	snakeVariable  = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	varDeclaration = regexp.MustCompile(`var\s+\w+`)
	blockSeparator = regexp.MustCompile(`\n\s*\n`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	letOrConst     = regexp.MustCompile(`const|let`)
	arrowFunction  = regexp.MustCompile(`arrow\s+function|=>`)
	looseEquality  = regexp.MustCompile(`==`)
)

// Node types per grammar.
var (
	complexityNodes = map[string]map[string]bool{
		Python: {
			"if_statement": true, "elif_clause": true, "for_statement": true, "while_statement": true,
			"try_statement": true, "except_clause": true,
		},
		JavaScript: {
			"if_statement": true, "for_statement": true, "for_in_statement": true, "while_statement": true,
			"do_statement": true, "switch_case": true, "try_statement": true,
		},
	}

	functionNodes = map[string]map[string]bool{
		Python:     {"function_definition": true},
		JavaScript: {"function_declaration": true, "function_expression": true, "function": true},
	}

	classNodes = map[string]map[string]bool{
		Python:     {"class_definition": true},
		JavaScript: {"class_declaration": true},
	}
)

// SmellDetector finds code smells and improvement suggestions in Python or JavaScript source.
type SmellDetector struct{}

var _ contract.SmellDetector = &SmellDetector{} // Compile-time check

// NewSmellDetector returns a smell detector.
func NewSmellDetector() *SmellDetector { return &SmellDetector{} }

// DetectLanguage guesses the language of source, defaulting to Python.
func DetectLanguage(source string) string {
	switch {
	case pythonHint.MatchString(source):
		return Python
	case javascriptHint.MatchString(source):
		return JavaScript
	default:
		return Python
	}
}

// Detect implements contract.SmellDetector.
func (d *SmellDetector) Detect(ctx context.Context, source string) (schema.SmellReport, error) {
	if err := ctx.Err(); err != nil {
		return schema.SmellReport{}, err
	}
	lang := DetectLanguage(source)
	shape := inspect(ctx, lang, source)

	smells := detectSmells(lang, source, shape)
	suggestions := suggest(lang, source, shape.metrics)
	return schema.SmellReport{
		Language:    lang,
		CodeSmells:  smells,
		Suggestions: suggestions,
		Metrics:     shape.metrics,
		AIScore:     AIScore(smells, suggestions, shape.metrics),
	}, nil
}

// AIScore folds smells, suggestions and metrics into a 0-100 quality score.
func AIScore(smells, suggestions []schema.Finding, m schema.SmellMetrics) float64 {
	s := 100.0
	for _, smell := range smells {
		switch smell.Type {
		case schema.WarningFinding:
			s -= warningSmellPenalty
		case schema.InfoFinding:
			s -= infoSmellPenalty
		}
	}
	s -= float64(len(suggestions)) * suggestionPenalty
	s -= max(0, float64(m.Complexity-complexityThreshold)*metricPenaltyFactor)
	s -= max(0, (maintainabilityThreshold-m.Maintainability)*metricPenaltyFactor)
	return min(100, max(0, s))
}

// sourceShape is what one parse of the source yields.
type sourceShape struct {
	metrics  schema.SmellMetrics
	patterns []string // normalized function and class bodies
}

func inspect(ctx context.Context, lang, source string) sourceShape {
	loc := countLines(source)
	comments := commentPattern(lang).FindAllStringIndex(source, -1)

	src := []byte(source)
	tree, err := parseSource(ctx, lang, src)
	if err == nil {
		defer tree.Close()
	}
	if err != nil || tree.RootNode().HasError() {
		return regexShape(lang, source, loc, len(comments))
	}

	m := schema.SmellMetrics{LOC: loc, CommentCount: len(comments)}
	var patterns []string
	walk(tree.RootNode(), func(n *sitter.Node) bool {
		t := n.Type()
		switch {
		case functionNodes[lang][t]:
			m.FunctionCount++
			patterns = append(patterns, normalize(n.Content(src)))
		case classNodes[lang][t]:
			m.ClassCount++
			patterns = append(patterns, normalize(n.Content(src)))
		}
		if complexityNodes[lang][t] {
			m.Complexity++
		}
		return true
	})
	m.Maintainability = maintainabilityIndex(m.Complexity, m.LOC)
	return sourceShape{metrics: m, patterns: patterns}
}

func regexShape(lang, source string, loc, comments int) sourceShape {
	branch, function := pyBranchWord, pyFunctionWord
	if lang == JavaScript {
		branch, function = jsBranchWord, jsFunctionWord
	}
	var patterns []string
	for _, block := range blockSeparator.Split(source, -1) {
		if b := strings.TrimSpace(block); b != "" {
			patterns = append(patterns, b)
		}
	}
	return sourceShape{
		metrics: schema.SmellMetrics{
			LOC:             loc,
			Complexity:      len(branch.FindAllStringIndex(source, -1)),
			FunctionCount:   len(function.FindAllStringIndex(source, -1)),
			ClassCount:      len(classWord.FindAllStringIndex(source, -1)),
			CommentCount:    comments,
			Maintainability: fallbackMaintainability,
		},
		patterns: patterns,
	}
}

func maintainabilityIndex(complexity, loc int) float64 {
	return min(100, max(0, 100-float64(complexity)*0.5-float64(loc)*0.1))
}

func detectSmells(lang, source string, shape sourceShape) []schema.Finding {
	m := shape.metrics
	smells := []schema.Finding{}
	add := func(kind schema.FindingType, rule, msg string) {
		smells = append(smells, schema.Finding{Type: kind, Message: msg, Line: 1, RuleID: rule})
	}

	if m.Complexity > complexityThreshold {
		add(schema.WarningFinding, "high-complexity",
			fmt.Sprintf("High cyclomatic complexity (%d). Consider simplifying the logic.", m.Complexity))
	}
	if m.Maintainability < maintainabilityThreshold {
		add(schema.WarningFinding, "low-maintainability",
			fmt.Sprintf("Low maintainability index (%.2f). Consider improving code structure and documentation.", m.Maintainability))
	}
	if m.LOC > longCodeThreshold {
		unit := "Method"
		if lang == JavaScript {
			unit = "Function"
		}
		add(schema.WarningFinding, "long-code",
			fmt.Sprintf("%s is too long (%d lines). Consider breaking it down into smaller %ss.", unit, m.LOC, strings.ToLower(unit)))
	}
	if lang == JavaScript {
		if varDeclaration.MatchString(source) {
			add(schema.WarningFinding, "var-usage", "Usage of var detected. Consider using const or let instead.")
		}
		if looseEquality.MatchString(source) {
			add(schema.WarningFinding, "loose-equality", "Usage of == detected. Consider using === for strict equality comparison.")
		}
	}
	if hasDuplicates(shape.patterns) {
		add(schema.InfoFinding, "duplication",
			"Potential code duplication detected. Consider extracting common patterns into reusable functions.")
	}
	return smells
}

func suggest(lang, source string, m schema.SmellMetrics) []schema.Finding {
	suggestions := []schema.Finding{}
	add := func(rule, msg string) {
		suggestions = append(suggestions, schema.Finding{Type: schema.InfoFinding, Message: msg, Line: 1, RuleID: rule})
	}

	if float64(m.CommentCount) < float64(m.LOC)*commentRatioThreshold {
		add("documentation", "Consider adding more documentation to improve code readability.")
	}
	switch lang {
	case Python:
		for _, match := range assignTarget.FindAllStringSubmatch(source, -1) {
			if name := match[1]; !snakeVariable.MatchString(name) {
				add("naming", fmt.Sprintf("Variable %q should follow snake_case naming convention.", name))
			}
		}
	case JavaScript:
		if !letOrConst.MatchString(source) {
			add("block-scope", "Consider using const and let instead of var for better variable scoping.")
		}
		if !arrowFunction.MatchString(source) {
			add("arrow-functions", "Consider using arrow functions for better readability and this binding.")
		}
	}
	if float64(m.Complexity) > suggestComplexity {
		add("refactor", "Consider refactoring complex logic into smaller, more manageable functions.")
	}
	return suggestions
}

func hasDuplicates(patterns []string) bool {
	seen := make(map[string]struct{}, len(patterns))
	for _, p := range patterns {
		if _, ok := seen[p]; ok {
			return true
		}
		seen[p] = struct{}{}
	}
	return false
}

func commentPattern(lang string) *regexp.Regexp {
	if lang == JavaScript {
		return jsComment
	}
	return pyComment
}

// countLines counts lines the way str.splitlines does: a trailing newline adds no line.
func countLines(source string) int {
	if source == "" {
		return 0
	}
	return len(splitSourceLines(source))
}

func normalize(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}
