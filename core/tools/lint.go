package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/codescore/core/score"
	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
	sitter "github.com/smacker/go-tree-sitter"
)

// LintName is the tool name reported for lint findings.
const LintName = "pylint"

// Lint thresholds, matching pylint defaults.
const (
	lintMaxLineLength = 100
	lintMaxBranches   = 12
	lintMaxArgs       = 5
)

var (
	snakeCase  = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	pascalCase = regexp.MustCompile(`^_*[A-Z][a-zA-Z0-9]*$`)
)

// Linter runs syntax-tree checks over Python source and scores the result.
type Linter struct{}

var _ contract.Tool = &Linter{} // Compile-time check

// NewLinter returns a Python linter.
func NewLinter() *Linter { return &Linter{} }

// Name implements contract.Tool.
func (l *Linter) Name() string { return LintName }

// Kind implements contract.Tool.
func (l *Linter) Kind() schema.ToolKind { return schema.LintTool }

// Run implements contract.Tool. The report score is the truncated 0-10 lint score.
func (l *Linter) Run(ctx context.Context, source string) (schema.ToolReport, error) {
	src := []byte(source)
	tree, err := parseSource(ctx, Python, src)
	if err != nil {
		return schema.ToolReport{}, err
	}
	defer tree.Close()

	root := tree.RootNode()
	var findings []schema.Finding
	if root.HasError() {
		findings = append(findings, syntaxError(root))
	} else {
		findings = lintTree(root, src)
		findings = append(findings, longLines(source)...)
	}
	if findings == nil {
		findings = []schema.Finding{}
	}

	lintScore := score.LintScore(len(findings))
	return schema.ToolReport{
		Tool:     LintName,
		Kind:     schema.LintTool,
		Findings: findings,
		Score:    &lintScore,
	}, nil
}

func syntaxError(root *sitter.Node) schema.Finding {
	f := schema.Finding{Type: schema.ErrorFinding, Message: "invalid syntax", Line: 1, RuleID: "E0001"}
	found := false
	walk(root, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if n.IsError() || n.IsMissing() {
			f.Line, f.Column = line(n), column(n)
			if n.IsMissing() {
				f.Message = fmt.Sprintf("invalid syntax: missing %s", n.Type())
			}
			found = true
			return false
		}
		return true
	})
	return f
}

func lintTree(root *sitter.Node, src []byte) []schema.Finding {
	var findings []schema.Finding
	add := func(n *sitter.Node, kind schema.FindingType, rule, msg string) {
		findings = append(findings, schema.Finding{Type: kind, Message: msg, Line: line(n), Column: column(n), RuleID: rule})
	}

	if hasStatements(root) && !hasDocstring(root) {
		f := schema.Finding{Type: schema.WarningFinding, Message: "Missing module docstring", Line: 1, RuleID: "C0114"}
		findings = append(findings, f)
	}

	imports := map[string]*sitter.Node{}
	var importOrder []string
	used := map[string]bool{}

	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement", "import_from_statement":
			for _, name := range importedNames(n, src) {
				if _, seen := imports[name.text]; !seen {
					importOrder = append(importOrder, name.text)
				}
				imports[name.text] = name.node
			}
			return false
		case "identifier":
			used[n.Content(src)] = true
		case "function_definition":
			name := n.ChildByFieldName("name")
			if name == nil {
				return true
			}
			fn := name.Content(src)
			if !strings.HasPrefix(fn, "_") && !hasDocstring(n.ChildByFieldName("body")) {
				add(name, schema.WarningFinding, "C0116", "Missing function or method docstring")
			}
			if !isDunder(fn) && !snakeCase.MatchString(fn) {
				add(name, schema.WarningFinding, "C0103", fmt.Sprintf("Function name %q doesn't conform to snake_case naming style", fn))
			}
			if args := countArgs(n.ChildByFieldName("parameters")); args > lintMaxArgs {
				add(name, schema.WarningFinding, "R0913", fmt.Sprintf("Too many arguments (%d/%d)", args, lintMaxArgs))
			}
			if branches := countBranches(n.ChildByFieldName("body")); branches > lintMaxBranches {
				add(name, schema.WarningFinding, "R0912", fmt.Sprintf("Too many branches (%d/%d)", branches, lintMaxBranches))
			}
		case "class_definition":
			name := n.ChildByFieldName("name")
			if name == nil {
				return true
			}
			cls := name.Content(src)
			if !strings.HasPrefix(cls, "_") && !hasDocstring(n.ChildByFieldName("body")) {
				add(name, schema.WarningFinding, "C0115", "Missing class docstring")
			}
			if !pascalCase.MatchString(cls) {
				add(name, schema.WarningFinding, "C0103", fmt.Sprintf("Class name %q doesn't conform to PascalCase naming style", cls))
			}
		}
		return true
	})

	for _, name := range importOrder {
		if !used[name] {
			add(imports[name], schema.WarningFinding, "W0611", fmt.Sprintf("Unused import %s", name))
		}
	}
	return findings
}

type boundName struct {
	text string
	node *sitter.Node
}

// importedNames returns the names an import statement binds in the module scope.
func importedNames(n *sitter.Node, src []byte) []boundName {
	module := n.ChildByFieldName("module_name")
	var out []boundName
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || (module != nil && child.StartByte() == module.StartByte()) {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			// import a.b binds a; from m import a binds a
			first := child.NamedChild(0)
			if first != nil {
				out = append(out, boundName{text: first.Content(src), node: child})
			}
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				out = append(out, boundName{text: alias.Content(src), node: child})
			}
		}
	}
	return out
}

// hasDocstring reports whether a module or block starts with a string expression.
func hasDocstring(body *sitter.Node) bool {
	if body == nil {
		return false
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			return false
		}
		return stmt.NamedChild(0).Type() == "string"
	}
	return false
}

func hasStatements(n *sitter.Node) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() != "comment" {
			return true
		}
	}
	return false
}

func countArgs(params *sitter.Node) int {
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		switch params.NamedChild(i).Type() {
		case "identifier", "typed_parameter", "default_parameter", "typed_default_parameter":
			count++
		}
	}
	return count
}

// countBranches counts branch points in a function body, excluding nested definitions.
func countBranches(body *sitter.Node) int {
	count := 0
	walk(body, func(n *sitter.Node) bool {
		switch n.Type() {
		case "function_definition", "class_definition":
			return false
		case "if_statement", "elif_clause", "else_clause", "for_statement", "while_statement", "except_clause":
			count++
		}
		return true
	})
	return count
}

func isDunder(s string) bool {
	return len(s) > 4 && strings.HasPrefix(s, "__") && strings.HasSuffix(s, "__")
}

func longLines(source string) []schema.Finding {
	var out []schema.Finding
	for i, l := range splitSourceLines(source) {
		if width := utf8.RuneCountInString(l); width > lintMaxLineLength {
			out = append(out, schema.Finding{
				Type:    schema.WarningFinding,
				Message: fmt.Sprintf("Line too long (%d/%d)", width, lintMaxLineLength),
				Line:    i + 1,
				RuleID:  "C0301",
			})
		}
	}
	return out
}

func splitSourceLines(source string) []string {
	return strings.Split(strings.TrimSuffix(strings.ReplaceAll(source, "\r\n", "\n"), "\n"), "\n")
}
