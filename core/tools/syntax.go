package tools

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// Supported languages.
const (
	Python     = "python"
	JavaScript = "javascript"
)

// maxWalkNodes bounds tree traversal on pathological input.
const maxWalkNodes = 500_000

func grammar(lang string) *sitter.Language {
	switch lang {
	case Python:
		return python.GetLanguage()
	case JavaScript:
		return javascript.GetLanguage()
	default:
		return nil
	}
}

// parseSource parses src with a fresh parser. Parsers are not safe for concurrent use,
// so every call builds its own. The caller must Close the returned tree.
func parseSource(ctx context.Context, lang string, src []byte) (*sitter.Tree, error) {
	g := grammar(lang)
	if g == nil {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	parser := sitter.NewParser()
	parser.SetLanguage(g)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing failed: %w", err)
	}
	return tree, nil
}

// walk visits every node depth-first in source order. Returning false from fn
// skips the node's children.
func walk(root *sitter.Node, fn func(*sitter.Node) bool) {
	if root == nil {
		return
	}
	stack := []*sitter.Node{root}
	visited := 0
	for len(stack) > 0 && visited < maxWalkNodes {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited++
		if !fn(n) {
			continue
		}
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if child := n.Child(i); child != nil {
				stack = append(stack, child)
			}
		}
	}
}

// line returns the 1-based line of a node.
func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// column returns the 1-based column of a node.
func column(n *sitter.Node) *int {
	c := int(n.StartPoint().Column) + 1
	return &c
}
