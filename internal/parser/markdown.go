package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"document-qa/internal/models"
)

func parseMarkdown(path, source string) ([]models.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	plain, err := markdownToPlainText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if strings.TrimSpace(plain) == "" {
		return nil, nil
	}
	return []models.Page{{Source: source, Number: 1, Text: plain}}, nil
}

// markdownToPlainText strips markdown formatting by walking the parsed AST
// and keeping only the text segments, with a blank line between blocks so
// paragraph boundaries survive for the chunker.
func markdownToPlainText(data []byte) (string, error) {
	root := goldmark.New().Parser().Parse(text.NewReader(data))

	var buf strings.Builder
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(data))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock {
			buf.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
