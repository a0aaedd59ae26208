package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// fromMarkdown parses a markdown file and flattens its AST to plain text,
// keeping block structure as newlines so the chunker still sees paragraph
// boundaries.
func fromMarkdown(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) == 0 {
		return "", nil
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(content))

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(content))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteString("\n")
			}
		case *ast.String:
			sb.Write(node.Value)
		case *ast.CodeBlock:
			writeLines(&sb, node, content)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			writeLines(&sb, node, content)
			return ast.WalkSkipChildren, nil
		case *ast.Heading, *ast.Paragraph, *ast.ListItem, *ast.Blockquote:
			blockBreak(&sb)
		default:
			// Table rows from the extension keep their own line
			if strings.Contains(n.Kind().String(), "TableRow") {
				blockBreak(&sb)
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(sb.String()), nil
}

// writeLines copies a code block's raw lines.
func writeLines(sb *strings.Builder, n ast.Node, content []byte) {
	blockBreak(sb)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(content))
	}
}

// blockBreak separates blocks with a blank line.
func blockBreak(sb *strings.Builder) {
	if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n\n") {
		if strings.HasSuffix(sb.String(), "\n") {
			sb.WriteString("\n")
		} else {
			sb.WriteString("\n\n")
		}
	}
}
