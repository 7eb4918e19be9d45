package output

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a page as a markdown table.
type MarkdownFormatter struct{}

// FormatPage renders a page as Markdown.
func (f *MarkdownFormatter) FormatPage(page *Page) (string, error) {
	if page == nil {
		return "", nil
	}

	var sb strings.Builder
	if page.Title != "" {
		sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(page.Title)))
	}
	sb.WriteString(newWriter(page).RenderMarkdown())
	sb.WriteString(fmt.Sprintf("\n\n%s\n", page.Summary()))
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
