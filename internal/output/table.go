package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// TableFormatter renders a page as an ASCII table.
type TableFormatter struct{}

// FormatPage renders a page as a table with an entry-count caption.
func (f *TableFormatter) FormatPage(page *Page) (string, error) {
	if page == nil {
		return "", nil
	}

	t := newWriter(page)
	t.SetStyle(table.StyleRounded)
	if page.Title != "" {
		t.SetTitle(page.Title)
	}
	t.SetCaption(page.Summary())
	return t.Render(), nil
}

func newWriter(page *Page) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(toRow(page.Header))
	for _, row := range page.Rows {
		t.AppendRow(toRow(row))
	}
	return t
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, cell := range cells {
		row[i] = cell
	}
	return row
}
