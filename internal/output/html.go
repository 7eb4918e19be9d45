package output

// HTMLFormatter renders a page as an HTML table, suitable for printing.
type HTMLFormatter struct{}

func (f *HTMLFormatter) FormatPage(page *Page) (string, error) {
	if page == nil {
		return "", nil
	}
	t := newWriter(page)
	t.SetCaption(page.Summary())
	return t.RenderHTML() + "\n", nil
}
