package output

// CSVFormatter renders a page as comma-separated values with a header line.
type CSVFormatter struct{}

func (f *CSVFormatter) FormatPage(page *Page) (string, error) {
	if page == nil {
		return "", nil
	}
	return newWriter(page).RenderCSV() + "\n", nil
}
