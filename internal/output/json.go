package output

import (
	"encoding/json"
)

// JSONFormatter renders the records of a page as JSON.
type JSONFormatter struct {
	Indent bool
}

// pageDocument is the shape shared by the JSON and YAML formatters.
type pageDocument struct {
	Page     int   `json:"page" yaml:"page"`
	Pages    int   `json:"pages" yaml:"pages"`
	PageSize int   `json:"page_size" yaml:"page_size"`
	Total    int   `json:"total" yaml:"total"`
	Overall  int   `json:"overall" yaml:"overall"`
	Records  []any `json:"records" yaml:"records"`
}

func newDocument(page *Page) pageDocument {
	records := page.Records
	if records == nil {
		records = []any{}
	}
	return pageDocument{
		Page:     page.Number,
		Pages:    page.Pages,
		PageSize: page.PageSize,
		Total:    page.Total,
		Overall:  page.Overall,
		Records:  records,
	}
}

// FormatPage renders a page as JSON.
func (f *JSONFormatter) FormatPage(page *Page) (string, error) {
	if page == nil {
		return "", nil
	}

	var (
		data []byte
		err  error
	)

	doc := newDocument(page)
	if f.Indent {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
