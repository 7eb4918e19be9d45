package output

import (
	"gopkg.in/yaml.v3"
)

// YAMLFormatter renders the records of a page as YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) FormatPage(page *Page) (string, error) {
	if page == nil {
		return "", nil
	}
	data, err := yaml.Marshal(newDocument(page))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
