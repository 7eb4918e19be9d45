package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tillpoint/posadmin/internal/config"
	"github.com/tillpoint/posadmin/internal/output"
)

type outputSink struct {
	writer io.Writer
	close  func() error
	path   string
}

// addOutputFlags registers --output-format and --out.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("output-format", "", "output format: table, json, markdown, csv, html, yaml (default from output.format)")
	cmd.Flags().String("out", "", "write output to a file instead of stdout")
}

// addListFlags registers the grid controls on top of the output flags.
func addListFlags(cmd *cobra.Command) {
	addOutputFlags(cmd)
	cmd.Flags().String("filter", "", "only show rows containing this text (case-insensitive)")
	cmd.Flags().Int("page-size", 0, "entries per page: 10, 25, 50 or 100 (default from output.page_size)")
	cmd.Flags().Int("page", 1, "page number, starting at 1")
}

func resolveOutputFormat(cmd *cobra.Command, cfg *config.Config) (output.Format, error) {
	value, err := cmd.Flags().GetString("output-format")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) == "" {
		value = cfg.Output.Format
	}
	return output.ParseFormat(value)
}

func resolveQuery(cmd *cobra.Command, cfg *config.Config) (output.Query, error) {
	filter, err := cmd.Flags().GetString("filter")
	if err != nil {
		return output.Query{}, err
	}
	size, err := cmd.Flags().GetInt("page-size")
	if err != nil {
		return output.Query{}, err
	}
	page, err := cmd.Flags().GetInt("page")
	if err != nil {
		return output.Query{}, err
	}
	if size == 0 {
		size = cfg.Output.PageSize
	}
	if err := output.ValidatePageSize(size); err != nil {
		return output.Query{}, err
	}
	return output.Query{Filter: filter, PageSize: size, Page: page}, nil
}

// renderTo formats grid and writes it to --out or the command's stdout.
func renderTo(cmd *cobra.Command, grid output.Grid, format output.Format, q output.Query) error {
	rendered, err := output.Render(format, grid, q)
	if err != nil {
		return err
	}

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	sink, err := openSink(outPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = sink.close() }()

	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	_, err = io.WriteString(sink.writer, rendered)
	return err
}

func openSink(path string, stdout io.Writer) (*outputSink, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		if stdout == nil {
			stdout = os.Stdout
		}
		return &outputSink{writer: stdout, close: func() error { return nil }, path: "-"}, nil
	}

	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(trimmed)
	if err != nil {
		return nil, err
	}
	return &outputSink{writer: file, close: file.Close, path: trimmed}, nil
}
