package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/gardar/blockgraph/pkg/blocks"
)

// TableFormat selects how WriteTables renders tables
type TableFormat string

const (
	FormatCSV      TableFormat = "csv"
	FormatTSV      TableFormat = "tsv"
	FormatMarkdown TableFormat = "markdown"
	FormatHTML     TableFormat = "html"
)

// ParseTableFormat maps a format name or file extension to a TableFormat
func ParseTableFormat(s string) (TableFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "csv":
		return FormatCSV, nil
	case "tsv", "tab":
		return FormatTSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported table format %q", s)
	}
}

// WriteTables renders every table to w.
// Delimited formats separate tables with a blank line, Markdown and HTML give each table a heading.
func WriteTables(w io.Writer, tables []blocks.Table, format TableFormat) error {
	switch format {
	case FormatCSV, "":
		return writeDelimited(w, tables, ',')
	case FormatTSV:
		return writeDelimited(w, tables, '\t')
	case FormatMarkdown:
		_, err := io.WriteString(w, TablesMarkdown(tables))
		return err
	case FormatHTML:
		return writeHTML(w, tables)
	default:
		return fmt.Errorf("unsupported table format %q", format)
	}
}

func writeDelimited(w io.Writer, tables []blocks.Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	for i, t := range tables {
		if i > 0 {
			// csv.Writer cannot emit an empty record, so flush and write the separator directly
			cw.Flush()
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := cw.WriteAll(t.Strings()); err != nil {
			return fmt.Errorf("failed to write table %s: %w", t.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// TablesMarkdown renders tables as GitHub-flavoured Markdown.
// A table without header rows uses its first row as the header. GFM allows a
// single header row, so several header rows are merged column by column.
func TablesMarkdown(tables []blocks.Table) string {
	var sb strings.Builder

	for i, t := range tables {
		rows := t.Strings()
		if len(rows) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "## Table %d", i+1)
		if t.Page > 0 {
			fmt.Fprintf(&sb, " (page %d)", t.Page)
		}
		sb.WriteString("\n\n")

		head, body := markdownHeader(rows, t.HeaderRows)
		writeMarkdownRow(&sb, head)
		for range head {
			sb.WriteString("|---")
		}
		sb.WriteString("|\n")
		for _, row := range body {
			writeMarkdownRow(&sb, row)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// markdownHeader splits rows into one header row and the body
func markdownHeader(rows [][]string, headerRows int) ([]string, [][]string) {
	if headerRows <= 1 {
		return rows[0], rows[1:]
	}
	headerRows = min(headerRows, len(rows))
	head := make([]string, len(rows[0]))
	for c := range head {
		var parts []string
		for _, row := range rows[:headerRows] {
			if c < len(row) && row[c] != "" {
				parts = append(parts, row[c])
			}
		}
		head[c] = strings.Join(parts, " ")
	}
	return head, rows[headerRows:]
}

func writeMarkdownRow(sb *strings.Builder, row []string) {
	for _, cell := range row {
		cell = strings.ReplaceAll(cell, "\n", " ")
		cell = strings.ReplaceAll(cell, "|", `\|`)
		sb.WriteString("| ")
		sb.WriteString(cell)
		sb.WriteString(" ")
	}
	sb.WriteString("|\n")
}

// writeHTML renders the Markdown form through goldmark's GFM table extension
func writeHTML(w io.Writer, tables []blocks.Table) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	if err := md.Convert([]byte(TablesMarkdown(tables)), &buf); err != nil {
		return fmt.Errorf("failed to render tables as HTML: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
