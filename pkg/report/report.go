// Package report renders extracted form fields and tables as a PDF for
// human review.
//
// The report lists every key/value pair with its confidence and draws each
// table as a grid, header rows shaded. It uses the PDF core fonts, so text
// is converted to Latin-1 and characters outside it are shown as '?'.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/blockgraph/pkg/blocks"
)

// Document is what a report shows for one input
type Document struct {
	Name   string // Source file name
	Label  string
	Fields []blocks.FieldPair
	Tables []blocks.Table
}

// FromBlocks resolves fields and tables from a block list
func FromBlocks(name, label string, bs []blocks.Block) Document {
	idx := blocks.NewIndex(bs)
	return Document{
		Name:   name,
		Label:  label,
		Fields: idx.FieldPairs(),
		Tables: idx.Tables(),
	}
}

// Config holds report options
type Config struct {
	Title       string
	FontName    string
	FontSize    float64
	Compress    bool      // Compress page content streams
	LogWarnings bool      // Whether to print warnings
	Logger      io.Writer // Custom logger for warnings (nil = stdout)
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Title:       "Extraction Review",
		FontName:    "Helvetica",
		FontSize:    9,
		Compress:    true,
		LogWarnings: true,
	}
}

const (
	margin    = 40.0
	lineScale = 1.4 // Line height as a multiple of the font size
)

// Render builds the review PDF for one or more documents, each starting on a new page
func Render(cfg Config, docs ...Document) ([]byte, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to report")
	}

	r := &renderer{
		pdf: fpdf.New("P", "pt", "A4", ""),
		cfg: cfg,
	}
	r.pdf.SetCompression(cfg.Compress)
	r.pdf.SetMargins(margin, margin, margin)
	r.pdf.SetAutoPageBreak(true, margin)
	r.pdf.SetTitle(cfg.Title, true)
	r.pdf.SetCreator("blockgraph", true)
	r.pdf.AliasNbPages("")
	r.pdf.SetFooterFunc(func() {
		r.pdf.SetY(-margin + 10)
		r.pdf.SetFont(cfg.FontName, "I", cfg.FontSize-1)
		r.pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", r.pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	for _, doc := range docs {
		r.document(doc)
	}

	if cfg.LogWarnings && r.unsupported > 0 {
		fmt.Fprintf(logger(cfg.Logger), "Warning: %d strings had characters outside Latin-1\n", r.unsupported)
	}

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

type renderer struct {
	pdf         *fpdf.Fpdf
	cfg         Config
	unsupported int
}

func (r *renderer) lineHeight() float64 { return r.cfg.FontSize * lineScale }

func (r *renderer) contentWidth() float64 {
	w, _ := r.pdf.GetPageSize()
	return w - 2*margin
}

func (r *renderer) document(doc Document) {
	pdf := r.pdf
	pdf.AddPage()

	pdf.SetFont(r.cfg.FontName, "B", r.cfg.FontSize+7)
	pdf.CellFormat(0, (r.cfg.FontSize+7)*lineScale, r.text(r.cfg.Title), "", 1, "L", false, 0, "")

	pdf.SetFont(r.cfg.FontName, "", r.cfg.FontSize)
	if doc.Name != "" {
		pdf.CellFormat(0, r.lineHeight(), r.text("Source: "+doc.Name), "", 1, "L", false, 0, "")
	}
	if doc.Label != "" {
		pdf.CellFormat(0, r.lineHeight(), r.text("Label: "+doc.Label), "", 1, "L", false, 0, "")
	}
	pdf.Ln(r.lineHeight())

	r.heading(fmt.Sprintf("Fields (%d)", len(doc.Fields)))
	if len(doc.Fields) > 0 {
		cw := r.contentWidth()
		widths := []float64{cw * 0.38, cw * 0.5, cw * 0.12}
		r.row(widths, []string{"Key", "Value", "Conf."}, true)
		for _, f := range doc.Fields {
			r.row(widths, []string{f.Key, f.Value, fmt.Sprintf("%.1f", f.Confidence)}, false)
		}
	} else {
		r.note("No key/value pairs found.")
	}
	pdf.Ln(r.lineHeight())

	for i, t := range doc.Tables {
		title := fmt.Sprintf("Table %d", i+1)
		if t.Page > 0 {
			title += fmt.Sprintf(" (page %d)", t.Page)
		}
		r.heading(title)
		r.table(t)
		pdf.Ln(r.lineHeight())
	}
}

func (r *renderer) heading(s string) {
	r.pdf.SetFont(r.cfg.FontName, "B", r.cfg.FontSize+2)
	r.pdf.CellFormat(0, (r.cfg.FontSize+2)*lineScale, r.text(s), "B", 1, "L", false, 0, "")
	r.pdf.SetFont(r.cfg.FontName, "", r.cfg.FontSize)
	r.pdf.Ln(2)
}

func (r *renderer) note(s string) {
	r.pdf.SetFont(r.cfg.FontName, "I", r.cfg.FontSize)
	r.pdf.CellFormat(0, r.lineHeight(), r.text(s), "", 1, "L", false, 0, "")
	r.pdf.SetFont(r.cfg.FontName, "", r.cfg.FontSize)
}

func (r *renderer) table(t blocks.Table) {
	cols := t.Columns()
	if cols == 0 {
		r.note("Empty table.")
		return
	}
	widths := make([]float64, cols)
	for i := range widths {
		widths[i] = r.contentWidth() / float64(cols)
	}
	for i, row := range t.Strings() {
		r.row(widths, row, i < t.HeaderRows)
	}
}

// row draws one bordered row whose height fits the tallest wrapped cell
func (r *renderer) row(widths []float64, cells []string, header bool) {
	pdf := r.pdf
	lh := r.lineHeight()
	if header {
		pdf.SetFont(r.cfg.FontName, "B", r.cfg.FontSize)
		pdf.SetFillColor(230, 230, 230)
	}

	texts := make([]string, len(widths))
	lines := 1
	for i := range widths {
		if i < len(cells) {
			texts[i] = r.text(cells[i])
		}
		if n := len(pdf.SplitLines([]byte(texts[i]), widths[i])); n > lines {
			lines = n
		}
	}
	height := float64(lines) * lh

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+height > pageH-margin {
		pdf.AddPage()
	}

	style := "D"
	if header {
		style = "FD"
	}
	x, y := pdf.GetX(), pdf.GetY()
	for i, w := range widths {
		pdf.Rect(x, y, w, height, style)
		pdf.SetXY(x, y)
		pdf.MultiCell(w, lh, texts[i], "", "L", false)
		x += w
	}
	pdf.SetXY(margin, y+height)
	if header {
		pdf.SetFont(r.cfg.FontName, "", r.cfg.FontSize)
	}
}

// text converts s to Latin-1 for the core fonts
func (r *renderer) text(s string) string {
	var sb strings.Builder
	replaced := false
	for _, c := range s {
		b, ok := charmap.ISO8859_1.EncodeRune(c)
		if !ok {
			b, replaced = '?', true
		}
		sb.WriteByte(b)
	}
	if replaced {
		r.unsupported++
	}
	return sb.String()
}

// logger returns w, defaulting to os.Stdout if nil
func logger(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
