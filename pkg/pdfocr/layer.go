package pdfocr

import (
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/blockgraph/pkg/blocks"
)

// layerStats counts what drawTextLayer wrote
type layerStats struct {
	words          int
	encodingErrors int
	noGeometry     int
}

// drawTextLayer writes words onto a named layer of the current page.
// Word geometry is a fraction of the page, so it scales by the page size in points.
func drawTextLayer(
	pdf *fpdf.Fpdf,
	words []*blocks.Block,
	cfg Config,
	pageNum int,
	pageW, pageH float64,
) layerStats {
	layer := pdf.AddLayer(fmt.Sprintf("%s (Page %d)", cfg.LayerName, pageNum), true)
	pdf.BeginLayer(layer)
	defer pdf.EndLayer()

	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)
	if cfg.Debug {
		pdf.SetTextColor(255, 0, 0)
		pdf.SetDrawColor(255, 0, 0)
	} else {
		pdf.SetAlpha(0.0, "Normal")
	}

	var stats layerStats
	encoder := charmap.ISO8859_1.NewEncoder()
	for _, w := range words {
		bb := w.BoundingBox()
		if bb == nil {
			stats.noGeometry++
			continue
		}
		stats.words++

		latin1, err := encoder.String(w.Text)
		if err != nil {
			stats.encodingErrors++
			latin1 = w.Text
		}
		drawWord(pdf, latin1, bb.Left*pageW, bb.Top*pageH, bb.Width*pageW, bb.Height*pageH, cfg)
	}

	if cfg.Debug {
		pdf.SetTextColor(0, 0, 0)
	} else {
		pdf.SetAlpha(1.0, "Normal")
	}
	return stats
}

// drawWord scales the font so the word spans its box width
func drawWord(pdf *fpdf.Fpdf, text string, x, y, w, h float64, cfg Config) {
	if strWidth := pdf.GetStringWidth(text); strWidth > 0 {
		pdf.SetFontSize(cfg.Font.Size * w / strWidth)
	}
	fontSize, _ := pdf.GetFontSize()
	pdf.Text(x, y+fontSize*cfg.Font.AscentRatio, text)
	pdf.SetFontSize(cfg.Font.Size)

	if cfg.Debug {
		pdf.Rect(x, y, w, h, "D")
	}
}
