// Package pdfocr writes recognized words into PDFs as a searchable text layer.
//
// Words come from any provider as blocks with page-relative geometry. They
// are drawn as invisible text on an optional content layer, so the result is
// searchable and selectable while the page looks unchanged. Compatible
// readers can toggle the layer to inspect placement.
//
// Main Functions:
//
// - ApplyOCR: Adds a text layer to an existing PDF
// - AssembleWithOCR: Creates a new PDF from page images with a text layer
// - CheckLayers: Detects text layers left by an earlier run
package pdfocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/gardar/blockgraph/pkg/blocks"
)

// ApplyOCR imports every page of an existing PDF and overlays the words of
// the matching block page. Block page 1 lands on cfg.StartPage.
func ApplyOCR(inputPDFData []byte, bs []blocks.Block, cfg Config) (out []byte, err error) {
	if len(inputPDFData) == 0 {
		return nil, fmt.Errorf("input PDF data is empty")
	}
	if cfg.StartPage < 1 {
		return nil, fmt.Errorf("start page must be at least 1, got %d", cfg.StartPage)
	}
	pages := wordsByPage(bs)
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no WORD blocks to write", blocks.ErrMalformedInput)
	}

	check, err := CheckLayers(inputPDFData, cfg.LayerName)
	if err != nil {
		return nil, fmt.Errorf("layer detection failed: %w", err)
	}
	if check.Existing != "" && !cfg.Force {
		return nil, fmt.Errorf("file already has a text layer ('%s'); use -force to reapply", check.Existing)
	}
	if cfg.LogWarnings {
		logger := getLogger(cfg)
		if check.Existing != "" {
			fmt.Fprintln(logger, "Warning: file already has a text layer; reapplying will duplicate text")
		}
		for _, l := range check.Suspicious {
			fmt.Fprintf(logger, "Warning: existing layer might contain OCR: %s\n", l)
		}
	}

	// gofpdi panics on PDFs it cannot read
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("failed to import PDF: %v", r)
		}
	}()

	pdf := fpdf.New("P", "pt", "", "")
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(inputPDFData))

	tpl := importer.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	sizes := importer.GetPageSizes()

	var total layerStats
	for target := 1; target <= len(sizes); target++ {
		if target > 1 {
			tpl = importer.ImportPageFromStream(pdf, &rs, target, "/MediaBox")
		}
		w, h := sizes[target]["/MediaBox"]["w"], sizes[target]["/MediaBox"]["h"]
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		importer.UseImportedTemplate(pdf, tpl, 0, 0, w, h)

		pageNum := target - cfg.StartPage + 1
		if words, ok := pages[pageNum]; ok {
			total.add(drawTextLayer(pdf, words, cfg, target, w, h))
			delete(pages, pageNum)
		}
	}
	for pageNum, words := range pages {
		if cfg.LogWarnings {
			fmt.Fprintf(getLogger(cfg), "Warning: %d words on page %d have no page in the PDF\n", len(words), pageNum)
		}
	}

	if err := finish(total, cfg); err != nil {
		return nil, err
	}
	return output(pdf)
}

// AssembleWithOCR builds a PDF with one page per image, sized to the image
// in points, and overlays the words of the matching block page. Block page 1
// lands on image cfg.StartPage.
func AssembleWithOCR(imagesData [][]byte, bs []blocks.Block, cfg Config) ([]byte, error) {
	if len(imagesData) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}
	if cfg.StartPage < 1 {
		return nil, fmt.Errorf("start page must be at least 1, got %d", cfg.StartPage)
	}
	pages := wordsByPage(bs)

	pdf := fpdf.New("P", "pt", "A4", "")
	var total layerStats
	for i, img := range imagesData {
		imageType, w, h, err := imageInfo(img)
		if err != nil {
			return nil, fmt.Errorf("image %d has invalid format: %w", i+1, err)
		}
		if cfg.Debug {
			fmt.Fprintf(getLogger(cfg), "Image %d is of type: %s\n", i+1, imageType)
		}

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		name := fmt.Sprintf("img%d", i)
		opts := fpdf.ImageOptions{ImageType: imageType}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")

		pageNum := i + 1 - cfg.StartPage + 1
		if words, ok := pages[pageNum]; ok {
			total.add(drawTextLayer(pdf, words, cfg, i+1, w, h))
			delete(pages, pageNum)
		}
	}
	for pageNum, words := range pages {
		if cfg.LogWarnings {
			fmt.Fprintf(getLogger(cfg), "Warning: %d words on page %d have no image\n", len(words), pageNum)
		}
	}

	if err := finish(total, cfg); err != nil {
		return nil, err
	}
	return output(pdf)
}

// wordsByPage groups WORD blocks by page, treating a missing page as page 1
func wordsByPage(bs []blocks.Block) map[int][]*blocks.Block {
	pages := make(map[int][]*blocks.Block)
	for _, w := range blocks.NewIndex(bs).Words() {
		p := w.Page
		if p < 1 {
			p = 1
		}
		pages[p] = append(pages[p], w)
	}
	return pages
}

func (s *layerStats) add(o layerStats) {
	s.words += o.words
	s.encodingErrors += o.encodingErrors
	s.noGeometry += o.noGeometry
}

// finish reports skipped words and fails when more than a tenth of the
// words could not be encoded for the core fonts
func finish(s layerStats, cfg Config) error {
	if cfg.LogWarnings && s.noGeometry > 0 {
		fmt.Fprintf(getLogger(cfg), "Warning: skipped %d words without geometry\n", s.noGeometry)
	}
	if s.words > 0 && s.encodingErrors > s.words/10 {
		return fmt.Errorf("character encoding issues in %d of %d words", s.encodingErrors, s.words)
	}
	return nil
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// imageInfo returns the fpdf image type and pixel size of an image
func imageInfo(data []byte) (string, float64, float64, error) {
	if len(data) == 0 {
		return "", 0, 0, fmt.Errorf("image is empty")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return strings.ToUpper(format), float64(cfg.Width), float64(cfg.Height), nil
}

// getLogger returns the configured logger, defaulting to os.Stdout if nil
func getLogger(cfg Config) io.Writer {
	if cfg.Logger == nil {
		return os.Stdout
	}
	return cfg.Logger
}
