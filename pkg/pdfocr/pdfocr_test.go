package pdfocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/blockgraph/pkg/blocks"
)

func sourcePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Text(20, 20, "Scanned page")
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.White)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func word(id, text string, page int, withGeometry bool) blocks.Block {
	b := blocks.Block{ID: id, BlockType: blocks.BlockTypeWord, Text: text, Page: page}
	if withGeometry {
		b.Geometry = &blocks.Geometry{BoundingBox: &blocks.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.05}}
	}
	return b
}

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.LogWarnings = false
	return cfg
}

func TestApplyOCR(t *testing.T) {
	src := sourcePDF(t, 2)
	words := []blocks.Block{
		word("w1", "Invoice", 1, true),
		word("w2", "Total", 2, true),
		word("w3", "lost", 2, false),
	}

	var log bytes.Buffer
	cfg := DefaultConfig()
	cfg.Logger = &log

	out, err := ApplyOCR(src, words, cfg)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	layers, err := LayerNames(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"OCR Text (Page 1)", "OCR Text (Page 2)"}, layers)
	assert.Contains(t, log.String(), "skipped 1 words without geometry")

	_, err = ApplyOCR(out, words, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has a text layer")
}

func TestApplyOCRStartPage(t *testing.T) {
	cfg := quietConfig()
	cfg.StartPage = 2

	out, err := ApplyOCR(sourcePDF(t, 2), []blocks.Block{word("w1", "Invoice", 1, true)}, cfg)
	require.NoError(t, err)

	layers, err := LayerNames(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"OCR Text (Page 2)"}, layers)
}

func TestApplyOCRValidation(t *testing.T) {
	cfg := quietConfig()
	words := []blocks.Block{word("w1", "a", 1, true)}

	_, err := ApplyOCR(nil, words, cfg)
	assert.Error(t, err)

	_, err = ApplyOCR(sourcePDF(t, 1), nil, cfg)
	assert.ErrorIs(t, err, blocks.ErrMalformedInput)

	cfg.StartPage = 0
	_, err = ApplyOCR(sourcePDF(t, 1), words, cfg)
	assert.Error(t, err)
}

func TestApplyOCREncodingErrors(t *testing.T) {
	words := []blocks.Block{word("w1", "発票", 1, true), word("w2", "合計", 1, true)}
	_, err := ApplyOCR(sourcePDF(t, 1), words, quietConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "character encoding issues in 2 of 2 words")
}

func TestAssembleWithOCR(t *testing.T) {
	images := [][]byte{pngImage(t, 200, 100), pngImage(t, 200, 100)}
	words := []blocks.Block{word("w1", "Invoice", 2, true)}

	out, err := AssembleWithOCR(images, words, quietConfig())
	require.NoError(t, err)

	layers, err := LayerNames(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"OCR Text (Page 2)"}, layers)

	_, err = AssembleWithOCR([][]byte{[]byte("not an image")}, words, quietConfig())
	assert.Error(t, err)

	_, err = AssembleWithOCR(nil, words, quietConfig())
	assert.Error(t, err)
}

func TestAssembleWithOCRStartPage(t *testing.T) {
	images := [][]byte{pngImage(t, 200, 100), pngImage(t, 200, 100)}
	words := []blocks.Block{word("w1", "Invoice", 1, true), word("w2", "Overflow", 2, true)}

	var log bytes.Buffer
	cfg := DefaultConfig()
	cfg.Logger = &log
	cfg.StartPage = 2

	out, err := AssembleWithOCR(images, words, cfg)
	require.NoError(t, err)

	layers, err := LayerNames(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"OCR Text (Page 2)"}, layers)
	assert.Contains(t, log.String(), "1 words on page 2 have no image")
}

func TestCheckLayers(t *testing.T) {
	data := []byte(`1 0 obj <</Type /OCG /Name (OCR Text \(Page 3\))>> endobj
2 0 obj <</Type /OCG /Name (Old OCR pass)>> endobj
3 0 obj <</Name (Annotations) /Type /OCG>> endobj`)

	check, err := CheckLayers(data, "OCR Text")
	require.NoError(t, err)
	assert.Equal(t, []string{"OCR Text (Page 3)", "Old OCR pass", "Annotations"}, check.Layers)
	assert.Equal(t, "OCR Text (Page 3)", check.Existing)
	assert.Equal(t, []string{"Old OCR pass"}, check.Suspicious)

	_, err = LayerNames(nil)
	assert.Error(t, err)
}
