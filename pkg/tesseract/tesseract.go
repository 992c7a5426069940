// Package tesseract runs local OCR through Tesseract and returns blocks.
//
// It requires the tesseract and leptonica libraries at build time (cgo).
// Tesseract's hOCR output is parsed by the hocr package, so the result
// carries PAGE, LINE and WORD blocks. Tesseract does not detect form
// fields or tables.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/gardar/blockgraph/pkg/blocks"
	"github.com/gardar/blockgraph/pkg/hocr"
)

// Config controls recognition
type Config struct {
	Languages   []string // Tesseract language codes, e.g. "eng", "isl"
	PageSegMode int      // 0 keeps Tesseract's default
}

// client is the part of gosseract.Client the engine drives
type client interface {
	SetImageFromBytes([]byte) error
	SetLanguage(...string) error
	SetPageSegMode(gosseract.PageSegMode) error
	HOCRText() (string, error)
	Close() error
}

// Engine recognizes images with a fresh Tesseract client per call
type Engine struct {
	cfg           Config
	clientFactory func() client
}

// NewEngine constructs a Tesseract-backed engine
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:           cfg,
		clientFactory: func() client { return gosseract.NewClient() },
	}
}

// HOCR recognizes an image and returns the parsed hOCR
func (e *Engine) HOCR(ctx context.Context, image []byte) (*hocr.HOCR, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", blocks.ErrMalformedInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := e.clientFactory()
	defer c.Close()

	if len(e.cfg.Languages) > 0 {
		if err := c.SetLanguage(e.cfg.Languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if e.cfg.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.cfg.PageSegMode)); err != nil {
			return nil, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	out, err := c.HOCRText()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	return hocr.Parse([]byte(out))
}

// Blocks recognizes an image and converts the result to blocks
func (e *Engine) Blocks(ctx context.Context, image []byte) ([]blocks.Block, error) {
	doc, err := e.HOCR(ctx, image)
	if err != nil {
		return nil, err
	}
	return hocr.ToBlocks(doc), nil
}
