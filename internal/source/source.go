// Package source maps provider names to loaders that turn an input file into blocks.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gardar/blockgraph/internal/config"
	"github.com/gardar/blockgraph/pkg/blocks"
	"github.com/gardar/blockgraph/pkg/gdocai"
	"github.com/gardar/blockgraph/pkg/hocr"
	"github.com/gardar/blockgraph/pkg/tesseract"
	"github.com/gardar/blockgraph/pkg/textract"
)

// Provider names accepted by Loader
const (
	TextractJSON = "textract-json" // Saved Textract response (default)
	Textract     = "textract"      // Live Amazon Textract call
	GDocAI       = "gdocai"        // Live Google Document AI call
	GDocAIJSON   = "gdocai-json"   // Saved Document AI response
	HOCR         = "hocr"          // hOCR file
	Image        = "image"         // Local OCR with Tesseract
)

// Providers lists every accepted provider name
var Providers = []string{TextractJSON, Textract, GDocAI, GDocAIJSON, HOCR, Image}

// Loader reads one input and returns its blocks
type Loader func(ctx context.Context, path string) ([]blocks.Block, error)

// New returns the loader for provider. An empty provider means TextractJSON.
func New(provider string, cfg *config.Config) (Loader, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	switch strings.ToLower(provider) {
	case "", TextractJSON:
		return func(_ context.Context, path string) ([]blocks.Block, error) {
			return blocks.DecodeFile(path)
		}, nil
	case Textract:
		tc := cfg.TextractClient()
		return func(ctx context.Context, path string) ([]blocks.Block, error) {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return textract.AnalyzeDocument(ctx, content, tc)
		}, nil
	case GDocAI:
		gc := cfg.GDocAI()
		return func(ctx context.Context, path string) ([]blocks.Block, error) {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			c := *gc
			c.MimeType = MimeType(path)
			bs, _, err := gdocai.Blocks(ctx, content, &c)
			return bs, err
		}, nil
	case GDocAIJSON:
		return func(_ context.Context, path string) ([]blocks.Block, error) {
			doc, err := gdocai.LoadJSON(path)
			if err != nil {
				return nil, err
			}
			return nonEmpty(gdocai.BlocksFromProto(doc), path)
		}, nil
	case HOCR:
		return func(_ context.Context, path string) ([]blocks.Block, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			doc, err := hocr.Parse(data)
			if err != nil {
				return nil, err
			}
			return hocr.ToBlocks(doc), nil
		}, nil
	case Image:
		engine := tesseract.NewEngine(tesseract.Config{Languages: cfg.Tesseract.Languages})
		return func(ctx context.Context, path string) ([]blocks.Block, error) {
			img, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return engine.Blocks(ctx, img)
		}, nil
	}
	return nil, fmt.Errorf("unknown provider %q (want one of %s)", provider, strings.Join(Providers, ", "))
}

// Extensions returns the input file extensions a provider reads, for directory scans
func Extensions(provider string) []string {
	switch strings.ToLower(provider) {
	case "", TextractJSON, GDocAIJSON:
		return []string{".json"}
	case HOCR:
		return []string{".hocr", ".html", ".htm"}
	case Image:
		return []string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}
	default:
		return []string{".pdf", ".png", ".jpg", ".jpeg", ".tif", ".tiff"}
	}
}

// MimeType guesses a document MIME type from its extension
func MimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".gif":
		return "image/gif"
	}
	return "application/pdf"
}

func nonEmpty(bs []blocks.Block, path string) ([]blocks.Block, error) {
	if len(bs) == 0 {
		return nil, fmt.Errorf("%w: %s has no pages", blocks.ErrMalformedInput, path)
	}
	return bs, nil
}
