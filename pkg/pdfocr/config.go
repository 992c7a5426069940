package pdfocr

import (
	"io"
)

// Config holds options for writing a text layer into a PDF
type Config struct {
	Debug       bool      // Draw the text in red with word boxes instead of hiding it
	Force       bool      // Write the layer even if one with LayerName already exists
	LayerName   string    // Base name of the text layer (page number will be appended)
	StartPage   int       // Source PDF page that block page 1 lands on
	LogWarnings bool      // Whether to print warnings
	Logger      io.Writer // Custom logger for warnings (nil = stdout)
	Font        FontConfig
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		LayerName:   "OCR Text", // Will be formatted as "OCR Text (Page X)" in the final PDF
		StartPage:   1,
		LogWarnings: true,
		Font:        DefaultFont,
	}
}

// FontConfig contains font settings for text rendering
type FontConfig struct {
	Name        string  // Font name (e.g., "Helvetica")
	Style       string  // Font style ("", "B", "I", "BI")
	Size        float64 // Default font size
	AscentRatio float64 // Vertical positioning ratio
}

// DefaultFont is Helvetica, whose core metrics need no embedding
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Size:        10,
	AscentRatio: 0.718,
}
