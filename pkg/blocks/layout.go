package blocks

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// BoxScale is the size of the integer coordinate grid layout-aware tokenizers expect
const BoxScale = 1000

// LayoutRecord is the word sequence, normalized boxes and label consumed by a
// layout-aware document classifier. Words and Boxes always have equal length.
type LayoutRecord struct {
	Words []string `json:"words"`
	Boxes [][4]int `json:"boxes"`
	Label string   `json:"label"`
}

// GeometryPolicy decides what happens to a WORD block without a bounding box
type GeometryPolicy string

const (
	// GeometrySkip drops the word from both words and boxes
	GeometrySkip GeometryPolicy = "skip"
	// GeometryReject fails the whole record with ErrGeometryMissing
	GeometryReject GeometryPolicy = "reject"
)

// ParseGeometryPolicy maps a configuration string to a policy; empty means skip
func ParseGeometryPolicy(s string) (GeometryPolicy, error) {
	switch p := GeometryPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return GeometrySkip, nil
	case GeometrySkip, GeometryReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown missing geometry policy %q", s)
	}
}

// LayoutConfig holds options for building layout records
type LayoutConfig struct {
	MissingGeometry GeometryPolicy // What to do with words lacking geometry
	NormalizeText   bool           // Apply Unicode NFC to word text
	Pages           []int          // Only keep words on these pages (empty = all)
	LogWarnings     bool           // Whether to report skipped words
	Logger          io.Writer      // Destination for warnings (nil = stderr)
}

// DefaultLayoutConfig returns a config with sensible defaults
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		MissingGeometry: GeometrySkip,
		NormalizeText:   false,
		LogWarnings:     false,
		Logger:          nil, // stderr
	}
}

// LayoutStats reports what BuildLayoutRecord left out
type LayoutStats struct {
	Words        int // WORD blocks seen
	SkippedWords int // WORD blocks dropped for missing geometry
}

// NormalizeBox converts a page-fraction bounding box into [x0, y0, x1, y1] on a
// 0-1000 grid. Values are truncated toward zero and are not clamped.
func NormalizeBox(box BoundingBox) [4]int {
	return [4]int{
		int(box.Left * BoxScale),
		int(box.Top * BoxScale),
		int((box.Left + box.Width) * BoxScale),
		int((box.Top + box.Height) * BoxScale),
	}
}

// BuildLayoutRecord collects WORD blocks in input order with their normalized boxes.
// The label is passed through unchanged.
func BuildLayoutRecord(blocks []Block, label string, cfg LayoutConfig) (*LayoutRecord, error) {
	rec, _, err := BuildLayoutRecordStats(blocks, label, cfg)
	return rec, err
}

// BuildLayoutRecordStats is BuildLayoutRecord that also reports skipped words
func BuildLayoutRecordStats(blocks []Block, label string, cfg LayoutConfig) (*LayoutRecord, LayoutStats, error) {
	var stats LayoutStats
	rec := &LayoutRecord{
		Words: []string{},
		Boxes: [][4]int{},
		Label: label,
	}

	pages := make(map[int]bool, len(cfg.Pages))
	for _, p := range cfg.Pages {
		pages[p] = true
	}

	for i := range blocks {
		b := &blocks[i]
		if b.BlockType != BlockTypeWord {
			continue
		}
		if len(pages) > 0 && !pages[b.Page] {
			continue
		}
		stats.Words++

		box := b.BoundingBox()
		if box == nil {
			if cfg.MissingGeometry == GeometryReject {
				return nil, stats, fmt.Errorf("%w: block %s", ErrGeometryMissing, b.ID)
			}
			stats.SkippedWords++
			continue
		}

		text := b.Text
		if cfg.NormalizeText {
			text = norm.NFC.String(text)
		}

		rec.Words = append(rec.Words, text)
		rec.Boxes = append(rec.Boxes, NormalizeBox(*box))
	}

	if cfg.LogWarnings && stats.SkippedWords > 0 {
		fmt.Fprintf(logger(cfg.Logger), "Warning: skipped %d of %d words without geometry\n",
			stats.SkippedWords, stats.Words)
	}

	return rec, stats, nil
}

// logger returns w, defaulting to os.Stderr if nil
func logger(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}
