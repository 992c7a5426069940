package blocks

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wordAt(id, text string, left, top, width, height float64) Block {
	b := word(id, text)
	b.Geometry = &Geometry{BoundingBox: &BoundingBox{Left: left, Top: top, Width: width, Height: height}}
	return b
}

func TestNormalizeBox(t *testing.T) {
	got := NormalizeBox(BoundingBox{Left: 0.1, Top: 0.2, Width: 0.3, Height: 0.05})
	assert.Equal(t, [4]int{100, 200, 400, 250}, got)
}

func TestNormalizeBoxTruncates(t *testing.T) {
	got := NormalizeBox(BoundingBox{Left: 0.12345, Top: 0.9999, Width: 0.00001, Height: 0.00009})
	assert.Equal(t, [4]int{123, 999, 123, 999}, got)
}

func TestNormalizeBoxOutOfRangePassesThrough(t *testing.T) {
	got := NormalizeBox(BoundingBox{Left: 0.9, Top: 0.5, Width: 0.2, Height: 0.6})
	assert.Equal(t, 1100, got[2])
	assert.Equal(t, 1100, got[3])
}

func TestNormalizeBoxBounds(t *testing.T) {
	steps := []float64{0, 0.001, 0.1, 0.25, 0.333, 0.5, 0.75, 0.999, 1}
	for _, left := range steps {
		for _, width := range steps {
			if left+width > 1 {
				continue
			}
			box := NormalizeBox(BoundingBox{Left: left, Top: width, Width: width, Height: left})
			assert.True(t, 0 <= box[0] && box[0] <= box[2] && box[2] <= BoxScale, "x %v", box)
			assert.True(t, 0 <= box[1] && box[1] <= box[3] && box[3] <= BoxScale, "y %v", box)
		}
	}
}

func TestBuildLayoutRecord(t *testing.T) {
	blocks := []Block{
		{ID: "p", BlockType: BlockTypePage},
		wordAt("w1", "Invoice", 0.1, 0.2, 0.3, 0.05),
		{ID: "l", BlockType: BlockTypeLine, Text: "Invoice 42"},
		wordAt("w2", "42", 0.5, 0.2, 0.1, 0.05),
	}

	rec, err := BuildLayoutRecord(blocks, "Invoice", DefaultLayoutConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"Invoice", "42"}, rec.Words)
	assert.Equal(t, [][4]int{{100, 200, 400, 250}, {500, 200, 600, 250}}, rec.Boxes)
	assert.Equal(t, "Invoice", rec.Label)
}

func TestBuildLayoutRecordLabelPassthrough(t *testing.T) {
	rec, err := BuildLayoutRecord(nil, "not-a-known-label", DefaultLayoutConfig())
	require.NoError(t, err)
	assert.Equal(t, "not-a-known-label", rec.Label)
	assert.NotNil(t, rec.Words)
	assert.NotNil(t, rec.Boxes)
}

func TestBuildLayoutRecordMissingGeometry(t *testing.T) {
	blocks := []Block{
		wordAt("w1", "a", 0.1, 0.1, 0.1, 0.1),
		word("w2", "b"),
		{ID: "w3", BlockType: BlockTypeWord, Text: "c", Geometry: &Geometry{}},
		wordAt("w4", "d", 0.2, 0.2, 0.1, 0.1),
	}

	t.Run("skip keeps arrays parallel", func(t *testing.T) {
		var log bytes.Buffer
		cfg := DefaultLayoutConfig()
		cfg.LogWarnings = true
		cfg.Logger = &log

		rec, stats, err := BuildLayoutRecordStats(blocks, "Other", cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "d"}, rec.Words)
		assert.Len(t, rec.Boxes, len(rec.Words))
		assert.Equal(t, LayoutStats{Words: 4, SkippedWords: 2}, stats)
		assert.Contains(t, log.String(), "skipped 2 of 4 words")
	})

	t.Run("reject", func(t *testing.T) {
		cfg := DefaultLayoutConfig()
		cfg.MissingGeometry = GeometryReject

		_, err := BuildLayoutRecord(blocks, "Other", cfg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrGeometryMissing))
		assert.Contains(t, err.Error(), "w2")
	})
}

func TestBuildLayoutRecordPagesAndNormalization(t *testing.T) {
	decomposed := "Cafe\u0301"
	blocks := []Block{
		wordAt("w1", decomposed, 0.1, 0.1, 0.1, 0.1),
		wordAt("w2", "page2", 0.1, 0.1, 0.1, 0.1),
	}
	blocks[0].Page = 1
	blocks[1].Page = 2

	cfg := DefaultLayoutConfig()
	cfg.NormalizeText = true
	cfg.Pages = []int{1}

	rec, err := BuildLayoutRecord(blocks, "Other", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Caf\u00e9"}, rec.Words)
	assert.Len(t, rec.Boxes, 1)
}

func TestParseGeometryPolicy(t *testing.T) {
	p, err := ParseGeometryPolicy("")
	require.NoError(t, err)
	assert.Equal(t, GeometrySkip, p)

	p, err = ParseGeometryPolicy("Reject")
	require.NoError(t, err)
	assert.Equal(t, GeometryReject, p)

	_, err = ParseGeometryPolicy("drop-box")
	assert.Error(t, err)
}
