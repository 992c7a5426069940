package hocr

import (
	"fmt"
	"sort"

	"github.com/gardar/blockgraph/pkg/blocks"
)

// ToBlocks converts parsed hOCR into PAGE, LINE and WORD blocks.
// Pixel boxes are normalized by the page box so geometry lands in the
// 0-1 range Textract uses. Pages without a usable box fall back to the
// union of their word boxes; words on a page with no extent get no geometry.
func ToBlocks(doc *HOCR) []blocks.Block {
	if doc == nil {
		return nil
	}
	var out []blocks.Block
	for i, page := range doc.Pages {
		pageNum := page.PageNumber
		if pageNum == 0 {
			pageNum = i + 1
		}
		out = append(out, pageBlocks(page, pageNum)...)
	}
	return out
}

func pageBlocks(page Page, pageNum int) []blocks.Block {
	frame := page.BBox
	if frame.Empty() {
		for _, l := range page.Lines {
			frame = frame.Union(l.BBox)
			for _, w := range l.Words {
				frame = frame.Union(w.BBox)
			}
		}
	}

	pageBlock := blocks.Block{
		ID:        fmt.Sprintf("p%d-page", pageNum),
		BlockType: blocks.BlockTypePage,
		Page:      pageNum,
		Geometry:  normalize(frame, frame),
	}
	out := []blocks.Block{pageBlock}

	var lineIDs []string
	for lidx, line := range page.Lines {
		lineID := fmt.Sprintf("p%d-line-%d", pageNum, lidx)
		lineIDs = append(lineIDs, lineID)

		var wordIDs []string
		var words []blocks.Block
		var confSum float64
		for widx, w := range line.Words {
			if w.Text == "" {
				continue
			}
			id := fmt.Sprintf("p%d-word-%d-%d", pageNum, lidx, widx)
			wordIDs = append(wordIDs, id)
			confSum += w.Confidence
			words = append(words, blocks.Block{
				ID:         id,
				BlockType:  blocks.BlockTypeWord,
				Text:       w.Text,
				Confidence: w.Confidence,
				Page:       pageNum,
				Geometry:   normalize(w.BBox, frame),
			})
		}

		lb := blocks.Block{
			ID:        lineID,
			BlockType: blocks.BlockTypeLine,
			Page:      pageNum,
			Geometry:  normalize(line.BBox, frame),
		}
		if len(wordIDs) > 0 {
			lb.Confidence = confSum / float64(len(wordIDs))
			lb.Relationships = []blocks.Relationship{{Type: blocks.RelationshipChild, Ids: wordIDs}}
		}
		out = append(out, lb)
		out = append(out, words...)
	}
	if len(lineIDs) > 0 {
		out[0].Relationships = []blocks.Relationship{{Type: blocks.RelationshipChild, Ids: lineIDs}}
	}
	return out
}

// normalize maps a pixel box into frame-relative 0-1 coordinates
func normalize(b, frame BoundingBox) *blocks.Geometry {
	if b.Empty() || frame.Empty() {
		return nil
	}
	fw, fh := frame.Width(), frame.Height()
	return &blocks.Geometry{BoundingBox: &blocks.BoundingBox{
		Left:   (b.X1 - frame.X1) / fw,
		Top:    (b.Y1 - frame.Y1) / fh,
		Width:  b.Width() / fw,
		Height: b.Height() / fh,
	}}
}

// FromBlocks builds an hOCR document from blocks, scaling normalized
// geometry to a width x height pixel page. Pages follow the blocks' page
// numbers; words not reached from any LINE are gathered into a trailing line.
func FromBlocks(bs []blocks.Block, width, height float64) *HOCR {
	idx := blocks.NewIndex(bs)
	pages := make(map[int]*Page)
	used := make(map[string]bool)

	pageFor := func(n int) *Page {
		if n < 1 {
			n = 1
		}
		p, ok := pages[n]
		if !ok {
			p = &Page{
				ID:         fmt.Sprintf("page_%d", n),
				PageNumber: n,
				BBox:       BoundingBox{X2: width, Y2: height},
			}
			pages[n] = p
		}
		return p
	}

	for i := range bs {
		b := &bs[i]
		if b.BlockType != blocks.BlockTypeLine {
			continue
		}
		page := pageFor(b.Page)
		line := Line{ID: fmt.Sprintf("line_%d_%d", page.PageNumber, len(page.Lines)+1), BBox: scale(b, width, height)}
		for _, rel := range b.Relationships {
			if rel.Type != blocks.RelationshipChild {
				continue
			}
			for _, id := range rel.Ids {
				w, ok := idx.Block(id)
				if !ok || w.BlockType != blocks.BlockTypeWord {
					continue
				}
				used[id] = true
				line.Words = append(line.Words, hocrWord(w, page.PageNumber, len(line.Words)+1, line.ID, width, height))
			}
		}
		page.Lines = append(page.Lines, line)
	}

	stray := make(map[int]*Line)
	for _, w := range idx.Words() {
		if used[w.ID] {
			continue
		}
		page := pageFor(w.Page)
		l, ok := stray[page.PageNumber]
		if !ok {
			l = &Line{}
			stray[page.PageNumber] = l
		}
		word := hocrWord(w, page.PageNumber, len(l.Words)+1, "stray", width, height)
		l.Words = append(l.Words, word)
		l.BBox = l.BBox.Union(word.BBox)
	}
	for n, l := range stray {
		page := pages[n]
		l.ID = fmt.Sprintf("line_%d_%d", n, len(page.Lines)+1)
		page.Lines = append(page.Lines, *l)
	}

	numbers := make([]int, 0, len(pages))
	for n := range pages {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	doc := &HOCR{
		Title: "Document OCR",
		Metadata: map[string]string{
			"ocr-system":          "blockgraph",
			"ocr-capabilities":    "ocr_page ocr_line ocrx_word",
			"ocr-number-of-pages": fmt.Sprintf("%d", len(numbers)),
		},
	}
	for _, n := range numbers {
		doc.Pages = append(doc.Pages, *pages[n])
	}
	return doc
}

func hocrWord(b *blocks.Block, page, n int, lineID string, width, height float64) Word {
	return Word{
		ID:         fmt.Sprintf("word_%d_%s_%d", page, lineID, n),
		Text:       b.Text,
		BBox:       scale(b, width, height),
		Confidence: b.Confidence,
	}
}

func scale(b *blocks.Block, width, height float64) BoundingBox {
	bb := b.BoundingBox()
	if bb == nil {
		return BoundingBox{}
	}
	return BoundingBox{
		X1: bb.Left * width,
		Y1: bb.Top * height,
		X2: (bb.Left + bb.Width) * width,
		Y2: (bb.Top + bb.Height) * height,
	}
}
