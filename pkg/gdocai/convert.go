package gdocai

import (
	"fmt"
	"math"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/blockgraph/pkg/blocks"
)

// Document AI form field value types for checkboxes
const (
	filledCheckbox   = "filled_checkbox"
	unfilledCheckbox = "unfilled_checkbox"
)

// BlocksFromProto converts a Document AI response into Textract-shaped blocks.
//
// Pages become PAGE blocks, tokens become WORD blocks and lines become LINE
// blocks whose CHILD edges point at the tokens inside them. Form fields become
// a KEY and a VALUE KEY_VALUE_SET pair, with checkbox values carried as a
// SELECTION_ELEMENT child. Tables become TABLE and CELL blocks with 1-based
// row and column indices; header rows are marked COLUMN_HEADER.
func BlocksFromProto(doc *documentaipb.Document) []blocks.Block {
	if doc == nil {
		return nil
	}
	text := []rune(doc.GetText())

	var result []blocks.Block
	for i, page := range doc.GetPages() {
		pageNum := int(page.GetPageNumber())
		if pageNum == 0 {
			pageNum = i + 1
		}
		c := &pageConverter{page: page, text: text, pageNum: pageNum}
		result = append(result, c.convert()...)
	}
	return result
}

// pageConverter holds the state for converting one page
type pageConverter struct {
	page    *documentaipb.Document_Page
	text    []rune
	pageNum int

	tokenIDs   []string
	tokenSpans []span
	out        []blocks.Block
}

func (c *pageConverter) id(kind string, idx ...int) string {
	id := fmt.Sprintf("p%d-%s", c.pageNum, kind)
	for _, i := range idx {
		id += fmt.Sprintf("-%d", i)
	}
	return id
}

func (c *pageConverter) convert() []blocks.Block {
	pageBlock := blocks.Block{
		ID:        c.id("page"),
		BlockType: blocks.BlockTypePage,
		Page:      c.pageNum,
		Geometry:  geometry(c.page.GetLayout()),
	}
	c.out = append(c.out, pageBlock)

	// Tokens (words)
	for tidx, token := range c.page.GetTokens() {
		id := c.id("word", tidx)
		c.tokenIDs = append(c.tokenIDs, id)
		c.tokenSpans = append(c.tokenSpans, spanOf(token.GetLayout()))
		c.out = append(c.out, blocks.Block{
			ID:         id,
			BlockType:  blocks.BlockTypeWord,
			Text:       cleanToken(textFromLayout(token.GetLayout(), c.text)),
			Confidence: confidence(token.GetLayout()),
			Page:       c.pageNum,
			Geometry:   geometry(token.GetLayout()),
		})
	}

	// Lines
	var lineIDs []string
	for lidx, line := range c.page.GetLines() {
		id := c.id("line", lidx)
		lineIDs = append(lineIDs, id)
		c.out = append(c.out, blocks.Block{
			ID:            id,
			BlockType:     blocks.BlockTypeLine,
			Text:          cleanToken(textFromLayout(line.GetLayout(), c.text)),
			Confidence:    confidence(line.GetLayout()),
			Page:          c.pageNum,
			Geometry:      geometry(line.GetLayout()),
			Relationships: childRel(c.tokensWithin(line.GetLayout())),
		})
	}
	c.out[0].Relationships = childRel(lineIDs)

	for fidx, field := range c.page.GetFormFields() {
		c.formField(fidx, field)
	}

	for tidx, table := range c.page.GetTables() {
		c.table(tidx, table)
	}

	return c.out
}

func (c *pageConverter) formField(fidx int, field *documentaipb.Document_Page_FormField) {
	keyID := c.id("key", fidx)
	valueID := c.id("value", fidx)

	valueChildren := c.tokensWithin(field.GetFieldValue())
	var selection *blocks.Block
	switch field.GetValueType() {
	case filledCheckbox, unfilledCheckbox:
		status := blocks.NotSelected
		if field.GetValueType() == filledCheckbox {
			status = blocks.Selected
		}
		selection = &blocks.Block{
			ID:              c.id("selection", fidx),
			BlockType:       blocks.BlockTypeSelectionElement,
			SelectionStatus: status,
			Confidence:      confidence(field.GetFieldValue()),
			Page:            c.pageNum,
			Geometry:        geometry(field.GetFieldValue()),
		}
		// The checkbox replaces any glyph tokens Document AI read inside it
		valueChildren = []string{selection.ID}
	}

	c.out = append(c.out,
		blocks.Block{
			ID:          keyID,
			BlockType:   blocks.BlockTypeKeyValueSet,
			EntityTypes: []blocks.EntityType{blocks.EntityTypeKey},
			Confidence:  confidence(field.GetFieldName()),
			Page:        c.pageNum,
			Geometry:    geometry(field.GetFieldName()),
			Relationships: append(
				childRel(c.tokensWithin(field.GetFieldName())),
				blocks.Relationship{Type: blocks.RelationshipValue, Ids: []string{valueID}},
			),
		},
		blocks.Block{
			ID:            valueID,
			BlockType:     blocks.BlockTypeKeyValueSet,
			EntityTypes:   []blocks.EntityType{blocks.EntityTypeValue},
			Confidence:    confidence(field.GetFieldValue()),
			Page:          c.pageNum,
			Geometry:      geometry(field.GetFieldValue()),
			Relationships: childRel(valueChildren),
		},
	)
	if selection != nil {
		c.out = append(c.out, *selection)
	}
}

func (c *pageConverter) table(tidx int, table *documentaipb.Document_Page_Table) {
	tableID := c.id("table", tidx)

	var cellIDs []string
	var cells []blocks.Block
	occupied := make(map[[2]int]bool)

	rows := append(append([]*documentaipb.Document_Page_Table_TableRow{}, table.GetHeaderRows()...), table.GetBodyRows()...)
	headerCount := len(table.GetHeaderRows())

	for ridx, row := range rows {
		rowIndex := ridx + 1
		col := 1
		for cidx, cell := range row.GetCells() {
			// Skip slots covered by row spans from earlier rows
			for occupied[[2]int{rowIndex, col}] {
				col++
			}

			rowSpan := max(int(cell.GetRowSpan()), 1)
			colSpan := max(int(cell.GetColSpan()), 1)
			for r := rowIndex; r < rowIndex+rowSpan; r++ {
				for cc := col; cc < col+colSpan; cc++ {
					occupied[[2]int{r, cc}] = true
				}
			}

			id := c.id("cell", tidx, ridx, cidx)
			b := blocks.Block{
				ID:            id,
				BlockType:     blocks.BlockTypeCell,
				RowIndex:      rowIndex,
				ColumnIndex:   col,
				RowSpan:       rowSpan,
				ColumnSpan:    colSpan,
				Confidence:    confidence(cell.GetLayout()),
				Page:          c.pageNum,
				Geometry:      geometry(cell.GetLayout()),
				Relationships: childRel(c.tokensWithin(cell.GetLayout())),
			}
			if ridx < headerCount {
				b.EntityTypes = []blocks.EntityType{blocks.EntityTypeColumnHeader}
			}

			cellIDs = append(cellIDs, id)
			cells = append(cells, b)
			col += colSpan
		}
	}

	c.out = append(c.out, blocks.Block{
		ID:            tableID,
		BlockType:     blocks.BlockTypeTable,
		Confidence:    confidence(table.GetLayout()),
		Page:          c.pageNum,
		Geometry:      geometry(table.GetLayout()),
		Relationships: childRel(cellIDs),
	})
	c.out = append(c.out, cells...)
}

// tokensWithin returns the ids of the page tokens whose text lies inside layout
func (c *pageConverter) tokensWithin(layout *documentaipb.Document_Page_Layout) []string {
	if layout == nil {
		return nil
	}
	var ids []string
	for i, s := range c.tokenSpans {
		if within(s, layout) {
			ids = append(ids, c.tokenIDs[i])
		}
	}
	return ids
}

func childRel(ids []string) []blocks.Relationship {
	if len(ids) == 0 {
		return nil
	}
	return []blocks.Relationship{{Type: blocks.RelationshipChild, Ids: ids}}
}

// geometry converts normalized vertices (0-1) into a bounding box and polygon
func geometry(layout *documentaipb.Document_Page_Layout) *blocks.Geometry {
	vertices := layout.GetBoundingPoly().GetNormalizedVertices()
	if len(vertices) == 0 {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	polygon := make([]blocks.Point, 0, len(vertices))
	for _, v := range vertices {
		x, y := float64(v.GetX()), float64(v.GetY())
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		polygon = append(polygon, blocks.Point{X: x, Y: y})
	}

	return &blocks.Geometry{
		BoundingBox: &blocks.BoundingBox{
			Left:   minX,
			Top:    minY,
			Width:  maxX - minX,
			Height: maxY - minY,
		},
		Polygon: polygon,
	}
}

// confidence converts Document AI's 0-1 confidence to Textract's 0-100 scale
func confidence(layout *documentaipb.Document_Page_Layout) float64 {
	if layout == nil {
		return 0
	}
	return float64(layout.GetConfidence()) * 100
}
