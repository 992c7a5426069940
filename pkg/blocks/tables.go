package blocks

import (
	"slices"
	"strings"
)

// Table is a rectangular grid recovered from a TABLE block
type Table struct {
	ID         string   `json:"id"`
	Page       int      `json:"page,omitempty"`
	HeaderRows int      `json:"header_rows"` // Leading rows made of COLUMN_HEADER cells
	Rows       [][]Cell `json:"rows"`
}

// Cell is one slot of a Table grid.
// Slots no CELL block covers are empty cells with zero indices.
type Cell struct {
	ID          string `json:"id,omitempty"`
	Text        string `json:"text"`
	RowIndex    int    `json:"row_index,omitempty"`
	ColumnIndex int    `json:"column_index,omitempty"`
	RowSpan     int    `json:"row_span,omitempty"`
	ColumnSpan  int    `json:"column_span,omitempty"`
	IsHeader    bool   `json:"is_header,omitempty"`
	Merged      bool   `json:"merged,omitempty"` // Covered by a spanning cell anchored elsewhere
}

// Tables groups the CELL blocks of every TABLE block into row/column grids,
// using the cells' 1-based RowIndex and ColumnIndex. Cells without indices
// and unresolved ids are skipped. A grid dimension never exceeds twice the
// number of cells: when indices run past that, empty stretches between cells
// collapse to a single row or column.
func (x *Index) Tables() []Table {
	tables := make([]Table, 0, len(x.tables))
	for _, tb := range x.tables {
		tables = append(tables, x.table(tb))
	}
	return tables
}

func (x *Index) table(tb *Block) Table {
	t := Table{ID: tb.ID, Page: tb.Page}

	var cells []*Block
	for _, child := range x.children(tb, RelationshipChild) {
		if child.BlockType == BlockTypeCell && validPosition(child) {
			cells = append(cells, child)
		}
	}
	var merged []*Block
	for _, child := range x.children(tb, RelationshipMergedCell) {
		if child.BlockType == BlockTypeMergedCell && validPosition(child) {
			merged = append(merged, child)
		}
	}

	all := append(append([]*Block{}, cells...), merged...)
	limit := 2 * len(all)
	rows, rowSlot := gridAxis(all, limit, func(b *Block) (int, int) { return b.RowIndex, span(b.RowSpan) })
	cols, colSlot := gridAxis(all, limit, func(b *Block) (int, int) { return b.ColumnIndex, span(b.ColumnSpan) })
	if rows == 0 || cols == 0 {
		return t
	}

	t.Rows = make([][]Cell, rows)
	for r := range t.Rows {
		t.Rows[r] = make([]Cell, cols)
	}
	put := func(b *Block, c Cell) {
		place(t.Rows, c,
			rowSlot(b.RowIndex), rowSlot(b.RowIndex+c.RowSpan),
			colSlot(b.ColumnIndex), colSlot(b.ColumnIndex+c.ColumnSpan))
	}

	for _, c := range cells {
		put(c, x.cell(c, x.Text(c)))
	}

	// Merged cells replace the slots they cover with a single anchored cell
	for _, m := range merged {
		var parts []string
		isHeader := m.HasEntityType(EntityTypeColumnHeader)
		for _, child := range x.children(m, RelationshipChild) {
			if child.BlockType != BlockTypeCell {
				continue
			}
			if text := x.Text(child); text != "" {
				parts = append(parts, text)
			}
			isHeader = isHeader || child.HasEntityType(EntityTypeColumnHeader)
		}
		anchor := x.cell(m, strings.Join(parts, " "))
		anchor.IsHeader = isHeader
		put(m, anchor)
	}

	for _, row := range t.Rows {
		if !isHeaderRow(row) {
			break
		}
		t.HeaderRows++
	}

	return t
}

// maxPosition bounds row and column indices and spans so their sums cannot overflow
const maxPosition = 1 << 29

func validPosition(b *Block) bool {
	return b.RowIndex > 0 && b.ColumnIndex > 0 && b.RowIndex <= maxPosition && b.ColumnIndex <= maxPosition
}

// gridAxis sizes one grid dimension and maps a 1-based boundary coordinate to
// a 0-based slot. Coordinates are used as given while the extent stays within
// limit. Past it the axis is compacted to the distinct cell boundaries, so
// indices or spans out of proportion to the cell count cannot blow up the grid.
func gridAxis(bs []*Block, limit int, extent func(*Block) (int, int)) (int, func(int) int) {
	size := 0
	for _, b := range bs {
		start, n := extent(b)
		size = max(size, start+n-1)
	}
	if size <= limit {
		return size, func(v int) int { return v - 1 }
	}

	bounds := make([]int, 0, 2*len(bs))
	for _, b := range bs {
		start, n := extent(b)
		bounds = append(bounds, start, start+n)
	}
	slices.Sort(bounds)
	bounds = slices.Compact(bounds)
	return len(bounds) - 1, func(v int) int {
		i, _ := slices.BinarySearch(bounds, v)
		return i
	}
}

func (x *Index) cell(b *Block, text string) Cell {
	return Cell{
		ID:          b.ID,
		Text:        text,
		RowIndex:    b.RowIndex,
		ColumnIndex: b.ColumnIndex,
		RowSpan:     span(b.RowSpan),
		ColumnSpan:  span(b.ColumnSpan),
		IsHeader:    b.HasEntityType(EntityTypeColumnHeader),
	}
}

// place writes c into slot (r0, c0) and marks the rest of rows [r0, r1) and
// columns [c0, c1) as merged
func place(grid [][]Cell, c Cell, r0, r1, c0, c1 int) {
	for r := r0; r < r1; r++ {
		for col := c0; col < c1; col++ {
			if r == r0 && col == c0 {
				grid[r][col] = c
				continue
			}
			grid[r][col] = Cell{Merged: true, IsHeader: c.IsHeader}
		}
	}
}

func isHeaderRow(row []Cell) bool {
	header := false
	for _, c := range row {
		if c.ID == "" && !c.Merged {
			continue
		}
		if !c.IsHeader {
			return false
		}
		header = true
	}
	return header
}

func span(n int) int {
	return min(max(n, 1), maxPosition)
}

// Strings returns the table text as rows of strings
func (t Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = make([]string, len(row))
		for c, cell := range row {
			out[r][c] = cell.Text
		}
	}
	return out
}

// Columns is the width of the grid
func (t Table) Columns() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}
