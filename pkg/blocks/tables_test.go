package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cellBlock(id string, row, col int, words ...string) Block {
	b := Block{ID: id, BlockType: BlockTypeCell, RowIndex: row, ColumnIndex: col, RowSpan: 1, ColumnSpan: 1}
	if len(words) > 0 {
		b.Relationships = []Relationship{child(words...)}
	}
	return b
}

func header(b Block) Block {
	b.EntityTypes = []EntityType{EntityTypeColumnHeader}
	return b
}

func TestTablesGrid(t *testing.T) {
	blocks := []Block{
		{ID: "t1", BlockType: BlockTypeTable, Page: 2, Relationships: []Relationship{
			child("c11", "c12", "c21", "c22", "c31", "missing", "w1"),
		}},
		header(cellBlock("c11", 1, 1, "h1")),
		header(cellBlock("c12", 1, 2, "h2")),
		cellBlock("c21", 2, 1, "a", "b"),
		cellBlock("c22", 2, 2, "s"),
		cellBlock("c31", 3, 1),
		word("h1", "Item"),
		word("h2", "Paid"),
		word("a", "Widget"),
		word("b", "XL"),
		{ID: "s", BlockType: BlockTypeSelectionElement, SelectionStatus: Selected},
		word("w1", "stray"),
	}

	tables := NewIndex(blocks).Tables()
	require.Len(t, tables, 1)

	tbl := tables[0]
	assert.Equal(t, "t1", tbl.ID)
	assert.Equal(t, 2, tbl.Page)
	assert.Equal(t, 1, tbl.HeaderRows)
	assert.Equal(t, 2, tbl.Columns())
	assert.Equal(t, [][]string{
		{"Item", "Paid"},
		{"Widget XL", "X"},
		{"", ""},
	}, tbl.Strings())
	assert.Equal(t, "c31", tbl.Rows[2][0].ID)
	assert.Equal(t, "", tbl.Rows[2][1].ID, "uncovered slot stays empty")
}

func TestTablesOutOfOrderAndSparse(t *testing.T) {
	blocks := []Block{
		{ID: "t", BlockType: BlockTypeTable, Relationships: []Relationship{child("c23", "c11", "noindex")}},
		cellBlock("c23", 2, 3, "z"),
		cellBlock("c11", 1, 1, "a"),
		{ID: "noindex", BlockType: BlockTypeCell},
		word("z", "last"),
		word("a", "first"),
	}

	tables := NewIndex(blocks).Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{
		{"first", "", ""},
		{"", "", "last"},
	}, tables[0].Strings())
	assert.Equal(t, 0, tables[0].HeaderRows)
}

func TestTablesSpans(t *testing.T) {
	wide := cellBlock("c11", 1, 1, "h")
	wide.ColumnSpan = 2
	blocks := []Block{
		{ID: "t", BlockType: BlockTypeTable, Relationships: []Relationship{child("c11", "c21", "c22")}},
		header(wide),
		cellBlock("c21", 2, 1, "x"),
		cellBlock("c22", 2, 2, "y"),
		word("h", "Totals"),
		word("x", "1"),
		word("y", "2"),
	}

	tbl := NewIndex(blocks).Tables()[0]
	assert.Equal(t, [][]string{{"Totals", ""}, {"1", "2"}}, tbl.Strings())
	assert.True(t, tbl.Rows[0][1].Merged)
	assert.Equal(t, 1, tbl.HeaderRows)
}

func TestTablesMergedCells(t *testing.T) {
	blocks := []Block{
		{ID: "t", BlockType: BlockTypeTable, Relationships: []Relationship{
			child("c11", "c12", "c21", "c22"),
			{Type: RelationshipMergedCell, Ids: []string{"m1", "ghost"}},
		}},
		header(cellBlock("c11", 1, 1, "a")),
		header(cellBlock("c12", 1, 2, "b")),
		cellBlock("c21", 2, 1, "c"),
		cellBlock("c22", 2, 2, "d"),
		{ID: "m1", BlockType: BlockTypeMergedCell, RowIndex: 1, ColumnIndex: 1, RowSpan: 1, ColumnSpan: 2,
			Relationships: []Relationship{child("c11", "c12")}},
		word("a", "Quarterly"),
		word("b", "Report"),
		word("c", "Q1"),
		word("d", "Q2"),
	}

	tbl := NewIndex(blocks).Tables()[0]
	assert.Equal(t, [][]string{{"Quarterly Report", ""}, {"Q1", "Q2"}}, tbl.Strings())
	assert.Equal(t, "m1", tbl.Rows[0][0].ID)
	assert.True(t, tbl.Rows[0][0].IsHeader)
	assert.True(t, tbl.Rows[0][1].Merged)
	assert.Equal(t, 1, tbl.HeaderRows)
}

func TestTablesEmpty(t *testing.T) {
	blocks := []Block{
		{ID: "t", BlockType: BlockTypeTable, Relationships: []Relationship{child("gone")}},
	}
	tables := NewIndex(blocks).Tables()
	require.Len(t, tables, 1)
	assert.Empty(t, tables[0].Rows)
	assert.Equal(t, 0, tables[0].Columns())

	assert.Empty(t, NewIndex([]Block{word("w", "x")}).Tables())
}

func TestTablesFarIndicesStayCompact(t *testing.T) {
	blocks := []Block{
		{ID: "t", BlockType: BlockTypeTable, Relationships: []Relationship{child("c11", "far")}},
		cellBlock("c11", 1, 1, "a"),
		cellBlock("far", 2000, 2000, "z"),
		word("a", "first"),
		word("z", "last"),
	}

	tbl := NewIndex(blocks).Tables()[0]
	assert.Equal(t, [][]string{
		{"first", "", ""},
		{"", "", ""},
		{"", "", "last"},
	}, tbl.Strings())
	assert.Equal(t, 2000, tbl.Rows[2][2].RowIndex, "cells keep their source indices")
}

func TestTablesHugeSpanStaysCompact(t *testing.T) {
	wide := cellBlock("c11", 1, 1, "a")
	wide.RowSpan = 1 << 30
	wide.ColumnSpan = 1 << 30
	blocks := []Block{
		{ID: "t", BlockType: BlockTypeTable, Relationships: []Relationship{child("c11", "huge")}},
		wide,
		cellBlock("huge", 1<<30, 1, "z"),
		word("a", "first"),
		word("z", "ignored"),
	}

	tbl := NewIndex(blocks).Tables()[0]
	assert.Equal(t, [][]string{{"first"}}, tbl.Strings())
	assert.LessOrEqual(t, len(tbl.Rows), 2)
}
