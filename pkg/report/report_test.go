package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/blockgraph/pkg/blocks"
)

func testConfig(log *bytes.Buffer) Config {
	cfg := DefaultConfig()
	cfg.Compress = false
	cfg.Logger = log
	return cfg
}

func TestRender(t *testing.T) {
	doc := Document{
		Name:  "invoice.json",
		Label: "Invoice",
		Fields: []blocks.FieldPair{
			{Key: "Invoice No.", Value: "12345", Confidence: 97.3},
			{Key: "Customer", Value: "Café (Reykjavík)"},
		},
		Tables: []blocks.Table{{
			Page:       1,
			HeaderRows: 1,
			Rows: [][]blocks.Cell{
				{{Text: "Item"}, {Text: "Qty"}},
				{{Text: "Pen"}, {Text: "2"}},
			},
		}},
	}

	var log bytes.Buffer
	out, err := Render(testConfig(&log), doc)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	for _, want := range []string{"(Invoice No.)", "(12345)", "(97.3)", "(Label: Invoice)", "(Table 1 \\(page 1\\))", "(Item)", "(Pen)"} {
		assert.True(t, bytes.Contains(out, []byte(want)), "missing %s", want)
	}
	assert.True(t, bytes.Contains(out, []byte("(Caf\xe9 \\(Reykjav\xedk\\))")), "Latin-1 text")
	assert.Empty(t, log.String())
}

func TestRenderUnsupportedCharacters(t *testing.T) {
	var log bytes.Buffer
	doc := Document{Fields: []blocks.FieldPair{{Key: "合計", Value: "100"}}}

	out, err := Render(testConfig(&log), doc)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(out, []byte("(??)")))
	assert.Contains(t, log.String(), "1 strings had characters outside Latin-1")
}

func TestRenderManyRowsPaginates(t *testing.T) {
	var fields []blocks.FieldPair
	for i := 0; i < 200; i++ {
		fields = append(fields, blocks.FieldPair{Key: "Key", Value: strings.Repeat("long value ", 8)})
	}
	out, err := Render(testConfig(&bytes.Buffer{}), Document{Fields: fields})
	require.NoError(t, err)
	assert.Greater(t, bytes.Count(out, []byte("/Type /Page\n")), 1)
}

func TestRenderNoDocuments(t *testing.T) {
	_, err := Render(DefaultConfig())
	assert.Error(t, err)
}

func TestFromBlocks(t *testing.T) {
	bs := []blocks.Block{
		{ID: "k", BlockType: blocks.BlockTypeKeyValueSet, EntityTypes: []blocks.EntityType{blocks.EntityTypeKey},
			Relationships: []blocks.Relationship{
				{Type: blocks.RelationshipChild, Ids: []string{"w1"}},
				{Type: blocks.RelationshipValue, Ids: []string{"v"}},
			}},
		{ID: "v", BlockType: blocks.BlockTypeKeyValueSet, EntityTypes: []blocks.EntityType{blocks.EntityTypeValue},
			Relationships: []blocks.Relationship{{Type: blocks.RelationshipChild, Ids: []string{"w2"}}}},
		{ID: "w1", BlockType: blocks.BlockTypeWord, Text: "Name:"},
		{ID: "w2", BlockType: blocks.BlockTypeWord, Text: "Ada"},
	}

	doc := FromBlocks("a.json", "Form", bs)
	require.Len(t, doc.Fields, 1)
	assert.Equal(t, "Name:", doc.Fields[0].Key)
	assert.Equal(t, "Ada", doc.Fields[0].Value)
	assert.Empty(t, doc.Tables)
}
