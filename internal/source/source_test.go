package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/blockgraph/pkg/blocks"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func load(t *testing.T, provider, path string) ([]blocks.Block, error) {
	t.Helper()
	loader, err := New(provider, nil)
	require.NoError(t, err)
	return loader(context.Background(), path)
}

func TestTextractJSON(t *testing.T) {
	path := writeFile(t, "doc.json", `{"Blocks":[{"Id":"w1","BlockType":"WORD","Text":"Hi"}]}`)

	for _, provider := range []string{"", TextractJSON, "TEXTRACT-JSON"} {
		bs, err := load(t, provider, path)
		require.NoError(t, err, provider)
		require.Len(t, bs, 1)
		assert.Equal(t, "Hi", bs[0].Text)
	}

	_, err := load(t, TextractJSON, writeFile(t, "empty.json", `{"Blocks":[]}`))
	assert.ErrorIs(t, err, blocks.ErrMalformedInput)
}

func TestGDocAIJSON(t *testing.T) {
	path := writeFile(t, "docai.json", `{"text":"Hi","pages":[{"pageNumber":1,"tokens":[{"layout":{"textAnchor":{"textSegments":[{"endIndex":"2"}]}}}]}]}`)
	bs, err := load(t, GDocAIJSON, path)
	require.NoError(t, err)
	assert.Equal(t, "Hi", blocks.NewIndex(bs).Words()[0].Text)

	_, err = load(t, GDocAIJSON, writeFile(t, "nopages.json", `{"text":""}`))
	assert.ErrorIs(t, err, blocks.ErrMalformedInput)
}

func TestHOCR(t *testing.T) {
	path := writeFile(t, "page.hocr", `<html><body><div class="ocr_page" title="bbox 0 0 100 100">
<span class="ocr_line" title="bbox 0 0 100 10"><span class="ocrx_word" title="bbox 0 0 50 10">Hello</span></span></div></body></html>`)
	bs, err := load(t, HOCR, path)
	require.NoError(t, err)
	assert.Equal(t, "Hello", blocks.NewIndex(bs).Words()[0].Text)
}

func TestUnknownProvider(t *testing.T) {
	_, err := New("carrier-pigeon", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "textract-json")
}

func TestExtensionsAndMimeType(t *testing.T) {
	assert.Equal(t, []string{".json"}, Extensions(""))
	assert.Contains(t, Extensions(Image), ".png")
	assert.Contains(t, Extensions(Textract), ".pdf")

	assert.Equal(t, "image/png", MimeType("scan.PNG"))
	assert.Equal(t, "image/jpeg", MimeType("scan.jpeg"))
	assert.Equal(t, "application/pdf", MimeType("doc.pdf"))
	assert.Equal(t, "application/pdf", MimeType("noext"))
}
