package hocr

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/blockgraph/pkg/blocks"
)

var charsetPattern = regexp.MustCompile(`(?i)charset\s*=\s*["']?([a-z0-9_-]+)`)

// decoderFor returns the decoder for a declared single-byte charset, or nil for UTF-8
func decoderFor(data []byte) *encoding.Decoder {
	m := charsetPattern.FindSubmatch(data)
	if m == nil {
		return nil
	}
	switch strings.ToLower(string(m[1])) {
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder()
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder()
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15.NewDecoder()
	}
	return nil
}

// Parse converts raw hOCR data into a structured HOCR object.
// Lines are collected wherever they sit under a page; words outside any
// line are gathered into one synthetic line per parent element.
func Parse(data []byte) (*HOCR, error) {
	if dec := decoderFor(data); dec != nil {
		decoded, err := dec.Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode hOCR charset: %w", err)
		}
		data = decoded
	}

	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", blocks.ErrMalformedInput, err)
	}

	result := &HOCR{Metadata: make(map[string]string)}
	readHead(result, root)

	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if hasClass(n, "ocr_page") {
			result.Pages = append(result.Pages, parsePage(n, len(result.Pages)+1))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(root)

	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("%w: no ocr_page elements found in hOCR data", blocks.ErrMalformedInput)
	}
	return result, nil
}

// ParseTitle breaks down an hOCR title attribute into its components
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// ParseBoundingBox extracts the bbox property from a title string.
// It returns false when the title has no well-formed bbox.
func ParseBoundingBox(title string) (BoundingBox, bool) {
	bbox, ok := ParseTitle(title)["bbox"]
	if !ok || len(bbox) < 4 {
		return BoundingBox{}, false
	}
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(bbox[i], 64)
		if err != nil {
			return BoundingBox{}, false
		}
		v[i] = f
	}
	return BoundingBox{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, true
}

// readHead picks up title, language and ocr-* meta tags
func readHead(result *HOCR, n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "html":
			if lang := attr(n, "lang"); lang != "" {
				result.Language = lang
			} else if lang := attr(n, "xml:lang"); lang != "" {
				result.Language = lang
			}
		case "title":
			if n.FirstChild != nil {
				result.Title = strings.TrimSpace(n.FirstChild.Data)
			}
		case "meta":
			name, content := attr(n, "name"), attr(n, "content")
			if strings.HasPrefix(name, "ocr-") && content != "" {
				result.Metadata[name] = content
			}
		case "body":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		readHead(result, c)
	}
}

func parsePage(n *html.Node, position int) Page {
	page := Page{ID: attr(n, "id"), PageNumber: position}
	title := attr(n, "title")
	page.BBox, _ = ParseBoundingBox(title)
	props := ParseTitle(title)
	if image, ok := props["image"]; ok && len(image) > 0 {
		page.ImageName = strings.Trim(strings.Join(image, " "), `"`)
	}
	// ppageno is 0-based in Tesseract output
	if ppageno, ok := props["ppageno"]; ok && len(ppageno) > 0 {
		if p, err := strconv.Atoi(ppageno[0]); err == nil {
			page.PageNumber = p + 1
		}
	}

	var stray Line
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch {
		case hasClass(c, "ocr_line") || hasClass(c, "ocrx_line") ||
			hasClass(c, "ocr_header") || hasClass(c, "ocr_caption") || hasClass(c, "ocr_textfloat"):
			page.Lines = append(page.Lines, parseLine(c))
			return
		case hasClass(c, "ocrx_word"):
			w := parseWord(c)
			stray.Words = append(stray.Words, w)
			stray.BBox = stray.BBox.Union(w.BBox)
			return
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	if len(stray.Words) > 0 {
		stray.ID = fmt.Sprintf("%s_stray", page.ID)
		page.Lines = append(page.Lines, stray)
	}
	return page
}

func parseLine(n *html.Node) Line {
	line := Line{ID: attr(n, "id")}
	title := attr(n, "title")
	line.BBox, _ = ParseBoundingBox(title)
	if baseline, ok := ParseTitle(title)["baseline"]; ok {
		line.Baseline = strings.Join(baseline, " ")
	}

	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if hasClass(c, "ocrx_word") {
			line.Words = append(line.Words, parseWord(c))
			return
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return line
}

func parseWord(n *html.Node) Word {
	word := Word{ID: attr(n, "id"), Text: textContent(n)}
	title := attr(n, "title")
	word.BBox, _ = ParseBoundingBox(title)
	if conf, ok := ParseTitle(title)["x_wconf"]; ok && len(conf) > 0 {
		word.Confidence, _ = strconv.ParseFloat(conf[0], 64)
	}
	return word
}

// textContent gets all text from a node and its children
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
