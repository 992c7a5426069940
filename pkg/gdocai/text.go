package gdocai

import (
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

// textFromLayout extracts text from a layout's text anchor segments
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText []rune) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	result := strings.Builder{}
	totalRunes := len(fullText)

	for _, seg := range layout.TextAnchor.TextSegments {
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > totalRunes {
			end = totalRunes
		}
		if start > end {
			start = end
		}
		result.WriteString(string(fullText[start:end]))
	}
	return result.String()
}

// cleanToken trims a token's text and flattens embedded line breaks
func cleanToken(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", " ")
}

// span is the first text segment of a layout
type span struct {
	start, end int64
	ok         bool
}

func spanOf(layout *documentaipb.Document_Page_Layout) span {
	segs := layout.GetTextAnchor().GetTextSegments()
	if len(segs) == 0 {
		return span{}
	}
	return span{start: segs[0].GetStartIndex(), end: segs[0].GetEndIndex(), ok: true}
}

// within reports whether a child's first segment lies inside any of the parent's segments
func within(child span, parent *documentaipb.Document_Page_Layout) bool {
	if !child.ok {
		return false
	}
	for _, seg := range parent.GetTextAnchor().GetTextSegments() {
		if child.start >= seg.GetStartIndex() && child.end <= seg.GetEndIndex() {
			return true
		}
	}
	return false
}
