package hocr

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/hocr.tmpl
var templateFS embed.FS

var hocrTemplate = template.Must(template.New("hocr.tmpl").Funcs(template.FuncMap{
	"bbox": func(b BoundingBox) string {
		return fmt.Sprintf("bbox %d %d %d %d", int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
	},
	"conf": func(c float64) string { return fmt.Sprintf("x_wconf %d", int(c+0.5)) },
	// ppageno is 0-based
	"ppageno": func(n int) int { return max(n-1, 0) },
}).ParseFS(templateFS, "templates/hocr.tmpl"))

// Generate renders doc as a complete hOCR HTML document
func Generate(doc *HOCR) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("nil hOCR document")
	}
	var buf bytes.Buffer
	if err := hocrTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("error rendering hOCR template: %w", err)
	}
	return buf.String(), nil
}
