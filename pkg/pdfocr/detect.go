package pdfocr

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Optional content group names as fpdf and most writers emit them
var ocgNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/Type\s*/OCG\s*/Name\s*\(((?:\\.|[^\\)])*)\)`),
	regexp.MustCompile(`/Name\s*\(((?:\\.|[^\\)])*)\)\s*/Type\s*/OCG`),
}

var pdfEscapes = strings.NewReplacer(`\(`, "(", `\)`, ")", `\r`, "\r", `\\`, `\`)

// LayerNames returns the distinct optional content group names in a PDF
func LayerNames(pdfData []byte) ([]string, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	utf16 := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	seen := make(map[string]bool)
	var names []string
	for _, re := range ocgNamePatterns {
		for _, m := range re.FindAllSubmatch(pdfData, -1) {
			name := pdfEscapes.Replace(string(m[1]))
			if strings.HasPrefix(name, "\xfe\xff") {
				if decoded, err := utf16.String(name); err == nil {
					name = decoded
				}
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// LayerCheck describes the text layers already present in a PDF
type LayerCheck struct {
	Layers     []string // All detected layers
	Existing   string   // A layer written under the configured name, if any
	Suspicious []string // Other layers whose names mention OCR
}

// CheckLayers looks for a text layer named layerName or "layerName (Page N)"
func CheckLayers(pdfData []byte, layerName string) (LayerCheck, error) {
	var result LayerCheck
	layers, err := LayerNames(pdfData)
	if err != nil {
		return result, fmt.Errorf("cannot analyze layers: %w", err)
	}
	result.Layers = layers

	pagePattern := regexp.MustCompile(`^` + regexp.QuoteMeta(layerName) + `\s*\(Page\s*\d+`)
	for _, layer := range layers {
		switch {
		case layer == layerName || pagePattern.MatchString(layer):
			if result.Existing == "" {
				result.Existing = layer
			}
		case strings.Contains(strings.ToLower(layer), "ocr"):
			result.Suspicious = append(result.Suspicious, layer)
		}
	}
	return result, nil
}
