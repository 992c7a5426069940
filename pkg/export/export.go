// Package export writes the derived document views to the file formats their
// consumers read.
//
// - Layout records as JSON Lines for the classifier training and inference tooling
// - Form fields as a flat JSON object for review and form-filling tools
// - Tables as CSV, TSV, Markdown or HTML for spreadsheet and reporting tooling
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ToJSON converts various types to a pretty-printed JSON string
// It handles both protocol buffer messages and regular Go structs
func ToJSON(data interface{}) (string, error) {
	switch v := data.(type) {
	case proto.Message:
		// For protocol buffer messages, use protojson
		jsonData, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(jsonData), nil

	default:
		jsonData, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(jsonData), nil
	}
}

// WriteFields writes a field map as a pretty-printed JSON object
func WriteFields(w io.Writer, fields interface{}) error {
	out, err := ToJSON(fields)
	if err != nil {
		return fmt.Errorf("failed to convert fields to JSON: %w", err)
	}
	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return fmt.Errorf("failed to write fields: %w", err)
	}
	return nil
}
