// Package gdocai turns Google Document AI output into Textract-shaped blocks.
//
// Document AI describes a page as tokens, lines, form fields and tables that
// point into the document text through text anchors. This package sends
// documents to a Document AI processor and converts the response into the
// id-linked block list the blocks package resolves, so fields, layout records
// and tables come out the same way regardless of which OCR provider produced them.
//
// Main Functions:
//
// - ProcessDocument: Sends a document to Google Document AI for processing
// - BlocksFromProto: Converts a Document AI response into blocks
// - Blocks: Processes a document and returns its blocks
// - LoadJSON: Reads a saved Document AI response
//
// Usage Requirements:
//
// - Google Cloud project with Document AI API enabled
// - A Form Parser processor for form fields and tables (OCR processors yield words and lines only)
// - Authentication via GOOGLE_APPLICATION_CREDENTIALS environment variable
package gdocai

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/gardar/blockgraph/pkg/blocks"
)

// Blocks processes a document with Document AI and returns its blocks
// along with the raw response.
func Blocks(ctx context.Context, content []byte, cfg *Config) ([]blocks.Block, *documentaipb.Document, error) {
	rawDoc, err := ProcessDocument(ctx, content, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to process document: %w", err)
	}

	result := BlocksFromProto(rawDoc)
	if len(result) == 0 {
		return nil, rawDoc, fmt.Errorf("%w: document AI returned no pages", blocks.ErrMalformedInput)
	}
	return result, rawDoc, nil
}

// LoadJSON reads a Document AI response saved as JSON
func LoadJSON(path string) (*documentaipb.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseJSON(data)
}

// ParseJSON decodes a Document AI response from its JSON form
func ParseJSON(data []byte) (*documentaipb.Document, error) {
	var doc documentaipb.Document
	if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", blocks.ErrMalformedInput, err)
	}
	return &doc, nil
}
