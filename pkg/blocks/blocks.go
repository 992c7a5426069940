// Package blocks resolves Textract-shaped block graphs into derived document views.
//
// A Textract document analysis response is a flat list of typed blocks
// (PAGE, LINE, WORD, KEY_VALUE_SET, SELECTION_ELEMENT, TABLE, CELL) linked by
// CHILD and VALUE relationship edges. This package indexes that list by id and
// derives three views from it:
//
// - A key/value field map from KEY and VALUE blocks
// - A layout record (words, 0-1000 boxes, label) for layout-aware classifiers
// - Row/column tables from TABLE and CELL blocks
//
// Relationship ids that do not resolve to a block are treated as absent. The
// only hard failure is input that is not block-shaped at the top level, which
// is reported as ErrMalformedInput.
//
// Main Functions:
//
// - Decode / NormalizeInput: Parse a Textract response or a bare block array
// - NewIndex: Build the id lookup and role classification
// - Index.Text: Assemble the text reachable from a block's CHILD edges
// - Index.KeyValues / Index.FormFields: Resolve form fields
// - BuildLayoutRecord: Build the classifier input record
// - Index.Tables: Group cells into rectangular tables
package blocks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrMalformedInput is returned when the top-level document is not a list of block objects
	ErrMalformedInput = errors.New("malformed input")
	// ErrGeometryMissing is returned under GeometryReject when a WORD block has no bounding box
	ErrGeometryMissing = errors.New("word block has no geometry")
	// ErrDuplicateKey is returned under DuplicateError when two keys resolve to the same text
	ErrDuplicateKey = errors.New("duplicate form key")
)

// response is the subset of a Textract AnalyzeDocument response we read
type response struct {
	Blocks *json.RawMessage `json:"Blocks"`
}

// NormalizeInput accepts either a Textract response object with a Blocks field
// or a bare array of blocks, and returns the decoded block list.
func NormalizeInput(raw json.RawMessage) ([]Block, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedInput)
	}

	var list json.RawMessage
	switch trimmed[0] {
	case '[':
		list = trimmed
	case '{':
		var resp response
		if err := json.Unmarshal(trimmed, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		if resp.Blocks == nil {
			return nil, fmt.Errorf("%w: missing Blocks field", ErrMalformedInput)
		}
		list = bytes.TrimSpace(*resp.Blocks)
		if len(list) == 0 || list[0] != '[' {
			return nil, fmt.Errorf("%w: Blocks is not an array", ErrMalformedInput)
		}
	default:
		return nil, fmt.Errorf("%w: top level must be an object or an array", ErrMalformedInput)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(list, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%w: empty block list", ErrMalformedInput)
	}

	result := make([]Block, 0, len(elems))
	for i, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return nil, fmt.Errorf("%w: block %d is not an object", ErrMalformedInput, i)
		}
		var b Block
		if err := json.Unmarshal(elem, &b); err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrMalformedInput, i, err)
		}
		result = append(result, b)
	}
	return result, nil
}

// Decode reads a whole Textract document from r
func Decode(r io.Reader) ([]Block, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return NormalizeInput(data)
}

// DecodeFile reads a Textract document from disk
func DecodeFile(path string) ([]Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	blocks, err := NormalizeInput(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return blocks, nil
}
