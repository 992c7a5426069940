package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gardar/blockgraph/pkg/blocks"
)

// TrainFileName is the file WriteLayoutFile writes inside its output directory
const TrainFileName = "train.jsonl"

// WriteLayoutJSONL writes one JSON object per record, one record per line
func WriteLayoutJSONL(w io.Writer, records ...*blocks.LayoutRecord) error {
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if rec == nil {
			continue
		}
		if len(rec.Words) != len(rec.Boxes) {
			return fmt.Errorf("record %d has %d words but %d boxes", i, len(rec.Words), len(rec.Boxes))
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}
	return nil
}

// WriteLayoutFile writes records to train.jsonl in dir, creating dir if needed.
// With appendMode the records are added to an existing file instead of replacing it.
func WriteLayoutFile(dir string, appendMode bool, records ...*blocks.LayoutRecord) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, TrainFileName)
	if err := WriteLayoutPath(path, appendMode, records...); err != nil {
		return "", err
	}
	return path, nil
}

// WriteLayoutPath writes records as JSON Lines to the file at path
func WriteLayoutPath(path string, appendMode bool, records ...*blocks.LayoutRecord) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return err
	}

	if err := WriteLayoutJSONL(f, records...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadLayoutJSONL reads records written by WriteLayoutJSONL
func ReadLayoutJSONL(r io.Reader) ([]*blocks.LayoutRecord, error) {
	var records []*blocks.LayoutRecord
	dec := json.NewDecoder(r)
	for dec.More() {
		var rec blocks.LayoutRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", len(records), err)
		}
		records = append(records, &rec)
	}
	return records, nil
}
