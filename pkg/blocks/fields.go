package blocks

import (
	"fmt"
	"strings"
)

// FieldPair is one resolved form field
type FieldPair struct {
	KeyID      string  `json:"key_id"`
	ValueID    string  `json:"value_id,omitempty"`
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	Page       int     `json:"page,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// DuplicatePolicy decides what happens when two key blocks resolve to the same key text
type DuplicatePolicy string

const (
	// DuplicateOverwrite keeps the value of the last key block processed
	DuplicateOverwrite DuplicatePolicy = "overwrite"
	// DuplicateCollect keeps every value, turning repeated keys into []string
	DuplicateCollect DuplicatePolicy = "collect"
	// DuplicateError fails on the first repeated key
	DuplicateError DuplicatePolicy = "error"
)

// ParseDuplicatePolicy maps a configuration string to a policy; empty means overwrite
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DuplicateOverwrite, nil
	case "collect_list":
		return DuplicateCollect, nil
	case DuplicateOverwrite, DuplicateCollect, DuplicateError:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate key policy %q", s)
	}
}

// FieldPairs resolves every KEY block, in key order, to its key and value text.
// Keys with no text are skipped. A key's value is the first id, across its VALUE
// relationships in order, that resolves to a VALUE block; otherwise it is empty.
func (x *Index) FieldPairs() []FieldPair {
	pairs := make([]FieldPair, 0, len(x.keyBlocks))

	for _, keyBlock := range x.keyBlocks {
		key := x.Text(keyBlock)
		if key == "" {
			continue
		}

		pair := FieldPair{
			KeyID:      keyBlock.ID,
			Key:        key,
			Page:       keyBlock.Page,
			Confidence: keyBlock.Confidence,
		}
		if valueBlock := x.valueFor(keyBlock); valueBlock != nil {
			pair.ValueID = valueBlock.ID
			pair.Value = x.Text(valueBlock)
		}

		pairs = append(pairs, pair)
	}

	return pairs
}

func (x *Index) valueFor(keyBlock *Block) *Block {
	for _, rel := range keyBlock.Relationships {
		if rel.Type != RelationshipValue {
			continue
		}
		for _, id := range rel.Ids {
			if v, ok := x.values[id]; ok {
				return v
			}
		}
	}
	return nil
}

// KeyValues returns the key text to value text mapping.
// Repeated key texts keep the value of the last key block.
func (x *Index) KeyValues() map[string]string {
	fields := make(map[string]string)
	for _, pair := range x.FieldPairs() {
		fields[pair.Key] = pair.Value
	}
	return fields
}

// FormFields returns the field map under an explicit duplicate key policy.
// Values are strings, except under DuplicateCollect where a repeated key
// holds a []string of every value in key order.
func (x *Index) FormFields(policy DuplicatePolicy) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	for _, pair := range x.FieldPairs() {
		existing, exists := fields[pair.Key]
		if !exists {
			fields[pair.Key] = pair.Value
			continue
		}

		switch policy {
		case DuplicateCollect:
			switch v := existing.(type) {
			case string:
				fields[pair.Key] = []string{v, pair.Value}
			case []string:
				fields[pair.Key] = append(v, pair.Value)
			}
		case DuplicateError:
			return nil, fmt.Errorf("%w: %q (block %s)", ErrDuplicateKey, pair.Key, pair.KeyID)
		default:
			fields[pair.Key] = pair.Value
		}
	}

	return fields, nil
}
