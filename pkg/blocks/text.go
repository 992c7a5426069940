package blocks

import "strings"

// SelectedMark is the token a selected checkbox contributes to assembled text
const SelectedMark = "X"

// Text assembles the text reachable from b's CHILD edges.
// WORD children contribute their text, SELECTED selection elements contribute
// SelectedMark, and everything else (including unresolved ids) contributes nothing.
func (x *Index) Text(b *Block) string {
	if b == nil {
		return ""
	}

	var parts []string
	for _, child := range x.children(b, RelationshipChild) {
		switch child.BlockType {
		case BlockTypeWord:
			parts = append(parts, child.Text)
		case BlockTypeSelectionElement:
			if child.SelectionStatus == Selected {
				parts = append(parts, SelectedMark)
			}
		}
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}
