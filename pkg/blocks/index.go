package blocks

// Index is an id lookup over an immutable block list plus the role
// classification the resolvers need. It is safe for concurrent readers.
type Index struct {
	byID      map[string]*Block
	words     []*Block
	keyBlocks []*Block
	values    map[string]*Block
	tables    []*Block
}

// NewIndex builds the lookup for a block list.
// Colliding ids are last-write-wins; blocks without an id are classified but not addressable.
func NewIndex(blocks []Block) *Index {
	idx := &Index{
		byID:   make(map[string]*Block, len(blocks)),
		values: make(map[string]*Block),
	}

	for i := range blocks {
		b := &blocks[i]
		if b.ID != "" {
			idx.byID[b.ID] = b
			// A later block reusing the id replaces any earlier VALUE block
			delete(idx.values, b.ID)
		}

		switch b.BlockType {
		case BlockTypeWord:
			idx.words = append(idx.words, b)
		case BlockTypeTable:
			idx.tables = append(idx.tables, b)
		case BlockTypeKeyValueSet:
			switch b.Role() {
			case RoleKey:
				idx.keyBlocks = append(idx.keyBlocks, b)
			case RoleValue:
				if b.ID != "" {
					idx.values[b.ID] = b
				}
			}
		}
	}

	return idx
}

// Block resolves an id. Dangling ids report false.
func (x *Index) Block(id string) (*Block, bool) {
	b, ok := x.byID[id]
	return b, ok
}

// ValueBlock resolves an id among VALUE blocks only
func (x *Index) ValueBlock(id string) (*Block, bool) {
	b, ok := x.values[id]
	return b, ok
}

// Words returns the WORD blocks in input order
func (x *Index) Words() []*Block { return x.words }

// KeyBlocks returns the KEY blocks in input order
func (x *Index) KeyBlocks() []*Block { return x.keyBlocks }

// TableBlocks returns the TABLE blocks in input order
func (x *Index) TableBlocks() []*Block { return x.tables }

// Len is the number of addressable blocks
func (x *Index) Len() int { return len(x.byID) }

// children resolves the ids of every relationship of type t on b, in order,
// skipping ids that do not resolve
func (x *Index) children(b *Block, t RelationshipType) []*Block {
	var result []*Block
	for _, rel := range b.Relationships {
		if rel.Type != t {
			continue
		}
		for _, id := range rel.Ids {
			if child, ok := x.byID[id]; ok {
				result = append(result, child)
			}
		}
	}
	return result
}
