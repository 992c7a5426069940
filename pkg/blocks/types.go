package blocks

// BlockType is the Textract block type tag
type BlockType string

const (
	BlockTypePage             BlockType = "PAGE"
	BlockTypeLine             BlockType = "LINE"
	BlockTypeWord             BlockType = "WORD"
	BlockTypeKeyValueSet      BlockType = "KEY_VALUE_SET"
	BlockTypeSelectionElement BlockType = "SELECTION_ELEMENT"
	BlockTypeTable            BlockType = "TABLE"
	BlockTypeCell             BlockType = "CELL"
	BlockTypeMergedCell       BlockType = "MERGED_CELL"
)

// EntityType marks the role of a KEY_VALUE_SET or CELL block
type EntityType string

const (
	EntityTypeKey          EntityType = "KEY"
	EntityTypeValue        EntityType = "VALUE"
	EntityTypeColumnHeader EntityType = "COLUMN_HEADER"
)

// RelationshipType is the type of an edge between blocks
type RelationshipType string

const (
	RelationshipChild      RelationshipType = "CHILD"
	RelationshipValue      RelationshipType = "VALUE"
	RelationshipMergedCell RelationshipType = "MERGED_CELL"
)

// SelectionStatus is the state of a SELECTION_ELEMENT block
type SelectionStatus string

const (
	Selected    SelectionStatus = "SELECTED"
	NotSelected SelectionStatus = "NOT_SELECTED"
)

// Block is one node of the document graph.
// Field names and nesting follow the Textract response exactly.
type Block struct {
	ID              string          `json:"Id"`
	BlockType       BlockType       `json:"BlockType"`
	Text            string          `json:"Text,omitempty"`
	TextType        string          `json:"TextType,omitempty"`
	EntityTypes     []EntityType    `json:"EntityTypes,omitempty"`
	SelectionStatus SelectionStatus `json:"SelectionStatus,omitempty"`
	Confidence      float64         `json:"Confidence,omitempty"`
	Page            int             `json:"Page,omitempty"`
	RowIndex        int             `json:"RowIndex,omitempty"`    // CELL only, 1-based
	ColumnIndex     int             `json:"ColumnIndex,omitempty"` // CELL only, 1-based
	RowSpan         int             `json:"RowSpan,omitempty"`
	ColumnSpan      int             `json:"ColumnSpan,omitempty"`
	Geometry        *Geometry       `json:"Geometry,omitempty"`
	Relationships   []Relationship  `json:"Relationships,omitempty"`
}

// Geometry locates a block on its page
type Geometry struct {
	BoundingBox *BoundingBox `json:"BoundingBox,omitempty"`
	Polygon     []Point      `json:"Polygon,omitempty"`
}

// BoundingBox is a rectangle in page fractions (0-1)
type BoundingBox struct {
	Left   float64 `json:"Left"`
	Top    float64 `json:"Top"`
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
}

// Point is a polygon vertex in page fractions
type Point struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

// Relationship is a typed edge from a block to a list of block ids
type Relationship struct {
	Type RelationshipType `json:"Type"`
	Ids  []string         `json:"Ids"`
}

// HasEntityType reports whether t is listed in the block's EntityTypes
func (b *Block) HasEntityType(t EntityType) bool {
	for _, et := range b.EntityTypes {
		if et == t {
			return true
		}
	}
	return false
}

// BoundingBox returns the block's bounding box, or nil when the block has no geometry
func (b *Block) BoundingBox() *BoundingBox {
	if b.Geometry == nil {
		return nil
	}
	return b.Geometry.BoundingBox
}

// Role is the form role of a KEY_VALUE_SET block
type Role int

const (
	RoleNone Role = iota
	RoleKey
	RoleValue
)

// Role classifies a KEY_VALUE_SET block as a key or a value.
// A block carrying both or neither entity type has no role.
func (b *Block) Role() Role {
	if b.BlockType != BlockTypeKeyValueSet {
		return RoleNone
	}
	isKey := b.HasEntityType(EntityTypeKey)
	isValue := b.HasEntityType(EntityTypeValue)
	switch {
	case isKey && !isValue:
		return RoleKey
	case isValue && !isKey:
		return RoleValue
	default:
		return RoleNone
	}
}
