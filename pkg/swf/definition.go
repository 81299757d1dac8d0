package swf

import "github.com/halfdome/swfkit/pkg/swf/record"

// CharacterID is the numeric key a definition is addressed by within one
// file.
type CharacterID uint16

// Definition is any character stored in the dictionary: shape, sprite,
// bitmap, morph shape, or an opaque definition we retained without decoding.
type Definition interface {
	CharacterID() CharacterID
	Kind() string
}

// ShapeDef is a DefineShape/2/3/4 character.
type ShapeDef struct {
	ID      CharacterID
	Version int // 1..4
	Bounds  record.Rect
	Groups  []record.StyleGroup
}

func (s *ShapeDef) CharacterID() CharacterID { return s.ID }
func (s *ShapeDef) Kind() string             { return "shape" }

// Shape returns the drawable form of the definition.
func (s *ShapeDef) Shape() *record.Shape {
	return &record.Shape{Bounds: s.Bounds, Groups: s.Groups}
}

// MorphShapeDef is a DefineMorphShape/2 character. Only the ratio-0 start
// shape is decoded into drawable form; the end edge stream is retained raw.
type MorphShapeDef struct {
	ID          CharacterID
	Version     int // 1 or 2
	StartBounds record.Rect
	EndBounds   record.Rect
	Groups      []record.StyleGroup // start shape with start-side styles
	EndEdges    []byte
}

func (m *MorphShapeDef) CharacterID() CharacterID { return m.ID }
func (m *MorphShapeDef) Kind() string             { return "morphshape" }

// StartShape returns the ratio-0 shape in drawable form.
func (m *MorphShapeDef) StartShape() *record.Shape {
	return &record.Shape{Bounds: m.StartBounds, Groups: m.Groups}
}

// SpriteDef is a DefineSprite character: a nested timeline with its own
// ordered tag list.
type SpriteDef struct {
	ID         CharacterID
	FrameCount uint16
	Tags       []Tag
}

func (s *SpriteDef) CharacterID() CharacterID { return s.ID }
func (s *SpriteDef) Kind() string             { return "sprite" }

// BitmapFormat distinguishes the bitmap definition variants.
type BitmapFormat uint8

const (
	BitmapJPEG     BitmapFormat = iota // DefineBits / DefineBitsJPEG2
	BitmapJPEG3                        // JPEG with separate alpha plane
	BitmapLossless                     // DefineBitsLossless/2, zlib pixel data
)

func (f BitmapFormat) String() string {
	switch f {
	case BitmapJPEG:
		return "jpeg"
	case BitmapJPEG3:
		return "jpeg3"
	case BitmapLossless:
		return "lossless"
	}
	return "unknown"
}

// BitmapDef is a bitmap character. Pixel data is retained raw; codec
// conversion happens outside the core (see the export layer). Width and
// Height are zero when the variant does not declare them in the tag itself.
type BitmapDef struct {
	ID     CharacterID
	Format BitmapFormat
	Width  int
	Height int
	// LosslessFormat is the DefineBitsLossless pixel format byte
	// (3 = 8-bit palettized, 4 = 15-bit, 5 = 24/32-bit).
	LosslessFormat uint8
	Data           []byte
	AlphaData      []byte // JPEG3 alpha plane, zlib-compressed
}

func (b *BitmapDef) CharacterID() CharacterID { return b.ID }
func (b *BitmapDef) Kind() string             { return "bitmap" }

// RawDef retains a definition tag the dispatcher has no decoder for, so the
// id still resolves and a census can report it.
type RawDef struct {
	ID  CharacterID
	Tag Tag
}

func (r *RawDef) CharacterID() CharacterID { return r.ID }
func (r *RawDef) Kind() string             { return "raw" }
