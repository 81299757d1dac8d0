package swf

import (
	"fmt"

	"github.com/halfdome/swfkit/pkg/swf/bitio"
	"github.com/halfdome/swfkit/pkg/swf/record"
)

// PlaceObject is the decoded form of PlaceObject/2/3. Optional fields pair a
// Has flag with the value; a clear flag leaves the value meaningless.
type PlaceObject struct {
	Depth uint16
	Move  bool // mutate the existing instance at Depth instead of placing

	HasCharacter bool
	CharacterID  CharacterID

	HasMatrix bool
	Matrix    record.Matrix

	HasColorTransform bool
	ColorTransform    record.ColorTransform

	HasRatio bool
	Ratio    uint16

	HasName bool
	Name    string

	HasClipDepth bool
	ClipDepth    uint16

	HasBlendMode bool
	BlendMode    uint8

	HasFilters bool // filter list present in the tag; filters are skipped
	ClassName  string
}

// DecodePlaceObject decodes any of the three PlaceObject variants.
//
// PlaceObject2/3 prefix the body with a flag byte (two for PlaceObject3)
// whose optional fields MUST be consumed in the defined order; skipping or
// reordering one field misaligns every later field. This is the decoder the
// per-flag-combination tests in display_test.go exist for.
func DecodePlaceObject(t Tag) (*PlaceObject, error) {
	c := t.Cursor()
	switch t.Code {
	case TagPlaceObject:
		return decodePlaceObject1(c)
	case TagPlaceObject2:
		return decodePlaceObject23(c, t.Code, false)
	case TagPlaceObject3:
		return decodePlaceObject23(c, t.Code, true)
	}
	return nil, invalidf(t.Code, "not a PlaceObject tag")
}

func decodePlaceObject1(c *bitio.Cursor) (*PlaceObject, error) {
	p := &PlaceObject{HasCharacter: true, HasMatrix: true}
	id, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	p.CharacterID = CharacterID(id)
	if p.Depth, err = c.ReadU16(); err != nil {
		return nil, err
	}
	if p.Matrix, err = record.ReadMatrix(c); err != nil {
		return nil, err
	}
	// The color transform is present exactly when bytes remain.
	if c.Remaining() > 0 {
		p.HasColorTransform = true
		if p.ColorTransform, err = record.ReadColorTransform(c, false); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func decodePlaceObject23(c *bitio.Cursor, code TagCode, v3 bool) (*PlaceObject, error) {
	flags, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	const (
		flagHasClipActions    = 1 << 7
		flagHasClipDepth      = 1 << 6
		flagHasName           = 1 << 5
		flagHasRatio          = 1 << 4
		flagHasColorTransform = 1 << 3
		flagHasMatrix         = 1 << 2
		flagHasCharacter      = 1 << 1
		flagMove              = 1 << 0
	)
	var flags2 uint8
	if v3 {
		if flags2, err = c.ReadU8(); err != nil {
			return nil, err
		}
	}
	const (
		flag2OpaqueBackground = 1 << 6
		flag2HasVisible       = 1 << 5
		flag2HasImage         = 1 << 4
		flag2HasClassName     = 1 << 3
		flag2HasCacheAsBitmap = 1 << 2
		flag2HasBlendMode     = 1 << 1
		flag2HasFilterList    = 1 << 0
	)

	p := &PlaceObject{Move: flags&flagMove != 0}
	if p.Depth, err = c.ReadU16(); err != nil {
		return nil, err
	}
	if v3 && (flags2&flag2HasClassName != 0 ||
		(flags2&flag2HasImage != 0 && flags&flagHasCharacter != 0)) {
		if p.ClassName, err = c.ReadString(); err != nil {
			return nil, err
		}
	}
	if flags&flagHasCharacter != 0 {
		p.HasCharacter = true
		id, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		p.CharacterID = CharacterID(id)
	}
	if flags&flagHasMatrix != 0 {
		p.HasMatrix = true
		if p.Matrix, err = record.ReadMatrix(c); err != nil {
			return nil, err
		}
	}
	if flags&flagHasColorTransform != 0 {
		p.HasColorTransform = true
		if p.ColorTransform, err = record.ReadColorTransform(c, true); err != nil {
			return nil, err
		}
	}
	if flags&flagHasRatio != 0 {
		p.HasRatio = true
		if p.Ratio, err = c.ReadU16(); err != nil {
			return nil, err
		}
	}
	if flags&flagHasName != 0 {
		p.HasName = true
		if p.Name, err = c.ReadString(); err != nil {
			return nil, err
		}
	}
	if flags&flagHasClipDepth != 0 {
		p.HasClipDepth = true
		if p.ClipDepth, err = c.ReadU16(); err != nil {
			return nil, err
		}
	}
	if v3 && flags2&flag2HasFilterList != 0 {
		p.HasFilters = true
		if err := skipFilterList(c, code); err != nil {
			return nil, err
		}
	}
	if v3 && flags2&flag2HasBlendMode != 0 {
		p.HasBlendMode = true
		if p.BlendMode, err = c.ReadU8(); err != nil {
			return nil, err
		}
	}
	if v3 && flags2&flag2HasCacheAsBitmap != 0 {
		if _, err = c.ReadU8(); err != nil {
			return nil, err
		}
	}
	if v3 && flags2&flag2HasVisible != 0 {
		if _, err = c.ReadU8(); err != nil {
			return nil, err
		}
	}
	if v3 && flags2&flag2OpaqueBackground != 0 {
		if _, err = record.ReadRGBA(c); err != nil {
			return nil, err
		}
	}
	// Clip actions trail the tag; nothing after them, so they can be left
	// unread.
	_ = flagHasClipActions
	return p, nil
}

// skipFilterList consumes a FILTERLIST without interpreting it. Filters sit
// between the clip-depth and blend-mode fields, so their exact sizes must be
// honored or everything after them misaligns.
func skipFilterList(c *bitio.Cursor, code TagCode) error {
	count, err := c.ReadU8()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		id, err := c.ReadU8()
		if err != nil {
			return err
		}
		switch id {
		case 0: // drop shadow
			err = c.Skip(23)
		case 1: // blur
			err = c.Skip(9)
		case 2: // glow
			err = c.Skip(15)
		case 3: // bevel
			err = c.Skip(27)
		case 4, 7: // gradient glow / gradient bevel
			n, nerr := c.ReadU8()
			if nerr != nil {
				return nerr
			}
			err = c.Skip(int(n)*5 + 19)
		case 5: // convolution
			mx, nerr := c.ReadU8()
			if nerr != nil {
				return nerr
			}
			my, nerr := c.ReadU8()
			if nerr != nil {
				return nerr
			}
			err = c.Skip(8 + int(mx)*int(my)*4 + 5)
		case 6: // color matrix
			err = c.Skip(80)
		default:
			return invalidf(code, "unknown filter type %d", id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// RemoveObject is the decoded form of RemoveObject/2. RemoveObject names
// the character being removed; RemoveObject2 clears the depth regardless.
type RemoveObject struct {
	Depth        uint16
	HasCharacter bool
	CharacterID  CharacterID
}

// DecodeRemoveObject decodes either RemoveObject variant.
func DecodeRemoveObject(t Tag) (*RemoveObject, error) {
	c := t.Cursor()
	r := &RemoveObject{}
	var err error
	if t.Code == TagRemoveObject {
		r.HasCharacter = true
		id, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		r.CharacterID = CharacterID(id)
	} else if t.Code != TagRemoveObject2 {
		return nil, invalidf(t.Code, "not a RemoveObject tag")
	}
	if r.Depth, err = c.ReadU16(); err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeFrameLabel decodes a FrameLabel tag. The optional trailing anchor
// flag byte is ignored.
func DecodeFrameLabel(t Tag) (string, error) {
	if t.Code != TagFrameLabel {
		return "", invalidf(t.Code, "not a FrameLabel tag")
	}
	return t.Cursor().ReadString()
}

// DecodeExportAssets decodes the id→name pairs of an ExportAssets or
// SymbolClass tag. Both share the same layout.
func DecodeExportAssets(t Tag) (map[string]CharacterID, error) {
	if t.Code != TagExportAssets && t.Code != TagSymbolClass {
		return nil, invalidf(t.Code, "not an export tag")
	}
	c := t.Cursor()
	count, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	out := make(map[string]CharacterID, count)
	for i := 0; i < int(count); i++ {
		id, err := c.ReadU16()
		if err != nil {
			return nil, fmt.Errorf("export %d: %w", i, err)
		}
		name, err := c.ReadString()
		if err != nil {
			return nil, fmt.Errorf("export %d: %w", i, err)
		}
		out[name] = CharacterID(id)
	}
	return out, nil
}

// DecodeBackgroundColor decodes a SetBackgroundColor tag.
func DecodeBackgroundColor(t Tag) (record.Color, error) {
	if t.Code != TagSetBackgroundColor {
		return record.Color{}, invalidf(t.Code, "not a SetBackgroundColor tag")
	}
	return record.ReadRGB(t.Cursor())
}
