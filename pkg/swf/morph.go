package swf

import (
	"fmt"

	"github.com/halfdome/swfkit/pkg/swf/bitio"
	"github.com/halfdome/swfkit/pkg/swf/record"
)

// decodeMorphShape decodes DefineMorphShape/2. Morph styles interleave a
// start and an end variant of every field; only the start side becomes
// drawable style data here, which is what a ratio-0 render needs. The end
// edge stream is kept raw for census purposes.
func decodeMorphShape(t Tag) (*MorphShapeDef, error) {
	c := t.Cursor()
	ver := 1
	if t.Code == TagDefineMorphShape2 {
		ver = 2
	}
	id, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	m := &MorphShapeDef{ID: CharacterID(id), Version: ver}
	if m.StartBounds, err = record.ReadRect(c); err != nil {
		return nil, fmt.Errorf("start bounds: %w", err)
	}
	if m.EndBounds, err = record.ReadRect(c); err != nil {
		return nil, fmt.Errorf("end bounds: %w", err)
	}
	if ver == 2 {
		// Start/end edge bounds plus the scaling-strokes flag byte.
		if _, err = record.ReadRect(c); err != nil {
			return nil, err
		}
		if _, err = record.ReadRect(c); err != nil {
			return nil, err
		}
		if _, err = c.ReadU8(); err != nil {
			return nil, err
		}
	}
	endEdgesOffset, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	stylesStart := c.Offset()

	fills, err := readMorphFillStyles(c)
	if err != nil {
		return nil, fmt.Errorf("morph fill styles: %w", err)
	}
	lines, err := readMorphLineStyles(c, ver)
	if err != nil {
		return nil, fmt.Errorf("morph line styles: %w", err)
	}
	// Morph edge streams always use alpha colors and extended counts, which
	// matches shape version 3 conventions.
	groups, err := record.ReadShape(c, 3, fills, lines)
	if err != nil {
		return nil, fmt.Errorf("start edges: %w", err)
	}
	m.Groups = groups

	// endEdgesOffset is relative to its own field's end position.
	endStart := stylesStart + int(endEdgesOffset)
	if end, err := c.SubCursor(endStart, len(t.Body)-endStart); err == nil {
		m.EndEdges = end.Rest()
	}
	return m, nil
}

// readMorphFillStyles decodes a MORPHFILLSTYLEARRAY, keeping the start side.
func readMorphFillStyles(c *bitio.Cursor) ([]record.FillStyle, error) {
	n, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	count := int(n)
	if n == 0xFF {
		ext, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		count = int(ext)
	}
	styles := make([]record.FillStyle, 0, count)
	for i := 0; i < count; i++ {
		fs, err := readMorphFillStyle(c)
		if err != nil {
			return nil, fmt.Errorf("style %d: %w", i+1, err)
		}
		styles = append(styles, fs)
	}
	return styles, nil
}

func readMorphFillStyle(c *bitio.Cursor) (record.FillStyle, error) {
	tb, err := c.ReadU8()
	if err != nil {
		return record.FillStyle{}, err
	}
	fs := record.FillStyle{Type: record.FillType(tb)}
	switch {
	case fs.Type == record.FillSolid:
		if fs.Color, err = record.ReadRGBA(c); err != nil {
			return fs, err
		}
		_, err = record.ReadRGBA(c) // end color
		return fs, err
	case fs.Type.IsGradient():
		if fs.Matrix, err = record.ReadMatrix(c); err != nil {
			return fs, err
		}
		if _, err = record.ReadMatrix(c); err != nil { // end matrix
			return fs, err
		}
		fs.Gradient, err = readMorphGradient(c, fs.Type == record.FillFocalGradient)
		return fs, err
	case fs.Type.IsBitmap():
		if fs.BitmapID, err = c.ReadU16(); err != nil {
			return fs, err
		}
		if fs.Matrix, err = record.ReadMatrix(c); err != nil {
			return fs, err
		}
		_, err = record.ReadMatrix(c) // end matrix
		return fs, err
	default:
		return fs, fmt.Errorf("unknown morph fill type 0x%02x", tb)
	}
}

// readMorphGradient keeps the start color of each stop pair. Focal
// gradients carry a trailing start/end focal-point pair; the start value is
// kept.
func readMorphGradient(c *bitio.Cursor, focal bool) (*record.Gradient, error) {
	count, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	g := &record.Gradient{}
	for i := 0; i < int(count); i++ {
		ratio, err := c.ReadU8()
		if err != nil {
			return nil, err
		}
		col, err := record.ReadRGBA(c)
		if err != nil {
			return nil, err
		}
		if _, err = c.ReadU8(); err != nil { // end ratio
			return nil, err
		}
		if _, err = record.ReadRGBA(c); err != nil { // end color
			return nil, err
		}
		g.Records = append(g.Records, record.GradRecord{Ratio: ratio, Color: col})
	}
	if focal {
		if g.FocalPoint, err = c.ReadFixed8(); err != nil {
			return nil, err
		}
		if _, err = c.ReadFixed8(); err != nil { // end focal point
			return nil, err
		}
	}
	return g, nil
}

// readMorphLineStyles decodes a MORPHLINESTYLEARRAY, keeping start widths
// and colors.
func readMorphLineStyles(c *bitio.Cursor, ver int) ([]record.LineStyle, error) {
	n, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	count := int(n)
	if n == 0xFF {
		ext, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		count = int(ext)
	}
	styles := make([]record.LineStyle, 0, count)
	for i := 0; i < count; i++ {
		var ls record.LineStyle
		if ls.Width, err = c.ReadU16(); err != nil {
			return nil, err
		}
		if _, err = c.ReadU16(); err != nil { // end width
			return nil, err
		}
		if ver == 2 {
			ls, err = readMorphLineStyle2(c, ls.Width)
			if err != nil {
				return nil, fmt.Errorf("style %d: %w", i+1, err)
			}
		} else {
			if ls.Color, err = record.ReadRGBA(c); err != nil {
				return nil, err
			}
			if _, err = record.ReadRGBA(c); err != nil { // end color
				return nil, err
			}
		}
		styles = append(styles, ls)
	}
	return styles, nil
}

// readMorphLineStyle2 decodes the MORPHLINESTYLE2 flag cluster, which
// mirrors LINESTYLE2 but with paired start/end payloads.
func readMorphLineStyle2(c *bitio.Cursor, width uint16) (record.LineStyle, error) {
	ls := record.LineStyle{Width: width}
	startCap, err := c.ReadUB(2)
	if err != nil {
		return ls, err
	}
	join, err := c.ReadUB(2)
	if err != nil {
		return ls, err
	}
	hasFill, err := c.ReadFlag()
	if err != nil {
		return ls, err
	}
	if _, err = c.ReadUB(2); err != nil { // noHScale, noVScale
		return ls, err
	}
	if _, err = c.ReadFlag(); err != nil { // pixelHinting
		return ls, err
	}
	if _, err = c.ReadUB(5); err != nil { // reserved
		return ls, err
	}
	noClose, err := c.ReadFlag()
	if err != nil {
		return ls, err
	}
	endCap, err := c.ReadUB(2)
	if err != nil {
		return ls, err
	}
	ls.StartCap, ls.EndCap, ls.Join = uint8(startCap), uint8(endCap), uint8(join)
	ls.NoClose = noClose
	if ls.Join == 2 {
		if ls.MiterLimit, err = c.ReadFixed8(); err != nil {
			return ls, err
		}
	}
	if hasFill {
		fill, err := readMorphFillStyle(c)
		if err != nil {
			return ls, err
		}
		ls.Fill = &fill
		if fill.Type == record.FillSolid {
			ls.Color = fill.Color
		}
		return ls, nil
	}
	if ls.Color, err = record.ReadRGBA(c); err != nil {
		return ls, err
	}
	_, err = record.ReadRGBA(c) // end color
	return ls, err
}
