package record

import (
	"fmt"

	"github.com/halfdome/swfkit/pkg/swf/bitio"
)

// ReadShapeWithStyle decodes a SHAPEWITHSTYLE: leading fill and line style
// arrays, the fill/line index bit widths, then the shape record stream.
// shapeVer is the DefineShape tag version (1..4).
//
// Edge coordinates are delta-encoded in the file relative to a pen position;
// the decoder threads the pen through the stream and emits absolute twips.
// A style-change record carrying new style arrays starts a new [StyleGroup]
// and resets style numbering to 1.
func ReadShapeWithStyle(c *bitio.Cursor, shapeVer int) ([]StyleGroup, error) {
	fills, err := readFillStyleArray(c, shapeVer)
	if err != nil {
		return nil, fmt.Errorf("fill styles: %w", err)
	}
	lines, err := readLineStyleArray(c, shapeVer)
	if err != nil {
		return nil, fmt.Errorf("line styles: %w", err)
	}
	return readShapeRecords(c, shapeVer, fills, lines)
}

// ReadShape decodes a SHAPE with no leading style arrays (morph shape edge
// streams, glyph shapes).
func ReadShape(c *bitio.Cursor, shapeVer int, fills []FillStyle, lines []LineStyle) ([]StyleGroup, error) {
	return readShapeRecords(c, shapeVer, fills, lines)
}

// shapeState is the pen position and active style selection threaded through
// the record stream.
type shapeState struct {
	x, y               int32
	fill0, fill1, line int
	fillBits, lineBits uint
}

func readShapeRecords(c *bitio.Cursor, shapeVer int, fills []FillStyle, lines []LineStyle) ([]StyleGroup, error) {
	c.Align()
	fb, err := c.ReadUB(4)
	if err != nil {
		return nil, err
	}
	lb, err := c.ReadUB(4)
	if err != nil {
		return nil, err
	}
	st := shapeState{fillBits: uint(fb), lineBits: uint(lb)}
	groups := []StyleGroup{{FillStyles: fills, LineStyles: lines}}
	cur := &groups[len(groups)-1]

	for {
		isEdge, err := c.ReadFlag()
		if err != nil {
			return nil, err
		}
		if !isEdge {
			done, newStyles, err := readStyleChange(c, shapeVer, &st)
			if err != nil {
				return nil, err
			}
			if done {
				return groups, nil
			}
			if newStyles != nil {
				groups = append(groups, *newStyles)
				cur = &groups[len(groups)-1]
			}
			continue
		}
		e, err := readEdge(c, &st)
		if err != nil {
			return nil, err
		}
		cur.Edges = append(cur.Edges, e)
	}
}

// readStyleChange decodes a style-change record (or the end record, which is
// a style change with every flag clear). It returns done=true at end of
// stream, and a fresh group when the record introduced new style arrays.
func readStyleChange(c *bitio.Cursor, shapeVer int, st *shapeState) (done bool, newGroup *StyleGroup, err error) {
	flags, err := c.ReadUB(5)
	if err != nil {
		return false, nil, err
	}
	if flags == 0 {
		return true, nil, nil
	}
	const (
		flagNewStyles  = 1 << 4
		flagLineStyle  = 1 << 3
		flagFillStyle1 = 1 << 2
		flagFillStyle0 = 1 << 1
		flagMoveTo     = 1 << 0
	)
	if flags&flagMoveTo != 0 {
		// MoveTo carries absolute coordinates, not deltas.
		pos, err := readWidthSB(c, 5, 2)
		if err != nil {
			return false, nil, err
		}
		st.x, st.y = pos[0], pos[1]
	}
	// Indices are stored before any replacement style arrays but refer to
	// the arrays in effect after this record, so they are staged and applied
	// at the end. They are read with the pre-replacement bit widths.
	fill0, fill1, line := -1, -1, -1
	if flags&flagFillStyle0 != 0 {
		v, err := c.ReadUB(st.fillBits)
		if err != nil {
			return false, nil, err
		}
		fill0 = int(v)
	}
	if flags&flagFillStyle1 != 0 {
		v, err := c.ReadUB(st.fillBits)
		if err != nil {
			return false, nil, err
		}
		fill1 = int(v)
	}
	if flags&flagLineStyle != 0 {
		v, err := c.ReadUB(st.lineBits)
		if err != nil {
			return false, nil, err
		}
		line = int(v)
	}
	if flags&flagNewStyles != 0 {
		if shapeVer < 2 {
			return false, nil, fmt.Errorf("new-styles record in shape version %d", shapeVer)
		}
		fills, err := readFillStyleArray(c, shapeVer)
		if err != nil {
			return false, nil, fmt.Errorf("replacement fill styles: %w", err)
		}
		lines, err := readLineStyleArray(c, shapeVer)
		if err != nil {
			return false, nil, fmt.Errorf("replacement line styles: %w", err)
		}
		fb, err := c.ReadUB(4)
		if err != nil {
			return false, nil, err
		}
		lb, err := c.ReadUB(4)
		if err != nil {
			return false, nil, err
		}
		st.fillBits, st.lineBits = uint(fb), uint(lb)
		// Numbering restarts at 1 in the new arrays; stale indices from the
		// previous generation must not leak through.
		st.fill0, st.fill1, st.line = 0, 0, 0
		newGroup = &StyleGroup{FillStyles: fills, LineStyles: lines}
	}
	if fill0 >= 0 {
		st.fill0 = fill0
	}
	if fill1 >= 0 {
		st.fill1 = fill1
	}
	if line >= 0 {
		st.line = line
	}
	return false, newGroup, nil
}

// readEdge decodes a straight or curved edge record, advancing the pen.
func readEdge(c *bitio.Cursor, st *shapeState) (Edge, error) {
	straight, err := c.ReadFlag()
	if err != nil {
		return Edge{}, err
	}
	nb, err := c.ReadUB(4)
	if err != nil {
		return Edge{}, err
	}
	numBits := uint(nb) + 2

	e := Edge{
		Start: Point{st.x, st.y},
		Fill0: st.fill0, Fill1: st.fill1, Line: st.line,
	}
	if straight {
		dx, dy, err := readStraightDeltas(c, numBits)
		if err != nil {
			return Edge{}, err
		}
		st.x += dx
		st.y += dy
		e.End = Point{st.x, st.y}
		return e, nil
	}

	cdx, err := c.ReadSB(numBits)
	if err != nil {
		return Edge{}, err
	}
	cdy, err := c.ReadSB(numBits)
	if err != nil {
		return Edge{}, err
	}
	adx, err := c.ReadSB(numBits)
	if err != nil {
		return Edge{}, err
	}
	ady, err := c.ReadSB(numBits)
	if err != nil {
		return Edge{}, err
	}
	e.Curved = true
	e.Control = Point{st.x + cdx, st.y + cdy}
	st.x += cdx + adx
	st.y += cdy + ady
	e.End = Point{st.x, st.y}
	return e, nil
}

// readStraightDeltas handles the general-vs-axis-only optimization: a general
// line stores both deltas, an axis-aligned line stores a direction bit and a
// single delta.
func readStraightDeltas(c *bitio.Cursor, numBits uint) (dx, dy int32, err error) {
	general, err := c.ReadFlag()
	if err != nil {
		return 0, 0, err
	}
	if general {
		if dx, err = c.ReadSB(numBits); err != nil {
			return 0, 0, err
		}
		dy, err = c.ReadSB(numBits)
		return dx, dy, err
	}
	vertical, err := c.ReadFlag()
	if err != nil {
		return 0, 0, err
	}
	d, err := c.ReadSB(numBits)
	if err != nil {
		return 0, 0, err
	}
	if vertical {
		return 0, d, nil
	}
	return d, 0, nil
}
