package record

import (
	"fmt"

	"github.com/halfdome/swfkit/pkg/swf/bitio"
)

// =============================================================================
// Bit-Field Combinators
// =============================================================================
//
// Nearly every bit-packed record follows the same pattern: an optional
// presence flag, a shared bit-width prefix, then N fields of that width.
// These helpers implement the pattern once; rect, matrix, and color
// transform decoding are all built from them.

// readWidthSB reads a width prefix of widthBits bits followed by count
// signed fields sharing that width.
func readWidthSB(c *bitio.Cursor, widthBits uint, count int) ([]int32, error) {
	n, err := c.ReadUB(widthBits)
	if err != nil {
		return nil, err
	}
	out := make([]int32, count)
	for i := range out {
		if out[i], err = c.ReadSB(uint(n)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// readWidthFB is readWidthSB for 16.16 fixed-point fields.
func readWidthFB(c *bitio.Cursor, widthBits uint, count int) ([]float64, error) {
	n, err := c.ReadUB(widthBits)
	if err != nil {
		return nil, err
	}
	out := make([]float64, count)
	for i := range out {
		if out[i], err = c.ReadFB(uint(n)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// readGated reads a presence flag and invokes read only when it is set.
// When the flag is clear the gated fields keep their defaults.
func readGated(c *bitio.Cursor, read func() error) error {
	present, err := c.ReadFlag()
	if err != nil {
		return err
	}
	if !present {
		return nil
	}
	return read()
}

// =============================================================================
// Basic Records
// =============================================================================

// ReadRect decodes a RECT: a 5-bit width prefix and four signed twip fields.
func ReadRect(c *bitio.Cursor) (Rect, error) {
	f, err := readWidthSB(c, 5, 4)
	if err != nil {
		return Rect{}, err
	}
	return Rect{XMin: f[0], XMax: f[1], YMin: f[2], YMax: f[3]}, nil
}

// ReadRGB decodes a 3-byte color with alpha forced opaque.
func ReadRGB(c *bitio.Cursor) (Color, error) {
	b, err := c.ReadBytes(3)
	if err != nil {
		return Color{}, err
	}
	return Color{R: b[0], G: b[1], B: b[2], A: 255}, nil
}

// ReadRGBA decodes a 4-byte color.
func ReadRGBA(c *bitio.Cursor) (Color, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return Color{}, err
	}
	return Color{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

// ReadMatrix decodes a MATRIX record. Scale and rotate clusters are each
// presence-gated; absent clusters keep identity defaults (scale 1, rotate 0).
// The translation cluster is always present.
func ReadMatrix(c *bitio.Cursor) (Matrix, error) {
	m := IdentityMatrix
	err := readGated(c, func() error {
		f, err := readWidthFB(c, 5, 2)
		if err != nil {
			return err
		}
		m.ScaleX, m.ScaleY = f[0], f[1]
		return nil
	})
	if err != nil {
		return m, err
	}
	err = readGated(c, func() error {
		f, err := readWidthFB(c, 5, 2)
		if err != nil {
			return err
		}
		m.RotateSkew0, m.RotateSkew1 = f[0], f[1]
		return nil
	})
	if err != nil {
		return m, err
	}
	t, err := readWidthSB(c, 5, 2)
	if err != nil {
		return m, err
	}
	m.TranslateX, m.TranslateY = t[0], t[1]
	c.Align()
	return m, nil
}

// ReadColorTransform decodes a CXFORM (withAlpha false) or CXFORMWITHALPHA
// (withAlpha true) record. Multiply and add clusters are independently
// presence-gated and share one 4-bit width prefix.
func ReadColorTransform(c *bitio.Cursor, withAlpha bool) (ColorTransform, error) {
	t := IdentityColorTransform
	hasAdd, err := c.ReadFlag()
	if err != nil {
		return t, err
	}
	hasMult, err := c.ReadFlag()
	if err != nil {
		return t, err
	}
	n, err := c.ReadUB(4)
	if err != nil {
		return t, err
	}
	terms := 3
	if withAlpha {
		terms = 4
	}
	read := func() ([4]int16, error) {
		var v [4]int16
		for i := 0; i < terms; i++ {
			s, err := c.ReadSB(uint(n))
			if err != nil {
				return v, err
			}
			v[i] = int16(s)
		}
		return v, nil
	}
	if hasMult {
		v, err := read()
		if err != nil {
			return t, err
		}
		t.MultR, t.MultG, t.MultB = v[0], v[1], v[2]
		if withAlpha {
			t.MultA = v[3]
		}
	}
	if hasAdd {
		v, err := read()
		if err != nil {
			return t, err
		}
		t.AddR, t.AddG, t.AddB = v[0], v[1], v[2]
		if withAlpha {
			t.AddA = v[3]
		}
	}
	c.Align()
	return t, nil
}

// =============================================================================
// Gradients
// =============================================================================

// ReadGradient decodes a GRADIENT record. Stop order is preserved as given.
func ReadGradient(c *bitio.Cursor, withAlpha bool) (*Gradient, error) {
	c.Align()
	spread, err := c.ReadUB(2)
	if err != nil {
		return nil, err
	}
	interp, err := c.ReadUB(2)
	if err != nil {
		return nil, err
	}
	count, err := c.ReadUB(4)
	if err != nil {
		return nil, err
	}
	g := &Gradient{Spread: uint8(spread), Interpolation: uint8(interp)}
	for i := uint32(0); i < count; i++ {
		ratio, err := c.ReadU8()
		if err != nil {
			return nil, err
		}
		var col Color
		if withAlpha {
			col, err = ReadRGBA(c)
		} else {
			col, err = ReadRGB(c)
		}
		if err != nil {
			return nil, err
		}
		g.Records = append(g.Records, GradRecord{Ratio: ratio, Color: col})
	}
	return g, nil
}

// ReadFocalGradient decodes a FOCALGRADIENT: a gradient plus a signed 8.8
// fixed focal point in [-1,1].
func ReadFocalGradient(c *bitio.Cursor, withAlpha bool) (*Gradient, error) {
	g, err := ReadGradient(c, withAlpha)
	if err != nil {
		return nil, err
	}
	if g.FocalPoint, err = c.ReadFixed8(); err != nil {
		return nil, err
	}
	return g, nil
}

// =============================================================================
// Fill & Line Styles
// =============================================================================

// ReadFillStyle decodes one FILLSTYLE for the given shape tag version.
// Shape3 and later use RGBA colors.
func ReadFillStyle(c *bitio.Cursor, shapeVer int) (FillStyle, error) {
	withAlpha := shapeVer >= 3
	tb, err := c.ReadU8()
	if err != nil {
		return FillStyle{}, err
	}
	fs := FillStyle{Type: FillType(tb)}
	switch {
	case fs.Type == FillSolid:
		if withAlpha {
			fs.Color, err = ReadRGBA(c)
		} else {
			fs.Color, err = ReadRGB(c)
		}
		return fs, err
	case fs.Type.IsGradient():
		if fs.Matrix, err = ReadMatrix(c); err != nil {
			return fs, err
		}
		if fs.Type == FillFocalGradient {
			fs.Gradient, err = ReadFocalGradient(c, withAlpha)
		} else {
			fs.Gradient, err = ReadGradient(c, withAlpha)
		}
		return fs, err
	case fs.Type.IsBitmap():
		if fs.BitmapID, err = c.ReadU16(); err != nil {
			return fs, err
		}
		fs.Matrix, err = ReadMatrix(c)
		return fs, err
	default:
		return fs, fmt.Errorf("unknown fill style type 0x%02x", tb)
	}
}

// ReadLineStyle decodes one LINESTYLE (shapeVer < 4) or LINESTYLE2.
func ReadLineStyle(c *bitio.Cursor, shapeVer int) (LineStyle, error) {
	var ls LineStyle
	var err error
	if ls.Width, err = c.ReadU16(); err != nil {
		return ls, err
	}
	if shapeVer < 4 {
		if shapeVer >= 3 {
			ls.Color, err = ReadRGBA(c)
		} else {
			ls.Color, err = ReadRGB(c)
		}
		return ls, err
	}

	// LINESTYLE2 flag cluster. Field order is fixed; see the PlaceObject
	// decoder for the same consume-in-order constraint.
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
		fill, err := ReadFillStyle(c, shapeVer)
		if err != nil {
			return ls, err
		}
		ls.Fill = &fill
		if fill.Type == FillSolid {
			ls.Color = fill.Color
		}
	} else {
		if ls.Color, err = ReadRGBA(c); err != nil {
			return ls, err
		}
	}
	return ls, nil
}

// readFillStyleArray decodes a FILLSTYLEARRAY. Shape2 and later use an
// extended 16-bit count when the count byte is 0xFF.
func readFillStyleArray(c *bitio.Cursor, shapeVer int) ([]FillStyle, error) {
	n, err := readStyleCount(c, shapeVer)
	if err != nil {
		return nil, err
	}
	styles := make([]FillStyle, 0, n)
	for i := 0; i < n; i++ {
		fs, err := ReadFillStyle(c, shapeVer)
		if err != nil {
			return nil, fmt.Errorf("fill style %d: %w", i+1, err)
		}
		styles = append(styles, fs)
	}
	return styles, nil
}

// readLineStyleArray decodes a LINESTYLEARRAY.
func readLineStyleArray(c *bitio.Cursor, shapeVer int) ([]LineStyle, error) {
	n, err := readStyleCount(c, shapeVer)
	if err != nil {
		return nil, err
	}
	styles := make([]LineStyle, 0, n)
	for i := 0; i < n; i++ {
		ls, err := ReadLineStyle(c, shapeVer)
		if err != nil {
			return nil, fmt.Errorf("line style %d: %w", i+1, err)
		}
		styles = append(styles, ls)
	}
	return styles, nil
}

func readStyleCount(c *bitio.Cursor, shapeVer int) (int, error) {
	n, err := c.ReadU8()
	if err != nil {
		return 0, err
	}
	if n == 0xFF && shapeVer >= 2 {
		ext, err := c.ReadU16()
		return int(ext), err
	}
	return int(n), nil
}
