// Package render walks resolved timeline frames and issues drawing calls
// against a minimal canvas capability. The SVG and raster backends are
// interchangeable implementations of [Canvas]; everything format-specific
// lives in them, everything document-specific lives here.
package render

import (
	"fmt"

	"github.com/halfdome/swfkit/pkg/shape"
	"github.com/halfdome/swfkit/pkg/swf"
	"github.com/halfdome/swfkit/pkg/swf/record"
	"github.com/halfdome/swfkit/pkg/timeline"
)

// PaintKind selects the paint variant.
type PaintKind int

const (
	PaintSolid PaintKind = iota
	PaintLinearGradient
	PaintRadialGradient
	PaintFocalGradient
	PaintBitmap
)

// Paint is a resolved fill or stroke paint, colors already passed through
// the instance's color transform. Gradient paints carry the gradient-space
// matrix in twips.
type Paint struct {
	Kind     PaintKind
	Color    record.Color
	Gradient record.Gradient
	Matrix   record.Matrix
	BitmapID uint16
}

// Canvas is the drawing capability a backend provides. Coordinates are in
// pixels. Path calls accumulate the current path; Fill and Stroke paint and
// clear it. PushTransform opens a nested coordinate group, Pop closes the
// innermost one. Transform matrices arrive as decoded, translation still in
// twips; backends convert with [PixelMatrix].
type Canvas interface {
	PushTransform(m record.Matrix)
	Pop()

	MoveTo(x, y float64)
	LineTo(x, y float64)
	CurveTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()

	Fill(p Paint)
	Stroke(p Paint, width float64)
}

// BitmapCanvas is the optional capability of drawing an encoded bitmap
// character. Backends without it get a flat placeholder instead.
type BitmapCanvas interface {
	DrawBitmap(def *swf.BitmapDef, w, h float64)
}

// placeholderColor stands in for bitmap characters on backends that cannot
// embed them.
var placeholderColor = record.Color{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}

// PixelMatrix returns the six affine terms of a transform with translation
// converted from twips to pixels, in the order backends consume them:
// x' = a*x + c*y + tx, y' = b*x + d*y + ty.
func PixelMatrix(m record.Matrix) (a, b, c, d, tx, ty float64) {
	return m.ScaleX, m.RotateSkew0, m.RotateSkew1, m.ScaleY,
		record.Twips(m.TranslateX), record.Twips(m.TranslateY)
}

// DrawFrame renders one frame snapshot onto the canvas: one transform group
// per occupied depth, instances in depth order.
func DrawFrame(c Canvas, f *timeline.Frame) error {
	for i := range f.Instances {
		if err := drawInstance(c, &f.Instances[i], f.Index, record.IdentityColorTransform); err != nil {
			return err
		}
	}
	return nil
}

func drawInstance(c Canvas, in *timeline.Instance, frameIdx int, cx record.ColorTransform) error {
	cx = cx.Compose(in.ColorTransform)
	c.PushTransform(in.Matrix)
	defer c.Pop()

	switch def := in.Def.(type) {
	case *swf.ShapeDef:
		drawShape(c, def.Shape(), cx)
	case *swf.MorphShapeDef:
		// Morph targets are drawn at their start state; ratio-interpolated
		// rendering needs paired start/end edges matched up, which the
		// decoder keeps raw.
		drawShape(c, def.StartShape(), cx)
	case *swf.SpriteDef:
		if in.Child == nil || in.Child.FrameCount() == 0 {
			return nil
		}
		child := &in.Child.Frames[frameIdx%in.Child.FrameCount()]
		for i := range child.Instances {
			if err := drawInstance(c, &child.Instances[i], child.Index, cx); err != nil {
				return err
			}
		}
	case *swf.BitmapDef:
		drawBitmap(c, def, cx)
	case *swf.RawDef:
		// Opaque-retained definition; nothing to draw.
	case nil:
		return fmt.Errorf("depth %d: instance has no definition", in.Depth)
	}
	return nil
}

func drawShape(c Canvas, s *record.Shape, cx record.ColorTransform) {
	d := shape.FromShape(s)
	for _, fp := range d.Fills {
		emitPaths(c, fp.Paths)
		c.Fill(fillPaint(fp.Style, cx))
	}
	for _, sp := range d.Strokes {
		emitPaths(c, sp.Paths)
		paint := Paint{Kind: PaintSolid, Color: cx.Apply(sp.Style.Color)}
		if sp.Style.Fill != nil {
			paint = fillPaint(*sp.Style.Fill, cx)
		}
		c.Stroke(paint, record.Twips(int32(sp.Style.Width)))
	}
}

func emitPaths(c Canvas, paths []shape.Path) {
	for _, p := range paths {
		if len(p.Segments) == 0 {
			continue
		}
		start := p.Start()
		c.MoveTo(record.Twips(start.X), record.Twips(start.Y))
		for _, s := range p.Segments {
			if s.Curved {
				c.CurveTo(
					record.Twips(s.C1.X), record.Twips(s.C1.Y),
					record.Twips(s.C2.X), record.Twips(s.C2.Y),
					record.Twips(s.End.X), record.Twips(s.End.Y))
			} else {
				c.LineTo(record.Twips(s.End.X), record.Twips(s.End.Y))
			}
		}
		if p.Closed {
			c.ClosePath()
		}
	}
}

func fillPaint(fs record.FillStyle, cx record.ColorTransform) Paint {
	p := Paint{Matrix: fs.Matrix, BitmapID: fs.BitmapID}
	switch {
	case fs.Type == record.FillSolid:
		p.Kind = PaintSolid
		p.Color = cx.Apply(fs.Color)
	case fs.Type.IsGradient():
		switch fs.Type {
		case record.FillLinearGradient:
			p.Kind = PaintLinearGradient
		case record.FillFocalGradient:
			p.Kind = PaintFocalGradient
		default:
			p.Kind = PaintRadialGradient
		}
		if fs.Gradient != nil {
			p.Gradient = *fs.Gradient
			p.Gradient.Records = make([]record.GradRecord, len(fs.Gradient.Records))
			for i, gr := range fs.Gradient.Records {
				gr.Color = cx.Apply(gr.Color)
				p.Gradient.Records[i] = gr
			}
		}
	case fs.Type.IsBitmap():
		p.Kind = PaintBitmap
		p.Color = cx.Apply(placeholderColor)
	}
	return p
}

// drawBitmap emits a directly placed bitmap character, either through the
// backend's bitmap capability or as a placeholder rectangle of the declared
// size.
func drawBitmap(c Canvas, def *swf.BitmapDef, cx record.ColorTransform) {
	w := float64(def.Width)
	h := float64(def.Height)
	if bc, ok := c.(BitmapCanvas); ok {
		bc.DrawBitmap(def, w, h)
		return
	}
	c.MoveTo(0, 0)
	c.LineTo(w, 0)
	c.LineTo(w, h)
	c.LineTo(0, h)
	c.ClosePath()
	c.Fill(Paint{Kind: PaintSolid, Color: cx.Apply(placeholderColor)})
}
