// Package svg renders timeline frames as standalone SVG documents: one
// nested transform group per depth, one path element per styled path, and
// gradients emitted once as reusable definitions.
package svg

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/halfdome/swfkit/pkg/render"
	"github.com/halfdome/swfkit/pkg/swf"
	"github.com/halfdome/swfkit/pkg/swf/record"
	"github.com/halfdome/swfkit/pkg/timeline"
)

// gradientRadius is the gradient-space extent in pixels. Gradient fills are
// defined on a square spanning -16384..16384 twips.
const gradientRadius = 819.2

// Option configures the renderer.
type Option func(*canvas)

// WithMinStrokeWidth snaps stroke widths below w pixels up to w. Zero keeps
// strokes sub-pixel-exact. Hairline strokes (width 0 in the file) disappear
// at small sizes without this; enabling it trades fidelity for visibility.
func WithMinStrokeWidth(w float64) Option {
	return func(c *canvas) { c.minStroke = w }
}

// WithBackground fills the view box with a background color before any
// content. Movies carry one in their SetBackgroundColor tag.
func WithBackground(col record.Color) Option {
	return func(c *canvas) { c.background = &col }
}

// WithPadding grows the view box by px pixels on every side.
func WithPadding(px float64) Option {
	return func(c *canvas) { c.padding = px }
}

type canvas struct {
	body bytes.Buffer
	defs bytes.Buffer
	path bytes.Buffer

	minStroke  float64
	background *record.Color
	padding    float64

	gradients int
}

var _ render.Canvas = (*canvas)(nil)
var _ render.BitmapCanvas = (*canvas)(nil)

// Render draws one frame into a complete SVG document. The view box is the
// frame's drawn bounds; bounds may be overridden with RenderInBounds when a
// stable stage across frames matters.
func Render(f *timeline.Frame, opts ...Option) ([]byte, error) {
	bounds, ok := render.FrameBounds(f)
	if !ok {
		bounds = record.Rect{XMax: 400, YMax: 400} // 20x20 px
	}
	return RenderInBounds(f, bounds, opts...)
}

// RenderInBounds draws one frame using the given twip bounds as the view
// box.
func RenderInBounds(f *timeline.Frame, bounds record.Rect, opts ...Option) ([]byte, error) {
	c := &canvas{}
	for _, opt := range opts {
		opt(c)
	}
	if err := render.DrawFrame(c, f); err != nil {
		return nil, err
	}

	x := record.Twips(bounds.XMin) - c.padding
	y := record.Twips(bounds.YMin) - c.padding
	w := bounds.PixelWidth() + 2*c.padding
	h := bounds.PixelHeight() + 2*c.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%s" height="%s">`+"\n",
		ftoa(x), ftoa(y), ftoa(w), ftoa(h), ftoa(w), ftoa(h))
	if c.defs.Len() > 0 {
		buf.WriteString("<defs>\n")
		buf.Write(c.defs.Bytes())
		buf.WriteString("</defs>\n")
	}
	if c.background != nil {
		fmt.Fprintf(&buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			ftoa(x), ftoa(y), ftoa(w), ftoa(h), cssColor(*c.background))
	}
	buf.Write(c.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// ==========================================================================
// Canvas implementation
// ==========================================================================

func (c *canvas) PushTransform(m record.Matrix) {
	if m.IsIdentity() {
		c.body.WriteString("<g>\n")
		return
	}
	a, b, cc, d, tx, ty := render.PixelMatrix(m)
	fmt.Fprintf(&c.body, `<g transform="matrix(%s %s %s %s %s %s)">`+"\n",
		ftoa(a), ftoa(b), ftoa(cc), ftoa(d), ftoa(tx), ftoa(ty))
}

func (c *canvas) Pop() { c.body.WriteString("</g>\n") }

func (c *canvas) MoveTo(x, y float64) {
	fmt.Fprintf(&c.path, "M%s %s", ftoa(x), ftoa(y))
}

func (c *canvas) LineTo(x, y float64) {
	fmt.Fprintf(&c.path, "L%s %s", ftoa(x), ftoa(y))
}

func (c *canvas) CurveTo(c1x, c1y, c2x, c2y, x, y float64) {
	fmt.Fprintf(&c.path, "C%s %s %s %s %s %s",
		ftoa(c1x), ftoa(c1y), ftoa(c2x), ftoa(c2y), ftoa(x), ftoa(y))
}

func (c *canvas) ClosePath() { c.path.WriteString("Z") }

func (c *canvas) Fill(p render.Paint) {
	d := c.takePath()
	if d == "" {
		return
	}
	fmt.Fprintf(&c.body, `<path d="%s" fill="%s"%s fill-rule="evenodd"/>`+"\n",
		d, c.paintRef(p), opacityAttr("fill-opacity", p))
}

func (c *canvas) Stroke(p render.Paint, width float64) {
	d := c.takePath()
	if d == "" {
		return
	}
	if width < c.minStroke {
		width = c.minStroke
	}
	fmt.Fprintf(&c.body, `<path d="%s" fill="none" stroke="%s"%s stroke-width="%s" stroke-linecap="round" stroke-linejoin="round"/>`+"\n",
		d, c.paintRef(p), opacityAttr("stroke-opacity", p), ftoa(width))
}

// DrawBitmap embeds JPEG characters as data URIs. Lossless characters carry
// zlib pixel data, not an image container, so they fall back to a
// placeholder rectangle; pixel decoding is the raster pipeline's concern.
func (c *canvas) DrawBitmap(def *swf.BitmapDef, w, h float64) {
	if def.Format == swf.BitmapLossless {
		fmt.Fprintf(&c.body, `<rect width="%s" height="%s" fill="#808080"/>`+"\n",
			ftoa(w), ftoa(h))
		return
	}
	fmt.Fprintf(&c.body, `<image width="%s" height="%s" href="data:image/jpeg;base64,%s"/>`+"\n",
		ftoa(w), ftoa(h), base64.StdEncoding.EncodeToString(def.Data))
}

func (c *canvas) takePath() string {
	d := c.path.String()
	c.path.Reset()
	return d
}

// paintRef returns the fill/stroke attribute value, registering a gradient
// definition on first use.
func (c *canvas) paintRef(p render.Paint) string {
	switch p.Kind {
	case render.PaintLinearGradient, render.PaintRadialGradient, render.PaintFocalGradient:
		return fmt.Sprintf("url(#%s)", c.defineGradient(p))
	default:
		return cssColor(p.Color)
	}
}

func (c *canvas) defineGradient(p render.Paint) string {
	c.gradients++
	id := fmt.Sprintf("grad%d", c.gradients)

	a, b, cc, d, tx, ty := render.PixelMatrix(p.Matrix)
	transform := fmt.Sprintf(` gradientTransform="matrix(%s %s %s %s %s %s)"`,
		ftoa(a), ftoa(b), ftoa(cc), ftoa(d), ftoa(tx), ftoa(ty))

	switch p.Kind {
	case render.PaintLinearGradient:
		fmt.Fprintf(&c.defs, `<linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%s" y1="0" x2="%s" y2="0"%s%s>`+"\n",
			id, ftoa(-gradientRadius), ftoa(gradientRadius), spreadAttr(p.Gradient.Spread), transform)
		c.writeStops(p.Gradient)
		c.defs.WriteString("</linearGradient>\n")
	default:
		focal := ""
		if p.Kind == render.PaintFocalGradient {
			focal = fmt.Sprintf(` fx="%s" fy="0"`, ftoa(p.Gradient.FocalPoint*gradientRadius))
		}
		fmt.Fprintf(&c.defs, `<radialGradient id="%s" gradientUnits="userSpaceOnUse" cx="0" cy="0" r="%s"%s%s%s>`+"\n",
			id, ftoa(gradientRadius), focal, spreadAttr(p.Gradient.Spread), transform)
		c.writeStops(p.Gradient)
		c.defs.WriteString("</radialGradient>\n")
	}
	return id
}

func (c *canvas) writeStops(g record.Gradient) {
	for _, rec := range g.Records {
		fmt.Fprintf(&c.defs, `<stop offset="%s" stop-color="%s"`, ftoa(float64(rec.Ratio)/255), cssColor(rec.Color))
		if rec.Color.A != 255 {
			fmt.Fprintf(&c.defs, ` stop-opacity="%s"`, ftoa(float64(rec.Color.A)/255))
		}
		c.defs.WriteString("/>\n")
	}
}

func spreadAttr(spread uint8) string {
	switch spread {
	case 1:
		return ` spreadMethod="reflect"`
	case 2:
		return ` spreadMethod="repeat"`
	}
	return ""
}

func opacityAttr(name string, p render.Paint) string {
	if p.Kind != render.PaintSolid && p.Kind != render.PaintBitmap {
		return ""
	}
	if p.Color.A == 255 {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, name, ftoa(float64(p.Color.A)/255))
}

func cssColor(col record.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", col.R, col.G, col.B)
}

// ftoa formats a coordinate with just enough precision for twip-resolution
// geometry, trimming trailing zeros.
func ftoa(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
