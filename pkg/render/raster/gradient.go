package raster

import (
	"math"

	"github.com/halfdome/swfkit/pkg/render"
	"github.com/halfdome/swfkit/pkg/swf/record"
)

// gradientRadius is the gradient-space extent in pixels: fills are defined
// on a square spanning -16384..16384 twips.
const gradientRadius = 819.2

// gradientShader evaluates a gradient paint per device pixel by mapping the
// pixel back into gradient space through the inverse of the composed
// transform.
func (c *canvas) gradientShader(p render.Paint) func(x, y float64) record.Color {
	ga, gb, gc, gd, gtx, gty := render.PixelMatrix(p.Matrix)
	grad := affine{a: ga, b: gb, c: gc, d: gd, tx: gtx, ty: gty}
	full := affine{a: c.k, d: c.k, tx: c.offX, ty: c.offY}.mul(c.ctm()).mul(grad)
	inv, ok := invert(full)
	if !ok {
		// Degenerate transform; paint with the first stop.
		col := record.Color{}
		if len(p.Gradient.Records) > 0 {
			col = p.Gradient.Records[0].Color
		}
		return func(x, y float64) record.Color { return col }
	}

	g := p.Gradient
	kind := p.Kind
	return func(x, y float64) record.Color {
		gx, gy := inv.apply(x, y)
		var t float64
		switch kind {
		case render.PaintLinearGradient:
			t = (gx + gradientRadius) / (2 * gradientRadius)
		case render.PaintFocalGradient:
			fx := g.FocalPoint * gradientRadius
			t = math.Hypot(gx-fx, gy) / gradientRadius
		default:
			t = math.Hypot(gx, gy) / gradientRadius
		}
		return rampColor(g, spreadT(t, g.Spread))
	}
}

// spreadT applies the gradient spread mode to a raw position.
func spreadT(t float64, spread uint8) float64 {
	switch spread {
	case 1: // reflect
		t = math.Mod(math.Abs(t), 2)
		if t > 1 {
			t = 2 - t
		}
		return t
	case 2: // repeat
		t = math.Mod(t, 1)
		if t < 0 {
			t++
		}
		return t
	}
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// rampColor interpolates the color stops at position t in [0,1]. Stops keep
// their file order, sorted or not; evaluation walks them as given.
func rampColor(g record.Gradient, t float64) record.Color {
	recs := g.Records
	if len(recs) == 0 {
		return record.Color{}
	}
	pos := t * 255
	if pos <= float64(recs[0].Ratio) {
		return recs[0].Color
	}
	for i := 1; i < len(recs); i++ {
		lo, hi := recs[i-1], recs[i]
		if pos > float64(hi.Ratio) {
			continue
		}
		span := float64(hi.Ratio) - float64(lo.Ratio)
		if span <= 0 {
			return hi.Color
		}
		f := (pos - float64(lo.Ratio)) / span
		return lerpColor(lo.Color, hi.Color, f)
	}
	return recs[len(recs)-1].Color
}

func lerpColor(a, b record.Color, f float64) record.Color {
	l := func(x, y uint8) uint8 { return uint8(float64(x) + f*(float64(y)-float64(x)) + 0.5) }
	return record.Color{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: l(a.A, b.A)}
}

// invert returns the inverse affine transform; ok is false when the matrix
// is singular.
func invert(m affine) (affine, bool) {
	det := m.a*m.d - m.b*m.c
	if det == 0 {
		return affine{}, false
	}
	ia := m.d / det
	ib := -m.b / det
	ic := -m.c / det
	id := m.a / det
	return affine{
		a: ia, b: ib, c: ic, d: id,
		tx: -(ia*m.tx + ic*m.ty),
		ty: -(ib*m.tx + id*m.ty),
	}, true
}
