package render

import (
	"github.com/halfdome/swfkit/pkg/swf"
	"github.com/halfdome/swfkit/pkg/swf/record"
	"github.com/halfdome/swfkit/pkg/timeline"
)

// FrameBounds returns the union of every instance's transformed bounds in
// twips. ok is false when the frame draws nothing.
func FrameBounds(f *timeline.Frame) (record.Rect, bool) {
	var out record.Rect
	found := false
	for i := range f.Instances {
		r, ok := instanceBounds(&f.Instances[i], f.Index, record.IdentityMatrix)
		if !ok {
			continue
		}
		if !found {
			out = r
			found = true
		} else {
			out = out.Union(r)
		}
	}
	return out, found
}

func instanceBounds(in *timeline.Instance, frameIdx int, outer record.Matrix) (record.Rect, bool) {
	m := outer.Multiply(in.Matrix)
	switch def := in.Def.(type) {
	case *swf.ShapeDef:
		return transformRect(m, def.Bounds), true
	case *swf.MorphShapeDef:
		return transformRect(m, def.StartBounds), true
	case *swf.BitmapDef:
		// Bitmap pixels map 1:1 to stage pixels under identity, so the
		// local bounds are the pixel size scaled back to twips.
		r := record.Rect{XMax: int32(def.Width) * 20, YMax: int32(def.Height) * 20}
		return transformRect(m, r), true
	case *swf.SpriteDef:
		if in.Child == nil || in.Child.FrameCount() == 0 {
			return record.Rect{}, false
		}
		child := &in.Child.Frames[frameIdx%in.Child.FrameCount()]
		var out record.Rect
		found := false
		for i := range child.Instances {
			r, ok := instanceBounds(&child.Instances[i], child.Index, m)
			if !ok {
				continue
			}
			if !found {
				out = r
				found = true
			} else {
				out = out.Union(r)
			}
		}
		return out, found
	}
	return record.Rect{}, false
}

// transformRect maps a rect through a matrix and returns the axis-aligned
// box of its four transformed corners.
func transformRect(m record.Matrix, r record.Rect) record.Rect {
	corners := [4][2]float64{
		{float64(r.XMin), float64(r.YMin)},
		{float64(r.XMax), float64(r.YMin)},
		{float64(r.XMax), float64(r.YMax)},
		{float64(r.XMin), float64(r.YMax)},
	}
	var out record.Rect
	for i, c := range corners {
		x, y := m.Apply(c[0], c[1])
		xi, yi := int32(x), int32(y)
		if i == 0 {
			out = record.Rect{XMin: xi, XMax: xi, YMin: yi, YMax: yi}
			continue
		}
		if xi < out.XMin {
			out.XMin = xi
		}
		if xi > out.XMax {
			out.XMax = xi
		}
		if yi < out.YMin {
			out.YMin = yi
		}
		if yi > out.YMax {
			out.YMax = yi
		}
	}
	return out
}
