// Package shape converts decoded edge streams into per-style path segments
// ready for drawing. Edges arrive in absolute twips annotated with the fill
// and line styles active when they were emitted; this package groups them by
// style, chains them into open or closed paths, and elevates quadratic
// curves to cubic form. Overlapping or self-intersecting fill regions pass
// through unresolved; fill-rule handling belongs to the renderer.
package shape

import (
	"math"

	"github.com/halfdome/swfkit/pkg/swf/record"
)

// Segment is one cubic path segment in twips. Straight edges keep Curved
// false and ignore the control points.
type Segment struct {
	Start, End record.Point
	C1, C2     record.Point
	Curved     bool
}

// Path is a chain of connected segments.
type Path struct {
	Segments []Segment
	// Closed reports that the last segment ends where the first begins.
	Closed bool
}

// Start returns the first point of the path.
func (p *Path) Start() record.Point {
	if len(p.Segments) == 0 {
		return record.Point{}
	}
	return p.Segments[0].Start
}

// FillPath is every path drawn under one fill style.
type FillPath struct {
	Style record.FillStyle
	Paths []Path
}

// StrokePath is every path drawn under one line style.
type StrokePath struct {
	Style record.LineStyle
	Paths []Path
}

// Drawing is a shape reduced to renderable per-style paths. Fills precede
// strokes in paint order, matching player compositing.
type Drawing struct {
	// Bounds is the declared shape bounds in twips.
	Bounds  record.Rect
	Fills   []FillPath
	Strokes []StrokePath
}

// PixelBounds returns the drawing bounds converted to pixels.
func (d *Drawing) PixelBounds() (x, y, w, h float64) {
	return record.Twips(d.Bounds.XMin), record.Twips(d.Bounds.YMin),
		d.Bounds.PixelWidth(), d.Bounds.PixelHeight()
}

// FromShape builds a Drawing from a decoded shape. Style groups keep their
// stream order, and styles within a group keep their 1-based numbering
// order, so output is deterministic for a given shape.
func FromShape(s *record.Shape) *Drawing {
	d := &Drawing{Bounds: s.Bounds}
	for _, g := range s.Groups {
		d.appendGroup(g)
	}
	return d
}

func (d *Drawing) appendGroup(g record.StyleGroup) {
	for styleIdx := range g.FillStyles {
		edges := fillEdges(g.Edges, styleIdx+1)
		if len(edges) == 0 {
			continue
		}
		d.Fills = append(d.Fills, FillPath{
			Style: g.FillStyles[styleIdx],
			Paths: chain(edges),
		})
	}
	for styleIdx := range g.LineStyles {
		var edges []record.Edge
		for _, e := range g.Edges {
			if e.Line == styleIdx+1 {
				edges = append(edges, e)
			}
		}
		if len(edges) == 0 {
			continue
		}
		d.Strokes = append(d.Strokes, StrokePath{
			Style: g.LineStyles[styleIdx],
			Paths: chain(edges),
		})
	}
}

// fillEdges collects the edges bounding fill style idx. An edge with the
// fill on its right side (fill1) runs forward; one with the fill on its
// left (fill0) is reversed so every collected edge winds the same way
// around the region.
func fillEdges(edges []record.Edge, idx int) []record.Edge {
	var out []record.Edge
	for _, e := range edges {
		if e.Fill1 == idx {
			out = append(out, e)
		}
		if e.Fill0 == idx {
			out = append(out, reverse(e))
		}
	}
	return out
}

func reverse(e record.Edge) record.Edge {
	e.Start, e.End = e.End, e.Start
	return e
}

// chain links edges into continuous paths. Each path starts from the first
// unused edge and greedily follows an edge whose start matches the current
// end; when none matches the path ends, closed if it returned to its
// origin.
func chain(edges []record.Edge) []Path {
	used := make([]bool, len(edges))
	byStart := make(map[record.Point][]int)
	for i, e := range edges {
		byStart[e.Start] = append(byStart[e.Start], i)
	}

	take := func(at record.Point) (record.Edge, bool) {
		for _, i := range byStart[at] {
			if !used[i] {
				used[i] = true
				return edges[i], true
			}
		}
		return record.Edge{}, false
	}

	var paths []Path
	for first := range edges {
		if used[first] {
			continue
		}
		used[first] = true
		start := edges[first].Start
		cur := edges[first]

		p := Path{Segments: []Segment{toCubic(cur)}}
		for {
			next, ok := take(cur.End)
			if !ok {
				break
			}
			p.Segments = append(p.Segments, toCubic(next))
			cur = next
			if cur.End == start {
				break
			}
		}
		p.Closed = cur.End == start
		paths = append(paths, p)
	}
	return paths
}

// toCubic elevates a quadratic edge to cubic form: each cubic control point
// sits two thirds of the way from its endpoint to the quadratic control.
// The curve is unchanged, no precision is lost beyond twip rounding.
func toCubic(e record.Edge) Segment {
	s := Segment{Start: e.Start, End: e.End, Curved: e.Curved}
	if !e.Curved {
		return s
	}
	s.C1 = record.Point{
		X: e.Start.X + int32(math.Round(2.0/3.0*float64(e.Control.X-e.Start.X))),
		Y: e.Start.Y + int32(math.Round(2.0/3.0*float64(e.Control.Y-e.Start.Y))),
	}
	s.C2 = record.Point{
		X: e.End.X + int32(math.Round(2.0/3.0*float64(e.Control.X-e.End.X))),
		Y: e.End.Y + int32(math.Round(2.0/3.0*float64(e.Control.Y-e.End.Y))),
	}
	return s
}
