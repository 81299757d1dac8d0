package dag

import (
	"github.com/halfdome/swfkit/pkg/swf"
	"github.com/halfdome/swfkit/pkg/swf/record"
)

// FromDocument derives the character reference graph of a parsed document:
// one node per dictionary entry plus the root timeline, one edge per
// distinct placement or bitmap fill reference. Placements of undefined
// characters are skipped; the timeline layer diagnoses those.
func FromDocument(doc *swf.Document) *Graph {
	g := New(Metadata{"frames": int(doc.Header.FrameCount)})

	g.AddNode(Node{ID: RootID, Kind: "timeline", Label: "main timeline"})
	for _, id := range doc.CharacterIDs() {
		def, _ := doc.Character(id)
		n := Node{ID: uint16(id), Kind: def.Kind()}
		if name, ok := doc.ExportName(id); ok {
			n.Label = name
			n.Meta = Metadata{"export": name}
		}
		g.AddNode(n)
	}

	type key struct {
		from, to uint16
		kind     EdgeKind
	}
	seen := make(map[key]bool)
	addEdge := func(from, to uint16, kind EdgeKind) {
		k := key{from, to, kind}
		if seen[k] {
			return
		}
		seen[k] = true
		g.AddEdge(Edge{From: from, To: to, Kind: kind})
	}

	placements := func(owner uint16, tags []swf.Tag) {
		for _, t := range tags {
			switch t.Code {
			case swf.TagPlaceObject, swf.TagPlaceObject2, swf.TagPlaceObject3:
				po, err := swf.DecodePlaceObject(t)
				if err != nil || !po.HasCharacter {
					continue
				}
				addEdge(owner, uint16(po.CharacterID), EdgePlacement)
			}
		}
	}

	placements(RootID, doc.Tags)
	for _, id := range doc.CharacterIDs() {
		def, _ := doc.Character(id)
		switch d := def.(type) {
		case *swf.SpriteDef:
			placements(uint16(id), d.Tags)
		case *swf.ShapeDef:
			bitmapFills(uint16(id), d.Groups, addEdge)
		case *swf.MorphShapeDef:
			bitmapFills(uint16(id), d.Groups, addEdge)
		}
	}
	return g
}

func bitmapFills(owner uint16, groups []record.StyleGroup, addEdge func(uint16, uint16, EdgeKind)) {
	for _, grp := range groups {
		for _, fs := range grp.FillStyles {
			if fs.Type.IsBitmap() && fs.BitmapID != 0xFFFF {
				addEdge(owner, fs.BitmapID, EdgeFill)
			}
		}
	}
}
