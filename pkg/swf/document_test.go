package swf

import (
	"errors"
	"testing"
)

func TestParse_MinimalFixture(t *testing.T) {
	doc, err := Parse(minimalSWF())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Header.Signature != "FWS" || doc.Header.Version != 6 {
		t.Errorf("header = %+v", doc.Header)
	}
	if doc.Header.FrameRate != 12 {
		t.Errorf("FrameRate = %v, want 12", doc.Header.FrameRate)
	}
	if doc.Header.FrameCount != 1 {
		t.Errorf("FrameCount = %d, want 1", doc.Header.FrameCount)
	}
	if doc.Header.FrameSize.PixelWidth() != 20 {
		t.Errorf("frame width = %v px, want 20", doc.Header.FrameSize.PixelWidth())
	}

	def, ok := doc.Character(1)
	if !ok {
		t.Fatal("character 1 not in dictionary")
	}
	shape, ok := def.(*ShapeDef)
	if !ok {
		t.Fatalf("character 1 is %T, want *ShapeDef", def)
	}
	if shape.Bounds.PixelWidth() != 20 || shape.Bounds.PixelHeight() != 20 {
		t.Errorf("bounds = %+v, want 20x20 px", shape.Bounds)
	}
	if len(shape.Groups) != 1 || len(shape.Groups[0].Edges) != 4 {
		t.Fatalf("decoded %d groups / %d edges, want 1 / 4",
			len(shape.Groups), len(shape.Groups[0].Edges))
	}

	// Timeline keeps the control tags: PlaceObject2 + ShowFrame.
	if len(doc.Tags) != 2 {
		t.Fatalf("timeline tags = %d, want 2", len(doc.Tags))
	}
	if doc.Tags[0].Code != TagPlaceObject2 || doc.Tags[1].Code != TagShowFrame {
		t.Errorf("timeline = %v, %v", doc.Tags[0].Code, doc.Tags[1].Code)
	}
}

func TestParse_CompressedBody(t *testing.T) {
	doc, err := Parse(buildCompressedSWF(minimalSWF()))
	if err != nil {
		t.Fatalf("Parse compressed: %v", err)
	}
	if !doc.Header.Compressed {
		t.Error("Compressed = false, want true")
	}
	if _, ok := doc.Character(1); !ok {
		t.Error("character 1 missing after decompression")
	}
}

func TestParse_BadSignature(t *testing.T) {
	if _, err := Parse([]byte("GIF89a..")); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Parse(GIF) = %v, want ErrBadSignature", err)
	}
	if _, err := Parse([]byte("FW")); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Parse(short) = %v, want ErrBadSignature", err)
	}
}

func TestParse_LZMARejected(t *testing.T) {
	raw := minimalSWF()
	raw[0] = 'Z'
	if _, err := Parse(raw); !errors.Is(err, ErrUnsupportedCompression) {
		t.Errorf("Parse(ZWS) = %v, want ErrUnsupportedCompression", err)
	}
}

func TestParse_UnknownTagRetainedOpaque(t *testing.T) {
	raw := buildSWF(1, func(w *bitWriter) {
		writeTag(w, TagCode(777), []byte{1, 2, 3, 4})
		writeTag(w, TagDefineShape, unitSquareShapeBody(1))
		writeTag(w, TagShowFrame, nil)
	})
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Diag.UnsupportedTags[TagCode(777)] != 1 {
		t.Errorf("unsupported count = %d, want 1", doc.Diag.UnsupportedTags[TagCode(777)])
	}
	// The unknown tag must not block later tags.
	if _, ok := doc.Character(1); !ok {
		t.Error("definition after unknown tag was lost")
	}
	// And its bytes are retained on the timeline.
	found := false
	for _, tag := range doc.Tags {
		if tag.Code == TagCode(777) && len(tag.Body) == 4 {
			found = true
		}
	}
	if !found {
		t.Error("unknown tag not retained opaque on the timeline")
	}
}

func TestParse_CorruptTagSkipped(t *testing.T) {
	raw := buildSWF(1, func(w *bitWriter) {
		// DefineShape with a truncated body: decoding must fail for this tag
		// only.
		writeTag(w, TagDefineShape, []byte{0x05, 0x00})
		writeTag(w, TagDefineShape, unitSquareShapeBody(2))
		writeTag(w, TagShowFrame, nil)
	})
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Diag.TagErrors) != 1 {
		t.Fatalf("TagErrors = %d, want 1", len(doc.Diag.TagErrors))
	}
	if doc.Diag.TagErrors[0].Code != TagDefineShape {
		t.Errorf("TagError code = %v", doc.Diag.TagErrors[0].Code)
	}
	if _, ok := doc.Character(2); !ok {
		t.Error("sibling definition lost after corrupt tag")
	}
}

func TestParse_RedefinitionFirstWins(t *testing.T) {
	first := unitSquareShapeBody(5)
	second := unitSquareShapeBody(5)
	// Make the second definition green so we can tell them apart. Byte 13 is
	// the red channel of the first fill style, byte 14 the green.
	second[13] = 0x00
	second[14] = 0xFF
	raw := buildSWF(1, func(w *bitWriter) {
		writeTag(w, TagDefineShape, first)
		writeTag(w, TagDefineShape, second)
		writeTag(w, TagShowFrame, nil)
	})
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Diag.Redefinitions != 1 {
		t.Errorf("Redefinitions = %d, want 1", doc.Diag.Redefinitions)
	}
	shape := mustShape(t, doc, 5)
	if shape.Groups[0].FillStyles[0].Color.R != 0xFF {
		t.Error("redefinition replaced the first definition")
	}
}

func TestParse_SpriteNestedTimeline(t *testing.T) {
	var sprite bitWriter
	sprite.u16(10) // sprite id
	sprite.u16(2)  // frame count
	writeTag(&sprite, TagPlaceObject2, place2Body(1, 1))
	writeTag(&sprite, TagShowFrame, nil)
	writeTag(&sprite, TagShowFrame, nil)
	writeTag(&sprite, TagEnd, nil)

	raw := buildSWF(1, func(w *bitWriter) {
		writeTag(w, TagDefineShape, unitSquareShapeBody(1))
		writeTag(w, TagDefineSprite, sprite.bytes())
		writeTag(w, TagPlaceObject2, place2Body(10, 1))
		writeTag(w, TagShowFrame, nil)
	})
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def, ok := doc.Character(10)
	if !ok {
		t.Fatal("sprite not in dictionary")
	}
	sp, ok := def.(*SpriteDef)
	if !ok {
		t.Fatalf("character 10 is %T, want *SpriteDef", def)
	}
	if sp.FrameCount != 2 {
		t.Errorf("sprite FrameCount = %d, want 2", sp.FrameCount)
	}
	if len(sp.Tags) != 3 {
		t.Errorf("sprite timeline tags = %d, want 3", len(sp.Tags))
	}
}

func TestParse_ExportAssets(t *testing.T) {
	var exp bitWriter
	exp.u16(1)
	exp.u16(1)
	exp.str("square")
	raw := buildSWF(1, func(w *bitWriter) {
		writeTag(w, TagDefineShape, unitSquareShapeBody(1))
		writeTag(w, TagExportAssets, exp.bytes())
		writeTag(w, TagShowFrame, nil)
	})
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def, ok := doc.ExportedCharacter("square")
	if !ok {
		t.Fatal("ExportedCharacter(square) not found")
	}
	if def.CharacterID() != 1 {
		t.Errorf("exported id = %d, want 1", def.CharacterID())
	}
	name, ok := doc.ExportName(1)
	if !ok || name != "square" {
		t.Errorf("ExportName(1) = %q, %v", name, ok)
	}
}

func TestParse_SetBackgroundColor(t *testing.T) {
	raw := buildSWF(1, func(w *bitWriter) {
		writeTag(w, TagSetBackgroundColor, []byte{0x11, 0x22, 0x33})
		writeTag(w, TagShowFrame, nil)
	})
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.BackgroundColor.R != 0x11 || doc.BackgroundColor.B != 0x33 {
		t.Errorf("BackgroundColor = %+v", doc.BackgroundColor)
	}
}

func TestParse_MorphShape2FocalGradient(t *testing.T) {
	// Styles and start edges, built separately so the end-edges offset is
	// simply their total length.
	var s bitWriter
	s.u8(1)    // one fill style
	s.u8(0x13) // focal radial gradient
	s.identityMatrix()
	s.identityMatrix() // end matrix
	s.u8(2)            // two stop pairs
	for _, stop := range []struct{ ratio, r uint8 }{{0, 0xFF}, {255, 0x00}} {
		s.u8(stop.ratio)
		s.u8(stop.r)
		s.u8(0x00)
		s.u8(0x00)
		s.u8(0xFF)
		s.u8(stop.ratio) // end ratio
		s.u8(0x00)
		s.u8(0x00)
		s.u8(0xFF)
		s.u8(0xFF)
	}
	s.u16(0x0080) // start focal point 0.5 in 8.8 fixed
	s.u16(0x0000) // end focal point
	s.u8(0)       // no line styles
	s.ub(1, 4)    // fill index bits
	s.ub(0, 4)
	s.flag(false)
	s.ub(0b00101, 5) // moveTo + fill1
	s.ub(0, 5)
	s.ub(1, 1)
	s.flag(true) // one straight horizontal edge
	s.flag(true)
	s.ub(8, 4)
	s.flag(false)
	s.flag(false)
	s.sb(400, 10)
	s.flag(false)
	s.ub(0, 5)
	s.align()

	var body bitWriter
	body.u16(3)
	body.rect(0, 400, 0, 400) // start bounds
	body.rect(0, 400, 0, 400) // end bounds
	body.rect(0, 400, 0, 400) // start edge bounds
	body.rect(0, 400, 0, 400) // end edge bounds
	body.u8(0)                // flags
	body.u32(uint32(len(s.bytes())))
	for _, b := range s.bytes() {
		body.u8(b)
	}

	raw := buildSWF(1, func(w *bitWriter) {
		writeTag(w, TagDefineMorphShape2, body.bytes())
		writeTag(w, TagShowFrame, nil)
	})
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Diag.TagErrors) != 0 {
		t.Fatalf("TagErrors = %v", doc.Diag.TagErrors)
	}
	def, ok := doc.Character(3)
	if !ok {
		t.Fatal("morph shape not in dictionary")
	}
	m, ok := def.(*MorphShapeDef)
	if !ok {
		t.Fatalf("character 3 is %T, want *MorphShapeDef", def)
	}
	if len(m.Groups) == 0 || len(m.Groups[0].FillStyles) != 1 {
		t.Fatalf("groups = %d, want 1 group with 1 fill", len(m.Groups))
	}
	g := m.Groups[0].FillStyles[0].Gradient
	if g == nil {
		t.Fatal("focal fill has no gradient")
	}
	if len(g.Records) != 2 {
		t.Errorf("gradient stops = %d, want 2", len(g.Records))
	}
	if g.FocalPoint != 0.5 {
		t.Errorf("FocalPoint = %v, want 0.5", g.FocalPoint)
	}
}

func TestParse_UndecodedDefinitionRetainedAsRaw(t *testing.T) {
	// DefineEditText has no decoder, but its id must still enter the
	// dictionary so placements referencing it are not dangling.
	var text bitWriter
	text.u16(7) // character id
	text.rect(0, 100, 0, 100)
	text.u16(0) // flags
	raw := buildSWF(1, func(w *bitWriter) {
		writeTag(w, TagDefineEditText, text.bytes())
		writeTag(w, TagPlaceObject2, place2Body(7, 1))
		writeTag(w, TagShowFrame, nil)
	})
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def, ok := doc.Character(7)
	if !ok {
		t.Fatal("undecoded definition not in dictionary")
	}
	rd, ok := def.(*RawDef)
	if !ok {
		t.Fatalf("character 7 is %T, want *RawDef", def)
	}
	if rd.Kind() != "raw" {
		t.Errorf("Kind() = %q, want raw", rd.Kind())
	}
	if rd.Tag.Code != TagDefineEditText {
		t.Errorf("retained tag code = %v, want DefineEditText", rd.Tag.Code)
	}
	if doc.Diag.UnsupportedTags[TagDefineEditText] != 1 {
		t.Errorf("unsupported count = %d, want 1", doc.Diag.UnsupportedTags[TagDefineEditText])
	}
	// A retained definition is dictionary-only, never a timeline tag.
	for _, tag := range doc.Tags {
		if tag.Code == TagDefineEditText {
			t.Error("retained definition leaked onto the timeline")
		}
	}
}

func TestTagCode_String(t *testing.T) {
	if got := TagDefineShape.String(); got != "DefineShape" {
		t.Errorf("String() = %q", got)
	}
	if got := TagCode(999).String(); got != "Unknown(999)" {
		t.Errorf("String() = %q", got)
	}
}

func mustShape(t *testing.T, doc *Document, id CharacterID) *ShapeDef {
	t.Helper()
	def, ok := doc.Character(id)
	if !ok {
		t.Fatalf("character %d not found", id)
	}
	shape, ok := def.(*ShapeDef)
	if !ok {
		t.Fatalf("character %d is %T, want *ShapeDef", id, def)
	}
	return shape
}
