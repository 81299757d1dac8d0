// Package swf parses the SWF binary container into a document model:
// a header, a character dictionary, and per-timeline tag lists.
//
// Parsing is a single linear pass over the decompressed tag stream. Define
// tags populate the dictionary (first definition wins); control tags stay on
// the owning timeline and are decoded lazily by the timeline package. A tag
// whose body fails to decode aborts that tag only: the dispatcher records a
// diagnostic and continues with the next tag, so one corrupt or unsupported
// tag never blocks extraction of the rest of the file. Whole-file failure is
// reserved for header-level corruption.
package swf

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/halfdome/swfkit/pkg/swf/record"
)

// Document is a fully parsed SWF file. The dictionary is append-only during
// the parse pass and owned by the document for its lifetime.
type Document struct {
	Header          Header
	BackgroundColor record.Color

	// Tags is the main timeline's tag list (control tags only; define tags
	// are consumed into the dictionary).
	Tags []Tag

	dict    map[CharacterID]Definition
	order   []CharacterID // definition order, for stable listings
	exports map[string]CharacterID

	// Diag collects non-fatal decode diagnostics.
	Diag Diagnostics

	logger *log.Logger
}

// Diagnostics counts non-fatal events observed during the parse pass.
type Diagnostics struct {
	UnsupportedTags map[TagCode]int // opaque-retained tags by code
	TagErrors       []*TagError     // tags whose body failed to decode
	Redefinitions   int             // character ids defined more than once
}

// Option configures parsing.
type Option func(*Document)

// WithLogger attaches a logger for parse diagnostics. Without one,
// diagnostics are only collected, not logged.
func WithLogger(l *log.Logger) Option {
	return func(d *Document) { d.logger = l }
}

// Parse decodes an in-memory SWF file. The whole file must already be in
// memory; no I/O happens during decode.
func Parse(data []byte, opts ...Option) (*Document, error) {
	doc := &Document{
		dict:    make(map[CharacterID]Definition),
		exports: make(map[string]CharacterID),
		Diag:    Diagnostics{UnsupportedTags: make(map[TagCode]int)},
	}
	for _, opt := range opts {
		opt(doc)
	}

	h, c, base, err := readHeader(data)
	if err != nil {
		return nil, err
	}
	doc.Header = h

	tags, err := readTagList(c, base)
	if err != nil {
		// A truncated trailing tag is recoverable; everything read so far
		// stands.
		doc.note("truncated tag stream", "err", err)
	}
	doc.Tags = doc.ingest(tags)
	return doc, nil
}

// ingest walks a tag list, consuming define and export tags into the
// dictionary and returning the remaining control tags in order.
func (d *Document) ingest(tags []Tag) []Tag {
	timeline := make([]Tag, 0, len(tags))
	for _, t := range tags {
		switch t.Code {
		case TagDefineShape, TagDefineShape2, TagDefineShape3, TagDefineShape4,
			TagDefineSprite, TagDefineMorphShape, TagDefineMorphShape2,
			TagDefineBits, TagDefineBitsJPEG2, TagDefineBitsJPEG3,
			TagDefineBitsLossless, TagDefineBitsLossless2:
			if err := d.define(t); err != nil {
				d.recordTagError(t, err)
			}
		case TagExportAssets, TagSymbolClass:
			names, err := DecodeExportAssets(t)
			if err != nil {
				d.recordTagError(t, err)
				continue
			}
			for name, id := range names {
				d.exports[name] = id
			}
		case TagSetBackgroundColor:
			color, err := DecodeBackgroundColor(t)
			if err != nil {
				d.recordTagError(t, err)
				continue
			}
			d.BackgroundColor = color
		case TagJPEGTables, TagFileAttributes, TagDefineSceneAndFrameLabelData:
			// Recognized but irrelevant to the document model.
		case TagShowFrame, TagPlaceObject, TagPlaceObject2, TagPlaceObject3,
			TagRemoveObject, TagRemoveObject2, TagFrameLabel,
			TagDoAction, TagDoInitAction:
			timeline = append(timeline, t)
		default:
			if t.Code.definesCharacter() {
				if err := d.defineRaw(t); err != nil {
					d.recordTagError(t, err)
				}
				continue
			}
			d.Diag.UnsupportedTags[t.Code]++
			d.note("unsupported tag retained", "code", t.Code, "bytes", len(t.Body))
			timeline = append(timeline, t) // opaque, never a failure
		}
	}
	return timeline
}

// define decodes one definition tag into the dictionary.
func (d *Document) define(t Tag) error {
	def, err := decodeDefinition(t)
	if err != nil {
		return err
	}
	if sp, ok := def.(*SpriteDef); ok {
		// A sprite body is itself a tag stream; run it through the same
		// dispatcher so any nested define tags land in the shared dictionary
		// and only control tags stay on the sprite's timeline.
		sp.Tags = d.ingest(sp.Tags)
	}
	d.insert(def, t.Code)
	return nil
}

// defineRaw retains a definition tag that has no decoder. Only the leading
// character id is read; the body stays opaque. The id still resolves through
// the dictionary, so placements referencing it are not dangling.
func (d *Document) defineRaw(t Tag) error {
	c := t.Cursor()
	id, err := c.ReadU16()
	if err != nil {
		return err
	}
	d.Diag.UnsupportedTags[t.Code]++
	d.note("definition retained undecoded", "code", t.Code, "id", id)
	d.insert(&RawDef{ID: CharacterID(id), Tag: t}, t.Code)
	return nil
}

// insert adds def to the dictionary unless its id is already taken.
func (d *Document) insert(def Definition, code TagCode) {
	id := def.CharacterID()
	if _, exists := d.dict[id]; exists {
		// First definition wins.
		d.Diag.Redefinitions++
		d.note("character redefined, keeping first definition", "id", id, "tag", code)
		return
	}
	d.dict[id] = def
	d.order = append(d.order, id)
}

func (d *Document) recordTagError(t Tag, err error) {
	te := &TagError{Code: t.Code, Offset: t.BodyOffset, Err: err}
	d.Diag.TagErrors = append(d.Diag.TagErrors, te)
	d.note("tag decode failed, skipping", "tag", t.Code, "offset", t.BodyOffset, "err", err)
}

func (d *Document) note(msg string, kv ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, kv...)
	}
}

// =============================================================================
// Dictionary Access
// =============================================================================

// Character returns the definition for id, if present.
func (d *Document) Character(id CharacterID) (Definition, bool) {
	def, ok := d.dict[id]
	return def, ok
}

// ExportedCharacter resolves an ExportAssets/SymbolClass name to its
// definition.
func (d *Document) ExportedCharacter(name string) (Definition, bool) {
	id, ok := d.exports[name]
	if !ok {
		return nil, false
	}
	return d.Character(id)
}

// ExportName returns the exported name of id, if any.
func (d *Document) ExportName(id CharacterID) (string, bool) {
	for name, eid := range d.exports {
		if eid == id {
			return name, true
		}
	}
	return "", false
}

// CharacterIDs lists all defined ids in definition order.
func (d *Document) CharacterIDs() []CharacterID {
	out := make([]CharacterID, len(d.order))
	copy(out, d.order)
	return out
}

// =============================================================================
// Definition Decoders
// =============================================================================

func decodeDefinition(t Tag) (Definition, error) {
	switch t.Code {
	case TagDefineShape, TagDefineShape2, TagDefineShape3, TagDefineShape4:
		return decodeShape(t)
	case TagDefineSprite:
		return decodeSprite(t)
	case TagDefineMorphShape, TagDefineMorphShape2:
		return decodeMorphShape(t)
	case TagDefineBits, TagDefineBitsJPEG2, TagDefineBitsJPEG3:
		return decodeJPEGBitmap(t)
	case TagDefineBitsLossless, TagDefineBitsLossless2:
		return decodeLosslessBitmap(t)
	}
	return nil, invalidf(t.Code, "not a definition tag")
}

func decodeShape(t Tag) (*ShapeDef, error) {
	c := t.Cursor()
	ver := t.Code.shapeVersion()
	id, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	bounds, err := record.ReadRect(c)
	if err != nil {
		return nil, fmt.Errorf("bounds: %w", err)
	}
	if ver == 4 {
		// Edge bounds plus the winding/scaling flag byte.
		if _, err := record.ReadRect(c); err != nil {
			return nil, fmt.Errorf("edge bounds: %w", err)
		}
		if _, err := c.ReadU8(); err != nil {
			return nil, err
		}
	}
	groups, err := record.ReadShapeWithStyle(c, ver)
	if err != nil {
		return nil, fmt.Errorf("shape records: %w", err)
	}
	return &ShapeDef{ID: CharacterID(id), Version: ver, Bounds: bounds, Groups: groups}, nil
}

// decodeSprite reads a nested timeline with the same tag reader used for
// the top level. The caller runs the result through the dispatcher again to
// hoist any nested definitions.
func decodeSprite(t Tag) (*SpriteDef, error) {
	c := t.Cursor()
	id, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	frames, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	inner, err := c.SubCursor(c.Offset(), c.Remaining())
	if err != nil {
		return nil, err
	}
	tags, err := readTagList(inner, t.BodyOffset+4)
	if err != nil {
		return nil, fmt.Errorf("nested tags: %w", err)
	}
	return &SpriteDef{ID: CharacterID(id), FrameCount: frames, Tags: tags}, nil
}

func decodeJPEGBitmap(t Tag) (*BitmapDef, error) {
	c := t.Cursor()
	id, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	b := &BitmapDef{ID: CharacterID(id), Format: BitmapJPEG}
	if t.Code == TagDefineBitsJPEG3 {
		b.Format = BitmapJPEG3
		alphaOff, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		data, err := c.ReadBytes(int(alphaOff))
		if err != nil {
			return nil, fmt.Errorf("image data: %w", err)
		}
		b.Data = data
		b.AlphaData = c.Rest()
		return b, nil
	}
	b.Data = c.Rest()
	return b, nil
}

func decodeLosslessBitmap(t Tag) (*BitmapDef, error) {
	c := t.Cursor()
	id, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	format, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	w, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	h, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	if format == 3 {
		if _, err := c.ReadU8(); err != nil { // color table size
			return nil, err
		}
	}
	return &BitmapDef{
		ID:             CharacterID(id),
		Format:         BitmapLossless,
		LosslessFormat: format,
		Width:          int(w),
		Height:         int(h),
		Data:           c.Rest(),
	}, nil
}
