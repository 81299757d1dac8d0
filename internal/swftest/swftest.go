// Package swftest assembles movie fixtures for tests outside pkg/swf.
// Fixtures are written bit-for-bit the way an encoder would emit them, so
// downstream packages exercise real tag layouts instead of pre-parsed
// structures.
package swftest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
)

// Writer accumulates MSB-first bit fields and little-endian byte fields.
type Writer struct {
	buf  []byte
	nbit uint
}

// UB writes an n-bit unsigned field.
func (w *Writer) UB(v uint32, n uint) {
	for i := uint(0); i < n; i++ {
		if w.nbit%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		bit := (v >> (n - 1 - i)) & 1
		w.buf[len(w.buf)-1] |= byte(bit) << (7 - w.nbit%8)
		w.nbit++
	}
}

// SB writes an n-bit signed field.
func (w *Writer) SB(v int32, n uint) { w.UB(uint32(v)&uint32(uint64(1)<<n-1), n) }

// Flag writes a single bit.
func (w *Writer) Flag(b bool) {
	if b {
		w.UB(1, 1)
	} else {
		w.UB(0, 1)
	}
}

// Align pads to the next byte boundary.
func (w *Writer) Align() {
	if w.nbit%8 != 0 {
		w.nbit += 8 - w.nbit%8
	}
}

// U8 writes a byte, aligning first.
func (w *Writer) U8(v uint8) {
	w.Align()
	w.buf = append(w.buf, v)
	w.nbit += 8
}

// U16 writes a little-endian 16-bit field.
func (w *Writer) U16(v uint16) {
	w.U8(uint8(v))
	w.U8(uint8(v >> 8))
}

// U32 writes a little-endian 32-bit field.
func (w *Writer) U32(v uint32) {
	w.U16(uint16(v))
	w.U16(uint16(v >> 16))
}

// Str writes a NUL-terminated string.
func (w *Writer) Str(s string) {
	w.Align()
	for i := 0; i < len(s); i++ {
		w.U8(s[i])
	}
	w.U8(0)
}

// Rect writes a rectangle record with 15-bit fields.
func (w *Writer) Rect(xmin, xmax, ymin, ymax int32) {
	w.UB(15, 5)
	for _, v := range []int32{xmin, xmax, ymin, ymax} {
		w.SB(v, 15)
	}
	w.Align()
}

// IdentityMatrix writes a matrix record with every presence bit clear.
func (w *Writer) IdentityMatrix() {
	w.Flag(false)
	w.Flag(false)
	w.UB(0, 5)
	w.Align()
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Tag emits a tag header plus body, using the long form when needed.
// code is the raw tag code.
func (w *Writer) Tag(code uint16, body []byte) {
	w.Align()
	if len(body) < 0x3F {
		w.U16(code<<6 | uint16(len(body)))
	} else {
		w.U16(code<<6 | 0x3F)
		w.U32(uint32(len(body)))
	}
	for _, b := range body {
		w.U8(b)
	}
}

// Tag codes the builders emit. Kept here so fixture code reads without a
// swf import cycle.
const (
	TagEnd           = 0
	TagShowFrame     = 1
	TagDefineShape   = 2
	TagDoAction      = 12
	TagPlaceObject2  = 26
	TagRemoveObject2 = 28
	TagDefineSprite  = 39
	TagFrameLabel    = 43
)

// ShapeBody builds a DefineShape body: a solid-fill square of side twips,
// four axis-aligned edges starting at the origin.
func ShapeBody(id uint16, side int32, rgb [3]byte) []byte {
	var w Writer
	w.U16(id)
	w.Rect(0, side, 0, side)
	w.U8(1) // fill styles
	w.U8(0x00)
	w.U8(rgb[0])
	w.U8(rgb[1])
	w.U8(rgb[2])
	w.U8(0) // line styles
	w.UB(1, 4)
	w.UB(0, 4)
	w.Flag(false)
	w.UB(0b00101, 5) // moveTo + fill1
	w.UB(0, 5)
	w.UB(1, 1)
	nbits := bitsFor(side)
	for _, e := range []struct {
		delta    int32
		vertical bool
	}{{side, false}, {side, true}, {-side, false}, {-side, true}} {
		w.Flag(true)
		w.Flag(true)
		w.UB(nbits-2, 4)
		w.Flag(false)
		w.Flag(e.vertical)
		w.SB(e.delta, uint(nbits))
	}
	w.Flag(false)
	w.UB(0, 5)
	w.Align()
	return w.Bytes()
}

func bitsFor(v int32) uint32 {
	n := uint32(2)
	for int64(1)<<(n-1) <= int64(v) {
		n++
	}
	return n
}

// PlaceBody builds a minimal PlaceObject2 body placing id at depth.
func PlaceBody(id, depth uint16) []byte {
	var w Writer
	w.U8(0x02) // hasCharacter
	w.U16(depth)
	w.U16(id)
	return w.Bytes()
}

// MoveBody builds a PlaceObject2 move edit setting a translate-only matrix
// at depth.
func MoveBody(depth uint16, tx, ty int32) []byte {
	var w Writer
	w.U8(0x05) // move + hasMatrix
	w.U16(depth)
	w.Flag(false)
	w.Flag(false)
	nbits := uint32(18)
	w.UB(nbits, 5)
	w.SB(tx, uint(nbits))
	w.SB(ty, uint(nbits))
	w.Align()
	return w.Bytes()
}

// RemoveBody builds a RemoveObject2 body clearing depth.
func RemoveBody(depth uint16) []byte {
	var w Writer
	w.U16(depth)
	return w.Bytes()
}

// LabelBody builds a FrameLabel body.
func LabelBody(name string) []byte {
	var w Writer
	w.Str(name)
	return w.Bytes()
}

// Actions assembles a DoAction body from raw action records and appends the
// End action.
type Actions struct {
	buf []byte
}

// Short appends a one-byte action.
func (a *Actions) Short(op byte) *Actions {
	a.buf = append(a.buf, op)
	return a
}

// Long appends a length-prefixed action.
func (a *Actions) Long(op byte, payload ...byte) *Actions {
	a.buf = append(a.buf, op)
	a.buf = binary.LittleEndian.AppendUint16(a.buf, uint16(len(payload)))
	a.buf = append(a.buf, payload...)
	return a
}

// Stop appends a Stop action.
func (a *Actions) Stop() *Actions { return a.Short(0x07) }

// Play appends a Play action.
func (a *Actions) Play() *Actions { return a.Short(0x06) }

// GotoFrame appends a GotoFrame action.
func (a *Actions) GotoFrame(n uint16) *Actions {
	return a.Long(0x81, byte(n), byte(n>>8))
}

// GotoLabel appends a GotoLabel action.
func (a *Actions) GotoLabel(name string) *Actions {
	return a.Long(0x8C, append([]byte(name), 0)...)
}

// Body terminates the sequence and returns the DoAction body.
func (a *Actions) Body() []byte { return append(a.buf, 0x00) }

// SpriteBody wraps nested tags into a DefineSprite body.
func SpriteBody(id, frameCount uint16, tags func(w *Writer)) []byte {
	var w Writer
	w.U16(id)
	w.U16(frameCount)
	tags(&w)
	w.Tag(TagEnd, nil)
	return w.Bytes()
}

// Build wraps tags into a complete uncompressed movie. The stage is 20x20
// px and the frame rate 12 fps.
func Build(frameCount uint16, tags func(w *Writer)) []byte {
	var body Writer
	body.Rect(0, 400, 0, 400)
	body.U16(12 << 8)
	body.U16(frameCount)
	tags(&body)
	body.Tag(TagEnd, nil)

	header := []byte{'F', 'W', 'S', 6}
	total := uint32(len(header) + 4 + len(body.Bytes()))
	header = append(header,
		byte(total), byte(total>>8), byte(total>>16), byte(total>>24))
	return append(header, body.Bytes()...)
}

// BuildCompressed zlib-compresses the body of an uncompressed fixture.
func BuildCompressed(raw []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(raw[8:])
	_ = zw.Close()
	out := append([]byte{'C', 'W', 'S'}, raw[3:8]...)
	return append(out, buf.Bytes()...)
}

// Minimal is the canonical small fixture: DefineShape id=1 (20 px red
// square), PlaceObject2 at depth 1, one ShowFrame.
func Minimal() []byte {
	return Build(1, func(w *Writer) {
		w.Tag(TagDefineShape, ShapeBody(1, 400, [3]byte{0xFF, 0, 0}))
		w.Tag(TagPlaceObject2, PlaceBody(1, 1))
		w.Tag(TagShowFrame, nil)
	})
}
