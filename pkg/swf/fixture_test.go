package swf

import (
	"bytes"
	"compress/zlib"
)

// Test fixture builders. Fixtures are assembled bit-for-bit the way an SWF
// encoder would emit them so decode tests exercise real layouts.

type bitWriter struct {
	buf  []byte
	nbit uint
}

func (w *bitWriter) ub(v uint32, n uint) {
	for i := uint(0); i < n; i++ {
		if w.nbit%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		bit := (v >> (n - 1 - i)) & 1
		w.buf[len(w.buf)-1] |= byte(bit) << (7 - w.nbit%8)
		w.nbit++
	}
}

func (w *bitWriter) sb(v int32, n uint) { w.ub(uint32(v)&uint32(uint64(1)<<n-1), n) }

func (w *bitWriter) flag(b bool) {
	if b {
		w.ub(1, 1)
	} else {
		w.ub(0, 1)
	}
}

func (w *bitWriter) align() {
	if w.nbit%8 != 0 {
		w.nbit += 8 - w.nbit%8
	}
}

func (w *bitWriter) u8(v uint8) {
	w.align()
	w.buf = append(w.buf, v)
	w.nbit += 8
}

func (w *bitWriter) u16(v uint16) {
	w.u8(uint8(v))
	w.u8(uint8(v >> 8))
}

func (w *bitWriter) u32(v uint32) {
	w.u16(uint16(v))
	w.u16(uint16(v >> 16))
}

func (w *bitWriter) str(s string) {
	w.align()
	for i := 0; i < len(s); i++ {
		w.u8(s[i])
	}
	w.u8(0)
}

func (w *bitWriter) rect(xmin, xmax, ymin, ymax int32) {
	w.ub(15, 5)
	for _, v := range []int32{xmin, xmax, ymin, ymax} {
		w.sb(v, 15)
	}
	w.align()
}

func (w *bitWriter) identityMatrix() {
	w.flag(false)
	w.flag(false)
	w.ub(0, 5)
	w.align()
}

func (w *bitWriter) bytes() []byte { return w.buf }

// tag emits a tag header plus body, using the long form when needed.
func writeTag(w *bitWriter, code TagCode, body []byte) {
	w.align()
	if len(body) < 0x3F {
		w.u16(uint16(code)<<6 | uint16(len(body)))
	} else {
		w.u16(uint16(code)<<6 | 0x3F)
		w.u32(uint32(len(body)))
	}
	for _, b := range body {
		w.u8(b)
	}
}

// unitSquareShapeBody builds a DefineShape body: id, 20x20 px bounds, one
// solid red fill, four axis-aligned edges.
func unitSquareShapeBody(id uint16) []byte {
	var w bitWriter
	w.u16(id)
	w.rect(0, 400, 0, 400)
	w.u8(1) // fill styles
	w.u8(0x00)
	w.u8(0xFF)
	w.u8(0x00)
	w.u8(0x00)
	w.u8(0) // line styles
	w.ub(1, 4)
	w.ub(0, 4)
	w.flag(false)
	w.ub(0b00101, 5) // moveTo + fill1
	w.ub(0, 5)
	w.ub(1, 1)
	for _, e := range []struct {
		delta    int32
		vertical bool
	}{{400, false}, {400, true}, {-400, false}, {-400, true}} {
		w.flag(true)
		w.flag(true)
		w.ub(8, 4)
		w.flag(false)
		w.flag(e.vertical)
		w.sb(e.delta, 10)
	}
	w.flag(false)
	w.ub(0, 5)
	w.align()
	return w.bytes()
}

// place2Body builds a minimal PlaceObject2 body placing id at depth.
func place2Body(id, depth uint16) []byte {
	var w bitWriter
	w.u8(0x02) // hasCharacter
	w.u16(depth)
	w.u16(id)
	return w.bytes()
}

// buildSWF wraps tag bodies into a complete uncompressed movie with the
// given frame count.
func buildSWF(frameCount uint16, tags func(w *bitWriter)) []byte {
	var body bitWriter
	body.rect(0, 400, 0, 400)
	body.u16(12 << 8) // 12 fps in 8.8 fixed
	body.u16(frameCount)
	tags(&body)
	writeTag(&body, TagEnd, nil)

	header := []byte{'F', 'W', 'S', 6}
	total := uint32(len(header) + 4 + len(body.bytes()))
	header = append(header,
		byte(total), byte(total>>8), byte(total>>16), byte(total>>24))
	return append(header, body.bytes()...)
}

// buildCompressedSWF zlib-compresses the body of an FWS fixture into a CWS
// file.
func buildCompressedSWF(raw []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(raw[8:])
	_ = zw.Close()
	out := append([]byte{'C', 'W', 'S'}, raw[3:8]...)
	return append(out, buf.Bytes()...)
}

// minimalSWF is the canonical 2-tag fixture: DefineShape id=1 (unit square),
// PlaceObject2 at depth 1, ShowFrame, End.
func minimalSWF() []byte {
	return buildSWF(1, func(w *bitWriter) {
		writeTag(w, TagDefineShape, unitSquareShapeBody(1))
		writeTag(w, TagPlaceObject2, place2Body(1, 1))
		writeTag(w, TagShowFrame, nil)
	})
}
