// Package bitio implements the bounded bit- and byte-level reader that all
// SWF record decoders are built on.
//
// SWF packs many structures as sequences of variable-width bit fields that do
// not respect byte boundaries. A Cursor tracks both a byte offset and a bit
// offset into an in-memory buffer; bit reads advance the bit offset, and
// byte-aligned reads implicitly discard any partially consumed byte. There is
// no backtracking: re-reading a region requires a fresh cursor created with
// [Cursor.SubCursor].
//
// Every read that would pass the end of the buffer fails with a
// [*BoundsError] wrapping [ErrBounds]; a short read never silently truncates.
package bitio

import (
	"errors"
	"fmt"
)

// ErrBounds is the sentinel for any read past the end of the buffer.
// Wrap checks should use errors.Is(err, ErrBounds).
var ErrBounds = errors.New("read past end of data")

// BoundsError reports a failed read with the cursor position and the amount
// requested, in bits.
type BoundsError struct {
	Off  int // byte offset at the time of the read
	Bit  uint8
	Need int // bits requested
	Have int // bits remaining
}

// Error returns a description including offsets so corrupt tags can be
// located in the original file.
func (e *BoundsError) Error() string {
	return fmt.Sprintf("offset %d.%d: need %d bits, %d remain: %v", e.Off, e.Bit, e.Need, e.Have, ErrBounds)
}

// Unwrap returns ErrBounds.
func (e *BoundsError) Unwrap() error { return ErrBounds }

// Cursor reads bit- and byte-level fields from a byte slice.
// The zero value is an empty cursor; use [New] or [Cursor.SubCursor].
// Cursor is not safe for concurrent use.
type Cursor struct {
	buf []byte
	off int   // current byte offset
	bit uint8 // bits of buf[off] already consumed, in [0,8)
}

// New creates a cursor over buf starting at offset zero.
// The cursor does not copy buf; callers must not mutate it while reading.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// SubCursor returns a fresh byte-aligned cursor over buf[off:off+n].
// It is the only way to re-read a region: cursors have no seek or rewind.
func (c *Cursor) SubCursor(off, n int) (*Cursor, error) {
	if off < 0 || n < 0 || off+n > len(c.buf) {
		return nil, &BoundsError{Off: off, Need: n * 8, Have: (len(c.buf) - off) * 8}
	}
	return &Cursor{buf: c.buf[off : off+n]}, nil
}

// Offset returns the current byte offset. A partially consumed byte counts
// as already passed for the purpose of [Cursor.SubCursor] bookkeeping.
func (c *Cursor) Offset() int {
	if c.bit > 0 {
		return c.off + 1
	}
	return c.off
}

// Remaining returns the number of whole bytes left, counting a partially
// consumed byte as used up.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.Offset()
}

// remainingBits returns the exact number of unread bits.
func (c *Cursor) remainingBits() int {
	return (len(c.buf)-c.off)*8 - int(c.bit)
}

// boundsErr builds the failure for a read of need bits at the current position.
func (c *Cursor) boundsErr(need int) error {
	return &BoundsError{Off: c.off, Bit: c.bit, Need: need, Have: c.remainingBits()}
}

// Align discards the remainder of the current byte so the next read is
// byte-aligned. Aligning an already aligned cursor is a no-op.
func (c *Cursor) Align() {
	if c.bit > 0 {
		c.bit = 0
		c.off++
	}
}

// ReadUB reads an n-bit unsigned big-endian bit field, 0 <= n <= 32.
// SWF bit fields are stored most significant bit first.
func (c *Cursor) ReadUB(n uint) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if n > 32 {
		return 0, fmt.Errorf("bit field width %d exceeds 32", n)
	}
	if c.remainingBits() < int(n) {
		return 0, c.boundsErr(int(n))
	}
	var v uint32
	for i := uint(0); i < n; i++ {
		v <<= 1
		v |= uint32(c.buf[c.off]>>(7-c.bit)) & 1
		c.bit++
		if c.bit == 8 {
			c.bit = 0
			c.off++
		}
	}
	return v, nil
}

// ReadSB reads an n-bit signed (two's complement) bit field.
func (c *Cursor) ReadSB(n uint) (int32, error) {
	v, err := c.ReadUB(n)
	if err != nil {
		return 0, err
	}
	if n > 0 && n < 32 && v&(1<<(n-1)) != 0 {
		v |= ^uint32(0) << n
	}
	return int32(v), nil
}

// ReadFB reads an n-bit signed 16.16 fixed-point bit field as a float64.
// Matrix scale and rotate terms use this encoding.
func (c *Cursor) ReadFB(n uint) (float64, error) {
	v, err := c.ReadSB(n)
	if err != nil {
		return 0, err
	}
	return float64(v) / 65536.0, nil
}

// ReadFlag reads a single bit as a bool.
func (c *Cursor) ReadFlag() (bool, error) {
	v, err := c.ReadUB(1)
	return v == 1, err
}

// ReadU8 reads one byte, aligning first.
func (c *Cursor) ReadU8() (uint8, error) {
	c.Align()
	if c.off >= len(c.buf) {
		return 0, c.boundsErr(8)
	}
	v := c.buf[c.off]
	c.off++
	return v, nil
}

// ReadU16 reads a little-endian 16-bit unsigned integer, aligning first.
// All byte-aligned multi-byte fields in SWF are little-endian.
func (c *Cursor) ReadU16() (uint16, error) {
	c.Align()
	if len(c.buf)-c.off < 2 {
		return 0, c.boundsErr(16)
	}
	v := uint16(c.buf[c.off]) | uint16(c.buf[c.off+1])<<8
	c.off += 2
	return v, nil
}

// ReadS16 reads a little-endian 16-bit signed integer.
func (c *Cursor) ReadS16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

// ReadU32 reads a little-endian 32-bit unsigned integer, aligning first.
func (c *Cursor) ReadU32() (uint32, error) {
	c.Align()
	if len(c.buf)-c.off < 4 {
		return 0, c.boundsErr(32)
	}
	v := uint32(c.buf[c.off]) | uint32(c.buf[c.off+1])<<8 |
		uint32(c.buf[c.off+2])<<16 | uint32(c.buf[c.off+3])<<24
	c.off += 4
	return v, nil
}

// ReadFixed reads a 32-bit little-endian 16.16 fixed-point value.
func (c *Cursor) ReadFixed() (float64, error) {
	v, err := c.ReadU32()
	if err != nil {
		return 0, err
	}
	return float64(int32(v)) / 65536.0, nil
}

// ReadFixed8 reads a 16-bit little-endian 8.8 fixed-point value.
// Frame rates and focal gradient points use this encoding.
func (c *Cursor) ReadFixed8() (float64, error) {
	v, err := c.ReadU16()
	if err != nil {
		return 0, err
	}
	return float64(int16(v)) / 256.0, nil
}

// ReadString reads a NUL-terminated string, aligning first.
// The terminator is consumed but not included in the result.
func (c *Cursor) ReadString() (string, error) {
	c.Align()
	start := c.off
	for c.off < len(c.buf) {
		if c.buf[c.off] == 0 {
			s := string(c.buf[start:c.off])
			c.off++
			return s, nil
		}
		c.off++
	}
	c.off = start
	return "", c.boundsErr((len(c.buf) - start + 1) * 8)
}

// ReadBytes reads n raw bytes, aligning first.
// The returned slice aliases the cursor's buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	c.Align()
	if n < 0 || len(c.buf)-c.off < n {
		return nil, c.boundsErr(n * 8)
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

// Skip advances past n bytes, aligning first.
func (c *Cursor) Skip(n int) error {
	_, err := c.ReadBytes(n)
	return err
}

// Rest returns all unread bytes, aligning first.
func (c *Cursor) Rest() []byte {
	c.Align()
	b := c.buf[c.off:]
	c.off = len(c.buf)
	return b
}
