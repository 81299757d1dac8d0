package swf

import (
	"fmt"

	"github.com/halfdome/swfkit/pkg/swf/bitio"
)

// Tag is one length-prefixed record in the container. The body is kept as a
// slice into the decompressed stream and decoded lazily on demand.
type Tag struct {
	Code       TagCode
	BodyOffset int // offset of the body in the decompressed stream
	Body       []byte
}

// Cursor returns a fresh cursor over the tag body.
func (t Tag) Cursor() *bitio.Cursor { return bitio.New(t.Body) }

// ReadTag reads one tag header and body from c. Short tags pack the length
// into the low 6 bits of the code word; a value of 0x3F means a 32-bit
// length follows.
func ReadTag(c *bitio.Cursor, streamBase int) (Tag, error) {
	word, err := c.ReadU16()
	if err != nil {
		return Tag{}, err
	}
	code := TagCode(word >> 6)
	length := int(word & 0x3F)
	if length == 0x3F {
		long, err := c.ReadU32()
		if err != nil {
			return Tag{}, fmt.Errorf("tag %s: long length: %w", code, err)
		}
		length = int(long)
	}
	off := streamBase + c.Offset()
	body, err := c.ReadBytes(length)
	if err != nil {
		return Tag{}, fmt.Errorf("tag %s: body of %d bytes: %w", code, length, err)
	}
	return Tag{Code: code, BodyOffset: off, Body: body}, nil
}

// readTagList reads tags until an End tag or the cursor is exhausted. The
// terminating End tag is not included in the result.
func readTagList(c *bitio.Cursor, streamBase int) ([]Tag, error) {
	var tags []Tag
	for c.Remaining() >= 2 {
		t, err := ReadTag(c, streamBase)
		if err != nil {
			return tags, err
		}
		if t.Code == TagEnd {
			return tags, nil
		}
		tags = append(tags, t)
	}
	return tags, nil
}
