package swf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/halfdome/swfkit/pkg/swf/bitio"
	"github.com/halfdome/swfkit/pkg/swf/record"
)

// Header is the decoded SWF container header.
type Header struct {
	Signature  string // "FWS", "CWS", or "ZWS"
	Version    uint8
	FileLength uint32 // declared total length including the 8 header bytes
	Compressed bool

	FrameSize  record.Rect // document rectangle in twips
	FrameRate  float64     // frames per second, 8.8 fixed in the file
	FrameCount uint16
}

// readHeader validates the signature, decompresses the body if needed, and
// decodes the movie header. It returns the fully decompressed tag stream
// (frame size onward already consumed) plus the byte offset the stream
// starts at, so tag diagnostics can report real file offsets.
func readHeader(data []byte) (Header, *bitio.Cursor, int, error) {
	var h Header
	if len(data) < 8 {
		return h, nil, 0, fmt.Errorf("%d-byte file: %w", len(data), ErrBadSignature)
	}
	sig := string(data[:3])
	switch sig {
	case "FWS", "CWS", "ZWS":
	default:
		return h, nil, 0, fmt.Errorf("signature %q: %w", sig, ErrBadSignature)
	}
	h.Signature = sig
	h.Version = data[3]
	h.FileLength = uint32(data[4]) | uint32(data[5])<<8 | uint32(data[6])<<16 | uint32(data[7])<<24

	body := data[8:]
	switch sig {
	case "CWS":
		h.Compressed = true
		zr, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return h, nil, 0, fmt.Errorf("zlib body: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return h, nil, 0, fmt.Errorf("zlib body: %w", err)
		}
		body = out
	case "ZWS":
		// LZMA bodies exist from SWF 13 on; decompression is out of scope.
		return h, nil, 0, fmt.Errorf("ZWS (LZMA) body: %w", ErrUnsupportedCompression)
	}

	c := bitio.New(body)
	var err error
	if h.FrameSize, err = record.ReadRect(c); err != nil {
		return h, nil, 0, fmt.Errorf("frame size: %w", err)
	}
	c.Align()
	if h.FrameRate, err = c.ReadFixed8(); err != nil {
		return h, nil, 0, fmt.Errorf("frame rate: %w", err)
	}
	if h.FrameCount, err = c.ReadU16(); err != nil {
		return h, nil, 0, fmt.Errorf("frame count: %w", err)
	}
	return h, c, 8, nil
}
