package swf

import (
	"errors"
	"fmt"
)

// Sentinel errors for SWF decoding.
var (
	// ErrBadSignature is returned when the file does not start with an
	// FWS/CWS/ZWS signature. This is a whole-file failure: without a valid
	// header no tag stream can be trusted.
	ErrBadSignature = errors.New("not a SWF file")

	// ErrUnsupportedCompression is returned for LZMA-compressed (ZWS)
	// bodies, which are detected but not decompressed.
	ErrUnsupportedCompression = errors.New("unsupported compression")

	// ErrInvalidData is the sentinel for structurally present but
	// semantically invalid fields inside a tag body.
	ErrInvalidData = errors.New("invalid data")
)

// InvalidDataError reports a semantically invalid field inside one tag.
// The dispatcher treats it as fatal for that tag only.
type InvalidDataError struct {
	Tag    TagCode
	Detail string
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Tag, e.Detail, ErrInvalidData)
}

// Unwrap returns ErrInvalidData.
func (e *InvalidDataError) Unwrap() error { return ErrInvalidData }

// invalidf builds an InvalidDataError with a formatted detail message.
func invalidf(tag TagCode, format string, args ...any) error {
	return &InvalidDataError{Tag: tag, Detail: fmt.Sprintf(format, args...)}
}

// TagError wraps a decode failure with the tag it occurred in. Bounds and
// invalid-data failures abort the current tag only; the dispatcher records
// them and moves on to the next tag.
type TagError struct {
	Code   TagCode
	Offset int // byte offset of the tag body in the decompressed stream
	Err    error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("tag %s at offset %d: %v", e.Code, e.Offset, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *TagError) Unwrap() error { return e.Err }
