package jpeg

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code identifies the class of a CodecError, matching the error taxonomy
// a JPEG core exposes to its callers: truncation, malformed markers,
// constraint violations in header fields, unsupported frame kinds, API
// misuse, and undersized caller buffers.
type Code int

const (
	// UnexpectedEndOfStream reports truncation at a parser or bit-reader
	// position: there were fewer bytes available than the format required.
	UnexpectedEndOfStream Code = iota
	// InvalidMarker reports a malformed marker sequence outside an
	// entropy-coded segment (a 0xFF sentinel followed by an illegal byte,
	// or a zero-stuffing byte seen where a marker was expected).
	InvalidMarker
	// InvalidData reports a header or table field that violates a format
	// constraint: a second SOF, an unknown quantization precision, a
	// Huffman BITS sum over 256, a restart index mismatch, and so on.
	InvalidData
	// Unsupported reports a frame type the decoder does not implement:
	// hierarchical, differential, or 12-bit encode.
	Unsupported
	// InvalidOperation reports API misuse: decode without an output sink,
	// encode without components, bit-mode writes on a byte-mode-only writer.
	InvalidOperation
	// BufferTooSmall reports a parse/serialize call with a buffer that
	// cannot hold the segment being read or written.
	BufferTooSmall
)

func (c Code) String() string {
	switch c {
	case UnexpectedEndOfStream:
		return "UnexpectedEndOfStream"
	case InvalidMarker:
		return "InvalidMarker"
	case InvalidData:
		return "InvalidData"
	case Unsupported:
		return "Unsupported"
	case InvalidOperation:
		return "InvalidOperation"
	case BufferTooSmall:
		return "BufferTooSmall"
	}
	return "UnknownCode"
}

// CodecError is the single error type every parser, entropy coder and
// orchestrator in this package returns. Offset is the absolute byte offset
// into the stream being read or written where the failure was detected;
// it is -1 when not applicable (e.g. InvalidOperation).
type CodecError struct {
	Code    Code
	Offset  int
	Message string
}

func (e *CodecError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("jpeg: %s at offset 0x%x: %s", e.Code, e.Offset, e.Message)
	}
	return fmt.Sprintf("jpeg: %s: %s", e.Code, e.Message)
}

// newErr builds a CodecError and immediately wraps it with pkg/errors so
// that the call chain leading to the failure survives in %+v output, per
// the propagation policy in spec §7: every parser maps its failure to one
// of these codes with the absolute offset where it occurred.
func newErr(code Code, offset int, format string, args ...interface{}) error {
	e := &CodecError{Code: code, Offset: offset, Message: fmt.Sprintf(format, args...)}
	return errors.WithStack(e)
}

func errEOF(offset int, format string, args ...interface{}) error {
	return newErr(UnexpectedEndOfStream, offset, format, args...)
}

func errMarker(offset int, format string, args ...interface{}) error {
	return newErr(InvalidMarker, offset, format, args...)
}

func errData(offset int, format string, args ...interface{}) error {
	return newErr(InvalidData, offset, format, args...)
}

func errUnsupported(offset int, format string, args ...interface{}) error {
	return newErr(Unsupported, offset, format, args...)
}

func errOp(format string, args ...interface{}) error {
	return newErr(InvalidOperation, -1, format, args...)
}

func errSmallBuffer(format string, args ...interface{}) error {
	return newErr(BufferTooSmall, -1, format, args...)
}

// CodeOf extracts the Code from err if it (or something it wraps) is a
// *CodecError, and reports whether one was found.
func CodeOf(err error) (Code, bool) {
	var ce *CodecError
	for err != nil {
		if c, ok := err.(*CodecError); ok {
			ce = c
			break
		}
		u, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		err = u.Cause()
	}
	if ce == nil {
		return 0, false
	}
	return ce.Code, true
}
