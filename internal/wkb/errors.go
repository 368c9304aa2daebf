package wkb

import (
	"errors"
	"fmt"
)

// Error kinds returned by the decoder. Match them with errors.Is.
var (
	ErrUnexpectedEndOfInput = errors.New("unexpected end of input")
	ErrUnsupportedByteOrder = errors.New("unsupported byte order")
	ErrUnknownGeometryType  = errors.New("unknown geometry type")
	ErrMaxDepthExceeded     = errors.New("maximum nesting depth exceeded")
	ErrMixedCollection      = errors.New("collection element does not match collection type")
	ErrTrailingBytes        = errors.New("trailing bytes after geometry")
	ErrInvalidHex           = errors.New("invalid hex input")
	ErrInputTooLarge        = errors.New("input exceeds maximum size")
)

// DecodeError reports where in the input a decode failure was detected.
type DecodeError struct {
	Err    error
	Detail string
	Offset int
}

func (e *DecodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("wkb: %v at offset %d: %s", e.Err, e.Offset, e.Detail)
	}
	return fmt.Sprintf("wkb: %v at offset %d", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newError(kind error, offset int, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Err: kind, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}
