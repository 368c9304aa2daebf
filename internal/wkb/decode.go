package wkb

import (
	"encoding/hex"
	"strings"

	"github.com/woozymasta/wkbgeo/internal/geo"
)

// DefaultMaxDepth bounds record nesting when Options.MaxDepth is unset.
const DefaultMaxDepth = 64

// Options tunes decoding limits. The zero value is the default behavior.
type Options struct {
	// MaxDepth is the deepest record nesting allowed; the top-level record is depth 1.
	MaxDepth int
	// MaxInputSize rejects raw inputs longer than this many bytes; 0 disables the check.
	MaxInputSize int
	// RejectTrailing fails when bytes remain after the top-level record.
	RejectTrailing bool
}

// Decode parses one WKB geometry. With isHex the input is hex text and is
// unpacked to bytes first.
func Decode(data []byte, isHex bool) (geo.Geometry, error) {
	return DecodeWithOptions(data, isHex, Options{})
}

// DecodeHex parses a hex-encoded WKB geometry.
func DecodeHex(s string) (geo.Geometry, error) {
	return DecodeWithOptions([]byte(s), true, Options{})
}

// DecodeWithOptions is Decode with explicit limits.
func DecodeWithOptions(data []byte, isHex bool, opts Options) (geo.Geometry, error) {
	if isHex {
		raw, err := UnpackHex(data)
		if err != nil {
			return nil, err
		}
		data = raw
	}

	if opts.MaxInputSize > 0 && len(data) > opts.MaxInputSize {
		return nil, newError(ErrInputTooLarge, 0, "%d bytes, limit %d", len(data), opts.MaxInputSize)
	}

	cur := NewCursor(data)
	g, err := NewReader(cur, opts.MaxDepth).ReadGeometry()
	if err != nil {
		return nil, err
	}

	if opts.RejectTrailing && cur.Remaining() > 0 {
		return nil, newError(ErrTrailingBytes, cur.Offset(), "%d bytes left", cur.Remaining())
	}

	return g, nil
}

// UnpackHex converts hex text into bytes. Surrounding whitespace is ignored
// and digits may be upper or lower case.
func UnpackHex(text []byte) ([]byte, error) {
	s := strings.TrimSpace(string(text))
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, &DecodeError{Err: ErrInvalidHex, Detail: err.Error()}
	}

	return raw, nil
}
