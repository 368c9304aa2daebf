package wkb

import (
	"encoding/binary"
	"math"
)

// Cursor reads fixed-width fields from a buffer, front to back.
// It has no rewind: the WKB grammar is consumed in a single pass.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset is the number of bytes consumed so far.
func (c *Cursor) Offset() int {
	return c.off
}

// Remaining is the number of bytes not yet consumed.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

// ReadBytes returns the next n bytes and advances past them.
// The returned slice aliases the underlying buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, newError(ErrUnexpectedEndOfInput, c.off, "need %d bytes, have %d", n, c.Remaining())
	}

	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

// ReadByte returns the next byte.
func (c *Cursor) ReadByte() (byte, error) {
	b, err := c.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint32 returns the next 4 bytes as a little-endian uint32.
func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadFloat64 returns the next 8 bytes as a little-endian IEEE 754 double.
func (c *Cursor) ReadFloat64() (float64, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}
