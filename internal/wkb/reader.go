// Package wkb decodes little-endian Well-Known-Binary into geo geometries.
package wkb

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/woozymasta/wkbgeo/internal/geo"
)

const (
	orderNDR = 1

	headerSize = 5
	pointSize  = 16
	countSize  = 4
)

// Reader is a recursive-descent parser over a Cursor.
// A Reader must not be shared between goroutines.
type Reader struct {
	cur      *Cursor
	maxDepth int
	depth    int
}

// NewReader creates a reader over cur. A maxDepth <= 0 means DefaultMaxDepth.
func NewReader(cur *Cursor, maxDepth int) *Reader {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &Reader{cur: cur, maxDepth: maxDepth}
}

// ReadGeometry reads one complete record: header and payload.
func (r *Reader) ReadGeometry() (geo.Geometry, error) {
	start := r.cur.Offset()

	r.depth++
	defer func() { r.depth-- }()
	if r.depth > r.maxDepth {
		return nil, newError(ErrMaxDepthExceeded, start, "depth %d, limit %d", r.depth, r.maxDepth)
	}

	header, err := r.cur.ReadBytes(headerSize)
	if err != nil {
		return nil, err
	}
	if header[0] != orderNDR {
		return nil, newError(ErrUnsupportedByteOrder, start, "order byte %d", header[0])
	}

	code := binary.LittleEndian.Uint32(header[1:])

	switch geo.Type(code) {
	case geo.TypePoint:
		p, err := r.readPoint()
		if err != nil {
			return nil, err
		}
		return p, nil
	case geo.TypeLineString:
		ls, err := r.readLineString()
		if err != nil {
			return nil, err
		}
		return ls, nil
	case geo.TypePolygon:
		poly, err := r.readPolygon()
		if err != nil {
			return nil, err
		}
		return poly, nil
	case geo.TypeMultiPoint, geo.TypeMultiLineString, geo.TypeMultiPolygon, geo.TypeGeometryCollection:
		return r.readMulti(geo.Type(code), start)
	default:
		return nil, newError(ErrUnknownGeometryType, start+1, "type code %d", code)
	}
}

func (r *Reader) readPoint() (geo.Point, error) {
	x, err := r.cur.ReadFloat64()
	if err != nil {
		return geo.Point{}, err
	}
	y, err := r.cur.ReadFloat64()
	if err != nil {
		return geo.Point{}, err
	}

	return geo.NewPoint(x, y), nil
}

func (r *Reader) readLineString() (geo.LineString, error) {
	n, err := r.readCount(pointSize)
	if err != nil {
		return geo.LineString{}, err
	}

	raw, err := r.cur.ReadBytes(n * pointSize)
	if err != nil {
		return geo.LineString{}, err
	}

	points := make([]geo.Point, 0, n)
	for i := 0; i < n; i++ {
		at := raw[i*pointSize:]
		x := math.Float64frombits(binary.LittleEndian.Uint64(at))
		y := math.Float64frombits(binary.LittleEndian.Uint64(at[8:]))
		points = append(points, geo.NewPoint(x, y))
	}

	return geo.NewLineString(points), nil
}

func (r *Reader) readPolygon() (geo.Polygon, error) {
	n, err := r.readCount(countSize)
	if err != nil {
		return geo.Polygon{}, err
	}

	rings := make([]geo.LineString, 0, n)
	for i := 0; i < n; i++ {
		ring, err := r.readLineString()
		if err != nil {
			return geo.Polygon{}, err
		}
		rings = append(rings, ring)
	}

	return geo.NewPolygon(rings), nil
}

// readMulti reads the element list of a Multi* or GeometryCollection record.
// The constructor is chosen by the enclosing type code, not by the elements.
func (r *Reader) readMulti(kind geo.Type, start int) (geo.Geometry, error) {
	n, err := r.readCount(headerSize)
	if err != nil {
		return nil, err
	}

	elems := make([]geo.Geometry, 0, n)
	for i := 0; i < n; i++ {
		g, err := r.ReadGeometry()
		if err != nil {
			return nil, err
		}
		elems = append(elems, g)
	}

	var (
		out  geo.Geometry
		cerr error
	)
	switch kind {
	case geo.TypeMultiPoint:
		out, cerr = geo.NewMultiPoint(elems)
	case geo.TypeMultiLineString:
		out, cerr = geo.NewMultiLineString(elems)
	case geo.TypeMultiPolygon:
		out, cerr = geo.NewMultiPolygon(elems)
	default:
		out = geo.NewGeometryCollection(elems)
	}

	if cerr != nil {
		var ete *geo.ElementTypeError
		if errors.As(cerr, &ete) {
			return nil, newError(ErrMixedCollection, start, "%v", ete)
		}
		return nil, cerr
	}

	return out, nil
}

// readCount reads a uint32 element count and rejects counts whose minimal
// encoding (minSize bytes per element) cannot fit in the remaining input.
func (r *Reader) readCount(minSize int) (int, error) {
	at := r.cur.Offset()

	raw, err := r.cur.ReadUint32()
	if err != nil {
		return 0, err
	}

	n := uint64(raw)
	if n*uint64(minSize) > uint64(r.cur.Remaining()) {
		return 0, newError(ErrUnexpectedEndOfInput, at,
			"count %d needs at least %d bytes, have %d", n, n*uint64(minSize), r.cur.Remaining())
	}

	return int(n), nil
}
