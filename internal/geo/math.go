package geo

import "math"

// Envelope is the axis-aligned bounding box of a geometry.
// The zero value is empty.
type Envelope struct {
	MinX, MinY float64
	MaxX, MaxY float64
	set        bool
}

// IsEmpty reports whether no coordinate has been added.
func (e Envelope) IsEmpty() bool {
	return !e.set
}

// Width returns MaxX-MinX, or 0 for an empty envelope.
func (e Envelope) Width() float64 {
	if !e.set {
		return 0
	}
	return e.MaxX - e.MinX
}

// Height returns MaxY-MinY, or 0 for an empty envelope.
func (e Envelope) Height() float64 {
	if !e.set {
		return 0
	}
	return e.MaxY - e.MinY
}

// Extend grows the envelope to include (x, y). NaN coordinates are ignored.
func (e *Envelope) Extend(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	if !e.set {
		e.MinX, e.MaxX = x, x
		e.MinY, e.MaxY = y, y
		e.set = true
		return
	}

	e.MinX = math.Min(e.MinX, x)
	e.MinY = math.Min(e.MinY, y)
	e.MaxX = math.Max(e.MaxX, x)
	e.MaxY = math.Max(e.MaxY, y)
}

// BBox returns the GeoJSON bbox form [minX, minY, maxX, maxY], or nil when empty.
func (e Envelope) BBox() []float64 {
	if !e.set {
		return nil
	}
	return []float64{e.MinX, e.MinY, e.MaxX, e.MaxY}
}

// Bounds computes the envelope of every coordinate in g.
func Bounds(g Geometry) Envelope {
	var env Envelope
	Walk(g, func(p Point) {
		env.Extend(p.X, p.Y)
	})

	return env
}

// NumPoints counts every coordinate in g, including nested ones.
func NumPoints(g Geometry) int {
	n := 0
	Walk(g, func(Point) { n++ })
	return n
}

// Walk calls fn for every point of g in encoding order.
func Walk(g Geometry, fn func(Point)) {
	switch v := g.(type) {
	case Point:
		fn(v)
	case LineString:
		walkPoints(v.Points, fn)
	case Polygon:
		walkLines(v.Rings, fn)
	case MultiPoint:
		walkPoints(v.Points, fn)
	case MultiLineString:
		walkLines(v.LineStrings, fn)
	case MultiPolygon:
		for _, p := range v.Polygons {
			walkLines(p.Rings, fn)
		}
	case GeometryCollection:
		for _, child := range v.Geometries {
			Walk(child, fn)
		}
	}
}

func walkPoints(points []Point, fn func(Point)) {
	for _, p := range points {
		fn(p)
	}
}

func walkLines(lines []LineString, fn func(Point)) {
	for _, ls := range lines {
		walkPoints(ls.Points, fn)
	}
}
