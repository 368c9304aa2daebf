// Package geo holds the geometry object model produced by the WKB decoder
// and its GeoJSON, WKT and envelope projections.
package geo

import "fmt"

// Type identifies a geometry variant. Values match the WKB type codes.
type Type uint32

// Known geometry variants.
const (
	TypePoint              Type = 1
	TypeLineString         Type = 2
	TypePolygon            Type = 3
	TypeMultiPoint         Type = 4
	TypeMultiLineString    Type = 5
	TypeMultiPolygon       Type = 6
	TypeGeometryCollection Type = 7
)

// String returns the GeoJSON name of the geometry type.
func (t Type) String() string {
	switch t {
	case TypePoint:
		return "Point"
	case TypeLineString:
		return "LineString"
	case TypePolygon:
		return "Polygon"
	case TypeMultiPoint:
		return "MultiPoint"
	case TypeMultiLineString:
		return "MultiLineString"
	case TypeMultiPolygon:
		return "MultiPolygon"
	case TypeGeometryCollection:
		return "GeometryCollection"
	default:
		return fmt.Sprintf("Type(%d)", uint32(t))
	}
}

// Valid reports whether t is one of the seven known variants.
func (t Type) Valid() bool {
	return t >= TypePoint && t <= TypeGeometryCollection
}

// Geometry is implemented only by the seven variant types of this package.
type Geometry interface {
	Type() Type
	geometry()
}

// Coordinate is a planar x/y pair.
type Coordinate struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Point is a single coordinate.
type Point struct {
	Coordinate
}

// LineString is an ordered sequence of points. An empty LineString is legal.
type LineString struct {
	Points []Point
}

// Polygon is an ordered list of rings. Ring 0 is the shell, the rest are holes.
type Polygon struct {
	Rings []LineString
}

// MultiPoint is a homogeneous collection of points.
type MultiPoint struct {
	Points []Point
}

// MultiLineString is a homogeneous collection of line strings.
type MultiLineString struct {
	LineStrings []LineString
}

// MultiPolygon is a homogeneous collection of polygons.
type MultiPolygon struct {
	Polygons []Polygon
}

// GeometryCollection is a heterogeneous collection and may nest other collections.
type GeometryCollection struct {
	Geometries []Geometry
}

func (Point) Type() Type              { return TypePoint }
func (LineString) Type() Type         { return TypeLineString }
func (Polygon) Type() Type            { return TypePolygon }
func (MultiPoint) Type() Type         { return TypeMultiPoint }
func (MultiLineString) Type() Type    { return TypeMultiLineString }
func (MultiPolygon) Type() Type       { return TypeMultiPolygon }
func (GeometryCollection) Type() Type { return TypeGeometryCollection }

func (Point) geometry()              {}
func (LineString) geometry()         {}
func (Polygon) geometry()            {}
func (MultiPoint) geometry()         {}
func (MultiLineString) geometry()    {}
func (MultiPolygon) geometry()       {}
func (GeometryCollection) geometry() {}

// ElementTypeError is returned by the multi-geometry constructors when an
// element does not match the collection's element kind.
type ElementTypeError struct {
	Collection Type
	Want       Type
	Got        Type
	Index      int
}

func (e *ElementTypeError) Error() string {
	return fmt.Sprintf("%v element %d: expected %v, got %v", e.Collection, e.Index, e.Want, e.Got)
}

// NewPoint creates a point at (x, y).
func NewPoint(x, y float64) Point {
	return Point{Coordinate{X: x, Y: y}}
}

// NewLineString creates a line string from points in order.
func NewLineString(points []Point) LineString {
	return LineString{Points: points}
}

// NewPolygon creates a polygon from rings in order.
// Closure and hole containment are not checked.
func NewPolygon(rings []LineString) Polygon {
	return Polygon{Rings: rings}
}

// NewMultiPoint creates a MultiPoint, failing if any element is not a Point.
func NewMultiPoint(elems []Geometry) (MultiPoint, error) {
	points := make([]Point, 0, len(elems))
	for i, e := range elems {
		p, ok := e.(Point)
		if !ok {
			return MultiPoint{}, mismatch(TypeMultiPoint, TypePoint, e, i)
		}
		points = append(points, p)
	}

	return MultiPoint{Points: points}, nil
}

// NewMultiLineString creates a MultiLineString, failing if any element is not a LineString.
func NewMultiLineString(elems []Geometry) (MultiLineString, error) {
	lines := make([]LineString, 0, len(elems))
	for i, e := range elems {
		ls, ok := e.(LineString)
		if !ok {
			return MultiLineString{}, mismatch(TypeMultiLineString, TypeLineString, e, i)
		}
		lines = append(lines, ls)
	}

	return MultiLineString{LineStrings: lines}, nil
}

// NewMultiPolygon creates a MultiPolygon, failing if any element is not a Polygon.
func NewMultiPolygon(elems []Geometry) (MultiPolygon, error) {
	polys := make([]Polygon, 0, len(elems))
	for i, e := range elems {
		p, ok := e.(Polygon)
		if !ok {
			return MultiPolygon{}, mismatch(TypeMultiPolygon, TypePolygon, e, i)
		}
		polys = append(polys, p)
	}

	return MultiPolygon{Polygons: polys}, nil
}

// NewGeometryCollection creates a collection of arbitrary geometries.
func NewGeometryCollection(elems []Geometry) GeometryCollection {
	return GeometryCollection{Geometries: elems}
}

func mismatch(collection, want Type, got Geometry, index int) *ElementTypeError {
	var gotType Type
	if got != nil {
		gotType = got.Type()
	}

	return &ElementTypeError{Collection: collection, Want: want, Got: gotType, Index: index}
}
