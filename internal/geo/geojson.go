package geo

import (
	"encoding/json"
	"math"
)

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type" yaml:"type"`
	Features []GeoJSONFeature `json:"features" yaml:"features"`
}

// GeoJSONFeature represents a single geographic feature with geometry and properties.
type GeoJSONFeature struct {
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
	Type       string                 `json:"type" yaml:"type"`
	Geometry   GeoJSONGeometry        `json:"geometry" yaml:"geometry"`
}

// GeoJSONGeometry represents any of the GeoJSON geometry objects.
// Collections carry Geometries, every other type carries Coordinates.
type GeoJSONGeometry struct {
	Type        string            `json:"type" yaml:"type"`
	Coordinates interface{}       `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Geometries  []GeoJSONGeometry `json:"geometries,omitempty" yaml:"geometries,omitempty"`
}

// MarshalJSON writes exactly one of "coordinates" or "geometries", never
// omitting it even when empty.
func (g GeoJSONGeometry) MarshalJSON() ([]byte, error) {
	if g.Type == TypeGeometryCollection.String() {
		geoms := g.Geometries
		if geoms == nil {
			geoms = []GeoJSONGeometry{}
		}
		return json.Marshal(struct {
			Type       string            `json:"type"`
			Geometries []GeoJSONGeometry `json:"geometries"`
		}{g.Type, geoms})
	}

	return json.Marshal(struct {
		Type        string      `json:"type"`
		Coordinates interface{} `json:"coordinates"`
	}{g.Type, g.Coordinates})
}

// MarshalYAML mirrors MarshalJSON so empty collections keep their key.
func (g GeoJSONGeometry) MarshalYAML() (interface{}, error) {
	if g.Type == TypeGeometryCollection.String() {
		geoms := g.Geometries
		if geoms == nil {
			geoms = []GeoJSONGeometry{}
		}
		return struct {
			Type       string            `yaml:"type"`
			Geometries []GeoJSONGeometry `yaml:"geometries"`
		}{g.Type, geoms}, nil
	}

	return struct {
		Type        string      `yaml:"type"`
		Coordinates interface{} `yaml:"coordinates"`
	}{g.Type, g.Coordinates}, nil
}

// NewFeatureCollection wraps features into a FeatureCollection.
func NewFeatureCollection(features ...GeoJSONFeature) GeoJSONFeatureCollection {
	if features == nil {
		features = []GeoJSONFeature{}
	}

	return GeoJSONFeatureCollection{Type: "FeatureCollection", Features: features}
}

// NewFeature creates a feature for g. Nil properties become an empty object.
func NewFeature(g Geometry, props map[string]interface{}) GeoJSONFeature {
	if props == nil {
		props = map[string]interface{}{}
	}

	return GeoJSONFeature{
		Type:       "Feature",
		Geometry:   ToGeoJSON(g),
		Properties: props,
	}
}

// ToGeoJSON converts a geometry into its GeoJSON form. Positions are [x, y].
// A point with both ordinates NaN is the WKB form of POINT EMPTY and maps to
// empty coordinates.
func ToGeoJSON(g Geometry) GeoJSONGeometry {
	out := GeoJSONGeometry{Type: g.Type().String()}

	switch v := g.(type) {
	case Point:
		if math.IsNaN(v.X) && math.IsNaN(v.Y) {
			out.Coordinates = []float64{}
			break
		}
		out.Coordinates = position(v)
	case LineString:
		out.Coordinates = positions(v.Points)
	case Polygon:
		out.Coordinates = rings(v.Rings)
	case MultiPoint:
		out.Coordinates = positions(v.Points)
	case MultiLineString:
		out.Coordinates = rings(v.LineStrings)
	case MultiPolygon:
		polys := make([][][][]float64, 0, len(v.Polygons))
		for _, p := range v.Polygons {
			polys = append(polys, rings(p.Rings))
		}
		out.Coordinates = polys
	case GeometryCollection:
		out.Geometries = make([]GeoJSONGeometry, 0, len(v.Geometries))
		for _, child := range v.Geometries {
			out.Geometries = append(out.Geometries, ToGeoJSON(child))
		}
	}

	return out
}

func position(p Point) []float64 {
	return []float64{p.X, p.Y}
}

func positions(points []Point) [][]float64 {
	out := make([][]float64, 0, len(points))
	for _, p := range points {
		out = append(out, position(p))
	}

	return out
}

func rings(lines []LineString) [][][]float64 {
	out := make([][][]float64, 0, len(lines))
	for _, ls := range lines {
		out = append(out, positions(ls.Points))
	}

	return out
}
