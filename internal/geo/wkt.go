package geo

import (
	"math"
	"strconv"
	"strings"
)

// Text renders g as OGC Well-Known-Text, e.g. "POINT (1 2)".
func Text(g Geometry) string {
	var sb strings.Builder
	writeTagged(&sb, g)
	return sb.String()
}

func writeTagged(sb *strings.Builder, g Geometry) {
	sb.WriteString(strings.ToUpper(g.Type().String()))
	sb.WriteByte(' ')
	writeBody(sb, g)
}

func writeBody(sb *strings.Builder, g Geometry) {
	switch v := g.(type) {
	case Point:
		if math.IsNaN(v.X) && math.IsNaN(v.Y) {
			sb.WriteString("EMPTY")
			return
		}
		sb.WriteByte('(')
		writeCoord(sb, v)
		sb.WriteByte(')')
	case LineString:
		writePoints(sb, v.Points)
	case Polygon:
		writeRings(sb, v.Rings)
	case MultiPoint:
		if len(v.Points) == 0 {
			sb.WriteString("EMPTY")
			return
		}
		sb.WriteByte('(')
		for i, p := range v.Points {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('(')
			writeCoord(sb, p)
			sb.WriteByte(')')
		}
		sb.WriteByte(')')
	case MultiLineString:
		writeRings(sb, v.LineStrings)
	case MultiPolygon:
		if len(v.Polygons) == 0 {
			sb.WriteString("EMPTY")
			return
		}
		sb.WriteByte('(')
		for i, p := range v.Polygons {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeRings(sb, p.Rings)
		}
		sb.WriteByte(')')
	case GeometryCollection:
		if len(v.Geometries) == 0 {
			sb.WriteString("EMPTY")
			return
		}
		sb.WriteByte('(')
		for i, child := range v.Geometries {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeTagged(sb, child)
		}
		sb.WriteByte(')')
	}
}

func writeCoord(sb *strings.Builder, p Point) {
	sb.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
}

func writePoints(sb *strings.Builder, points []Point) {
	if len(points) == 0 {
		sb.WriteString("EMPTY")
		return
	}
	sb.WriteByte('(')
	for i, p := range points {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeCoord(sb, p)
	}
	sb.WriteByte(')')
}

func writeRings(sb *strings.Builder, lines []LineString) {
	if len(lines) == 0 {
		sb.WriteString("EMPTY")
		return
	}
	sb.WriteByte('(')
	for i, ls := range lines {
		if i > 0 {
			sb.WriteString(", ")
		}
		writePoints(sb, ls.Points)
	}
	sb.WriteByte(')')
}
