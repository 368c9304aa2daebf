package processor

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/woozymasta/wkbgeo/internal/config"
	"github.com/woozymasta/wkbgeo/internal/geo"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

var (
	defaultFill   = color.NRGBA{R: 0x33, G: 0x88, B: 0xff, A: 0x66}
	defaultStroke = color.NRGBA{R: 0x1f, G: 0x4e, B: 0x99, A: 0xff}
)

// RenderOptions controls preview rasterization and encoding.
type RenderOptions struct {
	Fill        color.Color
	Stroke      color.Color
	Size        int
	Padding     int
	Thumbnail   int
	StrokeWidth float64
	PointSize   float64
	Quality     float32
	Lossless    bool
}

// RenderOptionsFromConfig builds options from the render config section.
func RenderOptionsFromConfig(r config.Render) RenderOptions {
	return RenderOptions{
		Size:        r.Size,
		Padding:     r.Padding,
		Thumbnail:   r.Thumbnail,
		StrokeWidth: r.StrokeWidth,
		PointSize:   r.PointSize,
		Quality:     r.Quality,
		Lossless:    r.Lossless,
	}
}

// RenderGeometry rasterizes g onto a transparent square canvas of opts.Size
// pixels. The geometry envelope is fitted inside the padding with y pointing up.
func RenderGeometry(g geo.Geometry, opts RenderOptions) (*image.RGBA, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("invalid render size %d", opts.Size)
	}
	if opts.Fill == nil {
		opts.Fill = defaultFill
	}
	if opts.Stroke == nil {
		opts.Stroke = defaultStroke
	}
	if opts.StrokeWidth <= 0 {
		opts.StrokeWidth = 1
	}
	if opts.PointSize <= 0 {
		opts.PointSize = 3 * opts.StrokeWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))

	nonFinite := 0
	geo.Walk(g, func(p geo.Point) {
		if !finite(p.X, p.Y) {
			nonFinite++
		}
	})
	if nonFinite > 0 {
		return nil, fmt.Errorf("cannot render %d non-finite coordinates", nonFinite)
	}

	env := geo.Bounds(g)
	if env.IsEmpty() {
		return dst, nil
	}
	if !finite(env.Width(), env.Height()) {
		return nil, fmt.Errorf("extent %v is too large to render", env.BBox())
	}

	c := &canvas{
		dst:  dst,
		rast: vector.NewRasterizer(opts.Size, opts.Size),
		proj: newProjection(env, opts.Size, opts.Padding),
		opts: opts,
	}
	c.draw(g)

	return dst, nil
}

// Thumbnail downscales img to a size x size square.
func Thumbnail(img image.Image, size int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// EncodeWebP writes img as WebP using the quality settings of opts.
func EncodeWebP(w io.Writer, img image.Image, opts RenderOptions) error {
	quality := opts.Quality
	if quality <= 0 {
		quality = 85
	}

	return webp.Encode(w, img, &webp.Options{Lossless: opts.Lossless, Quality: quality})
}

type vec struct {
	x, y float32
}

// projection maps geometry coordinates into pixel space.
type projection struct {
	minX, minY float64
	scale      float64
	offX, offY float64
	size       float64
}

func newProjection(env geo.Envelope, size, padding int) projection {
	avail := float64(size - 2*padding)
	if avail <= 0 {
		avail = float64(size)
		padding = 0
	}

	span := math.Max(env.Width(), env.Height())
	scale := 1.0
	if span > 0 {
		scale = avail / span
	}

	return projection{
		minX:  env.MinX,
		minY:  env.MinY,
		scale: scale,
		offX:  float64(padding) + (avail-env.Width()*scale)/2,
		offY:  float64(padding) + (avail-env.Height()*scale)/2,
		size:  float64(size),
	}
}

func (p projection) apply(pt geo.Point) vec {
	x := p.offX + (pt.X-p.minX)*p.scale
	y := p.size - (p.offY + (pt.Y-p.minY)*p.scale)
	return vec{float32(x), float32(y)}
}

type canvas struct {
	dst  *image.RGBA
	rast *vector.Rasterizer
	proj projection
	opts RenderOptions
}

func (c *canvas) draw(g geo.Geometry) {
	switch v := g.(type) {
	case geo.Point:
		c.points([]geo.Point{v})
	case geo.LineString:
		c.lines([]geo.LineString{v}, false)
	case geo.Polygon:
		c.polygon(v)
	case geo.MultiPoint:
		c.points(v.Points)
	case geo.MultiLineString:
		c.lines(v.LineStrings, false)
	case geo.MultiPolygon:
		for _, p := range v.Polygons {
			c.polygon(p)
		}
	case geo.GeometryCollection:
		for _, child := range v.Geometries {
			c.draw(child)
		}
	}
}

// polygon fills the shell with holes cut out, then outlines every ring.
// Holes are rewound against the shell so the nonzero fill leaves them empty.
func (c *canvas) polygon(p geo.Polygon) {
	var subpaths [][]vec
	shellSign := 0.0
	for i, ring := range p.Rings {
		if len(ring.Points) < 3 {
			continue
		}
		path := make([]vec, 0, len(ring.Points))
		for _, pt := range ring.Points {
			path = append(path, c.proj.apply(pt))
		}

		area := signedArea(path)
		if i == 0 {
			shellSign = area
		} else if area*shellSign > 0 {
			reverse(path)
		}
		subpaths = append(subpaths, path)
	}
	c.paint(subpaths, c.opts.Fill)

	c.lines(p.Rings, true)
}

func (c *canvas) lines(lines []geo.LineString, closed bool) {
	half := float32(c.opts.StrokeWidth / 2)

	var quads [][]vec
	var dots []geo.Point
	for _, ls := range lines {
		if len(ls.Points) == 1 {
			dots = append(dots, ls.Points[0])
			continue
		}

		pts := make([]vec, 0, len(ls.Points)+1)
		for _, pt := range ls.Points {
			pts = append(pts, c.proj.apply(pt))
		}
		if closed && len(pts) > 2 && pts[0] != pts[len(pts)-1] {
			pts = append(pts, pts[0])
		}

		for i := 1; i < len(pts); i++ {
			if q := segmentQuad(pts[i-1], pts[i], half); q != nil {
				quads = append(quads, q)
			}
		}
	}

	c.paint(quads, c.opts.Stroke)
	c.points(dots)
}

func (c *canvas) points(points []geo.Point) {
	half := float32(c.opts.PointSize / 2)

	squares := make([][]vec, 0, len(points))
	for _, pt := range points {
		v := c.proj.apply(pt)
		squares = append(squares, []vec{
			{v.x - half, v.y - half},
			{v.x + half, v.y - half},
			{v.x + half, v.y + half},
			{v.x - half, v.y + half},
		})
	}

	c.paint(squares, c.opts.Stroke)
}

// paint fills closed subpaths in one rasterizer pass, limited to their
// pixel bounding box.
func (c *canvas) paint(subpaths [][]vec, col color.Color) {
	if len(subpaths) == 0 {
		return
	}

	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for _, sp := range subpaths {
		for _, v := range sp {
			minX, maxX = min(minX, v.x), max(maxX, v.x)
			minY, maxY = min(minY, v.y), max(maxY, v.y)
		}
	}

	rect := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	).Intersect(c.dst.Bounds())
	if rect.Empty() {
		return
	}

	ox, oy := float32(rect.Min.X), float32(rect.Min.Y)
	c.rast.Reset(rect.Dx(), rect.Dy())
	for _, sp := range subpaths {
		c.rast.MoveTo(sp[0].x-ox, sp[0].y-oy)
		for _, v := range sp[1:] {
			c.rast.LineTo(v.x-ox, v.y-oy)
		}
		c.rast.ClosePath()
	}
	c.rast.Draw(c.dst, rect, image.NewUniform(col), image.Point{})
}

// segmentQuad returns the rectangle covering segment a-b with the given half
// width. Vertex order is fixed relative to the segment direction so every
// quad has the same winding.
func segmentQuad(a, b vec, half float32) []vec {
	dx, dy := b.x-a.x, b.y-a.y
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return nil
	}

	nx, ny := -dy/length*half, dx/length*half
	return []vec{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	}
}

func signedArea(path []vec) float64 {
	var sum float64
	for i := range path {
		j := (i + 1) % len(path)
		sum += float64(path[i].x)*float64(path[j].y) - float64(path[j].x)*float64(path[i].y)
	}
	return sum / 2
}

func reverse(path []vec) {
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}
