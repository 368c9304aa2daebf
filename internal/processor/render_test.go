package processor

import (
	"bytes"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	xwebp "golang.org/x/image/webp"

	"github.com/woozymasta/wkbgeo/internal/config"
	"github.com/woozymasta/wkbgeo/internal/geo"
)

func ring(coords ...float64) geo.LineString {
	points := make([]geo.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		points = append(points, geo.NewPoint(coords[i], coords[i+1]))
	}
	return geo.NewLineString(points)
}

func alphaAt(img *image.RGBA, x, y int) uint8 {
	return img.RGBAAt(x, y).A
}

func TestRenderPolygonWithHole(t *testing.T) {
	shell := ring(0, 0, 10, 0, 10, 10, 0, 10, 0, 0)
	holes := map[string]geo.LineString{
		"opposite winding": ring(4, 4, 4, 6, 6, 6, 6, 4, 4, 4),
		"same winding":     ring(4, 4, 6, 4, 6, 6, 4, 6, 4, 4),
	}

	for name, hole := range holes {
		t.Run(name, func(t *testing.T) {
			img, err := RenderGeometry(geo.NewPolygon([]geo.LineString{shell, hole}), RenderOptions{Size: 100, StrokeWidth: 2})
			require.NoError(t, err)
			require.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())

			require.NotZero(t, alphaAt(img, 20, 20), "shell interior is filled")
			require.Zero(t, alphaAt(img, 50, 50), "hole interior is empty")
			require.NotZero(t, alphaAt(img, 40, 50), "hole outline is stroked")
		})
	}
}

func TestRenderPadding(t *testing.T) {
	poly := geo.NewPolygon([]geo.LineString{ring(0, 0, 1, 0, 1, 1, 0, 1, 0, 0)})

	img, err := RenderGeometry(poly, RenderOptions{Size: 64, Padding: 16, StrokeWidth: 1})
	require.NoError(t, err)

	require.Zero(t, alphaAt(img, 4, 4))
	require.Zero(t, alphaAt(img, 60, 60))
	require.NotZero(t, alphaAt(img, 32, 32))
}

func TestRenderPointAndLine(t *testing.T) {
	img, err := RenderGeometry(geo.NewPoint(5, 5), RenderOptions{Size: 32, PointSize: 6})
	require.NoError(t, err)
	require.NotZero(t, alphaAt(img, 16, 16))
	require.Zero(t, alphaAt(img, 2, 2))

	// a horizontal line through the middle of the canvas
	line := geo.NewGeometryCollection([]geo.Geometry{
		ring(0, 0, 10, 0),
		geo.NewPoint(0, 10),
	})
	img, err = RenderGeometry(line, RenderOptions{Size: 100, StrokeWidth: 4, PointSize: 4})
	require.NoError(t, err)
	require.NotZero(t, alphaAt(img, 50, 99))
	require.Zero(t, alphaAt(img, 50, 50))
	require.NotZero(t, alphaAt(img, 1, 1))
}

func TestRenderEmpty(t *testing.T) {
	img, err := RenderGeometry(geo.NewLineString(nil), RenderOptions{Size: 8})
	require.NoError(t, err)
	for i := 3; i < len(img.Pix); i += 4 {
		require.Zero(t, img.Pix[i])
	}
}

func TestRenderErrors(t *testing.T) {
	_, err := RenderGeometry(geo.NewPoint(0, 0), RenderOptions{})
	require.Error(t, err)

	_, err = RenderGeometry(geo.NewPoint(math.NaN(), 0), RenderOptions{Size: 8})
	require.Error(t, err)

	_, err = RenderGeometry(ring(-math.MaxFloat64, 0, math.MaxFloat64, 0), RenderOptions{Size: 8})
	require.Error(t, err)
}

func TestThumbnailAndWebP(t *testing.T) {
	opts := RenderOptionsFromConfig(config.Default().Render)
	opts.Size = 64

	img, err := RenderGeometry(geo.NewPolygon([]geo.LineString{ring(0, 0, 3, 0, 3, 3, 0, 0)}), opts)
	require.NoError(t, err)

	thumb := Thumbnail(img, 16)
	require.Equal(t, image.Rect(0, 0, 16, 16), thumb.Bounds())

	var buf bytes.Buffer
	require.NoError(t, EncodeWebP(&buf, thumb, opts))

	cfg, err := xwebp.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 16, cfg.Width)
	require.Equal(t, 16, cfg.Height)
}
