package processor

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	orbwkb "github.com/paulmach/orb/encoding/wkb"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/wkbgeo/internal/geo"
	"github.com/woozymasta/wkbgeo/internal/wkb"
)

func marshalWKB(t *testing.T, g orb.Geometry) []byte {
	t.Helper()
	raw, err := orbwkb.Marshal(g)
	require.NoError(t, err)
	return raw
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func readCollection(t *testing.T, path string) geo.GeoJSONFeatureCollection {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]interface{} `json:"properties"`
			Geometry   struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))
	require.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)

	out := geo.GeoJSONFeatureCollection{Type: fc.Type}
	for _, f := range fc.Features {
		out.Features = append(out.Features, geo.GeoJSONFeature{
			Type:       "Feature",
			Properties: f.Properties,
			Geometry:   geo.GeoJSONGeometry{Type: f.Geometry.Type},
		})
	}
	return out
}

func TestProcessSources(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	point := writeFile(t, src, "point.wkb", marshalWKB(t, orb.Point{1, 2}))
	line := writeFile(t, src, "line.hex", []byte(hex.EncodeToString(marshalWKB(t, orb.LineString{{0, 0}, {3, 4}}))+"\n"))
	bad := writeFile(t, src, "bad.wkb", []byte{0, 1, 0, 0, 0})

	sub := filepath.Join(src, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))
	dup := writeFile(t, sub, "point.wkb", marshalWKB(t, orb.Collection{orb.Point{5, 5}}))

	sources := []string{point, line, bad, dup, filepath.Join(src, "missing.wkb")}
	opts := BatchOptions{OutDir: out, Concurrency: 3}

	summary := ProcessSources(context.Background(), http.DefaultClient, sources, opts)
	require.Equal(t, 5, summary.Total)
	require.Equal(t, 3, summary.Converted)
	require.Equal(t, 2, summary.Failed)
	require.Zero(t, summary.Skipped)

	require.Equal(t, geo.TypePoint, summary.Results[0].Type)
	require.Equal(t, geo.TypeLineString, summary.Results[1].Type)
	require.Equal(t, 2, summary.Results[1].Points)
	require.ErrorIs(t, summary.Results[2].Err, wkb.ErrUnsupportedByteOrder)
	require.Equal(t, filepath.Join(out, "point-1.geojson"), summary.Results[3].Output)
	require.Equal(t, geo.TypeGeometryCollection, summary.Results[3].Type)
	require.Error(t, summary.Results[4].Err)

	fc := readCollection(t, filepath.Join(out, "line.geojson"))
	props := fc.Features[0].Properties
	require.Equal(t, "LineString", fc.Features[0].Geometry.Type)
	require.Equal(t, "LineString", props["type"])
	require.Equal(t, float64(2), props["points"])
	require.Equal(t, []interface{}{0.0, 0.0, 3.0, 4.0}, props["bbox"])
	require.Equal(t, line, props["source"])

	// second run keeps existing outputs
	summary = ProcessSources(context.Background(), http.DefaultClient, sources[:2], opts)
	require.Equal(t, 2, summary.Skipped)
	require.True(t, summary.Results[0].Skipped)
}

func TestProcessSourcesPreview(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	poly := orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}
	path := writeFile(t, src, "area.bin", marshalWKB(t, poly))

	opts := BatchOptions{
		OutDir:      out,
		Concurrency: 1,
		Force:       true,
		Preview:     true,
		Render:      RenderOptions{Size: 32, Thumbnail: 8, Quality: 80},
	}

	summary := ProcessSources(context.Background(), http.DefaultClient, []string{path}, opts)
	require.Equal(t, 1, summary.Converted)
	require.Equal(t, filepath.Join(out, "area.webp"), summary.Results[0].Preview)

	for _, name := range []string{"area.geojson", "area.webp", "area.thumb.webp"} {
		info, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err, name)
		require.NotZero(t, info.Size(), name)
	}
}

func TestProcessSourcesForceHexAndLimits(t *testing.T) {
	src := t.TempDir()
	raw := marshalWKB(t, orb.Point{1, 1})
	path := writeFile(t, src, "point.data", []byte(hex.EncodeToString(raw)))

	summary := ProcessSources(context.Background(), http.DefaultClient, []string{path}, BatchOptions{
		OutDir:   t.TempDir(),
		ForceHex: true,
		Decode:   wkb.Options{MaxInputSize: len(raw)},
	})
	require.Equal(t, 1, summary.Converted)

	summary = ProcessSources(context.Background(), http.DefaultClient, []string{path}, BatchOptions{
		OutDir:   t.TempDir(),
		ForceHex: true,
		Decode:   wkb.Options{MaxInputSize: len(raw) - 1},
	})
	require.Equal(t, 1, summary.Failed)
	require.ErrorIs(t, summary.Results[0].Err, wkb.ErrInputTooLarge)
}

func TestProcessSourceNonFiniteCoordinates(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	// POINT EMPTY as written by PostGIS and orb: both ordinates NaN
	empty := writeFile(t, src, "empty.hex", []byte("0101000000000000000000F87F000000000000F87F"))
	res := ProcessSource(context.Background(), http.DefaultClient, empty, filepath.Join(out, "empty"), BatchOptions{})
	require.NoError(t, res.Err)

	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	var fc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fc))
	geom := fc["features"].([]interface{})[0].(map[string]interface{})["geometry"]
	require.Equal(t, map[string]interface{}{"type": "Point", "coordinates": []interface{}{}}, geom)

	inf := writeFile(t, src, "inf.wkb", marshalWKB(t, orb.Point{math.Inf(1), 0}))
	res = ProcessSource(context.Background(), http.DefaultClient, inf, filepath.Join(out, "inf"), BatchOptions{})
	require.Error(t, res.Err)
	require.NoFileExists(t, res.Output)
}

func TestProcessSourcesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := ProcessSources(ctx, http.DefaultClient, []string{"a.wkb", "b.wkb"}, BatchOptions{OutDir: t.TempDir()})
	require.Equal(t, 2, summary.Failed)
	require.ErrorIs(t, summary.Results[0].Err, context.Canceled)
}

func TestProcessSourceHTTP(t *testing.T) {
	raw := marshalWKB(t, orb.MultiPoint{{1, 1}, {2, 2}})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/points.wkb" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(raw)
	}))
	defer srv.Close()

	out := t.TempDir()
	summary := ProcessSources(context.Background(), srv.Client(), []string{
		srv.URL + "/data/points.wkb?v=1",
		srv.URL + "/data/absent.wkb",
	}, BatchOptions{OutDir: out, Concurrency: 2})

	require.Equal(t, 1, summary.Converted)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, geo.TypeMultiPoint, summary.Results[0].Type)
	require.Equal(t, filepath.Join(out, "points.geojson"), summary.Results[0].Output)
	require.Contains(t, summary.Results[1].Err.Error(), "status 404")
}
