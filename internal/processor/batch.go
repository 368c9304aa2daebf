package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/woozymasta/wkbgeo/internal/geo"
	"github.com/woozymasta/wkbgeo/internal/wkb"

	"github.com/rs/zerolog/log"
)

// BatchOptions configures ProcessSources.
type BatchOptions struct {
	Render      RenderOptions
	OutDir      string
	Decode      wkb.Options
	Concurrency int
	ForceHex    bool // treat every source as hex text regardless of extension
	Force       bool // overwrite existing outputs
	Preview     bool // also write a WebP preview per source
}

// Result describes the outcome for one source.
type Result struct {
	Err     error
	Source  string
	Output  string
	Preview string
	Type    geo.Type
	Points  int
	Skipped bool
}

// Summary aggregates the results of a batch, in input order.
type Summary struct {
	Results   []Result
	Total     int
	Converted int
	Skipped   int
	Failed    int
}

type job struct {
	Source string
	Base   string
	Index  int
}

type jobResult struct {
	Result Result
	Index  int
}

// ProcessSources decodes every source and writes <OutDir>/<name>.geojson
// using a pool of Concurrency workers. Failures are recorded per source and
// never abort the batch.
func ProcessSources(ctx context.Context, client *http.Client, sources []string, opts BatchOptions) Summary {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	names := outputNames(sources)
	jobs := make(chan job, len(sources))
	results := make(chan jobResult, len(sources))

	go func() {
		for i, src := range sources {
			jobs <- job{Source: src, Base: filepath.Join(opts.OutDir, names[i]), Index: i}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				var res Result
				if err := ctx.Err(); err != nil {
					res = Result{Source: j.Source, Err: err}
				} else {
					res = ProcessSource(ctx, client, j.Source, j.Base, opts)
				}

				if res.Err != nil {
					log.Error().
						Err(res.Err).
						Str("source", j.Source).
						Msg("Failed to convert source")
				}
				results <- jobResult{Result: res, Index: j.Index}
			}
		}()
	}
	wg.Wait()
	close(results)

	summary := Summary{Results: make([]Result, len(sources)), Total: len(sources)}
	for r := range results {
		summary.Results[r.Index] = r.Result
		switch {
		case r.Result.Err != nil:
			summary.Failed++
		case r.Result.Skipped:
			summary.Skipped++
		default:
			summary.Converted++
		}
	}

	return summary
}

// ProcessSource converts a single source. base is the output path without
// extension.
func ProcessSource(ctx context.Context, client *http.Client, source, base string, opts BatchOptions) Result {
	res := Result{Source: source, Output: base + ".geojson"}

	// Check if file exists
	if !opts.Force {
		if info, err := os.Stat(res.Output); err == nil && info.Size() > 0 {
			log.Debug().Str("source", source).Str("path", res.Output).Msg("Output exists, skipping")
			res.Skipped = true
			return res
		}
	}

	isHex := opts.ForceHex || IsHexSource(source)

	limit := opts.Decode.MaxInputSize
	if limit > 0 && isHex {
		// two digits per byte plus surrounding whitespace
		limit = 2*limit + 64
	}

	data, err := LoadSource(ctx, client, source, limit)
	if err != nil {
		res.Err = err
		return res
	}

	g, err := wkb.DecodeWithOptions(data, isHex, opts.Decode)
	if err != nil {
		res.Err = fmt.Errorf("decode %s: %w", source, err)
		return res
	}
	res.Type = g.Type()
	res.Points = geo.NumPoints(g)

	log.Trace().
		Str("source", source).
		Stringer("type", res.Type).
		Int("points", res.Points).
		Msg("Source decoded")

	props := map[string]interface{}{
		"source": source,
		"type":   res.Type.String(),
		"points": res.Points,
	}
	if bbox := geo.Bounds(g).BBox(); bbox != nil {
		props["bbox"] = bbox
	}

	fc := geo.NewFeatureCollection(geo.NewFeature(g, props))
	if err := saveGeoJSON(filepath.Dir(res.Output), res.Output, fc); err != nil {
		res.Err = err
		return res
	}

	if opts.Preview {
		res.Preview = base + ".webp"
		if err := savePreview(res.Preview, g, opts.Render); err != nil {
			res.Err = fmt.Errorf("preview %s: %w", source, err)
			return res
		}
	}

	log.Info().
		Str("source", source).
		Str("output", res.Output).
		Stringer("type", res.Type).
		Msg("Source converted")

	return res
}

// saveGeoJSON marshals the feature collection and writes it to disk. Nothing
// is written when marshaling fails.
func saveGeoJSON(dir, path string, fc geo.GeoJSONFeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshal geojson: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// savePreview renders g and writes it as WebP, plus a .thumb.webp when a
// thumbnail size is configured.
func savePreview(path string, g geo.Geometry, opts RenderOptions) error {
	img, err := RenderGeometry(g, opts)
	if err != nil {
		return err
	}

	if err := writeWebP(path, img, opts); err != nil {
		return err
	}

	if opts.Thumbnail > 0 {
		thumbPath := path[:len(path)-len(filepath.Ext(path))] + ".thumb.webp"
		return writeWebP(thumbPath, Thumbnail(img, opts.Thumbnail), opts)
	}

	return nil
}

func writeWebP(path string, img image.Image, opts RenderOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return EncodeWebP(f, img, opts)
}

// outputNames assigns each source a unique file stem.
func outputNames(sources []string) []string {
	names := make([]string, len(sources))
	taken := make(map[string]bool, len(sources))

	for i, src := range sources {
		name := baseName(src)
		candidate := name
		for n := 1; taken[candidate]; n++ {
			candidate = fmt.Sprintf("%s-%d", name, n)
		}
		taken[candidate] = true
		names[i] = candidate
	}

	return names
}
