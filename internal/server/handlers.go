// Package server exposes the WKB decoder over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/wkbgeo/internal/geo"
	"github.com/woozymasta/wkbgeo/internal/processor"
	"github.com/woozymasta/wkbgeo/internal/wkb"
)

// HandleConfig serves the active decoder and render limits as JSON.
func (s *ServerContext) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(s.Config)
}

// HandleIndex serves the viewer page.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleDecode decodes the request body and answers with GeoJSON, or WKT
// when format=wkt is requested.
func (s *ServerContext) HandleDecode(w http.ResponseWriter, r *http.Request) {
	g, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "geojson":
		data, err := json.Marshal(geo.ToGeoJSON(g))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("geometry has no GeoJSON form: %w", err))
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(append(data, '\n'))
	case "wkt":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, geo.Text(g)+"\n")
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format %q", r.URL.Query().Get("format")))
	}
}

// HandleRender decodes the request body and answers with a WebP preview.
func (s *ServerContext) HandleRender(w http.ResponseWriter, r *http.Request) {
	opts := s.Render
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 || size > s.Config.Render.MaxSize {
			writeError(w, http.StatusBadRequest, fmt.Errorf("size must be between 1 and %d", s.Config.Render.MaxSize))
			return
		}
		opts.Size = size
	}

	g, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	img, err := processor.RenderGeometry(g, opts)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	var buf bytes.Buffer
	if err := processor.EncodeWebP(&buf, img, opts); err != nil {
		log.Error().Err(err).Msg("Failed to encode webp")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

// decodeBody reads and decodes a POSTed WKB payload. On failure it writes the
// error response and returns false.
func (s *ServerContext) decodeBody(w http.ResponseWriter, r *http.Request) (geo.Geometry, bool) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return nil, false
	}

	isHex := wantsHex(r)

	limit := int64(s.Decode.MaxInputSize)
	if limit > 0 {
		if isHex {
			limit = 2*limit + 64
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, wkb.ErrInputTooLarge)
			return nil, false
		}
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	g, err := wkb.DecodeWithOptions(body, isHex, s.Decode)
	if err != nil {
		log.Debug().
			Err(err).
			Int("bytes", len(body)).
			Bool("hex", isHex).
			Msg("Rejected WKB payload")

		status := http.StatusUnprocessableEntity
		if errors.Is(err, wkb.ErrInputTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err)
		return nil, false
	}

	return g, true
}

// wantsHex reports whether the payload is hex text: either ?hex=<true> or a
// text/plain body.
func wantsHex(r *http.Request) bool {
	if raw := r.URL.Query().Get("hex"); raw != "" {
		v, err := strconv.ParseBool(raw)
		return err == nil && v
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.EqualFold(mediaType, "text/plain")
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}
