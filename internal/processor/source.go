// Package processor loads WKB sources and converts them to GeoJSON and previews.
package processor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// LoadSource reads a WKB payload from an http(s) URL or a local file.
// maxSize > 0 caps the number of bytes read; larger payloads fail.
func LoadSource(ctx context.Context, client *http.Client, source string, maxSize int) ([]byte, error) {
	var reader io.Reader

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		log.Debug().Str("url", source).Msg("Downloading source")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		// Explicitly ignore close error as it's a read-only operation
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
		}
		reader = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		reader = f
	}

	if maxSize > 0 {
		reader = io.LimitReader(reader, int64(maxSize)+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	if maxSize > 0 && len(data) > maxSize {
		return nil, fmt.Errorf("source %s exceeds %d bytes", source, maxSize)
	}

	return data, nil
}

// IsHexSource reports whether a source name suggests hex text rather than raw WKB.
func IsHexSource(source string) bool {
	if i := strings.IndexAny(source, "?#"); i >= 0 && strings.Contains(source, "://") {
		source = source[:i]
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".hex", ".txt":
		return true
	default:
		return false
	}
}

// baseName derives the output file stem for a source path or URL.
func baseName(source string) string {
	if i := strings.IndexAny(source, "?#"); i >= 0 && strings.Contains(source, "://") {
		source = source[:i]
	}

	name := filepath.Base(strings.TrimRight(source, "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "geometry"
	}
	return name
}
