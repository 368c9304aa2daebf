package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/wkbgeo/internal/config"
	"github.com/woozymasta/wkbgeo/internal/processor"
	"github.com/woozymasta/wkbgeo/internal/wkb"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	IndexHTML []byte
	Decode    wkb.Options
	Render    processor.RenderOptions
}

// NewServerContext builds the handler context from cfg and prepares the
// minified viewer page.
func NewServerContext(cfg *config.Config) (*ServerContext, error) {
	log.Info().
		Int("max_depth", cfg.Decoder.MaxDepth).
		Int("max_input_size", cfg.Decoder.MaxInputSize).
		Bool("reject_trailing", cfg.Decoder.RejectTrailing).
		Msg("Initializing server context")

	index, err := buildIndex()
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("index_bytes", len(index)).
		Msg("Viewer page minified")

	return &ServerContext{
		Config:    cfg,
		IndexHTML: index,
		Decode:    cfg.Decoder.Options(),
		Render:    processor.RenderOptionsFromConfig(cfg.Render),
	}, nil
}

// Routes returns the request multiplexer wrapped with request logging.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/decode", s.HandleDecode)
	mux.HandleFunc("/api/render", s.HandleRender)
	mux.HandleFunc("/api/config", s.HandleConfig)
	mux.HandleFunc("/", s.HandleIndex)

	return RequestLogger(mux)
}
