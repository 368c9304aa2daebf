package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/woozymasta/wkbgeo/internal/config"
	"github.com/woozymasta/wkbgeo/internal/geo"
	"github.com/woozymasta/wkbgeo/internal/logger"
	"github.com/woozymasta/wkbgeo/internal/wkb"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input      string `short:"i" long:"in"        description:"Input file path (WKB). Reads from stdin if empty"`
	Output     string `short:"o" long:"out"       description:"Output file path. Writes to stdout if empty"`
	Format     string `short:"f" long:"format"    description:"Output format" choice:"json" choice:"yaml" choice:"wkt" default:"json"`
	ConfigFile string `short:"c" long:"config"    env:"CONFIG_FILE" description:"Path to configuration file"`
	MaxDepth   int    `short:"d" long:"max-depth" description:"Maximum collection nesting depth (overrides config)"`
	Hex        bool   `short:"x" long:"hex"       description:"Input is hex text instead of raw bytes"`
	Strict     bool   `long:"strict"              description:"Reject trailing bytes after the geometry"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.LoadOrDefault(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	decodeOpts := cfg.Decoder.Options()
	if opts.MaxDepth > 0 {
		decodeOpts.MaxDepth = opts.MaxDepth
	}
	if opts.Strict {
		decodeOpts.RejectTrailing = true
	}

	// Read Input
	var inputData []byte
	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
	} else {
		inputData, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatal().Err(err).Str("input", opts.Input).Msg("Failed to read input")
	}

	g, err := wkb.DecodeWithOptions(inputData, opts.Hex, decodeOpts)
	if err != nil {
		log.Error().Err(err).Int("bytes", len(inputData)).Bool("hex", opts.Hex).Msg("Failed to decode WKB")
		os.Exit(1)
	}

	log.Debug().
		Stringer("type", g.Type()).
		Int("points", geo.NumPoints(g)).
		Msg("Geometry decoded")

	outputData, err := render(g, opts.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal output")
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output file")
		}
		log.Info().
			Str("path", opts.Output).
			Str("format", opts.Format).
			Stringer("type", g.Type()).
			Msg("Successfully converted geometry")
		return
	}

	_, _ = os.Stdout.Write(outputData)
}

// render serializes g in the requested output format.
func render(g geo.Geometry, format string) ([]byte, error) {
	switch format {
	case "wkt":
		return []byte(geo.Text(g) + "\n"), nil
	case "yaml":
		fc := geo.NewFeatureCollection(geo.NewFeature(g, nil))
		return yaml.Marshal(fc)
	default:
		fc := geo.NewFeatureCollection(geo.NewFeature(g, nil))
		out, err := json.MarshalIndent(fc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	}
}
