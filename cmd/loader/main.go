package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/wkbgeo/internal/config"
	"github.com/woozymasta/wkbgeo/internal/logger"
	"github.com/woozymasta/wkbgeo/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Args struct {
		Sources []string `positional-arg-name:"SOURCE" description:"WKB file paths or http(s) URLs" required:"1"`
	} `positional-args:"yes"`

	ConfigFile  string `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file"`
	OutDir      string `short:"o" long:"out"         env:"OUT_DIR"     description:"Output directory" default:"out"`
	Concurrency int    `short:"p" long:"concurrency" env:"CONCURRENCY" description:"Concurrency" default:"8"`
	Force       bool   `short:"f" long:"force"       description:"Force overwrite of existing files"`
	Preview     bool   `short:"w" long:"preview"     description:"Also write WebP previews"`
	Hex         bool   `short:"x" long:"hex"         description:"Treat every source as hex text"`
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

	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: opts.Concurrency,
		},
		Timeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Int("sources", len(opts.Args.Sources)).
		Int("concurrency", opts.Concurrency).
		Str("out", opts.OutDir).
		Bool("preview", opts.Preview).
		Msg("Starting loader")

	summary := processor.ProcessSources(ctx, client, opts.Args.Sources, processor.BatchOptions{
		Decode:      cfg.Decoder.Options(),
		Render:      processor.RenderOptionsFromConfig(cfg.Render),
		OutDir:      opts.OutDir,
		Concurrency: opts.Concurrency,
		ForceHex:    opts.Hex,
		Force:       opts.Force,
		Preview:     opts.Preview,
	})

	event := log.Info()
	if summary.Failed > 0 {
		event = log.Warn()
	}
	event.
		Int("total", summary.Total).
		Int("converted", summary.Converted).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Loader finished")

	if summary.Failed > 0 {
		stop()
		os.Exit(1)
	}
}
