package main

import (
	"context"
	"os"

	"github.com/geoflow-io/geoflow/internal/config"
	"github.com/geoflow-io/geoflow/internal/logger"
	"github.com/geoflow-io/geoflow/internal/pipeline"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to pipeline configuration file" default:"pipeline.yaml"`
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

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Str("config", opts.ConfigFile).Msg("Failed to load configuration")
	}

	log.Info().
		Int("steps", len(cfg.Pipeline)).
		Str("config", opts.ConfigFile).
		Msg("Starting pipeline")

	runner := pipeline.New(cfg)
	if err := runner.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Pipeline failed")
	}

	if result := runner.Result(); result != nil {
		log.Info().
			Int("rows", result.Len()).
			Str("crs", result.CRS().String()).
			Msg("Pipeline finished successfully")
	}
}
