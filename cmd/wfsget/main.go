package main

import (
	"context"
	"os"
	"time"

	"github.com/geoflow-io/geoflow/internal/geoio"
	"github.com/geoflow-io/geoflow/internal/logger"
	"github.com/geoflow-io/geoflow/internal/wfs"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	URL         string        `short:"u" long:"url"          env:"WFS_URL"     description:"WFS service endpoint" required:"true"`
	Layer       string        `short:"l" long:"layer"        env:"WFS_LAYER"   description:"Layer (type) name"    required:"true"`
	BBox        []float64     `short:"b" long:"bbox"         description:"Bounding box: xmin ymin xmax ymax (repeat flag 4 times)" required:"true"`
	MaxFeatures int           `short:"n" long:"max-features" env:"WFS_MAX"     description:"Per-request feature limit" default:"5000"`
	Timeout     time.Duration `short:"t" long:"timeout"      env:"WFS_TIMEOUT" description:"HTTP timeout" default:"30s"`
	Truncation  string        `short:"T" long:"truncation"   description:"Policy when count equals the limit" default:"warn" choice:"error" choice:"warn" choice:"accept"`
	Output      string        `short:"o" long:"output"       description:"Output file (.geojson or .shp)" default:"features.geojson"`
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

	if len(opts.BBox) != 4 {
		log.Fatal().Int("got", len(opts.BBox)).Msg("Bounding box needs exactly 4 values")
	}

	client := wfs.New(opts.Timeout, wfs.TruncationPolicy(opts.Truncation))

	res, err := client.Fetch(context.Background(), opts.URL, opts.Layer, wfs.BoundingBox{
		MinX: opts.BBox[0],
		MinY: opts.BBox[1],
		MaxX: opts.BBox[2],
		MaxY: opts.BBox[3],
	}, opts.MaxFeatures)
	if err != nil {
		log.Fatal().Err(err).Str("layer", opts.Layer).Msg("WFS fetch failed")
	}

	if err := geoio.Write(res.Collection, opts.Output); err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output")
	}

	log.Info().
		Str("path", opts.Output).
		Int("features", res.Collection.Len()).
		Bool("truncated", res.Truncated).
		Msg("Saved")
}
