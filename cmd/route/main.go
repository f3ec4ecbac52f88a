package main

import (
	"context"
	"os"
	"strings"

	"github.com/geoflow-io/geoflow/internal/crs"
	"github.com/geoflow-io/geoflow/internal/feature"
	"github.com/geoflow-io/geoflow/internal/geoio"
	"github.com/geoflow-io/geoflow/internal/logger"
	"github.com/geoflow-io/geoflow/internal/network"
	"github.com/geoflow-io/geoflow/internal/render"

	"github.com/jessevdk/go-flags"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input  string    `short:"i" long:"input"  description:"Network source: .osm XML, .geojson or .shp with line geometries" required:"true"`
	From   []float64 `short:"f" long:"from"   description:"Start lon lat (repeat flag twice)" required:"true"`
	To     []float64 `short:"t" long:"to"     description:"End lon lat (repeat flag twice)"   required:"true"`
	Output string    `short:"o" long:"output" description:"Route output (.geojson, .png or .html)"`
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

	if len(opts.From) != 2 || len(opts.To) != 2 {
		log.Fatal().Msg("--from and --to need exactly 2 values each (lon lat)")
	}

	graph, graphCRS := buildGraph(opts.Input)

	src, err := graph.NearestNode(opts.From[0], opts.From[1])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve start node")
	}
	dst, err := graph.NearestNode(opts.To[0], opts.To[1])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve end node")
	}

	nodes, weight, err := graph.ShortestPath(src, dst)
	if err != nil {
		log.Fatal().Err(err).Int64("source", src).Int64("target", dst).Msg("Routing failed")
	}

	log.Info().
		Int("nodes", len(nodes)).
		Float64("length", weight).
		Msg("Route found")

	if opts.Output == "" {
		return
	}

	route := routeCollection(graph, nodes, weight, graphCRS)
	switch {
	case strings.HasSuffix(opts.Output, ".png"), strings.HasSuffix(opts.Output, ".webp"):
		err = render.Static(route, opts.Output, render.DefaultStaticOptions)
	case strings.HasSuffix(opts.Output, ".html"):
		err = render.Interactive(route, opts.Output, "route")
	default:
		err = geoio.Write(route, opts.Output)
	}
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write route")
	}

	log.Info().Str("path", opts.Output).Msg("Route written")
}

func buildGraph(input string) (*network.Graph, crs.CRS) {
	wgs84, _ := crs.FromEPSG(crs.CodeWGS84)

	if strings.HasSuffix(strings.ToLower(input), ".osm") {
		f, err := os.Open(input)
		if err != nil {
			log.Fatal().Err(err).Str("path", input).Msg("Failed to open OSM file")
		}
		defer func() { _ = f.Close() }()

		graph, err := network.FromOSM(context.Background(), f)
		if err != nil {
			log.Fatal().Err(err).Str("path", input).Msg("Failed to build network")
		}
		return graph, wgs84
	}

	c, err := geoio.Read(input)
	if err != nil {
		log.Fatal().Err(err).Str("path", input).Msg("Failed to load collection")
	}
	graph, err := network.FromCollection(c)
	if err != nil {
		log.Fatal().Err(err).Str("path", input).Msg("Failed to build network")
	}
	return graph, c.CRS()
}

func routeCollection(graph *network.Graph, nodes []int64, weight float64, c crs.CRS) *feature.Collection {
	line := make(orb.LineString, 0, len(nodes))
	for _, id := range nodes {
		p, err := graph.Coord(id)
		if err != nil {
			log.Fatal().Err(err).Msg("Route references unknown node")
		}
		line = append(line, p)
	}

	schema := feature.Schema{{Name: "length", Kind: feature.KindNumber}}
	route, err := feature.FromFeatures(schema, c, []feature.Feature{
		{Geometry: line, Attrs: map[string]any{"length": weight}},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build route collection")
	}
	return route
}
