package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/geoflow-io/geoflow/internal/logger"
	"github.com/geoflow-io/geoflow/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	DataDir string `short:"d" long:"data" env:"DATA_DIR"       description:"Pipeline output directory to serve" default:"out"`
	Addr    string `short:"a" long:"addr" env:"LISTEN_ADDRESS" description:"Address to listen on"               default:"127.0.0.1"`
	Port    int    `short:"p" long:"port" env:"LISTEN_PORT"    description:"Port to listen on"                  default:"8080"`
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

	// Setup Logging
	opts.Logger.Setup()

	srvCtx, err := server.NewServerContext(opts.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", opts.DataDir).Msg("Failed to scan data directory")
	}

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/api/layers", srvCtx.HandleLayers)
	mux.HandleFunc("/layers/", srvCtx.HandleLayerData)
	mux.HandleFunc("/", srvCtx.HandleIndex)

	handler := server.RequestLogger(mux)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Int("layers", len(srvCtx.Layers)).
		Msg("Preview server started")

	if err := http.ListenAndServe(listenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
