package server

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	// DataDir is the pipeline output directory being served.
	DataDir string

	// IndexHTML is the rendered interactive document, when one exists.
	IndexHTML []byte

	// Layers maps layer name to the GeoJSON file backing it.
	Layers map[string]string
}

// NewServerContext scans the output directory for GeoJSON layers and a
// rendered map document.
func NewServerContext(dataDir string) (*ServerContext, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, err
	}

	ctx := &ServerContext{
		DataDir: dataDir,
		Layers:  make(map[string]string),
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		switch strings.ToLower(filepath.Ext(name)) {
		case ".geojson", ".json":
			layer := strings.TrimSuffix(name, filepath.Ext(name))
			ctx.Layers[layer] = filepath.Join(dataDir, name)
			log.Debug().Str("layer", layer).Str("file", name).Msg("Layer registered")
		case ".html":
			if ctx.IndexHTML != nil {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dataDir, name))
			if err != nil {
				log.Error().Err(err).Str("file", name).Msg("Failed to read map document")
				continue
			}
			ctx.IndexHTML = data
			log.Debug().Str("file", name).Msg("Map document registered")
		}
	}

	log.Info().
		Int("layers", len(ctx.Layers)).
		Bool("map_document", ctx.IndexHTML != nil).
		Str("dir", dataDir).
		Msg("Preview server context initialized")

	return ctx, nil
}

// LayerNames returns the registered layer names, sorted.
func (s *ServerContext) LayerNames() []string {
	names := make([]string, 0, len(s.Layers))
	for name := range s.Layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
