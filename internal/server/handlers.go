// Package server handles HTTP requests for the local preview of
// pipeline outputs: the rendered map document plus its GeoJSON layers.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// HandleLayers serves the JSON list of available layers.
func (s *ServerContext) HandleLayers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(s.LayerNames())
}

// HandleIndex serves the rendered map document.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.IndexHTML == nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "no rendered map document in %s; layers: %s\n",
			s.DataDir, strings.Join(s.LayerNames(), ", "))
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

// HandleLayerData serves a layer's GeoJSON file.
// Path: /layers/{name}.geojson
func (s *ServerContext) HandleLayerData(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	name := strings.TrimSuffix(parts[1], ".geojson")
	path, ok := s.Layers[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	if !s.serveFile(w, r, path, "application/geo+json") {
		http.NotFound(w, r)
	}
}

// serveFile serves a layer file from disk with a size-modtime ETag,
// so re-running the pipeline invalidates cached layers. Returns false
// when the file is gone.
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	etag := fmt.Sprintf(`"%x-%x"`, info.Size(), info.ModTime().UnixNano())
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}
