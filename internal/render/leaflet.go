package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/geoflow-io/geoflow/internal/crs"
	"github.com/geoflow-io/geoflow/internal/feature"
	"github.com/geoflow-io/geoflow/internal/geoio"
)

const leafletTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
html, body, #map { height: 100%; margin: 0; }
</style>
</head>
<body>
<div id="map"></div>
<script>
var data = {{.GeoJSON}};
var map = L.map('map');
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var layer = L.geoJSON(data, {
  onEachFeature: function (f, l) {
    if (f.properties) {
      var rows = Object.keys(f.properties).map(function (k) {
        return '<b>' + k + '</b>: ' + f.properties[k];
      });
      if (rows.length) { l.bindPopup(rows.join('<br>')); }
    }
  }
}).addTo(map);
map.fitBounds(layer.getBounds(), { padding: [20, 20] });
</script>
</body>
</html>
`

// Interactive writes a self-contained Leaflet document with the
// collection's GeoJSON inlined. The collection must be in geographic
// coordinates; projected input is rejected rather than guessed at.
func Interactive(c *feature.Collection, path, title string) error {
	if !c.CRS().IsZero() && c.CRS().EPSG() != crs.CodeWGS84 {
		return fmt.Errorf("render %s: interactive maps need EPSG:4326 coordinates, collection is %s (reproject first)",
			path, c.CRS())
	}

	payload, err := geoio.EncodeGeoJSON(c)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	tmpl, err := template.New("map").Parse(leafletTemplate)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	if title == "" {
		title = "geoflow map"
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		Title   string
		GeoJSON template.JS
	}{Title: title, GeoJSON: template.JS(payload)})
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)

	minified, err := m.String("text/html", buf.String())
	if err != nil {
		return fmt.Errorf("render %s: minify: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(minified), 0644); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Int("features", c.Len()).
		Int("bytes", len(minified)).
		Msg("Interactive map written")

	return nil
}
