package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
pipeline:
  - load: input.geojson
  - write: output.geojson
`))
	require.NoError(t, err)

	assert.Equal(t, 1e-9, cfg.Tolerance)
	assert.Equal(t, 30*time.Second, cfg.WFS.Timeout)
	assert.Equal(t, 5000, cfg.WFS.MaxFeatures)
	assert.Equal(t, "warn", cfg.WFS.Truncation)
	assert.Equal(t, 1024, cfg.Render.Width)
	require.Len(t, cfg.Pipeline, 2)
	assert.Equal(t, "load", cfg.Pipeline[0].Name())
	assert.Equal(t, "write", cfg.Pipeline[1].Name())
}

func TestLoadFullPipeline(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
tolerance: 1e-6
wfs:
  timeout: 10s
  max_features: 1000
  truncation: error
render:
  width: 640
  height: 480
  title: Districts
pipeline:
  - fetch_wfs:
      url: https://example.com/wfs
      layer: ns:districts
      bbox: [13.0, 52.0, 13.8, 52.7]
  - reproject: EPSG:3857
  - where: {column: population, op: ">", value: 10000}
  - select: [name, population]
  - buffer: 500
  - unary_union: true
  - write: out/districts.shp
  - render_html: out/map.html
`))
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.WFS.Truncation)
	assert.Equal(t, 10*time.Second, cfg.WFS.Timeout)
	require.Len(t, cfg.Pipeline, 8)

	fetch := cfg.Pipeline[0].FetchWFS
	require.NotNil(t, fetch)
	assert.Equal(t, "ns:districts", fetch.Layer)
	assert.Equal(t, [4]float64{13.0, 52.0, 13.8, 52.7}, fetch.BBox)

	require.NotNil(t, cfg.Pipeline[4].Buffer)
	assert.Equal(t, 500.0, *cfg.Pipeline[4].Buffer)
}

func TestValidateRejectsBadTruncation(t *testing.T) {
	_, err := Load(writeConfig(t, `
wfs:
  truncation: maybe
pipeline:
  - load: a.geojson
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maybe")
}

func TestValidateRejectsEmptyStep(t *testing.T) {
	_, err := Load(writeConfig(t, `
pipeline:
  - {}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no operation")
}

func TestValidateRejectsMultiOpStep(t *testing.T) {
	_, err := Load(writeConfig(t, `
pipeline:
  - load: a.geojson
    write: b.geojson
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple operations")
}

func TestValidateRejectsUnknownCRS(t *testing.T) {
	_, err := Load(writeConfig(t, `
pipeline:
  - load: a.geojson
  - reproject: EPSG:99999
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EPSG:99999")
}
