package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoflow-io/geoflow/internal/config"
	"github.com/geoflow-io/geoflow/internal/crs"
	"github.com/geoflow-io/geoflow/internal/geoio"
)

const citiesGeoJSON = `{"type":"FeatureCollection",
"crs":{"type":"name","properties":{"name":"EPSG:4326"}},
"features":[
 {"type":"Feature","geometry":{"type":"Point","coordinates":[13.405,52.52]},"properties":{"name":"berlin","population":3700000}},
 {"type":"Feature","geometry":{"type":"Point","coordinates":[11.58,48.14]},"properties":{"name":"munich","population":1500000}},
 {"type":"Feature","geometry":{"type":"Point","coordinates":[8.80,53.08]},"properties":{"name":"bremen","population":570000}}
]}`

func TestRunLoadFilterWrite(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cities.geojson")
	output := filepath.Join(dir, "big.geojson")
	require.NoError(t, os.WriteFile(input, []byte(citiesGeoJSON), 0644))

	cfg := &config.Config{
		Pipeline: []config.Step{
			{Load: input},
			{Where: &config.WhereStep{Column: "population", Op: ">", Value: 1000000}},
			{Select: []string{"name"}},
			{Write: output},
		},
	}
	runner := New(cfg)
	require.NoError(t, runner.Run(context.Background()))

	result, err := geoio.Read(output)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Len())
	assert.Equal(t, crs.CodeWGS84, result.CRS().EPSG())

	name, err := result.Attr(0, "name")
	require.NoError(t, err)
	assert.Equal(t, "berlin", name)
}

func TestRunReproject(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cities.geojson")
	output := filepath.Join(dir, "projected.geojson")
	require.NoError(t, os.WriteFile(input, []byte(citiesGeoJSON), 0644))

	cfg := &config.Config{
		Pipeline: []config.Step{
			{Load: input},
			{Reproject: "EPSG:3857"},
			{Write: output},
		},
	}

	runner := New(cfg)
	require.NoError(t, runner.Run(context.Background()))

	result, err := geoio.Read(output)
	require.NoError(t, err)
	assert.Equal(t, crs.CodeWebMercator, result.CRS().EPSG())
}

func TestRunMask(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cities.geojson")
	output := filepath.Join(dir, "masked.geojson")
	require.NoError(t, os.WriteFile(input, []byte(citiesGeoJSON), 0644))

	cfg := &config.Config{
		Pipeline: []config.Step{
			{Load: input},
			{Mask: []bool{true, false, true}},
			{Write: output},
		},
	}
	require.NoError(t, New(cfg).Run(context.Background()))

	result, err := geoio.Read(output)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Len())

	// mask length must match the row count
	cfg.Pipeline[1].Mask = []bool{true}
	err = New(cfg).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mask length")
}

func TestRunFailsFastOnMissingInput(t *testing.T) {
	cfg := &config.Config{
		Pipeline: []config.Step{
			{Load: filepath.Join(t.TempDir(), "missing.geojson")},
			{Write: "never.geojson"},
		},
	}

	err := New(cfg).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1 (load)")
	assert.NoFileExists(t, "never.geojson")
}

func TestRunRequiresSourceStage(t *testing.T) {
	cfg := &config.Config{
		Pipeline: []config.Step{
			{Select: []string{"name"}},
		},
	}

	err := New(cfg).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no collection loaded")
}

func TestRunSchemaErrorNamesColumn(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cities.geojson")
	require.NoError(t, os.WriteFile(input, []byte(citiesGeoJSON), 0644))

	cfg := &config.Config{
		Pipeline: []config.Step{
			{Load: input},
			{Where: &config.WhereStep{Column: "elevation", Op: ">", Value: 1}},
		},
	}

	err := New(cfg).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elevation")
}

func TestRunFetchWFS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, citiesGeoJSON)
	}))
	defer srv.Close()

	dir := t.TempDir()
	output := filepath.Join(dir, "fetched.geojson")

	cfg := &config.Config{
		Pipeline: []config.Step{
			{FetchWFS: &config.FetchStep{
				URL:         srv.URL,
				Layer:       "ns:cities",
				BBox:        [4]float64{8, 48, 14, 54},
				MaxFeatures: 100,
			}},
			{Write: output},
		},
	}
	runner := New(cfg)
	require.NoError(t, runner.Run(context.Background()))

	result, err := geoio.Read(output)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Len())
}
