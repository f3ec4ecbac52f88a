// Package geoio reads and writes feature collections as GeoJSON or
// shapefile, inferring the format from the file extension. Codec work
// is delegated to orb/geojson and go-shp.
package geoio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/geoflow-io/geoflow/internal/feature"
)

// Format names a supported on-disk format.
type Format string

const (
	FormatGeoJSON   Format = "geojson"
	FormatShapefile Format = "shapefile"
)

// IOError wraps a file or network failure with its location and cause.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// DetectFormat maps a file extension to a format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	case ".shp":
		return FormatShapefile, nil
	default:
		return "", &IOError{
			Path: path,
			Op:   "detect format of",
			Err:  fmt.Errorf("unsupported extension %q", filepath.Ext(path)),
		}
	}
}

// Read loads a collection, inferring the format from the extension.
// The CRS comes from the file's embedded metadata and stays unknown
// when the file carries none.
func Read(path string) (*feature.Collection, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatGeoJSON:
		return readGeoJSON(path)
	default:
		return readShapefile(path)
	}
}

// Write serializes a collection, inferring the format from the extension.
func Write(c *feature.Collection, path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	return WriteFormat(c, path, format)
}

// WriteFormat serializes a collection to the named format.
func WriteFormat(c *feature.Collection, path string, format Format) error {
	switch format {
	case FormatGeoJSON:
		return writeGeoJSON(c, path)
	case FormatShapefile:
		return writeShapefile(c, path)
	default:
		return &IOError{Path: path, Op: "write", Err: fmt.Errorf("unsupported format %q", format)}
	}
}
