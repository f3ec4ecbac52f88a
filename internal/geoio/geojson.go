package geoio

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/geoflow-io/geoflow/internal/crs"
	"github.com/geoflow-io/geoflow/internal/feature"
)

// named-CRS member of the 2008 GeoJSON spec; modern files omit it and
// imply WGS84, but data from WFS servers still carries it.
type crsMember struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

func readGeoJSON(path string) (*feature.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Op: "read", Err: err}
	}
	c, err := DecodeGeoJSON(data)
	if err != nil {
		return nil, &IOError{Path: path, Op: "decode", Err: err}
	}
	return c, nil
}

// DecodeGeoJSON parses a GeoJSON feature collection payload. The CRS is
// taken from the (legacy) crs member when present, otherwise unknown.
func DecodeGeoJSON(data []byte) (*feature.Collection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	var head struct {
		CRS *crsMember `json:"crs"`
	}
	// The crs member is optional; decode errors on it are real errors.
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	fileCRS, err := parseCRSName(head.CRS)
	if err != nil {
		return nil, err
	}

	// A column is numeric only when every occurrence is; mixed value
	// types widen the column to string.
	var schema feature.Schema
	for _, f := range fc.Features {
		for name, v := range f.Properties {
			kind := feature.KindString
			if _, ok := v.(float64); ok {
				kind = feature.KindNumber
			}
			idx := schema.Index(name)
			if idx < 0 {
				schema = append(schema, feature.Field{Name: name, Kind: kind})
				continue
			}
			if schema[idx].Kind != kind {
				schema[idx].Kind = feature.KindString
			}
		}
	}

	rows := make([]feature.Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		attrs := make(map[string]any, len(f.Properties))
		for name, v := range f.Properties {
			if schema[schema.Index(name)].Kind == feature.KindNumber {
				attrs[name] = v
				continue
			}
			switch s := v.(type) {
			case string:
				attrs[name] = s
			case float64:
				attrs[name] = strconv.FormatFloat(s, 'f', -1, 64)
			default:
				// booleans and nested values are flattened to strings
				b, _ := json.Marshal(v)
				attrs[name] = string(b)
			}
		}
		rows = append(rows, feature.Feature{Geometry: f.Geometry, Attrs: attrs})
	}

	return feature.FromFeatures(schema, fileCRS, rows)
}

func parseCRSName(m *crsMember) (crs.CRS, error) {
	if m == nil || m.Properties.Name == "" {
		return crs.CRS{}, nil
	}
	name := m.Properties.Name
	// urn:ogc:def:crs:OGC:1.3:CRS84 is WGS84 with lon/lat axis order
	if strings.Contains(name, "CRS84") {
		return crs.FromEPSG(crs.CodeWGS84)
	}
	return crs.Parse(name)
}

func writeGeoJSON(c *feature.Collection, path string) error {
	data, err := EncodeGeoJSON(c)
	if err != nil {
		return &IOError{Path: path, Op: "encode", Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// EncodeGeoJSON serializes a collection, embedding a named crs member
// when the collection's CRS is known.
func EncodeGeoJSON(c *feature.Collection) ([]byte, error) {
	features := make([]*geojson.Feature, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		row := c.Row(i)
		f := geojson.NewFeature(row.Geometry)
		for name, v := range row.Attrs {
			f.Properties[name] = v
		}
		features = append(features, f)
	}

	doc := struct {
		Type     string             `json:"type"`
		CRS      *crsMember         `json:"crs,omitempty"`
		Features []*geojson.Feature `json:"features"`
	}{Type: "FeatureCollection", Features: features}

	if !c.CRS().IsZero() {
		m := &crsMember{Type: "name"}
		m.Properties.Name = c.CRS().String()
		doc.CRS = m
	}

	return json.MarshalIndent(doc, "", "  ")
}
