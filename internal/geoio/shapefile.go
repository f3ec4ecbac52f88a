package geoio

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/geoflow-io/geoflow/internal/crs"
	"github.com/geoflow-io/geoflow/internal/feature"
)

// ESRI WKT bodies for the .prj sidecar of the supported systems.
var prjWKT = map[int]string{
	crs.CodeWGS84:       `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`,
	crs.CodeWebMercator: `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Mercator_Auxiliary_Sphere"],UNIT["Meter",1.0]]`,
}

func readShapefile(path string) (*feature.Collection, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Op: "open", Err: err}
	}
	defer func() { _ = r.Close() }()

	fields := r.Fields()
	schema := make(feature.Schema, 0, len(fields))
	for _, f := range fields {
		kind := feature.KindString
		if f.Fieldtype == 'N' || f.Fieldtype == 'F' {
			kind = feature.KindNumber
		}
		schema = append(schema, feature.Field{Name: f.String(), Kind: kind})
	}

	var rows []feature.Feature
	for r.Next() {
		n, shape := r.Shape()

		g, err := shapeToGeometry(shape)
		if err != nil {
			return nil, &IOError{Path: path, Op: "decode", Err: fmt.Errorf("record %d: %w", n, err)}
		}

		attrs := make(map[string]any, len(fields))
		for j, f := range schema {
			raw := strings.TrimSpace(r.ReadAttribute(n, j))
			if f.Kind == feature.KindNumber {
				v, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					if raw == "" {
						continue
					}
					return nil, &IOError{
						Path: path,
						Op:   "decode",
						Err:  fmt.Errorf("record %d column %q: %w", n, f.Name, err),
					}
				}
				attrs[f.Name] = v
				continue
			}
			attrs[f.Name] = raw
		}

		rows = append(rows, feature.Feature{Geometry: g, Attrs: attrs})
	}

	c, err := feature.FromFeatures(schema, readPrj(path), rows)
	if err != nil {
		return nil, &IOError{Path: path, Op: "decode", Err: err}
	}
	return c, nil
}

// readPrj sniffs the CRS from the .prj sidecar. Absent or foreign
// projections leave the CRS unknown rather than guessing.
func readPrj(shpPath string) crs.CRS {
	data, err := os.ReadFile(strings.TrimSuffix(shpPath, ".shp") + ".prj")
	if err != nil {
		return crs.CRS{}
	}
	wkt := string(data)
	switch {
	case strings.Contains(wkt, "Web_Mercator"), strings.Contains(wkt, "Pseudo-Mercator"):
		c, _ := crs.FromEPSG(crs.CodeWebMercator)
		return c
	case strings.Contains(wkt, "WGS_1984"), strings.Contains(wkt, "WGS 84"):
		c, _ := crs.FromEPSG(crs.CodeWGS84)
		return c
	default:
		return crs.CRS{}
	}
}

func shapeToGeometry(s shp.Shape) (orb.Geometry, error) {
	switch v := s.(type) {
	case *shp.Point:
		return orb.Point{v.X, v.Y}, nil
	case *shp.PolyLine:
		parts := splitParts(v.Points, v.Parts)
		if len(parts) == 1 {
			return orb.LineString(parts[0]), nil
		}
		mls := make(orb.MultiLineString, 0, len(parts))
		for _, p := range parts {
			mls = append(mls, orb.LineString(p))
		}
		return mls, nil
	case *shp.Polygon:
		parts := splitParts(v.Points, v.Parts)
		poly := make(orb.Polygon, 0, len(parts))
		for _, p := range parts {
			poly = append(poly, orb.Ring(p))
		}
		return poly, nil
	default:
		return nil, fmt.Errorf("unsupported shape type %T", s)
	}
}

func splitParts(points []shp.Point, parts []int32) [][]orb.Point {
	if len(parts) == 0 {
		parts = []int32{0}
	}
	out := make([][]orb.Point, 0, len(parts))
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		segment := make([]orb.Point, 0, end-int(start))
		for _, p := range points[start:end] {
			segment = append(segment, orb.Point{p.X, p.Y})
		}
		out = append(out, segment)
	}
	return out
}

func writeShapefile(c *feature.Collection, path string) error {
	if c.Len() == 0 {
		return &IOError{Path: path, Op: "write", Err: fmt.Errorf("empty collection")}
	}

	shapeType, err := shapeTypeOf(c.Row(0).Geometry)
	if err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}

	w, err := shp.Create(path, shapeType)
	if err != nil {
		return &IOError{Path: path, Op: "create", Err: err}
	}
	defer func() { _ = w.Close() }()

	schema := c.Schema()
	fields := make([]shp.Field, 0, len(schema))
	for _, f := range schema {
		if f.Kind == feature.KindNumber {
			fields = append(fields, shp.FloatField(f.Name, 24, 10))
			continue
		}
		fields = append(fields, shp.StringField(f.Name, 64))
	}
	w.SetFields(fields)

	for i := 0; i < c.Len(); i++ {
		row := c.Row(i)
		shape, err := geometryToShape(row.Geometry, shapeType)
		if err != nil {
			return &IOError{Path: path, Op: "write", Err: fmt.Errorf("record %d: %w", i, err)}
		}
		w.Write(shape)

		for j, f := range schema {
			v, ok := row.Attrs[f.Name]
			if !ok {
				continue
			}
			if err := w.WriteAttribute(i, j, v); err != nil {
				return &IOError{
					Path: path,
					Op:   "write",
					Err:  fmt.Errorf("record %d column %q: %w", i, f.Name, err),
				}
			}
		}
	}

	if wkt, ok := prjWKT[c.CRS().EPSG()]; ok {
		prjPath := strings.TrimSuffix(path, ".shp") + ".prj"
		if err := os.WriteFile(prjPath, []byte(wkt), 0644); err != nil {
			return &IOError{Path: prjPath, Op: "write", Err: err}
		}
	}

	return nil
}

func shapeTypeOf(g orb.Geometry) (shp.ShapeType, error) {
	switch g.(type) {
	case orb.Point:
		return shp.POINT, nil
	case orb.LineString, orb.MultiLineString:
		return shp.POLYLINE, nil
	case orb.Polygon, orb.MultiPolygon:
		return shp.POLYGON, nil
	default:
		return 0, fmt.Errorf("geometry type %s has no shapefile representation", g.GeoJSONType())
	}
}

func geometryToShape(g orb.Geometry, want shp.ShapeType) (shp.Shape, error) {
	switch v := g.(type) {
	case orb.Point:
		if want != shp.POINT {
			return nil, fmt.Errorf("mixed geometry types in collection")
		}
		return &shp.Point{X: v[0], Y: v[1]}, nil
	case orb.LineString:
		if want != shp.POLYLINE {
			return nil, fmt.Errorf("mixed geometry types in collection")
		}
		return shp.NewPolyLine(toShpParts([][]orb.Point{v})), nil
	case orb.MultiLineString:
		if want != shp.POLYLINE {
			return nil, fmt.Errorf("mixed geometry types in collection")
		}
		parts := make([][]orb.Point, 0, len(v))
		for _, ls := range v {
			parts = append(parts, ls)
		}
		return shp.NewPolyLine(toShpParts(parts)), nil
	case orb.Polygon:
		if want != shp.POLYGON {
			return nil, fmt.Errorf("mixed geometry types in collection")
		}
		parts := make([][]orb.Point, 0, len(v))
		for _, ring := range v {
			parts = append(parts, ring)
		}
		return (*shp.Polygon)(shp.NewPolyLine(toShpParts(parts))), nil
	case orb.MultiPolygon:
		if want != shp.POLYGON {
			return nil, fmt.Errorf("mixed geometry types in collection")
		}
		var parts [][]orb.Point
		for _, poly := range v {
			for _, ring := range poly {
				parts = append(parts, ring)
			}
		}
		return (*shp.Polygon)(shp.NewPolyLine(toShpParts(parts))), nil
	default:
		return nil, fmt.Errorf("geometry type %s has no shapefile representation", g.GeoJSONType())
	}
}

func toShpParts(parts [][]orb.Point) [][]shp.Point {
	out := make([][]shp.Point, 0, len(parts))
	for _, part := range parts {
		points := make([]shp.Point, 0, len(part))
		for _, p := range part {
			points = append(points, shp.Point{X: p[0], Y: p[1]})
		}
		out = append(out, points)
	}
	return out
}
