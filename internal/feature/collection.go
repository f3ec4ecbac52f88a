// Package feature holds the tabular container of the pipeline: an
// ordered set of (geometry, attributes) rows sharing one CRS. Every
// operation returns a new collection; rows are never mutated in place.
package feature

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"

	"github.com/geoflow-io/geoflow/internal/crs"
	"github.com/geoflow-io/geoflow/internal/geometry"
	"github.com/geoflow-io/geoflow/internal/ops"
)

// Feature is a single row: one geometry plus attribute values keyed by
// column name. Identity is positional within its collection.
type Feature struct {
	Geometry orb.Geometry
	Attrs    map[string]any
}

// Collection is an ordered sequence of features sharing one CRS.
type Collection struct {
	crs    crs.CRS
	schema Schema
	rows   []Feature
}

// New builds an empty collection with the given schema and CRS tag.
func New(schema Schema, c crs.CRS) *Collection {
	return &Collection{crs: c, schema: schema}
}

// FromFeatures builds a collection, validating every geometry and
// every attribute value against the declared schema.
func FromFeatures(schema Schema, c crs.CRS, rows []Feature) (*Collection, error) {
	for i, row := range rows {
		if err := geometry.Validate(row.Geometry); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		for name, v := range row.Attrs {
			idx := schema.Index(name)
			if idx < 0 {
				return nil, &SchemaError{Column: name, Schema: schema}
			}
			if err := schema[idx].Check(v); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
	}
	out := &Collection{crs: c, schema: schema, rows: make([]Feature, len(rows))}
	copy(out.rows, rows)
	return out, nil
}

// Len returns the number of rows.
func (c *Collection) Len() int { return len(c.rows) }

// Row returns the i-th feature.
func (c *Collection) Row(i int) Feature { return c.rows[i] }

// Schema returns the declared columns.
func (c *Collection) Schema() Schema { return c.schema }

// CRS returns the coordinate reference system tag.
func (c *Collection) CRS() crs.CRS { return c.crs }

// Attr returns a schema-checked attribute value for a row.
func (c *Collection) Attr(row int, column string) (any, error) {
	idx := c.schema.Index(column)
	if idx < 0 {
		return nil, &SchemaError{Column: column, Schema: c.schema}
	}
	v := c.rows[row].Attrs[column]
	if err := c.schema[idx].Check(v); err != nil {
		return nil, err
	}
	return v, nil
}

// WithCRS retags the collection without touching coordinates.
func (c *Collection) WithCRS(target crs.CRS) *Collection {
	out := c.copyRows()
	out.crs = target
	return out
}

// Reproject transforms every geometry into the target CRS, atomically:
// any failure leaves no partial result. An unrecognized target fails
// even when the collection has no rows.
func (c *Collection) Reproject(target crs.CRS) (*Collection, error) {
	if !crs.Known(target) {
		return nil, &crs.UnknownCRSError{Code: target.String()}
	}
	rows := make([]Feature, len(c.rows))
	for i, row := range c.rows {
		g, err := crs.Reproject(row.Geometry, c.crs, target)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = Feature{Geometry: g, Attrs: row.Attrs}
	}
	return &Collection{crs: target, schema: c.schema, rows: rows}, nil
}

// Select projects the collection onto the named columns.
func (c *Collection) Select(columns ...string) (*Collection, error) {
	schema := make(Schema, 0, len(columns))
	for _, name := range columns {
		idx := c.schema.Index(name)
		if idx < 0 {
			return nil, &SchemaError{Column: name, Schema: c.schema}
		}
		schema = append(schema, c.schema[idx])
	}
	rows := make([]Feature, len(c.rows))
	for i, row := range c.rows {
		attrs := make(map[string]any, len(columns))
		for _, name := range columns {
			if v, ok := row.Attrs[name]; ok {
				attrs[name] = v
			}
		}
		rows[i] = Feature{Geometry: row.Geometry, Attrs: attrs}
	}
	return &Collection{crs: c.crs, schema: schema, rows: rows}, nil
}

// Op is a comparison operator for attribute predicates.
type Op string

const (
	OpEq Op = "=="
	OpNe Op = "!="
	OpGt Op = ">"
	OpGe Op = ">="
	OpLt Op = "<"
	OpLe Op = "<="
)

// Where keeps the rows whose column value satisfies (op, literal).
// Referencing an undeclared column is a SchemaError, even on an
// empty collection.
func (c *Collection) Where(column string, op Op, literal any) (*Collection, error) {
	idx := c.schema.Index(column)
	if idx < 0 {
		return nil, &SchemaError{Column: column, Schema: c.schema}
	}
	return c.WhereFunc(func(f Feature) (bool, error) {
		return compare(f.Attrs[column], op, literal)
	})
}

// WhereFunc keeps the rows for which pred returns true. Use for
// derived-metric predicates such as area thresholds.
func (c *Collection) WhereFunc(pred func(Feature) (bool, error)) (*Collection, error) {
	out := &Collection{crs: c.crs, schema: c.schema}
	for i, row := range c.rows {
		ok, err := pred(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if ok {
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

// Mask keeps the rows whose mask entry is true. The mask length must
// match the row count.
func (c *Collection) Mask(keep []bool) (*Collection, error) {
	if len(keep) != len(c.rows) {
		return nil, fmt.Errorf("mask length %d != row count %d", len(keep), len(c.rows))
	}
	out := &Collection{crs: c.crs, schema: c.schema}
	for i, row := range c.rows {
		if keep[i] {
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

// Area returns the area of a row's geometry: geodesic (m²) for
// geographic coordinates, planar squared units otherwise.
func (c *Collection) Area(row int) float64 {
	g := c.rows[row].Geometry
	if c.crs.EPSG() == crs.CodeWGS84 {
		return geo.Area(g)
	}
	return planar.Area(g)
}

func (c *Collection) copyRows() *Collection {
	out := &Collection{crs: c.crs, schema: c.schema, rows: make([]Feature, len(c.rows))}
	copy(out.rows, c.rows)
	return out
}

// mapGeometries applies a pure geometry transform to every row.
func (c *Collection) mapGeometries(name string, fn func(orb.Geometry) (orb.Geometry, error)) (*Collection, error) {
	rows := make([]Feature, len(c.rows))
	for i, row := range c.rows {
		g, err := fn(row.Geometry)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", name, i, err)
		}
		rows[i] = Feature{Geometry: g, Attrs: row.Attrs}
	}
	return &Collection{crs: c.crs, schema: c.schema, rows: rows}, nil
}

// Buffer widens every geometry by d CRS units.
func (c *Collection) Buffer(d float64) (*Collection, error) {
	return c.mapGeometries("buffer", func(g orb.Geometry) (orb.Geometry, error) {
		return ops.Buffer(g, d)
	})
}

// ConvexHull replaces every geometry with its convex hull.
func (c *Collection) ConvexHull() (*Collection, error) {
	return c.mapGeometries("convex_hull", ops.ConvexHull)
}

// Centroid replaces every geometry with its centroid.
func (c *Collection) Centroid() (*Collection, error) {
	return c.mapGeometries("centroid", ops.Centroid)
}

// Boundary replaces every geometry with its topological boundary.
func (c *Collection) Boundary() (*Collection, error) {
	return c.mapGeometries("boundary", ops.Boundary)
}

// UnaryUnion merges all geometries into a single-row collection with an
// empty attribute set. CRS is preserved.
func (c *Collection) UnaryUnion() (*Collection, error) {
	gs := make([]orb.Geometry, 0, len(c.rows))
	for _, row := range c.rows {
		gs = append(gs, row.Geometry)
	}
	merged, err := ops.UnaryUnion(gs...)
	if err != nil {
		return nil, err
	}
	return &Collection{
		crs:    c.crs,
		schema: Schema{},
		rows:   []Feature{{Geometry: merged, Attrs: map[string]any{}}},
	}, nil
}

// OverlapDiagnostic reports (sum of individual areas, union area,
// overlap) for the collection's geometries. Diagnostic only.
func (c *Collection) OverlapDiagnostic() (sum, union, overlap float64, err error) {
	gs := make([]orb.Geometry, 0, len(c.rows))
	for _, row := range c.rows {
		gs = append(gs, row.Geometry)
	}
	return ops.OverlapDiagnostic(gs...)
}

func compare(v any, op Op, literal any) (bool, error) {
	if ln, ok := asNumber(literal); ok {
		vn, ok := asNumber(v)
		if !ok {
			return false, fmt.Errorf("cannot compare %T against number %v", v, literal)
		}
		switch op {
		case OpEq:
			return vn == ln, nil
		case OpNe:
			return vn != ln, nil
		case OpGt:
			return vn > ln, nil
		case OpGe:
			return vn >= ln, nil
		case OpLt:
			return vn < ln, nil
		case OpLe:
			return vn <= ln, nil
		}
		return false, fmt.Errorf("unknown operator %q", op)
	}

	ls, ok := literal.(string)
	if !ok {
		return false, fmt.Errorf("unsupported literal type %T", literal)
	}
	vs, ok := v.(string)
	if !ok {
		return false, fmt.Errorf("cannot compare %T against string %q", v, ls)
	}
	switch op {
	case OpEq:
		return vs == ls, nil
	case OpNe:
		return vs != ls, nil
	case OpGt:
		return vs > ls, nil
	case OpGe:
		return vs >= ls, nil
	case OpLt:
		return vs < ls, nil
	case OpLe:
		return vs <= ls, nil
	}
	return false, fmt.Errorf("unknown operator %q", op)
}
