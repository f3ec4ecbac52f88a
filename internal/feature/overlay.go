package feature

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/geoflow-io/geoflow/internal/crs"
	"github.com/geoflow-io/geoflow/internal/ops"
)

// OverlayMode selects the set operation for Overlay.
type OverlayMode string

const (
	OverlayIntersection        OverlayMode = "intersection"
	OverlayUnion               OverlayMode = "union"
	OverlayDifference          OverlayMode = "difference"
	OverlaySymmetricDifference OverlayMode = "symmetric_difference"
)

// Overlay combines two collections with a spatial set operation. Both
// sides must share a CRS; differing systems are rejected rather than
// silently reprojected. Result rows keep the attributes of the side
// they originate from; the schema is the union of both schemas.
func (c *Collection) Overlay(other *Collection, mode OverlayMode) (*Collection, error) {
	if !crs.Equal(c.crs, other.crs) {
		return nil, &crs.CRSMismatchError{A: c.crs, B: other.crs}
	}

	out := &Collection{crs: c.crs, schema: mergeSchemas(c.schema, other.schema)}

	otherUnion, err := collectionUnion(other)
	if err != nil {
		return nil, err
	}

	switch mode {
	case OverlayIntersection:
		err = out.appendClipped(c, otherUnion, true)
	case OverlayDifference:
		err = out.appendClipped(c, otherUnion, false)
	case OverlaySymmetricDifference:
		selfUnion, uerr := collectionUnion(c)
		if uerr != nil {
			return nil, uerr
		}
		if err = out.appendClipped(c, otherUnion, false); err == nil {
			err = out.appendClipped(other, selfUnion, false)
		}
	case OverlayUnion:
		selfUnion, uerr := collectionUnion(c)
		if uerr != nil {
			return nil, uerr
		}
		out.rows = append(out.rows, c.rows...)
		err = out.appendClipped(other, selfUnion, false)
	default:
		return nil, fmt.Errorf("unknown overlay mode %q", mode)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Intersection is shorthand for Overlay with OverlayIntersection.
func (c *Collection) Intersection(other *Collection) (*Collection, error) {
	return c.Overlay(other, OverlayIntersection)
}

// appendClipped intersects (keep=true) or subtracts (keep=false) the
// clip geometry against every row of src, dropping rows that end up
// empty. Disjoint rows skip the round-trip through GEOS.
func (c *Collection) appendClipped(src *Collection, clip orb.Geometry, keep bool) error {
	for i, row := range src.rows {
		hits, err := ops.Intersects(row.Geometry, clip)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}

		var g orb.Geometry
		switch {
		case keep && !hits:
			continue
		case keep:
			g, err = ops.Intersection(row.Geometry, clip)
		case !hits:
			g = row.Geometry
		default:
			g, err = ops.Difference(row.Geometry, clip)
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if isEmpty(g) {
			continue
		}
		c.rows = append(c.rows, Feature{Geometry: g, Attrs: row.Attrs})
	}
	return nil
}

func collectionUnion(c *Collection) (orb.Geometry, error) {
	gs := make([]orb.Geometry, 0, len(c.rows))
	for _, row := range c.rows {
		gs = append(gs, row.Geometry)
	}
	return ops.UnaryUnion(gs...)
}

func isEmpty(g orb.Geometry) bool {
	switch v := g.(type) {
	case nil:
		return true
	case orb.LineString:
		return len(v) == 0
	case orb.MultiPoint:
		return len(v) == 0
	case orb.MultiLineString:
		return len(v) == 0
	case orb.Polygon:
		return len(v) == 0 || len(v[0]) == 0
	case orb.MultiPolygon:
		return len(v) == 0
	case orb.Collection:
		for _, m := range v {
			if !isEmpty(m) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func mergeSchemas(a, b Schema) Schema {
	out := make(Schema, len(a), len(a)+len(b))
	copy(out, a)
	for _, f := range b {
		if out.Index(f.Name) < 0 {
			out = append(out, f)
		}
	}
	return out
}
