// Package geometry builds and validates geometries from coordinate
// literals, WKT and WKB. All heavy lifting is delegated to paulmach/orb;
// this package only adds validation and error context.
package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/encoding/wkt"
)

// Point builds a point geometry from an x/y pair.
func Point(x, y float64) orb.Point {
	return orb.Point{x, y}
}

// LineString builds a line from ordered coordinate pairs.
// At least two positions are required.
func LineString(coords ...orb.Point) (orb.LineString, error) {
	if len(coords) < 2 {
		return nil, &InvalidGeometryError{
			Kind:   "LineString",
			Reason: fmt.Sprintf("need at least 2 positions, got %d", len(coords)),
		}
	}
	return orb.LineString(coords), nil
}

// Polygon builds a polygon from an exterior ring and optional holes.
// Every ring must be closed and carry at least 4 positions.
func Polygon(shell []orb.Point, holes ...[]orb.Point) (orb.Polygon, error) {
	rings := make(orb.Polygon, 0, len(holes)+1)
	for i, ring := range append([][]orb.Point{shell}, holes...) {
		if len(ring) < 4 {
			return nil, &InvalidGeometryError{
				Kind:   "Polygon",
				Reason: fmt.Sprintf("ring %d has %d positions, need at least 4", i, len(ring)),
			}
		}
		if ring[0] != ring[len(ring)-1] {
			return nil, &InvalidGeometryError{
				Kind:   "Polygon",
				Reason: fmt.Sprintf("ring %d is not closed", i),
			}
		}
		rings = append(rings, orb.Ring(ring))
	}
	return rings, nil
}

// MultiPoint builds a multipoint from one or more positions.
func MultiPoint(coords ...orb.Point) (orb.MultiPoint, error) {
	mp := orb.MultiPoint(coords)
	if err := Validate(mp); err != nil {
		return nil, err
	}
	return mp, nil
}

// MultiLineString builds a multiline from member lines.
func MultiLineString(lines ...orb.LineString) (orb.MultiLineString, error) {
	mls := orb.MultiLineString(lines)
	if err := Validate(mls); err != nil {
		return nil, err
	}
	return mls, nil
}

// MultiPolygon builds a multipolygon from member polygons.
func MultiPolygon(polys ...orb.Polygon) (orb.MultiPolygon, error) {
	mp := orb.MultiPolygon(polys)
	if err := Validate(mp); err != nil {
		return nil, err
	}
	return mp, nil
}

// Collection builds a geometry collection from validated members.
func Collection(members ...orb.Geometry) (orb.Collection, error) {
	c := orb.Collection(members)
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// FromWKT parses a well-known-text geometry.
func FromWKT(s string) (orb.Geometry, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, &ParseError{Input: s, Err: err}
	}
	if err := Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

// FromWKB parses a well-known-binary geometry.
func FromWKB(b []byte) (orb.Geometry, error) {
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil, &ParseError{Input: fmt.Sprintf("% x", b), Err: err}
	}
	if err := Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

// ToWKT encodes a geometry as well-known text.
func ToWKT(g orb.Geometry) string {
	return wkt.MarshalString(g)
}

// ToWKB encodes a geometry as well-known binary.
func ToWKB(g orb.Geometry) ([]byte, error) {
	return wkb.Marshal(g)
}

// Validate rejects structurally empty or degenerate geometries.
// Derived geometries from the ops package are assumed valid.
func Validate(g orb.Geometry) error {
	switch v := g.(type) {
	case orb.Point:
		return nil
	case orb.MultiPoint:
		if len(v) == 0 {
			return &InvalidGeometryError{Kind: "MultiPoint", Reason: "no positions"}
		}
	case orb.LineString:
		if len(v) < 2 {
			return &InvalidGeometryError{
				Kind:   "LineString",
				Reason: fmt.Sprintf("need at least 2 positions, got %d", len(v)),
			}
		}
	case orb.MultiLineString:
		for i, ls := range v {
			if len(ls) < 2 {
				return &InvalidGeometryError{
					Kind:   "MultiLineString",
					Reason: fmt.Sprintf("member %d has %d positions", i, len(ls)),
				}
			}
		}
	case orb.Polygon:
		if len(v) == 0 {
			return &InvalidGeometryError{Kind: "Polygon", Reason: "no rings"}
		}
		for i, ring := range v {
			if len(ring) < 4 {
				return &InvalidGeometryError{
					Kind:   "Polygon",
					Reason: fmt.Sprintf("ring %d has %d positions, need at least 4", i, len(ring)),
				}
			}
		}
	case orb.MultiPolygon:
		for _, p := range v {
			if err := Validate(p); err != nil {
				return err
			}
		}
	case orb.Collection:
		for _, m := range v {
			if err := Validate(m); err != nil {
				return err
			}
		}
	}
	return nil
}
