// Package crs tags feature collections with a coordinate reference
// system and reprojects geometries between the supported systems.
// Projection math is delegated to orb/project.
package crs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Well-known EPSG codes supported by the registry.
const (
	CodeWGS84       = 4326 // geographic lon/lat
	CodeWebMercator = 3857 // spherical mercator, meters
)

// CRS identifies a coordinate reference system by EPSG code.
// The zero value means "no CRS known".
type CRS struct {
	code int
}

// FromEPSG builds a CRS from a numeric EPSG code.
// The code is validated against the registry.
func FromEPSG(code int) (CRS, error) {
	if _, ok := registry[code]; !ok {
		return CRS{}, &UnknownCRSError{Code: strconv.Itoa(code)}
	}
	return CRS{code: code}, nil
}

// Parse accepts "EPSG:4326" or a bare numeric code.
func Parse(s string) (CRS, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return CRS{}, nil
	}
	numeric := raw
	if idx := strings.LastIndex(raw, ":"); idx >= 0 {
		if !strings.EqualFold(raw[:idx], "EPSG") && !strings.HasPrefix(strings.ToLower(raw), "urn:") {
			return CRS{}, &UnknownCRSError{Code: raw}
		}
		numeric = raw[idx+1:]
	}
	code, err := strconv.Atoi(numeric)
	if err != nil {
		return CRS{}, &UnknownCRSError{Code: raw}
	}
	c, err := FromEPSG(code)
	if err != nil {
		// report the identifier as the caller wrote it
		return CRS{}, &UnknownCRSError{Code: raw}
	}
	return c, nil
}

// EPSG returns the numeric code, 0 when unknown.
func (c CRS) EPSG() int { return c.code }

// IsZero reports whether no CRS is known.
func (c CRS) IsZero() bool { return c.code == 0 }

func (c CRS) String() string {
	if c.IsZero() {
		return "unknown"
	}
	return fmt.Sprintf("EPSG:%d", c.code)
}

// Equal reports whether two collections may be combined without
// reprojection. Two unknown systems are treated as shared.
func Equal(a, b CRS) bool { return a.code == b.code }

// Known reports whether the registry supports the system. The zero
// value is never known.
func Known(c CRS) bool {
	_, ok := registry[c.code]
	return ok
}

// projections to and from the WGS84 hub
type entry struct {
	toWGS84   orb.Projection
	fromWGS84 orb.Projection
}

var identity orb.Projection = func(p orb.Point) orb.Point { return p }

var registry = map[int]entry{
	CodeWGS84:       {toWGS84: identity, fromWGS84: identity},
	CodeWebMercator: {toWGS84: project.Mercator.ToWGS84, fromWGS84: project.WGS84.ToMercator},
}

// Reproject transforms a geometry from one system to another,
// returning a new geometry. The source geometry is cloned first so
// callers keep their original coordinates.
func Reproject(g orb.Geometry, from, to CRS) (orb.Geometry, error) {
	if from.IsZero() {
		return nil, &UnknownCRSError{Code: "unknown source CRS"}
	}
	src, ok := registry[from.code]
	if !ok {
		return nil, &UnknownCRSError{Code: from.String()}
	}
	dst, ok := registry[to.code]
	if !ok {
		return nil, &UnknownCRSError{Code: to.String()}
	}
	out := orb.Clone(g)
	if from == to {
		return out, nil
	}
	out = project.Geometry(out, src.toWGS84)
	out = project.Geometry(out, dst.fromWGS84)
	return out, nil
}
