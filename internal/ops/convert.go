// Package ops delegates geometric composition (buffer, overlay, hull,
// centroid, boundary) to GEOS via gogeos. Geometries cross the bridge
// as raw coordinates; nothing geometric is computed here.
package ops

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulsmith/gogeos/geos"
)

func coordsOf(points []orb.Point) []geos.Coord {
	out := make([]geos.Coord, 0, len(points))
	for _, p := range points {
		out = append(out, geos.Coord{X: p[0], Y: p[1]})
	}
	return out
}

func toGeos(g orb.Geometry) (*geos.Geometry, error) {
	switch v := g.(type) {
	case orb.Point:
		return geos.NewPoint(geos.Coord{X: v[0], Y: v[1]})
	case orb.MultiPoint:
		members := make([]*geos.Geometry, 0, len(v))
		for _, p := range v {
			pt, err := geos.NewPoint(geos.Coord{X: p[0], Y: p[1]})
			if err != nil {
				return nil, err
			}
			members = append(members, pt)
		}
		return geos.NewCollection(geos.MULTIPOINT, members...)
	case orb.LineString:
		return geos.NewLineString(coordsOf(v)...)
	case orb.MultiLineString:
		members := make([]*geos.Geometry, 0, len(v))
		for _, ls := range v {
			l, err := geos.NewLineString(coordsOf(ls)...)
			if err != nil {
				return nil, err
			}
			members = append(members, l)
		}
		return geos.NewCollection(geos.MULTILINESTRING, members...)
	case orb.Ring:
		return toGeos(orb.Polygon{v})
	case orb.Polygon:
		if len(v) == 0 {
			return nil, fmt.Errorf("polygon without rings")
		}
		shell := coordsOf(v[0])
		holes := make([][]geos.Coord, 0, len(v)-1)
		for _, h := range v[1:] {
			holes = append(holes, coordsOf(h))
		}
		return geos.NewPolygon(shell, holes...)
	case orb.MultiPolygon:
		members := make([]*geos.Geometry, 0, len(v))
		for _, p := range v {
			poly, err := toGeos(p)
			if err != nil {
				return nil, err
			}
			members = append(members, poly)
		}
		return geos.NewCollection(geos.MULTIPOLYGON, members...)
	case orb.Collection:
		members := make([]*geos.Geometry, 0, len(v))
		for _, m := range v {
			g2, err := toGeos(m)
			if err != nil {
				return nil, err
			}
			members = append(members, g2)
		}
		return geos.NewCollection(geos.GEOMETRYCOLLECTION, members...)
	default:
		return nil, fmt.Errorf("unsupported geometry type %T", g)
	}
}

func pointsOf(g *geos.Geometry) ([]orb.Point, error) {
	n, err := g.NPoint()
	if err != nil {
		return nil, err
	}
	points := make([]orb.Point, n)
	for i := 0; i < n; i++ {
		p, err := g.Point(i)
		if err != nil {
			return nil, err
		}
		x, err := p.X()
		if err != nil {
			return nil, err
		}
		y, err := p.Y()
		if err != nil {
			return nil, err
		}
		points[i] = orb.Point{x, y}
	}
	return points, nil
}

func ringsOf(poly *geos.Geometry) (orb.Polygon, error) {
	shell, err := poly.Shell()
	if err != nil {
		return nil, err
	}
	outer, err := pointsOf(shell)
	if err != nil {
		return nil, err
	}
	holes, err := poly.Holes()
	if err != nil {
		return nil, err
	}
	rings := make(orb.Polygon, 0, len(holes)+1)
	rings = append(rings, orb.Ring(outer))
	for _, h := range holes {
		inner, err := pointsOf(h)
		if err != nil {
			return nil, err
		}
		rings = append(rings, orb.Ring(inner))
	}
	return rings, nil
}

func membersOf(g *geos.Geometry) ([]orb.Geometry, error) {
	n, err := g.NGeometry()
	if err != nil {
		return nil, err
	}
	members := make([]orb.Geometry, 0, n)
	for i := 0; i < n; i++ {
		m, err := g.Geometry(i)
		if err != nil {
			return nil, err
		}
		og, err := fromGeos(m)
		if err != nil {
			return nil, err
		}
		members = append(members, og)
	}
	return members, nil
}

func fromGeos(g *geos.Geometry) (orb.Geometry, error) {
	t, err := g.Type()
	if err != nil {
		return nil, err
	}
	switch t {
	case geos.POINT:
		x, err := g.X()
		if err != nil {
			return nil, err
		}
		y, err := g.Y()
		if err != nil {
			return nil, err
		}
		return orb.Point{x, y}, nil
	case geos.LINESTRING, geos.LINEARRING:
		pts, err := pointsOf(g)
		if err != nil {
			return nil, err
		}
		return orb.LineString(pts), nil
	case geos.POLYGON:
		return ringsOf(g)
	case geos.MULTIPOINT:
		members, err := membersOf(g)
		if err != nil {
			return nil, err
		}
		mp := make(orb.MultiPoint, 0, len(members))
		for _, m := range members {
			mp = append(mp, m.(orb.Point))
		}
		return mp, nil
	case geos.MULTILINESTRING:
		members, err := membersOf(g)
		if err != nil {
			return nil, err
		}
		mls := make(orb.MultiLineString, 0, len(members))
		for _, m := range members {
			mls = append(mls, m.(orb.LineString))
		}
		return mls, nil
	case geos.MULTIPOLYGON:
		members, err := membersOf(g)
		if err != nil {
			return nil, err
		}
		mp := make(orb.MultiPolygon, 0, len(members))
		for _, m := range members {
			mp = append(mp, m.(orb.Polygon))
		}
		return mp, nil
	case geos.GEOMETRYCOLLECTION:
		members, err := membersOf(g)
		if err != nil {
			return nil, err
		}
		return orb.Collection(members), nil
	default:
		return nil, fmt.Errorf("unsupported GEOS geometry type: %v", t)
	}
}
