package ops

import (
	"github.com/paulmach/orb"
	"github.com/paulsmith/gogeos/geos"
)

type binaryOp func(a, b *geos.Geometry) (*geos.Geometry, error)

func unary(g orb.Geometry, op func(*geos.Geometry) (*geos.Geometry, error)) (orb.Geometry, error) {
	gg, err := toGeos(g)
	if err != nil {
		return nil, err
	}
	res, err := op(gg)
	if err != nil {
		return nil, err
	}
	return fromGeos(res)
}

func binary(a, b orb.Geometry, op binaryOp) (orb.Geometry, error) {
	ga, err := toGeos(a)
	if err != nil {
		return nil, err
	}
	gb, err := toGeos(b)
	if err != nil {
		return nil, err
	}
	res, err := op(ga, gb)
	if err != nil {
		return nil, err
	}
	return fromGeos(res)
}

// Buffer returns the set of points within distance d of g,
// in the units of the geometry's CRS.
func Buffer(g orb.Geometry, d float64) (orb.Geometry, error) {
	return unary(g, func(gg *geos.Geometry) (*geos.Geometry, error) {
		return gg.Buffer(d)
	})
}

// Union merges two geometries.
func Union(a, b orb.Geometry) (orb.Geometry, error) {
	return binary(a, b, func(ga, gb *geos.Geometry) (*geos.Geometry, error) {
		return ga.Union(gb)
	})
}

// UnaryUnion folds a set of geometries into one non-overlapping geometry.
func UnaryUnion(gs ...orb.Geometry) (orb.Geometry, error) {
	if len(gs) == 0 {
		return orb.Collection{}, nil
	}
	acc, err := toGeos(gs[0])
	if err != nil {
		return nil, err
	}
	for _, g := range gs[1:] {
		next, err := toGeos(g)
		if err != nil {
			return nil, err
		}
		acc, err = acc.Union(next)
		if err != nil {
			return nil, err
		}
	}
	return fromGeos(acc)
}

// Intersection returns the shared region of two geometries.
func Intersection(a, b orb.Geometry) (orb.Geometry, error) {
	return binary(a, b, func(ga, gb *geos.Geometry) (*geos.Geometry, error) {
		return ga.Intersection(gb)
	})
}

// Difference returns the part of a not covered by b.
func Difference(a, b orb.Geometry) (orb.Geometry, error) {
	return binary(a, b, func(ga, gb *geos.Geometry) (*geos.Geometry, error) {
		return ga.Difference(gb)
	})
}

// SymmetricDifference returns the parts of a and b not shared by both.
func SymmetricDifference(a, b orb.Geometry) (orb.Geometry, error) {
	return binary(a, b, func(ga, gb *geos.Geometry) (*geos.Geometry, error) {
		return ga.SymDifference(gb)
	})
}

// ConvexHull returns the smallest convex polygon containing g.
func ConvexHull(g orb.Geometry) (orb.Geometry, error) {
	return unary(g, func(gg *geos.Geometry) (*geos.Geometry, error) {
		return gg.ConvexHull()
	})
}

// Centroid returns the geometric center of g.
func Centroid(g orb.Geometry) (orb.Geometry, error) {
	return unary(g, func(gg *geos.Geometry) (*geos.Geometry, error) {
		return gg.Centroid()
	})
}

// Boundary returns the topological boundary of g.
func Boundary(g orb.Geometry) (orb.Geometry, error) {
	return unary(g, func(gg *geos.Geometry) (*geos.Geometry, error) {
		return gg.Boundary()
	})
}

// Area returns the planar area of g in squared CRS units.
func Area(g orb.Geometry) (float64, error) {
	gg, err := toGeos(g)
	if err != nil {
		return 0, err
	}
	return gg.Area()
}

// Intersects reports whether two geometries share any point.
func Intersects(a, b orb.Geometry) (bool, error) {
	ga, err := toGeos(a)
	if err != nil {
		return false, err
	}
	gb, err := toGeos(b)
	if err != nil {
		return false, err
	}
	return ga.Intersects(gb)
}

// OverlapDiagnostic reports the summed individual areas, the union area
// and their difference for a set of geometries. The difference is the
// amount of overlap; it is a diagnostic, not a correction.
func OverlapDiagnostic(gs ...orb.Geometry) (sum, union, overlap float64, err error) {
	for _, g := range gs {
		a, err := Area(g)
		if err != nil {
			return 0, 0, 0, err
		}
		sum += a
	}
	merged, err := UnaryUnion(gs...)
	if err != nil {
		return 0, 0, 0, err
	}
	union, err = Area(merged)
	if err != nil {
		return 0, 0, 0, err
	}
	return sum, union, sum - union, nil
}
