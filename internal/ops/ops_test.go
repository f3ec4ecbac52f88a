package ops

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}}
}

func TestBufferMonotonicity(t *testing.T) {
	point := orb.Point{10, 10}

	var prev float64
	for _, d := range []float64{0.5, 1, 2, 5} {
		buffered, err := Buffer(point, d)
		require.NoError(t, err)

		area, err := Area(buffered)
		require.NoError(t, err)
		assert.Greater(t, area, prev, "buffer(%v) area must grow", d)
		prev = area
	}
}

func TestBufferGrowsArea(t *testing.T) {
	poly := square(0, 0, 2)

	buffered, err := Buffer(poly, 1)
	require.NoError(t, err)

	orig, err := Area(poly)
	require.NoError(t, err)
	grown, err := Area(buffered)
	require.NoError(t, err)
	assert.Greater(t, grown, orig)
}

func TestUnionIdempotence(t *testing.T) {
	a := square(0, 0, 2)
	b := square(1, 1, 2)

	ab, err := Union(a, b)
	require.NoError(t, err)
	abb, err := Union(ab, b)
	require.NoError(t, err)

	areaAB, err := Area(ab)
	require.NoError(t, err)
	areaABB, err := Area(abb)
	require.NoError(t, err)

	assert.InDelta(t, areaAB, areaABB, 1e-9)
	// two overlapping 2x2 squares with a 1x1 overlap
	assert.InDelta(t, 7.0, areaAB, 1e-9)
}

func TestOverlapDiagnostic(t *testing.T) {
	t.Run("overlapping", func(t *testing.T) {
		sum, union, overlap, err := OverlapDiagnostic(square(0, 0, 2), square(1, 1, 2))
		require.NoError(t, err)
		assert.InDelta(t, 8.0, sum, 1e-9)
		assert.InDelta(t, 7.0, union, 1e-9)
		assert.InDelta(t, 1.0, overlap, 1e-9)
	})

	t.Run("disjoint", func(t *testing.T) {
		sum, union, overlap, err := OverlapDiagnostic(square(0, 0, 1), square(5, 5, 1))
		require.NoError(t, err)
		assert.InDelta(t, 2.0, sum, 1e-9)
		assert.InDelta(t, 2.0, union, 1e-9)
		assert.InDelta(t, 0.0, overlap, 1e-9)
	})
}

func TestIntersection(t *testing.T) {
	g, err := Intersection(square(0, 0, 2), square(1, 1, 2))
	require.NoError(t, err)

	area, err := Area(g)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, area, 1e-9)
}

func TestDifferenceAndSymmetricDifference(t *testing.T) {
	a := square(0, 0, 2)
	b := square(1, 1, 2)

	diff, err := Difference(a, b)
	require.NoError(t, err)
	areaDiff, err := Area(diff)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, areaDiff, 1e-9)

	sym, err := SymmetricDifference(a, b)
	require.NoError(t, err)
	areaSym, err := Area(sym)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, areaSym, 1e-9)
}

func TestConvexHull(t *testing.T) {
	points := orb.MultiPoint{{0, 0}, {4, 0}, {0, 4}, {4, 4}, {2, 2}}

	hull, err := ConvexHull(points)
	require.NoError(t, err)

	area, err := Area(hull)
	require.NoError(t, err)
	assert.InDelta(t, 16.0, area, 1e-9)
}

func TestCentroid(t *testing.T) {
	g, err := Centroid(square(0, 0, 2))
	require.NoError(t, err)

	p, ok := g.(orb.Point)
	require.True(t, ok)
	assert.InDelta(t, 1.0, p[0], 1e-9)
	assert.InDelta(t, 1.0, p[1], 1e-9)
}

func TestBoundary(t *testing.T) {
	g, err := Boundary(square(0, 0, 2))
	require.NoError(t, err)

	// a polygon's boundary is its ring as a line
	switch g.(type) {
	case orb.LineString, orb.MultiLineString:
	default:
		t.Fatalf("want line boundary, got %T", g)
	}
}

func TestIntersects(t *testing.T) {
	hits, err := Intersects(square(0, 0, 2), square(1, 1, 2))
	require.NoError(t, err)
	assert.True(t, hits)

	hits, err = Intersects(square(0, 0, 1), square(5, 5, 1))
	require.NoError(t, err)
	assert.False(t, hits)
}

func TestRoundTripThroughGEOS(t *testing.T) {
	tests := []struct {
		name string
		g    orb.Geometry
	}{
		{"point", orb.Point{1, 2}},
		{"linestring", orb.LineString{{0, 0}, {1, 1}, {2, 0}}},
		{"polygon with hole", orb.Polygon{
			{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
			{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
		}},
		{"multipolygon", orb.MultiPolygon{square(0, 0, 1), square(5, 5, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gg, err := toGeos(tt.g)
			require.NoError(t, err)
			back, err := fromGeos(gg)
			require.NoError(t, err)
			assert.Equal(t, tt.g, back)
		})
	}
}
