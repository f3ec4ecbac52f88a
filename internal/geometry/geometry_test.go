package geometry

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromWKT(t *testing.T) {
	tests := []struct {
		name string
		wkt  string
		want orb.Geometry
	}{
		{
			name: "point",
			wkt:  "POINT(30 10)",
			want: orb.Point{30, 10},
		},
		{
			name: "linestring",
			wkt:  "LINESTRING(30 10, 10 30, 40 40)",
			want: orb.LineString{{30, 10}, {10, 30}, {40, 40}},
		},
		{
			name: "polygon",
			wkt:  "POLYGON((30 10, 40 40, 20 40, 10 20, 30 10))",
			want: orb.Polygon{{{30, 10}, {40, 40}, {20, 40}, {10, 20}, {30, 10}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := FromWKT(tt.wkt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g)
		})
	}
}

func TestFromWKTMalformed(t *testing.T) {
	for _, input := range []string{"", "POINT(30)", "BANANA(1 2)", "POLYGON 30 10"} {
		t.Run(input, func(t *testing.T) {
			_, err := FromWKT(input)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Contains(t, parseErr.Error(), "parse geometry")
		})
	}
}

func TestWKBRoundTrip(t *testing.T) {
	want := orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}

	b, err := ToWKB(want)
	require.NoError(t, err)

	got, err := FromWKB(b)
	require.NoError(t, err)
	assert.Equal(t, orb.Geometry(want), got)
}

func TestConstructors(t *testing.T) {
	_, err := LineString(orb.Point{0, 0})
	var invalid *InvalidGeometryError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "LineString", invalid.Kind)

	_, err = Polygon([]orb.Point{{0, 0}, {1, 0}, {0, 0}})
	require.True(t, errors.As(err, &invalid))

	// unclosed ring
	_, err = Polygon([]orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Error(), "not closed")

	poly, err := Polygon([]orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 0}})
	require.NoError(t, err)
	assert.Len(t, poly, 1)
}

func TestMultiConstructors(t *testing.T) {
	_, err := MultiPoint()
	var invalid *InvalidGeometryError
	require.True(t, errors.As(err, &invalid))

	mp, err := MultiPoint(orb.Point{0, 0}, orb.Point{1, 1})
	require.NoError(t, err)
	assert.Len(t, mp, 2)

	_, err = MultiLineString(orb.LineString{{0, 0}})
	require.True(t, errors.As(err, &invalid))

	square := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	mpoly, err := MultiPolygon(square, square)
	require.NoError(t, err)
	assert.Len(t, mpoly, 2)

	_, err = Collection(orb.Point{1, 2}, orb.Polygon{})
	require.True(t, errors.As(err, &invalid))
}

func TestValidateEmpty(t *testing.T) {
	tests := []struct {
		name string
		g    orb.Geometry
	}{
		{"empty linestring", orb.LineString{}},
		{"empty polygon", orb.Polygon{}},
		{"empty multipoint", orb.MultiPoint{}},
		{"degenerate ring", orb.Polygon{{{0, 0}, {1, 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.g)
			var invalid *InvalidGeometryError
			require.True(t, errors.As(err, &invalid), "want InvalidGeometryError, got %v", err)
		})
	}
}
