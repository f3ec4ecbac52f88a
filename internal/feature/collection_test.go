package feature

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoflow-io/geoflow/internal/crs"
)

func testSchema() Schema {
	return Schema{
		{Name: "name", Kind: KindString},
		{Name: "population", Kind: KindNumber},
		{Name: "class", Kind: KindCategory},
	}
}

func testCollection(t *testing.T) *Collection {
	t.Helper()
	wgs84, err := crs.FromEPSG(crs.CodeWGS84)
	require.NoError(t, err)

	c, err := FromFeatures(testSchema(), wgs84, []Feature{
		{Geometry: orb.Point{13.40, 52.52}, Attrs: map[string]any{"name": "berlin", "population": 3_700_000.0, "class": "city"}},
		{Geometry: orb.Point{11.58, 48.14}, Attrs: map[string]any{"name": "munich", "population": 1_500_000.0, "class": "city"}},
		{Geometry: orb.Point{8.80, 53.08}, Attrs: map[string]any{"name": "bremen", "population": 570_000.0, "class": "town"}},
	})
	require.NoError(t, err)
	return c
}

func TestFromFeaturesRejectsUndeclaredColumn(t *testing.T) {
	_, err := FromFeatures(testSchema(), crs.CRS{}, []Feature{
		{Geometry: orb.Point{0, 0}, Attrs: map[string]any{"elevation": 12.0}},
	})

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "elevation", schemaErr.Column)
}

func TestFromFeaturesRejectsWrongKind(t *testing.T) {
	_, err := FromFeatures(testSchema(), crs.CRS{}, []Feature{
		{Geometry: orb.Point{0, 0}, Attrs: map[string]any{"population": "many"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "population")
}

func TestWhereSelectionCorrectness(t *testing.T) {
	c := testCollection(t)

	selected, err := c.Where("population", OpGt, 1_000_000.0)
	require.NoError(t, err)
	complement, err := c.Where("population", OpLe, 1_000_000.0)
	require.NoError(t, err)

	assert.Equal(t, c.Len(), selected.Len()+complement.Len())

	for i := 0; i < selected.Len(); i++ {
		v, err := selected.Attr(i, "population")
		require.NoError(t, err)
		assert.Greater(t, v.(float64), 1_000_000.0)
	}
	for i := 0; i < complement.Len(); i++ {
		v, err := complement.Attr(i, "population")
		require.NoError(t, err)
		assert.LessOrEqual(t, v.(float64), 1_000_000.0)
	}

	// CRS and schema are preserved on sub-collections
	assert.True(t, crs.Equal(c.CRS(), selected.CRS()))
	assert.Equal(t, c.Schema(), selected.Schema())
}

func TestWhereUnknownColumn(t *testing.T) {
	c := testCollection(t)

	_, err := c.Where("area", OpGt, 1.0)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "area", schemaErr.Column)
	assert.Contains(t, schemaErr.Error(), "population", "error should list the available columns")
}

func TestWhereStringPredicate(t *testing.T) {
	c := testCollection(t)

	towns, err := c.Where("class", OpEq, "town")
	require.NoError(t, err)
	require.Equal(t, 1, towns.Len())

	name, err := towns.Attr(0, "name")
	require.NoError(t, err)
	assert.Equal(t, "bremen", name)
}

func TestWhereFuncDerivedMetric(t *testing.T) {
	wgs84, _ := crs.FromEPSG(crs.CodeWGS84)
	c, err := FromFeatures(Schema{}, wgs84, []Feature{
		{Geometry: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}, Attrs: map[string]any{}},
		{Geometry: orb.Polygon{{{0, 0}, {0.01, 0}, {0.01, 0.01}, {0, 0.01}, {0, 0}}}, Attrs: map[string]any{}},
	})
	require.NoError(t, err)

	big, err := c.WhereFunc(func(f Feature) (bool, error) {
		return f.Geometry.Bound().Max[0] >= 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, big.Len())
}

func TestSelect(t *testing.T) {
	c := testCollection(t)

	projected, err := c.Select("name")
	require.NoError(t, err)
	require.Equal(t, Schema{{Name: "name", Kind: KindString}}, projected.Schema())

	_, err = projected.Attr(0, "population")
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))

	_, err = c.Select("name", "nope")
	require.True(t, errors.As(err, &schemaErr))
}

func TestMask(t *testing.T) {
	c := testCollection(t)

	sub, err := c.Mask([]bool{true, false, true})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Len())

	_, err = c.Mask([]bool{true})
	require.Error(t, err)
}

func TestReprojectAtomicAndPure(t *testing.T) {
	c := testCollection(t)
	mercator, err := crs.FromEPSG(crs.CodeWebMercator)
	require.NoError(t, err)

	projected, err := c.Reproject(mercator)
	require.NoError(t, err)
	assert.Equal(t, mercator, projected.CRS())
	assert.Equal(t, c.Len(), projected.Len())

	// source collection untouched
	p := c.Row(0).Geometry.(orb.Point)
	assert.InDelta(t, 13.40, p[0], 1e-12)

	// unknown target fails before any row is produced, rows or not
	var unknown *crs.UnknownCRSError
	_, err = New(testSchema(), c.CRS()).Reproject(crs.CRS{})
	require.True(t, errors.As(err, &unknown))

	_, err = c.Reproject(crs.CRS{})
	require.True(t, errors.As(err, &unknown))
}

func TestWithCRSDoesNotTransform(t *testing.T) {
	c := testCollection(t)
	mercator, _ := crs.FromEPSG(crs.CodeWebMercator)

	tagged := c.WithCRS(mercator)
	assert.Equal(t, mercator, tagged.CRS())
	assert.Equal(t, c.Row(0).Geometry, tagged.Row(0).Geometry)
}
